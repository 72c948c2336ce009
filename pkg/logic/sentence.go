// Package logic defines the intermediate representation shared by every
// backend: sentence trees, theories, predicate and type declarations, and
// the diagnostics vocabulary used when a construct cannot be translated.
//
// A Sentence is a closed sum type. Backends switch over the concrete
// variants and must handle every one of them; constructs a backend cannot
// express are reported as Diagnostics rather than silently dropped.
package logic

import (
	"fmt"
	"strconv"
	"strings"
)

// Sentence is a node in a first-order sentence tree.
type Sentence interface {
	sentence()
	String() string
}

// Value is anything that may appear as an argument of a Term: a nested
// Term, a Variable, or a literal constant.
type Value interface {
	value()
	String() string
}

// Term is a predicate applied to zero or more arguments. A ground Term has
// no variables anywhere in its argument tree.
type Term struct {
	Predicate string
	Args      []Value
}

// Variable is a named logical variable with an optional domain type.
type Variable struct {
	Name   string
	Domain string
}

// Not negates a single operand.
type Not struct {
	Operand Sentence
}

// And is an n-ary conjunction. An empty conjunction is vacuously true.
type And struct {
	Operands []Sentence
}

// Or is an n-ary disjunction. An empty disjunction is unsatisfiable.
type Or struct {
	Operands []Sentence
}

// Implies is a material implication.
type Implies struct {
	Antecedent Sentence
	Consequent Sentence
}

// Iff is a biconditional.
type Iff struct {
	Left  Sentence
	Right Sentence
}

// Forall universally quantifies Body over Vars.
type Forall struct {
	Vars []*Variable
	Body Sentence
}

// Exists existentially quantifies Body over Vars.
type Exists struct {
	Vars []*Variable
	Body Sentence
}

// Probability attaches a weight in [0, 1] to a sentence. Only the problog
// backend can express it.
type Probability struct {
	Weight float64
	That   Sentence
}

// Evidence asserts that a sentence is observed true or false. Only the
// problog backend can express it.
type Evidence struct {
	That  Sentence
	Truth bool
}

// Literal constants.
type (
	// String is a string constant.
	String string
	// Integer is an integer constant.
	Integer int64
	// Float is a floating-point constant.
	Float float64
	// Boolean is a boolean constant.
	Boolean bool
	// Null is the absent value.
	Null struct{}
)

func (*Term) sentence()        {}
func (*Variable) sentence()    {}
func (*Not) sentence()         {}
func (*And) sentence()         {}
func (*Or) sentence()          {}
func (*Implies) sentence()     {}
func (*Iff) sentence()         {}
func (*Forall) sentence()      {}
func (*Exists) sentence()      {}
func (*Probability) sentence() {}
func (*Evidence) sentence()    {}

func (*Term) value()     {}
func (*Variable) value() {}
func (String) value()    {}
func (Integer) value()   {}
func (Float) value()     {}
func (Boolean) value()   {}
func (Null) value()      {}

// NewTerm builds a Term from a predicate name and arguments.
func NewTerm(predicate string, args ...Value) *Term {
	return &Term{Predicate: predicate, Args: args}
}

// NewVar builds an untyped Variable.
func NewVar(name string) *Variable {
	return &Variable{Name: name}
}

// NewTypedVar builds a Variable with a domain type.
func NewTypedVar(name, domain string) *Variable {
	return &Variable{Name: name, Domain: domain}
}

// NewAnd builds a conjunction.
func NewAnd(operands ...Sentence) *And { return &And{Operands: operands} }

// NewOr builds a disjunction.
func NewOr(operands ...Sentence) *Or { return &Or{Operands: operands} }

// NewNot negates a sentence.
func NewNot(operand Sentence) *Not { return &Not{Operand: operand} }

// NewImplies builds antecedent -> consequent.
func NewImplies(antecedent, consequent Sentence) *Implies {
	return &Implies{Antecedent: antecedent, Consequent: consequent}
}

// NewIff builds left <-> right.
func NewIff(left, right Sentence) *Iff { return &Iff{Left: left, Right: right} }

// NewForall universally quantifies body over vars.
func NewForall(vars []*Variable, body Sentence) *Forall {
	return &Forall{Vars: vars, Body: body}
}

// NewExists existentially quantifies body over vars.
func NewExists(vars []*Variable, body Sentence) *Exists {
	return &Exists{Vars: vars, Body: body}
}

func (t *Term) String() string {
	if len(t.Args) == 0 {
		return t.Predicate
	}
	parts := make([]string, len(t.Args))
	for i, a := range t.Args {
		parts[i] = a.String()
	}
	return t.Predicate + "(" + strings.Join(parts, ", ") + ")"
}

func (v *Variable) String() string {
	if v.Domain != "" {
		return "?" + v.Name + ":" + v.Domain
	}
	return "?" + v.Name
}

func (n *Not) String() string { return "not(" + n.Operand.String() + ")" }

func (a *And) String() string { return joinSentences("&", a.Operands) }

func (o *Or) String() string { return joinSentences("|", o.Operands) }

func (i *Implies) String() string {
	return "(" + i.Antecedent.String() + " -> " + i.Consequent.String() + ")"
}

func (i *Iff) String() string {
	return "(" + i.Left.String() + " <-> " + i.Right.String() + ")"
}

func (f *Forall) String() string {
	return "forall " + joinVars(f.Vars) + ": " + f.Body.String()
}

func (e *Exists) String() string {
	return "exists " + joinVars(e.Vars) + ": " + e.Body.String()
}

func (p *Probability) String() string {
	return strconv.FormatFloat(p.Weight, 'g', -1, 64) + "::" + p.That.String()
}

func (e *Evidence) String() string {
	return fmt.Sprintf("evidence(%s, %t)", e.That.String(), e.Truth)
}

func (s String) String() string  { return "'" + string(s) + "'" }
func (i Integer) String() string { return strconv.FormatInt(int64(i), 10) }
func (f Float) String() string   { return strconv.FormatFloat(float64(f), 'g', -1, 64) }
func (b Boolean) String() string { return strconv.FormatBool(bool(b)) }
func (Null) String() string      { return "null" }

func joinSentences(op string, operands []Sentence) string {
	if len(operands) == 0 {
		if op == "&" {
			return "true"
		}
		return "false"
	}
	parts := make([]string, len(operands))
	for i, s := range operands {
		parts[i] = s.String()
	}
	return "(" + strings.Join(parts, " "+op+" ") + ")"
}

func joinVars(vars []*Variable) string {
	parts := make([]string, len(vars))
	for i, v := range vars {
		parts[i] = v.Name
	}
	return strings.Join(parts, ", ")
}
