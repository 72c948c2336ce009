package backend

import (
	"fmt"
	"strconv"
	"strings"

	"folio/pkg/logic"
)

// TPTP renders theories in TPTP first-order form for ATP systems like E
// and Vampire. Sentences keep their full first-order structure; axiom and
// untagged groups become fof axioms, goal groups become conjectures.
type TPTP struct{}

// NewTPTP builds a TPTP emitter.
func NewTPTP() *TPTP { return &TPTP{} }

// Format implements Compiler.
func (t *TPTP) Format() Format { return FormatTPTP }

// CompileTheory implements Compiler.
func (t *TPTP) CompileTheory(th *logic.Theory) (Result, error) {
	var b strings.Builder
	var diags []logic.Diagnostic
	fmt.Fprintf(&b, "%% Problem: %s\n", th.Name)
	axioms, goals := 0, 0
	for _, g := range th.Groups {
		diags = t.writeGroup(&b, g, &axioms, &goals, diags)
	}
	for _, f := range th.Facts {
		formula, err := tptpFormula(f)
		if err != nil {
			d := logic.Diagf(diagCode(err), f, "%v", err)
			diags = append(diags, d)
			b.WriteString(skipComment(d))
			continue
		}
		axioms++
		fmt.Fprintf(&b, "fof(axiom%d, axiom, %s).\n", axioms, formula)
	}
	return Result{Text: b.String(), Diagnostics: diags}, nil
}

// CompileGroup implements Compiler.
func (t *TPTP) CompileGroup(_ *logic.Theory, g *logic.SentenceGroup) (Result, error) {
	var b strings.Builder
	axioms, goals := 0, 0
	diags := t.writeGroup(&b, g, &axioms, &goals, nil)
	return Result{Text: b.String(), Diagnostics: diags}, nil
}

func (t *TPTP) writeGroup(b *strings.Builder, g *logic.SentenceGroup, axioms, goals *int, diags []logic.Diagnostic) []logic.Diagnostic {
	for _, s := range g.Sentences {
		formula, err := tptpFormula(s)
		if err != nil {
			d := logic.Diagf(diagCode(err), s, "%v", err)
			d.Group = g.Name
			diags = append(diags, d)
			b.WriteString(skipComment(d))
			continue
		}
		if g.Kind == logic.GroupGoal {
			*goals++
			fmt.Fprintf(b, "fof(goal%d, conjecture, %s).\n", *goals, formula)
		} else {
			*axioms++
			fmt.Fprintf(b, "fof(axiom%d, axiom, %s).\n", *axioms, formula)
		}
	}
	return diags
}

func tptpFormula(s logic.Sentence) (string, error) {
	switch x := s.(type) {
	case *logic.Term:
		return tptpTerm(x)
	case *logic.Variable:
		return Capitalize(x.Name), nil
	case *logic.Not:
		sub, err := tptpFormula(x.Operand)
		if err != nil {
			return "", err
		}
		return "~" + sub, nil
	case *logic.And:
		return tptpJoin(x.Operands, " & ", "$true")
	case *logic.Or:
		return tptpJoin(x.Operands, " | ", "$false")
	case *logic.Implies:
		a, err := tptpFormula(x.Antecedent)
		if err != nil {
			return "", err
		}
		c, err := tptpFormula(x.Consequent)
		if err != nil {
			return "", err
		}
		return "(" + a + " => " + c + ")", nil
	case *logic.Iff:
		l, err := tptpFormula(x.Left)
		if err != nil {
			return "", err
		}
		r, err := tptpFormula(x.Right)
		if err != nil {
			return "", err
		}
		return "(" + l + " <=> " + r + ")", nil
	case *logic.Forall:
		return tptpQuantified("!", x.Vars, x.Body)
	case *logic.Exists:
		return tptpQuantified("?", x.Vars, x.Body)
	}
	return "", fmt.Errorf("%w: %s has no TPTP form", logic.ErrUnsupportedConstraintShape, s)
}

func tptpQuantified(op string, vars []*logic.Variable, body logic.Sentence) (string, error) {
	sub, err := tptpFormula(body)
	if err != nil {
		return "", err
	}
	names := make([]string, len(vars))
	for i, v := range vars {
		names[i] = Capitalize(v.Name)
	}
	return op + " [" + strings.Join(names, ", ") + "] : " + sub, nil
}

func tptpJoin(operands []logic.Sentence, sep, empty string) (string, error) {
	if len(operands) == 0 {
		return empty, nil
	}
	parts := make([]string, len(operands))
	for i, op := range operands {
		sub, err := tptpFormula(op)
		if err != nil {
			return "", err
		}
		parts[i] = sub
	}
	return "(" + strings.Join(parts, sep) + ")", nil
}

func tptpTerm(t *logic.Term) (string, error) {
	name := strings.ToLower(t.Predicate)
	if len(t.Args) == 0 {
		return name, nil
	}
	args := make([]string, len(t.Args))
	for i, a := range t.Args {
		txt, err := tptpValue(a)
		if err != nil {
			return "", err
		}
		args[i] = txt
	}
	return name + "(" + strings.Join(args, ", ") + ")", nil
}

func tptpValue(v logic.Value) (string, error) {
	switch x := v.(type) {
	case *logic.Variable:
		return Capitalize(x.Name), nil
	case *logic.Term:
		return tptpTerm(x)
	case logic.String:
		return tptpQuote(string(x)), nil
	case logic.Integer:
		return strconv.FormatInt(int64(x), 10), nil
	case logic.Float:
		return strconv.FormatFloat(float64(x), 'g', -1, 64), nil
	case logic.Boolean:
		return strconv.FormatBool(bool(x)), nil
	case logic.Null:
		return "null", nil
	}
	return "", fmt.Errorf("%w: unrenderable value %v", logic.ErrUnsupportedConstraintShape, v)
}

// tptpQuote renders a string as a single-quoted TPTP constant.
func tptpQuote(s string) string {
	var b strings.Builder
	b.WriteByte('\'')
	for _, r := range s {
		if r == '\'' || r == '\\' {
			b.WriteByte('\\')
		}
		b.WriteRune(r)
	}
	b.WriteByte('\'')
	return b.String()
}
