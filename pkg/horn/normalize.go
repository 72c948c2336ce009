package horn

import (
	"sort"

	"folio/pkg/logic"
)

// Options controls which clause shapes a backend accepts.
type Options struct {
	// DisjunctiveHeads permits clauses with more than one head term.
	DisjunctiveHeads bool
	// AllowConstraints permits headless clauses.
	AllowConstraints bool
}

// DefaultOptions accepts constraints but not disjunctive heads, matching
// standard Prolog.
func DefaultOptions() Options {
	return Options{AllowConstraints: true}
}

// NormalizeSentence lowers one sentence into flat clauses. Guarded
// conditional ladders flatten into mutually exclusive clauses, body
// disjunctions split into one clause per disjunct, and conjoined or
// chained implications become separate clauses. Sentences outside that
// fragment go through the CNF pipeline. Constructs the target cannot
// express are returned as diagnostics alongside the clauses that did
// lower.
func NormalizeSentence(s logic.Sentence, opts Options) ([]Clause, []logic.Diagnostic) {
	stripped := stripForall(Simplify(s))
	clauses, diags := lowerTop(stripped, opts)
	return checkSafety(clauses, diags)
}

func stripForall(s logic.Sentence) logic.Sentence {
	for {
		f, ok := s.(*logic.Forall)
		if !ok {
			return s
		}
		s = f.Body
	}
}

func lowerTop(s logic.Sentence, opts Options) ([]Clause, []logic.Diagnostic) {
	switch x := s.(type) {
	case *logic.Term:
		return []Clause{{Heads: []*logic.Term{x}}}, nil
	case *logic.Iff:
		left, ldiags := lowerTop(stripForall(Simplify(logic.NewImplies(x.Left, x.Right))), opts)
		right, rdiags := lowerTop(stripForall(Simplify(logic.NewImplies(x.Right, x.Left))), opts)
		return append(left, right...), append(ldiags, rdiags...)
	case *logic.Not:
		return lowerConstraint(x, opts)
	case *logic.Implies, *logic.And:
		if clauses, diags, ok := lowerStructural(nil, s, opts); ok {
			return clauses, diags
		}
		return lowerViaCNF(s, opts)
	case *logic.Or, *logic.Exists:
		return lowerViaCNF(s, opts)
	case *logic.Probability:
		return nil, []logic.Diagnostic{logic.Diagf(logic.CodeUnsupportedConstraintShape, s,
			"probability-weighted sentence requires a probabilistic target")}
	case *logic.Evidence:
		return nil, []logic.Diagnostic{logic.Diagf(logic.CodeUnsupportedConstraintShape, s,
			"evidence declaration requires a probabilistic target")}
	case *logic.Variable:
		return nil, []logic.Diagnostic{logic.Diagf(logic.CodeUnsupportedConstraintShape, s,
			"bare variable %s is not a sentence", x)}
	}
	return lowerViaCNF(s, opts)
}

// lowerConstraint turns a top-level negation into a headless clause.
func lowerConstraint(n *logic.Not, opts Options) ([]Clause, []logic.Diagnostic) {
	if !opts.AllowConstraints {
		return nil, []logic.Diagnostic{logic.Diagf(logic.CodeUnsupportedConstraintShape, n,
			"integrity constraint %s is not supported by this target", n)}
	}
	alternatives, ok := bodyAlternatives(n.Operand)
	if !ok {
		return nil, []logic.Diagnostic{logic.Diagf(logic.CodeUnsupportedNegationShape, n,
			"cannot lower negated sentence %s to constraint bodies", n)}
	}
	clauses := make([]Clause, 0, len(alternatives))
	for _, body := range alternatives {
		clauses = append(clauses, Clause{Body: body})
	}
	return clauses, nil
}

func lowerViaCNF(s logic.Sentence, opts Options) ([]Clause, []logic.Diagnostic) {
	return hornFromCNF(CNFClauses(s, false), opts)
}

// lowerStructural lowers a consequent under accumulated body literals. It
// reports ok=false when the shape is outside the structural fragment and
// the caller should fall back to the CNF pipeline.
func lowerStructural(body []Literal, s logic.Sentence, opts Options) ([]Clause, []logic.Diagnostic, bool) {
	switch x := s.(type) {
	case *logic.Term:
		return []Clause{{Heads: []*logic.Term{x}, Body: body}}, nil, true
	case *logic.Forall:
		return lowerStructural(body, x.Body, opts)
	case *logic.And:
		if branches, ok := matchLadder(x); ok {
			return flattenLadder(body, branches, opts)
		}
		var clauses []Clause
		var diags []logic.Diagnostic
		for _, op := range x.Operands {
			sub, subDiags, ok := lowerStructural(body, op, opts)
			if !ok {
				return nil, nil, false
			}
			clauses = append(clauses, sub...)
			diags = append(diags, subDiags...)
		}
		return clauses, diags, true
	case *logic.Implies:
		alternatives, ok := bodyAlternatives(x.Antecedent)
		if !ok {
			return nil, nil, false
		}
		var clauses []Clause
		var diags []logic.Diagnostic
		for _, alt := range alternatives {
			extended := append(append([]Literal{}, body...), alt...)
			sub, subDiags, ok := lowerStructural(extended, x.Consequent, opts)
			if !ok {
				return nil, nil, false
			}
			clauses = append(clauses, sub...)
			diags = append(diags, subDiags...)
		}
		return clauses, diags, true
	case *logic.Or:
		if !opts.DisjunctiveHeads {
			return nil, nil, false
		}
		heads := make([]*logic.Term, 0, len(x.Operands))
		for _, op := range x.Operands {
			t, ok := op.(*logic.Term)
			if !ok {
				return nil, nil, false
			}
			heads = append(heads, t)
		}
		return []Clause{{Heads: heads, Body: body}}, nil, true
	case *logic.Not:
		if !opts.AllowConstraints {
			return nil, nil, false
		}
		alternatives, ok := bodyAlternatives(x.Operand)
		if !ok {
			return nil, nil, false
		}
		clauses := make([]Clause, 0, len(alternatives))
		for _, alt := range alternatives {
			full := append(append([]Literal{}, body...), alt...)
			clauses = append(clauses, Clause{Body: full})
		}
		return clauses, nil, true
	}
	return nil, nil, false
}

// ladderBranch is one arm of a guarded conditional ladder. A nil Guard
// marks the trailing else arm.
type ladderBranch struct {
	Guard logic.Sentence
	Head  logic.Sentence
}

// matchLadder recognizes the nested shape a guarded conditional ladder
// lowers to: And(Implies(c, then), Implies(Not(c), rest)) where rest is
// either another ladder, a final guarded arm, or the else sentence.
func matchLadder(and *logic.And) ([]ladderBranch, bool) {
	if len(and.Operands) != 2 {
		return nil, false
	}
	thenArm, ok := and.Operands[0].(*logic.Implies)
	if !ok {
		return nil, false
	}
	elseArm, ok := and.Operands[1].(*logic.Implies)
	if !ok {
		return nil, false
	}
	negated, ok := elseArm.Antecedent.(*logic.Not)
	if !ok || !logic.Equal(negated.Operand, thenArm.Antecedent) {
		return nil, false
	}
	if _, _, ok := guardLiteral(thenArm.Antecedent); !ok {
		return nil, false
	}
	branches := []ladderBranch{{Guard: thenArm.Antecedent, Head: thenArm.Consequent}}
	switch rest := elseArm.Consequent.(type) {
	case *logic.And:
		if sub, ok := matchLadder(rest); ok {
			return append(branches, sub...), true
		}
		branches = append(branches, ladderBranch{Head: rest})
	case *logic.Implies:
		if _, _, ok := guardLiteral(rest.Antecedent); ok {
			branches = append(branches, ladderBranch{Guard: rest.Antecedent, Head: rest.Consequent})
		} else {
			branches = append(branches, ladderBranch{Head: rest})
		}
	default:
		branches = append(branches, ladderBranch{Head: rest})
	}
	return branches, true
}

// guardLiteral renders a ladder guard as a single literal. Guards must be
// atoms or negated atoms; anything wider leaves the ladder fragment.
func guardLiteral(g logic.Sentence) (Literal, Literal, bool) {
	switch x := g.(type) {
	case *logic.Term:
		return Pos(x), Neg(x), true
	case *logic.Not:
		if t, ok := x.Operand.(*logic.Term); ok {
			return Neg(t), Pos(t), true
		}
	}
	return Literal{}, Literal{}, false
}

// flattenLadder lowers ladder branches into clauses. Branch i keeps its
// own guard plus the negations of every earlier guard, newest first, so at
// most one branch body can hold for any guard valuation.
func flattenLadder(shared []Literal, branches []ladderBranch, opts Options) ([]Clause, []logic.Diagnostic, bool) {
	var clauses []Clause
	var diags []logic.Diagnostic
	var negations []Literal
	for _, branch := range branches {
		body := append([]Literal{}, shared...)
		var negation Literal
		if branch.Guard != nil {
			guard, neg, ok := guardLiteral(branch.Guard)
			if !ok {
				return nil, nil, false
			}
			body = append(body, guard)
			negation = neg
		}
		body = append(body, negations...)
		sub, subDiags, ok := lowerStructural(body, branch.Head, opts)
		if !ok {
			return nil, nil, false
		}
		clauses = append(clauses, sub...)
		diags = append(diags, subDiags...)
		if branch.Guard != nil {
			negations = append([]Literal{negation}, negations...)
		}
	}
	return clauses, diags, true
}

// bodyAlternatives converts an antecedent into body literal lists, one per
// disjunctive alternative. The sentence is first brought to negation
// normal form; conjunction crosses alternatives, disjunction adds them,
// and existential quantifiers in body position are dropped.
func bodyAlternatives(s logic.Sentence) ([][]Literal, bool) {
	return literalAlternatives(PushNegation(Simplify(s)))
}

func literalAlternatives(s logic.Sentence) ([][]Literal, bool) {
	switch x := s.(type) {
	case *logic.Term:
		return [][]Literal{{Pos(x)}}, true
	case *logic.Not:
		t, ok := x.Operand.(*logic.Term)
		if !ok {
			return nil, false
		}
		return [][]Literal{{Neg(t)}}, true
	case *logic.Exists:
		return literalAlternatives(x.Body)
	case *logic.And:
		alternatives := [][]Literal{{}}
		for _, op := range x.Operands {
			sub, ok := literalAlternatives(op)
			if !ok {
				return nil, false
			}
			var crossed [][]Literal
			for _, prefix := range alternatives {
				for _, suffix := range sub {
					merged := append(append([]Literal{}, prefix...), suffix...)
					crossed = append(crossed, merged)
				}
			}
			alternatives = crossed
		}
		return alternatives, true
	case *logic.Or:
		var alternatives [][]Literal
		for _, op := range x.Operands {
			sub, ok := literalAlternatives(op)
			if !ok {
				return nil, false
			}
			alternatives = append(alternatives, sub...)
		}
		return alternatives, true
	}
	return nil, false
}

// checkSafety drops clauses whose head variables are not bound by a
// positive body literal, so no unbound variable reaches a rule engine.
func checkSafety(clauses []Clause, diags []logic.Diagnostic) ([]Clause, []logic.Diagnostic) {
	out := make([]Clause, 0, len(clauses))
	for _, c := range clauses {
		if unsafe := unsafeHeadVars(&c); len(unsafe) > 0 {
			diags = append(diags, logic.Diagf(logic.CodeUnsafeHeadVariable, c.Sentence(),
				"variable ?%s appears in the head but not in a positive body literal", unsafe[0]))
			continue
		}
		out = append(out, c)
	}
	return out, diags
}

func unsafeHeadVars(c *Clause) []string {
	if len(c.Heads) == 0 {
		return nil
	}
	headVars := c.headVars()
	if len(headVars) == 0 {
		return nil
	}
	bound := c.positiveBodyVars()
	var unsafe []string
	for name := range headVars {
		if !bound[name] {
			unsafe = append(unsafe, name)
		}
	}
	sort.Strings(unsafe)
	return unsafe
}
