package horn

import (
	"fmt"

	"folio/pkg/logic"
)

// SkolemPrefix starts every functor introduced by Skolemize. Backends that
// cannot express function symbols reject such terms.
const SkolemPrefix = "sk__"

// Simplify returns an equivalent sentence with directly nested
// conjunctions, disjunctions, and same-kind quantifiers flattened,
// single-operand connectives collapsed, and double negation removed.
func Simplify(s logic.Sentence) logic.Sentence {
	switch x := s.(type) {
	case *logic.Term, *logic.Variable:
		return s
	case *logic.Not:
		inner := Simplify(x.Operand)
		if n, ok := inner.(*logic.Not); ok {
			return n.Operand
		}
		return logic.NewNot(inner)
	case *logic.And:
		ops := flattenInto(nil, x.Operands, true)
		if len(ops) == 1 {
			return ops[0]
		}
		return logic.NewAnd(ops...)
	case *logic.Or:
		ops := flattenInto(nil, x.Operands, false)
		if len(ops) == 1 {
			return ops[0]
		}
		return logic.NewOr(ops...)
	case *logic.Implies:
		return logic.NewImplies(Simplify(x.Antecedent), Simplify(x.Consequent))
	case *logic.Iff:
		return logic.NewIff(Simplify(x.Left), Simplify(x.Right))
	case *logic.Forall:
		body := Simplify(x.Body)
		if f, ok := body.(*logic.Forall); ok {
			return logic.NewForall(append(append([]*logic.Variable{}, x.Vars...), f.Vars...), f.Body)
		}
		return logic.NewForall(x.Vars, body)
	case *logic.Exists:
		body := Simplify(x.Body)
		if e, ok := body.(*logic.Exists); ok {
			return logic.NewExists(append(append([]*logic.Variable{}, x.Vars...), e.Vars...), e.Body)
		}
		return logic.NewExists(x.Vars, body)
	case *logic.Probability:
		return &logic.Probability{Weight: x.Weight, That: Simplify(x.That)}
	case *logic.Evidence:
		return &logic.Evidence{That: Simplify(x.That), Truth: x.Truth}
	}
	return s
}

func flattenInto(out []logic.Sentence, operands []logic.Sentence, conj bool) []logic.Sentence {
	for _, op := range operands {
		simplified := Simplify(op)
		if conj {
			if a, ok := simplified.(*logic.And); ok {
				out = flattenInto(out, a.Operands, conj)
				continue
			}
		} else {
			if o, ok := simplified.(*logic.Or); ok {
				out = flattenInto(out, o.Operands, conj)
				continue
			}
		}
		out = append(out, simplified)
	}
	return out
}

// EliminateIff rewrites every biconditional into a conjunction of two
// implications.
func EliminateIff(s logic.Sentence) logic.Sentence {
	return rewrite(s, func(n logic.Sentence) logic.Sentence {
		if iff, ok := n.(*logic.Iff); ok {
			return logic.NewAnd(
				logic.NewImplies(iff.Left, iff.Right),
				logic.NewImplies(iff.Right, iff.Left),
			)
		}
		return n
	})
}

// EliminateImplies rewrites every implication a -> c into !a | c.
func EliminateImplies(s logic.Sentence) logic.Sentence {
	return rewrite(s, func(n logic.Sentence) logic.Sentence {
		if imp, ok := n.(*logic.Implies); ok {
			return logic.NewOr(logic.NewNot(imp.Antecedent), imp.Consequent)
		}
		return n
	})
}

// rewrite applies f bottom-up over the sentence tree.
func rewrite(s logic.Sentence, f func(logic.Sentence) logic.Sentence) logic.Sentence {
	switch x := s.(type) {
	case *logic.Not:
		return f(logic.NewNot(rewrite(x.Operand, f)))
	case *logic.And:
		return f(logic.NewAnd(rewriteAll(x.Operands, f)...))
	case *logic.Or:
		return f(logic.NewOr(rewriteAll(x.Operands, f)...))
	case *logic.Implies:
		return f(logic.NewImplies(rewrite(x.Antecedent, f), rewrite(x.Consequent, f)))
	case *logic.Iff:
		return f(logic.NewIff(rewrite(x.Left, f), rewrite(x.Right, f)))
	case *logic.Forall:
		return f(logic.NewForall(x.Vars, rewrite(x.Body, f)))
	case *logic.Exists:
		return f(logic.NewExists(x.Vars, rewrite(x.Body, f)))
	case *logic.Probability:
		return f(&logic.Probability{Weight: x.Weight, That: rewrite(x.That, f)})
	case *logic.Evidence:
		return f(&logic.Evidence{That: rewrite(x.That, f), Truth: x.Truth})
	}
	return f(s)
}

func rewriteAll(operands []logic.Sentence, f func(logic.Sentence) logic.Sentence) []logic.Sentence {
	out := make([]logic.Sentence, len(operands))
	for i, op := range operands {
		out[i] = rewrite(op, f)
	}
	return out
}

// PushNegation moves negation inward until it rests on atoms, applying De
// Morgan's laws and quantifier duality and removing double negation. The
// result is in negation normal form when the input is implication-free.
func PushNegation(s logic.Sentence) logic.Sentence {
	return pushNegation(s, false)
}

func pushNegation(s logic.Sentence, negate bool) logic.Sentence {
	switch x := s.(type) {
	case *logic.Term, *logic.Variable:
		if negate {
			return logic.NewNot(s)
		}
		return s
	case *logic.Not:
		return pushNegation(x.Operand, !negate)
	case *logic.And:
		ops := make([]logic.Sentence, len(x.Operands))
		for i, op := range x.Operands {
			ops[i] = pushNegation(op, negate)
		}
		if negate {
			return logic.NewOr(ops...)
		}
		return logic.NewAnd(ops...)
	case *logic.Or:
		ops := make([]logic.Sentence, len(x.Operands))
		for i, op := range x.Operands {
			ops[i] = pushNegation(op, negate)
		}
		if negate {
			return logic.NewAnd(ops...)
		}
		return logic.NewOr(ops...)
	case *logic.Implies:
		return pushNegation(logic.NewOr(logic.NewNot(x.Antecedent), x.Consequent), negate)
	case *logic.Iff:
		expanded := logic.NewAnd(
			logic.NewImplies(x.Left, x.Right),
			logic.NewImplies(x.Right, x.Left),
		)
		return pushNegation(expanded, negate)
	case *logic.Forall:
		if negate {
			return logic.NewExists(x.Vars, pushNegation(x.Body, true))
		}
		return logic.NewForall(x.Vars, pushNegation(x.Body, false))
	case *logic.Exists:
		if negate {
			return logic.NewForall(x.Vars, pushNegation(x.Body, true))
		}
		return logic.NewExists(x.Vars, pushNegation(x.Body, false))
	}
	if negate {
		return logic.NewNot(s)
	}
	return s
}

// Skolemize replaces existentially quantified variables with fresh
// function terms over the universal variables in scope. Input should be in
// negation normal form; quantifier structure is otherwise preserved.
func Skolemize(s logic.Sentence) logic.Sentence {
	counter := 0
	return skolemize(s, nil, &counter)
}

func skolemize(s logic.Sentence, universals []*logic.Variable, counter *int) logic.Sentence {
	switch x := s.(type) {
	case *logic.Forall:
		scope := append(append([]*logic.Variable{}, universals...), x.Vars...)
		return logic.NewForall(x.Vars, skolemize(x.Body, scope, counter))
	case *logic.Exists:
		bindings := map[string]logic.Value{}
		for _, v := range x.Vars {
			*counter++
			args := make([]logic.Value, len(universals))
			for i, u := range universals {
				args[i] = u
			}
			bindings[v.Name] = logic.NewTerm(fmt.Sprintf("%s%d", SkolemPrefix, *counter), args...)
		}
		return skolemize(logic.Substitute(x.Body, bindings), universals, counter)
	case *logic.Not:
		return logic.NewNot(skolemize(x.Operand, universals, counter))
	case *logic.And:
		ops := make([]logic.Sentence, len(x.Operands))
		for i, op := range x.Operands {
			ops[i] = skolemize(op, universals, counter)
		}
		return logic.NewAnd(ops...)
	case *logic.Or:
		ops := make([]logic.Sentence, len(x.Operands))
		for i, op := range x.Operands {
			ops[i] = skolemize(op, universals, counter)
		}
		return logic.NewOr(ops...)
	case *logic.Implies:
		return logic.NewImplies(
			skolemize(x.Antecedent, universals, counter),
			skolemize(x.Consequent, universals, counter),
		)
	case *logic.Iff:
		return logic.NewIff(
			skolemize(x.Left, universals, counter),
			skolemize(x.Right, universals, counter),
		)
	}
	return s
}

// IsSkolemTerm reports whether t's functor was introduced by Skolemize.
func IsSkolemTerm(t *logic.Term) bool {
	return len(t.Predicate) > len(SkolemPrefix) && t.Predicate[:len(SkolemPrefix)] == SkolemPrefix
}

// DistributeOrOverAnd rewrites the sentence so that no conjunction is
// nested under a disjunction. Input should be quantifier-free and in
// negation normal form.
func DistributeOrOverAnd(s logic.Sentence) logic.Sentence {
	switch x := s.(type) {
	case *logic.And:
		ops := make([]logic.Sentence, len(x.Operands))
		for i, op := range x.Operands {
			ops[i] = DistributeOrOverAnd(op)
		}
		return Simplify(logic.NewAnd(ops...))
	case *logic.Or:
		ops := make([]logic.Sentence, len(x.Operands))
		for i, op := range x.Operands {
			ops[i] = DistributeOrOverAnd(op)
		}
		return distributeOr(ops)
	}
	return s
}

func distributeOr(ops []logic.Sentence) logic.Sentence {
	for i, op := range ops {
		conj, ok := op.(*logic.And)
		if !ok {
			continue
		}
		rest := make([]logic.Sentence, 0, len(ops)-1)
		rest = append(rest, ops[:i]...)
		rest = append(rest, ops[i+1:]...)
		branches := make([]logic.Sentence, len(conj.Operands))
		for j, c := range conj.Operands {
			branch := append(append([]logic.Sentence{}, rest...), c)
			branches[j] = DistributeOrOverAnd(Simplify(logic.NewOr(branch...)))
		}
		return Simplify(logic.NewAnd(branches...))
	}
	return Simplify(logic.NewOr(ops...))
}

// ToCNF converts a sentence to conjunctive normal form. Existential
// quantifiers are skolemized only when skolemizeExistentials is set;
// universal quantifiers are dropped, leaving variables implicitly
// universal.
func ToCNF(s logic.Sentence, skolemizeExistentials bool) logic.Sentence {
	out := Simplify(s)
	out = EliminateIff(out)
	out = EliminateImplies(out)
	out = PushNegation(out)
	if skolemizeExistentials {
		out = Skolemize(out)
	}
	out = dropQuantifiers(out)
	out = DistributeOrOverAnd(Simplify(out))
	return Simplify(out)
}

// dropQuantifiers removes quantifier nodes, keeping their bodies.
func dropQuantifiers(s logic.Sentence) logic.Sentence {
	return rewrite(s, func(n logic.Sentence) logic.Sentence {
		switch q := n.(type) {
		case *logic.Forall:
			return q.Body
		case *logic.Exists:
			return q.Body
		}
		return n
	})
}

// CNFClauses converts a sentence to a list of CNF clauses, each a list of
// literal sentences.
func CNFClauses(s logic.Sentence, skolemizeExistentials bool) [][]logic.Sentence {
	cnf := ToCNF(s, skolemizeExistentials)
	var clauses []logic.Sentence
	if and, ok := cnf.(*logic.And); ok {
		clauses = and.Operands
	} else {
		clauses = []logic.Sentence{cnf}
	}
	out := make([][]logic.Sentence, 0, len(clauses))
	for _, c := range clauses {
		if or, ok := c.(*logic.Or); ok {
			out = append(out, or.Operands)
			continue
		}
		out = append(out, []logic.Sentence{c})
	}
	return out
}

// hornFromCNF converts CNF clauses to horn clauses. A clause with one
// positive literal becomes a rule; none becomes a constraint. With more
// positives, either a disjunctive head is produced (when allowed) or the
// last positive is kept as head and the rest are demoted to negated body
// literals, with a diagnostic marking the weakening.
func hornFromCNF(clauses [][]logic.Sentence, opts Options) ([]Clause, []logic.Diagnostic) {
	var out []Clause
	var diags []logic.Diagnostic
	for _, lits := range clauses {
		var positives []*logic.Term
		var body []Literal
		bad := false
		for _, lit := range lits {
			atom, negated, ok := splitLiteral(lit)
			if !ok {
				diags = append(diags, logic.Diagf(logic.CodeUnsupportedConstraintShape, lit,
					"cannot lower %s to a clause literal", lit))
				bad = true
				break
			}
			if negated {
				body = append(body, Pos(atom))
			} else {
				positives = append(positives, atom)
			}
		}
		if bad {
			continue
		}
		switch {
		case len(positives) == 0:
			if !opts.AllowConstraints {
				diags = append(diags, logic.Diagf(logic.CodeUnsupportedConstraintShape, nil,
					"clause has no positive literal and constraints are not supported"))
				continue
			}
			out = append(out, Clause{Body: body})
		case len(positives) == 1:
			out = append(out, Clause{Heads: positives, Body: body})
		default:
			if opts.DisjunctiveHeads {
				out = append(out, Clause{Heads: positives, Body: body})
				continue
			}
			head := positives[len(positives)-1]
			for _, p := range positives[:len(positives)-1] {
				body = append(body, Neg(p))
			}
			diags = append(diags, logic.Diagf(logic.CodeUnsupportedConstraintShape, head,
				"disjunctive conclusion weakened to a single head %s", head.Predicate))
			out = append(out, Clause{Heads: []*logic.Term{head}, Body: body})
		}
	}
	return out, diags
}

// splitLiteral decomposes a CNF literal into its atom and sign. Residual
// existential quantifiers in literal position are stripped.
func splitLiteral(s logic.Sentence) (*logic.Term, bool, bool) {
	switch x := s.(type) {
	case *logic.Term:
		return x, false, true
	case *logic.Not:
		if t, ok := x.Operand.(*logic.Term); ok {
			return t, true, true
		}
		if e, ok := x.Operand.(*logic.Exists); ok {
			return splitNegatedExists(e)
		}
	case *logic.Exists:
		if t, ok := x.Body.(*logic.Term); ok {
			return t, false, true
		}
	}
	return nil, false, false
}

func splitNegatedExists(e *logic.Exists) (*logic.Term, bool, bool) {
	if t, ok := e.Body.(*logic.Term); ok {
		return t, true, true
	}
	return nil, false, false
}
