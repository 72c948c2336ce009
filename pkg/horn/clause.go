// Package horn lowers sentence trees into flat clauses for rule-engine
// backends: guarded conditional ladders are flattened with guard negation,
// body disjunctions are split into separate clauses, and anything outside
// the structural fragment falls back to a CNF pipeline.
package horn

import (
	"strings"

	"folio/pkg/logic"
)

// Literal is one body atom, possibly negated.
type Literal struct {
	Negated bool
	Atom    *logic.Term
}

// Pos builds a positive literal.
func Pos(t *logic.Term) Literal { return Literal{Atom: t} }

// Neg builds a negated literal.
func Neg(t *logic.Term) Literal { return Literal{Negated: true, Atom: t} }

func (l Literal) String() string {
	if l.Negated {
		return "!" + l.Atom.String()
	}
	return l.Atom.String()
}

// Sentence returns the literal as a sentence node.
func (l Literal) Sentence() logic.Sentence {
	if l.Negated {
		return logic.NewNot(l.Atom)
	}
	return l.Atom
}

// Clause is a flat rule: one or more head terms implied by a body of
// literals. Plain rules have exactly one head. No heads marks an
// integrity constraint; several heads form a disjunctive rule, which only
// some backends accept.
type Clause struct {
	Heads []*logic.Term
	Body  []Literal
}

// Head returns the single head of a plain rule, or nil for constraints.
func (c *Clause) Head() *logic.Term {
	if len(c.Heads) == 0 {
		return nil
	}
	return c.Heads[0]
}

// IsFact reports whether the clause is a bodiless single-head rule.
func (c *Clause) IsFact() bool {
	return len(c.Heads) == 1 && len(c.Body) == 0
}

// IsConstraint reports whether the clause has no head.
func (c *Clause) IsConstraint() bool { return len(c.Heads) == 0 }

// Sentence rebuilds the clause as a sentence tree: facts become bare
// terms, rules become implications, and constraints become negations.
func (c *Clause) Sentence() logic.Sentence {
	body := c.bodySentence()
	switch {
	case c.IsConstraint():
		return logic.NewNot(body)
	case len(c.Body) == 0 && len(c.Heads) == 1:
		return c.Heads[0]
	}
	var head logic.Sentence
	if len(c.Heads) == 1 {
		head = c.Heads[0]
	} else {
		ops := make([]logic.Sentence, len(c.Heads))
		for i, h := range c.Heads {
			ops[i] = h
		}
		head = logic.NewOr(ops...)
	}
	return logic.NewImplies(body, head)
}

func (c *Clause) bodySentence() logic.Sentence {
	if len(c.Body) == 1 {
		return c.Body[0].Sentence()
	}
	ops := make([]logic.Sentence, len(c.Body))
	for i, l := range c.Body {
		ops[i] = l.Sentence()
	}
	return logic.NewAnd(ops...)
}

func (c *Clause) String() string {
	var heads []string
	for _, h := range c.Heads {
		heads = append(heads, h.String())
	}
	head := strings.Join(heads, "; ")
	if len(c.Body) == 0 {
		return head + "."
	}
	var body []string
	for _, l := range c.Body {
		body = append(body, l.String())
	}
	if c.IsConstraint() {
		return ":- " + strings.Join(body, ", ") + "."
	}
	return head + " :- " + strings.Join(body, ", ") + "."
}

func (c *Clause) headVars() map[string]bool {
	vars := map[string]bool{}
	for _, h := range c.Heads {
		for name := range logic.FreeVars(h) {
			vars[name] = true
		}
	}
	return vars
}

func (c *Clause) positiveBodyVars() map[string]bool {
	vars := map[string]bool{}
	for _, l := range c.Body {
		if l.Negated {
			continue
		}
		for name := range logic.FreeVars(l.Atom) {
			vars[name] = true
		}
	}
	return vars
}
