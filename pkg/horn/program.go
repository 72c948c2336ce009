package horn

import (
	"folio/pkg/logic"
)

// GroupClauses pairs a source sentence group with its lowered clauses.
type GroupClauses struct {
	Group   *logic.SentenceGroup
	Clauses []Clause
}

// Program is a theory lowered to clause form, keeping the group structure
// so emitters can label their output sections.
type Program struct {
	Theory *logic.Theory
	Groups []GroupClauses
	// Facts are the theory's ground facts that passed validation.
	Facts []*logic.Term
}

// NormalizeTheory lowers every sentence of the theory. Sentences that
// violate declared arities or fail to lower are skipped and reported;
// everything else is kept, so one bad sentence never poisons the rest of
// the theory.
func NormalizeTheory(th *logic.Theory, opts Options) (*Program, []logic.Diagnostic) {
	program := &Program{Theory: th}
	var diags []logic.Diagnostic
	for _, g := range th.Groups {
		gc := GroupClauses{Group: g}
		for _, s := range g.Sentences {
			if arityDiags := checkArities(th.Registry, s, g.Name); len(arityDiags) > 0 {
				diags = append(diags, arityDiags...)
				continue
			}
			clauses, sentenceDiags := NormalizeSentence(s, opts)
			for i := range sentenceDiags {
				sentenceDiags[i].Group = g.Name
			}
			diags = append(diags, sentenceDiags...)
			gc.Clauses = append(gc.Clauses, clauses...)
		}
		program.Groups = append(program.Groups, gc)
	}
	for _, f := range th.Facts {
		if !logic.IsGround(f) {
			diags = append(diags, logic.Diagf(logic.CodeUnsafeHeadVariable, f,
				"fact %s is not ground", f))
			continue
		}
		if err := th.Registry.CheckTerm(f); err != nil {
			diags = append(diags, logic.Diagf(logic.CodeArityMismatch, f, "%v", err))
			continue
		}
		program.Facts = append(program.Facts, f)
	}
	return program, diags
}

func checkArities(reg *logic.Registry, s logic.Sentence, group string) []logic.Diagnostic {
	var diags []logic.Diagnostic
	for _, t := range logic.CollectTerms(s) {
		if err := reg.CheckTerm(t); err != nil {
			d := logic.Diagf(logic.CodeArityMismatch, s, "%v", err)
			d.Group = group
			diags = append(diags, d)
		}
	}
	return diags
}
