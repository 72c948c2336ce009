package solver

import (
	"strings"

	"folio/pkg/backend"
	"folio/pkg/horn"
	"folio/pkg/logic"
)

// renderProgram lowers a theory to clause form and renders it as Mangle
// source. Constraints, disjunctive heads, arithmetic builtins, and null
// arguments have no Mangle rendering; those clauses are skipped with
// diagnostics while the rest of the program still solves.
func renderProgram(th *logic.Theory) (string, []logic.Diagnostic) {
	st := backend.MangleStyle()
	prog, diags := horn.NormalizeTheory(th, horn.DefaultOptions())

	var b strings.Builder
	for _, gc := range prog.Groups {
		for _, c := range gc.Clauses {
			if d, skip := clauseDiagnostic(c, gc.Group.Name); skip {
				diags = append(diags, d)
				continue
			}
			line, err := backend.RenderClause(c, st)
			if err != nil {
				d := logic.Diagf(logic.CodeUnsupportedConstraintShape, c.Sentence(), "%v", err)
				d.Group = gc.Group.Name
				diags = append(diags, d)
				continue
			}
			b.WriteString(line)
			b.WriteByte('\n')
		}
	}
	for _, f := range prog.Facts {
		if hasNullArg(f) {
			diags = append(diags, logic.Diagf(logic.CodeUnsupportedConstraintShape, f,
				"fact %s has a null argument", f))
			continue
		}
		line, err := backend.RenderTerm(f, st)
		if err != nil {
			diags = append(diags, logic.Diagf(logic.CodeUnsupportedConstraintShape, f, "%v", err))
			continue
		}
		b.WriteString(line)
		b.WriteString(".\n")
	}
	return b.String(), diags
}

func clauseDiagnostic(c horn.Clause, group string) (logic.Diagnostic, bool) {
	var d logic.Diagnostic
	switch {
	case c.IsConstraint():
		d = logic.Diagf(logic.CodeUnsupportedConstraintShape, c.Sentence(),
			"integrity constraints cannot be solved here")
	case len(c.Heads) > 1:
		d = logic.Diagf(logic.CodeUnsupportedConstraintShape, c.Sentence(),
			"disjunctive heads cannot be solved here")
	case clauseHasNull(c):
		d = logic.Diagf(logic.CodeUnsupportedConstraintShape, c.Sentence(),
			"null arguments cannot be solved here")
	default:
		return logic.Diagnostic{}, false
	}
	d.Group = group
	return d, true
}

func clauseHasNull(c horn.Clause) bool {
	for _, h := range c.Heads {
		if hasNullArg(h) {
			return true
		}
	}
	for _, l := range c.Body {
		if hasNullArg(l.Atom) {
			return true
		}
	}
	return false
}

func hasNullArg(t *logic.Term) bool {
	for _, a := range t.Args {
		switch x := a.(type) {
		case logic.Null:
			return true
		case *logic.Term:
			if hasNullArg(x) {
				return true
			}
		}
	}
	return false
}
