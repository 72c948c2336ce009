package backend

import (
	"strconv"
	"strings"

	"folio/pkg/horn"
	"folio/pkg/logic"
)

// ProbLogOptions tunes the ProbLog emitter.
type ProbLogOptions struct {
	// EmitQueries appends a query directive per declared predicate.
	EmitQueries bool `yaml:"emit_queries" json:"emit_queries"`
}

// DefaultProbLogOptions emits query directives.
func DefaultProbLogOptions() ProbLogOptions {
	return ProbLogOptions{EmitQueries: true}
}

// ProbLog renders theories as ProbLog programs. Probability wrappers
// become weighted clauses, evidence declarations become evidence/2 lines,
// and every declared predicate is queried so inference reports its
// marginals. Disjunctive heads are kept, since ProbLog accepts annotated
// disjunctions.
type ProbLog struct {
	opts ProbLogOptions
}

// NewProbLog builds a ProbLog emitter.
func NewProbLog(opts ProbLogOptions) *ProbLog {
	return &ProbLog{opts: opts}
}

// Format implements Compiler.
func (p *ProbLog) Format() Format { return FormatProbLog }

func (p *ProbLog) normalizeOptions() horn.Options {
	return horn.Options{DisjunctiveHeads: true}
}

// CompileTheory implements Compiler.
func (p *ProbLog) CompileTheory(th *logic.Theory) (Result, error) {
	var b strings.Builder
	var diags []logic.Diagnostic
	for _, g := range th.Groups {
		diags = p.writeGroup(&b, g, diags)
	}
	for _, f := range th.Facts {
		line, err := RenderTerm(f, ProbLogStyle())
		if err != nil {
			d := logic.Diagf(diagCode(err), f, "%v", err)
			diags = append(diags, d)
			b.WriteString(skipComment(d))
			continue
		}
		b.WriteString(line + ".\n")
	}
	if p.opts.EmitQueries {
		for _, def := range th.Registry.Predicates() {
			b.WriteString(queryDirective(def) + "\n")
		}
	}
	return Result{Text: b.String(), Diagnostics: diags}, nil
}

// CompileGroup implements Compiler.
func (p *ProbLog) CompileGroup(_ *logic.Theory, g *logic.SentenceGroup) (Result, error) {
	var b strings.Builder
	diags := p.writeGroup(&b, g, nil)
	return Result{Text: b.String(), Diagnostics: diags}, nil
}

func (p *ProbLog) writeGroup(b *strings.Builder, g *logic.SentenceGroup, diags []logic.Diagnostic) []logic.Diagnostic {
	for _, s := range g.Sentences {
		diags = p.writeSentence(b, g.Name, s, diags)
	}
	return diags
}

func (p *ProbLog) writeSentence(b *strings.Builder, group string, s logic.Sentence, diags []logic.Diagnostic) []logic.Diagnostic {
	switch x := s.(type) {
	case *logic.Probability:
		return p.writeWeighted(b, group, x, diags)
	case *logic.Evidence:
		return p.writeEvidence(b, group, x, diags)
	}
	return p.writeClauses(b, group, s, "", diags)
}

// writeWeighted lowers the wrapped sentence and prefixes every resulting
// clause with the weight.
func (p *ProbLog) writeWeighted(b *strings.Builder, group string, prob *logic.Probability, diags []logic.Diagnostic) []logic.Diagnostic {
	prefix := strconv.FormatFloat(prob.Weight, 'g', -1, 64) + "::"
	return p.writeClauses(b, group, prob.That, prefix, diags)
}

func (p *ProbLog) writeClauses(b *strings.Builder, group string, s logic.Sentence, prefix string, diags []logic.Diagnostic) []logic.Diagnostic {
	clauses, sentenceDiags := horn.NormalizeSentence(s, p.normalizeOptions())
	for _, d := range sentenceDiags {
		d.Group = group
		diags = append(diags, d)
		b.WriteString(skipComment(d))
	}
	for _, c := range clauses {
		line, err := RenderClause(c, ProbLogStyle())
		if err != nil {
			d := logic.Diagf(diagCode(err), c.Sentence(), "%v", err)
			d.Group = group
			diags = append(diags, d)
			b.WriteString(skipComment(d))
			continue
		}
		b.WriteString(prefix + line + "\n")
	}
	return diags
}

// writeEvidence renders evidence(atom, truth). A negated atom flips the
// truth value instead of rendering the negation.
func (p *ProbLog) writeEvidence(b *strings.Builder, group string, ev *logic.Evidence, diags []logic.Diagnostic) []logic.Diagnostic {
	that, truth := ev.That, ev.Truth
	if n, ok := that.(*logic.Not); ok {
		that = n.Operand
		truth = !truth
	}
	atom, ok := that.(*logic.Term)
	if !ok {
		d := logic.Diagf(logic.CodeUnsupportedConstraintShape, ev,
			"evidence must wrap a single atom, got %s", ev.That)
		d.Group = group
		diags = append(diags, d)
		b.WriteString(skipComment(d))
		return diags
	}
	line, err := RenderTerm(atom, ProbLogStyle())
	if err != nil {
		d := logic.Diagf(diagCode(err), ev, "%v", err)
		d.Group = group
		diags = append(diags, d)
		b.WriteString(skipComment(d))
		return diags
	}
	b.WriteString("evidence(" + line + ", " + strconv.FormatBool(truth) + ").\n")
	return diags
}
