package backend

import (
	"errors"
	"strings"

	"folio/pkg/horn"
	"folio/pkg/logic"
)

// PrologOptions tunes the Prolog emitter.
type PrologOptions struct {
	// DoubleQuoteStrings uses JSON string quoting instead of quoted
	// atoms.
	DoubleQuoteStrings bool `yaml:"double_quote_strings" json:"double_quote_strings"`
	// ParensForZeroArgs renders zero-argument predicates as p().
	ParensForZeroArgs bool `yaml:"parens_for_zero_args" json:"parens_for_zero_args"`
	// AllowSkolemTerms permits skolem functors in emitted clauses.
	AllowSkolemTerms bool `yaml:"allow_skolem_terms" json:"allow_skolem_terms"`
	// EmitQueries appends a query/1 directive per declared predicate.
	EmitQueries bool `yaml:"emit_queries" json:"emit_queries"`
}

// DefaultPrologOptions matches plain SWI-style output.
func DefaultPrologOptions() PrologOptions {
	return PrologOptions{}
}

// Prolog renders theories as Prolog programs: declarations as comments,
// sentences lowered to clauses, facts as unit clauses.
type Prolog struct {
	opts PrologOptions
}

// NewProlog builds a Prolog emitter.
func NewProlog(opts PrologOptions) *Prolog {
	return &Prolog{opts: opts}
}

// Format implements Compiler.
func (p *Prolog) Format() Format { return FormatProlog }

func (p *Prolog) style() Style {
	st := PrologStyle()
	st.DoubleQuoteStrings = p.opts.DoubleQuoteStrings
	st.ParensForZeroArgs = p.opts.ParensForZeroArgs
	st.AllowSkolemTerms = p.opts.AllowSkolemTerms
	return st
}

func (p *Prolog) normalizeOptions() horn.Options {
	return horn.Options{AllowConstraints: true}
}

// CompileTheory implements Compiler.
func (p *Prolog) CompileTheory(th *logic.Theory) (Result, error) {
	var b strings.Builder
	var diags []logic.Diagnostic
	b.WriteString("%% Predicate Definitions\n")
	for _, def := range th.Registry.Predicates() {
		b.WriteString("% " + def.Signature() + "\n")
	}
	for _, g := range th.Groups {
		b.WriteString("\n%% " + g.Name + "\n")
		if g.Doc != "" {
			b.WriteString("% " + g.Doc + "\n")
		}
		b.WriteString("\n")
		diags = p.writeGroup(&b, g, diags)
	}
	if len(th.Facts) > 0 {
		b.WriteString("\n%% Ground Facts\n\n")
		for _, f := range th.Facts {
			diags = p.writeFact(&b, f, diags)
		}
	}
	if p.opts.EmitQueries {
		b.WriteString("\n%% Queries\n\n")
		for _, def := range th.Registry.Predicates() {
			b.WriteString(queryDirective(def) + "\n")
		}
	}
	return Result{Text: b.String(), Diagnostics: diags}, nil
}

// CompileGroup implements Compiler.
func (p *Prolog) CompileGroup(_ *logic.Theory, g *logic.SentenceGroup) (Result, error) {
	var b strings.Builder
	diags := p.writeGroup(&b, g, nil)
	return Result{Text: b.String(), Diagnostics: diags}, nil
}

func (p *Prolog) writeGroup(b *strings.Builder, g *logic.SentenceGroup, diags []logic.Diagnostic) []logic.Diagnostic {
	st := p.style()
	for _, s := range g.Sentences {
		clauses, sentenceDiags := horn.NormalizeSentence(s, p.normalizeOptions())
		for _, d := range sentenceDiags {
			d.Group = g.Name
			diags = append(diags, d)
			b.WriteString(skipComment(d))
		}
		for _, c := range clauses {
			line, err := RenderClause(c, st)
			if err != nil {
				d := logic.Diagf(diagCode(err), c.Sentence(), "%v", err)
				d.Group = g.Name
				diags = append(diags, d)
				b.WriteString(skipComment(d))
				continue
			}
			b.WriteString(line + "\n")
		}
	}
	return diags
}

func (p *Prolog) writeFact(b *strings.Builder, f *logic.Term, diags []logic.Diagnostic) []logic.Diagnostic {
	line, err := RenderTerm(f, p.style())
	if err != nil {
		d := logic.Diagf(diagCode(err), f, "%v", err)
		diags = append(diags, d)
		b.WriteString(skipComment(d))
		return diags
	}
	b.WriteString(line + ".\n")
	return diags
}

// queryDirective renders query(pred(Arg, ...)). with argument names as
// variables.
func queryDirective(def *logic.PredicateDefinition) string {
	args := make([]string, len(def.Args))
	for i, a := range def.Args {
		args[i] = Capitalize(a.Name)
	}
	name := strings.ToLower(def.Predicate)
	if len(args) == 0 {
		return "query(" + name + ")."
	}
	return "query(" + name + "(" + strings.Join(args, ", ") + "))."
}

func skipComment(d logic.Diagnostic) string {
	return "% skipped (" + string(d.Code) + "): " + d.Message + "\n"
}

// diagCode maps a rendering error to its diagnostic code.
func diagCode(err error) logic.DiagnosticCode {
	switch {
	case errors.Is(err, logic.ErrUnsafeHeadVariable):
		return logic.CodeUnsafeHeadVariable
	case errors.Is(err, logic.ErrUnsupportedNegationShape):
		return logic.CodeUnsupportedNegationShape
	case errors.Is(err, logic.ErrArityMismatch):
		return logic.CodeArityMismatch
	}
	return logic.CodeUnsupportedConstraintShape
}
