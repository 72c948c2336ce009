package backend

import (
	"strings"

	"folio/pkg/horn"
	"folio/pkg/logic"
)

// SouffleOptions tunes the Souffle emitter.
type SouffleOptions struct {
	// EmitOutputDirectives appends a .output directive per declared
	// predicate so running the program materializes every relation.
	EmitOutputDirectives bool `yaml:"emit_output_directives" json:"emit_output_directives"`
}

// DefaultSouffleOptions emits no .output directives.
func DefaultSouffleOptions() SouffleOptions {
	return SouffleOptions{}
}

// Souffle renders theories as Souffle datalog: .type aliases, .decl
// relation declarations, rules with bang negation, and double-quoted
// symbol constants. Predicate casing is preserved.
type Souffle struct {
	opts SouffleOptions
}

// NewSouffle builds a Souffle emitter.
func NewSouffle(opts SouffleOptions) *Souffle {
	return &Souffle{opts: opts}
}

// Format implements Compiler.
func (s *Souffle) Format() Format { return FormatSouffle }

func (s *Souffle) normalizeOptions() horn.Options {
	return horn.Options{}
}

// CompileTheory implements Compiler.
func (s *Souffle) CompileTheory(th *logic.Theory) (Result, error) {
	var b strings.Builder
	var diags []logic.Diagnostic
	for _, name := range th.Registry.TypeNames() {
		line, d := s.typeDirective(th.Registry, name)
		diags = append(diags, d...)
		b.WriteString(line + "\n")
	}
	if len(th.Registry.TypeNames()) > 0 {
		b.WriteString("\n")
	}
	for _, def := range th.Registry.Predicates() {
		b.WriteString(s.declDirective(th.Registry, def) + "\n")
	}
	for _, g := range th.Groups {
		b.WriteString("\n// " + g.Name + "\n\n")
		diags = s.writeGroup(&b, g, diags)
	}
	if len(th.Facts) > 0 {
		b.WriteString("\n// Facts\n\n")
		for _, f := range th.Facts {
			line, err := RenderTerm(f, SouffleStyle())
			if err != nil {
				d := logic.Diagf(diagCode(err), f, "%v", err)
				diags = append(diags, d)
				b.WriteString("// skipped (" + string(d.Code) + "): " + d.Message + "\n")
				continue
			}
			b.WriteString(line + ".\n")
		}
	}
	if s.opts.EmitOutputDirectives {
		b.WriteString("\n")
		for _, def := range th.Registry.Predicates() {
			b.WriteString(".output " + def.Predicate + "\n")
		}
	}
	return Result{Text: b.String(), Diagnostics: diags}, nil
}

// CompileGroup implements Compiler.
func (s *Souffle) CompileGroup(_ *logic.Theory, g *logic.SentenceGroup) (Result, error) {
	var b strings.Builder
	diags := s.writeGroup(&b, g, nil)
	return Result{Text: b.String(), Diagnostics: diags}, nil
}

func (s *Souffle) writeGroup(b *strings.Builder, g *logic.SentenceGroup, diags []logic.Diagnostic) []logic.Diagnostic {
	for _, sent := range g.Sentences {
		clauses, sentenceDiags := horn.NormalizeSentence(sent, s.normalizeOptions())
		for _, d := range sentenceDiags {
			d.Group = g.Name
			diags = append(diags, d)
			b.WriteString("// skipped (" + string(d.Code) + "): " + d.Message + "\n")
		}
		for _, c := range clauses {
			line, err := RenderClause(c, SouffleStyle())
			if err != nil {
				d := logic.Diagf(diagCode(err), c.Sentence(), "%v", err)
				d.Group = g.Name
				diags = append(diags, d)
				b.WriteString("// skipped (" + string(d.Code) + "): " + d.Message + "\n")
				continue
			}
			b.WriteString(line + "\n")
		}
	}
	return diags
}

// typeDirective renders .type Alias = scalar | scalar, resolving every
// alternative down to Souffle's two scalar kinds.
func (s *Souffle) typeDirective(reg *logic.Registry, name string) (string, []logic.Diagnostic) {
	def, _ := reg.Type(name)
	var diags []logic.Diagnostic
	var scalars []string
	seen := map[string]bool{}
	for _, alt := range def.Alternatives {
		primitives, err := reg.ResolveType(alt)
		if err != nil {
			diags = append(diags, logic.Diagf(logic.CodeUnknownType, nil, "type %s: %v", name, err))
			primitives = []string{logic.TypeStr}
		}
		for _, p := range primitives {
			scalar := souffleScalar(p)
			if !seen[scalar] {
				seen[scalar] = true
				scalars = append(scalars, scalar)
			}
		}
	}
	return ".type " + Capitalize(name) + " = " + strings.Join(scalars, " | "), diags
}

func (s *Souffle) declDirective(reg *logic.Registry, def *logic.PredicateDefinition) string {
	args := make([]string, len(def.Args))
	for i, a := range def.Args {
		args[i] = strings.ToLower(a.Name) + ": " + s.refType(reg, a.Type)
	}
	return ".decl " + def.Predicate + "(" + strings.Join(args, ", ") + ")"
}

// refType renders an argument type reference: declared aliases keep their
// capitalized name, primitives map to scalars, anything else is symbol.
func (s *Souffle) refType(reg *logic.Registry, name string) string {
	if name == "" {
		return "symbol"
	}
	if _, ok := reg.Type(name); ok {
		return Capitalize(name)
	}
	return souffleScalar(name)
}

// souffleScalar maps a primitive type to Souffle's scalar kinds: numeric
// types become number, everything else symbol.
func souffleScalar(primitive string) string {
	switch primitive {
	case logic.TypeInt, logic.TypeFloat:
		return "number"
	}
	return "symbol"
}
