package backend

import (
	"encoding/json"
	"fmt"
	"strconv"
	"strings"

	"folio/pkg/horn"
	"folio/pkg/logic"
)

// Style fixes the clause-text conventions of one Prolog-family dialect.
// The prolog, souffle, and problog emitters and the in-process solver all
// render through it.
type Style struct {
	// DoubleQuoteStrings renders string constants JSON-quoted instead of
	// as quoted atoms.
	DoubleQuoteStrings bool
	// ParensForZeroArgs renders zero-argument predicates as p().
	ParensForZeroArgs bool
	// PreservePredicateCase keeps declared predicate casing; the default
	// lowercases predicates.
	PreservePredicateCase bool
	// Negation is the prefix of a negated body literal.
	Negation string
	// NegationParens wraps the negated literal in parentheses.
	NegationParens bool
	// InfixBuiltins renders two-argument builtin predicates infix.
	InfixBuiltins bool
	// InfixOverrides replaces the default infix symbol per builtin.
	InfixOverrides map[string]string
	// BuiltinRename renders builtins as renamed call-form atoms when
	// InfixBuiltins is off. Builtins absent from the map fail.
	BuiltinRename map[string]string
	// TrueAtom and FalseAtom override boolean rendering. Empty means
	// plain true/false.
	TrueAtom  string
	FalseAtom string
	// AllowSkolemTerms permits functors introduced by skolemization.
	AllowSkolemTerms bool
}

// PrologStyle is the conventional Prolog dialect: lowercased predicates,
// capitalized variables, quoted atoms, \+ negation.
func PrologStyle() Style {
	return Style{
		Negation:       `\+ `,
		NegationParens: true,
		InfixBuiltins:  true,
	}
}

// SouffleStyle preserves predicate case, double-quotes symbols, and uses
// bang negation with = for equality.
func SouffleStyle() Style {
	return Style{
		DoubleQuoteStrings:    true,
		ParensForZeroArgs:     true,
		PreservePredicateCase: true,
		Negation:              "!",
		InfixBuiltins:         true,
		InfixOverrides:        map[string]string{"eq": "="},
	}
}

// ProbLogStyle is Prolog with double-quoted strings.
func ProbLogStyle() Style {
	st := PrologStyle()
	st.DoubleQuoteStrings = true
	return st
}

// MangleStyle matches the surface syntax of the Mangle datalog engine:
// double-quoted strings, call-form comparison builtins, bang negation,
// booleans as name constants.
func MangleStyle() Style {
	return Style{
		DoubleQuoteStrings: true,
		ParensForZeroArgs:  true,
		Negation:           "!",
		BuiltinRename: map[string]string{
			"lt": ":lt",
			"le": ":le",
			"gt": ":gt",
			"ge": ":ge",
		},
		TrueAtom:  "/true",
		FalseAtom: "/false",
	}
}

// RenderClause renders a clause as a single line of dialect text,
// including the trailing period.
func RenderClause(c horn.Clause, st Style) (string, error) {
	var heads []string
	for _, h := range c.Heads {
		txt, err := RenderTerm(h, st)
		if err != nil {
			return "", err
		}
		heads = append(heads, txt)
	}
	head := strings.Join(heads, "; ")
	if len(c.Body) == 0 {
		if c.IsConstraint() {
			return "", fmt.Errorf("%w: constraint with empty body", logic.ErrUnsupportedConstraintShape)
		}
		return head + ".", nil
	}
	var body []string
	for _, l := range c.Body {
		txt, err := renderLiteral(l, st)
		if err != nil {
			return "", err
		}
		body = append(body, txt)
	}
	if c.IsConstraint() {
		return ":- " + strings.Join(body, ", ") + ".", nil
	}
	return head + " :- " + strings.Join(body, ", ") + ".", nil
}

func renderLiteral(l horn.Literal, st Style) (string, error) {
	atom, err := RenderTerm(l.Atom, st)
	if err != nil {
		return "", err
	}
	if !l.Negated {
		return atom, nil
	}
	if st.NegationParens {
		return st.Negation + "(" + atom + ")", nil
	}
	return st.Negation + atom, nil
}

// RenderTerm renders one term in the dialect, applying infix builtin
// conventions and skolem-term policy.
func RenderTerm(t *logic.Term, st Style) (string, error) {
	if !st.AllowSkolemTerms && strings.HasPrefix(t.Predicate, horn.SkolemPrefix) {
		return "", fmt.Errorf("%w: skolem term %s has no finite representation here",
			logic.ErrUnsupportedConstraintShape, t.Predicate)
	}
	if logic.IsBuiltin(t.Predicate) {
		return renderBuiltin(t, st)
	}
	name := t.Predicate
	if !st.PreservePredicateCase {
		name = strings.ToLower(name)
	}
	if len(t.Args) == 0 {
		if st.ParensForZeroArgs {
			return name + "()", nil
		}
		return name, nil
	}
	args, err := renderArgs(t.Args, st)
	if err != nil {
		return "", err
	}
	return name + "(" + strings.Join(args, ", ") + ")", nil
}

func renderBuiltin(t *logic.Term, st Style) (string, error) {
	if st.InfixBuiltins && len(t.Args) == 2 {
		sym, ok := st.InfixOverrides[t.Predicate]
		if !ok {
			sym, _ = logic.InfixSymbol(t.Predicate)
		}
		args, err := renderArgs(t.Args, st)
		if err != nil {
			return "", err
		}
		return args[0] + " " + sym + " " + args[1], nil
	}
	name, ok := st.BuiltinRename[t.Predicate]
	if !ok {
		if st.InfixBuiltins {
			name = t.Predicate
		} else {
			return "", fmt.Errorf("%w: builtin %s is not supported here",
				logic.ErrUnsupportedConstraintShape, t.Predicate)
		}
	}
	args, err := renderArgs(t.Args, st)
	if err != nil {
		return "", err
	}
	return name + "(" + strings.Join(args, ", ") + ")", nil
}

func renderArgs(args []logic.Value, st Style) ([]string, error) {
	out := make([]string, len(args))
	for i, a := range args {
		txt, err := RenderValue(a, st)
		if err != nil {
			return nil, err
		}
		out[i] = txt
	}
	return out, nil
}

// RenderValue renders a term argument in the dialect.
func RenderValue(v logic.Value, st Style) (string, error) {
	switch x := v.(type) {
	case *logic.Variable:
		return Capitalize(x.Name), nil
	case *logic.Term:
		return RenderTerm(x, st)
	case logic.String:
		if st.DoubleQuoteStrings {
			return jsonQuote(string(x)), nil
		}
		return quoteAtom(string(x)), nil
	case logic.Integer:
		return strconv.FormatInt(int64(x), 10), nil
	case logic.Float:
		return strconv.FormatFloat(float64(x), 'g', -1, 64), nil
	case logic.Boolean:
		if bool(x) && st.TrueAtom != "" {
			return st.TrueAtom, nil
		}
		if !bool(x) && st.FalseAtom != "" {
			return st.FalseAtom, nil
		}
		return strconv.FormatBool(bool(x)), nil
	case logic.Null:
		return "_", nil
	}
	return "", fmt.Errorf("%w: unrenderable value %v", logic.ErrUnsupportedConstraintShape, v)
}

// Capitalize upper-cases the first byte and lower-cases the rest. Clause
// variables and Souffle type names both follow this convention.
func Capitalize(name string) string {
	if name == "" {
		return "_"
	}
	return strings.ToUpper(name[:1]) + strings.ToLower(name[1:])
}

// quoteAtom renders a string as a Prolog atom, quoting unless it already
// has identifier shape.
func quoteAtom(s string) string {
	if isIdentAtom(s) {
		return s
	}
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

func isIdentAtom(s string) bool {
	if s == "" {
		return false
	}
	for i, r := range s {
		if i == 0 {
			if r < 'a' || r > 'z' {
				return false
			}
			continue
		}
		if !isIdentRune(r) {
			return false
		}
	}
	return true
}

func isIdentRune(r rune) bool {
	switch {
	case r >= 'a' && r <= 'z', r >= 'A' && r <= 'Z', r >= '0' && r <= '9', r == '_':
		return true
	}
	return false
}

func jsonQuote(s string) string {
	out, err := json.Marshal(s)
	if err != nil {
		return strconv.Quote(s)
	}
	return string(out)
}
