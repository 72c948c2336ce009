package logic

// Builtin comparison and arithmetic predicates. They carry no declaration,
// are exempt from arity checking, and render infix in clause bodies.
var builtinInfix = map[string]string{
	"eq":  "==",
	"ne":  "!=",
	"lt":  "<",
	"le":  "<=",
	"gt":  ">",
	"ge":  ">=",
	"add": "+",
	"sub": "-",
	"mul": "*",
	"div": "/",
	"mod": "%",
}

// IsBuiltin reports whether name is a builtin predicate.
func IsBuiltin(name string) bool {
	_, ok := builtinInfix[name]
	return ok
}

// IsComparison reports whether name is a builtin comparison predicate.
func IsComparison(name string) bool {
	switch name {
	case "eq", "ne", "lt", "le", "gt", "ge":
		return true
	}
	return false
}

// InfixSymbol returns the default infix rendering of a builtin predicate.
func InfixSymbol(name string) (string, bool) {
	sym, ok := builtinInfix[name]
	return sym, ok
}

// Comparison convenience constructors.

// Eq builds a == b.
func Eq(a, b Value) *Term { return NewTerm("eq", a, b) }

// Ne builds a != b.
func Ne(a, b Value) *Term { return NewTerm("ne", a, b) }

// Lt builds a < b.
func Lt(a, b Value) *Term { return NewTerm("lt", a, b) }

// Le builds a <= b.
func Le(a, b Value) *Term { return NewTerm("le", a, b) }

// Gt builds a > b.
func Gt(a, b Value) *Term { return NewTerm("gt", a, b) }

// Ge builds a >= b.
func Ge(a, b Value) *Term { return NewTerm("ge", a, b) }
