package solver

import (
	"fmt"
	"math"
	"strings"

	"github.com/google/mangle/ast"

	"folio/pkg/logic"
)

// constantValue decompiles a Mangle constant back into an IR literal.
// Booleans come back from the /true and /false name constants; other name
// constants degrade to their symbol text.
func constantValue(c ast.Constant) (logic.Value, error) {
	switch c.Type {
	case ast.StringType:
		return logic.String(c.Symbol), nil
	case ast.NameType:
		switch c.Symbol {
		case "/true":
			return logic.Boolean(true), nil
		case "/false":
			return logic.Boolean(false), nil
		}
		return logic.String(strings.TrimPrefix(c.Symbol, "/")), nil
	case ast.NumberType:
		return logic.Integer(c.NumValue), nil
	case ast.Float64Type:
		return logic.Float(math.Float64frombits(uint64(c.NumValue))), nil
	}
	return nil, fmt.Errorf("constant %s has no IR equivalent", c)
}

// valueConstant compiles an IR literal into a Mangle constant. Variables,
// nested terms, and nulls never appear in derived facts, so only scalar
// literals convert.
func valueConstant(v logic.Value) (ast.Constant, error) {
	switch x := v.(type) {
	case logic.String:
		return ast.String(string(x)), nil
	case logic.Integer:
		return ast.Number(int64(x)), nil
	case logic.Float:
		return ast.Float64(float64(x)), nil
	case logic.Boolean:
		if bool(x) {
			return ast.TrueConstant, nil
		}
		return ast.FalseConstant, nil
	}
	return ast.Constant{}, fmt.Errorf("value %v has no Mangle constant form", v)
}

// factAtom compiles an IR ground term into a store atom under Mangle's
// lowercase predicate convention.
func factAtom(t *logic.Term) (ast.Atom, error) {
	sym := ast.PredicateSym{Symbol: strings.ToLower(t.Predicate), Arity: len(t.Args)}
	args := make([]ast.BaseTerm, len(t.Args))
	for i, a := range t.Args {
		c, err := valueConstant(a)
		if err != nil {
			return ast.Atom{}, fmt.Errorf("fact %s argument %d: %w", t.Predicate, i, err)
		}
		args[i] = c
	}
	return ast.Atom{Predicate: sym, Args: args}, nil
}

// factTerm rebuilds an IR ground term from a store atom, restoring the
// predicate casing the theory declared.
func factTerm(atom ast.Atom, predCase map[string]string) (*logic.Term, error) {
	name := atom.Predicate.Symbol
	if declared, ok := predCase[name]; ok {
		name = declared
	}
	args := make([]logic.Value, len(atom.Args))
	for i, a := range atom.Args {
		c, ok := a.(ast.Constant)
		if !ok {
			return nil, fmt.Errorf("derived fact %s argument %d is not a constant", name, i)
		}
		v, err := constantValue(c)
		if err != nil {
			return nil, fmt.Errorf("derived fact %s argument %d: %w", name, i, err)
		}
		args[i] = v
	}
	return logic.NewTerm(name, args...), nil
}
