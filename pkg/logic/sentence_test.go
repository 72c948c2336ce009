package logic

import (
	"testing"

	"github.com/google/go-cmp/cmp"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSentenceString(t *testing.T) {
	tests := []struct {
		name string
		s    Sentence
		want string
	}{
		{
			name: "ground term",
			s:    NewTerm("Link", String("CA"), String("OR")),
			want: "Link('CA', 'OR')",
		},
		{
			name: "zero arg term",
			s:    NewTerm("Rains"),
			want: "Rains",
		},
		{
			name: "variable",
			s:    NewVar("x"),
			want: "?x",
		},
		{
			name: "typed variable",
			s:    NewTypedVar("x", "city"),
			want: "?x:city",
		},
		{
			name: "mixed scalar values",
			s:    NewTerm("Reading", Integer(42), Float(1.5), Boolean(true), Null{}),
			want: "Reading(42, 1.5, true, null)",
		},
		{
			name: "nested term argument",
			s:    NewTerm("Owns", String("ann"), NewTerm("Pair", Integer(1), Integer(2))),
			want: "Owns('ann', Pair(1, 2))",
		},
		{
			name: "negation",
			s:    NewNot(NewTerm("Blocked", NewVar("x"))),
			want: "not(Blocked(?x))",
		},
		{
			name: "conjunction",
			s:    NewAnd(NewTerm("A"), NewTerm("B"), NewTerm("C")),
			want: "(A & B & C)",
		},
		{
			name: "empty conjunction",
			s:    NewAnd(),
			want: "true",
		},
		{
			name: "empty disjunction",
			s:    NewOr(),
			want: "false",
		},
		{
			name: "implication",
			s:    NewImplies(NewTerm("Link", NewVar("x"), NewVar("y")), NewTerm("Path", NewVar("x"), NewVar("y"))),
			want: "(Link(?x, ?y) -> Path(?x, ?y))",
		},
		{
			name: "biconditional",
			s:    NewIff(NewTerm("On"), NewNot(NewTerm("Off"))),
			want: "(On <-> not(Off))",
		},
		{
			name: "universal quantifier",
			s: NewForall([]*Variable{NewVar("x"), NewVar("y")},
				NewTerm("Edge", NewVar("x"), NewVar("y"))),
			want: "forall x, y: Edge(?x, ?y)",
		},
		{
			name: "existential quantifier",
			s:    NewExists([]*Variable{NewVar("h")}, NewTerm("Hub", NewVar("h"))),
			want: "exists h: Hub(?h)",
		},
		{
			name: "probability wrapper",
			s:    &Probability{Weight: 0.4, That: NewTerm("Heads", NewVar("c"))},
			want: "0.4::Heads(?c)",
		},
		{
			name: "evidence wrapper",
			s:    &Evidence{That: NewTerm("Heads", String("c1")), Truth: false},
			want: "evidence(Heads('c1'), false)",
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if diff := cmp.Diff(tt.want, tt.s.String()); diff != "" {
				t.Errorf("String() mismatch (-want +got):\n%s", diff)
			}
		})
	}
}

func TestEqual(t *testing.T) {
	rule := NewImplies(NewTerm("Link", NewVar("x")), NewTerm("Path", NewVar("x")))
	tests := []struct {
		name string
		a, b Sentence
		want bool
	}{
		{"identical terms", NewTerm("p", String("a")), NewTerm("p", String("a")), true},
		{"different predicates", NewTerm("p"), NewTerm("q"), false},
		{"different arity", NewTerm("p", Integer(1)), NewTerm("p", Integer(1), Integer(2)), false},
		{"integer is not float", NewTerm("p", Integer(1)), NewTerm("p", Float(1)), false},
		{"same implication rebuilt", rule, NewImplies(NewTerm("Link", NewVar("x")), NewTerm("Path", NewVar("x"))), true},
		{"operand order matters", NewAnd(NewTerm("a"), NewTerm("b")), NewAnd(NewTerm("b"), NewTerm("a")), false},
		{"domain distinguishes variables", NewTypedVar("x", "city"), NewVar("x"), false},
		{"different quantifier binders", NewForall([]*Variable{NewVar("x")}, NewTerm("p")), NewForall([]*Variable{NewVar("y")}, NewTerm("p")), false},
		{"both nil", nil, nil, true},
		{"one nil", nil, NewTerm("p"), false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, Equal(tt.a, tt.b))
		})
	}
}

func TestSubstitute(t *testing.T) {
	rule := NewImplies(
		NewTerm("Link", NewVar("x"), NewVar("y")),
		NewTerm("Path", NewVar("x"), NewVar("y")),
	)
	got := Substitute(rule, map[string]Value{"x": String("CA")})
	want := NewImplies(
		NewTerm("Link", String("CA"), NewVar("y")),
		NewTerm("Path", String("CA"), NewVar("y")),
	)
	require.True(t, Equal(want, got), "Substitute() = %s, want %s", got, want)

	// the input sentence is left untouched
	assert.True(t, Equal(rule, NewImplies(
		NewTerm("Link", NewVar("x"), NewVar("y")),
		NewTerm("Path", NewVar("x"), NewVar("y")),
	)))
}

func TestSubstituteRespectsBinders(t *testing.T) {
	q := NewForall([]*Variable{NewVar("x"), NewVar("y")},
		NewTerm("Edge", NewVar("x"), NewVar("y")))
	got := Substitute(q, map[string]Value{"y": String("OR")})
	want := NewForall([]*Variable{NewVar("x")},
		NewTerm("Edge", NewVar("x"), String("OR")))
	require.True(t, Equal(want, got), "Substitute() = %s, want %s", got, want)

	// binding every variable leaves an unquantified body
	all := Substitute(q, map[string]Value{"x": String("CA"), "y": String("OR")})
	assert.True(t, Equal(NewTerm("Edge", String("CA"), String("OR")), all), "got %s", all)
}

func TestFreeVars(t *testing.T) {
	s := NewForall([]*Variable{NewVar("x")},
		NewImplies(
			NewTerm("Link", NewVar("x"), NewVar("y")),
			NewTerm("Path", NewVar("x"), NewVar("y")),
		))
	want := map[string]bool{"x": true, "y": true}
	if diff := cmp.Diff(want, FreeVars(s)); diff != "" {
		t.Errorf("FreeVars() mismatch (-want +got):\n%s", diff)
	}
}

func TestIsGround(t *testing.T) {
	assert.True(t, IsGround(NewTerm("Link", String("CA"), String("OR"))))
	assert.True(t, IsGround(NewTerm("Pair", NewTerm("Point", Integer(1), Integer(2)))))
	assert.False(t, IsGround(NewTerm("Link", NewVar("x"), String("OR"))))
	assert.False(t, IsGround(NewTerm("Pair", NewTerm("Point", NewVar("p")))))
}

func TestCollectTerms(t *testing.T) {
	s := NewImplies(
		NewAnd(
			NewTerm("Link", NewVar("x"), NewVar("y")),
			NewTerm("Alive", NewVar("y")),
		),
		NewTerm("Path", NewVar("x"), NewTerm("Hop", NewVar("y"))),
	)
	var names []string
	for _, tm := range CollectTerms(s) {
		names = append(names, tm.Predicate)
	}
	want := []string{"Link", "Alive", "Path", "Hop"}
	if diff := cmp.Diff(want, names); diff != "" {
		t.Errorf("CollectTerms() predicates mismatch (-want +got):\n%s", diff)
	}
}

func TestBuiltins(t *testing.T) {
	assert.True(t, IsBuiltin("ge"))
	assert.True(t, IsBuiltin("add"))
	assert.False(t, IsBuiltin("Link"))

	assert.True(t, IsComparison("lt"))
	assert.False(t, IsComparison("add"))

	sym, ok := InfixSymbol("le")
	require.True(t, ok)
	assert.Equal(t, "<=", sym)

	assert.Equal(t, "ge(?v, 90)", Ge(NewVar("v"), Integer(90)).String())
	assert.Equal(t, "eq(?a, ?b)", Eq(NewVar("a"), NewVar("b")).String())
}
