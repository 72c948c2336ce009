package horn

import (
	"strings"
	"testing"

	"github.com/google/go-cmp/cmp"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"folio/pkg/logic"
)

func TestSimplify(t *testing.T) {
	a, b, c := logic.NewTerm("A"), logic.NewTerm("B"), logic.NewTerm("C")
	tests := []struct {
		name string
		in   logic.Sentence
		want string
	}{
		{"nested conjunction flattens", logic.NewAnd(a, logic.NewAnd(b, c)), "(A & B & C)"},
		{"nested disjunction flattens", logic.NewOr(logic.NewOr(a, b), c), "(A | B | C)"},
		{"single operand collapses", logic.NewAnd(logic.NewOr(a)), "A"},
		{"double negation cancels", logic.NewNot(logic.NewNot(a)), "A"},
		{
			"adjacent quantifiers merge",
			logic.NewForall([]*logic.Variable{logic.NewVar("x")},
				logic.NewForall([]*logic.Variable{logic.NewVar("y")}, a)),
			"forall x, y: A",
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, Simplify(tt.in).String())
		})
	}
}

func TestEliminateConnectives(t *testing.T) {
	a, b := logic.NewTerm("A"), logic.NewTerm("B")
	got := EliminateImplies(EliminateIff(logic.NewIff(a, b)))
	assert.Equal(t, "((not(A) | B) & (not(B) | A))", got.String())
}

func TestPushNegation(t *testing.T) {
	a, b := logic.NewTerm("A"), logic.NewTerm("B")
	x := logic.NewVar("x")
	tests := []struct {
		name string
		in   logic.Sentence
		want string
	}{
		{"de morgan over and", logic.NewNot(logic.NewAnd(a, b)), "(not(A) | not(B))"},
		{"de morgan over or", logic.NewNot(logic.NewOr(a, b)), "(not(A) & not(B))"},
		{
			"negated forall flips to exists",
			logic.NewNot(logic.NewForall([]*logic.Variable{x}, a)),
			"exists x: not(A)",
		},
		{
			"negated exists flips to forall",
			logic.NewNot(logic.NewExists([]*logic.Variable{x}, a)),
			"forall x: not(A)",
		},
		{"negated implication", logic.NewNot(logic.NewImplies(a, b)), "(A & not(B))"},
		{"atoms untouched", logic.NewNot(a), "not(A)"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, PushNegation(tt.in).String())
		})
	}
}

func TestDistributeOrOverAnd(t *testing.T) {
	a, b, c := logic.NewTerm("A"), logic.NewTerm("B"), logic.NewTerm("C")
	got := ToCNF(logic.NewOr(a, logic.NewAnd(b, c)), false)
	assert.Equal(t, "((A | B) & (A | C))", got.String())
}

func TestCNFClauses(t *testing.T) {
	a, b, c := logic.NewTerm("A"), logic.NewTerm("B"), logic.NewTerm("C")
	clauses := CNFClauses(logic.NewImplies(a, logic.NewAnd(b, c)), false)
	require.Len(t, clauses, 2)

	var got []string
	for _, cl := range clauses {
		var lits []string
		for _, l := range cl {
			lits = append(lits, l.String())
		}
		got = append(got, strings.Join(lits, " | "))
	}
	want := []string{"not(A) | B", "not(A) | C"}
	if diff := cmp.Diff(want, got); diff != "" {
		t.Errorf("cnf clauses mismatch (-want +got):\n%s", diff)
	}
}

func TestSkolemize(t *testing.T) {
	x, y := logic.NewVar("x"), logic.NewVar("y")
	s := logic.NewForall([]*logic.Variable{x},
		logic.NewExists([]*logic.Variable{y},
			logic.NewTerm("Parent", x, y)))

	got := Skolemize(s)
	want := logic.NewForall([]*logic.Variable{x},
		logic.NewTerm("Parent", x, logic.NewTerm("sk__1", x)))
	require.True(t, logic.Equal(want, got), "Skolemize() = %s, want %s", got, want)
}

func TestSkolemizeTopLevelExists(t *testing.T) {
	y := logic.NewVar("y")
	s := logic.NewExists([]*logic.Variable{y}, logic.NewTerm("Root", y))

	// no enclosing universals, so the witness is a constant
	got := Skolemize(s)
	want := logic.NewTerm("Root", logic.NewTerm("sk__1"))
	require.True(t, logic.Equal(want, got), "Skolemize() = %s, want %s", got, want)
}

func TestIsSkolemTerm(t *testing.T) {
	assert.True(t, IsSkolemTerm(logic.NewTerm("sk__1", logic.NewVar("x"))))
	assert.True(t, IsSkolemTerm(logic.NewTerm("sk__12")))
	assert.False(t, IsSkolemTerm(logic.NewTerm("skeleton")))
	assert.False(t, IsSkolemTerm(logic.NewTerm("sk__")))
}
