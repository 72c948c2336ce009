package backend

import (
	"testing"

	"github.com/google/go-cmp/cmp"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"folio/pkg/logic"
)

func TestTPTPCompileTheory(t *testing.T) {
	th := logic.NewTheory("reachability")
	x, y := logic.NewVar("x"), logic.NewVar("y")
	th.AddGroup(&logic.SentenceGroup{
		Name: "Axioms",
		Kind: logic.GroupAxiom,
		Sentences: []logic.Sentence{
			logic.NewForall([]*logic.Variable{x, y},
				logic.NewImplies(logic.NewTerm("Link", x, y), logic.NewTerm("Path", x, y))),
		},
	})
	th.AddGroup(&logic.SentenceGroup{
		Name:      "Conjectures",
		Kind:      logic.GroupGoal,
		Sentences: []logic.Sentence{logic.NewTerm("Path", logic.String("CA"), logic.String("WA"))},
	})
	require.NoError(t, th.AddFact(logic.NewTerm("Link", logic.String("CA"), logic.String("WA"))))

	res, err := NewTPTP().CompileTheory(th)
	require.NoError(t, err)
	require.Empty(t, res.Diagnostics)

	want := `% Problem: reachability
fof(axiom1, axiom, ! [X, Y] : (link(X, Y) => path(X, Y))).
fof(goal1, conjecture, path('CA', 'WA')).
fof(axiom2, axiom, link('CA', 'WA')).
`
	if diff := cmp.Diff(want, res.Text); diff != "" {
		t.Errorf("tptp output mismatch (-want +got):\n%s", diff)
	}
}

func TestTPTPConnectives(t *testing.T) {
	x := logic.NewVar("x")
	g := &logic.SentenceGroup{
		Name: "Mixed",
		Sentences: []logic.Sentence{
			logic.NewExists([]*logic.Variable{x},
				logic.NewAnd(logic.NewTerm("Set", x), logic.NewNot(logic.NewTerm("Empty", x)))),
			logic.NewIff(logic.NewTerm("On"), logic.NewTerm("Powered")),
			logic.NewOr(),
		},
	}

	res, err := NewTPTP().CompileGroup(nil, g)
	require.NoError(t, err)
	require.Empty(t, res.Diagnostics)
	assert.Contains(t, res.Text, "fof(axiom1, axiom, ? [X] : (set(X) & ~empty(X))).\n")
	assert.Contains(t, res.Text, "fof(axiom2, axiom, (on <=> powered)).\n")
	assert.Contains(t, res.Text, "fof(axiom3, axiom, $false).\n")
}

func TestTPTPRejectsProbability(t *testing.T) {
	g := &logic.SentenceGroup{
		Name: "Chances",
		Sentences: []logic.Sentence{
			&logic.Probability{Weight: 0.5, That: logic.NewTerm("Heads")},
		},
	}

	res, err := NewTPTP().CompileGroup(nil, g)
	require.NoError(t, err)
	require.Len(t, res.Diagnostics, 1)
	assert.Equal(t, logic.CodeUnsupportedConstraintShape, res.Diagnostics[0].Code)
	assert.Contains(t, res.Diagnostics[0].Message, "no TPTP form")
	assert.Contains(t, res.Text, "% skipped")
}
