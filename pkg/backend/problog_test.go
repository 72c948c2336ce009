package backend

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"folio/pkg/logic"
)

func TestProbLogWeightedClauses(t *testing.T) {
	th := logic.NewTheory("coins")
	require.NoError(t, th.Registry.DeclarePredicate(&logic.PredicateDefinition{
		Predicate: "Heads",
		Args:      []logic.ArgSpec{{Name: "coin", Type: "str"}},
	}))
	c := logic.NewVar("c")
	th.Add(
		&logic.Probability{
			Weight: 0.4,
			That: logic.NewForall([]*logic.Variable{c},
				logic.NewImplies(logic.NewTerm("Coin", c), logic.NewTerm("Heads", c))),
		},
		&logic.Probability{Weight: 0.6, That: logic.NewTerm("Flip", logic.String("c2"))},
	)
	require.NoError(t, th.AddFact(logic.NewTerm("Coin", logic.String("c1"))))

	res, err := NewProbLog(DefaultProbLogOptions()).CompileTheory(th)
	require.NoError(t, err)
	require.Empty(t, res.Diagnostics)
	assert.Contains(t, res.Text, "0.4::heads(C) :- coin(C).\n")
	assert.Contains(t, res.Text, `0.6::flip("c2").`+"\n")
	assert.Contains(t, res.Text, `coin("c1").`+"\n")
	assert.Contains(t, res.Text, "query(heads(Coin)).\n")
}

func TestProbLogEvidence(t *testing.T) {
	th := logic.NewTheory("coins")
	th.Add(
		&logic.Evidence{That: logic.NewTerm("Heads", logic.String("c1")), Truth: true},
		&logic.Evidence{That: logic.NewNot(logic.NewTerm("Heads", logic.String("c2"))), Truth: true},
	)

	res, err := NewProbLog(ProbLogOptions{}).CompileTheory(th)
	require.NoError(t, err)
	require.Empty(t, res.Diagnostics)
	assert.Contains(t, res.Text, `evidence(heads("c1"), true).`+"\n")
	assert.Contains(t, res.Text, `evidence(heads("c2"), false).`+"\n")
}

func TestProbLogEvidenceRejectsCompoundSentences(t *testing.T) {
	th := logic.NewTheory("coins")
	th.Add(&logic.Evidence{
		That:  logic.NewAnd(logic.NewTerm("A"), logic.NewTerm("B")),
		Truth: true,
	})

	res, err := NewProbLog(ProbLogOptions{}).CompileTheory(th)
	require.NoError(t, err)
	require.Len(t, res.Diagnostics, 1)
	assert.Equal(t, logic.CodeUnsupportedConstraintShape, res.Diagnostics[0].Code)
	assert.Contains(t, res.Diagnostics[0].Message, "single atom")
	assert.Contains(t, res.Text, "% skipped")
}

func TestProbLogKeepsDisjunctiveHeads(t *testing.T) {
	x := logic.NewVar("x")
	th := logic.NewTheory("coins")
	th.Add(logic.NewForall([]*logic.Variable{x},
		logic.NewImplies(logic.NewTerm("Coin", x),
			logic.NewOr(logic.NewTerm("Heads", x), logic.NewTerm("Tails", x)))))

	res, err := NewProbLog(ProbLogOptions{}).CompileTheory(th)
	require.NoError(t, err)
	require.Empty(t, res.Diagnostics)
	assert.Contains(t, res.Text, "heads(X); tails(X) :- coin(X).\n")
}
