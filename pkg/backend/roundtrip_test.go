package backend

import (
	"errors"
	"fmt"
	"testing"

	"github.com/google/go-cmp/cmp"
	"github.com/stretchr/testify/require"

	"folio/pkg/logic"
)

// fullTheory builds a theory touching every construct the loss-free
// codecs must carry: type aliases and unions, predicate declarations
// with deliberately scrambled argument order, tagged and untagged
// groups, every sentence form, nested and null-bearing facts, and
// annotations of each scalar and container shape.
func fullTheory(t *testing.T) *logic.Theory {
	t.Helper()
	th := logic.NewTheory("routing demo")
	require.NoError(t, th.Registry.DeclareType("city", logic.Alias("str")))
	require.NoError(t, th.Registry.DeclareType("reading", logic.UnionOf("int", "float")))
	require.NoError(t, th.Registry.DeclarePredicate(&logic.PredicateDefinition{
		Predicate:   "Link",
		Args:        []logic.ArgSpec{{Name: "src", Type: "city"}, {Name: "dst", Type: "city"}},
		Description: "a directed edge",
	}))
	require.NoError(t, th.Registry.DeclarePredicate(&logic.PredicateDefinition{
		Predicate: "Toll",
		Args: []logic.ArgSpec{
			{Name: "dst", Type: "city"},
			{Name: "amount", Type: "reading"},
			{Name: "src", Type: "city"},
		},
		Parents: []string{"Link"},
	}))

	x, y := logic.NewVar("x"), logic.NewVar("y")
	hub := logic.NewVar("h")
	hub.Domain = "city"
	th.AddGroup(&logic.SentenceGroup{
		Name: "Rules",
		Kind: logic.GroupAxiom,
		Doc:  "reachability rules",
		Sentences: []logic.Sentence{
			logic.NewForall([]*logic.Variable{x, y},
				logic.NewImplies(logic.NewTerm("Link", x, y), logic.NewTerm("Path", x, y))),
			logic.NewIff(logic.NewTerm("On"), logic.NewNot(logic.NewTerm("Off"))),
			logic.NewExists([]*logic.Variable{hub}, logic.NewTerm("Hub", hub)),
			logic.NewOr(logic.NewTerm("A"), logic.NewAnd(logic.NewTerm("B"), logic.NewTerm("C"))),
		},
	})
	th.AddGroup(&logic.SentenceGroup{
		Name: "Chances",
		Sentences: []logic.Sentence{
			&logic.Probability{Weight: 0.4, That: logic.NewTerm("Heads", logic.NewVar("c"))},
			&logic.Evidence{That: logic.NewTerm("Heads", logic.String("c1")), Truth: false},
		},
	})
	th.AddGroup(&logic.SentenceGroup{
		Name:      "Checks",
		Kind:      logic.GroupGoal,
		Sentences: []logic.Sentence{logic.NewTerm("Path", logic.String("CA"), logic.String("WA"))},
	})

	require.NoError(t, th.AddFact(logic.NewTerm("Link", logic.String("CA"), logic.String("OR"))))
	require.NoError(t, th.AddFact(logic.NewTerm("Reading",
		logic.Integer(42), logic.Float(2.0), logic.Boolean(true), logic.Null{})))
	require.NoError(t, th.AddFact(logic.NewTerm("Nested",
		logic.NewTerm("Pair", logic.Integer(1), logic.Integer(2)))))

	th.Annotations = map[string]any{
		"author":   "folio",
		"revision": int64(3),
		"tags":     []any{"demo", int64(1), true},
		"meta":     map[string]any{"depth": int64(2)},
	}
	return th
}

// theoryDelta reports the first structural difference between two
// theories. Declaration order counts everywhere; in a write-read cycle
// want is the written theory and got the read one.
func theoryDelta(want, got *logic.Theory) error {
	if want.Name != got.Name {
		return fmt.Errorf("%w: name %q read back as %q", logic.ErrRoundTripMismatch, want.Name, got.Name)
	}
	if diff := cmp.Diff(want.Registry.TypeNames(), got.Registry.TypeNames()); diff != "" {
		return fmt.Errorf("%w: type names (-want +got):\n%s", logic.ErrRoundTripMismatch, diff)
	}
	for _, name := range want.Registry.TypeNames() {
		wd, _ := want.Registry.Type(name)
		gd, _ := got.Registry.Type(name)
		if diff := cmp.Diff(wd.Alternatives, gd.Alternatives); diff != "" {
			return fmt.Errorf("%w: type %s (-want +got):\n%s", logic.ErrRoundTripMismatch, name, diff)
		}
	}
	if diff := cmp.Diff(want.Registry.Predicates(), got.Registry.Predicates()); diff != "" {
		return fmt.Errorf("%w: predicates (-want +got):\n%s", logic.ErrRoundTripMismatch, diff)
	}
	if len(want.Groups) != len(got.Groups) {
		return fmt.Errorf("%w: wrote %d groups, read %d", logic.ErrRoundTripMismatch, len(want.Groups), len(got.Groups))
	}
	for i, wg := range want.Groups {
		gg := got.Groups[i]
		if wg.Name != gg.Name || wg.Kind != gg.Kind || wg.Doc != gg.Doc {
			return fmt.Errorf("%w: group %q read back as %q (%s, %q)",
				logic.ErrRoundTripMismatch, wg.Name, gg.Name, gg.Kind, gg.Doc)
		}
		if len(wg.Sentences) != len(gg.Sentences) {
			return fmt.Errorf("%w: group %q wrote %d sentences, read %d",
				logic.ErrRoundTripMismatch, wg.Name, len(wg.Sentences), len(gg.Sentences))
		}
		for j, ws := range wg.Sentences {
			if !logic.Equal(ws, gg.Sentences[j]) {
				return fmt.Errorf("%w: group %q sentence %d: %s read back as %s",
					logic.ErrRoundTripMismatch, wg.Name, j, ws, gg.Sentences[j])
			}
		}
	}
	if len(want.Facts) != len(got.Facts) {
		return fmt.Errorf("%w: wrote %d facts, read %d", logic.ErrRoundTripMismatch, len(want.Facts), len(got.Facts))
	}
	for i, wf := range want.Facts {
		if !logic.EqualTerm(wf, got.Facts[i]) {
			return fmt.Errorf("%w: fact %d: %s read back as %s",
				logic.ErrRoundTripMismatch, i, wf, got.Facts[i])
		}
	}
	if diff := cmp.Diff(want.Annotations, got.Annotations); diff != "" {
		return fmt.Errorf("%w: annotations (-want +got):\n%s", logic.ErrRoundTripMismatch, diff)
	}
	return nil
}

func TestTheoryDeltaDetectsDrift(t *testing.T) {
	want := fullTheory(t)

	require.NoError(t, theoryDelta(want, fullTheory(t)))

	renamed := fullTheory(t)
	renamed.Name = "other"
	err := theoryDelta(want, renamed)
	require.Error(t, err)
	require.ErrorIs(t, err, logic.ErrRoundTripMismatch)

	mutated := fullTheory(t)
	mutated.Groups[1].Sentences[0] = &logic.Probability{Weight: 0.5, That: logic.NewTerm("Heads", logic.NewVar("c"))}
	err = theoryDelta(want, mutated)
	require.Error(t, err)
	if !errors.Is(err, logic.ErrRoundTripMismatch) {
		t.Fatalf("delta error %v is not a round-trip mismatch", err)
	}
}
