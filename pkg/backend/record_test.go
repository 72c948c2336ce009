package backend

import (
	"testing"

	"github.com/google/go-cmp/cmp"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"folio/pkg/logic"
)

func TestRecordRoundTrip(t *testing.T) {
	th := fullTheory(t)
	codec := NewRecord()

	res, err := codec.CompileTheory(th)
	require.NoError(t, err)
	require.Empty(t, res.Diagnostics)

	got, err := codec.ReadTheory([]byte(res.Text))
	require.NoError(t, err)
	require.NoError(t, theoryDelta(th, got))

	again, err := codec.CompileTheory(got)
	require.NoError(t, err)
	if diff := cmp.Diff(res.Text, again.Text); diff != "" {
		t.Errorf("reserialized record differs (-first +second):\n%s", diff)
	}
}

// Decoding through a Go map would sort the argument names; the codec
// walks yaml nodes to keep declaration order.
func TestRecordPreservesArgumentOrder(t *testing.T) {
	th := logic.NewTheory("order")
	require.NoError(t, th.Registry.DeclarePredicate(&logic.PredicateDefinition{
		Predicate: "Radio",
		Args: []logic.ArgSpec{
			{Name: "zulu", Type: "str"},
			{Name: "alpha", Type: "str"},
			{Name: "mike", Type: "str"},
		},
	}))

	res, err := NewRecord().CompileTheory(th)
	require.NoError(t, err)
	got, err := NewRecord().ReadTheory([]byte(res.Text))
	require.NoError(t, err)

	defs := got.Registry.Predicates()
	require.Len(t, defs, 1)
	names := make([]string, len(defs[0].Args))
	for i, a := range defs[0].Args {
		names[i] = a.Name
	}
	assert.Equal(t, []string{"zulu", "alpha", "mike"}, names)
}

func TestRecordLayout(t *testing.T) {
	th := logic.NewTheory("toy")
	th.AddGroup(&logic.SentenceGroup{
		Name:      "Checks",
		Kind:      logic.GroupGoal,
		Sentences: []logic.Sentence{logic.NewTerm("Path", logic.String("CA"), logic.String("WA"))},
	})
	require.NoError(t, th.AddFact(logic.NewTerm("Link", logic.String("CA"), logic.String("OR"))))

	res, err := NewRecord().CompileTheory(th)
	require.NoError(t, err)

	assert.Contains(t, res.Text, "type: Theory\n")
	assert.Contains(t, res.Text, "name: toy\n")
	assert.Contains(t, res.Text, "- type: SentenceGroup\n")
	assert.Contains(t, res.Text, "group_type: goal\n")
	assert.Contains(t, res.Text, "- Path\n")
	assert.Contains(t, res.Text, "ground_terms:\n")
	assert.NotContains(t, res.Text, "docstring", "empty docstrings are omitted")
}

func TestRecordReadErrors(t *testing.T) {
	tests := []struct {
		name  string
		input string
		want  string
	}{
		{
			name:  "sequence root",
			input: "- a\n- b\n",
			want:  "expected mapping at top level, got sequence",
		},
		{
			name:  "unknown theory field",
			input: "type: Theory\nshape: round\n",
			want:  `unknown theory field "shape"`,
		},
		{
			name:  "missing type",
			input: "name: x\n",
			want:  "missing type field",
		},
		{
			name: "unknown sentence type",
			input: "type: Theory\n" +
				"sentence_groups:\n" +
				"  - type: SentenceGroup\n" +
				"    name: G\n" +
				"    sentences:\n" +
				"      - type: Maybe\n" +
				"        arguments: []\n",
			want: `unknown sentence type "Maybe"`,
		},
		{
			name: "sentence missing arguments",
			input: "type: Theory\n" +
				"sentence_groups:\n" +
				"  - type: SentenceGroup\n" +
				"    sentences:\n" +
				"      - type: Term\n",
			want: "missing arguments",
		},
		{
			name: "evidence truth not boolean",
			input: "type: Theory\n" +
				"sentence_groups:\n" +
				"  - type: SentenceGroup\n" +
				"    sentences:\n" +
				"      - type: Evidence\n" +
				"        arguments:\n" +
				"          - type: Term\n" +
				"            arguments:\n" +
				"              - A\n" +
				"          - 1\n",
			want: "Evidence truth must be a boolean",
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := NewRecord().ReadTheory([]byte(tt.input))
			require.Error(t, err)
			assert.Contains(t, err.Error(), tt.want)
		})
	}
}
