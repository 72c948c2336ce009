package backend

import (
	"testing"

	"github.com/google/go-cmp/cmp"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"folio/pkg/logic"
)

func TestSexprRoundTrip(t *testing.T) {
	th := fullTheory(t)
	codec := NewSexpr()

	res, err := codec.CompileTheory(th)
	require.NoError(t, err)
	require.Empty(t, res.Diagnostics)

	got, err := codec.ReadTheory([]byte(res.Text))
	require.NoError(t, err)
	require.NoError(t, theoryDelta(th, got))

	// a second write of the read theory must reproduce the bytes
	again, err := codec.CompileTheory(got)
	require.NoError(t, err)
	if diff := cmp.Diff(res.Text, again.Text); diff != "" {
		t.Errorf("reserialized sexpr differs (-first +second):\n%s", diff)
	}
}

func TestSexprLayout(t *testing.T) {
	th := logic.NewTheory("toy")
	th.Add(logic.NewTerm("Rains"))

	res, err := NewSexpr().CompileTheory(th)
	require.NoError(t, err)

	want := `(Theory
  (name "toy")
  (sentence_groups
    ((SentenceGroup
        (name "Sentences")
        (sentences
          ((Term "Rains")))))))
`
	if diff := cmp.Diff(want, res.Text); diff != "" {
		t.Errorf("sexpr layout mismatch (-want +got):\n%s", diff)
	}
}

func TestSexprCompileGroup(t *testing.T) {
	g := &logic.SentenceGroup{
		Name:      "Checks",
		Kind:      logic.GroupGoal,
		Sentences: []logic.Sentence{logic.NewTerm("Path", logic.String("CA"), logic.String("WA"))},
	}

	res, err := NewSexpr().CompileGroup(nil, g)
	require.NoError(t, err)
	assert.Contains(t, res.Text, `(group_type "goal")`)
	assert.Contains(t, res.Text, `(Term "Path" "CA" "WA")`)
}

func TestSexprReadErrors(t *testing.T) {
	tests := []struct {
		name  string
		input string
		want  string
	}{
		{
			name:  "wrong head",
			input: `(Graph (name "g"))`,
			want:  "expected (Theory",
		},
		{
			name:  "unknown theory field",
			input: `(Theory (shape "round"))`,
			want:  `unknown theory field "shape"`,
		},
		{
			name: "unknown sentence tag",
			input: `(Theory (sentence_groups ((SentenceGroup (name "G")
				(sentences ((Maybe "Rains")))))))`,
			want: `unknown sentence tag "Maybe"`,
		},
		{
			name: "evidence truth not boolean",
			input: `(Theory (sentence_groups ((SentenceGroup (name "G")
				(sentences ((Evidence (Term "A") "yes")))))))`,
			want: "Evidence truth is not a boolean",
		},
		{
			name:  "ground term not a term",
			input: `(Theory (ground_terms ((Variable "x"))))`,
			want:  "ground term is not a Term",
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := NewSexpr().ReadTheory([]byte(tt.input))
			require.Error(t, err)
			assert.Contains(t, err.Error(), tt.want)
		})
	}
}

func TestSexprReadRejectsMalformedInput(t *testing.T) {
	_, err := NewSexpr().ReadTheory([]byte(`(Theory (name "unclosed"`))
	require.Error(t, err)
	assert.Contains(t, err.Error(), "sexpr")
}
