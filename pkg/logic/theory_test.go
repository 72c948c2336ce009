package logic

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestTheoryAddUsesTrailingGroup(t *testing.T) {
	th := NewTheory("t")
	th.Add(NewTerm("A"))
	th.Add(NewTerm("B"))
	require.Len(t, th.Groups, 1)
	assert.Equal(t, "Sentences", th.Groups[0].Name)
	assert.Len(t, th.Groups[0].Sentences, 2)

	// a named group in between forces a fresh trailing group
	th.AddGroup(&SentenceGroup{Name: "Rules", Kind: GroupAxiom})
	th.Add(NewTerm("C"))
	require.Len(t, th.Groups, 3)
	assert.Equal(t, "Sentences", th.Groups[2].Name)
	assert.Len(t, th.Groups[2].Sentences, 1)
}

func TestAddFactRejectsVariables(t *testing.T) {
	th := NewTheory("t")
	require.NoError(t, th.AddFact(NewTerm("Link", String("CA"), String("OR"))))

	err := th.AddFact(NewTerm("Link", NewVar("x"), String("OR")))
	require.ErrorIs(t, err, ErrUnsafeHeadVariable)
	assert.Len(t, th.Facts, 1)
}

func TestGoals(t *testing.T) {
	th := NewTheory("t")
	th.AddGroup(&SentenceGroup{Name: "Axioms", Kind: GroupAxiom, Sentences: []Sentence{NewTerm("A")}})
	th.AddGroup(&SentenceGroup{Name: "Conjectures", Kind: GroupGoal, Sentences: []Sentence{NewTerm("G")}})

	goals := th.Goals()
	require.Len(t, goals, 1)
	assert.True(t, Equal(NewTerm("G"), goals[0]))
	assert.Len(t, th.Sentences(), 2)
}

func TestAnnotations(t *testing.T) {
	th := NewTheory("t")
	th.Annotate("author", "ann")
	th.Annotate("revision", int64(3))
	th.Annotate("author", "ben")

	v, ok := th.Annotation("author")
	require.True(t, ok)
	assert.Equal(t, "ben", v)
	_, ok = th.Annotation("missing")
	assert.False(t, ok)
	assert.Equal(t, []string{"author", "revision"}, th.AnnotationKeys())
}

func TestUnrollType(t *testing.T) {
	th := NewTheory("t")
	require.NoError(t, th.Registry.DeclareType("id", UnionOf("str", "int")))
	got, err := th.UnrollType("id")
	require.NoError(t, err)
	assert.Equal(t, []string{"str", "int"}, got)
}

func TestMerge(t *testing.T) {
	a := NewTheory("base")
	require.NoError(t, a.Registry.DeclareType("city", Alias("str")))
	a.AddGroup(&SentenceGroup{Name: "Rules", Kind: GroupAxiom, Sentences: []Sentence{NewTerm("A")}})
	a.Annotate("source", "base")

	b := NewTheory("extra")
	require.NoError(t, b.Registry.DeclareType("city", Alias("str")))
	require.NoError(t, b.Registry.DeclarePredicate(&PredicateDefinition{
		Predicate: "Link",
		Args:      []ArgSpec{{Name: "src", Type: "city"}},
	}))
	b.AddGroup(&SentenceGroup{Name: "Rules", Kind: GroupAxiom, Sentences: []Sentence{NewTerm("B")}})
	b.AddGroup(&SentenceGroup{Name: "Checks", Kind: GroupGoal, Sentences: []Sentence{NewTerm("C")}})
	require.NoError(t, b.AddFact(NewTerm("Link", String("CA"))))
	b.Annotate("source", "extra")

	require.NoError(t, a.Merge(b))
	require.Len(t, a.Groups, 2)
	assert.Len(t, a.Groups[0].Sentences, 2) // same-name groups merge
	assert.Equal(t, "Checks", a.Groups[1].Name)
	assert.Len(t, a.Facts, 1)
	_, ok := a.Registry.Predicate("Link")
	assert.True(t, ok)

	// the merged-in theory's annotations win
	v, _ := a.Annotation("source")
	assert.Equal(t, "extra", v)
}

func TestMergeRejectsConflictingDeclarations(t *testing.T) {
	a := NewTheory("base")
	require.NoError(t, a.Registry.DeclareType("city", Alias("str")))

	b := NewTheory("bad")
	require.NoError(t, b.Registry.DeclareType("city", Alias("int")))

	require.ErrorIs(t, a.Merge(b), ErrDuplicateDeclaration)
}

func TestImpliesFromParents(t *testing.T) {
	th := NewTheory("taxonomy")
	require.NoError(t, th.Registry.DeclarePredicate(&PredicateDefinition{
		Predicate: "Animal",
		Args:      []ArgSpec{{Name: "name", Type: "str"}},
	}))
	require.NoError(t, th.Registry.DeclarePredicate(&PredicateDefinition{
		Predicate: "Dog",
		Args:      []ArgSpec{{Name: "name", Type: "str"}, {Name: "breed", Type: "str"}},
		Parents:   []string{"Animal"},
	}))

	group, diags := ImpliesFromParents(th)
	require.Empty(t, diags)
	assert.Equal(t, "Inferred", group.Name)
	assert.Equal(t, GroupAxiom, group.Kind)
	require.Len(t, group.Sentences, 1)

	want := NewForall(
		[]*Variable{NewVar("name"), NewVar("breed")},
		NewImplies(
			NewTerm("Dog", NewVar("name"), NewVar("breed")),
			NewTerm("Animal", NewVar("name")),
		),
	)
	assert.True(t, Equal(want, group.Sentences[0]), "got %s", group.Sentences[0])
}

func TestImpliesFromParentsDiagnostics(t *testing.T) {
	t.Run("undeclared parent", func(t *testing.T) {
		th := NewTheory("taxonomy")
		require.NoError(t, th.Registry.DeclarePredicate(&PredicateDefinition{
			Predicate: "Dog",
			Args:      []ArgSpec{{Name: "name", Type: "str"}},
			Parents:   []string{"Animal"},
		}))
		group, diags := ImpliesFromParents(th)
		assert.Empty(t, group.Sentences)
		require.Len(t, diags, 1)
		assert.Equal(t, CodeUnknownType, diags[0].Code)
		assert.Contains(t, diags[0].Message, "Animal")
	})

	t.Run("parent argument without a match", func(t *testing.T) {
		th := NewTheory("taxonomy")
		require.NoError(t, th.Registry.DeclarePredicate(&PredicateDefinition{
			Predicate: "Animal",
			Args:      []ArgSpec{{Name: "species", Type: "str"}},
		}))
		require.NoError(t, th.Registry.DeclarePredicate(&PredicateDefinition{
			Predicate: "Dog",
			Args:      []ArgSpec{{Name: "name", Type: "str"}},
			Parents:   []string{"Animal"},
		}))
		group, diags := ImpliesFromParents(th)
		assert.Empty(t, group.Sentences)
		require.Len(t, diags, 1)
		assert.Equal(t, CodeArityMismatch, diags[0].Code)
		assert.Contains(t, diags[0].Message, "species")
	})
}
