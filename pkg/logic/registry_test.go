package logic

import (
	"testing"

	"github.com/google/go-cmp/cmp"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDeclareType(t *testing.T) {
	r := NewRegistry()
	require.NoError(t, r.DeclareType("city", Alias("str")))

	// identical redeclaration is a no-op
	require.NoError(t, r.DeclareType("city", Alias("str")))

	// conflicting redeclaration fails
	err := r.DeclareType("city", UnionOf("str", "int"))
	require.ErrorIs(t, err, ErrDuplicateDeclaration)

	// empty definitions are rejected
	require.ErrorIs(t, r.DeclareType("void", TypeDef{}), ErrUnknownType)

	assert.Equal(t, []string{"city"}, r.TypeNames())
	def, ok := r.Type("city")
	require.True(t, ok)
	assert.False(t, def.IsUnion())
}

func TestDeclarePredicate(t *testing.T) {
	r := NewRegistry()
	def := &PredicateDefinition{
		Predicate: "Link",
		Args:      []ArgSpec{{Name: "src", Type: "str"}, {Name: "dst", Type: "str"}},
	}
	require.NoError(t, r.DeclarePredicate(def))

	// identical redeclaration is a no-op
	require.NoError(t, r.DeclarePredicate(&PredicateDefinition{
		Predicate: "Link",
		Args:      []ArgSpec{{Name: "src", Type: "str"}, {Name: "dst", Type: "str"}},
	}))

	// arity change is a conflict
	err := r.DeclarePredicate(&PredicateDefinition{
		Predicate: "Link",
		Args:      []ArgSpec{{Name: "src", Type: "str"}},
	})
	require.ErrorIs(t, err, ErrDuplicateDeclaration)

	// unnamed predicates are rejected
	require.Error(t, r.DeclarePredicate(&PredicateDefinition{}))

	got, ok := r.Predicate("Link")
	require.True(t, ok)
	assert.Equal(t, "Link(src: str, dst: str)", got.Signature())
	require.Len(t, r.Predicates(), 1)
}

func TestResolveType(t *testing.T) {
	r := NewRegistry()
	require.NoError(t, r.DeclareType("city", Alias("str")))
	require.NoError(t, r.DeclareType("reading", UnionOf("int", "float")))
	require.NoError(t, r.DeclareType("mixed", UnionOf("city", "reading", "str")))

	tests := []struct {
		name string
		typ  string
		want []string
	}{
		{"primitive", "str", []string{"str"}},
		{"alias", "city", []string{"str"}},
		{"union", "reading", []string{"int", "float"}},
		{"nested union dedupes in order", "mixed", []string{"str", "int", "float"}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := r.ResolveType(tt.typ)
			require.NoError(t, err)
			if diff := cmp.Diff(tt.want, got); diff != "" {
				t.Errorf("ResolveType(%q) mismatch (-want +got):\n%s", tt.typ, diff)
			}
		})
	}
}

func TestResolveTypeErrors(t *testing.T) {
	r := NewRegistry()
	require.NoError(t, r.DeclareType("a", Alias("b")))
	require.NoError(t, r.DeclareType("b", Alias("a")))

	_, err := r.ResolveType("a")
	require.ErrorIs(t, err, ErrUnknownType)
	assert.Contains(t, err.Error(), "cycle")

	_, err = r.ResolveType("ghost")
	require.ErrorIs(t, err, ErrUnknownType)
}

func TestCheckTerm(t *testing.T) {
	r := NewRegistry()
	require.NoError(t, r.DeclarePredicate(&PredicateDefinition{
		Predicate: "Link",
		Args:      []ArgSpec{{Name: "src", Type: "str"}, {Name: "dst", Type: "str"}},
	}))

	// declared predicate at the right arity
	assert.NoError(t, r.CheckTerm(NewTerm("Link", String("CA"), String("OR"))))

	// undeclared predicates pass; declaration is optional
	assert.NoError(t, r.CheckTerm(NewTerm("Undeclared", String("x"))))

	// builtins are exempt from declarations
	assert.NoError(t, r.CheckTerm(Lt(NewVar("v"), Integer(3))))

	err := r.CheckTerm(NewTerm("Link", String("CA")))
	require.ErrorIs(t, err, ErrArityMismatch)
	assert.Contains(t, err.Error(), "Link(src: str, dst: str)")
}

func TestRegistryValidate(t *testing.T) {
	r := NewRegistry()
	require.NoError(t, r.DeclarePredicate(&PredicateDefinition{
		Predicate: "Score",
		Args:      []ArgSpec{{Name: "who", Type: "str"}, {Name: "value", Type: "points"}},
	}))

	diags := r.Validate()
	require.Len(t, diags, 1)
	assert.Equal(t, CodeUnknownType, diags[0].Code)
	assert.Contains(t, diags[0].Message, "points")

	// declaring the missing type clears the diagnostic
	require.NoError(t, r.DeclareType("points", Alias("int")))
	assert.Empty(t, r.Validate())
}
