package backend

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"folio/pkg/logic"
)

func TestCapitalize(t *testing.T) {
	assert.Equal(t, "X", Capitalize("x"))
	assert.Equal(t, "Src", Capitalize("src"))
	assert.Equal(t, "Maxvalue", Capitalize("maxValue"))
	assert.Equal(t, "_", Capitalize(""))
}

func TestQuoteAtom(t *testing.T) {
	assert.Equal(t, "abc_1", quoteAtom("abc_1"))
	assert.Equal(t, "'CA'", quoteAtom("CA"))
	assert.Equal(t, "'needs space'", quoteAtom("needs space"))
	assert.Equal(t, `'it\'s'`, quoteAtom("it's"))
	assert.Equal(t, `'a\\b'`, quoteAtom(`a\b`))
	assert.Equal(t, "''", quoteAtom(""))
}

func TestRenderValueMangleStyle(t *testing.T) {
	st := MangleStyle()

	got, err := RenderValue(logic.Boolean(true), st)
	require.NoError(t, err)
	assert.Equal(t, "/true", got)

	got, err = RenderValue(logic.Boolean(false), st)
	require.NoError(t, err)
	assert.Equal(t, "/false", got)

	got, err = RenderValue(logic.Null{}, st)
	require.NoError(t, err)
	assert.Equal(t, "_", got)

	got, err = RenderValue(logic.String("CA"), st)
	require.NoError(t, err)
	assert.Equal(t, `"CA"`, got)
}

func TestMangleStyleBuiltins(t *testing.T) {
	st := MangleStyle()

	got, err := RenderTerm(logic.Lt(logic.NewVar("a"), logic.Integer(3)), st)
	require.NoError(t, err)
	assert.Equal(t, ":lt(A, 3)", got)

	// builtins the dialect has no call form for are rejected
	_, err = RenderTerm(logic.Eq(logic.NewVar("a"), logic.NewVar("b")), st)
	require.ErrorIs(t, err, logic.ErrUnsupportedConstraintShape)
}
