package backend

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCompileAll(t *testing.T) {
	results, err := CompileAll(context.Background(), linkTheory(t), Formats())
	require.NoError(t, err)
	require.Len(t, results, len(Formats()))
	for f, res := range results {
		assert.NotEmptyf(t, res.Text, "format %s produced no output", f)
	}
	assert.Contains(t, results[FormatProlog].Text, "path(X, Y) :- link(X, Y).\n")
	assert.Contains(t, results[FormatSouffle].Text, ".decl Link(src: symbol, dst: symbol)\n")
	assert.Contains(t, results[FormatTPTP].Text, "! [X, Y] : (link(X, Y) => path(X, Y))")
}

func TestCompileAllDedupes(t *testing.T) {
	results, err := CompileAll(context.Background(), linkTheory(t),
		[]Format{FormatProlog, FormatProlog, FormatProlog})
	require.NoError(t, err)
	require.Len(t, results, 1)
}

func TestCompileAllUnknownFormat(t *testing.T) {
	results, err := CompileAll(context.Background(), linkTheory(t),
		[]Format{FormatProlog, Format("coq")})
	require.Error(t, err)
	require.ErrorIs(t, err, ErrUnknownFormat)
	assert.Nil(t, results)
}

func TestCompileAllCancelled(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	results, err := CompileAll(ctx, linkTheory(t), Formats())
	require.Error(t, err)
	require.ErrorIs(t, err, context.Canceled)
	assert.Nil(t, results)
}
