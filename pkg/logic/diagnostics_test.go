package logic

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDiagnosticString(t *testing.T) {
	d := Diagf(CodeArityMismatch, NewTerm("p"), "p applied to 1 args")
	assert.Equal(t, "[arity_mismatch] p applied to 1 args", d.String())

	d.Group = "Rules"
	assert.Equal(t, `[arity_mismatch] p applied to 1 args (group "Rules")`, d.String())
}

func TestDiagnosticErr(t *testing.T) {
	tests := []struct {
		code DiagnosticCode
		want error
	}{
		{CodeDuplicateDeclaration, ErrDuplicateDeclaration},
		{CodeUnknownType, ErrUnknownType},
		{CodeArityMismatch, ErrArityMismatch},
		{CodeUnsafeHeadVariable, ErrUnsafeHeadVariable},
		{CodeUnsupportedNegationShape, ErrUnsupportedNegationShape},
		{CodeUnsupportedConstraintShape, ErrUnsupportedConstraintShape},
		{CodeRoundTripMismatch, ErrRoundTripMismatch},
	}
	for _, tt := range tests {
		t.Run(string(tt.code), func(t *testing.T) {
			d := Diagf(tt.code, nil, "boom")
			require.ErrorIs(t, d.Err(), tt.want)
			assert.Contains(t, d.Err().Error(), "boom")
		})
	}
}
