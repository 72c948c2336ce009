package logic

import (
	"errors"
	"fmt"
)

// Sentinel errors for declaration and translation failures. Callers match
// them with errors.Is.
var (
	ErrDuplicateDeclaration       = errors.New("duplicate declaration")
	ErrUnknownType                = errors.New("unknown type")
	ErrArityMismatch              = errors.New("arity mismatch")
	ErrUnsafeHeadVariable         = errors.New("unsafe head variable")
	ErrUnsupportedNegationShape   = errors.New("unsupported negation shape")
	ErrUnsupportedConstraintShape = errors.New("unsupported constraint shape")
	ErrRoundTripMismatch          = errors.New("round-trip mismatch")
)

// DiagnosticCode identifies a class of translation or validation failure.
type DiagnosticCode string

const (
	CodeDuplicateDeclaration       DiagnosticCode = "duplicate_declaration"
	CodeUnknownType                DiagnosticCode = "unknown_type"
	CodeArityMismatch              DiagnosticCode = "arity_mismatch"
	CodeUnsafeHeadVariable         DiagnosticCode = "unsafe_head_variable"
	CodeUnsupportedNegationShape   DiagnosticCode = "unsupported_negation_shape"
	CodeUnsupportedConstraintShape DiagnosticCode = "unsupported_constraint_shape"
	CodeRoundTripMismatch          DiagnosticCode = "round_trip_mismatch"
)

// Diagnostic records one construct that could not be translated or
// validated, without aborting the surrounding operation.
type Diagnostic struct {
	Code    DiagnosticCode
	Message string
	// Group names the sentence group the subject came from, if any.
	Group string
	// Subject is the offending sentence, if one is attached.
	Subject Sentence
}

// Diagf builds a Diagnostic with a formatted message.
func Diagf(code DiagnosticCode, subject Sentence, format string, args ...any) Diagnostic {
	return Diagnostic{Code: code, Message: fmt.Sprintf(format, args...), Subject: subject}
}

func (d Diagnostic) String() string {
	if d.Group != "" {
		return fmt.Sprintf("[%s] %s (group %q)", d.Code, d.Message, d.Group)
	}
	return fmt.Sprintf("[%s] %s", d.Code, d.Message)
}

// Err converts the diagnostic into an error wrapping the sentinel for its
// code, for callers that want failures to be fatal.
func (d Diagnostic) Err() error {
	if sentinel, ok := sentinelFor[d.Code]; ok {
		return fmt.Errorf("%w: %s", sentinel, d.Message)
	}
	return errors.New(d.Message)
}

var sentinelFor = map[DiagnosticCode]error{
	CodeDuplicateDeclaration:       ErrDuplicateDeclaration,
	CodeUnknownType:                ErrUnknownType,
	CodeArityMismatch:              ErrArityMismatch,
	CodeUnsafeHeadVariable:         ErrUnsafeHeadVariable,
	CodeUnsupportedNegationShape:   ErrUnsupportedNegationShape,
	CodeUnsupportedConstraintShape: ErrUnsupportedConstraintShape,
	CodeRoundTripMismatch:          ErrRoundTripMismatch,
}
