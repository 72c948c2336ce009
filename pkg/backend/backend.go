// Package backend renders theories into the textual formats of external
// reasoners: prolog, souffle, tptp, prover9, problog, and the two
// round-trippable serialization formats sexpr and record.
//
// The format set is closed. Every compiler degrades gracefully: sentences
// a format cannot express become diagnostics plus skip-comments in the
// output, never a hard failure for the whole theory.
package backend

import (
	"errors"
	"fmt"

	"folio/pkg/logic"
)

// Format names a supported output format.
type Format string

const (
	FormatProlog  Format = "prolog"
	FormatSouffle Format = "souffle"
	FormatTPTP    Format = "tptp"
	FormatProver9 Format = "prover9"
	FormatProbLog Format = "problog"
	FormatSexpr   Format = "sexpr"
	FormatRecord  Format = "record"
)

// ErrUnknownFormat is returned for format names outside the closed set.
var ErrUnknownFormat = errors.New("unknown format")

// Formats returns every supported format in canonical order.
func Formats() []Format {
	return []Format{
		FormatProlog,
		FormatSouffle,
		FormatTPTP,
		FormatProver9,
		FormatProbLog,
		FormatSexpr,
		FormatRecord,
	}
}

// ParseFormat resolves a format name.
func ParseFormat(name string) (Format, error) {
	for _, f := range Formats() {
		if string(f) == name {
			return f, nil
		}
	}
	return "", fmt.Errorf("%w: %q", ErrUnknownFormat, name)
}

// Result is compiled output plus the constructs that did not translate.
type Result struct {
	Text        string
	Diagnostics []logic.Diagnostic
}

// Compiler renders theories into one output format.
type Compiler interface {
	Format() Format
	// CompileTheory renders a whole theory: declarations, sentence
	// groups, and ground facts.
	CompileTheory(th *logic.Theory) (Result, error)
	// CompileGroup renders a single sentence group without the
	// surrounding declarations.
	CompileGroup(th *logic.Theory, g *logic.SentenceGroup) (Result, error)
}

// Reader parses a serialization format back into a theory.
type Reader interface {
	Format() Format
	ReadTheory(data []byte) (*logic.Theory, error)
}

// For returns a compiler for the format with default options.
func For(f Format) (Compiler, error) {
	switch f {
	case FormatProlog:
		return NewProlog(DefaultPrologOptions()), nil
	case FormatSouffle:
		return NewSouffle(DefaultSouffleOptions()), nil
	case FormatTPTP:
		return NewTPTP(), nil
	case FormatProver9:
		return NewProver9(), nil
	case FormatProbLog:
		return NewProbLog(DefaultProbLogOptions()), nil
	case FormatSexpr:
		return NewSexpr(), nil
	case FormatRecord:
		return NewRecord(), nil
	}
	return nil, fmt.Errorf("%w: %q", ErrUnknownFormat, f)
}

// ReaderFor returns a reader for the format. Only sexpr and record can be
// read back.
func ReaderFor(f Format) (Reader, error) {
	switch f {
	case FormatSexpr:
		return NewSexpr(), nil
	case FormatRecord:
		return NewRecord(), nil
	}
	return nil, fmt.Errorf("%w: %q cannot be read back", ErrUnknownFormat, f)
}
