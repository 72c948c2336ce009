package main

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"gopkg.in/yaml.v3"

	"folio/internal/solver"
	"folio/pkg/backend"
	"folio/pkg/logic"
)

// Options is the YAML options file: one section per configurable
// component. Missing sections keep their defaults; cobra flags override
// file values.
type Options struct {
	Prolog  backend.PrologOptions  `yaml:"prolog"`
	Souffle backend.SouffleOptions `yaml:"souffle"`
	ProbLog backend.ProbLogOptions `yaml:"problog"`
	Solver  solver.Config          `yaml:"solver"`
}

func defaultOptions() Options {
	return Options{
		Prolog:  backend.DefaultPrologOptions(),
		Souffle: backend.DefaultSouffleOptions(),
		ProbLog: backend.DefaultProbLogOptions(),
		Solver:  solver.DefaultConfig(),
	}
}

// loadOptions reads the options file when one was given.
func loadOptions(path string) (Options, error) {
	opts := defaultOptions()
	if path == "" {
		return opts, nil
	}
	data, err := os.ReadFile(path)
	if err != nil {
		return opts, fmt.Errorf("read options file: %w", err)
	}
	if err := yaml.Unmarshal(data, &opts); err != nil {
		return opts, fmt.Errorf("parse options file: %w", err)
	}
	return opts, nil
}

// compilerFor builds an emitter carrying the configured options.
func compilerFor(f backend.Format, opts Options) (backend.Compiler, error) {
	switch f {
	case backend.FormatProlog:
		return backend.NewProlog(opts.Prolog), nil
	case backend.FormatSouffle:
		return backend.NewSouffle(opts.Souffle), nil
	case backend.FormatProbLog:
		return backend.NewProbLog(opts.ProbLog), nil
	}
	return backend.For(f)
}

// readTheory loads a theory document, inferring the serialization from
// the file extension unless overridden.
func readTheory(path, override string) (*logic.Theory, error) {
	format := override
	if format == "" {
		switch strings.ToLower(filepath.Ext(path)) {
		case ".sexpr", ".sexp":
			format = string(backend.FormatSexpr)
		case ".yaml", ".yml", ".record":
			format = string(backend.FormatRecord)
		default:
			return nil, fmt.Errorf("cannot infer input format from %q; use --from", filepath.Base(path))
		}
	}
	f, err := backend.ParseFormat(format)
	if err != nil {
		return nil, err
	}
	reader, err := backend.ReaderFor(f)
	if err != nil {
		return nil, err
	}
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read theory: %w", err)
	}
	return reader.ReadTheory(data)
}
