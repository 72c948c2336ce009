package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"sort"
	"syscall"

	"github.com/spf13/cobra"

	"folio/internal/solver"
	"folio/pkg/logic"
)

var (
	solveInput   string
	solveQuery   string
	solveNoCache bool
)

var solveCmd = &cobra.Command{
	Use:   "solve",
	Short: "Evaluate a theory on the in-process Datalog engine",
	Long: `Normalizes the theory to clause form, evaluates it to a fixpoint on
the Mangle engine, and prints every fact that holds. Clauses outside the
Datalog fragment are skipped and reported.

Results are cached by program fingerprint; an unchanged theory solves
from the cache.

Examples:
  folio solve -i theory.sexpr
  folio solve -i theory.sexpr -q path
  folio solve -i theory.yaml --no-cache`,
	RunE: runSolve,
}

func init() {
	solveCmd.Flags().StringVarP(&solveInput, "input", "i", "", "Input theory document (required)")
	solveCmd.Flags().StringVarP(&solveQuery, "query", "q", "", "Print facts for one predicate only")
	solveCmd.Flags().BoolVar(&solveNoCache, "no-cache", false, "Bypass the derived-fact cache")
	solveCmd.MarkFlagRequired("input")
}

func runSolve(cmd *cobra.Command, args []string) error {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	opts, err := loadOptions(optionsPath)
	if err != nil {
		return err
	}
	cfg := opts.Solver
	if solveNoCache {
		cfg.NoCache = true
	}

	th, err := readTheory(solveInput, "")
	if err != nil {
		return err
	}

	s := solver.New(cfg, logger)
	defer s.Close()

	diags, err := s.Load(th)
	printDiagnostics(os.Stderr, diags)
	if err != nil {
		return err
	}

	res, err := s.Solve(ctx)
	if err != nil {
		return err
	}

	if solveQuery != "" {
		facts, err := s.Query(ctx, solveQuery)
		if err != nil {
			return err
		}
		fmt.Print(renderTable(solveQuery, []string{"Fact"}, factRows(facts)))
		return nil
	}

	names := make([]string, 0, len(res.Facts))
	for name := range res.Facts {
		names = append(names, name)
	}
	sort.Strings(names)
	for _, name := range names {
		fmt.Print(renderTable(name, []string{"Fact"}, factRows(res.Facts[name])))
		fmt.Println()
	}

	summary := fmt.Sprintf("%d facts across %d predicates in %v", res.FactCount, len(res.Facts), res.Duration)
	if res.FromCache {
		summary += " (cached)"
	}
	fmt.Fprintln(os.Stderr, successStyle.Render(summary))
	return nil
}

func factRows(facts []*logic.Term) [][]string {
	rows := make([][]string, len(facts))
	for i, f := range facts {
		rows[i] = []string{f.String()}
	}
	return rows
}
