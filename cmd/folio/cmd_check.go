package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"folio/pkg/horn"
)

var checkInput string

var checkCmd = &cobra.Command{
	Use:   "check",
	Short: "Validate a theory without emitting anything",
	Long: `Dry-runs the declarations and the clause normalizer: unresolvable
types, arity mismatches, unsafe head variables, and untranslatable
sentence shapes are all reported. Exits non-zero when anything is wrong.

Example:
  folio check -i theory.sexpr`,
	RunE: runCheck,
}

func init() {
	checkCmd.Flags().StringVarP(&checkInput, "input", "i", "", "Input theory document (required)")
	checkCmd.MarkFlagRequired("input")
}

func runCheck(cmd *cobra.Command, args []string) error {
	th, err := readTheory(checkInput, "")
	if err != nil {
		return err
	}

	diags := th.Registry.Validate()
	_, normDiags := horn.NormalizeTheory(th, horn.DefaultOptions())
	diags = append(diags, normDiags...)

	printDiagnostics(os.Stderr, diags)
	if n := len(diags); n > 0 {
		return fmt.Errorf("%d problems found", n)
	}

	sentences := 0
	for _, g := range th.Groups {
		sentences += len(g.Sentences)
	}
	fmt.Println(successStyle.Render(fmt.Sprintf("ok: %d sentences in %d groups, %d facts",
		sentences, len(th.Groups), len(th.Facts))))
	return nil
}
