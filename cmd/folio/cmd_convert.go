package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"path/filepath"
	"strings"
	"syscall"
	"time"

	"github.com/fsnotify/fsnotify"
	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"folio/pkg/backend"
	"folio/pkg/logic"
)

var (
	convertInput   string
	convertFormat  string
	convertOutput  string
	convertFrom    string
	convertWatch   bool
	convertParents bool
)

var convertCmd = &cobra.Command{
	Use:   "convert",
	Short: "Compile a theory document into a target format",
	Long: `Reads a theory from an S-expression or record document and emits it in
one target grammar, or in every grammar with --format all.

Constructs the target cannot express are skipped; each skip is reported
and, where the grammar has comments, marked in the output.

Examples:
  folio convert -i theory.sexpr -f prolog -o theory.pl
  folio convert -i theory.yaml -f all -o out/
  folio convert -i theory.sexpr -f souffle --watch`,
	RunE: runConvert,
}

func init() {
	convertCmd.Flags().StringVarP(&convertInput, "input", "i", "", "Input theory document (required)")
	convertCmd.Flags().StringVarP(&convertFormat, "format", "f", "prolog", "Target format, or all")
	convertCmd.Flags().StringVarP(&convertOutput, "output", "o", "", "Output file; directory with --format all (default stdout)")
	convertCmd.Flags().StringVar(&convertFrom, "from", "", "Input serialization (sexpr or record); default from extension")
	convertCmd.Flags().BoolVar(&convertWatch, "watch", false, "Recompile whenever the input changes")
	convertCmd.Flags().BoolVar(&convertParents, "parents", false, "Derive implications from predicate parent declarations")
	convertCmd.MarkFlagRequired("input")
}

// outputExtensions names the file written per format under --format all.
var outputExtensions = map[backend.Format]string{
	backend.FormatProlog:  "pl",
	backend.FormatSouffle: "dl",
	backend.FormatTPTP:    "tptp",
	backend.FormatProver9: "p9",
	backend.FormatProbLog: "plog",
	backend.FormatSexpr:   "sexpr",
	backend.FormatRecord:  "yaml",
}

func runConvert(cmd *cobra.Command, args []string) error {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	opts, err := loadOptions(optionsPath)
	if err != nil {
		return err
	}
	if !convertWatch {
		return convertOnce(ctx, opts)
	}
	return watchConvert(ctx, opts)
}

func convertOnce(ctx context.Context, opts Options) error {
	th, err := readTheory(convertInput, convertFrom)
	if err != nil {
		return err
	}
	if convertParents {
		group, diags := logic.ImpliesFromParents(th)
		printDiagnostics(os.Stderr, diags)
		if len(group.Sentences) > 0 {
			th.AddGroup(group)
		}
	}

	if convertFormat == "all" {
		return convertAll(ctx, th, opts)
	}
	f, err := backend.ParseFormat(convertFormat)
	if err != nil {
		return err
	}
	c, err := compilerFor(f, opts)
	if err != nil {
		return err
	}
	res, err := c.CompileTheory(th)
	if err != nil {
		return err
	}
	printDiagnostics(os.Stderr, res.Diagnostics)
	return writeOutput(convertOutput, res.Text)
}

func convertAll(ctx context.Context, th *logic.Theory, opts Options) error {
	if convertOutput == "" {
		return fmt.Errorf("--format all needs --output naming a directory")
	}
	if err := os.MkdirAll(convertOutput, 0755); err != nil {
		return fmt.Errorf("create output directory: %w", err)
	}
	results, err := backend.CompileAll(ctx, th, backend.Formats())
	if err != nil {
		return err
	}
	stem := strings.TrimSuffix(filepath.Base(convertInput), filepath.Ext(convertInput))
	for _, f := range backend.Formats() {
		res := results[f]
		printDiagnostics(os.Stderr, res.Diagnostics)
		path := filepath.Join(convertOutput, stem+"."+outputExtensions[f])
		if err := os.WriteFile(path, []byte(res.Text), 0644); err != nil {
			return fmt.Errorf("write %s: %w", path, err)
		}
		fmt.Fprintln(os.Stderr, successStyle.Render("wrote ")+path)
	}
	return nil
}

func writeOutput(path, text string) error {
	if path == "" {
		fmt.Print(text)
		return nil
	}
	if err := os.WriteFile(path, []byte(text), 0644); err != nil {
		return fmt.Errorf("write output: %w", err)
	}
	fmt.Fprintln(os.Stderr, successStyle.Render("wrote ")+path)
	return nil
}

// watchConvert recompiles on every settled change to the input file until
// interrupted. The parent directory is watched because editors usually
// replace the file on save.
func watchConvert(ctx context.Context, opts Options) error {
	watcher, err := fsnotify.NewWatcher()
	if err != nil {
		return fmt.Errorf("create watcher: %w", err)
	}
	defer watcher.Close()

	dir := filepath.Dir(convertInput)
	if err := watcher.Add(dir); err != nil {
		return fmt.Errorf("watch %s: %w", dir, err)
	}

	if err := convertOnce(ctx, opts); err != nil {
		fmt.Fprintln(os.Stderr, errorStyle.Render(err.Error()))
	}
	fmt.Fprintln(os.Stderr, mutedStyle.Render("watching "+convertInput+" (interrupt to stop)"))

	target := filepath.Clean(convertInput)
	var debounce <-chan time.Time
	for {
		select {
		case <-ctx.Done():
			return nil
		case event, ok := <-watcher.Events:
			if !ok {
				return nil
			}
			if filepath.Clean(event.Name) != target {
				continue
			}
			if event.Op&(fsnotify.Write|fsnotify.Create|fsnotify.Rename) == 0 {
				continue
			}
			logger.Debug("input changed", zap.String("file", event.Name), zap.String("op", event.Op.String()))
			debounce = time.After(200 * time.Millisecond)
		case err, ok := <-watcher.Errors:
			if !ok {
				return nil
			}
			logger.Warn("watch error", zap.Error(err))
		case <-debounce:
			debounce = nil
			if err := convertOnce(ctx, opts); err != nil {
				fmt.Fprintln(os.Stderr, errorStyle.Render(err.Error()))
			}
		}
	}
}
