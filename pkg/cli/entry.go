// Package cli implements the dispatchgen command.
//
// File mode rewrites host files in place (-w) or previews to stdout:
//
//	dispatchgen -w foo.go bar.go
//
// Expression mode expands one bare invocation, mostly for debugging specs:
//
//	dispatchgen -e 'arg, Arg -> string, default fn <T>(_: T) => "d", arg'
package cli

import (
	"flag"
	"fmt"
	"io"
	"os"

	"github.com/mattn/go-isatty"

	"github.com/ozars/specialized-dispatch/internal/codegen"
	"github.com/ozars/specialized-dispatch/internal/config"
	"github.com/ozars/specialized-dispatch/internal/diagnostics"
	"github.com/ozars/specialized-dispatch/internal/lexer"
	"github.com/ozars/specialized-dispatch/internal/parser"
	"github.com/ozars/specialized-dispatch/internal/pipeline"
	"github.com/ozars/specialized-dispatch/internal/prettyprinter"
	"github.com/ozars/specialized-dispatch/internal/rewriter"
	"github.com/ozars/specialized-dispatch/internal/validator"
)

const ansiRed = "\x1b[31m"
const ansiReset = "\x1b[0m"

// Run executes the command line and returns the process exit code.
func Run(args []string, stdout, stderr io.Writer) int {
	fs := flag.NewFlagSet("dispatchgen", flag.ContinueOnError)
	fs.SetOutput(stderr)
	var (
		write      = fs.Bool("w", false, "write results back to the source files")
		output     = fs.String("o", "", "write generated declarations to this path (single input file only)")
		configPath = fs.String("config", "", "path to dispatchgen.yaml (default: ./dispatchgen.yaml if present)")
		noColor    = fs.Bool("no-color", false, "disable colored diagnostics")
		expr       = fs.String("e", "", "expand a single invocation given as an argument")
		printSpec  = fs.Bool("print-spec", false, "with -e: print the parsed spec tree instead of generated code")
	)
	if err := fs.Parse(args); err != nil {
		return 2
	}

	cfg, err := loadConfig(*configPath)
	if err != nil {
		fmt.Fprintf(stderr, "dispatchgen: %v\n", err)
		return 1
	}
	if *noColor {
		cfg.Color = "never"
	}

	if *expr != "" {
		return runExpr(*expr, *printSpec, cfg, stdout, stderr)
	}

	files := fs.Args()
	if len(files) == 0 {
		fmt.Fprintln(stderr, "dispatchgen: no input files (and no -e expression)")
		fs.Usage()
		return 2
	}
	if *output != "" && len(files) > 1 {
		fmt.Fprintln(stderr, "dispatchgen: -o requires a single input file")
		return 2
	}
	return runFiles(files, *write, *output, cfg, stdout, stderr)
}

func loadConfig(path string) (*config.Config, error) {
	if path != "" {
		return config.Load(path)
	}
	return config.LoadDefault()
}

func runFiles(files []string, write bool, output string, cfg *config.Config, stdout, stderr io.Writer) int {
	exit := 0
	for _, path := range files {
		result, errs := rewriter.RewriteFile(path, cfg)
		if len(errs) > 0 {
			reportAll(stderr, cfg, errs)
			exit = 1
			continue
		}
		if result.Count == 0 {
			continue
		}
		if output != "" {
			result.GeneratedPath = output
		}
		if write {
			if err := os.WriteFile(path, result.Source, 0o644); err != nil {
				fmt.Fprintf(stderr, "dispatchgen: %v\n", err)
				exit = 1
				continue
			}
			if err := os.WriteFile(result.GeneratedPath, result.Generated, 0o644); err != nil {
				fmt.Fprintf(stderr, "dispatchgen: %v\n", err)
				exit = 1
				continue
			}
			fmt.Fprintf(stdout, "%s: expanded %d invocation(s) -> %s\n", path, result.Count, result.GeneratedPath)
			continue
		}
		fmt.Fprintf(stdout, "// --- %s (rewritten) ---\n%s\n", path, result.Source)
		fmt.Fprintf(stdout, "// --- %s ---\n%s\n", result.GeneratedPath, result.Generated)
	}
	return exit
}

func runExpr(source string, printSpec bool, cfg *config.Config, stdout, stderr io.Writer) int {
	ctx := &pipeline.PipelineContext{SourceCode: source}

	stages := []pipeline.Processor{
		&lexer.LexerProcessor{},
		&parser.ParserProcessor{},
		&validator.ValidatorProcessor{},
	}
	if !printSpec {
		stages = append(stages, &codegen.CodegenProcessor{})
	}
	ctx = pipeline.New(stages...).Run(ctx)

	if ctx.Failed() {
		reportAll(stderr, cfg, ctx.Errors)
		return 1
	}

	if printSpec {
		printer := prettyprinter.NewTreePrinter()
		ctx.Spec.Accept(printer)
		fmt.Fprint(stdout, printer.String())
		return 0
	}

	fmt.Fprintln(stdout, ctx.GeneratedDecls)
	fmt.Fprintln(stdout, ctx.GeneratedCall)
	return 0
}

func reportAll(w io.Writer, cfg *config.Config, errs []*diagnostics.Error) {
	colored := useColor(cfg)
	for _, err := range errs {
		if colored {
			fmt.Fprintf(w, "%serror:%s %s\n", ansiRed, ansiReset, err.Error())
		} else {
			fmt.Fprintf(w, "error: %s\n", err.Error())
		}
	}
}

func useColor(cfg *config.Config) bool {
	switch cfg.Color {
	case "always":
		return true
	case "never":
		return false
	}
	return isatty.IsTerminal(os.Stderr.Fd()) || isatty.IsCygwinTerminal(os.Stderr.Fd())
}
