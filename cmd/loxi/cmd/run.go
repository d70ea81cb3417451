package cmd

import (
	"fmt"
	"os"

	"github.com/kr/pretty"
	"github.com/spf13/cobra"

	loxerrors "github.com/loxlang/loxi/internal/errors"
	"github.com/loxlang/loxi/internal/config"
	"github.com/loxlang/loxi/internal/interp"
	"github.com/loxlang/loxi/internal/lexer"
	"github.com/loxlang/loxi/internal/parser"
	"github.com/loxlang/loxi/internal/resolver"
)

var runCmd = &cobra.Command{
	Use:   "run PATH",
	Short: "Run a Lox source file",
	Args:  cobra.ExactArgs(1),
	RunE: func(c *cobra.Command, args []string) error {
		cfg, err := config.Load(configPath)
		if err != nil {
			return err
		}
		exitCode = runFile(args[0], cfg)
		return nil
	},
}

// runFile implements spec.md §6's file-execution mode: read, lex,
// parse, resolve, and evaluate once; the exit code reflects the first
// class of error encountered (65 compile-time, 70 runtime, 0 clean).
func runFile(path string, cfg config.Config) int {
	source, err := os.ReadFile(path)
	if err != nil {
		fmt.Fprintf(os.Stderr, "loxi: %v\n", err)
		return ExitUsage
	}

	reporter := loxerrors.NewReporter()

	l := lexer.New(string(source), reporter)
	tokens := l.ScanTokens()

	p := parser.New(tokens, reporter)
	program := p.Parse()

	if reporter.HadError() {
		reportCompileErrors(reporter)
		return ExitCompileError
	}

	res := resolver.New(reporter)
	res.Resolve(program)
	if reporter.HadError() {
		reportCompileErrors(reporter)
		return ExitCompileError
	}

	if dumpAST {
		fmt.Println("AST:")
		pretty.Println(program)
		fmt.Println()
	}

	it := interp.New(cfg.RuntimeConfig(), res.Locals(), os.Stdout, false, cfg.UninitializedVariableIsError)

	if dumpEnv {
		defer dumpEnvironment(it)
	}

	if rerr := it.Interpret(program); rerr != nil {
		if interp.QuitRequested(rerr) {
			return ExitSuccess
		}
		fmt.Fprint(os.Stderr, rerr.(*loxerrors.RuntimeError).Format())
		return ExitRuntimeError
	}
	return ExitSuccess
}

func reportCompileErrors(reporter *loxerrors.Reporter) {
	for _, e := range reporter.Errors() {
		fmt.Fprintln(os.Stderr, e.Format())
	}
}

func dumpEnvironment(it *interp.Interp) {
	fmt.Println("Globals:")
	pretty.Println(it.GC().Globals())
}
