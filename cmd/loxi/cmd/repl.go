package cmd

import (
	"bufio"
	"fmt"
	"os"

	"github.com/charmbracelet/lipgloss"

	"github.com/loxlang/loxi/internal/ast"
	"github.com/loxlang/loxi/internal/config"
	loxerrors "github.com/loxlang/loxi/internal/errors"
	"github.com/loxlang/loxi/internal/interp"
	"github.com/loxlang/loxi/internal/lexer"
	"github.com/loxlang/loxi/internal/parser"
	"github.com/loxlang/loxi/internal/replstate"
	"github.com/loxlang/loxi/internal/resolver"
)

var (
	bannerStyle = lipgloss.NewStyle().Bold(true)
	errorStyle  = lipgloss.NewStyle().Foreground(lipgloss.Color("1"))
	promptStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("6"))
)

// runREPL implements spec.md §6's REPL: a 1-based `<N>> ` prompt, a
// welcome banner, and a session that keeps going after an error — each
// line is lexed, parsed, and resolved on its own, then merged into the
// running interpreter's side-table and globals (spec.md §6: "shares the
// globals and accumulated line buffer").
func runREPL(cfg config.Config) int {
	bannerStyle = bannerStyle.Foreground(lipgloss.Color(cfg.PromptColor))
	errorStyle = errorStyle.Foreground(lipgloss.Color(cfg.ErrorColor))
	promptStyle = promptStyle.Foreground(lipgloss.Color(cfg.PromptColor))

	fmt.Println(bannerStyle.Render(cfg.Banner))
	fmt.Println("Type help(); for help, quit(); to exit.")

	session := replstate.New()
	it := interp.New(cfg.RuntimeConfig(), make(map[ast.Expr]resolver.Binding), os.Stdout, true, cfg.UninitializedVariableIsError)

	reader := bufio.NewScanner(os.Stdin)
	for {
		fmt.Print(promptStyle.Render(session.Prompt()))
		if !reader.Scan() {
			fmt.Println()
			return ExitSuccess
		}
		line := reader.Text()
		session.Advance(line)

		reporter := loxerrors.NewReporter()
		l := lexer.New(line, reporter)
		tokens := l.ScanTokens()

		p := parser.New(tokens, reporter)
		program := p.Parse()

		if reporter.HadError() {
			printREPLErrors(reporter)
			continue
		}

		res := resolver.New(reporter)
		res.Resolve(program)
		if reporter.HadError() {
			printREPLErrors(reporter)
			continue
		}
		it.MergeLocals(res.Locals())

		if err := it.Interpret(program); err != nil {
			if interp.QuitRequested(err) {
				return ExitSuccess
			}
			if rt, ok := err.(*loxerrors.RuntimeError); ok {
				fmt.Fprint(os.Stderr, errorStyle.Render(rt.Format()))
			}
		}
	}
}

func printREPLErrors(reporter *loxerrors.Reporter) {
	for _, e := range reporter.Errors() {
		fmt.Fprintln(os.Stderr, errorStyle.Render(e.Format()))
	}
}
