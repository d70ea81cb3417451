package cmd

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/loxlang/loxi/internal/config"
)

// Exit codes, spec.md §6: 0 success, 65 syntax/resolution error, 70
// runtime error, -1 fatal (bad invocation).
const (
	ExitSuccess      = 0
	ExitCompileError = 65
	ExitRuntimeError = 70
	ExitUsage        = -1
)

var (
	configPath string
	dumpAST    bool
	dumpEnv    bool
	verbose    bool
)

var rootCmd = &cobra.Command{
	Use:   "loxi [path]",
	Short: "loxi — a tree-walking interpreter for Lox",
	Long: `loxi is a tree-walking interpreter for Lox: dynamically typed,
class-based, with first-class functions, lexical closures, single
inheritance, and a mark-and-sweep garbage collector.

Invoked with no arguments it starts an interactive REPL; given a single
file path it runs that script.`,
	Args:         cobra.MaximumNArgs(1),
	SilenceUsage: true,
	RunE: func(c *cobra.Command, args []string) error {
		cfg, err := config.Load(configPath)
		if err != nil {
			return err
		}
		if len(args) == 1 {
			exitCode = runFile(args[0], cfg)
			return nil
		}
		exitCode = runREPL(cfg)
		return nil
	},
}

// exitCode is set by rootCmd's RunE and read back by Execute, since
// cobra's own Execute only reports a Go error, not spec.md's three-way
// exit code taxonomy.
var exitCode int

func init() {
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "verbose output")
	rootCmd.PersistentFlags().StringVar(&configPath, "config", "", "path to a YAML configuration file")
	rootCmd.PersistentFlags().BoolVar(&dumpAST, "dump-ast", false, "pretty-print the parsed AST before running")
	rootCmd.PersistentFlags().BoolVar(&dumpEnv, "dump-env", false, "dump the global environment table before exit")

	rootCmd.AddCommand(runCmd)
}

// Execute runs the command tree and returns the process exit code.
func Execute() int {
	exitCode = ExitSuccess
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "loxi: %v\n", err)
		return ExitUsage
	}
	return exitCode
}
