// Command loxi runs the Lox tree-walking interpreter described in
// spec.md: a file argument executes that script, no argument starts an
// interactive REPL.
package main

import (
	"os"

	"github.com/loxlang/loxi/cmd/loxi/cmd"
)

func main() {
	os.Exit(cmd.Execute())
}
