package interp

import (
	"fmt"
	"sort"
	"time"

	"github.com/maruel/natural"

	"github.com/loxlang/loxi/internal/runtime"
)

const helpText = `loxi: a tree-walking Lox interpreter

  clock()   milliseconds since the interpreter started, as a Number
  env()     list currently bound global names
  help()    print this text
  quit()    exit the REPL
`

// defineNatives registers spec.md §4.6's native callables. clock is
// always available; help/env/quit only make sense with a REPL session
// driving the evaluator, so they are wired up only when interactive.
func (it *Interp) defineNatives() {
	it.startTime = time.Now()
	it.defineNative("clock", 0, it.nativeClock)

	if !it.interactive {
		return
	}
	it.defineNative("help", 0, it.nativeHelp)
	it.defineNative("env", 0, it.nativeEnv)
	it.defineNative("quit", 0, it.nativeQuit)
}

func (it *Interp) defineNative(name string, arity int, fn func(gc *runtime.GC, args []*runtime.Value) (*runtime.Value, error)) {
	it.globals.DefineGlobal(name, it.gc.NewNativeValue(&runtime.Native{Name: name, Arity: arity, Fn: fn}))
}

func (it *Interp) nativeClock(gc *runtime.GC, args []*runtime.Value) (*runtime.Value, error) {
	elapsed := time.Since(it.startTime).Seconds() * 1000
	return gc.NewNumber(elapsed), nil
}

func (it *Interp) nativeHelp(gc *runtime.GC, args []*runtime.Value) (*runtime.Value, error) {
	fmt.Fprint(it.out, helpText)
	return runtime.Nil, nil
}

// nativeEnv prints the naturally-sorted set of currently bound global
// names (spec.md §4.6, §6 "REPL session report").
func (it *Interp) nativeEnv(gc *runtime.GC, args []*runtime.Value) (*runtime.Value, error) {
	names := it.globals.GlobalNames()
	sort.Sort(natural.StringSlice(names))
	for _, name := range names {
		fmt.Fprintln(it.out, name)
	}
	return runtime.Nil, nil
}

// quitRequested is returned by the `quit()` native as a sentinel error;
// the REPL driver (cmd/loxi) checks for it after each line and exits the
// session loop rather than printing it as a runtime error.
var quitRequested = fmt.Errorf("quit")

func (it *Interp) nativeQuit(gc *runtime.GC, args []*runtime.Value) (*runtime.Value, error) {
	return nil, quitRequested
}

// QuitRequested reports whether err is the sentinel raised by `quit()`.
func QuitRequested(err error) bool {
	return err == quitRequested
}
