// Package errors provides shared diagnostic formatting for loxi: the
// scan/parse/resolve error shape and the runtime error shape, plus an
// accumulator used by the scanner, parser and resolver to keep going after
// the first problem instead of aborting immediately.
package errors

import "fmt"

// CompileError is a single scan, parse or resolve diagnostic.
//
// Where is "", " at end", or " at '<lexeme>'" and is folded directly into
// Format's output; callers build it rather than Format inferring it, since
// only the caller knows whether it is looking at an EOF token or a named
// lexeme.
type CompileError struct {
	Line    int
	Where   string
	Message string
}

// Format renders the diagnostic as "[line <N>] Error<where>: <message>".
func (e CompileError) Format() string {
	return fmt.Sprintf("[line %d] Error%s: %s", e.Line, e.Where, e.Message)
}

func (e CompileError) Error() string { return e.Format() }

// RuntimeError is raised during evaluation and unwinds to the outermost
// interpreter entry point (spec.md §4.5, "non-local exits").
type RuntimeError struct {
	Message string
	Line    int
}

func (e *RuntimeError) Error() string { return e.Message }

// Format renders the diagnostic as "<message>\n[line <N>]\n".
func (e *RuntimeError) Format() string {
	return fmt.Sprintf("%s\n[line %d]\n", e.Message, e.Line)
}

// NewRuntimeError builds a RuntimeError, formatting Message the way fmt.Sprintf would.
func NewRuntimeError(line int, format string, args ...any) *RuntimeError {
	return &RuntimeError{Line: line, Message: fmt.Sprintf(format, args...)}
}

// Reporter accumulates compile-time diagnostics across a scan/parse/resolve
// pass. The scanner, parser and resolver each hold one (or share one) so
// that a run collects every error it can before the pipeline aborts, rather
// than stopping at the first.
type Reporter struct {
	errors []CompileError
}

// NewReporter returns an empty Reporter.
func NewReporter() *Reporter {
	return &Reporter{}
}

// Report records a diagnostic at the given line with no location suffix.
func (r *Reporter) Report(line int, message string) {
	r.errors = append(r.errors, CompileError{Line: line, Message: message})
}

// ReportAt records a diagnostic with an explicit location suffix ("" / " at
// end" / " at '<lexeme>'").
func (r *Reporter) ReportAt(line int, where, message string) {
	r.errors = append(r.errors, CompileError{Line: line, Where: where, Message: message})
}

// HadError reports whether any diagnostic has been recorded.
func (r *Reporter) HadError() bool {
	return len(r.errors) > 0
}

// Errors returns the accumulated diagnostics in report order.
func (r *Reporter) Errors() []CompileError {
	return r.errors
}

// Reset clears accumulated diagnostics so the Reporter can be reused for a
// fresh pass.
func (r *Reporter) Reset() {
	r.errors = nil
}
