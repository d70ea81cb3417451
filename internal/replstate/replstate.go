// Package replstate tracks REPL session bookkeeping: the 1-based line
// counter used in the prompt and the accumulated source buffer, kept
// separate from internal/interp so the evaluator itself stays agnostic
// of whether it is driven by a file or a line-at-a-time session
// (spec.md §6 "REPL").
package replstate

import "fmt"

// Session holds the state that persists across REPL lines: globals and
// the GC live inside the shared *interp.Interp; this only tracks what
// the prompt and transcript need.
type Session struct {
	line   int
	buffer []string
}

// New returns a Session starting at line 1.
func New() *Session {
	return &Session{line: 1}
}

// Prompt renders the current prompt, spec.md §6's `<N>> ` format.
func (s *Session) Prompt() string {
	return fmt.Sprintf("%d>> ", s.line)
}

// Advance records source for the current line and increments the
// counter, returning the accumulated transcript so far.
func (s *Session) Advance(source string) []string {
	s.buffer = append(s.buffer, source)
	s.line++
	return s.buffer
}

// Line returns the current 1-based line number.
func (s *Session) Line() int {
	return s.line
}

// Transcript returns every line entered so far, in order.
func (s *Session) Transcript() []string {
	return s.buffer
}
