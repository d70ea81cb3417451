package runtime

import "errors"

// Sentinel errors raised by the runtime package's own capacity checks.
// They carry no source line (the runtime package never sees one); the
// evaluator is responsible for attaching the current line and producing
// an *errors.RuntimeError when one of these reaches a call site.
var (
	// ErrTooManyConstants is the verbatim message spec.md §4.2 requires
	// "preserved for compatibility" for local-slot capacity overflow; the
	// global table is uncapped and never returns it. errTooManyFields
	// reuses it for instance field overflow.
	ErrTooManyConstants = errors.New("Too many constants in one chunk.")

	// ErrStackOverflow is raised when the pin stack depth cap is exceeded
	// (spec.md §4.3). The environment cap is checked by the evaluator,
	// which reports it with the same "Stack overflow." message.
	ErrStackOverflow = errors.New("Stack overflow.")

	errTooManyFields = ErrTooManyConstants
)
