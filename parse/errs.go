package parse

import "errors"

var (
	// ErrNoLanguage means Parse was called before SetLanguage.
	ErrNoLanguage = errors.New("no language set")
	// ErrIncompatibleVersion means the language was built against an
	// ABI outside the range this engine supports.
	ErrIncompatibleVersion = errors.New("incompatible language version")
	// ErrInvalidEncoding means a custom encoding was declared without a
	// decode function.
	ErrInvalidEncoding = errors.New("custom encoding needs a decode function")
	// ErrNoInput means the input has no read function.
	ErrNoInput = errors.New("input has no read function")
	// ErrRangeOverlap means included ranges are unordered or overlap.
	ErrRangeOverlap = errors.New("included ranges overlap or are out of order")
	// ErrCancelled means the cancel flag was observed set or a progress
	// callback asked to stop. The parse is resumable.
	ErrCancelled = errors.New("parse cancelled")
	// ErrTimedOut means the configured timeout elapsed. The parse is
	// resumable.
	ErrTimedOut = errors.New("parse timed out")
)
