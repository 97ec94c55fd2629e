package parse

// ProgressState is a snapshot handed to the progress callback.
type ProgressState struct {
	// Offset is the byte position the parse has reached.
	Offset uint32
	// HasError reports whether any error or missing node has been
	// produced so far.
	HasError bool
}

// Options tune one Parse call.
type Options struct {
	// Progress, when set, is invoked at bounded intervals during the
	// parse. Returning true stops the parse with ErrCancelled; the
	// partial state is kept for resumption.
	Progress func(ProgressState) bool
}
