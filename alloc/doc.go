// Package alloc intercepts the engine's dynamic allocations.
//
// By default every allocation passes straight through to the Go heap.
// Install activates interception: allocations are served by a
// caller-supplied Allocator that knows only sizes, and the registry
// tracks each live address so resize and release can recover the
// original allocation metadata. Failure is always reported as a nil
// pointer, never a panic; that is the engine's out-of-memory convention.
//
// The registry is the one component in this module that is safe for
// concurrent use from any goroutine: a single mutex guards every
// tracking-map access. Allocation is not the per-character hot path,
// so serializing the metadata updates is an acceptable trade.
package alloc
