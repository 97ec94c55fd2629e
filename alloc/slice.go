package alloc

import "unsafe"

// Make allocates a []T of length n through the interception layer.
// T must not contain Go pointers: the collector does not trace
// registry-managed memory as typed storage. The engine only uses this
// for flat value types (ranges, byte scratch).
//
// Returns nil when the allocation fails.
func Make[T any](n int) []T {
	if n <= 0 {
		return nil
	}
	var zero T
	p := Alloc(n * int(unsafe.Sizeof(zero)))
	if p == nil {
		return nil
	}
	return unsafe.Slice((*T)(p), n)
}

// Grow resizes a Make-allocated slice to length n, preserving contents
// up to the smaller length. A nil slice behaves as Make. Returns nil on
// failure, in which case the original slice is still valid (tracked
// registries roll a failed resize back).
func Grow[T any](s []T, n int) []T {
	if s == nil {
		return Make[T](n)
	}
	if n <= 0 {
		ReleaseSlice(s)
		return nil
	}
	var zero T
	elem := int(unsafe.Sizeof(zero))
	ptr := unsafe.Pointer(unsafe.SliceData(s))
	// Only a tracked resize copies inside the registry. Pass-through
	// mode and untracked pointers (a slice made before the registry was
	// installed, or during a heap fallback) get a fresh block with no
	// size record; copy here, where the old view is still at hand.
	r := Installed()
	moved := r != nil && r.Tracked(ptr)
	p := Realloc(ptr, n*elem)
	if p == nil {
		return nil
	}
	out := unsafe.Slice((*T)(p), n)
	if !moved {
		copy(out, s)
	}
	return out
}

// ReleaseSlice returns a Make-allocated slice to the interception layer.
func ReleaseSlice[T any](s []T) {
	if len(s) == 0 {
		return
	}
	Free(unsafe.Pointer(unsafe.SliceData(s)))
}
