package alloc

import (
	"sync"
	"sync/atomic"
	"unsafe"
)

// Allocator is the backing allocator behind an installed registry. It
// knows nothing about what the memory holds, only how big it is.
// Allocate returns nil on failure. Free is always called with the size
// recorded at allocation time, never a caller-supplied one.
type Allocator interface {
	Allocate(size int) unsafe.Pointer
	Free(ptr unsafe.Pointer, size int)
}

// Registry redirects the allocate/zero-allocate/resize/release quartet
// to a backing Allocator while tracking each live allocation's size.
type Registry struct {
	mu      sync.Mutex
	backing Allocator
	live    map[unsafe.Pointer]int
	bytes   int

	maxLive  int
	maxBytes int
}

// Option configures an installed registry.
type Option func(*Registry)

// WithMaxLive bounds how many allocations the registry will track at
// once. Exceeding it makes the bookkeeping insert fail, which surfaces
// to the caller as an allocation failure.
func WithMaxLive(n int) Option {
	return func(r *Registry) { r.maxLive = n }
}

// WithMaxBytes bounds the total tracked bytes the same way.
func WithMaxBytes(n int) Option {
	return func(r *Registry) { r.maxBytes = n }
}

// NewRegistry builds a registry over the given backing allocator.
func NewRegistry(a Allocator, opts ...Option) *Registry {
	r := &Registry{
		backing: a,
		live:    make(map[unsafe.Pointer]int),
	}
	for _, o := range opts {
		o(r)
	}
	return r
}

// active is the process-wide installed registry, nil when interception
// is off. Installing while allocations from a previous allocator are
// still live is only safe if the new allocator can free what the old
// one handed out.
var active atomic.Pointer[Registry]

// Install activates interception through a. Only one registry is active
// at a time; a later Install replaces the earlier one.
func Install(a Allocator, opts ...Option) {
	active.Store(NewRegistry(a, opts...))
}

// Uninstall deactivates interception and drops the tracking map. Any
// allocation still tracked at this point leaks: call it only after all
// engine objects have been released.
func Uninstall() {
	active.Store(nil)
}

// Installed reports the active registry, or nil.
func Installed() *Registry { return active.Load() }

// Alloc allocates size bytes, through the installed registry if any.
func Alloc(size int) unsafe.Pointer {
	if r := active.Load(); r != nil {
		return r.Alloc(size)
	}
	return heapAlloc(size)
}

// Calloc allocates count*size zero-filled bytes.
func Calloc(count, size int) unsafe.Pointer {
	if r := active.Load(); r != nil {
		return r.Calloc(count, size)
	}
	return heapAlloc(count * size)
}

// Realloc resizes an allocation. A nil ptr behaves as Alloc; size 0
// behaves as Free and returns nil.
func Realloc(ptr unsafe.Pointer, size int) unsafe.Pointer {
	if r := active.Load(); r != nil {
		return r.Realloc(ptr, size)
	}
	if size <= 0 {
		return nil
	}
	// Pass-through mode has no size record to copy from, so an
	// untracked resize degrades to a fresh allocation.
	return heapAlloc(size)
}

// Free releases an allocation. nil is a no-op.
func Free(ptr unsafe.Pointer) {
	if r := active.Load(); r != nil {
		r.Free(ptr)
	}
}

// Alloc allocates and tracks size bytes. It returns nil if either the
// backing allocation or the bookkeeping insert fails; in the latter
// case the fresh allocation is returned to the backing allocator first,
// so a bookkeeping failure never leaks.
func (r *Registry) Alloc(size int) unsafe.Pointer {
	if size <= 0 {
		return nil
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.allocLocked(size)
}

func (r *Registry) allocLocked(size int) unsafe.Pointer {
	p := r.backing.Allocate(size)
	if p == nil {
		return nil
	}
	if !r.insertLocked(p, size) {
		r.backing.Free(p, size)
		return nil
	}
	return p
}

func (r *Registry) insertLocked(p unsafe.Pointer, size int) bool {
	if r.maxLive > 0 && len(r.live) >= r.maxLive {
		return false
	}
	if r.maxBytes > 0 && r.bytes+size > r.maxBytes {
		return false
	}
	r.live[p] = size
	r.bytes += size
	return true
}

// Calloc allocates count*size bytes and zero-fills them before the
// caller can observe the memory.
func (r *Registry) Calloc(count, size int) unsafe.Pointer {
	total := count * size
	p := r.Alloc(total)
	if p == nil {
		return nil
	}
	clear(unsafe.Slice((*byte)(p), total))
	return p
}

// Realloc grows or shrinks a tracked allocation, atomically swapping
// the tracking entry. Untracked pointers (predating interception) fall
// back to a fresh allocation rather than failing. Resizing to zero is
// a release.
func (r *Registry) Realloc(ptr unsafe.Pointer, size int) unsafe.Pointer {
	if ptr == nil {
		return r.Alloc(size)
	}
	if size <= 0 {
		r.Free(ptr)
		return nil
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	oldSize, tracked := r.live[ptr]
	if !tracked {
		return r.allocLocked(size)
	}
	next := r.backing.Allocate(size)
	if next == nil {
		return nil
	}
	delete(r.live, ptr)
	r.bytes -= oldSize
	if !r.insertLocked(next, size) {
		// Roll the whole operation back: the old allocation stays
		// tracked, the resized memory is released.
		r.live[ptr] = oldSize
		r.bytes += oldSize
		r.backing.Free(next, size)
		return nil
	}
	n := oldSize
	if size < n {
		n = size
	}
	copy(unsafe.Slice((*byte)(next), n), unsafe.Slice((*byte)(ptr), n))
	r.backing.Free(ptr, oldSize)
	return next
}

// Free releases a tracked allocation using the size recorded at insert
// time; callers never supply sizes, which removes mismatched-size-free
// bugs entirely. nil and untracked pointers are no-ops.
func (r *Registry) Free(ptr unsafe.Pointer) {
	if ptr == nil {
		return
	}
	r.mu.Lock()
	size, ok := r.live[ptr]
	if ok {
		delete(r.live, ptr)
		r.bytes -= size
	}
	r.mu.Unlock()
	if ok {
		r.backing.Free(ptr, size)
	}
}

// Tracked reports whether ptr is a live allocation of this registry.
func (r *Registry) Tracked(ptr unsafe.Pointer) bool {
	r.mu.Lock()
	defer r.mu.Unlock()
	_, ok := r.live[ptr]
	return ok
}

// LiveCount reports how many allocations are currently tracked.
func (r *Registry) LiveCount() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return len(r.live)
}

// LiveBytes reports the total tracked allocation size.
func (r *Registry) LiveBytes() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.bytes
}
