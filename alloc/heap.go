package alloc

import "unsafe"

// heapAlloc is the pass-through path used when no registry is
// installed: plain Go heap memory, reclaimed by the collector once the
// caller drops its last view of it. Free is a no-op in this mode.
func heapAlloc(size int) unsafe.Pointer {
	if size <= 0 {
		return nil
	}
	buf := make([]byte, size)
	return unsafe.Pointer(&buf[0])
}

// GoHeap is an Allocator over the Go heap. It is the backing allocator
// to install when only the tracking behavior is wanted.
type GoHeap struct{}

func (GoHeap) Allocate(size int) unsafe.Pointer {
	return heapAlloc(size)
}

func (GoHeap) Free(ptr unsafe.Pointer, size int) {
	// Garbage collected once the registry's map entry is gone.
}
