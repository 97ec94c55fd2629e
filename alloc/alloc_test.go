package alloc

import (
	"sync"
	"testing"
	"unsafe"
)

// arena is a backing allocator that recycles freed blocks by size, so
// tests can observe stale memory reuse and count backing calls.
type arena struct {
	allocs, frees int
	free          map[int][]unsafe.Pointer
	fail          bool
}

func newArena() *arena {
	return &arena{free: map[int][]unsafe.Pointer{}}
}

func (a *arena) Allocate(size int) unsafe.Pointer {
	if a.fail {
		return nil
	}
	a.allocs++
	if l := a.free[size]; len(l) > 0 {
		p := l[len(l)-1]
		a.free[size] = l[:len(l)-1]
		return p
	}
	buf := make([]byte, size)
	return unsafe.Pointer(&buf[0])
}

func (a *arena) Free(p unsafe.Pointer, size int) {
	a.frees++
	a.free[size] = append(a.free[size], p)
}

func bytesAt(p unsafe.Pointer, n int) []byte {
	return unsafe.Slice((*byte)(p), n)
}

func TestRegistryAllocFree(t *testing.T) {
	a := newArena()
	r := NewRegistry(a)

	p := r.Alloc(16)
	if p == nil {
		t.Fatal("Alloc(16) = nil")
	}
	if got, want := r.LiveCount(), 1; got != want {
		t.Errorf("LiveCount = %d, want %d", got, want)
	}
	if got, want := r.LiveBytes(), 16; got != want {
		t.Errorf("LiveBytes = %d, want %d", got, want)
	}

	r.Free(p)
	if got := r.LiveCount(); got != 0 {
		t.Errorf("LiveCount after free = %d", got)
	}
	if got := r.LiveBytes(); got != 0 {
		t.Errorf("LiveBytes after free = %d", got)
	}
	if a.frees != 1 {
		t.Errorf("backing frees = %d, want 1", a.frees)
	}

	// nil and double frees are no-ops.
	r.Free(nil)
	r.Free(p)
	if a.frees != 1 {
		t.Errorf("backing frees after no-op frees = %d, want 1", a.frees)
	}

	if r.Alloc(0) != nil {
		t.Error("Alloc(0) != nil")
	}
}

func TestCallocZeroFills(t *testing.T) {
	a := newArena()
	r := NewRegistry(a)

	p := r.Alloc(32)
	for i := range bytesAt(p, 32) {
		bytesAt(p, 32)[i] = 0xff
	}
	r.Free(p)

	// The arena recycles the dirtied block; Calloc must scrub it.
	q := r.Calloc(8, 4)
	if q != p {
		t.Fatal("arena did not recycle the block")
	}
	for i, b := range bytesAt(q, 32) {
		if b != 0 {
			t.Fatalf("byte %d = %#x, want 0", i, b)
		}
	}
}

func TestReallocPreservesPrefix(t *testing.T) {
	a := newArena()
	r := NewRegistry(a)

	p := r.Alloc(8)
	for i := range bytesAt(p, 8) {
		bytesAt(p, 8)[i] = byte(i + 1)
	}

	p = r.Realloc(p, 16)
	if p == nil {
		t.Fatal("grow failed")
	}
	for i, b := range bytesAt(p, 8) {
		if b != byte(i+1) {
			t.Fatalf("grown byte %d = %d", i, b)
		}
	}
	if got, want := r.LiveBytes(), 16; got != want {
		t.Errorf("LiveBytes after grow = %d, want %d", got, want)
	}

	p = r.Realloc(p, 4)
	if p == nil {
		t.Fatal("shrink failed")
	}
	for i, b := range bytesAt(p, 4) {
		if b != byte(i+1) {
			t.Fatalf("shrunk byte %d = %d", i, b)
		}
	}
	if got, want := r.LiveCount(), 1; got != want {
		t.Errorf("LiveCount = %d, want %d", got, want)
	}
	if got, want := r.LiveBytes(), 4; got != want {
		t.Errorf("LiveBytes after shrink = %d, want %d", got, want)
	}
}

func TestReallocEdgeCases(t *testing.T) {
	a := newArena()
	r := NewRegistry(a)

	// nil pointer behaves as Alloc.
	p := r.Realloc(nil, 8)
	if p == nil || r.LiveCount() != 1 {
		t.Fatalf("Realloc(nil, 8) = %v, live %d", p, r.LiveCount())
	}

	// Size zero behaves as Free.
	if q := r.Realloc(p, 0); q != nil {
		t.Errorf("Realloc(p, 0) = %v, want nil", q)
	}
	if r.LiveCount() != 0 || r.LiveBytes() != 0 {
		t.Errorf("live after resize-to-zero: %d allocs, %d bytes",
			r.LiveCount(), r.LiveBytes())
	}
	if a.frees != 1 {
		t.Errorf("backing frees = %d, want 1", a.frees)
	}

	// An untracked pointer degrades to a fresh allocation.
	stray := heapAlloc(8)
	q := r.Realloc(stray, 16)
	if q == nil {
		t.Fatal("untracked realloc failed")
	}
	if r.LiveCount() != 1 || r.LiveBytes() != 16 {
		t.Errorf("live after untracked realloc: %d allocs, %d bytes",
			r.LiveCount(), r.LiveBytes())
	}
}

func TestBookkeepingFailure(t *testing.T) {
	a := newArena()
	r := NewRegistry(a, WithMaxLive(1))

	p := r.Alloc(8)
	if p == nil {
		t.Fatal("first alloc failed")
	}
	frees := a.frees
	if q := r.Alloc(8); q != nil {
		t.Fatal("second alloc exceeded max live")
	}
	// The rejected allocation went straight back to the backing
	// allocator.
	if a.frees != frees+1 {
		t.Errorf("backing frees = %d, want %d", a.frees, frees+1)
	}
	if r.LiveCount() != 1 {
		t.Errorf("LiveCount = %d, want 1", r.LiveCount())
	}
}

func TestReallocRollback(t *testing.T) {
	a := newArena()
	r := NewRegistry(a, WithMaxBytes(16))

	p := r.Alloc(8)
	for i := range bytesAt(p, 8) {
		bytesAt(p, 8)[i] = byte(i + 1)
	}

	if q := r.Realloc(p, 32); q != nil {
		t.Fatal("resize past max bytes succeeded")
	}
	// The failed resize rolled back: p stays tracked and intact.
	if r.LiveCount() != 1 || r.LiveBytes() != 8 {
		t.Fatalf("live after rollback: %d allocs, %d bytes",
			r.LiveCount(), r.LiveBytes())
	}
	for i, b := range bytesAt(p, 8) {
		if b != byte(i+1) {
			t.Fatalf("byte %d = %d after rollback", i, b)
		}
	}
	r.Free(p)

	// Backing failure on resize also leaves the original tracked.
	p = r.Alloc(8)
	a.fail = true
	if q := r.Realloc(p, 12); q != nil {
		t.Fatal("resize succeeded with failing backing")
	}
	if r.LiveCount() != 1 || r.LiveBytes() != 8 {
		t.Fatalf("live after backing failure: %d allocs, %d bytes",
			r.LiveCount(), r.LiveBytes())
	}
}

func TestInstallIntercepts(t *testing.T) {
	Install(GoHeap{})
	t.Cleanup(Uninstall)

	r := Installed()
	if r == nil {
		t.Fatal("Installed() = nil after Install")
	}
	p := Alloc(24)
	if p == nil {
		t.Fatal("Alloc through installed registry failed")
	}
	if r.LiveCount() != 1 || r.LiveBytes() != 24 {
		t.Errorf("live: %d allocs, %d bytes", r.LiveCount(), r.LiveBytes())
	}
	Free(p)
	if r.LiveCount() != 0 {
		t.Errorf("LiveCount after Free = %d", r.LiveCount())
	}

	Uninstall()
	if Installed() != nil {
		t.Error("Installed() != nil after Uninstall")
	}
	// Pass-through mode still serves memory.
	if Alloc(8) == nil {
		t.Error("pass-through Alloc failed")
	}
	Free(nil)
}

func TestConcurrentAllocFree(t *testing.T) {
	Install(GoHeap{})
	t.Cleanup(Uninstall)

	var wg sync.WaitGroup
	for g := 0; g < 8; g++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for i := 0; i < 200; i++ {
				p := Alloc(16 + i%32)
				if p == nil {
					t.Error("concurrent alloc failed")
					return
				}
				Free(p)
			}
		}()
	}
	wg.Wait()

	r := Installed()
	if r.LiveCount() != 0 || r.LiveBytes() != 0 {
		t.Errorf("live after churn: %d allocs, %d bytes",
			r.LiveCount(), r.LiveBytes())
	}
}

func TestMakeGrowRelease(t *testing.T) {
	Install(GoHeap{})
	t.Cleanup(Uninstall)
	r := Installed()

	s := Make[uint32](4)
	if len(s) != 4 {
		t.Fatalf("len = %d, want 4", len(s))
	}
	for i := range s {
		s[i] = uint32(i + 1)
	}

	s = Grow(s, 8)
	if len(s) != 8 {
		t.Fatalf("len after grow = %d, want 8", len(s))
	}
	for i := 0; i < 4; i++ {
		if s[i] != uint32(i+1) {
			t.Fatalf("s[%d] = %d after grow", i, s[i])
		}
	}
	if r.LiveCount() != 1 {
		t.Errorf("LiveCount = %d, want 1", r.LiveCount())
	}

	ReleaseSlice(s)
	if r.LiveCount() != 0 || r.LiveBytes() != 0 {
		t.Errorf("live after release: %d allocs, %d bytes",
			r.LiveCount(), r.LiveBytes())
	}

	if Make[uint32](0) != nil {
		t.Error("Make(0) != nil")
	}
	if Grow[uint32](nil, 2) == nil {
		t.Error("Grow(nil, 2) = nil")
	}
}

func TestGrowUntrackedWithRegistry(t *testing.T) {
	// A slice made before the registry went up is untracked: the
	// registry resize falls back to a fresh block, so Grow must copy
	// the contents itself.
	s := Make[uint32](4)
	for i := range s {
		s[i] = uint32(100 + i)
	}

	Install(GoHeap{})
	t.Cleanup(Uninstall)
	r := Installed()

	s = Grow(s, 8)
	if len(s) != 8 {
		t.Fatalf("len after grow = %d, want 8", len(s))
	}
	for i := 0; i < 4; i++ {
		if s[i] != uint32(100+i) {
			t.Fatalf("s[%d] = %d after grow, want %d", i, s[i], 100+i)
		}
	}
	// The grown block is tracked from here on.
	if r.LiveCount() != 1 {
		t.Errorf("LiveCount = %d, want 1", r.LiveCount())
	}
	ReleaseSlice(s)
	if r.LiveCount() != 0 {
		t.Errorf("LiveCount after release = %d, want 0", r.LiveCount())
	}
}

func TestGrowPassThrough(t *testing.T) {
	// No registry: Grow has no size record and must copy itself.
	s := Make[uint32](3)
	for i := range s {
		s[i] = uint32(10 + i)
	}
	s = Grow(s, 6)
	if len(s) != 6 {
		t.Fatalf("len = %d, want 6", len(s))
	}
	for i := 0; i < 3; i++ {
		if s[i] != uint32(10+i) {
			t.Fatalf("s[%d] = %d", i, s[i])
		}
	}
	ReleaseSlice(s)
}
