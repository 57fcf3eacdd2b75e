package cache

import (
	"runtime"
	"sync"
	"sync/atomic"
	"weak"

	"github.com/google/uuid"
	"github.com/scttfrdmn/tilecache/pkg/sysmem"
)

// lowMemoryThreshold is the available-memory fraction below which the
// memory probe triggers recovery, then broadcast cancel.
const lowMemoryThreshold = 0.20

// MemoryProbe reports the current fraction of available host memory.
// Injectable so tests can simulate memory pressure without touching
// real system state.
type MemoryProbe func() float64

// Coordinator is the process-wide registry of live Cache instances:
// it holds weak, non-owning references for visibility-window
// broadcast and memory-pressure cancel fan-out. One Coordinator is
// normally shared by an entire process; tests may construct private
// ones.
type Coordinator struct {
	mu       sync.Mutex
	caches   map[uuid.UUID]weak.Pointer[Cache]
	memCheck sync.Mutex

	corruptIndex atomic.Bool

	probe MemoryProbe
}

// NewCoordinator constructs an empty coordinator. probe reports
// available-memory fraction in [0,1]; pass nil to use sysmem.AvailableFraction.
func NewCoordinator(probe MemoryProbe) *Coordinator {
	if probe == nil {
		probe = sysmem.AvailableFraction
	}
	return &Coordinator{
		caches: make(map[uuid.UUID]weak.Pointer[Cache]),
		probe:  probe,
	}
}

// register adds c to the registry under a fresh key and returns that
// key, for later unregister. Mirrors "explicit registration... in the
// cache constructor under the registry lock".
func (co *Coordinator) register(c *Cache) uuid.UUID {
	co.mu.Lock()
	defer co.mu.Unlock()
	id := uuid.New()
	co.caches[id] = weak.Make(c)
	return id
}

// unregister removes the entry for id, mirroring explicit
// deregistration in the cache destructor.
func (co *Coordinator) unregister(id uuid.UUID) {
	co.mu.Lock()
	defer co.mu.Unlock()
	delete(co.caches, id)
}

// live returns strong pointers to every still-live registered cache,
// pruning dead weak references encountered along the way.
func (co *Coordinator) live() []*Cache {
	co.mu.Lock()
	defer co.mu.Unlock()
	out := make([]*Cache, 0, len(co.caches))
	for id, w := range co.caches {
		c := w.Value()
		if c == nil {
			delete(co.caches, id)
			continue
		}
		out = append(out, c)
	}
	return out
}

// BroadcastVisibilityChanged tells every live instance to recompute
// its tile size and, per the hysteresis rule, rebuild its store if
// the ratio crosses 2x/0.5x.
func (co *Coordinator) BroadcastVisibilityChanged(newMaxVisibleRangeKB float64) {
	for _, c := range co.live() {
		c.updateVisibilityWindow(newMaxVisibleRangeKB)
	}
}

// CorruptIndex reports whether the process-wide corrupt-index latch
// has been set. Once set it persists until process restart.
func (co *Coordinator) CorruptIndex() bool { return co.corruptIndex.Load() }

// SetCorruptIndex sets the sticky corrupt-index latch.
func (co *Coordinator) SetCorruptIndex() { co.corruptIndex.Store(true) }

// checkMemory runs the global memory-pressure protocol. It is
// serialized: only one memory check may run at a time across the
// whole process. Returns true if the caller should cancel loading.
func (co *Coordinator) checkMemory() bool {
	co.memCheck.Lock()
	defer co.memCheck.Unlock()

	if co.probe() >= lowMemoryThreshold {
		return false
	}

	// First failure: attempt recovery, then give the runtime a
	// generational hint before re-probing.
	co.clearAllCaches()
	runtime.GC()

	if co.probe() >= lowMemoryThreshold {
		return false
	}

	// Second failure: escalate to broadcast cancel.
	co.cancelReaders()
	return true
}

// clearAllCaches empties every live instance's tile store, the
// recovery attempt in the low-memory protocol.
func (co *Coordinator) clearAllCaches() {
	for _, c := range co.live() {
		c.store.Clear()
	}
}

// cancelReaders sets the cancel flag on every live instance and
// clears the registry.
func (co *Coordinator) cancelReaders() {
	co.mu.Lock()
	ids := make([]uuid.UUID, 0, len(co.caches))
	caches := make([]*Cache, 0, len(co.caches))
	for id, w := range co.caches {
		if c := w.Value(); c != nil {
			ids = append(ids, id)
			caches = append(caches, c)
		}
	}
	co.caches = make(map[uuid.UUID]weak.Pointer[Cache])
	co.mu.Unlock()

	for _, c := range caches {
		c.cancel.Store(true)
	}
}
