package feeds

import "sync"

// Latch names tracked by the loading gate. The settings document is folded
// into the banners latch: it may be absent entirely and cannot gate
// readiness on its own.
const (
	LatchProducts   = "products"
	LatchCategories = "categories"
	LatchOrders     = "orders"
	LatchBanners    = "banners"
)

// Gate aggregates first-snapshot signals into one readiness flag. It flips
// exactly once: a latch that has fired never unfires, and marking a latch
// twice has no effect.
type Gate struct {
	mu      sync.Mutex
	latches map[string]bool
	ready   bool
	done    chan struct{}
}

// NewGate builds a gate over the named latches.
func NewGate(names ...string) *Gate {
	latches := make(map[string]bool, len(names))
	for _, n := range names {
		latches[n] = false
	}
	return &Gate{latches: latches, done: make(chan struct{})}
}

// NewLoadingGate builds the standard four-latch gate.
func NewLoadingGate() *Gate {
	return NewGate(LatchProducts, LatchCategories, LatchOrders, LatchBanners)
}

// Mark records that the named feed has delivered at least one snapshot.
// Unknown names are ignored.
func (g *Gate) Mark(name string) {
	g.mu.Lock()
	defer g.mu.Unlock()

	if _, known := g.latches[name]; !known {
		return
	}
	g.latches[name] = true

	if g.ready {
		return
	}
	for _, fired := range g.latches {
		if !fired {
			return
		}
	}
	g.ready = true
	close(g.done)
}

// Ready reports whether every latch has fired at least once.
func (g *Gate) Ready() bool {
	g.mu.Lock()
	defer g.mu.Unlock()
	return g.ready
}

// Done returns a channel closed when the gate becomes ready.
func (g *Gate) Done() <-chan struct{} {
	return g.done
}
