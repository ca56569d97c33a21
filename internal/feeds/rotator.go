package feeds

import (
	"sync"
	"time"

	"storefront/internal/util"
)

// DefaultRotationInterval matches the storefront's banner carousel cadence.
const DefaultRotationInterval = 8 * time.Second

// Rotator advances the active banner index on a periodic tick. The timer
// is re-armed when the banner count changes, disarmed entirely (index
// pinned to 0) while the count is 1 or less, and released by Stop.
type Rotator struct {
	interval time.Duration

	mu    sync.Mutex
	count int
	index int
	armed bool

	ticker *time.Ticker
	stop   chan struct{}
}

// NewRotator builds a stopped rotator; Start launches its tick loop.
func NewRotator(interval time.Duration) *Rotator {
	if interval <= 0 {
		interval = DefaultRotationInterval
	}
	return &Rotator{interval: interval}
}

// Start runs the tick loop until Stop. The rotator may be restarted
// after a Stop; a second Start while running is a no-op.
func (r *Rotator) Start() {
	r.mu.Lock()
	if r.stop != nil {
		r.mu.Unlock()
		return
	}
	if r.ticker == nil {
		r.ticker = time.NewTicker(r.interval)
		r.ticker.Stop()
	}
	if r.armed {
		r.ticker.Reset(r.interval)
	}
	stop := make(chan struct{})
	r.stop = stop
	ticker := r.ticker
	r.mu.Unlock()

	go func() {
		for {
			select {
			case <-stop:
				return
			case <-ticker.C:
				r.Advance()
				util.BannerRotationsTotal.Inc()
			}
		}
	}()
}

// SetCount informs the rotator of the current banner count. Any change
// resets the index into range and re-arms or disarms the timer.
func (r *Rotator) SetCount(n int) {
	r.mu.Lock()
	defer r.mu.Unlock()

	if n == r.count {
		return
	}
	r.count = n

	if n <= 1 {
		r.index = 0
		r.armed = false
		if r.ticker != nil {
			r.ticker.Stop()
		}
		return
	}

	if r.index >= n {
		r.index = 0
	}
	r.armed = true
	if r.ticker != nil {
		r.ticker.Reset(r.interval)
	}
}

// Advance moves to the next banner, modulo the count. A no-op while the
// rotator is disarmed.
func (r *Rotator) Advance() {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.count <= 1 {
		return
	}
	r.index = (r.index + 1) % r.count
}

// Select pins the index, as when the user taps a carousel dot.
func (r *Rotator) Select(i int) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if i >= 0 && i < r.count {
		r.index = i
	}
}

// Index returns the active banner index.
func (r *Rotator) Index() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.index
}

// Stop halts the tick loop. Safe to call more than once, and the
// rotator may be started again afterwards.
func (r *Rotator) Stop() {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.stop == nil {
		return
	}
	close(r.stop)
	r.stop = nil
	if r.ticker != nil {
		r.ticker.Stop()
	}
}
