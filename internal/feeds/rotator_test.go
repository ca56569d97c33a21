package feeds

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestRotatorAdvanceWrapsAround(t *testing.T) {
	r := NewRotator(time.Hour)
	defer r.Stop()

	r.SetCount(3)

	assert.Equal(t, 0, r.Index())
	r.Advance()
	assert.Equal(t, 1, r.Index())
	r.Advance()
	assert.Equal(t, 2, r.Index())
	r.Advance()
	assert.Equal(t, 0, r.Index())
}

func TestRotatorDisarmedBelowTwoBanners(t *testing.T) {
	r := NewRotator(time.Hour)
	defer r.Stop()

	r.SetCount(1)
	r.Advance()
	assert.Equal(t, 0, r.Index())

	r.SetCount(0)
	r.Advance()
	assert.Equal(t, 0, r.Index())
}

func TestRotatorCountShrinkResetsIndex(t *testing.T) {
	r := NewRotator(time.Hour)
	defer r.Stop()

	r.SetCount(4)
	r.Advance()
	r.Advance()
	r.Advance()
	assert.Equal(t, 3, r.Index())

	r.SetCount(2)
	assert.Equal(t, 0, r.Index())
}

func TestRotatorSelectPinsIndex(t *testing.T) {
	r := NewRotator(time.Hour)
	defer r.Stop()

	r.SetCount(3)
	r.Select(2)
	assert.Equal(t, 2, r.Index())

	// Out-of-range selections are ignored.
	r.Select(7)
	assert.Equal(t, 2, r.Index())
	r.Select(-1)
	assert.Equal(t, 2, r.Index())
}

func TestRotatorTicks(t *testing.T) {
	r := NewRotator(5 * time.Millisecond)
	defer r.Stop()

	r.SetCount(2)
	r.Start()

	assert.Eventually(t, func() bool {
		return r.Index() != 0
	}, time.Second, 2*time.Millisecond)
}

func TestRotatorRestartsAfterStop(t *testing.T) {
	r := NewRotator(5 * time.Millisecond)
	defer r.Stop()

	r.SetCount(2)
	r.Start()
	assert.Eventually(t, func() bool {
		return r.Index() != 0
	}, time.Second, 2*time.Millisecond)

	r.Stop()
	r.Select(0)

	r.Start()
	assert.Eventually(t, func() bool {
		return r.Index() != 0
	}, time.Second, 2*time.Millisecond)
}

func TestRotatorStartWhileRunningIsNoOp(t *testing.T) {
	r := NewRotator(5 * time.Millisecond)
	defer r.Stop()

	r.SetCount(2)
	r.Start()
	r.Start()

	r.Stop()
	// Let the loop drain any tick already buffered at Stop time.
	time.Sleep(10 * time.Millisecond)
	r.Select(0)

	// The redundant Start must not leave a second loop behind that
	// keeps ticking past Stop.
	time.Sleep(25 * time.Millisecond)
	assert.Equal(t, 0, r.Index())

	r.Start()
	assert.Eventually(t, func() bool {
		return r.Index() != 0
	}, time.Second, 2*time.Millisecond)
}

func TestRotatorStopIdempotent(t *testing.T) {
	r := NewRotator(time.Hour)
	r.Start()

	r.Stop()
	r.Stop()
}
