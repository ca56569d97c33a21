package feeds

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestGateReadyRequiresEveryLatch(t *testing.T) {
	g := NewLoadingGate()

	assert.False(t, g.Ready())

	g.Mark(LatchProducts)
	g.Mark(LatchCategories)
	g.Mark(LatchOrders)
	assert.False(t, g.Ready())

	g.Mark(LatchBanners)
	assert.True(t, g.Ready())
}

func TestGateOrderIndependent(t *testing.T) {
	g := NewLoadingGate()

	g.Mark(LatchBanners)
	g.Mark(LatchOrders)
	g.Mark(LatchProducts)
	g.Mark(LatchCategories)

	assert.True(t, g.Ready())
}

func TestGateNeverUnfires(t *testing.T) {
	g := NewLoadingGate()

	g.Mark(LatchProducts)
	g.Mark(LatchProducts)
	g.Mark(LatchCategories)
	g.Mark(LatchOrders)
	g.Mark(LatchBanners)
	assert.True(t, g.Ready())

	// Repeat marks must not panic or reset readiness.
	g.Mark(LatchBanners)
	assert.True(t, g.Ready())
}

func TestGateIgnoresUnknownLatch(t *testing.T) {
	g := NewGate(LatchProducts)

	g.Mark("weather")
	assert.False(t, g.Ready())

	g.Mark(LatchProducts)
	assert.True(t, g.Ready())
}

func TestGateDoneCloses(t *testing.T) {
	g := NewGate(LatchProducts)

	select {
	case <-g.Done():
		t.Fatal("done closed before any latch fired")
	default:
	}

	g.Mark(LatchProducts)

	select {
	case <-g.Done():
	default:
		t.Fatal("done not closed after readiness")
	}
}
