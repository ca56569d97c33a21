package feeds

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"storefront/internal/remote"
)

func TestPromotionBannersAndLatch(t *testing.T) {
	store := newFakeStore()
	gate := NewGate(LatchBanners)
	p := NewPromotionSync(store, gate, "GoTher")
	_, err := p.Start()
	require.NoError(t, err)

	store.push("banners", docs(
		remote.Document{ID: "b1", Data: map[string]interface{}{"url": "https://cdn/b1.jpg"}},
		remote.Document{ID: "b2", Data: map[string]interface{}{"url": "https://cdn/b2.mp4", "link": "/p/p1"}},
	))

	banners := p.Banners()
	require.Len(t, banners, 2)
	assert.Equal(t, "/p/p1", banners[1].Link)
	assert.True(t, gate.Ready())
}

func TestPromotionConfigDoesNotGateReadiness(t *testing.T) {
	store := newFakeStore()
	gate := NewGate(LatchBanners)
	p := NewPromotionSync(store, gate, "GoTher")
	_, err := p.Start()
	require.NoError(t, err)

	store.push(StoreConfigPath, remote.Snapshot{
		Docs:   []remote.Document{{Data: map[string]interface{}{"whatsapp": "201234567890", "siteName": "My Store"}}},
		Exists: true,
	})

	assert.False(t, gate.Ready())
	assert.Equal(t, "My Store", p.SiteName())
	assert.Equal(t, "201234567890", p.WhatsApp())
}

func TestPromotionSiteNameDefaultsWhenConfigAbsent(t *testing.T) {
	store := newFakeStore()
	p := NewPromotionSync(store, nil, "GoTher")
	_, err := p.Start()
	require.NoError(t, err)

	// Missing settings document.
	store.push(StoreConfigPath, remote.Snapshot{Exists: false})

	assert.Equal(t, "GoTher", p.SiteName())
	assert.Empty(t, p.WhatsApp())
}
