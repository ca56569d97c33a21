package app

import (
	"context"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"storefront/config"
	"storefront/internal/identity"
	"storefront/internal/localstore"
	"storefront/internal/remote"
)

type fakeStore struct {
	mu   sync.Mutex
	subs map[string]remote.SnapshotFunc
}

func newFakeStore() *fakeStore {
	return &fakeStore{subs: make(map[string]remote.SnapshotFunc)}
}

func (f *fakeStore) Subscribe(path string, fn remote.SnapshotFunc) (remote.Disposer, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.subs[path] = fn
	return func() {}, nil
}

func (f *fakeStore) push(path string, snap remote.Snapshot) {
	f.mu.Lock()
	fn := f.subs[path]
	f.mu.Unlock()
	if fn != nil {
		fn(snap)
	}
}

func (f *fakeStore) Get(ctx context.Context, path string) (map[string]interface{}, bool, error) {
	return nil, false, nil
}

func (f *fakeStore) Set(ctx context.Context, path string, data interface{}, merge bool) error {
	return nil
}

func (f *fakeStore) Update(ctx context.Context, path string, fields map[string]interface{}) error {
	return nil
}

func (f *fakeStore) Delete(ctx context.Context, path string) error { return nil }

type fakeProvider struct {
	state identity.AuthState
}

func (f *fakeProvider) OnAuthStateChanged(fn identity.AuthFunc) identity.Disposer {
	fn(f.state)
	return func() {}
}

func (f *fakeProvider) SignIn(ctx context.Context, email, password string) error { return nil }

func (f *fakeProvider) SignUp(ctx context.Context, email, password, displayName string) error {
	return nil
}

func (f *fakeProvider) UpdateDisplayName(ctx context.Context, name string) error { return nil }
func (f *fakeProvider) SignOut(ctx context.Context) error                        { return nil }
func (f *fakeProvider) Current() identity.AuthState                              { return f.state }

func testConfig() *config.Config {
	cfg := &config.Config{}
	cfg.Store.AdminEmail = "admin@gother.com"
	cfg.Store.SiteName = "GoTher"
	cfg.Store.FallbackWhatsApp = "201000000000"
	return cfg
}

func TestStartSubscribesEveryFeed(t *testing.T) {
	store := newFakeStore()
	a := New(testConfig(), store, &fakeProvider{}, localstore.NewMemSet(), Options{})

	require.NoError(t, a.Start())
	defer a.Stop()

	for _, path := range []string{"products", "categories", "orders", "banners", "settings/store_config"} {
		assert.Contains(t, store.subs, path)
	}
}

func TestGateReadyAfterFirstSnapshots(t *testing.T) {
	store := newFakeStore()
	a := New(testConfig(), store, &fakeProvider{}, localstore.NewMemSet(), Options{})
	require.NoError(t, a.Start())
	defer a.Stop()

	assert.False(t, a.Gate.Ready())

	for _, path := range []string{"products", "categories", "orders", "banners"} {
		store.push(path, remote.Snapshot{Exists: true})
	}

	assert.True(t, a.Gate.Ready())
}

func TestRotatorFollowsBannerCount(t *testing.T) {
	store := newFakeStore()
	a := New(testConfig(), store, &fakeProvider{}, localstore.NewMemSet(), Options{})
	require.NoError(t, a.Start())
	defer a.Stop()

	store.push("banners", remote.Snapshot{
		Docs: []remote.Document{
			{ID: "b1", Data: map[string]interface{}{"url": "https://cdn/b1.jpg"}},
			{ID: "b2", Data: map[string]interface{}{"url": "https://cdn/b2.jpg"}},
			{ID: "b3", Data: map[string]interface{}{"url": "https://cdn/b3.jpg"}},
		},
		Exists: true,
	})

	a.Rotator.Advance()
	a.Rotator.Advance()
	a.Rotator.Advance()
	assert.Equal(t, 0, a.Rotator.Index())

	// Dropping to a single banner pins the carousel.
	store.push("banners", remote.Snapshot{
		Docs:   []remote.Document{{ID: "b1", Data: map[string]interface{}{"url": "https://cdn/b1.jpg"}}},
		Exists: true,
	})
	a.Rotator.Advance()
	assert.Equal(t, 0, a.Rotator.Index())
}

func TestRestartAfterStop(t *testing.T) {
	store := newFakeStore()
	a := New(testConfig(), store, &fakeProvider{}, localstore.NewMemSet(), Options{})
	require.NoError(t, a.Start())
	a.Stop()

	require.NoError(t, a.Start())
	defer a.Stop()

	// The rotator must come back to life with the re-subscribed feed.
	store.push("banners", remote.Snapshot{
		Docs: []remote.Document{
			{ID: "b1", Data: map[string]interface{}{"url": "https://cdn/b1.jpg"}},
			{ID: "b2", Data: map[string]interface{}{"url": "https://cdn/b2.jpg"}},
		},
		Exists: true,
	})
	a.Rotator.Advance()
	assert.Equal(t, 1, a.Rotator.Index())
}

func TestStartTwiceFails(t *testing.T) {
	store := newFakeStore()
	a := New(testConfig(), store, &fakeProvider{}, localstore.NewMemSet(), Options{})
	require.NoError(t, a.Start())
	defer a.Stop()

	assert.Error(t, a.Start())
}
