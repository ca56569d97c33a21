package feeds

import (
	"context"
	"sync"

	"storefront/internal/remote"
)

// fakeStore records subscriptions by path and lets a test push snapshots.
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

func (f *fakeStore) Delete(ctx context.Context, path string) error {
	return nil
}

func docs(pairs ...remote.Document) remote.Snapshot {
	return remote.Snapshot{Docs: pairs, Exists: true}
}
