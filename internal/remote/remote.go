// Package remote defines the port to the authoritative document store.
// The sync layer only ever sees this interface; the Firestore client in
// firestore.go is the production implementation.
package remote

import "context"

// Document is one record as delivered by the store, untyped. Typed decoding
// happens at the feed boundary (models parse functions).
type Document struct {
	ID   string
	Data map[string]interface{}
}

// Snapshot is the full current state of a subscribed path. For collection
// paths Docs holds every document; for document paths it holds at most one
// and Exists reports whether the document is present.
type Snapshot struct {
	Docs   []Document
	Exists bool
}

// SnapshotFunc receives each inbound snapshot. Within one subscription,
// snapshots are delivered in the order the store emits them.
type SnapshotFunc func(Snapshot)

// Disposer cancels a subscription. Safe to call more than once.
type Disposer func()

// Store is the remote document store contract. Paths use Firestore
// conventions: an odd number of slash-separated segments addresses a
// collection, an even number a document.
type Store interface {
	// Subscribe registers fn for pushes of the full current state of path.
	// The first snapshot is delivered as soon as the store has one, even if
	// the collection is empty.
	Subscribe(path string, fn SnapshotFunc) (Disposer, error)

	// Get reads a document once. ok is false when the document is absent.
	Get(ctx context.Context, path string) (data map[string]interface{}, ok bool, err error)

	// Set writes a document. With merge, unspecified fields are preserved.
	Set(ctx context.Context, path string, data interface{}, merge bool) error

	// Update applies a partial update to an existing document.
	Update(ctx context.Context, path string, fields map[string]interface{}) error

	// Delete removes a document.
	Delete(ctx context.Context, path string) error
}
