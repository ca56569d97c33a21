package remote

import (
	"context"
	"fmt"
	"strings"

	"cloud.google.com/go/firestore"
	"go.uber.org/zap"
	"google.golang.org/api/option"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/status"

	"storefront/internal/util"
)

// FirestoreStore implements Store on Cloud Firestore. Collection listeners
// deliver the full result set on every change, matching the
// full-snapshot-wins contract of the sync layer.
type FirestoreStore struct {
	client *firestore.Client
	logger *zap.Logger
}

// NewFirestoreStore connects to Firestore. An empty credentialsFile falls
// back to Application Default Credentials.
func NewFirestoreStore(ctx context.Context, projectID, credentialsFile string) (*FirestoreStore, error) {
	var (
		client *firestore.Client
		err    error
	)
	if credentialsFile != "" {
		client, err = firestore.NewClient(ctx, projectID, option.WithCredentialsFile(credentialsFile))
	} else {
		client, err = firestore.NewClient(ctx, projectID)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to create firestore client: %w", err)
	}
	return &FirestoreStore{client: client, logger: util.GetLogger()}, nil
}

// Close closes the underlying client.
func (s *FirestoreStore) Close() error {
	return s.client.Close()
}

func isDocPath(path string) bool {
	return len(strings.Split(path, "/"))%2 == 0
}

// Subscribe starts a listener goroutine for path. The returned disposer
// cancels the listener; no callbacks fire after it returns.
func (s *FirestoreStore) Subscribe(path string, fn SnapshotFunc) (Disposer, error) {
	if path == "" {
		return nil, fmt.Errorf("subscribe: empty path")
	}
	ctx, cancel := context.WithCancel(context.Background())

	if isDocPath(path) {
		go s.watchDoc(ctx, path, fn)
	} else {
		go s.watchCollection(ctx, path, fn)
	}
	return Disposer(cancel), nil
}

func (s *FirestoreStore) watchCollection(ctx context.Context, path string, fn SnapshotFunc) {
	it := s.client.Collection(path).Snapshots(ctx)
	defer it.Stop()

	for {
		snap, err := it.Next()
		if err != nil {
			if status.Code(err) == codes.Canceled || ctx.Err() != nil {
				return
			}
			s.logger.Error("Collection listener failed",
				zap.String("path", path), zap.Error(err))
			return
		}

		docs, err := snap.Documents.GetAll()
		if err != nil {
			s.logger.Error("Failed to read collection snapshot",
				zap.String("path", path), zap.Error(err))
			continue
		}

		out := Snapshot{Docs: make([]Document, 0, len(docs)), Exists: true}
		for _, d := range docs {
			out.Docs = append(out.Docs, Document{ID: d.Ref.ID, Data: d.Data()})
		}
		fn(out)
	}
}

func (s *FirestoreStore) watchDoc(ctx context.Context, path string, fn SnapshotFunc) {
	it := s.client.Doc(path).Snapshots(ctx)
	defer it.Stop()

	for {
		snap, err := it.Next()
		if err != nil {
			if status.Code(err) == codes.Canceled || ctx.Err() != nil {
				return
			}
			s.logger.Error("Document listener failed",
				zap.String("path", path), zap.Error(err))
			return
		}

		if !snap.Exists() {
			fn(Snapshot{Exists: false})
			continue
		}
		fn(Snapshot{
			Docs:   []Document{{ID: snap.Ref.ID, Data: snap.Data()}},
			Exists: true,
		})
	}
}

// Get reads a document once.
func (s *FirestoreStore) Get(ctx context.Context, path string) (map[string]interface{}, bool, error) {
	snap, err := s.client.Doc(path).Get(ctx)
	if status.Code(err) == codes.NotFound {
		return nil, false, nil
	}
	if err != nil {
		return nil, false, fmt.Errorf("failed to get %s: %w", path, err)
	}
	return snap.Data(), true, nil
}

// Set writes a document, optionally merging into existing fields.
func (s *FirestoreStore) Set(ctx context.Context, path string, data interface{}, merge bool) error {
	var opts []firestore.SetOption
	if merge {
		opts = append(opts, firestore.MergeAll)
	}
	if _, err := s.client.Doc(path).Set(ctx, data, opts...); err != nil {
		return fmt.Errorf("failed to set %s: %w", path, err)
	}
	return nil
}

// Update applies a partial update to an existing document.
func (s *FirestoreStore) Update(ctx context.Context, path string, fields map[string]interface{}) error {
	updates := make([]firestore.Update, 0, len(fields))
	for k, v := range fields {
		updates = append(updates, firestore.Update{Path: k, Value: v})
	}
	if _, err := s.client.Doc(path).Update(ctx, updates); err != nil {
		return fmt.Errorf("failed to update %s: %w", path, err)
	}
	return nil
}

// Delete removes a document.
func (s *FirestoreStore) Delete(ctx context.Context, path string) error {
	if _, err := s.client.Doc(path).Delete(ctx); err != nil {
		return fmt.Errorf("failed to delete %s: %w", path, err)
	}
	return nil
}
