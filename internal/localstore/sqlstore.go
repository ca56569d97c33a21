package localstore

import (
	"context"
	"fmt"
	"time"

	"github.com/jmoiron/sqlx"
	_ "github.com/lib/pq"
)

const sqlOpTimeout = 5 * time.Second

// SQLSet keeps the submitted-order set in Postgres, keyed by storage name
// so several client installations can share one database.
type SQLSet struct {
	memSet
	db  *sqlx.DB
	key string
}

// NewSQLSet connects to databaseURL and loads the set stored under key.
func NewSQLSet(databaseURL, key string) (*SQLSet, error) {
	db, err := sqlx.Connect("postgres", databaseURL)
	if err != nil {
		return nil, fmt.Errorf("failed to connect to database: %w", err)
	}

	db.SetMaxOpenConns(5)
	db.SetConnMaxLifetime(5 * time.Minute)

	ctx, cancel := context.WithTimeout(context.Background(), sqlOpTimeout)
	defer cancel()

	if _, err := db.ExecContext(ctx, `
		CREATE TABLE IF NOT EXISTS submitted_orders (
			storage_key TEXT NOT NULL,
			order_id    TEXT NOT NULL,
			created_at  TIMESTAMPTZ NOT NULL DEFAULT NOW(),
			PRIMARY KEY (storage_key, order_id)
		)`); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to ensure order set table: %w", err)
	}

	var ids []string
	if err := db.SelectContext(ctx, &ids,
		"SELECT order_id FROM submitted_orders WHERE storage_key = $1 ORDER BY created_at",
		key); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to load order set: %w", err)
	}

	s := &SQLSet{db: db, key: key}
	s.init(ids)
	return s, nil
}

// Add inserts id before recording it in memory.
func (s *SQLSet) Add(id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, dup := s.members[id]; dup {
		return nil
	}

	ctx, cancel := context.WithTimeout(context.Background(), sqlOpTimeout)
	defer cancel()

	if _, err := s.db.ExecContext(ctx,
		"INSERT INTO submitted_orders (storage_key, order_id) VALUES ($1, $2) ON CONFLICT DO NOTHING",
		s.key, id); err != nil {
		return fmt.Errorf("failed to persist order id: %w", err)
	}
	s.add(id)
	return nil
}

// Close closes the database connection.
func (s *SQLSet) Close() error {
	return s.db.Close()
}
