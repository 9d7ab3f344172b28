// Copyright 2026 The Punchlist Authors
// SPDX-License-Identifier: Apache-2.0

// Package itemstore implements the SQLite-backed record store for
// to-do items. One row per item, keyed by (owner, id).
//
// Key discipline: every statement carries the owner in its WHERE
// clause or inserted row. There is no operation that addresses a row
// by id alone, so a caller can never read or mutate another owner's
// records — isolation comes from key construction, not from checks
// after the fact.
package itemstore

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/google/uuid"
	"zombiezen.com/go/sqlite"
	"zombiezen.com/go/sqlite/sqlitex"

	"github.com/punchlist-io/punchlist/lib/clock"
	"github.com/punchlist-io/punchlist/lib/todo"
)

// Errors callers branch on. Everything else coming out of the store
// wraps the underlying SQLite error and should be treated as a
// storage failure.
var (
	// ErrNotFound is returned when no row matches (owner, id). The
	// store cannot tell "never existed" from "exists under another
	// owner" — by design, neither can the caller.
	ErrNotFound = errors.New("itemstore: item not found")

	// ErrMalformedKey is returned when an id does not parse as a
	// UUID. The handlers reclassify this as invalid input rather
	// than a storage failure: the statement never ran.
	ErrMalformedKey = errors.New("itemstore: malformed item id")
)

// schema is applied once per pooled connection. CREATE IF NOT EXISTS
// keeps it idempotent across connections and restarts.
const schema = `
	CREATE TABLE IF NOT EXISTS items (
		owner       TEXT NOT NULL,
		id          TEXT NOT NULL,
		title       TEXT NOT NULL,
		description TEXT NOT NULL DEFAULT '',
		status      TEXT NOT NULL DEFAULT 'pending',
		created_at  TEXT NOT NULL,
		updated_at  TEXT NOT NULL,
		PRIMARY KEY (owner, id)
	);
	CREATE INDEX IF NOT EXISTS idx_items_owner ON items(owner, created_at);
`

// itemColumns is the column list every read and RETURNING clause
// uses, in scanItem order.
const itemColumns = "owner, id, title, description, status, created_at, updated_at"

// Store manages SQLite storage for to-do items.
//
// Write path: Put performs an unconditional keyed write (create and
// seed loading). Update and Delete are single conditional statements
// — UPDATE/DELETE ... WHERE owner = ? AND id = ? RETURNING ... — so
// the existence check, the mutation, and the read-back of the
// resulting row happen in one statement. There is never a read
// followed by a dependent write.
//
// Read path: List returns every row for one owner; Get is the point
// read; Count feeds the status endpoint.
type Store struct {
	pool   *sqlitex.Pool
	clock  clock.Clock
	logger *slog.Logger
	path   string
}

// Config holds the parameters for opening an item store.
type Config struct {
	// Path is the filesystem path to the SQLite database file. The
	// parent directory must exist. The file is created if it does
	// not exist. Use ":memory:" with PoolSize 1 for tests.
	Path string

	// PoolSize is the number of connections in the pool. Defaults
	// to 4 if zero or negative. SQLite serializes writes regardless
	// of pool size; extra connections help concurrent reads.
	PoolSize int

	// Clock provides the time written to updated_at on every
	// update. Required.
	Clock clock.Clock

	// Logger receives operational messages. If nil, a no-op logger
	// is used.
	Logger *slog.Logger
}

// Open creates the connection pool, applies the standard pragmas to
// every connection, and creates the schema. The caller must call
// Close when the store is no longer needed.
func Open(cfg Config) (*Store, error) {
	if cfg.Path == "" {
		return nil, fmt.Errorf("itemstore: Path is required")
	}
	if cfg.Clock == nil {
		return nil, fmt.Errorf("itemstore: Clock is required")
	}

	logger := cfg.Logger
	if logger == nil {
		logger = slog.New(slog.DiscardHandler)
	}

	poolSize := cfg.PoolSize
	if poolSize <= 0 {
		poolSize = 4
	}

	pool, err := sqlitex.NewPool(cfg.Path, sqlitex.PoolOptions{
		PoolSize:    poolSize,
		PrepareConn: prepareConnection,
	})
	if err != nil {
		return nil, fmt.Errorf("itemstore: opening %s: %w", cfg.Path, err)
	}

	store := &Store{
		pool:   pool,
		clock:  cfg.Clock,
		logger: logger,
		path:   cfg.Path,
	}

	// Force one connection through PrepareConn now so that an
	// unopenable database or failed schema creation surfaces at
	// startup instead of on the first request.
	conn, err := pool.Take(context.Background())
	if err != nil {
		pool.Close()
		return nil, fmt.Errorf("itemstore: initializing %s: %w", cfg.Path, err)
	}
	pool.Put(conn)

	logger.Info("item store opened",
		"path", cfg.Path,
		"pool_size", poolSize,
	)

	return store, nil
}

// prepareConnection applies the standard pragmas and creates the
// schema. Runs once per connection in the pool, on first use.
func prepareConnection(conn *sqlite.Conn) error {
	// WAL mode: concurrent readers, single writer, no reader
	// blocking.
	pragmas := []string{
		"PRAGMA journal_mode=WAL",
		"PRAGMA synchronous=NORMAL",
		"PRAGMA busy_timeout=5000",
		"PRAGMA foreign_keys=OFF",
		"PRAGMA cache_size=-8192",
		"PRAGMA temp_store=MEMORY",
	}
	for _, pragma := range pragmas {
		if err := sqlitex.ExecuteTransient(conn, pragma, nil); err != nil {
			return fmt.Errorf("itemstore: %s: %w", pragma, err)
		}
	}

	if err := sqlitex.ExecuteScript(conn, schema, nil); err != nil {
		return fmt.Errorf("itemstore: creating schema: %w", err)
	}
	return nil
}

// Close closes the underlying connection pool. Blocks until all
// borrowed connections are returned.
func (s *Store) Close() error {
	if err := s.pool.Close(); err != nil {
		s.logger.Error("item store close error",
			"path", s.path,
			"error", err,
		)
		return fmt.Errorf("itemstore: closing %s: %w", s.path, err)
	}
	s.logger.Info("item store closed", "path", s.path)
	return nil
}

// validateKey rejects keys the schema cannot hold before any SQL
// runs: an empty owner or an id that is not a UUID.
func validateKey(owner, id string) error {
	if owner == "" {
		return fmt.Errorf("%w: empty owner", ErrMalformedKey)
	}
	if err := uuid.Validate(id); err != nil {
		return fmt.Errorf("%w: %q", ErrMalformedKey, id)
	}
	return nil
}

// Put writes a complete item unconditionally, replacing any existing
// row with the same (owner, id). The item must validate; Put is the
// write path for freshly constructed items and seed fixtures, both of
// which carry their own timestamps.
func (s *Store) Put(ctx context.Context, item todo.Item) error {
	if err := item.Validate(); err != nil {
		return fmt.Errorf("itemstore: put: %w", err)
	}
	if err := validateKey(item.Owner, item.ID); err != nil {
		return err
	}

	conn, err := s.pool.Take(ctx)
	if err != nil {
		return fmt.Errorf("itemstore: put: %w", err)
	}
	defer s.pool.Put(conn)

	err = sqlitex.Execute(conn,
		`INSERT OR REPLACE INTO items
			(owner, id, title, description, status, created_at, updated_at)
			VALUES (?, ?, ?, ?, ?, ?, ?)`,
		&sqlitex.ExecOptions{
			Args: []any{
				item.Owner,
				item.ID,
				item.Title,
				item.Description,
				string(item.Status),
				encodeTime(item.CreatedAt),
				encodeTime(item.UpdatedAt),
			},
		})
	if err != nil {
		return fmt.Errorf("itemstore: put %s: %w", item.ID, err)
	}
	return nil
}

// List returns all items belonging to owner, ordered by creation time
// then id for a stable listing. Returns an empty non-nil slice when
// the owner has no items.
func (s *Store) List(ctx context.Context, owner string) ([]todo.Item, error) {
	conn, err := s.pool.Take(ctx)
	if err != nil {
		return nil, fmt.Errorf("itemstore: list: %w", err)
	}
	defer s.pool.Put(conn)

	items := []todo.Item{}
	err = sqlitex.Execute(conn,
		"SELECT "+itemColumns+" FROM items WHERE owner = ? ORDER BY created_at, id",
		&sqlitex.ExecOptions{
			Args: []any{owner},
			ResultFunc: func(stmt *sqlite.Stmt) error {
				item, err := scanItem(stmt)
				if err != nil {
					return err
				}
				items = append(items, item)
				return nil
			},
		})
	if err != nil {
		return nil, fmt.Errorf("itemstore: list: %w", err)
	}
	return items, nil
}

// Get returns the item at (owner, id), or ErrNotFound when no row
// matches.
func (s *Store) Get(ctx context.Context, owner, id string) (todo.Item, error) {
	if err := validateKey(owner, id); err != nil {
		return todo.Item{}, err
	}

	conn, err := s.pool.Take(ctx)
	if err != nil {
		return todo.Item{}, fmt.Errorf("itemstore: get: %w", err)
	}
	defer s.pool.Put(conn)

	var item todo.Item
	found := false
	err = sqlitex.Execute(conn,
		"SELECT "+itemColumns+" FROM items WHERE owner = ? AND id = ?",
		&sqlitex.ExecOptions{
			Args: []any{owner, id},
			ResultFunc: func(stmt *sqlite.Stmt) error {
				scanned, err := scanItem(stmt)
				if err != nil {
					return err
				}
				item = scanned
				found = true
				return nil
			},
		})
	if err != nil {
		return todo.Item{}, fmt.Errorf("itemstore: get %s: %w", id, err)
	}
	if !found {
		return todo.Item{}, ErrNotFound
	}
	return item, nil
}

// Update applies the patch's present fields to the item at
// (owner, id) in a single conditional statement and returns the
// post-update row. The SET clause is built from whichever fields the
// patch carries; updated_at is always rewritten. No row matched means
// ErrNotFound — the statement never inserts.
//
// The caller validates the patch first. Titles are stored trimmed.
func (s *Store) Update(ctx context.Context, owner, id string, patch todo.Patch) (todo.Item, error) {
	if err := validateKey(owner, id); err != nil {
		return todo.Item{}, err
	}

	var assignments []string
	var args []any

	if patch.Title != nil {
		assignments = append(assignments, "title = ?")
		args = append(args, strings.TrimSpace(*patch.Title))
	}
	if patch.Description != nil {
		assignments = append(assignments, "description = ?")
		args = append(args, *patch.Description)
	}
	if patch.Status != nil {
		assignments = append(assignments, "status = ?")
		args = append(args, *patch.Status)
	}
	assignments = append(assignments, "updated_at = ?")
	args = append(args, encodeTime(s.clock.Now()))

	query := "UPDATE items SET " + strings.Join(assignments, ", ") +
		" WHERE owner = ? AND id = ? RETURNING " + itemColumns
	args = append(args, owner, id)

	conn, err := s.pool.Take(ctx)
	if err != nil {
		return todo.Item{}, fmt.Errorf("itemstore: update: %w", err)
	}
	defer s.pool.Put(conn)

	var item todo.Item
	found := false
	err = sqlitex.Execute(conn, query, &sqlitex.ExecOptions{
		Args: args,
		ResultFunc: func(stmt *sqlite.Stmt) error {
			scanned, err := scanItem(stmt)
			if err != nil {
				return err
			}
			item = scanned
			found = true
			return nil
		},
	})
	if err != nil {
		return todo.Item{}, fmt.Errorf("itemstore: update %s: %w", id, err)
	}
	if !found {
		return todo.Item{}, ErrNotFound
	}
	return item, nil
}

// Delete removes the item at (owner, id) in a single conditional
// statement and returns the deleted row, or ErrNotFound when no row
// matched.
func (s *Store) Delete(ctx context.Context, owner, id string) (todo.Item, error) {
	if err := validateKey(owner, id); err != nil {
		return todo.Item{}, err
	}

	conn, err := s.pool.Take(ctx)
	if err != nil {
		return todo.Item{}, fmt.Errorf("itemstore: delete: %w", err)
	}
	defer s.pool.Put(conn)

	var item todo.Item
	found := false
	err = sqlitex.Execute(conn,
		"DELETE FROM items WHERE owner = ? AND id = ? RETURNING "+itemColumns,
		&sqlitex.ExecOptions{
			Args: []any{owner, id},
			ResultFunc: func(stmt *sqlite.Stmt) error {
				scanned, err := scanItem(stmt)
				if err != nil {
					return err
				}
				item = scanned
				found = true
				return nil
			},
		})
	if err != nil {
		return todo.Item{}, fmt.Errorf("itemstore: delete %s: %w", id, err)
	}
	if !found {
		return todo.Item{}, ErrNotFound
	}
	return item, nil
}

// Count returns the total number of items across all owners. Used by
// the status endpoint.
func (s *Store) Count(ctx context.Context) (int64, error) {
	conn, err := s.pool.Take(ctx)
	if err != nil {
		return 0, fmt.Errorf("itemstore: count: %w", err)
	}
	defer s.pool.Put(conn)

	var count int64
	err = sqlitex.Execute(conn, "SELECT COUNT(*) FROM items", &sqlitex.ExecOptions{
		ResultFunc: func(stmt *sqlite.Stmt) error {
			count = stmt.ColumnInt64(0)
			return nil
		},
	})
	if err != nil {
		return 0, fmt.Errorf("itemstore: count: %w", err)
	}
	return count, nil
}

// scanItem reads one row in itemColumns order.
func scanItem(stmt *sqlite.Stmt) (todo.Item, error) {
	var item todo.Item

	// Columns: owner(0), id(1), title(2), description(3), status(4),
	// created_at(5), updated_at(6)

	item.Owner = stmt.ColumnText(0)
	item.ID = stmt.ColumnText(1)
	item.Title = stmt.ColumnText(2)
	item.Description = stmt.ColumnText(3)
	item.Status = todo.Status(stmt.ColumnText(4))

	createdAt, err := parseTime(stmt.ColumnText(5))
	if err != nil {
		return item, fmt.Errorf("parse created_at: %w", err)
	}
	item.CreatedAt = createdAt

	updatedAt, err := parseTime(stmt.ColumnText(6))
	if err != nil {
		return item, fmt.Errorf("parse updated_at: %w", err)
	}
	item.UpdatedAt = updatedAt

	return item, nil
}

// timeLayout is RFC 3339 with a fixed nine-digit fraction. Unlike
// RFC3339Nano it never trims trailing zeros, so every stored string
// has the same width and lexicographic order matches chronological
// order — ORDER BY created_at on the TEXT column is a time sort.
const timeLayout = "2006-01-02T15:04:05.000000000Z07:00"

// encodeTime renders a timestamp for TEXT storage, always UTC.
func encodeTime(t time.Time) string {
	return t.UTC().Format(timeLayout)
}

func parseTime(s string) (time.Time, error) {
	return time.Parse(time.RFC3339Nano, s)
}
