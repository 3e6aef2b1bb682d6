// Package tagdb is the tag database collaborator: persistent tag-identifier
// to product records, plus the resolution of a manifest's product codes into
// the exact tag identifiers the monitor's completeness predicate compares
// against.
package tagdb

import (
	"context"
	"database/sql"
	"errors"
	"sync"
	"time"

	_ "modernc.org/sqlite"

	derrors "git.home.luguber.info/inful/dispatchmon/internal/errors"
	"git.home.luguber.info/inful/dispatchmon/internal/manifest"
	"git.home.luguber.info/inful/dispatchmon/internal/util/sets"
)

// Record is one registered tag: the physical tag identifier and the product
// it is attached to.
type Record struct {
	TagID        string    `json:"tag_id"`
	ProductCode  string    `json:"product_code"`
	Description  string    `json:"description,omitempty"`
	RegisteredAt time.Time `json:"registered_at"`
}

// Store is a SQLite-backed tag database.
// Use ":memory:" for an in-memory database, or a file path for persistence.
type Store struct {
	db *sql.DB
	mu sync.RWMutex
}

// Open opens (creating if necessary) the tag database at dbPath.
func Open(dbPath string) (*Store, error) {
	db, err := sql.Open("sqlite", dbPath)
	if err != nil {
		return nil, derrors.TagDBError("open", err)
	}
	s := &Store{db: db}
	if err := s.initialize(); err != nil {
		_ = db.Close() // Best effort cleanup on initialization error
		return nil, derrors.TagDBError("initialize", err)
	}
	return s, nil
}

func (s *Store) initialize() error {
	schema := `
	CREATE TABLE IF NOT EXISTS tags (
		tag_id TEXT PRIMARY KEY,
		product_code TEXT NOT NULL,
		description TEXT,
		registered_at INTEGER NOT NULL
	);
	CREATE INDEX IF NOT EXISTS idx_tags_product_code ON tags(product_code);
	`
	_, err := s.db.Exec(schema)
	return err
}

// Put inserts or replaces a tag record.
func (s *Store) Put(ctx context.Context, rec Record) error {
	if rec.TagID == "" {
		return derrors.ValidationFailed("tag_id", "must not be empty")
	}
	if rec.ProductCode == "" {
		return derrors.ValidationFailed("product_code", "must not be empty")
	}
	if rec.RegisteredAt.IsZero() {
		rec.RegisteredAt = time.Now()
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	_, err := s.db.ExecContext(ctx,
		"INSERT OR REPLACE INTO tags (tag_id, product_code, description, registered_at) VALUES (?, ?, ?, ?)",
		rec.TagID, rec.ProductCode, rec.Description, rec.RegisteredAt.Unix(),
	)
	if err != nil {
		return derrors.TagDBError("put", err)
	}
	return nil
}

// Get retrieves a tag record. Returns (nil, nil) when the tag is absent.
func (s *Store) Get(ctx context.Context, tagID string) (*Record, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	row := s.db.QueryRowContext(ctx,
		"SELECT tag_id, product_code, description, registered_at FROM tags WHERE tag_id = ?",
		tagID,
	)
	var rec Record
	var desc sql.NullString
	var registered int64
	if err := row.Scan(&rec.TagID, &rec.ProductCode, &desc, &registered); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, nil
		}
		return nil, derrors.TagDBError("get", err)
	}
	rec.Description = desc.String
	rec.RegisteredAt = time.Unix(registered, 0)
	return &rec, nil
}

// Delete removes a tag record; deleting an absent tag is a no-op.
func (s *Store) Delete(ctx context.Context, tagID string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, err := s.db.ExecContext(ctx, "DELETE FROM tags WHERE tag_id = ?", tagID); err != nil {
		return derrors.TagDBError("delete", err)
	}
	return nil
}

// TagsForProduct returns the tag identifiers registered for a product code,
// ordered by tag id for determinism.
func (s *Store) TagsForProduct(ctx context.Context, productCode string) ([]string, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	rows, err := s.db.QueryContext(ctx,
		"SELECT tag_id FROM tags WHERE product_code = ? ORDER BY tag_id",
		productCode,
	)
	if err != nil {
		return nil, derrors.TagDBError("tags_for_product", err)
	}
	defer rows.Close()

	var tagIDs []string
	for rows.Next() {
		var id string
		if err := rows.Scan(&id); err != nil {
			return nil, derrors.TagDBError("tags_for_product", err)
		}
		tagIDs = append(tagIDs, id)
	}
	if err := rows.Err(); err != nil {
		return nil, derrors.TagDBError("tags_for_product", err)
	}
	return tagIDs, nil
}

// ExpectedTags implements the monitor's ExpectedTagResolver: the exact set of
// tag identifiers a manifest expects at the dispatch bay. For every product,
// the number of registered tags must equal the manifest's expected quantity;
// anything else means the bay was staged wrong and intake must fail before a
// cycle starts.
func (s *Store) ExpectedTags(ctx context.Context, m *manifest.Shipment) (sets.Set[string], error) {
	expected := sets.New[string]()
	for code, qty := range m.ProductQuantities() {
		tagIDs, err := s.TagsForProduct(ctx, code)
		if err != nil {
			return nil, err
		}
		if len(tagIDs) != qty {
			return nil, derrors.ValidationFailed("products", "registered tag count does not match expected quantity").
				WithContext("product_code", code).
				WithContext("expected", qty).
				WithContext("registered", len(tagIDs))
		}
		expected.UnionSlice(tagIDs)
	}
	return expected, nil
}

// Count returns the number of registered tags.
func (s *Store) Count(ctx context.Context) (int, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	var n int
	if err := s.db.QueryRowContext(ctx, "SELECT COUNT(*) FROM tags").Scan(&n); err != nil {
		return 0, derrors.TagDBError("count", err)
	}
	return n, nil
}

// Close closes the underlying database.
func (s *Store) Close() error {
	return s.db.Close()
}
