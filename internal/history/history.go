// Package history persists recent replies so they can be shown again.
// Replies are stored as received and parsed again each time they are read.
package history

import (
	"context"
	"crypto/sha256"
	"database/sql"
	"encoding/hex"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/google/uuid"
	_ "modernc.org/sqlite"
)

// DefaultMaxItems is how many items a store keeps when not configured.
const DefaultMaxItems = 10

// ErrNotFound is returned by Get for an unknown id.
var ErrNotFound = errors.New("history item not found")

// Item is one stored reply.
type Item struct {
	ID          string    `json:"id"`
	Kind        string    `json:"kind"`
	Title       string    `json:"title"`
	Language    string    `json:"language,omitempty"`
	Content     string    `json:"content,omitempty"`
	ContentHash string    `json:"content_hash"`
	CreatedAt   time.Time `json:"created_at"`
}

// Store keeps the most recent items in SQLite.
type Store struct {
	db       *sql.DB
	maxItems int
	now      func() time.Time
}

const schema = `
CREATE TABLE IF NOT EXISTS history (
    id TEXT PRIMARY KEY,
    kind TEXT NOT NULL,
    title TEXT NOT NULL,
    language TEXT NOT NULL DEFAULT '',
    content TEXT NOT NULL,
    content_hash TEXT NOT NULL,
    created_at INTEGER NOT NULL,
    seq INTEGER NOT NULL
);

CREATE INDEX IF NOT EXISTS idx_history_seq ON history(seq DESC);
`

// Open opens (creating if needed) the database at path. maxItems <= 0 uses
// DefaultMaxItems.
func Open(path string, maxItems int) (*Store, error) {
	if maxItems <= 0 {
		maxItems = DefaultMaxItems
	}
	if dir := filepath.Dir(path); dir != "." {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return nil, fmt.Errorf("create data directory: %w", err)
		}
	}

	db, err := sql.Open("sqlite", path+"?_pragma=busy_timeout(5000)&_pragma=journal_mode(WAL)")
	if err != nil {
		return nil, fmt.Errorf("open database: %w", err)
	}
	// One writer keeps the insert-then-trim sequence serialized.
	db.SetMaxOpenConns(1)

	if _, err := db.Exec(schema); err != nil {
		db.Close()
		return nil, fmt.Errorf("initialize schema: %w", err)
	}
	return &Store{db: db, maxItems: maxItems, now: time.Now}, nil
}

// Close closes the database.
func (s *Store) Close() error {
	return s.db.Close()
}

// MaxItems returns the retention limit.
func (s *Store) MaxItems() int { return s.maxItems }

// Add stores a new item and drops the oldest items beyond the limit. ID,
// ContentHash and CreatedAt are filled in and the stored item is returned.
func (s *Store) Add(ctx context.Context, item Item) (Item, error) {
	item.ID = uuid.NewString()
	item.ContentHash = ContentHash(item.Content)
	item.CreatedAt = s.now().UTC()

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return Item{}, fmt.Errorf("begin: %w", err)
	}
	defer tx.Rollback()

	var seq int64
	if err := tx.QueryRowContext(ctx, `SELECT COALESCE(MAX(seq), 0) + 1 FROM history`).Scan(&seq); err != nil {
		return Item{}, fmt.Errorf("next sequence: %w", err)
	}
	_, err = tx.ExecContext(ctx,
		`INSERT INTO history (id, kind, title, language, content, content_hash, created_at, seq)
		 VALUES (?, ?, ?, ?, ?, ?, ?, ?)`,
		item.ID, item.Kind, item.Title, item.Language, item.Content, item.ContentHash,
		item.CreatedAt.UnixMilli(), seq)
	if err != nil {
		return Item{}, fmt.Errorf("insert: %w", err)
	}
	_, err = tx.ExecContext(ctx,
		`DELETE FROM history WHERE seq NOT IN (SELECT seq FROM history ORDER BY seq DESC LIMIT ?)`,
		s.maxItems)
	if err != nil {
		return Item{}, fmt.Errorf("trim: %w", err)
	}
	if err := tx.Commit(); err != nil {
		return Item{}, fmt.Errorf("commit: %w", err)
	}
	return item, nil
}

// List returns up to limit items, newest first. limit <= 0 returns all.
func (s *Store) List(ctx context.Context, limit int) ([]Item, error) {
	if limit <= 0 {
		limit = s.maxItems
	}
	rows, err := s.db.QueryContext(ctx,
		`SELECT id, kind, title, language, content, content_hash, created_at
		 FROM history ORDER BY seq DESC LIMIT ?`, limit)
	if err != nil {
		return nil, fmt.Errorf("list: %w", err)
	}
	defer rows.Close()

	items := []Item{}
	for rows.Next() {
		item, err := scanItem(rows)
		if err != nil {
			return nil, err
		}
		items = append(items, item)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("list: %w", err)
	}
	return items, nil
}

// Get returns the item with the given id, or ErrNotFound.
func (s *Store) Get(ctx context.Context, id string) (Item, error) {
	row := s.db.QueryRowContext(ctx,
		`SELECT id, kind, title, language, content, content_hash, created_at
		 FROM history WHERE id = ?`, id)
	item, err := scanItem(row)
	if errors.Is(err, sql.ErrNoRows) {
		return Item{}, ErrNotFound
	}
	return item, err
}

// Clear removes every item.
func (s *Store) Clear(ctx context.Context) error {
	if _, err := s.db.ExecContext(ctx, `DELETE FROM history`); err != nil {
		return fmt.Errorf("clear: %w", err)
	}
	return nil
}

type scanner interface {
	Scan(dest ...any) error
}

func scanItem(sc scanner) (Item, error) {
	var item Item
	var created int64
	if err := sc.Scan(&item.ID, &item.Kind, &item.Title, &item.Language,
		&item.Content, &item.ContentHash, &created); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return Item{}, err
		}
		return Item{}, fmt.Errorf("scan: %w", err)
	}
	item.CreatedAt = time.UnixMilli(created).UTC()
	return item, nil
}

// ContentHash returns the hex SHA-256 of content.
func ContentHash(content string) string {
	h := sha256.Sum256([]byte(content))
	return hex.EncodeToString(h[:])
}
