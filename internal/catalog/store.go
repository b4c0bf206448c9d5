package catalog

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"
	"time"

	_ "modernc.org/sqlite"

	"ebiblio/internal/search"
)

// Store is the locally cached catalog: the browsable set of books and
// categories, independent of any active search query. It backs the catalog
// half of the search provider.
type Store struct {
	db *sql.DB
}

const schema = `
CREATE TABLE IF NOT EXISTS books (
	id         TEXT PRIMARY KEY,
	title      TEXT NOT NULL,
	author     TEXT NOT NULL DEFAULT '',
	cover_url  TEXT NOT NULL DEFAULT '',
	category_id TEXT NOT NULL DEFAULT '',
	created_at TIMESTAMP
);
CREATE INDEX IF NOT EXISTS idx_books_author ON books(author);
CREATE INDEX IF NOT EXISTS idx_books_category ON books(category_id);

CREATE TABLE IF NOT EXISTS categories (
	id          TEXT PRIMARY KEY,
	title       TEXT NOT NULL,
	description TEXT NOT NULL DEFAULT ''
);
`

// Open opens (or creates) the catalog database at path and runs migrations.
// Use ":memory:" for tests.
func Open(path string) (*Store, error) {
	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, fmt.Errorf("open catalog db: %w", err)
	}
	// modernc sqlite is serialized per connection; one writer avoids
	// SQLITE_BUSY on concurrent upserts.
	db.SetMaxOpenConns(1)

	if _, err := db.Exec(schema); err != nil {
		db.Close()
		return nil, fmt.Errorf("migrate catalog db: %w", err)
	}
	return &Store{db: db}, nil
}

func (s *Store) Close() error { return s.db.Close() }

// UpsertBook inserts or replaces one book row.
func (s *Store) UpsertBook(ctx context.Context, b search.Book, categoryID string) error {
	_, err := s.db.ExecContext(ctx, `
		INSERT INTO books (id, title, author, cover_url, category_id, created_at)
		VALUES (?, ?, ?, ?, ?, ?)
		ON CONFLICT(id) DO UPDATE SET
			title = excluded.title,
			author = excluded.author,
			cover_url = excluded.cover_url,
			category_id = excluded.category_id,
			created_at = excluded.created_at`,
		b.ID, b.Title, b.Author, b.CoverURL, categoryID, nullableTime(b.CreatedAt))
	if err != nil {
		return fmt.Errorf("upsert book %s: %w", b.ID, err)
	}
	return nil
}

// UpsertCategory inserts or replaces one category row.
func (s *Store) UpsertCategory(ctx context.Context, c search.Category) error {
	_, err := s.db.ExecContext(ctx, `
		INSERT INTO categories (id, title, description)
		VALUES (?, ?, ?)
		ON CONFLICT(id) DO UPDATE SET
			title = excluded.title,
			description = excluded.description`,
		c.ID, c.Title, c.Description)
	if err != nil {
		return fmt.Errorf("upsert category %s: %w", c.ID, err)
	}
	return nil
}

const defaultListLimit = 100

// List returns the catalog listing, newest first, narrowed by filter.
func (s *Store) List(ctx context.Context, f search.CatalogFilter) ([]search.Book, error) {
	var (
		conds []string
		args  []any
	)
	if f.Author != "" {
		conds = append(conds, "author = ?")
		args = append(args, f.Author)
	}
	if f.CategoryID != "" {
		conds = append(conds, "category_id = ?")
		args = append(args, f.CategoryID)
	}

	q := "SELECT id, title, author, cover_url, created_at FROM books"
	if len(conds) > 0 {
		q += " WHERE " + strings.Join(conds, " AND ")
	}
	q += " ORDER BY created_at DESC, id ASC LIMIT ? OFFSET ?"
	limit := f.Limit
	if limit <= 0 {
		limit = defaultListLimit
	}
	args = append(args, limit, f.Offset)

	rows, err := s.db.QueryContext(ctx, q, args...)
	if err != nil {
		return nil, search.NewError(search.KindNetwork, "catalog.list", "query catalog", err)
	}
	defer rows.Close()
	return scanBooks(rows)
}

// GetBook fetches one book by id, with a not_found kind when absent.
func (s *Store) GetBook(ctx context.Context, id string) (*search.Book, error) {
	row := s.db.QueryRowContext(ctx,
		"SELECT id, title, author, cover_url, created_at FROM books WHERE id = ?", id)

	b, err := scanBook(row)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, search.NewError(search.KindNotFound, "catalog.get", "book "+id+" not found", nil)
	}
	if err != nil {
		return nil, fmt.Errorf("get book %s: %w", id, err)
	}
	return b, nil
}

// Categories returns every category, alphabetically.
func (s *Store) Categories(ctx context.Context) ([]search.Category, error) {
	rows, err := s.db.QueryContext(ctx,
		"SELECT id, title, description FROM categories ORDER BY title ASC")
	if err != nil {
		return nil, search.NewError(search.KindNetwork, "catalog.categories", "query categories", err)
	}
	defer rows.Close()

	var out []search.Category
	for rows.Next() {
		var c search.Category
		if err := rows.Scan(&c.ID, &c.Title, &c.Description); err != nil {
			return nil, fmt.Errorf("scan category: %w", err)
		}
		out = append(out, c)
	}
	return out, rows.Err()
}

// CountBooks reports the number of stored books (importer summary).
func (s *Store) CountBooks(ctx context.Context) (int, error) {
	var n int
	err := s.db.QueryRowContext(ctx, "SELECT COUNT(*) FROM books").Scan(&n)
	return n, err
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanBook(r rowScanner) (*search.Book, error) {
	var (
		b  search.Book
		ts sql.NullTime
	)
	if err := r.Scan(&b.ID, &b.Title, &b.Author, &b.CoverURL, &ts); err != nil {
		return nil, err
	}
	if ts.Valid {
		b.CreatedAt = ts.Time
	}
	return &b, nil
}

func scanBooks(rows *sql.Rows) ([]search.Book, error) {
	var out []search.Book
	for rows.Next() {
		b, err := scanBook(rows)
		if err != nil {
			return nil, fmt.Errorf("scan book: %w", err)
		}
		out = append(out, *b)
	}
	return out, rows.Err()
}

func nullableTime(t time.Time) any {
	if t.IsZero() {
		return nil
	}
	return t
}
