// Package store persists source configs in SQLite. Every write is
// validated first; reads hand back configs exactly as stored.
package store

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/brogergvhs/srcforge/internal/providers"
	"github.com/brogergvhs/srcforge/internal/providers/custom"
	"github.com/mattn/go-sqlite3"
)

var (
	ErrNotFound = errors.New("source not found")
	ErrExists   = errors.New("source already exists")
)

const schema = `
CREATE TABLE IF NOT EXISTS sources (
	id         INTEGER PRIMARY KEY,
	name       TEXT    NOT NULL,
	base_url   TEXT    NOT NULL,
	config     TEXT    NOT NULL,
	created_at INTEGER NOT NULL,
	updated_at INTEGER NOT NULL
);
CREATE INDEX IF NOT EXISTS sources_name ON sources (name);
`

type Record struct {
	Config    custom.ScrapingConfig
	CreatedAt time.Time
	UpdatedAt time.Time
}

type Store struct {
	db  *sql.DB
	now func() time.Time
}

func Open(path string) (*Store, error) {
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return nil, fmt.Errorf("ensure data dir: %w", err)
	}

	db, err := sql.Open("sqlite3", path)
	if err != nil {
		return nil, fmt.Errorf("open sqlite: %w", err)
	}

	for _, pragma := range []string{`PRAGMA foreign_keys = ON;`, `PRAGMA journal_mode = WAL;`} {
		if _, err := db.Exec(pragma); err != nil {
			_ = db.Close()
			return nil, fmt.Errorf("%s: %w", pragma, err)
		}
	}

	if err := db.Ping(); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("ping sqlite: %w", err)
	}

	if _, err := db.Exec(schema); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("migrate: %w", err)
	}

	return &Store{db: db, now: time.Now}, nil
}

func (s *Store) Close() error {
	return s.db.Close()
}

// Create validates and inserts a config. The derived id is pinned so a
// later rename keeps the same id.
func (s *Store) Create(ctx context.Context, cfg custom.ScrapingConfig) (custom.ScrapingConfig, error) {
	if err := cfg.Validate(); err != nil {
		return custom.ScrapingConfig{}, err
	}
	cfg.ID = cfg.SourceID()

	data, err := json.Marshal(cfg)
	if err != nil {
		return custom.ScrapingConfig{}, fmt.Errorf("encode %q: %w", cfg.Name, err)
	}

	now := s.now().UnixMilli()
	_, err = s.db.ExecContext(ctx, `
		INSERT INTO sources (id, name, base_url, config, created_at, updated_at)
		VALUES (?, ?, ?, ?, ?, ?)
	`, cfg.ID, cfg.Name, cfg.BaseURL, string(data), now, now)
	if isConstraint(err) {
		return custom.ScrapingConfig{}, fmt.Errorf("%w: id %d", ErrExists, cfg.ID)
	}
	if err != nil {
		return custom.ScrapingConfig{}, fmt.Errorf("insert %q: %w", cfg.Name, err)
	}

	return cfg, nil
}

// Update replaces a stored config wholesale.
func (s *Store) Update(ctx context.Context, cfg custom.ScrapingConfig) error {
	if err := cfg.Validate(); err != nil {
		return err
	}
	cfg.ID = cfg.SourceID()

	data, err := json.Marshal(cfg)
	if err != nil {
		return fmt.Errorf("encode %q: %w", cfg.Name, err)
	}

	res, err := s.db.ExecContext(ctx, `
		UPDATE sources SET name = ?, base_url = ?, config = ?, updated_at = ?
		WHERE id = ?
	`, cfg.Name, cfg.BaseURL, string(data), s.now().UnixMilli(), cfg.ID)
	if err != nil {
		return fmt.Errorf("update %d: %w", cfg.ID, err)
	}

	return requireRow(res, cfg.ID)
}

func (s *Store) Delete(ctx context.Context, id int64) error {
	res, err := s.db.ExecContext(ctx, `DELETE FROM sources WHERE id = ?`, id)
	if err != nil {
		return fmt.Errorf("delete %d: %w", id, err)
	}

	return requireRow(res, id)
}

func (s *Store) Get(ctx context.Context, id int64) (Record, error) {
	row := s.db.QueryRowContext(ctx, `
		SELECT config, created_at, updated_at FROM sources WHERE id = ?
	`, id)

	rec, err := scanRecord(row)
	if errors.Is(err, sql.ErrNoRows) {
		return Record{}, fmt.Errorf("%w: id %d", ErrNotFound, id)
	}
	if err != nil {
		return Record{}, fmt.Errorf("get %d: %w", id, err)
	}

	return rec, nil
}

func (s *Store) List(ctx context.Context) ([]Record, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT config, created_at, updated_at FROM sources ORDER BY name, id
	`)
	if err != nil {
		return nil, fmt.Errorf("list: %w", err)
	}
	defer rows.Close()

	var out []Record
	for rows.Next() {
		rec, err := scanRecord(rows)
		if err != nil {
			return nil, fmt.Errorf("list scan: %w", err)
		}
		out = append(out, rec)
	}

	return out, rows.Err()
}

// Export returns the shareable JSON of a stored config.
func (s *Store) Export(ctx context.Context, id int64) ([]byte, error) {
	rec, err := s.Get(ctx, id)
	if err != nil {
		return nil, err
	}

	return custom.Export(rec.Config)
}

// Import parses, validates and stores a shared config.
func (s *Store) Import(ctx context.Context, data []byte) (custom.ScrapingConfig, error) {
	cfg, err := custom.Import(data)
	if err != nil {
		return custom.ScrapingConfig{}, err
	}

	return s.Create(ctx, cfg)
}

// LoadInto registers a source for every stored config and returns how
// many were loaded.
func (s *Store) LoadInto(ctx context.Context, reg *providers.Registry, build func(custom.ScrapingConfig) providers.Source) (int, error) {
	recs, err := s.List(ctx)
	if err != nil {
		return 0, err
	}

	for _, rec := range recs {
		reg.Register(build(rec.Config))
	}

	return len(recs), nil
}

type scanner interface {
	Scan(dest ...any) error
}

func scanRecord(sc scanner) (Record, error) {
	var (
		raw              string
		created, updated int64
	)
	if err := sc.Scan(&raw, &created, &updated); err != nil {
		return Record{}, err
	}

	var cfg custom.ScrapingConfig
	if err := json.Unmarshal([]byte(raw), &cfg); err != nil {
		return Record{}, fmt.Errorf("decode stored config: %w", err)
	}

	return Record{
		Config:    cfg,
		CreatedAt: time.UnixMilli(created),
		UpdatedAt: time.UnixMilli(updated),
	}, nil
}

func requireRow(res sql.Result, id int64) error {
	n, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if n == 0 {
		return fmt.Errorf("%w: id %d", ErrNotFound, id)
	}

	return nil
}

func isConstraint(err error) bool {
	var se sqlite3.Error
	return errors.As(err, &se) && se.Code == sqlite3.ErrConstraint
}
