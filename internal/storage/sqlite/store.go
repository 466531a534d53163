// Package sqlite implements ledger.Store on an embedded SQLite database.
package sqlite

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"time"
	"unicode/utf8"

	"moneytrack/internal/ledger"

	_ "modernc.org/sqlite"
)

type Store struct {
	db *sql.DB
}

func Open(dbPath string) (*Store, error) {
	if err := os.MkdirAll(filepath.Dir(dbPath), 0755); err != nil {
		return nil, fmt.Errorf("create db directory: %w", err)
	}

	if err := RunMigrations(dbPath); err != nil {
		return nil, fmt.Errorf("run migrations: %w", err)
	}

	db, err := sql.Open("sqlite", dbPath+"?_pragma=busy_timeout(5000)")
	if err != nil {
		return nil, fmt.Errorf("open sqlite database: %w", err)
	}
	// SQLite allows a single writer.
	db.SetMaxOpenConns(1)

	if err := db.Ping(); err != nil {
		db.Close()
		return nil, fmt.Errorf("ping database: %w", err)
	}
	return &Store{db: db}, nil
}

func (s *Store) Close() error {
	if s.db != nil {
		return s.db.Close()
	}
	return nil
}

func (s *Store) Read(ctx context.Context, path string) ([]byte, bool, error) {
	var value string
	err := s.db.QueryRowContext(ctx, `SELECT value FROM documents WHERE path = ?`, path).Scan(&value)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, false, nil
	}
	if err != nil {
		return nil, false, fmt.Errorf("read %s: %w", path, err)
	}
	return []byte(value), true, nil
}

func (s *Store) Write(ctx context.Context, path string, value []byte) error {
	parent, id := ledger.Split(path)
	_, err := s.db.ExecContext(ctx, `
		INSERT INTO documents (path, parent, id, value, updated_at)
		VALUES (?, ?, ?, ?, ?)
		ON CONFLICT(path) DO UPDATE SET value = excluded.value, updated_at = excluded.updated_at`,
		path, parent, id, string(value), time.Now().UTC())
	if err != nil {
		return fmt.Errorf("write %s: %w", path, err)
	}
	return nil
}

// Patch relies on json_patch, which drops members whose patch value is null.
func (s *Store) Patch(ctx context.Context, path string, fields map[string]any) error {
	patch, err := json.Marshal(fields)
	if err != nil {
		return fmt.Errorf("encode patch: %w", err)
	}
	parent, id := ledger.Split(path)
	_, err = s.db.ExecContext(ctx, `
		INSERT INTO documents (path, parent, id, value, updated_at)
		VALUES (?, ?, ?, json_patch('{}', ?), ?)
		ON CONFLICT(path) DO UPDATE SET value = json_patch(documents.value, ?), updated_at = excluded.updated_at`,
		path, parent, id, string(patch), time.Now().UTC(), string(patch))
	if err != nil {
		return fmt.Errorf("patch %s: %w", path, err)
	}
	return nil
}

func (s *Store) Delete(ctx context.Context, path string) error {
	prefix := path + "/"
	_, err := s.db.ExecContext(ctx,
		`DELETE FROM documents WHERE path = ? OR substr(path, 1, ?) = ?`,
		path, utf8.RuneCountInString(prefix), prefix)
	if err != nil {
		return fmt.Errorf("delete %s: %w", path, err)
	}
	return nil
}

func (s *Store) Append(ctx context.Context, path string, value []byte) (string, error) {
	id := ledger.NewID()
	_, err := s.db.ExecContext(ctx, `
		INSERT INTO documents (path, parent, id, value, updated_at)
		VALUES (?, ?, ?, ?, ?)`,
		ledger.Join(path, id), path, id, string(value), time.Now().UTC())
	if err != nil {
		return "", fmt.Errorf("append %s: %w", path, err)
	}
	return id, nil
}

func (s *Store) Children(ctx context.Context, path string) ([]ledger.Child, error) {
	rows, err := s.db.QueryContext(ctx,
		`SELECT id, value FROM documents WHERE parent = ? ORDER BY id`, path)
	if err != nil {
		return nil, fmt.Errorf("list %s: %w", path, err)
	}
	defer rows.Close()

	var out []ledger.Child
	for rows.Next() {
		var id, value string
		if err := rows.Scan(&id, &value); err != nil {
			return nil, fmt.Errorf("scan %s: %w", path, err)
		}
		out = append(out, ledger.Child{ID: id, Value: []byte(value)})
	}
	return out, rows.Err()
}
