// Package postgres implements ledger.Store on PostgreSQL through pgxpool.
package postgres

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"unicode/utf8"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"moneytrack/internal/ledger"
)

type Store struct {
	pool *pgxpool.Pool
}

// Open connects to dsn and applies pending migrations.
func Open(ctx context.Context, dsn string) (*Store, error) {
	if err := RunMigrations(dsn); err != nil {
		return nil, fmt.Errorf("run migrations: %w", err)
	}

	poolConfig, err := pgxpool.ParseConfig(dsn)
	if err != nil {
		return nil, fmt.Errorf("parse postgres config: %w", err)
	}

	pool, err := pgxpool.NewWithConfig(ctx, poolConfig)
	if err != nil {
		return nil, fmt.Errorf("connect postgres: %w", err)
	}

	if err := pool.Ping(ctx); err != nil {
		pool.Close()
		return nil, fmt.Errorf("ping postgres: %w", err)
	}
	return &Store{pool: pool}, nil
}

func (s *Store) Close() error {
	if s.pool != nil {
		s.pool.Close()
	}
	return nil
}

func (s *Store) Read(ctx context.Context, path string) ([]byte, bool, error) {
	var value []byte
	err := s.pool.QueryRow(ctx, `SELECT value FROM documents WHERE path = $1`, path).Scan(&value)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, false, nil
	}
	if err != nil {
		return nil, false, fmt.Errorf("read %s: %w", path, err)
	}
	return value, true, nil
}

func (s *Store) Write(ctx context.Context, path string, value []byte) error {
	parent, id := ledger.Split(path)
	_, err := s.pool.Exec(ctx, `
		INSERT INTO documents (path, parent, id, value, updated_at)
		VALUES ($1, $2, $3, $4::jsonb, now())
		ON CONFLICT (path) DO UPDATE
		SET value = EXCLUDED.value,
			updated_at = EXCLUDED.updated_at`,
		path, parent, id, string(value))
	if err != nil {
		return fmt.Errorf("write %s: %w", path, err)
	}
	return nil
}

// Patch merges at the top level; null members of the patch remove the key.
func (s *Store) Patch(ctx context.Context, path string, fields map[string]any) error {
	patch, err := json.Marshal(fields)
	if err != nil {
		return fmt.Errorf("encode patch: %w", err)
	}
	parent, id := ledger.Split(path)
	_, err = s.pool.Exec(ctx, `
		INSERT INTO documents (path, parent, id, value, updated_at)
		VALUES ($1, $2, $3, jsonb_strip_nulls($4::jsonb), now())
		ON CONFLICT (path) DO UPDATE
		SET value = jsonb_strip_nulls(documents.value || $4::jsonb),
			updated_at = EXCLUDED.updated_at`,
		path, parent, id, string(patch))
	if err != nil {
		return fmt.Errorf("patch %s: %w", path, err)
	}
	return nil
}

func (s *Store) Delete(ctx context.Context, path string) error {
	prefix := path + "/"
	_, err := s.pool.Exec(ctx,
		`DELETE FROM documents WHERE path = $1 OR substr(path, 1, $2) = $3`,
		path, utf8.RuneCountInString(prefix), prefix)
	if err != nil {
		return fmt.Errorf("delete %s: %w", path, err)
	}
	return nil
}

func (s *Store) Append(ctx context.Context, path string, value []byte) (string, error) {
	id := ledger.NewID()
	_, err := s.pool.Exec(ctx, `
		INSERT INTO documents (path, parent, id, value, updated_at)
		VALUES ($1, $2, $3, $4::jsonb, now())`,
		ledger.Join(path, id), path, id, string(value))
	if err != nil {
		return "", fmt.Errorf("append %s: %w", path, err)
	}
	return id, nil
}

func (s *Store) Children(ctx context.Context, path string) ([]ledger.Child, error) {
	rows, err := s.pool.Query(ctx,
		`SELECT id, value FROM documents WHERE parent = $1 ORDER BY id COLLATE "C"`, path)
	if err != nil {
		return nil, fmt.Errorf("list %s: %w", path, err)
	}
	defer rows.Close()

	var out []ledger.Child
	for rows.Next() {
		var c ledger.Child
		if err := rows.Scan(&c.ID, &c.Value); err != nil {
			return nil, fmt.Errorf("scan %s: %w", path, err)
		}
		out = append(out, c)
	}
	return out, rows.Err()
}
