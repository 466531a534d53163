// Package ledger defines the path-keyed document store contract and the
// typed ledger built on top of it.
package ledger

import (
	"context"
	"strings"

	"github.com/google/uuid"
)

// Child is one direct descendant returned by Store.Children.
type Child struct {
	ID    string
	Value []byte
}

// Store is a path-keyed JSON document store.
//
// Paths are slash separated, e.g. "expenses/42/<id>". Values are JSON objects.
type Store interface {
	// Read returns the document at path, or found=false when absent.
	Read(ctx context.Context, path string) (value []byte, found bool, err error)
	// Write replaces the document at path.
	Write(ctx context.Context, path string, value []byte) error
	// Patch merges fields into the document at path, creating it when absent.
	// A nil field value removes that key.
	Patch(ctx context.Context, path string, fields map[string]any) error
	// Delete removes the document at path and every document below it.
	Delete(ctx context.Context, path string) error
	// Append stores value under a generated id below path and returns the id.
	// Ids sort in insertion order.
	Append(ctx context.Context, path string, value []byte) (string, error)
	// Children lists the direct descendants of path ordered by id.
	Children(ctx context.Context, path string) ([]Child, error)
	Close() error
}

// NewID returns a time-ordered id suitable for Append.
func NewID() string {
	id, err := uuid.NewV7()
	if err != nil {
		return uuid.NewString()
	}
	return id.String()
}

// Join builds a store path from its segments.
func Join(parts ...string) string {
	return strings.Join(parts, "/")
}

// Split returns the parent path and the last segment.
func Split(path string) (parent, id string) {
	i := strings.LastIndexByte(path, '/')
	if i < 0 {
		return "", path
	}
	return path[:i], path[i+1:]
}

// IsBelow reports whether path equals root or lives under it.
func IsBelow(path, root string) bool {
	return path == root || strings.HasPrefix(path, root+"/")
}
