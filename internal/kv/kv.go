// Package kv describes the key-value namespace the note store and the
// per-user actors persist into. A namespace stores an opaque value plus a
// small JSON metadata document per key, and lists keys by prefix in pages.
//
// Implementations live in the sub packages: memorykv, filekv, rediskv, pgkv.
package kv

import (
	"context"
	"encoding/json"
	"errors"
)

// DefaultListLimit is the page size used when ListOptions.Limit is not set.
const DefaultListLimit = 1000

// Key is a single entry of a listing page.
type Key struct {
	Name     string          `json:"name"`
	Metadata json.RawMessage `json:"metadata,omitempty"`
}

// ListOptions selects a page of keys.
type ListOptions struct {
	Prefix string
	Cursor string
	Limit  int
}

// ListResult is one page of a listing. When ListComplete is false the caller
// continues with Cursor.
type ListResult struct {
	Keys         []Key
	Cursor       string
	ListComplete bool
}

// Namespace is the storage contract shared by every backend.
//
// Get reports a missing key with found == false and a nil error.
// Delete of a missing key is not an error.
type Namespace interface {
	Put(ctx context.Context, key string, value []byte, metadata any) error
	Get(ctx context.Context, key string) (value []byte, found bool, err error)
	Delete(ctx context.Context, key string) error
	List(ctx context.Context, opts ListOptions) (ListResult, error)
	Ping(ctx context.Context) error
	Close() error
}

// ErrEmptyKey is returned by backends when asked to write an empty key.
var ErrEmptyKey = errors.New("empty key")

// EncodeMetadata marshals metadata for storage. Nil metadata is stored as null.
func EncodeMetadata(metadata any) (json.RawMessage, error) {
	if raw, ok := metadata.(json.RawMessage); ok {
		return raw, nil
	}

	return json.Marshal(metadata)
}

// EffectiveLimit returns the effective page size of the options.
func (o ListOptions) EffectiveLimit() int {
	if o.Limit <= 0 || o.Limit > DefaultListLimit {
		return DefaultListLimit
	}

	return o.Limit
}
