// Package memorykv is the in-process kv.Namespace. It is the fallback
// storage when neither a database nor a storage file is configured, and the
// base the file backed namespace is built on.
package memorykv

import (
	"context"
	"encoding/json"
	"sort"
	"strings"
	"sync"

	"github.com/patric-chuzhbe/atomicnotes/internal/kv"
)

// Entry is what the namespace keeps per key.
type Entry struct {
	Value    []byte          `json:"value"`
	Metadata json.RawMessage `json:"metadata"`
}

// MemoryKV keeps entries in a map. Listing walks keys in lexicographic order
// and uses the last returned key as the cursor.
type MemoryKV struct {
	mu      sync.RWMutex
	Entries map[string]Entry
}

func New() *MemoryKV {
	return &MemoryKV{
		Entries: map[string]Entry{},
	}
}

func (m *MemoryKV) Put(ctx context.Context, key string, value []byte, metadata any) error {
	if key == "" {
		return kv.ErrEmptyKey
	}

	rawMetadata, err := kv.EncodeMetadata(metadata)
	if err != nil {
		return err
	}

	m.mu.Lock()
	defer m.mu.Unlock()

	m.Entries[key] = Entry{
		Value:    append([]byte(nil), value...),
		Metadata: append(json.RawMessage(nil), rawMetadata...),
	}

	return nil
}

func (m *MemoryKV) Get(ctx context.Context, key string) ([]byte, bool, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	entry, found := m.Entries[key]
	if !found {
		return nil, false, nil
	}

	return append([]byte(nil), entry.Value...), true, nil
}

func (m *MemoryKV) Delete(ctx context.Context, key string) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	delete(m.Entries, key)

	return nil
}

func (m *MemoryKV) List(ctx context.Context, opts kv.ListOptions) (kv.ListResult, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	names := make([]string, 0, len(m.Entries))
	for name := range m.Entries {
		if strings.HasPrefix(name, opts.Prefix) && name > opts.Cursor {
			names = append(names, name)
		}
	}
	sort.Strings(names)

	limit := opts.EffectiveLimit()
	result := kv.ListResult{ListComplete: true}
	if len(names) > limit {
		names = names[:limit]
		result.ListComplete = false
		result.Cursor = names[len(names)-1]
	}

	result.Keys = make([]kv.Key, 0, len(names))
	for _, name := range names {
		result.Keys = append(result.Keys, kv.Key{
			Name:     name,
			Metadata: append(json.RawMessage(nil), m.Entries[name].Metadata...),
		})
	}

	return result, nil
}

func (m *MemoryKV) Ping(ctx context.Context) error {
	return nil
}

func (m *MemoryKV) Close() error {
	return nil
}

// Snapshot returns a copy of all entries. Used by the file backed namespace.
func (m *MemoryKV) Snapshot() map[string]Entry {
	m.mu.RLock()
	defer m.mu.RUnlock()

	result := make(map[string]Entry, len(m.Entries))
	for name, entry := range m.Entries {
		result[name] = entry
	}

	return result
}
