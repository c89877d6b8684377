// Package kvtest holds the behaviour every kv.Namespace backend must share.
// Backend packages call Run from their own tests.
package kvtest

import (
	"context"
	"encoding/json"
	"fmt"
	"sort"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/patric-chuzhbe/atomicnotes/internal/kv"
)

type testMetadata struct {
	Title string `json:"title"`
}

// Run exercises put/get/delete/list against ns. The namespace must be empty.
func Run(t *testing.T, ns kv.Namespace) {
	t.Helper()
	ctx := context.Background()

	t.Run("put then get", func(t *testing.T) {
		err := ns.Put(ctx, "a:1", []byte("one"), testMetadata{Title: "first"})
		require.NoError(t, err)

		value, found, err := ns.Get(ctx, "a:1")
		require.NoError(t, err)
		assert.True(t, found)
		assert.Equal(t, []byte("one"), value)
	})

	t.Run("get of a missing key is not an error", func(t *testing.T) {
		value, found, err := ns.Get(ctx, "a:missing")
		require.NoError(t, err)
		assert.False(t, found)
		assert.Nil(t, value)
	})

	t.Run("put overwrites", func(t *testing.T) {
		require.NoError(t, ns.Put(ctx, "a:1", []byte("uno"), testMetadata{Title: "primero"}))

		value, found, err := ns.Get(ctx, "a:1")
		require.NoError(t, err)
		assert.True(t, found)
		assert.Equal(t, []byte("uno"), value)
	})

	t.Run("empty key is rejected", func(t *testing.T) {
		err := ns.Put(ctx, "", []byte("x"), nil)
		assert.ErrorIs(t, err, kv.ErrEmptyKey)
	})

	t.Run("list follows the cursor until complete", func(t *testing.T) {
		for i := 2; i <= 7; i++ {
			key := fmt.Sprintf("a:%d", i)
			require.NoError(t, ns.Put(ctx, key, []byte(key), testMetadata{Title: key}))
		}
		require.NoError(t, ns.Put(ctx, "b:1", []byte("other prefix"), nil))

		seen := map[string]testMetadata{}
		cursor := ""
		for pages := 0; ; pages++ {
			require.Less(t, pages, 100, "listing did not complete")

			page, err := ns.List(ctx, kv.ListOptions{Prefix: "a:", Cursor: cursor, Limit: 2})
			require.NoError(t, err)
			for _, key := range page.Keys {
				var metadata testMetadata
				require.NoError(t, json.Unmarshal(key.Metadata, &metadata))
				seen[key.Name] = metadata
			}
			if page.ListComplete {
				break
			}
			cursor = page.Cursor
		}

		names := make([]string, 0, len(seen))
		for name := range seen {
			names = append(names, name)
		}
		sort.Strings(names)
		assert.Equal(t, []string{"a:1", "a:2", "a:3", "a:4", "a:5", "a:6", "a:7"}, names)
		assert.Equal(t, "primero", seen["a:1"].Title)
		assert.Equal(t, "a:5", seen["a:5"].Title)
	})

	t.Run("delete is idempotent", func(t *testing.T) {
		require.NoError(t, ns.Delete(ctx, "a:1"))
		require.NoError(t, ns.Delete(ctx, "a:1"))

		_, found, err := ns.Get(ctx, "a:1")
		require.NoError(t, err)
		assert.False(t, found)

		page, err := ns.List(ctx, kv.ListOptions{Prefix: "a:1"})
		require.NoError(t, err)
		assert.True(t, page.ListComplete)
		assert.Empty(t, page.Keys)
	})

	t.Run("ping", func(t *testing.T) {
		assert.NoError(t, ns.Ping(ctx))
	})
}
