package filekv

import (
	"context"
	"errors"
	"testing"

	"github.com/spf13/afero"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/patric-chuzhbe/atomicnotes/internal/kv"
	"github.com/patric-chuzhbe/atomicnotes/internal/kv/kvtest"
)

const testDBFileName = "/data/kv_test.json"

func TestFileKV(t *testing.T) {
	theStorage, err := New(testDBFileName, WithFs(afero.NewMemMapFs()))
	require.NoError(t, err)
	defer func() {
		require.NoError(t, theStorage.Close())
	}()

	kvtest.Run(t, theStorage)
}

func TestFileKVSurvivesReopen(t *testing.T) {
	fs := afero.NewMemMapFs()

	theStorage, err := New(testDBFileName, WithFs(fs))
	require.NoError(t, err)
	require.NoError(t, theStorage.Put(context.Background(), "atomic-note:1", []byte(`{"id":"1"}`), map[string]string{"id": "1"}))
	require.NoError(t, theStorage.Put(context.Background(), "atomic-note:2", []byte(`{"id":"2"}`), nil))
	require.NoError(t, theStorage.Delete(context.Background(), "atomic-note:2"))

	// No Close: every mutation is already on disk.
	reopened, err := New(testDBFileName, WithFs(fs))
	require.NoError(t, err)

	value, found, err := reopened.Get(context.Background(), "atomic-note:1")
	require.NoError(t, err)
	assert.True(t, found)
	assert.JSONEq(t, `{"id":"1"}`, string(value))

	_, found, err = reopened.Get(context.Background(), "atomic-note:2")
	require.NoError(t, err)
	assert.False(t, found)
}

func TestFileKVRejectsCorruptFile(t *testing.T) {
	fs := afero.NewMemMapFs()
	require.NoError(t, afero.WriteFile(fs, testDBFileName, []byte("{not json"), 0644))

	_, err := New(testDBFileName, WithFs(fs))
	assert.Error(t, err)
}

// renameFailingFs fails every Rename while broken is set.
type renameFailingFs struct {
	afero.Fs
	broken bool
}

func (f *renameFailingFs) Rename(oldname, newname string) error {
	if f.broken {
		return errors.New("disk full")
	}

	return f.Fs.Rename(oldname, newname)
}

func TestFileKVFailedWriteIsNotApplied(t *testing.T) {
	ctx := context.Background()
	fs := &renameFailingFs{Fs: afero.NewMemMapFs()}

	theStorage, err := New(testDBFileName, WithFs(fs))
	require.NoError(t, err)
	require.NoError(t, theStorage.Put(ctx, "kept", []byte("v1"), nil))

	fs.broken = true

	assert.Error(t, theStorage.Put(ctx, "lost", []byte("v"), nil))
	assert.Error(t, theStorage.Put(ctx, "kept", []byte("v2"), nil))
	assert.Error(t, theStorage.Delete(ctx, "kept"))

	_, found, err := theStorage.Get(ctx, "lost")
	require.NoError(t, err)
	assert.False(t, found)

	value, found, err := theStorage.Get(ctx, "kept")
	require.NoError(t, err)
	assert.True(t, found)
	assert.Equal(t, "v1", string(value))

	page, err := theStorage.List(ctx, kv.ListOptions{})
	require.NoError(t, err)
	assert.Len(t, page.Keys, 1)

	tmpExists, err := afero.Exists(fs, testDBFileName+".tmp")
	require.NoError(t, err)
	assert.False(t, tmpExists)

	fs.broken = false
	reopened, err := New(testDBFileName, WithFs(fs))
	require.NoError(t, err)
	value, found, err = reopened.Get(ctx, "kept")
	require.NoError(t, err)
	assert.True(t, found)
	assert.Equal(t, "v1", string(value))
}
