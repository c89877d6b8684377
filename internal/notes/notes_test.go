package notes

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/patric-chuzhbe/atomicnotes/internal/kv"
	"github.com/patric-chuzhbe/atomicnotes/internal/kv/memorykv"
	"github.com/patric-chuzhbe/atomicnotes/internal/models"
)

func newNote(id, body string, status models.NoteStatus) models.Note {
	return models.Note{
		ID:          id,
		Body:        body,
		DateCreated: "2023-01-02T03:04:05.000Z",
		Status:      status,
	}
}

func TestCreateThenGetAll(t *testing.T) {
	store := New(memorykv.New())
	ctx := context.Background()

	created, err := store.Create(ctx, newNote("n1", "hello", models.NoteStatusDraft))
	require.NoError(t, err)
	assert.Equal(t, newNote("n1", "hello", models.NoteStatusDraft), created)

	all, err := store.GetAll(ctx)
	require.NoError(t, err)
	assert.Equal(t, []models.Note{created}, all)
}

func TestCreateRejectsInvalidNotes(t *testing.T) {
	store := New(memorykv.New())

	_, err := store.Create(context.Background(), newNote("", "hello", models.NoteStatusDraft))
	assert.ErrorIs(t, err, ErrInvalidNote)

	_, err = store.Create(context.Background(), newNote("n1", "hello", "archived"))
	assert.ErrorIs(t, err, ErrInvalidNote)
}

func TestUpdateMergesOnlyListedFields(t *testing.T) {
	store := New(memorykv.New())
	ctx := context.Background()

	_, err := store.Create(ctx, newNote("n1", "hello", models.NoteStatusDraft))
	require.NoError(t, err)

	published := models.NoteStatusPublished
	updated, err := store.Update(ctx, "n1", models.NotePatch{Status: &published})
	require.NoError(t, err)

	fresh, err := store.Get(ctx, "n1")
	require.NoError(t, err)
	assert.Equal(t, updated, fresh)
	assert.Equal(t, newNote("n1", "hello", models.NoteStatusPublished), fresh)

	body := "hello, world"
	_, err = store.Update(ctx, "n1", models.NotePatch{Body: &body})
	require.NoError(t, err)

	fresh, err = store.Get(ctx, "n1")
	require.NoError(t, err)
	assert.Equal(t, newNote("n1", "hello, world", models.NoteStatusPublished), fresh)
}

func TestUpdateCanResurrectDeletedNote(t *testing.T) {
	store := New(memorykv.New())
	ctx := context.Background()

	_, err := store.Create(ctx, newNote("n1", "hello", models.NoteStatusDeleted))
	require.NoError(t, err)

	draft := models.NoteStatusDraft
	updated, err := store.Update(ctx, "n1", models.NotePatch{Status: &draft})
	require.NoError(t, err)
	assert.Equal(t, models.NoteStatusDraft, updated.Status)
}

func TestUpdateOfMissingNote(t *testing.T) {
	ns := memorykv.New()
	store := New(ns)
	ctx := context.Background()

	body := "x"
	_, err := store.Update(ctx, "missing-id", models.NotePatch{Body: &body})
	assert.ErrorIs(t, err, ErrNotFound)

	all, err := store.GetAll(ctx)
	require.NoError(t, err)
	assert.Empty(t, all)
	assert.Empty(t, ns.Snapshot())
}

func TestDeleteIsIdempotent(t *testing.T) {
	store := New(memorykv.New())
	ctx := context.Background()

	_, err := store.Create(ctx, newNote("n1", "hello", models.NoteStatusPublished))
	require.NoError(t, err)
	_, err = store.Create(ctx, newNote("n2", "world", models.NoteStatusPublished))
	require.NoError(t, err)

	require.NoError(t, store.Delete(ctx, "n1"))
	require.NoError(t, store.Delete(ctx, "n1"))

	all, err := store.GetAll(ctx)
	require.NoError(t, err)
	require.Len(t, all, 1)
	assert.Equal(t, "n2", all[0].ID)
}

// pagingNamespace forces tiny pages so GetAll has to follow the cursor.
type pagingNamespace struct {
	*memorykv.MemoryKV
	listCalls int
}

func (p *pagingNamespace) List(ctx context.Context, opts kv.ListOptions) (kv.ListResult, error) {
	p.listCalls++
	opts.Limit = 2
	return p.MemoryKV.List(ctx, opts)
}

func TestGetAllFollowsTheCursor(t *testing.T) {
	ns := &pagingNamespace{MemoryKV: memorykv.New()}
	store := New(ns)
	ctx := context.Background()

	for _, id := range []string{"a", "b", "c", "d", "e"} {
		_, err := store.Create(ctx, newNote(id, "body "+id, models.NoteStatusPublished))
		require.NoError(t, err)
	}

	all, err := store.GetAll(ctx)
	require.NoError(t, err)
	assert.Len(t, all, 5)
	assert.Equal(t, 3, ns.listCalls)
}

type failingNamespace struct {
	*memorykv.MemoryKV
}

var errBoom = errors.New("boom")

func (f *failingNamespace) Put(ctx context.Context, key string, value []byte, metadata any) error {
	return errBoom
}

func (f *failingNamespace) List(ctx context.Context, opts kv.ListOptions) (kv.ListResult, error) {
	return kv.ListResult{}, errBoom
}

func TestStorageFailuresAreCoarse(t *testing.T) {
	store := New(&failingNamespace{MemoryKV: memorykv.New()})
	ctx := context.Background()

	_, err := store.Create(ctx, newNote("n1", "hello", models.NoteStatusDraft))
	assert.ErrorIs(t, err, ErrStorage)
	assert.NotErrorIs(t, err, errBoom)
	assert.EqualError(t, err, "failed to create an atomic note: atomic note storage failure")

	_, err = store.GetAll(ctx)
	assert.ErrorIs(t, err, ErrStorage)
}
