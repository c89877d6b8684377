// Package notes is the atomic note store: CRUD over Note records kept in a
// key-value namespace under the "atomic-note:" prefix.
//
// Each record is written twice in one put: as the value and as the key's list
// metadata. GetAll rebuilds notes from the metadata of a prefix listing, so it
// costs one list call per page instead of one read per note, at the price of
// returning whatever metadata the store currently lists.
//
// Concurrent updates of the same note are last-write-wins.
package notes

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"go.uber.org/zap"

	"github.com/patric-chuzhbe/atomicnotes/internal/kv"
	"github.com/patric-chuzhbe/atomicnotes/internal/logger"
	"github.com/patric-chuzhbe/atomicnotes/internal/models"
)

// KeyPrefix namespaces note keys.
const KeyPrefix = "atomic-note:"

var (
	// ErrNotFound is returned when the referenced note does not exist.
	ErrNotFound = errors.New("atomic note not found")

	// ErrStorage is returned when the underlying namespace fails.
	ErrStorage = errors.New("atomic note storage failure")

	// ErrInvalidNote is returned by Create for a note without id or with an unknown status.
	ErrInvalidNote = errors.New("invalid atomic note")
)

type namespace interface {
	Put(ctx context.Context, key string, value []byte, metadata any) error
	Get(ctx context.Context, key string) ([]byte, bool, error)
	Delete(ctx context.Context, key string) error
	List(ctx context.Context, opts kv.ListOptions) (kv.ListResult, error)
}

// Store is the note repository.
type Store struct {
	kv namespace
}

func New(ns namespace) *Store {
	return &Store{kv: ns}
}

// Create writes note under its id and returns it.
func (s *Store) Create(ctx context.Context, note models.Note) (models.Note, error) {
	if note.ID == "" || !note.Status.Valid() {
		return models.Note{}, fail("create", ErrInvalidNote, nil)
	}

	if err := s.put(ctx, note); err != nil {
		return models.Note{}, fail("create", ErrStorage, err)
	}

	return note, nil
}

// Update merges patch over the stored note and writes it back.
func (s *Store) Update(ctx context.Context, id string, patch models.NotePatch) (models.Note, error) {
	existing, err := s.get(ctx, id)
	if err != nil {
		return models.Note{}, fail("update", classify(err), err)
	}

	updated := patch.Apply(existing)
	updated.ID = existing.ID
	updated.DateCreated = existing.DateCreated

	if err := s.put(ctx, updated); err != nil {
		return models.Note{}, fail("update", ErrStorage, err)
	}

	return updated, nil
}

// Delete removes the note. Deleting an absent note succeeds.
func (s *Store) Delete(ctx context.Context, id string) error {
	if err := s.kv.Delete(ctx, KeyPrefix+id); err != nil {
		return fail("delete", ErrStorage, err)
	}

	return nil
}

// Get reads a single note straight from its value.
func (s *Store) Get(ctx context.Context, id string) (models.Note, error) {
	note, err := s.get(ctx, id)
	if err != nil {
		return models.Note{}, fail("get", classify(err), err)
	}

	return note, nil
}

// GetAll lists every note. The order is unspecified; sort by DateCreated
// when recency matters.
func (s *Store) GetAll(ctx context.Context) ([]models.Note, error) {
	var result []models.Note
	seen := map[string]struct{}{}

	cursor := ""
	for {
		page, err := s.kv.List(ctx, kv.ListOptions{Prefix: KeyPrefix, Cursor: cursor})
		if err != nil {
			return nil, fail("get all", ErrStorage, err)
		}

		for _, key := range page.Keys {
			var note models.Note
			if err := json.Unmarshal(key.Metadata, &note); err != nil {
				return nil, fail("get all", ErrStorage, fmt.Errorf("metadata of %s: %w", key.Name, err))
			}
			// Some backends may repeat a key across pages.
			if _, ok := seen[note.ID]; ok {
				continue
			}
			seen[note.ID] = struct{}{}
			result = append(result, note)
		}

		if page.ListComplete {
			break
		}
		cursor = page.Cursor
	}

	if result == nil {
		result = []models.Note{}
	}

	return result, nil
}

func (s *Store) put(ctx context.Context, note models.Note) error {
	value, err := json.Marshal(note)
	if err != nil {
		return err
	}

	return s.kv.Put(ctx, KeyPrefix+note.ID, value, note)
}

func (s *Store) get(ctx context.Context, id string) (models.Note, error) {
	value, found, err := s.kv.Get(ctx, KeyPrefix+id)
	if err != nil {
		return models.Note{}, err
	}
	if !found {
		return models.Note{}, ErrNotFound
	}

	var note models.Note
	if err := json.Unmarshal(value, &note); err != nil {
		return models.Note{}, err
	}

	return note, nil
}

func classify(err error) error {
	if errors.Is(err, ErrNotFound) {
		return ErrNotFound
	}

	return ErrStorage
}

// fail logs the cause and returns the coarse error callers match on.
func fail(op string, kind error, cause error) error {
	if cause != nil && !errors.Is(cause, kind) {
		logger.Log.Errorw("failed to "+op+" an atomic note", zap.Error(cause))
	} else {
		logger.Log.Debugw("failed to "+op+" an atomic note", zap.Error(kind))
	}

	return fmt.Errorf("failed to %s an atomic note: %w", op, kind)
}
