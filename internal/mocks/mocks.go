// Package mocks provides testify-based mocks of the collaborators used by
// the router package. They are used for unit testing HTTP handlers by
// simulating storage and user service failures.
package mocks

import (
	"context"

	"github.com/stretchr/testify/mock"

	"github.com/patric-chuzhbe/atomicnotes/internal/models"
)

// NoteStoreMock is a testify mock of the atomic note store.
type NoteStoreMock struct {
	mock.Mock
}

// Create mocks writing a new note.
func (m *NoteStoreMock) Create(ctx context.Context, note models.Note) (models.Note, error) {
	args := m.Called(ctx, note)
	return args.Get(0).(models.Note), args.Error(1)
}

// Update mocks merging a patch over a stored note.
func (m *NoteStoreMock) Update(ctx context.Context, id string, patch models.NotePatch) (models.Note, error) {
	args := m.Called(ctx, id, patch)
	return args.Get(0).(models.Note), args.Error(1)
}

// Delete mocks removing a note.
func (m *NoteStoreMock) Delete(ctx context.Context, id string) error {
	args := m.Called(ctx, id)
	return args.Error(0)
}

// GetAll mocks listing every note.
func (m *NoteStoreMock) GetAll(ctx context.Context) ([]models.Note, error) {
	args := m.Called(ctx)
	notes, _ := args.Get(0).([]models.Note)
	return notes, args.Error(1)
}

// Ping mocks the storage health check.
func (m *NoteStoreMock) Ping(ctx context.Context) error {
	args := m.Called(ctx)
	return args.Error(0)
}

// UserServiceMock is a testify mock of the user service.
type UserServiceMock struct {
	mock.Mock
}

func (m *UserServiceMock) GetStarredAtomicNoteIDs(ctx context.Context, userID string) ([]string, error) {
	args := m.Called(ctx, userID)
	ids, _ := args.Get(0).([]string)
	return ids, args.Error(1)
}

func (m *UserServiceMock) StarAtomicNote(ctx context.Context, userID, noteID string) ([]string, error) {
	args := m.Called(ctx, userID, noteID)
	ids, _ := args.Get(0).([]string)
	return ids, args.Error(1)
}

func (m *UserServiceMock) UnstarAtomicNote(ctx context.Context, userID, noteID string) ([]string, error) {
	args := m.Called(ctx, userID, noteID)
	ids, _ := args.Get(0).([]string)
	return ids, args.Error(1)
}
