// Package models holds the data shapes shared between the storage, service
// and transport layers: atomic notes, their partial updates and the request
// and response bodies of the HTTP API.
package models

import (
	"errors"
	"time"
)

// NoteStatus controls the visibility of an atomic note.
type NoteStatus string

const (
	NoteStatusPublished NoteStatus = "published"
	NoteStatusDraft     NoteStatus = "draft"
	NoteStatusDeleted   NoteStatus = "deleted"
)

// Valid reports whether the status is one of the known values.
func (s NoteStatus) Valid() bool {
	switch s {
	case NoteStatusPublished, NoteStatusDraft, NoteStatusDeleted:
		return true
	}

	return false
}

// DateLayout is the layout of Note.DateCreated (ISO-8601, UTC, milliseconds).
const DateLayout = "2006-01-02T15:04:05.000Z07:00"

// Note is a single atomic note authored by the site admin.
type Note struct {
	ID          string     `json:"id"`
	Body        string     `json:"body"`
	DateCreated string     `json:"dateCreated"`
	Status      NoteStatus `json:"status"`
}

// CreatedAt parses DateCreated. Unparseable dates sort as the zero time.
func (n Note) CreatedAt() time.Time {
	t, err := time.Parse(time.RFC3339Nano, n.DateCreated)
	if err != nil {
		return time.Time{}
	}

	return t
}

// NotePatch is a shallow partial update of a Note. Nil fields stay untouched.
type NotePatch struct {
	Body   *string     `json:"body,omitempty"`
	Status *NoteStatus `json:"status,omitempty"`
}

// Apply returns a copy of note with the non-nil fields of the patch overwritten.
func (p NotePatch) Apply(note Note) Note {
	if p.Body != nil {
		note.Body = *p.Body
	}
	if p.Status != nil {
		note.Status = *p.Status
	}

	return note
}

const (
	StorageTypeUnknown = iota
	StorageTypePostgresql
	StorageTypeRedis
	StorageTypeFile
	StorageTypeMemory
)

// Action discriminates the mutations accepted by POST /api/atomic-notes.
type Action string

const (
	ActionCreate           Action = "CREATE"
	ActionUpdate           Action = "UPDATE"
	ActionToggleVisibility Action = "TOGGLE_VISIBILITY"
	ActionToggleStar       Action = "TOGGLE_STAR"
	ActionDelete           Action = "DELETE"
)

// ActionRequest is the decoded form (or JSON) body of an atomic note mutation.
// Which fields are required depends on the action; see the router.
type ActionRequest struct {
	Action string `json:"_action" validate:"required,oneof=CREATE UPDATE TOGGLE_VISIBILITY TOGGLE_STAR DELETE"`
	NoteID string `json:"atomicNoteId" validate:"required_unless=Action CREATE,max=64"`
	Body   string `json:"atomicNoteBody" validate:"required_if=Action CREATE,required_if=Action UPDATE,max=4096"`
	Status string `json:"status" validate:"required_if=Action TOGGLE_VISIBILITY"`
	// Starred is only read by TOGGLE_STAR. Nil flips the current membership.
	Starred *bool `json:"starred,omitempty"`
}

// NotesPage is the response body of GET /api/atomic-notes.
type NotesPage struct {
	AtomicNotes          []Note   `json:"atomicNotes"`
	HasMoreAtomicNotes   bool     `json:"hasMoreAtomicNotes"`
	IsAuthenticated      bool     `json:"isAuthenticated"`
	IsAdmin              bool     `json:"isAdmin"`
	StarredAtomicNoteIDs []string `json:"starredAtomicNoteIds,omitempty"`
}

type NoteResponse struct {
	AtomicNote Note `json:"atomicNote"`
}

type StarredResponse struct {
	StarredAtomicNoteIDs []string `json:"starredAtomicNoteIds"`
}

// StarredRequest is the body of POST and DELETE on the actor surface.
type StarredRequest struct {
	ID string `json:"id"`
}

var (
	ErrUnauthorized = errors.New("unauthorized")
	ErrValidation   = errors.New("validation failed")
)
