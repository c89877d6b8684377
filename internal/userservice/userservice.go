// Package userservice gives the route handlers access to a user's starred
// atomic notes, either in-process or on another instance over HTTP or gRPC.
// Every implementation addresses the user's actor by the user id alone.
package userservice

import (
	"context"
	"errors"

	"github.com/patric-chuzhbe/atomicnotes/internal/starred"
)

// ErrUnavailable is returned when a remote user service call fails.
var ErrUnavailable = errors.New("user service is unavailable")

// Service is the user service as seen by the route handlers.
type Service interface {
	GetStarredAtomicNoteIDs(ctx context.Context, userID string) ([]string, error)
	StarAtomicNote(ctx context.Context, userID, noteID string) ([]string, error)
	UnstarAtomicNote(ctx context.Context, userID, noteID string) ([]string, error)
}

type actorNamespace interface {
	IDFromName(name string) starred.ActorID
	Get(id starred.ActorID) *starred.Actor
}

// Local calls the actors of this process.
type Local struct {
	actors actorNamespace
}

func NewLocal(actors actorNamespace) *Local {
	return &Local{actors: actors}
}

func (l *Local) GetStarredAtomicNoteIDs(ctx context.Context, userID string) ([]string, error) {
	return l.actor(userID).GetStarred(ctx)
}

func (l *Local) StarAtomicNote(ctx context.Context, userID, noteID string) ([]string, error) {
	return l.actor(userID).AddStarred(ctx, noteID)
}

func (l *Local) UnstarAtomicNote(ctx context.Context, userID, noteID string) ([]string, error) {
	return l.actor(userID).RemoveStarred(ctx, noteID)
}

func (l *Local) actor(userID string) *starred.Actor {
	return l.actors.Get(l.actors.IDFromName(userID))
}
