// Package starred implements the per-user starred notes actor.
//
// An Actor owns the set of note ids one user starred. Every operation on an
// actor runs under its mutex, so the read-modify-persist sequence of one user
// never interleaves with another request of the same user. The Namespace
// hands out at most one live Actor per id.
package starred

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"errors"
	"fmt"
	"sort"
	"sync"

	"github.com/thoas/go-funk"
	"go.uber.org/zap"

	"github.com/patric-chuzhbe/atomicnotes/internal/logger"
)

// StorageKey is the key of the starred set inside an actor's storage.
const StorageKey = "starredAtomicNotes"

// ErrPersist is returned when the starred set could not be written.
var ErrPersist = errors.New("failed to persist starred atomic notes")

// ErrLoad is returned when the starred set could not be read.
var ErrLoad = errors.New("failed to load starred atomic notes")

type durableStorage interface {
	Put(ctx context.Context, key string, value []byte, metadata any) error
	Get(ctx context.Context, key string) ([]byte, bool, error)
}

// ActorID addresses an actor. It is derived from a name with IDFromName.
type ActorID string

// Namespace creates and keeps the actors backed by one storage.
type Namespace struct {
	storage durableStorage

	mu     sync.Mutex
	actors map[ActorID]*Actor
}

func NewNamespace(storage durableStorage) *Namespace {
	return &Namespace{
		storage: storage,
		actors:  map[ActorID]*Actor{},
	}
}

// IDFromName derives the actor id of name. The same name always yields the same id.
func (n *Namespace) IDFromName(name string) ActorID {
	sum := sha256.Sum256([]byte(name))

	return ActorID(hex.EncodeToString(sum[:]))
}

// Get returns the live actor for id, creating it on first use.
func (n *Namespace) Get(id ActorID) *Actor {
	n.mu.Lock()
	defer n.mu.Unlock()

	actor, ok := n.actors[id]
	if !ok {
		actor = &Actor{
			id:      id,
			storage: n.storage,
			key:     "user:" + string(id) + ":" + StorageKey,
		}
		n.actors[id] = actor
	}

	return actor
}

// Actor holds one user's starred set. It is Uninitialized until the first
// operation loads the set from storage, and falls back to Uninitialized when
// a write fails so the next operation starts from what storage holds.
type Actor struct {
	id      ActorID
	storage durableStorage
	key     string

	mu      sync.Mutex
	ready   bool
	starred map[string]struct{}
}

// ID returns the actor id.
func (a *Actor) ID() ActorID {
	return a.id
}

// GetStarred returns the starred note ids in ascending order.
func (a *Actor) GetStarred(ctx context.Context) ([]string, error) {
	a.mu.Lock()
	defer a.mu.Unlock()

	if err := a.ensureLoaded(ctx); err != nil {
		return nil, err
	}

	return sortedIDs(a.starred), nil
}

// AddStarred inserts noteID, persists the set and returns it.
func (a *Actor) AddStarred(ctx context.Context, noteID string) ([]string, error) {
	return a.mutate(ctx, func(set map[string]struct{}) {
		set[noteID] = struct{}{}
	})
}

// RemoveStarred removes noteID, persists the set and returns it.
func (a *Actor) RemoveStarred(ctx context.Context, noteID string) ([]string, error) {
	return a.mutate(ctx, func(set map[string]struct{}) {
		delete(set, noteID)
	})
}

func (a *Actor) mutate(ctx context.Context, change func(map[string]struct{})) ([]string, error) {
	a.mu.Lock()
	defer a.mu.Unlock()

	if err := a.ensureLoaded(ctx); err != nil {
		return nil, err
	}

	next := make(map[string]struct{}, len(a.starred)+1)
	for id := range a.starred {
		next[id] = struct{}{}
	}
	change(next)

	ids := sortedIDs(next)
	if err := a.persist(ctx, ids); err != nil {
		a.ready = false
		a.starred = nil
		logger.Log.Errorw("failed to persist starred atomic notes", "actor", a.id, zap.Error(err))
		return nil, fmt.Errorf("%w: %v", ErrPersist, err)
	}

	a.starred = next

	return ids, nil
}

func (a *Actor) ensureLoaded(ctx context.Context) error {
	if a.ready {
		return nil
	}

	value, found, err := a.storage.Get(ctx, a.key)
	if err != nil {
		logger.Log.Errorw("failed to load starred atomic notes", "actor", a.id, zap.Error(err))
		return fmt.Errorf("%w: %v", ErrLoad, err)
	}

	set := map[string]struct{}{}
	if found {
		var ids []string
		if err := json.Unmarshal(value, &ids); err != nil {
			logger.Log.Errorw("failed to decode starred atomic notes", "actor", a.id, zap.Error(err))
			return fmt.Errorf("%w: %v", ErrLoad, err)
		}
		for _, id := range ids {
			set[id] = struct{}{}
		}
	}

	a.starred = set
	a.ready = true

	return nil
}

func (a *Actor) persist(ctx context.Context, ids []string) error {
	value, err := json.Marshal(ids)
	if err != nil {
		return err
	}

	return a.storage.Put(ctx, a.key, value, nil)
}

func sortedIDs(set map[string]struct{}) []string {
	ids := funk.Keys(set).([]string)
	sort.Strings(ids)

	return ids
}
