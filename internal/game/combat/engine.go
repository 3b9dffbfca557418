package combat

import (
	"context"
	"fmt"
	"sort"
	"sync"

	"golang.org/x/sync/errgroup"

	"github.com/cory-johannsen/blightfall/internal/game/dice"
	"github.com/cory-johannsen/blightfall/internal/game/entity"
)

// SourceFactory creates the randomness for one new room.
type SourceFactory func() dice.Source

// Engine manages every active room. Rooms share only read-only
// collaborators; each gets its own dice source.
type Engine struct {
	mu        sync.RWMutex
	rooms     map[string]*Room
	deps      Deps
	newSource SourceFactory
}

// NewEngine creates an empty Engine. deps.Source is ignored; every room gets
// a fresh source from newSource.
//
// Precondition: newSource must be non-nil.
// Postcondition: Returns a non-nil Engine ready for use.
func NewEngine(deps Deps, newSource SourceFactory) *Engine {
	return &Engine{rooms: make(map[string]*Room), deps: deps, newSource: newSource}
}

// StartRoom creates a room for arena under roomID.
//
// Precondition: roomID must be non-empty.
// Postcondition: Returns the new Room or an error if roomID is already active.
func (e *Engine) StartRoom(roomID string, arena *entity.Arena) (*Room, error) {
	if roomID == "" {
		return nil, fmt.Errorf("room id must not be empty")
	}
	e.mu.Lock()
	defer e.mu.Unlock()
	if _, exists := e.rooms[roomID]; exists {
		return nil, fmt.Errorf("room %q already active", roomID)
	}
	deps := e.deps
	deps.Source = e.newSource()
	r, err := NewRoom(roomID, arena, deps)
	if err != nil {
		return nil, err
	}
	e.rooms[roomID] = r
	return r, nil
}

// Room returns the active room with roomID.
//
// Postcondition: Returns (room, true) if found, or (nil, false) otherwise.
func (e *Engine) Room(roomID string) (*Room, bool) {
	e.mu.RLock()
	defer e.mu.RUnlock()
	r, ok := e.rooms[roomID]
	return r, ok
}

// RoomIDs returns the active room ids sorted.
func (e *Engine) RoomIDs() []string {
	e.mu.RLock()
	defer e.mu.RUnlock()
	ids := make([]string, 0, len(e.rooms))
	for id := range e.rooms {
		ids = append(ids, id)
	}
	sort.Strings(ids)
	return ids
}

// EndRoom removes roomID.
func (e *Engine) EndRoom(roomID string) {
	e.mu.Lock()
	defer e.mu.Unlock()
	delete(e.rooms, roomID)
}

// ResolveAll resolves one round in each room of batches concurrently. Rooms
// not yet started when ctx is cancelled are skipped; a started round always
// runs to completion.
//
// Postcondition: returns the results of every resolved room, and the first
// error encountered (unknown room, configuration or invariant failure).
func (e *Engine) ResolveAll(ctx context.Context, batches map[string][]Action) (map[string]RoundResult, error) {
	var (
		mu      sync.Mutex
		results = make(map[string]RoundResult, len(batches))
	)
	g, gctx := errgroup.WithContext(ctx)
	for roomID, actions := range batches {
		g.Go(func() error {
			if err := gctx.Err(); err != nil {
				return err
			}
			r, ok := e.Room(roomID)
			if !ok {
				return fmt.Errorf("room %q not found", roomID)
			}
			res, err := r.ResolveRound(actions)
			if err != nil {
				return err
			}
			mu.Lock()
			results[roomID] = res
			mu.Unlock()
			return nil
		})
	}
	err := g.Wait()
	return results, err
}
