package actor

import (
	"context"
	"sync"
	"time"

	"github.com/google/uuid"
	"golang.org/x/sync/singleflight"

	"github.com/pulsefit/coach-backend/internal/platform/apperr"
	"github.com/pulsefit/coach-backend/internal/platform/logger"
)

const lastActivatedKey = "last_activated_at"

// Registry activates actors on demand and hands out the live instance.
// Concurrent first requests for the same user collapse into one activation
// via singleflight.
type Registry struct {
	shared *Shared
	log    *logger.Logger

	mu     sync.RWMutex
	actors map[uuid.UUID]*Actor
	sf     singleflight.Group
}

func NewRegistry(shared *Shared) *Registry {
	return &Registry{
		shared: shared,
		log:    shared.Log.With("component", "actor_registry"),
		actors: make(map[uuid.UUID]*Actor),
	}
}

// Actor returns the user's live actor, activating one if needed.
// Activation touches durable actor state before the mailbox opens for
// business; a storage failure fails the activation instead of producing an
// actor that cannot persist anything.
func (r *Registry) Actor(ctx context.Context, userID uuid.UUID) (*Actor, error) {
	if userID == uuid.Nil {
		return nil, apperr.Newf(apperr.KindValidation, "missing user_id")
	}
	r.mu.RLock()
	a, ok := r.actors[userID]
	r.mu.RUnlock()
	if ok {
		return a, nil
	}

	v, err, _ := r.sf.Do(userID.String(), func() (any, error) {
		r.mu.RLock()
		existing, ok := r.actors[userID]
		r.mu.RUnlock()
		if ok {
			return existing, nil
		}
		fresh, err := r.activate(ctx, userID)
		if err != nil {
			return nil, err
		}
		r.mu.Lock()
		r.actors[userID] = fresh
		r.mu.Unlock()
		return fresh, nil
	})
	if err != nil {
		return nil, err
	}
	return v.(*Actor), nil
}

func (r *Registry) activate(ctx context.Context, userID uuid.UUID) (*Actor, error) {
	a := newActor(r.shared, userID)
	if err := a.deps.Repos().ActorState().Put(ctx, userID, lastActivatedKey, time.Now().UTC()); err != nil {
		a.stop()
		return nil, apperr.New(apperr.KindInternal, err)
	}
	r.log.Info("actor activated", "user_id", userID)
	return a, nil
}

// Deactivate stops the user's actor after draining its mailbox. The next
// request builds a fresh graph.
func (r *Registry) Deactivate(userID uuid.UUID) {
	r.mu.Lock()
	a, ok := r.actors[userID]
	if ok {
		delete(r.actors, userID)
	}
	r.mu.Unlock()
	if ok {
		a.stop()
		r.log.Info("actor deactivated", "user_id", userID)
	}
}

// TickAll delivers a maintenance tick to every live actor. Inactive users
// are deliberately skipped; their maintenance runs when they next activate.
func (r *Registry) TickAll() {
	r.mu.RLock()
	actors := make([]*Actor, 0, len(r.actors))
	for _, a := range r.actors {
		actors = append(actors, a)
	}
	r.mu.RUnlock()
	for _, a := range actors {
		a.Tick()
	}
}

// Close stops every live actor.
func (r *Registry) Close() {
	r.mu.Lock()
	actors := r.actors
	r.actors = make(map[uuid.UUID]*Actor)
	r.mu.Unlock()
	for _, a := range actors {
		a.stop()
	}
}

func (r *Registry) ActiveCount() int {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return len(r.actors)
}
