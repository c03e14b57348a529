// Package actor gives every user a single-writer goroutine. All state
// mutations for a user flow through their mailbox in arrival order, which is
// what lets the rest of the backend do check-then-write without locks.
package actor

import (
	"context"
	"encoding/json"
	"fmt"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/pulsefit/coach-backend/internal/platform/apperr"
	"github.com/pulsefit/coach-backend/internal/platform/logger"
	"github.com/pulsefit/coach-backend/internal/realtime"
	"github.com/pulsefit/coach-backend/internal/usecase"
)

const mailboxSize = 64

// checkInCadence is how long a user goes without a check-in before the
// periodic tick opens one.
const checkInCadence = 7 * 24 * time.Hour

const lastCheckInKey = "last_check_in_at"

type message struct {
	frame  *realtime.Frame
	tick   bool
	invoke func(*Deps)
}

// Actor owns one user's dependency graph and processes mailbox messages
// sequentially until stopped.
type Actor struct {
	userID uuid.UUID
	log    *logger.Logger
	deps   *Deps

	mailbox chan message
	stopped chan struct{}
	once    sync.Once

	mu     sync.Mutex
	sinks  map[int]func(realtime.Frame)
	sinkID int
}

func newActor(shared *Shared, userID uuid.UUID) *Actor {
	deps := NewDeps(shared, userID)
	a := &Actor{
		userID:  userID,
		log:     deps.Log.With("component", "actor"),
		deps:    deps,
		mailbox: make(chan message, mailboxSize),
		stopped: make(chan struct{}),
		sinks:   make(map[int]func(realtime.Frame)),
	}
	go a.loop()
	return a
}

func (a *Actor) UserID() uuid.UUID { return a.userID }

// Deliver enqueues a realtime frame. It never blocks: a full mailbox is an
// overload error the caller reports to the client.
func (a *Actor) Deliver(frame realtime.Frame) error {
	select {
	case <-a.stopped:
		return apperr.Newf(apperr.KindConflict, "actor stopped")
	default:
	}
	select {
	case a.mailbox <- message{frame: &frame}:
		return nil
	default:
		return apperr.Newf(apperr.KindConflict, "mailbox full")
	}
}

// Tick enqueues a maintenance pass. With no due work it is a no-op.
func (a *Actor) Tick() {
	select {
	case a.mailbox <- message{tick: true}:
	case <-a.stopped:
	default:
	}
}

// Invoke runs fn inside the actor loop and waits for it to finish. RPC
// handlers use it so request work shares the same single-writer ordering as
// realtime frames.
func (a *Actor) Invoke(ctx context.Context, fn func(deps *Deps)) error {
	done := make(chan struct{})
	msg := message{invoke: func(deps *Deps) {
		defer close(done)
		fn(deps)
	}}
	select {
	case a.mailbox <- msg:
	case <-a.stopped:
		return apperr.Newf(apperr.KindConflict, "actor stopped")
	case <-ctx.Done():
		return apperr.New(apperr.KindInternal, ctx.Err())
	}
	select {
	case <-done:
		return nil
	case <-ctx.Done():
		return apperr.New(apperr.KindInternal, ctx.Err())
	}
}

// Attach registers a push sink for outbound frames and returns its detach
// function. Called from connection goroutines, hence the lock.
func (a *Actor) Attach(push func(realtime.Frame)) (detach func()) {
	a.mu.Lock()
	defer a.mu.Unlock()
	a.sinkID++
	id := a.sinkID
	a.sinks[id] = push
	return func() {
		a.mu.Lock()
		defer a.mu.Unlock()
		delete(a.sinks, id)
	}
}

func (a *Actor) stop() {
	a.once.Do(func() { close(a.stopped) })
}

func (a *Actor) loop() {
	for {
		select {
		case <-a.stopped:
			a.drain()
			return
		case msg := <-a.mailbox:
			a.handle(msg)
		}
	}
}

// drain processes whatever was already queued when stop was requested, so
// accepted work is not silently dropped.
func (a *Actor) drain() {
	for {
		select {
		case msg := <-a.mailbox:
			a.handle(msg)
		default:
			return
		}
	}
}

func (a *Actor) handle(msg message) {
	ctx := context.Background()
	switch {
	case msg.invoke != nil:
		msg.invoke(a.deps)
	case msg.tick:
		a.maintain(ctx)
	case msg.frame != nil:
		a.route(ctx, *msg.frame)
	}
}

func (a *Actor) route(ctx context.Context, frame realtime.Frame) {
	switch frame.Type {
	case realtime.FrameSubscribe:
		a.pushPayload(realtime.FrameConnected, map[string]any{"user_id": a.userID})
	case realtime.FrameChat:
		a.handleChat(ctx, frame)
	case realtime.FrameStartWorkout:
		a.handleStartWorkout(ctx)
	case realtime.FrameCompleteWorkout:
		a.handleCompleteWorkout(ctx, frame)
	default:
		a.log.Warn("unknown frame type dropped", "type", frame.Type)
	}
}

func (a *Actor) handleChat(ctx context.Context, frame realtime.Frame) {
	var payload realtime.ChatPayload
	if err := json.Unmarshal(frame.Payload, &payload); err != nil {
		a.pushChatError(apperr.Newf(apperr.KindValidation, "bad chat payload: %v", err))
		return
	}
	reply, err := a.deps.ChatHandler().HandleUserMessage(ctx, payload.Content)
	if err != nil {
		a.pushChatError(err)
		return
	}
	a.pushPayload(realtime.FrameChatResponse, realtime.ChatResponsePayload{
		MessageID: reply.ID.String(),
		Seq:       reply.Seq,
		Content:   reply.Content,
	})
}

func (a *Actor) handleStartWorkout(ctx context.Context) {
	started, err := a.deps.StartWorkout().Execute(ctx, usecase.StartWorkoutInput{UserID: a.userID})
	if err != nil {
		a.log.Warn("start workout failed", "error", err)
		return
	}
	a.pushPayload(realtime.FrameWorkoutStarted, started)
}

func (a *Actor) handleCompleteWorkout(ctx context.Context, frame realtime.Frame) {
	var in usecase.CompleteWorkoutInput
	if err := json.Unmarshal(frame.Payload, &in); err != nil {
		a.log.Warn("bad complete_workout payload dropped", "error", err)
		return
	}
	in.UserID = a.userID
	w, err := a.deps.CompleteWorkout().Execute(ctx, in)
	if err != nil {
		a.log.Warn("complete workout failed", "error", err)
		return
	}
	a.pushPayload(realtime.FrameWorkoutCompleted, map[string]any{
		"workout_id":   w.ID,
		"title":        w.Title,
		"completed_at": w.CompletedAt,
	})
}

// maintain opens a pending check-in when the cadence has elapsed. The last
// check-in timestamp lives in durable actor state so restarts do not reset
// the clock.
func (a *Actor) maintain(ctx context.Context) {
	state := a.deps.Repos().ActorState()
	var last time.Time
	err := state.Get(ctx, a.userID, lastCheckInKey, &last)
	if err != nil && !apperr.Is(err, apperr.KindNotFound) {
		a.log.Warn("read actor state failed", "key", lastCheckInKey, "error", err)
		return
	}
	if err == nil && time.Since(last) < checkInCadence {
		return
	}
	if _, err := a.deps.CreateCheckIn().Execute(ctx, usecase.CreateCheckInInput{UserID: a.userID}); err != nil {
		a.log.Warn("scheduled check-in failed", "error", err)
		return
	}
	if err := state.Put(ctx, a.userID, lastCheckInKey, time.Now().UTC()); err != nil {
		a.log.Warn("write actor state failed", "key", lastCheckInKey, "error", err)
	}
}

func (a *Actor) pushChatError(err error) {
	a.pushPayload(realtime.FrameChatError, realtime.ChatErrorPayload{
		Kind:    string(apperr.KindOf(err)),
		Message: err.Error(),
	})
}

func (a *Actor) pushPayload(frameType string, payload any) {
	frame, err := realtime.NewFrame(frameType, payload)
	if err != nil {
		a.log.Error("encode outbound frame", "type", frameType, "error", err)
		return
	}
	a.push(frame)
}

func (a *Actor) push(frame realtime.Frame) {
	a.mu.Lock()
	sinks := make([]func(realtime.Frame), 0, len(a.sinks))
	for _, s := range a.sinks {
		sinks = append(sinks, s)
	}
	a.mu.Unlock()
	for _, s := range sinks {
		s(frame)
	}
}

var _ realtime.Mailbox = (*Actor)(nil)

func (a *Actor) String() string {
	return fmt.Sprintf("actor(%s)", a.userID)
}
