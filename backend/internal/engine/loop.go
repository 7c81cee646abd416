package engine

import (
	"context"
	"sync"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"network-journal/backend/internal/constants"
	apperrors "network-journal/backend/pkg/errors"
	"network-journal/backend/pkg/logger"
)

// subscriberBuffer is how many events a slow subscriber may lag behind
// before events to it are dropped
const subscriberBuffer = 64

type request struct {
	fn   func(*Engine) error
	done chan error
}

// Loop owns an Engine on a single goroutine, stepping it at a fixed frame
// rate and running requests between frames
type Loop struct {
	engine   *Engine
	interval time.Duration
	requests chan request
	stopped  chan struct{}
	log      *zap.Logger

	mu   sync.Mutex
	subs map[string]chan Event
}

// NewLoop wraps e. Events raised by the engine are fanned out to subscribers.
func NewLoop(e *Engine, frameRate int) *Loop {
	if frameRate < constants.MinFrameRate || frameRate > constants.MaxFrameRate {
		frameRate = constants.DefaultFrameRate
	}
	l := &Loop{
		engine:   e,
		interval: time.Second / time.Duration(frameRate),
		requests: make(chan request),
		stopped:  make(chan struct{}),
		log:      logger.Named("loop"),
		subs:     make(map[string]chan Event),
	}
	hooks := e.hooks
	hooks.OnEvent = l.publish
	e.SetHooks(hooks)
	return l
}

// Run steps the engine until ctx is done
func (l *Loop) Run(ctx context.Context) error {
	ticker := time.NewTicker(l.interval)
	defer ticker.Stop()
	defer close(l.stopped)
	l.log.Info("Frame loop started", zap.Duration("interval", l.interval))

	for {
		select {
		case <-ctx.Done():
			l.log.Info("Frame loop stopped")
			l.closeSubscribers()
			return nil
		case req := <-l.requests:
			req.done <- req.fn(l.engine)
		case now := <-ticker.C:
			l.engine.Step(now)
		}
	}
}

// Do runs fn on the engine goroutine and waits for it
func (l *Loop) Do(ctx context.Context, fn func(*Engine) error) error {
	req := request{fn: fn, done: make(chan error, 1)}
	select {
	case l.requests <- req:
	case <-l.stopped:
		return apperrors.NewContextCancelled("engine request", context.Canceled)
	case <-ctx.Done():
		return contextError("engine request", ctx)
	}
	select {
	case err := <-req.done:
		return err
	case <-ctx.Done():
		return contextError("engine request", ctx)
	}
}

func contextError(op string, ctx context.Context) error {
	if ctx.Err() == context.DeadlineExceeded {
		deadline, _ := ctx.Deadline()
		return apperrors.NewContextTimeout(op, time.Until(deadline))
	}
	return apperrors.NewContextCancelled(op, ctx.Err())
}

// Subscribe registers for engine events. The returned cancel func must be
// called when the subscriber goes away.
func (l *Loop) Subscribe() (string, <-chan Event, func()) {
	id := uuid.New().String()
	ch := make(chan Event, subscriberBuffer)

	l.mu.Lock()
	l.subs[id] = ch
	l.mu.Unlock()

	cancel := func() {
		l.mu.Lock()
		defer l.mu.Unlock()
		if c, ok := l.subs[id]; ok {
			delete(l.subs, id)
			close(c)
		}
	}
	return id, ch, cancel
}

func (l *Loop) publish(ev Event) {
	l.mu.Lock()
	defer l.mu.Unlock()
	for id, ch := range l.subs {
		select {
		case ch <- ev:
		default:
			l.log.Warn("Dropping event for slow subscriber", zap.String("subscriber", id), zap.String("event", ev.Type))
		}
	}
}

func (l *Loop) closeSubscribers() {
	l.mu.Lock()
	defer l.mu.Unlock()
	for id, ch := range l.subs {
		delete(l.subs, id)
		close(ch)
	}
}
