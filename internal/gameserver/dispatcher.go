package gameserver

import (
	"context"
	"errors"
	"fmt"
	"sync"

	"go.uber.org/zap"
)

// ErrDispatcherStopped is returned by Do once the dispatcher has been stopped.
var ErrDispatcherStopped = errors.New("dispatcher stopped")

// Dispatcher runs every world intent on one goroutine, in submission order. The
// stat engine has no locks; this queue is what serializes access to it.
//
// Dispatcher implements server.Service.
type Dispatcher struct {
	world    *World
	queue    chan func(*World)
	done     chan struct{}
	stopOnce sync.Once
	logger   *zap.Logger
}

// NewDispatcher creates a Dispatcher with a queue of queueSize pending intents.
//
// Precondition: world and logger must be non-nil; queueSize must be >= 1.
func NewDispatcher(world *World, queueSize int, logger *zap.Logger) *Dispatcher {
	if world == nil || logger == nil {
		panic("gameserver.NewDispatcher: world and logger must not be nil")
	}
	if queueSize < 1 {
		panic("gameserver.NewDispatcher: queueSize must be >= 1")
	}
	return &Dispatcher{
		world:  world,
		queue:  make(chan func(*World), queueSize),
		done:   make(chan struct{}),
		logger: logger,
	}
}

// Start processes intents until Stop is called. It blocks.
func (d *Dispatcher) Start() error {
	d.logger.Info("dispatcher started", zap.Int("queue_size", cap(d.queue)))
	for {
		select {
		case <-d.done:
			d.logger.Info("dispatcher stopped", zap.Int("abandoned", len(d.queue)))
			return nil
		case job := <-d.queue:
			job(d.world)
		}
	}
}

// Stop ends Start. Intents still queued are abandoned and their callers receive
// ErrDispatcherStopped. Stop is idempotent.
func (d *Dispatcher) Stop() {
	d.stopOnce.Do(func() { close(d.done) })
}

// Do runs fn on the dispatcher goroutine and returns its error. A panic in fn is
// recovered, logged and returned as an error.
//
// Postcondition: Returns ctx.Err() if ctx ends first; fn may still run later.
func (d *Dispatcher) Do(ctx context.Context, fn func(*World) error) error {
	result := make(chan error, 1)
	job := func(w *World) {
		defer func() {
			if r := recover(); r != nil {
				d.logger.Error("intent panicked", zap.Any("panic", r))
				result <- fmt.Errorf("intent panicked: %v", r)
			}
		}()
		result <- fn(w)
	}

	select {
	case d.queue <- job:
	case <-ctx.Done():
		return ctx.Err()
	case <-d.done:
		return ErrDispatcherStopped
	}

	select {
	case err := <-result:
		return err
	case <-ctx.Done():
		return ctx.Err()
	case <-d.done:
		return ErrDispatcherStopped
	}
}
