// Package inmemory runs transition side effects in-process. It is used when
// no Redis stream is configured; queued tasks are lost on restart.
package inmemory

import (
	"context"
	"errors"
	"log/slog"
	"sync"

	"orderhub/internal/core/ports"
)

const DefaultQueueSize = 256

var (
	ErrQueueFull = errors.New("transition task queue is full")
	ErrStopped   = errors.New("transition dispatcher is stopped")
)

// Dispatcher queues tasks on a buffered channel drained by a single worker.
type Dispatcher struct {
	handler ports.TransitionEffectHandler
	logger  *slog.Logger
	tasks   chan ports.TransitionTask

	mu      sync.RWMutex
	stopped bool
	done    chan struct{}
}

func NewDispatcher(handler ports.TransitionEffectHandler, queueSize int, logger *slog.Logger) *Dispatcher {
	if queueSize <= 0 {
		queueSize = DefaultQueueSize
	}
	return &Dispatcher{
		handler: handler,
		logger:  logger.With("component", "inmemory_dispatcher"),
		tasks:   make(chan ports.TransitionTask, queueSize),
		done:    make(chan struct{}),
	}
}

// Start launches the worker. It returns immediately.
func (d *Dispatcher) Start() {
	go d.run()
}

// Dispatch never blocks: a full queue is reported as ErrQueueFull.
func (d *Dispatcher) Dispatch(_ context.Context, task ports.TransitionTask) error {
	d.mu.RLock()
	defer d.mu.RUnlock()

	if d.stopped {
		return ErrStopped
	}

	select {
	case d.tasks <- task:
		return nil
	default:
		return ErrQueueFull
	}
}

// Stop rejects further tasks and waits for the queued ones to drain or ctx to
// expire.
func (d *Dispatcher) Stop(ctx context.Context) error {
	d.mu.Lock()
	if !d.stopped {
		d.stopped = true
		close(d.tasks)
	}
	d.mu.Unlock()

	select {
	case <-d.done:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}

func (d *Dispatcher) run() {
	defer close(d.done)

	for task := range d.tasks {
		if err := d.handler.Handle(context.Background(), task); err != nil {
			d.logger.Error("Transition side effect failed",
				"task_id", task.TaskID,
				"order_id", task.OrderID,
				"new_status", task.NewStatus,
				"error", err,
			)
		}
	}
}
