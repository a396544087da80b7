// Package effects holds the default transition side-effect handler.
package effects

import (
	"context"
	"log/slog"
	"sync"

	"orderhub/internal/core/ports"
)

const defaultSeenCapacity = 1024

// LoggingHandler records every committed transition in the log. Redelivered
// task ids are skipped while they are still remembered.
type LoggingHandler struct {
	logger *slog.Logger

	mu    sync.Mutex
	seen  map[string]struct{}
	order []string
	cap   int
}

func NewLoggingHandler(logger *slog.Logger) *LoggingHandler {
	return &LoggingHandler{
		logger: logger.With("component", "transition_effects"),
		seen:   make(map[string]struct{}, defaultSeenCapacity),
		cap:    defaultSeenCapacity,
	}
}

func (h *LoggingHandler) Handle(ctx context.Context, task ports.TransitionTask) error {
	if !h.remember(task.TaskID) {
		h.logger.DebugContext(ctx, "Skipping redelivered transition task", "task_id", task.TaskID)
		return nil
	}

	h.logger.InfoContext(ctx, "Order transition committed",
		"task_id", task.TaskID,
		"order_id", task.OrderID,
		"old_status", task.OldStatus,
		"new_status", task.NewStatus,
		"reason", task.Reason,
		"actor_type", task.ActorType,
		"actor_id", task.ActorID,
		"occurred_at", task.OccurredAt,
	)
	return nil
}

// remember reports whether id was new. The oldest id is forgotten once the
// capacity is reached.
func (h *LoggingHandler) remember(id string) bool {
	h.mu.Lock()
	defer h.mu.Unlock()

	if _, ok := h.seen[id]; ok {
		return false
	}
	if len(h.order) >= h.cap {
		delete(h.seen, h.order[0])
		h.order = h.order[1:]
	}
	h.seen[id] = struct{}{}
	h.order = append(h.order, id)
	return true
}
