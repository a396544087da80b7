package commands

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"orderhub/internal/core/ports"
)

// RedeliverTransitionTasksCommandHandler drains the transition outbox. It
// reads and marks outside any transaction; consumers de-duplicate by TaskID,
// so a task delivered twice is harmless.
type RedeliverTransitionTasksCommandHandler struct {
	uowFactory OrderUoWFactory
	dispatcher ports.TransitionDispatcher
	logger     *slog.Logger
	now        func() time.Time
}

func NewRedeliverTransitionTasksCommandHandler(
	uowFactory OrderUoWFactory,
	dispatcher ports.TransitionDispatcher,
	logger *slog.Logger,
) RedeliverTransitionTasksCommandHandler {
	return RedeliverTransitionTasksCommandHandler{
		uowFactory: uowFactory,
		dispatcher: dispatcher,
		logger:     logger.With("component", "redeliver-transition-tasks"),
		now:        time.Now,
	}
}

// Handle returns how many tasks were delivered. It stops at the first
// dispatch failure; the remaining tasks wait for the next run.
func (h RedeliverTransitionTasksCommandHandler) Handle(ctx context.Context, cmd RedeliverTransitionTasksCommand) (int, error) {
	if err := cmd.Validate(); err != nil {
		return 0, err
	}
	if h.dispatcher == nil {
		return 0, nil
	}

	outbox := h.uowFactory.Create().TransitionOutbox()
	tasks, err := outbox.ListUndispatched(ctx, cmd.StaleBefore(), cmd.Limit())
	if err != nil {
		return 0, err
	}

	delivered := 0
	for _, task := range tasks {
		if err = deliverTask(ctx, h.dispatcher, outbox, task, h.now()); err != nil {
			return delivered, fmt.Errorf("redeliver task %s: %w", task.TaskID, err)
		}
		delivered++
		h.logger.Info("redelivered transition task",
			"task_id", task.TaskID,
			"order_id", task.OrderID,
			"new_status", task.NewStatus,
		)
	}
	return delivered, nil
}

// deliverTask dispatches task and clears its undelivered marker. A failed
// mark after a successful dispatch means one extra delivery later.
func deliverTask(
	ctx context.Context,
	dispatcher ports.TransitionDispatcher,
	outbox ports.TransitionOutbox,
	task ports.TransitionTask,
	at time.Time,
) error {
	if err := dispatcher.Dispatch(ctx, task); err != nil {
		return err
	}
	return outbox.MarkDispatched(ctx, task.TaskID, at.UTC())
}
