package commands

import (
	"errors"
	"time"

	"orderhub/internal/pkg/errs"
	"orderhub/internal/pkg/guard"
)

// DefaultRedeliveryBatchSize bounds the tasks one redelivery run dispatches.
const DefaultRedeliveryBatchSize = 100

var ErrRedeliverTransitionTasksCommandIsNotConstructed = errors.New(
	"RedeliverTransitionTasksCommand must be created via NewRedeliverTransitionTasksCommand constructor",
)

// RedeliverTransitionTasksCommand re-dispatches outbox tasks that are still
// undelivered and were created at or before StaleBefore.
//
// Example:
//
//	cmd, err := NewRedeliverTransitionTasksCommand(time.Now().Add(-30*time.Second), 0)
//	delivered, err := handler.Handle(ctx, cmd)
type RedeliverTransitionTasksCommand struct {
	staleBefore time.Time
	limit       int

	guard guard.ConstructorGuard
}

// NewRedeliverTransitionTasksCommand defaults a non-positive limit to
// DefaultRedeliveryBatchSize.
func NewRedeliverTransitionTasksCommand(staleBefore time.Time, limit int) (RedeliverTransitionTasksCommand, error) {
	if staleBefore.IsZero() {
		return RedeliverTransitionTasksCommand{}, errs.NewValueIsRequiredError("stale before")
	}
	if limit <= 0 {
		limit = DefaultRedeliveryBatchSize
	}
	return RedeliverTransitionTasksCommand{
		staleBefore: staleBefore.UTC(),
		limit:       limit,
		guard:       guard.NewConstructorGuard(),
	}, nil
}

func (c RedeliverTransitionTasksCommand) Validate() error {
	return c.guard.Validate(ErrRedeliverTransitionTasksCommandIsNotConstructed)
}

func (c RedeliverTransitionTasksCommand) StaleBefore() time.Time { return c.staleBefore }
func (c RedeliverTransitionTasksCommand) Limit() int             { return c.limit }
