package ports

import (
	"context"
	"time"
)

// TransitionOutbox keeps every committed TransitionTask until a dispatcher
// has accepted it. Enqueue must run in the transaction of the transition so
// a task exists if and only if the status change committed.
type TransitionOutbox interface {
	Enqueue(ctx context.Context, task TransitionTask) error

	// MarkDispatched clears the undelivered marker of taskID. Marking an
	// unknown or already delivered task is not an error.
	MarkDispatched(ctx context.Context, taskID string, at time.Time) error

	// ListUndispatched returns undelivered tasks created at or before
	// createdBefore, oldest first.
	ListUndispatched(ctx context.Context, createdBefore time.Time, limit int) ([]TransitionTask, error)
}
