package ports

import (
	"context"
	"time"
)

// TransitionTask is the payload scheduled once per committed status change.
// TaskID equals the id of the audit entry written for the transition, so
// consumers can de-duplicate redeliveries.
type TransitionTask struct {
	TaskID     string         `json:"task_id"`
	OrderID    string         `json:"order_id"`
	OldStatus  string         `json:"old_status"`
	NewStatus  string         `json:"new_status"`
	Reason     string         `json:"reason,omitempty"`
	Metadata   map[string]any `json:"metadata,omitempty"`
	ActorType  string         `json:"actor_type"`
	ActorID    string         `json:"actor_id"`
	OccurredAt time.Time      `json:"occurred_at"`
}

// TransitionDispatcher hands a task to the asynchronous side-effect runner.
// Dispatch must not wait for the task to be processed.
type TransitionDispatcher interface {
	Dispatch(ctx context.Context, task TransitionTask) error
}

// TransitionEffectHandler performs the side effects of one transition
// (labels, notifications). Implementations live outside the core and must
// tolerate redelivery of the same TaskID.
type TransitionEffectHandler interface {
	Handle(ctx context.Context, task TransitionTask) error
}
