package redisqueue

import (
	"context"
	"encoding/json"
	"fmt"

	"orderhub/internal/core/ports"

	"github.com/redis/go-redis/v9"
)

const (
	fieldTaskID  = "task_id"
	fieldPayload = "payload"
)

// StreamDispatcher implements ports.TransitionDispatcher with XADD. It
// returns once Redis has stored the entry.
type StreamDispatcher struct {
	client StreamClient
	stream string
}

func NewStreamDispatcher(client StreamClient, stream string) *StreamDispatcher {
	return &StreamDispatcher{client: client, stream: stream}
}

func (d *StreamDispatcher) Dispatch(ctx context.Context, task ports.TransitionTask) error {
	payload, err := json.Marshal(task)
	if err != nil {
		return fmt.Errorf("encode transition task %s: %w", task.TaskID, err)
	}

	err = d.client.XAdd(ctx, &redis.XAddArgs{
		Stream: d.stream,
		Values: map[string]any{
			fieldTaskID:  task.TaskID,
			fieldPayload: string(payload),
		},
	}).Err()
	if err != nil {
		return fmt.Errorf("failed to XADD to stream %s: %w", d.stream, err)
	}
	return nil
}

func decodeTask(msg redis.XMessage) (ports.TransitionTask, error) {
	raw, ok := msg.Values[fieldPayload].(string)
	if !ok {
		return ports.TransitionTask{}, fmt.Errorf("stream entry %s has no %s field", msg.ID, fieldPayload)
	}

	var task ports.TransitionTask
	if err := json.Unmarshal([]byte(raw), &task); err != nil {
		return ports.TransitionTask{}, fmt.Errorf("decode stream entry %s: %w", msg.ID, err)
	}
	return task, nil
}
