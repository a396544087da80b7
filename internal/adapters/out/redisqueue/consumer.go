package redisqueue

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"orderhub/internal/core/ports"

	"github.com/redis/go-redis/v9"
)

const (
	DefaultBatchSize = 50
	DefaultMinIdle   = time.Minute
	defaultBlock     = 100 * time.Millisecond
)

// StreamConsumer reads transition tasks for one consumer group member.
// Entries whose handler fails stay pending and are retried by Reclaim once
// they have been idle for minIdle.
type StreamConsumer struct {
	client   StreamClient
	handler  ports.TransitionEffectHandler
	logger   *slog.Logger
	stream   string
	group    string
	consumer string
	batch    int64
	minIdle  time.Duration
}

type ConsumerOption func(*StreamConsumer)

func WithBatchSize(n int64) ConsumerOption {
	return func(c *StreamConsumer) {
		if n > 0 {
			c.batch = n
		}
	}
}

func WithMinIdle(d time.Duration) ConsumerOption {
	return func(c *StreamConsumer) {
		if d > 0 {
			c.minIdle = d
		}
	}
}

func NewStreamConsumer(
	client StreamClient,
	handler ports.TransitionEffectHandler,
	stream, group, consumer string,
	logger *slog.Logger,
	opts ...ConsumerOption,
) *StreamConsumer {
	c := &StreamConsumer{
		client:   client,
		handler:  handler,
		logger:   logger.With("component", "transition_stream_consumer"),
		stream:   stream,
		group:    group,
		consumer: consumer,
		batch:    DefaultBatchSize,
		minIdle:  DefaultMinIdle,
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// EnsureGroup creates the stream and the consumer group if they are missing.
func (c *StreamConsumer) EnsureGroup(ctx context.Context) error {
	err := c.client.XGroupCreateMkStream(ctx, c.stream, c.group, "0").Err()
	if err != nil && !strings.Contains(err.Error(), "BUSYGROUP") {
		return fmt.Errorf("failed to create consumer group %s: %w", c.group, err)
	}
	return nil
}

// ReadNew handles up to one batch of entries never delivered to the group and
// returns how many were acknowledged.
func (c *StreamConsumer) ReadNew(ctx context.Context) (int, error) {
	streams, err := c.client.XReadGroup(ctx, &redis.XReadGroupArgs{
		Group:    c.group,
		Consumer: c.consumer,
		Streams:  []string{c.stream, ">"},
		Count:    c.batch,
		Block:    defaultBlock,
	}).Result()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return 0, nil
		}
		return 0, fmt.Errorf("failed to XREADGROUP from stream %s: %w", c.stream, err)
	}

	acked := 0
	for _, stream := range streams {
		acked += c.handleAll(ctx, stream.Messages)
	}
	return acked, nil
}

// Reclaim takes over entries another member left pending for longer than
// minIdle and handles them.
func (c *StreamConsumer) Reclaim(ctx context.Context) (int, error) {
	messages, _, err := c.client.XAutoClaim(ctx, &redis.XAutoClaimArgs{
		Stream:   c.stream,
		Group:    c.group,
		Consumer: c.consumer,
		MinIdle:  c.minIdle,
		Start:    "0-0",
		Count:    c.batch,
	}).Result()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return 0, nil
		}
		return 0, fmt.Errorf("failed to XAUTOCLAIM from stream %s: %w", c.stream, err)
	}
	return c.handleAll(ctx, messages), nil
}

func (c *StreamConsumer) handleAll(ctx context.Context, messages []redis.XMessage) int {
	acked := 0
	for _, msg := range messages {
		if c.handle(ctx, msg) {
			acked++
		}
	}
	return acked
}

// handle acknowledges successful and undecodable entries. Undecodable entries
// would never succeed, so keeping them pending only blocks reclaiming.
func (c *StreamConsumer) handle(ctx context.Context, msg redis.XMessage) bool {
	task, err := decodeTask(msg)
	if err != nil {
		c.logger.ErrorContext(ctx, "Dropping malformed transition task", "message_id", msg.ID, "error", err)
		return c.ack(ctx, msg.ID)
	}

	if err = c.handler.Handle(ctx, task); err != nil {
		c.logger.WarnContext(ctx, "Transition side effect failed, leaving pending",
			"message_id", msg.ID, "task_id", task.TaskID, "order_id", task.OrderID, "error", err)
		return false
	}

	return c.ack(ctx, msg.ID)
}

func (c *StreamConsumer) ack(ctx context.Context, id string) bool {
	if err := c.client.XAck(ctx, c.stream, c.group, id).Err(); err != nil {
		c.logger.ErrorContext(ctx, "Failed to acknowledge transition task", "message_id", id, "error", err)
		return false
	}
	return true
}
