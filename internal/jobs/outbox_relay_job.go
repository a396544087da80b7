package jobs

import (
	"context"
	"log/slog"
	"time"

	"orderhub/internal/core/application/usecases/commands"

	"github.com/robfig/cron/v3"
)

// DefaultRedeliverAfter is how long a task may stay undelivered before the
// relay dispatches it again. It leaves the after-commit dispatch time to
// finish first.
const DefaultRedeliverAfter = 30 * time.Second

// TaskRedeliverer re-dispatches undelivered outbox tasks.
type TaskRedeliverer interface {
	Handle(ctx context.Context, cmd commands.RedeliverTransitionTasksCommand) (int, error)
}

// OutboxRelayJob re-dispatches stale undelivered transition tasks every
// 10 seconds.
type OutboxRelayJob struct {
	redeliverer    TaskRedeliverer
	redeliverAfter time.Duration
	now            func() time.Time
	cron           *cron.Cron
	logger         *slog.Logger
}

func NewOutboxRelayJob(redeliverer TaskRedeliverer, redeliverAfter time.Duration, logger *slog.Logger) *OutboxRelayJob {
	if redeliverAfter <= 0 {
		redeliverAfter = DefaultRedeliverAfter
	}
	return &OutboxRelayJob{
		redeliverer:    redeliverer,
		redeliverAfter: redeliverAfter,
		now:            time.Now,
		cron:           cron.New(cron.WithSeconds(), cron.WithChain(cron.SkipIfStillRunning(cron.DiscardLogger))),
		logger:         logger.With("component", "outbox_relay_job"),
	}
}

func (j *OutboxRelayJob) Start() error {
	if _, err := j.cron.AddFunc("*/10 * * * * *", j.Run); err != nil {
		return err
	}

	j.cron.Start()
	j.logger.InfoContext(context.Background(), "Outbox relay job started (running every 10 seconds)")
	return nil
}

func (j *OutboxRelayJob) Run() {
	ctx := context.Background()
	cmd, err := commands.NewRedeliverTransitionTasksCommand(j.now().Add(-j.redeliverAfter), commands.DefaultRedeliveryBatchSize)
	if err != nil {
		j.logger.ErrorContext(ctx, "Outbox relay job failed", "error", err)
		return
	}

	delivered, err := j.redeliverer.Handle(ctx, cmd)
	if delivered > 0 {
		j.logger.InfoContext(ctx, "Redelivered transition tasks", "count", delivered)
	}
	if err != nil {
		j.logger.ErrorContext(ctx, "Outbox relay job failed", "error", err)
	}
}

func (j *OutboxRelayJob) Stop() {
	<-j.cron.Stop().Done()
	j.logger.InfoContext(context.Background(), "Outbox relay job stopped")
}
