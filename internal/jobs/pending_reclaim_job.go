package jobs

import (
	"context"
	"log/slog"

	"github.com/robfig/cron/v3"
)

// PendingReclaimer takes over side-effect tasks left unacknowledged.
type PendingReclaimer interface {
	Reclaim(ctx context.Context) (int, error)
}

// PendingReclaimJob retries stale pending tasks every 30 seconds.
type PendingReclaimJob struct {
	reclaimer PendingReclaimer
	cron      *cron.Cron
	logger    *slog.Logger
}

func NewPendingReclaimJob(reclaimer PendingReclaimer, logger *slog.Logger) *PendingReclaimJob {
	return &PendingReclaimJob{
		reclaimer: reclaimer,
		cron:      cron.New(cron.WithSeconds(), cron.WithChain(cron.SkipIfStillRunning(cron.DiscardLogger))),
		logger:    logger.With("component", "pending_reclaim_job"),
	}
}

func (j *PendingReclaimJob) Start() error {
	if _, err := j.cron.AddFunc("*/30 * * * * *", j.Run); err != nil {
		return err
	}

	j.cron.Start()
	j.logger.InfoContext(context.Background(), "Pending reclaim job started (running every 30 seconds)")
	return nil
}

func (j *PendingReclaimJob) Run() {
	ctx := context.Background()
	reclaimed, err := j.reclaimer.Reclaim(ctx)
	if err != nil {
		j.logger.ErrorContext(ctx, "Pending reclaim job failed", "error", err)
		return
	}
	if reclaimed > 0 {
		j.logger.InfoContext(ctx, "Reclaimed pending transition tasks", "count", reclaimed)
	}
}

func (j *PendingReclaimJob) Stop() {
	<-j.cron.Stop().Done()
	j.logger.InfoContext(context.Background(), "Pending reclaim job stopped")
}
