package jobs

import (
	"context"
	"log/slog"
	"sync"

	"github.com/robfig/cron/v3"
)

// StreamReader delivers new side-effect tasks to their handler.
type StreamReader interface {
	ReadNew(ctx context.Context) (int, error)
}

// TransitionEffectsJob drains the side-effect stream every second.
// A tick is skipped while the previous one is still running.
type TransitionEffectsJob struct {
	reader StreamReader
	cron   *cron.Cron
	logger *slog.Logger
	mu     sync.Mutex
}

func NewTransitionEffectsJob(reader StreamReader, logger *slog.Logger) *TransitionEffectsJob {
	return &TransitionEffectsJob{
		reader: reader,
		cron:   cron.New(cron.WithSeconds()),
		logger: logger.With("component", "transition_effects_job"),
	}
}

func (j *TransitionEffectsJob) Start() error {
	if _, err := j.cron.AddFunc("* * * * * *", j.Run); err != nil {
		return err
	}

	j.cron.Start()
	j.logger.InfoContext(context.Background(), "Transition effects job started (running every second)")
	return nil
}

// Run performs one tick.
func (j *TransitionEffectsJob) Run() {
	if !j.mu.TryLock() {
		return
	}
	defer j.mu.Unlock()

	ctx := context.Background()
	acked, err := j.reader.ReadNew(ctx)
	if err != nil {
		j.logger.ErrorContext(ctx, "Transition effects job failed", "error", err)
		return
	}
	if acked > 0 {
		j.logger.DebugContext(ctx, "Transition side effects processed", "count", acked)
	}
}

func (j *TransitionEffectsJob) Stop() {
	<-j.cron.Stop().Done()
	j.logger.InfoContext(context.Background(), "Transition effects job stopped")
}
