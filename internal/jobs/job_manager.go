package jobs

import (
	"fmt"
	"log/slog"
)

// StreamConsumer is what both stream jobs need from the stream adapter.
type StreamConsumer interface {
	StreamReader
	PendingReclaimer
}

type job interface {
	Start() error
	Stop()
}

// JobManager coordinates all scheduled jobs in the application.
// Provides a unified interface to start and stop all background jobs.
type JobManager struct {
	jobs []namedJob
}

type namedJob struct {
	name string
	job  job
}

// NewJobManager creates a job manager. The outbox relay always runs; the
// stream jobs only when consumer is not nil.
func NewJobManager(relay *OutboxRelayJob, consumer StreamConsumer, logger *slog.Logger) *JobManager {
	jm := &JobManager{jobs: []namedJob{{name: "outbox relay", job: relay}}}
	if consumer != nil {
		jm.jobs = append(jm.jobs,
			namedJob{name: "transition effects", job: NewTransitionEffectsJob(consumer, logger)},
			namedJob{name: "pending reclaim", job: NewPendingReclaimJob(consumer, logger)},
		)
	}
	return jm
}

// StartAll starts all scheduled jobs.
// Returns an error if any job fails to start.
func (jm *JobManager) StartAll() error {
	for i, nj := range jm.jobs {
		if err := nj.job.Start(); err != nil {
			// Stop already started jobs if this one fails
			for j := i - 1; j >= 0; j-- {
				jm.jobs[j].job.Stop()
			}
			return fmt.Errorf("failed to start %s job: %w", nj.name, err)
		}
	}
	return nil
}

// StopAll stops all scheduled jobs in reverse start order and waits for
// running ticks to finish.
func (jm *JobManager) StopAll() {
	for i := len(jm.jobs) - 1; i >= 0; i-- {
		jm.jobs[i].job.Stop()
	}
}
