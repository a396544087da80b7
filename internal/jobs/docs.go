// Package jobs provides scheduled background tasks for orderhub.
//
// This package implements cron-based jobs using github.com/robfig/cron/v3
// to relay the transition outbox and consume the side-effect stream.
//
// # Available Jobs
//
// 1. OutboxRelayJob - Runs every 10 seconds and re-dispatches transition tasks still undelivered after OUTBOX_REDELIVER_AFTER
// 2. TransitionEffectsJob - Runs every second and hands new stream entries to the side-effect handler
// 3. PendingReclaimJob - Runs every 30 seconds and retries entries left pending by a failed or crashed worker
//
// # Usage
//
// The relay always runs. The stream jobs are only started when a Redis
// stream is configured; the in-memory dispatcher runs its own worker.
//
//	relay := jobs.NewOutboxRelayJob(redeliverHandler, 30*time.Second, logger)
//	consumer := redisqueue.NewStreamConsumer(client, handler, stream, group, name, logger)
//	jobManager := jobs.NewJobManager(relay, consumer, logger)
//
//	if err := jobManager.StartAll(); err != nil {
//		log.Fatal("Failed to start jobs:", err)
//	}
//	defer jobManager.StopAll()
//
// # Error Handling
//
// - A failed dispatch leaves the task undelivered in the outbox; the relay retries it
// - Handler failures leave the stream entry pending; the reclaim job retries it
// - Stream errors are logged, the next tick tries again
// - Failed job starts will stop any already running jobs
package jobs
