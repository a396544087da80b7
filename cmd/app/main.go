package main

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"orderhub/api"
	"orderhub/cmd"
	httpin "orderhub/internal/adapters/in/http"
	"orderhub/internal/adapters/out/effects"
	"orderhub/internal/adapters/out/inmemory"
	"orderhub/internal/adapters/out/postgres"
	"orderhub/internal/adapters/out/redisqueue"
	"orderhub/internal/core/ports"
	"orderhub/internal/jobs"
	"orderhub/internal/pkg/metrics"

	"github.com/labstack/gommon/log"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	gormpostgres "gorm.io/driver/postgres"
	"gorm.io/gorm"
	gormlogger "gorm.io/gorm/logger"
)

func main() {
	configs, err := cmd.LoadConfig(".env")
	if err != nil {
		log.Fatalf("Failed to load configuration: %v", err)
	}

	logger := slog.New(slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{Level: configs.LogLevel}))
	slog.SetDefault(logger)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	gormDB, err := gorm.Open(gormpostgres.Open(configs.DSN()), &gorm.Config{
		Logger: gormlogger.Default.LogMode(gormlogger.Warn),
	})
	if err != nil {
		log.Fatalf("Failed to connect to database: %v", err)
	}
	if err = postgres.Migrate(gormDB); err != nil {
		log.Fatalf("Failed to migrate database: %v", err)
	}
	sqlDB, err := gormDB.DB()
	if err != nil {
		log.Fatalf("Failed to access database pool: %v", err)
	}
	defer func() { _ = sqlDB.Close() }()

	registry := prometheus.NewRegistry()
	registry.MustRegister(collectors.NewGoCollector(), collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}))
	recorder := metrics.New(registry)

	effectHandler := effects.NewLoggingHandler(logger)
	dispatcher, consumer, shutdownEffects, err := startSideEffects(ctx, configs, effectHandler, logger)
	if err != nil {
		log.Fatalf("Failed to start side-effect dispatcher: %v", err)
	}
	defer shutdownEffects()

	app := cmd.NewCompositionRoot(configs, gormDB, logger)

	relay := jobs.NewOutboxRelayJob(app.CreateRedeliverTransitionTasksCommandHandler(dispatcher),
		configs.OutboxRedeliverAfter, logger)
	jobManager := jobs.NewJobManager(relay, consumer, logger)
	if err = jobManager.StartAll(); err != nil {
		log.Fatalf("Failed to start jobs: %v", err)
	}
	defer jobManager.StopAll()
	server := httpin.NewServer(
		app.CreateCreateOrderCommandHandler(),
		app.CreateTransitionOrderCommandHandler(dispatcher, recorder),
		app.CreateSetPaymentReferenceCommandHandler(),
		app.CreateAssignCarrierCommandHandler(),
		app.CreateRegisterShippingLabelCommandHandler(),
		app.CreateGetOrderQueryHandler(),
		app.CreateGetAvailableTransitionsQueryHandler(),
		app.CreateGetAuditTrailQueryHandler(),
		logger,
	)

	doc, err := api.Load()
	if err != nil {
		log.Fatalf("Failed to load OpenAPI document: %v", err)
	}

	e, err := httpin.NewRouter(httpin.RouterDeps{
		Server:        server,
		Authenticator: app.CreateRequestAuthenticator(),
		AuthRecorder:  recorder,
		OpenAPI:       doc,
		DB:            sqlDB,
		Gatherer:      registry,
		Logger:        logger,
	}, httpin.RouterConfig{
		BodyLimit:         configs.BodyLimit,
		TrustProxyHeaders: configs.TrustProxyHeaders,
		RateLimitRPS:      configs.RateLimitRPS,
		RateLimitBurst:    configs.RateLimitBurst,
	})
	if err != nil {
		log.Fatalf("Failed to build router: %v", err)
	}

	go func() {
		logger.Info("HTTP server starting", "port", configs.HTTPPort)
		if startErr := e.Start(fmt.Sprintf("0.0.0.0:%s", configs.HTTPPort)); startErr != nil &&
			!errors.Is(startErr, http.ErrServerClosed) {
			log.Fatalf("HTTP server failed: %v", startErr)
		}
	}()

	<-ctx.Done()
	logger.Info("Shutting down")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err = e.Shutdown(shutdownCtx); err != nil {
		logger.Error("HTTP server shutdown failed", "error", err)
	}
}

// startSideEffects picks the Redis stream when REDIS_ADDR is set and the
// in-process queue otherwise. The consumer is nil for the in-process queue.
// The returned func stops the consumer side.
func startSideEffects(
	ctx context.Context,
	configs cmd.Config,
	handler ports.TransitionEffectHandler,
	logger *slog.Logger,
) (ports.TransitionDispatcher, jobs.StreamConsumer, func(), error) {
	if configs.RedisAddr == "" {
		queue := inmemory.NewDispatcher(handler, inmemory.DefaultQueueSize, logger)
		queue.Start()
		logger.Info("Side effects run in-process (REDIS_ADDR not set)")
		return queue, nil, func() {
			stopCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
			defer cancel()
			if err := queue.Stop(stopCtx); err != nil {
				logger.Warn("Side-effect queue did not drain", "error", err)
			}
		}, nil
	}

	client, err := redisqueue.NewClient(ctx, redisqueue.Config{
		Addr:     configs.RedisAddr,
		Password: configs.RedisPassword,
		DB:       configs.RedisDB,
	})
	if err != nil {
		return nil, nil, nil, err
	}

	hostname, _ := os.Hostname()
	consumer := redisqueue.NewStreamConsumer(client, handler,
		configs.SideEffectStream, configs.SideEffectGroup, fmt.Sprintf("%s-%d", hostname, os.Getpid()), logger)
	if err = consumer.EnsureGroup(ctx); err != nil {
		_ = client.Close()
		return nil, nil, nil, err
	}

	return redisqueue.NewStreamDispatcher(client, configs.SideEffectStream), consumer, func() {
		_ = client.Close()
	}, nil
}
