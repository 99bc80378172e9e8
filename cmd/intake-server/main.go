package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/camunda/zeebe/clients/go/v8/pkg/worker"
	"go.uber.org/zap"

	"partner-intake/internal/api"
	"partner-intake/internal/common/aws"
	"partner-intake/internal/common/camunda"
	"partner-intake/internal/common/config"
	"partner-intake/internal/common/database"
	"partner-intake/internal/common/logger"
	"partner-intake/internal/common/observability"
	"partner-intake/internal/contacts"
	"partner-intake/internal/i18n"
	"partner-intake/internal/intake"
	"partner-intake/internal/invitations"
	"partner-intake/internal/markets"
	"partner-intake/internal/sessions"
	"partner-intake/internal/tracking"
	vpi "partner-intake/internal/workers/intake/validate-partner-intake"
)

// retryWithBackoff attempts to execute a function with exponential backoff
func retryWithBackoff(operation func() error, maxRetries int, initialDelay time.Duration, log *zap.Logger, operationName string) error {
	var err error
	delay := initialDelay

	for i := 0; i < maxRetries; i++ {
		err = operation()
		if err == nil {
			return nil
		}

		if i < maxRetries-1 {
			log.Warn(fmt.Sprintf("%s failed, retrying...", operationName),
				zap.Error(err),
				zap.Int("attempt", i+1),
				zap.Int("maxRetries", maxRetries),
				zap.Duration("nextRetryIn", delay),
			)
			time.Sleep(delay)
			delay *= 2
		}
	}

	return fmt.Errorf("%s failed after %d attempts: %w", operationName, maxRetries, err)
}

// pingFunc adapts a health check to the readiness probe.
type pingFunc func(ctx context.Context) error

func (f pingFunc) Ping(ctx context.Context) error { return f(ctx) }

func main() {
	cfg, err := config.Load()
	if err != nil {
		fmt.Fprintf(os.Stderr, "config load failed: %v\n", err)
		os.Exit(1)
	}

	zapLog := logger.New(cfg.Logging.Level, cfg.Logging.Format)
	defer zapLog.Sync()
	log := logger.NewZapAdapter(zapLog)

	zapLog.Info("Starting partner intake server...", zap.String("version", cfg.App.Version))

	obs, err := observability.New(cfg.App.Name)
	if err != nil {
		zapLog.Fatal("observability init failed", zap.Error(err))
	}

	ctx := context.Background()
	checks := map[string]api.Pinger{}

	// --- Market configuration ---
	registry, err := markets.LoadFile(cfg.Intake.MarketsFile)
	if err != nil {
		zapLog.Fatal("market configuration failed to load", zap.Error(err))
	}
	catalog, err := i18n.Load()
	if err != nil {
		zapLog.Fatal("translations failed to load", zap.Error(err))
	}
	zapLog.Info("Market configuration loaded",
		zap.Int("markets", len(registry.List())),
		zap.Strings("languages", catalog.Languages()),
	)

	// --- Init PostgreSQL with retry ---
	var pg *database.PostgresClient
	err = retryWithBackoff(func() error {
		var err error
		pg, err = database.NewPostgres(cfg.Database.Postgres)
		if err != nil {
			return err
		}
		return pg.Ping(ctx)
	}, 15, 2*time.Second, zapLog, "PostgreSQL connection")
	if err != nil {
		zapLog.Fatal("postgres failed after retries", zap.Error(err))
	}
	defer pg.Close()
	checks["postgres"] = pg

	contactRepo := contacts.NewRepository(pg.DB, log)
	if err := contactRepo.EnsureSchema(ctx); err != nil {
		zapLog.Fatal("contact schema migration failed", zap.Error(err))
	}
	zapLog.Info("PostgreSQL connected successfully")

	// --- Init Redis with retry ---
	redis := database.NewRedis(cfg.Database.Redis)
	err = retryWithBackoff(func() error {
		return redis.Ping(ctx)
	}, 10, 2*time.Second, zapLog, "Redis connection")
	if err != nil {
		zapLog.Fatal("redis failed after retries", zap.Error(err))
	}
	defer redis.Close()
	checks["redis"] = redis
	zapLog.Info("Redis connected successfully")

	// --- Tracking sinks ---
	sinks := []tracking.Sink{tracking.NewMetricsSink(obs)}

	if cfg.Database.Elasticsearch.Enabled {
		var esClient *database.ElasticsearchClient
		err = retryWithBackoff(func() error {
			var err error
			esClient, err = database.NewElasticsearch(cfg.Database.Elasticsearch)
			if err != nil {
				return err
			}
			return esClient.Ping(ctx)
		}, 15, 2*time.Second, zapLog, "Elasticsearch connection")
		if err != nil {
			zapLog.Fatal("elasticsearch failed after retries", zap.Error(err))
		}
		checks["elasticsearch"] = esClient
		sinks = append(sinks, tracking.NewSearchSink(esClient.Client, cfg.Intake.EventIndex))
		zapLog.Info("Elasticsearch connected successfully")
	}

	var zeebe *camunda.Client
	if cfg.Camunda.Enabled {
		err = retryWithBackoff(func() error {
			var err error
			zeebe, err = camunda.NewClient(cfg.Camunda.BrokerAddress, config.GetDuration(cfg.Camunda.RequestTimeout))
			return err
		}, 10, 2*time.Second, zapLog, "Zeebe client initialization")
		if err != nil {
			zapLog.Fatal("zeebe client failed after retries", zap.Error(err))
		}
		defer zeebe.Close()
		checks["camunda"] = pingFunc(zeebe.HealthCheck)
		sinks = append(sinks, tracking.NewProcessSink(zeebe, cfg.Camunda.OnboardingMessage))
		zapLog.Info("Zeebe client connected successfully")
	}

	if cfg.Integrations.AWS.SNS.Enabled {
		snsClient, err := aws.NewSNSClient(ctx, cfg.Integrations.AWS.Region)
		if err != nil {
			zapLog.Fatal("sns client failed", zap.Error(err))
		}
		sinks = append(sinks, tracking.NewNotificationSink(snsClient, cfg.Integrations.AWS.SNS.TopicARN))
	}

	dispatcher := tracking.NewDispatcher(log, tracking.DispatcherOptions{
		Timeout:       config.GetDuration(cfg.Intake.SinkTimeout),
		Observability: obs,
	}, sinks...)

	// --- Engine ---
	deps := intake.Dependencies{
		Markets:      registry,
		Contacts:     contactRepo,
		Translations: catalog,
		Emitter:      dispatcher,
		Clock:        time.Now,
	}
	store := sessions.NewStore(redis.Client, time.Duration(cfg.Intake.SessionTTL)*time.Second)
	manager := sessions.NewManager(deps, store, log)

	var inviter api.Inviter
	if cfg.Integrations.AWS.SES.Enabled {
		sesClient, err := aws.NewSESClient(ctx, cfg.Integrations.AWS.Region)
		if err != nil {
			zapLog.Fatal("ses client failed", zap.Error(err))
		}
		inviter = invitations.NewService(contactRepo, registry, catalog, sesClient, invitations.Config{
			FromEmail:     cfg.Integrations.AWS.SES.FromEmail,
			PublicBaseURL: cfg.Intake.PublicBaseURL,
		}, log)
	}

	// --- Workers ---
	var workers []worker.JobWorker
	if zeebe != nil {
		handler, err := vpi.NewHandler(vpi.HandlerOptions{
			Config:       vpi.ConfigFrom(cfg),
			Contacts:     contactRepo,
			Markets:      registry,
			Translations: catalog,
			Logger:       log,
		})
		if err != nil {
			zapLog.Fatal("worker setup failed", zap.String("taskType", vpi.TaskType), zap.Error(err))
		}
		if w := camunda.StartWorker(zeebe.GetClient(), vpi.TaskType, config.GetWorkerConfig(cfg, vpi.TaskType), handler.Handle, log); w != nil {
			workers = append(workers, w)
		}
	}

	// --- HTTP ---
	server := &http.Server{
		Addr: cfg.HTTP.Address,
		Handler: api.New(api.Options{
			Sessions:    manager,
			Invitations: inviter,
			Checks:      checks,
			Logger:      log,
		}),
		ReadTimeout:  config.GetDuration(cfg.HTTP.ReadTimeout),
		WriteTimeout: config.GetDuration(cfg.HTTP.WriteTimeout),
	}

	go func() {
		zapLog.Info("HTTP server listening", zap.String("address", cfg.HTTP.Address))
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			zapLog.Fatal("http server failed", zap.Error(err))
		}
	}()

	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, syscall.SIGINT, syscall.SIGTERM)
	<-sigChan

	zapLog.Info("Shutting down partner intake server...")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), config.GetDuration(cfg.HTTP.ShutdownTimeout))
	defer cancel()

	if err := server.Shutdown(shutdownCtx); err != nil {
		zapLog.Error("http shutdown failed", zap.Error(err))
	}
	for _, w := range workers {
		w.Close()
		w.AwaitClose()
	}
	if err := dispatcher.Close(shutdownCtx); err != nil {
		zapLog.Warn("tracking queue not drained", zap.Error(err), zap.Int64("dropped", dispatcher.Dropped()))
	}
	if err := obs.Shutdown(shutdownCtx); err != nil {
		zapLog.Warn("observability shutdown failed", zap.Error(err))
	}
	zapLog.Info("Partner intake server stopped")
}
