// cmd/ingres-server/main.go
package main

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"go.uber.org/zap"

	"ingres-assistant/internal/api"
	"ingres-assistant/internal/app"
	"ingres-assistant/internal/common/camunda"
	"ingres-assistant/internal/common/config"
	"ingres-assistant/internal/common/database"
	"ingres-assistant/internal/common/genai"
	"ingres-assistant/internal/common/logger"
	"ingres-assistant/internal/common/observability"
	"ingres-assistant/internal/dataset"
	"ingres-assistant/internal/session"
	interpretquery "ingres-assistant/internal/workers/groundwater/interpret-query"
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

func main() {
	cfg, err := config.Load()
	if err != nil {
		fmt.Fprintf(os.Stderr, "config load failed: %v\n", err)
		os.Exit(1)
	}

	zapLog := logger.NewFromConfig(cfg.Logging)
	defer zapLog.Sync()
	log := logger.NewZapAdapter(zapLog)

	zapLog.Info("Starting INGRES assistant...",
		zap.String("environment", cfg.App.Environment),
		zap.String("genaiProvider", cfg.GenAI.Provider),
		zap.String("datasetSource", cfg.Dataset.Source),
		zap.String("sessionBackend", cfg.Session.Backend),
	)

	obs := observability.New(cfg.App.Name)
	defer obs.Shutdown()

	ctx := context.Background()
	checks := map[string]api.Check{}

	// --- PostgreSQL (only for the postgres dataset source) ---
	var pg *database.PostgresClient
	if cfg.Dataset.Source == "postgres" {
		err = retryWithBackoff(func() error {
			var err error
			pg, err = database.NewPostgres(ctx, cfg.Database.Postgres)
			return err
		}, 10, 2*time.Second, zapLog, "PostgreSQL connection")
		if err != nil {
			zapLog.Fatal("postgres failed after retries", zap.Error(err))
		}
		defer pg.Close()
		checks["postgres"] = pg.Ping
		zapLog.Info("PostgreSQL connected successfully")
	}

	// --- Dataset ---
	ds, err := dataset.Load(ctx, cfg.Dataset, pg)
	if err != nil {
		zapLog.Fatal("dataset load failed", zap.Error(err))
	}
	zapLog.Info("Dataset loaded", zap.Int("records", ds.Len()), zap.Ints("years", ds.Years()))
	for _, m := range dataset.CategoryMismatches(ds.Records()) {
		zapLog.Warn("published category disagrees with extraction thresholds",
			zap.String("state", m.State),
			zap.Int("year", m.Year),
			zap.Float64("stageOfExtraction", m.Stage),
			zap.String("published", string(m.Published)),
			zap.String("computed", string(m.Computed)),
		)
	}
	checks["dataset"] = func(context.Context) error {
		if ds.Len() == 0 {
			return fmt.Errorf("dataset is empty")
		}
		return nil
	}

	// --- Redis (sessions and/or interpret cache) ---
	var redisClient *database.RedisClient
	if cfg.UsesRedis() {
		redisClient = database.NewRedis(cfg.Database.Redis)
		err = retryWithBackoff(func() error {
			return redisClient.Ping(ctx)
		}, 10, 2*time.Second, zapLog, "Redis connection")
		if err != nil {
			zapLog.Fatal("redis failed after retries", zap.Error(err))
		}
		defer redisClient.Close()
		checks["redis"] = redisClient.Ping
		zapLog.Info("Redis connected successfully")
	}

	store, err := session.New(cfg.Session, redisClient)
	if err != nil {
		zapLog.Fatal("session store init failed", zap.Error(err))
	}

	var cache interpretquery.Cache
	if redisClient != nil && cfg.Cache.InterpretTTL > 0 {
		cache = interpretquery.NewRedisCache(redisClient)
	}

	// --- Language model ---
	var model genai.Model
	switch cfg.GenAI.Provider {
	case "mock":
		zapLog.Warn("genai.provider is mock, replies will not use a language model")
		model = genai.NewOfflineModel()
	default:
		if cfg.GenAI.APIKey == "" {
			zapLog.Warn("GEMINI_API_KEY is not set, model calls will fail and replies will apologize")
		}
		gemini, err := genai.NewGeminiClient(ctx, cfg.GenAI)
		if err != nil {
			zapLog.Fatal("gemini client init failed", zap.Error(err))
		}
		model = gemini
	}
	model = genai.Instrumented(model)

	assistant := app.New(app.Options{
		Config:        cfg,
		Model:         model,
		Dataset:       ds,
		Store:         store,
		Cache:         cache,
		Checks:        checks,
		Observability: obs,
		Logger:        log,
	})

	// --- Optional Zeebe job workers ---
	var zeebe *camunda.Client
	var workers []*camunda.CamundaWorker
	if cfg.Camunda.Enabled {
		zeebe, err = camunda.NewClient(ctx, camunda.ConfigFrom(cfg.Camunda))
		if err != nil {
			zapLog.Fatal("zeebe client failed", zap.Error(err))
		}
		checks["zeebe"] = zeebe.HealthCheck
		zapLog.Info("Zeebe client connected successfully")

		for taskType, handler := range assistant.JobHandlers() {
			if w := startWorker(zeebe, taskType, config.GetWorkerConfig(cfg, taskType), handler, log, zapLog); w != nil {
				workers = append(workers, w)
			}
		}
		zapLog.Info("Job workers registered", zap.Int("count", len(workers)))
	}

	// --- HTTP server ---
	srv := assistant.Server.HTTPServer()
	go func() {
		zapLog.Info("HTTP server listening", zap.String("addr", srv.Addr))
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			zapLog.Fatal("HTTP server failed", zap.Error(err))
		}
	}()

	// --- Graceful Shutdown ---
	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, os.Interrupt, syscall.SIGTERM)
	<-sigCh

	zapLog.Info("Shutdown signal received, draining requests...")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		zapLog.Error("Error shutting down HTTP server", zap.Error(err))
	}

	for _, w := range workers {
		w.Stop()
	}
	if zeebe != nil {
		if err := zeebe.Close(); err != nil {
			zapLog.Error("Error closing Zeebe client", zap.Error(err))
		}
	}

	zapLog.Info("INGRES assistant stopped gracefully")
}

func startWorker(client *camunda.Client, taskType string, wcfg config.WorkerConfig, handler camunda.JobHandler, log logger.Logger, zapLog *zap.Logger) *camunda.CamundaWorker {
	if !wcfg.Enabled {
		zapLog.Info("worker disabled", zap.String("taskType", taskType))
		return nil
	}

	return camunda.NewWorker(
		client.GetClient(),
		taskType,
		wcfg.MaxJobsActive,
		config.GetDuration(wcfg.Timeout),
		handler,
		log,
	)
}
