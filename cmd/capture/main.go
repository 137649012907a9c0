package main

import (
	"context"
	"flag"
	"net/http"
	"os"
	"os/signal"
	"path/filepath"
	"syscall"
	"time"

	"go.uber.org/zap"

	"github.com/user/capture-service/internal/api"
	"github.com/user/capture-service/internal/browser"
	"github.com/user/capture-service/internal/capture"
	"github.com/user/capture-service/internal/config"
	"github.com/user/capture-service/internal/domain"
	"github.com/user/capture-service/internal/manifest"
	"github.com/user/capture-service/internal/monitoring"
	"github.com/user/capture-service/internal/storage"
)

func main() {
	os.Exit(run())
}

func run() int {
	dataPath := flag.String("data", "", "path to the batch descriptor JSON")
	flag.Parse()

	// Logs go to stderr; stdout is reserved for the sentinel-framed
	// manifest that the calling process scrapes.
	logger, _ := zap.NewProduction()
	defer logger.Sync()

	cfg, err := config.Load()
	if err != nil {
		logger.Error("could not load config", zap.Error(err))
		return 1
	}

	if *dataPath == "" {
		logger.Error("missing required --data flag")
		return 1
	}
	raw, err := os.ReadFile(*dataPath)
	if err != nil {
		logger.Error("could not read batch file", zap.String("path", *dataPath), zap.Error(err))
		return 1
	}
	batch, err := domain.ParseBatch(raw)
	if err != nil {
		logger.Error("could not parse batch file", zap.String("path", *dataPath), zap.Error(err))
		return 1
	}

	if err := os.MkdirAll(cfg.OutputDir, 0o755); err != nil {
		logger.Error("could not create output directory", zap.String("dir", cfg.OutputDir), zap.Error(err))
		return 1
	}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	metrics := monitoring.NewMetrics()

	// Capture history is optional; without Redis each run only dedups
	// in-memory via the batch input itself.
	var history capture.History
	if cfg.RedisAddr != "" {
		redisStore := storage.NewRedisStore(cfg.RedisAddr, cfg.DedupTTL())
		defer redisStore.Close()
		if err := redisStore.Ping(ctx); err != nil {
			logger.Warn("redis unreachable, capture history disabled", zap.Error(err))
		} else {
			history = redisStore
		}
	}

	var sink capture.ResultSink
	if cfg.PostgresURL != "" {
		pgStore, err := storage.NewPostgresStore(cfg.PostgresURL)
		if err != nil {
			logger.Warn("postgres unavailable, result persistence disabled", zap.Error(err))
		} else {
			defer pgStore.Close()
			if err := pgStore.EnsureSchema(ctx); err != nil {
				logger.Warn("could not ensure schema, result persistence disabled", zap.Error(err))
			} else {
				sink = pgStore
			}
		}
	}

	userAgent := cfg.UserAgent
	if userAgent == "" {
		userAgent = browser.NewAgentPool().Pick()
	}

	var namer capture.ShotNamer
	if batch.VideoName != "" {
		namer = capture.ClaimNamer(batch.VideoName)
	} else {
		namer = capture.SimpleNamer()
	}

	validator := capture.NewValidator(logger)
	clearer := capture.NewClearer(cfg.ObstacleBudgetDur(), logger)

	launch := func() (capture.BrowserHandle, error) {
		return browser.Launch(browser.Options{UserAgent: userAgent, ProxyURL: cfg.ProxyURL}, logger)
	}
	build := func(pages capture.PageOpener) capture.ItemProcessor {
		runner := capture.NewAttemptRunner(cfg, pages, validator, clearer, userAgent, metrics, logger)
		return capture.NewItemCoordinator(cfg, runner, history, namer, cfg.OutputDir, logger)
	}

	orch := capture.NewOrchestrator(cfg, launch, build, metrics, sink, batch.VideoName, logger)

	// Long batches run 15-30 minutes; the status server lets an operator
	// watch progress and scrape metrics meanwhile.
	var statusServer *api.Server
	if cfg.StatusPort != "" && cfg.StatusPort != "0" {
		statusServer = api.NewServer(cfg.StatusPort, orch, logger)
		go func() {
			if err := statusServer.Start(); err != nil && err != http.ErrServerClosed {
				logger.Warn("status server stopped", zap.Error(err))
			}
		}()
		logger.Info("status server started", zap.String("port", cfg.StatusPort))
	}

	results, err := orch.Run(ctx, batch.Items)
	if statusServer != nil {
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
		_ = statusServer.Shutdown(shutdownCtx)
		cancel()
	}
	if err != nil {
		logger.Error("batch run failed", zap.Error(err))
		return 1
	}

	manifestPath := filepath.Join(cfg.OutputDir, cfg.ManifestName)
	if err := manifest.Write(manifestPath, results); err != nil {
		logger.Error("could not write manifest", zap.String("path", manifestPath), zap.Error(err))
		metrics.IncErrorsTotal("manifest_write_failed")
		return 1
	}
	if err := manifest.Emit(os.Stdout, results); err != nil {
		logger.Error("could not emit manifest", zap.Error(err))
		return 1
	}

	// Partial failures are data, not process errors.
	return 0
}
