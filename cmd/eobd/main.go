package main

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/clearclaim/eob-analyzer/internal/common"
	"github.com/clearclaim/eob-analyzer/internal/export"
	"github.com/clearclaim/eob-analyzer/internal/extract"
	"github.com/clearclaim/eob-analyzer/internal/ingest"
	"github.com/clearclaim/eob-analyzer/internal/llm/openai"
	"github.com/clearclaim/eob-analyzer/internal/pipeline"
	"github.com/clearclaim/eob-analyzer/internal/repository"
	"github.com/clearclaim/eob-analyzer/internal/server"
)

func main() {
	logger := slog.New(slog.NewJSONHandler(os.Stdout, nil))
	slog.SetDefault(logger)

	cfg := common.LoadConfig()
	if path := os.Getenv("CONFIG_FILE"); path != "" {
		if err := cfg.ApplyFile(path, false); err != nil {
			logger.Error("config file load failed", "path", path, "error", err)
			os.Exit(1)
		}
	}
	if err := cfg.Validate(); err != nil {
		logger.Error("invalid configuration", "error", err)
		os.Exit(1)
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	pool, err := repository.Open(ctx, cfg.Database, logger)
	if err != nil {
		logger.Error("database open failed", "error", err)
		os.Exit(1)
	}
	defer repository.Close(pool, logger)

	if err := repository.HealthCheck(ctx, pool, logger); err != nil {
		logger.Error("database health check failed", "error", err)
		os.Exit(1)
	}

	client := openai.NewClient(openai.Config{
		APIKey:      cfg.LLM.APIKey,
		BaseURL:     cfg.LLM.BaseURL,
		Model:       cfg.LLM.Model,
		Temperature: cfg.LLM.Temperature,
		Timeout:     cfg.LLM.Timeout,
	}, logger)

	repo := repository.NewRecordRepository(pool, logger)
	extractor := extract.NewClaimExtractor(client, cfg.LLM.MaxDocumentChars, logger)
	processor := pipeline.NewProcessor(logger, extractor, repo)
	letters := export.NewLetterWriter(client, logger)

	healthFn := func(ctx context.Context) error {
		return repository.HealthCheck(ctx, pool, logger)
	}
	srv := &http.Server{
		Addr:    cfg.Server.HTTPAddr,
		Handler: server.NewRouter(server.New(processor, repo, letters, healthFn, logger)),
	}

	// Optional directory ingestion alongside the API.
	if len(cfg.Ingest.WatchDirs) > 0 {
		runner := ingest.NewRunner(processor, logger)
		go func() {
			err := runner.Run(ctx, ingest.WatchConfig{
				Roots:       cfg.Ingest.WatchDirs,
				InitialScan: true,
				Debounce:    cfg.Ingest.Debounce,
			})
			if err != nil && !errors.Is(err, context.Canceled) {
				logger.Error("ingest runner stopped", "error", err)
			}
		}()
	}

	go func() {
		logger.Info("http server starting", "addr", cfg.Server.HTTPAddr)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Error("http server failed", "error", err)
			stop()
		}
	}()

	<-ctx.Done()
	logger.Info("shutting down")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		logger.Error("http shutdown failed", "error", err)
	}
}
