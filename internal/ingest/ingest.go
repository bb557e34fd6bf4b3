// Package ingest discovers dropped OCR-text documents and feeds them through
// the analysis pipeline. Upstream OCR/text extraction is an external
// collaborator; only plain-text files are picked up here.
package ingest

import (
	"context"
	"errors"
	"log/slog"

	"github.com/clearclaim/eob-analyzer/constants"
	"github.com/clearclaim/eob-analyzer/internal/common"
	"github.com/clearclaim/eob-analyzer/internal/pipeline"
)

// Runner consumes watcher events and processes each file once.
type Runner struct {
	Processor *pipeline.Processor
	Logger    *slog.Logger
}

func NewRunner(p *pipeline.Processor, logger *slog.Logger) *Runner {
	if logger == nil {
		logger = slog.Default()
	}
	return &Runner{Processor: p, Logger: logger}
}

// Run blocks until ctx is canceled or the watcher shuts down. Documents the
// detector declines are logged and skipped, not treated as failures.
func (r *Runner) Run(ctx context.Context, cfg WatchConfig) error {
	events, errs, err := StartWatcher(ctx, cfg)
	if err != nil {
		return err
	}

	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case err, ok := <-errs:
			if ok && err != nil {
				r.Logger.Warn("ingest.watch_error", "err", err)
			}
		case path, ok := <-events:
			if !ok {
				return nil
			}
			r.Logger.Info("ingest.queued", "path", path, "status", constants.JobStatusQueued)
			if _, err := r.Processor.ProcessFile(ctx, path); err != nil {
				if errors.Is(err, common.ErrUnsupportedDocument) {
					r.Logger.Info("ingest.skipped", "path", path, "reason", err.Error())
					continue
				}
				r.Logger.Error("ingest.failed", "path", path, "err", err)
			}
		}
	}
}
