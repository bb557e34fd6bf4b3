// Package pipeline coordinates the per-document flow: detect whether the
// text is an EOB, extract and analyze the claim, then persist the result.
// Processing is strictly sequential per document; concurrent documents never
// share state.
package pipeline

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"

	"github.com/clearclaim/eob-analyzer/constants"
	"github.com/clearclaim/eob-analyzer/internal/common"
	"github.com/clearclaim/eob-analyzer/internal/detect"
	"github.com/clearclaim/eob-analyzer/internal/extract"
	"github.com/clearclaim/eob-analyzer/internal/repository"
)

type Processor struct {
	Logger    *slog.Logger
	Extractor extract.Extractor
	Repo      repository.RecordRepository
}

func NewProcessor(logger *slog.Logger, ex extract.Extractor, repo repository.RecordRepository) *Processor {
	if logger == nil {
		logger = slog.Default()
	}
	return &Processor{Logger: logger, Extractor: ex, Repo: repo}
}

// ProcessText gates on the detector, extracts the claim, and stores the
// record. force skips the detector gate (the classification still runs for
// the stored confidence). A low-confidence document without force fails with
// ErrUnsupportedDocument and performs no extraction call.
func (p *Processor) ProcessText(ctx context.Context, name, text string, force bool) (*repository.StoredRecord, error) {
	p.Logger.Info("pipeline.start", "document", name, "status", constants.JobStatusRunning)

	res := detect.Detect(text)
	p.Logger.Info("pipeline.detect",
		"document", name,
		"is_eob", res.IsEOB,
		"confidence", res.Confidence,
		"status", constants.JobStatusDetected,
	)
	if !res.IsEOB && !force {
		p.Logger.Info("pipeline.rejected", "document", name, "status", constants.JobStatusRejected)
		return nil, fmt.Errorf("%w: %s", common.ErrUnsupportedDocument, res.Reason)
	}

	rec, err := p.Extractor.Extract(ctx, text)
	if err != nil {
		p.Logger.Error("pipeline.extract.failed", "document", name, "err", err,
			"status", constants.JobStatusFailed)
		return nil, err
	}

	stored, err := p.Repo.SaveRecord(ctx, name, res.Confidence, rec)
	if err != nil {
		p.Logger.Error("pipeline.save.failed", "document", name, "err", err,
			"status", constants.JobStatusFailed)
		return nil, err
	}

	p.Logger.Info("pipeline.ok",
		"document", name,
		"record_id", stored.ID,
		"claim_number", rec.ClaimNumber,
		"line_items", len(rec.LineItems),
		"issues", len(rec.Issues),
		"status", constants.JobStatusAnalyzed,
	)
	return stored, nil
}

// ProcessFile reads a plain-text document from disk and processes it.
func (p *Processor) ProcessFile(ctx context.Context, path string) (*repository.StoredRecord, error) {
	b, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read document: %w", err)
	}
	return p.ProcessText(ctx, filepath.Base(path), string(b), false)
}
