// Package extract turns raw EOB text into a fully assembled claim record.
// The model call is the only non-deterministic step; everything after the
// response arrives (sanitize, validate, defaulting, reconciliation, issue
// analysis, narrative) is deterministic post-processing owned here.
package extract

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"time"

	"github.com/google/uuid"

	"github.com/clearclaim/eob-analyzer/internal/common"
	"github.com/clearclaim/eob-analyzer/internal/eob"
	"github.com/clearclaim/eob-analyzer/internal/llm"
)

// Extractor is the capability the HTTP layer and pipeline depend on.
// Deterministic components stay unit-testable by injecting a fake.
type Extractor interface {
	Extract(ctx context.Context, text string) (*eob.Record, error)
}

// ClaimExtractor implements Extractor on top of a CompletionClient.
type ClaimExtractor struct {
	client llm.CompletionClient
	logger *slog.Logger

	// maxDocumentChars caps submitted text; 0 means llm.MaxDocumentChars.
	maxDocumentChars int
}

func NewClaimExtractor(client llm.CompletionClient, maxDocumentChars int, logger *slog.Logger) *ClaimExtractor {
	if logger == nil {
		logger = slog.Default()
	}
	return &ClaimExtractor{client: client, logger: logger, maxDocumentChars: maxDocumentChars}
}

// Extract runs one extraction round trip. The caller is expected to have
// already gated on the detector; no re-validation happens here. Any parse or
// coercion failure is fail-fast: a corrupt extraction must not reach the
// reconciler or analyzer.
func (e *ClaimExtractor) Extract(ctx context.Context, text string) (*eob.Record, error) {
	rid := common.RequestIDFromContext(ctx)
	if rid == "" {
		rid = uuid.New().String()
		ctx = common.WithRequestID(ctx, rid)
	}
	start := time.Now()

	e.logger.Info("extract.start", "req_id", rid, "text_len", len(text))

	schema := llm.BuildClaimJSONSchema()
	sys := llm.BuildExtractionSystemPrompt() + "\n\nJSON Schema:\n" + mustJSON(schema)
	user := llm.BuildExtractionUserPrompt(text, e.maxDocumentChars)

	content, err := e.client.Complete(ctx, sys, user, llm.FormatJSON)
	if err != nil {
		e.logger.Error("extract.complete_error", "req_id", rid, "error", err,
			"elapsed_ms", time.Since(start).Milliseconds())
		return nil, fmt.Errorf("%w: completion call: %v", common.ErrExtractionFailed, err)
	}

	raw := []byte(llm.StripCodeFence(content))

	cleaned, _, err := llm.NormalizeClaimJSON(raw, e.logger)
	if err != nil {
		e.logger.Error("extract.parse_error", "req_id", rid, "error", err,
			"elapsed_ms", time.Since(start).Milliseconds())
		return nil, fmt.Errorf("%w: parse model response: %v", common.ErrExtractionFailed, err)
	}

	if err := llm.ValidateJSONAgainstSchema(schema, cleaned); err != nil {
		e.logger.Error("extract.schema_validation_failed", "req_id", rid, "error", err,
			"elapsed_ms", time.Since(start).Milliseconds())
		return nil, fmt.Errorf("%w: schema validation: %v", common.ErrExtractionFailed, err)
	}

	var fields llm.ClaimFields
	if err := json.Unmarshal(cleaned, &fields); err != nil {
		e.logger.Error("extract.unmarshal_failed", "req_id", rid, "error", err,
			"elapsed_ms", time.Since(start).Milliseconds())
		return nil, fmt.Errorf("%w: unmarshal fields: %v", common.ErrExtractionFailed, err)
	}

	rec := Assemble(fields)

	e.logger.Info("extract.ok",
		"req_id", rid,
		"claim_number", rec.ClaimNumber,
		"line_items", len(rec.LineItems),
		"issues", len(rec.Issues),
		"elapsed_ms", time.Since(start).Milliseconds(),
	)
	return rec, nil
}

// Assemble normalizes extracted claim fields into a Record: sentinel defaults
// for required identity fields, a fresh unique id per line item, provider
// fallback to the claim-level provider, then the derived summary, issues, and
// narrative. Deterministic given its input (ids aside).
func Assemble(f llm.ClaimFields) *eob.Record {
	rec := &eob.Record{
		PayerName:    defaultIfEmpty(f.PayerName, eob.UnknownPayer),
		PayerAddress: f.PayerAddress,
		PayerPhone:   f.PayerPhone,

		MemberName:  defaultIfEmpty(f.MemberName, eob.UnknownMember),
		MemberID:    defaultIfEmpty(f.MemberID, eob.Unknown),
		GroupNumber: f.GroupNumber,

		ClaimNumber:  defaultIfEmpty(f.ClaimNumber, eob.Unknown),
		ProviderName: f.ProviderName,
		ProviderNPI:  f.ProviderNPI,

		ClaimDate:     f.ClaimDate,
		ProcessedDate: f.ProcessedDate,
		ServiceDate:   f.ServiceDate,

		Notes: []string{},
	}

	rec.LineItems = make([]eob.LineItem, 0, len(f.LineItems))
	for _, li := range f.LineItems {
		provider := li.Provider
		if provider == "" {
			provider = f.ProviderName
		}
		rec.LineItems = append(rec.LineItems, eob.LineItem{
			ID:                   uuid.NewString(),
			ServiceDate:          li.ServiceDate,
			Provider:             provider,
			ProcedureCode:        li.ProcedureCode,
			ProcedureDescription: li.ProcedureDescription,
			DiagnosisCode:        li.DiagnosisCode,
			DiagnosisDescription: li.DiagnosisDescription,

			BilledAmount:          li.BilledAmount,
			AllowedAmount:         li.AllowedAmount,
			PlanPaid:              li.PlanPaid,
			PatientResponsibility: li.PatientResponsibility,
			Deductible:            li.Deductible,
			Copay:                 li.Copay,
			Coinsurance:           li.Coinsurance,
			NotCovered:            li.NotCovered,

			DenialCode:   li.DenialCode,
			DenialReason: li.DenialReason,
		})
	}

	rec.FinancialSummary = eob.Reconcile(rec.LineItems)
	rec.Issues = eob.Analyze(rec.LineItems, rec.FinancialSummary)
	rec.PlainLanguageSummary = eob.Narrate(rec.FinancialSummary)
	return rec
}

func defaultIfEmpty(s, def string) string {
	if s == "" {
		return def
	}
	return s
}

func mustJSON(v any) string {
	b, _ := json.MarshalIndent(v, "", "  ")
	return string(b)
}
