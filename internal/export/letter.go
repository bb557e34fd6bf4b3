package export

import (
	"context"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/clearclaim/eob-analyzer/internal/common"
	"github.com/clearclaim/eob-analyzer/internal/eob"
	"github.com/clearclaim/eob-analyzer/internal/llm"
)

// LetterWriter generates appeal letters via the text-completion collaborator.
type LetterWriter struct {
	client llm.CompletionClient
	logger *slog.Logger
}

func NewLetterWriter(client llm.CompletionClient, logger *slog.Logger) *LetterWriter {
	if logger == nil {
		logger = slog.Default()
	}
	return &LetterWriter{client: client, logger: logger}
}

// AppealLetter renders a formatted appeal letter covering the record's
// appealable issues (denials, duplicate billing, out-of-network). When none
// exist this fails with ErrNoAppealableIssues before any external call is
// made; there is nothing to appeal.
func (w *LetterWriter) AppealLetter(ctx context.Context, rec *eob.Record) (*File, error) {
	appealable := rec.AppealableIssues()
	if len(appealable) == 0 {
		return nil, common.ErrNoAppealableIssues
	}

	start := time.Now()
	w.logger.Info("export.letter.start", "claim_number", rec.ClaimNumber, "issues", len(appealable))

	sys := strings.Join([]string{
		"You write formal insurance appeal letters on behalf of patients.",
		"Write a complete, professionally formatted letter addressed to the insurance company's appeals department.",
		"Reference the claim and member identifiers provided, state each disputed item with its amounts, and request reprocessing or a written explanation.",
		"Keep a firm but courteous tone. Do not invent policy language, regulations, or facts not provided.",
	}, " ")

	content, err := w.client.Complete(ctx, sys, buildLetterPrompt(rec, appealable), llm.FormatText)
	if err != nil {
		w.logger.Error("export.letter.failed", "claim_number", rec.ClaimNumber, "error", err,
			"elapsed_ms", time.Since(start).Milliseconds())
		return nil, common.WrapError(err, "generate appeal letter")
	}

	w.logger.Info("export.letter.ok", "claim_number", rec.ClaimNumber,
		"content_len", len(content), "elapsed_ms", time.Since(start).Milliseconds())

	return &File{
		Content:     []byte(content),
		Filename:    exportFilename("appeal_letter", rec.ClaimNumber, "txt"),
		ContentType: "text/plain",
	}, nil
}

// buildLetterPrompt assembles claim identity plus each appealable issue and
// the specific line items it affects.
func buildLetterPrompt(rec *eob.Record, issues []eob.Issue) string {
	var b strings.Builder

	fmt.Fprintf(&b, "Insurance company: %s\n", rec.PayerName)
	if rec.PayerAddress != "" {
		fmt.Fprintf(&b, "Insurer address: %s\n", rec.PayerAddress)
	}
	fmt.Fprintf(&b, "Member: %s (ID %s)\n", rec.MemberName, rec.MemberID)
	if rec.GroupNumber != "" {
		fmt.Fprintf(&b, "Group number: %s\n", rec.GroupNumber)
	}
	fmt.Fprintf(&b, "Claim number: %s\n", rec.ClaimNumber)
	if rec.ProviderName != "" {
		fmt.Fprintf(&b, "Provider: %s\n", rec.ProviderName)
	}

	b.WriteString("\nDisputed items:\n")
	for i, is := range issues {
		fmt.Fprintf(&b, "%d. [%s] %s: %s\n", i+1, is.Type, is.Title, is.Description)
		if is.PotentialSavings > 0 {
			fmt.Fprintf(&b, "   Estimated amount in dispute: $%.2f\n", is.PotentialSavings)
		}
		for _, id := range is.AffectedLineItems {
			li := rec.LineItemByID(id)
			if li == nil {
				continue
			}
			fmt.Fprintf(&b, "   - %s on %s: billed $%.2f, allowed $%.2f, plan paid $%.2f, patient responsibility $%.2f",
				li.ProcedureDescription, li.ServiceDate, li.BilledAmount, li.AllowedAmount, li.PlanPaid, li.PatientResponsibility)
			if li.DenialCode != "" || li.DenialReason != "" {
				fmt.Fprintf(&b, " (denial %s %s)", li.DenialCode, li.DenialReason)
			}
			b.WriteString("\n")
		}
	}

	b.WriteString("\nWrite the appeal letter now.")
	return b.String()
}
