// Package export renders an assembled claim record as downloadable files:
// a tabular CSV, the spreadsheet-native XLSX, and a model-generated appeal
// letter scoped to appealable issues.
package export

import (
	"fmt"
	"strings"
	"time"

	"github.com/clearclaim/eob-analyzer/internal/eob"
)

// File is a rendered download.
type File struct {
	Content     []byte
	Filename    string
	ContentType string
}

// csvHeaders is the fixed 15-column line-item schema.
var csvHeaders = []string{
	"Service Date",
	"Provider",
	"Procedure Code",
	"Procedure Description",
	"Diagnosis Code",
	"Billed Amount",
	"Allowed Amount",
	"Plan Paid",
	"Deductible",
	"Copay",
	"Coinsurance",
	"Not Covered",
	"Patient Responsibility",
	"Denial Code",
	"Denial Reason",
}

// CSV renders the record's line items plus a trailing summary block. Pure
// over the record; never fails on a validly assembled record.
func CSV(rec *eob.Record) *File {
	var b strings.Builder

	writeRow(&b, csvHeaders)
	for _, li := range rec.LineItems {
		writeRow(&b, []string{
			li.ServiceDate,
			li.Provider,
			li.ProcedureCode,
			li.ProcedureDescription,
			li.DiagnosisCode,
			amount(li.BilledAmount),
			amount(li.AllowedAmount),
			amount(li.PlanPaid),
			amount(li.Deductible),
			amount(li.Copay),
			amount(li.Coinsurance),
			amount(li.NotCovered),
			amount(li.PatientResponsibility),
			li.DenialCode,
			li.DenialReason,
		})
	}

	// Trailing summary block repeats the four primary totals.
	s := rec.FinancialSummary
	b.WriteString("\n")
	writeRow(&b, []string{"Total Billed", amount(s.TotalBilled)})
	writeRow(&b, []string{"Total Allowed", amount(s.TotalAllowed)})
	writeRow(&b, []string{"Total Plan Paid", amount(s.TotalPlanPaid)})
	writeRow(&b, []string{"Total Patient Responsibility", amount(s.TotalPatientResponsibility)})

	return &File{
		Content:     []byte(b.String()),
		Filename:    exportFilename("eob", rec.ClaimNumber, "csv"),
		ContentType: "text/csv",
	}
}

func writeRow(b *strings.Builder, fields []string) {
	for i, f := range fields {
		if i > 0 {
			b.WriteString(",")
		}
		b.WriteString(escapeCSV(f))
	}
	b.WriteString("\n")
}

// escapeCSV wraps values containing commas, quotes, or newlines in double
// quotes, doubling internal quotes (RFC 4180).
func escapeCSV(s string) string {
	if !strings.ContainsAny(s, ",\"\n\r") {
		return s
	}
	return `"` + strings.ReplaceAll(s, `"`, `""`) + `"`
}

func amount(v float64) string {
	return fmt.Sprintf("%.2f", v)
}

// exportFilename embeds the claim number and a timestamp to avoid collisions.
func exportFilename(prefix, claimNumber, ext string) string {
	return fmt.Sprintf("%s_%s_%s.%s",
		prefix, sanitizeFilename(claimNumber), time.Now().UTC().Format("20060102-150405"), ext)
}

func sanitizeFilename(s string) string {
	var b strings.Builder
	for _, r := range s {
		switch {
		case r >= 'a' && r <= 'z', r >= 'A' && r <= 'Z', r >= '0' && r <= '9', r == '-', r == '_':
			b.WriteRune(r)
		default:
			b.WriteRune('-')
		}
	}
	if b.Len() == 0 {
		return "unknown"
	}
	return b.String()
}
