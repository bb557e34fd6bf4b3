package export

import (
	"fmt"

	"github.com/xuri/excelize/v2"

	"github.com/clearclaim/eob-analyzer/internal/eob"
)

// XLSX renders the record as a workbook: one sheet of line items with the
// same columns as the CSV, followed by the summary totals.
func XLSX(rec *eob.Record) (*File, error) {
	f := excelize.NewFile()
	const sheet = "Claim"
	// Rename the default sheet so the workbook has exactly one sheet.
	if err := f.SetSheetName(f.GetSheetName(0), sheet); err != nil {
		return nil, err
	}

	for i, h := range csvHeaders {
		cell, _ := excelize.CoordinatesToCellName(i+1, 1)
		_ = f.SetCellValue(sheet, cell, h)
	}

	write := func(col, row int, v any) {
		cell, _ := excelize.CoordinatesToCellName(col, row)
		_ = f.SetCellValue(sheet, cell, v)
	}

	row := 2
	for _, li := range rec.LineItems {
		write(1, row, li.ServiceDate)
		write(2, row, li.Provider)
		write(3, row, li.ProcedureCode)
		write(4, row, truncate(li.ProcedureDescription, 140))
		write(5, row, li.DiagnosisCode)
		write(6, row, li.BilledAmount)
		write(7, row, li.AllowedAmount)
		write(8, row, li.PlanPaid)
		write(9, row, li.Deductible)
		write(10, row, li.Copay)
		write(11, row, li.Coinsurance)
		write(12, row, li.NotCovered)
		write(13, row, li.PatientResponsibility)
		write(14, row, li.DenialCode)
		write(15, row, li.DenialReason)
		row++
	}

	// Summary block below the table.
	row++
	s := rec.FinancialSummary
	totals := []struct {
		label string
		value float64
	}{
		{"Total Billed", s.TotalBilled},
		{"Total Allowed", s.TotalAllowed},
		{"Total Plan Paid", s.TotalPlanPaid},
		{"Total Patient Responsibility", s.TotalPatientResponsibility},
	}
	for _, t := range totals {
		write(1, row, t.label)
		write(2, row, t.value)
		row++
	}

	// Widen a few columns
	_ = f.SetColWidth(sheet, "A", "A", 14) // date
	_ = f.SetColWidth(sheet, "B", "B", 26) // provider
	_ = f.SetColWidth(sheet, "D", "D", 42) // procedure description
	_ = f.SetColWidth(sheet, "F", "M", 14) // amounts
	_ = f.SetColWidth(sheet, "O", "O", 36) // denial reason

	buf, err := f.WriteToBuffer()
	if err != nil {
		return nil, fmt.Errorf("xlsx write: %w", err)
	}

	return &File{
		Content:     buf.Bytes(),
		Filename:    exportFilename("eob", rec.ClaimNumber, "xlsx"),
		ContentType: "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet",
	}, nil
}

func truncate(s string, n int) string {
	if n <= 0 || len(s) <= n {
		return s
	}
	if n <= 1 {
		return s[:n]
	}
	return s[:n-1] + "…"
}
