package eob

// Reconcile aggregates per-line amounts into claim-level totals. Pure and
// total: an empty slice yields an all-zero summary, and summation is
// commutative so ordering never changes the result. Absent optional
// components are zero-valued on the line item already.
func Reconcile(items []LineItem) FinancialSummary {
	var s FinancialSummary
	for _, li := range items {
		s.TotalBilled += li.BilledAmount
		s.TotalAllowed += li.AllowedAmount
		s.TotalPlanPaid += li.PlanPaid
		s.TotalPatientResponsibility += li.PatientResponsibility
		s.TotalDeductible += li.Deductible
		s.TotalCopay += li.Copay
		s.TotalCoinsurance += li.Coinsurance
		s.TotalNotCovered += li.NotCovered
	}
	return s
}
