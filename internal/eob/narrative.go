package eob

import (
	"fmt"
	"strings"
)

// Narrate renders the financial summary as a plain-language explanation.
// Components with a zero total are omitted entirely rather than shown as
// "$0.00" lines.
func Narrate(s FinancialSummary) string {
	var b strings.Builder

	fmt.Fprintf(&b, "Your total responsibility for this claim is %s.\n", money(s.TotalPatientResponsibility))

	components := []struct {
		label string
		value float64
	}{
		{"Deductible", s.TotalDeductible},
		{"Copay", s.TotalCopay},
		{"Coinsurance", s.TotalCoinsurance},
		{"Not covered by your plan", s.TotalNotCovered},
	}
	any := false
	for _, c := range components {
		if c.value > 0 {
			if !any {
				b.WriteString("This breaks down as:\n")
				any = true
			}
			fmt.Fprintf(&b, "  - %s: %s\n", c.label, money(c.value))
		}
	}

	fmt.Fprintf(&b, "Your insurance plan paid %s of the %s allowed amount.\n", money(s.TotalPlanPaid), money(s.TotalAllowed))
	fmt.Fprintf(&b, "The provider originally billed %s.", money(s.TotalBilled))

	return b.String()
}
