package eob

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestNarrateOmitsZeroComponents(t *testing.T) {
	s := FinancialSummary{
		TotalBilled:                700,
		TotalAllowed:               525,
		TotalPlanPaid:              400,
		TotalPatientResponsibility: 125,
		TotalCopay:                 25,
		TotalCoinsurance:           100,
	}

	text := Narrate(s)

	assert.Contains(t, text, "Your total responsibility for this claim is $125.00.")
	assert.Contains(t, text, "This breaks down as:")
	assert.Contains(t, text, "Copay: $25.00")
	assert.Contains(t, text, "Coinsurance: $100.00")
	assert.NotContains(t, text, "Deductible")
	assert.NotContains(t, text, "Not covered by your plan")

	assert.Contains(t, text, "Your insurance plan paid $400.00 of the $525.00 allowed amount.")
	assert.True(t, strings.HasSuffix(text, "The provider originally billed $700.00."))
}

func TestNarrateNoComponents(t *testing.T) {
	text := Narrate(FinancialSummary{TotalBilled: 100, TotalAllowed: 100, TotalPlanPaid: 100})

	assert.Contains(t, text, "Your total responsibility for this claim is $0.00.")
	assert.NotContains(t, text, "This breaks down as:")
}
