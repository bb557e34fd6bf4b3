package eob

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/clearclaim/eob-analyzer/constants"
)

func TestAnalyzeNoIssues(t *testing.T) {
	items := []LineItem{
		{ID: "a", ServiceDate: "2024-03-01", ProcedureCode: "99213", PatientResponsibility: 30, Copay: 30},
	}

	issues := Analyze(items, Reconcile(items))
	require.NotNil(t, issues)
	assert.Len(t, issues, 0)
}

func TestAnalyzeDuplicateBilling(t *testing.T) {
	items := []LineItem{
		{ID: "a", ServiceDate: "2024-03-01", ProcedureCode: "99213", ProcedureDescription: "Office visit", PatientResponsibility: 100},
		{ID: "b", ServiceDate: "2024-03-01", ProcedureCode: "99213", ProcedureDescription: "Office visit", PatientResponsibility: 50},
		{ID: "c", ServiceDate: "2024-03-02", ProcedureCode: "99213", PatientResponsibility: 40},
	}

	issues := Analyze(items, Reconcile(items))
	require.Len(t, issues, 1)

	is := issues[0]
	assert.Equal(t, constants.DuplicateBilling, is.Type)
	assert.Equal(t, constants.SeverityHigh, is.Severity)
	assert.Equal(t, []string{"a", "b"}, is.AffectedLineItems)
	assert.InDelta(t, 75, is.PotentialSavings, 1e-9)
	assert.Contains(t, is.Description, "appears 2 times")
	assert.Contains(t, is.Description, "2024-03-01")
}

func TestAnalyzeDenialsOnePerLine(t *testing.T) {
	items := []LineItem{
		{ID: "a", ServiceDate: "2024-03-01", ProcedureCode: "80053", DenialCode: "CO-97", DenialReason: "Bundled service", PatientResponsibility: 85},
		{ID: "b", ServiceDate: "2024-03-02", ProcedureCode: "70450", DenialReason: "Not medically necessary", PatientResponsibility: 410},
	}

	issues := Analyze(items, Reconcile(items))
	require.Len(t, issues, 2)

	assert.Equal(t, constants.Denial, issues[0].Type)
	assert.Equal(t, []string{"a"}, issues[0].AffectedLineItems)
	assert.InDelta(t, 85, issues[0].PotentialSavings, 1e-9)
	assert.Contains(t, issues[0].Description, "CO-97")
	assert.Equal(t, constants.AppealDeadlineGuidance, issues[0].AppealDeadline)

	assert.Equal(t, []string{"b"}, issues[1].AffectedLineItems)
	assert.InDelta(t, 410, issues[1].PotentialSavings, 1e-9)
	assert.NotContains(t, issues[1].Description, "denied with code")
}

func TestAnalyzeHighCostThresholdIsStrict(t *testing.T) {
	atThreshold := []LineItem{
		{ID: "a", ProcedureCode: "27447", PatientResponsibility: 500.00},
	}
	assert.Len(t, Analyze(atThreshold, Reconcile(atThreshold)), 0)

	over := []LineItem{
		{ID: "b", ProcedureCode: "27447", ProcedureDescription: "Knee arthroplasty", PatientResponsibility: 500.01},
	}
	issues := Analyze(over, Reconcile(over))
	require.Len(t, issues, 1)
	assert.Equal(t, constants.HighCost, issues[0].Type)
	assert.Equal(t, constants.SeverityMedium, issues[0].Severity)
	assert.Zero(t, issues[0].PotentialSavings)
	assert.Contains(t, issues[0].Description, "$500.01")
}

func TestAnalyzeOutOfNetworkGroupsIntoOneIssue(t *testing.T) {
	items := []LineItem{
		{ID: "a", ProcedureCode: "90837", NotCovered: 120, PatientResponsibility: 120},
		{ID: "b", ProcedureCode: "90834", NotCovered: 80, PatientResponsibility: 80},
		{ID: "c", ProcedureCode: "90832", NotCovered: 40, PatientResponsibility: 40},
		// Not covered amount does not fully explain the responsibility, so
		// this line is not part of the out-of-network pattern.
		{ID: "d", ProcedureCode: "99213", NotCovered: 10, PatientResponsibility: 35},
	}

	issues := Analyze(items, Reconcile(items))
	require.Len(t, issues, 1)

	is := issues[0]
	assert.Equal(t, constants.OutOfNetwork, is.Type)
	assert.Equal(t, []string{"a", "b", "c"}, is.AffectedLineItems)
	assert.InDelta(t, 120, is.PotentialSavings, 1e-9)
	assert.Contains(t, is.Description, "3 charge(s)")
	assert.Contains(t, is.Description, "$240.00")
}

func TestAnalyzePassOrder(t *testing.T) {
	items := []LineItem{
		{ID: "dup1", ServiceDate: "2024-03-01", ProcedureCode: "99213", PatientResponsibility: 100},
		{ID: "dup2", ServiceDate: "2024-03-01", ProcedureCode: "99213", PatientResponsibility: 50},
		{ID: "den", ServiceDate: "2024-03-02", ProcedureCode: "80053", DenialCode: "CO-97", PatientResponsibility: 80},
		{ID: "hc", ServiceDate: "2024-03-03", ProcedureCode: "27447", PatientResponsibility: 600},
		{ID: "oon", ServiceDate: "2024-03-04", ProcedureCode: "90837", NotCovered: 120, PatientResponsibility: 120},
	}

	issues := Analyze(items, Reconcile(items))
	require.Len(t, issues, 4)

	assert.Equal(t, constants.DuplicateBilling, issues[0].Type)
	assert.Equal(t, constants.Denial, issues[1].Type)
	assert.Equal(t, constants.HighCost, issues[2].Type)
	assert.Equal(t, constants.OutOfNetwork, issues[3].Type)
}
