package constants

// IssueType identifies one class of detected problem on a claim.
type IssueType string

const (
	DuplicateBilling IssueType = "duplicate_billing"
	Denial           IssueType = "denial"
	HighCost         IssueType = "high_cost"
	OutOfNetwork     IssueType = "out_of_network"
)

// Severity is used only for display styling; issues are never sorted by it.
type Severity string

const (
	SeverityLow    Severity = "low"
	SeverityMedium Severity = "medium"
	SeverityHigh   Severity = "high"
)

// appealable is the closed set of issue types that can back an appeal letter.
// Unknown types are non-appealable by default.
var appealable = map[IssueType]struct{}{
	DuplicateBilling: {},
	Denial:           {},
	OutOfNetwork:     {},
}

// IsAppealable reports whether an issue of the given type can be appealed.
func IsAppealable(t IssueType) bool {
	_, ok := appealable[t]
	return ok
}

// HighCostThreshold is the patient-responsibility amount (in dollars) above
// which a line item is flagged as high cost. Strictly greater-than.
const HighCostThreshold = 500.0

// AppealDeadlineGuidance is general guidance, not computed from the actual
// payer or policy deadline.
const AppealDeadlineGuidance = "Typically 180 days from denial date"
