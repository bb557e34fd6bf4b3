package eob

import (
	"github.com/clearclaim/eob-analyzer/constants"
)

// Defaults used when extraction omits identity fields that downstream
// rendering treats as required. Never empty, never null.
const (
	UnknownPayer  = "Unknown Insurance Company"
	UnknownMember = "Unknown Member"
	Unknown       = "Unknown"
)

// Record is the root aggregate for one processed EOB document. It exclusively
// owns its line items, financial summary, and issues; nothing is shared
// across records.
type Record struct {
	PayerName    string `json:"payerName"`
	PayerAddress string `json:"payerAddress,omitempty"`
	PayerPhone   string `json:"payerPhone,omitempty"`

	MemberName  string `json:"memberName"`
	MemberID    string `json:"memberId"`
	GroupNumber string `json:"groupNumber,omitempty"`

	ClaimNumber  string `json:"claimNumber"`
	ProviderName string `json:"providerName,omitempty"`
	ProviderNPI  string `json:"providerNpi,omitempty"`

	ClaimDate     string `json:"claimDate,omitempty"`
	ProcessedDate string `json:"processedDate,omitempty"`
	ServiceDate   string `json:"serviceDate,omitempty"`

	// LineItems keeps extraction order; it is not guaranteed chronological.
	LineItems []LineItem `json:"lineItems"`

	// FinancialSummary is always derived from LineItems, never authored.
	FinancialSummary FinancialSummary `json:"financialSummary"`

	PlainLanguageSummary string `json:"plainLanguageSummary"`

	// Issues keeps detection-pass order, which is also display order.
	Issues []Issue `json:"issues"`

	// Notes is reserved; currently always empty.
	Notes []string `json:"notes"`
}

// LineItem is one billed service or procedure line. All monetary fields are
// non-negative dollar amounts; optional components default to 0.
type LineItem struct {
	// ID is an opaque token, stable for the lifetime of the record, used to
	// cross-reference from Issue.AffectedLineItems.
	ID string `json:"id"`

	ServiceDate          string `json:"serviceDate"`
	Provider             string `json:"provider"`
	ProcedureCode        string `json:"procedureCode"`
	ProcedureDescription string `json:"procedureDescription"`
	DiagnosisCode        string `json:"diagnosisCode,omitempty"`
	DiagnosisDescription string `json:"diagnosisDescription,omitempty"`

	BilledAmount  float64 `json:"billedAmount"`
	AllowedAmount float64 `json:"allowedAmount"`
	PlanPaid      float64 `json:"planPaid"`

	// PatientResponsibility is trusted as reported by extraction; it is not
	// recomputed from the components below even when they disagree.
	PatientResponsibility float64 `json:"patientResponsibility"`

	Deductible  float64 `json:"deductible,omitempty"`
	Copay       float64 `json:"copay,omitempty"`
	Coinsurance float64 `json:"coinsurance,omitempty"`
	NotCovered  float64 `json:"notCovered,omitempty"`

	// Presence of either denial field marks the line as denied or partially
	// denied.
	DenialCode   string `json:"denialCode,omitempty"`
	DenialReason string `json:"denialReason,omitempty"`
}

// Denied reports whether the line carries any denial marker.
func (li LineItem) Denied() bool {
	return li.DenialCode != "" || li.DenialReason != ""
}

// FinancialSummary is the claim-level aggregate. Created fresh every time a
// Record is assembled; a pure function of the current line items.
type FinancialSummary struct {
	TotalBilled                float64 `json:"totalBilled"`
	TotalAllowed               float64 `json:"totalAllowed"`
	TotalPlanPaid              float64 `json:"totalPlanPaid"`
	TotalPatientResponsibility float64 `json:"totalPatientResponsibility"`
	TotalDeductible            float64 `json:"totalDeductible"`
	TotalCopay                 float64 `json:"totalCopay"`
	TotalCoinsurance           float64 `json:"totalCoinsurance"`
	TotalNotCovered            float64 `json:"totalNotCovered"`
}

// Issue is one detected problem or notable condition. Entirely derived,
// regenerated on every analysis pass, never edited in place.
type Issue struct {
	Type        constants.IssueType `json:"type"`
	Severity    constants.Severity  `json:"severity"`
	Title       string              `json:"title"`
	Description string              `json:"description"`

	// AffectedLineItems holds line item ids; a weak back-reference used only
	// for cross-highlighting.
	AffectedLineItems []string `json:"affectedLineItems"`

	// PotentialSavings is an estimate of the recoverable amount, not a
	// guarantee. Zero means no estimate.
	PotentialSavings float64 `json:"potentialSavings,omitempty"`

	ActionRequired string `json:"actionRequired,omitempty"`
	AppealDeadline string `json:"appealDeadline,omitempty"`
}

// AppealableIssues returns the subset of issues that can back an appeal
// letter, preserving order.
func (r *Record) AppealableIssues() []Issue {
	var out []Issue
	for _, is := range r.Issues {
		if constants.IsAppealable(is.Type) {
			out = append(out, is)
		}
	}
	return out
}

// LineItemByID returns the line item with the given id, or nil.
func (r *Record) LineItemByID(id string) *LineItem {
	for i := range r.LineItems {
		if r.LineItems[i].ID == id {
			return &r.LineItems[i]
		}
	}
	return nil
}
