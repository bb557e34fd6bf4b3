package llm

import "context"

// ResponseFormat selects the collaborator's output mode.
type ResponseFormat string

const (
	FormatJSON ResponseFormat = "json"
	FormatText ResponseFormat = "text"
)

// CompletionClient is the external text-completion collaborator. Given
// instructions and document content it returns either raw JSON or prose;
// JSON output may arrive wrapped in a fenced code block and must be tolerated
// by callers. No determinism across calls is assumed.
type CompletionClient interface {
	Complete(ctx context.Context, system, user string, format ResponseFormat) (string, error)
}

// ClaimFields is the normalized claim shape we want from the model.
// Identity fields stay empty when the document does not state them; the
// extractor applies sentinel defaults afterwards.
type ClaimFields struct {
	PayerName    string `json:"payerName,omitempty"`
	PayerAddress string `json:"payerAddress,omitempty"`
	PayerPhone   string `json:"payerPhone,omitempty"`

	MemberName  string `json:"memberName,omitempty"`
	MemberID    string `json:"memberId,omitempty"`
	GroupNumber string `json:"groupNumber,omitempty"`

	ClaimNumber  string `json:"claimNumber,omitempty"`
	ProviderName string `json:"providerName,omitempty"`
	ProviderNPI  string `json:"providerNpi,omitempty"`

	ClaimDate     string `json:"claimDate,omitempty"`     // YYYY-MM-DD
	ProcessedDate string `json:"processedDate,omitempty"` // YYYY-MM-DD
	ServiceDate   string `json:"serviceDate,omitempty"`   // YYYY-MM-DD

	LineItems []LineItemFields `json:"lineItems"`
}

// LineItemFields is one extracted service line. Money arrives as numbers
// after sanitization; anything non-numeric was already coerced or dropped.
type LineItemFields struct {
	ServiceDate          string `json:"serviceDate,omitempty"`
	Provider             string `json:"provider,omitempty"`
	ProcedureCode        string `json:"procedureCode,omitempty"`
	ProcedureDescription string `json:"procedureDescription,omitempty"`
	DiagnosisCode        string `json:"diagnosisCode,omitempty"`
	DiagnosisDescription string `json:"diagnosisDescription,omitempty"`

	BilledAmount          float64 `json:"billedAmount,omitempty"`
	AllowedAmount         float64 `json:"allowedAmount,omitempty"`
	PlanPaid              float64 `json:"planPaid,omitempty"`
	PatientResponsibility float64 `json:"patientResponsibility,omitempty"`
	Deductible            float64 `json:"deductible,omitempty"`
	Copay                 float64 `json:"copay,omitempty"`
	Coinsurance           float64 `json:"coinsurance,omitempty"`
	NotCovered            float64 `json:"notCovered,omitempty"`

	DenialCode   string `json:"denialCode,omitempty"`
	DenialReason string `json:"denialReason,omitempty"`
}
