package llm

import "strings"

// MaxDocumentChars caps how much document text is submitted to the
// collaborator. A cost/latency tradeoff, not a correctness bound: longer
// documents are silently truncated before extraction.
const MaxDocumentChars = 12000

// BuildExtractionSystemPrompt describes the exact target JSON shape for claim
// extraction. Field semantics mirror the schema in schema.go.
func BuildExtractionSystemPrompt() string {
	parts := []string{
		"You are an insurance EOB (Explanation of Benefits) parser. Return ONLY JSON that matches the provided JSON Schema.",
		"Use ISO-8601 dates (YYYY-MM-DD) for all date fields.",
		"All monetary fields are plain numbers in dollars with up to two decimals, never strings, never negative.",
		"Extract every billed service line into 'lineItems', preserving document order.",
		"For each line item include billedAmount, allowedAmount, planPaid, and patientResponsibility; include deductible, copay, coinsurance, and notCovered only when the document states them.",
		"If a line was denied, include 'denialCode' and/or 'denialReason' exactly as printed.",
		"If a line item does not name its own provider, omit 'provider'.",
		"Never output null. If a field is not present in the document, omit it.",
		"Do not invent amounts; omit what you cannot read.",
	}
	return strings.Join(parts, " ")
}

// BuildExtractionUserPrompt packages the document text, truncated to the
// fixed budget. maxChars <= 0 falls back to MaxDocumentChars.
func BuildExtractionUserPrompt(text string, maxChars int) string {
	if maxChars <= 0 {
		maxChars = MaxDocumentChars
	}
	var b strings.Builder
	b.WriteString("Document text:\n")
	if len(text) > maxChars {
		b.WriteString(text[:maxChars])
		b.WriteString("\n…(truncated)")
	} else {
		b.WriteString(text)
	}
	return b.String()
}
