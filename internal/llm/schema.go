package llm

// BuildClaimJSONSchema returns a JSON-Schema (draft 2020-12 subset) as a
// generic map. We pass this to the model as a structured output constraint
// and also use it locally to validate the response after sanitization.
func BuildClaimJSONSchema() map[string]any {
	lineItem := map[string]any{
		"type":                 "object",
		"additionalProperties": false,
		"properties": map[string]any{
			"serviceDate":          dateProp(),
			"provider":             map[string]any{"type": "string"},
			"procedureCode":        map[string]any{"type": "string"},
			"procedureDescription": map[string]any{"type": "string"},
			"diagnosisCode":        map[string]any{"type": "string"},
			"diagnosisDescription": map[string]any{"type": "string"},

			"billedAmount":          moneyProp(),
			"allowedAmount":         moneyProp(),
			"planPaid":              moneyProp(),
			"patientResponsibility": moneyProp(),
			"deductible":            moneyProp(),
			"copay":                 moneyProp(),
			"coinsurance":           moneyProp(),
			"notCovered":            moneyProp(),

			"denialCode":   map[string]any{"type": "string"},
			"denialReason": map[string]any{"type": "string"},
		},
	}

	return map[string]any{
		"type":                 "object",
		"additionalProperties": false,
		"properties": map[string]any{
			"payerName":    map[string]any{"type": "string"},
			"payerAddress": map[string]any{"type": "string"},
			"payerPhone":   map[string]any{"type": "string"},

			"memberName":  map[string]any{"type": "string"},
			"memberId":    map[string]any{"type": "string"},
			"groupNumber": map[string]any{"type": "string"},

			"claimNumber":  map[string]any{"type": "string"},
			"providerName": map[string]any{"type": "string"},
			"providerNpi":  map[string]any{"type": "string"},

			"claimDate":     dateProp(),
			"processedDate": dateProp(),
			"serviceDate":   dateProp(),

			"lineItems": map[string]any{
				"type":  "array",
				"items": lineItem,
			},
		},
		"required": []string{"lineItems"},
	}
}

func moneyProp() map[string]any {
	return map[string]any{"type": "number", "minimum": 0.0}
}

func dateProp() map[string]any {
	return map[string]any{"type": "string", "pattern": `^\d{4}-\d{2}-\d{2}$`}
}
