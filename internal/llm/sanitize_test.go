package llm

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestStripCodeFence(t *testing.T) {
	assert.Equal(t, `{"a":1}`, StripCodeFence("```json\n{\"a\":1}\n```"))
	assert.Equal(t, `{"a":1}`, StripCodeFence("```\n{\"a\":1}\n```"))
	assert.Equal(t, `{"a":1}`, StripCodeFence(`{"a":1}`))
	assert.Equal(t, `{"a":1}`, StripCodeFence("  {\"a\":1}  "))
}

func TestNormalizeClaimJSONCoercesMoney(t *testing.T) {
	raw := []byte(`{
		"claimNumber": "CLM-1",
		"lineItems": [
			{"billedAmount": "$1,234.50", "allowedAmount": 100, "planPaid": "-5", "copay": "abc"}
		]
	}`)

	out, touched, err := NormalizeClaimJSON(raw, nil)
	require.NoError(t, err)

	var m map[string]any
	require.NoError(t, json.Unmarshal(out, &m))
	li := m["lineItems"].([]any)[0].(map[string]any)

	assert.Equal(t, 1234.5, li["billedAmount"])
	assert.Equal(t, 100.0, li["allowedAmount"])
	assert.NotContains(t, li, "planPaid")
	assert.NotContains(t, li, "copay")

	assert.Contains(t, touched, "lineItems[0].billedAmount(coerced)")
	assert.Contains(t, touched, "lineItems[0].planPaid(unparseable)")
}

func TestNormalizeClaimJSONDropsNegativeNumbers(t *testing.T) {
	raw := []byte(`{"lineItems":[{"patientResponsibility": -30}]}`)

	out, touched, err := NormalizeClaimJSON(raw, nil)
	require.NoError(t, err)

	var m map[string]any
	require.NoError(t, json.Unmarshal(out, &m))
	li := m["lineItems"].([]any)[0].(map[string]any)

	assert.NotContains(t, li, "patientResponsibility")
	assert.Contains(t, touched, "lineItems[0].patientResponsibility(negative)")
}

func TestNormalizeClaimJSONNormalizesDates(t *testing.T) {
	raw := []byte(`{
		"claimDate": "01/15/2024",
		"processedDate": "2024-02-01",
		"serviceDate": "sometime last spring",
		"lineItems": [{"serviceDate": "3/5/2024"}]
	}`)

	out, _, err := NormalizeClaimJSON(raw, nil)
	require.NoError(t, err)

	var m map[string]any
	require.NoError(t, json.Unmarshal(out, &m))

	assert.Equal(t, "2024-01-15", m["claimDate"])
	assert.Equal(t, "2024-02-01", m["processedDate"])
	assert.NotContains(t, m, "serviceDate")

	li := m["lineItems"].([]any)[0].(map[string]any)
	assert.Equal(t, "2024-03-05", li["serviceDate"])
}

func TestNormalizeClaimJSONDropsUnknownKeysAndNulls(t *testing.T) {
	raw := []byte(`{
		"payerName": "  Aetna  ",
		"memberId": null,
		"confidence": 0.93,
		"lineItems": [{"procedureCode": "99213", "modelNote": "looks fine"}]
	}`)

	out, touched, err := NormalizeClaimJSON(raw, nil)
	require.NoError(t, err)

	var m map[string]any
	require.NoError(t, json.Unmarshal(out, &m))

	assert.Equal(t, "Aetna", m["payerName"])
	assert.NotContains(t, m, "memberId")
	assert.NotContains(t, m, "confidence")

	li := m["lineItems"].([]any)[0].(map[string]any)
	assert.Equal(t, "99213", li["procedureCode"])
	assert.NotContains(t, li, "modelNote")

	assert.Contains(t, touched, "payerName(trim)")
	assert.Contains(t, touched, "memberId(null)")
	assert.Contains(t, touched, "confidence(unknown)")
	assert.Contains(t, touched, "lineItems[0].modelNote(unknown)")
}

func TestNormalizeClaimJSONRejectsNonObject(t *testing.T) {
	_, _, err := NormalizeClaimJSON([]byte(`not json`), nil)
	assert.Error(t, err)
}

func TestValidateJSONAgainstSchemaRequiresLineItems(t *testing.T) {
	schema := BuildClaimJSONSchema()

	assert.Error(t, ValidateJSONAgainstSchema(schema, []byte(`{"claimNumber":"X"}`)))
	assert.NoError(t, ValidateJSONAgainstSchema(schema, []byte(`{"claimNumber":"X","lineItems":[]}`)))
}
