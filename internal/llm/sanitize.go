package llm

import (
	"encoding/json"
	"fmt"
	"log/slog"
	"regexp"
	"strconv"
	"strings"
	"time"
)

var (
	reISODate  = regexp.MustCompile(`^\d{4}-\d{2}-\d{2}$`)
	fenceStart = regexp.MustCompile("^```[a-zA-Z]*\\s*")

	claimStringKeys = []string{
		"payerName", "payerAddress", "payerPhone",
		"memberName", "memberId", "groupNumber",
		"claimNumber", "providerName", "providerNpi",
	}
	claimDateKeys = []string{"claimDate", "processedDate", "serviceDate"}

	lineStringKeys = []string{
		"provider", "procedureCode", "procedureDescription",
		"diagnosisCode", "diagnosisDescription", "denialCode", "denialReason",
	}
	lineMoneyKeys = []string{
		"billedAmount", "allowedAmount", "planPaid", "patientResponsibility",
		"deductible", "copay", "coinsurance", "notCovered",
	}
)

// StripCodeFence removes surrounding Markdown code-fence markers that some
// models wrap around JSON output.
func StripCodeFence(s string) string {
	s = strings.TrimSpace(s)
	if !strings.HasPrefix(s, "```") {
		return s
	}
	s = fenceStart.ReplaceAllString(s, "")
	s = strings.TrimSuffix(strings.TrimSpace(s), "```")
	return strings.TrimSpace(s)
}

// NormalizeClaimJSON makes a model response schema-friendly without altering
// its substance:
//   - coerces money fields given as strings ("1,234.50", "$85") to numbers;
//     non-numeric or negative values are dropped (they default to 0 downstream)
//   - converts common US date formats to ISO, dropping unparseable dates
//   - drops null and empty-string optionals
//   - removes unknown keys (additionalProperties=false friendliness)
//
// It returns the cleaned document and the list of touched keys for logging.
func NormalizeClaimJSON(raw []byte, logger *slog.Logger) ([]byte, []string, error) {
	if logger == nil {
		logger = slog.Default()
	}

	var m map[string]any
	if err := json.Unmarshal(raw, &m); err != nil {
		return nil, nil, fmt.Errorf("sanitize: decode: %w", err)
	}

	var touched []string

	for _, k := range claimStringKeys {
		touched = append(touched, trimString(m, k)...)
	}
	for _, k := range claimDateKeys {
		touched = append(touched, normalizeDate(m, k)...)
	}

	if rawItems, ok := m["lineItems"].([]any); ok {
		for i, it := range rawItems {
			li, ok := it.(map[string]any)
			if !ok {
				continue
			}
			prefix := fmt.Sprintf("lineItems[%d].", i)
			for _, k := range lineStringKeys {
				for _, t := range trimString(li, k) {
					touched = append(touched, prefix+t)
				}
			}
			for _, t := range normalizeDate(li, "serviceDate") {
				touched = append(touched, prefix+t)
			}
			for _, k := range lineMoneyKeys {
				for _, t := range coerceMoney(li, k) {
					touched = append(touched, prefix+t)
				}
			}
			for _, t := range dropUnknown(li, lineAllowedKeys) {
				touched = append(touched, prefix+t)
			}
		}
	}

	for _, t := range dropUnknown(m, claimAllowedKeys) {
		touched = append(touched, t)
	}

	out, err := json.Marshal(m)
	if err != nil {
		return nil, touched, fmt.Errorf("sanitize: encode: %w", err)
	}
	if len(touched) > 0 {
		logger.Warn("extract.sanitize", "touched", touched)
	}
	return out, touched, nil
}

var claimAllowedKeys = keySet(append(append([]string{"lineItems"}, claimStringKeys...), claimDateKeys...))

var lineAllowedKeys = keySet(append(append([]string{"serviceDate"}, lineStringKeys...), lineMoneyKeys...))

func keySet(keys []string) map[string]struct{} {
	s := make(map[string]struct{}, len(keys))
	for _, k := range keys {
		s[k] = struct{}{}
	}
	return s
}

func trimString(m map[string]any, k string) []string {
	v, ok := m[k]
	if !ok {
		return nil
	}
	switch t := v.(type) {
	case nil:
		delete(m, k)
		return []string{k + "(null)"}
	case string:
		s := strings.TrimSpace(t)
		if s == "" {
			delete(m, k)
			return []string{k + "(empty)"}
		}
		if s != t {
			m[k] = s
			return []string{k + "(trim)"}
		}
		m[k] = s
		return nil
	default:
		delete(m, k)
		return []string{k + "(type)"}
	}
}

func coerceMoney(m map[string]any, k string) []string {
	v, ok := m[k]
	if !ok {
		return nil
	}
	switch t := v.(type) {
	case float64:
		if t < 0 {
			delete(m, k)
			return []string{k + "(negative)"}
		}
		return nil
	case string:
		s := strings.TrimSpace(t)
		s = strings.TrimPrefix(s, "$")
		s = strings.ReplaceAll(s, ",", "")
		f, err := strconv.ParseFloat(s, 64)
		if err != nil || f < 0 {
			delete(m, k)
			return []string{k + "(unparseable)"}
		}
		m[k] = f
		return []string{k + "(coerced)"}
	case nil:
		delete(m, k)
		return []string{k + "(null)"}
	default:
		delete(m, k)
		return []string{k + "(type)"}
	}
}

// normalizeDate accepts ISO dates and converts common US formats; anything
// else is dropped rather than failing the whole extraction.
func normalizeDate(m map[string]any, k string) []string {
	v, ok := m[k]
	if !ok {
		return nil
	}
	s, ok := v.(string)
	if !ok {
		delete(m, k)
		return []string{k + "(type)"}
	}
	s = strings.TrimSpace(s)
	if s == "" {
		delete(m, k)
		return []string{k + "(empty)"}
	}
	if reISODate.MatchString(s) {
		m[k] = s
		return nil
	}
	for _, layout := range []string{"01/02/2006", "1/2/2006", "01-02-2006", "01/02/06", "1/2/06"} {
		if t, err := time.Parse(layout, s); err == nil {
			m[k] = t.Format("2006-01-02")
			return []string{k + "(reformatted)"}
		}
	}
	delete(m, k)
	return []string{k + "(unparseable)"}
}

func dropUnknown(m map[string]any, allowed map[string]struct{}) []string {
	var touched []string
	for k := range m {
		if _, ok := allowed[k]; !ok {
			delete(m, k)
			touched = append(touched, k+"(unknown)")
		}
	}
	return touched
}
