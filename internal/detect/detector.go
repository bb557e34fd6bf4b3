// Package detect classifies raw document text as an Explanation of Benefits
// using a weighted keyword table. It is a deliberate low-cost classifier, not
// a trained model; thresholds and terms are tunable data, not control flow.
package detect

import (
	"fmt"
	"regexp"
	"strings"
)

// Tier groups indicator terms by how strongly they signal an EOB.
type Tier int

const (
	TierStrong    Tier = iota // phrases that rarely appear outside an EOB
	TierBilling               // medical/billing codes and identifiers
	TierFinancial             // generic financial phrasing
)

// Term is one case-insensitive substring indicator with its score weight.
type Term struct {
	Pattern string
	Weight  int
	Tier    Tier
}

// Terms is the default indicator table. Weights: strong 3, billing 2,
// financial 1.
var Terms = []Term{
	{"explanation of benefits", 3, TierStrong},
	{"patient responsibility", 3, TierStrong},
	{"claim number", 3, TierStrong},
	{"allowed amount", 3, TierStrong},
	{"plan paid", 3, TierStrong},
	{"deductible", 3, TierStrong},
	{"coinsurance", 3, TierStrong},
	{"copay", 3, TierStrong},
	{"member id", 3, TierStrong},
	{"out-of-pocket", 3, TierStrong},

	{"cpt", 2, TierBilling},
	{"icd-10", 2, TierBilling},
	{"diagnosis code", 2, TierBilling},
	{"procedure code", 2, TierBilling},
	{"date of service", 2, TierBilling},
	{"provider npi", 2, TierBilling},
	{"group number", 2, TierBilling},
	{"place of service", 2, TierBilling},

	{"total charges", 1, TierFinancial},
	{"amount you owe", 1, TierFinancial},
	{"denied", 1, TierFinancial},
	{"adjustment", 1, TierFinancial},
	{"amount billed", 1, TierFinancial},
	{"not covered", 1, TierFinancial},
}

// Bonus weights for structural signals.
const (
	dollarBonus = 2
	dateBonus   = 1
)

// fullScore is the raw score treated as 100% confidence.
const fullScore = 20.0

// Threshold is the minimum confidence for a positive classification.
const Threshold = 50

// maxReasonTerms caps how many matched terms the reason string lists.
const maxReasonTerms = 5

var (
	dollarRe = regexp.MustCompile(`\$[\d,]+(\.\d{1,2})?`)
	dateRe   = regexp.MustCompile(`\d{1,2}[/-]\d{1,2}[/-]\d{2,4}`)
)

// Result is the detector's classification of one document.
type Result struct {
	IsEOB      bool   `json:"isEOB"`
	Confidence int    `json:"confidence"` // 0..100
	Reason     string `json:"reason"`
}

// Detect scores the text against the indicator table. Total over all string
// inputs; an empty string yields a negative result with zero confidence.
func Detect(text string) Result {
	lower := strings.ToLower(text)

	score := 0
	var matched []string
	for _, t := range Terms {
		if strings.Contains(lower, t.Pattern) {
			score += t.Weight
			matched = append(matched, t.Pattern)
		}
	}
	if dollarRe.MatchString(text) {
		score += dollarBonus
	}
	if dateRe.MatchString(text) {
		score += dateBonus
	}

	confidence := int(float64(score)/fullScore*100 + 0.5)
	if confidence > 100 {
		confidence = 100
	}

	res := Result{
		IsEOB:      confidence >= Threshold,
		Confidence: confidence,
	}
	if res.IsEOB {
		shown := matched
		if len(shown) > maxReasonTerms {
			shown = shown[:maxReasonTerms]
		}
		res.Reason = fmt.Sprintf("Found EOB indicators: %s", strings.Join(shown, ", "))
	} else {
		res.Reason = fmt.Sprintf("Document does not appear to be an Explanation of Benefits (confidence %d%%)", confidence)
	}
	return res
}
