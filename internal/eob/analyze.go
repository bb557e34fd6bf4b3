package eob

import (
	"fmt"

	"github.com/clearclaim/eob-analyzer/constants"
)

// Analyze scans a reconciled claim for actionable issues. It runs four
// independent passes in a fixed order (duplicates, denials, high cost,
// out-of-network) and concatenates their output; that order is the display
// order and must stay deterministic. Pure and total over its inputs.
func Analyze(items []LineItem, summary FinancialSummary) []Issue {
	issues := make([]Issue, 0, 4)
	issues = append(issues, findDuplicates(items)...)
	issues = append(issues, findDenials(items)...)
	issues = append(issues, findHighCost(items)...)
	issues = append(issues, findOutOfNetwork(items)...)
	_ = summary // claim totals reserved for future cross-claim checks
	return issues
}

// findDuplicates groups line items by (serviceDate, procedureCode); any group
// larger than one becomes a single issue. The savings estimate assumes half
// the group's patient responsibility is recoverable, not "all but one
// occurrence".
func findDuplicates(items []LineItem) []Issue {
	type group struct {
		ids    []string
		amount float64
		count  int
	}
	groups := make(map[string]*group)
	var order []string

	for _, li := range items {
		key := li.ServiceDate + "|" + li.ProcedureCode
		g, ok := groups[key]
		if !ok {
			g = &group{}
			groups[key] = g
			order = append(order, key)
		}
		g.ids = append(g.ids, li.ID)
		g.amount += li.PatientResponsibility
		g.count++
	}

	var out []Issue
	for _, key := range order {
		g := groups[key]
		if g.count < 2 {
			continue
		}
		first := findByID(items, g.ids[0])
		out = append(out, Issue{
			Type:     constants.DuplicateBilling,
			Severity: constants.SeverityHigh,
			Title:    "Possible duplicate billing",
			Description: fmt.Sprintf(
				"The procedure %q appears %d times for service date %s. The same service may have been billed more than once.",
				describeProcedure(first), g.count, displayDate(first.ServiceDate)),
			AffectedLineItems: g.ids,
			PotentialSavings:  g.amount / 2,
			ActionRequired:    "Contact your insurance company and the provider's billing office to confirm these are separate services, not duplicate charges.",
		})
	}
	return out
}

// findDenials emits one issue per denied line item.
func findDenials(items []LineItem) []Issue {
	var out []Issue
	for _, li := range items {
		if !li.Denied() {
			continue
		}
		reason := li.DenialReason
		if reason == "" {
			reason = "no reason given"
		}
		desc := fmt.Sprintf("The charge for %s was denied (%s).", describeProcedure(&li), reason)
		if li.DenialCode != "" {
			desc = fmt.Sprintf("The charge for %s was denied with code %s (%s).", describeProcedure(&li), li.DenialCode, reason)
		}
		out = append(out, Issue{
			Type:              constants.Denial,
			Severity:          constants.SeverityHigh,
			Title:             "Denied charge",
			Description:       desc,
			AffectedLineItems: []string{li.ID},
			PotentialSavings:  li.PatientResponsibility,
			ActionRequired:    "You have the right to appeal. Request the denial details in writing and follow your plan's appeal procedure.",
			AppealDeadline:    constants.AppealDeadlineGuidance,
		})
	}
	return out
}

// findHighCost flags each line whose patient responsibility exceeds the fixed
// threshold. Cost exposure, not necessarily recoverable, so no savings
// estimate.
func findHighCost(items []LineItem) []Issue {
	var out []Issue
	for _, li := range items {
		if li.PatientResponsibility <= constants.HighCostThreshold {
			continue
		}
		out = append(out, Issue{
			Type:     constants.HighCost,
			Severity: constants.SeverityMedium,
			Title:    "High out-of-pocket cost",
			Description: fmt.Sprintf("You owe %s for %s.",
				money(li.PatientResponsibility), describeProcedure(&li)),
			AffectedLineItems: []string{li.ID},
			ActionRequired:    "Ask the provider's billing office about a payment plan or financial assistance program.",
		})
	}
	return out
}

// findOutOfNetwork groups all lines whose patient responsibility is entirely
// explained by the not-covered amount into one issue. Same half-recoverable
// heuristic as duplicates.
func findOutOfNetwork(items []LineItem) []Issue {
	var ids []string
	var notCovered float64
	for _, li := range items {
		if li.NotCovered > 0 && li.NotCovered == li.PatientResponsibility {
			ids = append(ids, li.ID)
			notCovered += li.NotCovered
		}
	}
	if len(ids) == 0 {
		return nil
	}
	return []Issue{{
		Type:     constants.OutOfNetwork,
		Severity: constants.SeverityHigh,
		Title:    "Possible out-of-network charges",
		Description: fmt.Sprintf(
			"%d charge(s) totaling %s were not covered by your plan, which often indicates an out-of-network provider.",
			len(ids), money(notCovered)),
		AffectedLineItems: ids,
		PotentialSavings:  notCovered / 2,
		ActionRequired:    "If you expected in-network coverage, or had no in-network option, ask your insurer to reprocess the claim at the in-network rate.",
	}}
}

func findByID(items []LineItem, id string) *LineItem {
	for i := range items {
		if items[i].ID == id {
			return &items[i]
		}
	}
	return nil
}

func describeProcedure(li *LineItem) string {
	switch {
	case li.ProcedureDescription != "" && li.ProcedureCode != "":
		return fmt.Sprintf("%s (code %s)", li.ProcedureDescription, li.ProcedureCode)
	case li.ProcedureDescription != "":
		return li.ProcedureDescription
	case li.ProcedureCode != "":
		return "procedure code " + li.ProcedureCode
	default:
		return "an unlabeled service"
	}
}

func displayDate(d string) string {
	if d == "" {
		return "an unknown date"
	}
	return d
}

func money(v float64) string {
	return fmt.Sprintf("$%.2f", v)
}
