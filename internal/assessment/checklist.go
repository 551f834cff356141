package assessment

import (
	"strings"

	"precheck/internal/eligibility/models"
)

// Checklist sentinels. The prefix is part of the item text and tells renderers
// whether the answers show the document as held or missing.
const (
	SentinelHeld    = "✓ "
	SentinelMissing = "⚠️ "
)

// ItemState classifies a checklist line by its sentinel.
type ItemState string

const (
	ItemHeld     ItemState = "held"
	ItemMissing  ItemState = "missing"
	ItemRequired ItemState = "required"
)

// UpsellItem closes the basic-tier checklist.
const UpsellItem = "Upgrade to Professional for a personalised document checklist for your route"

var universalItems = []string{
	"Passport valid for the whole of your intended stay",
	"Completed online application form",
	"Two recent passport-size photographs",
}

// BuildChecklist lists required and recommended documents in order.
// Tiers without the checklist feature get the universal items and an upsell line.
func BuildChecklist(answers models.Answers, route models.Route, tier models.Tier) []string {
	items := append([]string(nil), universalItems...)
	if !tier.Unlocks(models.FeatureChecklist) {
		return append(items, UpsellItem)
	}

	switch route {
	case models.RouteSpouse:
		items = append(items, spouseItems(answers)...)
	case models.RouteSkilled:
		items = append(items, skilledItems(answers)...)
	}
	return items
}

func spouseItems(a models.Answers) []string {
	items := []string{
		"Marriage or civil partnership certificate",
		marked(a.Bool("joint_tenancy"), "Joint tenancy agreement or mortgage statement"),
		marked(a.Bool("joint_accounts"), "Joint bank account statements"),
	}
	if a.String("sponsor_emp_type") == "paye" {
		items = append(items,
			"Sponsor's payslips for the last 6 months",
			"Letter from the sponsor's employer confirming salary, role and start date",
			"Sponsor's personal bank statements showing the salary paid in",
			"Sponsor's most recent P60",
		)
	}
	items = append(items,
		marked(a.Bool("english_test_passed"), "English language test certificate (approved SELT)"),
		"Accommodation inspection report or proof of ownership/tenancy",
	)
	return items
}

func skilledItems(a models.Answers) []string {
	items := []string{
		"Certificate of Sponsorship reference number",
		"Job offer letter from your licensed sponsor",
	}
	if a.Bool("sw_criminal_record_required") {
		items = append(items, "Criminal record certificate for each country lived in for 12 months or more")
	}
	if a.Bool("sw_atas_required") {
		items = append(items, "ATAS certificate")
	}
	items = append(items,
		"Proof of English language ability at CEFR level B1",
		"Bank statements showing maintenance funds held for 28 days within the last 90 days",
	)
	return items
}

func marked(held bool, item string) string {
	if held {
		return SentinelHeld + item
	}
	return SentinelMissing + item
}

// ItemStatus classifies a checklist line by its leading sentinel.
func ItemStatus(item string) ItemState {
	switch {
	case strings.HasPrefix(item, SentinelHeld):
		return ItemHeld
	case strings.HasPrefix(item, SentinelMissing):
		return ItemMissing
	default:
		return ItemRequired
	}
}

// ItemText strips the sentinel from a checklist line.
func ItemText(item string) string {
	item = strings.TrimPrefix(item, SentinelHeld)
	return strings.TrimPrefix(item, SentinelMissing)
}
