package assessment

import (
	"fmt"

	"precheck/internal/eligibility/models"
)

// GapAnalysis lists evidence gaps and the matching improvements, index aligned.
type GapAnalysis struct {
	Gaps         []string `json:"gaps"`
	Improvements []string `json:"improvements"`
}

func (g *GapAnalysis) add(gap, improvement string) {
	g.Gaps = append(g.Gaps, gap)
	g.Improvements = append(g.Improvements, improvement)
}

// minimumRelationshipEvidence is the number of distinct evidence categories
// caseworkers expect to see.
const minimumRelationshipEvidence = 3

type gapRule func(a models.Answers, route models.Route, g *GapAnalysis)

// gapRules run in output order.
var gapRules = []gapRule{
	relationshipGaps,
	financialEvidenceGaps,
	selfEmploymentGaps,
	skilledWorkerGaps,
	historyGaps,
	accommodationGaps,
}

// AnalyzeGaps reads the evidence detail answers and reports what is missing.
// Rules are independent; a rule only fires on keys that were answered.
func AnalyzeGaps(answers models.Answers, route models.Route) GapAnalysis {
	g := GapAnalysis{Gaps: []string{}, Improvements: []string{}}
	for _, rule := range gapRules {
		rule(answers, route, &g)
	}
	return g
}

func relationshipGaps(a models.Answers, route models.Route, g *GapAnalysis) {
	if !route.IsSpouse() {
		return
	}
	if a.Has("rel_evidence") {
		if n := len(a.Strings("rel_evidence")); n < minimumRelationshipEvidence {
			g.add(
				fmt.Sprintf("Only %d type(s) of relationship evidence available", n),
				"Provide at least three kinds of evidence, such as bills in both names, photographs over time and travel records",
			)
		}
	}
	if a.String("living_arrangement") == "apart" {
		g.add(
			"You do not currently live together",
			"Explain why you live apart and show how you keep in contact and plan to live together in the UK",
		)
	}
}

func financialEvidenceGaps(a models.Answers, _ models.Route, g *GapAnalysis) {
	if a.String("employment_length") == "under_6_months" {
		g.add(
			"Current employment is under 6 months",
			"Use Category B: show 12 months of income across jobs, or wait until 6 months of payslips are available",
		)
	}
	if a.String("bank_statements_format") == "online_printouts" {
		g.add(
			"Unstamped online bank statement printouts",
			"Ask the bank to stamp each page or provide a letter confirming the statements are genuine",
		)
	}
}

func selfEmploymentGaps(a models.Answers, _ models.Route, g *GapAnalysis) {
	if a.Contains("income_sources", "self_employed") {
		g.add(
			"Self-employed income needs a full financial year of evidence",
			"Prepare SA302s, tax year overviews, business accounts and business bank statements for the last full financial year",
		)
	}
}

func skilledWorkerGaps(a models.Answers, route models.Route, g *GapAnalysis) {
	if !route.IsSkilled() {
		return
	}
	if a.Has("sw_salary_exact") && a.Number("sw_salary_exact") < SkilledSalaryThreshold {
		g.add(
			fmt.Sprintf("Salary of £%s is below the £%d general threshold", formatAmount(a.Number("sw_salary_exact")), SkilledSalaryThreshold),
			"Check whether a new entrant, shortage occupation or PhD discount applies, or negotiate the salary with your sponsor",
		)
	}
	switch a.String("sponsor_license") {
	case "no", "unsure":
		g.add(
			"Your employer's sponsor licence is not confirmed",
			"Check the employer appears on the register of licensed sponsors before a Certificate of Sponsorship is assigned",
		)
	}
}

func historyGaps(a models.Answers, _ models.Route, g *GapAnalysis) {
	if n := a.Number("previous_refusals"); n > 0 {
		g.add(
			fmt.Sprintf("%s previous UK refusal(s) on record", formatAmount(n)),
			"Obtain the refusal notices and address every refusal reason in your covering letter",
		)
	}
	if a.String("overstays_detail") != "" {
		g.add(
			"Overstay history must be explained",
			"Give dates, reasons and any exceptional circumstances for each overstay, with supporting evidence",
		)
	}
}

func accommodationGaps(a models.Answers, _ models.Route, g *GapAnalysis) {
	switch a.String("uk_living_plan") {
	case "not_arranged":
		g.add(
			"Accommodation in the UK is not arranged",
			"Secure a tenancy, or an offer of accommodation, that will not be overcrowded before you apply",
		)
	case "with_family":
		g.add(
			"You plan to stay with family",
			"Get a letter from the property owner confirming you may live there, with proof of ownership and the number of bedrooms",
		)
	}
}
