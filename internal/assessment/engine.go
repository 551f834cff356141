package assessment

import (
	"fmt"

	"precheck/internal/eligibility/models"
)

// Risk flags. Only these three count toward the verdict.
const (
	FlagHistory     = "Immigration history: previous refusal or overstay declared"
	FlagSuitability = "Suitability: criminal conviction or NHS debt declared"
	FlagFinancial   = "Financial: sponsor income below £29,000"
)

var nextSteps = []string{
	"Check every document on your checklist is consistent with the answers in your application",
	"Gather the last 6 months of bank statements for every account you rely on",
	"Confirm your English test provider and centre are on the approved SELT list",
	"Make sure your passport is valid for the whole of your intended stay",
}

// Assess evaluates the verdict rules for a route and answer set.
// This is pure domain logic - no I/O, no side effects.
//
// Rules are applied independently and combined:
//  1. History: refusal or overstay
//  2. Suitability: criminal offence or NHS debt
//  3. Financial (spouse only): declared income below the spouse threshold
//  4. Relationship (spouse only): missing joint accounts or tenancy; graded, never flagged
//
// Remediation is always computed but only attached when the tier unlocks it.
func Assess(route models.Route, answers models.Answers, tier models.Tier) Result {
	var (
		flags       []string
		sections    []SectionScore
		remediation []RemediationStep
	)

	history := evaluateHistory(answers)
	sections = append(sections, history.section)
	if history.flagged {
		flags = append(flags, FlagHistory)
		remediation = append(remediation, history.remediation...)
	}

	suitability := evaluateSuitability(answers)
	sections = append(sections, suitability.section)
	if suitability.flagged {
		flags = append(flags, FlagSuitability)
		remediation = append(remediation, suitability.remediation...)
	}

	financial := evaluateFinancial(route, answers)
	sections = append(sections, financial.section)
	if financial.flagged {
		flags = append(flags, FlagFinancial)
		remediation = append(remediation, financial.remediation...)
	}

	relationship := evaluateRelationship(route, answers)
	sections = append(sections, relationship.section)
	remediation = append(remediation, relationship.remediation...)

	verdict := deriveVerdict(len(flags))
	result := Result{
		Verdict:       verdict,
		RiskLevel:     riskForVerdict(verdict),
		RiskFlags:     nonNil(flags),
		Summary:       summarize(route, verdict, len(flags)),
		NextSteps:     append([]string(nil), nextSteps...),
		SectionScores: sections,
	}
	if tier.Unlocks(models.FeatureRemediation) {
		result.Remediation = &RemediationPlan{Steps: nonNilSteps(remediation)}
	}
	return result
}

type ruleOutcome struct {
	flagged     bool
	section     SectionScore
	remediation []RemediationStep
}

func evaluateHistory(a models.Answers) ruleOutcome {
	if a.Bool("overstay_history") || a.Bool("refusal_history") {
		return ruleOutcome{
			flagged: true,
			section: SectionScore{
				Name: "Immigration History", Score: 30, Status: SectionFail, Risk: RiskHigh,
				Detail: "A previous refusal or overstay was declared and will be scrutinised",
			},
			remediation: []RemediationStep{{
				Issue:      "Previous refusal or overstay on record",
				Resolution: "Request a Subject Access Request from the Home Office and address the caseworker notes directly in a covering letter",
			}},
		}
	}
	return ruleOutcome{section: SectionScore{
		Name: "Immigration History", Score: 100, Status: SectionPass, Risk: RiskLow,
		Detail: "No refusals or overstays declared",
	}}
}

func evaluateSuitability(a models.Answers) ruleOutcome {
	if a.Bool("criminal_offence") || a.Bool("nhs_debt") {
		return ruleOutcome{
			flagged: true,
			section: SectionScore{
				Name: "Suitability", Score: 20, Status: SectionFail, Risk: RiskHigh,
				Detail: "A criminal conviction or NHS debt may lead to refusal on suitability grounds",
			},
			remediation: []RemediationStep{{
				Issue:      "Criminal conviction or NHS debt declared",
				Resolution: "Obtain a police certificate for each country of residence and prepare a mitigating statement; settle or agree a repayment plan for any NHS debt",
			}},
		}
	}
	return ruleOutcome{section: SectionScore{
		Name: "Suitability", Score: 100, Status: SectionPass, Risk: RiskLow,
		Detail: "No suitability concerns declared",
	}}
}

// evaluateFinancial only scores the spouse route. Skilled worker salaries are
// checked against their own threshold by the compliance matrix, not here.
func evaluateFinancial(route models.Route, a models.Answers) ruleOutcome {
	if !route.IsSpouse() {
		return ruleOutcome{section: SectionScore{
			Name: "Financial", Score: 100, Status: SectionInfo, Risk: RiskLow,
			Detail: fmt.Sprintf("Income is not scored for this route; see the compliance matrix (£%d threshold)", SkilledSalaryThreshold),
		}}
	}

	// An undeclared income is not a shortfall; a declared but malformed one reads as zero.
	if !a.Has("sponsor_income") && !a.Has("sw_salary") {
		return ruleOutcome{section: SectionScore{
			Name: "Financial", Score: 100, Status: SectionInfo, Risk: RiskLow,
			Detail: "No income declared",
		}}
	}

	income := a.Income()
	if income < SpouseIncomeThreshold {
		return ruleOutcome{
			flagged: true,
			section: SectionScore{
				Name: "Financial", Score: 40, Status: SectionWarn, Risk: RiskMedium,
				Detail: fmt.Sprintf("Income of £%s is below the £%d requirement", formatAmount(income), SpouseIncomeThreshold),
			},
			remediation: []RemediationStep{{
				Issue: "Sponsor income below the minimum income requirement",
				Resolution: fmt.Sprintf("Increase qualifying income to £%d or combine income with cash savings above £%d held for 6 months",
					SpouseIncomeThreshold, SavingsShortfallBase),
			}},
		}
	}
	return ruleOutcome{section: SectionScore{
		Name: "Financial", Score: 100, Status: SectionPass, Risk: RiskLow,
		Detail: fmt.Sprintf("Income of £%s meets the £%d requirement", formatAmount(income), SpouseIncomeThreshold),
	}}
}

func evaluateRelationship(route models.Route, a models.Answers) ruleOutcome {
	if !route.IsSpouse() {
		return ruleOutcome{section: SectionScore{
			Name: "Relationship", Score: 100, Status: SectionInfo, Risk: RiskLow, Detail: "N/A",
		}}
	}
	if !a.Bool("joint_accounts") || !a.Bool("joint_tenancy") {
		return ruleOutcome{
			section: SectionScore{
				Name: "Relationship", Score: 65, Status: SectionWarn, Risk: RiskMedium,
				Detail: "Joint finances or a joint tenancy are missing",
			},
			remediation: []RemediationStep{{
				Issue:      "Limited evidence of living together",
				Resolution: "Collect secondary cohabitation evidence: utility bills, council tax and official letters addressed to you both",
			}},
		}
	}
	return ruleOutcome{section: SectionScore{
		Name: "Relationship", Score: 100, Status: SectionPass, Risk: RiskLow,
		Detail: "Joint finances and a joint tenancy are in place",
	}}
}

func deriveVerdict(flags int) Verdict {
	switch {
	case flags > 2:
		return VerdictUnlikely
	case flags > 0:
		return VerdictBorderline
	default:
		return VerdictLikely
	}
}

func riskForVerdict(v Verdict) RiskLevel {
	switch v {
	case VerdictUnlikely:
		return RiskHigh
	case VerdictBorderline:
		return RiskMedium
	default:
		return RiskLow
	}
}

func summarize(route models.Route, verdict Verdict, flags int) string {
	subject := "your application"
	switch route {
	case models.RouteSpouse:
		subject = "your spouse/partner application"
	case models.RouteSkilled:
		subject = "your Skilled Worker application"
	}
	switch verdict {
	case VerdictUnlikely:
		return fmt.Sprintf("Based on your answers, %s is unlikely to succeed as things stand: %s found.", subject, riskAreas(flags))
	case VerdictBorderline:
		return fmt.Sprintf("Based on your answers, %s is borderline: %s to address before you apply.", subject, riskAreas(flags))
	default:
		return fmt.Sprintf("Based on your answers, %s is likely to meet the core requirements we checked.", subject)
	}
}

func riskAreas(n int) string {
	if n == 1 {
		return "1 risk area"
	}
	return fmt.Sprintf("%d risk areas", n)
}

func nonNil(s []string) []string {
	if s == nil {
		return []string{}
	}
	return s
}

func nonNilSteps(s []RemediationStep) []RemediationStep {
	if s == nil {
		return []RemediationStep{}
	}
	return s
}
