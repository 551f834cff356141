// Package assessment holds the pure rule functions that turn a completed answer
// set into a verdict, section scores, a document checklist, a compliance matrix
// and an evidence gap analysis.
//
// Every function here is total: any route, tier or answer set (including an
// empty one) produces a best-effort result. None of them return errors.
package assessment

// Verdict is the three-way eligibility outcome.
type Verdict string

const (
	VerdictLikely     Verdict = "likely"
	VerdictBorderline Verdict = "borderline"
	VerdictUnlikely   Verdict = "unlikely"
)

// RiskLevel mirrors the verdict and grades individual sections.
type RiskLevel string

const (
	RiskLow    RiskLevel = "LOW"
	RiskMedium RiskLevel = "MEDIUM"
	RiskHigh   RiskLevel = "HIGH"
)

// SectionStatus grades one assessed section.
type SectionStatus string

const (
	SectionPass SectionStatus = "PASS"
	SectionWarn SectionStatus = "WARN"
	SectionFail SectionStatus = "FAIL"
	SectionInfo SectionStatus = "INFO"
)

// Income thresholds in pounds.
const (
	SpouseIncomeThreshold  = 29000
	SkilledSalaryThreshold = 38700
	// SavingsShortfallBase is the cash savings amount ignored before savings can
	// offset an income shortfall.
	SavingsShortfallBase = 16000
)

// SectionScore is the pass/warn/fail state of one compliance category.
type SectionScore struct {
	Name   string        `json:"name"`
	Score  int           `json:"score"`
	Status SectionStatus `json:"status"`
	Risk   RiskLevel     `json:"risk"`
	Detail string        `json:"detail"`
}

// RemediationStep pairs a raised issue with what to do about it.
type RemediationStep struct {
	Issue      string `json:"issue"`
	Resolution string `json:"resolution"`
}

// RemediationPlan is only attached to results for tiers entitled to it.
type RemediationPlan struct {
	Steps []RemediationStep `json:"steps"`
}

// Result is an immutable snapshot of one assessment run.
type Result struct {
	Verdict       Verdict          `json:"verdict"`
	RiskLevel     RiskLevel        `json:"risk_level"`
	RiskFlags     []string         `json:"risk_flags"`
	Summary       string           `json:"summary"`
	NextSteps     []string         `json:"next_steps"`
	SectionScores []SectionScore   `json:"section_scores"`
	Remediation   *RemediationPlan `json:"remediation,omitempty"`
}
