// Package report composes the tier-gated pre-check report from the assessment
// rule outputs.
package report

import (
	"time"

	"precheck/internal/assessment"
	"precheck/internal/eligibility/models"
)

// Labels are the display strings for the report header in the requested locale.
type Labels struct {
	Locale    string `json:"locale"`
	Title     string `json:"title"`
	Route     string `json:"route"`
	Tier      string `json:"tier"`
	Verdict   string `json:"verdict"`
	RiskLevel string `json:"risk_level"`
	Generated string `json:"generated"`
	// Sections holds headings for the unlocked detail sections only.
	Sections map[models.Feature]string `json:"sections,omitempty"`
}

// ProfessionalSections unlock at the full tier.
type ProfessionalSections struct {
	SectionScores []assessment.SectionScore `json:"section_scores"`
	Checklist     []string                  `json:"checklist"`
	Matrix        []assessment.ScoreRow     `json:"compliance_matrix"`
}

// ProPlusSections unlock at the pro_plus tier.
type ProPlusSections struct {
	Remediation []assessment.RemediationStep `json:"remediation"`
	Gaps        assessment.GapAnalysis       `json:"gap_analysis"`
	Templates   []Template                   `json:"templates"`
}

// Report is the composed pre-check result. A nil section means the tier is not
// entitled to it; the JSON field is then absent rather than empty.
type Report struct {
	Route        models.Route          `json:"route"`
	Tier         models.Tier           `json:"tier"`
	Verdict      assessment.Verdict    `json:"verdict"`
	RiskLevel    assessment.RiskLevel  `json:"risk_level"`
	Summary      string                `json:"summary"`
	RiskFlags    []string              `json:"risk_flags"`
	NextSteps    []string              `json:"next_steps"`
	GeneratedAt  time.Time             `json:"generated_at"`
	Labels       Labels                `json:"labels"`
	Disclaimer   string                `json:"disclaimer"`
	Professional *ProfessionalSections `json:"professional,omitempty"`
	ProPlus      *ProPlusSections      `json:"pro_plus,omitempty"`
}

// Unlocked lists the feature sections present in the report.
func (r Report) Unlocked() []models.Feature {
	features := []models.Feature{models.FeatureVerdict, models.FeatureSummary}
	if r.Professional != nil {
		features = append(features, models.FeatureSectionScores, models.FeatureChecklist, models.FeatureMatrix)
	}
	if r.ProPlus != nil {
		features = append(features, models.FeatureRemediation, models.FeatureGapAnalysis, models.FeatureTemplates)
	}
	return features
}
