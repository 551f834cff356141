package models

import (
	"strings"

	dErrors "precheck/pkg/domain-errors"
)

// Tier is the paid depth level of a pre-check.
//
// Invariants:
//   - Tiers are totally ordered: basic < full < pro_plus
//   - Feature sets are monotone: a higher tier unlocks a strict superset
//   - Price and question ceiling are fixed per tier
type Tier string

const (
	TierBasic   Tier = "basic"
	TierFull    Tier = "full"
	TierProPlus Tier = "pro_plus"
)

// Feature is one unlockable part of the pre-check.
type Feature string

const (
	FeatureVerdict       Feature = "verdict"
	FeatureSummary       Feature = "summary"
	FeatureSectionScores Feature = "section_scores"
	FeatureChecklist     Feature = "checklist"
	FeatureMatrix        Feature = "compliance_matrix"
	FeatureRemediation   Feature = "remediation"
	FeatureGapAnalysis   Feature = "gap_analysis"
	FeatureTemplates     Feature = "templates"
)

// TierInfo is the fixed commercial definition of a tier.
type TierInfo struct {
	Tier         Tier      `json:"tier"`
	Name         string    `json:"name"`
	PricePence   int64     `json:"price_pence"`
	MaxQuestions int       `json:"max_questions"`
	Features     []Feature `json:"features"`
}

var tierOrder = map[Tier]int{
	TierBasic:   1,
	TierFull:    2,
	TierProPlus: 3,
}

var basicFeatures = []Feature{FeatureVerdict, FeatureSummary}

var tierCatalog = map[Tier]TierInfo{
	TierBasic: {
		Tier:         TierBasic,
		Name:         "Basic",
		PricePence:   2900,
		MaxQuestions: 15,
		Features:     basicFeatures,
	},
	TierFull: {
		Tier:         TierFull,
		Name:         "Professional",
		PricePence:   7900,
		MaxQuestions: 35,
		Features:     append(append([]Feature{}, basicFeatures...), FeatureSectionScores, FeatureChecklist, FeatureMatrix),
	},
	TierProPlus: {
		Tier:         TierProPlus,
		Name:         "Pro Plus",
		PricePence:   14900,
		MaxQuestions: 60,
		Features: append(append([]Feature{}, basicFeatures...),
			FeatureSectionScores, FeatureChecklist, FeatureMatrix,
			FeatureRemediation, FeatureGapAnalysis, FeatureTemplates),
	},
}

// ParseTier validates a tier name. "professional" is accepted as the marketing
// name of the full tier.
func ParseTier(s string) (Tier, error) {
	normalized := strings.ToLower(strings.TrimSpace(s))
	normalized = strings.ReplaceAll(normalized, "-", "_")
	switch normalized {
	case "basic":
		return TierBasic, nil
	case "full", "professional":
		return TierFull, nil
	case "pro_plus", "proplus", "pro+":
		return TierProPlus, nil
	case "":
		return "", dErrors.New(dErrors.CodeValidation, "tier is required")
	default:
		return "", dErrors.New(dErrors.CodeValidation, "tier must be one of basic, full, pro_plus")
	}
}

// IsValid reports whether the tier is one of the known tiers.
func (t Tier) IsValid() bool {
	_, ok := tierOrder[t]
	return ok
}

// AtLeast reports whether t is the same as or higher than other.
// Unknown tiers rank below every known tier.
func (t Tier) AtLeast(other Tier) bool {
	thisOrder, ok := tierOrder[t]
	if !ok {
		return false
	}
	return thisOrder >= tierOrder[other]
}

// Above reports whether t is strictly higher than other.
func (t Tier) Above(other Tier) bool {
	return t.AtLeast(other) && t != other
}

// Info returns the commercial definition. Unknown tiers get the basic feature set
// with no price so that rule functions can degrade instead of failing.
func (t Tier) Info() TierInfo {
	if info, ok := tierCatalog[t]; ok {
		return info
	}
	basic := tierCatalog[TierBasic]
	return TierInfo{Tier: t, Name: string(t), MaxQuestions: basic.MaxQuestions, Features: basicFeatures}
}

// Unlocks reports whether the tier includes a feature.
func (t Tier) Unlocks(f Feature) bool {
	for _, have := range t.Info().Features {
		if have == f {
			return true
		}
	}
	return false
}

// PricePence is the fixed price for the tier.
func (t Tier) PricePence() int64 { return t.Info().PricePence }

// MaxQuestions is the question-count ceiling for the tier.
func (t Tier) MaxQuestions() int { return t.Info().MaxQuestions }

func (t Tier) String() string { return string(t) }

// Tiers lists the tier catalogue in ascending order.
func Tiers() []TierInfo {
	return []TierInfo{tierCatalog[TierBasic], tierCatalog[TierFull], tierCatalog[TierProPlus]}
}

// UpgradePricePence is the amount charged to move from one tier to a higher one.
func UpgradePricePence(from, to Tier) (int64, error) {
	if !to.IsValid() || !to.Above(from) {
		return 0, dErrors.New(dErrors.CodeValidation, "upgrade must target a higher tier")
	}
	return to.PricePence() - from.PricePence(), nil
}
