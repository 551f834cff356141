package report

import (
	"encoding/json"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"precheck/internal/assessment"
	"precheck/internal/eligibility/models"
	"precheck/internal/i18n"
)

var fixedTime = time.Date(2026, 3, 14, 9, 30, 0, 0, time.UTC)

func spouseAnswers() models.Answers {
	return models.Answers{
		"nationality":         "Indian",
		"sponsor_income":      35000,
		"refusal_history":     true,
		"overstay_history":    false,
		"criminal_offence":    false,
		"nhs_debt":            false,
		"joint_accounts":      true,
		"joint_tenancy":       true,
		"english_test_passed": true,
		"uk_living_plan":      "with_family",
	}
}

func topLevelFields(t *testing.T, r Report) map[string]bool {
	t.Helper()
	raw, err := json.Marshal(r)
	require.NoError(t, err)
	var fields map[string]json.RawMessage
	require.NoError(t, json.Unmarshal(raw, &fields))
	out := make(map[string]bool, len(fields))
	for k := range fields {
		out[k] = true
	}
	return out
}

func TestComposeGatesSectionsByTier(t *testing.T) {
	basic := Compose(models.RouteSpouse, models.TierBasic, spouseAnswers(), WithGeneratedAt(fixedTime))
	assert.Nil(t, basic.Professional)
	assert.Nil(t, basic.ProPlus)
	assert.Equal(t, assessment.VerdictBorderline, basic.Verdict)

	full := Compose(models.RouteSpouse, models.TierFull, spouseAnswers(), WithGeneratedAt(fixedTime))
	require.NotNil(t, full.Professional)
	assert.Nil(t, full.ProPlus)
	assert.Len(t, full.Professional.Matrix, 5)
	assert.NotEmpty(t, full.Professional.Checklist)

	proPlus := Compose(models.RouteSpouse, models.TierProPlus, spouseAnswers(), WithGeneratedAt(fixedTime))
	require.NotNil(t, proPlus.Professional)
	require.NotNil(t, proPlus.ProPlus)
	assert.NotEmpty(t, proPlus.ProPlus.Remediation)
	assert.Equal(t, []string{"You plan to stay with family"}, proPlus.ProPlus.Gaps.Gaps)
}

// TestComposeFieldSetsAreMonotone checks pro_plus ⊇ full ⊇ basic on the rendered
// JSON, where omitted sections must be absent rather than empty.
func TestComposeFieldSetsAreMonotone(t *testing.T) {
	for _, route := range []models.Route{models.RouteSpouse, models.RouteSkilled, models.RouteOther} {
		basic := topLevelFields(t, Compose(route, models.TierBasic, spouseAnswers(), WithGeneratedAt(fixedTime)))
		full := topLevelFields(t, Compose(route, models.TierFull, spouseAnswers(), WithGeneratedAt(fixedTime)))
		proPlus := topLevelFields(t, Compose(route, models.TierProPlus, spouseAnswers(), WithGeneratedAt(fixedTime)))

		for k := range basic {
			assert.True(t, full[k], "%s: full is missing %s", route, k)
		}
		for k := range full {
			assert.True(t, proPlus[k], "%s: pro_plus is missing %s", route, k)
		}
		assert.False(t, basic["professional"])
		assert.False(t, full["pro_plus"])
		assert.True(t, proPlus["pro_plus"])
	}
}

func TestComposeUnlocked(t *testing.T) {
	for _, tier := range []models.Tier{models.TierBasic, models.TierFull, models.TierProPlus} {
		r := Compose(models.RouteSpouse, tier, spouseAnswers(), WithGeneratedAt(fixedTime))
		assert.ElementsMatch(t, tier.Info().Features, r.Unlocked(), tier)
	}
}

func TestComposeLabels(t *testing.T) {
	r := Compose(models.RouteSkilled, models.TierFull, models.Answers{}, WithLocale("zh-CN"), WithGeneratedAt(fixedTime))
	assert.Equal(t, i18n.Chinese, r.Labels.Locale)
	assert.Equal(t, "技术工人签证", r.Labels.Route)
	assert.Equal(t, "专业版", r.Labels.Tier)
	assert.Equal(t, "生成于 2026-03-14", r.Labels.Generated)
	assert.Equal(t, map[models.Feature]string{
		models.FeatureSectionScores: "分项评分",
		models.FeatureChecklist:     "材料清单",
		models.FeatureMatrix:        "合规矩阵",
	}, r.Labels.Sections)

	r = Compose(models.RouteSpouse, models.TierProPlus, spouseAnswers(), WithGeneratedAt(fixedTime))
	assert.Equal(t, "Generated 2026-03-14", r.Labels.Generated)
	assert.Len(t, r.Labels.Sections, 6)
	assert.Equal(t, "Evidence gaps", r.Labels.Sections[models.FeatureGapAnalysis])

	r = Compose(models.RouteOther, models.Tier("gold"), models.Answers{}, WithLocale("fr"))
	assert.Equal(t, i18n.English, r.Labels.Locale)
	assert.Equal(t, "Other route", r.Labels.Route)
	assert.Equal(t, "tier.gold", r.Labels.Tier)
	assert.Nil(t, r.Labels.Sections)
	assert.False(t, r.GeneratedAt.IsZero())
	assert.Nil(t, r.Professional, "unknown tiers degrade to the basic report")
}

func TestBuildTemplates(t *testing.T) {
	answers := spouseAnswers()
	result := assessment.Assess(models.RouteSpouse, answers, models.TierProPlus)
	templates, err := BuildTemplates(models.RouteSpouse, answers, result, fixedTime)
	require.NoError(t, err)

	require.Len(t, templates, 3)
	assert.Equal(t, TemplateCoverLetter, templates[0].ID)
	assert.Contains(t, templates[0].Body, "14 March 2026")
	assert.Contains(t, templates[0].Body, "Indian national")
	assert.Contains(t, templates[0].Body, "- Marriage or civil partnership certificate")
	assert.Contains(t, templates[0].Body, "Previous refusal or overstay on record")
	assert.NotContains(t, templates[0].Body, "✓")

	assert.Equal(t, TemplateSponsorDeclaration, templates[1].ID)
	assert.Contains(t, templates[1].Body, "£35,000")
	assert.Equal(t, TemplateSubjectAccessRequest, templates[2].ID)

	skilled, err := BuildTemplates(models.RouteSkilled, models.Answers{"sw_job_title": "Data Engineer"}, assessment.Result{}, fixedTime)
	require.NoError(t, err)
	require.Len(t, skilled, 2)
	assert.Equal(t, TemplateMaintenanceCertRequest, skilled[1].ID)
	assert.Contains(t, skilled[1].Body, "for the role of Data Engineer")
}

func TestFormatPounds(t *testing.T) {
	assert.Equal(t, "0", formatPounds(0))
	assert.Equal(t, "999", formatPounds(999))
	assert.Equal(t, "29,000", formatPounds(29000))
	assert.Equal(t, "1,234,567", formatPounds(1234567.89))
	assert.Equal(t, "-1,500", formatPounds(-1500))
}

func TestEveryDocumentTemplateRenders(t *testing.T) {
	data := templateData{
		Date:        "14 March 2026",
		RouteName:   "Spouse/Partner visa",
		Nationality: "Indian",
		Income:      "35,000",
		JobTitle:    "Data Engineer",
		Documents:   []string{"Passport", "Bank statements"},
		Issues:      []string{"Previous refusal or overstay on record"},
	}
	for _, id := range []string{
		TemplateCoverLetter,
		TemplateSponsorDeclaration,
		TemplateSubjectAccessRequest,
		TemplateMaintenanceCertRequest,
	} {
		body, err := render(id, data)
		require.NoError(t, err, id)
		assert.NotEmpty(t, body, id)
		assert.NotContains(t, body, "<no value>", id)
	}

	_, err := render("unknown_template", data)
	assert.Error(t, err)
}
