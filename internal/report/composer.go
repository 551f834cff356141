package report

import (
	"context"
	"log/slog"
	"time"

	"precheck/internal/assessment"
	"precheck/internal/eligibility/models"
	"precheck/internal/i18n"
)

type composeConfig struct {
	locale string
	now    time.Time
	ctx    context.Context
	logger *slog.Logger
}

// Option configures Compose.
type Option func(*composeConfig)

// WithLocale selects the label locale. Unsupported locales fall back to the default.
func WithLocale(locale string) Option {
	return func(c *composeConfig) {
		c.locale = locale
	}
}

// WithGeneratedAt stamps the report with a fixed time.
func WithGeneratedAt(t time.Time) Option {
	return func(c *composeConfig) {
		c.now = t
	}
}

// WithLogger reports documents that failed to render. ctx carries request
// attributes for the log line.
func WithLogger(ctx context.Context, logger *slog.Logger) Option {
	return func(c *composeConfig) {
		c.ctx = ctx
		c.logger = logger
	}
}

// Compose runs every rule function and assembles the report for the tier.
// Sections the tier is not entitled to are omitted, never emptied.
func Compose(route models.Route, tier models.Tier, answers models.Answers, opts ...Option) Report {
	cfg := composeConfig{locale: i18n.Default, ctx: context.Background(), logger: slog.Default()}
	for _, opt := range opts {
		opt(&cfg)
	}
	if l, ok := i18n.Normalize(cfg.locale); ok {
		cfg.locale = l
	} else {
		cfg.locale = i18n.Default
	}
	if cfg.now.IsZero() {
		cfg.now = time.Now()
	}

	result := assessment.Assess(route, answers, tier)
	r := Report{
		Route:       route,
		Tier:        tier,
		Verdict:     result.Verdict,
		RiskLevel:   result.RiskLevel,
		Summary:     result.Summary,
		RiskFlags:   result.RiskFlags,
		NextSteps:   result.NextSteps,
		GeneratedAt: cfg.now.UTC(),
		Disclaimer:  i18n.T(cfg.locale, "report.disclaimer"),
	}

	if tier.Unlocks(models.FeatureChecklist) {
		r.Professional = &ProfessionalSections{
			SectionScores: result.SectionScores,
			Checklist:     assessment.BuildChecklist(answers, route, tier),
			Matrix:        assessment.BuildMatrix(answers, route),
		}
	}

	if tier.Unlocks(models.FeatureTemplates) {
		var steps []assessment.RemediationStep
		if result.Remediation != nil {
			steps = result.Remediation.Steps
		}
		templates, err := BuildTemplates(route, answers, result, r.GeneratedAt)
		if err != nil {
			cfg.logger.ErrorContext(cfg.ctx, "failed to render document templates",
				"route", route,
				"error", err,
			)
		}
		r.ProPlus = &ProPlusSections{
			Remediation: steps,
			Gaps:        assessment.AnalyzeGaps(answers, route),
			Templates:   templates,
		}
	}

	r.Labels = buildLabels(cfg.locale, r)
	return r
}

var sectionLabelKeys = map[models.Feature]string{
	models.FeatureSectionScores: "report.scores",
	models.FeatureChecklist:     "report.checklist",
	models.FeatureMatrix:        "report.matrix",
	models.FeatureRemediation:   "report.remediation",
	models.FeatureGapAnalysis:   "report.gaps",
	models.FeatureTemplates:     "report.templates",
}

func buildLabels(locale string, r Report) Labels {
	labels := Labels{
		Locale:    locale,
		Title:     i18n.T(locale, "report.title"),
		Route:     i18n.T(locale, "route."+string(r.Route)),
		Tier:      i18n.T(locale, "tier."+string(r.Tier)),
		Verdict:   i18n.T(locale, "verdict."+string(r.Verdict)),
		RiskLevel: i18n.T(locale, "risk."+string(r.RiskLevel)),
		Generated: i18n.Tf(locale, "report.generated", r.GeneratedAt.Format(time.DateOnly)),
	}
	for _, f := range r.Unlocked() {
		key, ok := sectionLabelKeys[f]
		if !ok {
			continue
		}
		if labels.Sections == nil {
			labels.Sections = make(map[models.Feature]string)
		}
		labels.Sections[f] = i18n.T(locale, key)
	}
	return labels
}
