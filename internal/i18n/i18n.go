// Package i18n is a fixed key table per locale with fallback to the default
// locale for missing keys. It only covers labels the server renders itself
// (route, tier, verdict and report headings).
package i18n

import (
	"fmt"
	"strings"

	"golang.org/x/text/language"
)

const (
	English = "en"
	Chinese = "zh"
	// Default is used when nothing else resolves and for missing keys.
	Default = English
	// CookieName is the fixed key the language preference is stored under.
	CookieName = "precheck_lang"
)

// Supported lists the locales with a translation table, default first.
var Supported = []string{English, Chinese}

var matcher = language.NewMatcher([]language.Tag{language.English, language.Chinese})

var translations = map[string]map[string]string{
	English: {
		"route.spouse":         "Spouse / Partner visa",
		"route.skilled_worker": "Skilled Worker visa",
		"route.other":          "Other route",

		"tier.basic":    "Basic",
		"tier.full":     "Professional",
		"tier.pro_plus": "Pro Plus",

		"verdict.likely":     "Likely eligible",
		"verdict.borderline": "Borderline",
		"verdict.unlikely":   "Unlikely to succeed",

		"risk.LOW":    "Low risk",
		"risk.MEDIUM": "Medium risk",
		"risk.HIGH":   "High risk",

		"report.title":        "Eligibility compliance report",
		"report.generated":    "Generated %s",
		"report.scores":       "Section scores",
		"report.checklist":    "Document checklist",
		"report.matrix":       "Compliance matrix",
		"report.remediation":  "Action plan",
		"report.gaps":         "Evidence gaps",
		"report.templates":    "Document templates",
		"report.disclaimer":   "This pre-check is not legal advice. Requirements change; check GOV.UK before you apply.",
		"preferences.updated": "Language preference saved",
	},
	Chinese: {
		"route.spouse":         "配偶/伴侣签证",
		"route.skilled_worker": "技术工人签证",
		"route.other":          "其他类别",

		"tier.basic":    "基础版",
		"tier.full":     "专业版",
		"tier.pro_plus": "尊享版",

		"verdict.likely":     "很可能符合条件",
		"verdict.borderline": "处于边缘",
		"verdict.unlikely":   "成功可能性较低",

		"risk.LOW":    "低风险",
		"risk.MEDIUM": "中等风险",
		"risk.HIGH":   "高风险",

		"report.title":       "资格合规报告",
		"report.generated":   "生成于 %s",
		"report.scores":      "分项评分",
		"report.checklist":   "材料清单",
		"report.matrix":      "合规矩阵",
		"report.remediation": "行动计划",
		"report.gaps":        "证据缺口",
		"report.templates":   "文书模板",
		"report.disclaimer":  "本预检不构成法律建议。政策可能变化，申请前请查阅 GOV.UK。",
	},
}

// T returns the translated string for key in locale, falling back to the
// default locale and finally to the key itself.
func T(locale, key string) string {
	if m, ok := translations[locale]; ok {
		if v, ok := m[key]; ok {
			return v
		}
	}
	if v, ok := translations[Default][key]; ok {
		return v
	}
	return key
}

// Tf is T with fmt-style arguments.
func Tf(locale, key string, args ...any) string {
	return fmt.Sprintf(T(locale, key), args...)
}

// Normalize maps a language tag onto a supported locale ("en-GB" -> "en").
// ok is false when the tag matches no supported locale.
func Normalize(lang string) (string, bool) {
	lang = strings.TrimSpace(lang)
	if lang == "" {
		return "", false
	}
	tag, err := language.Parse(lang)
	if err != nil {
		return "", false
	}
	_, idx, conf := matcher.Match(tag)
	if conf == language.No {
		return "", false
	}
	return Supported[idx], true
}

// Resolve picks a locale from, in order, an explicit query value, the stored
// preference cookie, the Accept-Language header and finally def.
func Resolve(query, cookie, acceptLanguage, def string) string {
	for _, candidate := range []string{query, cookie} {
		if l, ok := Normalize(candidate); ok {
			return l
		}
	}
	if tags, _, err := language.ParseAcceptLanguage(acceptLanguage); err == nil && len(tags) > 0 {
		if _, idx, conf := matcher.Match(tags...); conf != language.No {
			return Supported[idx]
		}
	}
	if l, ok := Normalize(def); ok {
		return l
	}
	return Default
}
