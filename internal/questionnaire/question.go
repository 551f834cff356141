// Package questionnaire holds the question catalog, the visibility resolver and
// the step-wise flow controller that walks the visible questions.
//
// The catalog is declared once and never mutated. Which questions are asked is a
// pure function of (tier, route, answers so far), recomputed on every call.
package questionnaire

import (
	"precheck/internal/eligibility/models"
)

// AnswerType is the declared shape of a question's answer.
type AnswerType string

const (
	TypeBoolean      AnswerType = "boolean"
	TypeSingleChoice AnswerType = "single_choice"
	TypeMultiChoice  AnswerType = "multi_choice"
	TypeInteger      AnswerType = "integer"
	TypeCurrency     AnswerType = "currency"
	TypeDate         AnswerType = "date"
	TypeShortText    AnswerType = "short_text"
	TypeLongText     AnswerType = "long_text"
)

// IsChoice reports whether answers must be one of the declared options.
func (t AnswerType) IsChoice() bool {
	return t == TypeSingleChoice || t == TypeMultiChoice
}

// IsNumeric reports whether the answer is read as a number.
func (t AnswerType) IsNumeric() bool {
	return t == TypeInteger || t == TypeCurrency
}

// Section groups questions under a display heading.
type Section string

const (
	SectionPersonal      Section = "Personal Details"
	SectionRelationship  Section = "Relationship"
	SectionFinancial     Section = "Financial"
	SectionEmployment    Section = "Employment"
	SectionEnglish       Section = "English Language"
	SectionHistory       Section = "Immigration History"
	SectionSuitability   Section = "Suitability"
	SectionAccommodation Section = "Accommodation"
	SectionEvidence      Section = "Evidence Detail"
)

// Option is one selectable value of a choice question.
type Option struct {
	Value string `json:"value"`
	Label string `json:"label"`
}

// VisibilityContext is everything a visibility predicate may look at.
type VisibilityContext struct {
	Tier    models.Tier
	Route   models.Route
	Answers models.Answers
}

// Predicate decides whether a question is shown for a context.
type Predicate func(VisibilityContext) bool

// Question is one catalog entry.
type Question struct {
	ID          string     `json:"id"`
	Section     Section    `json:"section"`
	Prompt      string     `json:"prompt"`
	Help        string     `json:"help,omitempty"`
	Placeholder string     `json:"placeholder,omitempty"`
	Type        AnswerType `json:"type"`
	Options     []Option   `json:"options,omitempty"`
	Visible     Predicate  `json:"-"`
}

// HasOption reports whether value is one of the question's declared options.
func (q Question) HasOption(value string) bool {
	for _, o := range q.Options {
		if o.Value == value {
			return true
		}
	}
	return false
}

// IsVisible evaluates the question's predicate. A question without a predicate
// is always shown.
func (q Question) IsVisible(vc VisibilityContext) bool {
	if q.Visible == nil {
		return true
	}
	return q.Visible(vc)
}
