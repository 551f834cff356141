package questionnaire

import (
	"fmt"
	"strings"
	"time"

	"github.com/spf13/cast"

	"precheck/internal/eligibility/models"
	dErrors "precheck/pkg/domain-errors"
	pstrings "precheck/pkg/platform/strings"
)

// Status is the lifecycle state of a questionnaire.
type Status string

const (
	StatusInProgress Status = "in_progress"
	StatusComplete   Status = "complete"
	StatusCancelled  Status = "cancelled"
)

var (
	ErrAnswerRequired  = dErrors.New(dErrors.CodeValidation, "current question requires an answer")
	ErrNotInProgress   = dErrors.New(dErrors.CodeConflict, "questionnaire is not in progress")
	ErrAtFirstQuestion = dErrors.New(dErrors.CodeValidation, "already at the first question")
	ErrNotAnUpgrade    = dErrors.New(dErrors.CodeValidation, "upgrade must target a higher tier")
)

// Progress is the serializable state of a questionnaire. Stores persist it and
// Resume rebuilds a Flow from it.
type Progress struct {
	Route   models.Route   `json:"route"`
	Tier    models.Tier    `json:"tier"`
	Step    int            `json:"step"`
	Status  Status         `json:"status"`
	Answers models.Answers `json:"answers"`
}

// Flow walks the visible questions one step at a time.
//
// Invariants:
//   - Step always indexes the current visible set while in progress
//   - Advancing requires a non-empty answer to the current question
//   - Going back never discards answers; cancelling discards all of them
//   - An empty visible set completes immediately
type Flow struct {
	catalog  *Catalog
	progress Progress
}

// NewFlow starts a questionnaire for a route and tier.
func NewFlow(catalog *Catalog, route models.Route, tier models.Tier) *Flow {
	return Resume(catalog, Progress{
		Route:   route,
		Tier:    tier,
		Status:  StatusInProgress,
		Answers: models.Answers{},
	})
}

// Resume rebuilds a Flow from stored progress.
func Resume(catalog *Catalog, p Progress) *Flow {
	p.Answers = p.Answers.Clone()
	if p.Status == "" {
		p.Status = StatusInProgress
	}
	f := &Flow{catalog: catalog, progress: p}
	f.settle()
	return f
}

// Progress returns a copy of the current state.
func (f *Flow) Progress() Progress {
	p := f.progress
	p.Answers = p.Answers.Clone()
	return p
}

func (f *Flow) Status() Status { return f.progress.Status }

// Answers returns a copy of the collected answers.
func (f *Flow) Answers() models.Answers { return f.progress.Answers.Clone() }

// Visible resolves the questions to ask for the current answers.
func (f *Flow) Visible() []Question {
	return f.catalog.Visible(VisibilityContext{
		Tier:    f.progress.Tier,
		Route:   f.progress.Route,
		Answers: f.progress.Answers,
	})
}

// Position returns the 0-based step and the current number of visible questions.
func (f *Flow) Position() (step, total int) {
	return f.progress.Step, len(f.Visible())
}

// Current returns the question at the current step. ok is false once the
// questionnaire has left the in-progress state.
func (f *Flow) Current() (Question, bool) {
	if f.progress.Status != StatusInProgress {
		return Question{}, false
	}
	visible := f.Visible()
	if len(visible) == 0 {
		return Question{}, false
	}
	return visible[f.progress.Step], true
}

// Answer records a value for the current question. A nil value clears it.
func (f *Flow) Answer(value any) error {
	q, ok := f.Current()
	if !ok {
		return ErrNotInProgress
	}
	if value == nil {
		delete(f.progress.Answers, q.ID)
		f.settle()
		return nil
	}
	normalized, err := normalizeAnswer(q, value)
	if err != nil {
		return err
	}
	f.progress.Answers[q.ID] = normalized
	f.settle()
	return nil
}

// CanAdvance reports whether the current question has a usable answer.
func (f *Flow) CanAdvance() bool {
	q, ok := f.Current()
	if !ok {
		return false
	}
	return !isEmptyAnswer(f.progress.Answers[q.ID])
}

// Next advances one step, completing the questionnaire from the last question.
func (f *Flow) Next() error {
	if f.progress.Status != StatusInProgress {
		return ErrNotInProgress
	}
	if !f.CanAdvance() {
		return ErrAnswerRequired
	}
	if f.progress.Step >= len(f.Visible())-1 {
		f.progress.Status = StatusComplete
		return nil
	}
	f.progress.Step++
	f.settle()
	return nil
}

// Back moves one step back, keeping every answer.
func (f *Flow) Back() error {
	if f.progress.Status != StatusInProgress {
		return ErrNotInProgress
	}
	if f.progress.Step == 0 {
		return ErrAtFirstQuestion
	}
	f.progress.Step--
	return nil
}

// Cancel abandons the questionnaire and discards the answer set.
func (f *Flow) Cancel() {
	f.progress.Status = StatusCancelled
	f.progress.Answers = models.Answers{}
	f.progress.Step = 0
}

// Upgrade raises the tier, keeping the answers collected so far. A completed
// questionnaire reopens at the first newly visible unanswered question.
func (f *Flow) Upgrade(tier models.Tier) error {
	if f.progress.Status == StatusCancelled {
		return ErrNotInProgress
	}
	if !tier.IsValid() || !tier.Above(f.progress.Tier) {
		return ErrNotAnUpgrade
	}
	f.progress.Tier = tier

	if f.progress.Status == StatusComplete {
		for i, q := range f.Visible() {
			if isEmptyAnswer(f.progress.Answers[q.ID]) {
				f.progress.Status = StatusInProgress
				f.progress.Step = i
				break
			}
		}
	}
	f.settle()
	return nil
}

// settle drops answers to questions that are no longer visible, clamps the
// step into the visible range and completes when there is nothing left to ask.
func (f *Flow) settle() {
	if f.progress.Status != StatusInProgress {
		return
	}
	visible := f.pruneHidden()
	total := len(visible)
	if total == 0 {
		f.progress.Step = 0
		f.progress.Status = StatusComplete
		return
	}
	if f.progress.Step < 0 {
		f.progress.Step = 0
	}
	if f.progress.Step > total-1 {
		f.progress.Step = total - 1
	}
}

// pruneHidden removes answers whose question left the visible set. Removing an
// answer can hide further questions, so it repeats until the set is stable.
func (f *Flow) pruneHidden() []Question {
	for {
		visible := f.Visible()
		shown := make(map[string]struct{}, len(visible))
		for _, q := range visible {
			shown[q.ID] = struct{}{}
		}
		removed := false
		for key := range f.progress.Answers {
			if _, ok := shown[key]; !ok {
				delete(f.progress.Answers, key)
				removed = true
			}
		}
		if !removed {
			return visible
		}
	}
}

func isEmptyAnswer(v any) bool {
	switch typed := v.(type) {
	case nil:
		return true
	case string:
		return strings.TrimSpace(typed) == ""
	case []string:
		return len(typed) == 0
	case []any:
		return len(typed) == 0
	default:
		return false
	}
}

// normalizeAnswer checks a value against the question's declared shape.
// Numeric answers are stored as given and coerced when read.
func normalizeAnswer(q Question, value any) (any, error) {
	switch q.Type {
	case TypeBoolean:
		b, ok := value.(bool)
		if !ok {
			return nil, invalidAnswer(q, "must be true or false")
		}
		return b, nil

	case TypeSingleChoice:
		s, ok := value.(string)
		if !ok {
			return nil, invalidAnswer(q, "must be a single option")
		}
		s = strings.TrimSpace(s)
		if s != "" && !q.HasOption(s) {
			return nil, invalidAnswer(q, fmt.Sprintf("%q is not an option", s))
		}
		return s, nil

	case TypeMultiChoice:
		values, err := cast.ToStringSliceE(value)
		if err != nil {
			return nil, invalidAnswer(q, "must be a list of options")
		}
		values = pstrings.DedupeAndTrim(values)
		for _, v := range values {
			if !q.HasOption(v) {
				return nil, invalidAnswer(q, fmt.Sprintf("%q is not an option", v))
			}
		}
		return values, nil

	case TypeInteger, TypeCurrency:
		switch typed := value.(type) {
		case string:
			return strings.TrimSpace(typed), nil
		case bool, []any, []string, map[string]any:
			return nil, invalidAnswer(q, "must be a number")
		default:
			return value, nil
		}

	case TypeDate:
		s, ok := value.(string)
		if !ok {
			return nil, invalidAnswer(q, "must be a date")
		}
		s = strings.TrimSpace(s)
		if s != "" {
			if _, err := time.Parse(time.DateOnly, s); err != nil {
				return nil, invalidAnswer(q, "must be a date in YYYY-MM-DD format")
			}
		}
		return s, nil

	default:
		s, ok := value.(string)
		if !ok {
			return nil, invalidAnswer(q, "must be text")
		}
		return strings.TrimSpace(s), nil
	}
}

func invalidAnswer(q Question, reason string) error {
	return dErrors.New(dErrors.CodeValidation, fmt.Sprintf("answer to %s %s", q.ID, reason))
}
