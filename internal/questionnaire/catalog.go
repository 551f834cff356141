package questionnaire

import (
	"fmt"
	"strings"
	"sync"

	dErrors "precheck/pkg/domain-errors"
)

// Catalog is an ordered, immutable set of questions.
//
// Invariants:
//   - Question identifiers are non-empty and unique
//   - Choice questions declare at least one option
//   - Declaration order is the order questions are asked in
type Catalog struct {
	questions []Question
	index     map[string]int
}

// NewCatalog validates and freezes a question list.
func NewCatalog(questions []Question) (*Catalog, error) {
	c := &Catalog{
		questions: make([]Question, 0, len(questions)),
		index:     make(map[string]int, len(questions)),
	}
	for _, q := range questions {
		id := strings.TrimSpace(q.ID)
		if id == "" {
			return nil, dErrors.New(dErrors.CodeInvariantViolation, "question id cannot be empty")
		}
		if _, dup := c.index[id]; dup {
			return nil, dErrors.New(dErrors.CodeInvariantViolation, fmt.Sprintf("duplicate question id %q", id))
		}
		if q.Type.IsChoice() && len(q.Options) == 0 {
			return nil, dErrors.New(dErrors.CodeInvariantViolation, fmt.Sprintf("choice question %q has no options", id))
		}
		q.ID = id
		q.Options = append([]Option(nil), q.Options...)
		c.index[id] = len(c.questions)
		c.questions = append(c.questions, q)
	}
	return c, nil
}

var (
	defaultCatalogOnce sync.Once
	defaultCatalog     *Catalog
)

// DefaultCatalog returns the built-in pre-check catalog. It panics if the
// declarations break a catalog invariant, which the package tests guard.
func DefaultCatalog() *Catalog {
	defaultCatalogOnce.Do(func() {
		c, err := NewCatalog(defaultQuestions())
		if err != nil {
			panic(err)
		}
		defaultCatalog = c
	})
	return defaultCatalog
}

// Questions returns a copy of every question in declaration order.
func (c *Catalog) Questions() []Question {
	return append([]Question(nil), c.questions...)
}

// Len is the total number of declared questions.
func (c *Catalog) Len() int { return len(c.questions) }

// Lookup finds a question by identifier.
func (c *Catalog) Lookup(id string) (Question, bool) {
	i, ok := c.index[id]
	if !ok {
		return Question{}, false
	}
	return c.questions[i], true
}

// Visible resolves the ordered questions to ask for a context: each predicate
// is evaluated from scratch, declaration order is kept and the list is cut at
// the tier's question ceiling.
func (c *Catalog) Visible(vc VisibilityContext) []Question {
	limit := vc.Tier.MaxQuestions()
	visible := make([]Question, 0, limit)
	for _, q := range c.questions {
		if len(visible) == limit {
			break
		}
		if q.IsVisible(vc) {
			visible = append(visible, q)
		}
	}
	return visible
}
