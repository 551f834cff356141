package questionnaire

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/suite"

	"precheck/internal/eligibility/models"
	dErrors "precheck/pkg/domain-errors"
)

type FlowSuite struct {
	suite.Suite
	catalog *Catalog
}

func TestFlowSuite(t *testing.T) {
	suite.Run(t, new(FlowSuite))
}

func (s *FlowSuite) SetupTest() {
	c, err := NewCatalog([]Question{
		{ID: "has_savings", Type: TypeBoolean},
		{ID: "savings", Type: TypeCurrency, Visible: isTrue("has_savings")},
		{ID: "evidence", Type: TypeMultiChoice, Options: opts("photos", "Photos", "travel", "Travel")},
		{ID: "notes", Type: TypeLongText, Visible: tierAtLeast(models.TierFull)},
	})
	s.Require().NoError(err)
	s.catalog = c
}

func (s *FlowSuite) current(f *Flow) string {
	q, ok := f.Current()
	s.Require().True(ok)
	return q.ID
}

func (s *FlowSuite) TestNext() {
	s.Run("refuses without an answer", func() {
		f := NewFlow(s.catalog, models.RouteOther, models.TierBasic)
		err := f.Next()
		s.Require().Error(err)
		s.True(errors.Is(err, ErrAnswerRequired))
		s.True(dErrors.HasCode(err, dErrors.CodeValidation))
		s.Equal("has_savings", s.current(f))
	})

	s.Run("false is a valid boolean answer", func() {
		f := NewFlow(s.catalog, models.RouteOther, models.TierBasic)
		s.Require().NoError(f.Answer(false))
		s.True(f.CanAdvance())
		s.Require().NoError(f.Next())
		s.Equal("evidence", s.current(f), "savings stays hidden when has_savings is false")
	})

	s.Run("zero is a valid numeric answer", func() {
		f := NewFlow(s.catalog, models.RouteOther, models.TierBasic)
		s.Require().NoError(f.Answer(true))
		s.Require().NoError(f.Next())
		s.Equal("savings", s.current(f))
		s.Require().NoError(f.Answer(0))
		s.Require().NoError(f.Next())
	})

	s.Run("empty string and empty selection are not answers", func() {
		f := NewFlow(s.catalog, models.RouteOther, models.TierBasic)
		s.Require().NoError(f.Answer(true))
		s.Require().NoError(f.Next())
		s.Require().NoError(f.Answer("  "))
		s.ErrorIs(f.Next(), ErrAnswerRequired)

		s.Require().NoError(f.Answer("£1,500"))
		s.Require().NoError(f.Next())
		s.Require().NoError(f.Answer([]string{}))
		s.ErrorIs(f.Next(), ErrAnswerRequired)
	})

	s.Run("completes from the last visible question", func() {
		f := NewFlow(s.catalog, models.RouteOther, models.TierBasic)
		s.Require().NoError(f.Answer(false))
		s.Require().NoError(f.Next())
		s.Require().NoError(f.Answer([]any{"photos", " travel ", "photos"}))
		s.Require().NoError(f.Next())

		s.Equal(StatusComplete, f.Status())
		s.Equal([]string{"photos", "travel"}, f.Answers()["evidence"])
		_, ok := f.Current()
		s.False(ok)
		s.ErrorIs(f.Next(), ErrNotInProgress)
	})
}

func (s *FlowSuite) TestAnswerValidation() {
	f := NewFlow(s.catalog, models.RouteOther, models.TierBasic)
	s.True(dErrors.HasCode(f.Answer("yes"), dErrors.CodeValidation), "booleans must be booleans")

	s.Require().NoError(f.Answer(false))
	s.Require().NoError(f.Next())
	err := f.Answer([]string{"photos", "selfies"})
	s.Require().Error(err)
	s.True(dErrors.HasCode(err, dErrors.CodeValidation))
	s.False(f.Answers().Has("evidence"))
}

func (s *FlowSuite) TestBackKeepsAnswers() {
	f := NewFlow(s.catalog, models.RouteOther, models.TierBasic)
	s.ErrorIs(f.Back(), ErrAtFirstQuestion)

	s.Require().NoError(f.Answer(true))
	s.Require().NoError(f.Next())
	s.Require().NoError(f.Answer(2500))
	s.Require().NoError(f.Back())

	s.Equal("has_savings", s.current(f))
	s.Equal(2500, f.Answers()["savings"])
	s.True(f.CanAdvance())
}

func (s *FlowSuite) TestStepIsClampedWhenQuestionsDisappear() {
	f := Resume(s.catalog, Progress{
		Route:   models.RouteOther,
		Tier:    models.TierBasic,
		Step:    7,
		Answers: models.Answers{"has_savings": true},
	})
	step, total := f.Position()
	s.Equal(2, total-1)
	s.Equal(total-1, step)

	f = Resume(s.catalog, Progress{Tier: models.TierBasic, Step: 2, Answers: models.Answers{"has_savings": true, "savings": 100}})
	s.Require().NoError(f.Back())
	s.Require().NoError(f.Back())
	s.Require().NoError(f.Answer(false))
	s.Require().NoError(f.Next())
	s.Equal("evidence", s.current(f))
}

func (s *FlowSuite) TestAnswersToHiddenQuestionsAreDropped() {
	chained, err := NewCatalog([]Question{
		{ID: "a", Type: TypeBoolean},
		{ID: "b", Type: TypeCurrency, Visible: isTrue("a")},
		{ID: "c", Type: TypeShortText, Visible: numberAbove("b", 0)},
		{ID: "d", Type: TypeBoolean},
	})
	s.Require().NoError(err)

	f := NewFlow(chained, models.RouteOther, models.TierProPlus)
	s.Require().NoError(f.Answer(true))
	s.Require().NoError(f.Next())
	s.Require().NoError(f.Answer(500))
	s.Require().NoError(f.Next())
	s.Require().NoError(f.Answer("inheritance"))
	s.Require().NoError(f.Back())
	s.Require().NoError(f.Back())

	s.Require().NoError(f.Answer(false))

	s.Equal(models.Answers{"a": false}, f.Answers(), "b and c are no longer reachable")
	var ids []string
	for _, q := range f.Visible() {
		ids = append(ids, q.ID)
	}
	s.Equal([]string{"a", "d"}, ids)
	s.Require().NoError(f.Next())
	s.Equal("d", s.current(f))
}

func (s *FlowSuite) TestDefaultCatalogGateFlipDropsDependentAnswers() {
	f := Resume(DefaultCatalog(), Progress{
		Route: models.RouteSpouse,
		Tier:  models.TierProPlus,
		Answers: models.Answers{
			"cash_savings":      true,
			"cash_savings_amt":  20000,
			"refusal_history":   true,
			"previous_refusals": 2,
		},
	})
	s.Require().True(f.Answers().Has("cash_savings_amt"))

	for _, gate := range []string{"cash_savings", "refusal_history"} {
		for i, q := range f.Visible() {
			if q.ID == gate {
				f.progress.Step = i
			}
		}
		s.Require().Equal(gate, s.current(f))
		s.Require().NoError(f.Answer(false))
	}

	answers := f.Answers()
	s.False(answers.Has("cash_savings_amt"))
	s.False(answers.Has("previous_refusals"))
	s.Equal(false, answers["cash_savings"])
	s.Equal(false, answers["refusal_history"])
}

func (s *FlowSuite) TestCancelDiscardsAnswers() {
	f := NewFlow(s.catalog, models.RouteOther, models.TierBasic)
	s.Require().NoError(f.Answer(true))
	f.Cancel()

	s.Equal(StatusCancelled, f.Status())
	s.Empty(f.Answers())
	s.ErrorIs(f.Answer(true), ErrNotInProgress)
	s.ErrorIs(f.Upgrade(models.TierFull), ErrNotInProgress)
}

func (s *FlowSuite) TestEmptyVisibleSetCompletesImmediately() {
	empty, err := NewCatalog([]Question{{ID: "pro_only", Type: TypeBoolean, Visible: proPlus()}})
	s.Require().NoError(err)

	f := NewFlow(empty, models.RouteSpouse, models.TierBasic)
	s.Equal(StatusComplete, f.Status())
	_, total := f.Position()
	s.Zero(total)
}

func (s *FlowSuite) TestUpgrade() {
	s.Run("only to a higher tier", func() {
		f := NewFlow(s.catalog, models.RouteOther, models.TierFull)
		s.ErrorIs(f.Upgrade(models.TierFull), ErrNotAnUpgrade)
		s.ErrorIs(f.Upgrade(models.TierBasic), ErrNotAnUpgrade)
		s.ErrorIs(f.Upgrade(models.Tier("gold")), ErrNotAnUpgrade)
	})

	s.Run("reopens a completed questionnaire and keeps answers", func() {
		f := NewFlow(s.catalog, models.RouteOther, models.TierBasic)
		s.Require().NoError(f.Answer(false))
		s.Require().NoError(f.Next())
		s.Require().NoError(f.Answer([]string{"photos"}))
		s.Require().NoError(f.Next())
		s.Require().Equal(StatusComplete, f.Status())

		s.Require().NoError(f.Upgrade(models.TierFull))
		s.Equal(StatusInProgress, f.Status())
		s.Equal("notes", s.current(f))
		s.Equal(models.TierFull, f.Progress().Tier)
		s.Equal(false, f.Answers()["has_savings"])
	})
}

func (s *FlowSuite) TestProgressRoundTrip() {
	f := NewFlow(s.catalog, models.RouteOther, models.TierBasic)
	s.Require().NoError(f.Answer(true))
	s.Require().NoError(f.Next())

	resumed := Resume(s.catalog, f.Progress())
	s.Equal("savings", s.current(resumed))
	s.Equal(f.Answers(), resumed.Answers())
}

func (s *FlowSuite) TestDefaultCatalogWalk() {
	f := NewFlow(DefaultCatalog(), models.RouteSkilled, models.TierBasic)
	for f.Status() == StatusInProgress {
		q, ok := f.Current()
		s.Require().True(ok)
		switch q.Type {
		case TypeBoolean:
			s.Require().NoError(f.Answer(false))
		case TypeCurrency, TypeInteger:
			s.Require().NoError(f.Answer(40000))
		case TypeSingleChoice:
			s.Require().NoError(f.Answer(q.Options[0].Value))
		case TypeMultiChoice:
			s.Require().NoError(f.Answer([]string{q.Options[0].Value}))
		case TypeDate:
			s.Require().NoError(f.Answer("2020-01-01"))
		default:
			s.Require().NoError(f.Answer("text"))
		}
		s.Require().NoError(f.Next())
	}
	s.Equal(StatusComplete, f.Status())
	s.Equal(40000, f.Answers()["sw_salary"])
	s.LessOrEqual(len(f.Answers()), models.TierBasic.MaxQuestions())
}
