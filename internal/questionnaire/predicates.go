package questionnaire

import "precheck/internal/eligibility/models"

// Predicate building blocks used by the default catalog.

func tierAtLeast(t models.Tier) Predicate {
	return func(vc VisibilityContext) bool { return vc.Tier.AtLeast(t) }
}

func onRoute(r models.Route) Predicate {
	return func(vc VisibilityContext) bool { return vc.Route == r }
}

// isTrue matches when key was answered with a truthy value.
func isTrue(key string) Predicate {
	return func(vc VisibilityContext) bool { return vc.Answers.Bool(key) }
}

// isFalse matches only when key was answered and is falsy. An unanswered key is
// neither true nor false.
func isFalse(key string) Predicate {
	return func(vc VisibilityContext) bool {
		return vc.Answers.Has(key) && !vc.Answers.Bool(key)
	}
}

func equals(key, value string) Predicate {
	return func(vc VisibilityContext) bool { return vc.Answers.String(key) == value }
}

func answered(key string) Predicate {
	return func(vc VisibilityContext) bool { return !isEmptyAnswer(vc.Answers[key]) }
}

func numberAbove(key string, n float64) Predicate {
	return func(vc VisibilityContext) bool { return vc.Answers.Number(key) > n }
}

func all(preds ...Predicate) Predicate {
	return func(vc VisibilityContext) bool {
		for _, p := range preds {
			if !p(vc) {
				return false
			}
		}
		return true
	}
}

// basic questions are asked at every tier, including unrecognised ones.
func basic(preds ...Predicate) Predicate {
	return all(preds...)
}

func full(preds ...Predicate) Predicate {
	return all(append([]Predicate{tierAtLeast(models.TierFull)}, preds...)...)
}

func proPlus(preds ...Predicate) Predicate {
	return all(append([]Predicate{tierAtLeast(models.TierProPlus)}, preds...)...)
}
