package models

import "strings"

// Route is the visa category being assessed.
type Route string

const (
	RouteSpouse  Route = "spouse"
	RouteSkilled Route = "skilled_worker"
	// RouteOther is the fallback for unmatched route text. It receives only the
	// route-independent questions and rules.
	RouteOther Route = "other"
)

// ParseRoute maps free text onto a Route. It never fails: anything that is not
// a recognised spouse/partner or skilled worker alias becomes RouteOther.
func ParseRoute(s string) Route {
	normalized := strings.ToLower(strings.TrimSpace(s))
	normalized = strings.NewReplacer("-", "_", " ", "_", "/", "_").Replace(normalized)
	switch normalized {
	case "spouse", "partner", "spouse_partner", "spouse_or_partner", "family", "fiance":
		return RouteSpouse
	case "skilled", "skilled_worker", "skilledworker", "work", "worker":
		return RouteSkilled
	default:
		return RouteOther
	}
}

// IsSpouse reports whether spouse/partner specific rules apply.
func (r Route) IsSpouse() bool { return r == RouteSpouse }

// IsSkilled reports whether skilled worker specific rules apply.
func (r Route) IsSkilled() bool { return r == RouteSkilled }

func (r Route) String() string { return string(r) }
