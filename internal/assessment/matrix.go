package assessment

import (
	"fmt"
	"strconv"

	"precheck/internal/eligibility/models"
)

// MatrixStatus is the outcome label of one compliance matrix row.
type MatrixStatus string

const (
	MatrixPass    MatrixStatus = "PASS"
	MatrixFail    MatrixStatus = "FAIL"
	MatrixPending MatrixStatus = "PENDING"
	MatrixClean   MatrixStatus = "CLEAN"
	MatrixFlags   MatrixStatus = "FLAGS"
	MatrixConcern MatrixStatus = "CONCERN"
	MatrixStrong  MatrixStatus = "STRONG"
	MatrixWeak    MatrixStatus = "WEAK"
)

// ScoreRow is one category of the compliance matrix, scored out of 10.
type ScoreRow struct {
	Category string       `json:"category"`
	Status   MatrixStatus `json:"status"`
	Score    int          `json:"score"`
	Detail   string       `json:"detail"`
}

// BuildMatrix scores the fixed requirement categories. The relationship row is
// only present on the spouse route.
//
// The financial threshold here is route dependent (spouse £29,000, any other
// route £38,700), unlike Assess which only scores spouse income.
func BuildMatrix(answers models.Answers, route models.Route) []ScoreRow {
	rows := []ScoreRow{
		financialRow(answers, route),
		englishRow(answers),
		historyRow(answers),
		suitabilityRow(answers),
	}
	if route.IsSpouse() {
		rows = append(rows, relationshipRow(answers))
	}
	return rows
}

// IncomeThreshold is the matrix threshold for a route, in pounds.
func IncomeThreshold(route models.Route) int {
	if route.IsSpouse() {
		return SpouseIncomeThreshold
	}
	return SkilledSalaryThreshold
}

func financialRow(a models.Answers, route models.Route) ScoreRow {
	income := a.Income()
	threshold := IncomeThreshold(route)
	if income >= float64(threshold) {
		return ScoreRow{
			Category: "Financial", Status: MatrixPass, Score: 10,
			Detail: fmt.Sprintf("£%s≥£%d", formatAmount(income), threshold),
		}
	}
	return ScoreRow{
		Category: "Financial", Status: MatrixFail, Score: 0,
		Detail: fmt.Sprintf("£%s<£%d", formatAmount(income), threshold),
	}
}

func englishRow(a models.Answers) ScoreRow {
	if a.Bool("english_test_passed") {
		return ScoreRow{Category: "English Language", Status: MatrixPass, Score: 10, Detail: "Approved SELT passed"}
	}
	return ScoreRow{Category: "English Language", Status: MatrixPending, Score: 5, Detail: "Test result or exemption evidence pending"}
}

func historyRow(a models.Answers) ScoreRow {
	if !a.Bool("refusal_history") && !a.Bool("overstay_history") {
		return ScoreRow{Category: "Immigration History", Status: MatrixClean, Score: 10, Detail: "No refusals or overstays"}
	}
	return ScoreRow{Category: "Immigration History", Status: MatrixFlags, Score: 3, Detail: "Refusal or overstay declared"}
}

func suitabilityRow(a models.Answers) ScoreRow {
	if !a.Bool("criminal_offence") {
		return ScoreRow{Category: "Suitability", Status: MatrixPass, Score: 10, Detail: "No convictions declared"}
	}
	return ScoreRow{Category: "Suitability", Status: MatrixConcern, Score: 0, Detail: "Criminal conviction declared"}
}

func relationshipRow(a models.Answers) ScoreRow {
	if a.Bool("joint_accounts") && a.Bool("joint_tenancy") {
		return ScoreRow{Category: "Relationship Evidence", Status: MatrixStrong, Score: 10, Detail: "Joint accounts and tenancy"}
	}
	return ScoreRow{Category: "Relationship Evidence", Status: MatrixWeak, Score: 6, Detail: "Joint accounts or tenancy missing"}
}

// formatAmount renders a pound amount without grouping or trailing zeros.
func formatAmount(v float64) string {
	return strconv.FormatFloat(v, 'f', -1, 64)
}
