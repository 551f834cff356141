package assessment

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"precheck/internal/eligibility/models"
)

func TestBuildMatrixSpouse(t *testing.T) {
	rows := BuildMatrix(cleanSpouseAnswers(), models.RouteSpouse)
	require.Len(t, rows, 5)

	assert.Equal(t, ScoreRow{Category: "Financial", Status: MatrixPass, Score: 10, Detail: "£35000≥£29000"}, rows[0])
	assert.Equal(t, MatrixPass, rows[1].Status)
	assert.Equal(t, MatrixClean, rows[2].Status)
	assert.Equal(t, MatrixPass, rows[3].Status)
	assert.Equal(t, "Relationship Evidence", rows[4].Category)
	assert.Equal(t, MatrixStrong, rows[4].Status)
	assert.Equal(t, 10, rows[4].Score)
}

func TestBuildMatrixSkilledUsesHigherThreshold(t *testing.T) {
	rows := BuildMatrix(models.Answers{"sw_salary": 40000}, models.RouteSkilled)
	require.Len(t, rows, 4)
	assert.Equal(t, MatrixPass, rows[0].Status)
	assert.Equal(t, 10, rows[0].Score)
	assert.Equal(t, "£40000≥£38700", rows[0].Detail)

	rows = BuildMatrix(models.Answers{"sw_salary": 35000}, models.RouteSkilled)
	assert.Equal(t, MatrixFail, rows[0].Status)
	assert.Equal(t, "£35000<£38700", rows[0].Detail)
}

func TestBuildMatrixAdverseAnswers(t *testing.T) {
	answers := models.Answers{
		"sponsor_income":      "not sure",
		"english_test_passed": false,
		"overstay_history":    true,
		"criminal_offence":    true,
		"joint_accounts":      true,
	}
	rows := BuildMatrix(answers, models.RouteSpouse)
	require.Len(t, rows, 5)

	assert.Equal(t, MatrixFail, rows[0].Status)
	assert.Equal(t, "£0<£29000", rows[0].Detail)
	assert.Equal(t, MatrixPending, rows[1].Status)
	assert.Equal(t, 5, rows[1].Score, "english is partial credit, not a fail")
	assert.Equal(t, MatrixFlags, rows[2].Status)
	assert.Equal(t, 3, rows[2].Score)
	assert.Equal(t, MatrixConcern, rows[3].Status)
	assert.Equal(t, MatrixWeak, rows[4].Status)
	assert.Equal(t, 6, rows[4].Score)
}

func TestBuildMatrixOtherRoute(t *testing.T) {
	rows := BuildMatrix(models.Answers{"sponsor_income": 30000}, models.RouteOther)
	require.Len(t, rows, 4)
	assert.Equal(t, MatrixFail, rows[0].Status, "non-spouse routes use the £38,700 threshold")
}
