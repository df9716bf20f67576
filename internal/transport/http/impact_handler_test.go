package http

import (
	"net/http"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestImpactHandler_RequiresPanel(t *testing.T) {
	router := newTestRouter(t, nil)

	rec := do(t, router, http.MethodGet, "/api/impact", "", "")
	assert.Equal(t, http.StatusConflict, rec.Code)

	rec = doJSON(t, router, http.MethodPost, "/api/impact/predict", `{"inputs": {}}`)
	assert.Equal(t, http.StatusConflict, rec.Code)
}

func TestImpactHandler_Overview(t *testing.T) {
	router := newTestRouter(t, nil)
	upload(t, router)

	rec := do(t, router, http.MethodGet, "/api/impact", "", "")
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())

	body := decode(t, rec)
	assert.Equal(t, []interface{}{"spending_per_student", "student_teacher_ratio", "per_pupil_instructional_spending"}, body["predictors"])
	assert.Contains(t, body["ranges"], "spending_per_student")

	outcomes := body["outcomes"].([]interface{})
	require.Len(t, outcomes, 2)
	math := outcomes[0].(map[string]interface{})
	assert.Equal(t, "math_score", math["outcome"])
	assert.Len(t, math["impacts"], 3)
	assert.Len(t, math["plot_data"], 3)

	rec = do(t, router, http.MethodGet, "/api/impact?plots=false", "", "")
	require.Equal(t, http.StatusOK, rec.Code)
	math = decode(t, rec)["outcomes"].([]interface{})[0].(map[string]interface{})
	assert.NotContains(t, math, "plot_data")

	rec = do(t, router, http.MethodGet, "/api/impact?plots=maybe", "", "")
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestImpactHandler_Predict(t *testing.T) {
	router := newTestRouter(t, nil)
	upload(t, router)

	tests := []struct {
		name           string
		body           string
		expectedStatus int
	}{
		{name: "all predictors at their mean", body: `{"inputs": {}}`, expectedStatus: http.StatusOK},
		{name: "raw values", body: `{"inputs": {"spending_per_student": 14000, "Student Teacher Ratio": 16}}`, expectedStatus: http.StatusOK},
		{name: "unknown column", body: `{"inputs": {"budget": 1}}`, expectedStatus: http.StatusBadRequest},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rec := doJSON(t, router, http.MethodPost, "/api/impact/predict", tt.body)
			require.Equal(t, tt.expectedStatus, rec.Code, rec.Body.String())
			if tt.expectedStatus != http.StatusOK {
				return
			}
			predictions := decode(t, rec)["predictions"].([]interface{})
			require.Len(t, predictions, 2)
			for _, p := range predictions {
				assert.Contains(t, p, "value")
			}
		})
	}
}

func TestImpactHandler_PlotsAndExport(t *testing.T) {
	router := newTestRouter(t, nil)
	upload(t, router)

	rec := do(t, router, http.MethodGet, "/api/impact/plots/reading_score", "", "")
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())

	rec = do(t, router, http.MethodGet, "/api/impact/plots/graduation_rate", "", "")
	assert.Equal(t, http.StatusBadRequest, rec.Code)

	rec = do(t, router, http.MethodGet, "/api/impact/plots/budget", "", "")
	assert.Equal(t, http.StatusBadRequest, rec.Code)

	rec = do(t, router, http.MethodGet, "/api/impact/export", "", "")
	require.Equal(t, http.StatusOK, rec.Code)
	lines := strings.Split(strings.TrimSpace(rec.Body.String()), "\n")
	// header plus 12 observations for each of 3 predictors and 2 outcomes
	assert.Len(t, lines, 1+12*3*2)
}
