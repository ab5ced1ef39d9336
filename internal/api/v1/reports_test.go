package v1

import (
	"net/http"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"github.com/ayushbarthwal/eatsafe/internal/quality"
	"github.com/ayushbarthwal/eatsafe/internal/safety"
)

func intPtr(v int) *int { return &v }

func TestSupplierPerformanceNoData(t *testing.T) {
	env := setupTestEnvironment(t)
	env.quality.On("SupplierPerformance", mock.Anything).Return([]safety.Reliability{
		{Supplier: safety.SupplierRef{ID: 1, Name: "Acme"}, Pct: intPtr(80), Total: 5, Failed: 1},
		{Supplier: safety.SupplierRef{ID: 2, Name: "Zeta"}},
	}, nil)

	rec := env.do(http.MethodGet, "/api/supplier-performance", "")
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())

	rows := decode[[]map[string]any](t, rec)
	require.Len(t, rows, 2)
	assert.InDelta(t, 80, rows[0]["reliabilityPct"], 0)
	assert.Equal(t, "Medium", rows[0]["badge"])
	assert.Equal(t, true, rows[0]["hasData"])

	require.Contains(t, rows[1], "reliabilityPct")
	assert.Nil(t, rows[1]["reliabilityPct"])
	assert.Equal(t, "No Data", rows[1]["badge"])
	assert.Equal(t, false, rows[1]["hasData"])
	assert.InDelta(t, 0, rows[1]["totalTests"], 0)
}

func TestFullQualityReport(t *testing.T) {
	date := time.Date(2025, 1, 2, 3, 4, 5, 0, time.UTC)
	rows := []quality.ReportRow{
		{TestID: 2, Food: "Milk", Supplier: "Acme", CFU: 1200, Risk: safety.HighRisk, Result: safety.Fail, TestDate: date},
	}

	t.Run("filtered", func(t *testing.T) {
		env := setupTestEnvironment(t)
		high := safety.HighRisk
		env.quality.On("FullQualityReport", mock.Anything, &high).Return(rows, nil)

		rec := env.do(http.MethodGet, "/api/full-quality-report?risk=high%20risk", "")
		require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
		got := decode[[]ReportRowResponse](t, rec)
		require.Len(t, got, 1)
		assert.Equal(t, uint(2), got[0].TestID)
		assert.Equal(t, 1200, got[0].CFU)
		assert.Contains(t, rec.Body.String(), `"risk":"High Risk"`)
		assert.Contains(t, rec.Body.String(), `"result":"Fail"`)
	})

	t.Run("unfiltered", func(t *testing.T) {
		env := setupTestEnvironment(t)
		env.quality.On("FullQualityReport", mock.Anything, (*safety.RiskLabel)(nil)).Return(rows, nil).Twice()

		assert.Equal(t, http.StatusOK, env.do(http.MethodGet, "/api/full-quality-report", "").Code)
		assert.Equal(t, http.StatusOK, env.do(http.MethodGet, "/api/all-quality-report", "").Code)
	})

	t.Run("unknown label", func(t *testing.T) {
		env := setupTestEnvironment(t)
		rec := env.do(http.MethodGet, "/api/full-quality-report?risk=Extreme", "")
		assert.Equal(t, http.StatusBadRequest, rec.Code)
	})

	t.Run("empty report is an empty array", func(t *testing.T) {
		env := setupTestEnvironment(t)
		env.quality.On("FullQualityReport", mock.Anything, (*safety.RiskLabel)(nil)).Return(nil, nil)

		rec := env.do(http.MethodGet, "/api/all-quality-report", "")
		require.Equal(t, http.StatusOK, rec.Code)
		assert.JSONEq(t, "[]", rec.Body.String())
	})
}

func TestDashboards(t *testing.T) {
	env := setupTestEnvironment(t)
	env.quality.On("DashboardOverview", mock.Anything).
		Return(quality.Overview{FoodItems: 3, Suppliers: 2, Batches: 4, Reports: 9}, nil)
	env.quality.On("DashboardCharts", mock.Anything).
		Return(quality.Charts{Passed: 6, Failed: 3, Safe: 5, ModerateRisk: 3, HighRisk: 1}, nil)

	rec := env.do(http.MethodGet, "/api/dashboard-overview", "")
	require.Equal(t, http.StatusOK, rec.Code)
	assert.JSONEq(t, `{"foodItems":3,"suppliers":2,"batches":4,"reports":9}`, rec.Body.String())

	rec = env.do(http.MethodGet, "/api/dashboard-charts", "")
	require.Equal(t, http.StatusOK, rec.Code)
	assert.JSONEq(t, `{"passed":6,"failed":3,"safe":5,"moderateRisk":3,"highRisk":1}`, rec.Body.String())
}
