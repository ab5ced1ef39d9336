package v1

import (
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/ayushbarthwal/eatsafe/internal/safety"
)

// SupplierPerformance handles GET /api/supplier-performance
func (c *Controller) SupplierPerformance(ctx echo.Context) error {
	perf, err := c.Quality.SupplierPerformance(ctx.Request().Context())
	if err != nil {
		return c.HandleError(ctx, err, "Failed to compute supplier performance")
	}
	return ctx.JSON(http.StatusOK, mapSlice(perf, newSupplierPerformanceResponse))
}

// FullQualityReport handles GET /api/full-quality-report?risk=
func (c *Controller) FullQualityReport(ctx echo.Context) error {
	var filter *safety.RiskLabel
	if raw := ctx.QueryParam("risk"); raw != "" {
		label, err := safety.ParseRiskLabel(raw)
		if err != nil {
			return c.HandleError(ctx, err, "Invalid risk filter")
		}
		filter = &label
	}
	return c.qualityReport(ctx, filter)
}

// AllQualityReport handles GET /api/all-quality-report
func (c *Controller) AllQualityReport(ctx echo.Context) error {
	return c.qualityReport(ctx, nil)
}

func (c *Controller) qualityReport(ctx echo.Context, risk *safety.RiskLabel) error {
	rows, err := c.Quality.FullQualityReport(ctx.Request().Context(), risk)
	if err != nil {
		return c.HandleError(ctx, err, "Failed to build quality report")
	}
	out := make([]ReportRowResponse, 0, len(rows))
	for i := range rows {
		out = append(out, newReportRowResponse(&rows[i]))
	}
	return ctx.JSON(http.StatusOK, out)
}

// DashboardOverview handles GET /api/dashboard-overview
func (c *Controller) DashboardOverview(ctx echo.Context) error {
	o, err := c.Quality.DashboardOverview(ctx.Request().Context())
	if err != nil {
		return c.HandleError(ctx, err, "Failed to load dashboard overview")
	}
	return ctx.JSON(http.StatusOK, OverviewResponse{
		FoodItems: o.FoodItems,
		Suppliers: o.Suppliers,
		Batches:   o.Batches,
		Reports:   o.Reports,
	})
}

// DashboardCharts handles GET /api/dashboard-charts
func (c *Controller) DashboardCharts(ctx echo.Context) error {
	ch, err := c.Quality.DashboardCharts(ctx.Request().Context())
	if err != nil {
		return c.HandleError(ctx, err, "Failed to load dashboard charts")
	}
	return ctx.JSON(http.StatusOK, ChartsResponse{
		Passed:       ch.Passed,
		Failed:       ch.Failed,
		Safe:         ch.Safe,
		ModerateRisk: ch.ModerateRisk,
		HighRisk:     ch.HighRisk,
	})
}
