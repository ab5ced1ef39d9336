package v1

import (
	"net/http"
	"strconv"

	"github.com/labstack/echo/v4"

	"github.com/ayushbarthwal/eatsafe/internal/datastore/repository"
	"github.com/ayushbarthwal/eatsafe/internal/errors"
)

// RunQualityTest handles POST /api/quality-tests/run
func (c *Controller) RunQualityTest(ctx echo.Context) error {
	var req RunTestRequest
	if err := bindJSON(ctx, &req); err != nil {
		return c.HandleError(ctx, err, "Invalid quality test request")
	}
	in, err := req.toInput()
	if err != nil {
		return c.HandleError(ctx, err, "Invalid quality test request")
	}

	test, err := c.Quality.RunQualityTest(ctx.Request().Context(), in)
	if err != nil {
		return c.HandleError(ctx, err, "Failed to run quality test")
	}
	return ctx.JSON(http.StatusCreated, newQualityTestResponse(test))
}

// ListQualityTests handles GET /api/quality-tests
func (c *Controller) ListQualityTests(ctx echo.Context) error {
	var filter repository.QualityTestFilter
	if raw := ctx.QueryParam("batchId"); raw != "" {
		id, err := strconv.ParseUint(raw, 10, 32)
		if err != nil || id == 0 {
			return c.HandleError(ctx, errors.ValidationError("batchId must be a positive integer"), "Invalid filter")
		}
		filter.BatchID = uint(id)
	}

	rows, err := c.Quality.ListQualityTests(ctx.Request().Context(), filter)
	if err != nil {
		return c.HandleError(ctx, err, "Failed to list quality tests")
	}
	out := make([]QualityTestRowResponse, 0, len(rows))
	for i := range rows {
		out = append(out, newQualityTestRowResponse(&rows[i]))
	}
	return ctx.JSON(http.StatusOK, out)
}

// Predict handles POST /api/predict
func (c *Controller) Predict(ctx echo.Context) error {
	var req PredictRequest
	if err := bindJSON(ctx, &req); err != nil {
		return c.HandleError(ctx, err, "Invalid prediction request")
	}
	in, err := req.toInput()
	if err != nil {
		return c.HandleError(ctx, err, "Invalid prediction request")
	}

	res, err := c.Quality.Predict(ctx.Request().Context(), in)
	if err != nil {
		return c.HandleError(ctx, err, "Failed to predict contamination")
	}
	status := http.StatusOK
	if res.Saved {
		status = http.StatusCreated
	}
	return ctx.JSON(status, PredictResponse{
		Temperature:  res.Temperature,
		Humidity:     res.Humidity,
		CFU:          res.Forecast.CFU,
		Risk:         res.Forecast.Risk,
		Saved:        res.Saved,
		PredictionID: res.PredictionID,
	})
}

// RunQualityAndPrediction handles POST /api/run-quality-and-prediction.
// Without a batchId the most recent active batch is used.
func (c *Controller) RunQualityAndPrediction(ctx echo.Context) error {
	var req AutoRunRequest
	if err := bindJSON(ctx, &req); err != nil {
		return c.HandleError(ctx, err, "Invalid auto-run request")
	}
	batchID, err := positiveID("batchId", req.BatchID)
	if err != nil {
		return c.HandleError(ctx, err, "Invalid auto-run request")
	}

	res, err := c.Quality.RunQualityAndPrediction(ctx.Request().Context(), batchID)
	if err != nil {
		return c.HandleError(ctx, err, "Failed to run quality test and prediction")
	}
	return ctx.JSON(http.StatusCreated, AutoRunResponse{
		Batch:      newBatchResponse(res.Batch),
		Test:       newQualityTestResponse(res.Test),
		Prediction: newPredictionResponse(res.Prediction),
	})
}

// ListPredictions handles GET /api/predictions?limit=
func (c *Controller) ListPredictions(ctx echo.Context) error {
	limit := repository.DefaultPredictionLimit
	if raw := ctx.QueryParam("limit"); raw != "" {
		n, err := strconv.Atoi(raw)
		if err != nil || n <= 0 {
			return c.HandleError(ctx, errors.ValidationError("limit must be a positive integer"), "Invalid limit")
		}
		limit = min(n, repository.MaxPredictionLimit)
	}

	predictions, err := c.Quality.ListPredictions(ctx.Request().Context(), limit)
	if err != nil {
		return c.HandleError(ctx, err, "Failed to list predictions")
	}
	return ctx.JSON(http.StatusOK, mapSlice(predictions, newPredictionResponse))
}
