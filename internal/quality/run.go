package quality

import (
	"context"
	"strings"

	"github.com/ayushbarthwal/eatsafe/internal/alerts"
	"github.com/ayushbarthwal/eatsafe/internal/datastore/entities"
	"github.com/ayushbarthwal/eatsafe/internal/datastore/repository"
	"github.com/ayushbarthwal/eatsafe/internal/errors"
	"github.com/ayushbarthwal/eatsafe/internal/logger"
	"github.com/ayushbarthwal/eatsafe/internal/safety"
)

// RunTestInput is a quality test request. Readings left nil are synthesized.
type RunTestInput struct {
	BatchID     uint
	InspectorID *uint
	Reading     safety.PartialLabReading
	Notes       string
}

// RunQualityTest evaluates a lab reading for a batch and stores the result.
func (s *Service) RunQualityTest(ctx context.Context, in RunTestInput) (*entities.QualityTest, error) {
	if in.BatchID == 0 {
		return nil, errors.ValidationError("batchId is required and must be positive")
	}
	if in.InspectorID != nil && *in.InspectorID == 0 {
		return nil, errors.ValidationError("inspectorId must be positive")
	}

	reading, err := safety.CompleteLabReading(ctx, s.source, in.Reading)
	if err != nil {
		return nil, s.sourceError(err)
	}
	return s.storeTest(ctx, in.BatchID, in.InspectorID, reading, in.Notes)
}

func (s *Service) storeTest(ctx context.Context, batchID uint, inspectorID *uint, reading safety.LabReading, notes string) (*entities.QualityTest, error) {
	test := &entities.QualityTest{
		BatchID:       batchID,
		InspectorID:   inspectorID,
		PH:            reading.PH,
		MoisturePct:   reading.MoisturePct,
		BacteriaCount: reading.BacteriaCount,
		Result:        safety.EvaluateLabResult(reading.MoisturePct, reading.BacteriaCount),
		Notes:         strings.TrimSpace(notes),
	}
	if err := s.repos.QualityTests.Create(ctx, test); err != nil {
		return nil, err
	}
	s.InvalidateCache()
	s.metrics.RecordQualityTest(test.Result.String())

	risk := safety.ClassifyRisk(test.BacteriaCount)
	s.log.Info("quality test recorded",
		logger.Uint64("test_id", uint64(test.ID)),
		logger.Uint64("batch_id", uint64(batchID)),
		logger.Int("bacteria_count", test.BacteriaCount),
		logger.String("result", test.Result.String()))

	result := test.Result
	s.notify(alerts.Alert{
		Kind:      alerts.KindQualityTest,
		BatchID:   &test.BatchID,
		CFU:       test.BacteriaCount,
		Risk:      risk,
		Result:    &result,
		Timestamp: test.TestDate,
	})
	return test, nil
}

// PredictInput is a forecast request.
type PredictInput struct {
	Temperature float64
	Humidity    float64
	BatchID     *uint
	Save        bool
}

// PredictionResult is the forecast and, when saved, the stored row ID.
type PredictionResult struct {
	Temperature  float64
	Humidity     float64
	Forecast     safety.Forecast
	Saved        bool
	PredictionID *uint
}

// Predict forecasts contamination for the given storage conditions and
// stores the prediction when in.Save is set.
func (s *Service) Predict(ctx context.Context, in PredictInput) (*PredictionResult, error) {
	if in.BatchID != nil && *in.BatchID == 0 {
		return nil, errors.ValidationError("batchId must be positive")
	}
	if err := safety.ValidateConditions(in.Temperature, in.Humidity); err != nil {
		return nil, err
	}

	forecast := safety.Predict(in.Temperature, in.Humidity)
	s.metrics.RecordPrediction(forecast.Risk.String(), forecast.CFU)

	out := &PredictionResult{
		Temperature: in.Temperature,
		Humidity:    in.Humidity,
		Forecast:    forecast,
	}
	if !in.Save {
		return out, nil
	}

	p, err := s.storePrediction(ctx, in.BatchID, safety.Conditions{Temperature: in.Temperature, Humidity: in.Humidity}, forecast)
	if err != nil {
		return nil, err
	}
	out.Saved = true
	out.PredictionID = &p.ID
	return out, nil
}

func (s *Service) storePrediction(ctx context.Context, batchID *uint, env safety.Conditions, forecast safety.Forecast) (*entities.Prediction, error) {
	p := &entities.Prediction{
		BatchID:     batchID,
		Temperature: env.Temperature,
		Humidity:    env.Humidity,
		CFU:         forecast.CFU,
		Risk:        forecast.Risk,
	}
	if err := s.repos.Predictions.Create(ctx, p); err != nil {
		return nil, err
	}

	s.log.Info("prediction stored",
		logger.Uint64("prediction_id", uint64(p.ID)),
		logger.Int("cfu", p.CFU),
		logger.String("risk", p.Risk.String()))
	s.notify(alerts.Alert{
		Kind:      alerts.KindPrediction,
		BatchID:   batchID,
		CFU:       p.CFU,
		Risk:      p.Risk,
		Timestamp: p.CreatedAt,
	})
	return p, nil
}

// AutoRunResult is the outcome of RunQualityAndPrediction.
type AutoRunResult struct {
	Batch      *entities.Batch
	Test       *entities.QualityTest
	Prediction *entities.Prediction
}

// RunQualityAndPrediction synthesizes a lab reading and storage conditions
// for one batch, then stores a quality test and a prediction. A nil batchID
// selects the most recent active batch.
func (s *Service) RunQualityAndPrediction(ctx context.Context, batchID *uint) (*AutoRunResult, error) {
	var (
		batch *entities.Batch
		err   error
	)
	if batchID != nil {
		if *batchID == 0 {
			return nil, errors.ValidationError("batchId must be positive")
		}
		batch, err = s.repos.Batches.GetByID(ctx, *batchID)
	} else {
		batch, err = s.repos.Batches.LatestActive(ctx)
	}
	if err != nil {
		return nil, err
	}

	reading, env, err := safety.ReadAll(ctx, s.source)
	if err != nil {
		return nil, s.sourceError(err)
	}

	test, err := s.storeTest(ctx, batch.ID, nil, reading, "auto-run")
	if err != nil {
		return nil, err
	}

	forecast := safety.Predict(env.Temperature, env.Humidity)
	s.metrics.RecordPrediction(forecast.Risk.String(), forecast.CFU)
	id := batch.ID
	prediction, err := s.storePrediction(ctx, &id, env, forecast)
	if err != nil {
		return nil, err
	}

	return &AutoRunResult{Batch: batch, Test: test, Prediction: prediction}, nil
}

// ListQualityTests returns stored tests with their food, supplier and
// inspector names, newest first.
func (s *Service) ListQualityTests(ctx context.Context, filter repository.QualityTestFilter) ([]repository.QualityTestRow, error) {
	return s.repos.QualityTests.List(ctx, filter)
}

// ListPredictions returns stored predictions, newest first.
func (s *Service) ListPredictions(ctx context.Context, limit int) ([]*entities.Prediction, error) {
	return s.repos.Predictions.List(ctx, limit)
}

func (s *Service) sourceError(err error) error {
	return errors.New(err).
		Component("quality").
		Category(errors.CategoryNetwork).
		Context("operation", "read_source").
		Build()
}
