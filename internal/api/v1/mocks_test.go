package v1

import (
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"path/filepath"
	"strconv"
	"strings"
	"testing"

	"github.com/labstack/echo/v4"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"github.com/ayushbarthwal/eatsafe/internal/backup"
	"github.com/ayushbarthwal/eatsafe/internal/conf"
	"github.com/ayushbarthwal/eatsafe/internal/datastore"
	"github.com/ayushbarthwal/eatsafe/internal/datastore/entities"
	"github.com/ayushbarthwal/eatsafe/internal/datastore/repository"
	"github.com/ayushbarthwal/eatsafe/internal/logger"
	"github.com/ayushbarthwal/eatsafe/internal/quality"
	"github.com/ayushbarthwal/eatsafe/internal/safety"
)

// MockQualityService is a testify mock of QualityService.
type MockQualityService struct {
	mock.Mock
}

func (m *MockQualityService) RunQualityTest(ctx context.Context, in quality.RunTestInput) (*entities.QualityTest, error) {
	args := m.Called(ctx, in)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*entities.QualityTest), args.Error(1)
}

func (m *MockQualityService) Predict(ctx context.Context, in quality.PredictInput) (*quality.PredictionResult, error) {
	args := m.Called(ctx, in)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*quality.PredictionResult), args.Error(1)
}

func (m *MockQualityService) RunQualityAndPrediction(ctx context.Context, batchID *uint) (*quality.AutoRunResult, error) {
	args := m.Called(ctx, batchID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*quality.AutoRunResult), args.Error(1)
}

func (m *MockQualityService) ListQualityTests(ctx context.Context, filter repository.QualityTestFilter) ([]repository.QualityTestRow, error) {
	args := m.Called(ctx, filter)
	rows, _ := args.Get(0).([]repository.QualityTestRow)
	return rows, args.Error(1)
}

func (m *MockQualityService) ListPredictions(ctx context.Context, limit int) ([]*entities.Prediction, error) {
	args := m.Called(ctx, limit)
	out, _ := args.Get(0).([]*entities.Prediction)
	return out, args.Error(1)
}

func (m *MockQualityService) FullQualityReport(ctx context.Context, risk *safety.RiskLabel) ([]quality.ReportRow, error) {
	args := m.Called(ctx, risk)
	rows, _ := args.Get(0).([]quality.ReportRow)
	return rows, args.Error(1)
}

func (m *MockQualityService) SupplierPerformance(ctx context.Context) ([]safety.Reliability, error) {
	args := m.Called(ctx)
	out, _ := args.Get(0).([]safety.Reliability)
	return out, args.Error(1)
}

func (m *MockQualityService) DashboardOverview(ctx context.Context) (quality.Overview, error) {
	args := m.Called(ctx)
	return args.Get(0).(quality.Overview), args.Error(1)
}

func (m *MockQualityService) DashboardCharts(ctx context.Context) (quality.Charts, error) {
	args := m.Called(ctx)
	return args.Get(0).(quality.Charts), args.Error(1)
}

func (m *MockQualityService) InvalidateCache() {
	m.Called()
}

// MockBackupRunner is a testify mock of BackupRunner.
type MockBackupRunner struct {
	mock.Mock
}

func (m *MockBackupRunner) RunBackup(ctx context.Context, opts backup.RunOptions) (*backup.Report, error) {
	args := m.Called(ctx, opts)
	report, _ := args.Get(0).(*backup.Report)
	return report, args.Error(1)
}

// MockPinger is a testify mock of Pinger.
type MockPinger struct {
	mock.Mock
}

func (m *MockPinger) Ping(ctx context.Context) error {
	return m.Called(ctx).Error(0)
}

// testEnv wires a controller to a migrated SQLite database and a mocked
// quality service.
type testEnv struct {
	e       *echo.Echo
	ctrl    *Controller
	quality *MockQualityService
	repos   *repository.Repositories
}

func setupTestEnvironment(t *testing.T, opts ...Option) *testEnv {
	t.Helper()

	mgr, err := datastore.NewSQLiteManager(filepath.Join(t.TempDir(), "api_test.db"), datastore.Options{
		Logger: logger.NewDiscardLogger(),
	})
	require.NoError(t, err)
	t.Cleanup(func() { _ = mgr.Close() })
	require.NoError(t, mgr.Initialize(t.Context()))

	svc := &MockQualityService{}
	repos := repository.New(mgr.DB())
	opts = append([]Option{WithLogger(logger.NewDiscardLogger()), WithDataDir(t.TempDir())}, opts...)
	ctrl := New(svc, repos, &conf.Settings{Version: "test"}, opts...)

	e := echo.New()
	ctrl.RegisterRoutes(e)
	t.Cleanup(func() { svc.AssertExpectations(t) })

	return &testEnv{e: e, ctrl: ctrl, quality: svc, repos: repos}
}

// do sends a request through the router. body is sent as JSON when non-empty.
func (env *testEnv) do(method, target, body string, header ...string) *httptest.ResponseRecorder {
	var r io.Reader = http.NoBody
	if body != "" {
		r = strings.NewReader(body)
	}
	req := httptest.NewRequest(method, target, r)
	if body != "" {
		req.Header.Set(echo.HeaderContentType, echo.MIMEApplicationJSON)
	}
	for i := 0; i+1 < len(header); i += 2 {
		req.Header.Set(header[i], header[i+1])
	}
	rec := httptest.NewRecorder()
	env.e.ServeHTTP(rec, req)
	return rec
}

func decode[T any](t *testing.T, rec *httptest.ResponseRecorder) T {
	t.Helper()
	var v T
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &v), rec.Body.String())
	return v
}

// seedCatalog inserts one food item, supplier and active batch.
func seedCatalog(t *testing.T, repos *repository.Repositories) (*entities.FoodItem, *entities.Supplier, *entities.Batch) {
	t.Helper()
	ctx := t.Context()
	food := &entities.FoodItem{Name: "Milk", Category: "Dairy"}
	require.NoError(t, repos.FoodItems.Create(ctx, food))
	supplier := &entities.Supplier{Name: "Fresh Farms"}
	require.NoError(t, repos.Suppliers.Create(ctx, supplier))
	batch := &entities.Batch{FoodItemID: food.ID, SupplierID: supplier.ID, Quantity: 10}
	require.NoError(t, repos.Batches.Create(ctx, batch))
	return food, supplier, batch
}

func itoa(id uint) string {
	return strconv.FormatUint(uint64(id), 10)
}
