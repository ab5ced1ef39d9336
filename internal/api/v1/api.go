// Package v1 implements the EatSafe JSON API mounted under /api.
//
// Handlers translate between camelCase JSON and the quality service or the
// repositories. Errors carry an errors.ErrorCategory that HandleError maps
// to the HTTP status code.
package v1

import (
	"context"
	"net/http"
	"strconv"
	"time"

	"github.com/google/uuid"
	"github.com/labstack/echo/v4"

	mw "github.com/ayushbarthwal/eatsafe/internal/api/middleware"
	"github.com/ayushbarthwal/eatsafe/internal/backup"
	"github.com/ayushbarthwal/eatsafe/internal/conf"
	"github.com/ayushbarthwal/eatsafe/internal/datastore/entities"
	"github.com/ayushbarthwal/eatsafe/internal/datastore/repository"
	"github.com/ayushbarthwal/eatsafe/internal/errors"
	"github.com/ayushbarthwal/eatsafe/internal/logger"
	"github.com/ayushbarthwal/eatsafe/internal/privacy"
	"github.com/ayushbarthwal/eatsafe/internal/quality"
	"github.com/ayushbarthwal/eatsafe/internal/safety"
)

// QualityService runs tests and forecasts and builds the reports.
// *quality.Service implements it.
type QualityService interface {
	RunQualityTest(ctx context.Context, in quality.RunTestInput) (*entities.QualityTest, error)
	Predict(ctx context.Context, in quality.PredictInput) (*quality.PredictionResult, error)
	RunQualityAndPrediction(ctx context.Context, batchID *uint) (*quality.AutoRunResult, error)
	ListQualityTests(ctx context.Context, filter repository.QualityTestFilter) ([]repository.QualityTestRow, error)
	ListPredictions(ctx context.Context, limit int) ([]*entities.Prediction, error)
	FullQualityReport(ctx context.Context, risk *safety.RiskLabel) ([]quality.ReportRow, error)
	SupplierPerformance(ctx context.Context) ([]safety.Reliability, error)
	DashboardOverview(ctx context.Context) (quality.Overview, error)
	DashboardCharts(ctx context.Context) (quality.Charts, error)
	InvalidateCache()
}

// BackupRunner runs one backup. *backup.Manager implements it.
type BackupRunner interface {
	RunBackup(ctx context.Context, opts backup.RunOptions) (*backup.Report, error)
}

// Pinger checks the database connection. datastore.Manager implements it.
type Pinger interface {
	Ping(ctx context.Context) error
}

// Controller manages the API routes and their dependencies.
type Controller struct {
	Quality  QualityService
	Repos    *repository.Repositories
	Backups  BackupRunner // nil when backups are disabled
	DB       Pinger
	Settings *conf.Settings

	log       logger.Logger
	startTime time.Time
	dataDir   string
}

// Option configures a Controller.
type Option func(*Controller)

// WithBackups enables the backup snapshot endpoint.
func WithBackups(b BackupRunner) Option {
	return func(c *Controller) { c.Backups = b }
}

// WithPinger reports database connectivity in the health check.
func WithPinger(p Pinger) Option {
	return func(c *Controller) { c.DB = p }
}

// WithLogger sets the controller logger.
func WithLogger(l logger.Logger) Option {
	return func(c *Controller) { c.log = l }
}

// WithDataDir sets the directory whose disk usage the health check reports.
func WithDataDir(dir string) Option {
	return func(c *Controller) { c.dataDir = dir }
}

// New creates a controller. Routes are mounted by RegisterRoutes.
func New(svc QualityService, repos *repository.Repositories, settings *conf.Settings, opts ...Option) *Controller {
	c := &Controller{
		Quality:   svc,
		Repos:     repos,
		Settings:  settings,
		log:       logger.Global().Module("api"),
		startTime: time.Now(),
		dataDir:   ".",
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// RegisterRoutes mounts every endpoint under /api.
func (c *Controller) RegisterRoutes(e *echo.Echo) {
	g := e.Group("/api")

	g.GET("/health", c.HealthCheck)

	c.initCatalogRoutes(g)
	c.initQualityRoutes(g)
	c.initReportRoutes(g)
	c.initBackupRoutes(g)
}

func (c *Controller) initCatalogRoutes(g *echo.Group) {
	g.GET("/food", c.ListFoodItems)
	g.POST("/food", c.CreateFoodItem)
	g.GET("/food/:id", c.GetFoodItem)
	g.PUT("/food/:id", c.UpdateFoodItem)
	g.DELETE("/food/:id", c.DeleteFoodItem)

	g.GET("/supplier", c.ListSuppliers)
	g.POST("/supplier", c.CreateSupplier)
	g.GET("/supplier/:id", c.GetSupplier)
	g.PUT("/supplier/:id", c.UpdateSupplier)
	g.DELETE("/supplier/:id", c.DeleteSupplier)

	g.GET("/batch", c.ListBatches)
	g.POST("/batch", c.CreateBatch)
	g.GET("/batch/:id", c.GetBatch)
	g.PUT("/batch/:id", c.UpdateBatch)
	g.PATCH("/batch/:id/status", c.UpdateBatchStatus)
	g.DELETE("/batch/:id", c.DeleteBatch)

	g.GET("/inspector", c.ListInspectors)
	g.POST("/inspector", c.CreateInspector)
	g.GET("/inspector/:id", c.GetInspector)
	g.DELETE("/inspector/:id", c.DeleteInspector)
}

func (c *Controller) initQualityRoutes(g *echo.Group) {
	g.POST("/quality-tests/run", c.RunQualityTest)
	g.GET("/quality-tests", c.ListQualityTests)
	g.POST("/predict", c.Predict)
	g.POST("/run-quality-and-prediction", c.RunQualityAndPrediction)
	g.GET("/predictions", c.ListPredictions)
}

func (c *Controller) initReportRoutes(g *echo.Group) {
	g.GET("/supplier-performance", c.SupplierPerformance)
	g.GET("/full-quality-report", c.FullQualityReport)
	g.GET("/all-quality-report", c.AllQualityReport)
	g.GET("/dashboard-overview", c.DashboardOverview)
	g.GET("/dashboard-charts", c.DashboardCharts)
}

func (c *Controller) initBackupRoutes(g *echo.Group) {
	g.GET("/backup-auditlog", c.BackupAuditLog)
	g.POST("/create-backup-snapshot", c.CreateBackupSnapshot)
}

// ErrorResponse is the body of every error reply.
type ErrorResponse struct {
	Error         string `json:"error"`
	Message       string `json:"message"`
	Code          int    `json:"code"`
	CorrelationID string `json:"correlation_id"`
}

// NewErrorResponse creates a new API error response.
func NewErrorResponse(err error, message string, code int, correlationID string) *ErrorResponse {
	if correlationID == "" {
		correlationID = uuid.NewString()
	}
	errorStr := message
	if err != nil {
		errorStr = privacy.ScrubMessage(err.Error())
	}
	return &ErrorResponse{
		Error:         errorStr,
		Message:       message,
		Code:          code,
		CorrelationID: correlationID,
	}
}

// StatusCode maps an error to its HTTP status code.
func StatusCode(err error) int {
	var he *echo.HTTPError
	switch {
	case err == nil:
		return http.StatusOK
	case errors.As(err, &he):
		return he.Code
	case errors.IsCategory(err, errors.CategoryValidation):
		return http.StatusBadRequest
	case errors.IsCategory(err, errors.CategoryNotFound):
		return http.StatusNotFound
	case errors.IsCategory(err, errors.CategoryConflict):
		return http.StatusConflict
	}
	return http.StatusInternalServerError
}

// HandleError writes an ErrorResponse for err with the status derived from
// its category.
func (c *Controller) HandleError(ctx echo.Context, err error, message string) error {
	code := StatusCode(err)
	resp := NewErrorResponse(err, message, code, mw.RequestID(ctx))

	fields := []logger.Field{
		logger.String("correlation_id", resp.CorrelationID),
		logger.String("path", ctx.Path()),
		logger.Int("status", code),
		logger.String("message", message),
		logger.Error(err),
	}
	log := c.log.WithContext(ctx.Request().Context())
	if code >= http.StatusInternalServerError {
		log.Error("API error", fields...)
	} else {
		log.Debug("API request rejected", fields...)
	}

	if code >= http.StatusInternalServerError {
		// Internal details stay in the log.
		resp.Error = http.StatusText(code)
	}
	return ctx.JSON(code, resp)
}

// parseID reads a positive numeric path parameter.
func parseID(ctx echo.Context, name string) (uint, error) {
	raw := ctx.Param(name)
	id, err := strconv.ParseUint(raw, 10, 32)
	if err != nil || id == 0 {
		return 0, errors.ValidationError(name + " must be a positive integer, got " + strconv.Quote(raw))
	}
	return uint(id), nil
}

// bindJSON decodes the request body into dst, reporting malformed JSON as
// a validation error.
func bindJSON(ctx echo.Context, dst any) error {
	if err := (&echo.DefaultBinder{}).BindBody(ctx, dst); err != nil {
		msg := "invalid request body"
		var he *echo.HTTPError
		if errors.As(err, &he) {
			if s, ok := he.Message.(string); ok {
				msg = s
			}
		}
		return errors.ValidationError(msg)
	}
	return nil
}
