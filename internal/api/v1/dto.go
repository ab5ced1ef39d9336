package v1

import (
	"strings"
	"time"

	"github.com/ayushbarthwal/eatsafe/internal/datastore/entities"
	"github.com/ayushbarthwal/eatsafe/internal/datastore/repository"
	"github.com/ayushbarthwal/eatsafe/internal/errors"
	"github.com/ayushbarthwal/eatsafe/internal/quality"
	"github.com/ayushbarthwal/eatsafe/internal/safety"
)

// DateLayout is the wire format of batch production and expiry dates.
const DateLayout = "2006-01-02"

// FoodItemRequest is the body of POST and PUT /api/food.
type FoodItemRequest struct {
	Name        string `json:"name"`
	Category    string `json:"category"`
	Description string `json:"description"`
}

func (r *FoodItemRequest) toEntity(id uint) (*entities.FoodItem, error) {
	name := strings.TrimSpace(r.Name)
	if name == "" {
		return nil, errors.ValidationError("name is required")
	}
	return &entities.FoodItem{
		ID:          id,
		Name:        name,
		Category:    strings.TrimSpace(r.Category),
		Description: strings.TrimSpace(r.Description),
	}, nil
}

// FoodItemResponse is a food item.
type FoodItemResponse struct {
	ID          uint      `json:"id"`
	Name        string    `json:"name"`
	Category    string    `json:"category"`
	Description string    `json:"description"`
	CreatedAt   time.Time `json:"createdAt"`
}

func newFoodItemResponse(f *entities.FoodItem) FoodItemResponse {
	return FoodItemResponse{
		ID:          f.ID,
		Name:        f.Name,
		Category:    f.Category,
		Description: f.Description,
		CreatedAt:   f.CreatedAt,
	}
}

// SupplierRequest is the body of POST and PUT /api/supplier.
type SupplierRequest struct {
	Name        string `json:"name"`
	ContactName string `json:"contactName"`
	Phone       string `json:"phone"`
	Email       string `json:"email"`
	Address     string `json:"address"`
}

func (r *SupplierRequest) toEntity(id uint) (*entities.Supplier, error) {
	name := strings.TrimSpace(r.Name)
	if name == "" {
		return nil, errors.ValidationError("name is required")
	}
	return &entities.Supplier{
		ID:          id,
		Name:        name,
		ContactName: strings.TrimSpace(r.ContactName),
		Phone:       strings.TrimSpace(r.Phone),
		Email:       strings.TrimSpace(r.Email),
		Address:     strings.TrimSpace(r.Address),
	}, nil
}

// SupplierResponse is a supplier.
type SupplierResponse struct {
	ID          uint      `json:"id"`
	Name        string    `json:"name"`
	ContactName string    `json:"contactName"`
	Phone       string    `json:"phone"`
	Email       string    `json:"email"`
	Address     string    `json:"address"`
	CreatedAt   time.Time `json:"createdAt"`
}

func newSupplierResponse(s *entities.Supplier) SupplierResponse {
	return SupplierResponse{
		ID:          s.ID,
		Name:        s.Name,
		ContactName: s.ContactName,
		Phone:       s.Phone,
		Email:       s.Email,
		Address:     s.Address,
		CreatedAt:   s.CreatedAt,
	}
}

// BatchRequest is the body of POST and PUT /api/batch. Dates use DateLayout.
type BatchRequest struct {
	FoodItemID     uint    `json:"foodItemId"`
	SupplierID     uint    `json:"supplierId"`
	Quantity       int     `json:"quantity"`
	ProductionDate *string `json:"productionDate"`
	ExpiryDate     *string `json:"expiryDate"`
	Status         string  `json:"status"`
}

func (r *BatchRequest) toEntity(id uint) (*entities.Batch, error) {
	if r.FoodItemID == 0 {
		return nil, errors.ValidationError("foodItemId is required")
	}
	if r.SupplierID == 0 {
		return nil, errors.ValidationError("supplierId is required")
	}
	if r.Quantity < 0 {
		return nil, errors.ValidationError("quantity must not be negative")
	}
	produced, err := parseDate("productionDate", r.ProductionDate)
	if err != nil {
		return nil, err
	}
	expires, err := parseDate("expiryDate", r.ExpiryDate)
	if err != nil {
		return nil, err
	}
	if produced != nil && expires != nil && expires.Before(*produced) {
		return nil, errors.ValidationError("expiryDate must not be before productionDate")
	}

	status := entities.BatchStatusActive
	if r.Status != "" {
		if status, err = entities.ParseBatchStatus(r.Status); err != nil {
			return nil, err
		}
	}
	return &entities.Batch{
		ID:             id,
		FoodItemID:     r.FoodItemID,
		SupplierID:     r.SupplierID,
		Quantity:       r.Quantity,
		ProductionDate: produced,
		ExpiryDate:     expires,
		Status:         status,
	}, nil
}

func parseDate(field string, s *string) (*time.Time, error) {
	if s == nil || strings.TrimSpace(*s) == "" {
		return nil, nil
	}
	t, err := time.Parse(DateLayout, strings.TrimSpace(*s))
	if err != nil {
		return nil, errors.ValidationError(field + " must be a date in YYYY-MM-DD format")
	}
	return &t, nil
}

func formatDate(t *time.Time) *string {
	if t == nil {
		return nil
	}
	s := t.Format(DateLayout)
	return &s
}

// BatchStatusRequest is the body of PATCH /api/batch/:id/status.
type BatchStatusRequest struct {
	Status string `json:"status"`
}

// BatchResponse is a batch.
type BatchResponse struct {
	ID             uint      `json:"id"`
	FoodItemID     uint      `json:"foodItemId"`
	SupplierID     uint      `json:"supplierId"`
	Quantity       int       `json:"quantity"`
	ProductionDate *string   `json:"productionDate"`
	ExpiryDate     *string   `json:"expiryDate"`
	Status         string    `json:"status"`
	CreatedAt      time.Time `json:"createdAt"`
}

func newBatchResponse(b *entities.Batch) BatchResponse {
	return BatchResponse{
		ID:             b.ID,
		FoodItemID:     b.FoodItemID,
		SupplierID:     b.SupplierID,
		Quantity:       b.Quantity,
		ProductionDate: formatDate(b.ProductionDate),
		ExpiryDate:     formatDate(b.ExpiryDate),
		Status:         string(b.Status),
		CreatedAt:      b.CreatedAt,
	}
}

// InspectorRequest is the body of POST /api/inspector.
type InspectorRequest struct {
	Name  string `json:"name"`
	Email string `json:"email"`
	Phone string `json:"phone"`
}

func (r *InspectorRequest) toEntity() (*entities.Inspector, error) {
	name := strings.TrimSpace(r.Name)
	if name == "" {
		return nil, errors.ValidationError("name is required")
	}
	return &entities.Inspector{
		Name:  name,
		Email: strings.TrimSpace(r.Email),
		Phone: strings.TrimSpace(r.Phone),
	}, nil
}

// InspectorResponse is an inspector.
type InspectorResponse struct {
	ID        uint      `json:"id"`
	Name      string    `json:"name"`
	Email     string    `json:"email"`
	Phone     string    `json:"phone"`
	CreatedAt time.Time `json:"createdAt"`
}

func newInspectorResponse(i *entities.Inspector) InspectorResponse {
	return InspectorResponse{
		ID:        i.ID,
		Name:      i.Name,
		Email:     i.Email,
		Phone:     i.Phone,
		CreatedAt: i.CreatedAt,
	}
}

// RunTestRequest is the body of POST /api/quality-tests/run. Readings left
// out are synthesized.
type RunTestRequest struct {
	BatchID       *int     `json:"batchId"`
	InspectorID   *int     `json:"inspectorId"`
	PH            *float64 `json:"ph"`
	MoisturePct   *float64 `json:"moisturePct"`
	BacteriaCount *int     `json:"bacteriaCount"`
	Notes         string   `json:"notes"`
}

func (r *RunTestRequest) toInput() (quality.RunTestInput, error) {
	batchID, err := positiveID("batchId", r.BatchID)
	if err != nil {
		return quality.RunTestInput{}, err
	}
	if batchID == nil {
		return quality.RunTestInput{}, errors.ValidationError("batchId is required and must be positive")
	}
	inspectorID, err := positiveID("inspectorId", r.InspectorID)
	if err != nil {
		return quality.RunTestInput{}, err
	}
	if r.BacteriaCount != nil && *r.BacteriaCount < 0 {
		return quality.RunTestInput{}, errors.ValidationError("bacteriaCount must not be negative")
	}
	if r.MoisturePct != nil && *r.MoisturePct < 0 {
		return quality.RunTestInput{}, errors.ValidationError("moisturePct must not be negative")
	}
	return quality.RunTestInput{
		BatchID:     *batchID,
		InspectorID: inspectorID,
		Reading: safety.PartialLabReading{
			PH:            r.PH,
			MoisturePct:   r.MoisturePct,
			BacteriaCount: r.BacteriaCount,
		},
		Notes: r.Notes,
	}, nil
}

// positiveID converts an optional JSON ID. Zero and negative IDs are
// rejected; nil stays nil.
func positiveID(field string, v *int) (*uint, error) {
	if v == nil {
		return nil, nil
	}
	if *v <= 0 {
		return nil, errors.ValidationError(field + " must be a positive integer")
	}
	id := uint(*v)
	return &id, nil
}

// QualityTestResponse is a stored quality test.
type QualityTestResponse struct {
	ID            uint           `json:"id"`
	BatchID       uint           `json:"batchId"`
	InspectorID   *uint          `json:"inspectorId"`
	PH            float64        `json:"ph"`
	MoisturePct   float64        `json:"moisturePct"`
	BacteriaCount int            `json:"bacteriaCount"`
	Result        safety.Verdict `json:"result"`
	Notes         string         `json:"notes"`
	TestDate      time.Time      `json:"testDate"`
}

func newQualityTestResponse(t *entities.QualityTest) QualityTestResponse {
	return QualityTestResponse{
		ID:            t.ID,
		BatchID:       t.BatchID,
		InspectorID:   t.InspectorID,
		PH:            t.PH,
		MoisturePct:   t.MoisturePct,
		BacteriaCount: t.BacteriaCount,
		Result:        t.Result,
		Notes:         t.Notes,
		TestDate:      t.TestDate,
	}
}

// QualityTestRowResponse is a listed quality test with related names.
type QualityTestRowResponse struct {
	QualityTestResponse
	FoodName      string  `json:"foodName"`
	SupplierID    uint    `json:"supplierId"`
	SupplierName  string  `json:"supplierName"`
	InspectorName *string `json:"inspectorName"`
}

func newQualityTestRowResponse(r *repository.QualityTestRow) QualityTestRowResponse {
	return QualityTestRowResponse{
		QualityTestResponse: QualityTestResponse{
			ID:            r.ID,
			BatchID:       r.BatchID,
			InspectorID:   r.InspectorID,
			PH:            r.PH,
			MoisturePct:   r.MoisturePct,
			BacteriaCount: r.BacteriaCount,
			Result:        r.Result,
			Notes:         r.Notes,
			TestDate:      r.TestDate,
		},
		FoodName:      r.FoodName,
		SupplierID:    r.SupplierID,
		SupplierName:  r.SupplierName,
		InspectorName: r.InspectorName,
	}
}

// PredictRequest is the body of POST /api/predict. Temperature and humidity
// are required.
type PredictRequest struct {
	Temperature *float64 `json:"temperature"`
	Humidity    *float64 `json:"humidity"`
	BatchID     *int     `json:"batchId"`
	Save        bool     `json:"save"`
}

func (r *PredictRequest) toInput() (quality.PredictInput, error) {
	if r.Temperature == nil {
		return quality.PredictInput{}, errors.ValidationError("temperature is required")
	}
	if r.Humidity == nil {
		return quality.PredictInput{}, errors.ValidationError("humidity is required")
	}
	if err := safety.ValidateConditions(*r.Temperature, *r.Humidity); err != nil {
		return quality.PredictInput{}, err
	}
	batchID, err := positiveID("batchId", r.BatchID)
	if err != nil {
		return quality.PredictInput{}, err
	}
	return quality.PredictInput{
		Temperature: *r.Temperature,
		Humidity:    *r.Humidity,
		BatchID:     batchID,
		Save:        r.Save,
	}, nil
}

// PredictResponse is a contamination forecast.
type PredictResponse struct {
	Temperature  float64          `json:"temperature"`
	Humidity     float64          `json:"humidity"`
	CFU          int              `json:"cfu"`
	Risk         safety.RiskLabel `json:"risk"`
	Saved        bool             `json:"saved"`
	PredictionID *uint            `json:"predictionId,omitempty"`
}

// PredictionResponse is a stored prediction.
type PredictionResponse struct {
	ID          uint             `json:"id"`
	BatchID     *uint            `json:"batchId"`
	Temperature float64          `json:"temperature"`
	Humidity    float64          `json:"humidity"`
	CFU         int              `json:"cfu"`
	Risk        safety.RiskLabel `json:"risk"`
	CreatedAt   time.Time        `json:"createdAt"`
}

func newPredictionResponse(p *entities.Prediction) PredictionResponse {
	return PredictionResponse{
		ID:          p.ID,
		BatchID:     p.BatchID,
		Temperature: p.Temperature,
		Humidity:    p.Humidity,
		CFU:         p.CFU,
		Risk:        p.Risk,
		CreatedAt:   p.CreatedAt,
	}
}

// AutoRunRequest is the optional body of POST /api/run-quality-and-prediction.
type AutoRunRequest struct {
	BatchID *int `json:"batchId"`
}

// AutoRunResponse holds the stored test and prediction of an auto-run.
type AutoRunResponse struct {
	Batch      BatchResponse       `json:"batch"`
	Test       QualityTestResponse `json:"test"`
	Prediction PredictionResponse  `json:"prediction"`
}

// SupplierPerformanceResponse is the reliability of one supplier.
// ReliabilityPct is null when the supplier has no tests.
type SupplierPerformanceResponse struct {
	SupplierID     uint         `json:"supplierId"`
	Supplier       string       `json:"supplier"`
	ReliabilityPct *int         `json:"reliabilityPct"`
	TotalTests     int          `json:"totalTests"`
	FailedTests    int          `json:"failedTests"`
	Badge          safety.Badge `json:"badge"`
	HasData        bool         `json:"hasData"`
}

func newSupplierPerformanceResponse(r safety.Reliability) SupplierPerformanceResponse {
	return SupplierPerformanceResponse{
		SupplierID:     r.Supplier.ID,
		Supplier:       r.Supplier.Name,
		ReliabilityPct: r.Pct,
		TotalTests:     r.Total,
		FailedTests:    r.Failed,
		Badge:          r.Badge(),
		HasData:        r.HasData(),
	}
}

// ReportRowResponse is one line of the quality report.
type ReportRowResponse struct {
	TestID   uint             `json:"testId"`
	Food     string           `json:"food"`
	Supplier string           `json:"supplier"`
	CFU      int              `json:"cfu"`
	Risk     safety.RiskLabel `json:"risk"`
	Result   safety.Verdict   `json:"result"`
	TestDate time.Time        `json:"testDate"`
}

func newReportRowResponse(r *quality.ReportRow) ReportRowResponse {
	return ReportRowResponse{
		TestID:   r.TestID,
		Food:     r.Food,
		Supplier: r.Supplier,
		CFU:      r.CFU,
		Risk:     r.Risk,
		Result:   r.Result,
		TestDate: r.TestDate,
	}
}

// OverviewResponse holds the dashboard entity counts.
type OverviewResponse struct {
	FoodItems int64 `json:"foodItems"`
	Suppliers int64 `json:"suppliers"`
	Batches   int64 `json:"batches"`
	Reports   int64 `json:"reports"`
}

// ChartsResponse holds the dashboard verdict and risk distributions.
type ChartsResponse struct {
	Passed       int64 `json:"passed"`
	Failed       int64 `json:"failed"`
	Safe         int64 `json:"safe"`
	ModerateRisk int64 `json:"moderateRisk"`
	HighRisk     int64 `json:"highRisk"`
}

// BackupLogResponse is one audit log row.
type BackupLogResponse struct {
	ID        uint      `json:"id"`
	BackupID  string    `json:"backupId"`
	Timestamp time.Time `json:"timestamp"`
	Action    string    `json:"action"`
	User      string    `json:"user"`
	Target    string    `json:"target"`
	Location  string    `json:"location"`
	SizeBytes int64     `json:"sizeBytes"`
	Status    string    `json:"status"`
	Error     string    `json:"error,omitempty"`
}

func newBackupLogResponse(l *entities.BackupLog) BackupLogResponse {
	return BackupLogResponse{
		ID:        l.ID,
		BackupID:  l.BackupID,
		Timestamp: l.Timestamp,
		Action:    l.Action,
		User:      l.User,
		Target:    l.Target,
		Location:  l.Location,
		SizeBytes: l.SizeBytes,
		Status:    l.Status,
		Error:     l.Error,
	}
}

// BackupTargetResult is the outcome of a snapshot on one target.
type BackupTargetResult struct {
	Target   string `json:"target"`
	Location string `json:"location,omitempty"`
	Error    string `json:"error,omitempty"`
}

// BackupSnapshotResponse describes a backup run.
type BackupSnapshotResponse struct {
	BackupID  string               `json:"backupId"`
	Timestamp time.Time            `json:"timestamp"`
	SizeBytes int64                `json:"sizeBytes"`
	Checksum  string               `json:"checksum"`
	Targets   []BackupTargetResult `json:"targets"`
}
