package repository

import (
	"context"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"

	"github.com/ayushbarthwal/eatsafe/internal/datastore"
	"github.com/ayushbarthwal/eatsafe/internal/datastore/entities"
	"github.com/ayushbarthwal/eatsafe/internal/errors"
	"github.com/ayushbarthwal/eatsafe/internal/logger"
	"github.com/ayushbarthwal/eatsafe/internal/safety"
)

// setupTestRepos opens a migrated SQLite database in a temp dir.
func setupTestRepos(t *testing.T) (*Repositories, *gorm.DB) {
	t.Helper()

	mgr, err := datastore.NewSQLiteManager(filepath.Join(t.TempDir(), "eatsafe_test.db"), datastore.Options{
		Logger: logger.NewDiscardLogger(),
	})
	require.NoError(t, err)
	t.Cleanup(func() { _ = mgr.Close() })
	require.NoError(t, mgr.Initialize(t.Context()))

	return New(mgr.DB()), mgr.DB()
}

type fixture struct {
	food      *entities.FoodItem
	supplier  *entities.Supplier
	batch     *entities.Batch
	inspector *entities.Inspector
}

// createFixture inserts one food item, supplier, inspector and batch.
func createFixture(t *testing.T, repos *Repositories, supplierName string) fixture {
	t.Helper()
	ctx := t.Context()

	f := fixture{
		food:      &entities.FoodItem{Name: "Milk", Category: "Dairy"},
		supplier:  &entities.Supplier{Name: supplierName},
		inspector: &entities.Inspector{Name: "Inspector " + supplierName},
	}
	require.NoError(t, repos.FoodItems.Create(ctx, f.food))
	require.NoError(t, repos.Suppliers.Create(ctx, f.supplier))
	require.NoError(t, repos.Inspectors.Create(ctx, f.inspector))

	f.batch = &entities.Batch{FoodItemID: f.food.ID, SupplierID: f.supplier.ID, Quantity: 10}
	require.NoError(t, repos.Batches.Create(ctx, f.batch))
	return f
}

func addTest(t *testing.T, repos *Repositories, batchID uint, cfu int, verdict safety.Verdict, at time.Time) *entities.QualityTest {
	t.Helper()
	test := &entities.QualityTest{
		BatchID:       batchID,
		PH:            6.5,
		MoisturePct:   5,
		BacteriaCount: cfu,
		Result:        verdict,
		TestDate:      at,
	}
	require.NoError(t, repos.QualityTests.Create(t.Context(), test))
	return test
}

func TestFoodItemCRUD(t *testing.T) {
	t.Parallel()
	repos, _ := setupTestRepos(t)
	ctx := t.Context()

	item := &entities.FoodItem{Name: "Cheddar", Category: "Dairy"}
	require.NoError(t, repos.FoodItems.Create(ctx, item))
	require.NotZero(t, item.ID)

	got, err := repos.FoodItems.GetByID(ctx, item.ID)
	require.NoError(t, err)
	assert.Equal(t, "Cheddar", got.Name)

	item.Description = "Aged 12 months"
	require.NoError(t, repos.FoodItems.Update(ctx, item))
	require.NoError(t, repos.FoodItems.Update(ctx, item), "unchanged update is not an error")

	got, err = repos.FoodItems.GetByID(ctx, item.ID)
	require.NoError(t, err)
	assert.Equal(t, "Aged 12 months", got.Description)

	count, err := repos.FoodItems.Count(ctx)
	require.NoError(t, err)
	assert.Equal(t, int64(1), count)

	require.NoError(t, repos.FoodItems.Delete(ctx, item.ID))
	_, err = repos.FoodItems.GetByID(ctx, item.ID)
	require.ErrorIs(t, err, ErrFoodItemNotFound)
	assert.True(t, errors.IsNotFound(err))
}

func TestNotFoundErrors(t *testing.T) {
	t.Parallel()
	repos, _ := setupTestRepos(t)
	ctx := t.Context()

	err := repos.FoodItems.Update(ctx, &entities.FoodItem{ID: 99, Name: "x"})
	require.ErrorIs(t, err, ErrFoodItemNotFound)

	err = repos.Suppliers.Delete(ctx, 99)
	require.ErrorIs(t, err, ErrSupplierNotFound)

	err = repos.Batches.UpdateStatus(ctx, 99, entities.BatchStatusInactive)
	require.ErrorIs(t, err, ErrBatchNotFound)

	err = repos.Inspectors.Delete(ctx, 99)
	require.ErrorIs(t, err, ErrInspectorNotFound)

	_, err = repos.QualityTests.GetByID(ctx, 99)
	require.ErrorIs(t, err, ErrQualityTestNotFound)

	_, err = repos.Batches.LatestActive(ctx)
	require.ErrorIs(t, err, ErrNoActiveBatch)
	assert.True(t, errors.IsNotFound(err))
}

func TestSupplierNameIsUnique(t *testing.T) {
	t.Parallel()
	repos, _ := setupTestRepos(t)
	ctx := t.Context()

	require.NoError(t, repos.Suppliers.Create(ctx, &entities.Supplier{Name: "FreshCo"}))

	err := repos.Suppliers.Create(ctx, &entities.Supplier{Name: "FreshCo"})
	require.ErrorIs(t, err, ErrDuplicateKey)
	assert.True(t, errors.IsCategory(err, errors.CategoryConflict))

	other := &entities.Supplier{Name: "DairyBest"}
	require.NoError(t, repos.Suppliers.Create(ctx, other))
	other.Name = "FreshCo"
	err = repos.Suppliers.Update(ctx, other)
	require.ErrorIs(t, err, ErrDuplicateKey)
}

func TestReferencedRowsCannotBeDeleted(t *testing.T) {
	t.Parallel()
	repos, _ := setupTestRepos(t)
	ctx := t.Context()
	f := createFixture(t, repos, "FreshCo")
	addTest(t, repos, f.batch.ID, 100, safety.Pass, time.Now())

	for name, del := range map[string]func() error{
		"food":     func() error { return repos.FoodItems.Delete(ctx, f.food.ID) },
		"supplier": func() error { return repos.Suppliers.Delete(ctx, f.supplier.ID) },
		"batch":    func() error { return repos.Batches.Delete(ctx, f.batch.ID) },
	} {
		err := del()
		require.ErrorIs(t, err, ErrInUse, name)
		assert.True(t, errors.IsCategory(err, errors.CategoryConflict), name)
	}
}

func TestBatchLifecycle(t *testing.T) {
	t.Parallel()
	repos, _ := setupTestRepos(t)
	ctx := t.Context()
	f := createFixture(t, repos, "FreshCo")

	assert.Equal(t, entities.BatchStatusActive, f.batch.Status, "status defaults to Active")

	err := repos.Batches.Create(ctx, &entities.Batch{FoodItemID: 404, SupplierID: f.supplier.ID})
	require.ErrorIs(t, err, ErrFoodItemNotFound)
	err = repos.Batches.Create(ctx, &entities.Batch{FoodItemID: f.food.ID, SupplierID: 404})
	require.ErrorIs(t, err, ErrSupplierNotFound)

	second := &entities.Batch{FoodItemID: f.food.ID, SupplierID: f.supplier.ID}
	require.NoError(t, repos.Batches.Create(ctx, second))

	latest, err := repos.Batches.LatestActive(ctx)
	require.NoError(t, err)
	assert.Equal(t, second.ID, latest.ID)

	require.NoError(t, repos.Batches.UpdateStatus(ctx, second.ID, entities.BatchStatusInactive))
	latest, err = repos.Batches.LatestActive(ctx)
	require.NoError(t, err)
	assert.Equal(t, f.batch.ID, latest.ID)

	second.Quantity = 42
	second.Status = entities.BatchStatusInactive
	require.NoError(t, repos.Batches.Update(ctx, second))
	got, err := repos.Batches.GetByID(ctx, second.ID)
	require.NoError(t, err)
	assert.Equal(t, 42, got.Quantity)

	batchID := second.ID
	prediction := &entities.Prediction{BatchID: &batchID, Temperature: 4, Humidity: 50, CFU: 80, Risk: safety.Safe}
	require.NoError(t, repos.Predictions.Create(ctx, prediction))

	require.NoError(t, repos.Batches.Delete(ctx, second.ID))
	predictions, err := repos.Predictions.List(ctx, 0)
	require.NoError(t, err)
	require.Len(t, predictions, 1)
	assert.Nil(t, predictions[0].BatchID, "prediction is detached from the deleted batch")

	all, err := repos.Batches.GetAll(ctx)
	require.NoError(t, err)
	assert.Len(t, all, 1)
}

func TestParseBatchStatus(t *testing.T) {
	t.Parallel()

	status, err := entities.ParseBatchStatus(" inactive ")
	require.NoError(t, err)
	assert.Equal(t, entities.BatchStatusInactive, status)

	_, err = entities.ParseBatchStatus("archived")
	require.Error(t, err)
	assert.True(t, errors.IsValidation(err))
}

func TestQualityTestCreateChecksReferences(t *testing.T) {
	t.Parallel()
	repos, _ := setupTestRepos(t)
	ctx := t.Context()
	f := createFixture(t, repos, "FreshCo")

	err := repos.QualityTests.Create(ctx, &entities.QualityTest{BatchID: 404, Result: safety.Pass})
	require.ErrorIs(t, err, ErrBatchNotFound)

	missing := uint(404)
	err = repos.QualityTests.Create(ctx, &entities.QualityTest{BatchID: f.batch.ID, InspectorID: &missing, Result: safety.Pass})
	require.ErrorIs(t, err, ErrInspectorNotFound)

	test := &entities.QualityTest{BatchID: f.batch.ID, Result: safety.Fail, BacteriaCount: 700}
	require.NoError(t, repos.QualityTests.Create(ctx, test))
	assert.False(t, test.TestDate.IsZero(), "test date defaults to now")

	got, err := repos.QualityTests.GetByID(ctx, test.ID)
	require.NoError(t, err)
	assert.Equal(t, safety.Fail, got.Result)
}

func TestQualityTestListAndInspectorDetach(t *testing.T) {
	t.Parallel()
	repos, _ := setupTestRepos(t)
	ctx := t.Context()
	a := createFixture(t, repos, "FreshCo")
	b := createFixture(t, repos, "DairyBest")

	base := time.Date(2025, 3, 1, 9, 0, 0, 0, time.UTC)
	inspectorID := a.inspector.ID
	first := &entities.QualityTest{
		BatchID: a.batch.ID, InspectorID: &inspectorID, PH: 6.1, MoisturePct: 4,
		BacteriaCount: 120, Result: safety.Pass, TestDate: base,
	}
	require.NoError(t, repos.QualityTests.Create(ctx, first))
	addTest(t, repos, b.batch.ID, 900, safety.Fail, base.Add(time.Hour))

	rows, err := repos.QualityTests.List(ctx, QualityTestFilter{})
	require.NoError(t, err)
	require.Len(t, rows, 2)
	assert.Equal(t, "DairyBest", rows[0].SupplierName, "newest first")
	assert.Equal(t, "FreshCo", rows[1].SupplierName)
	assert.Equal(t, "Milk", rows[1].FoodName)
	require.NotNil(t, rows[1].InspectorName)
	assert.Equal(t, "Inspector FreshCo", *rows[1].InspectorName)
	assert.Nil(t, rows[0].InspectorName)
	assert.InDelta(t, 6.1, rows[1].PH, 0.0001)

	rows, err = repos.QualityTests.List(ctx, QualityTestFilter{BatchID: a.batch.ID})
	require.NoError(t, err)
	require.Len(t, rows, 1)
	assert.Equal(t, first.ID, rows[0].ID)

	require.NoError(t, repos.Inspectors.Delete(ctx, a.inspector.ID))
	got, err := repos.QualityTests.GetByID(ctx, first.ID)
	require.NoError(t, err)
	assert.Nil(t, got.InspectorID, "test survives with the inspector detached")
}

func TestPredictionListLimits(t *testing.T) {
	t.Parallel()
	repos, _ := setupTestRepos(t)
	ctx := t.Context()

	for i := range 5 {
		p := &entities.Prediction{Temperature: float64(i), Humidity: 50, CFU: 80, Risk: safety.Safe}
		require.NoError(t, repos.Predictions.Create(ctx, p))
	}

	all, err := repos.Predictions.List(ctx, 0)
	require.NoError(t, err)
	require.Len(t, all, 5)
	assert.Greater(t, all[0].ID, all[4].ID, "newest first")

	two, err := repos.Predictions.List(ctx, 2)
	require.NoError(t, err)
	assert.Len(t, two, 2)

	clamped, err := repos.Predictions.List(ctx, MaxPredictionLimit+500)
	require.NoError(t, err)
	assert.Len(t, clamped, 5)

	batchID := uint(404)
	err = repos.Predictions.Create(ctx, &entities.Prediction{BatchID: &batchID, Risk: safety.Safe})
	require.ErrorIs(t, err, ErrBatchNotFound)

	count, err := repos.Predictions.Count(ctx)
	require.NoError(t, err)
	assert.Equal(t, int64(5), count)
}

func TestBackupLogNewestFirst(t *testing.T) {
	t.Parallel()
	repos, _ := setupTestRepos(t)
	ctx := t.Context()

	older := &entities.BackupLog{
		Timestamp: time.Now().Add(-time.Hour), Action: entities.BackupActionManual,
		User: "system", Target: "local", Status: entities.BackupStatusSuccess,
	}
	newer := &entities.BackupLog{
		Action: entities.BackupActionSnapshot, User: "alice", Target: "s3",
		Status: entities.BackupStatusFailed, Error: "access denied",
	}
	require.NoError(t, repos.BackupLogs.Create(ctx, older))
	require.NoError(t, repos.BackupLogs.Create(ctx, newer))

	entries, err := repos.BackupLogs.List(ctx, 0)
	require.NoError(t, err)
	require.Len(t, entries, 2)
	assert.Equal(t, "alice", entries[0].User)
	assert.Equal(t, "access denied", entries[0].Error)

	entries, err = repos.BackupLogs.List(ctx, 1)
	require.NoError(t, err)
	assert.Len(t, entries, 1)
}

func TestReports(t *testing.T) {
	t.Parallel()
	repos, db := setupTestRepos(t)
	ctx := t.Context()
	a := createFixture(t, repos, "FreshCo")
	b := createFixture(t, repos, "DairyBest")
	createFixture(t, repos, "Untested")

	now := time.Now().UTC()
	t1 := addTest(t, repos, a.batch.ID, 1200, safety.Fail, now)
	t2 := addTest(t, repos, a.batch.ID, 300, safety.Pass, now)
	t3 := addTest(t, repos, b.batch.ID, 1200, safety.Fail, now)
	addTest(t, repos, b.batch.ID, 700, safety.Pass, now)

	// Rows written by older releases spell the verdict "Passed".
	require.NoError(t, db.Exec(
		"INSERT INTO quality_tests (batch_id, ph, moisture_pct, bacteria_count, result, notes, test_date) VALUES (?, ?, ?, ?, ?, ?, ?)",
		b.batch.ID, 6.0, 3.0, 300, "Passed", "", now).Error)

	report, err := repos.Reports.QualityReport(ctx)
	require.NoError(t, err)
	require.Len(t, report, 5)
	assert.Equal(t, t3.ID, report[0].ID, "ties on cfu break by id descending")
	assert.Equal(t, t1.ID, report[1].ID)
	assert.Equal(t, 700, report[2].BacteriaCount)
	assert.Equal(t, t2.ID, report[4].ID)
	assert.Equal(t, safety.Pass, report[3].Result, "legacy spelling scans as Pass")

	verdicts, err := repos.Reports.SupplierVerdicts(ctx)
	require.NoError(t, err)
	require.Len(t, verdicts, 5)
	perSupplier := map[string]int{}
	for _, v := range verdicts {
		perSupplier[v.Supplier.Name]++
	}
	assert.Equal(t, map[string]int{"FreshCo": 2, "DairyBest": 3}, perSupplier)

	counts, err := repos.Reports.VerdictCounts(ctx)
	require.NoError(t, err)
	assert.Equal(t, int64(3), counts[safety.Pass])
	assert.Equal(t, int64(2), counts[safety.Fail])

	bacteria, err := repos.Reports.BacteriaCounts(ctx)
	require.NoError(t, err)
	assert.Equal(t, map[int]int64{1200: 2, 300: 2, 700: 1}, bacteria)
}

func TestRepositoriesRespectCancelledContext(t *testing.T) {
	t.Parallel()
	repos, _ := setupTestRepos(t)

	ctx, cancel := context.WithCancel(t.Context())
	cancel()

	_, err := repos.FoodItems.GetAll(ctx)
	require.Error(t, err)
	assert.True(t, errors.IsCategory(err, errors.CategoryDatabase))
}
