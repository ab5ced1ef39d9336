package v1

import (
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ayushbarthwal/eatsafe/internal/datastore/entities"
	"github.com/ayushbarthwal/eatsafe/internal/safety"
)

func TestFoodItemCRUD(t *testing.T) {
	env := setupTestEnvironment(t)
	env.quality.On("InvalidateCache").Return().Times(3)

	rec := env.do(http.MethodPost, "/api/food", `{"name":" Cheddar ","category":"Dairy"}`)
	require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())
	created := decode[FoodItemResponse](t, rec)
	assert.Equal(t, "Cheddar", created.Name)
	assert.NotZero(t, created.ID)

	rec = env.do(http.MethodGet, "/api/food", "")
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Len(t, decode[[]FoodItemResponse](t, rec), 1)

	rec = env.do(http.MethodPut, "/api/food/1", `{"name":"Gouda","description":"aged"}`)
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	updated := decode[FoodItemResponse](t, rec)
	assert.Equal(t, "Gouda", updated.Name)
	assert.Equal(t, "aged", updated.Description)

	rec = env.do(http.MethodDelete, "/api/food/1", "")
	assert.Equal(t, http.StatusNoContent, rec.Code)

	rec = env.do(http.MethodGet, "/api/food/1", "")
	assert.Equal(t, http.StatusNotFound, rec.Code)
	resp := decode[ErrorResponse](t, rec)
	assert.Equal(t, http.StatusNotFound, resp.Code)
	assert.NotEmpty(t, resp.CorrelationID)
}

func TestCatalogValidation(t *testing.T) {
	env := setupTestEnvironment(t)

	tests := []struct {
		name   string
		method string
		target string
		body   string
		want   int
	}{
		{"food without name", http.MethodPost, "/api/food", `{"category":"Dairy"}`, http.StatusBadRequest},
		{"malformed json", http.MethodPost, "/api/food", `{"name":`, http.StatusBadRequest},
		{"wrong type", http.MethodPost, "/api/supplier", `{"name":42}`, http.StatusBadRequest},
		{"non numeric id", http.MethodGet, "/api/food/abc", "", http.StatusBadRequest},
		{"zero id", http.MethodGet, "/api/supplier/0", "", http.StatusBadRequest},
		{"missing supplier", http.MethodGet, "/api/supplier/99", "", http.StatusNotFound},
		{"update missing food", http.MethodPut, "/api/food/99", `{"name":"x"}`, http.StatusNotFound},
		{"batch without food", http.MethodPost, "/api/batch", `{"supplierId":1}`, http.StatusBadRequest},
		{"batch bad date", http.MethodPost, "/api/batch", `{"foodItemId":1,"supplierId":1,"productionDate":"01/02/2025"}`, http.StatusBadRequest},
		{"batch expiry before production", http.MethodPost, "/api/batch",
			`{"foodItemId":1,"supplierId":1,"productionDate":"2025-02-01","expiryDate":"2025-01-01"}`, http.StatusBadRequest},
		{"batch unknown food", http.MethodPost, "/api/batch", `{"foodItemId":5,"supplierId":5}`, http.StatusNotFound},
		{"batch bad status", http.MethodPatch, "/api/batch/1/status", `{"status":"Paused"}`, http.StatusBadRequest},
		{"inspector without name", http.MethodPost, "/api/inspector", `{"email":"a@b.c"}`, http.StatusBadRequest},
		{"delete missing inspector", http.MethodDelete, "/api/inspector/7", "", http.StatusNotFound},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rec := env.do(tt.method, tt.target, tt.body)
			assert.Equal(t, tt.want, rec.Code, rec.Body.String())
			resp := decode[ErrorResponse](t, rec)
			assert.Equal(t, tt.want, resp.Code)
			assert.NotEmpty(t, resp.Message)
		})
	}
}

func TestDuplicateSupplierConflicts(t *testing.T) {
	env := setupTestEnvironment(t)
	env.quality.On("InvalidateCache").Return().Once()

	rec := env.do(http.MethodPost, "/api/supplier", `{"name":"Acme","contactName":"Jo"}`)
	require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())
	assert.Equal(t, "Jo", decode[SupplierResponse](t, rec).ContactName)

	rec = env.do(http.MethodPost, "/api/supplier", `{"name":"Acme"}`)
	assert.Equal(t, http.StatusConflict, rec.Code, rec.Body.String())
}

func TestDeleteReferencedRowsConflicts(t *testing.T) {
	env := setupTestEnvironment(t)
	food, supplier, batch := seedCatalog(t, env.repos)
	require.NoError(t, env.repos.QualityTests.Create(t.Context(), &entities.QualityTest{
		BatchID: batch.ID, PH: 6.5, MoisturePct: 5, BacteriaCount: 200, Result: safety.Pass,
	}))

	for _, target := range []string{
		"/api/food/" + itoa(food.ID),
		"/api/supplier/" + itoa(supplier.ID),
		"/api/batch/" + itoa(batch.ID),
	} {
		rec := env.do(http.MethodDelete, target, "")
		assert.Equal(t, http.StatusConflict, rec.Code, target)
	}
}

func TestBatchLifecycle(t *testing.T) {
	env := setupTestEnvironment(t)
	food, supplier, _ := seedCatalog(t, env.repos)
	env.quality.On("InvalidateCache").Return().Times(4)

	body := `{"foodItemId":` + itoa(food.ID) + `,"supplierId":` + itoa(supplier.ID) +
		`,"quantity":25,"productionDate":"2025-03-01","expiryDate":"2025-03-15"}`
	rec := env.do(http.MethodPost, "/api/batch", body)
	require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())
	created := decode[BatchResponse](t, rec)
	assert.Equal(t, "Active", created.Status)
	require.NotNil(t, created.ExpiryDate)
	assert.Equal(t, "2025-03-15", *created.ExpiryDate)

	target := "/api/batch/" + itoa(created.ID)
	rec = env.do(http.MethodPatch, target+"/status", `{"status":"inactive"}`)
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	assert.Equal(t, "Inactive", decode[BatchResponse](t, rec).Status)

	body = `{"foodItemId":` + itoa(food.ID) + `,"supplierId":` + itoa(supplier.ID) + `,"quantity":30,"status":"Active"}`
	rec = env.do(http.MethodPut, target, body)
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	updated := decode[BatchResponse](t, rec)
	assert.Equal(t, 30, updated.Quantity)
	assert.Nil(t, updated.ProductionDate)

	rec = env.do(http.MethodGet, "/api/batch", "")
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Len(t, decode[[]BatchResponse](t, rec), 2)

	rec = env.do(http.MethodDelete, target, "")
	assert.Equal(t, http.StatusNoContent, rec.Code)
}

func TestInspectorDeleteKeepsTests(t *testing.T) {
	env := setupTestEnvironment(t)
	_, _, batch := seedCatalog(t, env.repos)

	rec := env.do(http.MethodPost, "/api/inspector", `{"name":"Dana","email":"dana@example.com"}`)
	require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())
	inspector := decode[InspectorResponse](t, rec)

	test := &entities.QualityTest{
		BatchID: batch.ID, InspectorID: &inspector.ID, PH: 6.5, MoisturePct: 5, BacteriaCount: 200, Result: safety.Pass,
	}
	require.NoError(t, env.repos.QualityTests.Create(t.Context(), test))

	rec = env.do(http.MethodDelete, "/api/inspector/"+itoa(inspector.ID), "")
	require.Equal(t, http.StatusNoContent, rec.Code)

	stored, err := env.repos.QualityTests.GetByID(t.Context(), test.ID)
	require.NoError(t, err)
	assert.Nil(t, stored.InspectorID)

	rec = env.do(http.MethodGet, "/api/inspector", "")
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Empty(t, decode[[]InspectorResponse](t, rec))
}
