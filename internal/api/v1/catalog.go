package v1

import (
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/ayushbarthwal/eatsafe/internal/datastore/entities"
)

// mapSlice converts every element of in with fn.
func mapSlice[T, R any](in []T, fn func(T) R) []R {
	out := make([]R, 0, len(in))
	for _, v := range in {
		out = append(out, fn(v))
	}
	return out
}

// written drops cached aggregates after a catalog change.
func (c *Controller) written() {
	if c.Quality != nil {
		c.Quality.InvalidateCache()
	}
}

// ListFoodItems handles GET /api/food
func (c *Controller) ListFoodItems(ctx echo.Context) error {
	items, err := c.Repos.FoodItems.GetAll(ctx.Request().Context())
	if err != nil {
		return c.HandleError(ctx, err, "Failed to list food items")
	}
	return ctx.JSON(http.StatusOK, mapSlice(items, newFoodItemResponse))
}

// GetFoodItem handles GET /api/food/:id
func (c *Controller) GetFoodItem(ctx echo.Context) error {
	id, err := parseID(ctx, "id")
	if err != nil {
		return c.HandleError(ctx, err, "Invalid food item ID")
	}
	item, err := c.Repos.FoodItems.GetByID(ctx.Request().Context(), id)
	if err != nil {
		return c.HandleError(ctx, err, "Failed to get food item")
	}
	return ctx.JSON(http.StatusOK, newFoodItemResponse(item))
}

// CreateFoodItem handles POST /api/food
func (c *Controller) CreateFoodItem(ctx echo.Context) error {
	var req FoodItemRequest
	if err := bindJSON(ctx, &req); err != nil {
		return c.HandleError(ctx, err, "Invalid food item")
	}
	item, err := req.toEntity(0)
	if err != nil {
		return c.HandleError(ctx, err, "Invalid food item")
	}
	if err := c.Repos.FoodItems.Create(ctx.Request().Context(), item); err != nil {
		return c.HandleError(ctx, err, "Failed to create food item")
	}
	c.written()
	return ctx.JSON(http.StatusCreated, newFoodItemResponse(item))
}

// UpdateFoodItem handles PUT /api/food/:id
func (c *Controller) UpdateFoodItem(ctx echo.Context) error {
	id, err := parseID(ctx, "id")
	if err != nil {
		return c.HandleError(ctx, err, "Invalid food item ID")
	}
	var req FoodItemRequest
	if err := bindJSON(ctx, &req); err != nil {
		return c.HandleError(ctx, err, "Invalid food item")
	}
	item, err := req.toEntity(id)
	if err != nil {
		return c.HandleError(ctx, err, "Invalid food item")
	}

	reqCtx := ctx.Request().Context()
	if err := c.Repos.FoodItems.Update(reqCtx, item); err != nil {
		return c.HandleError(ctx, err, "Failed to update food item")
	}
	c.written()

	updated, err := c.Repos.FoodItems.GetByID(reqCtx, id)
	if err != nil {
		return c.HandleError(ctx, err, "Failed to get food item")
	}
	return ctx.JSON(http.StatusOK, newFoodItemResponse(updated))
}

// DeleteFoodItem handles DELETE /api/food/:id
func (c *Controller) DeleteFoodItem(ctx echo.Context) error {
	id, err := parseID(ctx, "id")
	if err != nil {
		return c.HandleError(ctx, err, "Invalid food item ID")
	}
	if err := c.Repos.FoodItems.Delete(ctx.Request().Context(), id); err != nil {
		return c.HandleError(ctx, err, "Failed to delete food item")
	}
	c.written()
	return ctx.NoContent(http.StatusNoContent)
}

// ListSuppliers handles GET /api/supplier
func (c *Controller) ListSuppliers(ctx echo.Context) error {
	suppliers, err := c.Repos.Suppliers.GetAll(ctx.Request().Context())
	if err != nil {
		return c.HandleError(ctx, err, "Failed to list suppliers")
	}
	return ctx.JSON(http.StatusOK, mapSlice(suppliers, newSupplierResponse))
}

// GetSupplier handles GET /api/supplier/:id
func (c *Controller) GetSupplier(ctx echo.Context) error {
	id, err := parseID(ctx, "id")
	if err != nil {
		return c.HandleError(ctx, err, "Invalid supplier ID")
	}
	supplier, err := c.Repos.Suppliers.GetByID(ctx.Request().Context(), id)
	if err != nil {
		return c.HandleError(ctx, err, "Failed to get supplier")
	}
	return ctx.JSON(http.StatusOK, newSupplierResponse(supplier))
}

// CreateSupplier handles POST /api/supplier
func (c *Controller) CreateSupplier(ctx echo.Context) error {
	var req SupplierRequest
	if err := bindJSON(ctx, &req); err != nil {
		return c.HandleError(ctx, err, "Invalid supplier")
	}
	supplier, err := req.toEntity(0)
	if err != nil {
		return c.HandleError(ctx, err, "Invalid supplier")
	}
	if err := c.Repos.Suppliers.Create(ctx.Request().Context(), supplier); err != nil {
		return c.HandleError(ctx, err, "Failed to create supplier")
	}
	c.written()
	return ctx.JSON(http.StatusCreated, newSupplierResponse(supplier))
}

// UpdateSupplier handles PUT /api/supplier/:id
func (c *Controller) UpdateSupplier(ctx echo.Context) error {
	id, err := parseID(ctx, "id")
	if err != nil {
		return c.HandleError(ctx, err, "Invalid supplier ID")
	}
	var req SupplierRequest
	if err := bindJSON(ctx, &req); err != nil {
		return c.HandleError(ctx, err, "Invalid supplier")
	}
	supplier, err := req.toEntity(id)
	if err != nil {
		return c.HandleError(ctx, err, "Invalid supplier")
	}

	reqCtx := ctx.Request().Context()
	if err := c.Repos.Suppliers.Update(reqCtx, supplier); err != nil {
		return c.HandleError(ctx, err, "Failed to update supplier")
	}
	c.written()

	updated, err := c.Repos.Suppliers.GetByID(reqCtx, id)
	if err != nil {
		return c.HandleError(ctx, err, "Failed to get supplier")
	}
	return ctx.JSON(http.StatusOK, newSupplierResponse(updated))
}

// DeleteSupplier handles DELETE /api/supplier/:id
func (c *Controller) DeleteSupplier(ctx echo.Context) error {
	id, err := parseID(ctx, "id")
	if err != nil {
		return c.HandleError(ctx, err, "Invalid supplier ID")
	}
	if err := c.Repos.Suppliers.Delete(ctx.Request().Context(), id); err != nil {
		return c.HandleError(ctx, err, "Failed to delete supplier")
	}
	c.written()
	return ctx.NoContent(http.StatusNoContent)
}

// ListBatches handles GET /api/batch
func (c *Controller) ListBatches(ctx echo.Context) error {
	batches, err := c.Repos.Batches.GetAll(ctx.Request().Context())
	if err != nil {
		return c.HandleError(ctx, err, "Failed to list batches")
	}
	return ctx.JSON(http.StatusOK, mapSlice(batches, newBatchResponse))
}

// GetBatch handles GET /api/batch/:id
func (c *Controller) GetBatch(ctx echo.Context) error {
	id, err := parseID(ctx, "id")
	if err != nil {
		return c.HandleError(ctx, err, "Invalid batch ID")
	}
	batch, err := c.Repos.Batches.GetByID(ctx.Request().Context(), id)
	if err != nil {
		return c.HandleError(ctx, err, "Failed to get batch")
	}
	return ctx.JSON(http.StatusOK, newBatchResponse(batch))
}

// CreateBatch handles POST /api/batch
func (c *Controller) CreateBatch(ctx echo.Context) error {
	var req BatchRequest
	if err := bindJSON(ctx, &req); err != nil {
		return c.HandleError(ctx, err, "Invalid batch")
	}
	batch, err := req.toEntity(0)
	if err != nil {
		return c.HandleError(ctx, err, "Invalid batch")
	}

	reqCtx := ctx.Request().Context()
	if err := c.Repos.Batches.Create(reqCtx, batch); err != nil {
		return c.HandleError(ctx, err, "Failed to create batch")
	}
	c.written()
	return ctx.JSON(http.StatusCreated, newBatchResponse(batch))
}

// UpdateBatch handles PUT /api/batch/:id
func (c *Controller) UpdateBatch(ctx echo.Context) error {
	id, err := parseID(ctx, "id")
	if err != nil {
		return c.HandleError(ctx, err, "Invalid batch ID")
	}
	var req BatchRequest
	if err := bindJSON(ctx, &req); err != nil {
		return c.HandleError(ctx, err, "Invalid batch")
	}
	batch, err := req.toEntity(id)
	if err != nil {
		return c.HandleError(ctx, err, "Invalid batch")
	}

	reqCtx := ctx.Request().Context()
	if err := c.Repos.Batches.Update(reqCtx, batch); err != nil {
		return c.HandleError(ctx, err, "Failed to update batch")
	}
	c.written()

	updated, err := c.Repos.Batches.GetByID(reqCtx, id)
	if err != nil {
		return c.HandleError(ctx, err, "Failed to get batch")
	}
	return ctx.JSON(http.StatusOK, newBatchResponse(updated))
}

// UpdateBatchStatus handles PATCH /api/batch/:id/status
func (c *Controller) UpdateBatchStatus(ctx echo.Context) error {
	id, err := parseID(ctx, "id")
	if err != nil {
		return c.HandleError(ctx, err, "Invalid batch ID")
	}
	var req BatchStatusRequest
	if err := bindJSON(ctx, &req); err != nil {
		return c.HandleError(ctx, err, "Invalid batch status")
	}
	status, err := entities.ParseBatchStatus(req.Status)
	if err != nil {
		return c.HandleError(ctx, err, "Invalid batch status")
	}

	reqCtx := ctx.Request().Context()
	if err := c.Repos.Batches.UpdateStatus(reqCtx, id, status); err != nil {
		return c.HandleError(ctx, err, "Failed to update batch status")
	}
	c.written()

	updated, err := c.Repos.Batches.GetByID(reqCtx, id)
	if err != nil {
		return c.HandleError(ctx, err, "Failed to get batch")
	}
	return ctx.JSON(http.StatusOK, newBatchResponse(updated))
}

// DeleteBatch handles DELETE /api/batch/:id
func (c *Controller) DeleteBatch(ctx echo.Context) error {
	id, err := parseID(ctx, "id")
	if err != nil {
		return c.HandleError(ctx, err, "Invalid batch ID")
	}
	if err := c.Repos.Batches.Delete(ctx.Request().Context(), id); err != nil {
		return c.HandleError(ctx, err, "Failed to delete batch")
	}
	c.written()
	return ctx.NoContent(http.StatusNoContent)
}

// ListInspectors handles GET /api/inspector
func (c *Controller) ListInspectors(ctx echo.Context) error {
	inspectors, err := c.Repos.Inspectors.GetAll(ctx.Request().Context())
	if err != nil {
		return c.HandleError(ctx, err, "Failed to list inspectors")
	}
	return ctx.JSON(http.StatusOK, mapSlice(inspectors, newInspectorResponse))
}

// GetInspector handles GET /api/inspector/:id
func (c *Controller) GetInspector(ctx echo.Context) error {
	id, err := parseID(ctx, "id")
	if err != nil {
		return c.HandleError(ctx, err, "Invalid inspector ID")
	}
	inspector, err := c.Repos.Inspectors.GetByID(ctx.Request().Context(), id)
	if err != nil {
		return c.HandleError(ctx, err, "Failed to get inspector")
	}
	return ctx.JSON(http.StatusOK, newInspectorResponse(inspector))
}

// CreateInspector handles POST /api/inspector
func (c *Controller) CreateInspector(ctx echo.Context) error {
	var req InspectorRequest
	if err := bindJSON(ctx, &req); err != nil {
		return c.HandleError(ctx, err, "Invalid inspector")
	}
	inspector, err := req.toEntity()
	if err != nil {
		return c.HandleError(ctx, err, "Invalid inspector")
	}
	if err := c.Repos.Inspectors.Create(ctx.Request().Context(), inspector); err != nil {
		return c.HandleError(ctx, err, "Failed to create inspector")
	}
	return ctx.JSON(http.StatusCreated, newInspectorResponse(inspector))
}

// DeleteInspector handles DELETE /api/inspector/:id. Tests recorded by the
// inspector are kept without an inspector.
func (c *Controller) DeleteInspector(ctx echo.Context) error {
	id, err := parseID(ctx, "id")
	if err != nil {
		return c.HandleError(ctx, err, "Invalid inspector ID")
	}
	if err := c.Repos.Inspectors.Delete(ctx.Request().Context(), id); err != nil {
		return c.HandleError(ctx, err, "Failed to delete inspector")
	}
	return ctx.NoContent(http.StatusNoContent)
}
