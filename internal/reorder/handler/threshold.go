package handler

import (
	"context"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"
	"github.com/shopspring/decimal"

	"github.com/stocklens/stocklens-backend/internal/reorder/repository"
	"github.com/stocklens/stocklens-backend/pkg/errors"
	"github.com/stocklens/stocklens-backend/pkg/httputil"
	"github.com/stocklens/stocklens-backend/pkg/logger"
)

// UpdateLevelRequest is a single reorder-level edit. The level is a pointer
// so an omitted field fails "required" while an explicit zero still passes.
type UpdateLevelRequest struct {
	ReorderLevel *float64 `json:"reorder_level" validate:"required,gte=0"`
}

// BulkUpdateRequest carries a list of reorder-level edits
type BulkUpdateRequest struct {
	Rows []BulkUpdateRow `json:"rows" validate:"required,min=1,dive"`
}

// BulkUpdateRow is one row of a bulk edit
type BulkUpdateRow struct {
	ID           int64    `json:"id" validate:"required"`
	ReorderLevel *float64 `json:"reorder_level" validate:"required,gte=0"`
}

// SyncStarter launches background reconciliation runs
type SyncStarter interface {
	Start(actorID int64) string
}

// ThresholdPublisher announces reorder-level edits
type ThresholdPublisher interface {
	PublishThresholdUpdated(ctx context.Context, ids []int64, actorID int64)
}

// ThresholdHandler handles the threshold store endpoints and the sync trigger
type ThresholdHandler struct {
	thresholds *repository.ThresholdRepository
	refdata    *repository.RefDataRepository
	sync       SyncStarter
	publisher  ThresholdPublisher
	logger     *logger.Logger
}

// NewThresholdHandler creates a new threshold handler
func NewThresholdHandler(
	thresholds *repository.ThresholdRepository,
	refdata *repository.RefDataRepository,
	sync SyncStarter,
	publisher ThresholdPublisher,
	log *logger.Logger,
) *ThresholdHandler {
	return &ThresholdHandler{
		thresholds: thresholds,
		refdata:    refdata,
		sync:       sync,
		publisher:  publisher,
		logger:     log,
	}
}

// List lists threshold records. Without at least one dimension filter the
// result is deliberately empty; the unfiltered table is only useful to
// exports, which page through filtered views instead.
func (h *ThresholdHandler) List(w http.ResponseWriter, r *http.Request) {
	filter, err := parseDimensionFilter(r)
	if err != nil {
		httputil.Error(w, err)
		return
	}

	if filter.Empty() {
		httputil.JSON(w, http.StatusOK, []struct{}{})
		return
	}

	records, err := h.thresholds.List(r.Context(), filter)
	if err != nil {
		httputil.Error(w, err)
		return
	}

	httputil.JSONWithMeta(w, http.StatusOK, records, &httputil.Meta{Total: len(records)})
}

// Update sets the reorder level of one record
func (h *ThresholdHandler) Update(w http.ResponseWriter, r *http.Request) {
	actorID, ok := httputil.RequireActor(w, r)
	if !ok {
		return
	}

	id, err := strconv.ParseInt(chi.URLParam(r, "id"), 10, 64)
	if err != nil {
		httputil.Error(w, errors.BadRequest("invalid id"))
		return
	}

	var req UpdateLevelRequest
	if err := httputil.DecodeJSON(r, &req); err != nil {
		httputil.Error(w, err)
		return
	}
	if err := httputil.Validate(req); err != nil {
		httputil.Error(w, err)
		return
	}

	if err := h.thresholds.UpdateLevel(r.Context(), id, decimal.NewFromFloat(*req.ReorderLevel), actorID); err != nil {
		httputil.Error(w, err)
		return
	}

	h.publisher.PublishThresholdUpdated(r.Context(), []int64{id}, actorID)

	httputil.JSON(w, http.StatusOK, map[string]string{
		"message": "Reorder level updated successfully.",
	})
}

// BulkUpdate applies a list of reorder-level edits. Malformed rows reject the
// whole request before any store access.
func (h *ThresholdHandler) BulkUpdate(w http.ResponseWriter, r *http.Request) {
	actorID, ok := httputil.RequireActor(w, r)
	if !ok {
		return
	}

	var req BulkUpdateRequest
	if err := httputil.DecodeJSON(r, &req); err != nil {
		httputil.Error(w, err)
		return
	}
	if err := httputil.Validate(req); err != nil {
		httputil.Error(w, err)
		return
	}

	updates := make([]repository.LevelUpdate, 0, len(req.Rows))
	ids := make([]int64, 0, len(req.Rows))
	for _, row := range req.Rows {
		updates = append(updates, repository.LevelUpdate{
			ID:           row.ID,
			ReorderLevel: decimal.NewFromFloat(*row.ReorderLevel),
		})
		ids = append(ids, row.ID)
	}

	updated, err := h.thresholds.BulkUpdateLevels(r.Context(), updates, actorID)
	if err != nil {
		httputil.Error(w, err)
		return
	}

	h.publisher.PublishThresholdUpdated(r.Context(), ids, actorID)

	httputil.JSON(w, http.StatusOK, map[string]interface{}{
		"message": "Reorder level updated successfully.",
		"updated": updated,
	})
}

// Sync starts a reconciliation run and acknowledges immediately. The outcome
// arrives later on the reorder events exchange.
func (h *ThresholdHandler) Sync(w http.ResponseWriter, r *http.Request) {
	actorID, ok := httputil.RequireActor(w, r)
	if !ok {
		return
	}

	runID := h.sync.Start(actorID)

	httputil.Accepted(w, map[string]string{
		"message": "Reorder levels sync started. You will be notified when it is completed.",
		"run_id":  runID,
	})
}

// Filters returns the active product/brand/supplier reference lists backing
// the filter dropdowns
func (h *ThresholdHandler) Filters(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	products, err := h.refdata.Products(ctx)
	if err != nil {
		httputil.Error(w, err)
		return
	}
	brands, err := h.refdata.Brands(ctx)
	if err != nil {
		httputil.Error(w, err)
		return
	}
	suppliers, err := h.refdata.Suppliers(ctx)
	if err != nil {
		httputil.Error(w, err)
		return
	}

	httputil.JSON(w, http.StatusOK, map[string]interface{}{
		"products":  products,
		"brands":    brands,
		"suppliers": suppliers,
	})
}

// parseDimensionFilter reads the optional product_id/brand_id/supplier_id
// query parameters. A present-but-non-numeric value is a validation error,
// not an ignored filter.
func parseDimensionFilter(r *http.Request) (repository.DimensionFilter, error) {
	var filter repository.DimensionFilter
	details := map[string]string{}

	for name, target := range map[string]**int64{
		"product_id":  &filter.ProductID,
		"brand_id":    &filter.BrandID,
		"supplier_id": &filter.SupplierID,
	} {
		raw := r.URL.Query().Get(name)
		if raw == "" {
			continue
		}
		id, err := strconv.ParseInt(raw, 10, 64)
		if err != nil {
			details[name] = "must be an integer"
			continue
		}
		*target = &id
	}

	if len(details) > 0 {
		return repository.DimensionFilter{}, errors.Validation(details)
	}
	return filter, nil
}
