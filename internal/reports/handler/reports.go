package handler

import (
	"net/http"
	"strconv"
	"strings"

	"github.com/stocklens/stocklens-backend/internal/reports/repository"
	"github.com/stocklens/stocklens-backend/pkg/errors"
	"github.com/stocklens/stocklens-backend/pkg/httputil"
	"github.com/stocklens/stocklens-backend/pkg/logger"
)

// ReportsHandler serves the movement roll-up reports
type ReportsHandler struct {
	reports *repository.ReportsRepository
	logger  *logger.Logger
}

// NewReportsHandler creates a new reports handler
func NewReportsHandler(reports *repository.ReportsRepository, log *logger.Logger) *ReportsHandler {
	return &ReportsHandler{reports: reports, logger: log}
}

// SupplierProducts reports per location and product movement for a supplier
func (h *ReportsHandler) SupplierProducts(w http.ResponseWriter, r *http.Request) {
	raw := r.URL.Query().Get("supplier_id")
	if raw == "" {
		httputil.Error(w, errors.Validation(map[string]string{
			"supplier_id": "is required",
		}))
		return
	}
	supplierID, err := strconv.ParseInt(raw, 10, 64)
	if err != nil {
		httputil.Error(w, errors.Validation(map[string]string{
			"supplier_id": "must be an integer",
		}))
		return
	}

	rows, err := h.reports.SupplierProducts(r.Context(), supplierID)
	if err != nil {
		httputil.Error(w, err)
		return
	}

	httputil.JSONWithMeta(w, http.StatusOK, rows, &httputil.Meta{Total: len(rows)})
}

// ProductSuppliers reports per supplier movement for one or more products.
// product_id takes a comma separated ID list so a grid multi-select posts in
// one request.
func (h *ReportsHandler) ProductSuppliers(w http.ResponseWriter, r *http.Request) {
	raw := r.URL.Query().Get("product_id")
	ids, err := parseIDList(raw)
	if err != nil || len(ids) == 0 {
		httputil.Error(w, errors.Validation(map[string]string{
			"product_id": "must be a comma separated list of integers",
		}))
		return
	}

	rows, err := h.reports.ProductSuppliers(r.Context(), ids)
	if err != nil {
		httputil.Error(w, err)
		return
	}

	httputil.JSONWithMeta(w, http.StatusOK, rows, &httputil.Meta{Total: len(rows)})
}

func parseIDList(raw string) ([]int64, error) {
	ids := []int64{}
	for _, part := range strings.Split(raw, ",") {
		part = strings.TrimSpace(part)
		if part == "" {
			continue
		}
		id, err := strconv.ParseInt(part, 10, 64)
		if err != nil {
			return nil, err
		}
		ids = append(ids, id)
	}
	return ids, nil
}
