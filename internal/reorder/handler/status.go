package handler

import (
	"context"
	"net/http"

	"github.com/stocklens/stocklens-backend/internal/reorder/domain"
	"github.com/stocklens/stocklens-backend/internal/reorder/repository"
	"github.com/stocklens/stocklens-backend/internal/reorder/service"
	"github.com/stocklens/stocklens-backend/pkg/httputil"
	"github.com/stocklens/stocklens-backend/pkg/logger"
)

// StatusReader computes classified stock views
type StatusReader interface {
	Classified(ctx context.Context, q service.StatusQuery) ([]domain.ClassifiedRow, error)
	Summary(ctx context.Context, filter repository.DimensionFilter) ([]domain.SummaryRow, error)
}

// StatusHandler serves classified stock views
type StatusHandler struct {
	status StatusReader
	logger *logger.Logger
}

// NewStatusHandler creates a new status handler
func NewStatusHandler(status StatusReader, log *logger.Logger) *StatusHandler {
	return &StatusHandler{status: status, logger: log}
}

// Classified returns classified stock rows for the requested dimensions.
// The policy query parameter selects the label set, defaulting to the
// supplier-facing one; status narrows the result to a single label.
func (h *StatusHandler) Classified(w http.ResponseWriter, r *http.Request) {
	filter, err := parseDimensionFilter(r)
	if err != nil {
		httputil.Error(w, err)
		return
	}

	query := service.StatusQuery{
		Filter: filter,
		Policy: domain.PolicySupplier,
	}
	if raw := r.URL.Query().Get("policy"); raw != "" {
		query.Policy = domain.Policy(raw)
	}
	if raw := r.URL.Query().Get("status"); raw != "" {
		status := domain.Status(raw)
		query.Status = &status
	}

	rows, err := h.status.Classified(r.Context(), query)
	if err != nil {
		httputil.Error(w, err)
		return
	}

	httputil.JSONWithMeta(w, http.StatusOK, rows, &httputil.Meta{Total: len(rows)})
}

// Summary returns per supplier/product/brand status counts under the
// supplier-facing label set
func (h *StatusHandler) Summary(w http.ResponseWriter, r *http.Request) {
	filter, err := parseDimensionFilter(r)
	if err != nil {
		httputil.Error(w, err)
		return
	}

	rows, err := h.status.Summary(r.Context(), filter)
	if err != nil {
		httputil.Error(w, err)
		return
	}

	httputil.JSONWithMeta(w, http.StatusOK, rows, &httputil.Meta{Total: len(rows)})
}
