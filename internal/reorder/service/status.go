package service

import (
	"context"

	"github.com/shopspring/decimal"

	"github.com/stocklens/stocklens-backend/internal/reorder/domain"
	"github.com/stocklens/stocklens-backend/internal/reorder/repository"
	"github.com/stocklens/stocklens-backend/pkg/errors"
	"github.com/stocklens/stocklens-backend/pkg/logger"
)

// StatusQuery parameterizes a status computation
type StatusQuery struct {
	Filter repository.DimensionFilter
	Policy domain.Policy
	// Status, when set, keeps only rows classified with that label
	Status *domain.Status
}

// StatusService joins live stock aggregates with configured reorder levels
// and classifies every tuple. It is stateless and read-only; each invocation
// issues its own reads against the two stores, so concurrent requests need no
// coordination.
type StatusService struct {
	stock      *repository.StockRepository
	thresholds *repository.ThresholdRepository
	logger     *logger.Logger
}

// NewStatusService creates a new status service
func NewStatusService(stock *repository.StockRepository, thresholds *repository.ThresholdRepository, log *logger.Logger) *StatusService {
	return &StatusService{
		stock:      stock,
		thresholds: thresholds,
		logger:     log.WithComponent("status"),
	}
}

// Classified computes the classified rows for the query. An empty dimension
// filter returns an empty set instead of scanning the full cross-product;
// the unfiltered join is expensive enough that callers must narrow first.
// Tuples without a threshold record classify with level 0.
func (s *StatusService) Classified(ctx context.Context, q StatusQuery) ([]domain.ClassifiedRow, error) {
	if !q.Policy.Valid() {
		return nil, errors.Validation(map[string]string{
			"policy": "must be one of: supplier, tier",
		})
	}
	if q.Status != nil && !q.Policy.StatusFor(*q.Status) {
		return nil, errors.Validation(map[string]string{
			"status": "not a label of the requested policy",
		})
	}

	if q.Filter.Empty() {
		return []domain.ClassifiedRow{}, nil
	}

	// The tier policy classifies merged totals per (product, brand, size):
	// stock is aggregated without the supplier split and the highest level
	// configured across an item's suppliers applies. The 4-way policy keeps
	// the per-supplier grouping.
	var (
		stockRows  []repository.StockRow
		itemLevels map[domain.ItemKey]decimal.Decimal
		keyLevels  map[domain.TupleKey]decimal.Decimal
		err        error
	)
	if q.Policy == domain.PolicyTier {
		stockRows, err = s.stock.AggregateByItem(ctx, q.Filter)
		if err != nil {
			return nil, err
		}
		itemLevels, err = s.thresholds.LevelsByItemKey(ctx, q.Filter)
	} else {
		stockRows, err = s.stock.Aggregate(ctx, q.Filter)
		if err != nil {
			return nil, err
		}
		keyLevels, err = s.thresholds.LevelsByKey(ctx, q.Filter)
	}
	if err != nil {
		return nil, err
	}

	classified := make([]domain.ClassifiedRow, 0, len(stockRows))
	for _, row := range stockRows {
		var (
			level decimal.Decimal
			ok    bool
		)
		if q.Policy == domain.PolicyTier {
			level, ok = itemLevels[row.ItemKey()]
		} else {
			level, ok = keyLevels[row.Key()]
		}
		if !ok {
			level = decimal.Zero
		}

		status := domain.Classify(q.Policy, row.StockSnapshot, level)
		if q.Status != nil && status != *q.Status {
			continue
		}

		classified = append(classified, domain.ClassifiedRow{
			DimensionTuple: row.DimensionTuple,
			StockSnapshot:  row.StockSnapshot,
			ReorderLevel:   level,
			Status:         status,
		})
	}

	s.logger.Debug().
		Int("stock_rows", len(stockRows)).
		Int("classified", len(classified)).
		Msg("status computed")

	return classified, nil
}

// Summary classifies under the 4-way policy and rolls the rows up by
// (supplier, product, brand)
func (s *StatusService) Summary(ctx context.Context, filter repository.DimensionFilter) ([]domain.SummaryRow, error) {
	rows, err := s.Classified(ctx, StatusQuery{
		Filter: filter,
		Policy: domain.PolicySupplier,
	})
	if err != nil {
		return nil, err
	}
	return domain.Summarize(rows), nil
}
