package repository

import (
	"context"
	"fmt"

	"github.com/stocklens/stocklens-backend/internal/reorder/domain"
	"github.com/stocklens/stocklens-backend/pkg/database"
)

// dimensionQuery derives the distinct valid dimension tuples from the
// stock-movement facts. Rows with placeholder brand names or unnamed sizes
// are excluded; the size reference entry must be of type SIZE. Ordering by
// product_id keeps chunk boundaries stable across runs.
const dimensionQuery = `
	SELECT DISTINCT
		i.productid   AS product_id,
		p.name        AS product_name,
		i.brandid     AS brand_id,
		b.name        AS brand_name,
		i.sizeid      AS size_id,
		r.name        AS size_name,
		s.supplierid  AS supplier_id,
		sup.name      AS supplier_name
	FROM stock s
	JOIN items i          ON i.id = s.itemid
	JOIN products p       ON p.id = i.productid
	JOIN brand b          ON b.id = i.brandid
	JOIN referencelist r  ON r.id = i.sizeid AND r.type = 'SIZE'
	JOIN supplier sup     ON sup.id = s.supplierid
	WHERE b.name NOT IN ('', 'UNSPECIFIED', 'NONE')
	  AND r.name <> ''
	ORDER BY product_id`

// DimensionRepository extracts dimension tuples from the source store.
// Pure reads; the source store is owned by the external operational system.
type DimensionRepository struct {
	db *database.DB
}

// NewDimensionRepository creates a new dimension repository
func NewDimensionRepository(db *database.DB) *DimensionRepository {
	return &DimensionRepository{db: db}
}

// StreamTuples runs the extraction query and hands tuples to fn in batches of
// at most batchSize, in product_id order. The result set is cursored, so the
// full tuple set is never held in memory. A non-nil error from fn aborts the
// stream and is returned as-is.
func (r *DimensionRepository) StreamTuples(ctx context.Context, batchSize int, fn func([]domain.DimensionTuple) error) error {
	if batchSize <= 0 {
		batchSize = 1000
	}

	rows, err := r.db.QueryxContext(ctx, dimensionQuery)
	if err != nil {
		return fmt.Errorf("failed to query dimension tuples: %w", err)
	}
	defer rows.Close()

	batch := make([]domain.DimensionTuple, 0, batchSize)
	for rows.Next() {
		var t domain.DimensionTuple
		if err := rows.StructScan(&t); err != nil {
			return fmt.Errorf("failed to scan dimension tuple: %w", err)
		}

		batch = append(batch, t)
		if len(batch) == batchSize {
			if err := fn(batch); err != nil {
				return err
			}
			batch = batch[:0]
		}
	}
	if err := rows.Err(); err != nil {
		return fmt.Errorf("dimension stream failed: %w", err)
	}

	if len(batch) > 0 {
		return fn(batch)
	}
	return nil
}
