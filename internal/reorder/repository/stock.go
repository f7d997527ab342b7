package repository

import (
	"context"
	"fmt"
	"strings"

	"github.com/stocklens/stocklens-backend/internal/reorder/domain"
	"github.com/stocklens/stocklens-backend/pkg/database"
)

// StockRow is one aggregated tuple with its two tier quantities
type StockRow struct {
	domain.DimensionTuple
	domain.StockSnapshot
}

// StockRepository computes the per-tuple tier quantities from the source
// store. Each call runs one read-only aggregate query; there is no shared
// state, so concurrent requests are safe.
type StockRepository struct {
	db *database.DB
	// retailLocationID identifies the downstream/retail tier in the
	// salablegoods movement table
	retailLocationID int
}

// NewStockRepository creates a new stock repository
func NewStockRepository(db *database.DB, retailLocationID int) *StockRepository {
	return &StockRepository{db: db, retailLocationID: retailLocationID}
}

// Aggregate returns one row per dimension tuple matching the filter, carrying
// the warehouse-tier net quantity (purchased - transferred - returned -
// journal) and the retail-tier net quantity (inflow - outflow - journal at
// the retail location). Tuples with no retail movement still appear with a
// zero downstream quantity via the left join. Rows are ordered by supplier,
// product, brand and size names.
//
// The retail half is pre-aggregated per stock lot in a subquery scoped to the
// filtered lot set, and only then joined, so the grouping of the outer query
// never double-counts movement rows.
func (r *StockRepository) Aggregate(ctx context.Context, f DimensionFilter) ([]StockRow, error) {
	var (
		outer []string
		inner []string
		args  []interface{}
	)

	// $1 is the retail location in both halves
	args = append(args, r.retailLocationID)
	next := 2

	if f.ProductID != nil {
		outer = append(outer, fmt.Sprintf("p.id = $%d", next))
		inner = append(inner, fmt.Sprintf("i.productid = $%d", next))
		args = append(args, *f.ProductID)
		next++
	}
	if f.BrandID != nil {
		outer = append(outer, fmt.Sprintf("b.id = $%d", next))
		inner = append(inner, fmt.Sprintf("i.brandid = $%d", next))
		args = append(args, *f.BrandID)
		next++
	}
	if f.SupplierID != nil {
		outer = append(outer, fmt.Sprintf("s.supplierid = $%d", next))
		inner = append(inner, fmt.Sprintf("s.supplierid = $%d", next))
		args = append(args, *f.SupplierID)
		next++
	}

	innerWhere := ""
	if len(inner) > 0 {
		innerWhere = " AND " + strings.Join(inner, " AND ")
	}
	outerWhere := ""
	if len(outer) > 0 {
		outerWhere = " AND " + strings.Join(outer, " AND ")
	}

	query := fmt.Sprintf(`
	SELECT
		p.id          AS product_id,
		p.name        AS product_name,
		b.id          AS brand_id,
		b.name        AS brand_name,
		r.id          AS size_id,
		r.name        AS size_name,
		s.supplierid  AS supplier_id,
		sup.name      AS supplier_name,
		COALESCE(SUM(sg.retail_qty), 0)                              AS downstream_qty,
		SUM(s.qty - s.transfered - s.returnqty - s.journalqty)       AS upstream_qty
	FROM stock s
	LEFT JOIN (
		SELECT stockid, SUM(iqty - oqty - jqty) AS retail_qty
		FROM salablegoods
		WHERE locationid = $1
		  AND stockid IN (
			SELECT s.id FROM stock s
			JOIN items i ON i.id = s.itemid
			WHERE 1=1%s
		  )
		GROUP BY stockid
	) sg ON sg.stockid = s.id
	JOIN items i          ON i.id = s.itemid
	JOIN products p       ON p.id = i.productid
	JOIN brand b          ON b.id = i.brandid
	JOIN referencelist r  ON r.id = i.sizeid AND r.type = 'SIZE'
	JOIN supplier sup     ON sup.id = s.supplierid
	WHERE b.name NOT IN ('', 'UNSPECIFIED', 'NONE')
	  AND r.name <> ''%s
	GROUP BY p.id, p.name, b.id, b.name, r.id, r.name, s.supplierid, sup.name
	ORDER BY sup.name, p.name, b.name, r.name`, innerWhere, outerWhere)

	rows := []StockRow{}
	if err := r.db.SelectContext(ctx, &rows, query, args...); err != nil {
		return nil, fmt.Errorf("failed to aggregate stock: %w", err)
	}
	return rows, nil
}

// AggregateByItem returns one row per (product, brand, size), merging stock
// across suppliers. A supplier filter still narrows which lots contribute,
// but the grouping key carries no supplier, so an item sourced from several
// suppliers yields a single row with combined totals. The supplier fields of
// the returned rows are left zero-valued.
func (r *StockRepository) AggregateByItem(ctx context.Context, f DimensionFilter) ([]StockRow, error) {
	var (
		outer []string
		inner []string
		args  []interface{}
	)

	args = append(args, r.retailLocationID)
	next := 2

	if f.ProductID != nil {
		outer = append(outer, fmt.Sprintf("p.id = $%d", next))
		inner = append(inner, fmt.Sprintf("i.productid = $%d", next))
		args = append(args, *f.ProductID)
		next++
	}
	if f.BrandID != nil {
		outer = append(outer, fmt.Sprintf("b.id = $%d", next))
		inner = append(inner, fmt.Sprintf("i.brandid = $%d", next))
		args = append(args, *f.BrandID)
		next++
	}
	if f.SupplierID != nil {
		outer = append(outer, fmt.Sprintf("s.supplierid = $%d", next))
		inner = append(inner, fmt.Sprintf("s.supplierid = $%d", next))
		args = append(args, *f.SupplierID)
		next++
	}

	innerWhere := ""
	if len(inner) > 0 {
		innerWhere = " AND " + strings.Join(inner, " AND ")
	}
	outerWhere := ""
	if len(outer) > 0 {
		outerWhere = " AND " + strings.Join(outer, " AND ")
	}

	query := fmt.Sprintf(`
	SELECT
		p.id          AS product_id,
		p.name        AS product_name,
		b.id          AS brand_id,
		b.name        AS brand_name,
		r.id          AS size_id,
		r.name        AS size_name,
		COALESCE(SUM(sg.retail_qty), 0)                              AS downstream_qty,
		SUM(s.qty - s.transfered - s.returnqty - s.journalqty)       AS upstream_qty
	FROM stock s
	LEFT JOIN (
		SELECT stockid, SUM(iqty - oqty - jqty) AS retail_qty
		FROM salablegoods
		WHERE locationid = $1
		  AND stockid IN (
			SELECT s.id FROM stock s
			JOIN items i ON i.id = s.itemid
			WHERE 1=1%s
		  )
		GROUP BY stockid
	) sg ON sg.stockid = s.id
	JOIN items i          ON i.id = s.itemid
	JOIN products p       ON p.id = i.productid
	JOIN brand b          ON b.id = i.brandid
	JOIN referencelist r  ON r.id = i.sizeid AND r.type = 'SIZE'
	WHERE b.name NOT IN ('', 'UNSPECIFIED', 'NONE')
	  AND r.name <> ''%s
	GROUP BY p.id, p.name, b.id, b.name, r.id, r.name
	ORDER BY p.name, b.name, r.name`, innerWhere, outerWhere)

	rows := []StockRow{}
	if err := r.db.SelectContext(ctx, &rows, query, args...); err != nil {
		return nil, fmt.Errorf("failed to aggregate stock by item: %w", err)
	}
	return rows, nil
}
