package repository

import (
	"context"
	"fmt"

	"github.com/lib/pq"
	"github.com/shopspring/decimal"

	"github.com/stocklens/stocklens-backend/pkg/database"
)

// LocationProductRow is one line of the per-supplier report: combined
// purchase, sales and remaining stock of a product at a location.
type LocationProductRow struct {
	Location string          `db:"location" json:"location"`
	Product  string          `db:"product" json:"product"`
	Purchase decimal.Decimal `db:"purchase" json:"purchase"`
	Sales    decimal.Decimal `db:"sales" json:"sales"`
	Stock    decimal.Decimal `db:"stock" json:"stock"`
}

// SupplierRow is one line of the per-product report: combined purchase,
// sales and remaining stock sourced from a supplier.
type SupplierRow struct {
	Supplier string          `db:"supplier" json:"supplier"`
	Purchase decimal.Decimal `db:"purchase" json:"purchase"`
	Sales    decimal.Decimal `db:"sales" json:"sales"`
	Stock    decimal.Decimal `db:"stock" json:"stock"`
}

// ReportsRepository computes movement roll-up reports from the source store.
// Both reports union a warehouse half (stock lots, purchase quantities) with
// a retail half (salable-goods movements, sales quantities) and re-aggregate
// the union, so a dimension present in only one half still reports complete
// zero-filled figures.
type ReportsRepository struct {
	db        *database.DB
	companyID int
}

// NewReportsRepository creates a new reports repository
func NewReportsRepository(db *database.DB, companyID int) *ReportsRepository {
	return &ReportsRepository{db: db, companyID: companyID}
}

// supplierProductsQuery rolls up one supplier's movement per location and
// product. Warehouse-tier lots may carry no location reference, hence the
// COALESCE to a literal WAREHOUSE bucket.
const supplierProductsQuery = `
	SELECT location, product,
	       SUM(purchase) AS purchase,
	       SUM(sales)    AS sales,
	       SUM(stock)    AS stock
	FROM (
		SELECT COALESCE(r.name, 'WAREHOUSE') AS location,
		       p.name AS product,
		       SUM(st.qty) AS purchase,
		       0 AS sales,
		       SUM(st.qty - st.transfered - st.returnqty - st.journalqty) AS stock
		FROM stock st
		JOIN supplier sup        ON sup.id = st.supplierid
		JOIN products p          ON p.id = st.productid
		LEFT JOIN referencelist r ON r.id = st.locationid
		WHERE st.companyid = $1 AND st.supplierid = $2
		GROUP BY r.name, p.name

		UNION ALL

		SELECT r.name AS location,
		       p.name AS product,
		       0 AS purchase,
		       SUM(sg.oqty) AS sales,
		       SUM(sg.iqty - sg.oqty - sg.jqty) AS stock
		FROM stock st
		JOIN salablegoods sg     ON sg.stockid = st.id
		JOIN supplier sup        ON sup.id = st.supplierid
		JOIN products p          ON p.id = st.productid
		JOIN referencelist r     ON r.id = sg.locationid
		WHERE st.companyid = $1 AND st.supplierid = $2
		GROUP BY r.name, p.name
	) combined
	GROUP BY location, product
	ORDER BY location, product`

// SupplierProducts reports purchase/sales/stock per location and product for
// one supplier
func (r *ReportsRepository) SupplierProducts(ctx context.Context, supplierID int64) ([]LocationProductRow, error) {
	rows := []LocationProductRow{}
	if err := r.db.SelectContext(ctx, &rows, supplierProductsQuery, r.companyID, supplierID); err != nil {
		return nil, fmt.Errorf("failed to report supplier products: %w", err)
	}
	return rows, nil
}

// productSuppliersQuery rolls up movement of a product set per supplier
const productSuppliersQuery = `
	SELECT supplier,
	       SUM(purchase) AS purchase,
	       SUM(sales)    AS sales,
	       SUM(stock)    AS stock
	FROM (
		SELECT sup.name AS supplier,
		       SUM(st.qty) AS purchase,
		       0 AS sales,
		       SUM(st.qty - st.transfered - st.returnqty - st.journalqty) AS stock
		FROM stock st
		JOIN supplier sup ON sup.id = st.supplierid
		JOIN products p   ON p.id = st.productid
		WHERE st.companyid = $1 AND st.productid = ANY($2)
		GROUP BY sup.name

		UNION ALL

		SELECT sup.name AS supplier,
		       0 AS purchase,
		       SUM(sg.oqty) AS sales,
		       SUM(sg.iqty - sg.oqty - sg.jqty) AS stock
		FROM stock st
		JOIN salablegoods sg ON sg.stockid = st.id
		JOIN supplier sup    ON sup.id = st.supplierid
		JOIN products p      ON p.id = st.productid
		WHERE st.companyid = $1 AND st.productid = ANY($2)
		GROUP BY sup.name
	) combined
	GROUP BY supplier
	ORDER BY supplier`

// ProductSuppliers reports purchase/sales/stock per supplier for a set of
// products
func (r *ReportsRepository) ProductSuppliers(ctx context.Context, productIDs []int64) ([]SupplierRow, error) {
	rows := []SupplierRow{}
	if err := r.db.SelectContext(ctx, &rows, productSuppliersQuery, r.companyID, pq.Array(productIDs)); err != nil {
		return nil, fmt.Errorf("failed to report product suppliers: %w", err)
	}
	return rows, nil
}
