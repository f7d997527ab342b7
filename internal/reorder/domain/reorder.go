// Package domain holds the reorder-level business types and the pure
// classification rules. Nothing in this package performs I/O.
package domain

import (
	"time"

	"github.com/shopspring/decimal"
)

// Placeholder brand names excluded from dimension extraction. Rows carrying
// these were never given a real brand in the operational system.
var placeholderNames = map[string]struct{}{
	"":            {},
	"UNSPECIFIED": {},
	"NONE":        {},
}

// IsPlaceholderName reports whether a brand or size name is one of the
// sentinel placeholders.
func IsPlaceholderName(name string) bool {
	_, ok := placeholderNames[name]
	return ok
}

// TupleKey is the composite natural key of a dimension tuple. It is a value
// type so it can be used directly as a map key when joining stock rows with
// threshold records.
type TupleKey struct {
	ProductID  int64
	BrandID    int64
	SizeID     int64
	SupplierID int64
}

// DimensionTuple identifies one trackable stock line: a unique
// product/brand/size/supplier combination with resolved display names.
type DimensionTuple struct {
	ProductID    int64  `db:"product_id" json:"product_id"`
	ProductName  string `db:"product_name" json:"product_name"`
	BrandID      int64  `db:"brand_id" json:"brand_id"`
	BrandName    string `db:"brand_name" json:"brand_name"`
	SizeID       int64  `db:"size_id" json:"size_id"`
	SizeName     string `db:"size_name" json:"size_name"`
	SupplierID   int64  `db:"supplier_id" json:"supplier_id"`
	SupplierName string `db:"supplier_name" json:"supplier_name"`
}

// Key returns the composite natural key of the tuple
func (t DimensionTuple) Key() TupleKey {
	return TupleKey{
		ProductID:  t.ProductID,
		BrandID:    t.BrandID,
		SizeID:     t.SizeID,
		SupplierID: t.SupplierID,
	}
}

// ItemKey is the supplier-less (product, brand, size) key used by the tier
// policy, which classifies merged totals across suppliers.
type ItemKey struct {
	ProductID int64
	BrandID   int64
	SizeID    int64
}

// ItemKey returns the supplier-less key of the tuple
func (t DimensionTuple) ItemKey() ItemKey {
	return ItemKey{
		ProductID: t.ProductID,
		BrandID:   t.BrandID,
		SizeID:    t.SizeID,
	}
}

// ThresholdRecord is one row of the threshold store. The reorder level is the
// only field user edits may change; the reconciler only ever refreshes the
// display names.
type ThresholdRecord struct {
	ID int64 `db:"id" json:"id"`
	DimensionTuple
	ReorderLevel decimal.Decimal `db:"reorder_level" json:"reorder_level"`
	Status       int             `db:"status" json:"status"`
	CreatedBy    *int64          `db:"created_by" json:"created_by,omitempty"`
	UpdatedBy    *int64          `db:"updated_by" json:"updated_by,omitempty"`
	CreatedAt    time.Time       `db:"created_at" json:"created_at"`
	UpdatedAt    time.Time       `db:"updated_at" json:"updated_at"`
}

// StockSnapshot carries the two tier quantities computed per tuple at request
// time. It is never persisted.
type StockSnapshot struct {
	// DownstreamQty is the retail-tier net on-hand (inflow - outflow - journal)
	DownstreamQty decimal.Decimal `db:"downstream_qty" json:"downstream_qty"`
	// UpstreamQty is the warehouse-tier net on-hand
	// (purchased - transferred - returned - journal)
	UpstreamQty decimal.Decimal `db:"upstream_qty" json:"upstream_qty"`
}

// TotalQty is the combined on-hand across both tiers
func (s StockSnapshot) TotalQty() decimal.Decimal {
	return s.DownstreamQty.Add(s.UpstreamQty)
}

// ClassifiedRow is a dimension tuple with its stock snapshot, applicable
// reorder level and computed status.
type ClassifiedRow struct {
	DimensionTuple
	StockSnapshot
	ReorderLevel decimal.Decimal `json:"reorder_level"`
	Status       Status          `json:"status"`
}

// SummaryRow aggregates the per-size statuses of one
// (supplier, product, brand) group.
type SummaryRow struct {
	SupplierID    int64  `json:"supplier_id"`
	SupplierName  string `json:"supplier_name"`
	ProductID     int64  `json:"product_id"`
	ProductName   string `json:"product_name"`
	BrandID       int64  `json:"brand_id"`
	BrandName     string `json:"brand_name"`
	Reorder       int    `json:"reorder"`
	TransferStock int    `json:"transfer-stock"`
	OverStock     int    `json:"over-stock"`
	Sufficient    int    `json:"sufficient"`
}
