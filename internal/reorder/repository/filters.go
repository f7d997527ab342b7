package repository

// DimensionFilter narrows dimension-keyed queries by product, brand and
// supplier. A nil field means the dimension is unconstrained.
type DimensionFilter struct {
	ProductID  *int64
	BrandID    *int64
	SupplierID *int64
}

// Empty reports whether no dimension filter is set
func (f DimensionFilter) Empty() bool {
	return f.ProductID == nil && f.BrandID == nil && f.SupplierID == nil
}
