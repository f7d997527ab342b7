package repository

import (
	"context"
	"fmt"

	"github.com/stocklens/stocklens-backend/pkg/database"
)

// RefEntry is one id/name pair for a filter dropdown
type RefEntry struct {
	ID   int64  `db:"id" json:"id"`
	Name string `db:"name" json:"name"`
}

// RefDataRepository reads the active product/brand/supplier reference lists
// from the source store. These back the filter dropdowns of the status and
// threshold pages.
type RefDataRepository struct {
	db *database.DB
}

// NewRefDataRepository creates a new reference data repository
func NewRefDataRepository(db *database.DB) *RefDataRepository {
	return &RefDataRepository{db: db}
}

// Products returns active products ordered by name
func (r *RefDataRepository) Products(ctx context.Context) ([]RefEntry, error) {
	entries := []RefEntry{}
	err := r.db.SelectContext(ctx, &entries, `
		SELECT DISTINCT id, name FROM products
		WHERE isactive = true
		ORDER BY name`)
	if err != nil {
		return nil, fmt.Errorf("failed to list products: %w", err)
	}
	return entries, nil
}

// Brands returns active, named brands ordered by name
func (r *RefDataRepository) Brands(ctx context.Context) ([]RefEntry, error) {
	entries := []RefEntry{}
	err := r.db.SelectContext(ctx, &entries, `
		SELECT DISTINCT id, name FROM brand
		WHERE isactive = true AND name <> ''
		ORDER BY name`)
	if err != nil {
		return nil, fmt.Errorf("failed to list brands: %w", err)
	}
	return entries, nil
}

// Suppliers returns active, named suppliers ordered by name
func (r *RefDataRepository) Suppliers(ctx context.Context) ([]RefEntry, error) {
	entries := []RefEntry{}
	err := r.db.SelectContext(ctx, &entries, `
		SELECT DISTINCT id, name FROM supplier
		WHERE isactive = true AND name <> ''
		ORDER BY name`)
	if err != nil {
		return nil, fmt.Errorf("failed to list suppliers: %w", err)
	}
	return entries, nil
}
