package repository

import (
	"context"
	"testing"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/stocklens/stocklens-backend/pkg/database"
	"github.com/stocklens/stocklens-backend/pkg/logger"
	"github.com/stocklens/stocklens-backend/pkg/testutil"
)

var stockColumns = []string{
	"product_id", "product_name", "brand_id", "brand_name",
	"size_id", "size_name", "supplier_id", "supplier_name",
	"downstream_qty", "upstream_qty",
}

func TestAggregate_Unfiltered(t *testing.T) {
	mockDB := testutil.NewMockDB(t)
	defer mockDB.Close()

	rows := sqlmock.NewRows(stockColumns).
		AddRow(1, "Product", 1, "Brand", 1, "750ml", 1, "Supplier", "5", "20").
		AddRow(2, "Other", 1, "Brand", 1, "750ml", 1, "Supplier", "0", "3")

	mockDB.Mock.ExpectQuery(`SELECT`).
		WithArgs(54).
		WillReturnRows(rows)

	repo := NewStockRepository(database.Wrap(mockDB.DB, logger.Nop()), 54)

	got, err := repo.Aggregate(context.Background(), DimensionFilter{})
	require.NoError(t, err)
	require.Len(t, got, 2)

	assert.Equal(t, int64(1), got[0].ProductID)
	assert.True(t, got[0].DownstreamQty.Equal(decimal.NewFromInt(5)))
	assert.True(t, got[0].UpstreamQty.Equal(decimal.NewFromInt(20)))
	assert.True(t, got[0].TotalQty().Equal(decimal.NewFromInt(25)))

	// COALESCEd downstream for a lot with no retail movement.
	assert.True(t, got[1].DownstreamQty.IsZero())

	mockDB.ExpectationsWereMet(t)
}

func TestAggregate_FilterArgsSharePositions(t *testing.T) {
	mockDB := testutil.NewMockDB(t)
	defer mockDB.Close()

	mockDB.Mock.ExpectQuery(`SELECT`).
		WithArgs(54, int64(7), int64(3)).
		WillReturnRows(sqlmock.NewRows(stockColumns))

	repo := NewStockRepository(database.Wrap(mockDB.DB, logger.Nop()), 54)

	productID := int64(7)
	supplierID := int64(3)
	got, err := repo.Aggregate(context.Background(), DimensionFilter{
		ProductID:  &productID,
		SupplierID: &supplierID,
	})
	require.NoError(t, err)
	assert.Empty(t, got)

	mockDB.ExpectationsWereMet(t)
}

var itemStockColumns = []string{
	"product_id", "product_name", "brand_id", "brand_name",
	"size_id", "size_name", "downstream_qty", "upstream_qty",
}

func TestAggregateByItem_GroupsWithoutSupplier(t *testing.T) {
	mockDB := testutil.NewMockDB(t)
	defer mockDB.Close()

	// The grouping key must end at the size dimension; rows from different
	// suppliers arrive pre-merged.
	mockDB.Mock.ExpectQuery(`GROUP BY p\.id, p\.name, b\.id, b\.name, r\.id, r\.name\s+ORDER BY p\.name`).
		WithArgs(54, int64(1)).
		WillReturnRows(sqlmock.NewRows(itemStockColumns).
			AddRow(1, "Product", 1, "Brand", 1, "750ml", "8", "22"))

	repo := NewStockRepository(database.Wrap(mockDB.DB, logger.Nop()), 54)

	productID := int64(1)
	got, err := repo.AggregateByItem(context.Background(), DimensionFilter{ProductID: &productID})
	require.NoError(t, err)
	require.Len(t, got, 1)

	assert.True(t, got[0].TotalQty().Equal(decimal.NewFromInt(30)))
	assert.Zero(t, got[0].SupplierID)
	assert.Empty(t, got[0].SupplierName)

	mockDB.ExpectationsWereMet(t)
}

func TestAggregate_QueryError(t *testing.T) {
	mockDB := testutil.NewMockDB(t)
	defer mockDB.Close()

	mockDB.Mock.ExpectQuery(`SELECT`).WillReturnError(assert.AnError)

	repo := NewStockRepository(database.Wrap(mockDB.DB, logger.Nop()), 54)

	_, err := repo.Aggregate(context.Background(), DimensionFilter{})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "failed to aggregate stock")
}
