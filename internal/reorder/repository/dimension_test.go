package repository

import (
	"context"
	"testing"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/stocklens/stocklens-backend/internal/reorder/domain"
	"github.com/stocklens/stocklens-backend/pkg/database"
	"github.com/stocklens/stocklens-backend/pkg/logger"
	"github.com/stocklens/stocklens-backend/pkg/testutil"
)

var tupleColumns = []string{
	"product_id", "product_name", "brand_id", "brand_name",
	"size_id", "size_name", "supplier_id", "supplier_name",
}

func tupleRow(rows *sqlmock.Rows, productID int64) *sqlmock.Rows {
	return rows.AddRow(productID, "Product", 1, "Brand", 1, "750ml", 1, "Supplier")
}

func TestStreamTuples_BatchesInOrder(t *testing.T) {
	mockDB := testutil.NewMockDB(t)
	defer mockDB.Close()

	rows := sqlmock.NewRows(tupleColumns)
	for i := int64(1); i <= 5; i++ {
		tupleRow(rows, i)
	}
	mockDB.Mock.ExpectQuery(`SELECT DISTINCT`).WillReturnRows(rows)

	repo := NewDimensionRepository(database.Wrap(mockDB.DB, logger.Nop()))

	var batches [][]int64
	err := repo.StreamTuples(context.Background(), 2, func(batch []domain.DimensionTuple) error {
		ids := make([]int64, 0, len(batch))
		for _, tup := range batch {
			ids = append(ids, tup.ProductID)
		}
		batches = append(batches, ids)
		return nil
	})
	require.NoError(t, err)

	// Two full batches plus the remainder flush.
	assert.Equal(t, [][]int64{{1, 2}, {3, 4}, {5}}, batches)
	mockDB.ExpectationsWereMet(t)
}

func TestStreamTuples_CallbackErrorAbortsStream(t *testing.T) {
	mockDB := testutil.NewMockDB(t)
	defer mockDB.Close()

	rows := sqlmock.NewRows(tupleColumns)
	for i := int64(1); i <= 4; i++ {
		tupleRow(rows, i)
	}
	mockDB.Mock.ExpectQuery(`SELECT DISTINCT`).WillReturnRows(rows)

	repo := NewDimensionRepository(database.Wrap(mockDB.DB, logger.Nop()))

	calls := 0
	err := repo.StreamTuples(context.Background(), 2, func(batch []domain.DimensionTuple) error {
		calls++
		return assert.AnError
	})
	require.ErrorIs(t, err, assert.AnError)
	assert.Equal(t, 1, calls)
}

func TestStreamTuples_EmptyResult(t *testing.T) {
	mockDB := testutil.NewMockDB(t)
	defer mockDB.Close()

	mockDB.Mock.ExpectQuery(`SELECT DISTINCT`).WillReturnRows(sqlmock.NewRows(tupleColumns))

	repo := NewDimensionRepository(database.Wrap(mockDB.DB, logger.Nop()))

	err := repo.StreamTuples(context.Background(), 2, func(batch []domain.DimensionTuple) error {
		t.Fatal("callback must not run for an empty tuple set")
		return nil
	})
	require.NoError(t, err)
}
