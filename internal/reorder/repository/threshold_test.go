package repository

import (
	"context"
	"testing"
	"time"

	"github.com/jmoiron/sqlx"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/stocklens/stocklens-backend/internal/reorder/domain"
	"github.com/stocklens/stocklens-backend/pkg/database"
	appErrors "github.com/stocklens/stocklens-backend/pkg/errors"
	"github.com/stocklens/stocklens-backend/pkg/logger"
)

func newThresholdRepo(t *testing.T) *ThresholdRepository {
	t.Helper()

	sqlxDB, err := sqlx.Connect("sqlite3", ":memory:")
	require.NoError(t, err)
	sqlxDB.SetMaxOpenConns(1)
	t.Cleanup(func() { sqlxDB.Close() })

	repo := NewThresholdRepository(database.Wrap(sqlxDB, logger.Nop()))
	require.NoError(t, repo.Migrate(context.Background()))
	return repo
}

func tuple(productID, brandID, sizeID, supplierID int64) domain.DimensionTuple {
	return domain.DimensionTuple{
		ProductID:    productID,
		ProductName:  "Product",
		BrandID:      brandID,
		BrandName:    "Brand",
		SizeID:       sizeID,
		SizeName:     "750ml",
		SupplierID:   supplierID,
		SupplierName: "Supplier",
	}
}

func upsert(t *testing.T, repo *ThresholdRepository, tuples []domain.DimensionTuple) int {
	t.Helper()

	var inserted int
	err := repo.DB().Transaction(context.Background(), func(tx *sqlx.Tx) error {
		var err error
		inserted, err = repo.UpsertBatch(context.Background(), tx, tuples, decimal.NewFromInt(10), 1)
		return err
	})
	require.NoError(t, err)
	return inserted
}

func TestUpsertBatch_InsertsNewTuplesWithDefault(t *testing.T) {
	repo := newThresholdRepo(t)

	inserted := upsert(t, repo, []domain.DimensionTuple{
		tuple(1, 1, 1, 1),
		tuple(2, 1, 1, 1),
	})
	assert.Equal(t, 2, inserted)

	productID := int64(1)
	records, err := repo.List(context.Background(), DimensionFilter{ProductID: &productID})
	require.NoError(t, err)
	require.Len(t, records, 1)
	assert.True(t, records[0].ReorderLevel.Equal(decimal.NewFromInt(10)),
		"new tuple should get the default level, got %s", records[0].ReorderLevel)
	require.NotNil(t, records[0].CreatedBy)
	assert.Equal(t, int64(1), *records[0].CreatedBy)
}

func TestUpsertBatch_IsIdempotent(t *testing.T) {
	repo := newThresholdRepo(t)

	tuples := []domain.DimensionTuple{tuple(1, 1, 1, 1), tuple(2, 2, 2, 2)}
	assert.Equal(t, 2, upsert(t, repo, tuples))
	assert.Equal(t, 0, upsert(t, repo, tuples), "second run must insert nothing")

	supplierID := int64(1)
	records, err := repo.List(context.Background(), DimensionFilter{SupplierID: &supplierID})
	require.NoError(t, err)
	assert.Len(t, records, 1)
}

func TestUpsertBatch_PreservesConfiguredLevel(t *testing.T) {
	repo := newThresholdRepo(t)
	ctx := context.Background()

	upsert(t, repo, []domain.DimensionTuple{tuple(1, 1, 1, 1)})

	productID := int64(1)
	records, err := repo.List(ctx, DimensionFilter{ProductID: &productID})
	require.NoError(t, err)
	require.Len(t, records, 1)

	require.NoError(t, repo.UpdateLevel(ctx, records[0].ID, decimal.NewFromInt(25), 7))

	// Re-sync the same tuple with renamed dimensions.
	renamed := tuple(1, 1, 1, 1)
	renamed.ProductName = "Product Renamed"
	upsert(t, repo, []domain.DimensionTuple{renamed})

	records, err = repo.List(ctx, DimensionFilter{ProductID: &productID})
	require.NoError(t, err)
	require.Len(t, records, 1)
	assert.True(t, records[0].ReorderLevel.Equal(decimal.NewFromInt(25)),
		"re-sync must not touch a configured level, got %s", records[0].ReorderLevel)
	assert.Equal(t, "Product Renamed", records[0].ProductName)
}

func TestList_FiltersCombine(t *testing.T) {
	repo := newThresholdRepo(t)

	upsert(t, repo, []domain.DimensionTuple{
		tuple(1, 1, 1, 1),
		tuple(1, 2, 1, 1),
		tuple(1, 1, 1, 2),
	})

	productID := int64(1)
	brandID := int64(1)
	supplierID := int64(1)

	records, err := repo.List(context.Background(), DimensionFilter{
		ProductID:  &productID,
		BrandID:    &brandID,
		SupplierID: &supplierID,
	})
	require.NoError(t, err)
	require.Len(t, records, 1)
	assert.Equal(t, int64(1), records[0].SupplierID)
}

func TestLevelsByKey(t *testing.T) {
	repo := newThresholdRepo(t)
	ctx := context.Background()

	upsert(t, repo, []domain.DimensionTuple{tuple(1, 1, 1, 1), tuple(2, 2, 2, 2)})

	levels, err := repo.LevelsByKey(ctx, DimensionFilter{})
	require.NoError(t, err)
	require.Len(t, levels, 2)

	level, ok := levels[domain.TupleKey{ProductID: 1, BrandID: 1, SizeID: 1, SupplierID: 1}]
	require.True(t, ok)
	assert.True(t, level.Equal(decimal.NewFromInt(10)))

	_, ok = levels[domain.TupleKey{ProductID: 9, BrandID: 9, SizeID: 9, SupplierID: 9}]
	assert.False(t, ok, "unsynced tuples must be absent, not zero-valued")
}

func TestLevelsByItemKey_TakesHighestAcrossSuppliers(t *testing.T) {
	repo := newThresholdRepo(t)
	ctx := context.Background()

	// Same (product, brand, size) sourced from two suppliers.
	upsert(t, repo, []domain.DimensionTuple{tuple(1, 1, 1, 1), tuple(1, 1, 1, 2)})

	productID := int64(1)
	records, err := repo.List(ctx, DimensionFilter{ProductID: &productID})
	require.NoError(t, err)
	require.Len(t, records, 2)
	for _, r := range records {
		if r.SupplierID == 2 {
			require.NoError(t, repo.UpdateLevel(ctx, r.ID, decimal.NewFromInt(30), 1))
		}
	}

	levels, err := repo.LevelsByItemKey(ctx, DimensionFilter{})
	require.NoError(t, err)
	require.Len(t, levels, 1, "suppliers of one item must merge to one key")

	level, ok := levels[domain.ItemKey{ProductID: 1, BrandID: 1, SizeID: 1}]
	require.True(t, ok)
	assert.True(t, level.Equal(decimal.NewFromInt(30)),
		"the most demanding supplier level applies, got %s", level)
}

func TestUpdateLevel_UnknownID(t *testing.T) {
	repo := newThresholdRepo(t)

	err := repo.UpdateLevel(context.Background(), 404, decimal.NewFromInt(5), 1)
	require.Error(t, err)

	var appErr *appErrors.AppError
	require.ErrorAs(t, err, &appErr)
	assert.Equal(t, 404, appErr.StatusCode)
}

func TestBulkUpdateLevels(t *testing.T) {
	repo := newThresholdRepo(t)
	ctx := context.Background()

	upsert(t, repo, []domain.DimensionTuple{tuple(1, 1, 1, 1), tuple(2, 2, 2, 2)})

	productID := int64(1)
	records, err := repo.List(ctx, DimensionFilter{ProductID: &productID})
	require.NoError(t, err)
	require.Len(t, records, 1)

	updated, err := repo.BulkUpdateLevels(ctx, []LevelUpdate{
		{ID: records[0].ID, ReorderLevel: decimal.NewFromInt(30)},
		{ID: 404, ReorderLevel: decimal.NewFromInt(99)},
	}, 7)
	require.NoError(t, err)
	assert.Equal(t, 1, updated, "stale IDs are skipped, not errors")

	record, err := repo.GetByID(ctx, records[0].ID)
	require.NoError(t, err)
	assert.True(t, record.ReorderLevel.Equal(decimal.NewFromInt(30)))
	require.NotNil(t, record.UpdatedBy)
	assert.Equal(t, int64(7), *record.UpdatedBy)
}

func TestGetByID_NotFound(t *testing.T) {
	repo := newThresholdRepo(t)

	_, err := repo.GetByID(context.Background(), 404)
	require.Error(t, err)

	var appErr *appErrors.AppError
	assert.ErrorAs(t, err, &appErr)
}

func TestRefreshNames_ReportsExistence(t *testing.T) {
	repo := newThresholdRepo(t)
	ctx := context.Background()

	upsert(t, repo, []domain.DimensionTuple{tuple(1, 1, 1, 1)})

	err := repo.DB().Transaction(ctx, func(tx *sqlx.Tx) error {
		existed, err := repo.RefreshNames(ctx, tx, tuple(1, 1, 1, 1), time.Now().UTC())
		require.NoError(t, err)
		assert.True(t, existed)

		existed, err = repo.RefreshNames(ctx, tx, tuple(9, 9, 9, 9), time.Now().UTC())
		require.NoError(t, err)
		assert.False(t, existed)
		return nil
	})
	require.NoError(t, err)
}
