package repository

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/jmoiron/sqlx"
	"github.com/shopspring/decimal"

	"github.com/stocklens/stocklens-backend/internal/reorder/domain"
	"github.com/stocklens/stocklens-backend/pkg/database"
	"github.com/stocklens/stocklens-backend/pkg/errors"
)

// thresholdSchema is the threshold store DDL. The store lives in its own
// SQLite database so its lifecycle is independent of the operational system
// owning the source store. Kept in sync with migrations/0001_reorder_level.sql.
const thresholdSchema = `
CREATE TABLE IF NOT EXISTS reorder_level (
	id            INTEGER PRIMARY KEY AUTOINCREMENT,
	product_id    INTEGER NOT NULL,
	product_name  TEXT NOT NULL,
	brand_id      INTEGER NOT NULL,
	brand_name    TEXT NOT NULL,
	size_id       INTEGER NOT NULL,
	size_name     TEXT NOT NULL,
	supplier_id   INTEGER NOT NULL,
	supplier_name TEXT NOT NULL,
	reorder_level NUMERIC NOT NULL DEFAULT 10,
	status        INTEGER NOT NULL DEFAULT 1,
	created_by    INTEGER,
	updated_by    INTEGER,
	created_at    DATETIME NOT NULL,
	updated_at    DATETIME NOT NULL,
	UNIQUE (product_id, brand_id, size_id, supplier_id)
);
`

// LevelUpdate is one row of a bulk reorder-level edit
type LevelUpdate struct {
	ID           int64           `json:"id" validate:"required"`
	ReorderLevel decimal.Decimal `json:"reorder_level"`
}

// ThresholdRepository owns the reorder_level table. It is the only writer of
// reorder levels in the system.
type ThresholdRepository struct {
	db *database.DB
}

// NewThresholdRepository creates a new threshold repository
func NewThresholdRepository(db *database.DB) *ThresholdRepository {
	return &ThresholdRepository{db: db}
}

// Migrate creates the reorder_level table if it does not exist
func (r *ThresholdRepository) Migrate(ctx context.Context) error {
	if _, err := r.db.ExecContext(ctx, thresholdSchema); err != nil {
		return fmt.Errorf("failed to migrate threshold store: %w", err)
	}
	return nil
}

// DB exposes the underlying handle so the reconciler can span one transaction
// over a whole sync run.
func (r *ThresholdRepository) DB() *database.DB {
	return r.db
}

// RefreshNames updates the display-name fields of an existing tuple. The
// reorder level is deliberately absent from the SET list: a re-sync must
// never overwrite a user-configured threshold. Returns true when a row with
// the tuple's natural key existed.
func (r *ThresholdRepository) RefreshNames(ctx context.Context, tx *sqlx.Tx, t domain.DimensionTuple, now time.Time) (bool, error) {
	res, err := tx.ExecContext(ctx, `
		UPDATE reorder_level
		SET product_name = ?, brand_name = ?, size_name = ?, supplier_name = ?, updated_at = ?
		WHERE product_id = ? AND brand_id = ? AND size_id = ? AND supplier_id = ?`,
		t.ProductName, t.BrandName, t.SizeName, t.SupplierName, now,
		t.ProductID, t.BrandID, t.SizeID, t.SupplierID,
	)
	if err != nil {
		return false, fmt.Errorf("failed to refresh names: %w", err)
	}

	n, err := res.RowsAffected()
	if err != nil {
		return false, err
	}
	return n > 0, nil
}

// InsertWithDefault inserts a first-seen tuple with the store default reorder
// level and created_by attribution. The ON CONFLICT clause absorbs the race
// with an overlapping sync run that inserted the same key first; in that case
// only the names are refreshed, again leaving reorder_level untouched.
func (r *ThresholdRepository) InsertWithDefault(ctx context.Context, tx *sqlx.Tx, t domain.DimensionTuple, defaultLevel decimal.Decimal, createdBy int64, now time.Time) error {
	_, err := tx.ExecContext(ctx, `
		INSERT INTO reorder_level (
			product_id, product_name, brand_id, brand_name,
			size_id, size_name, supplier_id, supplier_name,
			reorder_level, status, created_by, created_at, updated_at
		) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, 1, ?, ?, ?)
		ON CONFLICT (product_id, brand_id, size_id, supplier_id) DO UPDATE SET
			product_name = excluded.product_name,
			brand_name = excluded.brand_name,
			size_name = excluded.size_name,
			supplier_name = excluded.supplier_name,
			updated_at = excluded.updated_at`,
		t.ProductID, t.ProductName, t.BrandID, t.BrandName,
		t.SizeID, t.SizeName, t.SupplierID, t.SupplierName,
		defaultLevel, createdBy, now, now,
	)
	if err != nil {
		return fmt.Errorf("failed to insert threshold record: %w", err)
	}
	return nil
}

// UpsertBatch reconciles one extractor batch into the store within the given
// transaction. Existing tuples get their names refreshed, new tuples are
// inserted with the default level. Returns the number of newly inserted rows.
func (r *ThresholdRepository) UpsertBatch(ctx context.Context, tx *sqlx.Tx, tuples []domain.DimensionTuple, defaultLevel decimal.Decimal, createdBy int64) (int, error) {
	now := time.Now().UTC()
	inserted := 0

	for _, t := range tuples {
		existed, err := r.RefreshNames(ctx, tx, t, now)
		if err != nil {
			return inserted, err
		}
		if existed {
			continue
		}
		if err := r.InsertWithDefault(ctx, tx, t, defaultLevel, createdBy, now); err != nil {
			return inserted, err
		}
		inserted++
	}

	return inserted, nil
}

// List returns threshold records matching the filter, ordered by supplier,
// product, brand and size names for stable pagination and export.
func (r *ThresholdRepository) List(ctx context.Context, f DimensionFilter) ([]domain.ThresholdRecord, error) {
	query := `
		SELECT id, product_id, product_name, brand_id, brand_name,
		       size_id, size_name, supplier_id, supplier_name,
		       reorder_level, status, created_by, updated_by, created_at, updated_at
		FROM reorder_level WHERE 1=1`
	args := []interface{}{}

	if f.ProductID != nil {
		query += ` AND product_id = ?`
		args = append(args, *f.ProductID)
	}
	if f.BrandID != nil {
		query += ` AND brand_id = ?`
		args = append(args, *f.BrandID)
	}
	if f.SupplierID != nil {
		query += ` AND supplier_id = ?`
		args = append(args, *f.SupplierID)
	}

	query += ` ORDER BY supplier_name, product_name, brand_name, size_name`

	records := []domain.ThresholdRecord{}
	if err := r.db.SelectContext(ctx, &records, query, args...); err != nil {
		return nil, fmt.Errorf("failed to list threshold records: %w", err)
	}
	return records, nil
}

// LevelsByKey returns the configured reorder levels keyed by the composite
// natural key, for joining against live stock aggregates. Tuples without a
// record are simply absent; callers treat them as level 0.
func (r *ThresholdRepository) LevelsByKey(ctx context.Context, f DimensionFilter) (map[domain.TupleKey]decimal.Decimal, error) {
	query := `
		SELECT product_id, brand_id, size_id, supplier_id, reorder_level
		FROM reorder_level WHERE 1=1`
	args := []interface{}{}

	if f.ProductID != nil {
		query += ` AND product_id = ?`
		args = append(args, *f.ProductID)
	}
	if f.BrandID != nil {
		query += ` AND brand_id = ?`
		args = append(args, *f.BrandID)
	}
	if f.SupplierID != nil {
		query += ` AND supplier_id = ?`
		args = append(args, *f.SupplierID)
	}

	rows, err := r.db.QueryxContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to load reorder levels: %w", err)
	}
	defer rows.Close()

	levels := make(map[domain.TupleKey]decimal.Decimal)
	for rows.Next() {
		var key domain.TupleKey
		var level decimal.Decimal
		if err := rows.Scan(&key.ProductID, &key.BrandID, &key.SizeID, &key.SupplierID, &level); err != nil {
			return nil, fmt.Errorf("failed to scan reorder level: %w", err)
		}
		levels[key] = level
	}
	return levels, rows.Err()
}

// LevelsByItemKey returns configured reorder levels keyed by the supplier-less
// (product, brand, size) key, for the tier policy's merged rows. When the
// suppliers of an item carry different levels, the highest one applies: the
// merged stock must satisfy the most demanding threshold before the item is
// considered healthy.
func (r *ThresholdRepository) LevelsByItemKey(ctx context.Context, f DimensionFilter) (map[domain.ItemKey]decimal.Decimal, error) {
	query := `
		SELECT product_id, brand_id, size_id, MAX(reorder_level)
		FROM reorder_level WHERE 1=1`
	args := []interface{}{}

	if f.ProductID != nil {
		query += ` AND product_id = ?`
		args = append(args, *f.ProductID)
	}
	if f.BrandID != nil {
		query += ` AND brand_id = ?`
		args = append(args, *f.BrandID)
	}
	if f.SupplierID != nil {
		query += ` AND supplier_id = ?`
		args = append(args, *f.SupplierID)
	}

	query += ` GROUP BY product_id, brand_id, size_id`

	rows, err := r.db.QueryxContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to load item reorder levels: %w", err)
	}
	defer rows.Close()

	levels := make(map[domain.ItemKey]decimal.Decimal)
	for rows.Next() {
		var key domain.ItemKey
		var level decimal.Decimal
		if err := rows.Scan(&key.ProductID, &key.BrandID, &key.SizeID, &level); err != nil {
			return nil, fmt.Errorf("failed to scan item reorder level: %w", err)
		}
		levels[key] = level
	}
	return levels, rows.Err()
}

// GetByID gets a threshold record by its surrogate ID
func (r *ThresholdRepository) GetByID(ctx context.Context, id int64) (*domain.ThresholdRecord, error) {
	var record domain.ThresholdRecord
	query := `
		SELECT id, product_id, product_name, brand_id, brand_name,
		       size_id, size_name, supplier_id, supplier_name,
		       reorder_level, status, created_by, updated_by, created_at, updated_at
		FROM reorder_level WHERE id = ?`
	if err := r.db.GetContext(ctx, &record, query, id); err != nil {
		if err == sql.ErrNoRows {
			return nil, errors.NotFound("reorder level")
		}
		return nil, err
	}
	return &record, nil
}

// UpdateLevel sets the reorder level of a single record, recording the actor
func (r *ThresholdRepository) UpdateLevel(ctx context.Context, id int64, level decimal.Decimal, updatedBy int64) error {
	res, err := r.db.ExecContext(ctx, `
		UPDATE reorder_level
		SET reorder_level = ?, updated_by = ?, updated_at = ?
		WHERE id = ?`,
		level, updatedBy, time.Now().UTC(), id,
	)
	if err != nil {
		return fmt.Errorf("failed to update reorder level: %w", err)
	}

	n, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if n == 0 {
		return errors.NotFound("reorder level")
	}
	return nil
}

// BulkUpdateLevels applies a list of reorder-level edits in one transaction.
// Rows referencing unknown IDs are skipped, matching single-row edit history
// semantics where a stale grid row is not an error. Returns the number of
// rows actually updated.
func (r *ThresholdRepository) BulkUpdateLevels(ctx context.Context, updates []LevelUpdate, updatedBy int64) (int, error) {
	updated := 0
	now := time.Now().UTC()

	err := r.db.Transaction(ctx, func(tx *sqlx.Tx) error {
		for _, u := range updates {
			res, err := tx.ExecContext(ctx, `
				UPDATE reorder_level
				SET reorder_level = ?, updated_by = ?, updated_at = ?
				WHERE id = ?`,
				u.ReorderLevel, updatedBy, now, u.ID,
			)
			if err != nil {
				return fmt.Errorf("failed to update reorder level %d: %w", u.ID, err)
			}
			n, err := res.RowsAffected()
			if err != nil {
				return err
			}
			updated += int(n)
		}
		return nil
	})
	if err != nil {
		return 0, err
	}

	return updated, nil
}
