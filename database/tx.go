package database

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/uptrace/bun"
)

// Transaction executes fn inside a database transaction. The transaction is
// committed when fn returns nil and rolled back otherwise.
func Transaction(db *DB, ctx context.Context, fn func(tx bun.Tx) error) error {
	return db.RunInTx(ctx, &sql.TxOptions{}, func(ctx context.Context, tx bun.Tx) error {
		return fn(tx)
	})
}

// TransactionWithResult executes fn within a transaction and returns a result
func TransactionWithResult[T any](db *DB, ctx context.Context, fn func(tx bun.Tx) (T, error)) (T, error) {
	var result T
	err := db.RunInTx(ctx, &sql.TxOptions{}, func(ctx context.Context, tx bun.Tx) error {
		var err error
		result, err = fn(tx)
		return err
	})
	return result, err
}

// FindByID is a helper to find a record by ID with automatic retry
func FindByID[T any](db *DB, ctx context.Context, id any) (*T, error) {
	start := time.Now()
	var data T

	err := WithRetry(ctx, func() error {
		return db.NewSelect().Model(&data).Where("id = ?", id).Limit(1).Scan(ctx)
	})
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, nil
		}
		return nil, fmt.Errorf("failed to execute select query: %w (took %v)", err, time.Since(start))
	}

	return &data, nil
}

// FindByIDs is a helper to find multiple records by IDs
func FindByIDs[T any](db *DB, ctx context.Context, ids []int64) ([]T, error) {
	start := time.Now()
	var data []T

	if len(ids) == 0 {
		return data, nil
	}

	err := WithRetry(ctx, func() error {
		data = nil // Reset on retry
		return db.NewSelect().Model(&data).Where("id IN (?)", bun.In(ids)).Order("id ASC").Scan(ctx)
	})
	if err != nil {
		return nil, fmt.Errorf("failed to execute select query: %w (took %v)", err, time.Since(start))
	}

	return data, nil
}

// Create is a helper to insert a single record
func Create[T any](db *DB, ctx context.Context, data *T) (*T, error) {
	start := time.Now()

	err := WithRetry(ctx, func() error {
		_, err := db.NewInsert().Model(data).Returning("*").Exec(ctx)
		return err
	})
	if err != nil {
		return nil, fmt.Errorf("failed to execute insert query: %w (took %v)", err, time.Since(start))
	}

	return data, nil
}

// DeleteByID is a helper to delete a record by ID, returning the affected count
func DeleteByID[T any](db *DB, ctx context.Context, id any) (int, error) {
	start := time.Now()
	var rowsAffected int64

	err := WithRetry(ctx, func() error {
		var model T
		res, err := db.NewDelete().Model(&model).Where("id = ?", id).Exec(ctx)
		if err != nil {
			return err
		}
		rowsAffected, _ = res.RowsAffected()
		return nil
	})
	if err != nil {
		return 0, fmt.Errorf("failed to execute delete query: %w (took %v)", err, time.Since(start))
	}

	return int(rowsAffected), nil
}
