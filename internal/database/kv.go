package database

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/veonhoon/bible-reader-sub000/internal/domain/contract"
)

type keyValueRepo struct {
	db dbConn
}

func newKeyValueRepo(db dbConn) contract.KeyValueRepo {
	return &keyValueRepo{db: db}
}

func (r *keyValueRepo) GetItem(ctx context.Context, key string) (string, bool, error) {
	query := `SELECT value FROM kv_store WHERE key = ?`

	var value string
	err := r.db.QueryRowContext(ctx, query, key).Scan(&value)
	if err == sql.ErrNoRows {
		return "", false, nil
	}
	if err != nil {
		return "", false, fmt.Errorf("failed to get item %s: %w", key, err)
	}

	return value, true, nil
}

func (r *keyValueRepo) SetItem(ctx context.Context, key, value string) error {
	query := `
		INSERT INTO kv_store (key, value, updated_at)
		VALUES (?, ?, ?)
		ON CONFLICT(key) DO UPDATE SET
			value = excluded.value,
			updated_at = excluded.updated_at
	`

	_, err := r.db.ExecContext(ctx, query, key, value, time.Now().UTC())
	if err != nil {
		return fmt.Errorf("failed to set item %s: %w", key, err)
	}

	return nil
}

func (r *keyValueRepo) RemoveItem(ctx context.Context, key string) error {
	query := `DELETE FROM kv_store WHERE key = ?`

	_, err := r.db.ExecContext(ctx, query, key)
	if err != nil {
		return fmt.Errorf("failed to remove item %s: %w", key, err)
	}

	return nil
}
