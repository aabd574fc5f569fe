package repository

import (
	"context"
	"errors"

	"github.com/mkellijah10/Oillabz/internal/storage"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

// StorageRepository is the Postgres implementation of storage.KV. One row
// per (visitor, key); Set upserts the full value, matching the
// serialize-everything persistence contract of the cart store.
type StorageRepository struct {
	DB *pgxpool.Pool
}

func NewStorageRepository(db *pgxpool.Pool) *StorageRepository {
	return &StorageRepository{DB: db}
}

func (r *StorageRepository) Get(ctx context.Context, visitorID, key string) ([]byte, error) {
	var value []byte
	query := `SELECT value FROM client_storage WHERE visitorid=$1 AND key=$2`
	if err := r.DB.QueryRow(ctx, query, visitorID, key).Scan(&value); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, storage.ErrNotFound
		}
		return nil, err
	}
	return value, nil
}

func (r *StorageRepository) Set(ctx context.Context, visitorID, key string, value []byte) error {
	query := `
		INSERT INTO client_storage (visitorid, key, value, updatedat)
		VALUES ($1, $2, $3, NOW())
		ON CONFLICT (visitorid, key)
		DO UPDATE SET value = EXCLUDED.value, updatedat = NOW()
	`
	_, err := r.DB.Exec(ctx, query, visitorID, key, value)
	return err
}

func (r *StorageRepository) Delete(ctx context.Context, visitorID, key string) error {
	query := `DELETE FROM client_storage WHERE visitorid=$1 AND key=$2`
	_, err := r.DB.Exec(ctx, query, visitorID, key)
	return err
}
