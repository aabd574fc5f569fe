package db

import (
	"context"
	"errors"
	"os"

	"github.com/jackc/pgx/v5/pgxpool"
)

// Connect opens a pgx pool using DATABASE_URL.
func Connect() (*pgxpool.Pool, error) {
	url := os.Getenv("DATABASE_URL")
	if url == "" {
		return nil, errors.New("DATABASE_URL not set")
	}

	pool, err := pgxpool.New(context.Background(), url)
	if err != nil {
		return nil, err
	}
	if err := pool.Ping(context.Background()); err != nil {
		pool.Close()
		return nil, err
	}
	return pool, nil
}

// EnsureSchema creates the tables the storefront needs. Schema is small
// enough that bootstrap-on-start beats a migration toolchain here.
func EnsureSchema(ctx context.Context, pool *pgxpool.Pool) error {
	_, err := pool.Exec(ctx, `
		CREATE TABLE IF NOT EXISTS client_storage (
			visitorid TEXT NOT NULL,
			key       TEXT NOT NULL,
			value     BYTEA NOT NULL,
			updatedat TIMESTAMPTZ NOT NULL DEFAULT NOW(),
			PRIMARY KEY (visitorid, key)
		);

		CREATE TABLE IF NOT EXISTS payments (
			paymentid       BIGSERIAL PRIMARY KEY,
			provider        TEXT NOT NULL,
			providerref     TEXT NOT NULL UNIQUE,
			amountcents     BIGINT NOT NULL,
			paymentstatus   TEXT NOT NULL,
			providerpayload BYTEA,
			createdat       TIMESTAMPTZ NOT NULL DEFAULT NOW(),
			paidat          TIMESTAMPTZ
		);
	`)
	return err
}
