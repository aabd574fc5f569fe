package repository

import (
	"context"
	"errors"

	"github.com/mkellijah10/Oillabz/internal/model"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

// PaymentRepository records payment attempts keyed by the provider's
// reference (Square payment id, Stripe session id). The Paid row is the
// idempotency guard for webhook replays.
type PaymentRepository struct {
	DB *pgxpool.Pool
}

func NewPaymentRepository(db *pgxpool.Pool) *PaymentRepository {
	return &PaymentRepository{DB: db}
}

func (r *PaymentRepository) CreatePending(
	ctx context.Context,
	provider string,
	providerRef string,
	amountCents int64,
	payload []byte,
) (int64, error) {

	var paymentID int64
	q := `
		INSERT INTO payments
			(provider, providerref, amountcents, paymentstatus, providerpayload, createdat)
		VALUES
			($1, $2, $3, 'Pending', $4, NOW())
		RETURNING paymentid
	`
	err := r.DB.QueryRow(
		ctx, q,
		provider, providerRef, amountCents, payload,
	).Scan(&paymentID)

	return paymentID, err
}

func (r *PaymentRepository) GetByProviderRef(
	ctx context.Context,
	providerRef string,
) (*model.Payment, error) {

	var p model.Payment

	q := `
		SELECT paymentid, provider, providerref, amountcents,
		       paymentstatus, providerpayload, createdat, paidat
		FROM payments
		WHERE providerref=$1
	`

	err := r.DB.QueryRow(ctx, q, providerRef).Scan(
		&p.PaymentID,
		&p.Provider,
		&p.ProviderRef,
		&p.AmountCents,
		&p.PaymentStatus,
		&p.ProviderPayload,
		&p.CreatedAt,
		&p.PaidAt,
	)

	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil
		}
		return nil, err
	}

	return &p, nil
}

func (r *PaymentRepository) MarkPaid(
	ctx context.Context,
	providerRef string,
	payload []byte,
) error {
	_, err := r.DB.Exec(ctx, `
		UPDATE payments
		SET paymentstatus='Paid',
		    providerpayload=$2,
		    paidat=NOW()
		WHERE providerref=$1 AND paymentstatus='Pending'
	`, providerRef, payload)
	return err
}

func (r *PaymentRepository) MarkFailed(
	ctx context.Context,
	providerRef string,
	payload []byte,
) error {
	_, err := r.DB.Exec(ctx, `
		UPDATE payments
		SET paymentstatus='Failed',
		    providerpayload=$2
		WHERE providerref=$1
		  AND paymentstatus='Pending'
	`, providerRef, payload)
	return err
}
