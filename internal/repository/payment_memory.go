package repository

import (
	"context"
	"sync"
	"time"

	"github.com/mkellijah10/Oillabz/internal/model"
)

// MemoryPaymentRepository keeps payment records in-process. Used in tests
// and when no database is configured; webhook replay protection then only
// holds for the process lifetime.
type MemoryPaymentRepository struct {
	mu      sync.Mutex
	nextID  int64
	records map[string]*model.Payment
}

func NewMemoryPaymentRepository() *MemoryPaymentRepository {
	return &MemoryPaymentRepository{records: make(map[string]*model.Payment)}
}

func (r *MemoryPaymentRepository) CreatePending(
	_ context.Context,
	provider string,
	providerRef string,
	amountCents int64,
	payload []byte,
) (int64, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.nextID++
	r.records[providerRef] = &model.Payment{
		PaymentID:       r.nextID,
		Provider:        provider,
		ProviderRef:     providerRef,
		AmountCents:     amountCents,
		PaymentStatus:   "Pending",
		ProviderPayload: payload,
		CreatedAt:       time.Now(),
	}
	return r.nextID, nil
}

func (r *MemoryPaymentRepository) GetByProviderRef(
	_ context.Context,
	providerRef string,
) (*model.Payment, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	p, ok := r.records[providerRef]
	if !ok {
		return nil, nil
	}
	cp := *p
	return &cp, nil
}

func (r *MemoryPaymentRepository) MarkPaid(
	_ context.Context,
	providerRef string,
	payload []byte,
) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if p, ok := r.records[providerRef]; ok && p.PaymentStatus == "Pending" {
		now := time.Now()
		p.PaymentStatus = "Paid"
		p.ProviderPayload = payload
		p.PaidAt = &now
	}
	return nil
}

func (r *MemoryPaymentRepository) MarkFailed(
	_ context.Context,
	providerRef string,
	payload []byte,
) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if p, ok := r.records[providerRef]; ok && p.PaymentStatus == "Pending" {
		p.PaymentStatus = "Failed"
		p.ProviderPayload = payload
	}
	return nil
}
