package services

import (
	"context"
	"encoding/json"
	"errors"
	"log"
	"sync"
	"time"

	"github.com/mkellijah10/Oillabz/internal/model"
	"github.com/mkellijah10/Oillabz/internal/storage"
)

const recentlyAddedDelay = 2 * time.Second

// CartService is the single source of truth for what a visitor intends to
// buy. Every mutation rewrites the full cart to durable storage before
// returning, so the cart survives reloads; a cart that fails to parse on
// load is treated as empty, never as an error.
type CartService struct {
	Store storage.KV

	// RecentDelay overrides the recently-added auto-clear delay; zero means
	// the 2s default. Tests shrink it.
	RecentDelay time.Duration

	mu     sync.Mutex
	recent map[string]*time.Timer
}

func NewCartService(store storage.KV) *CartService {
	return &CartService{
		Store:  store,
		recent: make(map[string]*time.Timer),
	}
}

// Items returns the visitor's cart in insertion order. A missing key is an
// empty cart and unparsable data is discarded as empty, but a storage
// backend failure is surfaced: an outage must not masquerade as an empty
// cart.
func (s *CartService) Items(ctx context.Context, visitorID string) ([]model.CartItem, error) {
	raw, err := s.Store.Get(ctx, visitorID, storage.KeyCart)
	if err != nil {
		if errors.Is(err, storage.ErrNotFound) {
			return nil, nil
		}
		return nil, err
	}
	var items []model.CartItem
	if err := json.Unmarshal(raw, &items); err != nil {
		log.Printf("cart: discarding unparsable cart for visitor %s: %v", visitorID, err)
		return nil, nil
	}
	return items, nil
}

func (s *CartService) save(ctx context.Context, visitorID string, items []model.CartItem) error {
	b, err := json.Marshal(items)
	if err != nil {
		return err
	}
	return s.Store.Set(ctx, visitorID, storage.KeyCart, b)
}

// Add puts qty units of a product in the cart, incrementing the existing
// entry if the product is already there. qty below 1 defaults to 1.
func (s *CartService) Add(ctx context.Context, visitorID, productID string, qty int) error {
	if productID == "" {
		return errors.New("product id required")
	}
	if qty < 1 {
		qty = 1
	}

	items, err := s.Items(ctx, visitorID)
	if err != nil {
		return err
	}
	found := false
	for i := range items {
		if items[i].ProductID == productID {
			items[i].Quantity += qty
			found = true
			break
		}
	}
	if !found {
		items = append(items, model.CartItem{ProductID: productID, Quantity: qty})
	}

	if err := s.save(ctx, visitorID, items); err != nil {
		return err
	}
	s.markRecentlyAdded(visitorID)
	return nil
}

// UpdateQuantity replaces an entry's quantity. Quantities below 1 are a
// no-op: deletion goes through Remove.
func (s *CartService) UpdateQuantity(ctx context.Context, visitorID, productID string, qty int) error {
	if qty < 1 {
		return nil
	}
	items, err := s.Items(ctx, visitorID)
	if err != nil {
		return err
	}
	for i := range items {
		if items[i].ProductID == productID {
			items[i].Quantity = qty
			return s.save(ctx, visitorID, items)
		}
	}
	return nil
}

// Remove deletes the entry if present. Removing an absent product is fine.
func (s *CartService) Remove(ctx context.Context, visitorID, productID string) error {
	items, err := s.Items(ctx, visitorID)
	if err != nil {
		return err
	}
	for i := range items {
		if items[i].ProductID == productID {
			items = append(items[:i], items[i+1:]...)
			return s.save(ctx, visitorID, items)
		}
	}
	return nil
}

// Clear empties the cart.
func (s *CartService) Clear(ctx context.Context, visitorID string) error {
	return s.save(ctx, visitorID, []model.CartItem{})
}

// Count is the sum of all quantities, for the cart badge.
func (s *CartService) Count(ctx context.Context, visitorID string) (int, error) {
	items, err := s.Items(ctx, visitorID)
	if err != nil {
		return 0, err
	}
	total := 0
	for _, it := range items {
		total += it.Quantity
	}
	return total, nil
}

// RecentlyAdded reports whether something was added within the auto-clear
// window. UI feedback only, never a correctness signal.
func (s *CartService) RecentlyAdded(visitorID string) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	_, ok := s.recent[visitorID]
	return ok
}

func (s *CartService) markRecentlyAdded(visitorID string) {
	delay := s.RecentDelay
	if delay <= 0 {
		delay = recentlyAddedDelay
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	if t, ok := s.recent[visitorID]; ok {
		t.Stop()
	}
	s.recent[visitorID] = time.AfterFunc(delay, func() {
		s.mu.Lock()
		defer s.mu.Unlock()
		delete(s.recent, visitorID)
	})
}
