// Package memory is an in-process listing store for development and tests.
package memory

import (
	"context"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/estate/listings/internal/domain/listing"
	"github.com/estate/listings/internal/domain/shared"
)

// ListingRepository keeps listings in insertion order behind a RWMutex.
// Values are copied on the way in and out so callers never share memory
// with the store.
type ListingRepository struct {
	mu    sync.RWMutex
	order []string
	items map[string]listing.Listing
}

// NewListingRepository creates a store preloaded with seed, keeping any
// IDs already set and assigning the rest
func NewListingRepository(seed ...listing.Listing) *ListingRepository {
	r := &ListingRepository{items: make(map[string]listing.Listing)}
	for i := range seed {
		l := clone(seed[i])
		if l.ID == "" {
			l.ID = uuid.NewString()
		}
		r.put(l)
	}
	return r
}

// FindAll returns copies of every listing in insertion order
func (r *ListingRepository) FindAll(_ context.Context) ([]listing.Listing, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	out := make([]listing.Listing, 0, len(r.order))
	for _, id := range r.order {
		out = append(out, clone(r.items[id]))
	}
	return out, nil
}

// FindByID returns a copy of one listing
func (r *ListingRepository) FindByID(_ context.Context, id string) (*listing.Listing, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	l, ok := r.items[id]
	if !ok {
		return nil, shared.ErrNotFound
	}
	c := clone(l)
	return &c, nil
}

// Create stores a copy of l under a new UUID
func (r *ListingRepository) Create(ctx context.Context, l *listing.Listing) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	c := clone(*l)
	c.ID = uuid.NewString()

	r.mu.Lock()
	r.put(c)
	r.mu.Unlock()

	l.ID = c.ID
	return nil
}

// UpdateComment replaces one listing's comment
func (r *ListingRepository) UpdateComment(_ context.Context, id, comment string) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	l, ok := r.items[id]
	if !ok {
		return shared.ErrNotFound
	}
	l.Comment = comment
	r.items[id] = l
	return nil
}

// Delete removes one listing
func (r *ListingRepository) Delete(ctx context.Context, id string) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	if _, ok := r.items[id]; !ok {
		return shared.ErrNotFound
	}
	delete(r.items, id)
	for i, v := range r.order {
		if v == id {
			r.order = append(r.order[:i], r.order[i+1:]...)
			break
		}
	}
	return nil
}

// Ping always succeeds
func (r *ListingRepository) Ping(_ context.Context) error {
	return nil
}

// Len returns the number of stored listings
func (r *ListingRepository) Len() int {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return len(r.order)
}

func (r *ListingRepository) put(l listing.Listing) {
	if _, exists := r.items[l.ID]; !exists {
		r.order = append(r.order, l.ID)
	}
	r.items[l.ID] = l
}

func clone(l listing.Listing) listing.Listing {
	l.PaymentMethods = listing.NewPaymentSet(l.PaymentMethods...)
	l.HandoverDate = cloneTime(l.HandoverDate)
	l.CreatedAt = cloneTime(l.CreatedAt)
	return l
}

func cloneTime(t *time.Time) *time.Time {
	if t == nil {
		return nil
	}
	c := *t
	return &c
}

var _ listing.Repository = (*ListingRepository)(nil)
