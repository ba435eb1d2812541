package listing

import "context"

// Repository is the listing store port. Implementations return
// shared.ErrNotFound for unknown ids.
type Repository interface {
	// FindAll returns every stored listing in store order.
	FindAll(ctx context.Context) ([]Listing, error)

	// FindByID returns a single listing.
	FindByID(ctx context.Context, id string) (*Listing, error)

	// Create stores l and sets l.ID to the store-assigned identifier.
	Create(ctx context.Context, l *Listing) error

	// UpdateComment overwrites the comment of one listing.
	UpdateComment(ctx context.Context, id, comment string) error

	// Delete removes one listing.
	Delete(ctx context.Context, id string) error

	// Ping checks that the store is reachable.
	Ping(ctx context.Context) error
}
