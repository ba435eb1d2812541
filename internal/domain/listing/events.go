package listing

import "github.com/estate/listings/internal/domain/shared"

// Event types published by the listing service.
const (
	EventTypeListingCreated        = "ListingCreated"
	EventTypeListingCommentUpdated = "ListingCommentUpdated"
	EventTypeListingDeleted        = "ListingDeleted"
	EventTypeListingsSeeded        = "ListingsSeeded"
	EventTypeListingsPurged        = "ListingsPurged"
)

// ListingCreatedEvent is published after an admin submission is stored.
type ListingCreatedEvent struct {
	shared.BaseDomainEvent
	Name     string   `json:"name"`
	District District `json:"district"`
}

// NewListingCreatedEvent builds the event for l.
func NewListingCreatedEvent(l *Listing) *ListingCreatedEvent {
	return &ListingCreatedEvent{
		BaseDomainEvent: shared.NewBaseDomainEvent(EventTypeListingCreated, AggregateType, l.ID),
		Name:            l.Name,
		District:        l.District,
	}
}

// ListingCommentUpdatedEvent is published after a comment edit.
type ListingCommentUpdatedEvent struct {
	shared.BaseDomainEvent
	Comment string `json:"comment"`
}

// NewListingCommentUpdatedEvent builds the event for listing id.
func NewListingCommentUpdatedEvent(id, comment string) *ListingCommentUpdatedEvent {
	return &ListingCommentUpdatedEvent{
		BaseDomainEvent: shared.NewBaseDomainEvent(EventTypeListingCommentUpdated, AggregateType, id),
		Comment:         comment,
	}
}

// ListingDeletedEvent is published after a single delete.
type ListingDeletedEvent struct {
	shared.BaseDomainEvent
}

// NewListingDeletedEvent builds the event for listing id.
func NewListingDeletedEvent(id string) *ListingDeletedEvent {
	return &ListingDeletedEvent{
		BaseDomainEvent: shared.NewBaseDomainEvent(EventTypeListingDeleted, AggregateType, id),
	}
}

// ListingsSeededEvent is published after a seed batch.
type ListingsSeededEvent struct {
	shared.BaseDomainEvent
	Requested int `json:"requested"`
	Created   int `json:"created"`
}

// NewListingsSeededEvent builds a collection-level seed event.
func NewListingsSeededEvent(requested, created int) *ListingsSeededEvent {
	return &ListingsSeededEvent{
		BaseDomainEvent: shared.NewBaseDomainEvent(EventTypeListingsSeeded, AggregateType, ""),
		Requested:       requested,
		Created:         created,
	}
}

// ListingsPurgedEvent is published after delete-all.
type ListingsPurgedEvent struct {
	shared.BaseDomainEvent
	Requested int `json:"requested"`
	Deleted   int `json:"deleted"`
}

// NewListingsPurgedEvent builds a collection-level purge event.
func NewListingsPurgedEvent(requested, deleted int) *ListingsPurgedEvent {
	return &ListingsPurgedEvent{
		BaseDomainEvent: shared.NewBaseDomainEvent(EventTypeListingsPurged, AggregateType, ""),
		Requested:       requested,
		Deleted:         deleted,
	}
}
