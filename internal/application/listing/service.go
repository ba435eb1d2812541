// Package listing implements the listing use cases: fetching and browsing
// the listing set, the detail lookup, admin submissions and the bulk seed
// and purge operations.
package listing

import (
	"context"
	"errors"
	"fmt"
	"sync/atomic"
	"time"

	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"github.com/estate/listings/internal/domain/listing"
	"github.com/estate/listings/internal/domain/shared"
)

// DefaultDeleteConcurrency bounds in-flight deletes during DeleteAll.
const DefaultDeleteConcurrency = 8

// ErrListingNotFound is returned by Get for ids absent from the store.
var ErrListingNotFound = shared.NewDomainError("NOT_FOUND", "Listing not found")

// Service coordinates the listing store, the served snapshot and event
// publication.
type Service struct {
	repo      listing.Repository
	view      *View
	logger    *zap.Logger
	publisher shared.EventPublisher
	metrics   Metrics
	generator *Generator
	storage   ObjectStorage
	now       func() time.Time

	deleteConcurrency int
}

// NewService creates a new Service
func NewService(repo listing.Repository, view *View, logger *zap.Logger) *Service {
	if logger == nil {
		logger = zap.NewNop()
	}
	if view == nil {
		view = NewView(0)
	}
	return &Service{
		repo:              repo,
		view:              view,
		logger:            logger,
		metrics:           noopMetrics{},
		generator:         NewGenerator(0),
		now:               time.Now,
		deleteConcurrency: DefaultDeleteConcurrency,
	}
}

// SetEventPublisher sets the event publisher for publishing domain events
func (s *Service) SetEventPublisher(publisher shared.EventPublisher) {
	s.publisher = publisher
}

// SetMetrics sets the metrics recorder
func (s *Service) SetMetrics(m Metrics) {
	if m == nil {
		m = noopMetrics{}
	}
	s.metrics = m
}

// SetGenerator replaces the seed data generator
func (s *Service) SetGenerator(g *Generator) {
	s.generator = g
}

// SetFloorPlanStorage enables presigned floor plan uploads
func (s *Service) SetFloorPlanStorage(st ObjectStorage) {
	s.storage = st
}

// SetClock replaces the time source used for creation timestamps
func (s *Service) SetClock(now func() time.Time) {
	s.now = now
}

// SetDeleteConcurrency bounds concurrent deletes in DeleteAll
func (s *Service) SetDeleteConcurrency(n int) {
	if n < 1 {
		n = 1
	}
	s.deleteConcurrency = n
}

// View returns the snapshot container the service serves from.
func (s *Service) View() *View {
	return s.view
}

// Refresh fetches the full listing set and publishes it sorted newest
// first. A failed fetch is logged and the previous set is served flagged
// stale; the error is returned for callers that want to report it.
func (s *Service) Refresh(ctx context.Context) (*Snapshot, error) {
	listings, err := s.repo.FindAll(ctx)
	s.metrics.RecordFetch(ctx, len(listings), err)
	if err != nil {
		s.logger.Error("Failed to fetch listings", zap.Error(err))
		return s.view.markStale(), fmt.Errorf("fetch listings: %w", err)
	}

	snap := &Snapshot{
		Listings:  listing.SortByCreatedDesc(listings),
		FetchedAt: s.now(),
	}
	s.view.publish(snap)
	return snap, nil
}

// current returns the served snapshot, refreshing it first when expired.
func (s *Service) current(ctx context.Context) *Snapshot {
	if !s.view.expired(s.now()) {
		return s.view.Current()
	}
	snap, _ := s.Refresh(ctx)
	return snap
}

// Browse filters the current snapshot. Store failures never surface here;
// the result is flagged stale instead.
func (s *Service) Browse(ctx context.Context, c listing.Criteria) BrowseResult {
	snap := s.current(ctx)
	items := listing.Filter(snap.Listings, c)
	return BrowseResult{
		Items:     items,
		Total:     len(snap.Listings),
		Matched:   len(items),
		Stale:     snap.Stale,
		FetchedAt: snap.FetchedAt,
	}
}

// Get returns one listing. The current snapshot is consulted first; a miss
// falls through to the store so listings created by another instance are
// still found.
func (s *Service) Get(ctx context.Context, id string) (*listing.Listing, error) {
	if l, ok := s.current(ctx).Find(id); ok {
		return &l, nil
	}
	l, err := s.repo.FindByID(ctx, id)
	if err != nil {
		if errors.Is(err, shared.ErrNotFound) {
			return nil, ErrListingNotFound
		}
		return nil, fmt.Errorf("find listing %s: %w", id, err)
	}
	return l, nil
}

// NewForm returns the admin form in its starting state.
func (s *Service) NewForm() FormState {
	return FormState{Form: listing.DefaultForm(), Options: listing.KnownOptions()}
}

// Submit coerces the form into a listing, stores it and returns the stored
// listing with a reset form. On failure the caller keeps its form.
func (s *Service) Submit(ctx context.Context, form listing.Form) (*SubmitResult, error) {
	l := form.Build(s.now())
	err := s.repo.Create(ctx, &l)
	s.metrics.RecordWrite(ctx, "create", err)
	if err != nil {
		return nil, fmt.Errorf("create listing: %w", err)
	}

	s.publish(ctx, listing.NewListingCreatedEvent(&l))
	s.refreshAfterWrite(ctx)

	return &SubmitResult{Listing: l, Form: listing.DefaultForm()}, nil
}

// UpdateComment replaces the comment of one listing. Last writer wins.
func (s *Service) UpdateComment(ctx context.Context, id, comment string) (*listing.Listing, error) {
	l := listing.Listing{ID: id}
	l.UpdateComment(comment)

	err := s.repo.UpdateComment(ctx, id, l.Comment)
	s.metrics.RecordWrite(ctx, "update_comment", err)
	if err != nil {
		if errors.Is(err, shared.ErrNotFound) {
			return nil, ErrListingNotFound
		}
		return nil, fmt.Errorf("update comment of %s: %w", id, err)
	}

	s.publish(ctx, listing.NewListingCommentUpdatedEvent(id, l.Comment))
	s.refreshAfterWrite(ctx)

	// The snapshot may predate the write when the refresh failed.
	if updated, ok := s.view.Current().Find(id); ok {
		updated.Comment = l.Comment
		return &updated, nil
	}
	return &l, nil
}

// Delete removes one listing.
func (s *Service) Delete(ctx context.Context, id string) error {
	err := s.repo.Delete(ctx, id)
	s.metrics.RecordWrite(ctx, "delete", err)
	if err != nil {
		if errors.Is(err, shared.ErrNotFound) {
			return ErrListingNotFound
		}
		return fmt.Errorf("delete listing %s: %w", id, err)
	}

	s.publish(ctx, listing.NewListingDeletedEvent(id))
	s.refreshAfterWrite(ctx)
	return nil
}

// Seed stores count generated listings, one at a time. A count of zero
// means DefaultSeedCount. Individual failures are logged and counted.
func (s *Service) Seed(ctx context.Context, count int) (BulkResult, error) {
	if count == 0 {
		count = DefaultSeedCount
	}
	if count < 0 || count > MaxSeedCount {
		return BulkResult{}, shared.NewDomainError("INVALID_INPUT",
			fmt.Sprintf("seed count must be between 1 and %d", MaxSeedCount))
	}

	result := BulkResult{Requested: count}
	for i := 0; i < count; i++ {
		if err := ctx.Err(); err != nil {
			result.Failed += count - i
			s.logger.Warn("Seed interrupted", zap.Error(err), zap.Int("remaining", count-i))
			break
		}
		l := s.generator.Listing(s.now())
		if err := s.repo.Create(ctx, &l); err != nil {
			result.Failed++
			s.logger.Warn("Failed to create seed listing", zap.String("name", l.Name), zap.Error(err))
			continue
		}
		result.Succeeded++
	}

	s.metrics.RecordBulk(ctx, "seed", result)
	s.logger.Info("Seeded listings",
		zap.Int("requested", result.Requested),
		zap.Int("succeeded", result.Succeeded),
		zap.Int("failed", result.Failed),
	)
	s.publish(ctx, listing.NewListingsSeededEvent(result.Requested, result.Succeeded))
	s.refreshAfterWrite(ctx)
	return result, nil
}

// DeleteAll issues one delete per stored listing concurrently and waits for
// all of them. Failures are logged and counted; DeleteAll itself never
// fails.
func (s *Service) DeleteAll(ctx context.Context) BulkResult {
	targets, err := s.repo.FindAll(ctx)
	if err != nil {
		s.logger.Warn("Failed to list listings for delete-all, using served snapshot", zap.Error(err))
		targets = s.view.Current().Listings
	}

	var succeeded, failed atomic.Int64
	var g errgroup.Group
	g.SetLimit(s.deleteConcurrency)
	for _, l := range targets {
		id := l.ID
		g.Go(func() error {
			if err := s.repo.Delete(ctx, id); err != nil {
				failed.Add(1)
				s.logger.Warn("Failed to delete listing", zap.String("listing_id", id), zap.Error(err))
				return nil
			}
			succeeded.Add(1)
			return nil
		})
	}
	_ = g.Wait()

	result := BulkResult{
		Requested: len(targets),
		Succeeded: int(succeeded.Load()),
		Failed:    int(failed.Load()),
	}
	s.metrics.RecordBulk(ctx, "delete_all", result)
	s.logger.Info("Deleted all listings",
		zap.Int("requested", result.Requested),
		zap.Int("succeeded", result.Succeeded),
		zap.Int("failed", result.Failed),
	)
	s.publish(ctx, listing.NewListingsPurgedEvent(result.Requested, result.Succeeded))
	s.refreshAfterWrite(ctx)
	return result
}

func (s *Service) refreshAfterWrite(ctx context.Context) {
	// Failure is already logged and the stale snapshot served.
	_, _ = s.Refresh(ctx)
}

func (s *Service) publish(ctx context.Context, events ...shared.DomainEvent) {
	if s.publisher == nil {
		return
	}
	if err := s.publisher.Publish(ctx, events...); err != nil {
		s.logger.Warn("Failed to publish listing events", zap.Error(err))
	}
}
