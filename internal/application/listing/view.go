package listing

import (
	"sync/atomic"
	"time"

	"github.com/estate/listings/internal/domain/listing"
)

// Snapshot is one fetched listing set, sorted newest first. Snapshots are
// never modified after they are published to a View.
type Snapshot struct {
	Listings  []listing.Listing
	FetchedAt time.Time

	// Stale is set when the last fetch failed and Listings is the previous
	// (or an empty) set.
	Stale bool
}

// Find returns the listing with the given id.
func (s *Snapshot) Find(id string) (listing.Listing, bool) {
	for _, l := range s.Listings {
		if l.ID == id {
			return l, true
		}
	}
	return listing.Listing{}, false
}

// View holds the current snapshot. Readers always see a complete snapshot;
// a refresh replaces it wholesale.
type View struct {
	current atomic.Pointer[Snapshot]
	maxAge  time.Duration
}

// NewView creates a view with an empty, never-fetched snapshot. Snapshots
// older than maxAge are refreshed before browsing; maxAge <= 0 refreshes on
// every browse.
func NewView(maxAge time.Duration) *View {
	v := &View{maxAge: maxAge}
	v.current.Store(&Snapshot{Listings: []listing.Listing{}})
	return v
}

// Current returns the snapshot being served.
func (v *View) Current() *Snapshot {
	return v.current.Load()
}

func (v *View) publish(s *Snapshot) {
	v.current.Store(s)
}

// expired reports whether the current snapshot should be refetched.
func (v *View) expired(now time.Time) bool {
	s := v.current.Load()
	if s.FetchedAt.IsZero() || s.Stale || v.maxAge <= 0 {
		return true
	}
	return now.Sub(s.FetchedAt) >= v.maxAge
}

// markStale publishes the previous listings flagged stale.
func (v *View) markStale() *Snapshot {
	prev := v.current.Load()
	next := &Snapshot{
		Listings:  prev.Listings,
		FetchedAt: prev.FetchedAt,
		Stale:     true,
	}
	v.current.Store(next)
	return next
}
