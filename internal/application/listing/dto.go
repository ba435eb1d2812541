package listing

import (
	"time"

	"github.com/estate/listings/internal/domain/listing"
)

// Seed bounds.
const (
	DefaultSeedCount = 20
	MaxSeedCount     = 500
)

// BrowseResult is the filtered view of the current snapshot.
type BrowseResult struct {
	Items     []listing.Listing `json:"items"`
	Total     int               `json:"total"`
	Matched   int               `json:"matched"`
	Stale     bool              `json:"stale"`
	FetchedAt time.Time         `json:"fetched_at"`
}

// SubmitResult carries the stored listing and the form to show next.
type SubmitResult struct {
	Listing listing.Listing `json:"listing"`
	Form    listing.Form    `json:"form"`
}

// BulkResult summarizes a seed or delete-all run. Failures are counted,
// never returned as errors.
type BulkResult struct {
	Requested int `json:"requested"`
	Succeeded int `json:"succeeded"`
	Failed    int `json:"failed"`
}

// FormState is what the admin screen needs to render an empty form.
type FormState struct {
	Form    listing.Form    `json:"form"`
	Options listing.Options `json:"options"`
}

// OptionsResponse lists selector values and the starting criteria.
type OptionsResponse struct {
	listing.Options
	MaxPrice int64 `json:"max_price"`
}
