package dto

import (
	"strings"

	"github.com/estate/listings/internal/domain/listing"
)

// BrowseQuery holds the list screen filters as query parameters. Prices
// are free text and coerced like form input: malformed values become 0.
type BrowseQuery struct {
	Query        string   `form:"q"`
	District     string   `form:"district"`
	Construction string   `form:"construction"`
	Class        string   `form:"class"`
	FinishState  string   `form:"state"`
	MinPrice     string   `form:"min_price"`
	MaxPrice     string   `form:"max_price"`
	Ready        bool     `form:"ready"`
	Commerce     bool     `form:"commerce"`
	Parking      bool     `form:"parking"`
	Payments     []string `form:"payment"`
}

// Criteria converts the query into filter criteria. An empty or
// non-positive max_price leaves the range unbounded above.
func (q BrowseQuery) Criteria() listing.Criteria {
	c := listing.DefaultCriteria()
	c.Query = q.Query
	c.District = listing.District(strings.TrimSpace(q.District))
	c.Construction = listing.Construction(strings.TrimSpace(q.Construction))
	c.Class = listing.Class(strings.TrimSpace(q.Class))
	c.FinishState = listing.FinishState(strings.TrimSpace(q.FinishState))
	c.MinPrice = listing.CoercePrice(q.MinPrice)
	if ceiling := listing.CoercePrice(q.MaxPrice); ceiling.IsPositive() {
		c = c.WithMaxPrice(ceiling)
	}
	c.ReadyOnly = q.Ready
	c.CommerceOnly = q.Commerce
	c.ParkingOnly = q.Parking
	c.Payments = listing.NewPaymentSet(q.Payments...)
	return c
}

// IDRequest carries the listing id path parameter
type IDRequest struct {
	ID string `uri:"id" binding:"required"`
}

// CommentRequest replaces a listing comment. An empty comment clears it.
type CommentRequest struct {
	Comment string `json:"comment" binding:"max=2000"`
}

// SeedRequest asks for count generated listings. Zero means the default.
type SeedRequest struct {
	Count int `json:"count" binding:"omitempty,min=1,max=500"`
}

// LoginRequest carries admin credentials
type LoginRequest struct {
	Username string `json:"username" binding:"required,max=100"`
	Password string `json:"password" binding:"required,max=200"`
}

// FloorPlanUploadRequest asks for a presigned upload URL
type FloorPlanUploadRequest struct {
	Filename    string `json:"filename" binding:"required,max=255"`
	ContentType string `json:"content_type" binding:"required,max=100"`
}
