// Package listing holds the real-estate listing aggregate, the filter engine
// that narrows a fetched listing set, and the admin form that produces new
// listings from raw user input.
package listing

import (
	"strings"
	"time"

	"github.com/shopspring/decimal"
)

// AggregateType names the listing aggregate in domain events.
const AggregateType = "Listing"

// Listing is one apartment/complex record of the "cards" collection.
type Listing struct {
	ID string `json:"id"`

	Name         string       `json:"name"`
	District     District     `json:"district"`
	Construction Construction `json:"construction"`
	Class        Class        `json:"class"`
	FinishState  FinishState  `json:"finish_state"`

	Floors        int     `json:"floors"`
	CeilingHeight float64 `json:"ceiling_height"`
	Yard          string  `json:"yard"`
	Facade        string  `json:"facade"`
	Windows       string  `json:"windows"`
	HasParking    bool    `json:"has_parking"`
	HasCommerce   bool    `json:"has_commerce"`

	PaymentMethods PaymentSet      `json:"payment_methods"`
	Price          decimal.Decimal `json:"price"`
	FloorPlanURL   string          `json:"floor_plan_url"`
	Ready          bool            `json:"ready"`
	Discount       int             `json:"discount"`
	HandoverDate   *time.Time      `json:"handover_date"`
	Comment        string          `json:"comment"`
	CreatedAt      *time.Time      `json:"created_at"`

	SchoolDistance       float64 `json:"school_distance"`
	KindergartenDistance float64 `json:"kindergarten_distance"`
	MallDistance         float64 `json:"mall_distance"`
}

// UpdateComment replaces the free-text comment, the only field that may
// change after creation.
func (l *Listing) UpdateComment(comment string) {
	l.Comment = strings.TrimSpace(comment)
}

// createdOrEpoch is the ordering key; records without a creation time sort
// as the Unix epoch.
func (l *Listing) createdOrEpoch() time.Time {
	if l.CreatedAt == nil {
		return time.Unix(0, 0).UTC()
	}
	return *l.CreatedAt
}
