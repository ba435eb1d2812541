package telemetry

import (
	"context"

	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/metric"

	listingapp "github.com/estate/listings/internal/application/listing"
)

// ListingMeterName is the instrumentation scope of ListingMetrics.
const ListingMeterName = "github.com/estate/listings/internal/application/listing"

var (
	attrOperation = attribute.Key("operation")
	attrStatus    = attribute.Key("status")
	attrOutcome   = attribute.Key("outcome")
)

// ListingMetrics records business metrics for the listing service.
type ListingMetrics struct {
	fetches   *Counter
	fetchSize *Histogram
	writes    *Counter
	bulkItems *Counter
}

// NewListingMetrics creates the instruments on meter.
func NewListingMetrics(meter metric.Meter) (*ListingMetrics, error) {
	fetches, err := NewCounter(meter, "listings_fetch_total", "Full collection fetches", "{fetch}")
	if err != nil {
		return nil, err
	}
	fetchSize, err := NewHistogram(meter, HistogramOpts{
		Name:        "listings_fetch_size",
		Description: "Number of listings returned by a collection fetch",
		Unit:        "{listing}",
		Buckets:     []float64{0, 10, 50, 100, 250, 500, 1000, 5000},
	})
	if err != nil {
		return nil, err
	}
	writes, err := NewCounter(meter, "listings_write_total", "Single listing writes", "{write}")
	if err != nil {
		return nil, err
	}
	bulkItems, err := NewCounter(meter, "listings_bulk_items_total", "Items processed by bulk operations", "{listing}")
	if err != nil {
		return nil, err
	}
	return &ListingMetrics{
		fetches:   fetches,
		fetchSize: fetchSize,
		writes:    writes,
		bulkItems: bulkItems,
	}, nil
}

// RecordFetch implements listingapp.Metrics.
func (m *ListingMetrics) RecordFetch(ctx context.Context, count int, err error) {
	m.fetches.Inc(ctx, attrStatus.String(status(err)))
	if err == nil {
		m.fetchSize.Record(ctx, float64(count))
	}
}

// RecordWrite implements listingapp.Metrics.
func (m *ListingMetrics) RecordWrite(ctx context.Context, operation string, err error) {
	m.writes.Inc(ctx, attrOperation.String(operation), attrStatus.String(status(err)))
}

// RecordBulk implements listingapp.Metrics.
func (m *ListingMetrics) RecordBulk(ctx context.Context, operation string, result listingapp.BulkResult) {
	if result.Succeeded > 0 {
		m.bulkItems.Add(ctx, int64(result.Succeeded), attrOperation.String(operation), attrOutcome.String("succeeded"))
	}
	if result.Failed > 0 {
		m.bulkItems.Add(ctx, int64(result.Failed), attrOperation.String(operation), attrOutcome.String("failed"))
	}
}

func status(err error) string {
	if err != nil {
		return "error"
	}
	return "ok"
}

var _ listingapp.Metrics = (*ListingMetrics)(nil)
