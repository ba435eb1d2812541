package telemetry

import (
	"context"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"

	"github.com/estate/listings/internal/domain/listing"
)

// TracerName is the instrumentation scope of spans started in this module.
const TracerName = "github.com/estate/listings"

// StartSpan starts an internal span on the global tracer provider.
func StartSpan(ctx context.Context, name string, attrs ...attribute.KeyValue) (context.Context, trace.Span) {
	opts := []trace.SpanStartOption{trace.WithSpanKind(trace.SpanKindInternal)}
	if len(attrs) > 0 {
		opts = append(opts, trace.WithAttributes(attrs...))
	}
	return otel.GetTracerProvider().Tracer(TracerName).Start(ctx, name, opts...)
}

// RecordError marks span as failed. A nil err is ignored.
func RecordError(span trace.Span, err error) {
	if err == nil {
		return
	}
	span.RecordError(err)
	span.SetStatus(codes.Error, err.Error())
}

// TracedRepository wraps a listing.Repository with one span per call.
type TracedRepository struct {
	inner listing.Repository
	store string
}

// NewTracedRepository decorates inner. store names the backend in the
// db.system attribute, e.g. "postgresql" or "mongodb".
func NewTracedRepository(inner listing.Repository, store string) *TracedRepository {
	return &TracedRepository{inner: inner, store: store}
}

func (r *TracedRepository) start(ctx context.Context, op string, attrs ...attribute.KeyValue) (context.Context, trace.Span) {
	attrs = append(attrs,
		attribute.String("db.system", r.store),
		attribute.String("db.operation", op),
	)
	return StartSpan(ctx, "listing.repository."+op, attrs...)
}

func (r *TracedRepository) FindAll(ctx context.Context) ([]listing.Listing, error) {
	ctx, span := r.start(ctx, "FindAll")
	defer span.End()

	out, err := r.inner.FindAll(ctx)
	RecordError(span, err)
	span.SetAttributes(attribute.Int("listing.count", len(out)))
	return out, err
}

func (r *TracedRepository) FindByID(ctx context.Context, id string) (*listing.Listing, error) {
	ctx, span := r.start(ctx, "FindByID", attribute.String("listing.id", id))
	defer span.End()

	l, err := r.inner.FindByID(ctx, id)
	RecordError(span, err)
	return l, err
}

func (r *TracedRepository) Create(ctx context.Context, l *listing.Listing) error {
	ctx, span := r.start(ctx, "Create")
	defer span.End()

	err := r.inner.Create(ctx, l)
	RecordError(span, err)
	if err == nil {
		span.SetAttributes(attribute.String("listing.id", l.ID))
	}
	return err
}

func (r *TracedRepository) UpdateComment(ctx context.Context, id, comment string) error {
	ctx, span := r.start(ctx, "UpdateComment", attribute.String("listing.id", id))
	defer span.End()

	err := r.inner.UpdateComment(ctx, id, comment)
	RecordError(span, err)
	return err
}

func (r *TracedRepository) Delete(ctx context.Context, id string) error {
	ctx, span := r.start(ctx, "Delete", attribute.String("listing.id", id))
	defer span.End()

	err := r.inner.Delete(ctx, id)
	RecordError(span, err)
	return err
}

func (r *TracedRepository) Ping(ctx context.Context) error {
	ctx, span := r.start(ctx, "Ping")
	defer span.End()

	err := r.inner.Ping(ctx)
	RecordError(span, err)
	return err
}

var _ listing.Repository = (*TracedRepository)(nil)
