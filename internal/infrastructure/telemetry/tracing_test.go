package telemetry

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/codes"
	sdktrace "go.opentelemetry.io/otel/sdk/trace"
	"go.opentelemetry.io/otel/sdk/trace/tracetest"

	"github.com/estate/listings/internal/domain/listing"
	"github.com/estate/listings/internal/domain/shared"
	"github.com/estate/listings/internal/infrastructure/persistence/memory"
)

// useSpanRecorder installs a recording provider as the global one for the
// duration of the test.
func useSpanRecorder(t *testing.T) *tracetest.SpanRecorder {
	t.Helper()
	recorder := tracetest.NewSpanRecorder()
	tp := sdktrace.NewTracerProvider(sdktrace.WithSpanProcessor(recorder))

	previous := otel.GetTracerProvider()
	otel.SetTracerProvider(tp)
	t.Cleanup(func() {
		otel.SetTracerProvider(previous)
		_ = tp.Shutdown(context.Background())
	})
	return recorder
}

func spanAttr(span sdktrace.ReadOnlySpan, key string) (string, bool) {
	for _, kv := range span.Attributes() {
		if string(kv.Key) == key {
			return kv.Value.Emit(), true
		}
	}
	return "", false
}

func TestStartSpanAndRecordError(t *testing.T) {
	recorder := useSpanRecorder(t)

	_, span := StartSpan(context.Background(), "work")
	RecordError(span, nil)
	span.End()

	_, failing := StartSpan(context.Background(), "broken")
	RecordError(failing, errors.New("boom"))
	failing.End()

	ended := recorder.Ended()
	require.Len(t, ended, 2)
	assert.Equal(t, codes.Unset, ended[0].Status().Code)
	assert.Equal(t, codes.Error, ended[1].Status().Code)
	assert.Equal(t, "boom", ended[1].Status().Description)
	require.Len(t, ended[1].Events(), 1)
}

func TestTracedRepository(t *testing.T) {
	recorder := useSpanRecorder(t)
	ctx := context.Background()

	repo := NewTracedRepository(memory.NewListingRepository(), "memory")

	l := &listing.Listing{Name: "ЖК Нурлы"}
	require.NoError(t, repo.Create(ctx, l))
	require.NotEmpty(t, l.ID)

	all, err := repo.FindAll(ctx)
	require.NoError(t, err)
	assert.Len(t, all, 1)

	_, err = repo.FindByID(ctx, "missing")
	assert.True(t, errors.Is(err, shared.ErrNotFound))

	require.NoError(t, repo.UpdateComment(ctx, l.ID, "перезвонить"))
	require.NoError(t, repo.Delete(ctx, l.ID))
	require.NoError(t, repo.Ping(ctx))

	ended := recorder.Ended()
	require.Len(t, ended, 6)

	names := make([]string, 0, len(ended))
	for _, s := range ended {
		names = append(names, s.Name())
		system, ok := spanAttr(s, "db.system")
		assert.True(t, ok)
		assert.Equal(t, "memory", system)
	}
	assert.Equal(t, []string{
		"listing.repository.Create",
		"listing.repository.FindAll",
		"listing.repository.FindByID",
		"listing.repository.UpdateComment",
		"listing.repository.Delete",
		"listing.repository.Ping",
	}, names)

	created, _ := spanAttr(ended[0], "listing.id")
	assert.Equal(t, l.ID, created)
	count, _ := spanAttr(ended[1], "listing.count")
	assert.Equal(t, "1", count)
	assert.Equal(t, codes.Error, ended[2].Status().Code)
	assert.Equal(t, codes.Unset, ended[3].Status().Code)
}
