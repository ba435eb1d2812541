package listing

import "context"

// Metrics records service-level measurements. The telemetry package
// provides the OpenTelemetry implementation.
type Metrics interface {
	RecordFetch(ctx context.Context, count int, err error)
	RecordWrite(ctx context.Context, operation string, err error)
	RecordBulk(ctx context.Context, operation string, result BulkResult)
}

type noopMetrics struct{}

func (noopMetrics) RecordFetch(context.Context, int, error) {}
func (noopMetrics) RecordWrite(context.Context, string, error) {}
func (noopMetrics) RecordBulk(context.Context, string, BulkResult) {}
