package resolver

import (
	"context"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/metric"
)

const meterName = "localscan/resolver"

type metrics struct {
	attrs         metric.MeasurementOption
	flushes       metric.Int64Counter
	upstreamCalls metric.Int64Counter
	cacheHits     metric.Int64Counter
	resolved      metric.Int64Counter
	abandoned     metric.Int64Counter
	retries       metric.Int64Counter
	batchSize     metric.Int64Histogram
}

// newMetrics registers instruments on the global meter provider. Without an
// SDK installed these are no-ops.
func newMetrics(resolverName string) *metrics {
	m := otel.GetMeterProvider().Meter(meterName)
	out := &metrics{
		attrs: metric.WithAttributes(attribute.String("resolver", resolverName)),
	}
	out.flushes, _ = m.Int64Counter("localscan.resolver.flushes",
		metric.WithDescription("Debounce windows flushed"),
		metric.WithUnit("{batch}"),
	)
	out.upstreamCalls, _ = m.Int64Counter("localscan.resolver.upstream_calls",
		metric.WithDescription("Calls issued to the upstream service"),
		metric.WithUnit("{request}"),
	)
	out.cacheHits, _ = m.Int64Counter("localscan.resolver.cache_hits",
		metric.WithDescription("Requests answered from the cache at flush time"),
		metric.WithUnit("{request}"),
	)
	out.resolved, _ = m.Int64Counter("localscan.resolver.resolved",
		metric.WithDescription("Futures resolved with a value"),
		metric.WithUnit("{request}"),
	)
	out.abandoned, _ = m.Int64Counter("localscan.resolver.abandoned",
		metric.WithDescription("Futures abandoned without a value"),
		metric.WithUnit("{request}"),
	)
	out.retries, _ = m.Int64Counter("localscan.resolver.retries",
		metric.WithDescription("Failed requests moved to the tail of the retry queue"),
		metric.WithUnit("{request}"),
	)
	out.batchSize, _ = m.Int64Histogram("localscan.resolver.batch_size",
		metric.WithDescription("Distinct keys sent per upstream batch"),
		metric.WithUnit("{key}"),
	)
	return out
}

func (m *metrics) add(ctx context.Context, counter metric.Int64Counter, n int) {
	if counter == nil || n == 0 {
		return
	}
	counter.Add(ctx, int64(n), m.attrs)
}

func (m *metrics) recordBatch(ctx context.Context, n int) {
	if m.batchSize == nil {
		return
	}
	m.batchSize.Record(ctx, int64(n), m.attrs)
}
