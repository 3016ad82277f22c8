package client

import (
	"context"
	"time"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/metric"
)

// meterName identifies this library's instruments to the meter provider.
const meterName = "gopandora-client"

// Metric names following OpenTelemetry semantic conventions for HTTP clients.
const (
	requestCounterName    = "pandora_client_requests_total"
	errorCounterName      = "pandora_client_request_errors_total"
	durationHistogramName = "pandora_client_request_duration_seconds"
)

// Attribute keys for request metrics labeling.
const (
	attrEndpoint = "endpoint"
	attrMethod   = "http_method"
	attrStatus   = "http_status"
)

// requestMetrics instruments every client round trip. With no meter provider
// installed the instruments are no-ops, so the library adds no overhead for
// callers that do not care about telemetry.
type requestMetrics struct {
	requestCounter    metric.Int64Counter
	errorCounter      metric.Int64Counter
	durationHistogram metric.Float64Histogram
}

func newRequestMetrics() *requestMetrics {
	meter := otel.Meter(meterName)

	requestCounter, _ := meter.Int64Counter(
		requestCounterName,
		metric.WithDescription("Total number of requests issued against the Pandora API"),
	)

	errorCounter, _ := meter.Int64Counter(
		errorCounterName,
		metric.WithDescription("Total number of Pandora API requests that failed at the transport layer"),
	)

	durationHistogram, _ := meter.Float64Histogram(
		durationHistogramName,
		metric.WithDescription("Duration of Pandora API round trips in seconds"),
		metric.WithUnit("s"),
	)

	return &requestMetrics{
		requestCounter:    requestCounter,
		errorCounter:      errorCounter,
		durationHistogram: durationHistogram,
	}
}

// start records the beginning of a round trip and returns the completion
// callback. status is the HTTP status code, zero when the transport failed.
func (m *requestMetrics) start(ctx context.Context, endpoint, method string) func(status int, err error) {
	began := time.Now()
	return func(status int, err error) {
		attrs := []attribute.KeyValue{
			attribute.String(attrEndpoint, endpoint),
			attribute.String(attrMethod, method),
		}
		if status > 0 {
			attrs = append(attrs, attribute.Int(attrStatus, status))
		}
		set := metric.WithAttributes(attrs...)

		m.requestCounter.Add(ctx, 1, set)
		m.durationHistogram.Record(ctx, time.Since(began).Seconds(), set)
		if err != nil {
			m.errorCounter.Add(ctx, 1, set)
		}
	}
}
