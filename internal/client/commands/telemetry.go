package commands

import (
	"encoding/json"

	"github.com/spf13/cobra"
	"go.opentelemetry.io/otel"
	sdkmetric "go.opentelemetry.io/otel/sdk/metric"
	"go.opentelemetry.io/otel/sdk/metric/metricdata"
)

// telemetry collects the client's OpenTelemetry instruments for one command
// invocation. Disabled it is inert: no meter provider is installed and the
// client's instruments stay no-ops.
type telemetry struct {
	reader *sdkmetric.ManualReader
}

// setupTelemetry installs a manual-reader meter provider when --telemetry is
// set. Must run before the client is constructed, since instruments bind to
// the provider active at creation time.
func setupTelemetry(cmd *cobra.Command) *telemetry {
	enabled, _ := cmd.Flags().GetBool(flagTelemetry)
	if !enabled {
		return &telemetry{}
	}

	reader := sdkmetric.NewManualReader()
	otel.SetMeterProvider(sdkmetric.NewMeterProvider(sdkmetric.WithReader(reader)))
	return &telemetry{reader: reader}
}

// dump collects the recorded instruments and writes a compact JSON summary
// to stderr, keeping stdout clean for the response envelope.
func (t *telemetry) dump(cmd *cobra.Command) {
	if t.reader == nil {
		return
	}

	var rm metricdata.ResourceMetrics
	if err := t.reader.Collect(cmd.Context(), &rm); err != nil {
		return
	}

	summary := make(map[string]any)
	for _, scope := range rm.ScopeMetrics {
		for _, m := range scope.Metrics {
			switch data := m.Data.(type) {
			case metricdata.Sum[int64]:
				var total int64
				for _, dp := range data.DataPoints {
					total += dp.Value
				}
				summary[m.Name] = total
			case metricdata.Histogram[float64]:
				var count uint64
				var sum float64
				for _, dp := range data.DataPoints {
					count += dp.Count
					sum += dp.Sum
				}
				summary[m.Name] = map[string]any{"count": count, "sum_seconds": sum}
			}
		}
	}

	if len(summary) == 0 {
		return
	}
	_ = json.NewEncoder(cmd.ErrOrStderr()).Encode(summary)
}
