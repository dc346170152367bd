package observability

import (
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/metric"
	"go.opentelemetry.io/otel/metric/noop"
)

var noopMeter = noop.NewMeterProvider().Meter(instrumentationName)

// Meter returns the meter shared by the API packages. Without an SDK
// installed the global provider hands out no-op instruments.
func Meter() metric.Meter {
	return otel.Meter(instrumentationName)
}

// Int64Counter creates a counter, falling back to a no-op instrument when
// the provider rejects the definition.
func Int64Counter(name, description string) metric.Int64Counter {
	counter, err := Meter().Int64Counter(name, metric.WithDescription(description))
	if err != nil {
		counter, _ = noopMeter.Int64Counter(name)
	}
	return counter
}

// Float64Histogram creates a histogram with the given unit.
func Float64Histogram(name, description, unit string) metric.Float64Histogram {
	hist, err := Meter().Float64Histogram(name, metric.WithDescription(description), metric.WithUnit(unit))
	if err != nil {
		hist, _ = noopMeter.Float64Histogram(name)
	}
	return hist
}
