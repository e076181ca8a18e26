package sampler

import (
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/metric"
)

const instrumentationName = "github.com/vrlink/extension/internal/sampler"

func meter() metric.Meter {
	return otel.Meter(instrumentationName)
}
