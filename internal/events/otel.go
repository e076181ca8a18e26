package events

import (
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/metric"
)

const instrumentationName = "github.com/vrlink/extension/internal/events"

func meter() metric.Meter {
	return otel.Meter(instrumentationName)
}
