package syncer

import (
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/metric"
)

const instrumentationName = "github.com/OCAP2/simvis/internal/syncer"

func meter() metric.Meter {
	return otel.Meter(instrumentationName)
}
