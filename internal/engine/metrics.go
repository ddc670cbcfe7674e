package engine

import (
	"context"
	"time"

	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/metric"

	"github.com/jbonatakis/mockingbird/internal/mockup"
	"github.com/jbonatakis/mockingbird/internal/telemetry"
)

type runMetrics struct {
	runs       metric.Int64Counter
	failures   metric.Int64Counter
	duration   metric.Float64Histogram
	superseded metric.Int64Counter
}

func newRunMetrics() *runMetrics {
	meter := telemetry.Meter("mockingbird/engine")
	runs, _ := meter.Int64Counter("mockingbird.runs",
		metric.WithDescription("Generation runs started"),
	)
	failures, _ := meter.Int64Counter("mockingbird.channel.failures",
		metric.WithDescription("Channels that settled with an error"),
	)
	duration, _ := meter.Float64Histogram("mockingbird.run.duration",
		metric.WithDescription("Time from run start to settle (ms)"),
		metric.WithUnit("ms"),
	)
	superseded, _ := meter.Int64Counter("mockingbird.events.discarded",
		metric.WithDescription("Run events dropped because a newer run took over"),
	)
	return &runMetrics{runs: runs, failures: failures, duration: duration, superseded: superseded}
}

func (m *runMetrics) started(ctx context.Context, mode mockup.Mode) {
	if m == nil || m.runs == nil {
		return
	}
	m.runs.Add(ctx, 1, metric.WithAttributes(attribute.String("mode", string(mode))))
}

func (m *runMetrics) settled(ctx context.Context, mode mockup.Mode, res Result, elapsed time.Duration) {
	if m == nil {
		return
	}
	modeAttr := attribute.String("mode", string(mode))
	if m.duration != nil {
		m.duration.Record(ctx, float64(elapsed.Milliseconds()), metric.WithAttributes(modeAttr))
	}
	if m.failures != nil {
		for _, ch := range res.Errors.Channels() {
			m.failures.Add(ctx, 1, metric.WithAttributes(modeAttr, attribute.String("channel", string(ch))))
		}
	}
}

func (m *runMetrics) discarded(ctx context.Context) {
	if m == nil || m.superseded == nil {
		return
	}
	m.superseded.Add(ctx, 1)
}
