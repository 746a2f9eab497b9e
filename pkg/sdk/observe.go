package reachout

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/prometheus/client_golang/prometheus"
)

// sdkMetrics holds prometheus metrics registered for the SDK.
type sdkMetrics struct {
	calls      *prometheus.CounterVec
	duration   *prometheus.HistogramVec
	strategies *prometheus.CounterVec
}

func newSDKMetrics(reg prometheus.Registerer) (*sdkMetrics, error) {
	m := &sdkMetrics{
		calls: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "reachout",
			Subsystem: "sdk",
			Name:      "calls_total",
			Help:      "Total SDK calls by method and status.",
		}, []string{"method", "status"}),
		duration: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: "reachout",
			Subsystem: "sdk",
			Name:      "call_duration_seconds",
			Help:      "SDK call duration in seconds.",
			Buckets:   []float64{0.001, 0.005, 0.01, 0.05, 0.1, 0.5, 1, 2.5, 5, 10, 30},
		}, []string{"method"}),
		strategies: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "reachout",
			Subsystem: "sdk",
			Name:      "strategies_total",
			Help:      "Strategies returned to SDK callers, by type.",
		}, []string{"type"}),
	}
	if err := registerOrReuse(reg, &m.calls); err != nil {
		return nil, err
	}
	if err := registerOrReuse(reg, &m.duration); err != nil {
		return nil, err
	}
	if err := registerOrReuse(reg, &m.strategies); err != nil {
		return nil, err
	}
	return m, nil
}

// registerOrReuse registers a collector or reuses an existing one.
func registerOrReuse[T prometheus.Collector](reg prometheus.Registerer, c *T) error {
	if err := reg.Register(*c); err != nil {
		var are prometheus.AlreadyRegisteredError
		if errors.As(err, &are) {
			existing, ok := are.ExistingCollector.(T)
			if !ok {
				return fmt.Errorf("reachout: metric already registered with incompatible type: %T", are.ExistingCollector)
			}
			*c = existing
			return nil
		}
		return fmt.Errorf("reachout: register metric: %w", err)
	}
	return nil
}

// observer provides logging and metrics for SDK calls.
type observer struct {
	logger  *slog.Logger
	metrics *sdkMetrics
}

func newObserver(logger *slog.Logger, reg prometheus.Registerer) (*observer, error) {
	var m *sdkMetrics
	if reg != nil {
		var err error
		m, err = newSDKMetrics(reg)
		if err != nil {
			return nil, err
		}
	}
	return &observer{logger: logger, metrics: m}, nil
}

// observe records one call. strategies are the results returned to the caller.
func (o *observer) observe(
	ctx context.Context, method string, start time.Time, err error, strategies ...Strategy,
) {
	if o == nil {
		return
	}
	dur := time.Since(start)

	if o.metrics != nil {
		status := "ok"
		if err != nil {
			status = "error"
		}
		o.metrics.calls.WithLabelValues(method, status).Inc()
		o.metrics.duration.WithLabelValues(method).Observe(dur.Seconds())
		if err == nil {
			for _, s := range strategies {
				o.metrics.strategies.WithLabelValues(string(s.Type)).Inc()
			}
		}
	}

	if o.logger == nil {
		return
	}
	if err != nil {
		o.logger.LogAttrs(ctx, slog.LevelWarn, "call failed",
			slog.String("method", method),
			slog.Duration("duration", dur),
			slog.Any("error", err),
		)
		return
	}
	attrs := []slog.Attr{
		slog.String("method", method),
		slog.Duration("duration", dur),
		slog.Int("strategies", len(strategies)),
	}
	if len(strategies) > 0 {
		attrs = append(attrs,
			slog.String("top_type", string(strategies[0].Type)),
			slog.Float64("top_confidence", strategies[0].Confidence),
		)
	}
	o.logger.LogAttrs(ctx, slog.LevelDebug, "call completed", attrs...)
}
