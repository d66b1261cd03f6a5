package textgen

import (
	"context"
	"time"

	"github.com/charmbracelet/log"
	"github.com/prometheus/client_golang/prometheus"
)

// Instrumented records latency and failures of the wrapped generator.
type Instrumented struct {
	Next     Generator
	Duration *prometheus.HistogramVec
	Failures *prometheus.CounterVec
	Logger   *log.Logger
}

func (g *Instrumented) Generate(ctx context.Context, req Request) (string, error) {
	start := time.Now()
	text, err := g.Next.Generate(ctx, req)
	elapsed := time.Since(start)

	if g.Duration != nil {
		g.Duration.WithLabelValues(req.Purpose).Observe(elapsed.Seconds())
	}
	if err != nil {
		if g.Failures != nil {
			g.Failures.WithLabelValues(req.Purpose).Inc()
		}
		if g.Logger != nil {
			g.Logger.Warn("text generation failed", "purpose", req.Purpose, "elapsed", elapsed, "err", err)
		}
		return "", err
	}
	if g.Logger != nil {
		g.Logger.Debug("text generation done", "purpose", req.Purpose, "elapsed", elapsed, "chars", len(text))
	}
	return text, nil
}
