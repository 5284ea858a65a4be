// Package source reads one utilization percentage per resource.
package source

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"math"

	"github.com/Dicklesworthstone/sysgraph/internal/model"
)

// ErrUnavailable means the source has nothing to measure for the lifetime
// of the process. The guard substitutes the fallback without logging.
var ErrUnavailable = errors.New("source unavailable")

// Source reads the current utilization of one resource, in percent.
type Source interface {
	Kind() model.Kind
	Read(ctx context.Context) (float64, error)
}

// Guard is the failure boundary around a Source. Sample never fails: errors,
// panics and out-of-range readings become the fallback value. A Guard is
// used by one goroutine at a time.
type Guard struct {
	src      Source
	fallback float64
	logger   *slog.Logger
	failing  bool
}

// Guarded wraps src. A nil logger discards output.
func Guarded(src Source, fallback float64, logger *slog.Logger) *Guard {
	if logger == nil {
		logger = slog.New(slog.NewTextHandler(io.Discard, nil))
	}
	return &Guard{
		src:      src,
		fallback: fallback,
		logger:   logger.With("metric", src.Kind().String()),
	}
}

// Kind returns the wrapped source's kind.
func (g *Guard) Kind() model.Kind { return g.src.Kind() }

// Sample reads the source, returning a value in [0, 100] or the fallback.
func (g *Guard) Sample(ctx context.Context) float64 {
	v, err := g.read(ctx)
	switch {
	case errors.Is(err, ErrUnavailable):
		return g.fallback
	case err != nil:
		if !g.failing {
			g.logger.Warn("metric query failed, using fallback", "error", err, "fallback", g.fallback)
		} else {
			g.logger.Debug("metric query still failing", "error", err)
		}
		g.failing = true
		return g.fallback
	}
	if g.failing {
		g.logger.Info("metric query recovered")
		g.failing = false
	}
	return clamp(v)
}

func (g *Guard) read(ctx context.Context) (v float64, err error) {
	defer func() {
		if r := recover(); r != nil {
			v, err = 0, fmt.Errorf("panic: %v", r)
		}
	}()
	v, err = g.src.Read(ctx)
	if err == nil && (math.IsNaN(v) || math.IsInf(v, 0)) {
		err = fmt.Errorf("invalid reading %v", v)
	}
	return v, err
}

func clamp(v float64) float64 {
	if v < 0 {
		return 0
	}
	if v > 100 {
		return 100
	}
	return v
}
