// Package sampler drives the periodic sampling loop. Each tick reads every
// metric source, appends the readings to per-metric rolling windows and
// publishes one Snapshot covering all of them.
package sampler

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"time"

	"golang.org/x/sync/errgroup"

	"github.com/Dicklesworthstone/sysgraph/internal/clock"
	"github.com/Dicklesworthstone/sysgraph/internal/history"
	"github.com/Dicklesworthstone/sysgraph/internal/model"
	"github.com/Dicklesworthstone/sysgraph/internal/source"
)

// Publisher receives one Snapshot per completed tick, in tick order.
type Publisher interface {
	Publish(model.Snapshot)
}

// PublisherFunc adapts a function to Publisher.
type PublisherFunc func(model.Snapshot)

func (f PublisherFunc) Publish(s model.Snapshot) { f(s) }

// Options configures a Sampler.
type Options struct {
	Interval time.Duration
	Window   int
	Fallback float64
	Prefill  float64 // initial value of every window slot
	GPU      model.GPUStatus
	Clock    clock.Clock
	Logger   *slog.Logger
}

// Sampler owns the rolling windows. Only the goroutine running Run, Stream
// or Tick touches them; readers only ever see Snapshot copies.
type Sampler struct {
	interval time.Duration
	gpu      model.GPUStatus
	clock    clock.Clock
	logger   *slog.Logger

	guards  [model.NumKinds]*source.Guard
	buffers [model.NumKinds]*history.Buffer
	tick    uint64
}

// New builds a Sampler with exactly one source per metric kind.
func New(opts Options, sources ...source.Source) (*Sampler, error) {
	if opts.Interval <= 0 {
		return nil, errors.New("sampler: interval must be positive")
	}
	if opts.Clock == nil {
		opts.Clock = clock.Real()
	}
	if opts.Logger == nil {
		opts.Logger = slog.New(slog.NewTextHandler(io.Discard, nil))
	}

	s := &Sampler{
		interval: opts.Interval,
		gpu:      opts.GPU,
		clock:    opts.Clock,
		logger:   opts.Logger,
	}
	for _, src := range sources {
		k := src.Kind()
		if k < 0 || int(k) >= model.NumKinds {
			return nil, fmt.Errorf("sampler: unknown metric kind %d", k)
		}
		if s.guards[k] != nil {
			return nil, fmt.Errorf("sampler: duplicate source for %s", k)
		}
		s.guards[k] = source.Guarded(src, opts.Fallback, opts.Logger)
	}
	for _, k := range model.Kinds {
		if s.guards[k] == nil {
			return nil, fmt.Errorf("sampler: missing source for %s", k)
		}
		s.buffers[k] = history.New(opts.Window, opts.Prefill)
	}
	return s, nil
}

// Run samples immediately, then once per interval measured from the start
// of each tick, until ctx is cancelled. A tick that overruns the interval
// is followed by the next one as soon as it finishes; missed ticks are
// dropped rather than queued.
func (s *Sampler) Run(ctx context.Context, pub Publisher) {
	s.loop(ctx, s.clock.NewTicker(s.interval), pub)
}

// Stream returns a channel receiving snapshots until ctx is done, at which
// point the channel is closed. The ticker is armed before Stream returns.
func (s *Sampler) Stream(ctx context.Context) <-chan model.Snapshot {
	ch := make(chan model.Snapshot)
	ticker := s.clock.NewTicker(s.interval)
	go func() {
		defer close(ch)
		s.loop(ctx, ticker, PublisherFunc(func(snap model.Snapshot) {
			select {
			case ch <- snap:
			case <-ctx.Done():
			}
		}))
	}()
	return ch
}

func (s *Sampler) loop(ctx context.Context, ticker clock.Ticker, pub Publisher) {
	defer ticker.Stop()

	s.publish(ctx, pub)
	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C():
			s.publish(ctx, pub)
		}
	}
}

func (s *Sampler) publish(ctx context.Context, pub Publisher) {
	start := s.clock.Now()
	snap, ok := s.Tick(ctx)
	if !ok {
		return
	}
	pub.Publish(snap)
	if took := s.clock.Now().Sub(start); took > s.interval {
		s.logger.Debug("tick overran interval", "tick", snap.Tick, "took", took, "interval", s.interval)
	}
}

// Tick runs one sampling cycle synchronously. All sources are read
// concurrently and the windows are updated only after every read has
// returned. If ctx is cancelled before that, the windows are left untouched
// and ok is false.
func (s *Sampler) Tick(ctx context.Context) (snap model.Snapshot, ok bool) {
	if ctx.Err() != nil {
		return model.Snapshot{}, false
	}
	ts := s.clock.Now()

	var readings [model.NumKinds]float64
	var g errgroup.Group
	for _, k := range model.Kinds {
		k := k
		g.Go(func() error {
			readings[k] = s.guards[k].Sample(ctx)
			return nil
		})
	}
	_ = g.Wait()

	if ctx.Err() != nil {
		return model.Snapshot{}, false
	}

	var series [model.NumKinds][]float64
	for _, k := range model.Kinds {
		s.buffers[k].Push(readings[k])
		series[k] = s.buffers[k].Snapshot()
	}
	s.tick++
	return model.NewSnapshot(s.tick, ts, s.interval, s.gpu, series), true
}
