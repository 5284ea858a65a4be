// Package gpu locates an optional GPU management binding once at startup.
//
// The outcome is an Availability value: either Available with a Device
// handle, or Unavailable with the reason. It is computed once and never
// changes afterwards, so it can be shared across goroutines freely.
package gpu

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"time"
)

// ErrNoDevice is returned by backends that loaded but found no GPU.
var ErrNoDevice = errors.New("no gpu device found")

// ErrDisabled is the Unavailable reason when probing was turned off.
var ErrDisabled = errors.New("gpu sampling disabled")

// Device is a handle to the first GPU of a loaded backend.
type Device interface {
	Name() string
	Backend() string
	// Utilization returns the current GPU busy percentage.
	Utilization(ctx context.Context) (float64, error)
	Close() error
}

// Availability is the tagged result of Probe.
type Availability struct {
	device Device
	reason error
}

// Available wraps a ready device.
func Available(d Device) Availability { return Availability{device: d} }

// Unavailable records why no device could be used.
func Unavailable(reason error) Availability {
	if reason == nil {
		reason = ErrNoDevice
	}
	return Availability{reason: reason}
}

// Device returns the handle and true when a GPU is available.
func (a Availability) Device() (Device, bool) {
	return a.device, a.device != nil
}

// Reason returns why the GPU is unavailable, or nil.
func (a Availability) Reason() error {
	if a.device != nil {
		return nil
	}
	return a.reason
}

// Close releases the device, if any.
func (a Availability) Close() error {
	if a.device == nil {
		return nil
	}
	return a.device.Close()
}

// Options controls the probe.
type Options struct {
	Disabled    bool
	LibraryPath string        // NVML shared library; empty uses the loader default
	SMIPath     string        // nvidia-smi binary; empty searches the usual places
	Timeout     time.Duration // per-query timeout for command based backends
}

type backend struct {
	name string
	open func(ctx context.Context, opts Options) (Device, error)
}

// backends are tried in order; the first that yields a device wins.
var backends = []backend{
	{name: "nvml", open: openNVML},
	{name: "nvidia-smi", open: openSMI},
}

// Probe tries each backend once. It never fails; a missing library or an
// initialization error yields Unavailable and is never retried.
func Probe(ctx context.Context, opts Options, logger *slog.Logger) Availability {
	if logger == nil {
		logger = slog.New(slog.NewTextHandler(io.Discard, nil))
	}
	if opts.Disabled {
		logger.Info("gpu probe skipped", "reason", ErrDisabled)
		return Unavailable(ErrDisabled)
	}
	if opts.Timeout <= 0 {
		opts.Timeout = 400 * time.Millisecond
	}

	var errs []error
	for _, b := range backends {
		dev, err := openSafely(ctx, b, opts)
		if err != nil {
			logger.Debug("gpu backend unavailable", "backend", b.name, "error", err)
			errs = append(errs, fmt.Errorf("%s: %w", b.name, err))
			continue
		}
		logger.Info("gpu available", "backend", b.name, "device", dev.Name())
		return Available(dev)
	}

	reason := errors.Join(errs...)
	logger.Info("gpu unavailable, reporting fallback value", "reason", reason)
	return Unavailable(reason)
}

func openSafely(ctx context.Context, b backend, opts Options) (dev Device, err error) {
	defer func() {
		if r := recover(); r != nil {
			dev, err = nil, fmt.Errorf("panic during init: %v", r)
		}
	}()
	return b.open(ctx, opts)
}
