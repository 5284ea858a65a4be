package model

import (
	"math"
	"time"
)

// Kind enumerates the sampled resources.
type Kind int

const (
	CPU Kind = iota
	Memory
	Disk
	GPU
)

// NumKinds is the number of sampled resources.
const NumKinds = 4

// Kinds lists every Kind in sampling order.
var Kinds = [NumKinds]Kind{CPU, Memory, Disk, GPU}

func (k Kind) String() string {
	switch k {
	case CPU:
		return "cpu"
	case Memory:
		return "memory"
	case Disk:
		return "disk"
	case GPU:
		return "gpu"
	default:
		return "unknown"
	}
}

// Unknown marks a slot that holds no reading yet. It is NaN, so it never
// compares equal to a genuine 0% sample.
var Unknown = math.NaN()

// IsUnknown reports whether v is the Unknown marker.
func IsUnknown(v float64) bool { return math.IsNaN(v) }

// GPUStatus describes the outcome of the startup GPU probe.
type GPUStatus struct {
	Available bool
	Name      string
	Backend   string
	Reason    string // why the GPU is unavailable, empty when Available
}

// Snapshot is the read-only view of every series as of one tick.
type Snapshot struct {
	Tick      uint64
	Timestamp time.Time
	Interval  time.Duration
	GPU       GPUStatus

	series [NumKinds][]float64
}

// NewSnapshot takes ownership of series; callers must not retain them.
func NewSnapshot(tick uint64, ts time.Time, interval time.Duration, gpu GPUStatus, series [NumKinds][]float64) Snapshot {
	return Snapshot{
		Tick:      tick,
		Timestamp: ts,
		Interval:  interval,
		GPU:       gpu,
		series:    series,
	}
}

// Series returns a copy of the samples for k, oldest first.
func (s Snapshot) Series(k Kind) []float64 {
	if k < 0 || int(k) >= NumKinds {
		return nil
	}
	out := make([]float64, len(s.series[k]))
	copy(out, s.series[k])
	return out
}

// Latest returns the newest sample for k, or Unknown if there is none.
func (s Snapshot) Latest(k Kind) float64 {
	if k < 0 || int(k) >= NumKinds || len(s.series[k]) == 0 {
		return Unknown
	}
	return s.series[k][len(s.series[k])-1]
}

// Len returns the number of samples held per series.
func (s Snapshot) Len() int { return len(s.series[CPU]) }
