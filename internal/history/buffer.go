// Package history keeps the trailing window of samples for one metric.
package history

// DefaultSize is the default number of samples retained per metric.
const DefaultSize = 60

// Buffer is a fixed-capacity circular buffer of float64 samples. It starts
// full, holding size copies of the fill value, so readers always see a
// series of constant length. Buffer is not safe for concurrent use.
type Buffer struct {
	data  []float64
	head  int // next write position, also the oldest sample once full
	count int
}

// New creates a Buffer of the given capacity prefilled with fill.
// Non-positive sizes fall back to DefaultSize.
func New(size int, fill float64) *Buffer {
	if size <= 0 {
		size = DefaultSize
	}
	data := make([]float64, size)
	for i := range data {
		data[i] = fill
	}
	return &Buffer{data: data, count: size}
}

// Push appends v, evicting the oldest sample when the buffer is full.
func (b *Buffer) Push(v float64) {
	b.data[b.head] = v
	b.head = (b.head + 1) % len(b.data)
	if b.count < len(b.data) {
		b.count++
	}
}

// Len returns the number of samples held.
func (b *Buffer) Len() int { return b.count }

// Cap returns the window size.
func (b *Buffer) Cap() int { return len(b.data) }

// Last returns the newest sample.
func (b *Buffer) Last() float64 {
	return b.data[(b.head-1+len(b.data))%len(b.data)]
}

// Snapshot returns a copy of the contents in chronological order (oldest first).
func (b *Buffer) Snapshot() []float64 {
	out := make([]float64, b.count)
	start := (b.head - b.count + len(b.data)) % len(b.data)
	for i := 0; i < b.count; i++ {
		out[i] = b.data[(start+i)%len(b.data)]
	}
	return out
}
