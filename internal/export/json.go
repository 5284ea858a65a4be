// Package export writes snapshots as JSON for scripting.
package export

import (
	"encoding/json"
	"io"
	"log/slog"
	"sync"
	"time"

	"github.com/Dicklesworthstone/sysgraph/internal/model"
)

// Record is the JSON form of a snapshot. Unknown samples encode as null.
type Record struct {
	Tick       uint64                `json:"tick"`
	Timestamp  time.Time             `json:"timestamp"`
	IntervalMS int64                 `json:"interval_ms"`
	GPU        GPU                   `json:"gpu"`
	Series     map[string][]*float64 `json:"series"`
}

type GPU struct {
	Available bool   `json:"available"`
	Name      string `json:"name,omitempty"`
	Backend   string `json:"backend,omitempty"`
	Reason    string `json:"reason,omitempty"`
}

// NewRecord converts a snapshot.
func NewRecord(s model.Snapshot) Record {
	r := Record{
		Tick:       s.Tick,
		Timestamp:  s.Timestamp,
		IntervalMS: s.Interval.Milliseconds(),
		GPU: GPU{
			Available: s.GPU.Available,
			Name:      s.GPU.Name,
			Backend:   s.GPU.Backend,
			Reason:    s.GPU.Reason,
		},
		Series: make(map[string][]*float64, model.NumKinds),
	}
	for _, k := range model.Kinds {
		vals := s.Series(k)
		out := make([]*float64, len(vals))
		for i := range vals {
			if !model.IsUnknown(vals[i]) {
				out[i] = &vals[i]
			}
		}
		r.Series[k.String()] = out
	}
	return r
}

// Writer is a sampler publisher that emits one JSON document per snapshot.
type Writer struct {
	mu     sync.Mutex
	enc    *json.Encoder
	logger *slog.Logger
}

// NewWriter returns a Writer emitting newline-delimited JSON to w.
func NewWriter(w io.Writer, logger *slog.Logger) *Writer {
	if logger == nil {
		logger = slog.New(slog.NewTextHandler(io.Discard, nil))
	}
	return &Writer{enc: json.NewEncoder(w), logger: logger}
}

// Publish writes the snapshot. Write errors are logged; a broken pipe must
// not stop sampling.
func (w *Writer) Publish(s model.Snapshot) {
	w.mu.Lock()
	defer w.mu.Unlock()
	if err := w.enc.Encode(NewRecord(s)); err != nil {
		w.logger.Error("write snapshot", "tick", s.Tick, "error", err)
	}
}
