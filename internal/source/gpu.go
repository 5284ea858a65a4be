package source

import (
	"context"

	"github.com/Dicklesworthstone/sysgraph/internal/gpu"
	"github.com/Dicklesworthstone/sysgraph/internal/model"
)

// GPU reports utilization of the first GPU found by the startup probe.
// With no GPU available every read returns ErrUnavailable.
type GPU struct {
	avail gpu.Availability
}

func NewGPU(avail gpu.Availability) *GPU { return &GPU{avail: avail} }

func (g *GPU) Kind() model.Kind { return model.GPU }

func (g *GPU) Read(ctx context.Context) (float64, error) {
	dev, ok := g.avail.Device()
	if !ok {
		return 0, ErrUnavailable
	}
	return dev.Utilization(ctx)
}

// Status summarizes the probe outcome for renderers.
func (g *GPU) Status() model.GPUStatus {
	dev, ok := g.avail.Device()
	if !ok {
		st := model.GPUStatus{}
		if err := g.avail.Reason(); err != nil {
			st.Reason = err.Error()
		}
		return st
	}
	return model.GPUStatus{Available: true, Name: dev.Name(), Backend: dev.Backend()}
}
