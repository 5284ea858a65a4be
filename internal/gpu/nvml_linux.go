//go:build linux && cgo

package gpu

import (
	"context"
	"fmt"

	"github.com/NVIDIA/go-nvml/pkg/nvml"
)

type nvmlDevice struct {
	lib    nvml.Interface
	handle nvml.Device
	name   string
}

func openNVML(_ context.Context, opts Options) (Device, error) {
	var lib nvml.Interface
	if opts.LibraryPath != "" {
		lib = nvml.New(nvml.WithLibraryPath(opts.LibraryPath))
	} else {
		lib = nvml.New()
	}
	if ret := lib.Init(); ret != nvml.SUCCESS {
		return nil, fmt.Errorf("nvml init: return code %d", int32(ret))
	}

	count, ret := lib.DeviceGetCount()
	if ret != nvml.SUCCESS || count == 0 {
		lib.Shutdown()
		return nil, ErrNoDevice
	}
	handle, ret := lib.DeviceGetHandleByIndex(0)
	if ret != nvml.SUCCESS {
		lib.Shutdown()
		return nil, fmt.Errorf("nvml device 0: return code %d", int32(ret))
	}
	name, ret := handle.GetName()
	if ret != nvml.SUCCESS {
		name = "NVIDIA GPU"
	}
	return &nvmlDevice{lib: lib, handle: handle, name: name}, nil
}

func (d *nvmlDevice) Name() string    { return d.name }
func (d *nvmlDevice) Backend() string { return "nvml" }

func (d *nvmlDevice) Utilization(context.Context) (float64, error) {
	rates, ret := d.handle.GetUtilizationRates()
	if ret != nvml.SUCCESS {
		return 0, fmt.Errorf("nvml utilization: return code %d", int32(ret))
	}
	return float64(rates.Gpu), nil
}

func (d *nvmlDevice) Close() error {
	if ret := d.lib.Shutdown(); ret != nvml.SUCCESS {
		return fmt.Errorf("nvml shutdown: return code %d", int32(ret))
	}
	return nil
}
