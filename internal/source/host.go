package source

import (
	"context"
	"errors"
	"runtime"
	"time"

	"github.com/shirou/gopsutil/v3/cpu"
	"github.com/shirou/gopsutil/v3/disk"
	"github.com/shirou/gopsutil/v3/mem"

	"github.com/Dicklesworthstone/sysgraph/internal/model"
)

// DefaultCPUWindow is the default CPU measurement interval. A zero interval
// would compare against the previous call and report 0 on the first read.
const DefaultCPUWindow = 100 * time.Millisecond

// CPU reports total CPU busy percentage over a short measurement window.
// Read blocks for the window.
type CPU struct {
	Window time.Duration

	percent func(ctx context.Context, interval time.Duration, percpu bool) ([]float64, error)
}

// NewCPU returns a CPU source measuring over window.
func NewCPU(window time.Duration) *CPU {
	if window <= 0 {
		window = DefaultCPUWindow
	}
	return &CPU{Window: window, percent: cpu.PercentWithContext}
}

func (c *CPU) Kind() model.Kind { return model.CPU }

func (c *CPU) Read(ctx context.Context) (float64, error) {
	pcts, err := c.percent(ctx, c.Window, false)
	if err != nil {
		return 0, err
	}
	if len(pcts) == 0 {
		return 0, errors.New("cpu: no readings")
	}
	return pcts[0], nil
}

// Memory reports used physical memory as a percentage.
type Memory struct {
	virtual func(ctx context.Context) (*mem.VirtualMemoryStat, error)
}

func NewMemory() *Memory { return &Memory{virtual: mem.VirtualMemoryWithContext} }

func (m *Memory) Kind() model.Kind { return model.Memory }

func (m *Memory) Read(ctx context.Context) (float64, error) {
	v, err := m.virtual(ctx)
	if err != nil {
		return 0, err
	}
	return v.UsedPercent, nil
}

// DefaultDiskPath returns the root of the primary volume.
func DefaultDiskPath() string {
	if runtime.GOOS == "windows" {
		return `C:\`
	}
	return "/"
}

// Disk reports used space on the filesystem holding Path.
type Disk struct {
	Path string

	usage func(ctx context.Context, path string) (*disk.UsageStat, error)
}

// NewDisk returns a Disk source for path, or the primary volume when empty.
func NewDisk(path string) *Disk {
	if path == "" {
		path = DefaultDiskPath()
	}
	return &Disk{Path: path, usage: disk.UsageWithContext}
}

func (d *Disk) Kind() model.Kind { return model.Disk }

func (d *Disk) Read(ctx context.Context) (float64, error) {
	u, err := d.usage(ctx, d.Path)
	if err != nil {
		return 0, err
	}
	return u.UsedPercent, nil
}
