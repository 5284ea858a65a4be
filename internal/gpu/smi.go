package gpu

import (
	"bufio"
	"context"
	"fmt"
	"os"
	"os/exec"
	"path/filepath"
	"runtime"
	"strconv"
	"strings"
	"time"
)

// runFunc executes a command and returns its combined output.
type runFunc func(ctx context.Context, timeout time.Duration, name string, args ...string) (string, error)

var runCommand runFunc = runCmd

// lookSMI resolves the nvidia-smi binary.
var lookSMI = func(explicit string) (string, error) {
	if explicit != "" {
		return explicit, nil
	}
	if runtime.GOOS == "windows" {
		base := os.Getenv("ProgramFiles")
		if base == "" {
			base = `C:\Program Files`
		}
		candidate := filepath.Join(base, "NVIDIA Corporation", "NVSMI", "nvidia-smi.exe")
		if _, err := os.Stat(candidate); err == nil {
			return candidate, nil
		}
	}
	return exec.LookPath("nvidia-smi")
}

type smiDevice struct {
	path    string
	name    string
	timeout time.Duration
	run     runFunc
}

func openSMI(ctx context.Context, opts Options) (Device, error) {
	path, err := lookSMI(opts.SMIPath)
	if err != nil {
		return nil, err
	}
	d := &smiDevice{path: path, timeout: opts.Timeout, run: runCommand}
	name, _, err := d.query(ctx)
	if err != nil {
		return nil, err
	}
	d.name = name
	return d, nil
}

func (d *smiDevice) Name() string    { return d.name }
func (d *smiDevice) Backend() string { return "nvidia-smi" }
func (d *smiDevice) Close() error    { return nil }

func (d *smiDevice) Utilization(ctx context.Context) (float64, error) {
	_, util, err := d.query(ctx)
	return util, err
}

func (d *smiDevice) query(ctx context.Context) (name string, util float64, err error) {
	out, err := d.run(ctx, d.timeout, d.path,
		"--id=0",
		"--query-gpu=name,utilization.gpu",
		"--format=csv,noheader,nounits")
	if err != nil {
		return "", 0, fmt.Errorf("nvidia-smi: %w", err)
	}
	return parseSMI(out)
}

// parseSMI reads the first "name, util" line of nvidia-smi CSV output.
func parseSMI(out string) (string, float64, error) {
	sc := bufio.NewScanner(strings.NewReader(out))
	for sc.Scan() {
		line := strings.TrimSpace(sc.Text())
		if line == "" {
			continue
		}
		parts := strings.Split(line, ",")
		if len(parts) < 2 {
			return "", 0, fmt.Errorf("unexpected nvidia-smi output %q", line)
		}
		raw := strings.TrimSuffix(strings.TrimSpace(parts[1]), "%")
		util, err := strconv.ParseFloat(strings.TrimSpace(raw), 64)
		if err != nil {
			return "", 0, fmt.Errorf("parse utilization %q: %w", parts[1], err)
		}
		return strings.TrimSpace(parts[0]), util, nil
	}
	return "", 0, ErrNoDevice
}

func runCmd(ctx context.Context, timeout time.Duration, name string, args ...string) (string, error) {
	ctx, cancel := context.WithTimeout(ctx, timeout)
	defer cancel()
	out, err := exec.CommandContext(ctx, name, args...).CombinedOutput()
	if ctx.Err() == context.DeadlineExceeded {
		return "", ctx.Err()
	}
	return string(out), err
}
