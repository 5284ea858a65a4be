package cli

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"log/slog"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Dicklesworthstone/sysgraph/internal/config"
	"github.com/Dicklesworthstone/sysgraph/internal/gpu"
	"github.com/Dicklesworthstone/sysgraph/internal/model"
)

func TestRootRejectsInvalidConfig(t *testing.T) {
	cmd := NewRootCommand()
	cmd.SetArgs([]string{"--window=0"})
	cmd.SetOut(&bytes.Buffer{})
	cmd.SetErr(&bytes.Buffer{})

	err := cmd.ExecuteContext(context.Background())
	assert.ErrorIs(t, err, config.ErrInvalid)
}

func TestRootRejectsArgs(t *testing.T) {
	cmd := NewRootCommand()
	cmd.SetArgs([]string{"extra"})
	cmd.SetOut(&bytes.Buffer{})
	cmd.SetErr(&bytes.Buffer{})
	assert.Error(t, cmd.ExecuteContext(context.Background()))
}

func TestRootHasConfigFlags(t *testing.T) {
	cmd := NewRootCommand()
	for _, name := range []string{"config", "window", "interval", "cpu-window", "fallback", "prefill", "gpu", "json", "json-stream"} {
		assert.NotNil(t, cmd.Flags().Lookup(name), name)
	}
}

func TestNewSamplerWiresAllKinds(t *testing.T) {
	cfg := config.Default()
	cfg.Window = 5
	logger := slog.New(slog.NewTextHandler(io.Discard, nil))

	s, err := newSampler(cfg, gpu.Unavailable(gpu.ErrDisabled), logger)
	require.NoError(t, err)

	snap, ok := s.Tick(context.Background())
	require.True(t, ok)
	assert.Equal(t, 5, snap.Len())
	assert.False(t, snap.GPU.Available)
	assert.Equal(t, gpu.ErrDisabled.Error(), snap.GPU.Reason)
	assert.Equal(t, []float64{0, 0, 0, 0, 0}, snap.Series(model.GPU))
}

// TestOneShotJSON samples the real host once.
func TestOneShotJSON(t *testing.T) {
	if testing.Short() {
		t.Skip("reads host metrics")
	}
	cfg := config.Default()
	cfg.Window = 3
	cfg.EnableGPU = false
	cfg.JSON = true

	var out, errOut bytes.Buffer
	require.NoError(t, run(context.Background(), cfg, &out, &errOut))

	var rec map[string]any
	require.NoError(t, json.Unmarshal(out.Bytes(), &rec))
	assert.Equal(t, 1.0, rec["tick"])

	series := rec["series"].(map[string]any)
	for _, k := range model.Kinds {
		require.Contains(t, series, k.String())
		assert.Len(t, series[k.String()], 3)
	}
	gpuSeries := series["gpu"].([]any)
	assert.Equal(t, 0.0, gpuSeries[2])
}
