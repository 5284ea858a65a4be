package ui

import (
	"strings"
	"testing"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Dicklesworthstone/sysgraph/internal/model"
)

func testSnapshot(tick uint64, gpu model.GPUStatus) model.Snapshot {
	var series [model.NumKinds][]float64
	for _, k := range model.Kinds {
		series[k] = []float64{0, 25, 50, 100}
	}
	return model.NewSnapshot(tick, time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC), time.Second, gpu, series)
}

func TestRenderChartSingleRow(t *testing.T) {
	assert.Equal(t, " ▂▄█", renderChart([]float64{0, 25, 50, 100}, 4, 1))
}

func TestRenderChartMultiRow(t *testing.T) {
	out := renderChart([]float64{100, 50, 0}, 3, 2)
	lines := strings.Split(out, "\n")
	require.Len(t, lines, 2)
	assert.Equal(t, "█  ", lines[0])
	assert.Equal(t, "██ ", lines[1])
}

func TestRenderChartKeepsNewest(t *testing.T) {
	assert.Equal(t, "▄█", renderChart([]float64{100, 100, 50, 100}, 2, 1))
}

func TestRenderChartRightAligns(t *testing.T) {
	assert.Equal(t, "   █", renderChart([]float64{100}, 4, 1))
}

func TestRenderChartUnknown(t *testing.T) {
	assert.Equal(t, "·· ▁", renderChart([]float64{model.Unknown, model.Unknown, 0, 1}, 4, 1))
}

func TestRenderChartEmptyDims(t *testing.T) {
	assert.Empty(t, renderChart([]float64{1}, 0, 1))
	assert.Empty(t, renderChart([]float64{1}, 1, 0))
}

func TestGaugeBar(t *testing.T) {
	assert.Equal(t, "[█████░░░░░]  50.0%", gaugeBar(50, 10))
	assert.Equal(t, "[██████████] 100.0%", gaugeBar(150, 10))
	assert.Contains(t, gaugeBar(model.Unknown, 4), "n/a")
}

func TestSummary(t *testing.T) {
	assert.Equal(t, "min 0 avg 44 max 100", summary([]float64{0, 25, 50, 100}))
	assert.Equal(t, "no data yet", summary([]float64{model.Unknown}))
	assert.Equal(t, "min 10 avg 15 max 20", summary([]float64{model.Unknown, 10, 20}))
}

func TestUpdateStoresSnapshotAndWaitsForNext(t *testing.T) {
	ch := make(chan model.Snapshot, 1)
	m := New(ch, nil, 4)

	next, cmd := m.Update(snapshotMsg(testSnapshot(3, model.GPUStatus{})))
	mm := next.(*Model)
	assert.True(t, mm.have)
	assert.Equal(t, uint64(3), mm.latest.Tick)
	require.NotNil(t, cmd)

	ch <- testSnapshot(4, model.GPUStatus{})
	msg := cmd()
	assert.Equal(t, uint64(4), model.Snapshot(msg.(snapshotMsg)).Tick)
}

func TestStreamEndQuits(t *testing.T) {
	ch := make(chan model.Snapshot)
	close(ch)
	m := New(ch, nil, 4)

	msg := m.Init()()
	assert.IsType(t, streamEndMsg{}, msg)

	_, cmd := m.Update(msg)
	require.NotNil(t, cmd)
	assert.IsType(t, tea.QuitMsg{}, cmd())
}

func TestQuitCancelsSampler(t *testing.T) {
	cancelled := false
	m := New(make(chan model.Snapshot), func() { cancelled = true }, 4)

	_, cmd := m.Update(tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune("q")})
	assert.True(t, cancelled)
	require.NotNil(t, cmd)
	assert.IsType(t, tea.QuitMsg{}, cmd())
}

func TestHelpToggle(t *testing.T) {
	m := New(make(chan model.Snapshot), nil, 4)
	m.Update(tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune("?")})
	assert.True(t, m.help.ShowAll)
}

func TestViewShowsAllCharts(t *testing.T) {
	m := New(make(chan model.Snapshot), nil, 20)
	assert.Contains(t, m.View(), "waiting for first sample")

	m.Update(snapshotMsg(testSnapshot(1, model.GPUStatus{Reason: "no gpu device found"})))
	view := m.View()
	for _, title := range []string{"CPU Usage (%)", "Memory Usage (%)", "GPU Usage (%)", "Disk Usage (%)"} {
		assert.Contains(t, view, title)
	}
	assert.Contains(t, view, "unavailable: no gpu device found")
	assert.Contains(t, view, "tick 1")
}

func TestViewShowsGPUName(t *testing.T) {
	m := New(make(chan model.Snapshot), nil, 20)
	m.Update(snapshotMsg(testSnapshot(1, model.GPUStatus{Available: true, Name: "Tesla T4"})))
	assert.Contains(t, m.View(), "Tesla T4")
}

func TestChartDimensions(t *testing.T) {
	m := New(make(chan model.Snapshot), nil, 60)
	m.Update(tea.WindowSizeMsg{Width: 40, Height: 10})
	assert.Equal(t, 36, m.chartColumns())
	assert.Equal(t, 1, m.chartHeight())

	m.Update(tea.WindowSizeMsg{Width: 200, Height: 80})
	assert.Equal(t, 60, m.chartColumns())
	assert.Equal(t, defaultChartHeight, m.chartHeight())
}
