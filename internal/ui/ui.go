package ui

import (
	"context"
	"fmt"
	"strings"

	"github.com/charmbracelet/bubbles/help"
	"github.com/charmbracelet/bubbles/key"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/Dicklesworthstone/sysgraph/internal/model"
)

// chart describes how one metric is drawn, in display order.
type chart struct {
	kind  model.Kind
	title string
	color lipgloss.Color
}

var charts = []chart{
	{model.CPU, "CPU Usage (%)", lipgloss.Color("51")},
	{model.Memory, "Memory Usage (%)", lipgloss.Color("46")},
	{model.GPU, "GPU Usage (%)", lipgloss.Color("201")},
	{model.Disk, "Disk Usage (%)", lipgloss.Color("214")},
}

const defaultChartHeight = 4

// Model renders snapshots received from the sampler.
type Model struct {
	stream <-chan model.Snapshot
	cancel context.CancelFunc
	keys   keyMap
	help   help.Model

	latest model.Snapshot
	have   bool
	window int
	width  int
	height int
}

// New returns a Model reading from stream. cancel stops the sampler when
// the user quits.
func New(stream <-chan model.Snapshot, cancel context.CancelFunc, window int) *Model {
	if cancel == nil {
		cancel = func() {}
	}
	return &Model{
		stream: stream,
		cancel: cancel,
		keys:   defaultKeys(),
		help:   help.New(),
		window: window,
		width:  120,
		height: 40,
	}
}

// Messages
type (
	snapshotMsg  model.Snapshot
	streamEndMsg struct{}
)

func waitForSnapshot(ch <-chan model.Snapshot) tea.Cmd {
	return func() tea.Msg {
		snap, ok := <-ch
		if !ok {
			return streamEndMsg{}
		}
		return snapshotMsg(snap)
	}
}

func (m *Model) Init() tea.Cmd { return waitForSnapshot(m.stream) }

func (m *Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width, m.height = msg.Width, msg.Height
		m.help.Width = msg.Width
	case tea.KeyMsg:
		switch {
		case key.Matches(msg, m.keys.Quit):
			m.cancel()
			return m, tea.Quit
		case key.Matches(msg, m.keys.Help):
			m.help.ShowAll = !m.help.ShowAll
		}
	case snapshotMsg:
		m.latest = model.Snapshot(msg)
		m.have = true
		return m, waitForSnapshot(m.stream)
	case streamEndMsg:
		return m, tea.Quit
	}
	return m, nil
}

// Styles
var (
	titleStyle  = lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("45"))
	subtleStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("244"))
	gaugeFill   = "█"
	gaugeEmpty  = "░"
	cardStyle   = lipgloss.NewStyle().
			Border(lipgloss.RoundedBorder()).
			BorderForeground(lipgloss.Color("60")).
			Padding(0, 1)
)

func (m *Model) View() string {
	s := m.latest
	status := "waiting for first sample"
	if m.have {
		status = fmt.Sprintf("%s  tick %d  every %s",
			s.Timestamp.Format("Mon Jan 2 15:04:05 MST 2006"), s.Tick, s.Interval)
	}
	header := titleStyle.Render("Real-Time System Monitor") + "  " + subtleStyle.Render(status)

	cols := m.chartColumns()
	rows := m.chartHeight()
	cards := make([]string, 0, len(charts))
	for _, c := range charts {
		cards = append(cards, m.renderCard(c, cols, rows))
	}

	return lipgloss.JoinVertical(lipgloss.Left,
		header,
		lipgloss.JoinVertical(lipgloss.Left, cards...),
		m.help.View(m.keys))
}

func (m *Model) renderCard(c chart, cols, rows int) string {
	label := lipgloss.NewStyle().Foreground(c.color).Bold(true).Render(c.title)
	if c.kind == model.GPU {
		label += "  " + subtleStyle.Render(gpuCaption(m.latest.GPU, m.have))
	}

	body := subtleStyle.Render(strings.Repeat("·", cols))
	if m.have {
		series := m.latest.Series(c.kind)
		body = lipgloss.NewStyle().Foreground(c.color).Render(renderChart(series, cols, rows)) +
			"\n" + gaugeBar(m.latest.Latest(c.kind), cols-8) +
			"  " + subtleStyle.Render(summary(series))
	}
	return cardStyle.Render(label + "\n" + body)
}

// chartColumns fits the window into the terminal width, leaving room for
// the card border and padding.
func (m *Model) chartColumns() int {
	cols := m.window
	if limit := m.width - 4; limit > 0 && cols > limit {
		cols = limit
	}
	if cols < 16 {
		cols = 16
	}
	return cols
}

// chartHeight splits the terminal height between the four cards.
func (m *Model) chartHeight() int {
	free := m.height - 2 - len(charts)*4
	h := free / len(charts)
	if h < 1 {
		return 1
	}
	if h > defaultChartHeight {
		return defaultChartHeight
	}
	return h
}

func gpuCaption(st model.GPUStatus, have bool) string {
	switch {
	case !have:
		return ""
	case st.Available:
		return truncate(st.Name, 40)
	case st.Reason != "":
		return "unavailable: " + truncate(st.Reason, 60)
	default:
		return "unavailable"
	}
}

// Helpers
func gaugeBar(pct float64, width int) string {
	if width < 1 {
		width = 1
	}
	if model.IsUnknown(pct) {
		return fmt.Sprintf("[%s]   n/a", strings.Repeat(gaugeEmpty, width))
	}
	if pct < 0 {
		pct = 0
	}
	if pct > 100 {
		pct = 100
	}
	filled := int((pct / 100) * float64(width))
	if filled > width {
		filled = width
	}
	return fmt.Sprintf("[%s%s] %5.1f%%",
		strings.Repeat(gaugeFill, filled),
		strings.Repeat(gaugeEmpty, width-filled),
		pct)
}

// summary reports min/avg/max over the known samples of a series.
func summary(series []float64) string {
	var n int
	var sum, lo, hi float64
	for _, v := range series {
		if model.IsUnknown(v) {
			continue
		}
		if n == 0 || v < lo {
			lo = v
		}
		if n == 0 || v > hi {
			hi = v
		}
		sum += v
		n++
	}
	if n == 0 {
		return "no data yet"
	}
	return fmt.Sprintf("min %.0f avg %.0f max %.0f", lo, sum/float64(n), hi)
}

func truncate(s string, n int) string {
	r := []rune(s)
	if len(r) <= n {
		return s
	}
	return string(r[:n-1]) + "…"
}

// Run starts the Bubble Tea program and blocks until the user quits or the
// stream closes.
func Run(stream <-chan model.Snapshot, cancel context.CancelFunc, window int) error {
	prog := tea.NewProgram(New(stream, cancel, window), tea.WithAltScreen())
	_, err := prog.Run()
	return err
}
