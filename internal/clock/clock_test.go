package clock

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var epoch = time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)

func TestManualTickerFiresOnDeadline(t *testing.T) {
	m := NewManual(epoch)
	tk := m.NewTicker(time.Second)

	m.Advance(500 * time.Millisecond)
	select {
	case <-tk.C():
		t.Fatal("ticker fired early")
	default:
	}

	m.Advance(500 * time.Millisecond)
	select {
	case ts := <-tk.C():
		assert.Equal(t, epoch.Add(time.Second), ts)
	default:
		t.Fatal("ticker did not fire")
	}
}

func TestManualTickerDropsWhenFull(t *testing.T) {
	m := NewManual(epoch)
	tk := m.NewTicker(time.Second)

	m.Advance(5 * time.Second)
	ts := <-tk.C()
	assert.Equal(t, epoch.Add(time.Second), ts)
	select {
	case <-tk.C():
		t.Fatal("expected dropped ticks")
	default:
	}

	m.Advance(time.Second)
	ts = <-tk.C()
	assert.Equal(t, epoch.Add(6*time.Second), ts)
}

func TestManualStop(t *testing.T) {
	m := NewManual(epoch)
	tk := m.NewTicker(time.Second)
	require.Equal(t, 1, m.Tickers())

	tk.Stop()
	assert.Equal(t, 0, m.Tickers())

	m.Advance(2 * time.Second)
	select {
	case <-tk.C():
		t.Fatal("stopped ticker fired")
	default:
	}
}

func TestManualNow(t *testing.T) {
	m := NewManual(epoch)
	m.Advance(3 * time.Minute)
	assert.Equal(t, epoch.Add(3*time.Minute), m.Now())
}

func TestRealClock(t *testing.T) {
	c := Real()
	tk := c.NewTicker(time.Millisecond)
	defer tk.Stop()
	select {
	case <-tk.C():
	case <-time.After(time.Second):
		t.Fatal("real ticker did not fire")
	}
}
