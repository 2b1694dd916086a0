package render

import (
	"bytes"
	"testing"

	"github.com/muesli/termenv"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/tomz197/collide/internal/config"
	"github.com/tomz197/collide/internal/control"
	"github.com/tomz197/collide/internal/draw"
	"github.com/tomz197/collide/internal/loop"
	"github.com/tomz197/collide/internal/sim"
)

func newTestTerminal(t *testing.T, w, h int) (*Terminal, *bytes.Buffer) {
	t.Helper()
	buf := &bytes.Buffer{}
	r := draw.NewRenderer(buf, termenv.Ascii)
	return NewTerminal(r, buf, w, h), buf
}

func TestViewportWidthFollowsColumns(t *testing.T) {
	term, _ := newTestTerminal(t, 100, 30)
	assert.Equal(t, float64(100*config.CellPixels), term.ViewportWidth())

	term.Resize(1000, 30)
	assert.Equal(t, float64(config.MaxTermWidth*config.CellPixels), term.ViewportWidth())
}

func TestResizeReportsChanges(t *testing.T) {
	term, _ := newTestTerminal(t, 100, 30)
	assert.False(t, term.Resize(100, 30))
	assert.True(t, term.Resize(120, 30))
	assert.True(t, term.Resize(120, 40))
}

func TestFrameDrawsHUDAndPanel(t *testing.T) {
	term, buf := newTestTerminal(t, 120, 30)

	state := sim.NewState()
	require.NoError(t, state.Initialize(sim.DefaultParams(), term.ViewportWidth()))
	l := loop.New(state, term)
	panel := control.New(sim.DefaultParams())

	require.NoError(t, term.Frame(panel, l.Stats()))

	out := buf.String()
	assert.Contains(t, out, "ELASTIC COLLISION")
	assert.Contains(t, out, "playing")
	assert.Contains(t, out, "15.000 m/s")
	assert.Contains(t, out, "12.000 m/s")
	assert.Contains(t, out, "[mass A: 3 kg]")
	assert.Contains(t, out, "velocity B: -12 m/s")
	assert.Contains(t, out, string(draw.BlockFull))
}

func TestFrameRewritesOnlyChangedRows(t *testing.T) {
	term, buf := newTestTerminal(t, 120, 30)

	state := sim.NewState()
	require.NoError(t, state.Initialize(sim.DefaultParams(), term.ViewportWidth()))
	l := loop.New(state, term)
	panel := control.New(sim.DefaultParams())

	require.NoError(t, term.Frame(panel, l.Stats()))
	buf.Reset()

	require.NoError(t, term.Frame(panel, l.Stats()))
	assert.NotContains(t, buf.String(), "ELASTIC COLLISION")

	l.Pause()
	require.NoError(t, term.Frame(panel, l.Stats()))
	assert.Contains(t, buf.String(), "paused")
}

func TestFrameShowsEditBufferAndErrors(t *testing.T) {
	term, buf := newTestTerminal(t, 120, 30)

	state := sim.NewState()
	require.NoError(t, state.Initialize(sim.DefaultParams(), term.ViewportWidth()))
	l := loop.New(state, term)
	panel := control.New(sim.DefaultParams())

	panel.Type('0')
	require.NoError(t, term.Frame(panel, l.Stats()))
	assert.Contains(t, buf.String(), "[mass A: 0_ kg]")

	require.Error(t, panel.Apply(l))
	require.NoError(t, term.Frame(panel, l.Stats()))
	assert.Contains(t, buf.String(), "must be greater than zero")
}

func TestMessageForcesFullRedraw(t *testing.T) {
	term, buf := newTestTerminal(t, 80, 24)
	panel := control.New(sim.DefaultParams())

	require.NoError(t, term.Frame(panel, loop.Stats{}))
	buf.Reset()

	require.NoError(t, term.Message("INACTIVITY WARNING"))
	assert.Contains(t, buf.String(), "INACTIVITY WARNING")

	buf.Reset()
	require.NoError(t, term.Frame(panel, loop.Stats{}))
	assert.Contains(t, buf.String(), "ELASTIC COLLISION")
}

func TestTintColor(t *testing.T) {
	assert.Equal(t, "#00ff00", string(tintColor(sim.TintA)))
	assert.Equal(t, "#0000ff", string(tintColor(sim.TintB)))
}
