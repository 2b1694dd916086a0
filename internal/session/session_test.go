package session

import (
	"bytes"
	"context"
	"io"
	"strings"
	"testing"
	"time"

	"github.com/muesli/termenv"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/tomz197/collide/internal/config"
	"github.com/tomz197/collide/internal/control"
	"github.com/tomz197/collide/internal/draw"
	"github.com/tomz197/collide/internal/input"
	"github.com/tomz197/collide/internal/sim"
)

func fixedSize(w, h int) draw.TermSizeFunc {
	return func() (int, int, error) { return w, h, nil }
}

func newTestSession(t *testing.T, r io.Reader, opts Options) (*Session, *bytes.Buffer) {
	t.Helper()
	buf := &bytes.Buffer{}
	if opts.TermSizeFunc == nil {
		opts.TermSizeFunc = fixedSize(100, 30)
	}
	opts.Renderer = draw.NewRenderer(buf, termenv.Ascii)
	opts.FrameTime = time.Millisecond
	s, err := New(r, buf, opts)
	require.NoError(t, err)
	return s, buf
}

func TestNewUsesScenarioAndViewport(t *testing.T) {
	sc := config.DefaultScenario()
	sc.Name = "heavy"
	sc.Blocks.A.Mass = 50
	s, _ := newTestSession(t, strings.NewReader(""), Options{Scenario: sc})

	assert.NotEmpty(t, s.ID())
	assert.Equal(t, 50.0, s.state.Params().MassA)
	assert.Equal(t, 50.0, s.panel.Value(control.FieldMassA))
	assert.Equal(t, float64(100*config.CellPixels), s.state.WorldWidth())

	b := s.state.Body(sim.BodyB)
	assert.Equal(t, s.state.WorldWidth()-b.Side, b.Position)
}

func TestNewKeepsUnnamedScenario(t *testing.T) {
	sc, err := config.ParseScenario([]byte("name: \"\"\nblocks:\n  a: {mass: 50}\n"))
	require.NoError(t, err)
	require.Empty(t, sc.Name)

	s, _ := newTestSession(t, strings.NewReader(""), Options{Scenario: sc})
	assert.Equal(t, 50.0, s.state.Params().MassA)
	assert.Equal(t, 50.0, s.panel.Value(control.FieldMassA))
}

func TestNewRejectsInvalidScenario(t *testing.T) {
	sc := config.DefaultScenario()
	sc.Blocks.B.Mass = 0
	_, err := New(strings.NewReader(""), io.Discard, Options{
		TermSizeFunc: fixedSize(80, 24),
		Scenario:     sc,
	})
	require.Error(t, err)
	assert.ErrorIs(t, err, sim.ErrInvalidParameter)
}

func TestHandlePressDrivesLoopAndPanel(t *testing.T) {
	s, _ := newTestSession(t, strings.NewReader(""), Options{})

	s.handlePress(input.Press{Key: input.KeyToggle})
	assert.False(t, s.loop.Playing())

	s.handlePress(input.Press{Key: input.KeyDown})
	assert.Equal(t, control.FieldMassB, s.panel.Cursor())
	s.handlePress(input.Press{Key: input.KeyRight})
	assert.Equal(t, 8.0, s.panel.Value(control.FieldMassB))

	// Nothing reaches the simulation until ENTER.
	assert.Equal(t, 7.0, s.state.Params().MassB)
	s.handlePress(input.Press{Key: input.KeyEnter})
	assert.Equal(t, 8.0, s.state.Params().MassB)

	s.handlePress(input.Press{Key: input.KeyResetControls})
	assert.Equal(t, 7.0, s.panel.Value(control.FieldMassB))
	assert.Equal(t, 8.0, s.state.Params().MassB)

	s.handlePress(input.Press{Key: input.KeyQuit})
	assert.False(t, s.running)
}

func TestTypedInvalidValueKeepsSimulation(t *testing.T) {
	s, _ := newTestSession(t, strings.NewReader(""), Options{})

	for _, r := range "-2" {
		s.handlePress(input.Press{Key: input.KeyChar, Rune: r})
	}
	s.handlePress(input.Press{Key: input.KeyEnter})

	assert.Equal(t, 3.0, s.state.Params().MassA)
	assert.Contains(t, s.panel.Message(), "mass A")
}

func TestResetSimRestoresLayout(t *testing.T) {
	s, _ := newTestSession(t, strings.NewReader(""), Options{})

	s.loop.Tick(config.NominalFrame*10, s.term.ViewportWidth())
	require.NotZero(t, s.state.Body(sim.BodyA).Position)

	s.handlePress(input.Press{Key: input.KeyResetSim})
	assert.Zero(t, s.state.Body(sim.BodyA).Position)
}

func TestScenarioReloadApplies(t *testing.T) {
	ch := make(chan config.Scenario, 1)
	s, _ := newTestSession(t, strings.NewReader(""), Options{Scenarios: ch})

	sc := config.DefaultScenario()
	sc.Name = "reloaded"
	sc.Blocks.B.Velocity = -40
	ch <- sc
	s.processScenarios()

	assert.Equal(t, -40.0, s.state.Params().VelocityB)
	assert.Equal(t, -40.0, s.panel.Value(control.FieldVelocityB))

	close(ch)
	s.processScenarios()
	assert.Nil(t, s.opts.Scenarios)
}

func TestRunQuitsOnKey(t *testing.T) {
	s, buf := newTestSession(t, strings.NewReader("q"), Options{})

	done := make(chan error, 1)
	go func() { done <- s.Run(context.Background()) }()

	select {
	case err := <-done:
		require.NoError(t, err)
	case <-time.After(3 * time.Second):
		t.Fatal("session did not stop")
	}
	assert.Contains(t, buf.String(), "ELASTIC COLLISION")
}

func TestRunStopsOnContextCancel(t *testing.T) {
	pr, pw := io.Pipe()
	defer pw.Close()
	s, _ := newTestSession(t, pr, Options{})

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	go func() { done <- s.Run(ctx) }()

	time.Sleep(20 * time.Millisecond)
	cancel()

	select {
	case err := <-done:
		require.NoError(t, err)
	case <-time.After(3 * time.Second):
		t.Fatal("session did not stop")
	}
	assert.Positive(t, s.loop.Stats().Frames)
}

func TestUpdateScreenFollowsResize(t *testing.T) {
	w := 100
	s, _ := newTestSession(t, strings.NewReader(""), Options{
		TermSizeFunc: func() (int, int, error) { return w, 30, nil },
	})

	w = 60
	s.updateScreen()
	assert.Equal(t, float64(60*config.CellPixels), s.term.ViewportWidth())
}
