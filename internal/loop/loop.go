// Package loop drives the simulation once per frame and reports block state
// to a renderer.
package loop

import (
	"context"
	"fmt"
	"math"
	"time"

	"github.com/tomz197/collide/internal/config"
	"github.com/tomz197/collide/internal/sim"
)

// LabelID identifies a text label owned by the renderer.
type LabelID int

const (
	LabelVelocityA LabelID = iota
	LabelVelocityB
	LabelMassA
	LabelMassB
)

// WidgetID identifies a toggleable widget owned by the renderer.
type WidgetID int

const (
	WidgetPlay  WidgetID = iota // Shown while paused
	WidgetPause                 // Shown while playing
)

// Renderer receives block state from the loop. Implementations draw it on
// whatever surface they own; the loop never draws.
type Renderer interface {
	UpdatePosition(id sim.BodyID, x, side float64, tint sim.Tint)
	UpdateLabel(id LabelID, text string)
	SetVisible(id WidgetID, visible bool)
	// Reposition is called every frame, playing or not, so layout can follow
	// viewport resizes.
	Reposition(worldWidth float64)
}

// Stats counts what the loop has done since it was created.
type Stats struct {
	Frames     int    // Ticks, including paused ones
	Steps      int    // Physics steps
	Collisions int    // Steps with an A/B response
	WallHits   [2]int // Reflections per body, indexed by sim.BodyID
}

// Loop is the animation loop: it owns the playing flag and forwards play,
// pause, apply and reset commands to the simulation state.
type Loop struct {
	state    *sim.State
	renderer Renderer
	playing  bool
	stats    Stats
}

// New creates a loop in the playing state and reports the initial layout.
func New(state *sim.State, renderer Renderer) *Loop {
	l := &Loop{
		state:    state,
		renderer: renderer,
		playing:  true,
	}
	l.updateWidgets()
	l.report()
	return l
}

// FrameDelta converts elapsed wall time into nominal frames, capping slow
// frames at config.MaxFrameElapsed.
func FrameDelta(elapsed time.Duration) float64 {
	if elapsed <= 0 {
		return 0
	}
	if elapsed > config.MaxFrameElapsed {
		elapsed = config.MaxFrameElapsed
	}
	return float64(elapsed) / float64(config.NominalFrame)
}

// Tick advances one frame. The simulation only steps while playing, but the
// renderer is always repositioned.
func (l *Loop) Tick(elapsed time.Duration, worldWidth float64) sim.StepResult {
	l.stats.Frames++
	l.state.Resize(worldWidth)

	var res sim.StepResult
	if l.playing && l.state.Ready() {
		res = sim.Step(l.state, FrameDelta(elapsed), worldWidth)
		l.stats.Steps++
		if res.Collided {
			l.stats.Collisions++
		}
		for i, hit := range res.WallHit {
			if hit {
				l.stats.WallHits[i]++
			}
		}
	}

	l.report()
	l.renderer.Reposition(worldWidth)
	return res
}

// Play resumes stepping.
func (l *Loop) Play() {
	l.playing = true
	l.updateWidgets()
}

// Pause stops stepping without touching the simulation state.
func (l *Loop) Pause() {
	l.playing = false
	l.updateWidgets()
}

// Toggle switches between playing and paused.
func (l *Loop) Toggle() {
	if l.playing {
		l.Pause()
	} else {
		l.Play()
	}
}

// Playing reports whether the loop is stepping.
func (l *Loop) Playing() bool {
	return l.playing
}

// Apply commits new parameters and rebuilds both blocks. Invalid parameters
// are returned as *sim.InvalidParameterError and change nothing.
func (l *Loop) Apply(p sim.Params) error {
	if err := l.state.Apply(p); err != nil {
		return err
	}
	l.report()
	return nil
}

// Reset rebuilds both blocks from the last applied parameters.
func (l *Loop) Reset() {
	l.state.Reset()
	l.report()
}

// State returns the simulation state driven by this loop.
func (l *Loop) State() *sim.State {
	return l.state
}

// Stats returns the loop counters.
func (l *Loop) Stats() Stats {
	return l.stats
}

// report pushes block placement and label text to the renderer.
func (l *Loop) report() {
	if !l.state.Ready() {
		return
	}
	a, b := l.state.Bodies()
	l.renderer.UpdatePosition(sim.BodyA, a.Position, a.Side, a.Tint)
	l.renderer.UpdatePosition(sim.BodyB, b.Position, b.Side, b.Tint)
	l.renderer.UpdateLabel(LabelVelocityA, VelocityLabel(a.Velocity))
	l.renderer.UpdateLabel(LabelVelocityB, VelocityLabel(b.Velocity))
	l.renderer.UpdateLabel(LabelMassA, MassLabel(a.Mass))
	l.renderer.UpdateLabel(LabelMassB, MassLabel(b.Mass))
}

func (l *Loop) updateWidgets() {
	l.renderer.SetVisible(WidgetPlay, !l.playing)
	l.renderer.SetVisible(WidgetPause, l.playing)
}

// VelocityLabel formats a velocity magnitude for display.
func VelocityLabel(v float64) string {
	return fmt.Sprintf("%.3f m/s", math.Abs(v))
}

// MassLabel formats a mass for display.
func MassLabel(m float64) string {
	return fmt.Sprintf("%g kg", m)
}

// Command is a change requested from outside the frame goroutine. It runs on
// the frame goroutine between ticks.
type Command func(l *Loop)

// RunOptions configures Run.
type RunOptions struct {
	Width     func() float64 // Current viewport width, read every frame
	Commands  <-chan Command // Optional
	Present   func() error   // Called after every tick; an error stops Run
	FrameTime time.Duration  // Defaults to config.TargetFrameTime
}

// Run ticks the loop at a fixed frame rate until ctx is cancelled or Present
// fails. Commands are drained before each tick.
func (l *Loop) Run(ctx context.Context, opts RunOptions) error {
	frameTime := opts.FrameTime
	if frameTime <= 0 {
		frameTime = config.TargetFrameTime
	}

	lastTime := time.Now()
	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		default:
		}

		frameStart := time.Now()
		elapsed := frameStart.Sub(lastTime)
		lastTime = frameStart

		l.drainCommands(opts.Commands)
		l.Tick(elapsed, opts.Width())

		if opts.Present != nil {
			if err := opts.Present(); err != nil {
				return err
			}
		}

		if spent := time.Since(frameStart); spent < frameTime {
			select {
			case <-ctx.Done():
				return ctx.Err()
			case <-time.After(frameTime - spent):
			}
		}
	}
}

func (l *Loop) drainCommands(cmds <-chan Command) {
	if cmds == nil {
		return
	}
	for {
		select {
		case cmd, ok := <-cmds:
			if !ok {
				return
			}
			cmd(l)
		default:
			return
		}
	}
}
