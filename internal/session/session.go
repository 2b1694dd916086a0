// Package session runs one interactive terminal simulation: input, control
// panel, animation loop and rendering, for a local tty or an SSH channel.
package session

import (
	"context"
	"errors"
	"fmt"
	"io"
	"time"

	"github.com/charmbracelet/lipgloss"
	"github.com/charmbracelet/log"
	"github.com/google/uuid"
	"github.com/muesli/termenv"
	"github.com/tomz197/collide/internal/config"
	"github.com/tomz197/collide/internal/control"
	"github.com/tomz197/collide/internal/draw"
	"github.com/tomz197/collide/internal/input"
	"github.com/tomz197/collide/internal/loop"
	"github.com/tomz197/collide/internal/render"
	"github.com/tomz197/collide/internal/sim"
)

// Options configures a session.
type Options struct {
	TermSizeFunc draw.TermSizeFunc
	Renderer     *lipgloss.Renderer     // Defaults to an ANSI renderer on the output writer
	Logger       *log.Logger            // Defaults to a discarding logger
	User         string                 // Shown in logs
	Scenario     config.Scenario        // Initial parameters; zero value means defaults
	Scenarios    <-chan config.Scenario // Live scenario reloads, optional
	Inactivity   bool                   // Warn and disconnect idle users
	FrameTime    time.Duration          // Defaults to config.TargetFrameTime
}

// Session is a single user's simulation.
type Session struct {
	id     string
	opts   Options
	logger *log.Logger

	state *sim.State
	loop  *loop.Loop
	panel *control.Surface
	term  *render.Terminal

	stream    *input.Stream
	writer    io.Writer
	lastInput time.Time
	inactive  bool
	running   bool
}

// New creates a session reading keys from r and drawing to w.
func New(r io.Reader, w io.Writer, opts Options) (*Session, error) {
	if opts.TermSizeFunc == nil {
		opts.TermSizeFunc = draw.DefaultTermSizeFunc
	}
	if opts.Renderer == nil {
		opts.Renderer = draw.NewRenderer(w, termenv.ANSI)
	}
	if opts.Scenario == (config.Scenario{}) {
		opts.Scenario = config.DefaultScenario()
	}
	if opts.FrameTime <= 0 {
		opts.FrameTime = config.TargetFrameTime
	}

	id := uuid.NewString()
	logger := opts.Logger
	if logger == nil {
		logger = log.New(io.Discard)
	}
	logger = logger.With("session", id)

	termWidth, termHeight, err := opts.TermSizeFunc()
	if err != nil {
		return nil, fmt.Errorf("session: terminal size: %w", err)
	}
	term := render.NewTerminal(opts.Renderer, w, termWidth, termHeight)

	params := opts.Scenario.Params()
	state := sim.NewState()
	if err := state.Initialize(params, term.ViewportWidth()); err != nil {
		return nil, fmt.Errorf("session: scenario %q: %w", opts.Scenario.Name, err)
	}

	return &Session{
		id:        id,
		opts:      opts,
		logger:    logger,
		state:     state,
		loop:      loop.New(state, term),
		panel:     control.New(params),
		term:      term,
		stream:    input.StartStream(r),
		writer:    w,
		lastInput: time.Now(),
		running:   true,
	}, nil
}

// ID returns the session's unique id.
func (s *Session) ID() string {
	return s.id
}

// Run runs the frame loop until the user quits, input ends, the user is
// idle for too long or ctx is cancelled.
func (s *Session) Run(ctx context.Context) error {
	draw.HideCursor(s.writer)
	defer draw.ShowCursor(s.writer)
	draw.ClearScreen(s.writer)

	s.logger.Info("session started", "user", s.opts.User, "scenario", s.opts.Scenario.Name)

	lastTime := time.Now()
	for s.running {
		select {
		case <-ctx.Done():
			s.running = false
			continue
		default:
		}

		frameStart := time.Now()
		elapsed := frameStart.Sub(lastTime)
		lastTime = frameStart

		s.processInput()
		s.processScenarios()
		s.updateScreen()

		if s.inactive {
			if err := s.drawInactivity(); err != nil {
				return err
			}
		} else {
			s.loop.Tick(elapsed, s.term.ViewportWidth())
			if err := s.term.Frame(s.panel, s.loop.Stats()); err != nil {
				return err
			}
		}

		if spent := time.Since(frameStart); spent < s.opts.FrameTime {
			time.Sleep(s.opts.FrameTime - spent)
		}
	}

	draw.ClearScreen(s.writer)
	stats := s.loop.Stats()
	s.logger.Info("session ended", "user", s.opts.User, "frames", stats.Frames,
		"steps", stats.Steps, "collisions", stats.Collisions,
		"momentum", s.state.Momentum(), "energy", s.state.KineticEnergy())
	return nil
}

// processInput drains pending keys and applies them.
func (s *Session) processInput() {
	in := input.ReadInput(s.stream)
	if in.Closed {
		s.running = false
	}

	if len(in.Raw) > 0 {
		s.lastInput = time.Now()
		// Any key dismisses the warning without acting.
		if s.inactive {
			s.inactive = false
			return
		}
	} else if s.opts.Inactivity {
		idle := time.Since(s.lastInput).Seconds()
		switch {
		case idle > config.InactivityDisconnectUser:
			s.logger.Info("disconnecting idle user", "user", s.opts.User)
			s.running = false
		case idle > config.InactivityWarnUser:
			s.inactive = true
		}
	}

	for _, p := range in.Presses {
		s.handlePress(p)
	}
}

// handlePress maps one key press to a loop or panel command.
func (s *Session) handlePress(p input.Press) {
	switch p.Key {
	case input.KeyQuit:
		s.running = false
	case input.KeyToggle:
		s.loop.Toggle()
	case input.KeyUp:
		s.panel.Prev()
	case input.KeyDown:
		s.panel.Next()
	case input.KeyLeft:
		s.panel.Decrement()
	case input.KeyRight:
		s.panel.Increment()
	case input.KeyChar:
		s.panel.Type(p.Rune)
	case input.KeyBackspace:
		s.panel.Backspace()
	case input.KeyEnter:
		s.apply("panel")
	case input.KeyResetSim:
		s.loop.Reset()
	case input.KeyResetControls:
		s.panel.Reset()
	}
}

// apply pushes the panel values into the loop and logs the outcome.
func (s *Session) apply(source string) {
	err := s.panel.Apply(s.loop)
	var perr *sim.InvalidParameterError
	switch {
	case err == nil:
		s.logger.Debug("parameters applied", "source", source, "params", s.state.Params())
	case errors.As(err, &perr):
		s.logger.Debug("parameters rejected", "source", source, "field", perr.Field, "value", perr.Value)
	default:
		s.logger.Debug("parameters rejected", "source", source, "err", err)
	}
}

// processScenarios applies scenario reloads, replacing the panel values.
func (s *Session) processScenarios() {
	if s.opts.Scenarios == nil {
		return
	}
	for {
		select {
		case sc, ok := <-s.opts.Scenarios:
			if !ok {
				s.opts.Scenarios = nil
				return
			}
			s.panel.Load(sc.Params())
			s.apply("scenario " + sc.Name)
		default:
			return
		}
	}
}

// updateScreen follows terminal resizes.
func (s *Session) updateScreen() {
	termWidth, termHeight, err := s.opts.TermSizeFunc()
	if err != nil {
		return
	}
	if s.term.Resize(termWidth, termHeight) {
		s.logger.Debug("terminal resized", "width", termWidth, "height", termHeight)
	}
}

func (s *Session) drawInactivity() error {
	remaining := config.InactivityDisconnectUser - int(time.Since(s.lastInput).Seconds())
	return s.term.Message(
		"INACTIVITY WARNING",
		"",
		fmt.Sprintf("You will be disconnected in %d seconds.", max(remaining, 0)),
		"Press any key to continue",
	)
}
