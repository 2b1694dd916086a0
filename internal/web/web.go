// Package web serves the simulation to browsers: a canvas page plus a
// websocket carrying commands in and frames out. Every connection gets its
// own simulation.
package web

import (
	"context"
	_ "embed"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"math"
	"net/http"
	"time"

	"github.com/charmbracelet/log"
	"github.com/google/uuid"
	"github.com/gorilla/websocket"
	"github.com/tomz197/collide/internal/config"
	"github.com/tomz197/collide/internal/loop"
	"github.com/tomz197/collide/internal/sim"
	"golang.org/x/sync/errgroup"
)

//go:embed index.html
var indexHTML []byte

const (
	writeWait   = 2 * time.Second
	commandBuf  = 16
	maxReadSize = 4096
)

// errClientGone ends a session when the browser goes away.
var errClientGone = errors.New("web: client disconnected")

// Options configures the handler.
type Options struct {
	Logger    *log.Logger     // Defaults to a discarding logger
	Scenario  config.Scenario // Initial parameters; zero value means defaults
	FrameTime time.Duration   // Defaults to config.TargetFrameTime
}

// Handler serves the page at / and the simulation socket at /ws.
type Handler struct {
	opts     Options
	logger   *log.Logger
	mux      *http.ServeMux
	upgrader websocket.Upgrader
}

// NewHandler creates a Handler.
func NewHandler(opts Options) *Handler {
	if opts.Scenario == (config.Scenario{}) {
		opts.Scenario = config.DefaultScenario()
	}
	logger := opts.Logger
	if logger == nil {
		logger = log.New(io.Discard)
	}
	h := &Handler{
		opts:   opts,
		logger: logger,
		mux:    http.NewServeMux(),
		upgrader: websocket.Upgrader{
			ReadBufferSize:  1024,
			WriteBufferSize: 4096,
		},
	}
	h.mux.HandleFunc("/", h.serveIndex)
	h.mux.HandleFunc("/ws", h.serveSocket)
	return h
}

func (h *Handler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	h.mux.ServeHTTP(w, r)
}

func (h *Handler) serveIndex(w http.ResponseWriter, r *http.Request) {
	if r.URL.Path != "/" {
		http.NotFound(w, r)
		return
	}
	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	_, _ = w.Write(indexHTML)
}

func (h *Handler) serveSocket(w http.ResponseWriter, r *http.Request) {
	conn, err := h.upgrader.Upgrade(w, r, nil)
	if err != nil {
		h.logger.Warn("websocket upgrade failed", "remote", r.RemoteAddr, "err", err)
		return
	}
	defer conn.Close()

	s, err := newSession(conn, h.opts, h.logger)
	if err != nil {
		h.logger.Error("session setup failed", "err", err)
		return
	}
	if err := s.run(r.Context()); err != nil {
		s.logger.Warn("session error", "err", err)
	}
}

// session is one browser connection. The loop, the renderer and all writes
// to conn belong to the frame goroutine.
type session struct {
	id       string
	conn     *websocket.Conn
	logger   *log.Logger
	loop     *loop.Loop
	renderer *frameRenderer
	width    float64
	opts     Options
	writeErr error
}

func newSession(conn *websocket.Conn, opts Options, logger *log.Logger) (*session, error) {
	id := uuid.NewString()
	state := sim.NewState()
	if err := state.Initialize(opts.Scenario.Params(), config.WorldWidth); err != nil {
		return nil, fmt.Errorf("web: scenario %q: %w", opts.Scenario.Name, err)
	}
	r := &frameRenderer{frame: Frame{Type: MsgFrame, Session: id}}
	return &session{
		id:       id,
		conn:     conn,
		logger:   logger.With("session", id),
		loop:     loop.New(state, r),
		renderer: r,
		width:    config.WorldWidth,
		opts:     opts,
	}, nil
}

// run pumps commands from the socket into the loop until either side stops.
func (s *session) run(ctx context.Context) error {
	s.logger.Info("browser session started", "remote", s.conn.RemoteAddr().String())
	s.conn.SetReadLimit(maxReadSize)

	cmds := make(chan loop.Command, commandBuf)
	g, ctx := errgroup.WithContext(ctx)

	g.Go(func() error {
		return s.readCommands(ctx, cmds)
	})
	g.Go(func() error {
		return s.loop.Run(ctx, loop.RunOptions{
			Width:     func() float64 { return s.width },
			Commands:  cmds,
			Present:   s.present,
			FrameTime: s.opts.FrameTime,
		})
	})
	// Unblocks the reader once the frame goroutine stops.
	go func() {
		<-ctx.Done()
		_ = s.conn.Close()
	}()

	err := g.Wait()
	stats := s.loop.Stats()
	state := s.loop.State()
	s.logger.Info("browser session ended", "frames", stats.Frames, "collisions", stats.Collisions,
		"momentum", state.Momentum(), "energy", state.KineticEnergy())
	if errors.Is(err, errClientGone) || errors.Is(err, context.Canceled) {
		return nil
	}
	return err
}

func (s *session) readCommands(ctx context.Context, cmds chan<- loop.Command) error {
	for {
		_, data, err := s.conn.ReadMessage()
		if err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseNormalClosure) {
				s.logger.Debug("read failed", "err", err)
			}
			return errClientGone
		}
		select {
		case cmds <- s.decode(data):
		case <-ctx.Done():
			return nil
		}
	}
}

// decode parses one browser message. A malformed message becomes an error
// reply; the connection stays open.
func (s *session) decode(data []byte) loop.Command {
	var msg Message
	if err := json.Unmarshal(data, &msg); err != nil {
		s.logger.Debug("malformed message", "err", err)
		return func(*loop.Loop) {
			s.sendError(fmt.Errorf("malformed message: %w", err))
		}
	}
	return s.command(msg)
}

// command turns a browser message into a loop command.
func (s *session) command(msg Message) loop.Command {
	switch msg.Type {
	case MsgPlay:
		return (*loop.Loop).Play
	case MsgPause:
		return (*loop.Loop).Pause
	case MsgReset:
		return (*loop.Loop).Reset
	case MsgApply:
		return func(l *loop.Loop) {
			if msg.Params == nil {
				s.sendError(errors.New("apply needs params"))
				return
			}
			if err := l.Apply(*msg.Params); err != nil {
				s.sendError(err)
				return
			}
			s.logger.Debug("parameters applied", "params", *msg.Params)
		}
	case MsgResize:
		return func(*loop.Loop) {
			if msg.Width > 0 && !math.IsInf(msg.Width, 0) {
				s.width = msg.Width
			}
		}
	default:
		return func(*loop.Loop) {
			s.sendError(fmt.Errorf("unknown message type %q", msg.Type))
		}
	}
}

func (s *session) present() error {
	if s.writeErr != nil {
		return s.writeErr
	}
	state := s.loop.State()
	s.renderer.frame.Collisions = s.loop.Stats().Collisions
	s.renderer.frame.Momentum = state.Momentum()
	s.renderer.frame.Energy = state.KineticEnergy()
	return s.write(s.renderer.frame)
}

func (s *session) sendError(err error) {
	msg := ErrorMessage{Type: MsgError, Message: err.Error()}
	var perr *sim.InvalidParameterError
	if errors.As(err, &perr) {
		msg.Field = perr.Field
	}
	if werr := s.write(msg); werr != nil && s.writeErr == nil {
		s.writeErr = werr
	}
}

func (s *session) write(v any) error {
	_ = s.conn.SetWriteDeadline(time.Now().Add(writeWait))
	if err := s.conn.WriteJSON(v); err != nil {
		return errClientGone
	}
	return nil
}
