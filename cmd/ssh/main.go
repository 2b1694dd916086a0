package main

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"net"
	"os"
	"os/signal"
	"sync"
	"syscall"
	"time"

	"github.com/charmbracelet/log"
	"github.com/charmbracelet/ssh"
	"github.com/charmbracelet/wish"
	"github.com/charmbracelet/wish/activeterm"
	wishlog "github.com/charmbracelet/wish/logging"
	"github.com/tomz197/collide/internal/config"
	"github.com/tomz197/collide/internal/draw"
	"github.com/tomz197/collide/internal/logging"
	"github.com/tomz197/collide/internal/session"
)

const (
	defaultHost        = "::"
	defaultPort        = "2222"
	defaultHostKeyPath = "/app/keys/host_key"
)

func main() {
	host := config.GetEnv("SSH_HOST", defaultHost)
	port := config.GetEnv("SSH_PORT", defaultPort)
	hostKeyPath := config.GetEnv("SSH_HOST_KEY", defaultHostKeyPath)
	grace := config.GetEnvDuration("SSH_SHUTDOWN_GRACE", 5*time.Second)
	logger := logging.New(os.Stderr, config.GetEnv("COLLIDE_LOG_LEVEL", "info"))

	scenario := config.DefaultScenario()
	if path := config.GetEnv("COLLIDE_SCENARIO", ""); path != "" {
		var err error
		if scenario, err = config.LoadScenario(path); err != nil {
			logger.Fatal("scenario error", "path", path, "err", err)
		}
	}
	logger.Info("ssh config", "host", host, "port", port, "hostKeyPath", hostKeyPath, "scenario", scenario.Name)

	// Cancelled on shutdown so running sessions end their frame loops.
	sessionsCtx, stopSessions := context.WithCancel(context.Background())
	var sessions sync.WaitGroup

	opts := []ssh.Option{
		wish.WithAddress(net.JoinHostPort(host, port)),
		wish.WithMiddleware(
			simMiddleware(sessionsCtx, &sessions, logger, scenario),
			activeterm.Middleware(),
			wishlog.StructuredMiddlewareWithLogger(logger, log.InfoLevel),
		),
		// Set TCP_NODELAY to reduce latency for key presses
		ssh.WrapConn(func(ctx ssh.Context, conn net.Conn) net.Conn {
			if tcpConn, ok := conn.(*net.TCPConn); ok {
				_ = tcpConn.SetNoDelay(true)
			}
			return conn
		}),
	}

	if hostKeyPath != "" {
		opts = append(opts, wish.WithHostKeyPath(hostKeyPath))
	}

	s, err := wish.NewServer(opts...)
	if err != nil {
		logger.Fatal("failed to create server", "err", err)
	}

	done := make(chan os.Signal, 1)
	signal.Notify(done, os.Interrupt, syscall.SIGINT, syscall.SIGTERM)

	logger.Info("starting ssh server", "addr", net.JoinHostPort(host, port))
	go func() {
		if err := s.ListenAndServe(); err != nil && !errors.Is(err, ssh.ErrServerClosed) {
			logger.Fatal("server error", "err", err)
		}
	}()

	<-done
	logger.Info("shutting down server")

	stopSessions()
	waitTimeout(&sessions, grace)

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	if err := s.Shutdown(ctx); err != nil {
		logger.Fatal("shutdown error", "err", err)
	}
}

// simMiddleware runs one independent simulation per SSH session.
func simMiddleware(root context.Context, wg *sync.WaitGroup, logger *log.Logger, scenario config.Scenario) wish.Middleware {
	return func(next ssh.Handler) ssh.Handler {
		return func(sess ssh.Session) {
			pty, winCh, ok := sess.Pty()
			if !ok {
				fmt.Fprintln(sess, "Error: PTY required. Please connect with: ssh -t user@host")
				return
			}
			wg.Add(1)
			defer wg.Done()

			logger.Info("new session", "user", sess.User(), "term", pty.Term,
				"width", pty.Window.Width, "height", pty.Window.Height)

			// Create a terminal size tracker that updates on window changes
			sizeTracker := newSizeTracker(pty.Window.Width, pty.Window.Height)
			go func() {
				for win := range winCh {
					sizeTracker.update(win.Width, win.Height)
				}
			}()

			ctx, cancel := context.WithCancel(sess.Context())
			defer cancel()
			stop := context.AfterFunc(root, cancel)
			defer stop()

			simSession, err := session.New(bufio.NewReader(sess), sess, session.Options{
				TermSizeFunc: sizeTracker.getSize,
				Renderer:     draw.NewRenderer(sess, draw.ProfileForTerm(pty.Term)),
				Logger:       logger,
				User:         sess.User(),
				Scenario:     scenario,
				Inactivity:   true,
				FrameTime:    config.FrameTimeFromEnv(),
			})
			if err != nil {
				logger.Error("session setup failed", "user", sess.User(), "err", err)
				return
			}
			if err := simSession.Run(ctx); err != nil {
				logger.Error("session error", "user", sess.User(), "err", err)
			}
			next(sess)
		}
	}
}

// waitTimeout waits for wg or gives up after d.
func waitTimeout(wg *sync.WaitGroup, d time.Duration) {
	ch := make(chan struct{})
	go func() {
		wg.Wait()
		close(ch)
	}()
	select {
	case <-ch:
	case <-time.After(d):
	}
}
