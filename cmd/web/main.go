package main

import (
	"context"
	"errors"
	"net"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/tomz197/collide/internal/config"
	"github.com/tomz197/collide/internal/logging"
	"github.com/tomz197/collide/internal/web"
)

const (
	defaultHost = "0.0.0.0"
	defaultPort = "8080"
)

func main() {
	host := config.GetEnv("WEB_HOST", defaultHost)
	port := config.GetEnv("WEB_PORT", defaultPort)
	frameTime := config.FrameTimeFromEnv()
	logger := logging.New(os.Stderr, config.GetEnv("COLLIDE_LOG_LEVEL", "info"))

	scenario := config.DefaultScenario()
	if path := config.GetEnv("COLLIDE_SCENARIO", ""); path != "" {
		var err error
		if scenario, err = config.LoadScenario(path); err != nil {
			logger.Fatal("scenario error", "path", path, "err", err)
		}
	}

	addr := net.JoinHostPort(host, port)
	srv := &http.Server{
		Addr: addr,
		Handler: web.NewHandler(web.Options{
			Logger:    logger,
			Scenario:  scenario,
			FrameTime: frameTime,
		}),
		ReadHeaderTimeout: 5 * time.Second,
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	go func() {
		logger.Info("starting web server", "addr", "http://"+addr, "scenario", scenario.Name)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Fatal("server error", "err", err)
		}
	}()

	<-ctx.Done()
	logger.Info("shutting down server")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		logger.Error("shutdown error", "err", err)
	}
}
