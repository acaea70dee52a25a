package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"log/slog"
	"net/http"
	"os/signal"
	"syscall"
	"time"

	"github.com/collegegpt/ragserver/config"
	"github.com/collegegpt/ragserver/pkg/otel"
	"github.com/collegegpt/ragserver/server"

	"github.com/joho/godotenv"
	"github.com/sirupsen/logrus"
)

func main() {
	portFlag := flag.Int("port", 8080, "server port")
	addressFlag := flag.String("address", "", "server address")
	configFlag := flag.String("config", "config.yaml", "configuration path")
	verboseFlag := flag.Bool("verbose", false, "debug logging")

	flag.Parse()

	if *verboseFlag {
		logrus.SetLevel(logrus.DebugLevel)
	}

	// Credentials referenced from the config file live in the environment.
	if err := godotenv.Load(); err != nil {
		logrus.Debug("no .env file loaded")
	}

	cfg, err := config.Parse(*configFlag)

	if err != nil {
		logrus.Fatalf("failed to parse config: %v", err)
	}

	// Flags override the config file only when set on the command line.
	flag.Visit(func(f *flag.Flag) {
		switch f.Name {
		case "port", "address":
			cfg.Address = fmt.Sprintf("%s:%d", *addressFlag, *portFlag)
		}
	})

	if err := otel.Setup("ragserver", "1.0.0"); err != nil {
		logrus.Warnf("failed to setup OpenTelemetry: %v", err)
	} else {
		// slog users in the process log through the OTLP bridge.
		slog.SetDefault(otel.Logger("ragserver"))
	}

	s, err := server.New(cfg)

	if err != nil {
		logrus.Fatalf("failed to create server: %v", err)
	}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	// Bring the pipeline up against the existing collection. An unreachable
	// store is not fatal: the server starts and reports unavailable until a
	// rebuild succeeds.
	initCtx, cancel := context.WithTimeout(ctx, 30*time.Second)

	if err := cfg.Pipeline().Initialize(initCtx); err != nil {
		logrus.Warnf("pipeline not serving yet: %v", err)
	}

	cancel()

	go func() {
		logrus.Infof("server listening on %s", cfg.Address)

		if err := s.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logrus.Fatalf("server failed: %v", err)
		}
	}()

	<-ctx.Done()

	stop()
	logrus.Info("shutting down server")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	if err := s.Shutdown(shutdownCtx); err != nil {
		logrus.Warnf("server shutdown failed: %v", err)
	}
}
