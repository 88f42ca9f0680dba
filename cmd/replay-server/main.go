package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/lixenwraith/vi-replay/config"
	"github.com/lixenwraith/vi-replay/logger"
	"github.com/lixenwraith/vi-replay/server"
)

var (
	configFlag = flag.String("config", "", "YAML config file")
	envFlag    = flag.String("env", "", "dotenv file applied before the environment")
	listenFlag = flag.String("listen", "", "listen address, overrides config")
	dirFlag    = flag.String("dir", "", "replay directory, overrides config")
)

func main() {
	flag.Parse()

	cfg, err := config.Load(*configFlag, *envFlag)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Config: %v\n", err)
		os.Exit(1)
	}
	if *listenFlag != "" {
		cfg.Listen = *listenFlag
	}
	if *dirFlag != "" {
		cfg.ReplayDir = *dirFlag
	}
	logger.Init(cfg.LogLevel, cfg.LogFormat, os.Stdout)

	palette, err := cfg.ColorPalette()
	if err != nil {
		logger.Log.WithError(err).Fatal("invalid palette")
	}

	srv := &http.Server{
		Addr: cfg.Listen,
		Handler: server.New(server.Config{
			ReplayDir: cfg.ReplayDir,
			Period:    cfg.PlaybackPeriod(),
			Palette:   palette,
		}),
		ReadHeaderTimeout: 10 * time.Second,
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	go func() {
		<-ctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		srv.Shutdown(shutdownCtx)
	}()

	logger.Log.WithField("addr", cfg.Listen).WithField("dir", cfg.ReplayDir).Info("replay server listening")
	if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		logger.Log.WithError(err).Fatal("server failed")
	}
	logger.Log.Info("replay server stopped")
}
