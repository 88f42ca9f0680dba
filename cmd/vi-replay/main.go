package main

import (
	"context"
	"flag"
	"fmt"
	"os"
	"runtime/debug"

	"github.com/gdamore/tcell/v2"

	"github.com/lixenwraith/vi-replay/audio"
	"github.com/lixenwraith/vi-replay/config"
	"github.com/lixenwraith/vi-replay/logger"
)

var (
	configFlag = flag.String("config", "", "YAML config file")
	envFlag    = flag.String("env", "", "dotenv file applied before the environment")
	debugFlag  = flag.Bool("debug", false, "write logs to the log directory")
	periodFlag = flag.Duration("period", 0, "playback clock period, overrides config")
	muteFlag   = flag.Bool("mute", false, "disable audio cues")
)

func main() {
	var screen tcell.Screen

	// Panic Recovery: restore the terminal before printing the stack
	defer func() {
		if r := recover(); r != nil {
			if screen != nil {
				screen.Fini()
			}
			fmt.Fprintf(os.Stderr, "\n\x1b[31mVI-REPLAY CRASHED: %v\x1b[0m\n", r)
			fmt.Fprintf(os.Stderr, "Stack Trace:\n%s\n", debug.Stack())
			os.Exit(1)
		}
	}()

	flag.Usage = func() {
		fmt.Fprintf(os.Stderr, "Usage: %s [flags] <replay file | URL | ->\n", os.Args[0])
		flag.PrintDefaults()
	}
	flag.Parse()
	if flag.NArg() != 1 {
		flag.Usage()
		os.Exit(2)
	}

	cfg, err := config.Load(*configFlag, *envFlag)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Config: %v\n", err)
		os.Exit(1)
	}
	if *debugFlag {
		cfg.Debug = true
	}
	if *periodFlag > 0 {
		cfg.Period = *periodFlag
	}
	if *muteFlag {
		cfg.Audio = false
	}
	palette, err := cfg.ColorPalette()
	if err != nil {
		fmt.Fprintf(os.Stderr, "Config: %v\n", err)
		os.Exit(1)
	}

	logFile := setupLogging(cfg.Debug, cfg.LogDir, cfg.LogLevel, cfg.LogFormat)
	if logFile != nil {
		defer logFile.Close()
	}

	screen, err = tcell.NewScreen()
	if err != nil {
		fmt.Fprintf(os.Stderr, "Failed to create screen: %v\n", err)
		os.Exit(1)
	}
	if err := screen.Init(); err != nil {
		fmt.Fprintf(os.Stderr, "Failed to initialize screen: %v\n", err)
		os.Exit(1)
	}
	defer screen.Fini()

	var cue *audio.Cue
	if cfg.Audio {
		cue = audio.NewCue()
		if err := cue.Initialize(); err != nil {
			logger.Log.WithError(err).Warn("audio initialization failed, continuing without audio")
		}
		defer cue.Cleanup()
	}

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	p := newPlayer(ctx, screen, playerConfig{
		Source:  flag.Arg(0),
		Period:  cfg.PlaybackPeriod(),
		Palette: palette,
		Cue:     cue,
	})
	defer p.close()
	p.run()
}
