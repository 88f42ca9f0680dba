package main

import (
	"io"
	"log"
	"os"

	"github.com/lixenwraith/vi-replay/logger"
)

// setupLogging routes logs to a file in debug mode; the terminal owns stdout
// otherwise, so everything is discarded
func setupLogging(debug bool, dir, level, format string) *os.File {
	if !debug {
		log.SetOutput(io.Discard)
		logger.Discard()
		return nil
	}

	f, err := logger.OpenFile(dir)
	if err != nil {
		log.SetOutput(io.Discard)
		logger.Discard()
		return nil
	}
	log.SetOutput(f)
	logger.Init(level, format, f)
	logger.Log.Info("debug logging enabled")
	return f
}
