package logger

import (
	"fmt"
	"os"
	"path/filepath"
	"time"
)

const (
	// FileName is the debug log inside the log directory
	FileName = "vi-replay.log"

	// MaxFileSize triggers rotation on open
	MaxFileSize = 10 * 1024 * 1024
)

// OpenFile opens the debug log in dir for appending, rotating it when it
// has grown past MaxFileSize
func OpenFile(dir string) (*os.File, error) {
	if err := os.MkdirAll(dir, 0755); err != nil {
		return nil, fmt.Errorf("create log dir: %w", err)
	}

	path := filepath.Join(dir, FileName)
	if info, err := os.Stat(path); err == nil && info.Size() > MaxFileSize {
		rotated := filepath.Join(dir, fmt.Sprintf("vi-replay-%s.log", time.Now().Format("20060102-150405")))
		if err := os.Rename(path, rotated); err != nil {
			return nil, fmt.Errorf("rotate log: %w", err)
		}
	}

	f, err := os.OpenFile(path, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0644)
	if err != nil {
		return nil, fmt.Errorf("open log: %w", err)
	}
	return f, nil
}
