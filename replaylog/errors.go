package replaylog

import (
	"errors"
	"fmt"
)

var (
	// ErrMalformedLog matches every MalformedLogError via errors.Is
	ErrMalformedLog = errors.New("malformed replay log")

	// ErrUnsupportedFormat marks sources in a recognized but unsupported encoding
	ErrUnsupportedFormat = errors.New("unsupported replay log format")
)

// MalformedLogError reports a log that cannot be loaded at all
// Line is 1-based, 0 when the failure is not tied to a line
type MalformedLogError struct {
	Line   int
	Reason string
	Err    error
}

func (e *MalformedLogError) Error() string {
	msg := "malformed replay log"
	if e.Line > 0 {
		msg = fmt.Sprintf("%s: line %d", msg, e.Line)
	}
	if e.Reason != "" {
		msg += ": " + e.Reason
	}
	if e.Err != nil {
		msg += ": " + e.Err.Error()
	}
	return msg
}

func (e *MalformedLogError) Unwrap() error {
	return e.Err
}

func (e *MalformedLogError) Is(target error) bool {
	return target == ErrMalformedLog
}

func malformed(line int, reason string, err error) *MalformedLogError {
	return &MalformedLogError{Line: line, Reason: reason, Err: err}
}
