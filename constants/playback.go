package constants

import "time"

// Playback Clock
const (
	// DefaultPlaybackPeriod is the interval between playback ticks
	DefaultPlaybackPeriod = 10 * time.Millisecond

	// MinPlaybackPeriod bounds speed-up from the keyboard
	MinPlaybackPeriod = 1 * time.Millisecond

	// MaxPlaybackPeriod bounds slow-down from the keyboard
	MaxPlaybackPeriod = 1 * time.Second
)

// Seeking
const (
	// StepSmall is the tick delta of a single step key
	StepSmall = 1

	// StepLarge is the tick delta of a shifted step key
	StepLarge = 10
)
