package constants

import "time"

// Audio Engine
const (
	// AudioSampleRate is the speaker sample rate in Hz
	AudioSampleRate = 44100

	// AudioBufferDuration is the speaker buffer length
	AudioBufferDuration = 100 * time.Millisecond

	// MinSoundGap is the minimum gap between two fire cues
	MinSoundGap = 50 * time.Millisecond
)

// Fire Cue
const (
	FireSoundFrequency = 880.0
	FireSoundDuration  = 40 * time.Millisecond
	FireSoundVolume    = -1.5
)

// End-of-replay Cue
const (
	EndSoundFrequency = 440.0
	EndSoundDuration  = 250 * time.Millisecond
	EndSoundVolume    = -2.0
)
