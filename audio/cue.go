package audio

import (
	"sync"
	"time"

	"github.com/gopxl/beep"
	"github.com/gopxl/beep/speaker"

	"github.com/lixenwraith/vi-replay/constants"
	"github.com/lixenwraith/vi-replay/entity"
	"github.com/lixenwraith/vi-replay/timeline"
)

// Cue plays short tones for replay events
// All methods are no-ops until Initialize succeeds
type Cue struct {
	mu          sync.Mutex
	mixer       *beep.Mixer
	rate        beep.SampleRate
	initialized bool
	lastFire    time.Time
	now         func() time.Time
}

// NewCue creates an uninitialized cue player
func NewCue() *Cue {
	return &Cue{
		mixer: &beep.Mixer{},
		rate:  beep.SampleRate(constants.AudioSampleRate),
		now:   time.Now,
	}
}

// Initialize opens the speaker; callers continue silently on error
func (c *Cue) Initialize() error {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.initialized {
		return nil
	}
	if err := speaker.Init(c.rate, c.rate.N(constants.AudioBufferDuration)); err != nil {
		return err
	}
	speaker.Play(c.mixer)
	c.initialized = true
	return nil
}

// Cleanup silences pending cues
func (c *Cue) Cleanup() {
	c.mu.Lock()
	defer c.mu.Unlock()

	if !c.initialized {
		return
	}
	speaker.Lock()
	c.mixer.Clear()
	speaker.Unlock()
	speaker.Close()
	c.initialized = false
}

// PlayFire plays the weapon cue, at most once per MinSoundGap
func (c *Cue) PlayFire() bool {
	c.mu.Lock()
	defer c.mu.Unlock()

	if !c.initialized {
		return false
	}
	now := c.now()
	if !c.lastFire.IsZero() && now.Sub(c.lastFire) < constants.MinSoundGap {
		return false
	}
	c.lastFire = now
	c.add(tone(constants.FireSoundFrequency, constants.FireSoundDuration, WaveSquare, constants.FireSoundVolume, c.rate))
	return true
}

// PlayEnd plays the end-of-replay cue
func (c *Cue) PlayEnd() {
	c.mu.Lock()
	defer c.mu.Unlock()

	if !c.initialized {
		return
	}
	c.add(tone(constants.EndSoundFrequency, constants.EndSoundDuration, WaveSine, constants.EndSoundVolume, c.rate))
}

// Observe plays the fire cue when any ship fired in snap
func (c *Cue) Observe(snap *timeline.Snapshot) bool {
	if !AnyFired(snap) {
		return false
	}
	return c.PlayFire()
}

func (c *Cue) add(s beep.Streamer) {
	speaker.Lock()
	c.mixer.Add(s)
	speaker.Unlock()
}

// AnyFired reports whether a ship's weapon fired on the snapshot's tick
func AnyFired(snap *timeline.Snapshot) bool {
	fired := false
	snap.Range(func(e entity.Entity) bool {
		if e.IsShip() && e.Weapon.State.Fired {
			fired = true
			return false
		}
		return true
	})
	return fired
}
