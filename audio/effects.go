package audio

import (
	"math"
	"time"

	"github.com/gopxl/beep"
	"github.com/gopxl/beep/effects"
	"github.com/gopxl/beep/generators"
)

// WaveType defines oscillator wave shapes
type WaveType int

const (
	WaveSine WaveType = iota
	WaveSquare
)

// oscillator generates a fixed-length raw wave
type oscillator struct {
	freq     float64
	phase    float64
	duration int
	position int
	wave     WaveType
	rate     beep.SampleRate
}

// NewOscillator creates a streamer producing duration worth of samples
func NewOscillator(freq float64, duration time.Duration, wave WaveType, rate beep.SampleRate) beep.Streamer {
	return &oscillator{
		freq:     freq,
		duration: rate.N(duration),
		wave:     wave,
		rate:     rate,
	}
}

func (o *oscillator) Stream(samples [][2]float64) (n int, ok bool) {
	if o.position >= o.duration {
		return 0, false
	}
	for i := range samples {
		if o.position >= o.duration {
			return i, true
		}

		val := math.Sin(2 * math.Pi * o.phase)
		if o.wave == WaveSquare {
			val = 1.0
			if o.phase >= 0.5 {
				val = -1.0
			}
		}
		samples[i][0] = val
		samples[i][1] = val

		o.phase += o.freq / float64(o.rate)
		o.phase -= math.Floor(o.phase)
		o.position++
	}
	return len(samples), true
}

func (o *oscillator) Err() error { return nil }

// fade applies a linear release over the tail of a finite stream
type fade struct {
	streamer beep.Streamer
	position int
	release  int
	total    int
}

func newFade(s beep.Streamer, duration, release time.Duration, rate beep.SampleRate) beep.Streamer {
	return &fade{streamer: s, release: rate.N(release), total: rate.N(duration)}
}

func (f *fade) Stream(samples [][2]float64) (n int, ok bool) {
	n, ok = f.streamer.Stream(samples)
	start := f.total - f.release
	for i := 0; i < n; i++ {
		if f.release > 0 && f.position >= start {
			vol := float64(f.total-f.position) / float64(f.release)
			if vol < 0 {
				vol = 0
			}
			samples[i][0] *= vol
			samples[i][1] *= vol
		}
		f.position++
	}
	return n, ok
}

func (f *fade) Err() error { return f.streamer.Err() }

// tone builds an attenuated beep with a short release
// volume is a base-2 exponent, so -1 halves amplitude
func tone(freq float64, duration time.Duration, wave WaveType, volume float64, rate beep.SampleRate) beep.Streamer {
	src := NewOscillator(freq, duration, wave, rate)
	if wave == WaveSine {
		if sine, err := generators.SineTone(rate, freq); err == nil {
			src = beep.Take(rate.N(duration), sine)
		}
	}
	return &effects.Volume{
		Streamer: newFade(src, duration, duration/4, rate),
		Base:     2,
		Volume:   volume,
	}
}
