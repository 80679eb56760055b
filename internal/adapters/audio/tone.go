// Package audio synthesizes the game's sound cues with beep. Cues are short
// sine tones with an exponential swell and fade, rendered either to WAV for
// the web page or straight to the speaker for the terminal shell.
package audio

import (
	"fmt"
	"math"
	"time"

	"github.com/gopxl/beep"
	"github.com/gopxl/beep/effects"

	"github.com/okian/hearts/internal/domain/model"
)

const (
	// DefaultSampleRate is used when no rate is configured.
	DefaultSampleRate = beep.SampleRate(44100)
	// DefaultVolume is the peak gain of a cue.
	DefaultVolume = 0.12

	attack = 10 * time.Millisecond
	floor  = 0.0001
)

// Tone describes one cue.
type Tone struct {
	Freq     float64
	Duration time.Duration
}

var tones = map[model.Cue]Tone{
	model.CuePop:  {Freq: 740, Duration: 60 * time.Millisecond},
	model.CueWin:  {Freq: 520, Duration: 140 * time.Millisecond},
	model.CueLose: {Freq: 180, Duration: 140 * time.Millisecond},
}

// ToneFor returns the tone played for cue.
func ToneFor(cue model.Cue) (Tone, error) {
	t, ok := tones[cue]
	if !ok {
		return Tone{}, fmt.Errorf("%w: %q", ErrUnknownCue, cue)
	}
	return t, nil
}

// tone is a sine oscillator shaped by an exponential envelope that rises from
// floor to 1 over attack, then decays back to floor at the end.
type tone struct {
	freq     float64
	rate     beep.SampleRate
	phase    float64
	position int
	total    int
	rise     int
}

func newTone(t Tone, rate beep.SampleRate) *tone {
	total := rate.N(t.Duration)
	rise := rate.N(attack)
	if rise > total {
		rise = total
	}
	return &tone{freq: t.Freq, rate: rate, total: total, rise: rise}
}

func (t *tone) Stream(samples [][2]float64) (n int, ok bool) {
	for i := range samples {
		if t.position >= t.total {
			return i, i > 0
		}
		val := math.Sin(2*math.Pi*t.phase) * t.gain()
		samples[i][0] = val
		samples[i][1] = val

		t.phase += t.freq / float64(t.rate)
		t.phase -= math.Floor(t.phase)
		t.position++
	}
	return len(samples), true
}

func (t *tone) Err() error { return nil }

func (t *tone) gain() float64 {
	if t.position < t.rise {
		return floor * math.Pow(1/floor, float64(t.position)/float64(t.rise))
	}
	fall := t.total - t.rise
	if fall <= 0 {
		return 1
	}
	return math.Pow(floor, float64(t.position-t.rise)/float64(fall))
}

// Streamer returns a fresh streamer for cue at the given peak volume.
func Streamer(cue model.Cue, rate beep.SampleRate, volume float64) (beep.Streamer, error) {
	t, err := ToneFor(cue)
	if err != nil {
		return nil, err
	}
	return newVolume(newTone(t, rate), volume), nil
}

// math.Log2(0) is -Inf, so zero volume is rendered silent.
func newVolume(s beep.Streamer, vol float64) beep.Streamer {
	if vol <= 0 {
		return &effects.Volume{Streamer: s, Base: 2, Volume: 0, Silent: true}
	}
	return &effects.Volume{Streamer: s, Base: 2, Volume: math.Log2(vol)}
}

// ToneDuration returns the length of cue, or zero for unknown cues.
func ToneDuration(cue model.Cue) time.Duration { return tones[cue].Duration }
