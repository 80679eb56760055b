package audio

import (
	"context"
	"sync"
	"time"

	"github.com/gopxl/beep"
	"github.com/gopxl/beep/speaker"

	"github.com/okian/hearts/internal/domain/model"
	"github.com/okian/hearts/pkg/logger"
)

// Player plays cues on the local audio device. A player whose device failed
// to open stays muted.
type Player struct {
	rate   beep.SampleRate
	volume float64

	mu      sync.Mutex
	ready   bool
	enabled bool
}

// NewPlayer creates a player. Call Init before Play.
func NewPlayer(opts ...Option) *Player {
	s := apply(opts)
	return &Player{rate: s.rate, volume: s.volume, enabled: true}
}

// Init opens the speaker with a 100ms buffer. Failure leaves the player muted.
func (p *Player) Init(ctx context.Context) error {
	p.mu.Lock()
	defer p.mu.Unlock()

	if p.ready {
		return nil
	}
	if err := speaker.Init(p.rate, p.rate.N(100*time.Millisecond)); err != nil {
		logger.Get().Warn(ctx, "audio device unavailable, cues muted", logger.Error(err))
		return err
	}
	p.ready = true
	return nil
}

// SetEnabled mutes or unmutes the player.
func (p *Player) SetEnabled(on bool) {
	p.mu.Lock()
	p.enabled = on
	p.mu.Unlock()
}

// Play starts cue without waiting for it to finish.
func (p *Player) Play(cue model.Cue) error {
	s, err := Streamer(cue, p.rate, p.volume)
	if err != nil {
		return err
	}

	p.mu.Lock()
	defer p.mu.Unlock()
	if !p.ready || !p.enabled {
		return nil
	}
	speaker.Play(s)
	return nil
}

// Close releases the audio device.
func (p *Player) Close() {
	p.mu.Lock()
	defer p.mu.Unlock()

	if !p.ready {
		return
	}
	speaker.Clear()
	speaker.Close()
	p.ready = false
}
