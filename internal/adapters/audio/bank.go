package audio

import (
	"errors"
	"fmt"
	"io"
	"sync"

	"github.com/gopxl/beep"
	"github.com/gopxl/beep/wav"

	"github.com/okian/hearts/internal/domain/model"
)

// Bank renders cues to WAV once and serves the cached bytes afterwards.
type Bank struct {
	rate   beep.SampleRate
	volume float64

	mu    sync.Mutex
	cache map[model.Cue][]byte
}

// Option configures a Bank or a Player.
type Option func(*settings)

type settings struct {
	rate   beep.SampleRate
	volume float64
}

// WithSampleRate sets the synthesis sample rate.
func WithSampleRate(rate int) Option {
	return func(s *settings) {
		if rate > 0 {
			s.rate = beep.SampleRate(rate)
		}
	}
}

// WithVolume sets the peak gain in [0, 1].
func WithVolume(v float64) Option {
	return func(s *settings) {
		if v >= 0 && v <= 1 {
			s.volume = v
		}
	}
}

func apply(opts []Option) settings {
	s := settings{rate: DefaultSampleRate, volume: DefaultVolume}
	for _, opt := range opts {
		opt(&s)
	}
	return s
}

// NewBank creates an empty cue bank.
func NewBank(opts ...Option) *Bank {
	s := apply(opts)
	return &Bank{rate: s.rate, volume: s.volume, cache: make(map[model.Cue][]byte)}
}

// SampleRate returns the rate cues are rendered at.
func (b *Bank) SampleRate() beep.SampleRate { return b.rate }

// WAV returns cue as a 16-bit stereo WAV file.
func (b *Bank) WAV(cue model.Cue) ([]byte, error) {
	b.mu.Lock()
	defer b.mu.Unlock()

	if data, ok := b.cache[cue]; ok {
		return data, nil
	}
	s, err := Streamer(cue, b.rate, b.volume)
	if err != nil {
		return nil, err
	}

	var buf memFile
	format := beep.Format{SampleRate: b.rate, NumChannels: 2, Precision: 2}
	if err := wav.Encode(&buf, s, format); err != nil {
		return nil, fmt.Errorf("%w %q: %w", ErrRender, cue, err)
	}
	b.cache[cue] = buf.data
	return buf.data, nil
}

// Warm renders every cue up front.
func (b *Bank) Warm() error {
	var errs []error
	for _, c := range model.Cues() {
		if _, err := b.WAV(c); err != nil {
			errs = append(errs, err)
		}
	}
	return errors.Join(errs...)
}

// memFile is an in-memory io.WriteSeeker; wav.Encode seeks back to patch the
// header sizes.
type memFile struct {
	data []byte
	pos  int
}

func (m *memFile) Write(p []byte) (int, error) {
	end := m.pos + len(p)
	if end > len(m.data) {
		m.data = append(m.data, make([]byte, end-len(m.data))...)
	}
	copy(m.data[m.pos:], p)
	m.pos = end
	return len(p), nil
}

func (m *memFile) Seek(offset int64, whence int) (int64, error) {
	var next int64
	switch whence {
	case io.SeekStart:
		next = offset
	case io.SeekCurrent:
		next = int64(m.pos) + offset
	case io.SeekEnd:
		next = int64(len(m.data)) + offset
	default:
		return 0, fmt.Errorf("memfile: invalid whence %d", whence)
	}
	if next < 0 {
		return 0, fmt.Errorf("memfile: negative position %d", next)
	}
	m.pos = int(next)
	return next, nil
}
