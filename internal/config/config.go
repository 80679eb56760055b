// Package config defines service configuration structures and loading hooks.
//
// Conventions:
// - Provide New() to build a Config with defaults.
// - Loading functions accept context.Context as the first parameter.
// - Validation failures wrap ErrInvalidConfig; loading failures wrap ErrLoadConfig.
package config

import (
	"fmt"
	"net/url"
	"strings"
	"time"

	"github.com/okian/hearts/internal/domain/game"
	"github.com/okian/hearts/internal/domain/model"
)

// Config contains process configuration.
type Config struct {
	// LogLevel controls verbosity: debug, info, warn, error.
	LogLevel string `koanf:"log_level"`

	// LogFile receives the terminal shell's logs. Empty discards them; the
	// server always logs to stdout.
	LogFile string `koanf:"log_file"`

	// Addr configures the HTTP listen address, e.g. ":9080".
	Addr string `koanf:"addr"`

	// PublicURL is the address encoded in the QR code. Empty means derive it
	// from Addr.
	PublicURL string `koanf:"public_url"`

	// Recipient is the name the apology addresses.
	Recipient string `koanf:"recipient"`

	// MaxSessions caps concurrently open game sessions.
	MaxSessions int `koanf:"max_sessions"`

	// InboxSize bounds each session's task queue.
	InboxSize int `koanf:"inbox_size"`

	// DedupeSize is how many recent collect requests a connection remembers.
	DedupeSize int `koanf:"dedupe_size"`

	// Goal is the score that wins a round.
	Goal int `koanf:"goal"`

	// DurationSeconds is the round countdown.
	DurationSeconds int `koanf:"duration_seconds"`

	// SpawnIntervalMS is the time between hearts.
	SpawnIntervalMS int `koanf:"spawn_interval_ms"`

	// TargetLifeMS is how long a heart stays clickable.
	TargetLifeMS int `koanf:"target_life_ms"`

	// TargetCleanupMS and TargetCleanupAgeMS configure the per-heart safety sweep.
	TargetCleanupMS    int `koanf:"target_cleanup_ms"`
	TargetCleanupAgeMS int `koanf:"target_cleanup_age_ms"`

	// EndCleanupMS delays clearing leftover hearts after a round ends.
	EndCleanupMS int `koanf:"end_cleanup_ms"`

	// ComboThreshold is the combo at which ComboBonus points are awarded.
	ComboThreshold int `koanf:"combo_threshold"`
	ComboBonus     int `koanf:"combo_bonus"`

	// Padding keeps hearts away from the play area edges.
	Padding float64 `koanf:"padding"`

	// AreaWidth and AreaHeight are the play area assumed for a browser until
	// it reports its own.
	AreaWidth  float64 `koanf:"area_width"`
	AreaHeight float64 `koanf:"area_height"`

	// SampleRate and CueVolume configure cue synthesis.
	SampleRate int     `koanf:"sample_rate"`
	CueVolume  float64 `koanf:"cue_volume"`
}

// New creates a Config with defaults.
func New() *Config {
	return &Config{
		LogLevel:           "info",
		Addr:               ":9080",
		Recipient:          game.DefaultRecipient,
		MaxSessions:        1000,
		InboxSize:          256,
		DedupeSize:         64,
		Goal:               6,
		DurationSeconds:    game.DefaultDuration,
		SpawnIntervalMS:    1000,
		TargetLifeMS:       950,
		TargetCleanupMS:    1600,
		TargetCleanupAgeMS: 1400,
		EndCleanupMS:       250,
		ComboThreshold:     3,
		ComboBonus:         2,
		Padding:            game.DefaultPadding,
		AreaWidth:          360,
		AreaHeight:         420,
		SampleRate:         44100,
		CueVolume:          0.12,
	}
}

// Validate checks that the configuration can run a game.
func (c *Config) Validate() error {
	switch {
	case strings.TrimSpace(c.Addr) == "":
		return fmt.Errorf("%w: addr must not be empty", ErrInvalidConfig)
	case c.MaxSessions < 1:
		return fmt.Errorf("%w: max_sessions must be positive", ErrInvalidConfig)
	case c.InboxSize < 1:
		return fmt.Errorf("%w: inbox_size must be positive", ErrInvalidConfig)
	case c.Goal < 1:
		return fmt.Errorf("%w: goal must be positive", ErrInvalidConfig)
	case c.DurationSeconds < 1:
		return fmt.Errorf("%w: duration_seconds must be positive", ErrInvalidConfig)
	case c.SpawnIntervalMS < 1 || c.TargetLifeMS < 1 || c.TargetCleanupMS < 1:
		return fmt.Errorf("%w: spawn and target timings must be positive", ErrInvalidConfig)
	case c.TargetCleanupAgeMS < 0 || c.EndCleanupMS < 0:
		return fmt.Errorf("%w: cleanup timings must not be negative", ErrInvalidConfig)
	case c.ComboThreshold < 1 || c.ComboBonus < 0:
		return fmt.Errorf("%w: combo_threshold must be positive and combo_bonus not negative", ErrInvalidConfig)
	case c.Padding < 0:
		return fmt.Errorf("%w: padding must not be negative", ErrInvalidConfig)
	case !c.DefaultArea().Valid():
		return fmt.Errorf("%w: area_width and area_height must be positive", ErrInvalidConfig)
	case c.SampleRate < 8000:
		return fmt.Errorf("%w: sample_rate must be at least 8000", ErrInvalidConfig)
	case c.CueVolume < 0 || c.CueVolume > 1:
		return fmt.Errorf("%w: cue_volume must be within [0, 1]", ErrInvalidConfig)
	}
	if c.PublicURL != "" {
		if u, err := url.Parse(c.PublicURL); err != nil || u.Scheme == "" || u.Host == "" {
			return fmt.Errorf("%w: public_url must be an absolute URL", ErrInvalidConfig)
		}
	}
	return nil
}

// SiteURL returns PublicURL, or a localhost URL built from Addr.
func (c *Config) SiteURL() string {
	if c.PublicURL != "" {
		return c.PublicURL
	}
	host := c.Addr
	if strings.HasPrefix(host, ":") {
		host = "localhost" + host
	}
	return "http://" + host + "/"
}

// GameSettings converts the round tunables.
func (c *Config) GameSettings() game.Settings {
	s := game.DefaultSettings()
	s.Goal = c.Goal
	s.Duration = c.DurationSeconds
	s.SpawnInterval = ms(c.SpawnIntervalMS)
	s.TargetLife = ms(c.TargetLifeMS)
	s.CleanupAfter = ms(c.TargetCleanupMS)
	s.CleanupAge = ms(c.TargetCleanupAgeMS)
	s.EndCleanup = ms(c.EndCleanupMS)
	s.ComboThreshold = c.ComboThreshold
	s.ComboPoints = c.ComboBonus
	s.Padding = c.Padding
	s.Recipient = c.Recipient
	return s
}

// DefaultArea returns the configured initial play area.
func (c *Config) DefaultArea() model.Area {
	return model.Area{W: c.AreaWidth, H: c.AreaHeight}
}

func ms(n int) time.Duration { return time.Duration(n) * time.Millisecond }
