package game

import (
	"math/rand"
	"time"

	"github.com/okian/hearts/internal/domain/scoring"
	"github.com/okian/hearts/pkg/logger"
)

// Default round configuration.
const (
	DefaultGoal           = scoring.DefaultGoal
	DefaultDuration       = 25 // seconds
	DefaultTick           = time.Second
	DefaultSpawnInterval  = 1000 * time.Millisecond
	DefaultTargetLife     = 950 * time.Millisecond
	DefaultCleanupAfter   = 1600 * time.Millisecond
	DefaultCleanupAge     = 1400 * time.Millisecond
	DefaultEndCleanup     = 250 * time.Millisecond
	DefaultPadding        = 34.0
	DefaultRecipient      = "Vany"
	// PopRemoval is how long shells keep a collected heart on screen.
	PopRemoval            = 180 * time.Millisecond
	defaultGlyphFallback  = "💗"
	defaultComboThreshold = scoring.DefaultComboThreshold
)

// DefaultGlyphs are the hearts a target may show.
func DefaultGlyphs() []string {
	return []string{"💗", "💞", "💖", "💕", "💘", "❤️‍🔥"}
}

// Settings holds the tunable numbers of a round.
type Settings struct {
	Goal           int
	Duration       int // seconds on the countdown
	Tick           time.Duration
	SpawnInterval  time.Duration
	TargetLife     time.Duration
	CleanupAfter   time.Duration
	CleanupAge     time.Duration
	EndCleanup     time.Duration
	ComboThreshold int
	BasePoints     int
	ComboPoints    int
	Padding        float64
	Recipient      string
	Glyphs         []string
}

// DefaultSettings returns the stock round: 6 hearts in 25 seconds.
func DefaultSettings() Settings {
	return Settings{
		Goal:           scoring.DefaultGoal,
		Duration:       DefaultDuration,
		Tick:           DefaultTick,
		SpawnInterval:  DefaultSpawnInterval,
		TargetLife:     DefaultTargetLife,
		CleanupAfter:   DefaultCleanupAfter,
		CleanupAge:     DefaultCleanupAge,
		EndCleanup:     DefaultEndCleanup,
		ComboThreshold: defaultComboThreshold,
		BasePoints:     scoring.DefaultBasePoints,
		ComboPoints:    scoring.DefaultComboPoints,
		Padding:        DefaultPadding,
		Recipient:      DefaultRecipient,
		Glyphs:         DefaultGlyphs(),
	}
}

// Option applies a configuration option to the Controller.
type Option func(*Controller)

// WithGoal sets the score that wins the round.
func WithGoal(goal int) Option {
	return func(c *Controller) {
		if goal > 0 {
			c.cfg.Goal = goal
		}
	}
}

// WithDuration sets the countdown length in seconds.
func WithDuration(seconds int) Option {
	return func(c *Controller) {
		if seconds > 0 {
			c.cfg.Duration = seconds
		}
	}
}

// WithTick sets the countdown step. Mostly useful to speed up tests and bots.
func WithTick(d time.Duration) Option {
	return func(c *Controller) {
		if d > 0 {
			c.cfg.Tick = d
		}
	}
}

// WithSpawnInterval sets how often a heart appears.
func WithSpawnInterval(d time.Duration) Option {
	return func(c *Controller) {
		if d > 0 {
			c.cfg.SpawnInterval = d
		}
	}
}

// WithTargetLife sets how long a heart stays clickable.
func WithTargetLife(d time.Duration) Option {
	return func(c *Controller) {
		if d > 0 {
			c.cfg.TargetLife = d
		}
	}
}

// WithTargetCleanup sets the safety sweep: after fires once per heart and
// removes it if it is older than age and still on screen.
func WithTargetCleanup(after, age time.Duration) Option {
	return func(c *Controller) {
		if after > 0 && age >= 0 {
			c.cfg.CleanupAfter = after
			c.cfg.CleanupAge = age
		}
	}
}

// WithEndCleanup sets the delay before leftover hearts are cleared at round end.
func WithEndCleanup(d time.Duration) Option {
	return func(c *Controller) {
		if d >= 0 {
			c.cfg.EndCleanup = d
		}
	}
}

// WithCombo sets the combo threshold and the points below and at it.
func WithCombo(threshold, base, bonus int) Option {
	return func(c *Controller) {
		if threshold > 0 && base >= 0 && bonus >= 0 {
			c.cfg.ComboThreshold = threshold
			c.cfg.BasePoints = base
			c.cfg.ComboPoints = bonus
		}
	}
}

// WithPadding sets the spawn margin from the play area edges.
func WithPadding(p float64) Option {
	return func(c *Controller) {
		if p >= 0 {
			c.cfg.Padding = p
		}
	}
}

// WithRecipient sets the name used in overlay copy.
func WithRecipient(name string) Option {
	return func(c *Controller) {
		if name != "" {
			c.cfg.Recipient = name
		}
	}
}

// WithGlyphs sets the heart glyphs.
func WithGlyphs(glyphs []string) Option {
	return func(c *Controller) {
		if len(glyphs) > 0 {
			c.cfg.Glyphs = append([]string(nil), glyphs...)
		}
	}
}

// WithSettings replaces every tunable at once.
func WithSettings(s Settings) Option {
	return func(c *Controller) {
		c.cfg = s
		if len(c.cfg.Glyphs) == 0 {
			c.cfg.Glyphs = DefaultGlyphs()
		}
	}
}

// WithRand sets the random source for positions and glyphs.
func WithRand(rng *rand.Rand) Option {
	return func(c *Controller) {
		if rng != nil {
			c.rng = rng
		}
	}
}

// WithIDs sets the heart ID generator.
func WithIDs(next func() string) Option {
	return func(c *Controller) {
		if next != nil {
			c.newID = next
		}
	}
}

// WithSound sets whether cues start enabled.
func WithSound(on bool) Option {
	return func(c *Controller) {
		c.sound = on
	}
}

// WithHooks sets observation callbacks.
func WithHooks(h Hooks) Option {
	return func(c *Controller) {
		c.hooks = h
	}
}

// WithLogger sets a custom logger for the controller.
func WithLogger(l logger.Logger) Option {
	return func(c *Controller) {
		if l != nil {
			c.logger = l
		}
	}
}
