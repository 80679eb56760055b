package game

import (
	"math"
	"math/rand"
	"sort"
	"time"

	"github.com/google/uuid"

	"github.com/okian/hearts/internal/domain/model"
	"github.com/okian/hearts/internal/domain/sched"
)

// SpawnerConfig holds spawner timing and layout.
type SpawnerConfig struct {
	Interval     time.Duration
	Life         time.Duration
	CleanupAfter time.Duration
	CleanupAge   time.Duration
	Padding      float64
	Glyphs       []string
	Rand         *rand.Rand
	NewID        func() string
}

// SpawnerEvents are the spawner's callbacks. Any may be nil.
type SpawnerEvents struct {
	// Spawned runs after a heart is attached.
	Spawned func(t *Target)
	// Missed runs when a heart's lifetime ends before it is collected.
	Missed func(t *Target)
	// Swept runs when the safety cleanup removes a stale heart.
	Swept func(t *Target)
}

// Spawner creates hearts on a fixed interval and times them out.
type Spawner struct {
	sched  sched.Scheduler
	cfg    SpawnerConfig
	bounds func() model.Area
	events SpawnerEvents

	interval sched.Timer
	live     map[string]*Target
	seq      uint64
}

// NewSpawner creates a stopped spawner. bounds is read on every spawn.
func NewSpawner(s sched.Scheduler, cfg SpawnerConfig, bounds func() model.Area, events SpawnerEvents) *Spawner {
	if cfg.Interval <= 0 {
		cfg.Interval = DefaultSpawnInterval
	}
	if cfg.Life <= 0 {
		cfg.Life = DefaultTargetLife
	}
	if cfg.CleanupAfter <= 0 {
		cfg.CleanupAfter = DefaultCleanupAfter
	}
	if cfg.Padding < 0 {
		cfg.Padding = 0
	}
	if len(cfg.Glyphs) == 0 {
		cfg.Glyphs = []string{defaultGlyphFallback}
	}
	if cfg.Rand == nil {
		cfg.Rand = rand.New(rand.NewSource(time.Now().UnixNano())) //nolint:gosec // layout only
	}
	if cfg.NewID == nil {
		cfg.NewID = uuid.NewString
	}
	if bounds == nil {
		bounds = func() model.Area { return model.Area{} }
	}
	return &Spawner{
		sched:  s,
		cfg:    cfg,
		bounds: bounds,
		events: events,
		live:   make(map[string]*Target),
	}
}

// Start begins spawning. It returns false if already running.
func (s *Spawner) Start() bool {
	if s.interval != nil {
		return false
	}
	s.interval = s.sched.Every(s.cfg.Interval, s.spawn)
	return true
}

// Stop halts spawning. Hearts already on screen keep their timers.
func (s *Spawner) Stop() {
	if s.interval == nil {
		return
	}
	s.interval.Stop()
	s.interval = nil
}

// Running reports whether the spawn interval is active.
func (s *Spawner) Running() bool { return s.interval != nil }

// Collect resolves the heart with id as collected. It returns nil if the heart
// is unknown or already resolved.
func (s *Spawner) Collect(id string) *Target {
	t, ok := s.live[id]
	if !ok || !t.resolve(TargetCollected) {
		return nil
	}
	delete(s.live, id)
	return t
}

// Clear detaches every heart and returns them. Their pending timers become
// no-ops.
func (s *Spawner) Clear() []*Target {
	out := s.Live()
	for _, t := range out {
		if t.sweep != nil {
			t.sweep.Stop()
		}
		if t.missTime != nil {
			t.missTime.Stop()
		}
	}
	s.live = make(map[string]*Target)
	return out
}

// Live returns attached hearts, oldest first.
func (s *Spawner) Live() []*Target {
	out := make([]*Target, 0, len(s.live))
	for _, t := range s.live {
		out = append(out, t)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].seq < out[j].seq })
	return out
}

// Len returns the number of attached hearts.
func (s *Spawner) Len() int { return len(s.live) }

// Position picks a point inside area at least padding away from every edge.
// Axes narrower than two paddings collapse to their midpoint.
func (s *Spawner) Position(area model.Area) (x, y float64) {
	return s.axis(area.W), s.axis(area.H)
}

func (s *Spawner) axis(size float64) float64 {
	pad := s.cfg.Padding
	if math.IsNaN(size) || math.IsInf(size, 0) || size < 0 {
		return 0
	}
	if size < 2*pad {
		return size / 2
	}
	return pad + s.cfg.Rand.Float64()*(size-2*pad)
}

func (s *Spawner) spawn() {
	if s.interval == nil {
		return
	}
	x, y := s.Position(s.bounds())
	s.seq++
	t := &Target{
		ID:        s.cfg.NewID(),
		X:         x,
		Y:         y,
		Glyph:     s.cfg.Glyphs[s.cfg.Rand.Intn(len(s.cfg.Glyphs))],
		CreatedAt: s.sched.Now(),
		seq:       s.seq,
	}
	s.live[t.ID] = t
	t.missTime = s.sched.AfterFunc(s.cfg.Life, func() { s.expire(t) })
	t.sweep = s.sched.AfterFunc(s.cfg.CleanupAfter, func() { s.cleanup(t) })

	if s.events.Spawned != nil {
		s.events.Spawned(t)
	}
}

func (s *Spawner) attached(t *Target) bool {
	cur, ok := s.live[t.ID]
	return ok && cur == t
}

func (s *Spawner) expire(t *Target) {
	if !s.attached(t) || !t.resolve(TargetMissed) {
		return
	}
	delete(s.live, t.ID)
	if s.events.Missed != nil {
		s.events.Missed(t)
	}
}

func (s *Spawner) cleanup(t *Target) {
	if !s.attached(t) {
		return
	}
	if s.sched.Now().Sub(t.CreatedAt) <= s.cfg.CleanupAge {
		return
	}
	if !t.resolve(TargetMissed) {
		return
	}
	delete(s.live, t.ID)
	if s.events.Swept != nil {
		s.events.Swept(t)
	}
}
