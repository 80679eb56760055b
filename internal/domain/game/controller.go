// Package game implements the heart-catching round: countdown, spawning,
// scoring and the win/lose flow. Every method must be called from the
// session's loop; timers are expected to post back onto that same loop.
package game

import (
	"context"
	"math/rand"
	"time"

	"github.com/google/uuid"

	"github.com/okian/hearts/internal/domain/letter"
	"github.com/okian/hearts/internal/domain/model"
	"github.com/okian/hearts/internal/domain/sched"
	"github.com/okian/hearts/internal/domain/scoring"
	"github.com/okian/hearts/pkg/logger"
)

// Hooks observe controller events. Any may be nil.
type Hooks struct {
	Started  func()
	Ended    func(outcome model.Phase, score int, elapsed time.Duration)
	Spawned  func(t model.Target)
	Resolved func(why model.Resolution, points int)
	Cue      func(c model.Cue)
	Replied  func(choice string)
}

// Controller owns one round at a time for a single session.
type Controller struct {
	sched  sched.Scheduler
	port   Port
	cfg    Settings
	rng    *rand.Rand
	newID  func() string
	hooks  Hooks
	logger logger.Logger

	clock   *Clock
	spawner *Spawner
	keeper  *scoring.Keeper

	phase     model.Phase
	sound     bool
	letter    bool
	overlay   *model.Overlay
	reply     *model.Reply
	epoch     uint64
	startedAt time.Time
	origin    time.Time
}

// NewController creates a controller in the idle phase and draws the start
// overlay on port.
func NewController(s sched.Scheduler, port Port, opts ...Option) *Controller {
	if port == nil {
		port = NopPort{}
	}
	c := &Controller{
		sched:  s,
		port:   port,
		cfg:    DefaultSettings(),
		newID:  uuid.NewString,
		sound:  true,
		phase:  model.PhaseIdle,
		origin: s.Now(),
	}

	for _, opt := range opts {
		opt(c)
	}

	if c.logger == nil {
		c.logger = logger.Get().Named("game")
	}
	if c.rng == nil {
		c.rng = rand.New(rand.NewSource(time.Now().UnixNano())) //nolint:gosec // layout only
	}

	c.keeper = scoring.NewKeeper(
		scoring.WithGoal(c.cfg.Goal),
		scoring.WithRule(scoring.ThresholdRule(c.cfg.ComboThreshold, c.cfg.BasePoints, c.cfg.ComboPoints)),
	)
	c.clock = NewClock(s, c.cfg.Duration, c.cfg.Tick, c.onTick, c.onExpire)
	c.spawner = NewSpawner(s, SpawnerConfig{
		Interval:     c.cfg.SpawnInterval,
		Life:         c.cfg.TargetLife,
		CleanupAfter: c.cfg.CleanupAfter,
		CleanupAge:   c.cfg.CleanupAge,
		Padding:      c.cfg.Padding,
		Glyphs:       c.cfg.Glyphs,
		Rand:         c.rng,
		NewID:        c.newID,
	}, port.Bounds, SpawnerEvents{
		Spawned: c.onSpawn,
		Missed:  c.onMiss,
		Swept:   c.onSweep,
	})

	c.Reset()
	return c
}

// Settings returns the round configuration.
func (c *Controller) Settings() Settings { return c.cfg }

// Phase returns the current phase.
func (c *Controller) Phase() model.Phase { return c.phase }

// Running reports whether a round is in progress.
func (c *Controller) Running() bool { return c.phase == model.PhaseRunning }

// Start begins a round. It is a no-op while a round is running. Score carries
// over from a timed-out round and restarts from zero after a win.
func (c *Controller) Start() {
	if c.phase == model.PhaseRunning {
		return
	}

	c.epoch++
	c.dropTargets()
	if c.phase == model.PhaseWon {
		c.keeper.Reset()
	}
	c.keeper.ResetCombo()
	c.clock.Reset()

	c.port.SetTime(c.clock.Remaining())
	c.port.SetScore(c.keeper.Score(), c.keeper.Goal())
	c.port.SetCombo(c.keeper.Combo())

	c.phase = model.PhaseRunning
	c.startedAt = c.sched.Now()
	c.hideOverlay()

	c.clock.Start()
	c.spawner.Start()

	c.logger.Info(context.Background(), "round started",
		logger.Int("score", c.keeper.Score()),
		logger.Int("goal", c.keeper.Goal()),
		logger.Int("duration", c.clock.Total()))
	if c.hooks.Started != nil {
		c.hooks.Started()
	}
}

// Collect resolves a heart clicked by the player. It returns false if the
// round is not running or the heart is unknown or already resolved.
func (c *Controller) Collect(id string) bool {
	if c.phase != model.PhaseRunning {
		return false
	}
	t := c.spawner.Collect(id)
	if t == nil {
		return false
	}

	c.port.RemoveTarget(t.ID, model.Collected)
	points, reached := c.keeper.OnCollect()
	c.port.SetScore(c.keeper.Score(), c.keeper.Goal())
	c.port.SetCombo(c.keeper.Combo())
	c.play(model.CuePop)
	if c.hooks.Resolved != nil {
		c.hooks.Resolved(model.Collected, points)
	}

	if reached {
		c.finish(model.PhaseWon)
	}
	return true
}

// Reset abandons any round and returns to the idle start screen with zero
// score. Pending timers from earlier rounds become no-ops.
func (c *Controller) Reset() {
	c.epoch++
	c.clock.Reset()
	c.spawner.Stop()
	c.dropTargets()
	c.keeper.Reset()

	c.phase = model.PhaseIdle
	c.letter = false
	c.reply = nil

	c.port.SetTime(c.clock.Remaining())
	c.port.SetScore(c.keeper.Score(), c.keeper.Goal())
	c.port.SetCombo(c.keeper.Combo())
	c.port.SetLetterEnabled(false)
	c.port.HideReply()
	c.showOverlay(startOverlay(c.cfg))
}

// Intro shows the "play first" overlay. Ignored while a round is running.
func (c *Controller) Intro() {
	if c.phase == model.PhaseRunning {
		return
	}
	c.showOverlay(introOverlay(c.cfg))
}

// SetSound turns cues on or off.
func (c *Controller) SetSound(on bool) { c.sound = on }

// Sound reports whether cues are on.
func (c *Controller) Sound() bool { return c.sound }

// LetterEnabled reports whether the letter has been unlocked.
func (c *Controller) LetterEnabled() bool { return c.letter }

// OpenLetter opens the letter. It fails until a round has been won.
func (c *Controller) OpenLetter() error {
	if !c.letter {
		return ErrLetterLocked
	}
	c.reply = nil
	c.port.HideReply()
	return nil
}

// Respond shows the reply for a letter answer and plays its cue.
func (c *Controller) Respond(choice string) error {
	ch, ok := letter.Parse(choice)
	if !ok {
		return ErrUnknownChoice
	}
	r, _ := letter.Reply(ch, c.cfg.Recipient)
	c.reply = &r
	c.port.ShowReply(r)
	c.play(r.Cue)
	if c.hooks.Replied != nil {
		c.hooks.Replied(r.Choice)
	}
	return nil
}

// Close stops all timers without touching the port. The controller must not
// be used afterwards.
func (c *Controller) Close() {
	c.epoch++
	c.clock.Stop()
	c.spawner.Stop()
	c.spawner.Clear()
}

// Snapshot returns the current state.
func (c *Controller) Snapshot() model.GameState {
	live := c.spawner.Live()
	targets := make([]model.Target, 0, len(live))
	for _, t := range live {
		targets = append(targets, t.View(c.origin))
	}

	st := model.GameState{
		Phase:         c.phase,
		Running:       c.phase == model.PhaseRunning,
		Score:         c.keeper.Score(),
		Goal:          c.keeper.Goal(),
		Progress:      c.keeper.Progress(),
		Combo:         c.keeper.Combo(),
		TimeRemaining: c.clock.Remaining(),
		Duration:      c.clock.Total(),
		LetterEnabled: c.letter,
		SoundEnabled:  c.sound,
		Targets:       targets,
	}
	if c.overlay != nil {
		o := *c.overlay
		st.Overlay = &o
	}
	if c.reply != nil {
		r := *c.reply
		st.Reply = &r
	}
	return st
}

func (c *Controller) onTick(remaining int) {
	if c.phase != model.PhaseRunning {
		return
	}
	c.port.SetTime(remaining)
}

func (c *Controller) onExpire() {
	if c.phase != model.PhaseRunning {
		return
	}
	if c.keeper.Won() {
		c.finish(model.PhaseWon)
		return
	}
	c.finish(model.PhaseTimedOut)
}

func (c *Controller) onSpawn(t *Target) {
	v := t.View(c.origin)
	c.port.SpawnTarget(v)
	if c.hooks.Spawned != nil {
		c.hooks.Spawned(v)
	}
}

// onMiss counts a miss only while the round runs. A heart that runs out
// after the end is reported to hooks as expired.
func (c *Controller) onMiss(t *Target) {
	c.port.RemoveTarget(t.ID, model.Missed)
	why := model.Expired
	if c.phase == model.PhaseRunning {
		c.keeper.OnMiss()
		c.port.SetCombo(c.keeper.Combo())
		why = model.Missed
	}
	if c.hooks.Resolved != nil {
		c.hooks.Resolved(why, 0)
	}
}

func (c *Controller) onSweep(t *Target) {
	c.port.RemoveTarget(t.ID, model.Expired)
	if c.hooks.Resolved != nil {
		c.hooks.Resolved(model.Expired, 0)
	}
}

// finish ends the running round exactly once.
func (c *Controller) finish(outcome model.Phase) {
	if c.phase != model.PhaseRunning {
		return
	}
	c.phase = outcome
	c.clock.Stop()
	c.spawner.Stop()

	epoch := c.epoch
	c.sched.AfterFunc(c.cfg.EndCleanup, func() {
		if c.epoch != epoch || c.phase == model.PhaseRunning {
			return
		}
		c.dropTargets()
	})

	switch outcome {
	case model.PhaseWon:
		c.play(model.CueWin)
		c.letter = true
		c.port.SetLetterEnabled(true)
		c.showOverlay(wonOverlay())
	case model.PhaseTimedOut:
		c.play(model.CueLose)
		c.showOverlay(timedOutOverlay(c.keeper.Score(), c.keeper.Goal()))
	}

	elapsed := c.sched.Now().Sub(c.startedAt)
	c.logger.Info(context.Background(), "round ended",
		logger.String("outcome", string(outcome)),
		logger.Int("score", c.keeper.Score()),
		logger.Int("remaining", c.clock.Remaining()),
		logger.Duration("elapsed", elapsed))
	if c.hooks.Ended != nil {
		c.hooks.Ended(outcome, c.keeper.Score(), elapsed)
	}
}

func (c *Controller) dropTargets() {
	c.spawner.Clear()
	c.port.ClearTargets()
}

func (c *Controller) showOverlay(o model.Overlay) {
	c.overlay = &o
	c.port.ShowOverlay(o)
}

func (c *Controller) hideOverlay() {
	c.overlay = nil
	c.port.HideOverlay()
}

func (c *Controller) play(cue model.Cue) {
	if !c.sound {
		return
	}
	c.port.PlayCue(cue)
	if c.hooks.Cue != nil {
		c.hooks.Cue(cue)
	}
}
