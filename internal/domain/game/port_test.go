package game_test

import (
	"fmt"
	"io"
	"math/rand"
	"time"

	"github.com/okian/hearts/internal/domain/game"
	"github.com/okian/hearts/internal/domain/model"
	"github.com/okian/hearts/internal/domain/sched"
	"github.com/okian/hearts/pkg/logger"
)

func init() {
	_ = logger.Init(logger.WithOutput(io.Discard))
}

// recPort records what the controller drew.
type recPort struct {
	area     model.Area
	overlay  *model.Overlay
	overlays []model.OverlayKind
	score    int
	goal     int
	time     int
	times    []int
	combo    int
	spawned  []model.Target
	removed  map[string]model.Resolution
	clears   int
	letter   bool
	reply    *model.Reply
	cues     []model.Cue
}

func newRecPort() *recPort {
	return &recPort{
		area:    model.Area{W: 400, H: 300},
		removed: make(map[string]model.Resolution),
	}
}

func (p *recPort) Bounds() model.Area { return p.area }

func (p *recPort) ShowOverlay(o model.Overlay) {
	p.overlay = &o
	p.overlays = append(p.overlays, o.Kind)
}

func (p *recPort) HideOverlay() { p.overlay = nil }

func (p *recPort) SetScore(score, goal int) { p.score, p.goal = score, goal }

func (p *recPort) SetTime(remaining int) {
	p.time = remaining
	p.times = append(p.times, remaining)
}

func (p *recPort) SetCombo(combo int) { p.combo = combo }

func (p *recPort) SpawnTarget(t model.Target) { p.spawned = append(p.spawned, t) }

func (p *recPort) RemoveTarget(id string, why model.Resolution) { p.removed[id] = why }

func (p *recPort) ClearTargets() { p.clears++ }

func (p *recPort) SetLetterEnabled(enabled bool) { p.letter = enabled }

func (p *recPort) ShowReply(r model.Reply) { p.reply = &r }

func (p *recPort) HideReply() { p.reply = nil }

func (p *recPort) PlayCue(c model.Cue) { p.cues = append(p.cues, c) }

func (p *recPort) last() model.Target { return p.spawned[len(p.spawned)-1] }

func (p *recPort) count(c model.Cue) int {
	n := 0
	for _, x := range p.cues {
		if x == c {
			n++
		}
	}
	return n
}

func sequentialIDs() func() string {
	n := 0
	return func() string {
		n++
		return fmt.Sprintf("h%d", n)
	}
}

func newGame(opts ...game.Option) (*game.Controller, *sched.Manual, *recPort) {
	m := sched.NewManual(time.Unix(1_700_000_000, 0))
	p := newRecPort()
	base := []game.Option{
		game.WithRand(rand.New(rand.NewSource(1))), //nolint:gosec // deterministic test data
		game.WithIDs(sequentialIDs()),
	}
	c := game.NewController(m, p, append(base, opts...)...)
	return c, m, p
}

// collectNext advances one spawn interval and clicks the newest heart.
func collectNext(c *game.Controller, m *sched.Manual, p *recPort) bool {
	m.Advance(time.Second)
	return c.Collect(p.last().ID)
}
