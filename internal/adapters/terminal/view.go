// Package terminal is a tcell shell for a game session. View implements
// game.Port by recording what the controller asks to show; Shell draws that
// state and turns keys and mouse clicks into controller calls.
package terminal

import (
	"math"
	"sort"
	"sync"
	"time"

	"github.com/okian/hearts/internal/domain/game"
	"github.com/okian/hearts/internal/domain/model"
)

// CuePlayer plays sound cues.
type CuePlayer interface {
	Play(model.Cue) error
}

type heart struct {
	model.Target
	poppedAt time.Time
}

// View is the shell's copy of what the controller has drawn. The controller
// writes it from the session loop while the shell reads it from its own
// goroutine.
type View struct {
	mu sync.Mutex

	area      model.Area
	score     int
	goal      int
	remaining int
	combo     int
	letter    bool
	sound     bool
	overlay   *model.Overlay
	reply     *model.Reply
	hearts    map[string]*heart
	notice    string
	dirty     bool

	player CuePlayer
	now    func() time.Time
}

var _ game.Port = (*View)(nil)

// NewView creates a view for an area of w by h cells.
func NewView(w, h int, player CuePlayer) *View {
	return &View{
		area:   model.Area{W: float64(w), H: float64(h)},
		sound:  true,
		hearts: make(map[string]*heart),
		player: player,
		now:    time.Now,
		dirty:  true,
	}
}

// SetArea records a new play area size after a resize.
func (v *View) SetArea(w, h int) {
	v.mu.Lock()
	defer v.mu.Unlock()
	v.area = model.Area{W: float64(w), H: float64(h)}
	v.dirty = true
}

// SetNotice sets the footer message. An empty message restores the key help.
func (v *View) SetNotice(msg string) {
	v.mu.Lock()
	defer v.mu.Unlock()
	if v.notice != msg {
		v.notice = msg
		v.dirty = true
	}
}

// SetSound records the sound toggle shown in the HUD.
func (v *View) SetSound(on bool) {
	v.mu.Lock()
	defer v.mu.Unlock()
	v.sound = on
	v.dirty = true
}

func (v *View) Bounds() model.Area {
	v.mu.Lock()
	defer v.mu.Unlock()
	return v.area
}

func (v *View) ShowOverlay(o model.Overlay) {
	v.update(func() { v.overlay = &o })
}

func (v *View) HideOverlay() {
	v.update(func() { v.overlay = nil })
}

func (v *View) SetScore(score, goal int) {
	v.update(func() { v.score, v.goal = score, goal })
}

func (v *View) SetTime(remaining int) {
	v.update(func() { v.remaining = remaining })
}

func (v *View) SetCombo(combo int) {
	v.update(func() { v.combo = combo })
}

func (v *View) SpawnTarget(t model.Target) {
	v.update(func() { v.hearts[t.ID] = &heart{Target: t} })
}

// RemoveTarget drops a heart. Collected hearts stay popped for
// game.PopRemoval before they disappear.
func (v *View) RemoveTarget(id string, why model.Resolution) {
	v.update(func() {
		h, ok := v.hearts[id]
		if !ok {
			return
		}
		if why == model.Collected {
			h.poppedAt = v.now()
			return
		}
		delete(v.hearts, id)
	})
}

func (v *View) ClearTargets() {
	v.update(func() { v.hearts = make(map[string]*heart) })
}

func (v *View) SetLetterEnabled(enabled bool) {
	v.update(func() { v.letter = enabled })
}

func (v *View) ShowReply(r model.Reply) {
	v.update(func() { v.reply = &r })
}

func (v *View) HideReply() {
	v.update(func() { v.reply = nil })
}

// PlayCue forwards to the player. The controller has already dropped cues
// when sound is off.
func (v *View) PlayCue(c model.Cue) {
	if v.player == nil {
		return
	}
	_ = v.player.Play(c)
}

func (v *View) update(fn func()) {
	v.mu.Lock()
	defer v.mu.Unlock()
	fn()
	v.dirty = true
}

// TargetAt returns the live heart drawn nearest to cell (x, y) in play area
// coordinates. Hearts are two cells wide.
func (v *View) TargetAt(x, y int) (string, bool) {
	v.mu.Lock()
	defer v.mu.Unlock()

	best, bestDist := "", math.MaxFloat64
	for id, h := range v.hearts {
		if !h.poppedAt.IsZero() {
			continue
		}
		dx := float64(x) - math.Floor(h.X)
		dy := float64(y) - math.Floor(h.Y)
		if dx < -1 || dx > 2 || math.Abs(dy) > 1 {
			continue
		}
		if d := dx*dx + dy*dy; d < bestDist {
			best, bestDist = id, d
		}
	}
	return best, best != ""
}

// Frame is a consistent copy of the view for drawing.
type Frame struct {
	Area      model.Area
	Score     int
	Goal      int
	Remaining int
	Combo     int
	Letter    bool
	Sound     bool
	Overlay   *model.Overlay
	Reply     *model.Reply
	Notice    string
	Hearts    []model.Target
	Popped    []model.Target
}

// Frame prunes popped hearts older than game.PopRemoval and returns the
// current state. The second result reports whether anything changed since the
// previous call.
func (v *View) Frame() (Frame, bool) {
	v.mu.Lock()
	defer v.mu.Unlock()

	now := v.now()
	for id, h := range v.hearts {
		if !h.poppedAt.IsZero() && now.Sub(h.poppedAt) >= game.PopRemoval {
			delete(v.hearts, id)
			v.dirty = true
		}
	}

	f := Frame{
		Area:      v.area,
		Score:     v.score,
		Goal:      v.goal,
		Remaining: v.remaining,
		Combo:     v.combo,
		Letter:    v.letter,
		Sound:     v.sound,
		Overlay:   v.overlay,
		Reply:     v.reply,
		Notice:    v.notice,
	}
	for _, h := range v.hearts {
		if h.poppedAt.IsZero() {
			f.Hearts = append(f.Hearts, h.Target)
		} else {
			f.Popped = append(f.Popped, h.Target)
		}
	}
	sort.Slice(f.Hearts, func(i, j int) bool { return f.Hearts[i].BornAtMs < f.Hearts[j].BornAtMs })

	changed := v.dirty
	v.dirty = false
	return f, changed
}
