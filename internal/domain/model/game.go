// Package model contains domain models passed between layers.
package model

import "math"

// Phase is the state of a round.
type Phase string

// Round phases.
const (
	PhaseIdle     Phase = "idle"
	PhaseRunning  Phase = "running"
	PhaseWon      Phase = "won"
	PhaseTimedOut Phase = "timed_out"
)

// Ended reports whether the phase is terminal for a round.
func (p Phase) Ended() bool { return p == PhaseWon || p == PhaseTimedOut }

// Cue names a short sound effect.
type Cue string

// Sound cues.
const (
	CuePop  Cue = "pop"
	CueWin  Cue = "win"
	CueLose Cue = "lose"
)

// Cues lists every cue in a stable order.
func Cues() []Cue { return []Cue{CuePop, CueWin, CueLose} }

// Resolution says why a heart left the play area.
type Resolution string

// Target resolutions.
const (
	Collected Resolution = "collected"
	Missed    Resolution = "missed"
	// Expired hearts were swept by the safety cleanup and do not affect combo.
	Expired Resolution = "expired"
)

// Area is the play area size in presentation units (pixels for the web page,
// cells for the terminal).
type Area struct {
	W float64 `json:"w"`
	H float64 `json:"h"`
}

// Valid reports whether both sides are positive finite numbers.
func (a Area) Valid() bool {
	return finite(a.W) && finite(a.H) && a.W > 0 && a.H > 0
}

func finite(f float64) bool { return !math.IsNaN(f) && !math.IsInf(f, 0) }

// OverlayKind identifies which overlay is on screen.
type OverlayKind string

// Overlay kinds.
const (
	OverlayStart    OverlayKind = "start"
	OverlayIntro    OverlayKind = "intro"
	OverlayWon      OverlayKind = "won"
	OverlayTimedOut OverlayKind = "timed_out"
)

// Overlay is the modal shown over the play area.
type Overlay struct {
	Kind        OverlayKind `json:"kind"`
	Title       string      `json:"title"`
	Description string      `json:"description"`
	// Replay shows the play action.
	Replay bool `json:"replay"`
}

// Target is the presentation view of a heart.
type Target struct {
	ID       string  `json:"id"`
	X        float64 `json:"x"`
	Y        float64 `json:"y"`
	Glyph    string  `json:"glyph"`
	BornAtMs int64   `json:"born_at_ms"`
}

// Reply is the text shown after a letter choice.
type Reply struct {
	Choice  string `json:"choice"`
	Title   string `json:"title"`
	Body    string `json:"body"`
	Closing string `json:"closing"`
	Cue     Cue    `json:"cue"`
}

// GameState is a read-only snapshot of a session.
type GameState struct {
	Phase         Phase    `json:"phase"`
	Running       bool     `json:"running"`
	Score         int      `json:"score"`
	Goal          int      `json:"goal"`
	Progress      float64  `json:"progress"`
	Combo         int      `json:"combo"`
	TimeRemaining int      `json:"time_remaining"`
	Duration      int      `json:"duration"`
	LetterEnabled bool     `json:"letter_enabled"`
	SoundEnabled  bool     `json:"sound_enabled"`
	Overlay       *Overlay `json:"overlay,omitempty"`
	Reply         *Reply   `json:"reply,omitempty"`
	Targets       []Target `json:"targets"`
}
