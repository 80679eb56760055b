package game

import "github.com/okian/hearts/internal/domain/model"

// Port is the presentation side of a session. The controller calls it from
// the session's loop only, so implementations need no locking of their own
// unless they share state elsewhere.
type Port interface {
	// Bounds returns the current play area size.
	Bounds() model.Area

	ShowOverlay(o model.Overlay)
	HideOverlay()

	SetScore(score, goal int)
	SetTime(remaining int)
	SetCombo(combo int)

	SpawnTarget(t model.Target)
	RemoveTarget(id string, why model.Resolution)
	ClearTargets()

	SetLetterEnabled(enabled bool)
	ShowReply(r model.Reply)
	HideReply()

	PlayCue(c model.Cue)
}

// NopPort discards every call. Bounds reports a fixed area.
type NopPort struct {
	Area model.Area
}

var _ Port = NopPort{}

func (p NopPort) Bounds() model.Area                  { return p.Area }
func (NopPort) ShowOverlay(model.Overlay)             {}
func (NopPort) HideOverlay()                          {}
func (NopPort) SetScore(int, int)                     {}
func (NopPort) SetTime(int)                           {}
func (NopPort) SetCombo(int)                          {}
func (NopPort) SpawnTarget(model.Target)              {}
func (NopPort) RemoveTarget(string, model.Resolution) {}
func (NopPort) ClearTargets()                         {}
func (NopPort) SetLetterEnabled(bool)                 {}
func (NopPort) ShowReply(model.Reply)                 {}
func (NopPort) HideReply()                            {}
func (NopPort) PlayCue(model.Cue)                     {}
