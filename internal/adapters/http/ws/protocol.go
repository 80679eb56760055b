package ws

import "github.com/okian/hearts/internal/domain/model"

// Client -> Server message types
const (
	MsgArea       = "area"
	MsgStart      = "start"
	MsgReset      = "reset"
	MsgIntro      = "intro"
	MsgCollect    = "collect"
	MsgSound      = "sound"
	MsgOpenLetter = "open_letter"
	MsgRespond    = "respond"
	MsgSnapshot   = "snapshot"
)

// Server -> Client message types
const (
	MsgHello       = "hello"
	MsgOverlay     = "overlay"
	MsgOverlayHide = "overlay_hide"
	MsgScore       = "score"
	MsgTime        = "time"
	MsgCombo       = "combo"
	MsgSpawn       = "spawn"
	MsgRemove      = "remove"
	MsgClear       = "clear"
	MsgCue         = "cue"
	MsgLetter      = "letter"
	MsgReply       = "reply"
	MsgReplyHide   = "reply_hide"
	MsgError       = "error"
	// MsgSnapshot doubles as the reply type.
)

// Envelope wraps all outgoing messages with a type field.
type Envelope struct {
	T    string `json:"t"`
	Data any    `json:"d,omitempty"`
}

// AreaMsg reports the size of the client's play area.
type AreaMsg struct {
	W float64 `json:"w"`
	H float64 `json:"h"`
}

// CollectMsg is sent when the player clicks a heart.
type CollectMsg struct {
	ID string `json:"id"`
}

// SoundMsg toggles sound effects.
type SoundMsg struct {
	On bool `json:"on"`
}

// RespondMsg answers the letter.
type RespondMsg struct {
	Choice string `json:"choice"`
}

// HelloMsg is the first message after a session opens.
type HelloMsg struct {
	SID string      `json:"sid"`
	Cfg HelloConfig `json:"cfg"`
}

// HelloConfig carries what a client needs to draw its HUD before the first round.
type HelloConfig struct {
	Goal         int      `json:"goal"`
	Duration     int      `json:"duration"`
	Recipient    string   `json:"recipient"`
	Sound        bool     `json:"sound"`
	PopRemovalMs int      `json:"pop_removal_ms"`
	Choices      []string `json:"choices"`
}

// ScoreMsg updates the score line.
type ScoreMsg struct {
	Score    int     `json:"score"`
	Goal     int     `json:"goal"`
	Progress float64 `json:"progress"`
}

// TimeMsg updates the countdown.
type TimeMsg struct {
	Remaining int `json:"remaining"`
}

// ComboMsg updates the combo counter.
type ComboMsg struct {
	Combo int `json:"combo"`
}

// RemoveMsg removes a heart from the play area.
type RemoveMsg struct {
	ID  string           `json:"id"`
	Why model.Resolution `json:"why"`
}

// CueMsg asks the client to play a sound.
type CueMsg struct {
	Cue model.Cue `json:"cue"`
}

// LetterMsg toggles the letter button.
type LetterMsg struct {
	Enabled bool `json:"enabled"`
}

// ErrorMsg reports a rejected request.
type ErrorMsg struct {
	Msg string `json:"msg"`
}
