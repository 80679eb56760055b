package game

import "errors"

// Sentinel kinds for game errors.
var (
	ErrLetterLocked  = errors.New("letter is locked until the round is won")
	ErrUnknownChoice = errors.New("unknown letter choice")
)
