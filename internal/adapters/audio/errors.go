package audio

import "errors"

// Sentinel error kinds for this package.
var (
	ErrUnknownCue = errors.New("unknown cue")
	ErrRender     = errors.New("rendering cue")
)
