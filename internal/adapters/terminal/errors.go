package terminal

import "errors"

// Sentinel error kinds for this package.
var (
	ErrScreen = errors.New("terminal screen")
)
