package ws

import "errors"

// Sentinel kinds for websocket errors.
var (
	ErrUnsupportedCodec = errors.New("unsupported codec")
	ErrUnknownMessage   = errors.New("unknown message type")
	ErrRateLimited      = errors.New("rate limit exceeded")
	ErrMissingTargetID  = errors.New("collect: missing id")
	ErrBadArea          = errors.New("area: sides must be positive finite numbers")
)
