package config

import "errors"

var (
	// ErrInvalidConfig wraps every Validate failure.
	ErrInvalidConfig = errors.New("invalid hearts config")
	// ErrLoadConfig wraps failures reading the YAML file or HEARTS_ variables.
	ErrLoadConfig = errors.New("loading hearts config")
)
