package core

import (
	"errors"
)

var (
	// ErrInvalidInput is returned when a required field is missing or empty
	ErrInvalidInput = errors.New("invalid input")
	// ErrConfiguration is returned when a provider is missing its credentials
	ErrConfiguration = errors.New("configuration error")
	// ErrUpstream is returned when a remote model fails or answers with garbage
	ErrUpstream = errors.New("upstream error")
	// ErrUnsupportedTone is returned when a rewrite target is outside the supported set
	ErrUnsupportedTone = errors.New("unsupported tone")
)

// ErrorKind returns a short name for the taxonomy class of err
func ErrorKind(err error) string {
	switch {
	case err == nil:
		return ""
	case errors.Is(err, ErrInvalidInput):
		return "invalid_input"
	case errors.Is(err, ErrUnsupportedTone):
		return "unsupported_tone"
	case errors.Is(err, ErrConfiguration):
		return "configuration"
	case errors.Is(err, ErrUpstream):
		return "upstream"
	default:
		return "internal"
	}
}
