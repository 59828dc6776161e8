package config

import "errors"

// ConfigError indicates missing or invalid required settings. Always fatal
// to the current request, never retried, and surfaced as a
// client-correctable failure (HTTP 400-class in the server).
type ConfigError struct {
	Message string
}

func (e *ConfigError) Error() string {
	return "configuration error: " + e.Message
}

// IsConfigError reports whether err is (or wraps) a *ConfigError.
func IsConfigError(err error) bool {
	var ce *ConfigError
	return errors.As(err, &ce)
}
