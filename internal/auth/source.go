// Package auth provides the outbound credential source for the backend
// gateway. Tokens are resolved at request time, never at construction time:
// the hosting runtime may inject configuration after process startup, and a
// long-lived client must pick up rotated credentials without being rebuilt.
package auth

import "os"

// TokenSource resolves the current bearer token for outbound requests.
// An empty string means no credential is configured; callers send the
// request unauthenticated rather than failing.
type TokenSource interface {
	Resolve() string
}

// EnvTokenSource reads the token from an environment variable on every
// Resolve call.
type EnvTokenSource struct {
	key string
}

// NewEnvTokenSource creates an EnvTokenSource reading the given variable.
func NewEnvTokenSource(key string) *EnvTokenSource {
	return &EnvTokenSource{key: key}
}

// Resolve returns the variable's current value.
func (s *EnvTokenSource) Resolve() string {
	return os.Getenv(s.key)
}

// StaticTokenSource always resolves to a fixed token. Intended for tests and
// one-shot CLI invocations where rotation is not a concern.
type StaticTokenSource string

// Resolve returns the fixed token.
func (s StaticTokenSource) Resolve() string {
	return string(s)
}

// MaskToken shortens a token for log output, keeping only the first and last
// few characters. Never log a full credential.
func MaskToken(token string) string {
	if token == "" {
		return ""
	}
	if len(token) <= 12 {
		return "***"
	}
	return token[:8] + "..." + token[len(token)-4:]
}
