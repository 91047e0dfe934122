// Package session is the authentication boundary of the console. The core
// never performs login or token refresh; it only answers whether a request
// carries an authenticated session.
package session

import "crypto/subtle"

// Checker reports whether a presented token belongs to a valid session.
type Checker interface {
	Authenticated(token string) bool
}

// StaticTokenChecker accepts exactly one preconfigured token.
type StaticTokenChecker struct {
	token string
}

// NewStaticTokenChecker builds a checker for the given token.
func NewStaticTokenChecker(token string) *StaticTokenChecker {
	return &StaticTokenChecker{token: token}
}

// Authenticated compares in constant time.
func (c *StaticTokenChecker) Authenticated(token string) bool {
	if c.token == "" || token == "" {
		return false
	}
	return subtle.ConstantTimeCompare([]byte(c.token), []byte(token)) == 1
}

// AllowAll accepts every request. Used when no token is configured, which
// keeps localdev usable without a session provider.
type AllowAll struct{}

// Authenticated always reports true.
func (AllowAll) Authenticated(string) bool { return true }

// FromToken returns the checker matching the configured token: a static
// check when set, AllowAll otherwise.
func FromToken(token string) Checker {
	if token == "" {
		return AllowAll{}
	}
	return NewStaticTokenChecker(token)
}
