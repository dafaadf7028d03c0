package jwtmw

import (
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
)

// CookieName is the name of the session cookie.
const CookieName = "jwt"

// SessionCookie writes and clears the session cookie.
type SessionCookie struct {
	Name   string
	MaxAge time.Duration
	// Secure should be true when the app is served over TLS.
	Secure bool
}

// NewSessionCookie returns the cookie settings for tokens living maxAge.
func NewSessionCookie(maxAge time.Duration, secure bool) *SessionCookie {
	return &SessionCookie{Name: CookieName, MaxAge: maxAge, Secure: secure}
}

// Attach sets an HttpOnly, SameSite=Strict cookie holding token.
func (s *SessionCookie) Attach(c *gin.Context, token string) {
	c.SetSameSite(http.SameSiteStrictMode)
	c.SetCookie(s.Name, token, int(s.MaxAge.Seconds()), "/", "", s.Secure, true)
}

// Clear overwrites the cookie with an empty value and Max-Age=0 so the
// client drops it immediately.
func (s *SessionCookie) Clear(c *gin.Context) {
	c.SetSameSite(http.SameSiteStrictMode)
	// gin/net/http emit "Max-Age=0" for negative values
	c.SetCookie(s.Name, "", -1, "/", "", s.Secure, true)
}
