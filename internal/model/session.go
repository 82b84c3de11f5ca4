package model

import "time"

// Session is the server side record of one browser session.
type Session struct {
	UserID         int
	UserName       string
	AuthValid      bool
	AuthExpiration time.Time
	LastRoute      string

	// LastPastePassword is the password last sent for a protected paste,
	// tried first on the next protected paste.
	LastPastePassword string
}

// Authenticated reports whether the session holds a user whose
// authentication has not expired at now.
func (s *Session) Authenticated(now time.Time) bool {
	if s == nil || !s.AuthValid {
		return false
	}
	return now.Before(s.AuthExpiration)
}
