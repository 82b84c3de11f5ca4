package middleware

import (
	"context"
	"encoding/gob"
	"errors"
	"fmt"
	"net/http"
	"time"

	"github.com/alexedwards/scs/v2"
	"github.com/ghaggin/pastemate/internal/config"
	"github.com/ghaggin/pastemate/internal/model"
)

const (
	sessionKey = "session_key"
)

var (
	errSessionNotFound    = errors.New("session not found")
	errSessionUnavailable = errors.New("session unavailable")
)

// SessionManager is the cookie backed Session State of the application.
type SessionManager struct {
	impl         *scs.SessionManager
	authLifetime time.Duration
	now          func() time.Time
}

func NewSessionManager(cfg *config.Config) (*SessionManager, error) {
	gob.Register(&model.Session{})

	sm := &SessionManager{
		authLifetime: cfg.Session.AuthLifetime,
		now:          time.Now,
	}
	sm.impl = scs.New()
	sm.impl.Lifetime = cfg.Session.Lifetime
	sm.impl.Cookie.Name = cfg.Session.CookieName
	sm.impl.Cookie.Secure = cfg.Session.Secure
	sm.impl.Cookie.HttpOnly = true
	sm.impl.Cookie.SameSite = http.SameSiteLaxMode

	return sm, nil
}

func (s *SessionManager) Wrap(next http.Handler) http.Handler {
	return s.impl.LoadAndSave(next)
}

// CurrentUser returns the signed in user, or nil when nobody is signed in
// or the sign-in has expired. An error means the session could not be read.
func (s *SessionManager) CurrentUser(ctx context.Context) (*model.User, error) {
	session, err := s.get(ctx)
	if errors.Is(err, errSessionNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}

	if !session.Authenticated(s.now()) {
		return nil, nil
	}

	return &model.User{
		ID:   session.UserID,
		Name: session.UserName,
	}, nil
}

// SetAuthenticated renews the session token and stores user as signed in.
func (s *SessionManager) SetAuthenticated(ctx context.Context, user *model.User) error {
	session, err := s.get(ctx)
	if errors.Is(err, errSessionNotFound) {
		session = &model.Session{}
	} else if err != nil {
		return err
	}

	if err := s.impl.RenewToken(ctx); err != nil {
		return err
	}

	session.UserID = user.ID
	session.UserName = user.Name
	session.AuthValid = true
	session.AuthExpiration = s.now().Add(s.authLifetime)

	s.impl.Put(ctx, sessionKey, session)
	return nil
}

// Clear signs the user out by destroying the whole session.
func (s *SessionManager) Clear(ctx context.Context) error {
	return s.impl.Destroy(ctx)
}

func (s *SessionManager) LastRoute(ctx context.Context) string {
	session, err := s.get(ctx)
	if err != nil {
		return ""
	}
	return session.LastRoute
}

func (s *SessionManager) SetLastRoute(ctx context.Context, path string) error {
	session, err := s.get(ctx)
	if errors.Is(err, errSessionNotFound) {
		session = &model.Session{}
	} else if err != nil {
		return err
	}

	if session.LastRoute == path {
		return nil
	}

	session.LastRoute = path
	s.impl.Put(ctx, sessionKey, session)
	return nil
}

// PastePassword is the password last used for a protected paste.
func (s *SessionManager) PastePassword(ctx context.Context) string {
	session, err := s.get(ctx)
	if err != nil {
		return ""
	}
	return session.LastPastePassword
}

func (s *SessionManager) SetPastePassword(ctx context.Context, password string) error {
	session, err := s.get(ctx)
	if errors.Is(err, errSessionNotFound) {
		session = &model.Session{}
	} else if err != nil {
		return err
	}

	if session.LastPastePassword == password {
		return nil
	}

	session.LastPastePassword = password
	s.impl.Put(ctx, sessionKey, session)
	return nil
}

// get turns the scs panic for a context without loaded session data into
// errSessionUnavailable.
func (s *SessionManager) get(ctx context.Context) (session *model.Session, err error) {
	defer func() {
		if r := recover(); r != nil {
			session = nil
			err = fmt.Errorf("%w: %v", errSessionUnavailable, r)
		}
	}()

	session, ok := s.impl.Get(ctx, sessionKey).(*model.Session)
	if !ok {
		return nil, errSessionNotFound
	}

	return session, nil
}
