// Package guard decides whether a navigation to a route may proceed or must
// be redirected to the sign-in page.
//
// The decision reads two inputs: the target route's requiresAuth metadata
// and the current session user. It never writes session state, performs no
// I/O of its own and does not log. An error while reading the session is
// treated as "no user".
package guard

import (
	"context"
	"fmt"

	"github.com/ghaggin/pastemate/internal/model"
	"github.com/ghaggin/pastemate/internal/route"
)

const (
	DefaultSignInPath = "/account/signin"
)

// SessionState is the read side of the session store. A nil user with a nil
// error means nobody is signed in.
type SessionState interface {
	CurrentUser(ctx context.Context) (*model.User, error)
}

// Decision is the outcome of one navigation check. The zero value proceeds.
type Decision struct {
	Redirect string
	Abort    bool
}

func Proceed() Decision {
	return Decision{}
}

func RedirectTo(path string) Decision {
	return Decision{Redirect: path}
}

// Abort cancels the navigation. The guard never issues it; other hooks may.
func Abort() Decision {
	return Decision{Abort: true}
}

func (d Decision) Proceeds() bool {
	return d.Redirect == "" && !d.Abort
}

func (d Decision) String() string {
	switch {
	case d.Abort:
		return "abort"
	case d.Redirect != "":
		return fmt.Sprintf("redirect(%s)", d.Redirect)
	}
	return "proceed"
}

// Continuation resolves a pending navigation. It must be called exactly once.
type Continuation func(Decision)

type Option func(*Guard)

func WithSignInPath(path string) Option {
	return func(g *Guard) {
		if path != "" {
			g.signInPath = path
		}
	}
}

// WithDenyByDefault makes routes without a requiresAuth key protected.
func WithDenyByDefault(deny bool) Option {
	return func(g *Guard) {
		g.denyByDefault = deny
	}
}

// Guard holds no mutable state after New and may be called concurrently.
type Guard struct {
	session       SessionState
	signInPath    string
	denyByDefault bool
}

func New(session SessionState, opts ...Option) *Guard {
	g := &Guard{
		session:    session,
		signInPath: DefaultSignInPath,
	}
	for _, opt := range opts {
		opt(g)
	}
	return g
}

func (g *Guard) SignInPath() string {
	return g.signInPath
}

// RequiresAuth reports whether d is protected under this guard's default.
func (g *Guard) RequiresAuth(d route.Descriptor) bool {
	if d.Meta.RequiresAuth == nil {
		return g.denyByDefault
	}
	return *d.Meta.RequiresAuth
}

func (g *Guard) Decide(ctx context.Context, to route.Descriptor) Decision {
	if g.RequiresAuth(to) && !g.signedIn(ctx) {
		return RedirectTo(g.signInPath)
	}
	return Proceed()
}

// BeforeEach is the navigation hook form of Decide. from does not take part
// in the decision.
func (g *Guard) BeforeEach(ctx context.Context, to, from route.Descriptor, next Continuation) {
	next(g.Decide(ctx, to))
}

func (g *Guard) signedIn(ctx context.Context) (ok bool) {
	if g.session == nil {
		return false
	}

	defer func() {
		if recover() != nil {
			ok = false
		}
	}()

	user, err := g.session.CurrentUser(ctx)
	return err == nil && user != nil
}
