package web

import (
	"context"
	"errors"
	"net/http"

	"github.com/ghaggin/pastemate/internal/account"
	"github.com/ghaggin/pastemate/internal/config"
	"github.com/ghaggin/pastemate/internal/guard"
	"github.com/ghaggin/pastemate/internal/middleware"
	"github.com/ghaggin/pastemate/internal/navigation"
	"github.com/ghaggin/pastemate/internal/paste"
	"github.com/ghaggin/pastemate/internal/route"
	"github.com/go-chi/chi/v5"
	chimw "github.com/go-chi/chi/v5/middleware"
	"go.uber.org/fx"
	"go.uber.org/zap"
)

type Server struct {
	log      *zap.Logger
	server   *http.Server
	sessions *middleware.SessionManager
	accounts *account.Controller
	pastes   *paste.Controller
	table    *route.Table
	nav      *navigation.Navigator
	guard    *guard.Guard
}

type Params struct {
	fx.In

	Log       *zap.Logger
	Config    *config.Config
	Sessions  *middleware.SessionManager
	Accounts  *account.Controller
	Pastes    *paste.Controller
	Table     *route.Table
	Navigator *navigation.Navigator
	Guard     *guard.Guard
}

func New(p Params) (*Server, error) {
	s := &Server{
		log:      p.Log,
		sessions: p.Sessions,
		accounts: p.Accounts,
		pastes:   p.Pastes,
		table:    p.Table,
		nav:      p.Navigator,
		guard:    p.Guard,
	}

	s.server = &http.Server{
		Addr:    p.Config.Server.Addr(),
		Handler: s.routes(),
	}

	return s, nil
}

func (s *Server) routes() http.Handler {
	root := chi.NewRouter()
	root.Use(chimw.RequestID)
	root.Use(s.logRequests)
	root.Use(chimw.Recoverer)
	root.Use(s.sessions.Wrap)

	// Pages, each request is a navigation through the guard
	pages := map[string]func(http.ResponseWriter, *http.Request, route.Descriptor){
		"paste-list": s.listPastes,
		"paste-view": s.viewPaste,
		"paste-edit": s.editPaste,
	}
	for _, d := range s.table.All() {
		h, ok := pages[d.Name]
		if !ok {
			h = s.page
		}
		root.Get(d.Path, s.navigated(h))
	}

	// Paste actions post back to their page's path. Paste paths name their
	// parameter {uuid}.
	actions := []struct {
		name string
		h    func(http.ResponseWriter, *http.Request, route.Descriptor)
	}{
		{"paste-submit", s.submitPaste},
		{"paste-view", s.viewPaste},
		{"paste-edit", s.editPaste},
	}
	for _, a := range actions {
		if d, ok := s.table.ByName(a.name); ok {
			root.Post(d.Path, s.navigated(a.h))
		}
	}

	// Account actions
	root.Post("/account/signin", s.signIn)
	root.Post("/account/register", s.register)
	root.Post("/account/signout", s.signOut)

	root.Get("/api/auth/current_user", s.currentUser)

	return root
}

func (s *Server) Handler() http.Handler {
	return s.server.Handler
}

// RegisterHooks should be invoked by fx
func RegisterHooks(lc fx.Lifecycle, s *Server) {
	lc.Append(fx.Hook{
		OnStart: s.Start,
		OnStop:  s.server.Shutdown,
	})
}

func (s *Server) Start(_ context.Context) error {
	s.log.Info("starting server", zap.String("addr", s.server.Addr))
	go func() {
		err := s.server.ListenAndServe()
		if err != nil && !errors.Is(err, http.ErrServerClosed) {
			s.log.Error("error starting server", zap.Error(err))
		}
	}()
	return nil
}
