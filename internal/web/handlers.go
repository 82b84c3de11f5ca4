package web

import (
	"encoding/json"
	"errors"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/ghaggin/pastemate/internal/account"
	"github.com/ghaggin/pastemate/internal/model"
	"github.com/ghaggin/pastemate/internal/navigation"
	"github.com/ghaggin/pastemate/internal/repository"
	"github.com/ghaggin/pastemate/internal/route"
	"github.com/ghaggin/pastemate/internal/template"
	chimw "github.com/go-chi/chi/v5/middleware"
	"go.uber.org/zap"
)

const (
	redirectParam = "redirect"
)

// navigated runs the request path through the navigator and calls h only
// when the navigation commits without a redirect.
func (s *Server) navigated(h func(w http.ResponseWriter, r *http.Request, d route.Descriptor)) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ctx := r.Context()

		res, err := s.nav.Navigate(ctx, s.sessions.LastRoute(ctx), r.URL.Path)
		if errors.Is(err, navigation.ErrRouteNotFound) {
			http.NotFound(w, r)
			return
		}
		if err != nil {
			s.log.Error("navigation failed", zap.String("path", r.URL.Path), zap.Error(err))
			http.Error(w, http.StatusText(http.StatusInternalServerError), http.StatusInternalServerError)
			return
		}

		if res.Redirected() {
			http.Redirect(w, r, s.redirectTarget(r, res.Path), http.StatusSeeOther)
			return
		}

		if r.Method == http.MethodGet {
			if err := s.sessions.SetLastRoute(ctx, res.Path); err != nil {
				s.log.Warn("failed recording last route", zap.Error(err))
			}
		}

		h(w, r, res.Route)
	}
}

func (s *Server) page(w http.ResponseWriter, r *http.Request, d route.Descriptor) {
	s.render(w, r, http.StatusOK, d, &template.Data{})
}

// redirectTarget keeps the originally requested URI on redirects to the
// sign-in page so the user lands there after signing in.
func (s *Server) redirectTarget(r *http.Request, path string) string {
	if path != s.guard.SignInPath() {
		return path
	}
	return path + "?" + url.Values{redirectParam: {r.URL.RequestURI()}}.Encode()
}

var pageTemplates = map[string]string{
	"signin":       "signin.html",
	"register":     "register.html",
	"paste-submit": "paste_submit.html",
	"paste-list":   "paste_list.html",
	"paste-view":   "paste_view.html",
	"paste-edit":   "paste_edit.html",
}

// render fills the fields every page shares into data and writes the
// template for d.
func (s *Server) render(w http.ResponseWriter, r *http.Request, status int, d route.Descriptor, data *template.Data) {
	data.PageTitle = d.Meta.Title
	if data.PageTitle == "" {
		data.PageTitle = d.Name
	}
	data.Path = r.URL.Path
	data.Protected = s.guard.RequiresAuth(d)
	data.Redirect = localRedirect(r.URL.Query().Get(redirectParam))
	if user := s.user(r); user != nil {
		data.UserName = user.Name
	}

	tmpl, ok := pageTemplates[d.Name]
	if !ok {
		tmpl = "page.html"
	}

	if err := template.Render(w, status, tmpl, data); err != nil {
		s.log.Error("failed rendering page", zap.String("template", tmpl), zap.Error(err))
		http.Error(w, http.StatusText(http.StatusInternalServerError), http.StatusInternalServerError)
	}
}

func (s *Server) user(r *http.Request) *model.User {
	user, err := s.sessions.CurrentUser(r.Context())
	if err != nil {
		return nil
	}
	return user
}

func (s *Server) signIn(w http.ResponseWriter, r *http.Request) {
	if err := r.ParseForm(); err != nil {
		http.Error(w, http.StatusText(http.StatusBadRequest), http.StatusBadRequest)
		return
	}

	user, err := s.accounts.ValidateLogin(r.Context(), r.PostForm.Get("username"), r.PostForm.Get("password"))
	if errors.Is(err, account.ErrInvalidCredentials) {
		s.renderNamed(w, r, http.StatusUnauthorized, "signin", err.Error())
		return
	}
	if err != nil {
		s.log.Error("failed validating login", zap.Error(err))
		http.Error(w, http.StatusText(http.StatusInternalServerError), http.StatusInternalServerError)
		return
	}

	if !s.authenticate(w, r, user) {
		return
	}

	target := localRedirect(r.URL.Query().Get(redirectParam))
	if target == "" {
		target = "/"
	}
	http.Redirect(w, r, target, http.StatusSeeOther)
}

func (s *Server) register(w http.ResponseWriter, r *http.Request) {
	if err := r.ParseForm(); err != nil {
		http.Error(w, http.StatusText(http.StatusBadRequest), http.StatusBadRequest)
		return
	}

	user, err := s.accounts.Register(r.Context(),
		r.PostForm.Get("username"),
		r.PostForm.Get("email"),
		r.PostForm.Get("password"),
	)
	switch {
	case errors.Is(err, account.ErrInvalidInput):
		s.renderNamed(w, r, http.StatusBadRequest, "register", err.Error())
		return
	case errors.Is(err, repository.ErrExists):
		s.renderNamed(w, r, http.StatusConflict, "register", "username is taken")
		return
	case err != nil:
		s.log.Error("failed registering user", zap.Error(err))
		http.Error(w, http.StatusText(http.StatusInternalServerError), http.StatusInternalServerError)
		return
	}

	if !s.authenticate(w, r, user) {
		return
	}
	http.Redirect(w, r, "/", http.StatusSeeOther)
}

func (s *Server) signOut(w http.ResponseWriter, r *http.Request) {
	if err := s.sessions.Clear(r.Context()); err != nil {
		s.log.Error("failed clearing session", zap.Error(err))
		http.Error(w, http.StatusText(http.StatusInternalServerError), http.StatusInternalServerError)
		return
	}
	http.Redirect(w, r, "/", http.StatusSeeOther)
}

type currentUserResponse struct {
	ID   int    `json:"id"`
	Name string `json:"name"`
}

func (s *Server) currentUser(w http.ResponseWriter, r *http.Request) {
	user, err := s.sessions.CurrentUser(r.Context())
	if err != nil || user == nil {
		http.Error(w, http.StatusText(http.StatusUnauthorized), http.StatusUnauthorized)
		return
	}

	w.Header().Set("Content-Type", "application/json")
	err = json.NewEncoder(w).Encode(currentUserResponse{ID: user.ID, Name: user.Name})
	if err != nil {
		s.log.Warn("failed writing current user", zap.Error(err))
	}
}

func (s *Server) authenticate(w http.ResponseWriter, r *http.Request, user *model.User) bool {
	if err := s.sessions.SetAuthenticated(r.Context(), user); err != nil {
		s.log.Error("failed setting session", zap.Error(err))
		http.Error(w, http.StatusText(http.StatusInternalServerError), http.StatusInternalServerError)
		return false
	}
	s.log.Info("user signed in", zap.Int("id", user.ID), zap.String("name", user.Name))
	return true
}

func (s *Server) renderNamed(w http.ResponseWriter, r *http.Request, status int, name, errMsg string) {
	d, ok := s.table.ByName(name)
	if !ok {
		d = route.Descriptor{Name: name, Path: r.URL.Path}
	}
	s.render(w, r, status, d, &template.Data{Error: errMsg})
}

// localRedirect returns target when it is a path on this host, else "".
// Browsers drop tabs and newlines from URLs, so "/\t/host" would leave the
// site; any control character is refused.
func localRedirect(target string) string {
	for _, c := range target {
		if c < 0x20 || c == 0x7f {
			return ""
		}
	}
	if !strings.HasPrefix(target, "/") || strings.HasPrefix(target, "//") || strings.HasPrefix(target, "/\\") {
		return ""
	}

	u, err := url.Parse(target)
	if err != nil || u.Scheme != "" || u.Host != "" || u.User != nil {
		return ""
	}
	return target
}

func (s *Server) logRequests(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		ww := chimw.NewWrapResponseWriter(w, r.ProtoMajor)
		start := time.Now()

		next.ServeHTTP(ww, r)

		s.log.Debug("request",
			zap.String("request_id", chimw.GetReqID(r.Context())),
			zap.String("method", r.Method),
			zap.String("path", r.URL.Path),
			zap.Int("status", ww.Status()),
			zap.Duration("duration", time.Since(start)),
		)
	})
}
