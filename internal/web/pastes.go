package web

import (
	"context"
	"errors"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/ghaggin/pastemate/internal/model"
	"github.com/ghaggin/pastemate/internal/paste"
	"github.com/ghaggin/pastemate/internal/route"
	"github.com/ghaggin/pastemate/internal/template"
	"github.com/go-chi/chi/v5"
	"go.uber.org/zap"
)

func (s *Server) submitPaste(w http.ResponseWriter, r *http.Request, d route.Descriptor) {
	user, ok := s.requireUser(w, r)
	if !ok {
		return
	}
	if err := r.ParseForm(); err != nil {
		http.Error(w, http.StatusText(http.StatusBadRequest), http.StatusBadRequest)
		return
	}

	expiration, err := formMinutes(r.PostForm.Get("expiration"))
	if err != nil {
		s.render(w, r, http.StatusBadRequest, d, &template.Data{Error: "expiration must be a number of minutes"})
		return
	}

	password := r.PostForm.Get("password")
	p, err := s.pastes.Submit(r.Context(), user, paste.Submission{
		Title:      r.PostForm.Get("title"),
		Content:    r.PostForm.Get("content"),
		Language:   r.PostForm.Get("language"),
		Password:   password,
		OpenEdit:   r.PostForm.Get("open_edit") != "",
		Expiration: expiration,
	})
	if err != nil {
		s.pasteError(w, r, d, err)
		return
	}

	s.rememberPastePassword(r.Context(), password)
	http.Redirect(w, r, "/paste/view/"+p.UUID, http.StatusSeeOther)
}

func (s *Server) listPastes(w http.ResponseWriter, r *http.Request, d route.Descriptor) {
	user, ok := s.requireUser(w, r)
	if !ok {
		return
	}

	number := 1
	if v := r.URL.Query().Get("page"); v != "" {
		n, err := strconv.Atoi(v)
		if err != nil {
			s.render(w, r, http.StatusBadRequest, d, &template.Data{Error: "page must be a number"})
			return
		}
		number = n
	}

	page, err := s.pastes.List(r.Context(), user, number)
	if err != nil {
		s.pasteError(w, r, d, err)
		return
	}

	data := &template.Data{
		Pastes:   page.Items,
		LastPage: page.Last,
	}
	if page.HasPrev() {
		data.PrevPage = page.Number - 1
	}
	if page.HasNext() {
		data.NextPage = page.Number + 1
	}
	s.render(w, r, http.StatusOK, d, data)
}

// viewPaste serves GET, and POST with the paste password.
func (s *Server) viewPaste(w http.ResponseWriter, r *http.Request, d route.Descriptor) {
	user, ok := s.requireUser(w, r)
	if !ok {
		return
	}
	access, ok := s.pasteAccess(w, r)
	if !ok {
		return
	}

	p, remember, err := s.pastes.Get(r.Context(), chi.URLParam(r, "uuid"), access)
	s.rememberPastePassword(r.Context(), remember)
	if err != nil {
		s.pasteError(w, r, d, err)
		return
	}

	s.render(w, r, http.StatusOK, d, &template.Data{
		Paste:   p,
		IsOwner: p.OwnerID == user.ID,
	})
}

// editPaste serves the edit form on GET. POST carries an action: unlock
// with the paste password, save the edit, or delete the paste.
func (s *Server) editPaste(w http.ResponseWriter, r *http.Request, d route.Descriptor) {
	user, ok := s.requireUser(w, r)
	if !ok {
		return
	}
	access, ok := s.pasteAccess(w, r)
	if !ok {
		return
	}

	ctx := r.Context()
	id := chi.URLParam(r, "uuid")

	switch r.PostForm.Get("action") {
	case "delete":
		if err := s.pastes.Delete(ctx, id, user); err != nil {
			s.pasteError(w, r, d, err)
			return
		}
		http.Redirect(w, r, "/paste/list", http.StatusSeeOther)

	case "save":
		update, err := formUpdate(r)
		if err != nil {
			s.render(w, r, http.StatusBadRequest, d, &template.Data{Error: "expiration must be a number of minutes"})
			return
		}

		p, remember, err := s.pastes.Edit(ctx, id, user, access, update)
		s.rememberPastePassword(ctx, remember)
		if err != nil {
			s.pasteError(w, r, d, err)
			return
		}
		http.Redirect(w, r, "/paste/view/"+p.UUID, http.StatusSeeOther)

	default:
		p, remember, err := s.pastes.Editable(ctx, id, user, access)
		s.rememberPastePassword(ctx, remember)
		if err != nil {
			s.pasteError(w, r, d, err)
			return
		}
		s.render(w, r, http.StatusOK, d, &template.Data{
			Paste:   p,
			IsOwner: p.OwnerID == user.ID,
		})
	}
}

func (s *Server) pasteError(w http.ResponseWriter, r *http.Request, d route.Descriptor, err error) {
	switch {
	case errors.Is(err, paste.ErrNotFound):
		http.NotFound(w, r)
	case errors.Is(err, paste.ErrPasswordRequired):
		s.render(w, r, http.StatusUnauthorized, d, &template.Data{NeedPassword: true})
	case errors.Is(err, paste.ErrPasswordWrong):
		s.render(w, r, http.StatusUnauthorized, d, &template.Data{NeedPassword: true, Error: err.Error()})
	case errors.Is(err, paste.ErrEditClosed), errors.Is(err, paste.ErrNotOwner):
		http.Error(w, err.Error(), http.StatusForbidden)
	case errors.Is(err, paste.ErrInvalidInput):
		s.render(w, r, http.StatusBadRequest, d, &template.Data{Error: err.Error()})
	default:
		s.log.Error("paste request failed", zap.String("path", r.URL.Path), zap.Error(err))
		http.Error(w, http.StatusText(http.StatusInternalServerError), http.StatusInternalServerError)
	}
}

// requireUser covers routes configured without requiresAuth; the guard
// already sends anonymous users away from protected ones.
func (s *Server) requireUser(w http.ResponseWriter, r *http.Request) (*model.User, bool) {
	user := s.user(r)
	if user == nil {
		http.Redirect(w, r, s.redirectTarget(r, s.guard.SignInPath()), http.StatusSeeOther)
		return nil, false
	}
	return user, true
}

func (s *Server) pasteAccess(w http.ResponseWriter, r *http.Request) (paste.Access, bool) {
	a := paste.Access{Remembered: s.sessions.PastePassword(r.Context())}
	if r.Method != http.MethodPost {
		return a, true
	}

	if err := r.ParseForm(); err != nil {
		http.Error(w, http.StatusText(http.StatusBadRequest), http.StatusBadRequest)
		return a, false
	}
	a.Supplied = r.PostForm.Get("password")
	return a, true
}

func (s *Server) rememberPastePassword(ctx context.Context, password string) {
	if err := s.sessions.SetPastePassword(ctx, password); err != nil {
		s.log.Warn("failed remembering paste password", zap.Error(err))
	}
}

func formUpdate(r *http.Request) (paste.Update, error) {
	openEdit := r.PostForm.Get("open_edit") != ""
	u := paste.Update{
		Title:    r.PostForm.Get("title"),
		Content:  r.PostForm.Get("content"),
		Language: r.PostForm.Get("language"),
		OpenEdit: &openEdit,
	}

	if v := r.PostForm.Get("expiration"); strings.TrimSpace(v) != "" {
		expiration, err := formMinutes(v)
		if err != nil {
			return paste.Update{}, err
		}
		u.Expiration = &expiration
	}
	return u, nil
}

// formMinutes parses a minute count; empty means zero.
func formMinutes(v string) (time.Duration, error) {
	v = strings.TrimSpace(v)
	if v == "" {
		return 0, nil
	}
	n, err := strconv.Atoi(v)
	if err != nil {
		return 0, err
	}
	return time.Duration(n) * time.Minute, nil
}
