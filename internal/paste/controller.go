// Package paste implements submitting, reading, editing, deleting and
// listing pastes, including password protected pastes and open edit.
package paste

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/ghaggin/pastemate/internal/model"
	"github.com/ghaggin/pastemate/internal/repository"
	"github.com/google/uuid"
	"go.uber.org/fx"
	"go.uber.org/zap"
	"golang.org/x/crypto/bcrypt"
)

const (
	PerPage = 10

	maxTitleLen   = 100
	maxContentLen = 512 * 1024
)

var (
	ErrNotFound         = errors.New("paste not found")
	ErrPasswordRequired = errors.New("password is required")
	ErrPasswordWrong    = errors.New("password is incorrect")
	ErrNotOwner         = errors.New("you are not the owner of this paste")
	ErrEditClosed       = errors.New("you are not the owner of this paste, and open edit is not enabled for it")
	ErrInvalidInput     = errors.New("invalid input")
)

// Submission holds the fields of a new paste. Expiration of zero keeps the
// paste forever.
type Submission struct {
	Title      string
	Content    string
	Language   string
	Password   string
	OpenEdit   bool
	Expiration time.Duration
}

// Update holds edited fields. OpenEdit and Expiration are nil when
// unchanged; they are ignored for editors other than the owner.
type Update struct {
	Title      string
	Content    string
	Language   string
	OpenEdit   *bool
	Expiration *time.Duration
}

// Access carries the passwords available for a protected paste: the one the
// user used last, and the one sent with this request.
type Access struct {
	Remembered string
	Supplied   string
}

// Page is one page of a user's pastes. Number and Last are 1-based.
type Page struct {
	Items  []model.Paste
	Number int
	Last   int
}

func (p Page) HasNext() bool { return p.Number < p.Last }
func (p Page) HasPrev() bool { return p.Number > 1 }

type Controller struct {
	repo repository.PasteRepository
	log  *zap.Logger
	cost int
	now  func() time.Time
}

type ControllerParams struct {
	fx.In

	Logger *zap.Logger
	Repo   repository.PasteRepository
}

func NewController(p ControllerParams) (*Controller, error) {
	return &Controller{
		log:  p.Logger,
		repo: p.Repo,
		cost: bcrypt.DefaultCost,
		now:  time.Now,
	}, nil
}

func (c *Controller) Submit(ctx context.Context, owner *model.User, s Submission) (*model.Paste, error) {
	if err := validate(s.Title, s.Content); err != nil {
		return nil, err
	}
	if s.Expiration < 0 {
		return nil, fmt.Errorf("%w: negative expiration", ErrInvalidInput)
	}

	p := &model.Paste{
		UUID:        uuid.NewString(),
		OwnerID:     owner.ID,
		OwnerName:   owner.Name,
		Title:       strings.TrimSpace(s.Title),
		Content:     s.Content,
		Language:    strings.TrimSpace(s.Language),
		OpenEdit:    s.OpenEdit,
		SubmittedAt: c.now(),
	}
	if s.Expiration > 0 {
		expires := p.SubmittedAt.Add(s.Expiration)
		p.ExpiresAt = &expires
	}
	if s.Password != "" {
		hash, err := bcrypt.GenerateFromPassword([]byte(s.Password), c.cost)
		if err != nil {
			return nil, err
		}
		p.PasswordHash = string(hash)
	}

	if err := c.repo.AddPaste(ctx, p); err != nil {
		return nil, err
	}

	c.log.Info("paste submitted", zap.String("uuid", p.UUID), zap.Int("owner", owner.ID))
	return p, nil
}

// Get returns the paste after checking its password. remember is the
// password the caller should keep as the user's last used paste password,
// returned on error too.
func (c *Controller) Get(ctx context.Context, id string, a Access) (p *model.Paste, remember string, err error) {
	p, err = c.find(ctx, id)
	if err != nil {
		return nil, a.Remembered, err
	}

	remember, err = c.unlock(p, a)
	if err != nil {
		return nil, remember, err
	}
	return p, remember, nil
}

// Editable returns the paste when user may edit it: the password must match
// and user must own it or the paste must allow open edit.
func (c *Controller) Editable(ctx context.Context, id string, user *model.User, a Access) (p *model.Paste, remember string, err error) {
	p, remember, err = c.Get(ctx, id, a)
	if err != nil {
		return nil, remember, err
	}

	if p.OwnerID != user.ID && !p.OpenEdit {
		return nil, remember, ErrEditClosed
	}
	return p, remember, nil
}

// Edit applies u. Editors other than the owner cannot change open edit or
// the expiration. The paste password never changes.
func (c *Controller) Edit(ctx context.Context, id string, user *model.User, a Access, u Update) (*model.Paste, string, error) {
	p, remember, err := c.Editable(ctx, id, user, a)
	if err != nil {
		return nil, remember, err
	}
	if err := validate(u.Title, u.Content); err != nil {
		return nil, remember, err
	}

	p.Title = strings.TrimSpace(u.Title)
	p.Content = u.Content
	p.Language = strings.TrimSpace(u.Language)

	if p.OwnerID == user.ID {
		if u.OpenEdit != nil {
			p.OpenEdit = *u.OpenEdit
		}
		if u.Expiration != nil {
			switch {
			case *u.Expiration < 0:
				return nil, remember, fmt.Errorf("%w: negative expiration", ErrInvalidInput)
			case *u.Expiration == 0:
				p.ExpiresAt = nil
			default:
				expires := c.now().Add(*u.Expiration)
				p.ExpiresAt = &expires
			}
		}
	}

	edited := c.now()
	p.EditedAt = &edited

	if err := c.repo.UpdatePaste(ctx, p); err != nil {
		return nil, remember, err
	}

	c.log.Info("paste edited", zap.String("uuid", p.UUID), zap.Int("editor", user.ID))
	return p, remember, nil
}

// Delete removes a paste owned by user. No password is asked of the owner.
func (c *Controller) Delete(ctx context.Context, id string, user *model.User) error {
	p, err := c.find(ctx, id)
	if err != nil {
		return err
	}
	if p.OwnerID != user.ID {
		return ErrNotOwner
	}

	if err := c.repo.DeletePaste(ctx, id); err != nil {
		return err
	}

	c.log.Info("paste deleted", zap.String("uuid", id), zap.Int("owner", user.ID))
	return nil
}

// List returns page number of user's pastes, newest first.
func (c *Controller) List(ctx context.Context, user *model.User, number int) (Page, error) {
	if number < 1 {
		return Page{}, fmt.Errorf("%w: page %d", ErrInvalidInput, number)
	}

	items, total, err := c.repo.ListPastesByOwner(ctx, user.ID, (number-1)*PerPage, PerPage)
	if err != nil {
		return Page{}, err
	}

	last := (total + PerPage - 1) / PerPage
	if last < 1 {
		last = 1
	}
	return Page{Items: items, Number: number, Last: last}, nil
}

func (c *Controller) find(ctx context.Context, id string) (*model.Paste, error) {
	p, err := c.repo.GetPaste(ctx, id)
	if errors.Is(err, repository.ErrNotFound) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, err
	}
	if p.Expired(c.now()) {
		return nil, ErrNotFound
	}
	return p, nil
}

// unlock checks a protected paste. A remembered password that still fits is
// kept; otherwise it is dropped, and a supplied password is remembered even
// when wrong.
func (c *Controller) unlock(p *model.Paste, a Access) (string, error) {
	if !p.PasswordProtected() {
		return a.Remembered, nil
	}

	if a.Remembered != "" {
		if c.passwordMatches(p, a.Remembered) {
			return a.Remembered, nil
		}
	}

	if a.Supplied == "" {
		return "", ErrPasswordRequired
	}
	if !c.passwordMatches(p, a.Supplied) {
		return a.Supplied, ErrPasswordWrong
	}
	return a.Supplied, nil
}

func (c *Controller) passwordMatches(p *model.Paste, password string) bool {
	return bcrypt.CompareHashAndPassword([]byte(p.PasswordHash), []byte(password)) == nil
}

func validate(title, content string) error {
	if strings.TrimSpace(content) == "" {
		return fmt.Errorf("%w: content is required", ErrInvalidInput)
	}
	if len(content) > maxContentLen {
		return fmt.Errorf("%w: content is longer than %d bytes", ErrInvalidInput, maxContentLen)
	}
	if len(strings.TrimSpace(title)) > maxTitleLen {
		return fmt.Errorf("%w: title is longer than %d characters", ErrInvalidInput, maxTitleLen)
	}
	return nil
}
