package account

import (
	"context"
	"errors"
	"fmt"
	"net/mail"
	"strings"

	"github.com/ghaggin/pastemate/internal/model"
	"github.com/ghaggin/pastemate/internal/repository"
	"go.uber.org/fx"
	"go.uber.org/zap"
	"golang.org/x/crypto/bcrypt"
)

const (
	minPasswordLen = 8
	maxNameLen     = 32
)

var (
	ErrInvalidCredentials = errors.New("invalid username or password")
	ErrInvalidInput       = errors.New("invalid input")
)

type Controller struct {
	repo repository.Repository
	log  *zap.Logger
	cost int
}

type ControllerParams struct {
	fx.In

	Logger *zap.Logger
	Repo   repository.Repository
}

func NewController(p ControllerParams) (*Controller, error) {
	return &Controller{
		log:  p.Logger,
		repo: p.Repo,
		cost: bcrypt.DefaultCost,
	}, nil
}

// ValidateLogin returns the user when password matches, and
// ErrInvalidCredentials for an unknown name or a wrong password.
func (c *Controller) ValidateLogin(ctx context.Context, username string, password string) (*model.User, error) {
	u, err := c.repo.GetUserByName(ctx, strings.TrimSpace(username))
	if errors.Is(err, repository.ErrNotFound) {
		return nil, ErrInvalidCredentials
	}
	if err != nil {
		return nil, err
	}

	err = bcrypt.CompareHashAndPassword([]byte(u.PasswordHash), []byte(password))
	if errors.Is(err, bcrypt.ErrMismatchedHashAndPassword) {
		return nil, ErrInvalidCredentials
	}
	if err != nil {
		return nil, err
	}

	return u, nil
}

func (c *Controller) Register(ctx context.Context, username, email, password string) (*model.User, error) {
	username = strings.TrimSpace(username)
	if username == "" || len(username) > maxNameLen {
		return nil, fmt.Errorf("%w: username must be 1 to %d characters", ErrInvalidInput, maxNameLen)
	}
	if len(password) < minPasswordLen {
		return nil, fmt.Errorf("%w: password must be at least %d characters", ErrInvalidInput, minPasswordLen)
	}
	if email != "" {
		if _, err := mail.ParseAddress(email); err != nil {
			return nil, fmt.Errorf("%w: email: %v", ErrInvalidInput, err)
		}
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(password), c.cost)
	if err != nil {
		return nil, err
	}

	user := &model.User{
		Name:         username,
		Email:        email,
		PasswordHash: string(hash),
	}
	if err := c.repo.AddUser(ctx, user); err != nil {
		return nil, err
	}

	c.log.Info("registered user", zap.Int("id", user.ID), zap.String("name", user.Name))
	return user, nil
}

func (c *Controller) GetUsers(ctx context.Context) ([]model.User, error) {
	return c.repo.GetUsers(ctx)
}
