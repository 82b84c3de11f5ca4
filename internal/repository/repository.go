package repository

import (
	"context"
	"errors"

	"github.com/ghaggin/pastemate/internal/model"
)

var (
	ErrNotFound = errors.New("not found")
	ErrExists   = errors.New("already exists")
)

type Repository interface {
	GetUserByName(ctx context.Context, name string) (*model.User, error)
	GetUserByID(ctx context.Context, id int) (*model.User, error)
	AddUser(ctx context.Context, user *model.User) error
	GetUsers(ctx context.Context) ([]model.User, error)
}

type PasteRepository interface {
	AddPaste(ctx context.Context, paste *model.Paste) error
	GetPaste(ctx context.Context, uuid string) (*model.Paste, error)
	UpdatePaste(ctx context.Context, paste *model.Paste) error
	DeletePaste(ctx context.Context, uuid string) error
	// ListPastesByOwner returns one window of the owner's pastes, newest
	// first, and the owner's total paste count.
	ListPastesByOwner(ctx context.Context, ownerID, offset, limit int) ([]model.Paste, int, error)
}
