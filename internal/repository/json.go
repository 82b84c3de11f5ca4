package repository

import (
	"context"
	"encoding/json"
	"errors"
	"os"
	"path/filepath"
	"strings"
	"sync"

	"github.com/ghaggin/pastemate/internal/config"
	"github.com/ghaggin/pastemate/internal/model"
	"go.uber.org/fx"
	"go.uber.org/zap"
)

var (
	errTableFileIsDir = errors.New("table file is dir")
)

type Data struct {
	Users  []model.User  `json:"users"`
	Pastes []model.Paste `json:"pastes"`
}

// JSON keeps users and pastes in one file, read at construction and written
// when fx stops.
type JSON struct {
	path string
	log  *zap.Logger

	mu   sync.RWMutex
	data *Data
}

type jsonParams struct {
	fx.In

	LC     fx.Lifecycle
	Config *config.Config
	Log    *zap.Logger
}

func NewJSON(p jsonParams) (*JSON, error) {
	r := newJSONRepo(p.Config.JSONRepo.Path, p.Log)

	p.LC.Append(fx.Hook{
		OnStop: r.stop,
	})

	return r, nil
}

func newJSONRepo(path string, log *zap.Logger) *JSON {
	r := &JSON{
		path: path,
		log:  log,
		data: &Data{},
	}

	err := r.readfile()
	if err != nil {
		// only log, data will be empty and will overwrite when
		// the service is stopped
		r.log.Warn("failed reading json repo data file", zap.String("path", path), zap.Error(err))
	}

	return r
}

func (r *JSON) stop(_ context.Context) error {
	return r.writefile()
}

func (r *JSON) readfile() error {
	finfo, err := os.Stat(r.path)
	if err != nil {
		return err
	}

	if finfo.IsDir() {
		return errTableFileIsDir
	}

	f, err := os.Open(r.path)
	if err != nil {
		return err
	}
	defer f.Close()

	return json.NewDecoder(f).Decode(&r.data)
}

func (r *JSON) writefile() error {
	r.mu.RLock()
	b, err := json.MarshalIndent(r.data, "", "  ")
	r.mu.RUnlock()
	if err != nil {
		return err
	}

	if err := os.MkdirAll(filepath.Dir(r.path), 0o755); err != nil {
		return err
	}

	return os.WriteFile(r.path, b, 0o600)
}

func (r *JSON) GetUserByName(_ context.Context, name string) (*model.User, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	for _, u := range r.data.Users {
		if strings.EqualFold(u.Name, name) {
			return &u, nil
		}
	}

	return nil, ErrNotFound
}

func (r *JSON) GetUserByID(_ context.Context, id int) (*model.User, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	for _, u := range r.data.Users {
		if u.ID == id {
			return &u, nil
		}
	}

	return nil, ErrNotFound
}

func (r *JSON) AddUser(_ context.Context, user *model.User) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	for _, u := range r.data.Users {
		if strings.EqualFold(u.Name, user.Name) {
			return ErrExists
		}
	}

	user.ID = 1
	l := len(r.data.Users)
	if l > 0 {
		user.ID = r.data.Users[l-1].ID + 1
	}

	r.data.Users = append(r.data.Users, *user)
	return nil
}

func (r *JSON) GetUsers(_ context.Context) ([]model.User, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	users := make([]model.User, len(r.data.Users))
	copy(users, r.data.Users)
	return users, nil
}

func (r *JSON) AddPaste(_ context.Context, paste *model.Paste) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	for _, p := range r.data.Pastes {
		if p.UUID == paste.UUID {
			return ErrExists
		}
	}

	r.data.Pastes = append(r.data.Pastes, *paste)
	return nil
}

func (r *JSON) GetPaste(_ context.Context, uuid string) (*model.Paste, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	for _, p := range r.data.Pastes {
		if p.UUID == uuid {
			return &p, nil
		}
	}

	return nil, ErrNotFound
}

func (r *JSON) UpdatePaste(_ context.Context, paste *model.Paste) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	for i := range r.data.Pastes {
		if r.data.Pastes[i].UUID == paste.UUID {
			r.data.Pastes[i] = *paste
			return nil
		}
	}

	return ErrNotFound
}

func (r *JSON) DeletePaste(_ context.Context, uuid string) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	for i := range r.data.Pastes {
		if r.data.Pastes[i].UUID == uuid {
			r.data.Pastes = append(r.data.Pastes[:i], r.data.Pastes[i+1:]...)
			return nil
		}
	}

	return ErrNotFound
}

func (r *JSON) ListPastesByOwner(_ context.Context, ownerID, offset, limit int) ([]model.Paste, int, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	// pastes are appended in submission order, walk backwards for newest first
	var owned []model.Paste
	for i := len(r.data.Pastes) - 1; i >= 0; i-- {
		if r.data.Pastes[i].OwnerID == ownerID {
			owned = append(owned, r.data.Pastes[i])
		}
	}

	total := len(owned)
	if offset >= total || limit <= 0 {
		return []model.Paste{}, total, nil
	}

	end := offset + limit
	if end > total {
		end = total
	}
	return owned[offset:end], total, nil
}
