package web

import (
	"errors"
	"fmt"

	"github.com/ghaggin/pastemate/internal/config"
	"github.com/ghaggin/pastemate/internal/guard"
	"github.com/ghaggin/pastemate/internal/middleware"
	"github.com/ghaggin/pastemate/internal/navigation"
	"github.com/ghaggin/pastemate/internal/route"
	"go.uber.org/fx"
	"go.uber.org/zap"
)

var (
	errSignInProtected = errors.New("sign-in route requires auth")
)

var Module = fx.Options(
	fx.Provide(
		NewRouteTable,
		NewGuard,
		NewNavigator,
		New,
	),
)

// NewRouteTable builds the table from config. The sign-in path must resolve
// to a route the guard lets anyone reach, or every guard redirect would end
// in a 404 or a redirect loop.
func NewRouteTable(cfg *config.Config, g *guard.Guard) (*route.Table, error) {
	table, err := route.NewTable(cfg.Routes)
	if err != nil {
		return nil, err
	}

	signin, ok := table.Lookup(g.SignInPath())
	if !ok {
		return nil, fmt.Errorf("%w: sign-in path %s", navigation.ErrRouteNotFound, g.SignInPath())
	}
	if g.RequiresAuth(signin) {
		return nil, fmt.Errorf("%w: %s", errSignInProtected, signin.Path)
	}
	return table, nil
}

func NewGuard(cfg *config.Config, sessions *middleware.SessionManager) *guard.Guard {
	return guard.New(sessions,
		guard.WithSignInPath(cfg.Guard.SignInPath),
		guard.WithDenyByDefault(cfg.Guard.DenyByDefault),
	)
}

// NewNavigator returns a navigator with the guard installed as its first
// before-each hook.
func NewNavigator(table *route.Table, g *guard.Guard, log *zap.Logger) *navigation.Navigator {
	nav := navigation.New(table, log)
	nav.BeforeEach(g.BeforeEach)
	return nav
}
