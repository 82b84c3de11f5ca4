package main

import (
	"flag"

	"github.com/ghaggin/pastemate/internal/account"
	"github.com/ghaggin/pastemate/internal/config"
	"github.com/ghaggin/pastemate/internal/middleware"
	"github.com/ghaggin/pastemate/internal/paste"
	"github.com/ghaggin/pastemate/internal/repository"
	"github.com/ghaggin/pastemate/internal/web"
	"go.uber.org/fx"
	"go.uber.org/zap"
)

func main() {
	var configPath = flag.String("config", "", "path to yaml config file")
	flag.Parse()

	newConfigPath := func() config.Path {
		return config.Path(*configPath)
	}

	app := fx.New(
		fx.Provide(
			zap.NewDevelopment,
			newConfigPath,
			config.New,
			middleware.NewSessionManager,
		),
		repository.Module,
		account.Module,
		paste.Module,
		web.Module,
		fx.Invoke(web.RegisterHooks),
	)

	app.Run()
}
