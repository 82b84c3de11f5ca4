package repository

import "go.uber.org/fx"

var Module = fx.Options(
	fx.Provide(
		NewJSON,
		func(r *JSON) Repository { return r },
		func(r *JSON) PasteRepository { return r },
	),
)
