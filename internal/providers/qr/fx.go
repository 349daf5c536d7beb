package qr

import "go.uber.org/fx"

var Module = fx.Module("providers.qr",
	fx.Provide(New),
)
