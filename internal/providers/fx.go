package providers

import (
	"github.com/smallevents/gatekeeper/internal/providers/email"
	"github.com/smallevents/gatekeeper/internal/providers/qr"
	"go.uber.org/fx"
)

var Module = fx.Module("providers",
	email.Module,
	qr.Module,
)
