package ticket

import (
	"github.com/smallevents/gatekeeper/internal/ticket/repository"
	"github.com/smallevents/gatekeeper/internal/ticket/service"
	"go.uber.org/fx"
)

var Module = fx.Module("ticket.service",
	fx.Provide(repository.Provide),
	fx.Provide(service.New),
)
