package event

import (
	"github.com/smallevents/gatekeeper/internal/event/repository"
	"github.com/smallevents/gatekeeper/internal/event/service"
	"go.uber.org/fx"
)

var Module = fx.Module("event.service",
	fx.Provide(repository.Provide),
	fx.Provide(service.New),
)
