package user

import (
	"github.com/smallevents/gatekeeper/internal/user/repository"
	"github.com/smallevents/gatekeeper/internal/user/service"
	"go.uber.org/fx"
)

var Module = fx.Module("user.service",
	fx.Provide(repository.Provide),
	fx.Provide(service.New),
)
