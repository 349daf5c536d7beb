package forms

import (
	"github.com/smallevents/gatekeeper/internal/config"
	"github.com/smallevents/gatekeeper/internal/forms/client"
	"github.com/smallevents/gatekeeper/internal/forms/domain"
	"github.com/smallevents/gatekeeper/internal/forms/sync"
	"go.uber.org/fx"
)

var Module = fx.Module("forms",
	fx.Provide(provideSource),
	fx.Invoke(sync.New),
)

// provideSource is nil when no provider is configured; the sync treats a
// nil source as "disabled".
func provideSource(cfg config.Config) domain.Source {
	if cfg.Forms.BaseURL == "" || cfg.Forms.APIKey == "" {
		return nil
	}
	return client.New(cfg.Forms.BaseURL, cfg.Forms.APIKey)
}
