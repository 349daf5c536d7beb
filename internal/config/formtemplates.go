package config

import (
	"errors"
	"log"
	"strings"
	"sync/atomic"

	"github.com/fsnotify/fsnotify"
	"github.com/smallevents/gatekeeper/internal/submission"
	"github.com/spf13/viper"
)

// FormTemplatesConfig maps each canonical submission field to the ordered
// list of provider field keys that may carry it. New form templates can be
// rolled out by editing templates.yml without a redeploy.
type FormTemplatesConfig struct {
	Aliases map[string][]string `mapstructure:"aliases"`
}

// FormTemplatesHolder serves the current alias tables; reloads atomically
// when the config file changes on disk.
type FormTemplatesHolder struct {
	current atomic.Value // holds FormTemplatesConfig
}

// NewFormTemplatesHolder loads templates.yml if present and falls back to
// the compiled-in alias tables otherwise.
func NewFormTemplatesHolder() (*FormTemplatesHolder, error) {
	v := viper.New()

	v.SetConfigName("templates")
	v.SetConfigType("yml")
	v.AddConfigPath("/var/lib/gatekeeper/config")
	v.AddConfigPath("/etc/gatekeeper")
	v.AddConfigPath(".")

	v.SetEnvPrefix("GATEKEEPER")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	fileFound := true
	if err := v.ReadInConfig(); err != nil {
		if _, ok := err.(viper.ConfigFileNotFoundError); !ok {
			return nil, err
		}
		fileFound = false
	}

	cfg := FormTemplatesConfig{Aliases: submission.DefaultAliases()}
	if fileFound {
		var fileCfg FormTemplatesConfig
		if err := v.UnmarshalKey("templates", &fileCfg); err != nil {
			return nil, err
		}
		cfg = mergeAliases(cfg, fileCfg)
		if err := validateFormTemplates(cfg); err != nil {
			return nil, err
		}
	}

	holder := &FormTemplatesHolder{}
	holder.current.Store(cfg)

	if fileFound {
		v.WatchConfig()
		v.OnConfigChange(func(e fsnotify.Event) {
			var fileCfg FormTemplatesConfig
			if err := v.UnmarshalKey("templates", &fileCfg); err != nil {
				log.Printf("[form-templates] reload failed: %v", err)
				return
			}
			updated := mergeAliases(FormTemplatesConfig{Aliases: submission.DefaultAliases()}, fileCfg)
			if err := validateFormTemplates(updated); err != nil {
				log.Printf("[form-templates] invalid config ignored: %v", err)
				return
			}
			holder.current.Store(updated)
			log.Printf("[form-templates] reloaded from %s", e.Name)
		})
	}

	return holder, nil
}

func (h *FormTemplatesHolder) Get() FormTemplatesConfig {
	return h.current.Load().(FormTemplatesConfig)
}

// Aliases returns the current canonical-field alias tables.
func (h *FormTemplatesHolder) Aliases() map[string][]string {
	return h.Get().Aliases
}

// mergeAliases overlays file-provided alias lists on top of the defaults;
// a field listed in the file replaces its default ordering entirely.
func mergeAliases(base, overlay FormTemplatesConfig) FormTemplatesConfig {
	merged := FormTemplatesConfig{Aliases: map[string][]string{}}
	for field, keys := range base.Aliases {
		merged.Aliases[field] = keys
	}
	for field, keys := range overlay.Aliases {
		if len(keys) == 0 {
			continue
		}
		merged.Aliases[strings.TrimSpace(field)] = keys
	}
	return merged
}

func validateFormTemplates(cfg FormTemplatesConfig) error {
	if len(cfg.Aliases) == 0 {
		return errors.New("templates.aliases cannot be empty")
	}
	for field, keys := range cfg.Aliases {
		if len(keys) == 0 {
			return errors.New("templates.aliases." + field + " cannot be empty")
		}
	}
	return nil
}
