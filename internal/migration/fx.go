package migration

import (
	"github.com/smallevents/gatekeeper/internal/config"
	eventdomain "github.com/smallevents/gatekeeper/internal/event/domain"
	ticketdomain "github.com/smallevents/gatekeeper/internal/ticket/domain"
	userdomain "github.com/smallevents/gatekeeper/internal/user/domain"
	"go.uber.org/fx"
	"gorm.io/gorm"
)

var Module = fx.Module("migrations",
	fx.Invoke(func(conn *gorm.DB, cfg config.Config) error {
		if cfg.DBType != "postgres" {
			// sqlite and mysql are dev conveniences; let gorm derive the
			// schema instead of maintaining per-dialect migration files.
			return conn.AutoMigrate(
				&eventdomain.Event{},
				&userdomain.User{},
				&ticketdomain.Ticket{},
			)
		}

		sqlDB, err := conn.DB()
		if err != nil {
			return err
		}
		return RunMigrations(sqlDB)
	}),
)
