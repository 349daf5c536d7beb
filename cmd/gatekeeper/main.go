package main

import (
	"github.com/bwmarrin/snowflake"
	"github.com/smallevents/gatekeeper/internal/clock"
	"github.com/smallevents/gatekeeper/internal/migration"
	"github.com/smallevents/gatekeeper/internal/observability"
	"github.com/smallevents/gatekeeper/internal/server"
	"github.com/smallevents/gatekeeper/pkg/db"
	"go.uber.org/fx"
)

func main() {
	app := fx.New(
		observability.Module,
		fx.Provide(RegisterSnowflake),
		db.Module,
		clock.Module,
		migration.Module,
		server.Module,
	)

	app.Run()
}

func RegisterSnowflake() (*snowflake.Node, error) {
	return snowflake.NewNode(1)
}
