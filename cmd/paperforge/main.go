package main

import (
	"github.com/bwmarrin/snowflake"
	"github.com/paperforge/paperforge/internal/authorization"
	"github.com/paperforge/paperforge/internal/clock"
	"github.com/paperforge/paperforge/internal/config"
	"github.com/paperforge/paperforge/internal/expiration"
	"github.com/paperforge/paperforge/internal/feature"
	"github.com/paperforge/paperforge/internal/logger"
	"github.com/paperforge/paperforge/internal/migration"
	"github.com/paperforge/paperforge/internal/observability"
	"github.com/paperforge/paperforge/internal/plan"
	"github.com/paperforge/paperforge/internal/providers/notification"
	"github.com/paperforge/paperforge/internal/ratelimit"
	"github.com/paperforge/paperforge/internal/server"
	"github.com/paperforge/paperforge/internal/subscription"
	"github.com/paperforge/paperforge/internal/usage"
	"github.com/paperforge/paperforge/pkg/db"
	"go.uber.org/fx"
)

func main() {
	app := fx.New(
		// Core infrastructure
		config.Module,
		logger.Module,
		observability.Module,
		fx.Provide(RegisterSnowflake),
		db.Module,
		clock.Module,
		migration.Module,

		// Functional domains
		authorization.Module,
		plan.Module,
		feature.Module,
		subscription.Module,
		usage.Module,
		notification.Module,
		ratelimit.Module,
		expiration.Module,

		server.Module,
	)
	app.Run()
}

func RegisterSnowflake() *snowflake.Node {
	node, err := snowflake.NewNode(1)
	if err != nil {
		panic(err)
	}
	return node
}
