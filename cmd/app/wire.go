//go:build wireinject
// +build wireinject

package main

import (
	"atlas/config"
	"atlas/internal/command"
	"atlas/internal/cron"
	"atlas/internal/database"
	"atlas/internal/handler"
	"atlas/internal/middleware"
	"atlas/internal/router"
	"atlas/internal/service"
	"atlas/internal/service/sync"
	"atlas/internal/telemetry"

	"github.com/google/wire"
	"go.uber.org/zap"
)

// wireApp init application.
func wireApp(*config.Configuration, *zap.Logger) (*App, func(), error) {
	panic(
		wire.Build(
			database.ProviderSet,
			service.ProviderSet,
			sync.ProviderSet,
			handler.ProviderSet,
			middleware.ProviderSet,
			router.ProviderSet,
			cron.ProviderSet,
			newHttpServer,
			newHttpClient,
			telemetry.ProviderSet,
			newApp,
		),
	)
}

// wireCommand init application.
func wireCommand(*config.Configuration, *zap.Logger) (*command.Command, func(), error) {
	panic(
		wire.Build(
			database.ProviderSet,
			service.ProviderSet,
			sync.ProviderSet,
			telemetry.ProviderSet,
			newHttpClient,
			command.ProviderSet,
		),
	)
}
