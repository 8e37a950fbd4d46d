package fx

import (
	"munchkin-tracker/internal/config"
	"munchkin-tracker/internal/database"
	"munchkin-tracker/internal/logger"
	"munchkin-tracker/internal/realtime"
	"munchkin-tracker/internal/repository"
	"munchkin-tracker/internal/server"
	"munchkin-tracker/internal/service"
	"munchkin-tracker/internal/store"

	"go.uber.org/fx"
)

var Module = fx.Options(
	fx.Provide(logger.New),
	fx.Provide(config.Load),
	fx.Provide(database.New),
	fx.Provide(store.New),
	// repos
	fx.Provide(repository.NewRosterRepository),
	fx.Provide(repository.NewHistoryRepository),
	fx.Provide(func(r *repository.RosterRepository) service.RosterRepo { return r }),
	fx.Provide(func(r *repository.HistoryRepository) service.HistoryRepo { return r }),
	fx.Provide(func(r *repository.HistoryRepository) service.HistoryWriter { return r }),
	// svc
	fx.Provide(service.NewSessionService),
	fx.Provide(service.NewRosterService),
	fx.Provide(service.NewHistoryService),
	fx.Provide(service.NewStatsService),
	// transport
	fx.Provide(realtime.NewHub),
	fx.Provide(server.NewServer),
)
