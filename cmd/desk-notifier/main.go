// desk-notifier mantiene abierto el stream de notificaciones de la API y guarda
// el historial de avisos del operador.
package main

import (
	"context"
	"os/signal"
	"syscall"

	"github.com/jhoicas/calldesk-api/internal/client/notifications"
	"github.com/jhoicas/calldesk-api/internal/client/stream"
	"github.com/jhoicas/calldesk-api/internal/infrastructure/postgres"
	"github.com/jhoicas/calldesk-api/internal/infrastructure/redis"
	"github.com/jhoicas/calldesk-api/pkg/config"
	"github.com/jhoicas/calldesk-api/pkg/logger"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		panic("cargar configuración: " + err.Error())
	}

	log := logger.New(logger.Config{
		Env:   cfg.App.Env,
		Level: cfg.App.LogLevel,
		App:   "desk-notifier",
	})

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	owner := cfg.Desk.UserEmail

	var storage notifications.Storage
	switch cfg.Desk.Storage {
	case "redis":
		rs, err := redis.NewNotificationStorage(ctx, cfg.Desk.RedisURL, owner)
		if err != nil {
			log.Fatal().Err(err).Msg("conexión a Redis")
		}
		defer rs.Close()
		storage = rs
	case "postgres":
		pool, err := postgres.NewPool(ctx, cfg.DB)
		if err != nil {
			log.Fatal().Err(err).Msg("conexión a PostgreSQL")
		}
		defer pool.Close()
		ps := postgres.NewNotificationStorage(pool, owner)
		if err := ps.EnsureSchema(ctx); err != nil {
			log.Fatal().Err(err).Msg("crear tabla de notificaciones")
		}
		storage = ps
	default:
		storage = notifications.NewMemoryStorage()
	}

	store := notifications.NewStore(ctx, storage, log.Component("notifications"))
	log.Info().
		Str("storage", cfg.Desk.Storage).
		Int("avisos", len(store.List())).
		Int("no_leidos", store.UnreadCount()).
		Msg("historial de notificaciones cargado")

	var alerter stream.Alerter = stream.NewLogAlerter(log.Zerolog())
	if cfg.Desk.Desktop {
		alerter = stream.NewDesktopAlerter(nil, log.Zerolog())
	}

	consumer := stream.NewConsumer(stream.Config{
		APIURL:       cfg.Desk.APIURL,
		UserEmail:    cfg.Desk.UserEmail,
		DashboardURL: cfg.Desk.DashboardURL,
	}, nil, store, alerter, log.Zerolog())

	log.Info().Str("api", cfg.Desk.APIURL).Bool("desktop", cfg.Desk.Desktop).Msg("escuchando notificaciones")
	if err := consumer.Run(ctx); err != nil {
		log.Error().Err(err).Msg("consumidor detenido")
	}
	log.Info().Msg("desk-notifier detenido")
}
