package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gofiber/contrib/swagger"
	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/recover"

	"github.com/jhoicas/calldesk-api/internal/application/booking"
	"github.com/jhoicas/calldesk-api/internal/application/notify"
	"github.com/jhoicas/calldesk-api/internal/application/usecase"
	"github.com/jhoicas/calldesk-api/internal/domain/access"
	"github.com/jhoicas/calldesk-api/internal/infrastructure/airtable"
	"github.com/jhoicas/calldesk-api/internal/infrastructure/makehook"
	infrapdf "github.com/jhoicas/calldesk-api/internal/infrastructure/pdf"
	"github.com/jhoicas/calldesk-api/internal/infrastructure/pitstop"
	httpRouter "github.com/jhoicas/calldesk-api/internal/interfaces/http"
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
		App:   cfg.App.Name,
	})
	log.Info().
		Str("env", cfg.App.Env).
		Str("app", cfg.App.Name).
		Msg("iniciando aplicación")

	roles, err := access.ParseRoleTable(cfg.Identity.UserRoles)
	if err != nil {
		log.Fatal().Err(err).Msg("USER_ROLES inválido")
	}
	resolver := access.NewResolver(roles)

	// Record store de leads
	airtableClient := airtable.NewClient(airtable.Config{
		APIURL: cfg.Airtable.APIURL,
		APIKey: cfg.Airtable.APIKey,
		BaseID: cfg.Airtable.BaseID,
		Table:  cfg.Airtable.Table,
	}, nil, log.Zerolog())
	leadRepo := airtable.NewLeadRepository(airtableClient)
	if cfg.Airtable.APIKey == "" || cfg.Airtable.BaseID == "" {
		log.Warn().Msg("AIRTABLE_API_KEY o AIRTABLE_BASE_ID no configurados: las rutas de leads responderán 500")
	}

	leadUC := usecase.NewLeadUseCase(leadRepo, resolver, infrapdf.NewMarotoLeadSheet(), log.Component("leads"))

	pitstopClient := pitstop.NewClient(cfg.PitStop.APIURL, cfg.PitStop.APIKey, nil, log.Zerolog())
	bookingUC := booking.NewUseCase(pitstopClient, leadUC, nil, log.Zerolog())

	triage := makehook.NewWebhookClient(cfg.Make.WebhookURL, cfg.Make.APIKey, cfg.Make.Timeout(), log.Zerolog())
	aiUC := usecase.NewAIUseCase(triage, resolver, cfg.Make.Timeout(), log.Component("ai"))

	// Conjunto único de leads ya notificadas, compartido por todos los canales
	known := notify.NewKnownSet()
	dispatcher := notify.NewDispatcher(leadRepo, known, notify.Config{
		PollInterval: cfg.Notify.PollInterval(),
		ScanWindow:   cfg.Notify.ScanWindow,
	}, log.Zerolog())

	// Sin WriteTimeout: los streams SSE son conexiones largas
	app := fiber.New(fiber.Config{
		AppName:      cfg.App.Name,
		ReadTimeout:  time.Second * 10,
		IdleTimeout:  time.Second * 60,
		ErrorHandler: httpRouter.ErrorHandler(log.Component("http")),
	})
	app.Use(recover.New())
	app.Use(httpRouter.RequestLogger(log.Component("http")))

	// Swagger UI en local: http://localhost:<port>/docs
	app.Use(swagger.New(swagger.Config{
		BasePath: "/",
		FilePath: "./docs/swagger.json",
		Path:     "docs",
		Title:    "CallDesk API",
	}))

	app.Get("/health", func(c *fiber.Ctx) error {
		return c.JSON(fiber.Map{"status": "ok", "service": cfg.App.Name})
	})

	httpRouter.Router(app, httpRouter.RouterDeps{
		LeadUC:     leadUC,
		BookingUC:  bookingUC,
		AIUC:       aiUC,
		Dispatcher: dispatcher,
		Resolver:   resolver,
		JWTSecret:  cfg.Identity.JWTSecret,
		Log:        log.Component("http"),
	})

	go func() {
		if err := app.Listen(cfg.HTTP.Addr()); err != nil {
			log.Error().Err(err).Msg("servidor HTTP finalizado")
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	log.Info().Msg("señal de apagado recibida, cerrando servidor...")

	// Cerrar los canales SSE antes del apagado para que los stream writers terminen
	dispatcher.Close()

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	if err := app.ShutdownWithContext(shutdownCtx); err != nil {
		log.Error().Err(err).Msg("apagado del servidor")
	}

	log.Info().Msg("aplicación detenida")
}
