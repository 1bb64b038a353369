package http

import (
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/rs/zerolog"

	"github.com/jhoicas/calldesk-api/internal/application/booking"
	"github.com/jhoicas/calldesk-api/internal/application/notify"
	"github.com/jhoicas/calldesk-api/internal/application/usecase"
	"github.com/jhoicas/calldesk-api/internal/domain/access"
)

// RouterDeps dependencias para el router.
type RouterDeps struct {
	LeadUC     *usecase.LeadUseCase
	BookingUC  *booking.UseCase
	AIUC       *usecase.AIUseCase
	Dispatcher *notify.Dispatcher
	Resolver   *access.Resolver
	JWTSecret  string
	KeepAlive  time.Duration
	Log        zerolog.Logger
}

// Router registra las rutas de la API.
func Router(app *fiber.App, deps RouterDeps) {
	identity := IdentityMiddleware(deps.JWTSecret, deps.Log)

	leadHandler := NewLeadHandler(deps.LeadUC, deps.Log)
	bookingHandler := NewBookingHandler(deps.BookingUC, deps.Log)
	notificationHandler := NewNotificationHandler(deps.Dispatcher, deps.Resolver, deps.KeepAlive, deps.Log.With().Str("component", "sse").Logger())

	// Leads: las rutas estáticas antes de /:id
	leads := app.Group("/leads", identity)
	leads.Get("/", RequireIdentity(), leadHandler.List)
	leads.Get("/table", RequireIdentity(), leadHandler.Table)
	leads.Get("/columns", RequireIdentity(), leadHandler.Columns)
	leads.Get("/stats", RequireIdentity(), leadHandler.Stats)
	leads.Get("/notifications", notificationHandler.Stream)
	leads.Get("/:id", leadHandler.Get)
	leads.Patch("/:id", leadHandler.Update)
	leads.Patch("/:id/operator-notes", leadHandler.UpdateOperatorNotes)
	leads.Patch("/:id/status", leadHandler.UpdateStatus)
	leads.Get("/:id/status-options", leadHandler.StatusOptions)
	leads.Get("/:id/booking-draft", bookingHandler.Draft)
	leads.Get("/:id/sheet.pdf", leadHandler.Sheet)

	// AI y citas
	aiHandler := NewAIHandler(deps.AIUC, deps.Log)
	app.Post("/ai-agent", identity, aiHandler.Trigger)
	app.Post("/pitstop/booking", identity, bookingHandler.Create)

	// Webhook de la automatización de ingreso
	webhookHandler := NewWebhookHandler(deps.Dispatcher, deps.Log)
	webhooks := app.Group("/webhooks")
	webhooks.Post("/new-leads", webhookHandler.NewLeads)
	webhooks.Get("/new-leads", webhookHandler.Status)
}
