package http

import (
	"fmt"

	"github.com/gofiber/fiber/v2"
	"github.com/rs/zerolog"

	"github.com/jhoicas/calldesk-api/internal/application/dto"
	"github.com/jhoicas/calldesk-api/internal/application/notify"
)

// WebhookHandler avisos de la automatización de ingreso.
type WebhookHandler struct {
	dispatcher *notify.Dispatcher
	log        zerolog.Logger
}

// NewWebhookHandler construye el handler.
func NewWebhookHandler(d *notify.Dispatcher, log zerolog.Logger) *WebhookHandler {
	return &WebhookHandler{dispatcher: d, log: log}
}

// NewLeads godoc
// @Summary      Aviso de leads nuevas
// @Description  Notifica de inmediato a los canales abiertos las leads indicadas que aún no se notificaron.
// @Tags         webhooks
// @Accept       json
// @Produce      json
// @Param        body  body  dto.NewLeadsWebhookRequest  true  "leadIds"
// @Success      200  {object}  dto.NewLeadsWebhookResponse
// @Failure      400  {object}  dto.ErrorResponse
// @Router       /webhooks/new-leads [post]
func (h *WebhookHandler) NewLeads(c *fiber.Ctx) error {
	var in dto.NewLeadsWebhookRequest
	if err := c.BodyParser(&in); err != nil || len(in.LeadIDs) == 0 {
		return c.Status(fiber.StatusBadRequest).JSON(dto.ErrorResponse{Error: "leadIds deve essere un array non vuoto"})
	}

	n, err := h.dispatcher.Push(c.UserContext(), in.LeadIDs)
	if err != nil {
		return respondError(c, h.log, err, "Errore nel processamento del webhook")
	}
	h.log.Info().Int("recibidas", len(in.LeadIDs)).Int("notificadas", n).Msg("webhook de leads nuevas")
	return c.JSON(dto.NewLeadsWebhookResponse{
		Success:  true,
		Notified: n,
		Message:  fmt.Sprintf("%d nuove lead notificate", n),
	})
}

// Status estado del dispatcher.
func (h *WebhookHandler) Status(c *fiber.Ctx) error {
	return c.JSON(h.dispatcher.Status())
}
