package http

import (
	"errors"
	"strings"

	"github.com/gofiber/fiber/v2"
	"github.com/rs/zerolog"

	"github.com/jhoicas/calldesk-api/internal/application/dto"
	"github.com/jhoicas/calldesk-api/internal/application/usecase"
	"github.com/jhoicas/calldesk-api/internal/domain"
)

// AIHandler maneja el endpoint del agente IA.
type AIHandler struct {
	uc  *usecase.AIUseCase
	log zerolog.Logger
}

// NewAIHandler construye el handler.
func NewAIHandler(uc *usecase.AIUseCase, log zerolog.Logger) *AIHandler {
	return &AIHandler{uc: uc, log: log}
}

// Trigger godoc
// @Summary      Resumen IA de las leads
// @Description  Dispara la automatización con el rol y las categorías del operador y devuelve su texto.
// @Tags         ai
// @Accept       json
// @Produce      json
// @Param        body  body  dto.AIAgentRequest  false  "userEmail (si falta se usa la identidad de la petición)"
// @Success      200   {object}  dto.AIAgentResponse
// @Failure      500   {object}  dto.ErrorResponse
// @Router       /ai-agent [post]
func (h *AIHandler) Trigger(c *fiber.Ctx) error {
	var req dto.AIAgentRequest
	if len(c.Body()) > 0 {
		if err := c.BodyParser(&req); err != nil {
			return c.Status(fiber.StatusBadRequest).JSON(dto.ErrorResponse{Error: "Body della richiesta non valido. JSON atteso."})
		}
	}
	email := strings.TrimSpace(req.UserEmail)
	if email == "" {
		email = GetUserEmail(c)
	}

	out, err := h.uc.Trigger(c.UserContext(), email)
	if err != nil {
		h.log.Error().Err(err).Msg("error durante la llamada al agente IA")
		if errors.Is(err, domain.ErrNotConfigured) {
			return c.Status(fiber.StatusInternalServerError).JSON(dto.ErrorResponse{Error: "API key non configurata"})
		}
		return c.Status(fiber.StatusInternalServerError).JSON(dto.ErrorResponse{Error: "Impossibile contattare l'agente AI"})
	}
	return c.JSON(dto.AIAgentResponse{Response: out})
}
