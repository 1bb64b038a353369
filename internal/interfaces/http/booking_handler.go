package http

import (
	"errors"

	"github.com/gofiber/fiber/v2"
	"github.com/rs/zerolog"

	"github.com/jhoicas/calldesk-api/internal/application/booking"
	"github.com/jhoicas/calldesk-api/internal/application/dto"
	"github.com/jhoicas/calldesk-api/internal/domain"
)

// BookingHandler citas del taller.
type BookingHandler struct {
	uc  *booking.UseCase
	log zerolog.Logger
}

// NewBookingHandler construye el handler.
func NewBookingHandler(uc *booking.UseCase, log zerolog.Logger) *BookingHandler {
	return &BookingHandler{uc: uc, log: log}
}

// Create godoc
// @Summary      Crear cita en el sistema del taller
// @Tags         booking
// @Accept       json
// @Produce      json
// @Param        body  body  dto.BookingRequest  true  "bookingData"
// @Success      200  {object}  dto.BookingResponse
// @Failure      400  {object}  dto.ErrorResponse
// @Failure      500  {object}  dto.ErrorResponse
// @Router       /pitstop/booking [post]
func (h *BookingHandler) Create(c *fiber.Ctx) error {
	var in dto.BookingRequest
	if err := c.BodyParser(&in); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(dto.ErrorResponse{Error: "Body della richiesta non valido. JSON atteso."})
	}
	if in.BookingData == nil {
		return c.Status(fiber.StatusBadRequest).JSON(dto.ErrorResponse{Error: "bookingData è obbligatorio"})
	}

	result, err := h.uc.Create(c.UserContext(), *in.BookingData)
	if err != nil {
		var verr *domain.ValidationError
		if errors.As(err, &verr) {
			return c.Status(fiber.StatusBadRequest).JSON(dto.ErrorResponse{Error: verr.Message, Details: verr.Field})
		}
		h.log.Error().Err(err).Msg("error en la creación de la cita")
		msg := "Errore durante la creazione della prenotazione"
		if errors.Is(err, domain.ErrNotConfigured) {
			msg = "Servizio prenotazioni non configurato"
		}
		return c.Status(fiber.StatusInternalServerError).JSON(dto.ErrorResponse{Error: msg, Details: err.Error()})
	}

	return c.JSON(dto.BookingResponse{
		Success: true,
		Booking: result,
		Message: "Prenotazione creata con successo in Pit Stop",
	})
}

// Draft cita precargada desde la lead para el formulario.
func (h *BookingHandler) Draft(c *fiber.Ctx) error {
	out, err := h.uc.Draft(c.UserContext(), c.Params("id"), GetUserEmail(c))
	if err != nil {
		return respondError(c, h.log, err, "Errore nel recupero del lead")
	}
	return c.JSON(out)
}
