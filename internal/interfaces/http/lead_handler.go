package http

import (
	"mime"
	"strings"

	"github.com/gofiber/fiber/v2"
	"github.com/rs/zerolog"

	"github.com/jhoicas/calldesk-api/internal/application/dto"
	"github.com/jhoicas/calldesk-api/internal/application/usecase"
)

// LeadHandler maneja las peticiones HTTP de leads.
type LeadHandler struct {
	uc  *usecase.LeadUseCase
	log zerolog.Logger
}

// NewLeadHandler construye el handler.
func NewLeadHandler(uc *usecase.LeadUseCase, log zerolog.Logger) *LeadHandler {
	return &LeadHandler{uc: uc, log: log}
}

// List godoc
// @Summary      Listar leads visibles para el operador
// @Description  El rol se resuelve a partir del email. view=all (por defecto) ignora status.
// @Tags         leads
// @Produce      json
// @Param        email   query  string  false  "Email del operador (alternativa a x-user-email)"
// @Param        status  query  string  false  "Estado (StatusLavorazione)"
// @Param        view    query  string  false  "all | filtered"
// @Success      200  {array}   entity.Lead
// @Failure      400  {object}  dto.ErrorResponse
// @Failure      500  {object}  dto.ErrorResponse
// @Router       /leads [get]
func (h *LeadHandler) List(c *fiber.Ctx) error {
	var q dto.ListLeadsQuery
	if err := c.QueryParser(&q); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(dto.ErrorResponse{Code: "INVALID_QUERY", Error: "Parametri non validi"})
	}
	leads, err := h.uc.List(c.UserContext(), GetUserEmail(c), q.Status, q.View)
	if err != nil {
		return respondError(c, h.log, err, "Errore nel recupero dei lead")
	}
	return c.JSON(leads)
}

// Table godoc
// @Summary      Tabla de leads con columnas por rol y celdas ocultas
// @Tags         leads
// @Produce      json
// @Success      200  {object}  access.Table
// @Router       /leads/table [get]
func (h *LeadHandler) Table(c *fiber.Ctx) error {
	var q dto.ListLeadsQuery
	if err := c.QueryParser(&q); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(dto.ErrorResponse{Code: "INVALID_QUERY", Error: "Parametri non validi"})
	}
	table, err := h.uc.Table(c.UserContext(), GetUserEmail(c), q.Status, q.View)
	if err != nil {
		return respondError(c, h.log, err, "Errore nel recupero dei lead")
	}
	return c.JSON(table)
}

// Columns descriptores de columna del rol.
func (h *LeadHandler) Columns(c *fiber.Ctx) error {
	return c.JSON(h.uc.Columns(GetUserEmail(c)))
}

// Stats KPIs del panel.
func (h *LeadHandler) Stats(c *fiber.Ctx) error {
	out, err := h.uc.Stats(c.UserContext(), GetUserEmail(c))
	if err != nil {
		return respondError(c, h.log, err, "Errore nel recupero dei lead")
	}
	return c.JSON(out)
}

// Get godoc
// @Summary      Obtener lead por ID
// @Description  Con identidad presente, una lead de otra categoría da 403.
// @Tags         leads
// @Produce      json
// @Param        id   path  string  true  "ID del registro"
// @Success      200  {object}  entity.Lead
// @Failure      403  {object}  dto.ErrorResponse
// @Failure      404  {object}  dto.ErrorResponse
// @Router       /leads/{id} [get]
func (h *LeadHandler) Get(c *fiber.Ctx) error {
	lead, err := h.uc.Get(c.UserContext(), c.Params("id"), GetUserEmail(c))
	if err != nil {
		return respondError(c, h.log, err, "Errore nel recupero del lead")
	}
	return c.JSON(lead)
}

// Update godoc
// @Summary      Editar lead
// @Tags         leads
// @Accept       json
// @Produce      json
// @Param        id    path  string                 true  "ID del registro"
// @Param        body  body  dto.UpdateLeadRequest  true  "Campos a modificar"
// @Success      200  {object}  entity.Lead
// @Failure      400  {object}  dto.ErrorResponse
// @Router       /leads/{id} [patch]
func (h *LeadHandler) Update(c *fiber.Ctx) error {
	var in dto.UpdateLeadRequest
	if err := c.BodyParser(&in); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(dto.ErrorResponse{Code: "INVALID_BODY", Error: "Body della richiesta non valido. JSON atteso."})
	}
	lead, err := h.uc.Update(c.UserContext(), c.Params("id"), in, GetUserEmail(c))
	if err != nil {
		return respondError(c, h.log, err, "Errore del database: Impossibile aggiornare il lead.")
	}
	return c.JSON(lead)
}

// UpdateOperatorNotes PATCH /leads/:id/operator-notes. operatorNotes debe ser string.
func (h *LeadHandler) UpdateOperatorNotes(c *fiber.Ctx) error {
	var body map[string]any
	if err := c.BodyParser(&body); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(dto.ErrorResponse{Code: "INVALID_BODY", Error: "Body della richiesta non valido. JSON atteso."})
	}
	notes, ok := body["operatorNotes"].(string)
	if !ok {
		return c.Status(fiber.StatusBadRequest).JSON(dto.ErrorResponse{Code: "VALIDATION", Error: "operatorNotes deve essere una stringa"})
	}
	lead, err := h.uc.UpdateOperatorNotes(c.UserContext(), c.Params("id"), notes, GetUserEmail(c))
	if err != nil {
		return respondError(c, h.log, err, "Errore nell'aggiornamento delle note operatore")
	}
	return c.JSON(lead)
}

// UpdateStatus PATCH /leads/:id/status.
func (h *LeadHandler) UpdateStatus(c *fiber.Ctx) error {
	var in dto.UpdateStatusRequest
	if err := c.BodyParser(&in); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(dto.ErrorResponse{Code: "INVALID_BODY", Error: "Body della richiesta non valido. JSON atteso."})
	}
	lead, err := h.uc.UpdateStatus(c.UserContext(), c.Params("id"), in.Status, GetUserEmail(c))
	if err != nil {
		return respondError(c, h.log, err, "Errore nell'aggiornamento dello stato")
	}
	return c.JSON(lead)
}

// StatusOptions estados destino de la lead.
func (h *LeadHandler) StatusOptions(c *fiber.Ctx) error {
	out, err := h.uc.StatusOptions(c.UserContext(), c.Params("id"), GetUserEmail(c))
	if err != nil {
		return respondError(c, h.log, err, "Errore nel recupero del lead")
	}
	return c.JSON(out)
}

// Sheet godoc
// @Summary      Ficha PDF de la lead
// @Tags         leads
// @Produce      application/pdf
// @Param        id   path  string  true  "ID del registro"
// @Success      200  {file}  file
// @Failure      403  {object}  dto.ErrorResponse
// @Failure      404  {object}  dto.ErrorResponse
// @Router       /leads/{id}/sheet.pdf [get]
func (h *LeadHandler) Sheet(c *fiber.Ctx) error {
	id := c.Params("id")
	out, err := h.uc.Sheet(c.UserContext(), id, GetUserEmail(c))
	if err != nil {
		return respondError(c, h.log, err, "Errore nella generazione della scheda")
	}
	c.Set(fiber.HeaderContentType, "application/pdf")
	c.Set(fiber.HeaderContentDisposition, mime.FormatMediaType("attachment", map[string]string{
		"filename": sheetFilename(id),
	}))
	return c.Send(out)
}

// sheetFilename "lead-<id>.pdf" con solo letras, dígitos, '-' y '_' del id.
func sheetFilename(id string) string {
	safe := strings.Map(func(r rune) rune {
		switch {
		case r >= 'a' && r <= 'z', r >= 'A' && r <= 'Z', r >= '0' && r <= '9', r == '-', r == '_':
			return r
		default:
			return -1
		}
	}, id)
	if safe == "" {
		return "lead.pdf"
	}
	return "lead-" + safe + ".pdf"
}
