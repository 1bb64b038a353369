package booking

import (
	"context"
	"fmt"
	"time"

	"github.com/rs/zerolog"

	"github.com/jhoicas/calldesk-api/internal/application/dto"
	"github.com/jhoicas/calldesk-api/internal/application/ports"
	"github.com/jhoicas/calldesk-api/internal/domain/entity"
)

// callTimeout límite de la llamada al sistema de citas.
const callTimeout = 30 * time.Second

// LeadReader lectura de una lead respetando los permisos del operador.
type LeadReader interface {
	Get(ctx context.Context, id, email string) (*entity.Lead, error)
}

// UseCase crea citas en el sistema externo y prepara borradores desde una lead.
type UseCase struct {
	svc   ports.BookingService
	leads LeadReader
	now   func() time.Time
	log   zerolog.Logger
}

// NewUseCase construye el caso de uso. now nil usa time.Now.
func NewUseCase(svc ports.BookingService, leads LeadReader, now func() time.Time, log zerolog.Logger) *UseCase {
	if now == nil {
		now = time.Now
	}
	return &UseCase{svc: svc, leads: leads, now: now, log: log.With().Str("component", "booking").Logger()}
}

// Create valida la cita y la envía. Si la validación falla no hay llamada de red.
func (uc *UseCase) Create(ctx context.Context, payload dto.BookingPayload) (map[string]any, error) {
	if err := Validate(payload); err != nil {
		return nil, err
	}
	if payload.CreatedBy == "" {
		payload.CreatedBy = DefaultCreatedBy
	}

	ctx, cancel := context.WithTimeout(ctx, callTimeout)
	defer cancel()

	uc.log.Info().
		Str("targa", payload.LicensePlate).
		Str("deposito", payload.Deposito).
		Str("tipo", payload.TipoPrenotazione).
		Msg("enviando cita")

	result, err := uc.svc.CreateBooking(ctx, payload)
	if err != nil {
		return nil, fmt.Errorf("crear cita: %w", err)
	}
	return result, nil
}

// Draft devuelve la cita precargada con los datos de la lead, lista para el formulario.
func (uc *UseCase) Draft(ctx context.Context, leadID, email string) (dto.BookingPayload, error) {
	lead, err := uc.leads.Get(ctx, leadID, email)
	if err != nil {
		return dto.BookingPayload{}, err
	}
	return ToBookingPayload(*lead, FormOverrides{CreatedBy: email}, uc.now()), nil
}
