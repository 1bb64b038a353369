package ports

import (
	"context"

	"github.com/jhoicas/calldesk-api/internal/application/dto"
)

// BookingService puerto hacia el sistema externo de citas del taller.
type BookingService interface {
	// CreateBooking registra la cita y devuelve el cuerpo JSON de la respuesta del proveedor.
	CreateBooking(ctx context.Context, payload dto.BookingPayload) (map[string]any, error)
}
