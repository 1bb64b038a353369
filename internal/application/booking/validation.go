package booking

import (
	"strings"

	"github.com/jhoicas/calldesk-api/internal/application/dto"
	"github.com/jhoicas/calldesk-api/internal/domain"
)

// minPlateLen longitud mínima de una matrícula aceptada por el sistema de citas.
const minPlateLen = 5

// ValidationError campo obligatorio ausente o inválido.
type ValidationError = domain.ValidationError

// Validate comprueba los campos obligatorios en el orden en que se muestran en el formulario.
func Validate(p dto.BookingPayload) error {
	switch {
	case len(strings.TrimSpace(p.LicensePlate)) < minPlateLen:
		return &ValidationError{Field: "licensePlate", Message: "La targa è obbligatoria e deve avere almeno 5 caratteri"}
	case strings.TrimSpace(p.Nominativo) == "":
		return &ValidationError{Field: "nominativo", Message: "Il nominativo è obbligatorio"}
	case strings.TrimSpace(p.CustomerPhone) == "":
		return &ValidationError{Field: "customerPhone", Message: "Il numero di telefono è obbligatorio"}
	case strings.TrimSpace(p.BookingDate) == "":
		return &ValidationError{Field: "bookingDate", Message: "La data prenotazione è obbligatoria"}
	case strings.TrimSpace(p.Deposito) == "":
		return &ValidationError{Field: "deposito", Message: "La sede è obbligatoria"}
	case strings.TrimSpace(p.TipoPrenotazione) == "":
		return &ValidationError{Field: "tipoPrenotazione", Message: "Il tipo prenotazione è obbligatorio"}
	}
	return nil
}
