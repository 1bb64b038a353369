package ports

import (
	"context"

	"github.com/jhoicas/calldesk-api/internal/application/dto"
)

// TriageService puerto de salida hacia la automatización externa que genera el resumen IA.
// Cualquier adaptador (webhook Make, mock) debe implementar esta interfaz.
type TriageService interface {
	// Triage envía el contexto del operador y devuelve el texto de la respuesta tal cual.
	// El contexto debe llevar un timeout: la automatización puede tardar decenas de segundos.
	Triage(ctx context.Context, req dto.TriageRequest) (string, error)
}
