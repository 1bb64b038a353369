package usecase

import (
	"context"
	"fmt"
	"time"

	"github.com/rs/zerolog"

	"github.com/jhoicas/calldesk-api/internal/application/dto"
	"github.com/jhoicas/calldesk-api/internal/application/ports"
	"github.com/jhoicas/calldesk-api/internal/domain/access"
)

// DefaultAITimeout límite por defecto de la llamada a la automatización.
const DefaultAITimeout = 60 * time.Second

// AIUseCase dispara el resumen IA de las leads con el contexto de permisos del operador.
// La automatización puede tardar; cada llamada lleva su propio context.WithTimeout.
type AIUseCase struct {
	triage   ports.TriageService
	resolver *access.Resolver
	timeout  time.Duration
	now      func() time.Time
	log      zerolog.Logger
}

// NewAIUseCase construye el caso de uso. timeout <= 0 usa DefaultAITimeout.
func NewAIUseCase(triage ports.TriageService, resolver *access.Resolver, timeout time.Duration, log zerolog.Logger) *AIUseCase {
	if timeout <= 0 {
		timeout = DefaultAITimeout
	}
	return &AIUseCase{
		triage:   triage,
		resolver: resolver,
		timeout:  timeout,
		now:      time.Now,
		log:      log.With().Str("component", "ai").Logger(),
	}
}

// Trigger envía {timestamp, userEmail, userRole, allowedRequestTypes} y devuelve el texto de respuesta.
// allowedRequestTypes es null para admin.
func (uc *AIUseCase) Trigger(ctx context.Context, email string) (string, error) {
	role := uc.resolver.Role(email)
	var allowed []string
	if cats := uc.resolver.CategoriesFor(role); cats != nil {
		allowed = make([]string, 0, len(cats))
		for _, c := range cats {
			allowed = append(allowed, string(c))
		}
	}

	req := dto.TriageRequest{
		Timestamp:           uc.now().UTC().Format("2006-01-02T15:04:05.000Z07:00"),
		UserEmail:           email,
		UserRole:            string(role),
		AllowedRequestTypes: allowed,
	}

	ctx, cancel := context.WithTimeout(ctx, uc.timeout)
	defer cancel()

	uc.log.Info().Str("email", email).Str("role", req.UserRole).Msg("solicitando resumen IA")
	out, err := uc.triage.Triage(ctx, req)
	if err != nil {
		return "", fmt.Errorf("resumen IA: %w", err)
	}
	return out, nil
}
