// Package makehook dispara el escenario de la automatización que genera el resumen IA de las leads.
package makehook

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/rs/zerolog"

	"github.com/jhoicas/calldesk-api/internal/application/dto"
	"github.com/jhoicas/calldesk-api/internal/application/ports"
	"github.com/jhoicas/calldesk-api/internal/domain"
)

// Verificar en tiempo de compilación que WebhookClient implementa TriageService.
var _ ports.TriageService = (*WebhookClient)(nil)

// maxResponse límite del texto que se devuelve al operador (1 MiB).
const maxResponse = 1 << 20

// WebhookClient adaptador del webhook. La respuesta es texto libre y se devuelve tal cual.
type WebhookClient struct {
	url        string
	apiKey     string
	httpClient *http.Client
	log        zerolog.Logger
}

// NewWebhookClient construye el adaptador.
// Si apiKey está vacío las llamadas devuelven domain.ErrNotConfigured sin tocar la red.
func NewWebhookClient(url, apiKey string, timeout time.Duration, log zerolog.Logger) *WebhookClient {
	if timeout <= 0 {
		timeout = 60 * time.Second
	}
	return &WebhookClient{
		url:    url,
		apiKey: apiKey,
		// El escenario puede tardar; el use case impone además su propio context.WithTimeout.
		httpClient: &http.Client{Timeout: timeout + 5*time.Second},
		log:        log.With().Str("component", "makehook").Logger(),
	}
}

// Triage dispara el escenario con la identidad del operador y devuelve su respuesta.
func (c *WebhookClient) Triage(ctx context.Context, in dto.TriageRequest) (string, error) {
	if c.apiKey == "" || c.url == "" {
		return "", fmt.Errorf("AI: MAKE_API_KEY o MAKE_WEBHOOK_URL: %w", domain.ErrNotConfigured)
	}

	body, err := json.Marshal(in)
	if err != nil {
		return "", fmt.Errorf("AI: serializar request: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.url, bytes.NewReader(body))
	if err != nil {
		return "", fmt.Errorf("AI: crear HTTP request: %w", err)
	}
	req.Header.Set("x-make-apikey", c.apiKey)
	req.Header.Set("content-type", "application/json")

	start := time.Now()
	resp, err := c.httpClient.Do(req)
	if err != nil {
		if ctx.Err() != nil {
			return "", fmt.Errorf("AI: timeout o cancelación: %w: %w", domain.ErrUpstream, ctx.Err())
		}
		return "", fmt.Errorf("AI: llamada HTTP fallida: %w: %w", domain.ErrUpstream, err)
	}
	defer resp.Body.Close()

	raw, err := io.ReadAll(io.LimitReader(resp.Body, maxResponse))
	if err != nil {
		return "", fmt.Errorf("AI: leer respuesta: %w: %w", domain.ErrUpstream, err)
	}

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		c.log.Error().
			Int("status", resp.StatusCode).
			Str("body", strings.TrimSpace(truncate(string(raw), 300))).
			Msg("webhook de IA respondió con error")
		return "", fmt.Errorf("AI: webhook HTTP %d (%s): %w", resp.StatusCode, http.StatusText(resp.StatusCode), domain.ErrUpstream)
	}

	c.log.Info().
		Str("user", in.UserEmail).
		Dur("latency", time.Since(start)).
		Int("bytes", len(raw)).
		Msg("resumen IA recibido")
	return string(raw), nil
}

func truncate(s string, n int) string {
	if len(s) <= n {
		return s
	}
	return s[:n]
}
