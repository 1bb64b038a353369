// Package pitstop envía citas al sistema de reservas del taller.
package pitstop

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"regexp"
	"strings"
	"time"

	"github.com/beevik/etree"
	"github.com/rs/zerolog"

	"github.com/jhoicas/calldesk-api/internal/application/dto"
	"github.com/jhoicas/calldesk-api/internal/application/ports"
	"github.com/jhoicas/calldesk-api/internal/domain"
)

var _ ports.BookingService = (*Client)(nil)

const (
	maxBody        = 1 << 20
	detailsLimit   = 500
	plainTextLimit = 200
)

// UpstreamError respuesta de error del sistema de citas.
type UpstreamError struct {
	Status  int
	Message string
	Details string
}

func (e *UpstreamError) Error() string { return e.Message }

// Unwrap permite errors.Is(err, domain.ErrUpstream).
func (e *UpstreamError) Unwrap() error { return domain.ErrUpstream }

// Client adaptador HTTP del sistema de citas.
type Client struct {
	apiURL     string
	apiKey     string
	httpClient *http.Client
	log        zerolog.Logger
}

// NewClient construye el cliente. httpClient nil usa uno con timeout de 30 s.
func NewClient(apiURL, apiKey string, httpClient *http.Client, log zerolog.Logger) *Client {
	if httpClient == nil {
		httpClient = &http.Client{Timeout: 30 * time.Second}
	}
	return &Client{
		apiURL:     apiURL,
		apiKey:     apiKey,
		httpClient: httpClient,
		log:        log.With().Str("component", "pitstop").Logger(),
	}
}

// CreateBooking envía la cita y devuelve la respuesta JSON del sistema de citas.
func (c *Client) CreateBooking(ctx context.Context, payload dto.BookingPayload) (map[string]any, error) {
	if c.apiKey == "" || c.apiURL == "" {
		return nil, fmt.Errorf("pitstop: PITSTOP_API_KEY o PITSTOP_API_URL: %w", domain.ErrNotConfigured)
	}

	body, err := json.Marshal(payload)
	if err != nil {
		return nil, fmt.Errorf("pitstop: serializar cita: %w", err)
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.apiURL, bytes.NewReader(body))
	if err != nil {
		return nil, fmt.Errorf("pitstop: crear HTTP request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Authorization", "Bearer "+c.apiKey)

	resp, err := c.httpClient.Do(req)
	if err != nil {
		if ctx.Err() != nil {
			return nil, fmt.Errorf("pitstop: timeout o cancelación: %w: %w", domain.ErrUpstream, ctx.Err())
		}
		return nil, fmt.Errorf("pitstop: llamada HTTP fallida: %w: %w", domain.ErrUpstream, err)
	}
	defer resp.Body.Close()

	raw, err := io.ReadAll(io.LimitReader(resp.Body, maxBody))
	if err != nil {
		return nil, fmt.Errorf("pitstop: leer respuesta: %w: %w", domain.ErrUpstream, err)
	}

	contentType := resp.Header.Get("Content-Type")
	isJSON := strings.Contains(contentType, "application/json")
	c.log.Info().
		Int("status", resp.StatusCode).
		Str("content_type", contentType).
		Msg("respuesta del sistema de citas")

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		uerr := errorFromResponse(resp.StatusCode, resp.Status, isJSON, raw)
		c.log.Error().Int("status", uerr.Status).Str("details", uerr.Details).Msg(uerr.Message)
		return nil, uerr
	}

	if !isJSON {
		if contentType == "" {
			contentType = "text/html"
		}
		msg := "Risposta non valida dal server"
		if title := htmlTitle(string(raw)); title != "" {
			msg = title
		}
		return nil, &UpstreamError{
			Status:  resp.StatusCode,
			Message: fmt.Sprintf("Risposta non valida dal server Pit Stop: atteso JSON, ricevuto %s. %s", contentType, msg),
			Details: truncate(string(raw), detailsLimit),
		}
	}

	var out map[string]any
	if err := json.Unmarshal(raw, &out); err != nil {
		return nil, &UpstreamError{
			Status:  resp.StatusCode,
			Message: "Risposta non valida dal server Pit Stop: JSON non leggibile",
			Details: truncate(string(raw), detailsLimit),
		}
	}
	return out, nil
}

// errorFromResponse arma el mensaje según el tipo de cuerpo: JSON (message/error), HTML (title/h1) o texto.
func errorFromResponse(status int, statusText string, isJSON bool, raw []byte) *UpstreamError {
	statusText = strings.TrimSpace(strings.TrimPrefix(statusText, fmt.Sprint(status)))
	uerr := &UpstreamError{
		Status:  status,
		Message: strings.TrimSpace(fmt.Sprintf("Errore API Pit Stop: %d %s", status, statusText)),
	}

	if isJSON {
		var data map[string]any
		if err := json.Unmarshal(raw, &data); err == nil {
			if msg, ok := data["message"].(string); ok && msg != "" {
				uerr.Message = msg
			} else if msg, ok := data["error"].(string); ok && msg != "" {
				uerr.Message = msg
			}
			uerr.Details = string(raw)
		}
		return uerr
	}

	text := string(raw)
	uerr.Details = truncate(text, detailsLimit)
	if isHTML(text) {
		if title := htmlTitle(text); title != "" {
			uerr.Message = fmt.Sprintf("Errore API Pit Stop: %d - %s", status, title)
		} else {
			uerr.Message = fmt.Sprintf("Errore API Pit Stop: %d - Il server ha restituito una pagina HTML invece di JSON", status)
		}
		return uerr
	}
	if strings.TrimSpace(text) != "" {
		uerr.Message = fmt.Sprintf("Errore API Pit Stop: %d - %s", status, truncate(text, plainTextLimit))
	}
	return uerr
}

func isHTML(text string) bool {
	return strings.Contains(strings.ToLower(text), "<html")
}

var (
	titleRe = regexp.MustCompile(`(?is)<title[^>]*>(.*?)</title>`)
	h1Re    = regexp.MustCompile(`(?is)<h1[^>]*>(.*?)</h1>`)
)

// htmlTitle devuelve el <title> o, si falta, el primer <h1> de una página de error.
// Se intenta primero con etree en modo permisivo; si el documento no se puede leer se usa regexp.
func htmlTitle(text string) string {
	doc := etree.NewDocument()
	doc.ReadSettings.Permissive = true
	if err := doc.ReadFromString(text); err == nil {
		for _, path := range []string{"//title", "//h1"} {
			if el := doc.FindElement(path); el != nil {
				if s := strings.TrimSpace(el.Text()); s != "" {
					return s
				}
			}
		}
	}
	for _, re := range []*regexp.Regexp{titleRe, h1Re} {
		if m := re.FindStringSubmatch(text); m != nil {
			if s := strings.TrimSpace(m[1]); s != "" {
				return s
			}
		}
	}
	return ""
}

func truncate(s string, n int) string {
	r := []rune(s)
	if len(r) <= n {
		return s
	}
	return string(r[:n])
}
