// Package airtable implementa el puerto LeadRepository contra la API REST del record store.
package airtable

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/rs/zerolog"

	"github.com/jhoicas/calldesk-api/internal/domain"
)

// maxBody límite de lectura de cada respuesta (una página de 100 registros cabe con holgura).
const maxBody = 8 << 20

// StatusError respuesta no 2xx del record store distinta de 404.
type StatusError struct {
	Status  int
	Message string
}

func (e *StatusError) Error() string {
	return fmt.Sprintf("airtable: HTTP %d: %s", e.Status, e.Message)
}

// Unwrap permite errors.Is(err, domain.ErrUpstream).
func (e *StatusError) Unwrap() error { return domain.ErrUpstream }

// Config parámetros de conexión.
type Config struct {
	APIURL string
	APIKey string
	BaseID string
	Table  string
}

// Client cliente HTTP mínimo del record store. No reintenta ni cachea.
type Client struct {
	cfg        Config
	httpClient *http.Client
	log        zerolog.Logger
}

// NewClient construye el cliente. httpClient nil usa uno con timeout de 30 s.
func NewClient(cfg Config, httpClient *http.Client, log zerolog.Logger) *Client {
	if httpClient == nil {
		httpClient = &http.Client{Timeout: 30 * time.Second}
	}
	cfg.APIURL = strings.TrimRight(cfg.APIURL, "/")
	return &Client{cfg: cfg, httpClient: httpClient, log: log.With().Str("component", "airtable").Logger()}
}

func (c *Client) configured() error {
	if c.cfg.APIKey == "" || c.cfg.BaseID == "" {
		return fmt.Errorf("airtable: AIRTABLE_API_KEY o AIRTABLE_BASE_ID: %w", domain.ErrNotConfigured)
	}
	return nil
}

func (c *Client) tableURL(recordID string) string {
	u := c.cfg.APIURL + "/" + url.PathEscape(c.cfg.BaseID) + "/" + url.PathEscape(c.cfg.Table)
	if recordID != "" {
		u += "/" + url.PathEscape(recordID)
	}
	return u
}

// apiError cuerpo de error del record store; "error" puede ser un string o un objeto.
type apiError struct {
	Error json.RawMessage `json:"error"`
}

func upstreamMessage(body []byte) string {
	var e apiError
	if err := json.Unmarshal(body, &e); err == nil && len(e.Error) > 0 {
		var obj struct {
			Type    string `json:"type"`
			Message string `json:"message"`
		}
		if err := json.Unmarshal(e.Error, &obj); err == nil && (obj.Message != "" || obj.Type != "") {
			if obj.Message == "" {
				return obj.Type
			}
			return obj.Message
		}
		var s string
		if err := json.Unmarshal(e.Error, &s); err == nil {
			return s
		}
	}
	msg := strings.TrimSpace(string(body))
	if len(msg) > 200 {
		msg = msg[:200]
	}
	return msg
}

// do ejecuta la petición y decodifica la respuesta en out.
// 404 -> domain.ErrNotFound; otro no 2xx -> *StatusError.
func (c *Client) do(ctx context.Context, method, rawURL string, query url.Values, in, out any) error {
	if err := c.configured(); err != nil {
		return err
	}

	var body io.Reader
	if in != nil {
		raw, err := json.Marshal(in)
		if err != nil {
			return fmt.Errorf("airtable: serializar request: %w", err)
		}
		body = bytes.NewReader(raw)
	}
	if len(query) > 0 {
		rawURL += "?" + query.Encode()
	}

	req, err := http.NewRequestWithContext(ctx, method, rawURL, body)
	if err != nil {
		return fmt.Errorf("airtable: crear HTTP request: %w", err)
	}
	req.Header.Set("Authorization", "Bearer "+c.cfg.APIKey)
	req.Header.Set("Cache-Control", "no-cache")
	if in != nil {
		req.Header.Set("Content-Type", "application/json")
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		if ctx.Err() != nil {
			return fmt.Errorf("airtable: timeout o cancelación: %w: %w", domain.ErrUpstream, ctx.Err())
		}
		return fmt.Errorf("airtable: llamada HTTP fallida: %w: %w", domain.ErrUpstream, err)
	}
	defer resp.Body.Close()

	raw, err := io.ReadAll(io.LimitReader(resp.Body, maxBody))
	if err != nil {
		return fmt.Errorf("airtable: leer respuesta: %w: %w", domain.ErrUpstream, err)
	}

	switch {
	case resp.StatusCode == http.StatusNotFound:
		return domain.ErrNotFound
	case resp.StatusCode < 200 || resp.StatusCode > 299:
		serr := &StatusError{Status: resp.StatusCode, Message: upstreamMessage(raw)}
		c.log.Error().Int("status", resp.StatusCode).Str("method", method).Msg(serr.Message)
		return serr
	}

	if out == nil {
		return nil
	}
	if err := json.Unmarshal(raw, out); err != nil {
		return fmt.Errorf("airtable: deserializar respuesta: %w: %w", domain.ErrUpstream, err)
	}
	return nil
}
