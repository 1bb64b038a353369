package http_test

import (
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gofiber/fiber/v2"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	apphttp "github.com/jhoicas/calldesk-api/internal/interfaces/http"
	pkgjwt "github.com/jhoicas/calldesk-api/pkg/jwt"
)

// ──────────────────────────────────────────────────────────────────────────────
// Helpers de test
// ──────────────────────────────────────────────────────────────────────────────

const (
	testJWTSecret = "test-secret-key-for-unit-tests"
	testIssuer    = "calldesk-test"
	testExpMin    = 60
)

// buildIdentityApp construye una aplicación Fiber mínima con:
//   - IdentityMiddleware para resolver el email
//   - RequireIdentity opcional
//   - Un handler dummy que devuelve el email resuelto
func buildIdentityApp(secret string, strict bool) *fiber.App {
	app := fiber.New()
	handlers := []fiber.Handler{apphttp.IdentityMiddleware(secret, zerolog.Nop())}
	if strict {
		handlers = append(handlers, apphttp.RequireIdentity())
	}
	handlers = append(handlers, func(c *fiber.Ctx) error {
		return c.JSON(fiber.Map{"email": apphttp.GetUserEmail(c)})
	})
	app.Get("/whoami", handlers...)
	return app
}

func whoami(t *testing.T, app *fiber.App, target string, headers map[string]string) (int, map[string]any) {
	t.Helper()
	req := httptest.NewRequest(http.MethodGet, target, nil)
	for k, v := range headers {
		req.Header.Set(k, v)
	}
	resp, err := app.Test(req, -1)
	require.NoError(t, err)
	defer resp.Body.Close()

	raw, err := io.ReadAll(resp.Body)
	require.NoError(t, err)
	var body map[string]any
	require.NoError(t, json.Unmarshal(raw, &body), "cuerpo: %s", raw)
	return resp.StatusCode, body
}

func bearer(t *testing.T, email string) string {
	t.Helper()
	tok, err := pkgjwt.Generate(testJWTSecret, email, testIssuer, testExpMin)
	require.NoError(t, err, "debe generarse un token JWT válido")
	return "Bearer " + tok
}

// ──────────────────────────────────────────────────────────────────────────────
// IdentityMiddleware
// ──────────────────────────────────────────────────────────────────────────────

// Caso 1: cabecera x-user-email.
func TestIdentity_Cabecera(t *testing.T) {
	status, body := whoami(t, buildIdentityApp("", false), "/whoami",
		map[string]string{"x-user-email": " officina@calldesk.example "})

	assert.Equal(t, http.StatusOK, status)
	assert.Equal(t, "officina@calldesk.example", body["email"])
}

// Caso 2: query ?email= cuando falta la cabecera.
func TestIdentity_QueryComoAlternativa(t *testing.T) {
	status, body := whoami(t, buildIdentityApp("", false), "/whoami?email=vendite@calldesk.example", nil)

	assert.Equal(t, http.StatusOK, status)
	assert.Equal(t, "vendite@calldesk.example", body["email"])
}

// Caso 3: la cabecera tiene prioridad sobre la query.
func TestIdentity_CabeceraAntesQueQuery(t *testing.T) {
	_, body := whoami(t, buildIdentityApp("", false), "/whoami?email=vendite@calldesk.example",
		map[string]string{"x-user-email": "officina@calldesk.example"})

	assert.Equal(t, "officina@calldesk.example", body["email"])
}

// Caso 4: con secret configurado, el bearer manda sobre la cabecera.
func TestIdentity_BearerValido(t *testing.T) {
	_, body := whoami(t, buildIdentityApp(testJWTSecret, false), "/whoami", map[string]string{
		"Authorization": bearer(t, "direzione@calldesk.example"),
		"x-user-email":  "vendite@calldesk.example",
	})

	assert.Equal(t, "direzione@calldesk.example", body["email"])
}

// Caso 5: bearer inválido → 401.
func TestIdentity_BearerInvalido_Retorna401(t *testing.T) {
	status, body := whoami(t, buildIdentityApp(testJWTSecret, false), "/whoami",
		map[string]string{"Authorization": "Bearer no-es-un-jwt"})

	assert.Equal(t, http.StatusUnauthorized, status)
	assert.Equal(t, "INVALID_TOKEN", body["code"])
}

// Caso 6: formato de cabecera incorrecto → 401.
func TestIdentity_FormatoIncorrecto_Retorna401(t *testing.T) {
	status, _ := whoami(t, buildIdentityApp(testJWTSecret, false), "/whoami",
		map[string]string{"Authorization": "Token abc"})

	assert.Equal(t, http.StatusUnauthorized, status)
}

// Caso 7: sin secret el bearer se ignora y vale la cabecera.
func TestIdentity_SinSecretIgnoraBearer(t *testing.T) {
	status, body := whoami(t, buildIdentityApp("", false), "/whoami", map[string]string{
		"Authorization": "Bearer cualquier-cosa",
		"x-user-email":  "officina@calldesk.example",
	})

	assert.Equal(t, http.StatusOK, status)
	assert.Equal(t, "officina@calldesk.example", body["email"])
}

// ──────────────────────────────────────────────────────────────────────────────
// RequireIdentity
// ──────────────────────────────────────────────────────────────────────────────

func TestRequireIdentity_SinEmail_Retorna400(t *testing.T) {
	status, body := whoami(t, buildIdentityApp("", true), "/whoami", nil)

	assert.Equal(t, http.StatusBadRequest, status)
	assert.Equal(t, "MISSING_IDENTITY", body["code"])
	assert.Equal(t, "Email utente non fornita", body["error"])
}

func TestRequireIdentity_ConEmail_Pasa(t *testing.T) {
	status, _ := whoami(t, buildIdentityApp("", true), "/whoami?email=vendite@calldesk.example", nil)
	assert.Equal(t, http.StatusOK, status)
}
