package http

import (
	"strings"

	"github.com/gofiber/fiber/v2"
	"github.com/rs/zerolog"

	"github.com/jhoicas/calldesk-api/internal/application/dto"
	"github.com/jhoicas/calldesk-api/pkg/jwt"
)

// LocalUserEmail key en c.Locals con el email del operador.
const LocalUserEmail = "user_email"

// IdentityMiddleware resuelve el email del operador, en este orden:
//  1. Authorization: Bearer <jwt> (claim email), solo si hay secret configurado
//  2. cabecera x-user-email
//  3. query ?email=
//
// No exige identidad: las rutas que la necesitan añaden RequireIdentity.
// Un bearer presente pero inválido sí corta con 401.
func IdentityMiddleware(jwtSecret string, log zerolog.Logger) fiber.Handler {
	return func(c *fiber.Ctx) error {
		if authHeader := c.Get(fiber.HeaderAuthorization); authHeader != "" && jwtSecret != "" {
			parts := strings.SplitN(authHeader, " ", 2)
			if len(parts) != 2 || !strings.EqualFold(parts[0], "Bearer") || strings.TrimSpace(parts[1]) == "" {
				return c.Status(fiber.StatusUnauthorized).JSON(dto.ErrorResponse{Code: "INVALID_TOKEN", Error: "Formato atteso: Bearer <token>"})
			}
			email, err := jwt.ParseEmail(jwtSecret, strings.TrimSpace(parts[1]))
			if err != nil {
				log.Debug().Err(err).Msg("token de identidad rechazado")
				return c.Status(fiber.StatusUnauthorized).JSON(dto.ErrorResponse{Code: "INVALID_TOKEN", Error: "Token non valido o scaduto"})
			}
			c.Locals(LocalUserEmail, email)
			return c.Next()
		}

		email := strings.TrimSpace(c.Get("x-user-email"))
		if email == "" {
			email = strings.TrimSpace(c.Query("email"))
		}
		if email != "" {
			c.Locals(LocalUserEmail, email)
		}
		return c.Next()
	}
}

// RequireIdentity corta con 400 si no hay email (después de IdentityMiddleware).
func RequireIdentity() fiber.Handler {
	return func(c *fiber.Ctx) error {
		if GetUserEmail(c) == "" {
			return c.Status(fiber.StatusBadRequest).JSON(dto.ErrorResponse{Code: "MISSING_IDENTITY", Error: "Email utente non fornita"})
		}
		return c.Next()
	}
}

// GetUserEmail devuelve el email del contexto o "" si la petición es anónima.
func GetUserEmail(c *fiber.Ctx) string {
	v := c.Locals(LocalUserEmail)
	if v == nil {
		return ""
	}
	s, _ := v.(string)
	return s
}
