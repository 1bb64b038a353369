package http

import (
	"bufio"
	"context"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/rs/zerolog"
	"github.com/valyala/fasthttp"

	"github.com/jhoicas/calldesk-api/internal/application/dto"
	"github.com/jhoicas/calldesk-api/internal/application/notify"
	"github.com/jhoicas/calldesk-api/internal/domain/access"
	"github.com/jhoicas/calldesk-api/internal/domain/entity"
)

// DefaultKeepAlive intervalo del comentario ": ping" en el stream.
const DefaultKeepAlive = 15 * time.Second

const msgNotifyUnavailable = "Servizio notifiche non disponibile"

// NotificationHandler stream SSE de leads nuevas.
type NotificationHandler struct {
	dispatcher *notify.Dispatcher
	resolver   *access.Resolver
	keepAlive  time.Duration
	log        zerolog.Logger
}

// NewNotificationHandler construye el handler. keepAlive <= 0 usa DefaultKeepAlive.
func NewNotificationHandler(d *notify.Dispatcher, resolver *access.Resolver, keepAlive time.Duration, log zerolog.Logger) *NotificationHandler {
	if keepAlive <= 0 {
		keepAlive = DefaultKeepAlive
	}
	return &NotificationHandler{dispatcher: d, resolver: resolver, keepAlive: keepAlive, log: log}
}

// Stream godoc
// @Summary      Stream de notificaciones (text/event-stream)
// @Description  Eventos connected, new_lead y error. Con identidad solo llegan las categorías permitidas.
// @Tags         notifications
// @Produce      text/event-stream
// @Router       /leads/notifications [get]
func (h *NotificationHandler) Stream(c *fiber.Ctx) error {
	var allowed []entity.Category
	if email := GetUserEmail(c); email != "" {
		allowed = h.resolver.AllowedCategories(email)
	}

	if h.dispatcher.Closed() {
		return c.Status(fiber.StatusServiceUnavailable).JSON(dto.ErrorResponse{Code: "UNAVAILABLE", Error: msgNotifyUnavailable})
	}

	c.Set(fiber.HeaderContentType, "text/event-stream")
	c.Set(fiber.HeaderCacheControl, "no-cache")
	c.Set(fiber.HeaderConnection, "keep-alive")
	c.Set("X-Accel-Buffering", "no")

	keepAlive := h.keepAlive
	c.Context().SetBodyStreamWriter(fasthttp.StreamWriter(func(w *bufio.Writer) {
		write := func(frame []byte) bool {
			if _, err := w.Write(frame); err != nil {
				return false
			}
			return w.Flush() == nil
		}

		// La suscripción vive solo mientras corre el writer. El ctx de fasthttp no se
		// cancela al desconectar el cliente: el canal se cierra cuando falla una
		// escritura o un flush.
		ctx, cancel := context.WithCancel(context.Background())
		defer cancel()
		ch, err := h.dispatcher.Subscribe(ctx, allowed)
		if err != nil {
			h.log.Warn().Err(err).Msg("suscripción de notificaciones rechazada")
			if frame, ferr := (notify.Event{Type: notify.EventError, Message: msgNotifyUnavailable}).SSE(); ferr == nil {
				write(frame)
			}
			return
		}
		defer ch.Close()
		log := h.log.With().Str("channel", ch.ID()).Logger()

		ticker := time.NewTicker(keepAlive)
		defer ticker.Stop()

		for {
			select {
			case ev, ok := <-ch.Events():
				if !ok {
					return
				}
				frame, err := ev.SSE()
				if err != nil {
					log.Error().Err(err).Msg("serializar evento")
					continue
				}
				if !write(frame) {
					log.Debug().Msg("cliente desconectado")
					return
				}
			case <-ticker.C:
				if !write(notify.KeepAlive) {
					log.Debug().Msg("cliente desconectado")
					return
				}
			}
		}
	}))
	return nil
}
