package http

import (
	"bufio"
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/rs/zerolog/log"
	"github.com/valyala/fasthttp"

	"github.com/jhoicas/Reabastecimiento-api/internal/application/dto"
	"github.com/jhoicas/Reabastecimiento-api/internal/application/notification"
	"github.com/jhoicas/Reabastecimiento-api/internal/domain"
	"github.com/jhoicas/Reabastecimiento-api/internal/infrastructure/realtime"
)

const streamKeepAlive = 25 * time.Second

// EventSubscriber fuente de eventos en tiempo real del propietario (Redis pub/sub).
type EventSubscriber interface {
	Subscribe(ctx context.Context, ownerID string) (<-chan *realtime.Envelope, error)
}

// NotificationHandler notificaciones del propietario (protegido).
type NotificationHandler struct {
	dispatcher *notification.Dispatcher
	subscriber EventSubscriber
}

// NewNotificationHandler construye el handler. subscriber nil deshabilita /stream.
func NewNotificationHandler(dispatcher *notification.Dispatcher, subscriber EventSubscriber) *NotificationHandler {
	return &NotificationHandler{dispatcher: dispatcher, subscriber: subscriber}
}

// List godoc
// @Summary      Notificaciones del propietario (más recientes primero)
// @Tags         notifications
// @Security     Bearer
// @Produce      json
// @Param        limit  query  int  false  "Máximo de resultados (default 50)"
// @Success      200  {array}  dto.NotificationResponse
// @Router       /api/notifications [get]
func (h *NotificationHandler) List(c *fiber.Ctx) error {
	ownerID := GetOwnerID(c)
	if ownerID == "" {
		return unauthorized(c)
	}
	items, err := h.dispatcher.List(c.Context(), ownerID, c.QueryInt("limit", notification.DefaultListLimit))
	if err != nil {
		return respondError(c, err, "")
	}
	out := make([]*dto.NotificationResponse, 0, len(items))
	for _, n := range items {
		out = append(out, dto.ToNotificationResponse(n))
	}
	return c.JSON(out)
}

// UnreadCount godoc
// @Summary      Cantidad de notificaciones sin leer
// @Tags         notifications
// @Security     Bearer
// @Produce      json
// @Success      200  {object}  dto.UnreadCountResponse
// @Router       /api/notifications/unread-count [get]
func (h *NotificationHandler) UnreadCount(c *fiber.Ctx) error {
	ownerID := GetOwnerID(c)
	if ownerID == "" {
		return unauthorized(c)
	}
	n, err := h.dispatcher.UnreadCount(c.Context(), ownerID)
	if err != nil {
		return respondError(c, err, "")
	}
	return c.JSON(dto.UnreadCountResponse{Count: n})
}

// MarkRead godoc
// @Summary      Marcar notificación como leída
// @Tags         notifications
// @Security     Bearer
// @Produce      json
// @Param        id  path  string  true  "ID de la notificación"
// @Success      200  {object}  dto.NotificationResponse
// @Failure      404  {object}  dto.ErrorResponse
// @Router       /api/notifications/{id}/read [patch]
func (h *NotificationHandler) MarkRead(c *fiber.Ctx) error {
	ownerID := GetOwnerID(c)
	if ownerID == "" {
		return unauthorized(c)
	}
	id, ok := pathID(c, "id")
	if !ok {
		return respondError(c, domain.ErrNotFound, "notificación no encontrada")
	}
	n, err := h.dispatcher.MarkRead(c.Context(), ownerID, id)
	if err != nil {
		return respondError(c, err, "notificación no encontrada")
	}
	return c.JSON(dto.ToNotificationResponse(n))
}

// MarkAllRead godoc
// @Summary      Marcar todas como leídas
// @Tags         notifications
// @Security     Bearer
// @Produce      json
// @Success      200  {object}  map[string]int64
// @Router       /api/notifications/mark-all-read [patch]
func (h *NotificationHandler) MarkAllRead(c *fiber.Ctx) error {
	ownerID := GetOwnerID(c)
	if ownerID == "" {
		return unauthorized(c)
	}
	n, err := h.dispatcher.MarkAllRead(c.Context(), ownerID)
	if err != nil {
		return respondError(c, err, "")
	}
	return c.JSON(fiber.Map{"updated": n})
}

// Delete godoc
// @Summary      Eliminar notificación
// @Tags         notifications
// @Security     Bearer
// @Param        id  path  string  true  "ID de la notificación"
// @Success      204
// @Failure      404  {object}  dto.ErrorResponse
// @Router       /api/notifications/{id} [delete]
func (h *NotificationHandler) Delete(c *fiber.Ctx) error {
	ownerID := GetOwnerID(c)
	if ownerID == "" {
		return unauthorized(c)
	}
	id, ok := pathID(c, "id")
	if !ok {
		return respondError(c, domain.ErrNotFound, "notificación no encontrada")
	}
	if err := h.dispatcher.Delete(c.Context(), ownerID, id); err != nil {
		return respondError(c, err, "notificación no encontrada")
	}
	return c.SendStatus(fiber.StatusNoContent)
}

// Stream godoc
// @Summary      Stream SSE de eventos del propietario
// @Description  Entrega lowStockAlert, reorderAlert, orderStatusUpdate, anomalyAlert y notification.
// @Tags         notifications
// @Security     Bearer
// @Produce      text/event-stream
// @Success      200
// @Failure      503  {object}  dto.ErrorResponse
// @Router       /api/notifications/stream [get]
func (h *NotificationHandler) Stream(c *fiber.Ctx) error {
	ownerID := GetOwnerID(c)
	if ownerID == "" {
		return unauthorized(c)
	}
	if h.subscriber == nil {
		return c.Status(fiber.StatusServiceUnavailable).JSON(dto.ErrorResponse{Code: "STREAM_DISABLED", Message: "canal en tiempo real no configurado"})
	}

	// el stream vive más que el handler: su contexto lo cancela el propio writer
	ctx, cancel := context.WithCancel(context.Background())
	events, err := h.subscriber.Subscribe(ctx, ownerID)
	if err != nil {
		cancel()
		log.Error().Err(err).Str("owner_id", ownerID).Msg("no se pudo suscribir al canal en tiempo real")
		return c.Status(fiber.StatusServiceUnavailable).JSON(dto.ErrorResponse{Code: "STREAM_UNAVAILABLE", Message: "canal en tiempo real no disponible"})
	}

	c.Set("Content-Type", "text/event-stream")
	c.Set("Cache-Control", "no-cache")
	c.Set("Connection", "keep-alive")
	c.Set("X-Accel-Buffering", "no")

	c.Context().SetBodyStreamWriter(fasthttp.StreamWriter(func(w *bufio.Writer) {
		defer cancel()
		writeSSE(w, events, streamKeepAlive)
	}))
	return nil
}

// writeSSE escribe eventos hasta que el canal se cierra o el cliente se desconecta (Flush falla).
func writeSSE(w *bufio.Writer, events <-chan *realtime.Envelope, keepAlive time.Duration) {
	ticker := time.NewTicker(keepAlive)
	defer ticker.Stop()

	fmt.Fprint(w, ": connected\n\n")
	if err := w.Flush(); err != nil {
		return
	}
	for {
		select {
		case env, ok := <-events:
			if !ok {
				return
			}
			data, err := json.Marshal(env)
			if err != nil {
				continue
			}
			fmt.Fprintf(w, "event: %s\ndata: %s\n\n", env.Event, data)
		case <-ticker.C:
			fmt.Fprint(w, ": ping\n\n")
		}
		if err := w.Flush(); err != nil {
			return
		}
	}
}
