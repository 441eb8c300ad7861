package notification

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/rs/zerolog"

	"github.com/jhoicas/Reabastecimiento-api/internal/application/dto"
	"github.com/jhoicas/Reabastecimiento-api/internal/application/ports"
	"github.com/jhoicas/Reabastecimiento-api/internal/domain"
	"github.com/jhoicas/Reabastecimiento-api/internal/domain/entity"
	"github.com/jhoicas/Reabastecimiento-api/internal/domain/repository"
)

// DefaultListLimit notificaciones devueltas por List cuando limit <= 0.
const DefaultListLimit = 50

// Títulos de las notificaciones automáticas.
const (
	TitleLowStock    = "Low Stock Alert"
	TitleReorder     = "Reorder Alert"
	TitleOrderStatus = "Order Status Update"
	TitleAnomaly     = "Anomaly Detected"
)

// Dispatcher persiste notificaciones por propietario y las difunde por los canales en tiempo real.
// La persistencia es la fuente de verdad: un fallo al emitir solo se registra en el log.
type Dispatcher struct {
	repo     repository.NotificationRepository
	emitters []ports.RealtimeEmitter
	log      zerolog.Logger
	now      func() time.Time
}

// NewDispatcher construye el dispatcher con cero o más emisores.
func NewDispatcher(
	repo repository.NotificationRepository,
	log zerolog.Logger,
	emitters ...ports.RealtimeEmitter,
) *Dispatcher {
	return &Dispatcher{
		repo:     repo,
		emitters: emitters,
		log:      log.With().Str("component", "notifications").Logger(),
		now:      time.Now,
	}
}

// Create persiste la notificación y la emite como evento "notification".
func (d *Dispatcher) Create(
	ctx context.Context,
	ownerID string,
	typ entity.NotificationType,
	title, message string,
	data *entity.NotificationData,
) (*entity.Notification, error) {
	return d.dispatch(ctx, ownerID, typ, title, message, data, ports.EventNotification)
}

func (d *Dispatcher) dispatch(
	ctx context.Context,
	ownerID string,
	typ entity.NotificationType,
	title, message string,
	data *entity.NotificationData,
	event string,
) (*entity.Notification, error) {
	if ownerID == "" || strings.TrimSpace(title) == "" || strings.TrimSpace(message) == "" {
		return nil, domain.ErrInvalidInput
	}
	n := &entity.Notification{
		OwnerID:   ownerID,
		Type:      typ,
		Title:     title,
		Message:   message,
		Data:      data,
		CreatedAt: d.now(),
	}
	if err := d.repo.Create(ctx, n); err != nil {
		return nil, fmt.Errorf("create notification: %w", err)
	}
	d.emit(ctx, ownerID, event, dto.ToNotificationResponse(n))
	return n, nil
}

func (d *Dispatcher) emit(ctx context.Context, ownerID, event string, payload any) {
	for _, e := range d.emitters {
		if err := e.Emit(ctx, ownerID, event, payload); err != nil {
			d.log.Warn().Err(err).
				Str("owner_id", ownerID).
				Str("event", event).
				Msg("no se pudo emitir notificación en tiempo real")
		}
	}
}

// List devuelve las notificaciones más recientes del propietario.
func (d *Dispatcher) List(ctx context.Context, ownerID string, limit int) ([]*entity.Notification, error) {
	if limit <= 0 {
		limit = DefaultListLimit
	}
	return d.repo.ListByOwner(ctx, ownerID, limit)
}

// UnreadCount número de notificaciones sin leer.
func (d *Dispatcher) UnreadCount(ctx context.Context, ownerID string) (int, error) {
	return d.repo.CountUnread(ctx, ownerID)
}

// MarkRead marca la notificación como leída. Idempotente; ErrNotFound si no es del propietario.
func (d *Dispatcher) MarkRead(ctx context.Context, ownerID, id string) (*entity.Notification, error) {
	n, err := d.repo.MarkRead(ctx, ownerID, id)
	if err != nil {
		return nil, err
	}
	if n == nil {
		return nil, domain.ErrNotFound
	}
	return n, nil
}

// MarkAllRead marca todas las notificaciones del propietario como leídas.
func (d *Dispatcher) MarkAllRead(ctx context.Context, ownerID string) (int64, error) {
	return d.repo.MarkAllRead(ctx, ownerID)
}

// Delete elimina la notificación. ErrNotFound si no existe o es de otro propietario.
func (d *Dispatcher) Delete(ctx context.Context, ownerID, id string) error {
	ok, err := d.repo.Delete(ctx, ownerID, id)
	if err != nil {
		return err
	}
	if !ok {
		return domain.ErrNotFound
	}
	return nil
}
