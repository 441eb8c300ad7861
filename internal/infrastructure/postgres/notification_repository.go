package postgres

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"

	"github.com/jhoicas/Reabastecimiento-api/internal/domain/entity"
	"github.com/jhoicas/Reabastecimiento-api/internal/domain/repository"
)

var _ repository.NotificationRepository = (*NotificationRepo)(nil)

// NotificationRepo persistencia de notificaciones. data se guarda como JSONB.
type NotificationRepo struct {
	q Querier
}

// NewNotificationRepository construye el adaptador.
func NewNotificationRepository(q Querier) *NotificationRepo {
	return &NotificationRepo{q: q}
}

const notificationColumns = `id, owner_id, type, title, message, read, data, created_at`

func scanNotification(row pgx.Row) (*entity.Notification, error) {
	var n entity.Notification
	if err := row.Scan(&n.ID, &n.OwnerID, &n.Type, &n.Title, &n.Message, &n.Read, &n.Data, &n.CreatedAt); err != nil {
		return nil, err
	}
	return &n, nil
}

// Create inserta la notificación; asigna ID si viene vacío.
func (r *NotificationRepo) Create(ctx context.Context, n *entity.Notification) error {
	if n.ID == "" {
		n.ID = newID()
	}
	_, err := r.q.Exec(ctx,
		`INSERT INTO notifications (`+notificationColumns+`) VALUES ($1, $2, $3, $4, $5, $6, $7, $8)`,
		n.ID, n.OwnerID, n.Type, n.Title, n.Message, n.Read, n.Data, n.CreatedAt,
	)
	if err != nil {
		return fmt.Errorf("insert notification: %w", err)
	}
	return nil
}

// ListByOwner notificaciones más recientes primero.
func (r *NotificationRepo) ListByOwner(ctx context.Context, ownerID string, limit int) ([]*entity.Notification, error) {
	rows, err := r.q.Query(ctx,
		`SELECT `+notificationColumns+` FROM notifications WHERE owner_id = $1 ORDER BY created_at DESC LIMIT $2`,
		ownerID, limit,
	)
	if err != nil {
		return nil, fmt.Errorf("list notifications: %w", err)
	}
	defer rows.Close()

	var list []*entity.Notification
	for rows.Next() {
		n, err := scanNotification(rows)
		if err != nil {
			return nil, fmt.Errorf("scan notification: %w", err)
		}
		list = append(list, n)
	}
	return list, rows.Err()
}

// MarkRead marca como leída; nil si no existe para el propietario.
func (r *NotificationRepo) MarkRead(ctx context.Context, ownerID, id string) (*entity.Notification, error) {
	n, err := scanNotification(r.q.QueryRow(ctx,
		`UPDATE notifications SET read = true WHERE id = $1 AND owner_id = $2 RETURNING `+notificationColumns,
		id, ownerID,
	))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil
		}
		return nil, fmt.Errorf("mark notification read: %w", err)
	}
	return n, nil
}

// MarkAllRead marca todas las no leídas del propietario.
func (r *NotificationRepo) MarkAllRead(ctx context.Context, ownerID string) (int64, error) {
	tag, err := r.q.Exec(ctx, `UPDATE notifications SET read = true WHERE owner_id = $1 AND read = false`, ownerID)
	if err != nil {
		return 0, fmt.Errorf("mark all notifications read: %w", err)
	}
	return tag.RowsAffected(), nil
}

// Delete elimina la notificación del propietario.
func (r *NotificationRepo) Delete(ctx context.Context, ownerID, id string) (bool, error) {
	tag, err := r.q.Exec(ctx, `DELETE FROM notifications WHERE id = $1 AND owner_id = $2`, id, ownerID)
	if err != nil {
		return false, fmt.Errorf("delete notification: %w", err)
	}
	return tag.RowsAffected() > 0, nil
}

// CountUnread número de notificaciones sin leer.
func (r *NotificationRepo) CountUnread(ctx context.Context, ownerID string) (int, error) {
	var count int
	err := r.q.QueryRow(ctx,
		`SELECT COUNT(*) FROM notifications WHERE owner_id = $1 AND read = false`, ownerID,
	).Scan(&count)
	if err != nil {
		return 0, fmt.Errorf("count unread notifications: %w", err)
	}
	return count, nil
}
