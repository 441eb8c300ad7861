package redisx

import (
	"fmt"
	"time"
)

const (
	// Lock de reposición: lock:{key} -> token del dueño
	KeyLock = "lock:%s"

	// Canal pub/sub de notificaciones por propietario: notifications:{owner_id}
	KeyNotificationChannel = "notifications:%s"
)

var (
	TTLLock = 2 * time.Minute
)

// NotificationChannel canal pub/sub del propietario.
func NotificationChannel(ownerID string) string {
	return fmt.Sprintf(KeyNotificationChannel, ownerID)
}
