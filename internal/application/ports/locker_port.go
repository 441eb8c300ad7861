package ports

import "context"

// KeyLocker serializa secciones críticas por clave (ej. owner:product) entre corridas concurrentes.
// TryLock no bloquea: ok=false si la clave ya está tomada. release debe llamarse siempre que ok=true.
type KeyLocker interface {
	TryLock(ctx context.Context, key string) (release func(), ok bool, err error)
}
