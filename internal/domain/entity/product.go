package entity

import (
	"time"

	"github.com/shopspring/decimal"
)

// DefaultReorderThreshold umbral de reorden cuando el producto no define uno.
const DefaultReorderThreshold = 10

// Product representa un producto del inventario de un propietario.
// Stock solo se incrementa al completar una orden de reposición; el resto del ciclo de vida
// (alta, edición, baja) lo maneja el módulo externo de catálogo.
type Product struct {
	ID               string
	OwnerID          string
	SellerID         string
	Name             string
	Stock            int
	ReorderThreshold int             // stock por debajo del cual se dispara la reposición
	Price            decimal.Decimal // precio unitario de compra al proveedor
	CreatedAt        time.Time
	UpdatedAt        time.Time
}

// IsLowStock indica si el stock actual está por debajo del umbral de reorden.
func (p *Product) IsLowStock() bool {
	return p.Stock < p.ReorderThreshold
}
