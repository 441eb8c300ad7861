package entity

import (
	"time"

	"github.com/shopspring/decimal"
)

// PurchaseStatusCompleted único estado con el que el núcleo crea compras.
const PurchaseStatusCompleted = "completed"

// Purchase registro de compra creado como efecto de completar una orden.
type Purchase struct {
	ID          string
	OwnerID     string
	OrderID     string
	SellerID    string
	ProductID   string
	SellerName  string
	ProductName string
	Quantity    int
	UnitPrice   decimal.Decimal
	TotalPrice  decimal.Decimal
	Status      string
	CreatedAt   time.Time
}
