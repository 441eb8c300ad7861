package entity

import (
	"time"

	"github.com/shopspring/decimal"
)

// OrderStatus estado de una orden de reposición.
type OrderStatus string

const (
	OrderStatusPending   OrderStatus = "pending"
	OrderStatusCompleted OrderStatus = "completed"
	OrderStatusCancelled OrderStatus = "cancelled"
)

// validNext transiciones permitidas; completed y cancelled son terminales.
var validNext = map[OrderStatus]map[OrderStatus]bool{
	OrderStatusPending:   {OrderStatusCompleted: true, OrderStatusCancelled: true},
	OrderStatusCompleted: {},
	OrderStatusCancelled: {},
}

// CanTransition indica si la orden puede pasar de from a to.
func CanTransition(from, to OrderStatus) bool {
	return validNext[from][to]
}

// IsValid indica si el estado es uno de los conocidos.
func (s OrderStatus) IsValid() bool {
	_, ok := validNext[s]
	return ok
}

// ForecastData pronóstico adjunto a la orden al momento de crearla.
type ForecastData struct {
	ForecastedDemand int     `json:"forecasted_demand"`
	Confidence       float64 `json:"confidence"`
	Method           string  `json:"method,omitempty"`
}

// Order orden de reposición generada automáticamente para un producto bajo umbral.
// Invariante: como máximo una orden pending por (OwnerID, ProductID).
type Order struct {
	ID           string
	OwnerID      string
	ProductID    string
	SellerID     string
	ProductName  string
	SellerName   string
	Quantity     int
	TotalPrice   decimal.Decimal
	Status       OrderStatus
	ETA          time.Time
	ForecastData *ForecastData
	CreatedAt    time.Time
	UpdatedAt    time.Time
}

// UnitPrice precio unitario derivado del total de la orden.
func (o *Order) UnitPrice() decimal.Decimal {
	if o.Quantity <= 0 {
		return decimal.Zero
	}
	return o.TotalPrice.Div(decimal.NewFromInt(int64(o.Quantity))).Round(2)
}
