package dto

import (
	"time"

	"github.com/shopspring/decimal"

	"github.com/jhoicas/Reabastecimiento-api/internal/domain/entity"
)

// UpdateOrderStatusRequest body para PATCH /api/orders/:id/status.
type UpdateOrderStatusRequest struct {
	Status string `json:"status"` // completed | cancelled
}

// OrderForecastDTO pronóstico adjunto a la orden.
type OrderForecastDTO struct {
	ForecastedDemand int     `json:"forecasted_demand"`
	Confidence       float64 `json:"confidence"`
	Method           string  `json:"method,omitempty"`
}

// OrderResponse representación HTTP de una orden de reposición.
type OrderResponse struct {
	ID           string            `json:"id"`
	ProductID    string            `json:"product_id"`
	SellerID     string            `json:"seller_id"`
	ProductName  string            `json:"product_name"`
	SellerName   string            `json:"seller_name"`
	Quantity     int               `json:"quantity"`
	TotalPrice   decimal.Decimal   `json:"total_price"`
	Status       string            `json:"status"`
	ETA          time.Time         `json:"eta"`
	ForecastData *OrderForecastDTO `json:"forecast_data,omitempty"`
	CreatedAt    time.Time         `json:"created_at"`
	UpdatedAt    time.Time         `json:"updated_at"`
}

// ReorderRequestDTO resultado de una reposición generada en una corrida de monitoreo.
type ReorderRequestDTO struct {
	ProductID        string            `json:"product_id"`
	ProductName      string            `json:"product_name"`
	CurrentStock     int               `json:"current_stock"`
	ReorderThreshold int               `json:"reorder_threshold"`
	ReorderQuantity  int               `json:"reorder_quantity"`
	OrderID          string            `json:"order_id"`
	ForecastData     *OrderForecastDTO `json:"forecast_data"`
}

// ToOrderResponse convierte la entidad a DTO.
func ToOrderResponse(o *entity.Order) *OrderResponse {
	out := &OrderResponse{
		ID:          o.ID,
		ProductID:   o.ProductID,
		SellerID:    o.SellerID,
		ProductName: o.ProductName,
		SellerName:  o.SellerName,
		Quantity:    o.Quantity,
		TotalPrice:  o.TotalPrice,
		Status:      string(o.Status),
		ETA:         o.ETA,
		CreatedAt:   o.CreatedAt,
		UpdatedAt:   o.UpdatedAt,
	}
	if o.ForecastData != nil {
		out.ForecastData = &OrderForecastDTO{
			ForecastedDemand: o.ForecastData.ForecastedDemand,
			Confidence:       o.ForecastData.Confidence,
			Method:           o.ForecastData.Method,
		}
	}
	return out
}
