package inventory

import (
	"context"

	"github.com/jhoicas/Reabastecimiento-api/internal/application/dto"
	"github.com/jhoicas/Reabastecimiento-api/internal/domain/entity"
	"github.com/jhoicas/Reabastecimiento-api/internal/domain/repository"
)

// TxRunner ejecuta una función dentro de una transacción de BD, pasando repositorios atados a esa tx.
// Garantiza atomicidad del completado de órdenes (estado + stock + compra).
type TxRunner interface {
	Run(ctx context.Context, fn func(
		orderRepo repository.OrderRepository,
		productRepo repository.ProductRepository,
		purchaseRepo repository.PurchaseRepository,
	) error) error
}

// Forecaster pronóstico de demanda por producto (nunca falla).
type Forecaster interface {
	ForecastProduct(ctx context.Context, ownerID, productID string) *dto.ForecastResult
}

// Notifier avisos al operador emitidos por el ciclo de reposición.
type Notifier interface {
	SendLowStockAlert(ctx context.Context, p *entity.Product, fc *dto.ForecastResult) error
	SendReorderAlert(ctx context.Context, o *entity.Order) error
	SendOrderStatusUpdate(ctx context.Context, o *entity.Order) error
}
