package repository

import (
	"context"
	"time"

	"github.com/jhoicas/Reabastecimiento-api/internal/domain/entity"
)

// SaleRepository proveedor del historial de ventas (solo lectura).
// Las series se devuelven agregadas por día y ordenadas por fecha ascendente.
type SaleRepository interface {
	// ListDailySales devuelve la serie diaria de un producto desde since (inclusive).
	ListDailySales(ctx context.Context, ownerID, productID string, since time.Time) ([]entity.DailySales, error)
	// ListDailySalesByProduct devuelve una serie por producto del propietario. Las ventas con
	// referencia de producto nula o eliminada se agrupan con ProductID vacío.
	ListDailySalesByProduct(ctx context.Context, ownerID string, since time.Time) ([]entity.ProductSalesSeries, error)
}
