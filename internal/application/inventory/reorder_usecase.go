package inventory

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog"
	"github.com/shopspring/decimal"
	"golang.org/x/sync/errgroup"

	"github.com/jhoicas/Reabastecimiento-api/internal/application/dto"
	"github.com/jhoicas/Reabastecimiento-api/internal/application/locking"
	"github.com/jhoicas/Reabastecimiento-api/internal/application/ports"
	"github.com/jhoicas/Reabastecimiento-api/internal/domain"
	"github.com/jhoicas/Reabastecimiento-api/internal/domain/entity"
	"github.com/jhoicas/Reabastecimiento-api/internal/domain/inventory"
	"github.com/jhoicas/Reabastecimiento-api/internal/domain/repository"
)

// ReorderOptions parámetros del orquestador de reposición.
type ReorderOptions struct {
	Concurrency int // productos procesados en paralelo por corrida
	ETADays     int // días hasta la entrega estimada de la orden
}

func (o ReorderOptions) withDefaults() ReorderOptions {
	if o.Concurrency <= 0 {
		o.Concurrency = 4
	}
	if o.ETADays <= 0 {
		o.ETADays = 7
	}
	return o
}

// ReorderUseCase detecta productos bajo umbral y genera órdenes de reposición pending.
// Cada producto se procesa de forma aislada: el fallo de uno no afecta a los demás.
type ReorderUseCase struct {
	productRepo repository.ProductRepository
	sellerRepo  repository.SellerRepository
	orderRepo   repository.OrderRepository
	forecaster  Forecaster
	notifier    Notifier
	locker      ports.KeyLocker
	opts        ReorderOptions
	log         zerolog.Logger
	now         func() time.Time
}

// NewReorderUseCase construye el orquestador. locker nil usa un LocalLocker.
func NewReorderUseCase(
	productRepo repository.ProductRepository,
	sellerRepo repository.SellerRepository,
	orderRepo repository.OrderRepository,
	forecaster Forecaster,
	notifier Notifier,
	locker ports.KeyLocker,
	opts ReorderOptions,
	log zerolog.Logger,
) *ReorderUseCase {
	if locker == nil {
		locker = locking.NewLocalLocker()
	}
	return &ReorderUseCase{
		productRepo: productRepo,
		sellerRepo:  sellerRepo,
		orderRepo:   orderRepo,
		forecaster:  forecaster,
		notifier:    notifier,
		locker:      locker,
		opts:        opts.withDefaults(),
		log:         log.With().Str("component", "reorder").Logger(),
		now:         time.Now,
	}
}

// CheckStockLevels recorre los productos con stock < umbral del propietario y crea una orden
// pending por cada uno que no la tenga. Devuelve las reposiciones creadas en esta corrida.
func (uc *ReorderUseCase) CheckStockLevels(ctx context.Context, ownerID string) ([]dto.ReorderRequestDTO, error) {
	if ownerID == "" {
		return nil, domain.ErrInvalidInput
	}
	products, err := uc.productRepo.ListLowStock(ctx, ownerID)
	if err != nil {
		return nil, fmt.Errorf("list low stock: %w", err)
	}
	if len(products) == 0 {
		return []dto.ReorderRequestDTO{}, nil
	}

	results := make([]*dto.ReorderRequestDTO, len(products))
	var g errgroup.Group
	g.SetLimit(uc.opts.Concurrency)
	for i, p := range products {
		i, p := i, p
		g.Go(func() error {
			res, err := uc.reorderProduct(ctx, p)
			if err != nil {
				uc.log.Error().Err(err).
					Str("owner_id", ownerID).
					Str("product_id", p.ID).
					Msg("reposición del producto falló")
				return nil
			}
			results[i] = res
			return nil
		})
	}
	_ = g.Wait()

	out := make([]dto.ReorderRequestDTO, 0, len(results))
	for _, r := range results {
		if r != nil {
			out = append(out, *r)
		}
	}
	return out, nil
}

// reorderProduct devuelve nil, nil cuando el producto se omite sin error.
func (uc *ReorderUseCase) reorderProduct(ctx context.Context, p *entity.Product) (*dto.ReorderRequestDTO, error) {
	logger := uc.log.With().Str("owner_id", p.OwnerID).Str("product_id", p.ID).Logger()

	release, ok, err := uc.locker.TryLock(ctx, ReorderLockKey(p.OwnerID, p.ID))
	if err != nil {
		return nil, fmt.Errorf("lock: %w", err)
	}
	if !ok {
		logger.Debug().Msg("reposición en curso en otra corrida, se omite")
		return nil, nil
	}
	defer release()

	pending, err := uc.orderRepo.HasPending(ctx, p.OwnerID, p.ID)
	if err != nil {
		return nil, fmt.Errorf("has pending: %w", err)
	}
	if pending {
		logger.Debug().Msg("ya existe una orden pendiente")
		return nil, nil
	}

	fc := uc.forecaster.ForecastProduct(ctx, p.OwnerID, p.ID)

	seller, err := uc.sellerRepo.GetByID(ctx, p.OwnerID, p.SellerID)
	if err != nil {
		return nil, fmt.Errorf("get seller: %w", err)
	}
	if seller == nil {
		logger.Warn().Str("seller_id", p.SellerID).Msg("proveedor no encontrado, se omite la reposición")
		return nil, nil
	}

	qty := inventory.SuggestedReorderQuantity(p.ReorderThreshold, fc.ForecastedDemand)
	now := uc.now()
	order := &entity.Order{
		ID:          uuid.New().String(),
		OwnerID:     p.OwnerID,
		ProductID:   p.ID,
		SellerID:    seller.ID,
		ProductName: p.Name,
		SellerName:  seller.Name,
		Quantity:    qty,
		TotalPrice:  p.Price.Mul(decimal.NewFromInt(int64(qty))),
		Status:      entity.OrderStatusPending,
		ETA:         now.AddDate(0, 0, uc.opts.ETADays),
		ForecastData: &entity.ForecastData{
			ForecastedDemand: fc.ForecastedDemand,
			Confidence:       fc.Confidence,
			Method:           fc.Method,
		},
		CreatedAt: now,
		UpdatedAt: now,
	}
	if err := uc.orderRepo.Create(ctx, order); err != nil {
		if errors.Is(err, domain.ErrPendingOrderExists) {
			logger.Debug().Msg("orden pendiente creada concurrentemente")
			return nil, nil
		}
		return nil, fmt.Errorf("create order: %w", err)
	}
	logger.Info().
		Str("order_id", order.ID).
		Int("quantity", qty).
		Str("method", fc.Method).
		Msg("orden de reposición creada")

	if err := uc.notifier.SendLowStockAlert(ctx, p, fc); err != nil {
		logger.Warn().Err(err).Msg("no se pudo notificar stock bajo")
	}
	if err := uc.notifier.SendReorderAlert(ctx, order); err != nil {
		logger.Warn().Err(err).Msg("no se pudo notificar la reposición")
	}

	return &dto.ReorderRequestDTO{
		ProductID:        p.ID,
		ProductName:      p.Name,
		CurrentStock:     p.Stock,
		ReorderThreshold: p.ReorderThreshold,
		ReorderQuantity:  qty,
		OrderID:          order.ID,
		ForecastData: &dto.OrderForecastDTO{
			ForecastedDemand: fc.ForecastedDemand,
			Confidence:       fc.Confidence,
			Method:           fc.Method,
		},
	}, nil
}
