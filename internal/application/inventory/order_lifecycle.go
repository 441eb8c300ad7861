package inventory

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog"

	"github.com/jhoicas/Reabastecimiento-api/internal/domain"
	"github.com/jhoicas/Reabastecimiento-api/internal/domain/entity"
	"github.com/jhoicas/Reabastecimiento-api/internal/domain/repository"
)

// OrderLifecycleUseCase transiciones de estado de las órdenes de reposición.
// El completado (estado + stock + compra) es atómico vía TxRunner.
type OrderLifecycleUseCase struct {
	txRunner  TxRunner
	orderRepo repository.OrderRepository
	notifier  Notifier
	log       zerolog.Logger
	now       func() time.Time
}

// NewOrderLifecycleUseCase construye el caso de uso.
func NewOrderLifecycleUseCase(
	txRunner TxRunner,
	orderRepo repository.OrderRepository,
	notifier Notifier,
	log zerolog.Logger,
) *OrderLifecycleUseCase {
	return &OrderLifecycleUseCase{
		txRunner:  txRunner,
		orderRepo: orderRepo,
		notifier:  notifier,
		log:       log.With().Str("component", "orders").Logger(),
		now:       time.Now,
	}
}

// UpdateStatus pasa una orden pending a completed o cancelled. Dentro de una transacción
// bloquea la fila (SELECT FOR UPDATE); al completar suma la cantidad al stock del producto
// y registra la compra. Cualquier fallo revierte las tres escrituras.
func (uc *OrderLifecycleUseCase) UpdateStatus(
	ctx context.Context,
	ownerID, orderID string,
	status entity.OrderStatus,
) (*entity.Order, error) {
	if ownerID == "" || orderID == "" {
		return nil, domain.ErrInvalidInput
	}
	if status != entity.OrderStatusCompleted && status != entity.OrderStatusCancelled {
		return nil, domain.ErrInvalidInput
	}

	now := uc.now()
	var updated *entity.Order

	err := uc.txRunner.Run(ctx, func(
		orderRepo repository.OrderRepository,
		productRepo repository.ProductRepository,
		purchaseRepo repository.PurchaseRepository,
	) error {
		order, err := orderRepo.GetForUpdate(ctx, ownerID, orderID)
		if err != nil {
			return err
		}
		if order == nil {
			return domain.ErrNotFound
		}
		if !entity.CanTransition(order.Status, status) {
			return domain.ErrInvalidTransition
		}

		order.Status = status
		order.UpdatedAt = now
		if err := orderRepo.UpdateStatus(ctx, order); err != nil {
			return fmt.Errorf("update order status: %w", err)
		}

		if status == entity.OrderStatusCompleted {
			if err := uc.complete(ctx, productRepo, purchaseRepo, order, now); err != nil {
				return err
			}
		}
		updated = order
		return nil
	})
	if err != nil {
		return nil, err
	}

	uc.log.Info().
		Str("owner_id", ownerID).
		Str("order_id", orderID).
		Str("status", string(status)).
		Msg("estado de orden actualizado")

	if err := uc.notifier.SendOrderStatusUpdate(ctx, updated); err != nil {
		uc.log.Warn().Err(err).Str("order_id", orderID).Msg("no se pudo notificar el cambio de estado")
	}
	return updated, nil
}

// complete suma stock y registra la compra. Debe ejecutarse dentro de la tx.
func (uc *OrderLifecycleUseCase) complete(
	ctx context.Context,
	productRepo repository.ProductRepository,
	purchaseRepo repository.PurchaseRepository,
	order *entity.Order,
	now time.Time,
) error {
	product, err := productRepo.IncrementStock(ctx, order.OwnerID, order.ProductID, order.Quantity)
	if err != nil {
		return fmt.Errorf("increment stock: %w", err)
	}
	if product == nil {
		return fmt.Errorf("increment stock: %w", domain.ErrNotFound)
	}

	purchase := &entity.Purchase{
		ID:          uuid.New().String(),
		OwnerID:     order.OwnerID,
		OrderID:     order.ID,
		SellerID:    order.SellerID,
		ProductID:   order.ProductID,
		SellerName:  order.SellerName,
		ProductName: order.ProductName,
		Quantity:    order.Quantity,
		UnitPrice:   order.UnitPrice(),
		TotalPrice:  order.TotalPrice,
		Status:      entity.PurchaseStatusCompleted,
		CreatedAt:   now,
	}
	if err := purchaseRepo.Create(ctx, purchase); err != nil {
		return fmt.Errorf("create purchase: %w", err)
	}
	return nil
}

// ListPending órdenes pending del propietario, más recientes primero.
func (uc *OrderLifecycleUseCase) ListPending(ctx context.Context, ownerID string) ([]*entity.Order, error) {
	return uc.orderRepo.ListPending(ctx, ownerID)
}
