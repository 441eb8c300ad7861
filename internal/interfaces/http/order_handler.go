package http

import (
	"github.com/gofiber/fiber/v2"

	"github.com/jhoicas/Reabastecimiento-api/internal/application/dto"
	"github.com/jhoicas/Reabastecimiento-api/internal/application/inventory"
	"github.com/jhoicas/Reabastecimiento-api/internal/domain"
	"github.com/jhoicas/Reabastecimiento-api/internal/domain/entity"
)

// OrderHandler órdenes de reposición (protegido).
type OrderHandler struct {
	uc *inventory.OrderLifecycleUseCase
}

func NewOrderHandler(uc *inventory.OrderLifecycleUseCase) *OrderHandler {
	return &OrderHandler{uc: uc}
}

// Pending godoc
// @Summary      Órdenes pendientes del propietario
// @Tags         orders
// @Security     Bearer
// @Produce      json
// @Success      200  {array}   dto.OrderResponse
// @Router       /api/orders/pending [get]
func (h *OrderHandler) Pending(c *fiber.Ctx) error {
	ownerID := GetOwnerID(c)
	if ownerID == "" {
		return unauthorized(c)
	}
	orders, err := h.uc.ListPending(c.Context(), ownerID)
	if err != nil {
		return respondError(c, err, "")
	}
	out := make([]*dto.OrderResponse, 0, len(orders))
	for _, o := range orders {
		out = append(out, dto.ToOrderResponse(o))
	}
	return c.JSON(out)
}

// UpdateStatus godoc
// @Summary      Completar o cancelar una orden
// @Description  completed incrementa el stock y registra la compra en la misma transacción.
// @Tags         orders
// @Security     Bearer
// @Accept       json
// @Produce      json
// @Param        id    path  string                        true  "ID de la orden"
// @Param        body  body  dto.UpdateOrderStatusRequest  true  "status: completed | cancelled"
// @Success      200   {object}  dto.OrderResponse
// @Failure      400   {object}  dto.ErrorResponse
// @Failure      404   {object}  dto.ErrorResponse
// @Failure      409   {object}  dto.ErrorResponse
// @Router       /api/orders/{id}/status [patch]
func (h *OrderHandler) UpdateStatus(c *fiber.Ctx) error {
	ownerID := GetOwnerID(c)
	if ownerID == "" {
		return unauthorized(c)
	}
	id, ok := pathID(c, "id")
	if !ok {
		return respondError(c, domain.ErrNotFound, "orden no encontrada")
	}
	var in dto.UpdateOrderStatusRequest
	if err := c.BodyParser(&in); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(dto.ErrorResponse{Code: "INVALID_BODY", Message: "cuerpo inválido"})
	}
	order, err := h.uc.UpdateStatus(c.Context(), ownerID, id, entity.OrderStatus(in.Status))
	if err != nil {
		return respondError(c, err, "orden no encontrada")
	}
	return c.JSON(dto.ToOrderResponse(order))
}
