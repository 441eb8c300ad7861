package http

import (
	"context"

	"github.com/gofiber/fiber/v2"

	"github.com/jhoicas/Reabastecimiento-api/internal/application/dto"
	"github.com/jhoicas/Reabastecimiento-api/internal/application/forecasting"
	"github.com/jhoicas/Reabastecimiento-api/internal/application/inventory"
	"github.com/jhoicas/Reabastecimiento-api/internal/application/scheduler"
)

// StockHandler monitoreo de stock y pronóstico de demanda (protegido).
type StockHandler struct {
	reorder    *inventory.ReorderUseCase
	forecaster *forecasting.ForecastUseCase
	monitor    *scheduler.Scheduler
}

// NewStockHandler construye el handler. monitor puede ser nil (sin monitoreo periódico).
func NewStockHandler(reorder *inventory.ReorderUseCase, forecaster *forecasting.ForecastUseCase, monitor *scheduler.Scheduler) *StockHandler {
	return &StockHandler{reorder: reorder, forecaster: forecaster, monitor: monitor}
}

// CheckStock godoc
// @Summary      Ejecutar una corrida de reposición
// @Description  Revisa productos bajo umbral y crea órdenes pendientes donde corresponda.
// @Tags         stock
// @Security     Bearer
// @Produce      json
// @Success      200  {object}  map[string]interface{}
// @Failure      401  {object}  dto.ErrorResponse
// @Failure      409  {object}  dto.ErrorResponse
// @Failure      500  {object}  dto.ErrorResponse
// @Router       /api/stock/check-stock [get]
func (h *StockHandler) CheckStock(c *fiber.Ctx) error {
	ownerID := GetOwnerID(c)
	if ownerID == "" {
		return unauthorized(c)
	}
	var reorders []dto.ReorderRequestDTO
	ran, err := runGuarded(c, h.monitor, ownerID, func(ctx context.Context) error {
		var err error
		reorders, err = h.reorder.CheckStockLevels(ctx, ownerID)
		return err
	})
	if err != nil {
		return respondError(c, err, "")
	}
	if !ran {
		return runInProgress(c)
	}
	if reorders == nil {
		reorders = []dto.ReorderRequestDTO{}
	}
	return c.JSON(fiber.Map{
		"total":    len(reorders),
		"reorders": reorders,
	})
}

// Monitor godoc
// @Summary      Iniciar monitoreo periódico del propietario
// @Tags         stock
// @Security     Bearer
// @Produce      json
// @Success      202  {object}  map[string]interface{}
// @Failure      503  {object}  dto.ErrorResponse
// @Router       /api/stock/monitor [post]
func (h *StockHandler) Monitor(c *fiber.Ctx) error {
	ownerID := GetOwnerID(c)
	if ownerID == "" {
		return unauthorized(c)
	}
	if h.monitor == nil {
		return c.Status(fiber.StatusServiceUnavailable).JSON(dto.ErrorResponse{Code: "MONITOR_DISABLED", Message: "monitoreo periódico deshabilitado"})
	}
	if !h.monitor.Start(ownerID) {
		return c.Status(fiber.StatusServiceUnavailable).JSON(dto.ErrorResponse{Code: "MONITOR_STOPPED", Message: "el servicio se está deteniendo"})
	}
	return c.Status(fiber.StatusAccepted).JSON(fiber.Map{"monitoring": true})
}

// Forecast godoc
// @Summary      Pronóstico de demanda de un producto
// @Tags         stock
// @Security     Bearer
// @Produce      json
// @Param        productId  path  string  true  "ID del producto"
// @Success      200  {object}  dto.ForecastResult
// @Failure      400  {object}  dto.ErrorResponse
// @Router       /api/stock/forecast/{productId} [get]
func (h *StockHandler) Forecast(c *fiber.Ctx) error {
	ownerID := GetOwnerID(c)
	if ownerID == "" {
		return unauthorized(c)
	}
	productID := c.Params("productId")
	if productID == "" {
		return c.Status(fiber.StatusBadRequest).JSON(dto.ErrorResponse{Code: "MISSING_ID", Message: "productId es requerido"})
	}
	return c.JSON(h.forecaster.ForecastProduct(c.Context(), ownerID, productID))
}
