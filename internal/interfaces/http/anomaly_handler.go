package http

import (
	"context"

	"github.com/gofiber/fiber/v2"

	"github.com/jhoicas/Reabastecimiento-api/internal/application/anomaly"
	"github.com/jhoicas/Reabastecimiento-api/internal/application/dto"
	"github.com/jhoicas/Reabastecimiento-api/internal/application/scheduler"
	"github.com/jhoicas/Reabastecimiento-api/internal/domain"
)

// AnomalyHandler alertas de anomalías de ventas (protegido).
type AnomalyHandler struct {
	uc      *anomaly.DetectionUseCase
	monitor *scheduler.Scheduler
}

// NewAnomalyHandler construye el handler. Con monitor, la detección manual
// comparte el flag de corrida de la detección periódica.
func NewAnomalyHandler(uc *anomaly.DetectionUseCase, monitor *scheduler.Scheduler) *AnomalyHandler {
	return &AnomalyHandler{uc: uc, monitor: monitor}
}

// List godoc
// @Summary      Últimas alertas de anomalías
// @Tags         anomalies
// @Security     Bearer
// @Produce      json
// @Success      200  {array}  dto.AnomalyAlertResponse
// @Router       /api/anomalies [get]
func (h *AnomalyHandler) List(c *fiber.Ctx) error {
	ownerID := GetOwnerID(c)
	if ownerID == "" {
		return unauthorized(c)
	}
	alerts, err := h.uc.ListRecent(c.Context(), ownerID)
	if err != nil {
		return respondError(c, err, "")
	}
	out := make([]*dto.AnomalyAlertResponse, 0, len(alerts))
	for _, a := range alerts {
		out = append(out, dto.ToAnomalyAlertResponse(a))
	}
	return c.JSON(out)
}

// Detect godoc
// @Summary      Ejecutar detección de anomalías
// @Tags         anomalies
// @Security     Bearer
// @Produce      json
// @Success      200  {object}  dto.DetectionReport
// @Failure      409  {object}  dto.ErrorResponse
// @Router       /api/anomalies/detect [post]
func (h *AnomalyHandler) Detect(c *fiber.Ctx) error {
	ownerID := GetOwnerID(c)
	if ownerID == "" {
		return unauthorized(c)
	}
	var report *dto.DetectionReport
	ran, err := runGuarded(c, h.monitor, ownerID, func(ctx context.Context) error {
		var err error
		report, err = h.uc.Detect(ctx, ownerID)
		return err
	})
	if err != nil {
		return respondError(c, err, "")
	}
	if !ran {
		return runInProgress(c)
	}
	return c.JSON(report)
}

// Delete godoc
// @Summary      Eliminar una alerta
// @Tags         anomalies
// @Security     Bearer
// @Param        id  path  string  true  "ID de la alerta"
// @Success      204
// @Failure      404  {object}  dto.ErrorResponse
// @Router       /api/anomalies/{id} [delete]
func (h *AnomalyHandler) Delete(c *fiber.Ctx) error {
	ownerID := GetOwnerID(c)
	if ownerID == "" {
		return unauthorized(c)
	}
	id, ok := pathID(c, "id")
	if !ok {
		return respondError(c, domain.ErrNotFound, "alerta no encontrada")
	}
	if err := h.uc.Delete(c.Context(), ownerID, id); err != nil {
		return respondError(c, err, "alerta no encontrada")
	}
	return c.SendStatus(fiber.StatusNoContent)
}
