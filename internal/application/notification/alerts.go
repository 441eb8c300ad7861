package notification

import (
	"context"
	"fmt"

	"github.com/jhoicas/Reabastecimiento-api/internal/application/dto"
	"github.com/jhoicas/Reabastecimiento-api/internal/application/ports"
	"github.com/jhoicas/Reabastecimiento-api/internal/domain/entity"
)

// SendLowStockAlert avisa que el producto quedó bajo su umbral. fc puede ser nil.
func (d *Dispatcher) SendLowStockAlert(ctx context.Context, p *entity.Product, fc *dto.ForecastResult) error {
	msg := fmt.Sprintf("Warning: %s is low in stock.", p.Name)
	data := &entity.NotificationData{
		ProductID:        p.ID,
		ProductName:      p.Name,
		CurrentStock:     intPtr(p.Stock),
		ReorderThreshold: intPtr(p.ReorderThreshold),
	}
	if fc != nil {
		msg += fmt.Sprintf(" Forecasted demand: %d units (%.1f%% confidence)", fc.ForecastedDemand, fc.Confidence)
		data.ForecastedDemand = intPtr(fc.ForecastedDemand)
		data.Confidence = floatPtr(fc.Confidence)
	}
	_, err := d.dispatch(ctx, p.OwnerID, entity.NotificationLowStock, TitleLowStock, msg, data, ports.EventLowStockAlert)
	return err
}

// SendReorderAlert avisa que se generó una orden de reposición automática.
func (d *Dispatcher) SendReorderAlert(ctx context.Context, o *entity.Order) error {
	msg := fmt.Sprintf("Automated reorder placed for %s.", o.ProductName)
	data := &entity.NotificationData{
		ProductID:   o.ProductID,
		ProductName: o.ProductName,
		OrderID:     o.ID,
		Status:      string(o.Status),
	}
	if o.ForecastData != nil {
		msg += fmt.Sprintf(" Based on forecasted demand: %d units", o.ForecastData.ForecastedDemand)
		data.ForecastedDemand = intPtr(o.ForecastData.ForecastedDemand)
		data.Confidence = floatPtr(o.ForecastData.Confidence)
	}
	_, err := d.dispatch(ctx, o.OwnerID, entity.NotificationReorder, TitleReorder, msg, data, ports.EventReorderAlert)
	return err
}

// SendOrderStatusUpdate avisa el cambio de estado de una orden.
func (d *Dispatcher) SendOrderStatusUpdate(ctx context.Context, o *entity.Order) error {
	msg := fmt.Sprintf("Order status updated: %s is now %s", o.ProductName, o.Status)
	data := &entity.NotificationData{
		ProductID:   o.ProductID,
		ProductName: o.ProductName,
		OrderID:     o.ID,
		Status:      string(o.Status),
	}
	_, err := d.dispatch(ctx, o.OwnerID, entity.NotificationOrderStatus, TitleOrderStatus, msg, data, ports.EventOrderStatusUpdate)
	return err
}

// SendAnomalyAlert notificación de sistema por una alerta de anomalía recién creada.
func (d *Dispatcher) SendAnomalyAlert(ctx context.Context, a *entity.AnomalyAlert) error {
	data := &entity.NotificationData{
		ProductID:   a.ProductID,
		ProductName: a.ProductName,
		Severity:    string(a.Severity),
	}
	_, err := d.dispatch(ctx, a.OwnerID, entity.NotificationSystem, TitleAnomaly, a.Description, data, ports.EventAnomalyAlert)
	return err
}

func intPtr(v int) *int { return &v }

func floatPtr(v float64) *float64 { return &v }
