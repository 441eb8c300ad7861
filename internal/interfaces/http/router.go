package http

import (
	"github.com/gofiber/fiber/v2"

	"github.com/jhoicas/Reabastecimiento-api/internal/application/anomaly"
	"github.com/jhoicas/Reabastecimiento-api/internal/application/forecasting"
	"github.com/jhoicas/Reabastecimiento-api/internal/application/inventory"
	"github.com/jhoicas/Reabastecimiento-api/internal/application/notification"
	"github.com/jhoicas/Reabastecimiento-api/internal/application/scheduler"
)

// RouterDeps dependencias para el router.
type RouterDeps struct {
	Reorder        *inventory.ReorderUseCase
	OrderLifecycle *inventory.OrderLifecycleUseCase
	Forecaster     *forecasting.ForecastUseCase
	Anomalies      *anomaly.DetectionUseCase
	Notifications  *notification.Dispatcher
	StockMonitor   *scheduler.Scheduler
	AnomalyMonitor *scheduler.Scheduler
	Subscriber     EventSubscriber
	JWTSecret      string
}

// Router registra las rutas de la API. Todas requieren Bearer Token.
func Router(app *fiber.App, deps RouterDeps) {
	api := app.Group("/api", AuthMiddleware(deps.JWTSecret))

	stock := api.Group("/stock")
	stockHandler := NewStockHandler(deps.Reorder, deps.Forecaster, deps.StockMonitor)
	stock.Get("/check-stock", stockHandler.CheckStock)
	stock.Post("/monitor", stockHandler.Monitor)
	stock.Get("/forecast/:productId", stockHandler.Forecast)

	orders := api.Group("/orders")
	orderHandler := NewOrderHandler(deps.OrderLifecycle)
	orders.Get("/pending", orderHandler.Pending)
	orders.Patch("/:id/status", orderHandler.UpdateStatus)

	// rutas fijas antes de /:id
	notifications := api.Group("/notifications")
	notificationHandler := NewNotificationHandler(deps.Notifications, deps.Subscriber)
	notifications.Get("/", notificationHandler.List)
	notifications.Get("/unread-count", notificationHandler.UnreadCount)
	notifications.Get("/stream", notificationHandler.Stream)
	notifications.Patch("/mark-all-read", notificationHandler.MarkAllRead)
	notifications.Patch("/:id/read", notificationHandler.MarkRead)
	notifications.Delete("/:id", notificationHandler.Delete)

	anomalies := api.Group("/anomalies")
	anomalyHandler := NewAnomalyHandler(deps.Anomalies, deps.AnomalyMonitor)
	anomalies.Get("/", anomalyHandler.List)
	anomalies.Post("/detect", anomalyHandler.Detect)
	anomalies.Delete("/:id", anomalyHandler.Delete)
}
