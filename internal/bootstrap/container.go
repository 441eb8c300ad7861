// Package bootstrap arma el grafo de dependencias compartido por la API y el worker.
package bootstrap

import (
	"context"
	"fmt"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog"

	"github.com/jhoicas/Reabastecimiento-api/internal/application/anomaly"
	"github.com/jhoicas/Reabastecimiento-api/internal/application/forecasting"
	"github.com/jhoicas/Reabastecimiento-api/internal/application/inventory"
	"github.com/jhoicas/Reabastecimiento-api/internal/application/locking"
	"github.com/jhoicas/Reabastecimiento-api/internal/application/notification"
	"github.com/jhoicas/Reabastecimiento-api/internal/application/ports"
	"github.com/jhoicas/Reabastecimiento-api/internal/application/scheduler"
	infraai "github.com/jhoicas/Reabastecimiento-api/internal/infrastructure/ai"
	"github.com/jhoicas/Reabastecimiento-api/internal/infrastructure/postgres"
	"github.com/jhoicas/Reabastecimiento-api/internal/infrastructure/realtime"
	"github.com/jhoicas/Reabastecimiento-api/internal/infrastructure/redisx"
	"github.com/jhoicas/Reabastecimiento-api/pkg/config"
)

// Container casos de uso listos para usar más los recursos que hay que cerrar.
type Container struct {
	Pool        *pgxpool.Pool
	Redis       *redis.Client
	RedisEvents *realtime.RedisEmitter
	Kafka       *realtime.KafkaEmitter

	Forecaster     *forecasting.ForecastUseCase
	Dispatcher     *notification.Dispatcher
	Reorder        *inventory.ReorderUseCase
	OrderLifecycle *inventory.OrderLifecycleUseCase
	Anomalies      *anomaly.DetectionUseCase

	StockMonitor   *scheduler.Scheduler
	AnomalyMonitor *scheduler.Scheduler
}

// Build conecta PostgreSQL y, si están configurados, Redis y Kafka.
// ctx gobierna la vida del productor Kafka: al cancelarse vacía su buffer.
func Build(ctx context.Context, cfg *config.Config, log zerolog.Logger) (*Container, error) {
	pool, err := postgres.NewPool(ctx, cfg.DB)
	if err != nil {
		return nil, fmt.Errorf("conexión a PostgreSQL: %w", err)
	}
	c := &Container{Pool: pool}

	var (
		emitters []ports.RealtimeEmitter
		locker   ports.KeyLocker
	)
	if cfg.Redis.Enabled() {
		rdb, err := redisx.New(ctx, cfg.Redis)
		if err != nil {
			c.Close()
			return nil, fmt.Errorf("conexión a Redis: %w", err)
		}
		c.Redis = rdb
		c.RedisEvents = realtime.NewRedisEmitter(rdb, log)
		emitters = append(emitters, c.RedisEvents)
		locker = redisx.NewLocker(rdb, cfg.Redis.LockTTL, log)
	} else {
		log.Warn().Msg("REDIS_ADDR vacío: lock local por proceso y sin stream en tiempo real")
		locker = locking.NewLocalLocker()
	}
	if cfg.Kafka.Enabled() {
		c.Kafka = realtime.NewKafkaEmitter(cfg.Kafka.Brokers, cfg.Kafka.NotificationTopic, cfg.Kafka.Buffer, log)
		c.Kafka.Start(ctx)
		emitters = append(emitters, c.Kafka)
	}

	productRepo := postgres.NewProductRepository(pool)
	sellerRepo := postgres.NewSellerRepository(pool)
	saleRepo := postgres.NewSaleRepository(pool)
	orderRepo := postgres.NewOrderRepository(pool)
	alertRepo := postgres.NewAnomalyAlertRepository(pool)
	notificationRepo := postgres.NewNotificationRepository(pool)
	txRunner := postgres.NewTxRunner(pool)

	model := infraai.NewProcessModel(infraai.ProcessConfig{
		PythonPath:     cfg.Forecast.PythonPath,
		ForecastScript: cfg.Forecast.ForecastScript,
		AnomalyScript:  cfg.Forecast.AnomalyScript,
	}, log)

	c.Dispatcher = notification.NewDispatcher(notificationRepo, log, emitters...)
	c.Forecaster = forecasting.NewForecastUseCase(model, saleRepo, forecasting.Options{
		Timeout:      cfg.Forecast.Timeout,
		LookbackDays: cfg.Forecast.LookbackDays,
		HorizonDays:  cfg.Forecast.HorizonDays,
	}, log)
	c.Reorder = inventory.NewReorderUseCase(
		productRepo, sellerRepo, orderRepo,
		c.Forecaster, c.Dispatcher, locker,
		inventory.ReorderOptions{Concurrency: cfg.Reorder.Concurrency, ETADays: cfg.Reorder.ETADays},
		log,
	)
	c.OrderLifecycle = inventory.NewOrderLifecycleUseCase(txRunner, orderRepo, c.Dispatcher, log)
	c.Anomalies = anomaly.NewDetectionUseCase(saleRepo, alertRepo, model, c.Dispatcher, locker, anomaly.Options{
		LookbackDays: cfg.Forecast.LookbackDays,
		Timeout:      cfg.Forecast.Timeout,
	}, log)

	c.StockMonitor = scheduler.New("stock-check", cfg.Scheduler.StockCheckInterval, c.checkStockJob, log)
	c.AnomalyMonitor = scheduler.New("anomaly-detection", cfg.Scheduler.AnomalyInterval, c.detectAnomaliesJob, log)
	return c, nil
}

func (c *Container) checkStockJob(ctx context.Context, ownerID string) error {
	_, err := c.Reorder.CheckStockLevels(ctx, ownerID)
	return err
}

func (c *Container) detectAnomaliesJob(ctx context.Context, ownerID string) error {
	_, err := c.Anomalies.Detect(ctx, ownerID)
	return err
}

// StartMonitors arranca ambos schedules para cada propietario.
func (c *Container) StartMonitors(owners []string) {
	for _, o := range owners {
		c.StockMonitor.Start(o)
		c.AnomalyMonitor.Start(o)
	}
}

// Close detiene schedules y libera conexiones. La cola Kafka se vacía antes de cerrar.
func (c *Container) Close() {
	if c.StockMonitor != nil {
		c.StockMonitor.Stop()
	}
	if c.AnomalyMonitor != nil {
		c.AnomalyMonitor.Stop()
	}
	if c.Kafka != nil {
		c.Kafka.Close()
		c.Kafka.WaitClosed()
	}
	if c.Redis != nil {
		_ = c.Redis.Close()
	}
	if c.Pool != nil {
		c.Pool.Close()
	}
}
