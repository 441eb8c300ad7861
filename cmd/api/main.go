package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gofiber/contrib/swagger"
	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/recover"

	"github.com/jhoicas/Reabastecimiento-api/internal/bootstrap"
	httpRouter "github.com/jhoicas/Reabastecimiento-api/internal/interfaces/http"
	"github.com/jhoicas/Reabastecimiento-api/pkg/config"
	"github.com/jhoicas/Reabastecimiento-api/pkg/logger"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		panic("cargar configuración: " + err.Error())
	}

	log := logger.New(logger.Config{
		Env:     cfg.App.Env,
		Level:   cfg.App.LogLevel,
		Service: cfg.App.Name,
	})
	log.Info().
		Str("env", cfg.App.Env).
		Str("app", cfg.App.Name).
		Msg("iniciando aplicación")

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	c, err := bootstrap.Build(ctx, cfg, log.Zerolog())
	if err != nil {
		log.Fatal().Err(err).Msg("inicializando dependencias")
	}

	// Propietarios con monitoreo desde el arranque; el resto lo activa POST /api/stock/monitor
	c.StartMonitors(cfg.Scheduler.Owners)

	app := fiber.New(fiber.Config{
		AppName:     cfg.App.Name,
		ReadTimeout: time.Second * 10,
		// sin WriteTimeout: cortaría el stream SSE
		IdleTimeout: time.Second * 60,
	})
	app.Use(recover.New())

	// Swagger UI en local: http://localhost:<port>/docs
	app.Use(swagger.New(swagger.Config{
		BasePath: "/",
		FilePath: "./docs/swagger.json",
		Path:     "docs",
		Title:    "Reabastecimiento API",
	}))

	app.Get("/health", func(c *fiber.Ctx) error {
		return c.JSON(fiber.Map{"status": "ok", "service": cfg.App.Name})
	})

	deps := httpRouter.RouterDeps{
		Reorder:        c.Reorder,
		OrderLifecycle: c.OrderLifecycle,
		Forecaster:     c.Forecaster,
		Anomalies:      c.Anomalies,
		Notifications:  c.Dispatcher,
		StockMonitor:   c.StockMonitor,
		AnomalyMonitor: c.AnomalyMonitor,
		JWTSecret:      cfg.JWT.Secret,
	}
	if c.RedisEvents != nil {
		deps.Subscriber = c.RedisEvents
	}
	httpRouter.Router(app, deps)

	go func() {
		if err := app.Listen(cfg.HTTP.Addr()); err != nil {
			log.Error().Err(err).Msg("servidor HTTP finalizado")
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	log.Info().Msg("señal de apagado recibida, cerrando servidor...")

	shutdownCtx, cancelShutdown := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancelShutdown()

	if err := app.ShutdownWithContext(shutdownCtx); err != nil {
		log.Error().Err(err).Msg("apagado del servidor")
	}

	// schedules primero (esperan corridas en curso), luego Kafka/Redis/DB
	c.Close()
	log.Info().Msg("aplicación detenida")
}
