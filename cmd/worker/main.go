package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/rs/zerolog"
	"github.com/urfave/cli/v2"

	"github.com/jhoicas/Reabastecimiento-api/internal/bootstrap"
	"github.com/jhoicas/Reabastecimiento-api/internal/infrastructure/postgres"
	"github.com/jhoicas/Reabastecimiento-api/pkg/config"
	"github.com/jhoicas/Reabastecimiento-api/pkg/logger"
)

func main() {
	app := &cli.App{
		Name:  "reabastecimiento-worker",
		Usage: "corridas de reposición y detección de anomalías fuera del servidor HTTP",
		Flags: []cli.Flag{
			&cli.StringSliceFlag{
				Name:    "owner",
				Aliases: []string{"o"},
				Usage:   "propietario a procesar (repetible); por defecto SCHEDULER_OWNERS",
			},
		},
		Commands: []*cli.Command{
			{
				Name:   "check-stock",
				Usage:  "una corrida de reposición por propietario",
				Action: withContainer(checkStock),
			},
			{
				Name:   "detect-anomalies",
				Usage:  "una corrida de detección de anomalías por propietario",
				Action: withContainer(detectAnomalies),
			},
			{
				Name:   "run",
				Usage:  "schedules periódicos hasta SIGINT/SIGTERM",
				Action: withContainer(runMonitors),
			},
			{
				Name:   "init-db",
				Usage:  "crea tablas e índices si no existen",
				Action: initDB,
			},
		},
	}

	if err := app.Run(os.Args); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

type action func(ctx context.Context, c *bootstrap.Container, owners []string, log zerolog.Logger) error

// withContainer carga config y dependencias, y cancela el contexto ante SIGINT/SIGTERM.
func withContainer(fn action) cli.ActionFunc {
	return func(cctx *cli.Context) error {
		cfg, log, err := load()
		if err != nil {
			return err
		}
		owners := cctx.StringSlice("owner")
		if len(owners) == 0 {
			owners = cfg.Scheduler.Owners
		}
		if len(owners) == 0 {
			return cli.Exit("sin propietarios: use --owner o SCHEDULER_OWNERS", 2)
		}

		ctx, stop := signal.NotifyContext(cctx.Context, syscall.SIGINT, syscall.SIGTERM)
		defer stop()

		c, err := bootstrap.Build(ctx, cfg, log)
		if err != nil {
			return err
		}
		defer c.Close()
		return fn(ctx, c, owners, log)
	}
}

func checkStock(ctx context.Context, c *bootstrap.Container, owners []string, log zerolog.Logger) error {
	var failed int
	for _, owner := range owners {
		reorders, err := c.Reorder.CheckStockLevels(ctx, owner)
		if err != nil {
			failed++
			log.Error().Err(err).Str("owner_id", owner).Msg("corrida de reposición fallida")
			continue
		}
		log.Info().Str("owner_id", owner).Int("orders_created", len(reorders)).Msg("corrida de reposición terminada")
	}
	if failed > 0 {
		return cli.Exit(fmt.Sprintf("%d propietario(s) con error", failed), 1)
	}
	return nil
}

func detectAnomalies(ctx context.Context, c *bootstrap.Container, owners []string, log zerolog.Logger) error {
	var failed int
	for _, owner := range owners {
		report, err := c.Anomalies.Detect(ctx, owner)
		if err != nil {
			failed++
			log.Error().Err(err).Str("owner_id", owner).Msg("detección de anomalías fallida")
			continue
		}
		log.Info().
			Str("owner_id", owner).
			Int("scanned", report.ProductsScanned).
			Int("alerts_created", report.AlertsCreated).
			Int("alerts_suppressed", report.AlertsSuppressed).
			Int64("alerts_purged", report.AlertsPurged).
			Msg("detección de anomalías terminada")
	}
	if failed > 0 {
		return cli.Exit(fmt.Sprintf("%d propietario(s) con error", failed), 1)
	}
	return nil
}

func runMonitors(ctx context.Context, c *bootstrap.Container, owners []string, log zerolog.Logger) error {
	c.StartMonitors(owners)
	log.Info().Strs("owners", owners).Msg("schedules iniciados")
	<-ctx.Done()
	log.Info().Msg("señal de apagado recibida, esperando corridas en curso...")
	return nil
}

func initDB(cctx *cli.Context) error {
	cfg, log, err := load()
	if err != nil {
		return err
	}
	pool, err := postgres.NewPool(cctx.Context, cfg.DB)
	if err != nil {
		return err
	}
	defer pool.Close()
	if err := postgres.EnsureSchema(cctx.Context, pool); err != nil {
		return err
	}
	log.Info().Msg("esquema listo")
	return nil
}

func load() (*config.Config, zerolog.Logger, error) {
	cfg, err := config.Load()
	if err != nil {
		return nil, zerolog.Nop(), fmt.Errorf("cargar configuración: %w", err)
	}
	l := logger.New(logger.Config{Env: cfg.App.Env, Level: cfg.App.LogLevel, Service: cfg.App.Name + "-worker"})
	return cfg, l.Zerolog(), nil
}
