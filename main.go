package main

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"
	"gorm.io/gorm"

	"dynamicapp/internal/app"
	"dynamicapp/internal/config"
	"dynamicapp/internal/database"
	"dynamicapp/internal/repositories"
	"dynamicapp/internal/seed"
	"dynamicapp/internal/services"
	"dynamicapp/pkg/logger"
	"dynamicapp/pkg/metrics"
	"dynamicapp/pkg/rabbitmq"
)

const shutdownTimeout = 10 * time.Second

func main() {
	if err := newRootCmd().Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func newRootCmd() *cobra.Command {
	root := &cobra.Command{
		Use:           "dynamicapp",
		Short:         "Dynamic entity management backend",
		SilenceUsage:  true,
		SilenceErrors: true,
	}
	root.AddCommand(newServeCmd(), newMigrateCmd(), newSeedCmd())
	return root
}

// environment is what every command needs: configuration, a logger and an open store.
type environment struct {
	cfg  *config.Config
	log  *slog.Logger
	db   *gorm.DB
	repo *repositories.GORMEntityRepository
}

func boot() (*environment, error) {
	cfg, err := config.Load()
	if err != nil {
		return nil, err
	}
	log := logger.New(cfg.AppEnv, cfg.LogLevel)
	slog.SetDefault(log)

	db, err := database.Open(cfg.Database)
	if err != nil {
		return nil, err
	}
	log.Info("Connected to database", "driver", cfg.Database.Driver)

	return &environment{
		cfg:  cfg,
		log:  log,
		db:   db,
		repo: repositories.NewGORMEntityRepository(db),
	}, nil
}

func (e *environment) close() {
	if err := database.Close(e.db); err != nil {
		e.log.Error("Error closing database", "error", err)
	}
}

func newMigrateCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "migrate",
		Short: "Create the entity table if it does not exist",
		RunE: func(cmd *cobra.Command, args []string) error {
			env, err := boot()
			if err != nil {
				return err
			}
			defer env.close()

			if err := database.EnsureSchema(cmd.Context(), env.db); err != nil {
				return err
			}
			env.log.Info("Schema is up to date")
			return nil
		},
	}
}

func newSeedCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "seed",
		Short: "Create the schema and insert sample entities into an empty table",
		RunE: func(cmd *cobra.Command, args []string) error {
			env, err := boot()
			if err != nil {
				return err
			}
			defer env.close()

			return seed.Initialize(cmd.Context(), env.db, env.repo, env.log)
		},
	}
}

func newServeCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "serve",
		Short: "Start the HTTP server",
		RunE: func(cmd *cobra.Command, args []string) error {
			env, err := boot()
			if err != nil {
				return err
			}
			defer env.close()

			ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
			defer stop()

			return serve(ctx, env)
		},
	}
}

func serve(ctx context.Context, env *environment) error {
	if env.cfg.SeedOnStartup {
		// Initialization failures are logged by seed.Initialize and never stop the server.
		_ = seed.Initialize(ctx, env.db, env.repo, env.log)
	}

	registry := metrics.NewRegistry()
	opts := []services.Option{services.WithMetrics(metrics.NewEntityMetrics(registry))}

	if env.cfg.RabbitMQ.Enabled {
		mqClient, err := rabbitmq.NewClient(rabbitmq.Config{
			URL:      env.cfg.RabbitMQ.URL,
			Exchange: env.cfg.RabbitMQ.Exchange,
		}, env.log)
		if err != nil {
			return fmt.Errorf("failed to initialize RabbitMQ client: %w", err)
		}
		defer func() {
			if err := mqClient.Close(); err != nil {
				env.log.Error("Error closing RabbitMQ client", "error", err)
			}
		}()

		if err := mqClient.ConsumeEntityEvents(rabbitmq.LogEntityEvent(env.log)); err != nil {
			env.log.Error("Failed to start RabbitMQ consumer", "error", err)
		}
		opts = append(opts, services.WithPublisher(mqClient))
	}

	service := services.NewEntityService(env.repo, env.log, opts...)
	fiberApp := app.NewApp(app.Dependencies{
		DB:       env.db,
		Service:  service,
		Registry: registry,
		Logger:   env.log,
	})

	listenErr := make(chan error, 1)
	go func() {
		env.log.Info("Starting server", "addr", env.cfg.AppPort)
		listenErr <- fiberApp.Listen(env.cfg.AppPort)
	}()

	select {
	case err := <-listenErr:
		return fmt.Errorf("server failed: %w", err)
	case <-ctx.Done():
	}

	env.log.Info("Shutting down server...")
	if err := fiberApp.ShutdownWithTimeout(shutdownTimeout); err != nil {
		env.log.Error("Error during Fiber shutdown", "error", err)
	}
	env.log.Info("Server gracefully stopped")
	return nil
}
