package cmd

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"itinventory/internal/core/binding"
	"itinventory/internal/core/config"
	"itinventory/internal/core/container"
	"itinventory/internal/core/logger"
	"itinventory/internal/core/routes"
	"itinventory/internal/database"
	"itinventory/internal/middleware"
	"itinventory/pkg/security"

	"github.com/spf13/cobra"
	"go.uber.org/zap"
)

const shutdownTimeout = 10 * time.Second

var MigrateCmd = &cobra.Command{
	Use:   "migrate",
	Short: "Run migrations manually.",
	Long:  `Applies every pending migration from --dir and exits.`,
	RunE: func(cmd *cobra.Command, _ []string) error {
		cfg, err := config.Load()
		if err != nil {
			return err
		}
		log := logger.New(cfg.Env, cfg.LogLevel)
		defer log.Sync() //nolint:errcheck

		migrationDir, _ := cmd.Flags().GetString("dir")
		if migrationDir == "" {
			migrationDir = cfg.MigrationsDir
		}

		if err := database.RunMigrations(cfg.DatabaseURL, migrationDir, log); err != nil {
			return fmt.Errorf("migrate database: %w", err)
		}

		return nil
	},
}

var ServeCmd = &cobra.Command{
	Use:   "serve",
	Short: "Start the HTTP API.",
	RunE: func(cmd *cobra.Command, _ []string) error {
		return serve(cmd.Context())
	},
}

func serve(ctx context.Context) error {
	cfg, err := config.Load()
	if err != nil {
		return err
	}

	log := logger.New(cfg.Env, cfg.LogLevel)
	defer log.Sync() //nolint:errcheck

	security.Configure(cfg.JWTSecret, cfg.JWTTTL)

	if err := binding.RegisterValidators(); err != nil {
		return fmt.Errorf("register validators: %w", err)
	}

	if cfg.RunMigrations {
		if err := database.RunMigrations(cfg.DatabaseURL, cfg.MigrationsDir, log); err != nil {
			return fmt.Errorf("migrate database: %w", err)
		}
	}

	db, err := database.NewPostgresConnection(ctx, cfg.DatabaseURL)
	if err != nil {
		return err
	}
	defer db.Close()
	log.Info("Connected to the database")

	app := container.NewAppContainer(db, container.Options{
		LoginRateLimit:  cfg.LoginRate.Limit,
		LoginRateWindow: cfg.LoginRate.Window,
	}, log)
	router := routes.NewRouter(cfg, app, log)

	server := &http.Server{
		Addr: cfg.AppHost,
		Handler: middleware.WithCORS(router, middleware.CORSConfig{
			AllowedOrigins:   cfg.CORS.AllowedOrigins,
			AllowCredentials: cfg.CORS.AllowCredentials,
			MaxAge:           cfg.CORS.MaxAge,
		}),
		ReadHeaderTimeout: 10 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		log.Info("Starting server", zap.String("addr", cfg.AppHost), zap.String("env", cfg.Env))
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
		close(errCh)
	}()

	ctx, stop := signal.NotifyContext(ctx, os.Interrupt, syscall.SIGTERM)
	defer stop()

	select {
	case err, ok := <-errCh:
		if ok {
			return fmt.Errorf("http server: %w", err)
		}
		return nil
	case <-ctx.Done():
	}

	log.Info("Shutting down server")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()

	return server.Shutdown(shutdownCtx)
}

func Execute(ctx context.Context) {
	rootCmd := &cobra.Command{
		Use:   "itinventory",
		Short: "IT asset inventory service",
		RunE: func(cmd *cobra.Command, _ []string) error {
			return serve(cmd.Context())
		},
		SilenceUsage: true,
	}
	MigrateCmd.Flags().String("dir", "", "Directory containing the migration files (defaults to MIGRATIONS_DIR)")
	rootCmd.AddCommand(MigrateCmd, ServeCmd)

	if err := rootCmd.ExecuteContext(ctx); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}
