package main

import (
	"context"
	"errors"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"fitclub/internal/clock"
	"fitclub/internal/config"
	"fitclub/internal/db"
	"fitclub/internal/email"
	"fitclub/internal/logger"
	"fitclub/internal/payment/stripe"
	"fitclub/internal/profile"
	"fitclub/internal/server"
	"fitclub/internal/user"

	"github.com/jmoiron/sqlx"
	"github.com/redis/go-redis/v9"
	"github.com/spf13/cobra"
)

const shutdownTimeout = 30 * time.Second

func newRootCmd() *cobra.Command {
	root := &cobra.Command{
		Use:           "fitclub",
		Short:         "FitClub API server and admin tools",
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runServe(cmd.Context())
		},
	}

	root.AddCommand(newServeCmd(), newMigrateCmd(), newCreateAdminCmd())
	return root
}

func newServeCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "serve",
		Short: "Run migrations and start the HTTP server",
		RunE: func(cmd *cobra.Command, args []string) error {
			return runServe(cmd.Context())
		},
	}
}

func newMigrateCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "migrate",
		Short: "Manage the database schema",
	}

	var steps int
	down := &cobra.Command{
		Use:   "down",
		Short: "Roll back migrations",
		RunE: func(cmd *cobra.Command, args []string) error {
			return withDatabase(func(cfg *config.Config, database *sqlx.DB) error {
				if err := db.RollbackMigrations(database, cfg.MigrationsPath, steps); err != nil {
					return err
				}
				logger.Infof("Rolled back %d migration(s)", steps)
				return nil
			})
		},
	}
	down.Flags().IntVar(&steps, "steps", 1, "number of migrations to roll back")

	cmd.AddCommand(
		&cobra.Command{
			Use:   "up",
			Short: "Apply all pending migrations",
			RunE: func(cmd *cobra.Command, args []string) error {
				return withDatabase(func(cfg *config.Config, database *sqlx.DB) error {
					if err := db.RunMigrations(database, cfg.MigrationsPath); err != nil {
						return err
					}
					logger.Info("Migrations completed")
					return nil
				})
			},
		},
		down,
		&cobra.Command{
			Use:   "version",
			Short: "Print the current schema version",
			RunE: func(cmd *cobra.Command, args []string) error {
				return withDatabase(func(cfg *config.Config, database *sqlx.DB) error {
					version, dirty, err := db.MigrationVersion(database, cfg.MigrationsPath)
					if err != nil {
						return err
					}
					fmt.Fprintf(cmd.OutOrStdout(), "version %d (dirty: %t)\n", version, dirty)
					return nil
				})
			},
		},
	)

	return cmd
}

func newCreateAdminCmd() *cobra.Command {
	var name, email string

	cmd := &cobra.Command{
		Use:   "create-admin",
		Short: "Create a staff account. The password is read from ADMIN_PASSWORD",
		RunE: func(cmd *cobra.Command, args []string) error {
			password := os.Getenv("ADMIN_PASSWORD")
			if password == "" {
				return errors.New("ADMIN_PASSWORD must be set")
			}

			return withDatabase(func(cfg *config.Config, database *sqlx.DB) error {
				profiles := profile.NewService(profile.NewRepository(database))
				users := user.NewService(user.NewRepository(database), profiles, cfg.JWTSecret)

				u, err := users.CreateAdmin(cmd.Context(), name, email, password)
				if err != nil {
					return err
				}
				fmt.Fprintf(cmd.OutOrStdout(), "created admin %d <%s>\n", u.ID, u.Email)
				return nil
			})
		},
	}

	cmd.Flags().StringVar(&name, "name", "Admin", "display name")
	cmd.Flags().StringVar(&email, "email", "", "login email")
	_ = cmd.MarkFlagRequired("email")

	return cmd
}

func withDatabase(fn func(cfg *config.Config, database *sqlx.DB) error) error {
	cfg, err := config.Load()
	if err != nil {
		return fmt.Errorf("failed to load config: %w", err)
	}

	database, err := db.Connect(cfg.DatabaseURL)
	if err != nil {
		return err
	}
	defer database.Close()

	return fn(cfg, database)
}

func runServe(parent context.Context) error {
	logger.Info("Starting FitClub application")

	cfg, err := config.Load()
	if err != nil {
		return fmt.Errorf("failed to load config: %w", err)
	}

	loc, err := cfg.Location()
	if err != nil {
		return err
	}

	logger.Info("Connecting to database...")
	database, err := db.Connect(cfg.DatabaseURL)
	if err != nil {
		return err
	}
	defer database.Close()
	logger.Info("Database connected")

	if err := db.RunMigrations(database, cfg.MigrationsPath); err != nil {
		return err
	}
	logger.Info("Migrations completed")

	rdb := redis.NewClient(&redis.Options{Addr: cfg.RedisAddr})
	emailService := email.New(email.Config{
		From:     cfg.EmailFrom,
		FromName: cfg.EmailFromName,
		SMTPHost: cfg.SMTPHost,
		SMTPPort: cfg.SMTPPort,
		SMTPUser: cfg.SMTPUser,
		SMTPPass: cfg.SMTPPass,
	}, rdb)
	defer emailService.Close()

	gateway := stripe.New(stripe.Config{
		SecretKey:     cfg.StripeSecretKey,
		WebhookSecret: cfg.StripeWebhookSecret,
		Timeout:       cfg.StripeTimeout,
	})
	if !gateway.Configured() {
		logger.Warn("STRIPE_SECRET_KEY is not set, online payments are disabled")
	}

	ctx, cancel := signal.NotifyContext(parent, os.Interrupt, syscall.SIGTERM)
	defer cancel()

	go emailService.Start(ctx)

	srv := server.New(server.Deps{
		DB:      database,
		Config:  cfg,
		Email:   emailService,
		Gateway: gateway,
		Clock:   clock.New(loc),
	})

	serverErr := make(chan error, 1)
	go func() {
		logger.Infof("Server starting on port %s", cfg.Port)
		serverErr <- srv.Start()
	}()

	select {
	case <-ctx.Done():
		logger.Info("Shutdown signal received")
	case err := <-serverErr:
		if err != nil {
			return fmt.Errorf("server error: %w", err)
		}
		return nil
	}

	logger.Info("Shutting down gracefully...")

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer shutdownCancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("error during server shutdown: %w", err)
	}

	logger.Info("Server stopped")
	return nil
}
