package main

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/labstack/echo/v4"
	echomw "github.com/labstack/echo/v4/middleware"
	"github.com/rs/zerolog"
	"github.com/spf13/cobra"

	"github.com/caresync/caresync/internal/config"
	"github.com/caresync/caresync/internal/domain/audit"
	"github.com/caresync/caresync/internal/domain/chat"
	"github.com/caresync/caresync/internal/domain/identity"
	"github.com/caresync/caresync/internal/domain/notify"
	"github.com/caresync/caresync/internal/domain/pharmacy"
	"github.com/caresync/caresync/internal/domain/records"
	"github.com/caresync/caresync/internal/domain/scheduling"
	"github.com/caresync/caresync/internal/domain/snapshot"
	"github.com/caresync/caresync/internal/domain/vitals"
	"github.com/caresync/caresync/internal/platform/auth"
	"github.com/caresync/caresync/internal/platform/db"
	"github.com/caresync/caresync/internal/platform/middleware"
	"github.com/caresync/caresync/internal/platform/phi"
	"github.com/caresync/caresync/internal/platform/ws"
)

func main() {
	rootCmd := &cobra.Command{
		Use:   "caresync-server",
		Short: "Clinical coordination server of record",
	}

	rootCmd.AddCommand(serveCmd())
	rootCmd.AddCommand(migrateCmd())

	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}

func serveCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "serve",
		Short: "Start the API server",
		RunE: func(cmd *cobra.Command, args []string) error {
			return runServer()
		},
	}
}

func migrateCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "migrate",
		Short: "Run database migrations",
	}

	upCmd := &cobra.Command{
		Use:   "up",
		Short: "Apply pending migrations",
		RunE: func(cmd *cobra.Command, args []string) error {
			dir, _ := cmd.Flags().GetString("dir")

			cfg, err := config.Load()
			if err != nil {
				return err
			}

			ctx := context.Background()
			pool, err := db.NewPool(ctx, cfg.DatabaseURL, cfg.DBMaxConns, cfg.DBMinConns)
			if err != nil {
				return err
			}
			defer pool.Close()

			migrator := db.NewMigrator(pool, dir)
			count, err := migrator.Up(ctx)
			if err != nil {
				return fmt.Errorf("migration failed: %w", err)
			}

			fmt.Printf("Applied %d migration(s) successfully.\n", count)
			return nil
		},
	}
	upCmd.Flags().String("dir", "./migrations", "Path to migrations directory")
	cmd.AddCommand(upCmd)

	statusCmd := &cobra.Command{
		Use:   "status",
		Short: "Show migration status",
		RunE: func(cmd *cobra.Command, args []string) error {
			dir, _ := cmd.Flags().GetString("dir")

			cfg, err := config.Load()
			if err != nil {
				return err
			}

			ctx := context.Background()
			pool, err := db.NewPool(ctx, cfg.DatabaseURL, cfg.DBMaxConns, cfg.DBMinConns)
			if err != nil {
				return err
			}
			defer pool.Close()

			migrator := db.NewMigrator(pool, dir)
			statuses, err := migrator.Status(ctx)
			if err != nil {
				return fmt.Errorf("failed to get migration status: %w", err)
			}

			fmt.Printf("%-10s %-40s %-10s %s\n", "VERSION", "NAME", "STATUS", "APPLIED AT")
			for _, s := range statuses {
				status := "pending"
				appliedAt := ""
				if s.Applied {
					status = "applied"
					if s.AppliedAt != nil {
						appliedAt = s.AppliedAt.Format("2006-01-02 15:04:05")
					}
				}
				fmt.Printf("%-10d %-40s %-10s %s\n", s.Version, s.Name, status, appliedAt)
			}
			return nil
		},
	}
	statusCmd.Flags().String("dir", "./migrations", "Path to migrations directory")
	cmd.AddCommand(statusCmd)

	return cmd
}

func runServer() error {
	logger := zerolog.New(os.Stdout).With().Timestamp().Logger()
	if os.Getenv("ENV") == "development" {
		logger = zerolog.New(zerolog.ConsoleWriter{Out: os.Stdout}).With().Timestamp().Logger()
	}

	cfg, err := config.Load()
	if err != nil {
		logger.Fatal().Err(err).Msg("failed to load config")
	}
	if err := cfg.Validate(); err != nil {
		logger.Fatal().Err(err).Msg("invalid configuration")
	}

	ctx := context.Background()
	pool, err := db.NewPool(ctx, cfg.DatabaseURL, cfg.DBMaxConns, cfg.DBMinConns)
	if err != nil {
		logger.Fatal().Err(err).Msg("failed to connect to database")
	}
	defer pool.Close()
	logger.Info().Msg("connected to database")

	phiSvc, err := phi.NewService(cfg.PHIEncryptionKey, logger)
	if err != nil {
		logger.Fatal().Err(err).Msg("failed to initialize PHI encryption")
	}
	if phiSvc.IsEnabled() {
		logger.Info().Msg("PHI field-level encryption enabled")
	} else {
		logger.Warn().Msg("PHI_ENCRYPTION_KEY not set; PHI field-level encryption is disabled")
	}

	e := echo.New()
	e.HideBanner = true
	e.HidePort = true

	e.Use(middleware.Recovery(logger))
	e.Use(middleware.RequestID())
	e.Use(middleware.Logger(logger))
	e.Use(echomw.CORSWithConfig(echomw.CORSConfig{
		AllowOrigins: cfg.CORSOrigins,
		AllowMethods: []string{http.MethodGet, http.MethodPost, http.MethodPut, http.MethodDelete},
		AllowHeaders: []string{"Authorization", "Content-Type", "X-Request-ID"},
	}))

	if cfg.IsDev() {
		e.Use(auth.DevAuthMiddleware())
	} else {
		e.Use(auth.JWTMiddleware(auth.JWTConfig{
			Issuer:   cfg.AuthIssuer,
			Audience: cfg.AuthAudience,
			JWKSURL:  cfg.AuthJWKSURL,
		}))
	}

	e.GET("/health", func(c echo.Context) error {
		return c.JSON(http.StatusOK, map[string]string{
			"status":  "ok",
			"version": "0.1.0",
		})
	})

	apiV1 := e.Group("/api/v1")

	// Real-time room hub
	hub := ws.NewHub()

	// Identity
	userRepo := identity.NewUserRepoPG(pool)
	patientRepo := identity.NewPatientRepoPG(pool)
	identitySvc := identity.NewService(userRepo, patientRepo, phiSvc)
	identity.NewHandler(identitySvc).RegisterRoutes(apiV1)

	// Scheduling, with appointment-change pings into the patient's room
	apptRepo := scheduling.NewAppointmentRepoPG(pool)
	schedulingSvc := scheduling.NewService(apptRepo)
	schedulingSvc.SetChangeNotifier(hub)
	scheduling.NewHandler(schedulingSvc).RegisterRoutes(apiV1)

	// Medical records; dispatch marks services rendered on the matching
	// open appointment
	recordRepo := records.NewRecordRepoPG(pool)
	recordsSvc := records.NewService(recordRepo, schedulingSvc, phiSvc, logger)
	records.NewHandler(recordsSvc).RegisterRoutes(apiV1)

	// Pharmacy
	rxRepo := pharmacy.NewPrescriptionRepoPG(pool)
	pharmacySvc := pharmacy.NewService(rxRepo)
	pharmacy.NewHandler(pharmacySvc).RegisterRoutes(apiV1)

	// Notifications; accepting a booking advances the appointment
	notifyRepo := notify.NewNotificationRepoPG(pool)
	notifySvc := notify.NewService(notifyRepo, schedulingSvc)
	notify.NewHandler(notifySvc).RegisterRoutes(apiV1)

	// Chat, both REST and the websocket path
	messageRepo := chat.NewMessageRepoPG(pool)
	chatSvc := chat.NewService(messageRepo)
	chat.NewHandler(chatSvc, hub).RegisterRoutes(apiV1)
	ws.NewHandler(hub, chatSvc).RegisterRoutes(apiV1)

	// Vitals, triage and reference range analysis
	sampleRepo := vitals.NewSampleRepoPG(pool)
	vitalsSvc := vitals.NewService(sampleRepo, identitySvc)
	vitals.NewHandler(vitalsSvc).RegisterRoutes(apiV1)

	// Activity log
	auditRepo := audit.NewEntryRepoPG(pool)
	auditSvc := audit.NewService(auditRepo, logger)
	audit.NewHandler(auditSvc).RegisterRoutes(apiV1)

	// Full-state snapshot for client reconciliation
	snapshotSvc := snapshot.NewService(logger)
	snapshot.Wire(snapshotSvc, identitySvc, schedulingSvc, recordsSvc, pharmacySvc, notifySvc, chatSvc, auditSvc, vitalsSvc)
	snapshot.NewHandler(snapshotSvc).RegisterRoutes(apiV1)

	// Start server with graceful shutdown
	go func() {
		addr := ":" + cfg.Port
		logger.Info().Str("addr", addr).Msg("server listening")
		if err := e.Start(addr); err != nil && err != http.ErrServerClosed {
			logger.Fatal().Err(err).Msg("server stopped")
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit
	logger.Info().Msg("shutting down")

	shutdownCtx, cancel := context.WithTimeout(ctx, 10*time.Second)
	defer cancel()
	return e.Shutdown(shutdownCtx)
}
