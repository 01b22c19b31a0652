package main

import (
	"context"
	crypto_rand "crypto/rand"
	"encoding/hex"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/labstack/echo/v4"
	echomw "github.com/labstack/echo/v4/middleware"
	"github.com/rs/zerolog"
	"github.com/spf13/cobra"

	"github.com/ErDashrath/Enigma-MAYA-NET/internal/config"
	"github.com/ErDashrath/Enigma-MAYA-NET/internal/domain/clinician"
	"github.com/ErDashrath/Enigma-MAYA-NET/internal/domain/identity"
	"github.com/ErDashrath/Enigma-MAYA-NET/internal/domain/medication"
	"github.com/ErDashrath/Enigma-MAYA-NET/internal/domain/nudge"
	"github.com/ErDashrath/Enigma-MAYA-NET/internal/domain/patient"
	"github.com/ErDashrath/Enigma-MAYA-NET/internal/domain/riskmodel"
	"github.com/ErDashrath/Enigma-MAYA-NET/internal/domain/scoring"
	"github.com/ErDashrath/Enigma-MAYA-NET/internal/domain/vitals"
	"github.com/ErDashrath/Enigma-MAYA-NET/internal/platform/auth"
	"github.com/ErDashrath/Enigma-MAYA-NET/internal/platform/db"
	"github.com/ErDashrath/Enigma-MAYA-NET/internal/platform/middleware"
	"github.com/ErDashrath/Enigma-MAYA-NET/internal/platform/notify"
	"github.com/ErDashrath/Enigma-MAYA-NET/pkg/envelope"
)

const serverVersion = "0.1.0"

func main() {
	rootCmd := &cobra.Command{
		Use:   "vitalcircle-server",
		Short: "VitalCircle chronic care API server",
	}

	rootCmd.AddCommand(serveCmd())
	rootCmd.AddCommand(migrateCmd())
	rootCmd.AddCommand(seedCmd())

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
			fmt.Println("---------- ---------------------------------------- ---------- --------------------")
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

func seedCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "seed",
		Short: "Load demo accounts and sample health data",
		RunE: func(cmd *cobra.Command, args []string) error {
			return runSeed()
		},
	}
}

// services bundles the wired domain services so serve and seed share one
// construction path.
type services struct {
	identity   *identity.Service
	patient    *patient.Service
	clinician  *clinician.Service
	vitals     *vitals.Service
	medication *medication.Service
	scoring    *scoring.Service
	nudge      *nudge.Service
}

func buildServices(pool *pgxpool.Pool, issuer *auth.TokenIssuer, publisher notify.Publisher) *services {
	patientSvc := patient.NewService(
		patient.NewProfileRepoPG(pool),
		patient.NewGoalRepoPG(pool),
		patient.NewNoteRepoPG(pool),
	)

	vitalsRepo := vitals.NewVitalSignsRepoPG(pool)
	lifestyleRepo := vitals.NewLifestyleRepoPG(pool)
	symptomRepo := vitals.NewSymptomRepoPG(pool)

	return &services{
		identity: identity.NewService(identity.NewUserRepoPG(pool), issuer),
		patient:  patientSvc,
		clinician: clinician.NewService(
			clinician.NewProfileRepoPG(pool),
			clinician.NewAssignmentRepoPG(pool),
			clinician.NewClinicalNoteRepoPG(pool),
			clinician.NewTreatmentPlanRepoPG(pool),
		),
		vitals: vitals.NewService(vitalsRepo, lifestyleRepo, symptomRepo),
		medication: medication.NewService(
			medication.NewAlertRepoPG(pool),
			medication.NewIntakeRepoPG(pool),
		),
		scoring: scoring.NewService(
			scoring.NewScoreRepoPG(pool),
			vitalsRepo, lifestyleRepo, symptomRepo,
			patientSvc, patientSvc,
			func(ctx context.Context, fn func(ctx context.Context) error) error {
				return db.WithTx(ctx, pool, fn)
			},
		),
		nudge: nudge.NewService(
			nudge.NewNudgeRepoPG(pool),
			nudge.NewPredictionRepoPG(pool),
			vitalsRepo, lifestyleRepo,
			patientSvc, publisher,
		),
	}
}

// resolveJWTSecret returns the configured secret, or generates a random
// one in development so token issuance still works without configuration.
// Tokens signed with a generated secret do not survive restarts.
func resolveJWTSecret(cfg *config.Config, logger zerolog.Logger) ([]byte, error) {
	if cfg.JWTSecret != "" {
		return []byte(cfg.JWTSecret), nil
	}
	if !cfg.IsDev() {
		return nil, fmt.Errorf("JWT_SECRET is required outside development")
	}
	key := make([]byte, 32)
	if _, err := crypto_rand.Read(key); err != nil {
		return nil, fmt.Errorf("generate dev JWT secret: %w", err)
	}
	logger.Warn().Str("secret", hex.EncodeToString(key)[:8]+"...").
		Msg("JWT_SECRET not set, using ephemeral development secret")
	return key, nil
}

func newPublisher(cfg *config.Config, logger zerolog.Logger) notify.Publisher {
	if cfg.AMQPURL == "" {
		logger.Info().Msg("AMQP_URL not set, delivery events disabled")
		return notify.NopPublisher{}
	}
	pub, err := notify.NewAMQPPublisher(cfg.AMQPURL, cfg.AMQPQueue, logger)
	if err != nil {
		logger.Error().Err(err).Msg("AMQP connection failed, delivery events disabled")
		return notify.NopPublisher{}
	}
	logger.Info().Str("queue", cfg.AMQPQueue).Msg("AMQP publisher connected")
	return pub
}

func newLogger() zerolog.Logger {
	logger := zerolog.New(os.Stdout).With().Timestamp().Logger()
	if os.Getenv("ENV") == "development" || os.Getenv("ENV") == "" {
		logger = zerolog.New(zerolog.ConsoleWriter{Out: os.Stdout}).With().Timestamp().Logger()
	}
	return logger
}

func runServer() error {
	logger := newLogger()

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

	secret, err := resolveJWTSecret(cfg, logger)
	if err != nil {
		logger.Fatal().Err(err).Msg("auth configuration failed")
	}
	issuer := auth.NewTokenIssuer(secret, time.Duration(cfg.JWTExpiryHours)*time.Hour)

	publisher := newPublisher(cfg, logger)
	defer publisher.Close()

	svcs := buildServices(pool, issuer, publisher)

	// The classifier trains once at startup; requests only evaluate the
	// linear model.
	diabetesModel := riskmodel.NewDiabetesModel(cfg.DiabetesCSVURL)

	e := echo.New()
	e.HideBanner = true
	e.HidePort = true
	e.HTTPErrorHandler = envelope.HTTPErrorHandler

	e.Use(middleware.Recovery(logger))
	e.Use(middleware.RequestID())
	e.Use(middleware.Logger(logger))
	e.Use(middleware.SecurityHeaders())
	e.Use(middleware.RequestTimeout(30 * time.Second))
	e.Use(echomw.CORSWithConfig(echomw.CORSConfig{
		AllowOrigins: cfg.CORSOrigins,
		AllowMethods: []string{http.MethodGet, http.MethodPost, http.MethodPut, http.MethodPatch, http.MethodDelete},
		AllowHeaders: []string{"Authorization", "Content-Type", "X-Request-ID"},
	}))

	rateLimitCfg := middleware.RateLimitConfig{
		RequestsPerSecond: cfg.RateLimitRPS,
		BurstSize:         cfg.RateLimitBurst,
	}
	if rateLimitCfg.RequestsPerSecond <= 0 {
		rateLimitCfg = middleware.DefaultRateLimitConfig()
	}

	// Register and login stay open; everything else under /api/v1 requires
	// a valid token (or the permissive dev middleware).
	public := e.Group("/api/v1")
	public.Use(middleware.RateLimit(rateLimitCfg))

	api := e.Group("/api/v1")
	api.Use(middleware.RateLimit(rateLimitCfg))
	if cfg.IsDev() {
		api.Use(auth.DevAuthMiddleware())
	} else {
		api.Use(auth.JWTMiddleware(issuer))
	}

	e.GET("/health", func(c echo.Context) error {
		return c.JSON(http.StatusOK, map[string]string{
			"status":  "ok",
			"version": serverVersion,
		})
	})
	e.GET("/health/db", db.HealthHandler(pool))

	identity.NewHandler(svcs.identity).RegisterRoutes(public, api)
	patient.NewHandler(svcs.patient).RegisterRoutes(api)
	clinician.NewHandler(svcs.clinician).RegisterRoutes(api)
	vitals.NewHandler(svcs.vitals).RegisterRoutes(api)
	medication.NewHandler(svcs.medication).RegisterRoutes(api)
	scoring.NewHandler(svcs.scoring).RegisterRoutes(api)
	nudge.NewHandler(svcs.nudge).RegisterRoutes(api)
	riskmodel.NewHandler(riskmodel.NewAssessor(), diabetesModel).RegisterRoutes(api)

	go func() {
		addr := ":" + cfg.Port
		logger.Info().Str("addr", addr).Msg("starting server")
		if err := e.Start(addr); err != nil && err != http.ErrServerClosed {
			logger.Fatal().Err(err).Msg("server error")
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	logger.Info().Msg("shutting down server")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := e.Shutdown(shutdownCtx); err != nil {
		logger.Fatal().Err(err).Msg("server shutdown failed")
	}
	logger.Info().Msg("server stopped")
	return nil
}
