package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	"github.com/go-redis/redis/v8"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"hospital-admin-dashboard/internal/apiclient"
	"hospital-admin-dashboard/internal/appointments"
	"hospital-admin-dashboard/internal/audit"
	"hospital-admin-dashboard/internal/cache"
	"hospital-admin-dashboard/internal/config"
	"hospital-admin-dashboard/internal/handlers"
	"hospital-admin-dashboard/internal/logger"
	"hospital-admin-dashboard/internal/metrics"
	"hospital-admin-dashboard/internal/middleware"
	"hospital-admin-dashboard/internal/models"
	"hospital-admin-dashboard/internal/repository"
	"hospital-admin-dashboard/internal/routes"
	"hospital-admin-dashboard/internal/utils"
)

const serviceName = "hospital-admin-dashboard"

func main() {
	rootCmd := &cobra.Command{
		Use:   serviceName,
		Short: "Hospital admin dashboard backend",
	}

	rootCmd.AddCommand(serveCmd())
	rootCmd.AddCommand(sweepCmd())
	rootCmd.AddCommand(migrateCmd())
	rootCmd.AddCommand(tokenCmd())

	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}

func bootstrap() (*config.Config, *zap.Logger, error) {
	cfg, err := config.LoadConfig()
	if err != nil {
		return nil, nil, fmt.Errorf("load config: %w", err)
	}
	log, err := logger.NewLogger(cfg.Log.Level, cfg.Log.Format, serviceName)
	if err != nil {
		return nil, nil, fmt.Errorf("init logger: %w", err)
	}
	return cfg, log, nil
}

// openAudit connects the audit store when it is enabled. A nil store means
// auditing is off.
func openAudit(cfg *config.Config, log *zap.Logger) (*audit.Store, error) {
	if !cfg.Database.Enabled {
		log.Info("Audit trail disabled")
		return nil, nil
	}
	db, err := models.InitDB(models.DatabaseConfig{DSN: cfg.Database.DSN})
	if err != nil {
		return nil, fmt.Errorf("connect database: %w", err)
	}
	return audit.NewStore(db, log), nil
}

func engineOptions(cfg *config.Config, m *metrics.Metrics, store *audit.Store) []appointments.Option {
	opts := []appointments.Option{
		appointments.WithLocation(cfg.Timezone),
		appointments.WithMetrics(m),
	}
	if store != nil {
		opts = append(opts, appointments.WithAudit(store))
	}
	return opts
}

func serveCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "serve",
		Short: "Start the dashboard API and the auto-cancellation sweeper",
		RunE: func(cmd *cobra.Command, args []string) error {
			return runServe()
		},
	}
}

func runServe() error {
	cfg, log, err := bootstrap()
	if err != nil {
		return err
	}
	defer log.Sync()

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	registry := prometheus.NewRegistry()
	registry.MustRegister(
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
	)
	m := metrics.NewMetrics("hospital_dashboard", registry)

	client := apiclient.New(cfg.API.BaseURL, cfg.API.APIKey, cfg.API.Timeout, log)
	appointmentRepo := repository.NewAppointmentRepository(client)
	doctorRepo := repository.NewDoctorRepository(client)

	var rdb *redis.Client
	if cfg.Redis.Addr != "" {
		rdb = redis.NewClient(&redis.Options{
			Addr:     cfg.Redis.Addr,
			Password: cfg.Redis.Password,
			DB:       cfg.Redis.DB,
		})
		defer rdb.Close()
		if err := rdb.Ping(ctx).Err(); err != nil {
			log.Warn("Redis unreachable, doctor list will not be cached until it recovers", zap.Error(err))
		}
	}
	doctors := cache.NewDoctorCache(doctorRepo, rdb, cfg.Redis.DoctorTTL, log, m)

	auditStore, err := openAudit(cfg, log)
	if err != nil {
		return err
	}

	engine := appointments.NewEngine(appointmentRepo, log, engineOptions(cfg, m, auditStore)...)
	view := appointments.NewView(engine, appointments.NewFilterState())

	if cfg.Sweep.Enabled {
		sweeper := appointments.NewSweeper(engine, cfg.Sweep.Interval, log)
		if err := sweeper.Start(ctx); err != nil {
			return err
		}
		defer sweeper.Stop()
	} else if err := engine.Load(ctx); err != nil {
		log.Warn("Initial appointment load failed", zap.Error(err))
	}

	if cfg.Environment == "production" {
		gin.SetMode(gin.ReleaseMode)
	}
	router := gin.New()
	router.Use(gin.Recovery(), middleware.RequestID(), middleware.RequestLogger(log))

	corsConfig := cors.DefaultConfig()
	corsConfig.AllowOrigins = []string{cfg.Origin}
	corsConfig.AllowCredentials = true
	corsConfig.AllowMethods = []string{"GET", "POST", "PUT", "PATCH", "DELETE", "OPTIONS"}
	corsConfig.AllowHeaders = []string{"Origin", "Content-Type", "Accept", "Authorization", middleware.RequestIDHeader}
	corsConfig.ExposeHeaders = []string{"Content-Disposition", middleware.RequestIDHeader}
	router.Use(cors.New(corsConfig))

	deps := routes.Dependencies{
		Appointments: handlers.NewAppointmentHandler(engine, view, appointmentRepo, doctors, cfg.HospitalName, log),
		Doctors:      handlers.NewDoctorHandler(doctors),
		Gatherer:     registry,
		JWTSecret:    cfg.JWTSecret,
	}
	if auditStore != nil {
		deps.Audit = handlers.NewAuditHandler(auditStore)
	}
	if cfg.JWTSecret == "" {
		log.Warn("JWT_SECRET is empty, /api/v1 is not authenticated")
	}
	routes.SetupRoutes(router, deps)

	server := &http.Server{
		Addr:              ":" + cfg.Port,
		Handler:           router,
		ReadHeaderTimeout: 10 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		log.Info("Server running", zap.String("port", cfg.Port))
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
		close(errCh)
	}()

	select {
	case err := <-errCh:
		if err != nil {
			return fmt.Errorf("http server: %w", err)
		}
	case <-ctx.Done():
		log.Info("Shutting down")
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := server.Shutdown(shutdownCtx); err != nil {
		log.Error("HTTP server shutdown error", zap.Error(err))
	}
	return nil
}

func sweepCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "sweep",
		Short: "Load appointments once and auto-cancel no-shows",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, log, err := bootstrap()
			if err != nil {
				return err
			}
			defer log.Sync()

			auditStore, err := openAudit(cfg, log)
			if err != nil {
				return err
			}

			client := apiclient.New(cfg.API.BaseURL, cfg.API.APIKey, cfg.API.Timeout, log)
			engine := appointments.NewEngine(repository.NewAppointmentRepository(client), log,
				engineOptions(cfg, nil, auditStore)...)

			result, err := engine.Refresh(cmd.Context())
			if err != nil {
				return fmt.Errorf("sweep: %w", err)
			}
			fmt.Fprintf(cmd.OutOrStdout(), "candidates=%d cancelled=%d failed=%d skipped=%d\n",
				result.Candidates, len(result.Cancelled), len(result.Failed), len(result.Skipped))
			if len(result.Failed) > 0 {
				return fmt.Errorf("%d cancellations failed", len(result.Failed))
			}
			return nil
		},
	}
}

func migrateCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "migrate",
		Short: "Create or update the audit tables",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, log, err := bootstrap()
			if err != nil {
				return err
			}
			defer log.Sync()

			db, err := models.InitDB(models.DatabaseConfig{DSN: cfg.Database.DSN})
			if err != nil {
				return fmt.Errorf("connect database: %w", err)
			}
			if err := models.Migrate(db); err != nil {
				return fmt.Errorf("migrate: %w", err)
			}
			log.Info("Audit tables migrated")
			return nil
		},
	}
}

func tokenCmd() *cobra.Command {
	var (
		userID string
		role   string
		ttl    time.Duration
	)
	cmd := &cobra.Command{
		Use:   "token",
		Short: "Issue an operator token signed with JWT_SECRET",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := config.LoadConfig()
			if err != nil {
				return err
			}
			r := models.Role(role)
			if !r.Valid() {
				return fmt.Errorf("unknown role %q", role)
			}
			tok, err := utils.GenerateToken(userID, r, cfg.JWTSecret, ttl)
			if err != nil {
				return err
			}
			fmt.Fprintln(cmd.OutOrStdout(), tok)
			return nil
		},
	}
	cmd.Flags().StringVar(&userID, "user", "", "operator id recorded in the audit trail")
	cmd.Flags().StringVar(&role, "role", string(models.RoleStaff), "admin or staff")
	cmd.Flags().DurationVar(&ttl, "ttl", 12*time.Hour, "token lifetime")
	_ = cmd.MarkFlagRequired("user")
	return cmd
}
