package main

import (
	"context"
	"fmt"
	"io/fs"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/labstack/echo/v4"
	echomw "github.com/labstack/echo/v4/middleware"
	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog"
	"github.com/spf13/cobra"

	"github.com/senemedecine/api/internal/config"
	"github.com/senemedecine/api/internal/domain/appointment"
	"github.com/senemedecine/api/internal/domain/assistant"
	"github.com/senemedecine/api/internal/domain/consultation"
	"github.com/senemedecine/api/internal/domain/hospital"
	"github.com/senemedecine/api/internal/domain/imaging"
	"github.com/senemedecine/api/internal/domain/medication"
	"github.com/senemedecine/api/internal/domain/messaging"
	"github.com/senemedecine/api/internal/domain/patient"
	"github.com/senemedecine/api/internal/domain/stats"
	"github.com/senemedecine/api/internal/domain/user"
	"github.com/senemedecine/api/internal/platform/auth"
	"github.com/senemedecine/api/internal/platform/db"
	"github.com/senemedecine/api/internal/platform/httpx"
	"github.com/senemedecine/api/internal/platform/jobs"
	"github.com/senemedecine/api/internal/platform/llm"
	"github.com/senemedecine/api/internal/platform/middleware"
	"github.com/senemedecine/api/internal/platform/orthanc"
	"github.com/senemedecine/api/migrations"
)

const version = "1.0.0"

func main() {
	rootCmd := &cobra.Command{
		Use:   "senemedecine-server",
		Short: "SeneMedecine hospital management API",
	}

	rootCmd.AddCommand(serveCmd())
	rootCmd.AddCommand(migrateCmd())
	rootCmd.AddCommand(seedCmd())
	rootCmd.AddCommand(hashPasswordCmd())

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

func newLogger(env string) zerolog.Logger {
	if env == "development" {
		return zerolog.New(zerolog.ConsoleWriter{Out: os.Stdout}).With().Timestamp().Logger()
	}
	return zerolog.New(os.Stdout).With().Timestamp().Logger()
}

func openPool(ctx context.Context, cfg *config.Config) (*pgxpool.Pool, error) {
	return db.NewPool(ctx, db.PoolOptions{
		URL:      cfg.DatabaseURL,
		MaxConns: cfg.DBMaxConns,
		MinConns: cfg.DBMinConns,
	})
}

// migrationsSource returns the migrations directory when it exists on disk
// and the embedded copy otherwise.
func migrationsSource(dir string) fs.FS {
	if dir != "" {
		if st, err := os.Stat(dir); err == nil && st.IsDir() {
			return os.DirFS(dir)
		}
	}
	return migrations.FS
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
			if dir == "" {
				dir = cfg.MigrationsDir
			}

			ctx := context.Background()
			pool, err := openPool(ctx, cfg)
			if err != nil {
				return err
			}
			defer pool.Close()

			count, err := db.NewMigratorFS(pool, migrationsSource(dir)).Up(ctx)
			if err != nil {
				return fmt.Errorf("migration failed: %w", err)
			}

			fmt.Printf("Applied %d migration(s) successfully.\n", count)
			return nil
		},
	}
	upCmd.Flags().String("dir", "", "Path to migrations directory (defaults to MIGRATIONS_DIR, then the embedded files)")
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
			if dir == "" {
				dir = cfg.MigrationsDir
			}

			ctx := context.Background()
			pool, err := openPool(ctx, cfg)
			if err != nil {
				return err
			}
			defer pool.Close()

			statuses, err := db.NewMigratorFS(pool, migrationsSource(dir)).Status(ctx)
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
	statusCmd.Flags().String("dir", "", "Path to migrations directory (defaults to MIGRATIONS_DIR, then the embedded files)")
	cmd.AddCommand(statusCmd)

	return cmd
}

func seedCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "seed",
		Short: "Insert demo hospitals, staff, patients and appointments",
		RunE: func(cmd *cobra.Command, args []string) error {
			password, _ := cmd.Flags().GetString("password")

			cfg, err := config.Load()
			if err != nil {
				return err
			}

			ctx := context.Background()
			pool, err := openPool(ctx, cfg)
			if err != nil {
				return err
			}
			defer pool.Close()

			hash, err := auth.HashPassword(password)
			if err != nil {
				return err
			}

			var n int
			err = db.NewTxRunner(pool).InTx(ctx, func(ctx context.Context) error {
				var err error
				n, err = seedDemo(ctx, db.Conn(ctx, pool), hash, time.Now())
				return err
			})
			if err != nil {
				return fmt.Errorf("seed failed: %w", err)
			}
			fmt.Printf("Seeded %d row(s). Demo accounts use the password %q.\n", n, password)
			return nil
		},
	}
	cmd.Flags().String("password", defaultSeedPassword, "Password given to every demo account")
	return cmd
}

func hashPasswordCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "hash-password [password]",
		Short: "Print the bcrypt hash of a password",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			hash, err := auth.HashPassword(args[0])
			if err != nil {
				return err
			}
			fmt.Fprintln(cmd.OutOrStdout(), hash)
			return nil
		},
	}
}

// newRevocationStore uses Redis when REDIS_URL is set so logouts are shared
// across instances. The returned func releases the store.
func newRevocationStore(ctx context.Context, redisURL string) (auth.RevocationStore, func(), error) {
	if redisURL == "" {
		store := auth.NewMemoryRevocationStore()
		return store, store.Close, nil
	}
	opts, err := redis.ParseURL(redisURL)
	if err != nil {
		return nil, nil, fmt.Errorf("parse REDIS_URL: %w", err)
	}
	client := redis.NewClient(opts)
	if err := client.Ping(ctx).Err(); err != nil {
		client.Close()
		return nil, nil, fmt.Errorf("connect to redis: %w", err)
	}
	return auth.NewRedisRevocationStore(client), func() { client.Close() }, nil
}

func runServer() error {
	cfg, err := config.Load()
	if err != nil {
		bootLogger := newLogger(os.Getenv("ENV"))
		bootLogger.Fatal().Err(err).Msg("failed to load config")
	}
	logger := newLogger(cfg.Env)
	if err := cfg.Validate(); err != nil {
		logger.Fatal().Err(err).Msg("invalid config")
	}

	// Database
	ctx := context.Background()
	pool, err := openPool(ctx, cfg)
	if err != nil {
		logger.Fatal().Err(err).Msg("failed to connect to database")
	}
	defer pool.Close()
	logger.Info().Msg("connected to database")

	revocations, closeRevocations, err := newRevocationStore(ctx, cfg.RedisURL)
	if err != nil {
		logger.Fatal().Err(err).Msg("failed to set up token revocation")
	}
	defer closeRevocations()

	// Echo server
	e := echo.New()
	e.HideBanner = true
	e.HidePort = true
	e.HTTPErrorHandler = httpx.ErrorHandler(logger)

	// Global middleware
	e.Use(middleware.RequestID())
	e.Use(middleware.Recovery(logger))
	e.Use(middleware.Logger(logger))
	e.Use(middleware.SecurityHeaders())
	e.Use(echomw.CORSWithConfig(echomw.CORSConfig{
		AllowOrigins: cfg.CORSOrigins,
		AllowMethods: []string{http.MethodGet, http.MethodPost, http.MethodPut, http.MethodPatch, http.MethodDelete},
		AllowHeaders: []string{"Authorization", "Content-Type", "X-Request-ID"},
	}))
	e.Use(echomw.Gzip())
	e.Use(middleware.BodyLimit(cfg.BodyLimit))
	e.Use(middleware.RateLimit(middleware.RateLimitConfig{
		RequestsPerSecond: cfg.RateLimitRPS,
		BurstSize:         cfg.RateLimitBurst,
	}))
	e.Use(middleware.RequestTimeout(cfg.RequestTimeout))

	// Health checks
	e.GET("/health", func(c echo.Context) error {
		return c.JSON(http.StatusOK, map[string]string{
			"status":  "ok",
			"version": version,
		})
	})
	e.GET("/health/db", db.HealthHandler(pool, func() *db.PoolStats { return db.GetPoolStats(pool) }))

	issuer := auth.NewTokenIssuer([]byte(cfg.JWTSecret), cfg.JWTExpiresIn)
	public := e.Group("/api")
	api := e.Group("/api", auth.JWTMiddleware(issuer, revocations), middleware.Audit(logger))
	loginLimiter := middleware.RateLimit(middleware.LoginRateLimitConfig(cfg.AuthRateLimitRPS, cfg.AuthRateLimitBurst))

	tx := db.NewTxRunner(pool)

	hospitalSvc := hospital.NewService(hospital.NewRepoPG(pool), tx)
	hospital.NewHandler(hospitalSvc).RegisterRoutes(api)

	userRepo := user.NewRepoPG(pool)
	user.NewAuthHandler(user.NewAuthService(userRepo, issuer, revocations)).RegisterRoutes(public, api, loginLimiter)
	user.NewHandler(user.NewService(userRepo, tx, revocations, issuer.TTL())).RegisterRoutes(api)

	patientRepo := patient.NewRepoPG(pool)
	patient.NewHandler(patient.NewService(patientRepo, userRepo)).RegisterRoutes(api)

	consultationRepo := consultation.NewRepoPG(pool)
	consultation.NewHandler(consultation.NewService(consultationRepo, patientRepo, userRepo)).RegisterRoutes(api)

	appointmentSvc := appointment.NewService(appointment.NewRepoPG(pool), patientRepo, userRepo)
	appointment.NewHandler(appointmentSvc).RegisterRoutes(api)

	medicationSvc := medication.NewService(medication.NewRepoPG(pool), patientRepo, consultationRepo)
	medication.NewHandler(medicationSvc).RegisterRoutes(api)

	pacs := orthanc.NewClient(orthanc.Config{
		BaseURL:  cfg.OrthancURL,
		Username: cfg.OrthancUsername,
		Password: cfg.OrthancPassword,
		Timeout:  cfg.OrthancTimeout,
	})
	imagingSvc := imaging.NewService(imaging.NewRepoPG(pool), consultationRepo, pacs, tx)
	imaging.NewHandler(imagingSvc).RegisterRoutes(api)
	imaging.NewProxyHandler(pacs).RegisterRoutes(api)

	completer := llm.NewClient(llm.Config{
		URL:    cfg.LLMAPIURL,
		APIKey: cfg.LLMAPIKey,
		Model:  cfg.LLMModel,
	})
	assistant.NewHandler(assistant.NewService(completer)).RegisterRoutes(api)

	stats.NewHandler(stats.NewService(stats.NewRepoPG(pool), patientRepo)).RegisterRoutes(api)

	messagingSvc := messaging.NewService(messaging.NewRepoPG(pool), userRepo, consultationRepo, patientRepo)
	messaging.NewHandler(messagingSvc).RegisterRoutes(api)

	// Background jobs
	scheduler := jobs.NewScheduler(logger, time.Minute)
	err = scheduler.Add("appointment-sweep", cfg.SweepCron, func(ctx context.Context) error {
		n, err := appointmentSvc.SweepExpired(ctx)
		if err != nil {
			return err
		}
		logger.Info().Int64("cancelled", n).Msg("expired pending appointments cancelled")
		return nil
	})
	if err != nil {
		logger.Fatal().Err(err).Msg("invalid APPOINTMENT_SWEEP_CRON")
	}
	scheduler.Start()
	defer scheduler.Stop()

	// Graceful shutdown
	go func() {
		addr := ":" + cfg.Port
		logger.Info().Str("addr", addr).Str("env", cfg.Env).Msg("starting server")
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
		logger.Error().Err(err).Msg("server shutdown failed")
	}
	logger.Info().Msg("server stopped")
	return nil
}
