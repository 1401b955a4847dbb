package main

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"

	"github.com/Skufu/carepath/internal/api"
	"github.com/Skufu/carepath/internal/apperrors"
	"github.com/Skufu/carepath/internal/classifier"
	"github.com/Skufu/carepath/internal/config"
	"github.com/Skufu/carepath/internal/logging"
	"github.com/Skufu/carepath/internal/metrics"
	"github.com/Skufu/carepath/internal/middleware"
	"github.com/Skufu/carepath/internal/refdata"
	"github.com/Skufu/carepath/internal/service"
)

type HealthChecker interface {
	Ping(ctx context.Context) error
}

func main() {
	cfg, err := config.Load()
	if err != nil {
		fmt.Fprintf(os.Stderr, "config error: %v\n", err)
		os.Exit(1)
	}
	gin.SetMode(cfg.GinMode)

	logger := logging.New(cfg.LogLevel)
	slog.SetDefault(logger)

	if err := run(cfg, logger); err != nil {
		logger.Error("server stopped", "error", err)
		os.Exit(1)
	}
}

func run(cfg *config.Config, logger *slog.Logger) error {
	ctx := context.Background()

	model, err := classifier.Open(classifier.Options{
		Format:      cfg.Model.Format,
		Path:        cfg.Model.Path,
		MetaPath:    cfg.Model.MetaPath,
		LibraryPath: cfg.Model.OrtLibraryPath,
	})
	if err != nil {
		return fmt.Errorf("load classifier: %w", err)
	}
	defer model.Close()
	logger.Info("classifier loaded",
		"format", cfg.Model.Format,
		"features", len(model.FeatureNames()),
		"classes", len(model.Classes()),
	)

	var (
		db     HealthChecker
		source refdata.Source = refdata.NewCSVSource(cfg.DataDir)
	)
	if cfg.Database.Enabled {
		pool, err := refdata.Connect(ctx, cfg.Database.URL)
		if err != nil {
			return fmt.Errorf("database connection failed: %w", err)
		}
		defer pool.Close()

		if cfg.Database.Migrate {
			if err := refdata.Migrate(ctx, pool, logger); err != nil {
				return err
			}
		}
		if cfg.Database.Seed {
			csvTables, err := source.Load(ctx)
			if err != nil {
				return fmt.Errorf("load seed data: %w", err)
			}
			if err := refdata.Seed(ctx, pool, csvTables, logger); err != nil {
				return err
			}
		}
		db = pool
		source = refdata.NewPostgresSource(pool)
	}

	tables, err := source.Load(ctx)
	if err != nil {
		return fmt.Errorf("load reference data: %w", err)
	}
	for table, n := range tables.Counts() {
		metrics.RecordReferenceRows(table, n)
	}
	logger.Info("reference data loaded", "database", cfg.Database.Enabled, "rows", tables.Counts())

	svc := service.New(model, tables, logger)
	router := setupRouter(db, api.NewHandler(svc), cfg, logger)
	server := &http.Server{
		Addr:              ":" + cfg.Port,
		Handler:           router,
		ReadHeaderTimeout: 5 * time.Second,
		ReadTimeout:       10 * time.Second,
		WriteTimeout:      15 * time.Second,
		IdleTimeout:       60 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
	}()

	logger.Info("server listening", "port", cfg.Port)
	return waitForShutdown(server, errCh, logger)
}

func setupRouter(db HealthChecker, handler *api.Handler, cfg *config.Config, logger *slog.Logger) *gin.Engine {
	limiter := middleware.NewIPRateLimiter(cfg.RateLimit.RequestsPerSecond, cfg.RateLimit.Burst)

	router := gin.New()
	router.Use(
		middleware.RequestID(),
		logging.RequestLogger(logger),
		apperrors.Recovery(logger),
		metrics.Middleware(),
		middleware.SecurityHeaders(),
		middleware.LimitBodySize(cfg.MaxBodyBytes),
		cors.New(cors.Config{
			AllowOrigins:  cfg.CORSOrigins,
			AllowMethods:  []string{"GET", "POST", "OPTIONS"},
			AllowHeaders:  []string{"Origin", "Content-Type", middleware.RequestIDHeader},
			ExposeHeaders: []string{middleware.RequestIDHeader},
			MaxAge:        12 * time.Hour,
		}),
	)

	router.GET("/healthz", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"status": "ok"})
	})

	router.GET("/readyz", func(c *gin.Context) {
		if db == nil {
			c.JSON(http.StatusOK, gin.H{"status": "ok", "db": "disabled"})
			return
		}

		ctx, cancel := context.WithTimeout(c.Request.Context(), 2*time.Second)
		defer cancel()

		if err := db.Ping(ctx); err != nil {
			logger.Warn("readiness check failed", "error", err)
			c.JSON(http.StatusServiceUnavailable, gin.H{
				"status": "degraded",
				"db":     "unhealthy",
			})
			return
		}

		c.JSON(http.StatusOK, gin.H{"status": "ok", "db": "ok"})
	})

	router.GET("/metrics", gin.WrapH(metrics.Handler()))

	routes := router.Group("/")
	routes.Use(limiter.Middleware(), apperrors.ErrorHandler(logger))
	handler.Register(routes)

	return router
}

func waitForShutdown(server *http.Server, errCh <-chan error, logger *slog.Logger) error {
	stop := make(chan os.Signal, 1)
	signal.Notify(stop, syscall.SIGINT, syscall.SIGTERM)
	defer signal.Stop(stop)

	select {
	case err := <-errCh:
		return fmt.Errorf("server error: %w", err)
	case sig := <-stop:
		logger.Info("shutting down server", "signal", sig.String())
	}

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	if err := server.Shutdown(ctx); err != nil {
		return fmt.Errorf("graceful shutdown failed: %w", err)
	}
	return nil
}
