package main

import (
	"context"
	"log"
	"log/slog"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/cloudwego/hertz/pkg/app/server"
	"github.com/cloudwego/hertz/pkg/common/hlog"
	"github.com/cloudwego/hertz/pkg/network/netpoll"
	"github.com/spf13/cobra"

	"github.com/SINTEF/entities-service/internal/config"
	"github.com/SINTEF/entities-service/internal/handler"
	"github.com/SINTEF/entities-service/internal/infrastructure/datastore"
	"github.com/SINTEF/entities-service/internal/router"
	"github.com/SINTEF/entities-service/internal/soft"
	"github.com/SINTEF/entities-service/internal/usecase"
	storepkg "github.com/SINTEF/entities-service/pkg/datastore"
	"github.com/SINTEF/entities-service/pkg/logger"
	"github.com/SINTEF/entities-service/pkg/metrics"
)

//	@title			Entities Service
//	@version		0.1.0
//	@description	Serves and validates SOFT5/SOFT7 entities under a base namespace

//	@securityDefinitions.apikey	BearerAuth
//	@in							header
//	@name						Authorization
//	@description				JWT Token in format: Bearer {token}

var (
	cfgFile string
	version = "0.1.0"
)

var rootCmd = &cobra.Command{
	Use:   "entities-service",
	Short: "HTTP service for SOFT entities",
	Long: `Entities Service stores SOFT5 and SOFT7 entities and serves each one
at its own URI below the configured base namespace.`,
	Version: version,
	RunE:    runServer,
}

func init() {
	rootCmd.PersistentFlags().StringVarP(&cfgFile, "config", "c", "", "path to config file (defaults and ENTITIES_SERVICE_* env when empty)")
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		log.Fatal(err)
	}
}

func runServer(cmd *cobra.Command, args []string) error {
	cfg, err := config.Load(cfgFile)
	if err != nil {
		return err
	}

	baseLogger, logCloser, err := logger.Setup(cfg.Log)
	if err != nil {
		return err
	}
	defer logCloser.Close()
	slog.SetDefault(baseLogger)

	slog.Info("entities service starting",
		"version", version,
		"config", cfgFile,
		"base_url", cfg.Entities.BaseURL,
		"storage", cfg.Storage.Driver,
	)

	hertzLogger := logger.NewHertzSlogAdapter(logger.Component(baseLogger, "hertz"))
	hlog.SetLogger(hertzLogger)
	if level, err := logger.ParseLevel(cfg.Log.Level); err == nil && level <= slog.LevelDebug {
		hlog.SetLevel(hlog.LevelDebug)
	}

	validator, err := soft.NewValidator(soft.Options{
		BaseNamespace: cfg.Entities.BaseURL,
		Metaschema:    cfg.Entities.Metaschema,
		StrictShapes:  cfg.Entities.StrictShapes,
	})
	if err != nil {
		return err
	}

	store, err := storepkg.Open(cfg.Storage, baseLogger)
	if err != nil {
		return err
	}
	defer storepkg.Close(store, baseLogger)

	var m *metrics.Metrics
	var metricsServer *metrics.Server
	if cfg.Observability.EnableMetrics {
		m = metrics.New()
		metricsServer = metrics.NewServer(cfg.Observability.MetricsPort, m, baseLogger)
		metricsServer.Start()
	}

	entityRepo := datastore.NewEntityRepository(store, validator.BaseNamespace())
	entityUsecase := usecase.NewEntityUsecase(validator, entityRepo, m, logger.Component(baseLogger, "entities"))
	entityHandler := handler.NewEntityHandler(entityUsecase, validator.BaseNamespace(), baseLogger)

	userRepo := datastore.NewUserRepository(store)
	userUsecase := usecase.NewUserUsecase(userRepo, logger.Component(baseLogger, "users"))
	if cfg.Auth.AdminUsername != "" {
		ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		err := userUsecase.EnsureUser(ctx, cfg.Auth.AdminUsername, cfg.Auth.AdminPassword)
		cancel()
		if err != nil {
			return err
		}
	}
	userHandler, err := handler.NewUserHandler(userUsecase, cfg.JWT, baseLogger)
	if err != nil {
		return err
	}

	healthHandler := handler.NewHealthHandler(func(ctx context.Context) error {
		return storepkg.Ping(ctx, store)
	})

	h := server.Default(
		server.WithHostPorts(cfg.GetServerAddr()),
		server.WithReadTimeout(cfg.GetReadTimeout()),
		server.WithWriteTimeout(cfg.GetWriteTimeout()),
		server.WithMaxRequestBodySize(cfg.Server.MaxRequestBodySize*1024*1024),
		server.WithTransport(netpoll.NewTransporter),
	)

	router.Setup(h, router.Handlers{
		User:   userHandler,
		Entity: entityHandler,
		Health: healthHandler,
	}, router.Options{
		AllowRegistration: cfg.Auth.AllowRegistration,
		Metrics:           m,
		Logger:            baseLogger,
	})

	slog.Info("server started",
		"address", cfg.GetServerAddr(),
		"mode", cfg.Server.Mode,
		"metrics", cfg.Observability.EnableMetrics,
	)

	runErr := make(chan error, 1)
	go func() {
		runErr <- h.Run()
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	select {
	case <-quit:
	case err := <-runErr:
		if err != nil {
			slog.Error("server run failed", "error", err)
			return err
		}
	}

	slog.Info("shutting down server...")

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	if err := h.Shutdown(ctx); err != nil {
		slog.Error("server shutdown failed", "error", err)
	}
	if metricsServer != nil {
		if err := metricsServer.Shutdown(ctx); err != nil {
			slog.Error("metrics server shutdown failed", "error", err)
		}
	}

	slog.Info("server stopped gracefully")
	return nil
}
