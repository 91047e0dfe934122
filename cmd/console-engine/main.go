package main

import (
	"context"
	"errors"
	"flag"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/edosstack/edos-console/internal/api"
	"github.com/edosstack/edos-console/internal/config"
	"github.com/edosstack/edos-console/internal/console"
	"github.com/edosstack/edos-console/internal/metrics"
	"github.com/edosstack/edos-console/internal/service"
	"github.com/edosstack/edos-console/internal/session"
	"github.com/edosstack/edos-console/internal/source"
	"github.com/edosstack/edos-console/internal/utils"
)

func main() {
	var configPath string
	flag.StringVar(&configPath, "config", "", "Path to configuration file")
	flag.Parse()

	cfg, err := config.Load(configPath)
	if err != nil {
		slog.Error("failed to load config", slog.String("path", configPath), slog.Any("error", err))
		os.Exit(1)
	}

	logger := utils.NewLogger(cfg.Logging.Level, cfg.Logging.JSON)
	logger.Info("starting edos-console", slog.String("address", cfg.Server.Address))

	if err := metrics.Register(prometheus.DefaultRegisterer); err != nil {
		logger.Error("failed to register metrics", slog.Any("error", err))
		os.Exit(1)
	}

	svc := service.NewConsoleService(
		logger,
		console.Options{
			Capacity:        cfg.Console.Capacity,
			RowHeight:       cfg.Console.RowHeight,
			ViewportHeight:  cfg.Console.ViewportHeight,
			BottomTolerance: cfg.Console.BottomTolerance,
		},
		source.Options{
			Endpoint:     cfg.Stream.Endpoint,
			TickInterval: cfg.Stream.TickInterval,
			DialTimeout:  cfg.Stream.DialTimeout,
		},
	)
	defer svc.Close()

	server, err := api.NewServer(cfg.Server.Address, svc, session.FromToken(cfg.Auth.Token), logger)
	if err != nil {
		logger.Error("failed to create API server", slog.Any("error", err))
		os.Exit(1)
	}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	var metricsServer *http.Server
	if cfg.Server.MetricsAddress != "" {
		mux := http.NewServeMux()
		mux.Handle("/metrics", promhttp.Handler())
		metricsServer = &http.Server{
			Addr:         cfg.Server.MetricsAddress,
			Handler:      mux,
			ReadTimeout:  5 * time.Second,
			WriteTimeout: 15 * time.Second,
		}
		go func() {
			logger.Info("metrics server listening", slog.String("address", cfg.Server.MetricsAddress))
			if err := metricsServer.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
				logger.Error("metrics server exited", slog.Any("error", err))
				stop()
			}
		}()
	}

	svc.Start()

	go func() {
		if serveErr := server.Start(); serveErr != nil {
			logger.Error("API server exited", slog.Any("error", serveErr))
			stop()
		}
	}()

	<-ctx.Done()
	logger.Info("shutdown signal received")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.Server.GracefulTimeout)
	defer cancel()
	if err := server.Shutdown(shutdownCtx); err != nil {
		logger.Warn("API server shutdown", slog.Any("error", err))
	}

	if metricsServer != nil {
		metricsCtx, cancelMetrics := context.WithTimeout(context.Background(), 5*time.Second)
		if err := metricsServer.Shutdown(metricsCtx); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Warn("metrics server shutdown", slog.Any("error", err))
		}
		cancelMetrics()
	}

	// Give remaining goroutines time to finish logging
	time.Sleep(100 * time.Millisecond)
	logger.Info("edos-console stopped")
}
