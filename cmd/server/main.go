package main

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"golang.org/x/net/http2"
	"golang.org/x/net/http2/h2c"

	"github.com/mmynk/roommates/internal/auth"
	"github.com/mmynk/roommates/internal/config"
	"github.com/mmynk/roommates/internal/engine"
	"github.com/mmynk/roommates/internal/metrics"
	"github.com/mmynk/roommates/internal/rpc"
	"github.com/mmynk/roommates/internal/service"
	"github.com/mmynk/roommates/internal/storage/sqlite"
	"github.com/mmynk/roommates/pkg/logging"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		slog.Error("Failed to load config", "error", err)
		os.Exit(1)
	}

	logger, err := logging.Setup(cfg.LogLevel, cfg.LogFormat)
	if err != nil {
		slog.Error("Failed to configure logging", "error", err)
		os.Exit(1)
	}

	store, err := sqlite.New(cfg.DBPath)
	if err != nil {
		logger.Error("Failed to initialize storage", "error", err)
		os.Exit(1)
	}
	defer store.Close()
	logger.Info("Storage initialized", "database", cfg.DBPath)

	reg := prometheus.NewRegistry()
	reg.MustRegister(
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
	)
	m := metrics.New(reg)

	jwtManager := auth.NewJWTManager(cfg.JWTSecret, cfg.TokenTTL)
	authenticator := auth.NewPasswordAuthenticator(store)
	clock := engine.SystemClock{Location: cfg.Location}

	handler := rpc.NewRouter(rpc.RouterConfig{
		Services: rpc.Services{
			Users:      service.NewUserService(store, authenticator, jwtManager, m, logger),
			Households: service.NewHouseholdService(store, m, logger),
			Tasks:      service.NewTaskService(store, clock, m, logger),
			Bills:      service.NewBillService(store, clock, m, logger),
		},
		JWT:        jwtManager,
		Metrics:    m,
		Gatherer:   reg,
		CORSOrigin: cfg.CORSOrigin,
		Logger:     logger,
	})

	srv := &http.Server{
		Addr: cfg.Addr,
		// h2c serves HTTP/2 without TLS, which Connect clients expect
		Handler:           h2c.NewHandler(handler, &http2.Server{}),
		ReadHeaderTimeout: 5 * time.Second,
	}

	go func() {
		logger.Info("Connect server starting", "address", cfg.Addr, "timezone", cfg.Location.String())
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Error("Server failed", "error", err)
			os.Exit(1)
		}
	}()

	stop := make(chan os.Signal, 1)
	signal.Notify(stop, syscall.SIGINT, syscall.SIGTERM)
	<-stop

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := srv.Shutdown(ctx); err != nil {
		logger.Error("Server shutdown failed", "error", err)
	}
	logger.Info("Server stopped")
}
