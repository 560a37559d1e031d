package main

import (
	"context"
	"errors"
	"fmt"
	"log"
	"log/slog"
	"net"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/google/uuid"
	"google.golang.org/grpc"
	"google.golang.org/grpc/health"
	healthpb "google.golang.org/grpc/health/grpc_health_v1"
	"google.golang.org/grpc/reflection"

	"github.com/light-bringer/pos-service/internal/config"
	"github.com/light-bringer/pos-service/internal/discovery"
	"github.com/light-bringer/pos-service/internal/pkg/logging"
	"github.com/light-bringer/pos-service/internal/services"
	"github.com/light-bringer/pos-service/internal/transport/http/pos"
)

const shutdownTimeout = 10 * time.Second

func main() {
	if err := run(); err != nil {
		log.Fatalf("Failed to run server: %v", err)
	}
}

func run() error {
	ctx := context.Background()

	// 1. Load configuration
	cfg, err := config.Load()
	if err != nil {
		return fmt.Errorf("failed to load config: %w", err)
	}

	logger, err := logging.New(logging.Options{
		Level:   cfg.Log.Level,
		Format:  logging.Format(cfg.Log.Format),
		Service: cfg.Consul.ServiceName,
	})
	if err != nil {
		return fmt.Errorf("failed to create logger: %w", err)
	}

	logger.Info("starting POS service",
		"store", cfg.Store.Driver,
		"http_port", cfg.HTTPPort,
		"grpc_port", cfg.GRPCPort,
		"mpesa_enabled", cfg.MPesa.Enabled,
	)

	// 2. Initialize service dependencies (DI container)
	serviceOpts, err := services.NewServiceOptions(ctx, cfg, logger)
	if err != nil {
		return fmt.Errorf("failed to initialize service: %w", err)
	}
	defer serviceOpts.Close()

	// 3. Create gRPC server with health and reflection
	grpcServer := grpc.NewServer()
	healthServer := health.NewServer()
	healthpb.RegisterHealthServer(grpcServer, healthServer)
	reflection.Register(grpcServer)

	lis, err := net.Listen("tcp", ":"+cfg.GRPCPort)
	if err != nil {
		return fmt.Errorf("failed to listen on gRPC port: %w", err)
	}

	// 4. Create HTTP server
	httpServer := &http.Server{
		Addr:         ":" + cfg.HTTPPort,
		Handler:      pos.NewRouter(serviceOpts.HTTPHandler, logger),
		ReadTimeout:  30 * time.Second,
		WriteTimeout: 30 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	errCh := make(chan error, 2)

	// 5. Start servers in background
	go func() {
		logger.Info("gRPC server listening", "addr", lis.Addr().String())
		if err := grpcServer.Serve(lis); err != nil {
			errCh <- fmt.Errorf("gRPC server: %w", err)
		}
	}()
	go func() {
		logger.Info("HTTP server listening", "addr", httpServer.Addr)
		if err := httpServer.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- fmt.Errorf("HTTP server: %w", err)
		}
	}()
	healthServer.SetServingStatus("", healthpb.HealthCheckResponse_SERVING)

	// 6. Optional service registration
	deregister := register(cfg, logger)
	defer deregister()

	// 7. Graceful shutdown handling
	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, os.Interrupt, syscall.SIGTERM)

	var runErr error
	select {
	case sig := <-sigCh:
		logger.Info("shutting down gracefully", "signal", sig.String())
	case runErr = <-errCh:
		logger.Error("server failed, shutting down", "error", runErr)
	}

	healthServer.Shutdown()

	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()
	if err := httpServer.Shutdown(shutdownCtx); err != nil {
		logger.Error("HTTP server shutdown error", "error", err)
	}
	grpcServer.GracefulStop()

	return runErr
}

// register adds the instance to Consul when enabled and returns the matching
// cleanup. Registration failures are logged; the till keeps serving.
func register(cfg *config.Config, logger *slog.Logger) func() {
	if !cfg.Consul.Enabled {
		return func() {}
	}

	consulClient, err := discovery.NewConsulClient(cfg.Consul.Address)
	if err != nil {
		logger.Error("consul unavailable, skipping registration", "error", err)
		return func() {}
	}

	serviceID := fmt.Sprintf("%s-%s", cfg.Consul.ServiceName, uuid.New().String())
	err = consulClient.RegisterService(discovery.Registration{
		ID:   serviceID,
		Name: cfg.Consul.ServiceName,
		Host: cfg.Consul.ServiceHost,
		Port: cfg.HTTPPort,
	})
	if err != nil {
		logger.Error("consul registration failed", "error", err)
		return func() {}
	}
	logger.Info("registered with consul", "service_id", serviceID)

	return func() {
		if err := consulClient.DeregisterService(serviceID); err != nil {
			logger.Error("consul deregistration failed", "error", err)
		}
	}
}
