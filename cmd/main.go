package main

import (
	"context"
	"encoding/json"
	"errors"
	"flag"
	"fmt"
	"net"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/joho/godotenv"
	_ "github.com/lib/pq"
	_ "github.com/mattn/go-sqlite3"
	"github.com/rs/zerolog"
	"google.golang.org/grpc"
	"google.golang.org/grpc/health"
	"google.golang.org/grpc/health/grpc_health_v1"
	"google.golang.org/grpc/reflection"

	"retail-sales-analytics/internal/api"
	"retail-sales-analytics/internal/config"
	applog "retail-sales-analytics/internal/logger"
	"retail-sales-analytics/internal/report"
)

const (
	defaultAppName = "RetailSalesAnalytics"
)

func usage() {
	fmt.Fprintf(flag.CommandLine.Output(), `Usage: %s [flags] <command>

Commands:
  bootstrap  drop and recreate the schema
  generate   replace the dataset with a synthetic one
  report     compute every report and export it as CSV
  serve      serve the reports over HTTP and gRPC
  all        bootstrap, generate and report

Flags:
`, os.Args[0])
	flag.PrintDefaults()
}

func main() {
	seed := flag.Uint64("seed", 0, "generator seed (overrides GENERATOR_SEED)")
	outDir := flag.String("out", "", "report output directory (overrides REPORTS_OUTPUT_DIR)")
	flag.Usage = usage
	flag.Parse()
	if flag.NArg() != 1 {
		flag.Usage()
		os.Exit(2)
	}
	command := flag.Arg(0)

	envErr := godotenv.Load()
	cfg, err := config.Load()
	if err != nil {
		fmt.Fprintf(os.Stderr, "FATAL: Error loading configuration: %v\n", err)
		os.Exit(1)
	}
	logger := applog.New(applog.Config{Env: cfg.AppEnv, Level: cfg.LogLevel}).
		With().Str("service", defaultAppName).Str("command", command).Logger()
	if envErr != nil {
		logger.Debug().Msg(".env file not found, relying on system environment variables")
	}

	flag.Visit(func(f *flag.Flag) {
		switch f.Name {
		case "seed":
			cfg.Generator.Seed = seed
		case "out":
			cfg.Reports.OutputDir = *outDir
		}
	})
	logger.Info().Str("app_env", cfg.AppEnv).Str("log_level", cfg.LogLevel).Msg("configuration loaded")

	ctx := context.Background()
	a, err := openApp(ctx, cfg, logger)
	if err != nil {
		logger.Fatal().Err(err).Msg("failed to initialize storage")
	}

	if command == cmdServe {
		err = serve(ctx, a)
	} else {
		err = a.run(ctx, command)
		if cerr := a.Close(); cerr != nil {
			logger.Warn().Err(cerr).Msg("error closing database")
		}
	}
	if err != nil {
		logger.Fatal().Err(err).Msg("command failed")
	}
	logger.Info().Msg("done")
}

// serve builds the report snapshot and runs the HTTP and gRPC servers
// until SIGINT or SIGTERM.
func serve(ctx context.Context, a *app) error {
	logger := a.logger
	cfg := a.cfg

	if cfg.Database.Driver == config.DriverMemory {
		if _, err := a.generate(ctx); err != nil {
			return err
		}
	}
	snapshot := report.NewSnapshot(report.NewEngine(a.data, report.WithLogger(logger)))
	if err := snapshot.Refresh(ctx); err != nil {
		return err
	}

	// --- Setup & Start HTTP Server ---
	httpRouter := chi.NewRouter()
	setupBaseMiddleware(httpRouter, logger, cfg.HttpServer)
	registerHealthCheck(httpRouter, logger, a.ping)
	api.NewHTTPHandler(snapshot, logger).RegisterRoutes(httpRouter)

	httpServer := &http.Server{
		Addr:         ":" + cfg.HttpServer.Port,
		Handler:      httpRouter,
		ReadTimeout:  cfg.HttpServer.TimeoutRead,
		WriteTimeout: cfg.HttpServer.TimeoutWrite,
		IdleTimeout:  cfg.HttpServer.TimeoutIdle,
	}

	go func() {
		logger.Info().Str("port", cfg.HttpServer.Port).Msg("HTTP server listening")
		if err := httpServer.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Fatal().Err(err).Msg("HTTP server ListenAndServe error")
		}
		logger.Info().Msg("HTTP server has stopped")
	}()

	// --- Setup & Start gRPC Server ---
	grpcServer := setupGRPCServer(logger, api.NewGRPCHandler(snapshot, logger))
	grpcListener, err := net.Listen("tcp", ":"+cfg.GrpcServer.Port)
	if err != nil {
		return fmt.Errorf("failed to listen for gRPC on port %s: %w", cfg.GrpcServer.Port, err)
	}

	go func() {
		logger.Info().Str("port", cfg.GrpcServer.Port).Msg("gRPC server listening")
		if err := grpcServer.Serve(grpcListener); err != nil && !errors.Is(err, grpc.ErrServerStopped) {
			logger.Fatal().Err(err).Msg("gRPC server Serve error")
		}
		logger.Info().Msg("gRPC server has stopped")
	}()

	// --- Graceful Shutdown ---
	shutdownComplete := make(chan struct{})
	go waitForShutdown(logger, httpServer, grpcServer, a, shutdownComplete)

	<-shutdownComplete
	logger.Info().Msg("service shutdown sequence finished")
	return nil
}

func setupBaseMiddleware(router *chi.Mux, logger zerolog.Logger, cfg config.ServerConfig) {
	router.Use(middleware.RequestID)
	router.Use(middleware.RealIP)
	router.Use(api.RequestLogger(logger))
	router.Use(middleware.Recoverer)
	router.Use(api.NewRateLimiter(cfg.RateLimitRPS, cfg.RateLimitBurst).Handler)
	router.Use(middleware.Timeout(60 * time.Second))
	logger.Debug().Msg("base HTTP middleware registered")
}

func registerHealthCheck(router *chi.Mux, logger zerolog.Logger, ping func(ctx context.Context) error) {
	healthPath := "/api/v1/healthz"
	router.Get(healthPath, func(w http.ResponseWriter, r *http.Request) {
		ctx, cancel := context.WithTimeout(r.Context(), 2*time.Second)
		defer cancel()
		dbStatus := "healthy"
		if err := ping(ctx); err != nil {
			dbStatus = "unhealthy"
			logger.Warn().Err(err).Msg("health check DB ping failed")
		}

		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusOK) // Always 200, the payload carries the detail
		json.NewEncoder(w).Encode(map[string]interface{}{
			"status":      "healthy",
			"serviceName": defaultAppName,
			"timestamp":   time.Now().UTC().Format(time.RFC3339),
			"database":    dbStatus,
		})
	})
	logger.Debug().Str("path", healthPath).Msg("HTTP health check registered")
}

func setupGRPCServer(logger zerolog.Logger, handler *api.GRPCHandler) *grpc.Server {
	s := grpc.NewServer(grpc.ChainUnaryInterceptor(api.UnaryLoggingInterceptor(logger)))

	api.RegisterReportServiceServer(s, handler)

	healthServer := health.NewServer()
	healthServer.SetServingStatus(api.ReportServiceName, grpc_health_v1.HealthCheckResponse_SERVING)
	grpc_health_v1.RegisterHealthServer(s, healthServer)

	reflection.Register(s)
	logger.Debug().Msg("gRPC report, health and reflection services registered")
	return s
}

func waitForShutdown(
	logger zerolog.Logger,
	httpServer *http.Server,
	grpcServer *grpc.Server,
	a *app,
	shutdownComplete chan struct{},
) {
	defer close(shutdownComplete)

	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, os.Interrupt, syscall.SIGTERM)
	receivedSignal := <-sigChan
	logger.Info().Str("signal", receivedSignal.String()).Msg("starting graceful shutdown")

	shutdownCtx, cancelShutdown := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancelShutdown()

	stoppedGrpc := make(chan struct{})
	go func() {
		grpcServer.GracefulStop()
		close(stoppedGrpc)
	}()

	if err := httpServer.Shutdown(shutdownCtx); err != nil {
		logger.Warn().Err(err).Msg("HTTP server graceful shutdown failed")
	} else {
		logger.Info().Msg("HTTP server gracefully shut down")
	}

	select {
	case <-stoppedGrpc:
		logger.Info().Msg("gRPC server gracefully shut down")
	case <-shutdownCtx.Done():
		logger.Warn().Err(shutdownCtx.Err()).Msg("gRPC server graceful shutdown timed out, forcing stop")
		grpcServer.Stop()
	}

	if err := a.Close(); err != nil {
		logger.Warn().Err(err).Msg("error closing database connection")
	}
	logger.Info().Msg("graceful shutdown sequence completed")
}
