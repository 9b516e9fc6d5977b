package main

import (
	"context"
	"errors"
	"net"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"
	"google.golang.org/grpc"
	"google.golang.org/grpc/health"
	healthpb "google.golang.org/grpc/health/grpc_health_v1"

	"novelhub/moderation-service/internal/config"
	"novelhub/moderation-service/internal/handler"
	"novelhub/moderation-service/internal/middleware"
	"novelhub/moderation-service/internal/pubsub"
	"novelhub/moderation-service/internal/repository"
	"novelhub/moderation-service/internal/service"
	"novelhub/moderation-service/pkg/auth"
	"novelhub/moderation-service/pkg/db"
	"novelhub/moderation-service/pkg/logger"
	"novelhub/moderation-service/pkg/metrics"
)

const serviceName = "moderation-service"

func main() {
	// Initialize logger
	log := logger.NewLogger(serviceName)
	log.Info("Starting Moderation Service...")

	cfg := config.Load(log.Base())
	log = logger.NewLoggerWithOutput(serviceName, cfg.LogLevel, os.Stdout)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	// Initialize database connection
	conn, err := db.NewConnection(ctx, cfg.DB())
	if err != nil {
		log.Base().WithError(err).Fatal("Failed to connect to database")
	}
	defer conn.Close()

	// Validate schema
	if err := db.NewSchemaGuard(conn.DB).ValidateTables(ctx, repository.ExpectedSchemas()); err != nil {
		log.Base().WithError(err).Warn("Schema validation warning")
	}
	log.Base().Info("Database connected and schema validated")

	serviceMetrics := metrics.NewMetrics("moderation")
	go serviceMetrics.PollDBStats(ctx, conn.DB, 15*time.Second)

	// Push channel is optional; notifications are still stored without it
	var dispatcher service.Dispatcher
	if cfg.Redis.Enabled {
		publisher, err := pubsub.NewRedisPublisher(ctx, cfg.Redis.URL)
		if err != nil {
			log.Base().WithError(err).Warn("Redis unavailable - live notifications disabled")
		} else {
			defer publisher.Close()
			dispatcher = publisher
		}
	}

	// Initialize repositories
	requestRepo := repository.NewRequestRepository(conn.DB)
	personRequestRepo := repository.NewPersonRequestRepository(conn.DB)
	novelRepo := repository.NewNovelRepository(conn.DB)
	commentRepo := repository.NewCommentRepository(conn.DB)
	notificationRepo := repository.NewNotificationRepository(conn.DB)

	// Initialize services
	validator := service.NewValidator()
	notifier := service.NewReplyNotifier(notificationRepo, dispatcher, serviceMetrics, log.Base())
	services := handler.Services{
		Requests:       service.NewRequestService(requestRepo, validator, serviceMetrics, cfg.Location()),
		PersonRequests: service.NewPersonRequestService(personRequestRepo, novelRepo, validator),
		Approvals:      service.NewApprovalService(personRequestRepo, serviceMetrics, log.Base()),
		Comments:       service.NewCommentService(commentRepo, novelRepo, notifier, validator, log.Base()),
	}

	if cfg.Auth.JWTSecret == "" {
		log.Base().Fatal("JWT_SECRET is required")
	}
	tokenValidator := auth.NewJWTValidator(cfg.Auth.JWTSecret, cfg.Auth.Issuer)
	authorizer, err := auth.NewAuthorizer()
	if err != nil {
		log.Base().WithError(err).Fatal("Failed to build authorization policy")
	}

	gin.SetMode(gin.ReleaseMode)
	router := handler.NewRouter(handler.RouterConfig{
		Logger:     log,
		Metrics:    serviceMetrics,
		Validator:  tokenValidator,
		Authorizer: authorizer,
		Throttle:   middleware.NewThrottle(30, time.Minute),
		Health:     conn.Ping,
	}, services)

	httpServer := &http.Server{
		Addr:              ":" + cfg.HTTP.Port,
		Handler:           router,
		ReadHeaderTimeout: 10 * time.Second,
	}

	// gRPC serves health checks for the orchestrator
	grpcServer := grpc.NewServer(
		grpc.ChainUnaryInterceptor(
			logger.UnaryServerInterceptor(log),
			metrics.UnaryServerInterceptor(serviceMetrics),
			auth.UnaryServerInterceptor(tokenValidator),
		),
		grpc.ChainStreamInterceptor(
			logger.StreamServerInterceptor(log),
			metrics.StreamServerInterceptor(serviceMetrics),
		),
	)
	healthServer := health.NewServer()
	healthpb.RegisterHealthServer(grpcServer, healthServer)
	healthServer.SetServingStatus(serviceName, healthpb.HealthCheckResponse_SERVING)

	lis, err := net.Listen("tcp", ":"+cfg.GRPC.Port)
	if err != nil {
		log.Base().WithError(err).WithField("port", cfg.GRPC.Port).Fatal("Failed to listen")
	}

	go func() {
		if err := grpcServer.Serve(lis); err != nil {
			log.Base().WithError(err).Error("gRPC server stopped")
		}
	}()

	go func() {
		if err := httpServer.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Base().WithError(err).Fatal("Failed to serve HTTP")
		}
	}()

	log.Base().WithFields(logrus.Fields{
		"http_port": cfg.HTTP.Port,
		"grpc_port": cfg.GRPC.Port,
		"timezone":  cfg.Location().String(),
	}).Info("Moderation Service started")

	// Graceful shutdown
	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, os.Interrupt, syscall.SIGTERM)
	<-sigChan

	log.Base().Info("Shutting down gracefully...")
	healthServer.Shutdown()
	cancel()

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), cfg.HTTP.ShutdownTimeout)
	defer shutdownCancel()
	if err := httpServer.Shutdown(shutdownCtx); err != nil {
		log.Base().WithError(err).Warn("HTTP shutdown did not complete")
	}
	grpcServer.GracefulStop()
	log.Base().Info("Shutdown complete")
}
