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

	"github.com/crm-mobile-api/internal/config"
	"github.com/crm-mobile-api/internal/infrastructure/dynamo"
	jwtinfra "github.com/crm-mobile-api/internal/infrastructure/jwt"
	"github.com/crm-mobile-api/internal/infrastructure/postgres"
	"github.com/crm-mobile-api/internal/infrastructure/realtime"
	s3infra "github.com/crm-mobile-api/internal/infrastructure/s3"
	"github.com/crm-mobile-api/internal/infrastructure/smtp"
	"github.com/crm-mobile-api/internal/metrics"
	"github.com/crm-mobile-api/internal/pkg/sl"
	transporthttp "github.com/crm-mobile-api/internal/transport/http"
	"github.com/joho/godotenv"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
)

func main() {
	envErr := godotenv.Load()

	cfg := config.Load()
	logger := sl.NewLogger(cfg.AppEnv)
	slog.SetDefault(logger)
	if envErr != nil {
		logger.Debug("no .env file found, reading from environment")
	}

	ctx := context.Background()

	reg := prometheus.NewRegistry()
	reg.MustRegister(collectors.NewGoCollector(), collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}))
	m := metrics.NewMetrics(reg)

	pool, err := postgres.NewDatabase(ctx, cfg.DatabaseURL)
	if err != nil {
		logger.Error("failed to connect to database", sl.Err(err))
		os.Exit(1)
	}
	defer pool.Close()

	schema, err := postgres.ResolveSchema(ctx, pool, cfg.NotificationLog)
	if err != nil {
		logger.Error("failed to resolve schema", sl.Err(err))
		os.Exit(1)
	}
	logger.Info("schema resolved",
		slog.Int("version", schema.Version),
		slog.Int("task_columns", len(schema.TaskColumns)),
		slog.String("member_column", schema.MemberUserColumn),
		slog.String("log_seen_attribute", schema.LogSeenAttribute),
	)

	dynamoClient, err := dynamo.NewClient(ctx, cfg)
	if err != nil {
		logger.Error("failed to create dynamodb client", sl.Err(err))
		os.Exit(1)
	}

	publisher, err := newPublisher(ctx, cfg)
	if err != nil {
		logger.Error("failed to create realtime publisher", slog.String("backend", cfg.RealtimeBackend), sl.Err(err))
		os.Exit(1)
	}

	// Profile pictures degrade to null without S3.
	var images transporthttp.ImageStore
	if s3Client, err := s3infra.NewClient(ctx, cfg); err == nil {
		images = s3infra.NewStore(s3Client, cfg.S3BucketName)
	} else {
		logger.Warn("s3 not available, profile pictures disabled", sl.Err(err))
	}

	// Without a provider every authenticated route answers 401.
	var jwtProvider *jwtinfra.Provider
	if p, err := jwtinfra.NewProvider(cfg); err == nil {
		jwtProvider = p
	} else {
		logger.Warn("jwt provider not available", sl.Err(err))
	}

	deps := &transporthttp.Deps{
		DB:               pool,
		Schema:           schema,
		TaskRepo:         postgres.NewTaskRepo(pool, schema, m),
		TodoRepo:         postgres.NewTodoRepo(pool, m),
		UserRepo:         postgres.NewUserRepo(pool, m),
		TeamRepo:         postgres.NewTeamRepo(pool, schema.MemberUserColumn),
		DocumentRepo:     postgres.NewDocumentRepo(pool, schema.MemberUserColumn, m),
		NotificationLogs: dynamo.NewNotificationLogRepo(dynamoClient, cfg.DynamoTables.NotificationLog, schema),
		LegacyNotifs:     postgres.NewLegacyNotificationRepo(pool, m),
		OAuthRepo:        dynamo.NewOAuthRepo(dynamoClient, cfg.DynamoTables.OAuthSettings, cfg.DynamoTables.OAuthClients),
		ImageStore:       images,
		Publisher:        realtime.WithMetrics(publisher, m),
		Mailer:           smtp.NewMailer(cfg),
		JWTProvider:      jwtProvider,
		Metrics:          m,
		Gatherer:         reg,
	}

	srv := &http.Server{
		Addr:         fmt.Sprintf(":%s", cfg.AppPort),
		Handler:      transporthttp.NewRouter(cfg, deps),
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 15 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	go func() {
		logger.Info("server starting", slog.String("port", cfg.AppPort), slog.String("env", cfg.AppEnv))
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Error("server error", sl.Err(err))
			os.Exit(1)
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	logger.Info("shutting down server")
	shutdownCtx, cancel := context.WithTimeout(ctx, 10*time.Second)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		logger.Error("forced shutdown", sl.Err(err))
	}
	logger.Info("server stopped")
}

// newPublisher picks the realtime backend named by REALTIME_BACKEND.
func newPublisher(ctx context.Context, cfg *config.Config) (realtime.Publisher, error) {
	switch cfg.RealtimeBackend {
	case "sns":
		return realtime.NewSNSPublisher(ctx, cfg)
	case "redis", "":
		client, err := realtime.NewRedisClient(ctx, cfg.RedisURL)
		if err != nil {
			return nil, err
		}
		return realtime.NewRedisPublisher(client, realtime.DefaultRedisChannel), nil
	default:
		return nil, fmt.Errorf("unknown realtime backend %q", cfg.RealtimeBackend)
	}
}
