// Command install prepares a fresh deployment: it applies the Postgres
// migrations, creates the DynamoDB tables and provisions the mobile OAuth
// client. OAuth bootstrap failures are logged and never fail the install.
package main

import (
	"context"
	"log/slog"
	"os"
	"time"

	"github.com/crm-mobile-api/internal/application/oauth"
	"github.com/crm-mobile-api/internal/config"
	"github.com/crm-mobile-api/internal/infrastructure/dynamo"
	"github.com/crm-mobile-api/internal/infrastructure/postgres"
	"github.com/crm-mobile-api/internal/pkg/sl"
	"github.com/joho/godotenv"
)

func main() {
	_ = godotenv.Load()

	cfg := config.Load()
	logger := sl.NewLogger(cfg.AppEnv)
	slog.SetDefault(logger)

	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Minute)
	defer cancel()

	pool, err := postgres.NewDatabase(ctx, cfg.DatabaseURL)
	if err != nil {
		logger.Error("failed to connect to database", sl.Err(err))
		os.Exit(1)
	}
	defer pool.Close()

	if err := postgres.Migrate(pool); err != nil {
		logger.Error("failed to apply migrations", sl.Err(err))
		os.Exit(1)
	}
	logger.Info("migrations applied")

	dynamoClient, err := dynamo.NewClient(ctx, cfg)
	if err != nil {
		logger.Error("failed to create dynamodb client", sl.Err(err))
		os.Exit(1)
	}
	dynamo.Bootstrap(ctx, dynamoClient, cfg.DynamoTables)

	svc := oauth.NewService(oauth.ServiceDeps{
		OAuthRepo: dynamo.NewOAuthRepo(dynamoClient, cfg.DynamoTables.OAuthSettings, cfg.DynamoTables.OAuthClients),
		Site:      cfg.Site,
	})
	res, err := svc.Bootstrap(ctx)
	if err != nil {
		logger.Error("oauth bootstrap failed", slog.String("site", cfg.Site.Name), sl.Err(err))
		return
	}
	logger.Info("oauth bootstrap finished",
		slog.Bool("ok", res.OK),
		slog.String("site", res.Site),
		slog.String("client_id", res.ClientID),
		slog.String("message", res.Message),
	)
}
