//go:build integration

package postgres_test

import (
	"context"
	"testing"
	"time"

	"github.com/crm-mobile-api/internal/config"
	"github.com/crm-mobile-api/internal/domain"
	"github.com/crm-mobile-api/internal/infrastructure/postgres"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/testcontainers/testcontainers-go"
	tcpostgres "github.com/testcontainers/testcontainers-go/modules/postgres"
	"github.com/testcontainers/testcontainers-go/wait"
)

func startPostgres(t *testing.T) *pgxpool.Pool {
	t.Helper()
	ctx := context.Background()

	ctr, err := tcpostgres.Run(ctx, "postgres:16-alpine",
		tcpostgres.WithDatabase("crm"),
		tcpostgres.WithUsername("crm"),
		tcpostgres.WithPassword("crm"),
		testcontainers.WithWaitStrategy(
			wait.ForLog("database system is ready to accept connections").
				WithOccurrence(2).
				WithStartupTimeout(60*time.Second),
		),
	)
	require.NoError(t, err)
	t.Cleanup(func() { _ = ctr.Terminate(context.Background()) })

	dsn, err := ctr.ConnectionString(ctx, "sslmode=disable")
	require.NoError(t, err)

	pool, err := postgres.NewDatabase(ctx, dsn)
	require.NoError(t, err)
	t.Cleanup(pool.Close)

	require.NoError(t, postgres.Migrate(pool))
	return pool
}

func TestIntegration_SchemaAndVisibility(t *testing.T) {
	pool := startPostgres(t)
	ctx := context.Background()

	schema, err := postgres.ResolveSchema(ctx, pool, config.NotificationLog{SeenAttribute: "seen", HasFromUser: true})
	require.NoError(t, err)
	assert.Equal(t, "user", schema.MemberUserColumn)
	assert.True(t, schema.HasTaskColumn("description"))

	for _, q := range []string{
		`INSERT INTO users (name, full_name) VALUES ('lead@example.com', 'Team Lead'), ('rep@example.com', 'Rep'), ('other@example.com', 'Other')`,
		`INSERT INTO teams (name, team_leader) VALUES ('North', 'lead@example.com')`,
		`INSERT INTO members (name, parent, "user") VALUES ('M-1', 'North', 'rep@example.com')`,
		`INSERT INTO crm_leads (name, title) VALUES ('LEAD-1', 'Acme'), ('LEAD-2', 'Globex')`,
		`INSERT INTO todos (name, reference_type, reference_name, allocated_to, status) VALUES ('TD-1', 'CRM Lead', 'LEAD-1', 'rep@example.com', 'Open')`,
	} {
		_, err := pool.Exec(ctx, q)
		require.NoError(t, err)
	}

	repo := postgres.NewDocumentRepo(pool, schema.MemberUserColumn, nil)
	list := func(user string) []string {
		docs, err := repo.List(ctx, domain.DoctypeLead,
			domain.Visibility{Kind: domain.VisibleAssigned, User: user}, domain.DocumentQuery{Limit: 10})
		require.NoError(t, err)
		names := make([]string, len(docs))
		for i, d := range docs {
			names[i] = d.Name
		}
		return names
	}

	assert.Equal(t, []string{"LEAD-1"}, list("rep@example.com"))
	assert.Equal(t, []string{"LEAD-1"}, list("lead@example.com"))
	assert.Empty(t, list("other@example.com"))

	all, err := repo.List(ctx, domain.DoctypeLead, domain.Visibility{Kind: domain.VisibleAll}, domain.DocumentQuery{Limit: 10})
	require.NoError(t, err)
	assert.Len(t, all, 2)

	require.NoError(t, repo.AppendAssign(ctx, domain.DoctypeLead, "LEAD-2", "other@example.com"))
	require.NoError(t, repo.AppendAssign(ctx, domain.DoctypeLead, "LEAD-2", "other@example.com"))
	doc, err := repo.Get(ctx, domain.DoctypeLead, "LEAD-2")
	require.NoError(t, err)
	assert.Equal(t, []string{"other@example.com"}, doc.Assign)
}
