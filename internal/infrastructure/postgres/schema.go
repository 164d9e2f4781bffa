package postgres

import (
	"context"
	"errors"
	"fmt"
	"slices"

	"github.com/crm-mobile-api/internal/config"
	"github.com/crm-mobile-api/internal/domain"
	"github.com/jackc/pgx/v5"
)

const columnsQuery = `
	SELECT column_name
	FROM information_schema.columns
	WHERE table_schema = current_schema() AND table_name = $1
	ORDER BY ordinal_position`

const memberUserFKQuery = `
	SELECT kcu.column_name
	FROM information_schema.table_constraints tc
	JOIN information_schema.key_column_usage kcu
	  ON kcu.constraint_name = tc.constraint_name AND kcu.table_schema = tc.table_schema
	JOIN information_schema.constraint_column_usage ccu
	  ON ccu.constraint_name = tc.constraint_name AND ccu.table_schema = tc.table_schema
	WHERE tc.constraint_type = 'FOREIGN KEY'
	  AND tc.table_schema = current_schema()
	  AND tc.table_name = 'members'
	  AND ccu.table_name = 'users'
	ORDER BY kcu.ordinal_position
	LIMIT 1`

// memberColumnCandidates is the fallback probe order when members has no
// foreign key to users.
var memberColumnCandidates = []string{"user", "member", "user_id", "user_email", "allocated_to"}

const defaultMemberColumn = "user"

// ResolveSchema inspects the live database once and combines the result with
// the notification log settings from config.
func ResolveSchema(ctx context.Context, db Database, logCfg config.NotificationLog) (domain.Schema, error) {
	taskCols, err := tableColumns(ctx, db, "crm_tasks")
	if err != nil {
		return domain.Schema{}, fmt.Errorf("resolve task columns: %w", err)
	}
	if len(taskCols) == 0 {
		return domain.Schema{}, errors.New("resolve task columns: table crm_tasks not found")
	}

	memberCol, err := memberUserColumn(ctx, db)
	if err != nil {
		return domain.Schema{}, fmt.Errorf("resolve member column: %w", err)
	}

	return domain.Schema{
		Version:          domain.SchemaVersion,
		TaskColumns:      taskCols,
		MemberUserColumn: memberCol,
		LogSeenAttribute: seenAttribute(logCfg.SeenAttribute),
		LogHasFromUser:   logCfg.HasFromUser,
	}, nil
}

func tableColumns(ctx context.Context, db Database, table string) ([]string, error) {
	rows, err := db.Query(ctx, columnsQuery, table)
	if err != nil {
		return nil, err
	}
	cols, err := pgx.CollectRows(rows, pgx.RowTo[string])
	if err != nil {
		return nil, err
	}
	return cols, nil
}

func memberUserColumn(ctx context.Context, db Database) (string, error) {
	var col string
	err := db.QueryRow(ctx, memberUserFKQuery).Scan(&col)
	switch {
	case err == nil:
		return col, nil
	case !errors.Is(err, pgx.ErrNoRows):
		return "", err
	}

	cols, err := tableColumns(ctx, db, "members")
	if err != nil {
		return "", err
	}
	for _, c := range memberColumnCandidates {
		if slices.Contains(cols, c) {
			return c, nil
		}
	}
	return defaultMemberColumn, nil
}

func seenAttribute(v string) string {
	switch v {
	case "seen", "read":
		return v
	default:
		return ""
	}
}
