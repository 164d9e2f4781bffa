package postgres

import (
	"context"
	"fmt"

	"github.com/jackc/pgx/v5"
)

// TeamRepo resolves team rosters. The members column that links to users
// differs between installs and is taken from the schema descriptor.
type TeamRepo struct {
	db        Database
	memberCol string
}

func NewTeamRepo(db Database, memberCol string) *TeamRepo {
	if memberCol == "" {
		memberCol = defaultMemberColumn
	}
	return &TeamRepo{db: db, memberCol: memberCol}
}

// Roster returns the distinct users that are members of any team led by leader.
func (r *TeamRepo) Roster(ctx context.Context, leader string) ([]string, error) {
	col := "m." + pgx.Identifier{r.memberCol}.Sanitize()
	query := fmt.Sprintf(`
		SELECT DISTINCT %[1]s
		FROM members m
		JOIN teams t ON t.name = m.parent
		WHERE t.team_leader = $1 AND %[1]s IS NOT NULL AND %[1]s <> ''
		ORDER BY %[1]s`, col)

	rows, err := r.db.Query(ctx, query, leader)
	if err != nil {
		return nil, fmt.Errorf("failed to query roster of %s: %w", leader, err)
	}
	members, err := pgx.CollectRows(rows, pgx.RowTo[string])
	if err != nil {
		return nil, fmt.Errorf("failed to scan roster of %s: %w", leader, err)
	}
	return members, nil
}
