package postgres

import (
	"context"
	"fmt"
	"time"

	"github.com/crm-mobile-api/internal/domain"
	"github.com/crm-mobile-api/internal/metrics"
	"github.com/jackc/pgx/v5"
)

const userColumns = "name, email, full_name, user_image, enabled"

// UserRepo provides read access to users and their roles.
type UserRepo struct {
	db      Database
	metrics *metrics.Metrics
}

func NewUserRepo(db Database, m *metrics.Metrics) *UserRepo {
	return &UserRepo{db: db, metrics: m}
}

// GetMany loads the named users in one query. Unknown names are absent from
// the result.
func (r *UserRepo) GetMany(ctx context.Context, names []string) (map[string]domain.User, error) {
	defer r.metrics.ObserveQuery("get_users", time.Now())

	out := make(map[string]domain.User, len(names))
	if len(names) == 0 {
		return out, nil
	}
	users, err := r.query(ctx, "SELECT "+userColumns+" FROM users WHERE name = ANY($1)", names)
	if err != nil {
		return nil, err
	}
	for _, u := range users {
		out[u.Name] = u
	}
	return out, nil
}

// ListEnabled returns every enabled user ordered by full name.
func (r *UserRepo) ListEnabled(ctx context.Context) ([]domain.User, error) {
	defer r.metrics.ObserveQuery("list_enabled_users", time.Now())

	return r.query(ctx, "SELECT "+userColumns+" FROM users WHERE enabled ORDER BY full_name NULLS LAST, name")
}

// ListEnabledIn returns the enabled users among names ordered by full name.
func (r *UserRepo) ListEnabledIn(ctx context.Context, names []string) ([]domain.User, error) {
	defer r.metrics.ObserveQuery("list_enabled_users", time.Now())

	if len(names) == 0 {
		return []domain.User{}, nil
	}
	return r.query(ctx,
		"SELECT "+userColumns+" FROM users WHERE enabled AND name = ANY($1) ORDER BY full_name NULLS LAST, name",
		names)
}

// Roles returns the role names held by user.
func (r *UserRepo) Roles(ctx context.Context, user string) ([]string, error) {
	rows, err := r.db.Query(ctx, "SELECT role FROM user_roles WHERE parent = $1", user)
	if err != nil {
		return nil, fmt.Errorf("failed to query roles of %s: %w", user, err)
	}
	roles, err := pgx.CollectRows(rows, pgx.RowTo[string])
	if err != nil {
		return nil, fmt.Errorf("failed to scan roles of %s: %w", user, err)
	}
	return roles, nil
}

func (r *UserRepo) query(ctx context.Context, sql string, args ...any) ([]domain.User, error) {
	rows, err := r.db.Query(ctx, sql, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to query users: %w", err)
	}
	defer rows.Close()

	users := []domain.User{}
	for rows.Next() {
		var u domain.User
		if err := rows.Scan(&u.Name, &u.Email, &u.FullName, &u.UserImage, &u.Enabled); err != nil {
			return nil, fmt.Errorf("failed to scan user: %w", err)
		}
		users = append(users, u)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate users: %w", err)
	}
	return users, nil
}
