package postgres

import (
	"context"
	"fmt"
	"time"

	"github.com/crm-mobile-api/internal/domain"
	"github.com/crm-mobile-api/internal/metrics"
)

// TodoRepo provides typed operations on the todos table.
type TodoRepo struct {
	db      Database
	metrics *metrics.Metrics
}

func NewTodoRepo(db Database, m *metrics.Metrics) *TodoRepo {
	return &TodoRepo{db: db, metrics: m}
}

// OpenAssignees returns, per reference name, the distinct users holding an
// open ToDo on it, oldest assignment first.
func (r *TodoRepo) OpenAssignees(ctx context.Context, refType string, refNames []string) (map[string][]string, error) {
	defer r.metrics.ObserveQuery("open_assignees", time.Now())

	out := make(map[string][]string, len(refNames))
	if len(refNames) == 0 {
		return out, nil
	}

	rows, err := r.db.Query(ctx, `
		SELECT reference_name, allocated_to
		FROM todos
		WHERE reference_type = $1 AND reference_name = ANY($2) AND status = $3
		ORDER BY creation, name`,
		refType, refNames, domain.ToDoOpen,
	)
	if err != nil {
		return nil, fmt.Errorf("failed to query open todos: %w", err)
	}
	defer rows.Close()

	seen := make(map[[2]string]bool)
	for rows.Next() {
		var ref, user string
		if err := rows.Scan(&ref, &user); err != nil {
			return nil, fmt.Errorf("failed to scan todo: %w", err)
		}
		if seen[[2]string{ref, user}] {
			continue
		}
		seen[[2]string{ref, user}] = true
		out[ref] = append(out[ref], user)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate todos: %w", err)
	}
	return out, nil
}

// ExistsOpen reports whether user already holds an open ToDo on the document.
func (r *TodoRepo) ExistsOpen(ctx context.Context, refType, refName, user string) (bool, error) {
	var exists bool
	err := r.db.QueryRow(ctx, `
		SELECT EXISTS(
			SELECT 1 FROM todos
			WHERE reference_type = $1 AND reference_name = $2 AND allocated_to = $3 AND status = $4
		)`,
		refType, refName, user, domain.ToDoOpen,
	).Scan(&exists)
	if err != nil {
		return false, fmt.Errorf("failed to check open todo: %w", err)
	}
	return exists, nil
}

func (r *TodoRepo) Insert(ctx context.Context, td *domain.ToDo) error {
	defer r.metrics.ObserveQuery("insert_todo", time.Now())

	_, err := r.db.Exec(ctx, `
		INSERT INTO todos (name, reference_type, reference_name, allocated_to, status, description, assigned_by, creation)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8)`,
		td.Name, td.ReferenceType, td.ReferenceName, td.AllocatedTo,
		td.Status, td.Description, td.AssignedBy, td.Creation,
	)
	if err != nil {
		return fmt.Errorf("failed to insert todo for %s: %w", td.AllocatedTo, err)
	}
	return nil
}

// CancelOpen cancels every open ToDo on the document and returns how many
// rows changed.
func (r *TodoRepo) CancelOpen(ctx context.Context, refType, refName string) (int64, error) {
	tag, err := r.db.Exec(ctx, `
		UPDATE todos SET status = $1
		WHERE reference_type = $2 AND reference_name = $3 AND status = $4`,
		domain.ToDoCancelled, refType, refName, domain.ToDoOpen,
	)
	if err != nil {
		return 0, fmt.Errorf("failed to cancel todos for %s: %w", refName, err)
	}
	return tag.RowsAffected(), nil
}
