package postgres

import (
	"context"
	"errors"
	"fmt"
	"maps"
	"slices"
	"strings"
	"time"

	"github.com/crm-mobile-api/internal/domain"
	"github.com/crm-mobile-api/internal/metrics"
	"github.com/jackc/pgx/v5"
)

// taskReadColumns are the columns the compact projection may need.
var taskReadColumns = []string{
	"name", "title", "status", "priority", "task_type", "start_date",
	"due_date", "description", "assigned_to", "modified",
}

var taskInsertColumns = append(slices.Clone(taskReadColumns), "creation")

// priorityRank orders priorities High > Medium > Low instead of alphabetically.
const priorityRank = `CASE priority WHEN 'High' THEN 3 WHEN 'Medium' THEN 2 WHEN 'Low' THEN 1 ELSE 0 END`

var dateOps = map[string]bool{"=": true, "<": true, "<=": true, ">": true, ">=": true}

// TaskRepo provides typed operations on crm_tasks. Column lists are filtered
// through the schema descriptor so optional columns are never referenced when
// a deployment lacks them.
type TaskRepo struct {
	db      Database
	schema  domain.Schema
	metrics *metrics.Metrics
}

func NewTaskRepo(db Database, schema domain.Schema, m *metrics.Metrics) *TaskRepo {
	return &TaskRepo{db: db, schema: schema, metrics: m}
}

func (r *TaskRepo) columns() []string {
	return r.schema.TaskFields(taskReadColumns...)
}

// Insert writes t, skipping columns absent from the schema. creation and
// modified are both set to t.Modified.
func (r *TaskRepo) Insert(ctx context.Context, t *domain.Task) error {
	defer r.metrics.ObserveQuery("insert_task", time.Now())

	values := map[string]any{
		"name":        t.Name,
		"title":       t.Title,
		"status":      t.Status,
		"priority":    t.Priority,
		"task_type":   t.TaskType,
		"start_date":  t.StartDate,
		"due_date":    t.DueDate,
		"description": t.Description,
		"assigned_to": t.AssignedTo,
		"modified":    t.Modified,
		"creation":    t.Modified,
	}
	cols := r.schema.TaskFields(taskInsertColumns...)
	placeholders := make([]string, len(cols))
	args := make([]any, len(cols))
	for i, c := range cols {
		placeholders[i] = fmt.Sprintf("$%d", i+1)
		args[i] = values[c]
	}

	query := fmt.Sprintf("INSERT INTO crm_tasks (%s) VALUES (%s)",
		quoteColumns(cols), strings.Join(placeholders, ", "))
	if _, err := r.db.Exec(ctx, query, args...); err != nil {
		return fmt.Errorf("failed to insert task %s: %w", t.Name, err)
	}
	return nil
}

func (r *TaskRepo) Get(ctx context.Context, name string) (*domain.Task, error) {
	defer r.metrics.ObserveQuery("get_task", time.Now())

	cols := r.columns()
	query := fmt.Sprintf("SELECT %s FROM crm_tasks WHERE name = $1", quoteColumns(cols))

	var t domain.Task
	err := r.db.QueryRow(ctx, query, name).Scan(taskDest(&t, cols)...)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, fmt.Errorf("task %s: %w", name, domain.ErrNotFound)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get task %s: %w", name, err)
	}
	return &t, nil
}

// Update applies updates to the task in column-name order; columns missing
// from the schema are dropped.
func (r *TaskRepo) Update(ctx context.Context, name string, updates map[string]any) error {
	defer r.metrics.ObserveQuery("update_task", time.Now())

	clauses := make([]string, 0, len(updates))
	args := make([]any, 0, len(updates)+1)
	for _, col := range slices.Sorted(maps.Keys(updates)) {
		if col != "modified" && !r.schema.HasTaskColumn(col) {
			continue
		}
		args = append(args, updates[col])
		clauses = append(clauses, fmt.Sprintf("%s = $%d", pgx.Identifier{col}.Sanitize(), len(args)))
	}
	if len(clauses) == 0 {
		return fmt.Errorf("update task %s: no fields to update: %w", name, domain.ErrBadRequest)
	}
	args = append(args, name)

	query := fmt.Sprintf("UPDATE crm_tasks SET %s WHERE name = $%d", strings.Join(clauses, ", "), len(args))
	tag, err := r.db.Exec(ctx, query, args...)
	if err != nil {
		return fmt.Errorf("failed to update task %s: %w", name, err)
	}
	if tag.RowsAffected() == 0 {
		return fmt.Errorf("task %s: %w", name, domain.ErrNotFound)
	}
	return nil
}

func (r *TaskRepo) Delete(ctx context.Context, name string) error {
	defer r.metrics.ObserveQuery("delete_task", time.Now())

	tag, err := r.db.Exec(ctx, "DELETE FROM crm_tasks WHERE name = $1", name)
	if err != nil {
		return fmt.Errorf("failed to delete task %s: %w", name, err)
	}
	if tag.RowsAffected() == 0 {
		return fmt.Errorf("task %s: %w", name, domain.ErrNotFound)
	}
	return nil
}

// List returns one page of tasks matching q.
func (r *TaskRepo) List(ctx context.Context, q domain.TaskQuery) ([]domain.Task, error) {
	defer r.metrics.ObserveQuery("filter_tasks", time.Now())

	where, args, err := taskWhere(q.Filter)
	if err != nil {
		return nil, err
	}
	cols := r.columns()

	var sb strings.Builder
	fmt.Fprintf(&sb, "SELECT %s FROM crm_tasks", quoteColumns(cols))
	sb.WriteString(where)
	sb.WriteString(" ORDER BY ")
	sb.WriteString(orderClause(q.OrderBy))
	args = append(args, q.Limit, q.Offset)
	fmt.Fprintf(&sb, " LIMIT $%d OFFSET $%d", len(args)-1, len(args))

	rows, err := r.db.Query(ctx, sb.String(), args...)
	if err != nil {
		return nil, fmt.Errorf("failed to list tasks: %w", err)
	}
	defer rows.Close()

	tasks := make([]domain.Task, 0, q.Limit)
	for rows.Next() {
		var t domain.Task
		if err := rows.Scan(taskDest(&t, cols)...); err != nil {
			return nil, fmt.Errorf("failed to scan task: %w", err)
		}
		tasks = append(tasks, t)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate tasks: %w", err)
	}
	return tasks, nil
}

// Count returns the number of tasks matching f, using the same predicate as List.
func (r *TaskRepo) Count(ctx context.Context, f domain.TaskFilter) (int, error) {
	defer r.metrics.ObserveQuery("count_tasks", time.Now())

	where, args, err := taskWhere(f)
	if err != nil {
		return 0, err
	}
	var n int
	if err := r.db.QueryRow(ctx, "SELECT COUNT(*) FROM crm_tasks"+where, args...).Scan(&n); err != nil {
		return 0, fmt.Errorf("failed to count tasks: %w", err)
	}
	return n, nil
}

func taskWhere(f domain.TaskFilter) (string, []any, error) {
	var (
		conds []string
		args  []any
	)
	for _, dc := range f.StartDate {
		if !dateOps[dc.Op] {
			return "", nil, fmt.Errorf("date operator %q: %w", dc.Op, domain.ErrBadRequest)
		}
		args = append(args, dc.Date)
		conds = append(conds, fmt.Sprintf("start_date %s $%d::date", dc.Op, len(args)))
	}
	if len(f.Priorities) > 0 {
		args = append(args, f.Priorities)
		conds = append(conds, fmt.Sprintf("priority = ANY($%d)", len(args)))
	}
	if len(f.Statuses) > 0 {
		args = append(args, f.Statuses)
		conds = append(conds, fmt.Sprintf("status = ANY($%d)", len(args)))
	}
	if len(conds) == 0 {
		return "", args, nil
	}
	return " WHERE " + strings.Join(conds, " AND "), args, nil
}

func orderClause(terms []domain.OrderTerm) string {
	if len(terms) == 0 {
		return "modified DESC"
	}
	parts := make([]string, len(terms))
	for i, t := range terms {
		expr := pgx.Identifier{t.Field}.Sanitize()
		if t.Field == "priority" {
			expr = priorityRank
		}
		dir := "ASC"
		if t.Desc {
			dir = "DESC"
		}
		parts[i] = expr + " " + dir
	}
	return strings.Join(parts, ", ")
}

func quoteColumns(cols []string) string {
	quoted := make([]string, len(cols))
	for i, c := range cols {
		quoted[i] = pgx.Identifier{c}.Sanitize()
	}
	return strings.Join(quoted, ", ")
}

func taskDest(t *domain.Task, cols []string) []any {
	dest := make([]any, len(cols))
	for i, c := range cols {
		switch c {
		case "name":
			dest[i] = &t.Name
		case "title":
			dest[i] = &t.Title
		case "status":
			dest[i] = &t.Status
		case "priority":
			dest[i] = &t.Priority
		case "task_type":
			dest[i] = &t.TaskType
		case "start_date":
			dest[i] = &t.StartDate
		case "due_date":
			dest[i] = &t.DueDate
		case "description":
			dest[i] = &t.Description
		case "assigned_to":
			dest[i] = &t.AssignedTo
		case "modified":
			dest[i] = &t.Modified
		}
	}
	return dest
}
