package postgres

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/crm-mobile-api/internal/domain"
	"github.com/crm-mobile-api/internal/metrics"
	"github.com/jackc/pgx/v5"
)

var doctypeTables = map[string]string{
	domain.DoctypeLead: "crm_leads",
	domain.DoctypeDeal: "crm_deals",
	domain.DoctypeTask: "crm_tasks",
}

const documentColumns = "d.name, d.title, d.status, d.owner, d._assign, d.modified"

// DocumentRepo reads leads, deals and tasks through the assignment-based
// visibility rules and maintains their inline _assign lists.
type DocumentRepo struct {
	db        Database
	memberCol string
	metrics   *metrics.Metrics
}

func NewDocumentRepo(db Database, memberCol string, m *metrics.Metrics) *DocumentRepo {
	if memberCol == "" {
		memberCol = defaultMemberColumn
	}
	return &DocumentRepo{db: db, memberCol: memberCol, metrics: m}
}

func tableFor(doctype string) (string, error) {
	t, ok := doctypeTables[doctype]
	if !ok {
		return "", fmt.Errorf("unsupported doctype %q: %w", doctype, domain.ErrBadRequest)
	}
	return t, nil
}

// List returns the documents of doctype visible under vis and matching q.
func (r *DocumentRepo) List(ctx context.Context, doctype string, vis domain.Visibility, q domain.DocumentQuery) ([]domain.Document, error) {
	defer r.metrics.ObserveQuery("list_documents", time.Now())

	table, err := tableFor(doctype)
	if err != nil {
		return nil, err
	}

	var args []any
	conds := []string{}
	visCond, args := r.visibilityClause(doctype, vis, args)
	if visCond != "" {
		conds = append(conds, visCond)
	}
	if q.Filter.Status != "" {
		args = append(args, q.Filter.Status)
		conds = append(conds, fmt.Sprintf("d.status = $%d", len(args)))
	}
	if q.Filter.Owner != "" {
		args = append(args, q.Filter.Owner)
		conds = append(conds, fmt.Sprintf("d.owner = $%d", len(args)))
	}
	if q.Filter.Search != "" {
		args = append(args, "%"+q.Filter.Search+"%")
		conds = append(conds, fmt.Sprintf("(d.name ILIKE $%[1]d OR d.title ILIKE $%[1]d)", len(args)))
	}

	var sb strings.Builder
	fmt.Fprintf(&sb, "SELECT %s FROM %s d", documentColumns, table)
	if len(conds) > 0 {
		sb.WriteString(" WHERE ")
		sb.WriteString(strings.Join(conds, " AND "))
	}
	args = append(args, q.Limit, q.Offset)
	fmt.Fprintf(&sb, " ORDER BY d.modified DESC, d.name LIMIT $%d OFFSET $%d", len(args)-1, len(args))

	rows, err := r.db.Query(ctx, sb.String(), args...)
	if err != nil {
		return nil, fmt.Errorf("failed to list %s: %w", table, err)
	}
	defer rows.Close()

	docs := []domain.Document{}
	for rows.Next() {
		d := domain.Document{Doctype: doctype}
		if err := rows.Scan(&d.Name, &d.Title, &d.Status, &d.Owner, &d.Assign, &d.Modified); err != nil {
			return nil, fmt.Errorf("failed to scan %s row: %w", table, err)
		}
		docs = append(docs, d)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate %s: %w", table, err)
	}
	return docs, nil
}

// visibilityClause renders vis as a predicate over alias d. An empty string
// means unrestricted.
func (r *DocumentRepo) visibilityClause(doctype string, vis domain.Visibility, args []any) (string, []any) {
	switch vis.Kind {
	case domain.VisibleAll:
		return "", args
	case domain.VisibleAssigned:
		if vis.User == "" {
			return "1=0", args
		}
	default:
		return "1=0", args
	}

	args = append(args, doctype, vis.User, domain.ToDoOpen)
	dt, user, open := len(args)-2, len(args)-1, len(args)
	member := "m." + pgx.Identifier{r.memberCol}.Sanitize()

	return fmt.Sprintf(`(EXISTS (
		SELECT 1 FROM todos td
		WHERE td.reference_type = $%[1]d
		  AND td.reference_name = d.name
		  AND td.allocated_to = $%[2]d
		  AND td.status = $%[3]d
	) OR EXISTS (
		SELECT 1 FROM members m
		JOIN teams t ON m.parent = t.name
		JOIN todos td
		  ON td.reference_type = $%[1]d
		 AND td.reference_name = d.name
		 AND td.status = $%[3]d
		WHERE t.team_leader = $%[2]d
		  AND td.allocated_to = %[4]s
	))`, dt, user, open, member), args
}

func (r *DocumentRepo) Get(ctx context.Context, doctype, name string) (*domain.Document, error) {
	defer r.metrics.ObserveQuery("get_document", time.Now())

	table, err := tableFor(doctype)
	if err != nil {
		return nil, err
	}
	d := domain.Document{Doctype: doctype}
	err = r.db.QueryRow(ctx,
		fmt.Sprintf("SELECT %s FROM %s d WHERE d.name = $1", documentColumns, table), name,
	).Scan(&d.Name, &d.Title, &d.Status, &d.Owner, &d.Assign, &d.Modified)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, fmt.Errorf("%s %s: %w", doctype, name, domain.ErrNotFound)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get %s %s: %w", doctype, name, err)
	}
	return &d, nil
}

// AppendAssign adds user to the document's _assign list unless already present.
func (r *DocumentRepo) AppendAssign(ctx context.Context, doctype, name, user string) error {
	table, err := tableFor(doctype)
	if err != nil {
		return err
	}
	_, err = r.db.Exec(ctx, fmt.Sprintf(`
		UPDATE %s
		SET _assign = COALESCE(_assign, '[]'::jsonb) || jsonb_build_array($1::text), modified = now()
		WHERE name = $2 AND NOT (COALESCE(_assign, '[]'::jsonb) @> jsonb_build_array($1::text))`, table),
		user, name,
	)
	if err != nil {
		return fmt.Errorf("failed to update _assign of %s %s: %w", doctype, name, err)
	}
	return nil
}
