package postgres

import (
	"context"
	"fmt"
	"time"

	"github.com/crm-mobile-api/internal/domain"
	"github.com/crm-mobile-api/internal/metrics"
)

// LegacyNotificationRepo provides typed operations on crm_notifications.
type LegacyNotificationRepo struct {
	db      Database
	metrics *metrics.Metrics
}

func NewLegacyNotificationRepo(db Database, m *metrics.Metrics) *LegacyNotificationRepo {
	return &LegacyNotificationRepo{db: db, metrics: m}
}

// ListForUser returns the newest rows addressed to user.
func (r *LegacyNotificationRepo) ListForUser(ctx context.Context, user string, limit int) ([]domain.LegacyEntry, error) {
	defer r.metrics.ObserveQuery("list_legacy_notifications", time.Now())

	rows, err := r.db.Query(ctx, `
		SELECT name, creation, from_user, to_user, type, read, message, notification_text,
		       notification_type_doctype, notification_type_doc, reference_doctype, reference_name
		FROM crm_notifications
		WHERE to_user = $1
		ORDER BY creation DESC
		LIMIT $2`,
		user, limit,
	)
	if err != nil {
		return nil, fmt.Errorf("failed to list notifications of %s: %w", user, err)
	}
	defer rows.Close()

	out := []domain.LegacyEntry{}
	for rows.Next() {
		var e domain.LegacyEntry
		if err := rows.Scan(
			&e.Name, &e.Creation, &e.FromUser, &e.ToUser, &e.Type, &e.Read, &e.Message, &e.NotificationText,
			&e.NotificationTypeDoctype, &e.NotificationTypeDoc, &e.ReferenceDoctype, &e.ReferenceName,
		); err != nil {
			return nil, fmt.Errorf("failed to scan notification: %w", err)
		}
		out = append(out, e)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate notifications: %w", err)
	}
	return out, nil
}

func (r *LegacyNotificationRepo) CountUnread(ctx context.Context, user string) (int, error) {
	var n int
	err := r.db.QueryRow(ctx,
		"SELECT COUNT(*) FROM crm_notifications WHERE to_user = $1 AND NOT read", user,
	).Scan(&n)
	if err != nil {
		return 0, fmt.Errorf("failed to count unread notifications of %s: %w", user, err)
	}
	return n, nil
}

// MarkRead flags a single row as read.
func (r *LegacyNotificationRepo) MarkRead(ctx context.Context, name string) error {
	tag, err := r.db.Exec(ctx, "UPDATE crm_notifications SET read = TRUE WHERE name = $1", name)
	if err != nil {
		return fmt.Errorf("failed to mark notification %s read: %w", name, err)
	}
	if tag.RowsAffected() == 0 {
		return fmt.Errorf("notification %s: %w", name, domain.ErrNotFound)
	}
	return nil
}

// MarkAllRead flags every unread row of user as read. A non-empty doc limits
// the update to rows whose comment or notification_type_doc equals it.
func (r *LegacyNotificationRepo) MarkAllRead(ctx context.Context, user, doc string) (int64, error) {
	query := "UPDATE crm_notifications SET read = TRUE WHERE to_user = $1 AND NOT read"
	args := []any{user}
	if doc != "" {
		query += " AND (comment = $2 OR notification_type_doc = $2)"
		args = append(args, doc)
	}
	tag, err := r.db.Exec(ctx, query, args...)
	if err != nil {
		return 0, fmt.Errorf("failed to mark notifications of %s read: %w", user, err)
	}
	return tag.RowsAffected(), nil
}
