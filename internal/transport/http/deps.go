package http

import (
	"context"
	"time"

	"github.com/crm-mobile-api/internal/domain"
	jwtinfra "github.com/crm-mobile-api/internal/infrastructure/jwt"
	"github.com/crm-mobile-api/internal/infrastructure/realtime"
	"github.com/crm-mobile-api/internal/infrastructure/smtp"
	"github.com/crm-mobile-api/internal/metrics"
	"github.com/prometheus/client_golang/prometheus"
)

// TaskRepository is the minimal interface the router requires from a task store.
type TaskRepository interface {
	Insert(ctx context.Context, t *domain.Task) error
	Get(ctx context.Context, name string) (*domain.Task, error)
	Update(ctx context.Context, name string, updates map[string]any) error
	Delete(ctx context.Context, name string) error
	List(ctx context.Context, q domain.TaskQuery) ([]domain.Task, error)
	Count(ctx context.Context, f domain.TaskFilter) (int, error)
}

// TodoRepository is the minimal interface the router requires from a ToDo store.
type TodoRepository interface {
	OpenAssignees(ctx context.Context, refType string, refNames []string) (map[string][]string, error)
	ExistsOpen(ctx context.Context, refType, refName, user string) (bool, error)
	Insert(ctx context.Context, td *domain.ToDo) error
	CancelOpen(ctx context.Context, refType, refName string) (int64, error)
}

// UserRepository is the minimal interface the router requires from a user store.
type UserRepository interface {
	GetMany(ctx context.Context, names []string) (map[string]domain.User, error)
	ListEnabled(ctx context.Context) ([]domain.User, error)
	ListEnabledIn(ctx context.Context, names []string) ([]domain.User, error)
	Roles(ctx context.Context, user string) ([]string, error)
}

// TeamRepository resolves the members of teams a user leads.
type TeamRepository interface {
	Roster(ctx context.Context, leader string) ([]string, error)
}

// DocumentRepository is the minimal interface the router requires from the
// lead and deal store.
type DocumentRepository interface {
	List(ctx context.Context, doctype string, vis domain.Visibility, q domain.DocumentQuery) ([]domain.Document, error)
	Get(ctx context.Context, doctype, name string) (*domain.Document, error)
	AppendAssign(ctx context.Context, doctype, name, user string) error
}

// NotificationLogRepository is the minimal interface the router requires from
// the Notification Log store.
type NotificationLogRepository interface {
	Put(ctx context.Context, e *domain.LogEntry) error
	ListForUser(ctx context.Context, user string, limit int) ([]domain.LogEntry, error)
	MarkSeen(ctx context.Context, name string) error
}

// LegacyNotificationRepository is the minimal interface the router requires
// from the CRM Notification store.
type LegacyNotificationRepository interface {
	ListForUser(ctx context.Context, user string, limit int) ([]domain.LegacyEntry, error)
	CountUnread(ctx context.Context, user string) (int, error)
	MarkRead(ctx context.Context, name string) error
	MarkAllRead(ctx context.Context, user, doc string) (int64, error)
}

// OAuthRepository is the minimal interface the router requires from the
// OAuth settings and client store.
type OAuthRepository interface {
	GetSettings(ctx context.Context) (*domain.OAuthSettings, error)
	PutSettings(ctx context.Context, s *domain.OAuthSettings) error
	PutClient(ctx context.Context, c *domain.OAuthClient) error
}

// ImageStore presigns profile picture object keys.
type ImageStore interface {
	PresignedURL(ctx context.Context, key string, ttl time.Duration) (string, error)
}

// Pinger is satisfied by *pgxpool.Pool.
type Pinger interface {
	Ping(ctx context.Context) error
}

// Deps holds all infrastructure dependencies for the router.
type Deps struct {
	DB               Pinger
	Schema           domain.Schema
	TaskRepo         TaskRepository
	TodoRepo         TodoRepository
	UserRepo         UserRepository
	TeamRepo         TeamRepository
	DocumentRepo     DocumentRepository
	NotificationLogs NotificationLogRepository
	LegacyNotifs     LegacyNotificationRepository
	OAuthRepo        OAuthRepository
	ImageStore       ImageStore
	Publisher        realtime.Publisher
	Mailer           smtp.Mailer
	JWTProvider      *jwtinfra.Provider
	Metrics          *metrics.Metrics
	Gatherer         prometheus.Gatherer
	Now              func() time.Time
}
