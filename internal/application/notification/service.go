// Package notification merges the notification log and the legacy CRM
// notification table into one feed and keeps clients' unseen counters live.
package notification

import (
	"context"
	"fmt"
	"log/slog"
	"slices"
	"time"

	"github.com/crm-mobile-api/internal/domain"
	"github.com/crm-mobile-api/internal/pkg/id"
	"github.com/crm-mobile-api/internal/pkg/sl"
)

const (
	defaultPortalLimit = 50
	defaultLogsLimit   = 30
	listFetchFloor     = 200
	countCap           = 500 // also the largest list a caller may request
)

type Service interface {
	ListPortal(ctx context.Context, user string, limit int, includeLegacy bool) ([]domain.PortalNotification, error)
	UnseenCount(ctx context.Context, user string) (int, error)
	MarkPortalSeen(ctx context.Context, user, name, source string) error
	ListLogs(ctx context.Context, user string, limit int) ([]domain.LogEntry, error)
	MarkSeen(ctx context.Context, user, name string) error
	GetNotifications(ctx context.Context, user string) ([]domain.PortalNotification, error)
	MarkAsRead(ctx context.Context, user, doc string) error
	Record(ctx context.Context, e *domain.LogEntry) error
}

type logStore interface {
	Put(ctx context.Context, e *domain.LogEntry) error
	ListForUser(ctx context.Context, user string, limit int) ([]domain.LogEntry, error)
	MarkSeen(ctx context.Context, name string) error
}

type legacyStore interface {
	ListForUser(ctx context.Context, user string, limit int) ([]domain.LegacyEntry, error)
	CountUnread(ctx context.Context, user string) (int, error)
	MarkRead(ctx context.Context, name string) error
	MarkAllRead(ctx context.Context, user, doc string) (int64, error)
}

type userStore interface {
	GetMany(ctx context.Context, names []string) (map[string]domain.User, error)
}

type publisher interface {
	Publish(ctx context.Context, user, event string, payload any) error
}

type service struct {
	logs      logStore
	legacy    legacyStore
	users     userStore
	publisher publisher
	now       func() time.Time
}

type ServiceDeps struct {
	LogRepo    logStore
	LegacyRepo legacyStore
	UserRepo   userStore
	Publisher  publisher
	Now        func() time.Time // defaults to time.Now
}

func NewService(deps ServiceDeps) Service {
	now := deps.Now
	if now == nil {
		now = time.Now
	}
	return &service{
		logs:      deps.LogRepo,
		legacy:    deps.LegacyRepo,
		users:     deps.UserRepo,
		publisher: deps.Publisher,
		now:       now,
	}
}

func (s *service) ListPortal(ctx context.Context, user string, limit int, includeLegacy bool) ([]domain.PortalNotification, error) {
	if limit < 1 {
		limit = defaultPortalLimit
	}
	limit = min(limit, countCap)
	fetch := min(max(limit, listFetchFloor), countCap)

	logs, err := s.logs.ListForUser(ctx, user, fetch)
	if err != nil {
		return nil, err
	}
	var legacy []domain.LegacyEntry
	if includeLegacy {
		if legacy, err = s.legacy.ListForUser(ctx, user, fetch); err != nil {
			return nil, err
		}
	}

	out := s.normalize(ctx, logs, legacy)
	slices.SortStableFunc(out, newestFirst(s.now()))
	if len(out) > limit {
		out = out[:limit]
	}
	return out, nil
}

// GetNotifications is the legacy-only feed.
func (s *service) GetNotifications(ctx context.Context, user string) ([]domain.PortalNotification, error) {
	legacy, err := s.legacy.ListForUser(ctx, user, defaultPortalLimit)
	if err != nil {
		return nil, err
	}
	return s.normalize(ctx, nil, legacy), nil
}

func (s *service) normalize(ctx context.Context, logs []domain.LogEntry, legacy []domain.LegacyEntry) []domain.PortalNotification {
	var senders []string
	for _, e := range logs {
		senders = append(senders, e.Owner)
	}
	for _, e := range legacy {
		if e.FromUser != nil {
			senders = append(senders, *e.FromUser)
		}
	}
	fullNames := s.fullNames(ctx, senders)

	out := make([]domain.PortalNotification, 0, len(logs)+len(legacy))
	for _, e := range logs {
		out = append(out, fromLog(e, fullNames))
	}
	for _, e := range legacy {
		out = append(out, fromLegacy(e, fullNames))
	}
	return out
}

// fullNames looks up display names in one batch. Failures leave names empty.
func (s *service) fullNames(ctx context.Context, names []string) map[string]string {
	out := map[string]string{}
	slices.Sort(names)
	names = slices.Compact(names)
	if len(names) > 0 && names[0] == "" {
		names = names[1:]
	}
	if len(names) == 0 {
		return out
	}
	users, err := s.users.GetMany(ctx, names)
	if err != nil {
		slog.WarnContext(ctx, "failed to resolve notification senders", sl.Err(err))
		return out
	}
	for name, u := range users {
		if u.FullName != nil {
			out[name] = *u.FullName
		}
	}
	return out
}

func (s *service) UnseenCount(ctx context.Context, user string) (int, error) {
	logs, err := s.logs.ListForUser(ctx, user, countCap)
	if err != nil {
		return 0, err
	}
	n := 0
	for _, e := range logs {
		if !e.Seen {
			n++
		}
	}
	legacy, err := s.legacy.CountUnread(ctx, user)
	if err != nil {
		return 0, err
	}
	return n + legacy, nil
}

func (s *service) MarkPortalSeen(ctx context.Context, user, name, source string) error {
	if name == "" {
		return errNameRequired
	}
	switch source {
	case "", domain.SourceNotificationLog:
		if err := s.logs.MarkSeen(ctx, name); err != nil {
			return err
		}
	case domain.SourceCRMNotification:
		if err := s.legacy.MarkRead(ctx, name); err != nil {
			return err
		}
	default:
		return fmt.Errorf("unknown notification source %q: %w", source, domain.ErrBadRequest)
	}
	s.broadcast(ctx, user)
	return nil
}

func (s *service) ListLogs(ctx context.Context, user string, limit int) ([]domain.LogEntry, error) {
	if limit < 1 {
		limit = defaultLogsLimit
	}
	limit = min(limit, countCap)
	logs, err := s.logs.ListForUser(ctx, user, limit)
	if err != nil {
		return nil, err
	}
	if logs == nil {
		logs = []domain.LogEntry{}
	}
	return logs, nil
}

func (s *service) MarkSeen(ctx context.Context, user, name string) error {
	if name == "" {
		return errNameRequired
	}
	if err := s.logs.MarkSeen(ctx, name); err != nil {
		return err
	}
	s.broadcast(ctx, user)
	return nil
}

func (s *service) MarkAsRead(ctx context.Context, user, doc string) error {
	if _, err := s.legacy.MarkAllRead(ctx, user, doc); err != nil {
		return err
	}
	s.broadcast(ctx, user)
	return nil
}

// Record stores a new log entry and pushes the recipient's updated count.
func (s *service) Record(ctx context.Context, e *domain.LogEntry) error {
	if e.Name == "" {
		e.Name = id.New()
	}
	if e.Creation.IsZero() {
		e.Creation = s.now().UTC()
	}
	if err := s.logs.Put(ctx, e); err != nil {
		return err
	}
	target := e.ForUser
	if target == "" {
		target = e.Owner
	}
	if target != "" {
		s.broadcast(ctx, target)
	}
	return nil
}

// broadcast publishes user's unseen count. Failures are logged only.
func (s *service) broadcast(ctx context.Context, user string) {
	n, err := s.UnseenCount(ctx, user)
	if err != nil {
		slog.WarnContext(ctx, "failed to count unseen notifications", slog.String("user", user), sl.Err(err))
		return
	}
	msg := domain.CountMessage{Type: "count", Unseen: n}
	if err := s.publisher.Publish(ctx, user, domain.RealtimeEventPortalNotification, msg); err != nil {
		slog.WarnContext(ctx, "failed to publish unseen count", slog.String("user", user), sl.Err(err))
	}
}

var errNameRequired = fmt.Errorf("notification name is required: %w", domain.ErrBadRequest)
