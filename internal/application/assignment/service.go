// Package assignment hands documents to users: it lists who the caller may
// assign to, enforces the access policy and creates ToDo rows.
package assignment

import (
	"context"
	"fmt"
	"html"
	"log/slog"
	"strings"
	"time"

	"github.com/crm-mobile-api/internal/domain"
	"github.com/crm-mobile-api/internal/metrics"
	"github.com/crm-mobile-api/internal/pkg/id"
	"github.com/crm-mobile-api/internal/pkg/sl"
	"github.com/crm-mobile-api/internal/pkg/validate"
)

const notificationTypeAssignment = "Assignment"

type Service interface {
	AssignableUsers(ctx context.Context, actor string) ([]domain.AssignableUser, error)
	AssignLead(ctx context.Context, actor string, req domain.AssignRequest) (*domain.AssignResult, error)
	Add(ctx context.Context, actor string, req domain.AddAssignmentRequest) ([]domain.ToDo, error)
}

type authorizer interface {
	Tier(ctx context.Context, user string) (domain.Tier, error)
	Roster(ctx context.Context, user string) ([]string, error)
	AuthorizeAssignment(ctx context.Context, actor string, targets []string) error
	CanAccess(ctx context.Context, user string, doc domain.Document) (bool, error)
}

type documentStore interface {
	Get(ctx context.Context, doctype, name string) (*domain.Document, error)
	AppendAssign(ctx context.Context, doctype, name, user string) error
}

type todoStore interface {
	ExistsOpen(ctx context.Context, refType, refName, user string) (bool, error)
	Insert(ctx context.Context, td *domain.ToDo) error
}

type userStore interface {
	GetMany(ctx context.Context, names []string) (map[string]domain.User, error)
	ListEnabled(ctx context.Context) ([]domain.User, error)
	ListEnabledIn(ctx context.Context, names []string) ([]domain.User, error)
}

type recorder interface {
	Record(ctx context.Context, e *domain.LogEntry) error
}

type emailSender interface {
	SendEmail(to, subject, body string) error
}

type imageResolver interface {
	URL(ctx context.Context, image *string) *string
}

type service struct {
	policy    authorizer
	documents documentStore
	todos     todoStore
	users     userStore
	notifier  recorder
	mailer    emailSender
	images    imageResolver
	metrics   *metrics.Metrics
	now       func() time.Time
}

type ServiceDeps struct {
	Policy       authorizer
	DocumentRepo documentStore
	TodoRepo     todoStore
	UserRepo     userStore
	Notifier     recorder
	Mailer       emailSender
	Images       imageResolver
	Metrics      *metrics.Metrics
	Now          func() time.Time // defaults to time.Now
}

func NewService(deps ServiceDeps) Service {
	now := deps.Now
	if now == nil {
		now = time.Now
	}
	return &service{
		policy:    deps.Policy,
		documents: deps.DocumentRepo,
		todos:     deps.TodoRepo,
		users:     deps.UserRepo,
		notifier:  deps.Notifier,
		mailer:    deps.Mailer,
		images:    deps.Images,
		metrics:   deps.Metrics,
		now:       now,
	}
}

// AssignableUsers lists every enabled user for privileged callers, the
// caller's team for managers and nobody for anyone else.
func (s *service) AssignableUsers(ctx context.Context, actor string) ([]domain.AssignableUser, error) {
	tier, err := s.policy.Tier(ctx, actor)
	if err != nil {
		return nil, err
	}

	var users []domain.User
	switch tier {
	case domain.TierPrivileged:
		users, err = s.users.ListEnabled(ctx)
	case domain.TierManager:
		var roster []string
		if roster, err = s.policy.Roster(ctx, actor); err == nil && len(roster) > 0 {
			users, err = s.users.ListEnabledIn(ctx, roster)
		}
	}
	if err != nil {
		return nil, err
	}

	out := make([]domain.AssignableUser, len(users))
	for i, u := range users {
		out[i] = domain.AssignableUser{Name: u.Name, FullName: u.FullName, Image: s.imageURL(ctx, u.UserImage)}
	}
	return out, nil
}

func (s *service) AssignLead(ctx context.Context, actor string, req domain.AssignRequest) (*domain.AssignResult, error) {
	if err := validate.Struct(req); err != nil {
		return nil, err
	}
	users := make([]string, 0, len(req.Users))
	for _, u := range req.Users {
		if u = strings.TrimSpace(u); u != "" {
			users = append(users, u)
		}
	}

	doc, err := s.documents.Get(ctx, req.Doctype, req.Name)
	if err != nil {
		return nil, err
	}
	ok, err := s.policy.CanAccess(ctx, actor, *doc)
	if err != nil {
		return nil, err
	}
	if !ok {
		slog.WarnContext(ctx, "assignment on unreadable document",
			slog.String("actor", actor), slog.String("doctype", req.Doctype), slog.String("name", req.Name))
		return nil, fmt.Errorf("not permitted to access this document: %w", domain.ErrForbidden)
	}
	if err := s.policy.AuthorizeAssignment(ctx, actor, users); err != nil {
		return nil, err
	}

	var description string
	if req.Description != nil {
		description = *req.Description
	}
	for _, u := range users {
		_, err := s.Add(ctx, actor, domain.AddAssignmentRequest{
			Doctype:     req.Doctype,
			Name:        req.Name,
			AssignTo:    []string{u},
			Description: description,
			Notify:      true,
		})
		if err != nil {
			return nil, err
		}
	}
	return &domain.AssignResult{OK: true, AssignedTo: users}, nil
}

// Add creates one open ToDo per target. It applies the same policy as
// AssignLead, so calling it directly cannot bypass team restrictions. Targets
// that already hold an open ToDo on the document are skipped.
func (s *service) Add(ctx context.Context, actor string, req domain.AddAssignmentRequest) ([]domain.ToDo, error) {
	if err := validate.Struct(req); err != nil {
		return nil, err
	}
	if err := s.policy.AuthorizeAssignment(ctx, actor, req.AssignTo); err != nil {
		return nil, err
	}
	if _, err := s.documents.Get(ctx, req.Doctype, req.Name); err != nil {
		return nil, err
	}

	created := []domain.ToDo{}
	for _, user := range req.AssignTo {
		exists, err := s.todos.ExistsOpen(ctx, req.Doctype, req.Name, user)
		if err != nil {
			return nil, err
		}
		if exists {
			continue
		}

		td := domain.ToDo{
			Name:          id.New(),
			ReferenceType: req.Doctype,
			ReferenceName: req.Name,
			AllocatedTo:   user,
			Status:        domain.ToDoOpen,
			Description:   req.Description,
			AssignedBy:    actor,
			Creation:      s.now().UTC(),
		}
		if err := s.todos.Insert(ctx, &td); err != nil {
			return nil, err
		}
		if err := s.documents.AppendAssign(ctx, req.Doctype, req.Name, user); err != nil {
			return nil, err
		}
		if s.metrics != nil {
			s.metrics.AssignmentsMade.Inc()
		}
		slog.InfoContext(ctx, "document assigned",
			slog.String("actor", actor), slog.String("user", user),
			slog.String("doctype", req.Doctype), slog.String("name", req.Name))

		s.announce(ctx, td, req.Notify)
		created = append(created, td)
	}
	return created, nil
}

// announce records the assignment in the notification log and, when asked,
// mails the assignee. Both are best-effort.
func (s *service) announce(ctx context.Context, td domain.ToDo, notify bool) {
	subject := fmt.Sprintf("%s assigned %s %s to you", td.AssignedBy, td.ReferenceType, td.ReferenceName)
	err := s.notifier.Record(ctx, &domain.LogEntry{
		Subject:      subject,
		EmailContent: td.Description,
		Type:         notificationTypeAssignment,
		DocumentType: td.ReferenceType,
		DocumentName: td.ReferenceName,
		ForUser:      td.AllocatedTo,
		Owner:        td.AssignedBy,
		FromUser:     td.AssignedBy,
	})
	if err != nil {
		slog.WarnContext(ctx, "failed to record assignment notification", slog.String("todo", td.Name), sl.Err(err))
	}

	if !notify || s.mailer == nil {
		return
	}
	users, err := s.users.GetMany(ctx, []string{td.AllocatedTo})
	if err != nil {
		slog.WarnContext(ctx, "failed to load assignee for email", slog.String("user", td.AllocatedTo), sl.Err(err))
		return
	}
	u, ok := users[td.AllocatedTo]
	if !ok || u.Email == nil || *u.Email == "" {
		return
	}
	body := fmt.Sprintf("<p>%s</p>", html.EscapeString(subject))
	if td.Description != "" {
		body += fmt.Sprintf("<p>%s</p>", html.EscapeString(td.Description))
	}
	if err := s.mailer.SendEmail(*u.Email, subject, body); err != nil {
		slog.WarnContext(ctx, "failed to send assignment email", slog.String("user", td.AllocatedTo), sl.Err(err))
	}
}

func (s *service) imageURL(ctx context.Context, image *string) *string {
	if s.images == nil {
		return image
	}
	return s.images.URL(ctx, image)
}
