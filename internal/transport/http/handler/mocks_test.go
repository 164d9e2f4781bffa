package handler

import (
	"context"

	"github.com/crm-mobile-api/internal/application/document"
	"github.com/crm-mobile-api/internal/application/task"
	"github.com/crm-mobile-api/internal/domain"
	"github.com/stretchr/testify/mock"
)

type mockTaskSvc struct{ mock.Mock }

func (m *mockTaskSvc) Create(ctx context.Context, req domain.CreateTaskRequest) (*domain.CompactTask, error) {
	args := m.Called(ctx, req)
	if t, _ := args.Get(0).(*domain.CompactTask); t != nil {
		return t, args.Error(1)
	}
	return nil, args.Error(1)
}

func (m *mockTaskSvc) Edit(ctx context.Context, taskID string, req domain.EditTaskRequest) (*domain.CompactTask, error) {
	args := m.Called(ctx, taskID, req)
	if t, _ := args.Get(0).(*domain.CompactTask); t != nil {
		return t, args.Error(1)
	}
	return nil, args.Error(1)
}

func (m *mockTaskSvc) Delete(ctx context.Context, taskID string) (*domain.DeleteResult, error) {
	args := m.Called(ctx, taskID)
	if r, _ := args.Get(0).(*domain.DeleteResult); r != nil {
		return r, args.Error(1)
	}
	return nil, args.Error(1)
}

func (m *mockTaskSvc) UpdateStatus(ctx context.Context, taskID, status string) (*domain.CompactTask, error) {
	args := m.Called(ctx, taskID, status)
	if t, _ := args.Get(0).(*domain.CompactTask); t != nil {
		return t, args.Error(1)
	}
	return nil, args.Error(1)
}

func (m *mockTaskSvc) Filter(ctx context.Context, p task.FilterParams) (*domain.TaskPage, error) {
	args := m.Called(ctx, p)
	if pg, _ := args.Get(0).(*domain.TaskPage); pg != nil {
		return pg, args.Error(1)
	}
	return nil, args.Error(1)
}

func (m *mockTaskSvc) Home(ctx context.Context, limit int) (*domain.HomeTasks, error) {
	args := m.Called(ctx, limit)
	if h, _ := args.Get(0).(*domain.HomeTasks); h != nil {
		return h, args.Error(1)
	}
	return nil, args.Error(1)
}

func (m *mockTaskSvc) Buckets(ctx context.Context, minEach int) (*domain.TaskBuckets, error) {
	args := m.Called(ctx, minEach)
	if b, _ := args.Get(0).(*domain.TaskBuckets); b != nil {
		return b, args.Error(1)
	}
	return nil, args.Error(1)
}

type mockNotificationSvc struct{ mock.Mock }

func (m *mockNotificationSvc) ListPortal(ctx context.Context, user string, limit int, includeLegacy bool) ([]domain.PortalNotification, error) {
	args := m.Called(ctx, user, limit, includeLegacy)
	items, _ := args.Get(0).([]domain.PortalNotification)
	return items, args.Error(1)
}

func (m *mockNotificationSvc) UnseenCount(ctx context.Context, user string) (int, error) {
	args := m.Called(ctx, user)
	return args.Int(0), args.Error(1)
}

func (m *mockNotificationSvc) MarkPortalSeen(ctx context.Context, user, name, source string) error {
	return m.Called(ctx, user, name, source).Error(0)
}

func (m *mockNotificationSvc) ListLogs(ctx context.Context, user string, limit int) ([]domain.LogEntry, error) {
	args := m.Called(ctx, user, limit)
	items, _ := args.Get(0).([]domain.LogEntry)
	return items, args.Error(1)
}

func (m *mockNotificationSvc) MarkSeen(ctx context.Context, user, name string) error {
	return m.Called(ctx, user, name).Error(0)
}

func (m *mockNotificationSvc) GetNotifications(ctx context.Context, user string) ([]domain.PortalNotification, error) {
	args := m.Called(ctx, user)
	items, _ := args.Get(0).([]domain.PortalNotification)
	return items, args.Error(1)
}

func (m *mockNotificationSvc) MarkAsRead(ctx context.Context, user, doc string) error {
	return m.Called(ctx, user, doc).Error(0)
}

func (m *mockNotificationSvc) Record(ctx context.Context, e *domain.LogEntry) error {
	return m.Called(ctx, e).Error(0)
}

type mockAssignmentSvc struct{ mock.Mock }

func (m *mockAssignmentSvc) AssignableUsers(ctx context.Context, actor string) ([]domain.AssignableUser, error) {
	args := m.Called(ctx, actor)
	users, _ := args.Get(0).([]domain.AssignableUser)
	return users, args.Error(1)
}

func (m *mockAssignmentSvc) AssignLead(ctx context.Context, actor string, req domain.AssignRequest) (*domain.AssignResult, error) {
	args := m.Called(ctx, actor, req)
	if r, _ := args.Get(0).(*domain.AssignResult); r != nil {
		return r, args.Error(1)
	}
	return nil, args.Error(1)
}

func (m *mockAssignmentSvc) Add(ctx context.Context, actor string, req domain.AddAssignmentRequest) ([]domain.ToDo, error) {
	args := m.Called(ctx, actor, req)
	todos, _ := args.Get(0).([]domain.ToDo)
	return todos, args.Error(1)
}

type mockDocumentSvc struct{ mock.Mock }

func (m *mockDocumentSvc) List(ctx context.Context, user, doctype string, p document.ListParams) (*domain.DocumentPage, error) {
	args := m.Called(ctx, user, doctype, p)
	if pg, _ := args.Get(0).(*domain.DocumentPage); pg != nil {
		return pg, args.Error(1)
	}
	return nil, args.Error(1)
}

func (m *mockDocumentSvc) Get(ctx context.Context, user, doctype, name string) (*domain.Document, error) {
	args := m.Called(ctx, user, doctype, name)
	if d, _ := args.Get(0).(*domain.Document); d != nil {
		return d, args.Error(1)
	}
	return nil, args.Error(1)
}

type mockOAuthSvc struct{ mock.Mock }

func (m *mockOAuthSvc) ValidateHost(ctx context.Context, forwardedHost, host string) error {
	return m.Called(ctx, forwardedHost, host).Error(0)
}

func (m *mockOAuthSvc) GetConfig(ctx context.Context, forwardedHost, host string) (*domain.OAuthConfig, error) {
	args := m.Called(ctx, forwardedHost, host)
	if c, _ := args.Get(0).(*domain.OAuthConfig); c != nil {
		return c, args.Error(1)
	}
	return nil, args.Error(1)
}

func (m *mockOAuthSvc) EnsureSettings(ctx context.Context) (*domain.OAuthSettings, error) {
	args := m.Called(ctx)
	if s, _ := args.Get(0).(*domain.OAuthSettings); s != nil {
		return s, args.Error(1)
	}
	return nil, args.Error(1)
}

func (m *mockOAuthSvc) Bootstrap(ctx context.Context) (*domain.BootstrapResult, error) {
	args := m.Called(ctx)
	if r, _ := args.Get(0).(*domain.BootstrapResult); r != nil {
		return r, args.Error(1)
	}
	return nil, args.Error(1)
}
