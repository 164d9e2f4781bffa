package task

import (
	"context"
	"fmt"
	"log/slog"
	"math"
	"strings"
	"time"
	"unicode/utf8"

	"github.com/crm-mobile-api/internal/domain"
	"github.com/crm-mobile-api/internal/pkg/id"
	"github.com/crm-mobile-api/internal/pkg/sl"
	"github.com/crm-mobile-api/internal/pkg/validate"
)

const (
	dateLayout = "2006-01-02"

	defaultPageSize = 20
	maxPageSize     = 500
	defaultHome     = 5
	defaultMinEach  = 5
	titleFallback   = 50
)

// Task column names used in partial update maps.
const (
	fieldTitle       = "title"
	fieldStatus      = "status"
	fieldPriority    = "priority"
	fieldStartDate   = "start_date"
	fieldTaskType    = "task_type"
	fieldDescription = "description"
	fieldAssignedTo  = "assigned_to"
	fieldDueDate     = "due_date"
	fieldModified    = "modified"
)

var defaultOrder = []domain.OrderTerm{{Field: fieldModified, Desc: true}}

type Service interface {
	Create(ctx context.Context, req domain.CreateTaskRequest) (*domain.CompactTask, error)
	Edit(ctx context.Context, taskID string, req domain.EditTaskRequest) (*domain.CompactTask, error)
	Delete(ctx context.Context, taskID string) (*domain.DeleteResult, error)
	UpdateStatus(ctx context.Context, taskID, status string) (*domain.CompactTask, error)
	Filter(ctx context.Context, p FilterParams) (*domain.TaskPage, error)
	Home(ctx context.Context, limit int) (*domain.HomeTasks, error)
	Buckets(ctx context.Context, minEach int) (*domain.TaskBuckets, error)
}

// FilterParams are the raw filter_tasks inputs. Importance and Status are
// comma-separated lists; OrderBy is "<field> [asc|desc], ...".
type FilterParams struct {
	DateFrom   string
	DateTo     string
	Importance string
	Status     string
	Limit      int
	Page       int
	OrderBy    string
}

type taskStore interface {
	Insert(ctx context.Context, t *domain.Task) error
	Get(ctx context.Context, name string) (*domain.Task, error)
	Update(ctx context.Context, name string, updates map[string]any) error
	Delete(ctx context.Context, name string) error
	List(ctx context.Context, q domain.TaskQuery) ([]domain.Task, error)
	Count(ctx context.Context, f domain.TaskFilter) (int, error)
}

type todoStore interface {
	OpenAssignees(ctx context.Context, refType string, refNames []string) (map[string][]string, error)
	CancelOpen(ctx context.Context, refType, refName string) (int64, error)
}

type userStore interface {
	GetMany(ctx context.Context, names []string) (map[string]domain.User, error)
}

type imageResolver interface {
	URL(ctx context.Context, image *string) *string
}

type service struct {
	tasks  taskStore
	todos  todoStore
	users  userStore
	images imageResolver
	schema domain.Schema
	now    func() time.Time
}

type ServiceDeps struct {
	TaskRepo taskStore
	TodoRepo todoStore
	UserRepo userStore
	Images   imageResolver
	Schema   domain.Schema
	Now      func() time.Time // defaults to time.Now
}

func NewService(deps ServiceDeps) Service {
	now := deps.Now
	if now == nil {
		now = time.Now
	}
	return &service{
		tasks:  deps.TaskRepo,
		todos:  deps.TodoRepo,
		users:  deps.UserRepo,
		images: deps.Images,
		schema: deps.Schema,
		now:    now,
	}
}

func (s *service) Create(ctx context.Context, req domain.CreateTaskRequest) (*domain.CompactTask, error) {
	if err := validate.Struct(req); err != nil {
		return nil, fmt.Errorf("task type is required: %w", err)
	}
	now := s.now().UTC()
	t := &domain.Task{
		Name:        id.New(),
		Title:       req.Title,
		Status:      req.Status,
		Priority:    req.Priority,
		TaskType:    req.TaskType,
		Description: req.Description,
		AssignedTo:  req.AssignedTo,
		Modified:    now,
	}
	if t.Status == "" {
		t.Status = domain.DefaultTaskStatus
	}
	if t.Priority == "" {
		t.Priority = domain.DefaultTaskPriority
	}

	start := today(now)
	if req.StartDate != "" {
		d, err := parseDate(fieldStartDate, req.StartDate)
		if err != nil {
			return nil, err
		}
		start = d
	}
	t.StartDate = &start
	if req.DueDate != nil {
		d, err := parseDate(fieldDueDate, *req.DueDate)
		if err != nil {
			return nil, err
		}
		t.DueDate = &d
	}

	if err := s.tasks.Insert(ctx, t); err != nil {
		return nil, err
	}
	return &s.compact(ctx, []domain.Task{*t})[0], nil
}

func (s *service) Edit(ctx context.Context, taskID string, req domain.EditTaskRequest) (*domain.CompactTask, error) {
	if taskID == "" {
		return nil, errTaskIDRequired
	}
	t, err := s.tasks.Get(ctx, taskID)
	if err != nil {
		return nil, err
	}

	updates := map[string]any{}
	if req.Title != nil {
		t.Title = req.Title
		updates[fieldTitle] = *req.Title
	}
	if req.Status != nil {
		t.Status = *req.Status
		updates[fieldStatus] = *req.Status
	}
	if req.Priority != nil {
		t.Priority = *req.Priority
		updates[fieldPriority] = *req.Priority
	}
	if req.StartDate != nil {
		d, err := parseDate(fieldStartDate, *req.StartDate)
		if err != nil {
			return nil, err
		}
		t.StartDate = &d
		updates[fieldStartDate] = d
	}
	if req.TaskType != nil {
		t.TaskType = *req.TaskType
		updates[fieldTaskType] = *req.TaskType
	}
	if req.Description != nil && s.schema.HasTaskColumn(fieldDescription) {
		t.Description = req.Description
		updates[fieldDescription] = *req.Description
	}
	if req.AssignedTo != nil && s.schema.HasTaskColumn(fieldAssignedTo) {
		t.AssignedTo = req.AssignedTo
		updates[fieldAssignedTo] = *req.AssignedTo
	}
	if req.DueDate != nil && s.schema.HasTaskColumn(fieldDueDate) {
		d, err := parseDate(fieldDueDate, *req.DueDate)
		if err != nil {
			return nil, err
		}
		t.DueDate = &d
		updates[fieldDueDate] = d
	}
	t.Modified = s.now().UTC()
	updates[fieldModified] = t.Modified

	if err := s.tasks.Update(ctx, taskID, updates); err != nil {
		return nil, err
	}
	return &s.compact(ctx, []domain.Task{*t})[0], nil
}

func (s *service) Delete(ctx context.Context, taskID string) (*domain.DeleteResult, error) {
	if taskID == "" {
		return nil, errTaskIDRequired
	}
	if err := s.tasks.Delete(ctx, taskID); err != nil {
		return nil, err
	}
	if _, err := s.todos.CancelOpen(ctx, domain.DoctypeTask, taskID); err != nil {
		slog.WarnContext(ctx, "failed to cancel todos of deleted task", slog.String("task", taskID), sl.Err(err))
	}
	return &domain.DeleteResult{OK: true, Message: fmt.Sprintf("Task %s deleted successfully", taskID)}, nil
}

func (s *service) UpdateStatus(ctx context.Context, taskID, status string) (*domain.CompactTask, error) {
	if taskID == "" {
		return nil, errTaskIDRequired
	}
	if status == "" {
		return nil, fmt.Errorf("Status is required: %w", domain.ErrBadRequest)
	}
	t, err := s.tasks.Get(ctx, taskID)
	if err != nil {
		return nil, err
	}
	t.Status = status
	t.Modified = s.now().UTC()
	if err := s.tasks.Update(ctx, taskID, map[string]any{fieldStatus: status, fieldModified: t.Modified}); err != nil {
		return nil, err
	}
	return &s.compact(ctx, []domain.Task{*t})[0], nil
}

func (s *service) Filter(ctx context.Context, p FilterParams) (*domain.TaskPage, error) {
	limit := p.Limit
	if limit < 1 {
		limit = defaultPageSize
	}
	limit = min(limit, maxPageSize)
	page := p.Page
	if page < 1 {
		page = 1
	}
	// keep offset+limit representable
	page = min(page, math.MaxInt/limit-1)
	offset := (page - 1) * limit

	var f domain.TaskFilter
	if p.DateFrom != "" {
		d, err := parseDate("date_from", p.DateFrom)
		if err != nil {
			return nil, err
		}
		f.StartDate = append(f.StartDate, domain.DateCond{Op: ">=", Date: d})
	}
	if p.DateTo != "" {
		d, err := parseDate("date_to", p.DateTo)
		if err != nil {
			return nil, err
		}
		f.StartDate = append(f.StartDate, domain.DateCond{Op: "<=", Date: d})
	}
	f.Priorities = splitCSV(p.Importance)
	f.Statuses = splitCSV(p.Status)

	order, err := s.parseOrder(p.OrderBy)
	if err != nil {
		return nil, err
	}

	tasks, err := s.tasks.List(ctx, domain.TaskQuery{Filter: f, OrderBy: order, Limit: limit, Offset: offset})
	if err != nil {
		return nil, err
	}
	total, err := s.tasks.Count(ctx, f)
	if err != nil {
		return nil, err
	}
	data := s.compact(ctx, tasks)
	return &domain.TaskPage{
		Data:     data,
		Page:     page,
		PageSize: limit,
		Total:    total,
		HasNext:  offset+len(data) < total,
	}, nil
}

func (s *service) Home(ctx context.Context, limit int) (*domain.HomeTasks, error) {
	if limit < 1 {
		limit = defaultHome
	}
	tasks, err := s.tasks.List(ctx, s.todayQuery(limit))
	if err != nil {
		return nil, err
	}
	return &domain.HomeTasks{Today: s.compact(ctx, tasks), Limit: limit}, nil
}

func (s *service) Buckets(ctx context.Context, minEach int) (*domain.TaskBuckets, error) {
	if minEach < 1 {
		minEach = defaultMinEach
	}
	day := today(s.now().UTC())
	byStart := []domain.OrderTerm{{Field: fieldStartDate}, {Field: fieldPriority, Desc: true}}

	todayTasks, err := s.tasks.List(ctx, s.todayQuery(minEach))
	if err != nil {
		return nil, err
	}
	late, err := s.tasks.List(ctx, domain.TaskQuery{
		Filter: domain.TaskFilter{
			StartDate: []domain.DateCond{{Op: "<", Date: day}},
			Statuses:  domain.ActiveTaskStatuses,
		},
		OrderBy: byStart,
		Limit:   minEach,
	})
	if err != nil {
		return nil, err
	}
	upcoming, err := s.tasks.List(ctx, domain.TaskQuery{
		Filter:  domain.TaskFilter{StartDate: []domain.DateCond{{Op: ">", Date: day}}},
		OrderBy: byStart,
		Limit:   minEach,
	})
	if err != nil {
		return nil, err
	}

	return &domain.TaskBuckets{
		Today:    s.compact(ctx, todayTasks),
		Late:     s.compact(ctx, late),
		Upcoming: s.compact(ctx, upcoming),
		MinEach:  minEach,
	}, nil
}

func (s *service) todayQuery(limit int) domain.TaskQuery {
	return domain.TaskQuery{
		Filter:  domain.TaskFilter{StartDate: []domain.DateCond{{Op: "=", Date: today(s.now().UTC())}}},
		OrderBy: []domain.OrderTerm{{Field: fieldPriority, Desc: true}, {Field: fieldModified, Desc: true}},
		Limit:   limit,
	}
}

// parseOrder accepts "<field> [asc|desc]" terms separated by commas. Fields
// must be task columns known to the schema.
func (s *service) parseOrder(raw string) ([]domain.OrderTerm, error) {
	if strings.TrimSpace(raw) == "" {
		return defaultOrder, nil
	}
	var terms []domain.OrderTerm
	for _, part := range strings.Split(raw, ",") {
		tok := strings.Fields(part)
		if len(tok) == 0 || len(tok) > 2 {
			return nil, fmt.Errorf("invalid order_by %q: %w", raw, domain.ErrBadRequest)
		}
		field := strings.ToLower(tok[0])
		if len(s.schema.TaskFields(field)) == 0 {
			return nil, fmt.Errorf("cannot order by %q: %w", tok[0], domain.ErrBadRequest)
		}
		term := domain.OrderTerm{Field: field}
		if len(tok) == 2 {
			switch strings.ToLower(tok[1]) {
			case "asc":
			case "desc":
				term.Desc = true
			default:
				return nil, fmt.Errorf("invalid sort direction %q: %w", tok[1], domain.ErrBadRequest)
			}
		}
		terms = append(terms, term)
	}
	return terms, nil
}

var errTaskIDRequired = fmt.Errorf("Task ID is required: %w", domain.ErrBadRequest)

func parseDate(field, v string) (time.Time, error) {
	d, err := time.Parse(dateLayout, v)
	if err != nil {
		return time.Time{}, fmt.Errorf("%s must be in YYYY-MM-DD format: %w", field, domain.ErrBadRequest)
	}
	return d, nil
}

// today truncates t to its calendar day, expressed in UTC like parsed dates.
func today(t time.Time) time.Time {
	y, m, d := t.Date()
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}

func splitCSV(v string) []string {
	var out []string
	for _, p := range strings.Split(v, ",") {
		if p = strings.TrimSpace(p); p != "" {
			out = append(out, p)
		}
	}
	return out
}

func taskTitle(t domain.Task) string {
	if t.Title != nil && *t.Title != "" {
		return *t.Title
	}
	if t.Description == nil {
		return ""
	}
	d := *t.Description
	if utf8.RuneCountInString(d) <= titleFallback {
		return d
	}
	return string([]rune(d)[:titleFallback])
}

func formatDate(t *time.Time) *string {
	if t == nil {
		return nil
	}
	s := t.Format(dateLayout)
	return &s
}
