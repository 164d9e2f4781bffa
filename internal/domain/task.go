package domain

import "time"

// DoctypeTask is the reference type used by ToDo rows pointing at tasks.
const DoctypeTask = "CRM Task"

// Task defaults and the statuses that count as still open.
const (
	DefaultTaskStatus   = "Todo"
	DefaultTaskPriority = "Medium"
)

var ActiveTaskStatuses = []string{"Backlog", "Todo", "In Progress"}

// Task is a row of crm_tasks. Nullable columns are pointers; columns missing
// from a deployment's schema are simply left zero.
type Task struct {
	Name        string     `db:"name"`
	Title       *string    `db:"title"`
	Status      string     `db:"status"`
	Priority    string     `db:"priority"`
	TaskType    string     `db:"task_type"`
	StartDate   *time.Time `db:"start_date"`
	DueDate     *time.Time `db:"due_date"`
	Description *string    `db:"description"`
	AssignedTo  *string    `db:"assigned_to"`
	Modified    time.Time  `db:"modified"`
}

// CompactTask is the reduced projection returned by every task endpoint.
type CompactTask struct {
	Name       string     `json:"name"`
	Title      string     `json:"title"`
	Status     string     `json:"status"`
	Priority   string     `json:"priority"`
	StartDate  *string    `json:"start_date"`
	Modified   time.Time  `json:"modified"`
	DueDate    *string    `json:"due_date,omitempty"`
	AssignedTo []Assignee `json:"assigned_to"`
}

type CreateTaskRequest struct {
	Title       *string `json:"title"`
	Status      string  `json:"status"`
	Priority    string  `json:"priority"`
	StartDate   string  `json:"start_date"` // YYYY-MM-DD, defaults to today
	TaskType    string  `json:"task_type" validate:"required"`
	Description *string `json:"description"`
	AssignedTo  *string `json:"assigned_to"`
	DueDate     *string `json:"due_date"`
}

type EditTaskRequest struct {
	Title       *string `json:"title"`
	Status      *string `json:"status"`
	Priority    *string `json:"priority"`
	StartDate   *string `json:"start_date"`
	TaskType    *string `json:"task_type"`
	Description *string `json:"description"`
	AssignedTo  *string `json:"assigned_to"`
	DueDate     *string `json:"due_date"`
}

type UpdateStatusRequest struct {
	Status string `json:"status" validate:"required"`
}

// DateCond compares start_date against a calendar day. Op is one of = < <= > >=.
type DateCond struct {
	Op   string
	Date time.Time
}

// TaskFilter is shared by list and count queries so both see identical rows.
type TaskFilter struct {
	StartDate  []DateCond
	Priorities []string
	Statuses   []string
}

// OrderTerm is a single ORDER BY column.
type OrderTerm struct {
	Field string
	Desc  bool
}

// TaskQuery is a filtered, ordered and paginated task listing.
type TaskQuery struct {
	Filter  TaskFilter
	OrderBy []OrderTerm
	Limit   int
	Offset  int
}

// TaskPage is the filter_tasks response envelope.
type TaskPage struct {
	Data     []CompactTask `json:"data"`
	Page     int           `json:"page"`
	PageSize int           `json:"page_size"`
	Total    int           `json:"total"`
	HasNext  bool          `json:"has_next"`
}

type HomeTasks struct {
	Today []CompactTask `json:"today"`
	Limit int           `json:"limit"`
}

type TaskBuckets struct {
	Today    []CompactTask `json:"today"`
	Late     []CompactTask `json:"late"`
	Upcoming []CompactTask `json:"upcoming"`
	MinEach  int           `json:"min_each"`
}

type DeleteResult struct {
	OK      bool   `json:"ok"`
	Message string `json:"message"`
}
