package domain

import "time"

// ToDo statuses.
const (
	ToDoOpen      = "Open"
	ToDoClosed    = "Closed"
	ToDoCancelled = "Cancelled"
)

// ToDo is a pending work item linking a document to the user it is allocated to.
type ToDo struct {
	Name          string    `json:"name"`
	ReferenceType string    `json:"reference_type"`
	ReferenceName string    `json:"reference_name"`
	AllocatedTo   string    `json:"allocated_to"`
	Status        string    `json:"status"`
	Description   string    `json:"description"`
	AssignedBy    string    `json:"assigned_by"`
	Creation      time.Time `json:"creation"`
}

// AddAssignmentRequest is the low-level ToDo creation input.
type AddAssignmentRequest struct {
	Doctype     string   `json:"doctype" validate:"required"`
	Name        string   `json:"name" validate:"required"`
	AssignTo    []string `json:"assign_to" validate:"required,min=1"`
	Description string   `json:"description"`
	Notify      bool     `json:"notify"`
}

// AssignRequest is the assign_lead input.
type AssignRequest struct {
	Doctype     string   `json:"doctype" validate:"required"`
	Name        string   `json:"name" validate:"required"`
	Users       []string `json:"users"`
	Description *string  `json:"description"`
}

type AssignResult struct {
	OK         bool     `json:"ok"`
	AssignedTo []string `json:"assigned_to"`
}
