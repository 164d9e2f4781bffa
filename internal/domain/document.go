package domain

import (
	"slices"
	"time"
)

// CRM document types that carry assignment-based visibility.
const (
	DoctypeLead = "CRM Lead"
	DoctypeDeal = "CRM Deal"
)

// Document is the common shape of leads, deals and tasks as far as access
// control is concerned.
type Document struct {
	Doctype  string    `json:"doctype"`
	Name     string    `json:"name"`
	Title    *string   `json:"title"`
	Status   *string   `json:"status"`
	Owner    *string   `json:"owner"`
	Assign   []string  `json:"_assign"`
	Modified time.Time `json:"modified"`
}

// IsAssigned reports whether user appears in the inline assignee list.
func (d Document) IsAssigned(user string) bool {
	return user != "" && slices.Contains(d.Assign, user)
}

// VisibilityKind selects how a list query is restricted.
type VisibilityKind int

const (
	VisibleNone VisibilityKind = iota
	VisibleAll
	VisibleAssigned
)

// Visibility is the row restriction applied to document list queries.
// For VisibleAssigned, rows are visible when User or a member of a team
// User leads holds an open ToDo on them.
type Visibility struct {
	Kind VisibilityKind
	User string
}

// DocumentFilter holds optional list filters composed with visibility.
type DocumentFilter struct {
	Status string
	Owner  string
	Search string
}

type DocumentQuery struct {
	Filter DocumentFilter
	Limit  int
	Offset int
}

type DocumentPage struct {
	Data     []Document `json:"data"`
	Page     int        `json:"page"`
	PageSize int        `json:"page_size"`
	HasNext  bool       `json:"has_next"`
}
