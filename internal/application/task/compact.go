package task

import (
	"context"
	"log/slog"

	"github.com/crm-mobile-api/internal/domain"
	"github.com/crm-mobile-api/internal/pkg/sl"
)

// compact projects tasks and resolves their assignees with one ToDo lookup
// and one user lookup for the whole page. Resolution failures leave every
// assignee list empty.
func (s *service) compact(ctx context.Context, tasks []domain.Task) []domain.CompactTask {
	out := make([]domain.CompactTask, len(tasks))
	for i, t := range tasks {
		out[i] = domain.CompactTask{
			Name:       t.Name,
			Title:      taskTitle(t),
			Status:     t.Status,
			Priority:   t.Priority,
			StartDate:  formatDate(t.StartDate),
			Modified:   t.Modified,
			DueDate:    formatDate(t.DueDate),
			AssignedTo: []domain.Assignee{},
		}
	}
	if len(tasks) == 0 {
		return out
	}

	open, err := s.todos.OpenAssignees(ctx, domain.DoctypeTask, taskNames(tasks))
	if err != nil {
		slog.WarnContext(ctx, "failed to resolve task assignees", sl.Err(err))
		return out
	}

	var all []string
	seen := map[string]bool{}
	add := func(n string) {
		if n != "" && !seen[n] {
			seen[n] = true
			all = append(all, n)
		}
	}
	for _, t := range tasks {
		for _, n := range open[t.Name] {
			add(n)
		}
		if t.AssignedTo != nil {
			add(*t.AssignedTo)
		}
	}
	if len(all) == 0 {
		return out
	}
	users, err := s.users.GetMany(ctx, all)
	if err != nil {
		slog.WarnContext(ctx, "failed to load task assignees", sl.Err(err))
		return out
	}

	for i, t := range tasks {
		for _, n := range open[t.Name] {
			if u, ok := users[n]; ok {
				out[i].AssignedTo = append(out[i].AssignedTo, s.assignee(ctx, u))
			}
		}
		// the assigned_to column stands in when no ToDo holder still exists
		if len(out[i].AssignedTo) > 0 || t.AssignedTo == nil {
			continue
		}
		if u, ok := users[*t.AssignedTo]; ok {
			out[i].AssignedTo = append(out[i].AssignedTo, s.assignee(ctx, u))
		}
	}
	return out
}

func taskNames(tasks []domain.Task) []string {
	names := make([]string, len(tasks))
	for i, t := range tasks {
		names[i] = t.Name
	}
	return names
}

func (s *service) assignee(ctx context.Context, u domain.User) domain.Assignee {
	email := u.Name
	if u.Email != nil && *u.Email != "" {
		email = *u.Email
	}
	a := domain.Assignee{Email: email, Name: u.DisplayName(), ID: u.Name}
	if s.images != nil {
		a.ProfilePic = s.images.URL(ctx, u.UserImage)
	}
	return a
}
