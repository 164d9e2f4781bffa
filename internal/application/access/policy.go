// Package access decides who may assign documents to whom and which leads
// and deals a user can see.
package access

import (
	"context"
	"fmt"
	"log/slog"
	"slices"
	"strings"

	"github.com/crm-mobile-api/internal/domain"
	"github.com/crm-mobile-api/internal/metrics"
)

// Policy is consulted by the assignment API and by the ToDo creation path,
// so both enforce the same rules.
type Policy interface {
	Tier(ctx context.Context, user string) (domain.Tier, error)
	Roster(ctx context.Context, user string) ([]string, error)
	AuthorizeAssignment(ctx context.Context, actor string, targets []string) error
	ListScope(ctx context.Context, user string) (domain.Visibility, error)
	CanAccess(ctx context.Context, user string, doc domain.Document) (bool, error)
}

type roleStore interface {
	Roles(ctx context.Context, user string) ([]string, error)
}

type teamStore interface {
	Roster(ctx context.Context, leader string) ([]string, error)
}

type todoStore interface {
	OpenAssignees(ctx context.Context, refType string, refNames []string) (map[string][]string, error)
}

type policy struct {
	roles   roleStore
	teams   teamStore
	todos   todoStore
	metrics *metrics.Metrics
}

type PolicyDeps struct {
	UserRepo roleStore
	TeamRepo teamStore
	TodoRepo todoStore
	Metrics  *metrics.Metrics
}

func NewPolicy(deps PolicyDeps) Policy {
	return &policy{roles: deps.UserRepo, teams: deps.TeamRepo, todos: deps.TodoRepo, metrics: deps.Metrics}
}

func (p *policy) Tier(ctx context.Context, user string) (domain.Tier, error) {
	if user == domain.UserAdministrator {
		return domain.TierPrivileged, nil
	}
	if user == "" || user == domain.UserGuest {
		return domain.TierNone, nil
	}
	roles, err := p.roles.Roles(ctx, user)
	if err != nil {
		return domain.TierNone, fmt.Errorf("roles of %s: %w", user, err)
	}
	switch {
	case slices.Contains(roles, domain.RoleSystemManager):
		return domain.TierPrivileged, nil
	case slices.Contains(roles, domain.RoleSalesManager):
		return domain.TierManager, nil
	case slices.Contains(roles, domain.RoleSalesUser):
		return domain.TierSalesUser, nil
	}
	return domain.TierNone, nil
}

// Roster returns the members of every team user leads.
func (p *policy) Roster(ctx context.Context, user string) ([]string, error) {
	if user == "" {
		return nil, nil
	}
	return p.teams.Roster(ctx, user)
}

func (p *policy) AuthorizeAssignment(ctx context.Context, actor string, targets []string) error {
	tier, err := p.Tier(ctx, actor)
	if err != nil {
		return err
	}
	switch tier {
	case domain.TierPrivileged:
		return nil
	case domain.TierManager:
		roster, err := p.Roster(ctx, actor)
		if err != nil {
			return err
		}
		var illegal []string
		for _, t := range targets {
			if !slices.Contains(roster, t) {
				illegal = append(illegal, t)
			}
		}
		if len(illegal) == 0 {
			return nil
		}
		p.deny(ctx, actor, tier, targets)
		return fmt.Errorf("you can only assign to your team members: %s: %w", strings.Join(illegal, ", "), domain.ErrForbidden)
	default:
		p.deny(ctx, actor, tier, targets)
		return fmt.Errorf("you are not allowed to assign: %w", domain.ErrForbidden)
	}
}

func (p *policy) deny(ctx context.Context, actor string, tier domain.Tier, targets []string) {
	slog.WarnContext(ctx, "assignment denied",
		slog.String("actor", actor),
		slog.String("tier", tier.String()),
		slog.Any("targets", targets))
	if p.metrics != nil {
		p.metrics.AssignmentDenials.WithLabelValues(tier.String()).Inc()
	}
}

func (p *policy) ListScope(ctx context.Context, user string) (domain.Visibility, error) {
	if user == "" || user == domain.UserGuest {
		return domain.Visibility{Kind: domain.VisibleNone}, nil
	}
	tier, err := p.Tier(ctx, user)
	if err != nil {
		return domain.Visibility{Kind: domain.VisibleNone}, err
	}
	if tier == domain.TierPrivileged {
		return domain.Visibility{Kind: domain.VisibleAll}, nil
	}
	return domain.Visibility{Kind: domain.VisibleAssigned, User: user}, nil
}

// CanAccess reports whether user may read doc: unrestricted users always can;
// others need doc to be assigned (inline or through an open ToDo) to themselves
// or to a member of a team they lead.
func (p *policy) CanAccess(ctx context.Context, user string, doc domain.Document) (bool, error) {
	scope, err := p.ListScope(ctx, user)
	if err != nil {
		return false, err
	}
	switch scope.Kind {
	case domain.VisibleAll:
		return true, nil
	case domain.VisibleNone:
		return false, nil
	}
	if doc.IsAssigned(user) {
		return true, nil
	}

	roster, err := p.Roster(ctx, user)
	if err != nil {
		return false, err
	}
	for _, m := range roster {
		if doc.IsAssigned(m) {
			return true, nil
		}
	}

	open, err := p.todos.OpenAssignees(ctx, doc.Doctype, []string{doc.Name})
	if err != nil {
		return false, err
	}
	for _, holder := range open[doc.Name] {
		if holder == user || slices.Contains(roster, holder) {
			return true, nil
		}
	}
	return false, nil
}
