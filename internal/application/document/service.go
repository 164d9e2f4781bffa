// Package document serves leads and deals filtered by the access policy.
package document

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/crm-mobile-api/internal/domain"
)

const defaultPageSize = 20

type Service interface {
	List(ctx context.Context, user, doctype string, p ListParams) (*domain.DocumentPage, error)
	Get(ctx context.Context, user, doctype, name string) (*domain.Document, error)
}

// ListParams are optional filters and 1-based pagination.
type ListParams struct {
	Filter domain.DocumentFilter
	Limit  int
	Page   int
}

type scoper interface {
	ListScope(ctx context.Context, user string) (domain.Visibility, error)
	CanAccess(ctx context.Context, user string, doc domain.Document) (bool, error)
}

type documentStore interface {
	List(ctx context.Context, doctype string, vis domain.Visibility, q domain.DocumentQuery) ([]domain.Document, error)
	Get(ctx context.Context, doctype, name string) (*domain.Document, error)
}

type service struct {
	policy scoper
	repo   documentStore
}

func NewService(policy scoper, repo documentStore) Service {
	return &service{policy: policy, repo: repo}
}

func (s *service) List(ctx context.Context, user, doctype string, p ListParams) (*domain.DocumentPage, error) {
	limit := p.Limit
	if limit < 1 {
		limit = defaultPageSize
	}
	page := p.Page
	if page < 1 {
		page = 1
	}
	vis, err := s.policy.ListScope(ctx, user)
	if err != nil {
		return nil, err
	}

	// One extra row tells whether another page exists without a count query.
	docs, err := s.repo.List(ctx, doctype, vis, domain.DocumentQuery{
		Filter: p.Filter,
		Limit:  limit + 1,
		Offset: (page - 1) * limit,
	})
	if err != nil {
		return nil, err
	}
	hasNext := len(docs) > limit
	if hasNext {
		docs = docs[:limit]
	}
	if docs == nil {
		docs = []domain.Document{}
	}
	return &domain.DocumentPage{Data: docs, Page: page, PageSize: limit, HasNext: hasNext}, nil
}

func (s *service) Get(ctx context.Context, user, doctype, name string) (*domain.Document, error) {
	doc, err := s.repo.Get(ctx, doctype, name)
	if err != nil {
		return nil, err
	}
	ok, err := s.policy.CanAccess(ctx, user, *doc)
	if err != nil {
		return nil, err
	}
	if !ok {
		slog.WarnContext(ctx, "document access denied",
			slog.String("user", user), slog.String("doctype", doctype), slog.String("name", name))
		return nil, fmt.Errorf("not permitted to access %s %s: %w", doctype, name, domain.ErrForbidden)
	}
	return doc, nil
}
