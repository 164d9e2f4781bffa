package document

import (
	"context"
	"testing"

	"github.com/crm-mobile-api/internal/domain"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

type mockScoper struct{ mock.Mock }

func (m *mockScoper) ListScope(ctx context.Context, user string) (domain.Visibility, error) {
	args := m.Called(ctx, user)
	return args.Get(0).(domain.Visibility), args.Error(1)
}
func (m *mockScoper) CanAccess(ctx context.Context, user string, doc domain.Document) (bool, error) {
	args := m.Called(ctx, user, doc)
	return args.Bool(0), args.Error(1)
}

type mockDocumentStore struct{ mock.Mock }

func (m *mockDocumentStore) List(ctx context.Context, doctype string, vis domain.Visibility, q domain.DocumentQuery) ([]domain.Document, error) {
	args := m.Called(ctx, doctype, vis, q)
	if v, _ := args.Get(0).([]domain.Document); v != nil {
		return v, args.Error(1)
	}
	return nil, args.Error(1)
}
func (m *mockDocumentStore) Get(ctx context.Context, doctype, name string) (*domain.Document, error) {
	args := m.Called(ctx, doctype, name)
	if d, _ := args.Get(0).(*domain.Document); d != nil {
		return d, args.Error(1)
	}
	return nil, args.Error(1)
}

func TestList_AppliesScopeAndDetectsNextPage(t *testing.T) {
	pol, repo := &mockScoper{}, &mockDocumentStore{}
	vis := domain.Visibility{Kind: domain.VisibleAssigned, User: "rep@x"}
	pol.On("ListScope", mock.Anything, "rep@x").Return(vis, nil)
	repo.On("List", mock.Anything, domain.DoctypeLead, vis, domain.DocumentQuery{
		Filter: domain.DocumentFilter{Status: "New"},
		Limit:  3,
		Offset: 2,
	}).Return([]domain.Document{{Name: "L3"}, {Name: "L4"}, {Name: "L5"}}, nil)

	page, err := NewService(pol, repo).List(context.Background(), "rep@x", domain.DoctypeLead, ListParams{
		Filter: domain.DocumentFilter{Status: "New"},
		Limit:  2,
		Page:   2,
	})

	require.NoError(t, err)
	assert.True(t, page.HasNext)
	assert.Len(t, page.Data, 2)
	assert.Equal(t, 2, page.Page)
	assert.Equal(t, 2, page.PageSize)
}

func TestList_EmptyForGuests(t *testing.T) {
	pol, repo := &mockScoper{}, &mockDocumentStore{}
	none := domain.Visibility{Kind: domain.VisibleNone}
	pol.On("ListScope", mock.Anything, "Guest").Return(none, nil)
	repo.On("List", mock.Anything, domain.DoctypeDeal, none, domain.DocumentQuery{Limit: 21}).Return(nil, nil)

	page, err := NewService(pol, repo).List(context.Background(), "Guest", domain.DoctypeDeal, ListParams{})

	require.NoError(t, err)
	assert.False(t, page.HasNext)
	assert.Equal(t, []domain.Document{}, page.Data)
	assert.Equal(t, 20, page.PageSize)
}

func TestGet(t *testing.T) {
	doc := &domain.Document{Doctype: domain.DoctypeLead, Name: "L1"}

	t.Run("allowed", func(t *testing.T) {
		pol, repo := &mockScoper{}, &mockDocumentStore{}
		repo.On("Get", mock.Anything, domain.DoctypeLead, "L1").Return(doc, nil)
		pol.On("CanAccess", mock.Anything, "rep@x", *doc).Return(true, nil)

		got, err := NewService(pol, repo).Get(context.Background(), "rep@x", domain.DoctypeLead, "L1")
		require.NoError(t, err)
		assert.Equal(t, "L1", got.Name)
	})

	t.Run("denied", func(t *testing.T) {
		pol, repo := &mockScoper{}, &mockDocumentStore{}
		repo.On("Get", mock.Anything, domain.DoctypeLead, "L1").Return(doc, nil)
		pol.On("CanAccess", mock.Anything, "rep@x", *doc).Return(false, nil)

		_, err := NewService(pol, repo).Get(context.Background(), "rep@x", domain.DoctypeLead, "L1")
		require.ErrorIs(t, err, domain.ErrForbidden)
	})

	t.Run("missing", func(t *testing.T) {
		pol, repo := &mockScoper{}, &mockDocumentStore{}
		repo.On("Get", mock.Anything, domain.DoctypeLead, "L9").Return(nil, domain.ErrNotFound)

		_, err := NewService(pol, repo).Get(context.Background(), "rep@x", domain.DoctypeLead, "L9")
		require.ErrorIs(t, err, domain.ErrNotFound)
	})
}
