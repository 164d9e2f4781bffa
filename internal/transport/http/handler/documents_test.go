package handler

import (
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/crm-mobile-api/internal/application/document"
	"github.com/crm-mobile-api/internal/domain"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

func TestDocumentList_ForwardsFiltersAndDoctype(t *testing.T) {
	svc := &mockDocumentSvc{}
	params := document.ListParams{
		Filter: domain.DocumentFilter{Status: "New", Search: "acme"},
		Limit:  10,
		Page:   1,
	}
	svc.On("List", mock.Anything, "jane@example.com", domain.DoctypeLead, params).Return(&domain.DocumentPage{
		Data: []domain.Document{{Doctype: domain.DoctypeLead, Name: "CRM-LEAD-0001"}}, Page: 1, PageSize: 10,
	}, nil)
	h := NewDocumentHandler(svc, domain.DoctypeLead)

	rr := httptest.NewRecorder()
	h.List(rr, asUser(httptest.NewRequest(http.MethodGet, "/v1/leads?status=New&q=acme&limit=10&page=1", nil), "jane@example.com"))

	require.Equal(t, http.StatusOK, rr.Code)
	var got domain.DocumentPage
	require.NoError(t, json.NewDecoder(rr.Body).Decode(&got))
	require.Len(t, got.Data, 1)
	assert.False(t, got.HasNext)
	svc.AssertExpectations(t)
}

func TestDocumentGet_Forbidden(t *testing.T) {
	svc := &mockDocumentSvc{}
	svc.On("Get", mock.Anything, "jane@example.com", domain.DoctypeDeal, "CRM-DEAL-0009").
		Return(nil, fmt.Errorf("CRM Deal CRM-DEAL-0009: %w", domain.ErrForbidden))
	h := NewDocumentHandler(svc, domain.DoctypeDeal)

	r := withChiParam(asUser(httptest.NewRequest(http.MethodGet, "/v1/deals/CRM-DEAL-0009", nil), "jane@example.com"), "name", "CRM-DEAL-0009")
	rr := httptest.NewRecorder()
	h.Get(rr, r)

	assert.Equal(t, http.StatusForbidden, rr.Code)
}

func TestDocumentGet_MissingClaims(t *testing.T) {
	svc := &mockDocumentSvc{}
	h := NewDocumentHandler(svc, domain.DoctypeLead)

	rr := httptest.NewRecorder()
	h.Get(rr, withChiParam(httptest.NewRequest(http.MethodGet, "/v1/leads/CRM-LEAD-0001", nil), "name", "CRM-LEAD-0001"))

	assert.Equal(t, http.StatusUnauthorized, rr.Code)
	svc.AssertNotCalled(t, "Get", mock.Anything, mock.Anything, mock.Anything, mock.Anything)
}
