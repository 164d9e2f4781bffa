package validate_test

import (
	"testing"

	"github.com/crm-mobile-api/internal/domain"
	"github.com/crm-mobile-api/internal/pkg/validate"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestStruct(t *testing.T) {
	require.NoError(t, validate.Struct(domain.CreateTaskRequest{TaskType: "Call"}))

	err := validate.Struct(domain.CreateTaskRequest{})
	require.ErrorIs(t, err, domain.ErrBadRequest)
	assert.Contains(t, err.Error(), "field 'TaskType' failed 'required'")

	err = validate.Struct(domain.AddAssignmentRequest{Doctype: "CRM Lead", Name: "LEAD-1", AssignTo: []string{}})
	require.ErrorIs(t, err, domain.ErrBadRequest)
	assert.Contains(t, err.Error(), "AssignTo")
}
