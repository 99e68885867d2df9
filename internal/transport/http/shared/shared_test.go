package shared

import (
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"calcfolha/internal/domain/overtime"
)

type signup struct {
	Email    string `json:"email" validate:"required,email"`
	Password string `json:"password" validate:"required,min=8"`
	Age      int    `json:"age" validate:"gte=0,lte=120"`
}

func TestValidatorStructUsesJSONNames(t *testing.T) {
	v := NewValidator()
	v.Struct(signup{Email: "not-an-email", Password: "short", Age: 130})

	assert.Equal(t, []ValidationIssue{
		{Field: "age", Reason: "must be at most 120"},
		{Field: "email", Reason: "must be a valid email"},
		{Field: "password", Reason: "must be at least 8 characters"},
	}, v.Issues())
}

func TestValidatorStructPasses(t *testing.T) {
	v := NewValidator()
	v.Struct(signup{Email: "ana@example.com", Password: "long-enough"})
	assert.False(t, v.HasIssues())
}

func TestValidatorErrorKeepsDomainField(t *testing.T) {
	v := NewValidator()
	v.Error(&overtime.FieldError{Field: "endDate", Reason: "must be on or after startDate"})
	v.Error(errors.New("bad clock"))
	v.Error(nil)

	assert.Equal(t, []ValidationIssue{
		{Field: "", Reason: "bad clock"},
		{Field: "endDate", Reason: "must be on or after startDate"},
	}, v.Issues())
}

func TestRejectWritesValidationEnvelope(t *testing.T) {
	v := NewValidator()
	v.Required("description", "  ", "is required")

	rec := httptest.NewRecorder()
	require.True(t, v.Reject(rec, "req-1"))
	assert.Equal(t, http.StatusBadRequest, rec.Code)

	var body struct {
		Success bool `json:"success"`
		Error   struct {
			Code    string `json:"code"`
			Details struct {
				Fields []ValidationIssue `json:"fields"`
			} `json:"details"`
		} `json:"error"`
		RequestID string `json:"requestId"`
	}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
	assert.False(t, body.Success)
	assert.Equal(t, "validation_error", body.Error.Code)
	assert.Equal(t, "description", body.Error.Details.Fields[0].Field)
	assert.Equal(t, "req-1", body.RequestID)

	assert.False(t, NewValidator().Reject(httptest.NewRecorder(), ""))
}

func TestParsePagination(t *testing.T) {
	r := httptest.NewRequest(http.MethodGet, "/?limit=1000&offset=20", nil)
	assert.Equal(t, Pagination{Limit: 500, Offset: 20}, ParsePagination(r, 100, 500))

	r = httptest.NewRequest(http.MethodGet, "/?limit=abc&offset=-1", nil)
	assert.Equal(t, Pagination{Limit: 100}, ParsePagination(r, 100, 500))
}
