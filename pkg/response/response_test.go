package response

import (
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/windfall/kidvocab_service/internal/errors"
)

func decode(t *testing.T, rec *httptest.ResponseRecorder) Response {
	t.Helper()
	var resp Response
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	return resp
}

func TestJSON(t *testing.T) {
	rec := httptest.NewRecorder()
	OK(rec, map[string]string{"word": "apple"})

	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "application/json", rec.Header().Get("Content-Type"))
	resp := decode(t, rec)
	assert.True(t, resp.Success)
	assert.Nil(t, resp.Error)
}

func TestAppError(t *testing.T) {
	rec := httptest.NewRecorder()
	AppError(rec, errors.Validation("topic_id is required"))

	assert.Equal(t, http.StatusBadRequest, rec.Code)
	resp := decode(t, rec)
	assert.False(t, resp.Success)
	require.NotNil(t, resp.Error)
	assert.Equal(t, "VALIDATION_ERROR", resp.Error.Code)
	assert.Equal(t, "topic_id is required", resp.Error.Message)
}

func TestAppError_Wrapped(t *testing.T) {
	rec := httptest.NewRecorder()
	AppError(rec, fmt.Errorf("select topic: %w", errors.NotFound("topic")))

	assert.Equal(t, http.StatusNotFound, rec.Code)
	assert.Equal(t, "NOT_FOUND", decode(t, rec).Error.Code)
}

func TestAppError_PlainErrorIsHidden(t *testing.T) {
	rec := httptest.NewRecorder()
	AppError(rec, fmt.Errorf("dial tcp 10.0.0.1:5432: refused"))

	assert.Equal(t, http.StatusInternalServerError, rec.Code)
	resp := decode(t, rec)
	assert.NotContains(t, resp.Error.Message, "10.0.0.1")
}
