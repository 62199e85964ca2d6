package response

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestWriteSetsMediaType(t *testing.T) {
	rec := httptest.NewRecorder()
	err := Write(rec, http.StatusOK, map[string]string{"status": "ok"})
	require.NoError(t, err)

	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, MediaType, rec.Header().Get("Content-Type"))
	assert.JSONEq(t, `{"status":"ok"}`, rec.Body.String())
}

func TestWriteMarshalFailureLeavesResponseUntouched(t *testing.T) {
	rec := httptest.NewRecorder()
	err := Write(rec, http.StatusOK, map[string]interface{}{"bad": func() {}})
	require.Error(t, err)

	assert.Empty(t, rec.Header().Get("Content-Type"))
	assert.Empty(t, rec.Body.String())
}

func TestErrorEnvelope(t *testing.T) {
	rec := httptest.NewRecorder()
	Error(rec, http.StatusNotFound, "Not found")

	assert.Equal(t, http.StatusNotFound, rec.Code)
	assert.JSONEq(t, `{"errors":[{"detail":"Not found"}]}`, rec.Body.String())
}

func TestNoContent(t *testing.T) {
	rec := httptest.NewRecorder()
	NoContent(rec)

	assert.Equal(t, http.StatusNoContent, rec.Code)
	assert.Empty(t, rec.Body.String())
}
