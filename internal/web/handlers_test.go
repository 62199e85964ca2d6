package web

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"regexp"
	"strings"
	"testing"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/jobhunt-app/jobhunt/internal/resource"
	"github.com/jobhunt-app/jobhunt/internal/store"
	"github.com/jobhunt-app/jobhunt/internal/web/response"
)

func newTestServer(t *testing.T) (http.Handler, sqlmock.Sqlmock) {
	t.Helper()
	db, mock, err := sqlmock.New(sqlmock.QueryMatcherOption(sqlmock.QueryMatcherRegexp))
	require.NoError(t, err)
	t.Cleanup(func() { db.Close() })

	registry := resource.Catalog()
	st := store.New(db, store.DialectSQLite, registry, zap.NewNop())
	return NewServer(registry, st, zap.NewNop(), false).Router(), mock
}

func doRequest(t *testing.T, handler http.Handler, method, path, body string) *httptest.ResponseRecorder {
	t.Helper()
	var req *http.Request
	if body != "" {
		req = httptest.NewRequest(method, path, strings.NewReader(body))
		req.Header.Set("Content-Type", response.MediaType)
	} else {
		req = httptest.NewRequest(method, path, nil)
	}
	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, req)
	return rec
}

func decodeBody(t *testing.T, rec *httptest.ResponseRecorder) map[string]interface{} {
	t.Helper()
	var body map[string]interface{}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
	return body
}

func TestListEmptyCollection(t *testing.T) {
	handler, mock := newTestServer(t)

	mock.ExpectQuery("SELECT .+ FROM score ORDER BY id LIMIT ").
		WithArgs(50, 0).
		WillReturnRows(sqlmock.NewRows([]string{"id", "score", "explanation", "job_post_id", "resume_id", "user_id"}))

	rec := doRequest(t, handler, http.MethodGet, "/api/v1/scores", "")
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, response.MediaType, rec.Header().Get("Content-Type"))

	body := decodeBody(t, rec)
	data, ok := body["data"].([]interface{})
	require.True(t, ok, "data must be an array, got %T", body["data"])
	assert.Empty(t, data)
	assert.NotContains(t, body, "included")
}

func TestListPaginationParams(t *testing.T) {
	handler, mock := newTestServer(t)

	mock.ExpectQuery("SELECT .+ FROM score ORDER BY id LIMIT ").
		WithArgs(2, 2).
		WillReturnRows(sqlmock.NewRows([]string{"id", "score", "explanation", "job_post_id", "resume_id", "user_id"}).
			AddRow(3, 80.0, "", nil, nil, nil))

	rec := doRequest(t, handler, http.MethodGet,
		"/api/v1/scores?page%5Bsize%5D=2&page%5Bnumber%5D=2", "")
	require.Equal(t, http.StatusOK, rec.Code)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestListPaginationFallback(t *testing.T) {
	handler, mock := newTestServer(t)

	// Garbage pagination silently falls back to defaults, never a 400.
	mock.ExpectQuery("SELECT .+ FROM score ORDER BY id LIMIT ").
		WithArgs(50, 0).
		WillReturnRows(sqlmock.NewRows([]string{"id", "score", "explanation", "job_post_id", "resume_id", "user_id"}))

	rec := doRequest(t, handler, http.MethodGet,
		"/api/v1/scores?page%5Bsize%5D=banana&page%5Bnumber%5D=-3", "")
	require.Equal(t, http.StatusOK, rec.Code)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestRetrieveNotFound(t *testing.T) {
	handler, mock := newTestServer(t)

	mock.ExpectQuery("SELECT .+ FROM score WHERE id = ").
		WithArgs(int64(99)).
		WillReturnRows(sqlmock.NewRows([]string{"id"}))

	rec := doRequest(t, handler, http.MethodGet, "/api/v1/scores/99", "")
	require.Equal(t, http.StatusNotFound, rec.Code)

	body := decodeBody(t, rec)
	errs := body["errors"].([]interface{})
	assert.Equal(t, "Not found", errs[0].(map[string]interface{})["detail"])
}

func TestCreateWithRelationship(t *testing.T) {
	handler, mock := newTestServer(t)

	mock.ExpectQuery(regexp.QuoteMeta(
		"INSERT INTO resume (title, user_id) VALUES ($1, $2) RETURNING id",
	)).WithArgs("Backend resume", int64(7)).WillReturnRows(
		sqlmock.NewRows([]string{"id"}).AddRow(9),
	)
	mock.ExpectQuery("SELECT .+ FROM resume WHERE id = ").
		WithArgs(int64(9)).
		WillReturnRows(
			sqlmock.NewRows([]string{"id", "file_path", "title", "name", "notes", "favorite", "user_id"}).
				AddRow(9, nil, "Backend resume", nil, nil, 0, 7),
		)
	// Relationship linkage for the rendered resource's to-many relations.
	mock.MatchExpectationsInOrder(false)
	for _, table := range []string{"score", "cover_letter", "application", "summary"} {
		mock.ExpectQuery("SELECT .+ FROM " + table + " WHERE resume_id = ").
			WillReturnRows(sqlmock.NewRows([]string{"id"}))
	}
	for _, join := range []string{"resume_experience", "resume_education", "resume_certification", "resume_skill"} {
		mock.ExpectQuery("SELECT .+ JOIN " + join + " j ON ").
			WillReturnRows(sqlmock.NewRows([]string{"id"}))
	}

	payload := `{
		"data": {
			"type": "resume",
			"attributes": {"title": "Backend resume"},
			"relationships": {"user": {"data": {"type": "user", "id": "7"}}}
		}
	}`
	rec := doRequest(t, handler, http.MethodPost, "/api/v1/resumes", payload)
	require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())

	body := decodeBody(t, rec)
	data := body["data"].(map[string]interface{})
	assert.Equal(t, "resume", data["type"])
	assert.Equal(t, "9", data["id"])

	rels := data["relationships"].(map[string]interface{})
	user := rels["user"].(map[string]interface{})["data"].(map[string]interface{})
	assert.Equal(t, "7", user["id"])
}

func TestCreateTypeMismatch(t *testing.T) {
	handler, _ := newTestServer(t)

	rec := doRequest(t, handler, http.MethodPost, "/api/v1/resumes",
		`{"data": {"type": "bogus"}}`)
	require.Equal(t, http.StatusBadRequest, rec.Code)

	body := decodeBody(t, rec)
	detail := body["errors"].([]interface{})[0].(map[string]interface{})["detail"].(string)
	assert.Contains(t, detail, "'resume'")
	assert.Contains(t, detail, "'resumes'")
}

func TestCreateInvalidJSON(t *testing.T) {
	handler, _ := newTestServer(t)

	rec := doRequest(t, handler, http.MethodPost, "/api/v1/resumes", "{not json")
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestDestroyIdempotent(t *testing.T) {
	handler, mock := newTestServer(t)

	mock.ExpectExec("DELETE FROM score WHERE id = ").
		WithArgs(int64(3)).WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectExec("DELETE FROM score WHERE id = ").
		WithArgs(int64(3)).WillReturnResult(sqlmock.NewResult(0, 0))

	rec := doRequest(t, handler, http.MethodDelete, "/api/v1/scores/3", "")
	assert.Equal(t, http.StatusNoContent, rec.Code)

	rec = doRequest(t, handler, http.MethodDelete, "/api/v1/scores/3", "")
	assert.Equal(t, http.StatusNoContent, rec.Code)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestRelationshipLinkageEndpoint(t *testing.T) {
	handler, mock := newTestServer(t)

	mock.ExpectQuery("SELECT .+ FROM score WHERE id = ").
		WithArgs(int64(3)).
		WillReturnRows(
			sqlmock.NewRows([]string{"id", "score", "explanation", "job_post_id", "resume_id", "user_id"}).
				AddRow(3, 80.0, "", nil, 2, nil),
		)

	rec := doRequest(t, handler, http.MethodGet, "/api/v1/scores/3/relationships/resume", "")
	require.Equal(t, http.StatusOK, rec.Code)

	body := decodeBody(t, rec)
	data := body["data"].(map[string]interface{})
	assert.Equal(t, "resume", data["type"])
	assert.Equal(t, "2", data["id"])
	// Bare linkage only: no attributes.
	assert.NotContains(t, data, "attributes")
}

func TestRelationshipLinkageUnknownRel(t *testing.T) {
	handler, mock := newTestServer(t)

	mock.ExpectQuery("SELECT .+ FROM score WHERE id = ").
		WithArgs(int64(3)).
		WillReturnRows(
			sqlmock.NewRows([]string{"id", "score", "explanation", "job_post_id", "resume_id", "user_id"}).
				AddRow(3, 80.0, "", nil, nil, nil),
		)

	rec := doRequest(t, handler, http.MethodGet, "/api/v1/scores/3/relationships/bogus", "")
	require.Equal(t, http.StatusNotFound, rec.Code)

	body := decodeBody(t, rec)
	detail := body["errors"].([]interface{})[0].(map[string]interface{})["detail"]
	assert.Equal(t, "Relationship not found", detail)
}

func TestRelatedResourceEndpoint(t *testing.T) {
	handler, mock := newTestServer(t)

	mock.ExpectQuery("SELECT .+ FROM question WHERE id = ").
		WithArgs(int64(5)).
		WillReturnRows(
			sqlmock.NewRows([]string{"id", "content", "created_at", "favorite", "application_id", "company_id", "created_by_id"}).
				AddRow(5, "Why us?", nil, 0, nil, nil, nil),
		)
	mock.MatchExpectationsInOrder(false)
	mock.ExpectQuery("SELECT .+ FROM answer WHERE question_id = ").
		WillReturnRows(
			sqlmock.NewRows([]string{"id", "content", "created_at", "favorite", "question_id"}).
				AddRow(1, "Culture", nil, 0, 5),
		)

	rec := doRequest(t, handler, http.MethodGet, "/api/v1/questions/5/answers", "")
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())

	body := decodeBody(t, rec)
	data := body["data"].([]interface{})
	require.Len(t, data, 1)
	first := data[0].(map[string]interface{})
	assert.Equal(t, "answer", first["type"])
	attrs := first["attributes"].(map[string]interface{})
	assert.Equal(t, "Culture", attrs["content"])
}

func TestApplicationsAliasRoute(t *testing.T) {
	handler, mock := newTestServer(t)

	mock.ExpectQuery("SELECT .+ FROM application ORDER BY id LIMIT ").
		WithArgs(50, 0).
		WillReturnRows(sqlmock.NewRows([]string{"id"}))

	// The alias collection mounts alongside /job-applications.
	rec := doRequest(t, handler, http.MethodGet, "/api/v1/applications", "")
	assert.Equal(t, http.StatusOK, rec.Code)
}

func TestHealthcheck(t *testing.T) {
	db, mock, err := sqlmock.New(sqlmock.MonitorPingsOption(true))
	require.NoError(t, err)
	t.Cleanup(func() { db.Close() })

	registry := resource.Catalog()
	st := store.New(db, store.DialectSQLite, registry, zap.NewNop())
	handler := NewServer(registry, st, zap.NewNop(), false).Router()

	mock.ExpectPing()
	rec := doRequest(t, handler, http.MethodGet, "/api/v1/healthcheck", "")
	require.Equal(t, http.StatusOK, rec.Code)
	assert.JSONEq(t, `{"status":"ok"}`, rec.Body.String())
}
