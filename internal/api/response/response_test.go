package response_test

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jamroute/jamroute/internal/api/middleware"
	"github.com/jamroute/jamroute/internal/api/models"
	"github.com/jamroute/jamroute/internal/api/response"
)

// serve runs the handler behind the request ID middleware so responses carry
// a correlation ID, as they do in the real middleware chain.
func serve(t *testing.T, h http.HandlerFunc) *httptest.ResponseRecorder {
	t.Helper()

	rec := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodGet, "/v1/test", nil)
	middleware.RequestID(h).ServeHTTP(rec, req)
	return rec
}

func TestJSON(t *testing.T) {
	rec := serve(t, func(w http.ResponseWriter, r *http.Request) {
		response.JSON(w, r, http.StatusOK, map[string]string{"hello": "world"})
	})

	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "application/json", rec.Header().Get("Content-Type"))
	assert.NotEmpty(t, rec.Header().Get("X-Request-Id"))

	var body map[string]string
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
	assert.Equal(t, "world", body["hello"])
}

func TestJSON_NilBody(t *testing.T) {
	rec := serve(t, func(w http.ResponseWriter, r *http.Request) {
		response.JSON(w, r, http.StatusNoContent, nil)
	})

	assert.Equal(t, http.StatusNoContent, rec.Code)
	assert.Empty(t, rec.Body.String())
}

func TestBadRequest(t *testing.T) {
	rec := serve(t, func(w http.ResponseWriter, r *http.Request) {
		response.BadRequest(w, r, "missing required fields", []models.FieldError{
			{Field: "start", Message: "start coordinate is required", Code: "required"},
		})
	})

	assert.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Equal(t, "application/problem+json", rec.Header().Get("Content-Type"))

	var problem models.Problem
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &problem))
	assert.Equal(t, models.ProblemTypeValidation, problem.Type)
	assert.Equal(t, "missing required fields", problem.Detail)
	assert.Equal(t, "/v1/test", problem.Instance)
	assert.NotEmpty(t, problem.TraceID)
	require.Len(t, problem.Errors, 1)
}

func TestErrorHelpers(t *testing.T) {
	tests := []struct {
		name       string
		write      func(w http.ResponseWriter, r *http.Request)
		wantStatus int
		wantType   string
	}{
		{
			name: "not found",
			write: func(w http.ResponseWriter, r *http.Request) {
				response.NotFound(w, r, "no such resource")
			},
			wantStatus: http.StatusNotFound,
			wantType:   models.ProblemTypeNotFound,
		},
		{
			name: "too many requests",
			write: func(w http.ResponseWriter, r *http.Request) {
				response.TooManyRequests(w, r, "slow down")
			},
			wantStatus: http.StatusTooManyRequests,
			wantType:   models.ProblemTypeTooManyRequests,
		},
		{
			name: "internal error",
			write: func(w http.ResponseWriter, r *http.Request) {
				response.InternalError(w, r, "something broke")
			},
			wantStatus: http.StatusInternalServerError,
			wantType:   models.ProblemTypeInternal,
		},
		{
			name: "service unavailable",
			write: func(w http.ResponseWriter, r *http.Request) {
				response.ServiceUnavailable(w, r, "still loading")
			},
			wantStatus: http.StatusServiceUnavailable,
			wantType:   models.ProblemTypeUnavailable,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rec := serve(t, tt.write)

			assert.Equal(t, tt.wantStatus, rec.Code)

			var problem models.Problem
			require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &problem))
			assert.Equal(t, tt.wantType, problem.Type)
		})
	}
}
