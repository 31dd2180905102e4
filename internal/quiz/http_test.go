package quiz

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	gojwt "github.com/golang-jwt/jwt/v5"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/aprendeexcel/quiz-engine/internal/auth"
	"github.com/aprendeexcel/quiz-engine/internal/auth/jwt"
)

func asUser(userID string) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			claims := &jwt.Claims{RegisteredClaims: gojwt.RegisteredClaims{Subject: userID}}
			next.ServeHTTP(w, r.WithContext(auth.WithClaims(r.Context(), claims)))
		})
	}
}

func newTestServer(t *testing.T) (*http.ServeMux, *fixture) {
	t.Helper()
	f := newFixture(t)
	mux := http.NewServeMux()
	NewHTTPHandler(f.svc, zerolog.Nop()).Register(mux, asUser("user-1"))
	return mux, f
}

func call(t *testing.T, mux http.Handler, method, path, body string) (*httptest.ResponseRecorder, map[string]any) {
	t.Helper()
	var req *http.Request
	if body == "" {
		req = httptest.NewRequest(method, path, nil)
	} else {
		req = httptest.NewRequest(method, path, strings.NewReader(body))
	}
	rec := httptest.NewRecorder()
	mux.ServeHTTP(rec, req)

	var decoded map[string]any
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &decoded), rec.Body.String())
	return rec, decoded
}

func startSession(t *testing.T, mux http.Handler) string {
	t.Helper()
	rec, body := call(t, mux, http.MethodPost, "/v1/quiz/sessions", "")
	require.Equal(t, http.StatusCreated, rec.Code)
	session := body["session"].(map[string]any)
	return session["session_id"].(string)
}

func TestHTTPListQuestionsOmitsAnswerKeys(t *testing.T) {
	mux, _ := newTestServer(t)

	rec := httptest.NewRecorder()
	mux.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/v1/quiz/questions", nil))

	require.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), `"q1"`)
	assert.NotContains(t, rec.Body.String(), "correct")
	assert.NotContains(t, rec.Body.String(), "SUM adds")
	assert.NotContains(t, rec.Body.String(), "accepted")
}

func TestHTTPQuizFlow(t *testing.T) {
	mux, f := newTestServer(t)
	id := startSession(t, mux)
	base := "/v1/quiz/sessions/" + id

	rec, body := call(t, mux, http.MethodPost, base+"/answers", `{"question_id":"q1","response":{"option_id":"x"}}`)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, true, body["answer"].(map[string]any)["is_correct"])

	rec, body = call(t, mux, http.MethodPost, base+"/next", "")
	require.Equal(t, http.StatusOK, rec.Code)
	assert.EqualValues(t, 1, body["session"].(map[string]any)["index"])

	rec, _ = call(t, mux, http.MethodPost, base+"/previous", "")
	require.Equal(t, http.StatusOK, rec.Code)

	rec, body = call(t, mux, http.MethodPost, base+"/complete", "")
	require.Equal(t, http.StatusOK, rec.Code)
	completion := body["completion"].(map[string]any)
	assert.Equal(t, true, completion["saved"])
	assert.EqualValues(t, 5, completion["snapshot"].(map[string]any)["total_points"])

	rec, body = call(t, mux, http.MethodPost, base+"/answers", `{"question_id":"q2","response":{"value":true}}`)
	assert.Equal(t, http.StatusConflict, rec.Code)
	assert.Equal(t, "session_completed", body["error"])

	f.svc.Wait()
}

func TestHTTPSubmitValidation(t *testing.T) {
	mux, _ := newTestServer(t)
	id := startSession(t, mux)
	base := "/v1/quiz/sessions/" + id

	tests := []struct {
		name   string
		body   string
		status int
		code   string
	}{
		{"bad json", `{`, http.StatusBadRequest, "invalid_request"},
		{"missing question", `{"response":{"text":"SUM"}}`, http.StatusBadRequest, "missing_field"},
		{"unknown question", `{"question_id":"q9","response":{"text":"SUM"}}`, http.StatusBadRequest, "unknown_question"},
		{"blank fill in", `{"question_id":"q3","response":{"text":"  "}}`, http.StatusBadRequest, "empty_response"},
		{"foreign option", `{"question_id":"q1","response":{"option_id":"z"}}`, http.StatusBadRequest, "invalid_response"},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			rec, body := call(t, mux, http.MethodPost, base+"/answers", tc.body)
			assert.Equal(t, tc.status, rec.Code)
			assert.Equal(t, tc.code, body["error"])
		})
	}
}

func TestHTTPSessionLookupErrors(t *testing.T) {
	mux, _ := newTestServer(t)

	rec, body := call(t, mux, http.MethodGet, "/v1/quiz/sessions/not-a-uuid", "")
	assert.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Equal(t, "invalid_session_id", body["error"])

	rec, body = call(t, mux, http.MethodGet, "/v1/quiz/sessions/7f0c8c2e-8a61-4c3b-9a53-0f3a6f1d2b11", "")
	assert.Equal(t, http.StatusNotFound, rec.Code)
	assert.Equal(t, "session_not_found", body["error"])
}

func TestHTTPRetrySaveInProgress(t *testing.T) {
	mux, _ := newTestServer(t)
	id := startSession(t, mux)

	rec, body := call(t, mux, http.MethodPost, "/v1/quiz/sessions/"+id+"/save", "")
	assert.Equal(t, http.StatusConflict, rec.Code)
	assert.Equal(t, "nothing_to_save", body["error"])
}
