package session

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func (e *testEnv) mux() *http.ServeMux {
	h := NewHTTPHandlers(e.svc, zerolog.Nop())
	mux := http.NewServeMux()
	mux.HandleFunc("GET /v1/banks", h.ListBanks)
	mux.HandleFunc("POST /v1/sessions", h.StartSession)
	mux.HandleFunc("GET /v1/sessions/{id}/question", h.CurrentQuestion)
	mux.HandleFunc("POST /v1/sessions/{id}/answers", h.SubmitAnswer)
	mux.HandleFunc("GET /v1/sessions/{id}/report", h.GetReport)
	mux.HandleFunc("GET /v1/players/{player}/results", h.PlayerResults)
	return mux
}

func do(t *testing.T, h http.Handler, method, path, body string) *httptest.ResponseRecorder {
	t.Helper()
	req := httptest.NewRequest(method, path, strings.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req)
	return rec
}

func errorCodeOf(t *testing.T, rec *httptest.ResponseRecorder) string {
	t.Helper()
	var body struct {
		Error string `json:"error"`
	}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
	return body.Error
}

func TestHTTPStartErrors(t *testing.T) {
	env := newTestEnv(t)
	mux := env.mux()

	cases := []struct {
		name   string
		body   string
		status int
		code   string
	}{
		{"bad json", `{`, http.StatusBadRequest, "invalid_request"},
		{"missing bank", `{"player":"ada"}`, http.StatusBadRequest, "missing_field"},
		{"unknown bank", `{"bank":"nope","player":"ada"}`, http.StatusNotFound, "unknown_bank"},
		{"no matches", `{"bank":"agents","player":"ada","category":"zzz"}`, http.StatusUnprocessableEntity, "no_matching_questions"},
		{"missing player", `{"bank":"agents"}`, http.StatusBadRequest, "missing_field"},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			rec := do(t, mux, http.MethodPost, "/v1/sessions", tc.body)
			assert.Equal(t, tc.status, rec.Code)
			assert.Equal(t, tc.code, errorCodeOf(t, rec))
		})
	}
}

func TestHTTPSessionLifecycle(t *testing.T) {
	env := newTestEnv(t)
	mux := env.mux()

	rec := do(t, mux, http.MethodPost, "/v1/sessions", `{"bank":"tracing","player":"ada","count":2,"randomize":false}`)
	require.Equal(t, http.StatusCreated, rec.Code)
	var started Started
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &started))
	base := "/v1/sessions/" + started.SessionID.String()

	rec = do(t, mux, http.MethodGet, base+"/report", "")
	assert.Equal(t, http.StatusConflict, rec.Code)
	assert.Equal(t, "session_in_progress", errorCodeOf(t, rec))

	rec = do(t, mux, http.MethodPost, base+"/answers", `{"answer":"?"}`)
	assert.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Equal(t, "invalid_selection", errorCodeOf(t, rec))
	var invalid struct {
		Details struct {
			Answer string   `json:"answer"`
			Keys   []string `json:"keys"`
		} `json:"details"`
	}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &invalid))
	assert.Equal(t, "?", invalid.Details.Answer)
	assert.NotEmpty(t, invalid.Details.Keys)

	for i := 0; i < 2; i++ {
		rec = do(t, mux, http.MethodPost, base+"/answers", `{"answer":"`+env.correctKey(t, started.SessionID)+`"}`)
		require.Equal(t, http.StatusOK, rec.Code)
	}
	var last AnswerResult
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &last))
	assert.True(t, last.Done)
	require.NotNil(t, last.Report)

	rec = do(t, mux, http.MethodGet, base+"/question", "")
	assert.Equal(t, http.StatusConflict, rec.Code)

	rec = do(t, mux, http.MethodGet, base+"/report", "")
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), `"percentage":100`)

	rec = do(t, mux, http.MethodGet, "/v1/players/ada/results", "")
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), started.SessionID.String())
}

func TestHTTPSessionIDErrors(t *testing.T) {
	env := newTestEnv(t)
	mux := env.mux()

	rec := do(t, mux, http.MethodGet, "/v1/sessions/not-a-uuid/question", "")
	assert.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Equal(t, "invalid_session_id", errorCodeOf(t, rec))

	rec = do(t, mux, http.MethodGet, "/v1/sessions/6f1c5c1e-3a55-4c36-9d1c-000000000000/question", "")
	assert.Equal(t, http.StatusNotFound, rec.Code)
	assert.Equal(t, "session_not_found", errorCodeOf(t, rec))

	rec = do(t, mux, http.MethodGet, "/v1/players/ada/results?limit=0", "")
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestHTTPListBanks(t *testing.T) {
	env := newTestEnv(t)
	rec := do(t, env.mux(), http.MethodGet, "/v1/banks", "")
	require.Equal(t, http.StatusOK, rec.Code)

	var body struct {
		Banks []BankSummary `json:"banks"`
	}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
	assert.Len(t, body.Banks, 10)
}
