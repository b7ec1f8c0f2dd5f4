package simple

import (
	"bytes"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"testing"

	"github.com/gorilla/mux"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap/zaptest"

	"github.com/portfolio-ai-assistant/internal/jsonx"
)

const testAPIKey = "simple-secret"

func newTestService(t *testing.T) *mux.Router {
	t.Helper()

	dir := t.TempDir()
	general := `{"name": "Jamie", "email": "jamie@example.com", "specializations": ["Go", "AI"]}`
	require.NoError(t, os.WriteFile(filepath.Join(dir, "general_info.json"), []byte(general), 0o644))

	srv := NewServer(dir, testAPIKey, zaptest.NewLogger(t))
	router := mux.NewRouter()
	srv.SetupRoutes(router)
	return router
}

func doChat(t *testing.T, router *mux.Router, apiKey, message string) *httptest.ResponseRecorder {
	t.Helper()
	body, err := jsonx.Marshal(ChatRequest{Message: message})
	require.NoError(t, err)

	req := httptest.NewRequest(http.MethodPost, "/chat", bytes.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	if apiKey != "" {
		req.Header.Set("X-API-Key", apiKey)
	}
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)
	return rec
}

func TestClassifyPriorityOrder(t *testing.T) {
	cases := map[string]Category{
		"hi there":                        CategoryGreeting,
		"hello, what projects?":           CategoryGreeting, // greeting wins over projects
		"which technology do you use":     CategoryGreeting, // substring match: "which" contains "hi"
		"what technology do you use":      CategorySkills,
		"show me your portfolio work":     CategoryProjects,
		"what is your education":          CategoryExperience,
		"how do I reach you via linkedin": CategoryContact,
		"hmm":                             CategoryDefault,
	}

	for message, want := range cases {
		assert.Equal(t, want, Classify(message), "message: %s", message)
	}
}

func TestGreetingResponse(t *testing.T) {
	router := newTestService(t)

	rec := doChat(t, router, testAPIKey, "hi")
	require.Equal(t, http.StatusOK, rec.Code)

	var resp ChatResponse
	require.NoError(t, jsonx.Unmarshal(rec.Body.Bytes(), &resp))

	assert.InDelta(t, 0.9, resp.Confidence, 1e-9)
	assert.Equal(t, []string{"greeting_template"}, resp.Sources)
	assert.NotEmpty(t, resp.Response)
	assert.NotEmpty(t, resp.SessionID)
}

func TestCategoryConfidences(t *testing.T) {
	router := newTestService(t)

	cases := map[string]float64{
		"what tech do you know": 0.8,
		"show me a project":     0.8,
		"your background?":      0.8,
		"email address please":  0.9,
		"zzz":                   0.6,
	}

	for message, want := range cases {
		rec := doChat(t, router, testAPIKey, message)
		require.Equal(t, http.StatusOK, rec.Code)

		var resp ChatResponse
		require.NoError(t, jsonx.Unmarshal(rec.Body.Bytes(), &resp))
		assert.InDelta(t, want, resp.Confidence, 1e-9, "message: %s", message)
	}
}

func TestChatRequiresAPIKey(t *testing.T) {
	router := newTestService(t)

	for _, key := range []string{"", "wrong"} {
		rec := doChat(t, router, key, "hi")
		assert.Equal(t, http.StatusUnauthorized, rec.Code)
	}
}

func TestSessionAccumulates(t *testing.T) {
	router := newTestService(t)

	first := doChat(t, router, testAPIKey, "hi")
	var resp ChatResponse
	require.NoError(t, jsonx.Unmarshal(first.Body.Bytes(), &resp))

	body, _ := jsonx.Marshal(ChatRequest{Message: "projects?", SessionID: resp.SessionID})
	req := httptest.NewRequest(http.MethodPost, "/chat", bytes.NewReader(body))
	req.Header.Set("X-API-Key", testAPIKey)
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)
	require.Equal(t, http.StatusOK, rec.Code)

	getReq := httptest.NewRequest(http.MethodGet, "/sessions/"+resp.SessionID, nil)
	getRec := httptest.NewRecorder()
	router.ServeHTTP(getRec, getReq)
	require.Equal(t, http.StatusOK, getRec.Code)

	var payload struct {
		SessionID string     `json:"sessionId"`
		Messages  []Exchange `json:"messages"`
	}
	require.NoError(t, jsonx.Unmarshal(getRec.Body.Bytes(), &payload))
	assert.Equal(t, resp.SessionID, payload.SessionID)
	assert.Len(t, payload.Messages, 2)
}

func TestSessionNotFound(t *testing.T) {
	router := newTestService(t)

	req := httptest.NewRequest(http.MethodGet, "/sessions/session_unknown", nil)
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)
	assert.Equal(t, http.StatusNotFound, rec.Code)
}

func TestStatsAndHealth(t *testing.T) {
	router := newTestService(t)
	doChat(t, router, testAPIKey, "hi")

	req := httptest.NewRequest(http.MethodGet, "/stats", nil)
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)
	require.Equal(t, http.StatusOK, rec.Code)

	var stats map[string]interface{}
	require.NoError(t, jsonx.Unmarshal(rec.Body.Bytes(), &stats))
	assert.EqualValues(t, 1, stats["total_sessions"])
	assert.EqualValues(t, 1, stats["total_messages"])

	healthReq := httptest.NewRequest(http.MethodGet, "/health", nil)
	healthRec := httptest.NewRecorder()
	router.ServeHTTP(healthRec, healthReq)
	assert.Equal(t, http.StatusOK, healthRec.Code)
}

func TestReload(t *testing.T) {
	router := newTestService(t)

	req := httptest.NewRequest(http.MethodGet, "/context/reload", nil)
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)
	assert.Equal(t, http.StatusOK, rec.Code)
}

func TestTemplatesUsePortfolioData(t *testing.T) {
	dir := t.TempDir()
	general := `{"name": "Jamie", "email": "jamie@example.com"}`
	require.NoError(t, os.WriteFile(filepath.Join(dir, "general_info.json"), []byte(general), 0o644))

	data := LoadData(dir, zaptest.NewLogger(t))
	assert.Equal(t, "Jamie", data.OwnerName())
	assert.Equal(t, "jamie@example.com", data.Email())

	responder := NewResponder(data)
	for _, tpl := range responder.templates[CategoryContact] {
		assert.NotEmpty(t, tpl)
	}
}
