package api

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"ingres-assistant/internal/chat"
	"ingres-assistant/internal/common/config"
	"ingres-assistant/internal/common/errors"
	"ingres-assistant/internal/common/logger"
	"ingres-assistant/internal/models"
	translatetext "ingres-assistant/internal/workers/groundwater/translate-text"
)

// ==========================
// Test Doubles
// ==========================

type fakeChat struct {
	requests []chat.Request
	resp     *chat.Response
	err      error
	sessions map[string]*models.ChatSession
	panics   bool
}

func (f *fakeChat) Chat(ctx context.Context, req chat.Request) (*chat.Response, error) {
	if f.panics {
		panic("boom")
	}
	f.requests = append(f.requests, req)
	return f.resp, f.err
}

func (f *fakeChat) Session(ctx context.Context, id string) (*models.ChatSession, error) {
	if sess, ok := f.sessions[id]; ok {
		return sess, nil
	}
	if id == "broken" {
		return nil, errors.NewSessionStoreError("get", fmt.Errorf("connection refused"))
	}
	return nil, errors.NewSessionNotFoundError(id)
}

type fakeTranslator struct {
	out *translatetext.Output
	err error
}

func (f *fakeTranslator) Execute(ctx context.Context, input *translatetext.Input) (*translatetext.Output, error) {
	return f.out, f.err
}

// ==========================
// Test Helper Functions
// ==========================

func init() {
	gin.SetMode(gin.TestMode)
}

func newTestRouter(t *testing.T, c *fakeChat, tr *fakeTranslator, checks map[string]Check) *gin.Engine {
	t.Helper()
	if c == nil {
		c = &fakeChat{}
	}
	if tr == nil {
		tr = &fakeTranslator{}
	}
	srv := NewServer(Dependencies{
		Config:     config.ServerConfig{Port: "0", CORSAllowOrigins: []string{"http://localhost:5173"}},
		Chat:       c,
		Translator: tr,
		Checks:     checks,
		Logger:     logger.NewTestLogger(t),
	})
	return srv.Router()
}

func doJSON(t *testing.T, router http.Handler, method, path string, body interface{}) *httptest.ResponseRecorder {
	t.Helper()
	var payload []byte
	if body != nil {
		switch b := body.(type) {
		case string:
			payload = []byte(b)
		default:
			var err error
			payload, err = json.Marshal(body)
			require.NoError(t, err)
		}
	}
	req := httptest.NewRequest(method, path, bytes.NewReader(payload))
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)
	return rec
}

func decode(t *testing.T, rec *httptest.ResponseRecorder) map[string]interface{} {
	t.Helper()
	var out map[string]interface{}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &out), rec.Body.String())
	return out
}

// ==========================
// Chat Endpoint Tests
// ==========================

func TestPostChat_Success(t *testing.T) {
	fc := &fakeChat{resp: &chat.Response{
		Response:    "hello there",
		SessionID:   "s-1",
		Data:        models.EmptyPayload(),
		ParsedQuery: models.DefaultParsedQuery(),
	}}
	router := newTestRouter(t, fc, nil, nil)

	rec := doJSON(t, router, http.MethodPost, "/api/chat", map[string]string{
		"message":   "hello",
		"sessionId": "s-1",
		"language":  "hi",
	})
	require.Equal(t, http.StatusOK, rec.Code)

	body := decode(t, rec)
	assert.Equal(t, "hello there", body["response"])
	assert.Equal(t, "s-1", body["sessionId"])
	data := body["data"].(map[string]interface{})
	assert.Equal(t, []interface{}{}, data["assessments"])
	assert.Nil(t, data["statistics"])
	assert.Equal(t, []interface{}{}, data["followUpQuestions"])
	assert.Equal(t, "help", body["parsedQuery"].(map[string]interface{})["intent"])

	require.Len(t, fc.requests, 1)
	assert.Equal(t, chat.Request{Message: "hello", SessionID: "s-1", Language: "hi"}, fc.requests[0])
}

func TestPostChat_Validation(t *testing.T) {
	tests := []struct {
		name string
		body interface{}
	}{
		{"missing message", map[string]string{"sessionId": "x"}},
		{"empty message", map[string]string{"message": ""}},
		{"not json", "{message"},
		{"wrong type", `{"message": 42}`},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			fc := &fakeChat{}
			router := newTestRouter(t, fc, nil, nil)

			rec := doJSON(t, router, http.MethodPost, "/api/chat", tt.body)
			assert.Equal(t, http.StatusBadRequest, rec.Code)
			body := decode(t, rec)
			assert.Equal(t, "Invalid request", body["message"])
			assert.NotEmpty(t, body["error"])
			assert.Empty(t, fc.requests)
		})
	}
}

func TestPostChat_Errors(t *testing.T) {
	tests := []struct {
		name       string
		err        error
		wantStatus int
		wantMsg    string
	}{
		{"service validation", errors.NewValidationError("message is required"), http.StatusBadRequest, "Invalid request"},
		{"store failure", errors.NewSessionStoreError("create", fmt.Errorf("down")), http.StatusInternalServerError, chatApology},
		{"unexpected", fmt.Errorf("nil map"), http.StatusInternalServerError, chatApology},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			router := newTestRouter(t, &fakeChat{err: tt.err}, nil, nil)

			rec := doJSON(t, router, http.MethodPost, "/api/chat", map[string]string{"message": "  "})
			assert.Equal(t, tt.wantStatus, rec.Code)
			body := decode(t, rec)
			assert.Equal(t, tt.wantMsg, body["message"])
			assert.NotEmpty(t, body["error"])
		})
	}
}

func TestPostChat_PanicIsRecovered(t *testing.T) {
	router := newTestRouter(t, &fakeChat{panics: true}, nil, nil)

	rec := doJSON(t, router, http.MethodPost, "/api/chat", map[string]string{"message": "hi"})
	assert.Equal(t, http.StatusInternalServerError, rec.Code)
	assert.Equal(t, chatApology, decode(t, rec)["message"])
}

func TestGetChatSession(t *testing.T) {
	fc := &fakeChat{sessions: map[string]*models.ChatSession{
		"known": {ID: "known", Messages: []models.ChatMessage{{ID: "m1", Role: models.RoleUser, Content: "hi"}}},
	}}
	router := newTestRouter(t, fc, nil, nil)

	rec := doJSON(t, router, http.MethodGet, "/api/chat/known", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	sess := decode(t, rec)["session"].(map[string]interface{})
	assert.Equal(t, "known", sess["id"])
	assert.Len(t, sess["messages"], 1)

	for i := 0; i < 2; i++ {
		rec = doJSON(t, router, http.MethodGet, "/api/chat/unknown", nil)
		assert.Equal(t, http.StatusNotFound, rec.Code)
		assert.Equal(t, "Chat session not found", decode(t, rec)["message"])
	}

	rec = doJSON(t, router, http.MethodGet, "/api/chat/broken", nil)
	assert.Equal(t, http.StatusInternalServerError, rec.Code)
}

// ==========================
// Auxiliary Endpoint Tests
// ==========================

func TestSearchSuggestions(t *testing.T) {
	router := newTestRouter(t, nil, nil, nil)

	rec := doJSON(t, router, http.MethodGet, "/api/search/suggestions", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Len(t, decode(t, rec)["suggestions"], len(searchSuggestions))
}

func TestTranslate(t *testing.T) {
	tests := []struct {
		name       string
		translator *fakeTranslator
		body       interface{}
		wantStatus int
	}{
		{
			name:       "success",
			translator: &fakeTranslator{out: &translatetext.Output{TranslatedText: "नमस्ते"}},
			body:       map[string]string{"text": "hello", "language": "hi"},
			wantStatus: http.StatusOK,
		},
		{
			name:       "missing language",
			translator: &fakeTranslator{},
			body:       map[string]string{"text": "hello"},
			wantStatus: http.StatusBadRequest,
		},
		{
			name:       "validation from translator",
			translator: &fakeTranslator{err: errors.NewValidationError("text is required")},
			body:       map[string]string{"text": " ", "language": "hi"},
			wantStatus: http.StatusBadRequest,
		},
		{
			name:       "model failure",
			translator: &fakeTranslator{err: errors.NewTranslationFailedError(fmt.Errorf("busy"))},
			body:       map[string]string{"text": "hello", "language": "hi"},
			wantStatus: http.StatusBadGateway,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			router := newTestRouter(t, nil, tt.translator, nil)

			rec := doJSON(t, router, http.MethodPost, "/api/translate", tt.body)
			assert.Equal(t, tt.wantStatus, rec.Code)
			body := decode(t, rec)
			if tt.wantStatus == http.StatusOK {
				assert.Equal(t, "नमस्ते", body["translatedText"])
			} else {
				assert.NotEmpty(t, body["message"])
			}
		})
	}
}

func TestLegacyEndpointsReturnGuidance(t *testing.T) {
	router := newTestRouter(t, nil, nil, nil)

	for _, path := range []string{"/api/groundwater/assessments", "/api/groundwater/statistics/Punjab"} {
		rec := doJSON(t, router, http.MethodGet, path, nil)
		require.Equal(t, http.StatusOK, rec.Code, path)
		body := decode(t, rec)
		assert.Equal(t, "/api/chat", body["endpoint"])
		assert.Contains(t, body["message"], "POST /api/chat")
	}
}

func TestHealthAndReady(t *testing.T) {
	router := newTestRouter(t, nil, nil, map[string]Check{
		"dataset": func(ctx context.Context) error { return nil },
	})
	rec := doJSON(t, router, http.MethodGet, "/health", nil)
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "ok", decode(t, rec)["status"])

	rec = doJSON(t, router, http.MethodGet, "/ready", nil)
	assert.Equal(t, http.StatusOK, rec.Code)

	router = newTestRouter(t, nil, nil, map[string]Check{
		"redis": func(ctx context.Context) error { return fmt.Errorf("connection refused") },
	})
	rec = doJSON(t, router, http.MethodGet, "/ready", nil)
	assert.Equal(t, http.StatusServiceUnavailable, rec.Code)
	checks := decode(t, rec)["checks"].(map[string]interface{})
	assert.Equal(t, "connection refused", checks["redis"])
}

func TestMetricsEndpoint(t *testing.T) {
	router := newTestRouter(t, nil, nil, nil)
	rec := doJSON(t, router, http.MethodGet, "/metrics", nil)
	assert.Equal(t, http.StatusOK, rec.Code)
}

func TestCORS(t *testing.T) {
	router := newTestRouter(t, nil, nil, nil)

	req := httptest.NewRequest(http.MethodOptions, "/api/chat", nil)
	req.Header.Set("Origin", "http://localhost:5173")
	req.Header.Set("Access-Control-Request-Method", "POST")
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)

	assert.Equal(t, "http://localhost:5173", rec.Header().Get("Access-Control-Allow-Origin"))
}

func TestCORSConfig(t *testing.T) {
	cfg := corsConfig([]string{"*"})
	assert.True(t, cfg.AllowAllOrigins)
	assert.False(t, cfg.AllowCredentials)
	assert.Empty(t, cfg.AllowOrigins)

	cfg = corsConfig(nil)
	assert.True(t, cfg.AllowAllOrigins)

	cfg = corsConfig([]string{"https://ingres.example"})
	assert.False(t, cfg.AllowAllOrigins)
	assert.True(t, cfg.AllowCredentials)
	assert.Equal(t, []string{"https://ingres.example"}, cfg.AllowOrigins)
}
