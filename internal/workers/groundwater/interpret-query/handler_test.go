// internal/workers/groundwater/interpret-query/handler_test.go
package interpretquery

import (
	"context"
	"encoding/json"
	"fmt"
	"testing"
	"time"

	"github.com/go-redis/redismock/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"ingres-assistant/internal/common/database"
	"ingres-assistant/internal/common/errors"
	"ingres-assistant/internal/common/genai"
	"ingres-assistant/internal/models"
)

// ==========================
// Test Logger Implementation
// ==========================

type TestLogger struct {
	t      *testing.T
	fields map[string]interface{}
}

func NewTestLogger(t *testing.T) *TestLogger {
	return &TestLogger{t: t, fields: make(map[string]interface{})}
}

func (l *TestLogger) Info(msg string, fields map[string]interface{}) {
	l.t.Logf("INFO: %s %v %v", msg, l.fields, fields)
}

func (l *TestLogger) Warn(msg string, fields map[string]interface{}) {
	l.t.Logf("WARN: %s %v %v", msg, l.fields, fields)
}

func (l *TestLogger) Error(msg string, fields map[string]interface{}) {
	l.t.Logf("ERROR: %s %v %v", msg, l.fields, fields)
}

func (l *TestLogger) With(fields map[string]interface{}) Logger {
	merged := make(map[string]interface{}, len(l.fields)+len(fields))
	for k, v := range l.fields {
		merged[k] = v
	}
	for k, v := range fields {
		merged[k] = v
	}
	return &TestLogger{t: l.t, fields: merged}
}

// ==========================
// Test Helper Functions
// ==========================

func createTestConfig() *Config {
	return &Config{Timeout: 2 * time.Second}
}

func createTestHandler(t *testing.T, model genai.Model, cache Cache, cfg *Config) *Handler {
	if cfg == nil {
		cfg = createTestConfig()
	}
	return NewHandler(cfg, model, cache, NewTestLogger(t))
}

func intPtr(v int) *int { return &v }

// ==========================
// Core Functionality Tests
// ==========================

func TestHandler_Interpret_Success(t *testing.T) {
	tests := []struct {
		name     string
		reply    string
		expected models.ParsedQuery
	}{
		{
			name:  "state and year",
			reply: `{"intent":"query_status","location":{"state":"Gujarat"},"dataType":"status","year":2025,"language":"en"}`,
			expected: models.ParsedQuery{
				Intent:   models.IntentQueryStatus,
				Location: &models.Location{State: "Gujarat"},
				DataType: "status",
				Year:     intPtr(2025),
				Language: "en",
			},
		},
		{
			name:  "greeting without location",
			reply: `{"intent":"help","language":"en"}`,
			expected: models.ParsedQuery{
				Intent:   models.IntentHelp,
				Language: "en",
			},
		},
		{
			name:  "nulls and empty location are dropped",
			reply: `{"intent":"overview","location":{"state":null,"district":""},"dataType":null,"year":null,"language":"HI"}`,
			expected: models.ParsedQuery{
				Intent:   models.IntentOverview,
				Language: "hi",
			},
		},
		{
			name:  "fenced json",
			reply: "```json\n{\"intent\":\"historical_data\",\"location\":{\"state\":\"Rajasthan\"},\"language\":\"en\"}\n```",
			expected: models.ParsedQuery{
				Intent:   models.IntentHistoricalData,
				Location: &models.Location{State: "Rajasthan"},
				Language: "en",
			},
		},
		{
			name:  "year written as a float",
			reply: `{"intent":"query_status","location":{"state":"Gujarat"},"year":2025.0,"language":"en"}`,
			expected: models.ParsedQuery{
				Intent:   models.IntentQueryStatus,
				Location: &models.Location{State: "Gujarat"},
				Year:     intPtr(2025),
				Language: "en",
			},
		},
		{
			name:  "empty dataType is dropped",
			reply: `{"intent":"query_status","location":{"state":"Gujarat"},"dataType":"","year":2025,"language":"en"}`,
			expected: models.ParsedQuery{
				Intent:   models.IntentQueryStatus,
				Location: &models.Location{State: "Gujarat"},
				Year:     intPtr(2025),
				Language: "en",
			},
		},
		{
			name:  "free text dataType is dropped",
			reply: `{"intent":"query_status","location":{"state":"Kerala"},"dataType":"groundwater levels","language":"en"}`,
			expected: models.ParsedQuery{
				Intent:   models.IntentQueryStatus,
				Location: &models.Location{State: "Kerala"},
				Language: "en",
			},
		},
		{
			name:  "non-string dataType is dropped",
			reply: `{"intent":"overview","dataType":7,"language":"en"}`,
			expected: models.ParsedQuery{
				Intent:   models.IntentOverview,
				Language: "en",
			},
		},
		{
			name:  "dataType is case-folded",
			reply: `{"intent":"query_status","location":{"state":"Punjab"},"dataType":" Extraction ","language":"en"}`,
			expected: models.ParsedQuery{
				Intent:   models.IntentQueryStatus,
				Location: &models.Location{State: "Punjab"},
				DataType: "extraction",
				Language: "en",
			},
		},
		{
			name:  "blank language defaults to english",
			reply: `{"intent":"comparison","location":{"state":"Punjab"},"language":" "}`,
			expected: models.ParsedQuery{
				Intent:   models.IntentComparison,
				Location: &models.Location{State: "Punjab"},
				Language: "en",
			},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			model := genai.NewScriptedModel().Enqueue(genai.OpInterpret, genai.Reply{Text: tt.reply})
			handler := createTestHandler(t, model, nil, nil)

			res := handler.Interpret(context.Background(), "some question")
			assert.Nil(t, res.Err)
			assert.Equal(t, tt.expected, res.Query)

			calls := model.CallsFor(genai.OpInterpret)
			require.Len(t, calls, 1)
			assert.Equal(t, "some question", calls[0].Content)
			require.NotNil(t, calls[0].ResponseSchema)
			assert.Equal(t, models.DataTypes, calls[0].ResponseSchema.Properties["dataType"].Enum)
		})
	}
}

func TestHandler_Interpret_FailsOpen(t *testing.T) {
	tests := []struct {
		name     string
		reply    genai.Reply
		wantCode errors.ErrorCode
	}{
		{"upstream busy", genai.Reply{Err: errors.NewUpstreamBusyError(503, "overloaded")}, errors.ErrCodeUpstreamBusy},
		{"upstream timeout", genai.Reply{Err: errors.NewUpstreamTimeoutError(context.DeadlineExceeded)}, errors.ErrCodeUpstreamTimeout},
		{"not json", genai.Reply{Text: "I think you mean Gujarat"}, errors.ErrCodeUpstreamMalformed},
		{"unknown intent", genai.Reply{Text: `{"intent":"smalltalk","language":"en"}`}, errors.ErrCodeUpstreamMalformed},
		{"missing language", genai.Reply{Text: `{"intent":"help"}`}, errors.ErrCodeUpstreamMalformed},
		{"year as text", genai.Reply{Text: `{"intent":"help","language":"en","year":"2025"}`}, errors.ErrCodeUpstreamMalformed},
		{"fractional year", genai.Reply{Text: `{"intent":"help","language":"en","year":2025.5}`}, errors.ErrCodeUpstreamMalformed},
		{"plain error", genai.Reply{Err: fmt.Errorf("socket closed")}, errors.ErrCodeInternal},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			model := genai.NewScriptedModel().Enqueue(genai.OpInterpret, tt.reply)
			handler := createTestHandler(t, model, nil, nil)

			res := handler.Interpret(context.Background(), "hello")
			require.NotNil(t, res.Err)
			assert.Equal(t, tt.wantCode, res.Err.Code)
			assert.Equal(t, models.DefaultParsedQuery(), res.Query)
		})
	}
}

func TestHandler_Execute(t *testing.T) {
	t.Run("rejects empty message", func(t *testing.T) {
		handler := createTestHandler(t, genai.NewScriptedModel(), nil, nil)
		_, err := handler.Execute(context.Background(), &Input{Message: "  "})
		require.Error(t, err)
		assert.True(t, errors.HasCode(err, errors.ErrCodeValidationFailed))
	})

	t.Run("marks degraded output", func(t *testing.T) {
		model := genai.NewScriptedModel().Enqueue(genai.OpInterpret, genai.Reply{Err: errors.NewUpstreamBusyError(429, "")})
		handler := createTestHandler(t, model, nil, nil)

		out, err := handler.Execute(context.Background(), &Input{Message: "status of Punjab"})
		require.NoError(t, err)
		assert.True(t, out.Degraded)
		assert.Equal(t, "UPSTREAM_BUSY", out.ErrorCode)
		assert.Equal(t, models.IntentHelp, out.ParsedQuery.Intent)
	})
}

// ==========================
// Cache Tests
// ==========================

func TestCacheKey_Normalizes(t *testing.T) {
	assert.Equal(t, CacheKey("Status of  Punjab"), CacheKey("  status of punjab "))
	assert.NotEqual(t, CacheKey("status of punjab"), CacheKey("status of kerala"))
	assert.Contains(t, CacheKey("x"), cacheKeyPrefix)
}

func TestHandler_Interpret_CacheMissThenStore(t *testing.T) {
	redisClient, redisMock := redismock.NewClientMock()
	cache := NewRedisCache(database.NewRedisFromClient(redisClient))

	message := "Latest status of Punjab"
	expected := models.ParsedQuery{
		Intent:   models.IntentQueryStatus,
		Location: &models.Location{State: "Punjab"},
		Language: "en",
	}
	cached, _ := json.Marshal(expected)

	redisMock.ExpectGet(CacheKey(message)).RedisNil()
	redisMock.ExpectSet(CacheKey(message), cached, 10*time.Minute).SetVal("OK")

	model := genai.NewScriptedModel().Enqueue(genai.OpInterpret, genai.Reply{
		Text: `{"intent":"query_status","location":{"state":"Punjab"},"language":"en"}`,
	})
	handler := createTestHandler(t, model, cache, &Config{Timeout: time.Second, CacheTTL: 10 * time.Minute})

	res := handler.Interpret(context.Background(), message)
	assert.Nil(t, res.Err)
	assert.False(t, res.Cached)
	assert.Equal(t, expected, res.Query)
	assert.NoError(t, redisMock.ExpectationsWereMet())
}

func TestHandler_Interpret_CacheHitSkipsModel(t *testing.T) {
	redisClient, redisMock := redismock.NewClientMock()
	cache := NewRedisCache(database.NewRedisFromClient(redisClient))

	message := "status of kerala"
	cached, _ := json.Marshal(models.ParsedQuery{
		Intent:   models.IntentQueryStatus,
		Location: &models.Location{State: "Kerala"},
		Language: "en",
	})
	redisMock.ExpectGet(CacheKey(message)).SetVal(string(cached))

	model := genai.NewScriptedModel()
	handler := createTestHandler(t, model, cache, &Config{Timeout: time.Second, CacheTTL: time.Minute})

	res := handler.Interpret(context.Background(), message)
	assert.True(t, res.Cached)
	assert.Equal(t, "Kerala", res.Query.State())
	assert.Empty(t, model.Calls())
	assert.NoError(t, redisMock.ExpectationsWereMet())
}

func TestHandler_Interpret_CacheErrorsAreIgnored(t *testing.T) {
	redisClient, redisMock := redismock.NewClientMock()
	cache := NewRedisCache(database.NewRedisFromClient(redisClient))

	message := "hello"
	redisMock.ExpectGet(CacheKey(message)).SetErr(fmt.Errorf("connection refused"))
	cached, _ := json.Marshal(models.ParsedQuery{Intent: models.IntentHelp, Language: "en"})
	redisMock.ExpectSet(CacheKey(message), cached, time.Minute).SetErr(fmt.Errorf("connection refused"))

	model := genai.NewScriptedModel().Enqueue(genai.OpInterpret, genai.Reply{Text: `{"intent":"help","language":"en"}`})
	handler := createTestHandler(t, model, cache, &Config{Timeout: time.Second, CacheTTL: time.Minute})

	res := handler.Interpret(context.Background(), message)
	assert.Nil(t, res.Err)
	assert.Equal(t, models.IntentHelp, res.Query.Intent)
	assert.NoError(t, redisMock.ExpectationsWereMet())
}

func TestHandler_Interpret_FailuresAreNotCached(t *testing.T) {
	redisClient, redisMock := redismock.NewClientMock()
	cache := NewRedisCache(database.NewRedisFromClient(redisClient))

	redisMock.ExpectGet(CacheKey("hello")).RedisNil()

	model := genai.NewScriptedModel().Enqueue(genai.OpInterpret, genai.Reply{Err: errors.NewUpstreamBusyError(503, "")})
	handler := createTestHandler(t, model, cache, &Config{Timeout: time.Second, CacheTTL: time.Minute})

	res := handler.Interpret(context.Background(), "hello")
	require.NotNil(t, res.Err)
	assert.NoError(t, redisMock.ExpectationsWereMet())
}

// ==========================
// Benchmarks
// ==========================

type BenchmarkLogger struct{}

func (b *BenchmarkLogger) Info(msg string, fields map[string]interface{})  {}
func (b *BenchmarkLogger) Warn(msg string, fields map[string]interface{})  {}
func (b *BenchmarkLogger) Error(msg string, fields map[string]interface{}) {}
func (b *BenchmarkLogger) With(fields map[string]interface{}) Logger       { return b }

func BenchmarkHandler_Interpret(b *testing.B) {
	model := genai.NewScriptedModel().Fallback(genai.OpInterpret, func(genai.Request) genai.Reply {
		return genai.Reply{Text: `{"intent":"query_status","location":{"state":"Gujarat"},"year":2025,"language":"en"}`}
	})
	handler := NewHandler(createTestConfig(), model, nil, &BenchmarkLogger{})

	b.ResetTimer()
	for i := 0; i < b.N; i++ {
		handler.Interpret(context.Background(), "What is the groundwater status in Gujarat 2025?")
	}
}
