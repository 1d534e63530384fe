// internal/workers/groundwater/suggest-follow-ups/handler_test.go
package suggestfollowups

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"ingres-assistant/internal/common/errors"
	"ingres-assistant/internal/common/genai"
)

type TestLogger struct {
	t *testing.T
}

func (l *TestLogger) Info(msg string, fields map[string]interface{}) {
	l.t.Logf("INFO: %s %v", msg, fields)
}

func (l *TestLogger) Warn(msg string, fields map[string]interface{}) {
	l.t.Logf("WARN: %s %v", msg, fields)
}

func (l *TestLogger) Error(msg string, fields map[string]interface{}) {
	l.t.Logf("ERROR: %s %v", msg, fields)
}

func (l *TestLogger) With(fields map[string]interface{}) Logger {
	return l
}

func createTestHandler(t *testing.T, model genai.Model, enabled bool) *Handler {
	return NewHandler(&Config{Enabled: enabled, Timeout: time.Second}, model, &TestLogger{t: t})
}

func TestHandler_Suggest(t *testing.T) {
	tests := []struct {
		name     string
		reply    genai.Reply
		expected []string
		wantErr  errors.ErrorCode
	}{
		{
			name:     "three questions",
			reply:    genai.Reply{Text: `{"questions":["How has Punjab changed since 2020?","Which districts are worst?","Compare with Haryana"]}`},
			expected: []string{"How has Punjab changed since 2020?", "Which districts are worst?", "Compare with Haryana"},
		},
		{
			name:     "capped to three",
			reply:    genai.Reply{Text: `{"questions":["a","b","c","d","e"]}`},
			expected: []string{"a", "b", "c"},
		},
		{
			name:     "blanks and duplicates removed",
			reply:    genai.Reply{Text: `{"questions":[" a ","","a","b"]}`},
			expected: []string{"a", "b"},
		},
		{
			name:     "empty list",
			reply:    genai.Reply{Text: `{"questions":[]}`},
			expected: []string{},
		},
		{
			name:     "busy",
			reply:    genai.Reply{Err: errors.NewUpstreamBusyError(503, "")},
			expected: []string{},
			wantErr:  errors.ErrCodeUpstreamBusy,
		},
		{
			name:     "wrong shape",
			reply:    genai.Reply{Text: `{"questions":"a"}`},
			expected: []string{},
			wantErr:  errors.ErrCodeUpstreamMalformed,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			model := genai.NewScriptedModel().Enqueue(genai.OpFollowUps, tt.reply)
			handler := createTestHandler(t, model, true)

			res := handler.Suggest(context.Background(), &Input{Message: "Punjab status", State: "Punjab"})
			require.NotNil(t, res.Questions)
			assert.Equal(t, tt.expected, res.Questions)
			if tt.wantErr == "" {
				assert.Nil(t, res.Err)
			} else {
				require.NotNil(t, res.Err)
				assert.Equal(t, tt.wantErr, res.Err.Code)
			}
		})
	}
}

func TestHandler_Suggest_Context(t *testing.T) {
	tests := []struct {
		name     string
		state    string
		language string
		subject  string
		langName string
	}{
		{"named state", "Gujarat", "en", "about Gujarat.", "English"},
		{"no state", "", "hi", "about various regions.", "Hindi"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			model := genai.NewScriptedModel().Enqueue(genai.OpFollowUps, genai.Reply{Text: `{"questions":[]}`})
			handler := createTestHandler(t, model, true)

			handler.Suggest(context.Background(), &Input{Message: "status please", State: tt.state, Language: tt.language})

			calls := model.CallsFor(genai.OpFollowUps)
			require.Len(t, calls, 1)
			assert.Equal(t, `Context: User asked: "status please". AI responded with groundwater data `+tt.subject, calls[0].Content)
			assert.Contains(t, calls[0].SystemInstruction, tt.langName)
		})
	}
}

func TestHandler_Suggest_Disabled(t *testing.T) {
	model := genai.NewScriptedModel()
	handler := createTestHandler(t, model, false)

	res := handler.Suggest(context.Background(), &Input{Message: "hello"})
	assert.Equal(t, []string{}, res.Questions)
	assert.Nil(t, res.Err)
	assert.Empty(t, model.Calls())
}

func TestHandler_Execute(t *testing.T) {
	handler := createTestHandler(t, genai.NewScriptedModel(), true)

	_, err := handler.Execute(context.Background(), &Input{})
	require.Error(t, err)
	assert.True(t, errors.HasCode(err, errors.ErrCodeValidationFailed))

	out, err := handler.Execute(context.Background(), &Input{Message: "hello"})
	require.NoError(t, err)
	assert.Equal(t, []string{}, out.Questions)
}
