// internal/workers/groundwater/translate-text/handler_test.go
package translatetext

import (
	"context"
	stderrors "errors"
	"strings"
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

func (l *TestLogger) Error(msg string, fields map[string]interface{}) {
	l.t.Logf("ERROR: %s %v", msg, fields)
}

func (l *TestLogger) With(fields map[string]interface{}) Logger {
	return l
}

func createTestHandler(t *testing.T, model genai.Model) *Handler {
	return NewHandler(&Config{Timeout: time.Second}, model, &TestLogger{t: t})
}

func TestHandler_Execute_Success(t *testing.T) {
	model := genai.NewScriptedModel().EnqueueJSON(genai.OpTranslate, map[string]string{
		"translatedText": " गुजरात सुरक्षित श्रेणी में है। ",
	})
	handler := createTestHandler(t, model)

	out, err := handler.Execute(context.Background(), &Input{Text: "Gujarat is in the Safe category.", Language: "HI"})
	require.NoError(t, err)
	assert.Equal(t, "गुजरात सुरक्षित श्रेणी में है।", out.TranslatedText)

	calls := model.CallsFor(genai.OpTranslate)
	require.Len(t, calls, 1)
	assert.Equal(t, "Gujarat is in the Safe category.", calls[0].Content)
	assert.Contains(t, calls[0].SystemInstruction, "into Hindi")
}

func TestHandler_Execute_LengthCountsCharacters(t *testing.T) {
	text := strings.Repeat("न", maxTextLength)
	require.Greater(t, len(text), maxTextLength)

	model := genai.NewScriptedModel().EnqueueJSON(genai.OpTranslate, map[string]string{"translatedText": "n"})
	handler := createTestHandler(t, model)

	_, err := handler.Execute(context.Background(), &Input{Text: text, Language: "en"})
	require.NoError(t, err)
	assert.Len(t, model.CallsFor(genai.OpTranslate), 1)
}

func TestHandler_Execute_Validation(t *testing.T) {
	tests := []struct {
		name  string
		input *Input
	}{
		{"nil input", nil},
		{"empty text", &Input{Text: " ", Language: "hi"}},
		{"empty language", &Input{Text: "hello", Language: ""}},
		{"too long", &Input{Text: strings.Repeat("a", maxTextLength+1), Language: "hi"}},
		{"too many characters", &Input{Text: strings.Repeat("न", maxTextLength+1), Language: "hi"}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			model := genai.NewScriptedModel()
			handler := createTestHandler(t, model)

			_, err := handler.Execute(context.Background(), tt.input)
			require.Error(t, err)
			assert.True(t, errors.HasCode(err, errors.ErrCodeValidationFailed))
			assert.Empty(t, model.Calls())
		})
	}
}

func TestHandler_Execute_Failures(t *testing.T) {
	tests := []struct {
		name  string
		reply genai.Reply
		is    error
	}{
		{name: "busy", reply: genai.Reply{Err: errors.NewUpstreamBusyError(429, "")}},
		{name: "timeout", reply: genai.Reply{Err: errors.NewUpstreamTimeoutError(context.DeadlineExceeded)}, is: context.DeadlineExceeded},
		{name: "not json", reply: genai.Reply{Text: "नमस्ते"}},
		{name: "empty translation", reply: genai.Reply{Text: `{"translatedText":"  "}`}, is: ErrEmptyTranslation},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			model := genai.NewScriptedModel().Enqueue(genai.OpTranslate, tt.reply)
			handler := createTestHandler(t, model)

			_, err := handler.Execute(context.Background(), &Input{Text: "hello", Language: "ta"})
			require.Error(t, err)
			assert.Equal(t, errors.ErrCodeTranslationFailed, errors.As(err).Code)
			if tt.is != nil {
				assert.True(t, stderrors.Is(err, tt.is))
			}
		})
	}
}

func TestHandler_Execute_OfflineModelEchoes(t *testing.T) {
	handler := createTestHandler(t, genai.NewOfflineModel())

	out, err := handler.Execute(context.Background(), &Input{Text: "Punjab is over-exploited.", Language: "kn"})
	require.NoError(t, err)
	assert.Equal(t, "Punjab is over-exploited.", out.TranslatedText)
}
