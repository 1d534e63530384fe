// Package genai is the boundary to the hosted language model.
package genai

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"
	"time"

	"ingres-assistant/internal/common/errors"
	"ingres-assistant/internal/common/metrics"
	"ingres-assistant/internal/common/validation"
)

// Operations label model calls in logs and metrics.
const (
	OpInterpret = "interpret"
	OpGenerate  = "generate"
	OpFollowUps = "follow_ups"
	OpTranslate = "translate"
)

// Request is one model call: a system instruction, an optional output
// schema and the user content.
type Request struct {
	Operation         string
	SystemInstruction string
	ResponseSchema    *validation.JSONSchema
	Content           string
}

// Model returns the raw text produced for req. Errors are *errors.StandardError
// with one of the UPSTREAM_* codes.
type Model interface {
	Generate(ctx context.Context, req Request) (string, error)
}

// Instrumented counts and times every call made through next.
func Instrumented(next Model) Model {
	return &instrumented{next: next}
}

type instrumented struct {
	next Model
}

func (m *instrumented) Generate(ctx context.Context, req Request) (string, error) {
	start := time.Now()
	text, err := m.next.Generate(ctx, req)
	metrics.LLMCallDuration.WithLabelValues(req.Operation).Observe(time.Since(start).Seconds())

	outcome := "success"
	if err != nil {
		outcome = string(errors.As(err).Code)
	}
	metrics.LLMCalls.WithLabelValues(req.Operation, outcome).Inc()

	return text, err
}

// DecodeJSON validates model text against schema and unmarshals it into dest.
// Markdown code fences around the JSON are tolerated. Any failure is
// UPSTREAM_MALFORMED.
func DecodeJSON(text string, schema validation.JSONSchema, dest interface{}) error {
	raw := []byte(StripCodeFence(text))
	if result := validation.ValidateJSON(raw, schema); !result.Valid {
		return errors.NewUpstreamMalformedError(strings.Join(result.GetErrorMessages(), "; "))
	}
	if err := json.Unmarshal(raw, dest); err != nil {
		return errors.NewUpstreamMalformedError(fmt.Sprintf("decode: %v", err))
	}
	return nil
}

// StripCodeFence removes a surrounding ```json fence, if any.
func StripCodeFence(text string) string {
	t := strings.TrimSpace(text)
	if !strings.HasPrefix(t, "```") {
		return t
	}
	t = strings.TrimPrefix(t, "```json")
	t = strings.TrimPrefix(t, "```")
	t = strings.TrimSuffix(t, "```")
	return strings.TrimSpace(t)
}
