package genai

import (
	"context"
	"encoding/json"
	stderrors "errors"
	"fmt"
	"net"
	"net/http"
	"strings"
	"time"
	"unicode/utf8"

	gensdk "google.golang.org/genai"

	"ingres-assistant/internal/common/config"
	"ingres-assistant/internal/common/errors"
	"ingres-assistant/internal/common/validation"
)

// GeminiClient calls generateContent through the Gemini API SDK.
type GeminiClient struct {
	client          *gensdk.Client
	model           string
	timeout         time.Duration
	maxOutputTokens int32
}

// NewGeminiClient builds a client for cfg. Without an API key it still
// returns a client whose calls fail with UPSTREAM_FAILED.
func NewGeminiClient(ctx context.Context, cfg config.GenAIConfig) (*GeminiClient, error) {
	g := &GeminiClient{
		model:           cfg.Model,
		timeout:         config.GetDuration(cfg.Timeout),
		maxOutputTokens: int32(cfg.MaxOutputTokens),
	}
	if cfg.APIKey == "" {
		return g, nil
	}

	client, err := gensdk.NewClient(ctx, &gensdk.ClientConfig{
		APIKey:  cfg.APIKey,
		Backend: gensdk.BackendGeminiAPI,
		HTTPOptions: gensdk.HTTPOptions{
			BaseURL:    cfg.BaseURL,
			APIVersion: cfg.APIVersion,
		},
	})
	if err != nil {
		return nil, fmt.Errorf("failed to create gemini client: %w", err)
	}
	g.client = client
	return g, nil
}

func (g *GeminiClient) Generate(ctx context.Context, req Request) (string, error) {
	if g.client == nil {
		return "", errors.NewUpstreamFailedError(fmt.Errorf("genai.api_key is not configured"))
	}

	genCfg := &gensdk.GenerateContentConfig{MaxOutputTokens: g.maxOutputTokens}
	if req.SystemInstruction != "" {
		genCfg.SystemInstruction = &gensdk.Content{Parts: []*gensdk.Part{{Text: req.SystemInstruction}}}
	}
	if req.ResponseSchema != nil {
		genCfg.ResponseMIMEType = "application/json"
		genCfg.ResponseSchema = geminiSchema(*req.ResponseSchema)
	}

	if g.timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, g.timeout)
		defer cancel()
	}

	resp, err := g.client.Models.GenerateContent(ctx, g.model, gensdk.Text(req.Content), genCfg)
	if err != nil {
		return "", upstreamError(ctx, err)
	}

	if resp.PromptFeedback != nil && resp.PromptFeedback.BlockReason != "" {
		return "", errors.NewUpstreamMalformedError("prompt blocked: " + string(resp.PromptFeedback.BlockReason))
	}
	if len(resp.Candidates) == 0 || resp.Candidates[0] == nil {
		return "", errors.NewUpstreamMalformedError("no candidates")
	}

	text := strings.TrimSpace(resp.Text())
	if text == "" {
		return "", errors.NewUpstreamMalformedError("empty candidate text, finishReason=" + string(resp.Candidates[0].FinishReason))
	}
	return text, nil
}

// upstreamError maps an SDK failure onto the UPSTREAM_* codes. 429 and 503
// mean the service is busy.
func upstreamError(ctx context.Context, err error) error {
	var apiErr gensdk.APIError
	if stderrors.As(err, &apiErr) {
		switch apiErr.Code {
		case http.StatusTooManyRequests, http.StatusServiceUnavailable:
			return errors.NewUpstreamBusyError(apiErr.Code, truncate(apiErr.Message, 200))
		}
		return errors.NewUpstreamFailedError(fmt.Errorf("gemini returned %d: %s", apiErr.Code, truncate(apiErr.Message, 200))).
			WithMetadata("status", apiErr.Code)
	}
	if isTimeout(ctx, err) {
		return errors.NewUpstreamTimeoutError(err)
	}
	var syntaxErr *json.SyntaxError
	var typeErr *json.UnmarshalTypeError
	if stderrors.As(err, &syntaxErr) || stderrors.As(err, &typeErr) {
		return errors.NewUpstreamMalformedError(truncate(fmt.Sprintf("decode response: %v", err), 200))
	}
	return errors.NewUpstreamFailedError(err)
}

func isTimeout(ctx context.Context, err error) bool {
	if stderrors.Is(err, context.DeadlineExceeded) || stderrors.Is(ctx.Err(), context.DeadlineExceeded) {
		return true
	}
	var netErr net.Error
	return stderrors.As(err, &netErr) && netErr.Timeout()
}

// geminiSchema converts a JSON schema into the OpenAPI subset Gemini accepts:
// upper-case type names and a nullable flag instead of type unions.
func geminiSchema(s validation.JSONSchema) *gensdk.Schema {
	return &gensdk.Schema{
		Type:       gensdk.Type(strings.ToUpper(s.Type)),
		Properties: geminiProperties(s.Properties),
		Required:   s.Required,
	}
}

func geminiProperties(props map[string]validation.Property) map[string]*gensdk.Schema {
	if len(props) == 0 {
		return nil
	}
	out := make(map[string]*gensdk.Schema, len(props))
	for name, p := range props {
		out[name] = geminiProperty(p)
	}
	return out
}

func geminiProperty(p validation.Property) *gensdk.Schema {
	out := &gensdk.Schema{
		Type:        gensdk.Type(strings.ToUpper(p.Type)),
		Description: p.Description,
		Enum:        p.Enum,
		Properties:  geminiProperties(p.Properties),
		Required:    p.Required,
		Minimum:     p.Minimum,
		Maximum:     p.Maximum,
	}
	if p.Nullable {
		out.Nullable = gensdk.Ptr(true)
	}
	if p.MinLength != nil {
		out.MinLength = gensdk.Ptr(int64(*p.MinLength))
	}
	if p.MaxItems != nil {
		out.MaxItems = gensdk.Ptr(int64(*p.MaxItems))
	}
	if p.Items != nil {
		out.Items = geminiProperty(*p.Items)
	}
	return out
}

// truncate cuts s to at most maxLen bytes on a rune boundary.
func truncate(s string, maxLen int) string {
	if len(s) <= maxLen {
		return s
	}
	cut := maxLen
	for cut > 0 && !utf8.RuneStart(s[cut]) {
		cut--
	}
	return s[:cut] + "..."
}
