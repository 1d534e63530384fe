// Package chat runs one chat turn: interpret, recall history, generate,
// suggest follow-ups, and record the exchange in the session store.
package chat

import (
	"context"
	"fmt"
	"strings"
	"time"
	"unicode/utf8"

	"github.com/google/uuid"
	"go.opentelemetry.io/otel/attribute"

	"ingres-assistant/internal/common/errors"
	"ingres-assistant/internal/common/logger"
	"ingres-assistant/internal/common/metrics"
	"ingres-assistant/internal/common/observability"
	"ingres-assistant/internal/models"
	"ingres-assistant/internal/session"
	generateresponse "ingres-assistant/internal/workers/groundwater/generate-response"
	interpretquery "ingres-assistant/internal/workers/groundwater/interpret-query"
	suggestfollowups "ingres-assistant/internal/workers/groundwater/suggest-follow-ups"
)

const (
	// HistoryLimit is how many stored messages are handed to the generator.
	HistoryLimit = 10

	// MaxMessageLength counts characters, as the API binding does.
	MaxMessageLength = 2000
)

type Interpreter interface {
	Interpret(ctx context.Context, message string) interpretquery.Result
}

type Generator interface {
	Generate(ctx context.Context, in *generateresponse.Input) generateresponse.Result
}

type FollowUpSuggester interface {
	Suggest(ctx context.Context, in *suggestfollowups.Input) suggestfollowups.Result
}

type Request struct {
	Message   string `json:"message"`
	SessionID string `json:"sessionId,omitempty"`
	Language  string `json:"language,omitempty"`
}

type Response struct {
	Response    string             `json:"response"`
	SessionID   string             `json:"sessionId"`
	Data        models.Payload     `json:"data"`
	ParsedQuery models.ParsedQuery `json:"parsedQuery"`
}

type Service struct {
	interpreter Interpreter
	generator   Generator
	followUps   FollowUpSuggester
	store       session.Store
	obs         *observability.Observability
	logger      logger.Logger
	now         func() time.Time
}

// NewService wires the pipeline. followUps and obs may be nil.
func NewService(
	interpreter Interpreter,
	generator Generator,
	followUps FollowUpSuggester,
	store session.Store,
	obs *observability.Observability,
	log logger.Logger,
) *Service {
	return &Service{
		interpreter: interpreter,
		generator:   generator,
		followUps:   followUps,
		store:       store,
		obs:         obs,
		logger:      log.With(map[string]interface{}{"component": "chat"}),
		now:         func() time.Time { return time.Now().UTC() },
	}
}

// Chat handles one user message. Model failures are absorbed by the
// pipeline steps; only validation and session store failures are returned.
func (s *Service) Chat(ctx context.Context, req Request) (resp *Response, err error) {
	start := time.Now()
	ctx, span := s.obs.StartSpan(ctx, "chat.turn")
	defer func() {
		observability.EndSpan(span, err)
		metrics.ChatDuration.Observe(time.Since(start).Seconds())
	}()

	message := strings.TrimSpace(req.Message)
	if err := validate(message); err != nil {
		metrics.ChatRequests.WithLabelValues("invalid").Inc()
		return nil, err
	}
	language := models.NormalizeLanguage(req.Language)

	interpreted := s.interpret(ctx, message)
	parsed := interpreted.Query

	existing := s.lookupSession(ctx, req.SessionID)
	var history []models.ChatMessage
	if existing != nil {
		history = models.LastMessages(existing.Messages, HistoryLimit)
	}

	generated := s.generate(ctx, &generateresponse.Input{
		ParsedQuery: parsed,
		Message:     message,
		Language:    language,
		History:     history,
	})

	data := generated.Data
	data.FollowUpQuestions = s.suggest(ctx, message, parsed.State(), language, generated.Source)

	now := s.now()
	userMsg := models.ChatMessage{
		ID:        uuid.NewString(),
		Role:      models.RoleUser,
		Content:   message,
		Timestamp: now,
	}
	assistantMsg := models.ChatMessage{
		ID:        uuid.NewString(),
		Role:      models.RoleAssistant,
		Content:   generated.Response,
		Timestamp: now,
		Data:      &data,
	}

	sess, err := s.record(ctx, existing, userMsg, assistantMsg)
	if err != nil {
		metrics.ChatRequests.WithLabelValues("error").Inc()
		s.logger.Error("failed to record chat turn", map[string]interface{}{
			"sessionId": req.SessionID,
			"error":     err.Error(),
		})
		return nil, err
	}

	outcome := "success"
	if interpreted.Err != nil || generated.Err != nil {
		outcome = "degraded"
	}
	metrics.ChatRequests.WithLabelValues(outcome).Inc()
	span.SetAttributes(
		attribute.String("session.id", sess.ID),
		attribute.String("reply.source", string(generated.Source)),
	)

	s.logger.Info("chat turn completed", map[string]interface{}{
		"sessionId":   sess.ID,
		"intent":      string(parsed.Intent),
		"state":       parsed.State(),
		"source":      string(generated.Source),
		"assessments": len(data.Assessments),
		"outcome":     outcome,
	})

	return &Response{
		Response:    generated.Response,
		SessionID:   sess.ID,
		Data:        data,
		ParsedQuery: parsed,
	}, nil
}

// Session returns a stored conversation.
func (s *Service) Session(ctx context.Context, id string) (*models.ChatSession, error) {
	return s.store.Get(ctx, id)
}

func validate(message string) error {
	if message == "" {
		return errors.NewValidationError("message is required")
	}
	if utf8.RuneCountInString(message) > MaxMessageLength {
		return errors.NewValidationError(fmt.Sprintf("message exceeds %d characters", MaxMessageLength))
	}
	return nil
}

func (s *Service) interpret(ctx context.Context, message string) interpretquery.Result {
	ctx, span := s.obs.StartSpan(ctx, "chat.interpret")
	res := s.interpreter.Interpret(ctx, message)
	s.obs.RecordStep(ctx, "interpret", stepOutcome(res.Err))
	if res.Err != nil {
		observability.EndSpan(span, res.Err)
	} else {
		observability.EndSpan(span, nil)
	}
	return res
}

func (s *Service) generate(ctx context.Context, in *generateresponse.Input) generateresponse.Result {
	ctx, span := s.obs.StartSpan(ctx, "chat.generate")
	res := s.generator.Generate(ctx, in)
	s.obs.RecordStep(ctx, "generate", stepOutcome(res.Err))
	span.SetAttributes(attribute.String("reply.source", string(res.Source)))
	if res.Err != nil {
		observability.EndSpan(span, res.Err)
	} else {
		observability.EndSpan(span, nil)
	}
	return res
}

func (s *Service) suggest(ctx context.Context, message, state, language string, source generateresponse.Source) []string {
	if s.followUps == nil || source == generateresponse.SourceApology {
		return []string{}
	}
	ctx, span := s.obs.StartSpan(ctx, "chat.follow_ups")
	defer span.End()

	res := s.followUps.Suggest(ctx, &suggestfollowups.Input{
		Message:  message,
		State:    state,
		Language: language,
	})
	s.obs.RecordStep(ctx, "follow_ups", stepOutcome(res.Err))
	return res.Questions
}

// lookupSession treats unknown ids and store failures as "no history".
func (s *Service) lookupSession(ctx context.Context, id string) *models.ChatSession {
	if strings.TrimSpace(id) == "" {
		return nil
	}
	sess, err := s.store.Get(ctx, id)
	if err != nil {
		if !errors.HasCode(err, errors.ErrCodeSessionNotFound) {
			s.logger.Warn("session lookup failed, continuing without history", map[string]interface{}{
				"sessionId": id,
				"error":     err.Error(),
			})
		}
		return nil
	}
	return sess
}

// record appends to the existing session, or creates a new one when there
// is none or it vanished since lookup.
func (s *Service) record(ctx context.Context, existing *models.ChatSession, msgs ...models.ChatMessage) (*models.ChatSession, error) {
	if existing != nil {
		updated := append(existing.Messages, msgs...)
		sess, err := s.store.Update(ctx, existing.ID, updated)
		if err == nil {
			return sess, nil
		}
		if !errors.HasCode(err, errors.ErrCodeSessionNotFound) {
			return nil, err
		}
	}
	return s.store.Create(ctx, msgs)
}

func stepOutcome(err *errors.StandardError) string {
	if err == nil {
		return "ok"
	}
	return string(err.Code)
}
