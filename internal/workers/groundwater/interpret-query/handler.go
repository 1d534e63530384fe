package interpretquery

import (
	"context"
	"encoding/json"
	"fmt"
	"math"
	"strings"

	"github.com/camunda/zeebe/clients/go/v8/pkg/entities"
	"github.com/camunda/zeebe/clients/go/v8/pkg/worker"

	"ingres-assistant/internal/common/config"
	"ingres-assistant/internal/common/errors"
	"ingres-assistant/internal/common/genai"
	"ingres-assistant/internal/common/metrics"
	"ingres-assistant/internal/models"
)

const (
	TaskType = config.WorkerInterpretQuery
)

// Logger interface definition
type Logger interface {
	Info(msg string, fields map[string]interface{})
	Warn(msg string, fields map[string]interface{})
	Error(msg string, fields map[string]interface{})
	With(fields map[string]interface{}) Logger
}

type Handler struct {
	config       *Config
	model        genai.Model
	cache        Cache
	logger       Logger
	errorHandler *errors.ErrorHandler
}

// NewHandler builds the interpreter. cache may be nil.
func NewHandler(config *Config, model genai.Model, cache Cache, log Logger) *Handler {
	log = log.With(map[string]interface{}{
		"taskType": TaskType,
	})
	return &Handler{
		config:       config,
		model:        model,
		cache:        cache,
		logger:       log,
		errorHandler: errors.NewErrorHandler(log),
	}
}

// Interpret never fails: when the model cannot be used the default help
// query is returned with Err describing why.
func (h *Handler) Interpret(ctx context.Context, message string) Result {
	if q, ok := h.cached(ctx, message); ok {
		return Result{Query: q, Cached: true}
	}

	if h.config.Timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, h.config.Timeout)
		defer cancel()
	}

	q, err := h.execute(ctx, message)
	if err != nil {
		stdErr := errors.As(err)
		h.logger.Warn("interpretation failed, using default query", map[string]interface{}{
			"errorCode": string(stdErr.Code),
			"details":   stdErr.Details,
		})
		return Result{Query: models.DefaultParsedQuery(), Err: stdErr}
	}

	h.store(ctx, message, q)

	h.logger.Info("query interpreted", map[string]interface{}{
		"intent":   string(q.Intent),
		"state":    q.State(),
		"language": q.Language,
	})
	return Result{Query: q}
}

func (h *Handler) execute(ctx context.Context, message string) (models.ParsedQuery, error) {
	text, err := h.model.Generate(ctx, genai.Request{
		Operation:         genai.OpInterpret,
		SystemInstruction: systemInstruction,
		ResponseSchema:    &responseSchema,
		Content:           message,
	})
	if err != nil {
		return models.ParsedQuery{}, err
	}

	var mq modelQuery
	if err := genai.DecodeJSON(text, acceptedSchema, &mq); err != nil {
		return models.ParsedQuery{}, err
	}
	return normalize(mq), nil
}

func normalize(mq modelQuery) models.ParsedQuery {
	q := models.ParsedQuery{
		Intent:   models.Intent(mq.Intent),
		DataType: dataType(mq.DataType),
		Language: models.NormalizeLanguage(mq.Language),
	}
	if mq.Year != nil {
		year := int(math.Round(*mq.Year))
		q.Year = &year
	}
	if mq.Location != nil {
		loc := models.Location{
			State:    deref(mq.Location.State),
			District: deref(mq.Location.District),
			Block:    deref(mq.Location.Block),
		}
		if loc != (models.Location{}) {
			q.Location = &loc
		}
	}
	return q
}

// dataType returns raw when it is one of models.DataTypes, otherwise "".
func dataType(raw json.RawMessage) string {
	var s string
	if len(raw) == 0 || json.Unmarshal(raw, &s) != nil {
		return ""
	}
	s = strings.ToLower(strings.TrimSpace(s))
	for _, known := range models.DataTypes {
		if s == known {
			return s
		}
	}
	return ""
}

func deref(s *string) string {
	if s == nil {
		return ""
	}
	return strings.TrimSpace(*s)
}

func (h *Handler) cached(ctx context.Context, message string) (models.ParsedQuery, bool) {
	if h.cache == nil || h.config.CacheTTL <= 0 {
		return models.ParsedQuery{}, false
	}
	q, found, err := h.cache.Get(ctx, message)
	if err != nil {
		metrics.InterpretCache.WithLabelValues("error").Inc()
		h.logger.Warn("interpret cache read failed", map[string]interface{}{"error": err.Error()})
		return models.ParsedQuery{}, false
	}
	if !found {
		metrics.InterpretCache.WithLabelValues("miss").Inc()
		return models.ParsedQuery{}, false
	}
	metrics.InterpretCache.WithLabelValues("hit").Inc()
	return q, true
}

func (h *Handler) store(ctx context.Context, message string, q models.ParsedQuery) {
	if h.cache == nil || h.config.CacheTTL <= 0 {
		return
	}
	if err := h.cache.Set(ctx, message, q, h.config.CacheTTL); err != nil {
		h.logger.Warn("interpret cache write failed", map[string]interface{}{"error": err.Error()})
	}
}

// Execute interprets input.Message for callers outside the HTTP path.
func (h *Handler) Execute(ctx context.Context, input *Input) (*Output, error) {
	if input == nil || strings.TrimSpace(input.Message) == "" {
		return nil, errors.NewValidationError("message is required")
	}

	res := h.Interpret(ctx, input.Message)
	out := &Output{ParsedQuery: res.Query}
	if res.Err != nil {
		out.Degraded = true
		out.ErrorCode = string(res.Err.Code)
	}
	return out, nil
}

func (h *Handler) Handle(client worker.JobClient, job entities.Job) {
	h.logger.Info("processing job", map[string]interface{}{
		"jobKey":      job.Key,
		"workflowKey": job.ProcessInstanceKey,
	})

	ctx := context.Background()

	var input Input
	if err := json.Unmarshal([]byte(job.Variables), &input); err != nil {
		h.failJob(ctx, client, job, errors.NewValidationError(fmt.Sprintf("parse input: %v", err)))
		return
	}

	output, err := h.Execute(ctx, &input)
	if err != nil {
		h.failJob(ctx, client, job, err)
		return
	}

	h.completeJob(ctx, client, job, output)
}

func (h *Handler) completeJob(ctx context.Context, client worker.JobClient, job entities.Job, output *Output) {
	cmd, err := client.NewCompleteJobCommand().
		JobKey(job.Key).
		VariablesFromObject(output)
	if err != nil {
		h.logger.Error("Failed to create complete job command", map[string]interface{}{
			"jobKey": job.Key,
			"error":  err.Error(),
		})
		return
	}

	if _, err := cmd.Send(ctx); err != nil {
		h.logger.Error("Failed to send complete job command", map[string]interface{}{
			"jobKey": job.Key,
			"error":  err.Error(),
		})
		return
	}
	metrics.WorkerJobsCompleted.WithLabelValues(TaskType).Inc()
}

func (h *Handler) failJob(ctx context.Context, client worker.JobClient, job entities.Job, err error) {
	metrics.WorkerJobsFailed.WithLabelValues(TaskType, string(errors.As(err).Code)).Inc()
	h.errorHandler.HandleJobError(ctx, client, job, err)
}
