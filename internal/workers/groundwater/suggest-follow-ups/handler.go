// internal/workers/groundwater/suggest-follow-ups/handler.go
package suggestfollowups

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"

	"github.com/camunda/zeebe/clients/go/v8/pkg/entities"
	"github.com/camunda/zeebe/clients/go/v8/pkg/worker"

	"ingres-assistant/internal/common/config"
	"ingres-assistant/internal/common/errors"
	"ingres-assistant/internal/common/genai"
	"ingres-assistant/internal/common/metrics"
)

const (
	TaskType = config.WorkerSuggestFollowUps
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
	logger       Logger
	errorHandler *errors.ErrorHandler
}

func NewHandler(config *Config, model genai.Model, log Logger) *Handler {
	log = log.With(map[string]interface{}{
		"taskType": TaskType,
	})
	return &Handler{
		config:       config,
		model:        model,
		logger:       log,
		errorHandler: errors.NewErrorHandler(log),
	}
}

// Suggest asks the model for follow-up questions. Failures yield an empty list.
func (h *Handler) Suggest(ctx context.Context, in *Input) Result {
	if !h.config.Enabled {
		return Result{Questions: []string{}}
	}

	if h.config.Timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, h.config.Timeout)
		defer cancel()
	}

	text, err := h.model.Generate(ctx, genai.Request{
		Operation:         genai.OpFollowUps,
		SystemInstruction: systemInstruction(in.Language),
		ResponseSchema:    &responseSchema,
		Content:           conversationContext(in.Message, in.State),
	})
	if err == nil {
		var reply modelReply
		if err = genai.DecodeJSON(text, responseSchema, &reply); err == nil {
			return Result{Questions: sanitize(reply.Questions)}
		}
	}

	stdErr := errors.As(err)
	h.logger.Warn("follow-up suggestion failed", map[string]interface{}{
		"errorCode": string(stdErr.Code),
		"details":   stdErr.Details,
	})
	return Result{Questions: []string{}, Err: stdErr}
}

// sanitize trims, drops blanks and duplicates, and caps at MaxQuestions.
func sanitize(questions []string) []string {
	out := make([]string, 0, MaxQuestions)
	seen := make(map[string]bool, len(questions))
	for _, q := range questions {
		q = strings.TrimSpace(q)
		if q == "" || seen[q] {
			continue
		}
		seen[q] = true
		out = append(out, q)
		if len(out) == MaxQuestions {
			break
		}
	}
	return out
}

func (h *Handler) Execute(ctx context.Context, input *Input) (*Output, error) {
	if input == nil || strings.TrimSpace(input.Message) == "" {
		return nil, errors.NewValidationError("message is required")
	}
	res := h.Suggest(ctx, input)
	return &Output{Questions: res.Questions}, nil
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
