// internal/workers/groundwater/translate-text/handler.go
package translatetext

import (
	"context"
	"encoding/json"
	stderrors "errors"
	"fmt"
	"strings"
	"unicode/utf8"

	"github.com/camunda/zeebe/clients/go/v8/pkg/entities"
	"github.com/camunda/zeebe/clients/go/v8/pkg/worker"

	"ingres-assistant/internal/common/config"
	"ingres-assistant/internal/common/errors"
	"ingres-assistant/internal/common/genai"
	"ingres-assistant/internal/common/metrics"
	"ingres-assistant/internal/models"
)

const (
	TaskType = config.WorkerTranslateText

	maxTextLength = 5000
)

var (
	ErrEmptyTranslation = stderrors.New("EMPTY_TRANSLATION")
)

// Logger interface definition
type Logger interface {
	Info(msg string, fields map[string]interface{})
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

// Execute translates input.Text into input.Language. Unlike the other
// steps translation does not fail open: errors are TRANSLATION_FAILED.
func (h *Handler) Execute(ctx context.Context, input *Input) (*Output, error) {
	if err := validateInput(input); err != nil {
		return nil, err
	}

	if h.config.Timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, h.config.Timeout)
		defer cancel()
	}

	language := models.NormalizeLanguage(input.Language)
	text, err := h.model.Generate(ctx, genai.Request{
		Operation:         genai.OpTranslate,
		SystemInstruction: systemInstruction(language),
		ResponseSchema:    &responseSchema,
		Content:           input.Text,
	})
	if err != nil {
		return nil, h.translationFailed(language, err)
	}

	var out Output
	if err := genai.DecodeJSON(text, responseSchema, &out); err != nil {
		return nil, h.translationFailed(language, err)
	}
	out.TranslatedText = strings.TrimSpace(out.TranslatedText)
	if out.TranslatedText == "" {
		return nil, h.translationFailed(language, ErrEmptyTranslation)
	}

	h.logger.Info("text translated", map[string]interface{}{
		"language": language,
		"length":   utf8.RuneCountInString(input.Text),
	})
	return &out, nil
}

func validateInput(input *Input) error {
	if input == nil || strings.TrimSpace(input.Text) == "" {
		return errors.NewValidationError("text is required")
	}
	if strings.TrimSpace(input.Language) == "" {
		return errors.NewValidationError("language is required")
	}
	if utf8.RuneCountInString(input.Text) > maxTextLength {
		return errors.NewValidationError(fmt.Sprintf("text exceeds %d characters", maxTextLength))
	}
	return nil
}

func (h *Handler) translationFailed(language string, cause error) error {
	stdErr := errors.NewTranslationFailedError(cause)
	h.logger.Error("translation failed", map[string]interface{}{
		"language": language,
		"error":    cause.Error(),
	})
	return stdErr
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
