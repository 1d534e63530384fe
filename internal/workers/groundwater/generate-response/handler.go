// internal/workers/groundwater/generate-response/handler.go
package generateresponse

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
	"ingres-assistant/internal/models"
)

const (
	TaskType = config.WorkerGenerateResponse
)

// Logger interface definition
type Logger interface {
	Info(msg string, fields map[string]interface{})
	Warn(msg string, fields map[string]interface{})
	Error(msg string, fields map[string]interface{})
	With(fields map[string]interface{}) Logger
}

// Dataset is the read side of the assessment table.
type Dataset interface {
	FindState(query string) (models.AssessmentRecord, bool)
	Lookup(state string, year int) (models.AssessmentRecord, bool)
	Records() []models.AssessmentRecord
	Years() []int
}

type Handler struct {
	config       *Config
	model        genai.Model
	dataset      Dataset
	logger       Logger
	errorHandler *errors.ErrorHandler
}

func NewHandler(config *Config, model genai.Model, dataset Dataset, log Logger) *Handler {
	log = log.With(map[string]interface{}{
		"taskType": TaskType,
	})
	return &Handler{
		config:       config,
		model:        model,
		dataset:      dataset,
		logger:       log,
		errorHandler: errors.NewErrorHandler(log),
	}
}

// Generate answers from the dataset when a recent state query matches,
// asks a clarifying question for bare help requests, and otherwise
// delegates to the model. It never fails; model errors become apologies.
func (h *Handler) Generate(ctx context.Context, in *Input) Result {
	language := resolveLanguage(in)
	tpl := templatesFor(language)
	state := in.ParsedQuery.State()

	if state != "" && in.ParsedQuery.IsRecent(in.Message) {
		if rec, ok := h.dataset.FindState(state); ok {
			metrics.DatasetLookups.WithLabelValues("hit").Inc()
			h.logger.Info("answered from dataset", map[string]interface{}{
				"state":    rec.State,
				"year":     rec.Year,
				"language": language,
			})
			return Result{
				Response: tpl.summarize(rec),
				Data:     models.NewAssessmentPayload([]models.AssessmentRecord{rec}),
				Source:   SourceDataset,
			}
		}
		metrics.DatasetLookups.WithLabelValues("miss").Inc()
	}

	if state == "" && in.ParsedQuery.Intent == models.IntentHelp {
		return Result{Response: tpl.help, Data: models.EmptyPayload(), Source: SourceHelp}
	}

	return h.generateFromModel(ctx, in, language, tpl)
}

func (h *Handler) generateFromModel(ctx context.Context, in *Input, language string, tpl replyTemplates) Result {
	if h.config.Timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, h.config.Timeout)
		defer cancel()
	}

	text, err := h.model.Generate(ctx, genai.Request{
		Operation:         genai.OpGenerate,
		SystemInstruction: systemInstruction(language),
		ResponseSchema:    &responseSchema,
		Content:           buildPrompt(in, h.dataset.Records(), h.config.HistoryLimit),
	})
	if err != nil {
		return h.apologize(tpl, err)
	}

	var reply modelReply
	if err := genai.DecodeJSON(text, responseSchema, &reply); err != nil {
		return h.apologize(tpl, err)
	}
	response := strings.TrimSpace(reply.Response)
	if response == "" {
		return h.apologize(tpl, errors.NewUpstreamMalformedError("empty response text"))
	}

	records := h.matchRecords(reply.Data.Assessments)
	h.logger.Info("answered from model", map[string]interface{}{
		"records":  len(records),
		"language": language,
	})
	return Result{
		Response: response,
		Data:     models.NewAssessmentPayload(records),
		Source:   SourceModel,
	}
}

func (h *Handler) apologize(tpl replyTemplates, err error) Result {
	stdErr := errors.As(err)
	message := tpl.technical
	switch stdErr.Code {
	case errors.ErrCodeUpstreamBusy:
		message = tpl.busy
	case errors.ErrCodeUpstreamMalformed:
		message = tpl.malformed
	}

	h.logger.Warn("response generation failed", map[string]interface{}{
		"errorCode": string(stdErr.Code),
		"details":   stdErr.Details,
	})
	return Result{
		Response: message,
		Data:     models.EmptyPayload(),
		Source:   SourceApology,
		Err:      stdErr,
	}
}

// matchRecords replaces model-cited assessments with the dataset's own
// records. Citations without a dataset match are dropped.
func (h *Handler) matchRecords(cited []modelAssessment) []models.AssessmentRecord {
	latest := h.latestYear()
	seen := make(map[string]bool, len(cited))
	var out []models.AssessmentRecord
	dropped := 0

	for _, c := range cited {
		year := latest
		if c.Year != nil {
			year = *c.Year
		}
		rec, ok := h.dataset.Lookup(c.State, year)
		if !ok {
			dropped++
			continue
		}
		key := fmt.Sprintf("%s|%d", rec.State, rec.Year)
		if seen[key] {
			continue
		}
		seen[key] = true
		out = append(out, rec)
	}

	if dropped > 0 {
		h.logger.Warn("dropped assessments without a dataset match", map[string]interface{}{
			"dropped": dropped,
		})
	}
	return out
}

func (h *Handler) latestYear() int {
	years := h.dataset.Years()
	if len(years) == 0 {
		return 0
	}
	return years[len(years)-1]
}

func resolveLanguage(in *Input) string {
	if strings.TrimSpace(in.Language) != "" {
		return models.NormalizeLanguage(in.Language)
	}
	return models.NormalizeLanguage(in.ParsedQuery.Language)
}

// Execute generates a reply for callers outside the HTTP path.
func (h *Handler) Execute(ctx context.Context, input *Input) (*Output, error) {
	if input == nil || strings.TrimSpace(input.Message) == "" {
		return nil, errors.NewValidationError("message is required")
	}

	res := h.Generate(ctx, input)
	out := &Output{
		Response: res.Response,
		Data:     res.Data,
		Source:   res.Source,
	}
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
