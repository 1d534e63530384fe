// Package app assembles the chat pipeline and its HTTP surface from
// already-connected infrastructure.
package app

import (
	"net/http"

	"ingres-assistant/internal/api"
	"ingres-assistant/internal/chat"
	"ingres-assistant/internal/common/camunda"
	"ingres-assistant/internal/common/config"
	"ingres-assistant/internal/common/genai"
	"ingres-assistant/internal/common/logger"
	"ingres-assistant/internal/common/observability"
	"ingres-assistant/internal/dataset"
	"ingres-assistant/internal/session"
	generateresponse "ingres-assistant/internal/workers/groundwater/generate-response"
	interpretquery "ingres-assistant/internal/workers/groundwater/interpret-query"
	suggestfollowups "ingres-assistant/internal/workers/groundwater/suggest-follow-ups"
	translatetext "ingres-assistant/internal/workers/groundwater/translate-text"
)

type Options struct {
	Config  *config.Config
	Model   genai.Model
	Dataset *dataset.Dataset
	Store   session.Store
	// Cache is optional; leave nil to interpret every message.
	Cache          interpretquery.Cache
	Checks         map[string]api.Check
	Observability  *observability.Observability
	MetricsHandler http.Handler
	Logger         logger.Logger
}

type App struct {
	Interpreter *interpretquery.Handler
	Generator   *generateresponse.Handler
	FollowUps   *suggestfollowups.Handler
	Translator  *translatetext.Handler
	Chat        *chat.Service
	Server      *api.Server
}

func New(opts Options) *App {
	cfg := opts.Config
	log := opts.Logger

	interpreter := interpretquery.NewHandler(
		interpretquery.LoadConfig(cfg), opts.Model, opts.Cache, &interpreterLogger{log})
	generator := generateresponse.NewHandler(
		generateresponse.LoadConfig(cfg), opts.Model, opts.Dataset, &generatorLogger{log})
	followUps := suggestfollowups.NewHandler(
		suggestfollowups.LoadConfig(cfg), opts.Model, &followUpLogger{log})
	translator := translatetext.NewHandler(
		translatetext.LoadConfig(cfg), opts.Model, &translatorLogger{log})

	chatService := chat.NewService(interpreter, generator, followUps, opts.Store, opts.Observability, log)

	server := api.NewServer(api.Dependencies{
		Config:         cfg.Server,
		ServiceName:    cfg.App.Name,
		Chat:           chatService,
		Translator:     translator,
		Checks:         opts.Checks,
		Observability:  opts.Observability,
		Logger:         log,
		MetricsHandler: opts.MetricsHandler,
	})

	return &App{
		Interpreter: interpreter,
		Generator:   generator,
		FollowUps:   followUps,
		Translator:  translator,
		Chat:        chatService,
		Server:      server,
	}
}

// JobHandlers maps each pipeline step's task type to its Zeebe job handler.
func (a *App) JobHandlers() map[string]camunda.JobHandler {
	return map[string]camunda.JobHandler{
		interpretquery.TaskType:   a.Interpreter,
		generateresponse.TaskType: a.Generator,
		suggestfollowups.TaskType: a.FollowUps,
		translatetext.TaskType:    a.Translator,
	}
}

// Logger adapters for the steps that declare their own Logger interfaces.
type interpreterLogger struct {
	logger.Logger
}

func (a *interpreterLogger) With(fields map[string]interface{}) interpretquery.Logger {
	return &interpreterLogger{a.Logger.With(fields)}
}

type generatorLogger struct {
	logger.Logger
}

func (a *generatorLogger) With(fields map[string]interface{}) generateresponse.Logger {
	return &generatorLogger{a.Logger.With(fields)}
}

type followUpLogger struct {
	logger.Logger
}

func (a *followUpLogger) With(fields map[string]interface{}) suggestfollowups.Logger {
	return &followUpLogger{a.Logger.With(fields)}
}

type translatorLogger struct {
	logger.Logger
}

func (a *translatorLogger) With(fields map[string]interface{}) translatetext.Logger {
	return &translatorLogger{a.Logger.With(fields)}
}
