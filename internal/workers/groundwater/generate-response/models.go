// internal/workers/groundwater/generate-response/models.go
package generateresponse

import (
	"ingres-assistant/internal/common/errors"
	"ingres-assistant/internal/models"
)

type Input struct {
	ParsedQuery models.ParsedQuery   `json:"parsedQuery"`
	Message     string               `json:"message"`
	Language    string               `json:"language"`
	History     []models.ChatMessage `json:"history"`
}

type Output struct {
	Response  string         `json:"response"`
	Data      models.Payload `json:"data"`
	Source    Source         `json:"source"`
	Degraded  bool           `json:"degraded"`
	ErrorCode string         `json:"errorCode,omitempty"`
}

// Source records which path produced a reply.
type Source string

const (
	SourceDataset Source = "dataset"
	SourceHelp    Source = "help"
	SourceModel   Source = "model"
	SourceApology Source = "apology"
)

// Result always carries a reply. Err is set when an apology was substituted.
type Result struct {
	Response string
	Data     models.Payload
	Source   Source
	Err      *errors.StandardError
}

// modelReply is the wire shape requested from the model. Only the keys
// of each assessment are read; figures always come from the dataset.
type modelReply struct {
	Response string `json:"response"`
	Data     struct {
		Assessments []modelAssessment `json:"assessments"`
	} `json:"data"`
}

type modelAssessment struct {
	State string `json:"state"`
	Year  *int   `json:"year"`
}
