// internal/workers/groundwater/interpret-query/models.go
package interpretquery

import (
	"encoding/json"

	"ingres-assistant/internal/common/errors"
	"ingres-assistant/internal/models"
)

type Input struct {
	Message string `json:"message"`
}

type Output struct {
	ParsedQuery models.ParsedQuery `json:"parsedQuery"`
	Degraded    bool               `json:"degraded"`
	ErrorCode   string             `json:"errorCode,omitempty"`
}

// Result always carries a usable query. Err is set when the default was used.
type Result struct {
	Query  models.ParsedQuery
	Cached bool
	Err    *errors.StandardError
}

// modelQuery is the wire shape requested from the model. Year is a number
// because models sometimes write 2025.0; DataType is kept raw and dropped
// in normalize when it is not a known value.
type modelQuery struct {
	Intent   string `json:"intent"`
	Location *struct {
		State    *string `json:"state"`
		District *string `json:"district"`
		Block    *string `json:"block"`
	} `json:"location"`
	DataType json.RawMessage `json:"dataType"`
	Year     *float64        `json:"year"`
	Language string          `json:"language"`
}
