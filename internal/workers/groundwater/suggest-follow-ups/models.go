// internal/workers/groundwater/suggest-follow-ups/models.go
package suggestfollowups

import "ingres-assistant/internal/common/errors"

type Input struct {
	Message  string `json:"message"`
	State    string `json:"state"`
	Language string `json:"language"`
}

type Output struct {
	Questions []string `json:"questions"`
}

// Result holds at most MaxQuestions suggestions, never nil. Err is set
// when the model could not be used.
type Result struct {
	Questions []string
	Err       *errors.StandardError
}

type modelReply struct {
	Questions []string `json:"questions"`
}
