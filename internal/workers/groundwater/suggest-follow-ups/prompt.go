// internal/workers/groundwater/suggest-follow-ups/prompt.go
package suggestfollowups

import (
	"fmt"

	"ingres-assistant/internal/common/validation"
	"ingres-assistant/internal/models"
)

const baseInstruction = `Generate 3 relevant follow-up questions based on the conversation context.
Focus on groundwater topics like trends, comparisons, detailed analysis, or related regions.
Write the questions in %s.
Respond with JSON: {"questions": ["question1", "question2", "question3"]}`

func systemInstruction(language string) string {
	return fmt.Sprintf(baseInstruction, models.LanguageName(language))
}

var responseSchema = validation.JSONSchema{
	Type: "object",
	Properties: map[string]validation.Property{
		"questions": {
			Type:  "array",
			Items: &validation.Property{Type: "string"},
		},
	},
	Required:             []string{"questions"},
	AdditionalProperties: true,
}

func conversationContext(message, state string) string {
	subject := state
	if subject == "" {
		subject = "various regions"
	}
	return fmt.Sprintf("Context: User asked: %q. AI responded with groundwater data about %s.", message, subject)
}
