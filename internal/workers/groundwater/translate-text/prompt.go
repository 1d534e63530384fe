// internal/workers/groundwater/translate-text/prompt.go
package translatetext

import (
	"fmt"

	"ingres-assistant/internal/common/validation"
	"ingres-assistant/internal/models"
)

const baseInstruction = `Translate the user's text into %s.
Keep numbers, percentages, units, place names and groundwater category names (Safe, Semi-Critical, Critical, Over-Exploited) accurate.
Return only the translation as JSON: {"translatedText": "..."}`

func systemInstruction(language string) string {
	return fmt.Sprintf(baseInstruction, models.LanguageName(language))
}

var responseSchema = validation.JSONSchema{
	Type: "object",
	Properties: map[string]validation.Property{
		"translatedText": {Type: "string"},
	},
	Required:             []string{"translatedText"},
	AdditionalProperties: true,
}
