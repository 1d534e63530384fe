// internal/workers/groundwater/generate-response/prompt.go
package generateresponse

import (
	"encoding/json"
	"fmt"
	"strings"

	"ingres-assistant/internal/common/validation"
	"ingres-assistant/internal/models"
)

const maxHistoryContentLength = 500

const baseInstruction = `You are the INGRES groundwater assistant. You answer questions about India's groundwater resource assessments in 2-3 short, factual sentences.

Rules:
- Use only the assessment records listed in the prompt. If the data needed to answer is not listed, say plainly that it is not available in the current assessment. Never estimate, extrapolate or invent figures.
- Put the state and year of every record your answer relies on in data.assessments, at most 5. Leave the list empty when no listed record applies.
- Categories: Safe (<70%% stage of extraction), Semi-Critical (70-90%%), Critical (90-100%%), Over-Exploited (100%% and above).
- Write the response in %s.`

func systemInstruction(language string) string {
	return fmt.Sprintf(baseInstruction, models.LanguageName(language))
}

var responseSchema = validation.JSONSchema{
	Type: "object",
	Properties: map[string]validation.Property{
		"response": {
			Type:      "string",
			MinLength: validation.Int(1),
		},
		"data": {
			Type: "object",
			Properties: map[string]validation.Property{
				"assessments": {
					Type: "array",
					Items: &validation.Property{
						Type: "object",
						Properties: map[string]validation.Property{
							"state": {Type: "string"},
							"year":  {Type: "integer", Nullable: true},
						},
						Required: []string{"state"},
					},
				},
			},
			Required: []string{"assessments"},
		},
	},
	Required:             []string{"response", "data"},
	AdditionalProperties: true,
}

func buildPrompt(in *Input, records []models.AssessmentRecord, historyLimit int) string {
	var sb strings.Builder

	parsed, _ := json.Marshal(in.ParsedQuery)
	fmt.Fprintf(&sb, "Parsed query: %s\n", parsed)
	fmt.Fprintf(&sb, "User message: %q\n", in.Message)

	if history := models.LastMessages(in.History, historyLimit); len(history) > 0 {
		sb.WriteString("\nRecent conversation:\n")
		for _, m := range history {
			fmt.Fprintf(&sb, "%s: %s\n", m.Role, clip(m.Content, maxHistoryContentLength))
		}
	}

	sb.WriteString("\nAssessment records (volumes in BCM):\n")
	sb.WriteString("state | year | extractable resource | annual extraction | stage of extraction % | category\n")
	for _, r := range records {
		fmt.Fprintf(&sb, "%s | %d | %.2f | %.2f | %.2f | %s\n",
			r.State, r.Year,
			r.ExtractableResource/models.HamPerBCM,
			r.AnnualExtraction/models.HamPerBCM,
			r.StageOfExtraction, r.Category,
		)
	}
	return sb.String()
}

func clip(s string, n int) string {
	runes := []rune(s)
	if len(runes) <= n {
		return s
	}
	return string(runes[:n]) + "..."
}
