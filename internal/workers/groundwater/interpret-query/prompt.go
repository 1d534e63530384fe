package interpretquery

import (
	"ingres-assistant/internal/common/validation"
	"ingres-assistant/internal/models"
)

const systemInstruction = `You read questions sent to the INGRES groundwater assistant about Indian groundwater assessments and extract their parameters.

Return JSON with:
- intent: query_status (current status of a place), historical_data (past years or trends), comparison (two or more places), overview (national or multi-state picture) or help (greetings, unclear or off-topic messages).
- location: state, district and block exactly as named by the user, omitted when not mentioned. Use the official state or union territory name, e.g. "Tamil Nadu", "Delhi".
- dataType: recharge, extraction, status, category or all, when the user asks for a specific measure.
- year: the four digit assessment year when one is mentioned.
- language: ISO 639-1 code of the language the message is written in (en, hi, ta, te, kn, ...).

Categories used by the assessments: Safe, Semi-Critical, Critical, Over-Exploited.`

var responseSchema = validation.JSONSchema{
	Type: "object",
	Properties: map[string]validation.Property{
		"intent": {
			Type: "string",
			Enum: models.Intents,
		},
		"location": {
			Type:     "object",
			Nullable: true,
			Properties: map[string]validation.Property{
				"state":    {Type: "string", Nullable: true},
				"district": {Type: "string", Nullable: true},
				"block":    {Type: "string", Nullable: true},
			},
		},
		"dataType": {
			Type:     "string",
			Nullable: true,
			Enum:     models.DataTypes,
		},
		"year": {
			Type:     "integer",
			Nullable: true,
			Minimum:  validation.Float(1900),
			Maximum:  validation.Float(2100),
		},
		"language": {Type: "string"},
	},
	Required:             []string{"intent", "language"},
	AdditionalProperties: true,
}

// acceptedSchema is what a reply must satisfy. It is responseSchema without
// dataType, which is only a hint and is filtered in normalize.
var acceptedSchema = func() validation.JSONSchema {
	s := responseSchema
	s.Properties = make(map[string]validation.Property, len(responseSchema.Properties))
	for name, p := range responseSchema.Properties {
		if name != "dataType" {
			s.Properties[name] = p
		}
	}
	return s
}()
