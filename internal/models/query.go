// internal/models/query.go
package models

import "strings"

type Intent string

const (
	IntentQueryStatus    Intent = "query_status"
	IntentHistoricalData Intent = "historical_data"
	IntentComparison     Intent = "comparison"
	IntentOverview       Intent = "overview"
	IntentHelp           Intent = "help"
)

var Intents = []string{
	string(IntentQueryStatus),
	string(IntentHistoricalData),
	string(IntentComparison),
	string(IntentOverview),
	string(IntentHelp),
}

var DataTypes = []string{"recharge", "extraction", "status", "category", "all"}

// DefaultLanguage is used when no language is declared or detected.
const DefaultLanguage = "en"

type Location struct {
	State    string `json:"state,omitempty"`
	District string `json:"district,omitempty"`
	Block    string `json:"block,omitempty"`
}

// ParsedQuery is the structured reading of one user message.
type ParsedQuery struct {
	Intent   Intent    `json:"intent"`
	Location *Location `json:"location,omitempty"`
	DataType string    `json:"dataType,omitempty"`
	Year     *int      `json:"year,omitempty"`
	Language string    `json:"language"`
}

// DefaultParsedQuery is the interpretation used when the model cannot be consulted.
func DefaultParsedQuery() ParsedQuery {
	return ParsedQuery{Intent: IntentHelp, Language: DefaultLanguage}
}

// State returns the named state, or "" when none was extracted.
func (q ParsedQuery) State() string {
	if q.Location == nil {
		return ""
	}
	return strings.TrimSpace(q.Location.State)
}

// IsRecent reports whether the query asks for the latest assessment:
// an explicit 2024/2025 year, or "latest"/"recent" in the raw message.
func (q ParsedQuery) IsRecent(rawMessage string) bool {
	if q.Year != nil && (*q.Year == 2024 || *q.Year == 2025) {
		return true
	}
	lower := strings.ToLower(rawMessage)
	return strings.Contains(lower, "latest") || strings.Contains(lower, "recent")
}
