package models

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestClassify_Boundaries(t *testing.T) {
	tests := []struct {
		stage float64
		want  Category
	}{
		{0, CategorySafe},
		{69.9, CategorySafe},
		{70.0, CategorySemiCritical},
		{89.9, CategorySemiCritical},
		{90.0, CategoryCritical},
		{99.9, CategoryCritical},
		{100.0, CategoryOverExploited},
		{156.36, CategoryOverExploited},
	}

	for _, tt := range tests {
		assert.Equal(t, tt.want, Classify(tt.stage), "stage %.2f", tt.stage)
	}
}

func TestCategory_Valid(t *testing.T) {
	assert.True(t, CategoryCritical.Valid())
	assert.False(t, Category("Unknown").Valid())
}

func TestSummarize(t *testing.T) {
	assert.Nil(t, Summarize(nil))

	records := []AssessmentRecord{
		{State: "Gujarat", ExtractableResource: 3741168.27, AnnualExtraction: 1746073.42, StageOfExtraction: 46.67, Category: CategorySafe},
		{State: "Punjab", ExtractableResource: 1889095.02, AnnualExtraction: 2795751.6, StageOfExtraction: 147.99, Category: CategoryOverExploited},
	}

	stats := Summarize(records)
	require.NotNil(t, stats)
	assert.Equal(t, 2, stats.TotalBlocks)
	assert.Equal(t, 1, stats.Safe)
	assert.Equal(t, 1, stats.OverExploited)
	assert.Equal(t, 0, stats.Critical)
	assert.InDelta(t, 56.3026, stats.TotalExtractableResource, 0.001)
	assert.InDelta(t, 45.4182, stats.TotalExtraction, 0.001)
	assert.InDelta(t, 97.33, stats.AverageStageOfExtraction, 0.001)
}

func TestNewAssessmentPayload_CapsRecords(t *testing.T) {
	records := make([]AssessmentRecord, 8)
	for i := range records {
		records[i] = AssessmentRecord{State: "S", StageOfExtraction: 10, Category: CategorySafe}
	}

	p := NewAssessmentPayload(records)
	assert.Equal(t, PayloadAssessment, p.Kind)
	assert.Len(t, p.Assessments, MaxSurfacedAssessments)
	assert.Equal(t, MaxSurfacedAssessments, p.Statistics.TotalBlocks)
}

func TestPayload_JSONNeverNullLists(t *testing.T) {
	raw, err := json.Marshal(Payload{})
	require.NoError(t, err)
	assert.JSONEq(t, `{"kind":"empty","assessments":[],"statistics":null,"followUpQuestions":[]}`, string(raw))

	raw, err = json.Marshal(NewAssessmentPayload(nil))
	require.NoError(t, err)
	assert.JSONEq(t, `{"kind":"empty","assessments":[],"statistics":null,"followUpQuestions":[]}`, string(raw))
}

func TestParsedQuery_IsRecent(t *testing.T) {
	year := func(y int) *int { return &y }

	tests := []struct {
		name  string
		query ParsedQuery
		raw   string
		want  bool
	}{
		{"year 2025", ParsedQuery{Year: year(2025)}, "status in Gujarat", true},
		{"year 2024", ParsedQuery{Year: year(2024)}, "status in Gujarat", true},
		{"old year", ParsedQuery{Year: year(2017)}, "status in Gujarat 2017", false},
		{"latest keyword", ParsedQuery{}, "Latest data for Punjab", true},
		{"recent keyword", ParsedQuery{}, "most recent figures", true},
		{"no signal", ParsedQuery{}, "status of Kerala", false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, tt.query.IsRecent(tt.raw))
		})
	}
}

func TestParsedQuery_State(t *testing.T) {
	assert.Equal(t, "", DefaultParsedQuery().State())
	assert.Equal(t, "Gujarat", ParsedQuery{Location: &Location{State: " Gujarat "}}.State())
}

func TestLastMessages(t *testing.T) {
	msgs := []ChatMessage{{ID: "1"}, {ID: "2"}, {ID: "3"}}
	assert.Len(t, LastMessages(msgs, 10), 3)
	last := LastMessages(msgs, 2)
	require.Len(t, last, 2)
	assert.Equal(t, "2", last[0].ID)
	assert.Nil(t, LastMessages(msgs, 0))
}
