// internal/models/assessment.go
package models

import "encoding/json"

// Category is the four-level sustainability classification of an assessment unit.
type Category string

const (
	CategorySafe          Category = "Safe"
	CategorySemiCritical  Category = "Semi-Critical"
	CategoryCritical      Category = "Critical"
	CategoryOverExploited Category = "Over-Exploited"
)

// Stage-of-extraction cut points, in percent.
const (
	SemiCriticalThreshold  = 70.0
	CriticalThreshold      = 90.0
	OverExploitedThreshold = 100.0
)

// HamPerBCM converts hectare-metres to billion cubic metres.
const HamPerBCM = 100000.0

// MaxSurfacedAssessments caps the records returned to a caller.
const MaxSurfacedAssessments = 5

// Classify maps a stage of extraction to its category.
func Classify(stageOfExtraction float64) Category {
	switch {
	case stageOfExtraction < SemiCriticalThreshold:
		return CategorySafe
	case stageOfExtraction < CriticalThreshold:
		return CategorySemiCritical
	case stageOfExtraction < OverExploitedThreshold:
		return CategoryCritical
	default:
		return CategoryOverExploited
	}
}

func (c Category) Valid() bool {
	switch c {
	case CategorySafe, CategorySemiCritical, CategoryCritical, CategoryOverExploited:
		return true
	}
	return false
}

// AssessmentRecord is one assessment unit for one year. Volumes are in ham.
type AssessmentRecord struct {
	State               string   `json:"state"`
	District            string   `json:"district"`
	Block               string   `json:"block"`
	Year                int      `json:"year"`
	AnnualRecharge      float64  `json:"annualRecharge"`
	ExtractableResource float64  `json:"extractableResource"`
	AnnualExtraction    float64  `json:"annualExtraction"`
	StageOfExtraction   float64  `json:"stageOfExtraction"`
	Category            Category `json:"category"`
}

// Statistics aggregates a set of assessment records. Volumes are in BCM.
type Statistics struct {
	TotalBlocks              int     `json:"totalBlocks"`
	Safe                     int     `json:"safe"`
	SemiCritical             int     `json:"semiCritical"`
	Critical                 int     `json:"critical"`
	OverExploited            int     `json:"overExploited"`
	TotalExtractableResource float64 `json:"totalExtractableResource"`
	TotalExtraction          float64 `json:"totalExtraction"`
	AverageStageOfExtraction float64 `json:"averageStageOfExtraction"`
}

// Summarize computes statistics for records, or nil when there are none.
func Summarize(records []AssessmentRecord) *Statistics {
	if len(records) == 0 {
		return nil
	}

	stats := &Statistics{TotalBlocks: len(records)}
	var stageSum float64
	for _, r := range records {
		switch r.Category {
		case CategorySafe:
			stats.Safe++
		case CategorySemiCritical:
			stats.SemiCritical++
		case CategoryCritical:
			stats.Critical++
		case CategoryOverExploited:
			stats.OverExploited++
		}
		stats.TotalExtractableResource += r.ExtractableResource / HamPerBCM
		stats.TotalExtraction += r.AnnualExtraction / HamPerBCM
		stageSum += r.StageOfExtraction
	}
	stats.AverageStageOfExtraction = stageSum / float64(len(records))
	return stats
}

// PayloadKind discriminates Payload.
type PayloadKind string

const (
	PayloadAssessment PayloadKind = "assessment"
	PayloadEmpty      PayloadKind = "empty"
)

// Payload is the structured data attached to an assistant reply.
// Kind is "assessment" with at least one record and statistics, or "empty".
type Payload struct {
	Kind              PayloadKind        `json:"kind"`
	Assessments       []AssessmentRecord `json:"assessments"`
	Statistics        *Statistics        `json:"statistics"`
	FollowUpQuestions []string           `json:"followUpQuestions"`
}

// NewAssessmentPayload caps records and derives statistics from the surfaced set.
func NewAssessmentPayload(records []AssessmentRecord) Payload {
	if len(records) == 0 {
		return EmptyPayload()
	}
	if len(records) > MaxSurfacedAssessments {
		records = records[:MaxSurfacedAssessments]
	}
	surfaced := make([]AssessmentRecord, len(records))
	copy(surfaced, records)

	return Payload{
		Kind:              PayloadAssessment,
		Assessments:       surfaced,
		Statistics:        Summarize(surfaced),
		FollowUpQuestions: []string{},
	}
}

func EmptyPayload() Payload {
	return Payload{
		Kind:              PayloadEmpty,
		Assessments:       []AssessmentRecord{},
		FollowUpQuestions: []string{},
	}
}

// MarshalJSON keeps list fields as arrays even on zero values.
func (p Payload) MarshalJSON() ([]byte, error) {
	type plain Payload
	out := plain(p)
	if out.Kind == "" {
		out.Kind = PayloadEmpty
	}
	if out.Assessments == nil {
		out.Assessments = []AssessmentRecord{}
	}
	if out.FollowUpQuestions == nil {
		out.FollowUpQuestions = []string{}
	}
	return json.Marshal(out)
}
