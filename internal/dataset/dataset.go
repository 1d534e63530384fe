// Package dataset holds the immutable assessment table the assistant answers from.
package dataset

import (
	"fmt"
	"sort"
	"strings"

	"ingres-assistant/internal/common/errors"
	"ingres-assistant/internal/models"
)

// minQueryLength keeps one- and two-letter fragments from matching arbitrary states.
const minQueryLength = 3

// Dataset is safe for concurrent reads; it is never mutated after New.
type Dataset struct {
	records []models.AssessmentRecord
	byKey   map[string]int
}

// New validates records and builds the lookup index.
func New(records []models.AssessmentRecord) (*Dataset, error) {
	if err := Validate(records); err != nil {
		return nil, err
	}

	d := &Dataset{
		records: make([]models.AssessmentRecord, len(records)),
		byKey:   make(map[string]int, len(records)),
	}
	copy(d.records, records)
	sort.SliceStable(d.records, func(i, j int) bool {
		return d.records[i].State < d.records[j].State
	})
	for i, r := range d.records {
		d.byKey[key(r.State, r.Year)] = i
	}
	return d, nil
}

// Static returns the built-in 2025 table.
func Static() (*Dataset, error) {
	return New(static2025)
}

// Validate rejects empty states, negative volumes, unknown categories and
// duplicate (state, year) rows. Published categories are kept even when they
// disagree with Classify; see CategoryMismatches.
func Validate(records []models.AssessmentRecord) error {
	seen := make(map[string]bool, len(records))
	for i, r := range records {
		if strings.TrimSpace(r.State) == "" {
			return errors.NewDatasetInvalidError(fmt.Sprintf("record %d: empty state", i))
		}
		if r.AnnualRecharge < 0 || r.ExtractableResource < 0 || r.AnnualExtraction < 0 || r.StageOfExtraction < 0 {
			return errors.NewDatasetInvalidError(fmt.Sprintf("%s %d: negative volume or stage", r.State, r.Year))
		}
		if !r.Category.Valid() {
			return errors.NewDatasetInvalidError(fmt.Sprintf("%s %d: unknown category %q", r.State, r.Year, r.Category))
		}
		k := key(r.State, r.Year)
		if seen[k] {
			return errors.NewDatasetInvalidError(fmt.Sprintf("%s %d: duplicate record", r.State, r.Year))
		}
		seen[k] = true
	}
	return nil
}

// Mismatch is a record whose published category differs from Classify.
type Mismatch struct {
	State     string
	Year      int
	Stage     float64
	Published models.Category
	Computed  models.Category
}

func (m Mismatch) String() string {
	return fmt.Sprintf("%s %d: category %s disagrees with stage %.2f%% (thresholds give %s)",
		m.State, m.Year, m.Published, m.Stage, m.Computed)
}

// CategoryMismatches lists records whose category is not what the 70/90/100
// thresholds would assign.
func CategoryMismatches(records []models.AssessmentRecord) []Mismatch {
	var out []Mismatch
	for _, r := range records {
		if want := models.Classify(r.StageOfExtraction); r.Category != want {
			out = append(out, Mismatch{
				State:     r.State,
				Year:      r.Year,
				Stage:     r.StageOfExtraction,
				Published: r.Category,
				Computed:  want,
			})
		}
	}
	return out
}

// CheckCategories fails with DATASET_INVALID when any category disagrees
// with the thresholds.
func CheckCategories(records []models.AssessmentRecord) error {
	mismatches := CategoryMismatches(records)
	if len(mismatches) == 0 {
		return nil
	}
	details := make([]string, len(mismatches))
	for i, m := range mismatches {
		details[i] = m.String()
	}
	return errors.NewDatasetInvalidError(strings.Join(details, "; "))
}

// FindState returns the first record, in state order, whose state name
// contains query case-insensitively.
func (d *Dataset) FindState(query string) (models.AssessmentRecord, bool) {
	q := strings.ToLower(strings.TrimSpace(query))
	if len(q) < minQueryLength {
		return models.AssessmentRecord{}, false
	}
	for _, r := range d.records {
		if strings.Contains(strings.ToLower(r.State), q) {
			return r, true
		}
	}
	return models.AssessmentRecord{}, false
}

// Lookup returns the record for an exact (state, year) pair, ignoring case.
func (d *Dataset) Lookup(state string, year int) (models.AssessmentRecord, bool) {
	i, ok := d.byKey[key(state, year)]
	if !ok {
		return models.AssessmentRecord{}, false
	}
	return d.records[i], true
}

// Records returns a copy of all records in state order.
func (d *Dataset) Records() []models.AssessmentRecord {
	out := make([]models.AssessmentRecord, len(d.records))
	copy(out, d.records)
	return out
}

func (d *Dataset) Len() int {
	return len(d.records)
}

// Years returns the distinct assessment years present.
func (d *Dataset) Years() []int {
	set := map[int]bool{}
	for _, r := range d.records {
		set[r.Year] = true
	}
	years := make([]int, 0, len(set))
	for y := range set {
		years = append(years, y)
	}
	sort.Ints(years)
	return years
}

func key(state string, year int) string {
	return fmt.Sprintf("%s|%d", strings.ToLower(strings.TrimSpace(state)), year)
}
