package dataset

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"

	"ingres-assistant/internal/models"
)

// File is the on-disk exchange format used by the dataset tool.
type File struct {
	Year    int                       `json:"year"`
	Records []models.AssessmentRecord `json:"records"`
}

// ReadFile loads and validates an assessment file.
func ReadFile(path string) (*File, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	var f File
	if err := json.Unmarshal(data, &f); err != nil {
		return nil, fmt.Errorf("failed to parse %s: %w", path, err)
	}
	if len(f.Records) == 0 {
		return nil, fmt.Errorf("%s contains no records", path)
	}
	if err := Validate(f.Records); err != nil {
		return nil, err
	}
	return &f, nil
}

// WriteFile saves the dataset's records, creating parent directories.
func WriteFile(path string, d *Dataset) error {
	years := d.Years()
	f := File{Records: d.Records()}
	if len(years) > 0 {
		f.Year = years[len(years)-1]
	}

	data, err := json.MarshalIndent(f, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to marshal dataset: %w", err)
	}
	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		return fmt.Errorf("failed to create directory: %w", err)
	}
	return os.WriteFile(path, data, 0644)
}
