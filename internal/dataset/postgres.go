package dataset

import (
	"context"
	"fmt"

	"ingres-assistant/internal/common/database"
	"ingres-assistant/internal/common/errors"
	"ingres-assistant/internal/models"
)

// Schema creates the assessment table read by LoadFromPostgres.
const Schema = `CREATE TABLE IF NOT EXISTS groundwater_assessments (
	id VARCHAR PRIMARY KEY DEFAULT gen_random_uuid(),
	state TEXT NOT NULL,
	district TEXT NOT NULL,
	block TEXT NOT NULL,
	year INTEGER NOT NULL,
	annual_recharge DOUBLE PRECISION NOT NULL,
	extractable_resource DOUBLE PRECISION NOT NULL,
	annual_extraction DOUBLE PRECISION NOT NULL,
	stage_of_extraction DOUBLE PRECISION NOT NULL,
	category TEXT NOT NULL,
	created_at TIMESTAMP DEFAULT NOW(),
	UNIQUE (state, district, block, year)
)`

const selectByYear = `SELECT state, district, block, year, annual_recharge, extractable_resource, annual_extraction, stage_of_extraction, category FROM groundwater_assessments WHERE year = $1 ORDER BY state`

const upsertRecord = `INSERT INTO groundwater_assessments (state, district, block, year, annual_recharge, extractable_resource, annual_extraction, stage_of_extraction, category)
VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)
ON CONFLICT (state, district, block, year) DO UPDATE SET
	annual_recharge = EXCLUDED.annual_recharge,
	extractable_resource = EXCLUDED.extractable_resource,
	annual_extraction = EXCLUDED.annual_extraction,
	stage_of_extraction = EXCLUDED.stage_of_extraction,
	category = EXCLUDED.category`

// LoadFromPostgres reads all records for year and validates them like the static table.
func LoadFromPostgres(ctx context.Context, pg *database.PostgresClient, year int) (*Dataset, error) {
	rows, err := pg.Query(ctx, selectByYear, year)
	if err != nil {
		return nil, errors.NewDatasetLoadFailedError(err)
	}
	defer rows.Close()

	var records []models.AssessmentRecord
	for rows.Next() {
		var r models.AssessmentRecord
		var category string
		if err := rows.Scan(
			&r.State, &r.District, &r.Block, &r.Year,
			&r.AnnualRecharge, &r.ExtractableResource, &r.AnnualExtraction,
			&r.StageOfExtraction, &category,
		); err != nil {
			return nil, errors.NewDatasetLoadFailedError(fmt.Errorf("scan: %w", err))
		}
		r.Category = models.Category(category)
		records = append(records, r)
	}
	if err := rows.Err(); err != nil {
		return nil, errors.NewDatasetLoadFailedError(err)
	}
	if len(records) == 0 {
		return nil, errors.NewDatasetLoadFailedError(fmt.Errorf("no assessment records for year %d", year))
	}

	return New(records)
}

// Seed validates records and upserts them in a single transaction.
func Seed(ctx context.Context, pg *database.PostgresClient, records []models.AssessmentRecord) (int, error) {
	if err := Validate(records); err != nil {
		return 0, err
	}

	if _, err := pg.Exec(ctx, Schema); err != nil {
		return 0, fmt.Errorf("create table: %w", err)
	}

	tx, err := pg.BeginTx(ctx)
	if err != nil {
		return 0, fmt.Errorf("begin: %w", err)
	}
	defer func() { _ = tx.Rollback() }()

	for _, r := range records {
		if _, err := tx.ExecContext(ctx, upsertRecord,
			r.State, r.District, r.Block, r.Year,
			r.AnnualRecharge, r.ExtractableResource, r.AnnualExtraction,
			r.StageOfExtraction, string(r.Category),
		); err != nil {
			return 0, fmt.Errorf("upsert %s %d: %w", r.State, r.Year, err)
		}
	}

	if err := tx.Commit(); err != nil {
		return 0, fmt.Errorf("commit: %w", err)
	}
	return len(records), nil
}
