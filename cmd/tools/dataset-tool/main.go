// cmd/tools/dataset-tool/main.go
package main

import (
	"context"
	"flag"
	"fmt"
	"os"
	"time"

	"ingres-assistant/internal/common/config"
	"ingres-assistant/internal/common/database"
	"ingres-assistant/internal/dataset"
	"ingres-assistant/internal/models"
)

func main() {
	validateCmd := flag.NewFlagSet("validate", flag.ExitOnError)
	exportCmd := flag.NewFlagSet("export", flag.ExitOnError)
	seedCmd := flag.NewFlagSet("seed", flag.ExitOnError)

	validatePath := validateCmd.String("file", "", "Assessment file to validate (defaults to the built-in table)")
	validateStrict := validateCmd.Bool("strict", false, "Fail when a published category disagrees with the extraction thresholds")
	exportPath := exportCmd.String("out", "data/assessments-2025.json", "Where to write the built-in table")
	seedPath := seedCmd.String("file", "", "Assessment file to seed (defaults to the built-in table)")
	seedTimeout := seedCmd.Duration("timeout", 30*time.Second, "Timeout for the whole seed run")

	if len(os.Args) < 2 {
		help()
		os.Exit(1)
	}

	switch os.Args[1] {
	case "validate":
		validateCmd.Parse(os.Args[2:])
		records, err := loadRecords(*validatePath)
		if err != nil {
			fmt.Printf("Dataset validation failed: %v\n", err)
			os.Exit(1)
		}
		printSummary(records)
		if *validateStrict {
			if err := dataset.CheckCategories(records); err != nil {
				fmt.Printf("Dataset validation failed: %v\n", err)
				os.Exit(1)
			}
		} else {
			for _, m := range dataset.CategoryMismatches(records) {
				fmt.Printf("  warning: %s\n", m)
			}
		}
		fmt.Println("Dataset validation passed.")

	case "export":
		exportCmd.Parse(os.Args[2:])
		ds, err := dataset.Static()
		if err != nil {
			fmt.Printf("Built-in dataset is invalid: %v\n", err)
			os.Exit(1)
		}
		if err := dataset.WriteFile(*exportPath, ds); err != nil {
			fmt.Printf("Error exporting dataset: %v\n", err)
			os.Exit(1)
		}
		fmt.Printf("Exported %d records to %s\n", ds.Len(), *exportPath)

	case "seed":
		seedCmd.Parse(os.Args[2:])
		records, err := loadRecords(*seedPath)
		if err != nil {
			fmt.Printf("Error loading records: %v\n", err)
			os.Exit(1)
		}
		n, err := seed(records, *seedTimeout)
		if err != nil {
			fmt.Printf("Error seeding PostgreSQL: %v\n", err)
			os.Exit(1)
		}
		fmt.Printf("Seeded %d records into groundwater_assessments\n", n)

	case "help":
		fallthrough
	default:
		help()
	}
}

// loadRecords reads path, or the built-in table when path is empty.
func loadRecords(path string) ([]models.AssessmentRecord, error) {
	if path == "" {
		ds, err := dataset.Static()
		if err != nil {
			return nil, err
		}
		return ds.Records(), nil
	}
	f, err := dataset.ReadFile(path)
	if err != nil {
		return nil, err
	}
	return f.Records, nil
}

func seed(records []models.AssessmentRecord, timeout time.Duration) (int, error) {
	cfg, err := config.Load()
	if err != nil {
		return 0, fmt.Errorf("failed to load config: %w", err)
	}

	ctx, cancel := context.WithTimeout(context.Background(), timeout)
	defer cancel()

	pg, err := database.NewPostgres(ctx, cfg.Database.Postgres)
	if err != nil {
		return 0, err
	}
	defer pg.Close()

	return dataset.Seed(ctx, pg, records)
}

func printSummary(records []models.AssessmentRecord) {
	stats := models.Summarize(records)
	fmt.Printf("Records: %d\n", stats.TotalBlocks)
	fmt.Printf("  Safe: %d  Semi-Critical: %d  Critical: %d  Over-Exploited: %d\n",
		stats.Safe, stats.SemiCritical, stats.Critical, stats.OverExploited)
	fmt.Printf("  Extractable: %.2f BCM  Extraction: %.2f BCM  Average stage: %.1f%%\n",
		stats.TotalExtractableResource, stats.TotalExtraction, stats.AverageStageOfExtraction)
}

func help() {
	fmt.Println(`
Usage: dataset-tool <command> [flags]

Commands:
  validate  Check an assessment file (or the built-in table) for consistency
  export    Write the built-in 2025 table as JSON
  seed      Upsert an assessment file (or the built-in table) into PostgreSQL
  help      Show this help message

Examples:
  dataset-tool validate -file data/assessments-2025.json
  dataset-tool validate -strict
  dataset-tool export -out data/assessments-2025.json
  DB_USER=ingres DB_PASSWORD=secret dataset-tool seed -file data/assessments-2025.json

Use 'dataset-tool <command> -h' for more information about a command.
`)
}
