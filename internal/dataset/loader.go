package dataset

import (
	"context"
	"fmt"

	"ingres-assistant/internal/common/config"
	"ingres-assistant/internal/common/database"
)

// Load builds the dataset selected by cfg. pg may be nil for the static source.
// With cfg.StrictCategories any category that disagrees with the thresholds
// fails the load.
func Load(ctx context.Context, cfg config.DatasetConfig, pg *database.PostgresClient) (*Dataset, error) {
	ds, err := load(ctx, cfg, pg)
	if err != nil {
		return nil, err
	}
	if cfg.StrictCategories {
		if err := CheckCategories(ds.records); err != nil {
			return nil, err
		}
	}
	return ds, nil
}

func load(ctx context.Context, cfg config.DatasetConfig, pg *database.PostgresClient) (*Dataset, error) {
	switch cfg.Source {
	case "", "static":
		if cfg.Year != 0 && cfg.Year != StaticYear {
			return nil, fmt.Errorf("static dataset only covers %d, configured year is %d", StaticYear, cfg.Year)
		}
		return Static()
	case "postgres":
		if pg == nil {
			return nil, fmt.Errorf("dataset.source is postgres but no connection is configured")
		}
		return LoadFromPostgres(ctx, pg, cfg.Year)
	default:
		return nil, fmt.Errorf("unknown dataset source %q", cfg.Source)
	}
}
