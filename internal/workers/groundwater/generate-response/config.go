// internal/workers/groundwater/generate-response/config.go
package generateresponse

import (
	"time"

	"ingres-assistant/internal/common/config"
)

// DefaultHistoryLimit is how many prior messages the model sees.
const DefaultHistoryLimit = 6

type Config struct {
	Timeout      time.Duration
	HistoryLimit int
}

func LoadConfig(cfg *config.Config) *Config {
	wc := config.GetWorkerConfig(cfg, TaskType)
	return &Config{
		Timeout:      config.GetDuration(wc.Timeout),
		HistoryLimit: DefaultHistoryLimit,
	}
}
