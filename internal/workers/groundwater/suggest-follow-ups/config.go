// internal/workers/groundwater/suggest-follow-ups/config.go
package suggestfollowups

import (
	"time"

	"ingres-assistant/internal/common/config"
)

// MaxQuestions caps the suggestions returned per reply.
const MaxQuestions = 3

type Config struct {
	Enabled bool
	Timeout time.Duration
}

func LoadConfig(cfg *config.Config) *Config {
	wc := config.GetWorkerConfig(cfg, TaskType)
	return &Config{
		Enabled: wc.Enabled,
		Timeout: config.GetDuration(wc.Timeout),
	}
}
