// internal/workers/groundwater/interpret-query/config.go
package interpretquery

import (
	"time"

	"ingres-assistant/internal/common/config"
)

type Config struct {
	Timeout  time.Duration
	CacheTTL time.Duration
}

func LoadConfig(cfg *config.Config) *Config {
	wc := config.GetWorkerConfig(cfg, TaskType)
	return &Config{
		Timeout:  config.GetDuration(wc.Timeout),
		CacheTTL: time.Duration(cfg.Cache.InterpretTTL) * time.Second,
	}
}
