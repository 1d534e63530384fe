// internal/common/config/config.go
package config

import "fmt"

// Config is the main application configuration struct.
type Config struct {
	App      AppConfig               `mapstructure:"app"`
	Server   ServerConfig            `mapstructure:"server"`
	GenAI    GenAIConfig             `mapstructure:"genai"`
	Dataset  DatasetConfig           `mapstructure:"dataset"`
	Database DatabaseConfig          `mapstructure:"database"`
	Session  SessionConfig           `mapstructure:"session"`
	Cache    CacheConfig             `mapstructure:"cache"`
	Camunda  CamundaConfig           `mapstructure:"camunda"`
	Workers  map[string]WorkerConfig `mapstructure:"workers"`
	Logging  LoggingConfig           `mapstructure:"logging"`
}

// --- Core App/Infrastructure Config ---
type AppConfig struct {
	Name        string `mapstructure:"name"`
	Version     string `mapstructure:"version"`
	Environment string `mapstructure:"environment"`
}

type ServerConfig struct {
	Port              string   `mapstructure:"port"`
	CORSAllowOrigins  []string `mapstructure:"cors_allow_origins"`
	ReadHeaderTimeout int      `mapstructure:"read_header_timeout"` // milliseconds
	RequestTimeout    int      `mapstructure:"request_timeout"`     // milliseconds
}

// GenAIConfig configures the hosted language model.
type GenAIConfig struct {
	Provider        string `mapstructure:"provider"` // gemini | mock
	BaseURL         string `mapstructure:"base_url"`
	APIVersion      string `mapstructure:"api_version"`
	APIKey          string `mapstructure:"api_key"`
	Model           string `mapstructure:"model"`
	Timeout         int    `mapstructure:"timeout"` // milliseconds
	MaxOutputTokens int    `mapstructure:"max_output_tokens"`
}

// DatasetConfig selects where assessment records come from.
type DatasetConfig struct {
	Source string `mapstructure:"source"` // static | postgres
	Year   int    `mapstructure:"year"`
	// StrictCategories rejects records whose category disagrees with the
	// 70/90/100 thresholds instead of only logging them.
	StrictCategories bool `mapstructure:"strict_categories"`
}

type DatabaseConfig struct {
	Postgres PostgresConfig `mapstructure:"postgres"`
	Redis    RedisConfig    `mapstructure:"redis"`
}

type PostgresConfig struct {
	Host           string `mapstructure:"host"`
	Port           int    `mapstructure:"port"`
	Database       string `mapstructure:"database"`
	User           string `mapstructure:"user"`
	Password       string `mapstructure:"password"`
	MaxConnections int    `mapstructure:"max_connections"`
	MaxIdle        int    `mapstructure:"max_idle"`
	SSLMode        string `mapstructure:"sslmode"`
}

// GetDSN returns the PostgreSQL connection string
func (p PostgresConfig) GetDSN() string {
	return fmt.Sprintf(
		"host=%s port=%d user=%s password=%s dbname=%s sslmode=%s",
		p.Host, p.Port, p.User, p.Password, p.Database, p.SSLMode,
	)
}

type RedisConfig struct {
	Address  string `mapstructure:"address"`
	Password string `mapstructure:"password"`
	DB       int    `mapstructure:"db"`
}

// SessionConfig selects the chat session backend.
type SessionConfig struct {
	Backend string `mapstructure:"backend"` // memory | redis
	TTL     int    `mapstructure:"ttl"`     // seconds, 0 keeps sessions until restart/eviction
}

type CacheConfig struct {
	InterpretTTL int `mapstructure:"interpret_ttl"` // seconds, 0 disables the cache
}

type CamundaConfig struct {
	Enabled        bool   `mapstructure:"enabled"`
	BrokerAddress  string `mapstructure:"broker_address"`
	MaxJobsActive  int    `mapstructure:"max_jobs_active"`
	Timeout        int    `mapstructure:"timeout"`         // milliseconds
	RequestTimeout int    `mapstructure:"request_timeout"` // milliseconds
}

// WorkerConfig holds the core settings applicable to every pipeline step.
type WorkerConfig struct {
	Enabled       bool `mapstructure:"enabled"`
	MaxJobsActive int  `mapstructure:"max_jobs_active"`
	Timeout       int  `mapstructure:"timeout"` // milliseconds
}

// LoggingConfig holds logging settings.
type LoggingConfig struct {
	Level  string `mapstructure:"level"`
	Format string `mapstructure:"format"`
	Output string `mapstructure:"output"`
}

// UsesRedis reports whether any enabled component needs a Redis connection.
func (c *Config) UsesRedis() bool {
	if c.Session.Backend == "redis" {
		return true
	}
	return c.Cache.InterpretTTL > 0 && c.Database.Redis.Address != ""
}
