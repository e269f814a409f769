package config

import (
	"github.com/caarlos0/env/v11"
	"github.com/joho/godotenv"
	"go.uber.org/dig"

	"github.com/davidbz/pricelens/internal/provider/bedrock"
	"github.com/davidbz/pricelens/internal/provider/openai"
	"github.com/davidbz/pricelens/internal/provider/openrouter"
)

// Config represents the service configuration.
type Config struct {
	Server     ServerConfig
	CORS       CORSConfig
	Redis      RedisConfig
	Bedrock    bedrock.Config
	OpenRouter openrouter.Config
	OpenAI     openai.Config
}

// ServerConfig contains HTTP server settings.
type ServerConfig struct {
	Port           int  `env:"SERVER_PORT"          envDefault:"8080"`
	ReadTimeout    int  `env:"SERVER_READ_TIMEOUT"  envDefault:"30"`
	WriteTimeout   int  `env:"SERVER_WRITE_TIMEOUT" envDefault:"120"`
	RefreshOnStart bool `env:"REFRESH_ON_START"     envDefault:"true"`
}

// CORSConfig contains CORS policy settings.
type CORSConfig struct {
	AllowedOrigins   []string `env:"CORS_ALLOWED_ORIGINS"   envSeparator:"," envDefault:"*"`
	AllowedMethods   []string `env:"CORS_ALLOWED_METHODS"   envSeparator:"," envDefault:"GET,POST,OPTIONS"`
	AllowedHeaders   []string `env:"CORS_ALLOWED_HEADERS"   envSeparator:"," envDefault:"Content-Type,Authorization"`
	AllowCredentials bool     `env:"CORS_ALLOW_CREDENTIALS"                  envDefault:"true"`
	MaxAge           int      `env:"CORS_MAX_AGE"                            envDefault:"86400"`
}

// RedisConfig contains snapshot cache settings. An empty address disables
// snapshot persistence entirely.
type RedisConfig struct {
	Addr        string `env:"REDIS_ADDR"`
	Password    string `env:"REDIS_PASSWORD"`
	DB          int    `env:"REDIS_DB"           envDefault:"0"`
	SnapshotTTL int    `env:"REDIS_SNAPSHOT_TTL" envDefault:"0"` // seconds, 0 = no expiry
}

// DepConfig is used for dependency injection with dig.
type DepConfig struct {
	dig.Out
	*ServerConfig
	*CORSConfig
	*RedisConfig
	Bedrock    *bedrock.Config
	OpenRouter *openrouter.Config
	OpenAI     *openai.Config
}

// Load loads environment files and parses configuration.
func Load() *Config {
	for _, file := range []string{".env"} {
		_ = godotenv.Load(file)
	}

	var cfg Config
	if err := env.Parse(&cfg); err != nil {
		panic(err)
	}

	return &cfg
}

// ParseDependenciesConfig returns pointers to sub-configs for dependency injection.
func ParseDependenciesConfig(cfg *Config) DepConfig {
	return DepConfig{
		dig.Out{},
		&cfg.Server,
		&cfg.CORS,
		&cfg.Redis,
		&cfg.Bedrock,
		&cfg.OpenRouter,
		&cfg.OpenAI,
	}
}
