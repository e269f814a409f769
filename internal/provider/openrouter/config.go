package openrouter

// Config contains OpenRouter provider configuration. The models endpoint is
// public and unauthenticated.
type Config struct {
	ModelsURL string `env:"OPENROUTER_MODELS_URL" envDefault:"https://openrouter.ai/api/v1/models"`
	Timeout   int    `env:"OPENROUTER_TIMEOUT"    envDefault:"30"`
}
