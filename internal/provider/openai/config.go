package openai

// Config contains OpenAI provider configuration. Pricing comes from the
// curated data file; the API key is optional and only enables the live
// model-list drift check.
type Config struct {
	DataFile string `env:"OPENAI_DATA_FILE" envDefault:"data/openai.json"`
	APIKey   string `env:"OPENAI_API_KEY"`
	BaseURL  string `env:"OPENAI_BASE_URL"`
	Timeout  int    `env:"OPENAI_TIMEOUT"   envDefault:"30"`
}
