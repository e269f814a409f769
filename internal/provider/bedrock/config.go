package bedrock

// Config contains Bedrock provider configuration. The AWS Price List API is
// public and unauthenticated; both catalog endpoints are overridable for
// testing against local fixtures.
type Config struct {
	CatalogURL          string `env:"BEDROCK_CATALOG_URL"    envDefault:"https://pricing.us-east-1.amazonaws.com/offers/v1.0/aws/AmazonBedrock/current/us-east-1/index.json"`
	FoundationModelsURL string `env:"BEDROCK_FM_CATALOG_URL" envDefault:"https://pricing.us-east-1.amazonaws.com/offers/v1.0/aws/AmazonBedrockFoundationModels/current/us-east-1/index.json"`
	Timeout             int    `env:"BEDROCK_TIMEOUT"        envDefault:"60"`
}
