package main

import (
	"context"
	"fmt"
	"log"
	"log/slog"
	"time"

	goredis "github.com/redis/go-redis/v9"
	"go.uber.org/dig"

	"github.com/davidbz/pricelens/internal/cache/redis"
	"github.com/davidbz/pricelens/internal/config"
	"github.com/davidbz/pricelens/internal/domain"
	"github.com/davidbz/pricelens/internal/http"
	"github.com/davidbz/pricelens/internal/http/middleware"
	"github.com/davidbz/pricelens/internal/observability"
	"github.com/davidbz/pricelens/internal/provider/bedrock"
	"github.com/davidbz/pricelens/internal/provider/openai"
	"github.com/davidbz/pricelens/internal/provider/openrouter"
	"github.com/davidbz/pricelens/internal/provider/registry"
)

func main() {
	container := buildContainer()

	err := container.Invoke(func(cfg *config.Config, fetcher *domain.FetchService, server *http.Server) {
		ctx := context.Background()

		// Serve the last persisted snapshot while the first live refresh runs.
		fetcher.WarmStart(ctx)

		if cfg.Server.RefreshOnStart {
			go func() {
				if _, refreshErr := fetcher.RefreshAll(ctx); refreshErr != nil {
					observability.FromContext(ctx).Error("startup refresh failed",
						observability.Error(refreshErr))
				}
			}()
		}

		if err := server.Start(); err != nil {
			log.Fatalf("Server failed to start: %v", err)
		}
	})
	if err != nil {
		log.Fatalf("Failed to start application: %v", err)
	}
}

func buildContainer() *dig.Container {
	container := dig.New()

	// Configuration
	if err := container.Provide(config.Load); err != nil {
		log.Fatalf("Failed to provide config: %v", err)
	}
	if err := container.Provide(config.ParseDependenciesConfig); err != nil {
		log.Fatalf("Failed to provide config dependencies: %v", err)
	}

	// Observability
	if err := container.Provide(observability.InitLogger); err != nil {
		log.Fatalf("Failed to provide logger: %v", err)
	}
	if err := container.Provide(func() domain.EventPublisher {
		return observability.NewEventBus(slog.Default())
	}); err != nil {
		log.Fatalf("Failed to provide event bus: %v", err)
	}

	// Provider Registry
	if err := container.Provide(func() domain.ProviderRegistry {
		return registry.NewRegistry()
	}); err != nil {
		log.Fatalf("Failed to provide registry: %v", err)
	}

	// Providers
	if err := container.Provide(func(cfg *bedrock.Config) *bedrock.Provider {
		return bedrock.NewProvider(*cfg)
	}); err != nil {
		log.Fatalf("Failed to provide Bedrock provider: %v", err)
	}
	if err := container.Provide(func(cfg *openrouter.Config) *openrouter.Provider {
		return openrouter.NewProvider(*cfg)
	}); err != nil {
		log.Fatalf("Failed to provide OpenRouter provider: %v", err)
	}
	if err := container.Provide(func(cfg *openai.Config) (*openai.Provider, error) {
		return openai.NewProvider(*cfg)
	}); err != nil {
		log.Fatalf("Failed to provide OpenAI provider: %v", err)
	}

	// Register providers with registry (invoked for side effects). Explicit
	// registration here makes order and completeness visible and testable.
	if err := container.Invoke(func(
		reg domain.ProviderRegistry,
		bedrockProvider *bedrock.Provider,
		openrouterProvider *openrouter.Provider,
		openaiProvider *openai.Provider,
	) error {
		ctx := context.Background()

		for _, provider := range []domain.Provider{
			bedrockProvider,
			openrouterProvider,
			openaiProvider,
		} {
			if err := reg.Register(ctx, provider); err != nil {
				return fmt.Errorf("failed to register %s provider: %w", provider.Name(), err)
			}
		}

		return nil
	}); err != nil {
		log.Fatalf("Failed to register providers: %v", err)
	}

	// Unified store and snapshot cache
	if err := container.Provide(domain.NewInMemoryStore); err != nil {
		log.Fatalf("Failed to provide store: %v", err)
	}
	if err := container.Provide(func(cfg *config.RedisConfig) domain.SnapshotCache {
		if cfg.Addr == "" {
			return nil
		}
		client := goredis.NewClient(&goredis.Options{
			Addr:     cfg.Addr,
			Password: cfg.Password,
			DB:       cfg.DB,
		})
		return redis.NewSnapshotCache(client, time.Duration(cfg.SnapshotTTL)*time.Second)
	}); err != nil {
		log.Fatalf("Failed to provide snapshot cache: %v", err)
	}

	// Domain Services
	if err := container.Provide(domain.NewFetchService); err != nil {
		log.Fatalf("Failed to provide fetch service: %v", err)
	}
	if err := container.Provide(domain.NewPricingService); err != nil {
		log.Fatalf("Failed to provide pricing service: %v", err)
	}
	if err := container.Provide(domain.NewCostCalculator); err != nil {
		log.Fatalf("Failed to provide cost calculator: %v", err)
	}

	// HTTP Layer
	if err := container.Provide(middleware.BuildMiddlewareChain); err != nil {
		log.Fatalf("Failed to provide middleware chain: %v", err)
	}
	if err := container.Provide(http.NewHandler); err != nil {
		log.Fatalf("Failed to provide HTTP handler: %v", err)
	}
	if err := container.Provide(http.NewServer); err != nil {
		log.Fatalf("Failed to provide HTTP server: %v", err)
	}

	return container
}
