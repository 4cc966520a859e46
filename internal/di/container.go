package di

import (
	"context"
	"time"

	"go.uber.org/dig"
	"go.uber.org/zap"

	"github.com/mikey/email-tone-analyzer/internal/adapters/cache"
	"github.com/mikey/email-tone-analyzer/internal/adapters/filter"
	"github.com/mikey/email-tone-analyzer/internal/adapters/httpapi"
	"github.com/mikey/email-tone-analyzer/internal/config"
	"github.com/mikey/email-tone-analyzer/internal/core"
	"github.com/mikey/email-tone-analyzer/internal/factory"
	"github.com/mikey/email-tone-analyzer/internal/logging"
	"github.com/mikey/email-tone-analyzer/internal/ports"
	"github.com/mikey/email-tone-analyzer/internal/rewrite"
)

// LoadConfig reads the configuration from path, or from the standard search paths when path is empty
func LoadConfig(path string) (*config.Config, error) {
	if path != "" {
		return config.NewFromFile(path)
	}
	return config.New()
}

// BuildContainer creates and configures a dependency injection container for the server
func BuildContainer(configPath string) (*dig.Container, error) {
	container := dig.New()

	// Register configuration
	if err := container.Provide(func() (*config.Config, error) {
		return LoadConfig(configPath)
	}); err != nil {
		return nil, err
	}

	// Register logger
	if err := container.Provide(logging.InitLogger); err != nil {
		return nil, err
	}

	if err := provideToneService(container); err != nil {
		return nil, err
	}

	// Register filters and the HTTP API
	if err := container.Provide(factory.NewFilterFactory); err != nil {
		return nil, err
	}
	if err := container.Provide(func(f *factory.FilterFactory) *filter.PostfixFilter {
		return f.CreatePostfixFilter()
	}); err != nil {
		return nil, err
	}
	if err := container.Provide(func(s *core.ToneService, logger *zap.Logger) *httpapi.Handler {
		return httpapi.NewHandler(s, logger)
	}); err != nil {
		return nil, err
	}
	if err := container.Provide(func(cfg *config.Config, h *httpapi.Handler, logger *zap.Logger) (*httpapi.Server, error) {
		serverCfg, err := cfg.GetServer()
		if err != nil {
			return nil, err
		}
		return httpapi.NewServer(serverCfg, h, logger), nil
	}); err != nil {
		return nil, err
	}

	return container, nil
}

// provideToneService registers the providers, cache and tone service shared by the server and the CLI
func provideToneService(container *dig.Container) error {
	// Register factories
	if err := container.Provide(factory.NewProviderFactory); err != nil {
		return err
	}
	if err := container.Provide(factory.NewCacheFactory); err != nil {
		return err
	}

	// Register analysis provider and rewriter
	if err := container.Provide(func(f *factory.ProviderFactory) (core.AnalysisProvider, error) {
		return f.CreateAnalysisProvider(context.Background())
	}); err != nil {
		return err
	}
	if err := container.Provide(func(f *factory.ProviderFactory) (core.Rewriter, error) {
		return f.CreateRewriter(context.Background())
	}); err != nil {
		return err
	}
	if err := container.Provide(func() core.RewritePlanner {
		return rewrite.NewAdvisor()
	}); err != nil {
		return err
	}

	// Register cache repository
	if err := container.Provide(func(f *factory.CacheFactory) (*cache.MemoryCache, error) {
		return f.CreateCacheRepository()
	}); err != nil {
		return err
	}

	// Register tone service
	if err := container.Provide(func(
		analyzer core.AnalysisProvider,
		rewriter core.Rewriter,
		planner core.RewritePlanner,
		memoryCache *cache.MemoryCache,
		f *factory.CacheFactory,
		logger *zap.Logger,
	) (*core.ToneService, error) {
		ttl := time.Duration(0)
		if f.IsCacheEnabled() {
			var err error
			if ttl, err = f.GetCacheTTL(); err != nil {
				return nil, err
			}
		}
		return core.NewToneService(
			analyzer,
			rewriter,
			planner,
			factory.Repository(memoryCache),
			logger,
			f.IsCacheEnabled(),
			ttl,
		), nil
	}); err != nil {
		return err
	}

	// The filters only need analysis
	return container.Provide(func(s *core.ToneService) ports.ToneAnalyzer {
		return s
	})
}
