package main

import (
	"context"
	"flag"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/mikey/email-tone-analyzer/internal/adapters/cache"
	"github.com/mikey/email-tone-analyzer/internal/adapters/filter"
	"github.com/mikey/email-tone-analyzer/internal/adapters/httpapi"
	"github.com/mikey/email-tone-analyzer/internal/config"
	"github.com/mikey/email-tone-analyzer/internal/di"
	"github.com/mikey/email-tone-analyzer/internal/factory"
	"go.uber.org/dig"
	"go.uber.org/zap"
)

func main() {
	configFile := flag.String("config", "", "Path to config file (searches the standard locations if empty)")
	flag.Parse()

	// Build the dependency injection container
	container, err := di.BuildContainer(*configFile)
	if err != nil {
		fmt.Printf("Failed to build dependency container: %v\n", err)
		os.Exit(1)
	}

	// Run the application
	if err := container.Invoke(run); err != nil {
		fmt.Printf("Application error: %v\n", err)
		os.Exit(1)
	}
}

// deps are the dependencies run gets injected
type deps struct {
	dig.In

	Config    *config.Config
	Logger    *zap.Logger
	Server    *httpapi.Server
	Postfix   *filter.PostfixFilter
	Providers *factory.ProviderFactory
	Cache     *cache.MemoryCache
}

// run is the main application function that gets all dependencies injected
func run(d deps) error {
	logger := d.Logger
	defer logger.Sync()

	if err := d.Server.Start(); err != nil {
		return err
	}

	smtpEnabled := d.Config.GetSMTP().Enabled
	if smtpEnabled {
		if err := d.Postfix.Start(); err != nil {
			_ = d.Server.Stop(context.Background())
			return err
		}
	}

	// Handle graceful shutdown
	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)

	<-sigCh
	logger.Info("Shutting down...")

	if smtpEnabled {
		if err := d.Postfix.Stop(); err != nil {
			logger.Error("Failed to stop SMTP filter", zap.Error(err))
		}
	}

	if err := d.Server.Stop(context.Background()); err != nil {
		logger.Error("Failed to stop HTTP server", zap.Error(err))
	}

	// Close any resources that need closing
	if err := d.Providers.Close(); err != nil {
		logger.Error("Failed to close model providers", zap.Error(err))
	}

	if d.Cache != nil {
		d.Cache.Stop()
	}

	logger.Info("Shutdown complete")
	return nil
}
