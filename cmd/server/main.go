// Package main provides the VK bot server entry point.
package main

import (
	"context"
	"fmt"
	"os"

	"github.com/garyellow/vkbot-go/internal/app"
	"github.com/garyellow/vkbot-go/internal/config"
)

func main() {
	if err := run(); err != nil {
		_, _ = fmt.Fprintf(os.Stderr, "%v\n", err)
		os.Exit(1)
	}
}

func run() error {
	cfg, err := config.Load()
	if err != nil {
		return fmt.Errorf("failed to load config: %w", err)
	}

	ctx := context.Background()
	application, err := app.Initialize(ctx, cfg)
	if err != nil {
		return fmt.Errorf("failed to initialize: %w", err)
	}

	return application.Run(ctx)
}
