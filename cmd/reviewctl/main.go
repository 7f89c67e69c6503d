// Command reviewctl is the administrative CLI for the review sentiment
// service: it seeds sample data, clears the review table, prints statistics
// and applies migrations.
package main

import (
	"context"
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/utafrali/ReviewSentiment/internal/app"
	"github.com/utafrali/ReviewSentiment/internal/config"
	"github.com/utafrali/ReviewSentiment/internal/domain"
	"github.com/utafrali/ReviewSentiment/internal/service"
	"github.com/utafrali/ReviewSentiment/pkg/logger"
)

// version is set at build time with -ldflags "-X main.version=...".
var version = "dev"

// backend is the subset of the review core used by the subcommands.
type backend interface {
	Submit(ctx context.Context, input service.SubmitReviewInput) (*domain.Review, error)
	Clear(ctx context.Context) (int64, error)
	Stats(ctx context.Context) (*domain.Stats, error)
	Migrate(ctx context.Context) error
	Close()
}

type coreBackend struct {
	*app.Core
}

func (b coreBackend) Submit(ctx context.Context, input service.SubmitReviewInput) (*domain.Review, error) {
	return b.Reviews.Submit(ctx, input)
}

func (b coreBackend) Clear(ctx context.Context) (int64, error) {
	return b.Reviews.Clear(ctx)
}

func (b coreBackend) Stats(ctx context.Context) (*domain.Stats, error) {
	return b.Reviews.Stats(ctx)
}

// openBackend is replaced in tests.
var openBackend = openCore

func openCore(ctx context.Context) (backend, error) {
	cfg, err := config.Load()
	if err != nil {
		return nil, fmt.Errorf("load config: %w", err)
	}
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid config: %w", err)
	}

	// Logs go to stderr so command output stays readable.
	log := logger.NewWithWriter(cfg.ServiceName+"-cli", cfg.LogLevel, os.Stderr)

	core, err := app.NewCore(ctx, cfg, nil, nil, log)
	if err != nil {
		return nil, err
	}
	return coreBackend{Core: core}, nil
}

var rootCmd = &cobra.Command{
	Use:           "reviewctl",
	Short:         "Administer the review sentiment database",
	Version:       version,
	SilenceUsage:  true,
	SilenceErrors: true,
}

func init() {
	rootCmd.AddCommand(seedCmd, clearCmd, statsCmd, migrateCmd)
}

func main() {
	if err := rootCmd.ExecuteContext(context.Background()); err != nil {
		fmt.Fprintln(os.Stderr, errorStyle.Render("Error: "+err.Error()))
		os.Exit(1)
	}
}
