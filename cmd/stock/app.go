package main

import (
	"context"
	"errors"
	"fmt"
	"log"
	"time"

	"github.com/spf13/cobra"

	"StockLens/internal/calculator"
	"StockLens/internal/collector"
	"StockLens/internal/config"
	"StockLens/internal/model"
	"StockLens/internal/report"
	"StockLens/internal/symbol"
	"StockLens/internal/watchlist"
)

type globalOptions struct {
	provider string
}

// app is the per-invocation state shared by every command.
type app struct {
	cfg      *config.Config
	client   collector.Client
	renderer *report.Renderer
	now      func() time.Time
}

func newApp(cmd *cobra.Command, opts *globalOptions) (*app, error) {
	cfg, err := config.Load(config.Path())
	if err != nil {
		return nil, err
	}
	if opts.provider != "" {
		cfg.DataSource.Provider = opts.provider
	}
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("config validation: %w", err)
	}
	client := newClient(cfg)
	log.Printf("[INFO] data source: %s", client.Name())
	return &app{
		cfg:      cfg,
		client:   client,
		renderer: report.NewRenderer(cmd.OutOrStdout()),
		now:      time.Now,
	}, nil
}

func newClient(cfg *config.Config) collector.Client {
	switch cfg.DataSource.Provider {
	case config.ProviderGateway:
		return collector.NewGatewayClient(cfg.DataSource.BaseURL, cfg.DataSource.APIKey, cfg.Proxy)
	case config.ProviderMock:
		return &collector.MockClient{}
	default:
		return collector.NewPublicClient(cfg.Proxy)
	}
}

// withSession runs fn inside the single session of this invocation.
func (a *app) withSession(ctx context.Context, fn func(collector.Session) error) error {
	return collector.WithSession(ctx, a.client, fn)
}

// describe turns an error into the message printed before exiting.
func describe(err error) error {
	var ise *symbol.InvalidSymbolError
	switch {
	case errors.As(err, &ise):
		return fmt.Errorf("%w (use sh.600000, sz.000001 or a bare 6-digit code)", err)
	case errors.Is(err, watchlist.ErrFileNotFound):
		return fmt.Errorf("%w (create it with one symbol per line, e.g. sh.600000 # comment)", err)
	case errors.Is(err, collector.ErrUnsupported):
		return fmt.Errorf("%w (try --provider gateway)", err)
	case errors.Is(err, model.ErrInvalidRange):
		return fmt.Errorf("%w (dates use YYYY-MM-DD)", err)
	case errors.Is(err, calculator.ErrInsufficientData):
		return fmt.Errorf("%w (widen the date range)", err)
	}
	return err
}
