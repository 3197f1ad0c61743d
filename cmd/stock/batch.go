package main

import (
	"context"
	"fmt"
	"log"
	"os"
	"path/filepath"

	"github.com/shopspring/decimal"
	"github.com/spf13/cobra"

	"StockLens/internal/collector"
	"StockLens/internal/config"
	"StockLens/internal/model"
	"StockLens/internal/notifier"
	"StockLens/internal/pipeline"
	"StockLens/internal/recorder"
	"StockLens/internal/scheduler"
	"StockLens/internal/watchlist"
)

type batchOptions struct {
	watchlist  string
	days       int
	investment string
	freq       string
	export     string
	cron       string
	scheduled  bool
}

func batchCmd(opts *globalOptions) *cobra.Command {
	var bo batchOptions
	cmd := &cobra.Command{
		Use:   "batch",
		Short: "Summarize every symbol of a watchlist file",
		Long: `batch reads a watchlist (one symbol per line, "#" starts a comment), fetches
the last N days of every symbol and prints return, volatility, max drawdown and
the outcome of a lump-sum investment. Without --config the default stocks.txt
is used and created with sample entries when missing.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			a, err := newApp(cmd, opts)
			if err != nil {
				return err
			}
			params, err := bo.params(cmd, a.cfg)
			if err != nil {
				return err
			}
			if !cmd.Flags().Changed("config") && params.WatchlistPath == watchlist.DefaultFile {
				created, err := watchlist.EnsureDefault(params.WatchlistPath)
				if err != nil {
					return err
				}
				if created {
					a.renderer.Printf("Created %s with sample entries\n", params.WatchlistPath)
				}
			}

			rec := openRecorder(cmd.Context(), a.cfg)
			defer rec.Close()

			p := &pipeline.Pipeline{
				Provider: a.client.Name(),
				Renderer: a.renderer,
				Recorder: rec,
				Now:      a.now,
			}
			if a.cfg.TelegramEnabled() {
				p.Notifier = notifier.NewTelegramNotifier(a.cfg.Telegram.BotToken, a.cfg.Telegram.ChatID, a.cfg.Proxy)
			}

			spec := bo.cron
			if spec == "" && bo.scheduled {
				spec = a.cfg.Batch.Cron
			}
			return a.withSession(cmd.Context(), func(s collector.Session) error {
				p.Session = s
				if spec == "" {
					_, err := p.Run(cmd.Context(), params)
					return err
				}
				return runScheduled(cmd.Context(), p, params, spec)
			})
		},
	}
	cmd.Flags().StringVar(&bo.watchlist, "config", "", "Watchlist file (default from config, stocks.txt)")
	cmd.Flags().IntVarP(&bo.days, "days", "d", 0, "Calendar days to look back (default from config, 30)")
	cmd.Flags().StringVar(&bo.investment, "investment", "", "Initial investment per symbol (default from config, 10000)")
	cmd.Flags().StringVarP(&bo.freq, "frequency", "f", string(model.FreqDaily), "Bar frequency: d, w or M")
	cmd.Flags().StringVar(&bo.export, "export", "", "Write the statistics table to this CSV file")
	cmd.Flags().StringVar(&bo.cron, "cron", "", `Run on this 6-field cron spec until interrupted, e.g. "0 30 15 * * 1-5"`)
	cmd.Flags().BoolVar(&bo.scheduled, "scheduled", false, "Run on batch.cron from the config until interrupted")
	return cmd
}

func (bo *batchOptions) params(cmd *cobra.Command, cfg *config.Config) (pipeline.Params, error) {
	p := pipeline.Params{
		WatchlistPath: cfg.Batch.Watchlist,
		Days:          cfg.Batch.Days,
		ExportPath:    bo.export,
	}
	if bo.watchlist != "" {
		p.WatchlistPath = bo.watchlist
	}
	if cmd.Flags().Changed("days") {
		if bo.days <= 0 {
			return p, fmt.Errorf("--days must be positive, got %d", bo.days)
		}
		p.Days = bo.days
	}

	inv, err := cfg.Investment()
	if err != nil {
		return p, err
	}
	if bo.investment != "" {
		if inv, err = decimal.NewFromString(bo.investment); err != nil {
			return p, fmt.Errorf("invalid --investment %q: %w", bo.investment, err)
		}
		if inv.IsNegative() {
			return p, fmt.Errorf("--investment must not be negative")
		}
	}
	p.Investment = inv

	if p.Frequency, err = model.ParseFrequency(bo.freq); err != nil {
		return p, err
	}
	return p, nil
}

// openRecorder prefers Postgres, then SQLite, and falls back to a no-op
// recorder when neither can be opened.
func openRecorder(ctx context.Context, cfg *config.Config) recorder.Recorder {
	if url := cfg.Database.DatabaseURL; url != "" {
		pr, err := recorder.NewPostgresRecorder(ctx, url)
		if err == nil {
			return pr
		}
		log.Printf("[WARN] init postgres recorder failed: %v", err)
	}
	if path := cfg.Database.SQLitePath; path != "" {
		if dir := filepath.Dir(path); dir != "." {
			if err := os.MkdirAll(dir, 0755); err != nil {
				log.Printf("[WARN] create %s: %v", dir, err)
			}
		}
		sr, err := recorder.NewSQLiteRecorder(path)
		if err == nil {
			return sr
		}
		log.Printf("[WARN] init sqlite recorder failed, using noop: %v", err)
	}
	return recorder.NewNoopRecorder()
}

// runScheduled runs the batch once now and then on spec until ctx is done.
func runScheduled(ctx context.Context, p *pipeline.Pipeline, params pipeline.Params, spec string) error {
	// A wrong path should fail the command, not every tick.
	if _, err := watchlist.Parse(params.WatchlistPath); err != nil {
		return fmt.Errorf("load watchlist: %w", err)
	}
	sched := scheduler.NewScheduler(ctx, p, params)
	if err := sched.Register(spec); err != nil {
		return err
	}
	sched.RunNow()
	sched.Start()
	log.Printf("[INFO] scheduled batch running on %q. Press Ctrl+C to stop.", spec)
	<-ctx.Done()
	log.Println("[INFO] shutdown signal received, stopping...")
	sched.Stop()
	return nil
}
