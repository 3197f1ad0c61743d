// Package pipeline runs the batch statistics flow over a watchlist:
// load the watchlist, fetch and summarize every entry, then render the report.
package pipeline

import (
	"context"
	"errors"
	"fmt"
	"log"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"StockLens/internal/calculator"
	"StockLens/internal/collector"
	"StockLens/internal/model"
	"StockLens/internal/notifier"
	"StockLens/internal/recorder"
	"StockLens/internal/report"
	"StockLens/internal/watchlist"
)

// State is a step of a batch run.
type State string

const (
	StateStart      State = "START"
	StateLoadConfig State = "LOAD_CONFIG"
	StateFetch      State = "FETCH"
	StateSummarize  State = "SUMMARIZE"
	StateRender     State = "RENDER"
	StateDone       State = "DONE"
)

// Notifier delivers the batch summary message.
type Notifier interface {
	Notify(ctx context.Context, text string) error
}

// Params describes one batch run. A zero Range means the last Days days
// before the run starts.
type Params struct {
	WatchlistPath string
	Range         model.DateRange
	Days          int
	Investment    decimal.Decimal
	Frequency     model.Frequency
	ExportPath    string
}

// BatchReport is the outcome of one run. Succeeded and Failed keep watchlist order.
type BatchReport struct {
	RunID      uuid.UUID
	StartedAt  time.Time
	Range      model.DateRange
	Investment decimal.Decimal
	Succeeded  []model.StatRow
	Failed     []model.Failure
	Warnings   []watchlist.Warning
}

// Pipeline wires a session to rendering, history and notification. Renderer,
// Recorder and Notifier are optional.
type Pipeline struct {
	Session  collector.Session
	Provider string
	Renderer *report.Renderer
	Recorder recorder.Recorder
	Notifier Notifier
	Now      func() time.Time
}

func (p *Pipeline) now() time.Time {
	if p.Now != nil {
		return p.Now()
	}
	return time.Now()
}

// Run executes one batch. It fails only when the watchlist cannot be loaded or
// the export cannot be written; per-entry errors end up in Failed.
func (p *Pipeline) Run(ctx context.Context, params Params) (*BatchReport, error) {
	rep := &BatchReport{
		RunID:      uuid.New(),
		StartedAt:  p.now(),
		Range:      params.Range,
		Investment: params.Investment,
	}
	if rep.Range.Start.IsZero() {
		rep.Range = model.LastDays(params.Days, rep.StartedAt)
	}
	freq := params.Frequency
	if freq == "" {
		freq = model.FreqDaily
	}
	tag := rep.RunID.String()[:8]
	enter := func(s State, format string, args ...any) {
		log.Printf("[INFO] batch %s: %s %s", tag, s, fmt.Sprintf(format, args...))
	}

	enter(StateStart, "range=%s investment=%s", rep.Range, rep.Investment.StringFixed(2))

	enter(StateLoadConfig, "path=%s", params.WatchlistPath)
	wl, err := watchlist.Parse(params.WatchlistPath)
	if wl != nil {
		rep.Warnings = wl.Warnings
		for _, w := range wl.Warnings {
			log.Printf("[WARN] batch %s: skipped watchlist %s", tag, w)
		}
	}
	if err != nil {
		return rep, fmt.Errorf("load watchlist: %w", err)
	}

	for i, entry := range wl.Entries {
		if err := ctx.Err(); err != nil {
			for _, rest := range wl.Entries[i:] {
				rep.Failed = append(rep.Failed, model.Failure{Symbol: rest.Symbol, Comment: rest.Comment, Reason: err.Error()})
			}
			break
		}
		enter(StateFetch, "%s (%d/%d)", entry.Symbol, i+1, len(wl.Entries))
		bars, err := p.Session.QueryDaily(ctx, entry.Symbol, rep.Range, freq)
		if err != nil {
			log.Printf("[WARN] batch %s: fetch %s failed: %v", tag, entry.Symbol, err)
			rep.Failed = append(rep.Failed, model.Failure{Symbol: entry.Symbol, Comment: entry.Comment, Reason: err.Error()})
			continue
		}

		enter(StateSummarize, "%s bars=%d", entry.Symbol, len(bars))
		st, err := calculator.SummarizePeriods(bars, rep.Investment, freq.PeriodsPerYear())
		if err != nil {
			log.Printf("[WARN] batch %s: summarize %s failed: %v", tag, entry.Symbol, err)
			rep.Failed = append(rep.Failed, model.Failure{Symbol: entry.Symbol, Comment: entry.Comment, Reason: err.Error()})
			continue
		}
		rep.Succeeded = append(rep.Succeeded, model.StatRow{Symbol: entry.Symbol, Comment: entry.Comment, Stat: st})
	}

	enter(StateRender, "succeeded=%d failed=%d warnings=%d", len(rep.Succeeded), len(rep.Failed), len(rep.Warnings))
	if p.Renderer != nil {
		p.render(rep, params.WatchlistPath)
	}
	var exportErr error
	if params.ExportPath != "" {
		if exportErr = report.ExportStats(params.ExportPath, rep.Succeeded); exportErr == nil {
			log.Printf("[INFO] batch %s: exported %d rows to %s", tag, len(rep.Succeeded), params.ExportPath)
			if p.Renderer != nil {
				p.Renderer.Printf("Exported to %s\n", params.ExportPath)
			}
		}
	}

	run := rep.Run(p.Provider, params.WatchlistPath, p.now())
	if p.Recorder != nil {
		if err := p.Recorder.RecordBatch(ctx, run); err != nil {
			log.Printf("[ERROR] batch %s: record history: %v", tag, err)
		}
	}
	if p.Notifier != nil {
		if err := p.Notifier.Notify(ctx, notifier.FormatBatchReport(run)); err != nil {
			log.Printf("[ERROR] batch %s: notify: %v", tag, err)
		}
	}

	enter(StateDone, "in %s", p.now().Sub(rep.StartedAt).Round(time.Millisecond))
	if exportErr != nil {
		return rep, exportErr
	}
	return rep, nil
}

func (p *Pipeline) render(rep *BatchReport, path string) {
	r := p.Renderer
	r.Printf("Batch statistics for %s, %s, initial investment %s\n", path, rep.Range, report.Money(rep.Investment))
	if len(rep.Succeeded) > 0 {
		r.Stats(rep.Succeeded)
	} else {
		r.Printf("No symbol produced statistics.\n")
	}
	r.Failures(rep.Failed)
	r.Warnings(rep.Warnings)
}

// Run converts the report into its persisted form.
func (rep *BatchReport) Run(provider, watchlistPath string, finished time.Time) *recorder.BatchRun {
	run := &recorder.BatchRun{
		ID:         rep.RunID,
		Provider:   provider,
		Watchlist:  watchlistPath,
		StartedAt:  rep.StartedAt,
		FinishedAt: finished,
		RangeStart: rep.Range.Start,
		RangeEnd:   rep.Range.End,
		Investment: rep.Investment,
		Warnings:   len(rep.Warnings),
	}
	for _, row := range rep.Succeeded {
		run.Results = append(run.Results, recorder.BatchResult{
			Symbol:      row.Symbol.String(),
			Comment:     row.Comment,
			Status:      recorder.StatusOK,
			TotalReturn: row.Stat.TotalReturn,
			Volatility:  row.Stat.Volatility,
			MaxDrawdown: row.Stat.MaxDrawdown,
			EndingValue: row.Stat.EndingValue,
		})
	}
	for _, f := range rep.Failed {
		run.Results = append(run.Results, recorder.BatchResult{
			Symbol:  f.Symbol.String(),
			Comment: f.Comment,
			Status:  recorder.StatusFailed,
			Reason:  f.Reason,
		})
	}
	return run
}

// IsConfigError reports whether err came from loading the watchlist.
func IsConfigError(err error) bool {
	return errors.Is(err, watchlist.ErrFileNotFound) || errors.Is(err, watchlist.ErrEmptyWatchlist)
}
