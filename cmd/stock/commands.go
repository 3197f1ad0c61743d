package main

import (
	"context"
	"errors"
	"fmt"
	"log"

	"github.com/shopspring/decimal"
	"github.com/spf13/cobra"

	"StockLens/internal/calculator"
	"StockLens/internal/collector"
	"StockLens/internal/model"
	"StockLens/internal/report"
	"StockLens/internal/symbol"
)

func klineCmd(opts *globalOptions) *cobra.Command {
	var (
		start, end, freq, export, investment string
		days                                 int
	)
	cmd := &cobra.Command{
		Use:   "kline <symbol>",
		Short: "Show k-line history and period statistics",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			sym, err := symbol.Resolve(args[0])
			if err != nil {
				return err
			}
			f, err := model.ParseFrequency(freq)
			if err != nil {
				return err
			}
			if days <= 0 {
				return fmt.Errorf("--days must be positive, got %d", days)
			}
			a, err := newApp(cmd, opts)
			if err != nil {
				return err
			}
			inv, err := a.cfg.Investment()
			if err != nil {
				return err
			}
			if investment != "" {
				if inv, err = decimal.NewFromString(investment); err != nil {
					return fmt.Errorf("invalid --investment %q: %w", investment, err)
				}
			}
			if inv.IsNegative() {
				return fmt.Errorf("--investment must not be negative")
			}
			rng, err := model.ResolveRange(start, end, days, a.now())
			if err != nil {
				return err
			}

			var bars []model.DailyRecord
			err = a.withSession(cmd.Context(), func(s collector.Session) error {
				bars, err = s.QueryDaily(cmd.Context(), sym, rng, f)
				return err
			})
			if err != nil {
				return err
			}

			a.renderer.Records(sym, rng, f, bars)
			st, err := calculator.SummarizePeriods(bars, inv, f.PeriodsPerYear())
			switch {
			case errors.Is(err, calculator.ErrInsufficientData):
				a.renderer.Printf("Not enough bars for statistics: %v\n", err)
			case err != nil:
				return err
			default:
				a.renderer.KlineStat(st)
			}
			if export != "" {
				if err := report.ExportRecords(export, bars); err != nil {
					return err
				}
				a.renderer.Printf("Exported %d bars to %s\n", len(bars), export)
			}
			return nil
		},
	}
	cmd.Flags().StringVarP(&start, "start", "s", "", "Start date YYYY-MM-DD")
	cmd.Flags().StringVarP(&end, "end", "e", "", "End date YYYY-MM-DD")
	cmd.Flags().IntVarP(&days, "days", "d", model.DefaultDays, "Calendar days to look back when start is not given")
	cmd.Flags().StringVarP(&freq, "frequency", "f", string(model.FreqDaily), "Bar frequency: 5m, 15m, 30m, 60m, d, w, M")
	cmd.Flags().StringVar(&export, "export", "", "Write the bars to this CSV file")
	cmd.Flags().StringVar(&investment, "investment", "", "Simulate a lump-sum investment of this amount (default from config, 10000)")
	return cmd
}

func infoCmd(opts *globalOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "info <symbol>",
		Short: "Show company listing information",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			sym, err := symbol.Resolve(args[0])
			if err != nil {
				return err
			}
			a, err := newApp(cmd, opts)
			if err != nil {
				return err
			}
			var info *model.CompanyInfo
			err = a.withSession(cmd.Context(), func(s collector.Session) error {
				info, err = s.QueryInfo(cmd.Context(), sym)
				return err
			})
			if err != nil {
				return err
			}
			a.renderer.Info(info)
			a.renderer.Links(sym)
			return nil
		},
	}
}

func realtimeCmd(opts *globalOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "realtime <symbol>...",
		Short: "Show the latest quotes of one or more symbols",
		Args:  cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			syms, err := symbol.ResolveAll(args)
			if err != nil {
				return err
			}
			a, err := newApp(cmd, opts)
			if err != nil {
				return err
			}
			var quotes []model.Quote
			err = a.withSession(cmd.Context(), func(s collector.Session) error {
				quotes, err = s.QueryRealtime(cmd.Context(), syms)
				return err
			})
			if err != nil {
				return err
			}
			a.renderer.Quotes(quotes)
			return nil
		},
	}
}

func financeCmd(opts *globalOptions) *cobra.Command {
	var year, quarter int
	cmd := &cobra.Command{
		Use:   "finance <symbol>",
		Short: "Show quarterly financial statements",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			sym, err := symbol.Resolve(args[0])
			if err != nil {
				return err
			}
			if quarter < 1 || quarter > 4 {
				return fmt.Errorf("quarter must be 1-4, got %d", quarter)
			}
			a, err := newApp(cmd, opts)
			if err != nil {
				return err
			}
			if year == 0 {
				year = a.now().Year() - 1
			}
			var rec *model.FinancialRecord
			err = a.withSession(cmd.Context(), func(s collector.Session) error {
				rec, err = s.QueryFinance(cmd.Context(), sym, year, quarter)
				return err
			})
			if err != nil {
				return err
			}
			a.renderer.Finance(rec)
			return nil
		},
	}
	cmd.Flags().IntVarP(&year, "year", "y", 0, "Fiscal year (default: last year)")
	cmd.Flags().IntVarP(&quarter, "quarter", "q", 4, "Fiscal quarter 1-4")
	return cmd
}

func indexCmd(opts *globalOptions) *cobra.Command {
	var id, export string
	cmd := &cobra.Command{
		Use:   "index",
		Short: "List the constituents of sz50, hs300 or zz500",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			ix, err := model.LookupIndex(id)
			if err != nil {
				return err
			}
			a, err := newApp(cmd, opts)
			if err != nil {
				return err
			}
			members, err := queryConstituents(cmd.Context(), a, ix)
			if err != nil {
				return err
			}
			a.renderer.Constituents(ix, members)
			if export != "" {
				if err := report.ExportConstituents(export, members); err != nil {
					return err
				}
				a.renderer.Printf("Exported %d constituents to %s\n", len(members), export)
			}
			return nil
		},
	}
	cmd.Flags().StringVarP(&id, "index", "i", "", "Index: sz50, hs300 or zz500")
	cmd.Flags().StringVar(&export, "export", "", "Write the constituents to this CSV file")
	_ = cmd.MarkFlagRequired("index")
	return cmd
}

func queryConstituents(ctx context.Context, a *app, ix model.Index) ([]model.Constituent, error) {
	var members []model.Constituent
	err := a.withSession(ctx, func(s collector.Session) error {
		var err error
		members, err = s.QueryIndexConstituents(ctx, ix)
		return err
	})
	if err == nil {
		log.Printf("[INFO] %s: %d constituents", ix.ID, len(members))
	}
	return members, err
}
