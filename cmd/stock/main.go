package main

import (
	"context"
	"fmt"
	"log"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"StockLens/internal/config"
)

var version = "0.3.0"

func main() {
	log.SetFlags(log.LstdFlags | log.Lshortfile)

	if err := config.LoadDotEnv(); err != nil {
		log.Printf("[WARN] %v", err)
	}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	if err := newRootCmd().ExecuteContext(ctx); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", describe(err))
		stop()
		os.Exit(1)
	}
}

func newRootCmd() *cobra.Command {
	var opts globalOptions
	rootCmd := &cobra.Command{
		Use:   "stock",
		Short: "A-share market data from the command line",
		Long: `stock queries k-lines, company info, realtime quotes, financial statements
and index constituents, and summarizes a watchlist in batch mode.`,
		SilenceUsage:  true,
		SilenceErrors: true,
	}
	rootCmd.PersistentFlags().StringVarP(&opts.provider, "provider", "p", "", "Data provider: gateway, public or mock (default from config)")

	rootCmd.AddCommand(klineCmd(&opts))
	rootCmd.AddCommand(infoCmd(&opts))
	rootCmd.AddCommand(realtimeCmd(&opts))
	rootCmd.AddCommand(financeCmd(&opts))
	rootCmd.AddCommand(indexCmd(&opts))
	rootCmd.AddCommand(batchCmd(&opts))
	rootCmd.AddCommand(versionCmd())
	return rootCmd
}

func versionCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "version",
		Short: "Print version information",
		Run: func(cmd *cobra.Command, args []string) {
			fmt.Fprintf(cmd.OutOrStdout(), "stock version %s\n", version)
		},
	}
}
