package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"NewsScanner/internal/app"
	"NewsScanner/internal/config"
	"NewsScanner/internal/domain"
	"NewsScanner/internal/logging"
	"NewsScanner/pkg/report"
)

var cfgFile string

func main() {
	root := &cobra.Command{
		Use:   "newsscanner",
		Short: "Ingest news feeds, extract article text and classify it",
		RunE: func(cmd *cobra.Command, _ []string) error {
			return cmd.Help()
		},
		SilenceUsage: true,
	}
	root.PersistentFlags().StringVar(&cfgFile, "config", "", "path to the YAML configuration file")

	root.AddCommand(
		ingestCmd(),
		extractCmd(),
		classifyCmd(),
		runCmd(),
		statusCmd(),
	)

	if err := root.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, "error:", err)
		os.Exit(1)
	}
}

// buildApp resolves configuration (flag path first, then environment and
// defaults) and wires the application.
func buildApp() (*app.Application, error) {
	var cfg config.Config
	if cfgFile != "" {
		loaded, err := config.LoadFile(cfgFile)
		if err != nil {
			return nil, fmt.Errorf("load config %s: %w", cfgFile, err)
		}
		cfg = loaded
	} else {
		cfg = config.Load()
	}

	logger := logging.New(cfg.Logging.Level)
	return app.New(cfg, logger), nil
}

func ingestCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "ingest",
		Short: "Fetch configured feeds and admit new articles into the ledger",
		RunE: func(cmd *cobra.Command, _ []string) error {
			a, err := buildApp()
			if err != nil {
				return err
			}

			rep, err := a.Ingest(cmd.Context())
			if err != nil {
				return err
			}

			p := report.New(cmd.OutOrStdout())
			p.Title("ingest")
			p.Row("feeds", rep.Feeds)
			p.Row("feed failures", rep.FeedFailures)
			p.Row("entries parsed", rep.Parsed)
			p.Row("entries kept", rep.Kept)
			p.Row("records added", rep.Added)
			p.Flush()
			return nil
		},
	}
}

func extractCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "extract",
		Short: "Download pending articles and extract their text",
		RunE: func(cmd *cobra.Command, _ []string) error {
			a, err := buildApp()
			if err != nil {
				return err
			}

			rep, err := a.Extract(cmd.Context())
			if err != nil {
				return err
			}

			p := report.New(cmd.OutOrStdout())
			p.Title("extract")
			p.Row("processed", rep.Processed)
			p.Row("extracted", rep.Extracted)
			p.Row("blocked", rep.Blocked)
			p.Row("failed", rep.Failed)
			for method, count := range rep.Methods {
				p.Row("method "+method, count)
			}
			p.Flush()
			return nil
		},
	}
}

func classifyCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "classify",
		Short: "Send extracted articles to the classification service",
		RunE: func(cmd *cobra.Command, _ []string) error {
			a, err := buildApp()
			if err != nil {
				return err
			}

			rep, err := a.Classify(cmd.Context())
			if err != nil {
				return err
			}

			p := report.New(cmd.OutOrStdout())
			p.Title("classify")
			p.Row("processed", rep.Processed)
			p.Row("classified", rep.Classified)
			p.Row("reset", rep.Reset)
			p.Row("deleted", rep.Deleted)
			p.Row("failed", rep.Failed)
			p.Flush()
			return nil
		},
	}
}

func runCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "run",
		Short: "Run ingest, extract and classify in sequence",
		RunE: func(cmd *cobra.Command, _ []string) error {
			a, err := buildApp()
			if err != nil {
				return err
			}
			return a.Run(cmd.Context())
		},
	}
}

func statusCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "status",
		Short: "Show the ledger composition by state",
		RunE: func(cmd *cobra.Command, _ []string) error {
			a, err := buildApp()
			if err != nil {
				return err
			}

			counts, total, err := a.Status()
			if err != nil {
				return err
			}

			p := report.New(cmd.OutOrStdout())
			p.Title("ledger")
			for _, state := range domain.KnownStates {
				p.Row(string(state), counts[state])
			}
			p.Row("total", total)
			p.Flush()
			return nil
		},
	}
}
