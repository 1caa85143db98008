// Command fedcite runs the Federal Register citation pipeline.
package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/joho/godotenv"
	"github.com/spf13/cobra"
	tclient "go.temporal.io/sdk/client"
	"go.uber.org/zap"

	"fedcite/internal/config"
	"fedcite/internal/logging"
	"fedcite/internal/pipeline"
)

var (
	logLevel      string
	fetchWorkers  int
	submitDurable bool

	p   *pipeline.Pipeline
	log *zap.Logger
)

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()
	if err := rootCmd.ExecuteContext(ctx); err != nil {
		os.Exit(1)
	}
}

var rootCmd = &cobra.Command{
	Use:   "fedcite",
	Short: "Extract cited works from Federal Register final rules",
	Long: `fedcite builds a dataset of the works cited in the footnotes of Federal
Register final rules. Each stage reads what the previous stage left on disk:

  fetch    list documents and download their raw text
  build    segment footnotes into batch request files
  submit   run the request files through the batch API
  process  reconcile responses and write the dataset`,
	SilenceUsage: true,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		_ = godotenv.Load(".env")
		cfg := config.Load()
		if logLevel != "" {
			cfg.LogLevel = logLevel
		}
		var err error
		log, err = logging.New(cfg.LogLevel, cfg.LogFormat)
		if err != nil {
			return err
		}
		p = pipeline.New(cfg, log)
		return nil
	},
	PersistentPostRun: func(cmd *cobra.Command, args []string) {
		if log != nil {
			_ = log.Sync()
		}
	},
}

func init() {
	rootCmd.PersistentFlags().StringVar(&logLevel, "log-level", "", "log level (overrides FEDCITE_LOG_LEVEL)")
	fetchCmd.Flags().IntVar(&fetchWorkers, "workers", 0, "download workers (defaults to FEDCITE_DOWNLOAD_WORKERS)")
	submitCmd.Flags().BoolVar(&submitDurable, "temporal", false, "submit through the Temporal worker instead of in process")

	rootCmd.AddCommand(fetchCmd, buildCmd, submitCmd, processCmd, allCmd)
}

var fetchCmd = &cobra.Command{
	Use:   "fetch",
	Short: "List documents and download raw text",
	RunE: func(cmd *cobra.Command, args []string) error {
		sum, err := p.Fetch(cmd.Context(), fetchWorkers)
		if err != nil {
			return err
		}
		fmt.Fprintf(cmd.OutOrStdout(), "downloaded %d, missing %d, failed %d, rate limited %d\n",
			sum.Downloaded, sum.Missing, sum.Failed, sum.RateLimited)
		return nil
	},
}

var buildCmd = &cobra.Command{
	Use:   "build",
	Short: "Write batch request files from downloaded text",
	RunE: func(cmd *cobra.Command, args []string) error {
		sum, err := p.Build(cmd.Context())
		if err != nil {
			return err
		}
		fmt.Fprintf(cmd.OutOrStdout(), "%d documents (%d without citations), %d requests in %d files, ~%d tokens\n",
			sum.Documents, sum.NoCitations, sum.Requests, sum.Files, sum.Tokens)
		return nil
	},
}

var submitCmd = &cobra.Command{
	Use:   "submit",
	Short: "Submit pending request files and wait for results",
	RunE: func(cmd *cobra.Command, args []string) error {
		if submitDurable {
			cfg := p.Config()
			c, err := tclient.Dial(tclient.Options{HostPort: cfg.TemporalAddress})
			if err != nil {
				return fmt.Errorf("dial temporal: %w", err)
			}
			defer c.Close()
			res, err := p.SubmitDurable(cmd.Context(), c)
			if err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "completed %d, failed %d, skipped %d\n", res.Completed, res.Failed, res.Skipped)
			return nil
		}
		sum, err := p.Submit(cmd.Context())
		if err != nil {
			return err
		}
		fmt.Fprintf(cmd.OutOrStdout(), "completed %d, failed %d, skipped %d\n", sum.Completed, sum.Failed, sum.Skipped)
		return nil
	},
}

var processCmd = &cobra.Command{
	Use:   "process",
	Short: "Reconcile batch output and write the dataset",
	RunE: func(cmd *cobra.Command, args []string) error {
		sum, err := p.Process(cmd.Context())
		if err != nil {
			return err
		}
		fmt.Fprintf(cmd.OutOrStdout(), "%d records (%d extracted, %d malformed spans), %s\n",
			sum.Normalized, sum.Extracted, sum.Malformed, sum.Cost)
		if sum.RunID != "" {
			fmt.Fprintf(cmd.OutOrStdout(), "stored as run %s\n", sum.RunID)
		}
		return nil
	},
}

var allCmd = &cobra.Command{
	Use:   "all",
	Short: "Run every stage in order",
	RunE: func(cmd *cobra.Command, args []string) error {
		return p.All(cmd.Context())
	},
}
