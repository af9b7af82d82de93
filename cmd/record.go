package cmd

import (
	"fmt"
	"io"
	"log"

	"github.com/naka-gawa/pr-size-score/internal/config"
	"github.com/naka-gawa/pr-size-score/internal/gateway"
	"github.com/naka-gawa/pr-size-score/internal/storage"
	"github.com/naka-gawa/pr-size-score/internal/usecase"
	"github.com/spf13/cobra"
)

// newFetcher is replaced in tests.
var newFetcher = gateway.NewFetcher

var recordCmd = &cobra.Command{
	Use:   "record",
	Short: "Scores one pull request and appends the result to the score log",
	Long: `Fetches a pull request, computes its size score and appends one JSON line to the score log.
The repository and pull request number default to the REPO and PR_NUMBER environment variables.
GITHUB_TOKEN is required for the rest and graphql sources.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx := cmd.Context()

		verbose, _ := cmd.Flags().GetBool("verbose")
		logger := log.New(io.Discard, "", log.LstdFlags) // Default: discard all logs.
		if verbose {
			logger.SetOutput(cmd.ErrOrStderr())
		}

		var o config.Overrides
		o.ConfigPath, _ = cmd.Flags().GetString("config")
		o.Repo, _ = cmd.Flags().GetString("repo")
		o.PRNumber, _ = cmd.Flags().GetString("pr")
		o.LogPath, _ = cmd.Flags().GetString("log")
		o.Source, _ = cmd.Flags().GetString("source")

		cfg, err := config.Load(o)
		if err != nil {
			return err
		}

		// Inject dependencies and run the main business logic.
		fetcher, err := newFetcher(cfg.Source, cfg.Token, logger)
		if err != nil {
			return fmt.Errorf("failed to create GitHub gateway: %w", err)
		}
		appender := storage.NewJSONLAppender(cfg.LogPath, logger)
		logger.Printf("Recording %s#%d from %s source into %s\n", cfg.Repo, cfg.PRNumber, cfg.Source, appender.Path())
		recorder := usecase.NewScoreRecorder(fetcher, appender, logger)

		record, err := recorder.RecordScore(ctx, cfg.Repo, cfg.PRNumber)
		if err != nil {
			return err
		}

		line, err := storage.EncodeLine(record)
		if err != nil {
			return err
		}
		fmt.Fprintf(cmd.OutOrStdout(), "OK: %s", line)
		return nil
	},
}

func init() {
	rootCmd.AddCommand(recordCmd)
	recordCmd.Flags().StringP("repo", "r", "", "Repository in owner/name form (default $REPO)")
	recordCmd.Flags().StringP("pr", "p", "", "Pull request number (default $PR_NUMBER)")
	recordCmd.Flags().String("log", "", "Score log path (default "+storage.DefaultLogPath+")")
	recordCmd.Flags().String("source", "", "Where to fetch the pull request from: rest, graphql or gh (default rest)")
	recordCmd.Flags().String("config", "", "YAML config file (default "+config.DefaultFile+" if present)")
}
