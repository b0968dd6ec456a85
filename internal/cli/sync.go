// internal/cli/sync.go

package cli

import (
	"fmt"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/stelios-avg/locom/internal/app"
	"github.com/stelios-avg/locom/internal/config"
)

var (
	syncDryRun  bool
	syncFeedURL string
)

var syncCmd = &cobra.Command{
	Use:   "sync",
	Short: "Import the municipality feed once",
	Long:  "sync fetches MUNICIPALITY_FEED_URL and stores new announcements as feed posts. With --dry-run it only prints the parsed announcements.",
	RunE:  syncAction,
}

func init() {
	syncCmd.Flags().BoolVar(&syncDryRun, "dry-run", false, "parse and print without writing")
	syncCmd.Flags().StringVar(&syncFeedURL, "feed", "", "feed URL to use instead of MUNICIPALITY_FEED_URL")
	rootCmd.AddCommand(syncCmd)
}

func syncAction(cmd *cobra.Command, _ []string) error {
	cfg, err := config.Load()
	if err != nil {
		return fmt.Errorf("load config: %w", err)
	}
	if syncFeedURL != "" {
		cfg.Municipality.FeedURL = syncFeedURL
	}

	logger, err := app.NewLogger(cfg.Environment)
	if err != nil {
		return fmt.Errorf("create logger: %w", err)
	}
	defer logger.Sync()

	ctx := cmd.Context()

	a, err := app.New(ctx, cfg, logger)
	if err != nil {
		return err
	}
	defer a.Close()

	if syncDryRun {
		if cfg.Municipality.FeedURL == "" {
			return fmt.Errorf("no feed URL: set MUNICIPALITY_FEED_URL or --feed")
		}
		posts, err := a.Importer.ParseFeed(ctx, cfg.Municipality.FeedURL)
		if err != nil {
			return fmt.Errorf("parse feed: %w", err)
		}
		return printJSON(cmd.OutOrStdout(), posts)
	}

	result, err := a.Syncer.Run(ctx)
	if err != nil {
		return fmt.Errorf("sync: %w", err)
	}

	logger.Info("Municipality sync completed",
		zap.Int("added", result.Added),
		zap.Int("skipped", result.Skipped),
		zap.Int("failed", result.Failed()),
	)
	return printJSON(cmd.OutOrStdout(), result)
}
