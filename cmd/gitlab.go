package cmd

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/spf13/cobra"

	"github.com/Tiliavir/trivial-time-reconciler/internal/config"
	"github.com/Tiliavir/trivial-time-reconciler/internal/gitlab"
	"github.com/Tiliavir/trivial-time-reconciler/internal/model"
	"github.com/Tiliavir/trivial-time-reconciler/internal/render"
	"github.com/Tiliavir/trivial-time-reconciler/internal/storage"
	"github.com/Tiliavir/trivial-time-reconciler/internal/timecalc"
)

var (
	gitlabPeriod    periodFlags
	gitlabEventType string
	gitlabOutput    string
	gitlabList      bool
)

var gitlabCmd = &cobra.Command{
	Use:   "gitlab",
	Short: "GitLab activity",
}

var gitlabFetchCmd = &cobra.Command{
	Use:   "fetch",
	Short: "Fetch your GitLab activity into a snapshot",
	Args:  cobra.NoArgs,
	RunE:  runGitLabFetch,
}

func init() {
	gitlabPeriod.register(gitlabFetchCmd)
	gitlabFetchCmd.Flags().StringVar(&gitlabEventType, "event-type", "", "Only keep events whose action contains this text (e.g. \"pushed\")")
	gitlabFetchCmd.Flags().StringVarP(&gitlabOutput, "output", "o", "", "Write the snapshot here instead of the snapshots directory")
	gitlabFetchCmd.Flags().BoolVar(&gitlabList, "list", false, "Print the fetched events")
	gitlabCmd.AddCommand(gitlabFetchCmd)
}

func runGitLabFetch(cmd *cobra.Command, args []string) error {
	from, to, err := gitlabPeriod.resolve(time.Now())
	if err != nil {
		return err
	}
	base, cfg, err := loadConfig()
	if err != nil {
		return err
	}
	if gitlabEventType != "" {
		cfg.GitLab.EventType = gitlabEventType
	}

	fmt.Printf("Fetching GitLab activity (%s → %s)...\n",
		from.Format(timecalc.DateLayout), to.Format(timecalc.DateLayout))

	feed, err := fetchFeed(cmd.Context(), base, cfg, from, to)
	if err != nil {
		return err
	}

	path := gitlabOutput
	if path == "" {
		path = storage.SnapshotPath(base, storage.KindGitLab, from, to)
	}
	if err := storage.WriteJSON(path, feed); err != nil {
		return err
	}
	fmt.Printf("Saved %d events for %s to %s\n", len(feed.Events), feed.User, path)

	if gitlabList {
		fmt.Println()
		render.FeedList(cmd.OutOrStdout(), feed)
	}
	return nil
}

func fetchFeed(ctx context.Context, base string, cfg config.Config, from, to time.Time) (model.FeedFile, error) {
	ts, err := gitlab.TokenSource(ctx, gitlab.AuthOptions{
		BaseURL:   cfg.GitLab.URL,
		Token:     cfg.GitLab.Token,
		ClientID:  cfg.GitLab.ClientID,
		TokenFile: gitlab.TokenFilePath(base),
	})
	if err != nil {
		return model.FeedFile{}, fmt.Errorf("GitLab authentication failed: %w", err)
	}
	client := gitlab.NewClient(ctx, cfg.GitLab.URL, ts, slog.Default())
	feed, err := client.FetchFeed(ctx, gitlab.FetchOptions{From: from, To: to, EventType: cfg.GitLab.EventType})
	if err != nil {
		return model.FeedFile{}, fmt.Errorf("fetching GitLab activity: %w", err)
	}
	return feed, nil
}
