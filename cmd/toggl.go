package cmd

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"time"

	"github.com/spf13/cobra"

	"github.com/Tiliavir/trivial-time-reconciler/internal/config"
	"github.com/Tiliavir/trivial-time-reconciler/internal/model"
	"github.com/Tiliavir/trivial-time-reconciler/internal/reconcile"
	"github.com/Tiliavir/trivial-time-reconciler/internal/render"
	"github.com/Tiliavir/trivial-time-reconciler/internal/storage"
	"github.com/Tiliavir/trivial-time-reconciler/internal/timecalc"
	"github.com/Tiliavir/trivial-time-reconciler/internal/toggl"
)

var (
	togglPeriod periodFlags
	togglOutput string
	togglList   bool

	togglImportFile    string
	togglImportDryRun  bool
	togglImportProject int64
)

var togglCmd = &cobra.Command{
	Use:   "toggl",
	Short: "Toggl time entries",
}

var togglFetchCmd = &cobra.Command{
	Use:   "fetch",
	Short: "Fetch your Toggl time entries into a snapshot",
	Args:  cobra.NoArgs,
	RunE:  runTogglFetch,
}

var togglProjectsCmd = &cobra.Command{
	Use:   "projects",
	Short: "List the projects of the configured workspace",
	Args:  cobra.NoArgs,
	RunE:  runTogglProjects,
}

var togglImportCmd = &cobra.Command{
	Use:   "import",
	Short: "Create Toggl entries from an import file or a compare report",
	Args:  cobra.NoArgs,
	RunE:  runTogglImport,
}

func init() {
	togglPeriod.register(togglFetchCmd)
	togglFetchCmd.Flags().StringVarP(&togglOutput, "output", "o", "", "Write the snapshot here instead of the snapshots directory")
	togglFetchCmd.Flags().BoolVar(&togglList, "list", false, "Print the fetched entries")

	togglImportCmd.Flags().StringVarP(&togglImportFile, "file", "f", "", "Import file (default: the last generated "+storage.ImportFileName+")")
	togglImportCmd.Flags().BoolVar(&togglImportDryRun, "dry-run", false, "Print planned operations without writing")
	togglImportCmd.Flags().Int64Var(&togglImportProject, "project-id", 0, "Project for entries whose project name is unknown (overrides config)")

	togglCmd.AddCommand(togglFetchCmd)
	togglCmd.AddCommand(togglProjectsCmd)
	togglCmd.AddCommand(togglImportCmd)
}

func newTogglClient(cfg config.Config) (*toggl.Client, error) {
	return toggl.NewClient(toggl.Options{APIToken: cfg.Toggl.APIToken, Logger: slog.Default()})
}

func runTogglFetch(cmd *cobra.Command, args []string) error {
	from, to, err := togglPeriod.resolve(time.Now())
	if err != nil {
		return err
	}
	base, cfg, err := loadConfig()
	if err != nil {
		return err
	}

	fmt.Printf("Fetching Toggl entries (%s → %s)...\n",
		from.Format(timecalc.DateLayout), to.Format(timecalc.DateLayout))

	ledger, err := fetchLedger(cmd.Context(), cfg, from, to)
	if err != nil {
		return err
	}

	path := togglOutput
	if path == "" {
		path = storage.SnapshotPath(base, storage.KindToggl, from, to)
	}
	if err := storage.WriteJSON(path, ledger); err != nil {
		return err
	}
	fmt.Printf("Saved %d entries (%s) for %s to %s\n",
		len(ledger.Entries), ledger.TotalDuration.Formatted, ledger.User, path)

	if togglList {
		fmt.Println()
		render.LedgerList(cmd.OutOrStdout(), ledger)
	}
	return nil
}

func fetchLedger(ctx context.Context, cfg config.Config, from, to time.Time) (model.LedgerFile, error) {
	client, err := newTogglClient(cfg)
	if err != nil {
		return model.LedgerFile{}, err
	}
	ledger, err := client.FetchLedger(ctx, toggl.FetchOptions{From: from, To: to, WorkspaceID: cfg.Toggl.WorkspaceID})
	if err != nil {
		return model.LedgerFile{}, fmt.Errorf("fetching Toggl entries: %w", err)
	}
	return ledger, nil
}

func runTogglProjects(cmd *cobra.Command, args []string) error {
	_, cfg, err := loadConfig()
	if err != nil {
		return err
	}
	client, err := newTogglClient(cfg)
	if err != nil {
		return err
	}
	wid := cfg.Toggl.WorkspaceID
	if wid == 0 {
		me, err := client.Me(cmd.Context())
		if err != nil {
			return err
		}
		wid = me.DefaultWorkspaceID
	}
	projects, err := client.Projects(cmd.Context(), wid)
	if err != nil {
		return err
	}
	fmt.Printf("Projects in workspace %d:\n", wid)
	render.Projects(cmd.OutOrStdout(), projects)
	return nil
}

func runTogglImport(cmd *cobra.Command, args []string) error {
	base, cfg, err := loadConfig()
	if err != nil {
		return err
	}

	path := togglImportFile
	if path == "" {
		path = storage.ResultPath(base, storage.ImportFileName)
	}
	data, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("reading import file: %w", err)
	}
	entries, err := model.DecodeImport(data)
	if err != nil {
		return fmt.Errorf("%s: %w", path, err)
	}
	if togglImportProject != 0 {
		cfg.Toggl.DefaultProjectID = togglImportProject
	}

	client, err := newTogglClient(cfg)
	if err != nil {
		return err
	}
	return importEntries(cmd.Context(), client, cfg, entries, togglImportDryRun)
}

// importEntries runs the import and prints its summary. Failed entries make
// the command fail after every entry was attempted.
func importEntries(ctx context.Context, client *toggl.Client, cfg config.Config, entries []reconcile.SquashedEntry, dryRun bool) error {
	dryTag := ""
	if dryRun {
		dryTag = " [dry-run]"
	}
	fmt.Printf("Importing %d entries into Toggl%s...\n", len(entries), dryTag)
	fmt.Println()

	result, err := client.Import(ctx, entries, toggl.ImportOptions{
		WorkspaceID:      cfg.Toggl.WorkspaceID,
		DefaultProjectID: cfg.Toggl.DefaultProjectID,
		DryRun:           dryRun,
		Out:              os.Stdout,
	})
	if err != nil {
		return fmt.Errorf("import failed: %w", err)
	}

	fmt.Println()
	fmt.Println("Summary:")
	fmt.Printf("  %d imported\n", result.Imported)
	fmt.Printf("  %d skipped\n", result.Skipped)
	if result.Errors > 0 {
		fmt.Printf("  %d errors\n", result.Errors)
		return fmt.Errorf("%d entries could not be imported", result.Errors)
	}
	return nil
}
