package cmd

import (
	"fmt"
	"time"

	"github.com/spf13/cobra"
	"golang.org/x/sync/errgroup"

	"github.com/Tiliavir/trivial-time-reconciler/internal/model"
	"github.com/Tiliavir/trivial-time-reconciler/internal/storage"
	"github.com/Tiliavir/trivial-time-reconciler/internal/timecalc"
)

var (
	runPeriod periodFlags
	runFlags  reportFlags
	runImport bool
	runDryRun bool
)

var runCmd = &cobra.Command{
	Use:   "run",
	Short: "Fetch GitLab and Toggl, compare them and optionally import the gaps",
	Args:  cobra.NoArgs,
	RunE:  runRun,
}

func init() {
	runPeriod.register(runCmd)
	runFlags.register(runCmd)
	runCmd.Flags().BoolVar(&runImport, "import", false, "Import the proposed entries into Toggl")
	runCmd.Flags().BoolVar(&runDryRun, "dry-run", false, "With --import, print planned operations without writing")
}

func runRun(cmd *cobra.Command, args []string) error {
	from, to, err := runPeriod.resolve(time.Now())
	if err != nil {
		return err
	}
	base, cfg, err := loadConfig()
	if err != nil {
		return err
	}

	fmt.Printf("Fetching GitLab and Toggl (%s → %s)...\n",
		from.Format(timecalc.DateLayout), to.Format(timecalc.DateLayout))

	var (
		feed   model.FeedFile
		ledger model.LedgerFile
	)
	g, ctx := errgroup.WithContext(cmd.Context())
	g.Go(func() error {
		var err error
		feed, err = fetchFeed(ctx, base, cfg, from, to)
		if err != nil {
			return err
		}
		return storage.WriteJSON(storage.SnapshotPath(base, storage.KindGitLab, from, to), feed)
	})
	g.Go(func() error {
		var err error
		ledger, err = fetchLedger(ctx, cfg, from, to)
		if err != nil {
			return err
		}
		return storage.WriteJSON(storage.SnapshotPath(base, storage.KindToggl, from, to), ledger)
	})
	if err := g.Wait(); err != nil {
		return err
	}
	fmt.Printf("Fetched %d GitLab events and %d Toggl entries\n", len(feed.Events), len(ledger.Entries))

	flags := runFlags
	flags.generateImport = flags.generateImport || runImport
	report, err := reportSnapshots(base, cfg, flags, feed, ledger)
	if err != nil || !runImport {
		return err
	}

	client, err := newTogglClient(cfg)
	if err != nil {
		return err
	}
	return importEntries(cmd.Context(), client, cfg, report.Import, runDryRun)
}
