package cmd

import (
	"bytes"
	"errors"
	"fmt"
	"log/slog"
	"os"

	"github.com/spf13/cobra"

	"github.com/Tiliavir/trivial-time-reconciler/internal/config"
	"github.com/Tiliavir/trivial-time-reconciler/internal/model"
	"github.com/Tiliavir/trivial-time-reconciler/internal/reconcile"
	"github.com/Tiliavir/trivial-time-reconciler/internal/render"
	"github.com/Tiliavir/trivial-time-reconciler/internal/storage"
)

// htmlReportName is where an HTML report goes when no --output is given.
const htmlReportName = "missing_entries.html"

// reportFlags are shared by compare and run.
type reportFlags struct {
	format         string
	output         string
	unnumbered     string
	generateImport bool
}

func (f *reportFlags) register(cmd *cobra.Command) {
	cmd.Flags().StringVar(&f.format, "format", "", "Output format: table, json, yaml, html (default: table on a terminal, json otherwise)")
	cmd.Flags().StringVarP(&f.output, "output", "o", "", "Write the report to this file; relative names go to the results directory")
	cmd.Flags().StringVar(&f.unnumbered, "unnumbered", "", "GitLab events without a task number: missing or skip (overrides config)")
	cmd.Flags().BoolVar(&f.generateImport, "generate-import", false, "Also write "+storage.ImportFileName+" to the results directory")
}

var compareFlags reportFlags

var compareCmd = &cobra.Command{
	Use:   "compare [gitlab.json toggl.json]",
	Short: "Compare GitLab activity with Toggl entries",
	Long: `Compare a GitLab snapshot with a Toggl snapshot. Without arguments the
latest snapshots of both are used.`,
	Args: func(cmd *cobra.Command, args []string) error {
		if len(args) != 0 && len(args) != 2 {
			return errors.New("expects no arguments or <gitlab.json> <toggl.json>")
		}
		return nil
	},
	RunE: runCompare,
}

func init() {
	compareFlags.register(compareCmd)
}

func runCompare(cmd *cobra.Command, args []string) error {
	base, cfg, err := loadConfig()
	if err != nil {
		return err
	}

	feedPath, ledgerPath, err := comparePaths(base, args)
	if err != nil {
		return err
	}
	var feed model.FeedFile
	if err := storage.ReadJSON(feedPath, &feed); err != nil {
		return err
	}
	var ledger model.LedgerFile
	if err := storage.ReadJSON(ledgerPath, &ledger); err != nil {
		return err
	}
	slog.Debug("comparing snapshots", "gitlab", feedPath, "toggl", ledgerPath)

	_, err = reportSnapshots(base, cfg, compareFlags, feed, ledger)
	return err
}

// comparePaths returns the snapshot files named in args, or the latest ones.
func comparePaths(base string, args []string) (string, string, error) {
	if len(args) == 2 {
		return args[0], args[1], nil
	}
	feedPath, err := storage.LatestSnapshot(base, storage.KindGitLab)
	if err != nil {
		return "", "", fmt.Errorf("%w (run `ttr gitlab fetch` first)", err)
	}
	ledgerPath, err := storage.LatestSnapshot(base, storage.KindToggl)
	if err != nil {
		return "", "", fmt.Errorf("%w (run `ttr toggl fetch` first)", err)
	}
	return feedPath, ledgerPath, nil
}

// reportSnapshots reconciles two snapshots and writes the report, plus the
// import file when requested.
func reportSnapshots(base string, cfg config.Config, flags reportFlags, feed model.FeedFile, ledger model.LedgerFile) (reconcile.Report, error) {
	unnumbered := cfg.Compare.Unnumbered
	if flags.unnumbered != "" {
		unnumbered = flags.unnumbered
	}
	policy, err := reconcile.ParseUnnumberedPolicy(unnumbered)
	if err != nil {
		return reconcile.Report{}, err
	}
	format, err := reportFormat(flags.format, cfg)
	if err != nil {
		return reconcile.Report{}, err
	}

	report := reconcileSnapshots(feed, ledger, policy)
	for _, s := range report.Skipped {
		slog.Warn("skipped record", "source", s.Source, "index", s.Index, "reason", s.Reason)
	}

	if err := writeReport(base, report, format, flags.output); err != nil {
		return report, err
	}

	if flags.generateImport {
		path, err := writeImportFile(base, feed.Period, report.Import)
		if err != nil {
			return report, err
		}
		fmt.Fprintf(os.Stderr, "Import data (%d entries) written to %s\n", len(report.Import), path)
	}
	return report, nil
}

func reconcileSnapshots(feed model.FeedFile, ledger model.LedgerFile, policy reconcile.UnnumberedPolicy) reconcile.Report {
	return reconcile.Reconcile(feed.ToEvents(), ledger.ToEvents(), reconcile.Options{
		Unnumbered:   policy,
		FeedPeriod:   feed.Period,
		LedgerPeriod: ledger.Period,
	})
}

// reportFormat picks the flag, then the config, then a terminal-based default.
func reportFormat(flag string, cfg config.Config) (render.Format, error) {
	switch {
	case flag != "":
		return render.ParseFormat(flag)
	case cfg.Compare.Format != "":
		return render.ParseFormat(cfg.Compare.Format)
	}
	return render.DefaultFormat(os.Stdout), nil
}

func writeReport(base string, report reconcile.Report, format render.Format, output string) error {
	if output == "" && format == render.FormatHTML {
		output = htmlReportName
	}
	if output == "" {
		return render.Report(os.Stdout, report, format)
	}

	var buf bytes.Buffer
	if err := render.Report(&buf, report, format); err != nil {
		return err
	}
	path := storage.ResultPath(base, output)
	if err := storage.WriteFile(path, buf.Bytes()); err != nil {
		return err
	}
	fmt.Fprintf(os.Stderr, "Results written to %s\n", path)
	return nil
}

func writeImportFile(base string, period reconcile.Period, entries []reconcile.SquashedEntry) (string, error) {
	path := storage.ResultPath(base, storage.ImportFileName)
	if entries == nil {
		entries = []reconcile.SquashedEntry{}
	}
	return path, storage.WriteJSON(path, model.ImportFile{Period: period, Entries: entries})
}
