package cmd

import (
	"bytes"
	"errors"
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/Tiliavir/trivial-time-reconciler/internal/model"
	"github.com/Tiliavir/trivial-time-reconciler/internal/render"
	"github.com/Tiliavir/trivial-time-reconciler/internal/storage"
)

// sideBySideName is where the comparison goes when no --output is given.
const sideBySideName = "toggl_comparison.html"

var (
	diffWithImport bool
	diffImportFile string
	diffOutput     string
)

var diffCmd = &cobra.Command{
	Use:   "diff <original-toggl.json> [updated-toggl.json]",
	Short: "Compare two Toggl snapshots side by side as HTML",
	Long: `Render an HTML page with an original Toggl snapshot on the left and an
updated one on the right; new and changed entries are highlighted. The updated
snapshot defaults to the latest one. With --with-import the entries of the last
generated import file are added to the updated side, previewing an import.`,
	Args: cobra.RangeArgs(1, 2),
	RunE: runDiff,
}

func init() {
	diffCmd.Flags().BoolVar(&diffWithImport, "with-import", false, "Add the import file's entries to the updated side")
	diffCmd.Flags().StringVar(&diffImportFile, "import-file", "", "Import file for --with-import (default: the last generated "+storage.ImportFileName+")")
	diffCmd.Flags().StringVarP(&diffOutput, "output", "o", sideBySideName, "Output file; relative names go to the results directory")
}

func runDiff(cmd *cobra.Command, args []string) error {
	base, err := baseDir()
	if err != nil {
		return err
	}

	var original model.LedgerFile
	if err := storage.ReadJSON(args[0], &original); err != nil {
		return err
	}

	updatedPath := ""
	if len(args) == 2 {
		updatedPath = args[1]
	} else if updatedPath, err = storage.LatestSnapshot(base, storage.KindToggl); err != nil {
		return err
	}
	var updated model.LedgerFile
	if err := storage.ReadJSON(updatedPath, &updated); err != nil {
		return err
	}

	if diffWithImport {
		updated, err = withImportFile(base, updated, diffImportFile)
		if err != nil {
			return err
		}
	}

	var buf bytes.Buffer
	if err := render.SideBySide(&buf, original, updated); err != nil {
		return err
	}
	path := storage.ResultPath(base, diffOutput)
	if err := storage.WriteFile(path, buf.Bytes()); err != nil {
		return err
	}
	fmt.Printf("Side-by-side comparison written to %s\n", path)
	return nil
}

func withImportFile(base string, ledger model.LedgerFile, path string) (model.LedgerFile, error) {
	if path == "" {
		path = storage.ResultPath(base, storage.ImportFileName)
	}
	data, err := os.ReadFile(path)
	if errors.Is(err, os.ErrNotExist) {
		return ledger, fmt.Errorf("no import file at %s (run `ttr compare --generate-import` first)", path)
	}
	if err != nil {
		return ledger, fmt.Errorf("reading import file: %w", err)
	}
	entries, err := model.DecodeImport(data)
	if err != nil {
		return ledger, fmt.Errorf("%s: %w", path, err)
	}
	return ledger.WithImport(entries), nil
}
