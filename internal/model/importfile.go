package model

import (
	"encoding/json"
	"errors"
	"fmt"

	"github.com/Tiliavir/trivial-time-reconciler/internal/reconcile"
)

// ImportFile is the squashed import data written by `ttr compare --generate-import`.
type ImportFile struct {
	Period  reconcile.Period          `json:"period"`
	Entries []reconcile.SquashedEntry `json:"entries"`
}

// ErrNoImportData is returned when a file holds neither import format.
var ErrNoImportData = errors.New("file contains neither \"entries\" nor \"toggl_import_data\"")

// DecodeImport reads import entries from either an ImportFile or a compare
// report (its toggl_import_data list).
func DecodeImport(data []byte) ([]reconcile.SquashedEntry, error) {
	var probe struct {
		Entries    *[]reconcile.SquashedEntry `json:"entries"`
		ImportData *[]reconcile.SquashedEntry `json:"toggl_import_data"`
	}
	if err := json.Unmarshal(data, &probe); err != nil {
		return nil, fmt.Errorf("decoding import data: %w", err)
	}
	switch {
	case probe.Entries != nil:
		return *probe.Entries, nil
	case probe.ImportData != nil:
		return *probe.ImportData, nil
	}
	return nil, ErrNoImportData
}
