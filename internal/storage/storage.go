package storage

import (
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"time"
)

// Snapshot kinds.
const (
	KindGitLab = "gitlab"
	KindToggl  = "toggl"
)

// ImportFileName is the squashed import file written next to compare results.
const ImportFileName = "toggl_import.json"

// ErrNoSnapshot is returned when no snapshot of a kind has been saved yet.
var ErrNoSnapshot = errors.New("no snapshot found")

// BaseDir returns the root data directory (~/.ttr).
func BaseDir() (string, error) {
	home, err := os.UserHomeDir()
	if err != nil {
		return "", fmt.Errorf("cannot determine home directory: %w", err)
	}
	return filepath.Join(home, ".ttr"), nil
}

// SnapshotPath returns the file a fetch covering [from, to] is saved to.
func SnapshotPath(base, kind string, from, to time.Time) string {
	name := from.Format("2006-01-02") + "_" + to.Format("2006-01-02") + ".json"
	return filepath.Join(base, "snapshots", kind, name)
}

// ResultsDir returns the directory compare results are written to.
func ResultsDir(base string) string {
	return filepath.Join(base, "results")
}

// ResultPath resolves name inside the results directory unless it is
// already absolute.
func ResultPath(base, name string) string {
	if filepath.IsAbs(name) {
		return name
	}
	return filepath.Join(ResultsDir(base), filepath.Base(name))
}

// LatestSnapshot returns the most recent snapshot of kind. Snapshot names
// start with their from date, so the lexically greatest is the newest.
func LatestSnapshot(base, kind string) (string, error) {
	dir := filepath.Join(base, "snapshots", kind)
	entries, err := os.ReadDir(dir)
	if os.IsNotExist(err) {
		return "", fmt.Errorf("%w for %s in %s", ErrNoSnapshot, kind, dir)
	}
	if err != nil {
		return "", fmt.Errorf("storage error listing %s: %w", dir, err)
	}
	var names []string
	for _, e := range entries {
		if e.IsDir() || !strings.HasSuffix(e.Name(), ".json") {
			continue
		}
		names = append(names, e.Name())
	}
	if len(names) == 0 {
		return "", fmt.Errorf("%w for %s in %s", ErrNoSnapshot, kind, dir)
	}
	sort.Strings(names)
	return filepath.Join(dir, names[len(names)-1]), nil
}

// ReadJSON decodes the file at path into v.
func ReadJSON(path string, v any) error {
	data, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("storage error reading %s: %w", path, err)
	}
	if err := json.Unmarshal(data, v); err != nil {
		return fmt.Errorf("corrupt JSON in %s: %w", path, err)
	}
	return nil
}

// WriteJSON atomically writes v as indented JSON.
func WriteJSON(path string, v any) error {
	data, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return fmt.Errorf("storage error marshalling JSON: %w", err)
	}
	return WriteFile(path, append(data, '\n'))
}

// WriteFile atomically writes data to path, creating parent directories.
func WriteFile(path string, data []byte) error {
	if err := os.MkdirAll(filepath.Dir(path), 0o700); err != nil {
		return fmt.Errorf("storage error creating directories: %w", err)
	}

	// Atomic write: write to temp file then rename.
	tmpPath := path + ".tmp"
	if err := os.WriteFile(tmpPath, data, 0o600); err != nil {
		return fmt.Errorf("storage error writing temp file: %w", err)
	}
	if err := os.Rename(tmpPath, path); err != nil {
		_ = os.Remove(tmpPath)
		return fmt.Errorf("storage error renaming temp file: %w", err)
	}
	return nil
}
