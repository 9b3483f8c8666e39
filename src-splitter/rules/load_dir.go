package rules

import (
	"encoding/json"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
)

// LoadDirectory reads every *.json rule document in a directory (sorted by
// name for a deterministic load order) into a map keyed by course code. A
// document that fails to parse is skipped with a warning; one bad file
// never aborts the run.
func LoadDirectory(eventsDir string) map[string]*CourseRules {
	loaded := make(map[string]*CourseRules)

	entries, err := os.ReadDir(eventsDir)
	if err != nil {
		slog.Warn("events dir is not readable, no rewriting will be applied",
			"dir", eventsDir, "error", err)
		return loaded
	}

	for _, entry := range entries {
		if entry.IsDir() || !strings.EqualFold(filepath.Ext(entry.Name()), ".json") {
			continue
		}
		path := filepath.Join(eventsDir, entry.Name())

		raw, err := os.ReadFile(path)
		if err != nil {
			slog.Warn("ignoring rule document", "file", entry.Name(), "error", err)
			continue
		}
		data := make(map[string]any)
		if err := json.Unmarshal(raw, &data); err != nil {
			slog.Warn("ignoring rule document", "file", entry.Name(), "error", err)
			continue
		}
		cr, err := Load(data)
		if err != nil {
			slog.Warn("ignoring rule document", "file", entry.Name(), "error", err)
			continue
		}
		loaded[cr.Course] = cr
	}

	slog.Info("loaded course rules", "courses", len(loaded))
	return loaded
}
