package maint

import (
	"encoding/json"
	"log/slog"
	"os"
	"path/filepath"
	"time"

	"github.com/google/uuid"
)

// FailedEntry records one series file that could not be compacted.
type FailedEntry struct {
	Path   string `json:"path"`
	Reason string `json:"reason"`
}

// Report is the persisted outcome of one compaction run.
type Report struct {
	RunID   string        `json:"run_id"`
	When    string        `json:"when"`
	Success []string      `json:"success,omitempty"`
	Failed  []FailedEntry `json:"failed,omitempty"`
}

func writeRunReport(dir string, successList []string, failedList []FailedEntry) error {
	report := Report{
		RunID:   uuid.NewString(),
		When:    time.Now().UTC().Format(time.RFC3339),
		Success: successList,
		Failed:  failedList,
	}
	data, err := json.MarshalIndent(report, "", "  ")
	if err != nil {
		return err
	}
	p := filepath.Join(dir, ".lastcompact.json")
	if err := os.WriteFile(p, data, 0644); err != nil {
		return err
	}
	slog.Info("run report saved", "path", p, "run_id", report.RunID,
		"success", len(successList), "failed", len(failedList))
	return nil
}
