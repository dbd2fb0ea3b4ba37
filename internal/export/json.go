package export

import (
	"encoding/json"
	"fmt"
	"os"
	"time"

	"github.com/sadopc/breathr/internal/store"
)

type jsonExport struct {
	ExportedAt string        `json:"exported_at"`
	Count      int           `json:"count"`
	Sessions   []jsonSession `json:"sessions"`
}

type jsonSession struct {
	ID             int64  `json:"id"`
	Label          string `json:"label,omitempty"`
	Status         string `json:"status"`
	StartedAt      string `json:"started_at"`
	CompletedAt    string `json:"completed_at,omitempty"`
	StageCount     int    `json:"stage_count"`
	Rounds         int    `json:"rounds"`
	CompletedCount int    `json:"completed_stages"`
	DurationSec    int64  `json:"duration_seconds"`
	Duration       string `json:"duration"`
}

// ToJSON writes the session history as an indented JSON document.
func ToJSON(sessions []store.Session, path string) error {
	export := jsonExport{
		ExportedAt: time.Now().UTC().Format(time.RFC3339),
		Count:      len(sessions),
		Sessions:   []jsonSession{},
	}

	for _, s := range sessions {
		completed := ""
		if s.CompletedAt != nil {
			completed = s.CompletedAt.Local().Format(time.RFC3339)
		}
		export.Sessions = append(export.Sessions, jsonSession{
			ID:             s.ID,
			Label:          s.Label,
			Status:         string(s.Status),
			StartedAt:      s.StartedAt.Local().Format(time.RFC3339),
			CompletedAt:    completed,
			StageCount:     s.StageCount,
			Rounds:         s.Rounds,
			CompletedCount: s.CompletedCount,
			DurationSec:    s.TotalSeconds,
			Duration:       formatDuration(s.TotalSeconds),
		})
	}

	data, err := json.MarshalIndent(export, "", "  ")
	if err != nil {
		return fmt.Errorf("marshal json: %w", err)
	}

	if err := os.WriteFile(path, data, 0o644); err != nil {
		return fmt.Errorf("write json file: %w", err)
	}
	return nil
}
