package export

import (
	"encoding/csv"
	"fmt"
	"os"
	"time"

	"github.com/sadopc/breathr/internal/store"
)

// ToCSV writes the session history with one row per session.
func ToCSV(sessions []store.Session, path string) error {
	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("create csv file: %w", err)
	}
	defer f.Close()

	w := csv.NewWriter(f)
	defer w.Flush()

	if err := w.Write([]string{"ID", "Label", "Status", "Started", "Completed", "Stages", "Rounds", "Completed stages", "Duration (s)", "Duration"}); err != nil {
		return err
	}

	for _, s := range sessions {
		completed := ""
		if s.CompletedAt != nil {
			completed = s.CompletedAt.Local().Format(time.RFC3339)
		}
		row := []string{
			fmt.Sprintf("%d", s.ID),
			s.Label,
			string(s.Status),
			s.StartedAt.Local().Format(time.RFC3339),
			completed,
			fmt.Sprintf("%d", s.StageCount),
			fmt.Sprintf("%d", s.Rounds),
			fmt.Sprintf("%d", s.CompletedCount),
			fmt.Sprintf("%d", s.TotalSeconds),
			formatDuration(s.TotalSeconds),
		}
		if err := w.Write(row); err != nil {
			return err
		}
	}

	w.Flush()
	return w.Error()
}

// Sessions writes the history as CSV or JSON depending on the extension.
func Sessions(sessions []store.Session, path string) error {
	format, err := FormatFromPath(path)
	if err != nil {
		return err
	}
	switch format {
	case FormatCSV:
		return ToCSV(sessions, path)
	case FormatJSON:
		return ToJSON(sessions, path)
	default:
		return fmt.Errorf("%w for history: %s", ErrUnsupportedFormat, format)
	}
}
