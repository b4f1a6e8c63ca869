package storage

import (
	"encoding/csv"
	"fmt"
	"io"
	"strconv"
	"time"

	"recept-slider/internal/recipe"
)

// Extra journal columns written after the training columns. The trainer
// ignores them.
var journalColumns = []string{"Naam", "Opgeslagen", "Model"}

// WriteCSV writes entries with the training feature and target header so the
// file can be passed straight to the trainer.
func WriteCSV(w io.Writer, entries []Entry) error {
	cw := csv.NewWriter(w)

	header := append(recipe.FeatureColumns(), recipe.TargetColumns()...)
	header = append(header, journalColumns...)
	if err := cw.Write(header); err != nil {
		return fmt.Errorf("write header: %w", err)
	}

	row := make([]string, 0, len(header))
	for _, e := range entries {
		row = row[:0]
		for _, v := range e.Percentages {
			row = append(row, formatFloat(v))
		}
		row = append(row,
			formatFloat(e.Prediction.Viscosity),
			formatFloat(e.Prediction.PH),
			formatFloat(e.Prediction.DS),
			e.Name,
			e.RecordedAt.Format(time.RFC3339),
			e.ModelVersion,
		)
		if err := cw.Write(row); err != nil {
			return fmt.Errorf("write entry %s: %w", e.ID, err)
		}
	}

	cw.Flush()
	return cw.Error()
}

// ExportCSV writes the entries recorded between start and end as CSV.
func (s *Store) ExportCSV(w io.Writer, start, end time.Time) (int, error) {
	entries, err := s.Range(start, end)
	if err != nil {
		return 0, err
	}
	return len(entries), WriteCSV(w, entries)
}

func formatFloat(v float64) string {
	return strconv.FormatFloat(v, 'f', -1, 64)
}
