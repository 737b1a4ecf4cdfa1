package aggregate

import (
	"encoding/csv"
	"encoding/json"
	"fmt"
	"io"
	"os"
	"path/filepath"

	"github.com/sagearbor/ai-skill-eval-kit/internal/report"
)

// Output file names.
const (
	SummaryFile  = "aiq_summary.csv"
	StatsFile    = "aiq_stats.json"
	CombinedFile = "aiq_combined.json"
)

// Combined is every aggregated report in one document.
type Combined struct {
	GeneratedAt string           `json:"generatedAt"`
	Reports     []*report.Report `json:"reports"`
}

// WriteCSV writes the header and one row per entry.
func WriteCSV(w io.Writer, entries []Entry) error {
	cw := csv.NewWriter(w)
	if err := cw.Write(Headers); err != nil {
		return fmt.Errorf("aggregate.WriteCSV: %w", err)
	}
	for _, e := range entries {
		if err := cw.Write(Row(e)); err != nil {
			return fmt.Errorf("aggregate.WriteCSV: %w", err)
		}
	}
	cw.Flush()
	if err := cw.Error(); err != nil {
		return fmt.Errorf("aggregate.WriteCSV: %w", err)
	}
	return nil
}

// Written lists the files produced by WriteFiles.
type Written struct {
	Summary  string
	Stats    string
	Combined string
}

// WriteFiles writes the summary, statistics and combined files into dir,
// creating it if needed.
func WriteFiles(dir string, entries []Entry, stats *Stats) (*Written, error) {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, fmt.Errorf("aggregate.WriteFiles: %w", err)
	}
	out := &Written{
		Summary:  filepath.Join(dir, SummaryFile),
		Stats:    filepath.Join(dir, StatsFile),
		Combined: filepath.Join(dir, CombinedFile),
	}

	f, err := os.Create(out.Summary)
	if err != nil {
		return nil, fmt.Errorf("aggregate.WriteFiles: %w", err)
	}
	if err := WriteCSV(f, entries); err != nil {
		f.Close()
		return nil, err
	}
	if err := f.Close(); err != nil {
		return nil, fmt.Errorf("aggregate.WriteFiles: %w", err)
	}

	if err := writeJSON(out.Stats, stats); err != nil {
		return nil, err
	}

	combined := Combined{GeneratedAt: stats.GeneratedAt, Reports: make([]*report.Report, 0, len(entries))}
	for _, e := range entries {
		combined.Reports = append(combined.Reports, e.Report)
	}
	if err := writeJSON(out.Combined, combined); err != nil {
		return nil, err
	}
	return out, nil
}

func writeJSON(path string, v any) error {
	data, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return fmt.Errorf("aggregate.writeJSON: %w", err)
	}
	data = append(data, '\n')
	if err := os.WriteFile(path, data, 0o644); err != nil {
		return fmt.Errorf("aggregate.writeJSON: %w", err)
	}
	return nil
}
