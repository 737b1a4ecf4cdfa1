// Package aggregate collects reports from period folders and derives the
// summary table, organization statistics and combined export.
package aggregate

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"sort"

	"github.com/bmatcuk/doublestar/v4"
	"github.com/phuslu/log"

	"github.com/sagearbor/ai-skill-eval-kit/internal/logging"
	"github.com/sagearbor/ai-skill-eval-kit/internal/report"
)

// ErrNoReports is returned when no folder yielded a readable report.
var ErrNoReports = errors.New("no valid reports found")

// Entry is one report and the period it was filed under.
type Entry struct {
	Path   string
	Period string
	Report *report.Report
}

// Skipped records a file that was not aggregated.
type Skipped struct {
	Path   string
	Reason string
}

// Collection is the outcome of a scan.
type Collection struct {
	Entries []Entry
	Skipped []Skipped
	// Counts holds the number of reports found per period, in scan order.
	Counts []PeriodCount
}

type PeriodCount struct {
	Period string
	Count  int
}

// Collect scans each folder recursively for JSON reports. The folder's base
// name is the period. Missing folders and unreadable files are logged and
// skipped.
func Collect(folders []string, logger *log.Logger) (*Collection, error) {
	logger = logging.OrNop(logger)
	c := &Collection{}
	for _, folder := range folders {
		period := filepath.Base(filepath.Clean(folder))
		info, err := os.Stat(folder)
		if err != nil || !info.IsDir() {
			logger.Warn().Str("folder", folder).Msg("folder does not exist")
			continue
		}

		matches, err := doublestar.Glob(os.DirFS(folder), "**/*.json", doublestar.WithFilesOnly())
		if err != nil {
			return nil, fmt.Errorf("aggregate.Collect: %s: %w", folder, err)
		}
		sort.Strings(matches)

		n := 0
		for _, rel := range matches {
			path := filepath.Join(folder, filepath.FromSlash(rel))
			r, err := load(os.DirFS(folder), rel)
			if err != nil {
				logger.Warn().Str("file", path).Err(err).Msg("skipping file")
				c.Skipped = append(c.Skipped, Skipped{Path: path, Reason: err.Error()})
				continue
			}
			c.Entries = append(c.Entries, Entry{Path: path, Period: period, Report: r})
			n++
		}
		if n > 0 {
			logger.Info().Str("period", period).Int("reports", n).Msg("processed folder")
			c.Counts = append(c.Counts, PeriodCount{Period: period, Count: n})
		}
	}
	if len(c.Entries) == 0 {
		return c, ErrNoReports
	}
	return c, nil
}

func load(fsys fs.FS, name string) (*report.Report, error) {
	data, err := fs.ReadFile(fsys, name)
	if err != nil {
		return nil, err
	}
	r, err := report.Decode(data)
	if err != nil {
		if errors.Is(err, report.ErrNoSchemaVersion) {
			return nil, errors.New("missing schemaVersion")
		}
		return nil, err
	}
	return r, nil
}

// Periods returns the distinct periods of the collection, sorted.
func (c *Collection) Periods() []string {
	seen := map[string]bool{}
	var out []string
	for _, e := range c.Entries {
		if !seen[e.Period] {
			seen[e.Period] = true
			out = append(out, e.Period)
		}
	}
	sort.Strings(out)
	return out
}
