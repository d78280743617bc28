package merge

import (
	"encoding/json"
	"os"
	"path/filepath"

	"github.com/agentstation/utc"
	"github.com/rs/zerolog"

	"github.com/bfat-ux/nigeria-pharmacy-registry-sub000/pkg/errors"
)

// Report file name stems. Each written file carries a UTC timestamp
// suffix so successive runs never clobber each other.
const (
	RegistryFileStem   = "canonical_deduped"
	AutoMergeFileStem  = "auto_merges"
	ReviewFileStem     = "review_queue"
	SummaryFileStem    = "dedup_summary"
	reportTimestampFmt = "20060102_150405"
)

// ReportPaths lists the files one WriteReports call produced.
type ReportPaths struct {
	Registry   string `json:"registry"`
	AutoMerges string `json:"auto_merges"`
	Review     string `json:"review_queue"`
	Summary    string `json:"summary"`
}

// WriteReports writes the registry and the three audit reports into dir,
// creating it if needed. All four files share one timestamp.
func WriteReports(outcome *Outcome, dir string, logger zerolog.Logger) (*ReportPaths, error) {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, errors.WrapIO("mkdir", dir, err)
	}

	stamp := utc.Now().Format(reportTimestampFmt)
	paths := &ReportPaths{
		Registry:   filepath.Join(dir, RegistryFileStem+"_"+stamp+".json"),
		AutoMerges: filepath.Join(dir, AutoMergeFileStem+"_"+stamp+".json"),
		Review:     filepath.Join(dir, ReviewFileStem+"_"+stamp+".json"),
		Summary:    filepath.Join(dir, SummaryFileStem+"_"+stamp+".json"),
	}

	files := []struct {
		path string
		data any
	}{
		{paths.Registry, outcome.Registry},
		{paths.AutoMerges, emptyAsList(outcome.AutoMerges)},
		{paths.Review, emptyAsList(outcome.ReviewQueue)},
		{paths.Summary, outcome.Summary},
	}
	for _, f := range files {
		if err := writeJSON(f.path, f.data); err != nil {
			return nil, err
		}
		logger.Info().Str("path", f.path).Msg("report written")
	}
	return paths, nil
}

func writeJSON(path string, data any) error {
	buf, err := json.MarshalIndent(data, "", "  ")
	if err != nil {
		return errors.WrapIO("marshal", path, err)
	}
	buf = append(buf, '\n')
	if err := os.WriteFile(path, buf, 0o644); err != nil {
		return errors.WrapIO("write", path, err)
	}
	return nil
}

// emptyAsList keeps empty report files as JSON arrays rather than null.
func emptyAsList[T any](items []T) []T {
	if items == nil {
		return []T{}
	}
	return items
}
