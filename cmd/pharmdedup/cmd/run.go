package cmd

import (
	"sort"

	"github.com/spf13/cobra"

	dedup "github.com/bfat-ux/nigeria-pharmacy-registry-sub000"
	"github.com/bfat-ux/nigeria-pharmacy-registry-sub000/internal/config"
	"github.com/bfat-ux/nigeria-pharmacy-registry-sub000/pkg/logging"
	"github.com/bfat-ux/nigeria-pharmacy-registry-sub000/pkg/merge"
	"github.com/bfat-ux/nigeria-pharmacy-registry-sub000/pkg/records"
)

var (
	runInputDir  string
	runOutputDir string
	runDryRun    bool
	runWorkers   int
	runRadiusKM  float64
)

var runCmd = &cobra.Command{
	Use:   "run",
	Short: "Deduplicate the canonical registry",
	Long: `Run loads every canonical_*.json and canonical_*.yaml batch from the
input directory, scores cross-source candidate pairs, merges confident
duplicates, and writes the reduced registry plus audit reports.

With --dry-run the pipeline executes fully but writes nothing.`,
	RunE: runDedup,
}

func init() {
	runCmd.Flags().StringVarP(&runInputDir, "input", "i", "data/canonical",
		"directory containing canonical record batches")
	runCmd.Flags().StringVarP(&runOutputDir, "output", "o", "data/deduped",
		"directory for the deduplicated registry and reports")
	runCmd.Flags().BoolVar(&runDryRun, "dry-run", false,
		"score and resolve without writing any files")
	runCmd.Flags().IntVar(&runWorkers, "workers", 0,
		"concurrent workers (0 means one per CPU)")
	runCmd.Flags().Float64Var(&runRadiusKM, "search-radius-km", 0,
		"override the candidate search radius")
	rootCmd.AddCommand(runCmd)
}

func runDedup(cobraCmd *cobra.Command, _ []string) error {
	logger := logging.Default()

	cfg, err := config.Load(configFile)
	if err != nil {
		logger.Error().Err(err).Msg("Invalid merge rules")
		return err
	}
	if runRadiusKM > 0 {
		cfg.CandidateSearchRadiusKM = runRadiusKM
	}

	recs, err := records.LoadDirectory(runInputDir)
	if err != nil {
		logger.Error().Err(err).Str("dir", runInputDir).Msg("Failed to load records")
		return err
	}
	logSourceBreakdown(recs)

	pipe, err := dedup.New(
		dedup.WithConfig(cfg),
		dedup.WithLogger(*logger),
		dedup.WithWorkers(runWorkers),
	)
	if err != nil {
		return err
	}

	result, err := pipe.Run(cobraCmd.Context(), recs)
	if err != nil {
		logger.Error().Err(err).Msg("Deduplication failed")
		return err
	}

	summary := result.Outcome.Summary
	logger.Info().
		Str("run_id", summary.RunID).
		Int("candidate_pairs", result.CandidatePairs).
		Int("auto_merge_pairs", summary.AutoMergePairs).
		Int("review_pairs", summary.ReviewPairs).
		Int("records_absorbed", summary.RecordsAbsorbed).
		Int("final_records", summary.FinalRecords).
		Msg("Run complete")

	if runDryRun {
		logger.Info().Msg("Dry run, skipping report output")
		return nil
	}

	paths, err := merge.WriteReports(result.Outcome, runOutputDir, *logger)
	if err != nil {
		logger.Error().Err(err).Msg("Failed to write reports")
		return err
	}
	logger.Info().Str("registry", paths.Registry).Msg("Deduplicated registry written")
	return nil
}

// logSourceBreakdown logs the per-source record counts before scoring so
// wildly skewed inputs are visible up front.
func logSourceBreakdown(recs []records.CanonicalRecord) {
	counts := make(map[string]int)
	for _, r := range recs {
		counts[r.SourceID]++
	}

	sources := make([]string, 0, len(counts))
	for src := range counts {
		sources = append(sources, src)
	}
	sort.Strings(sources)

	for _, src := range sources {
		logging.Info().Str("source", src).Int("records", counts[src]).Msg("Source loaded")
	}
}
