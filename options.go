package dedup

import (
	"runtime"

	"github.com/rs/zerolog"

	"github.com/bfat-ux/nigeria-pharmacy-registry-sub000/pkg/errors"
	"github.com/bfat-ux/nigeria-pharmacy-registry-sub000/pkg/score"
)

// Option is a function that configures a Pipeline.
type Option func(*settings) error

type settings struct {
	cfg      score.Config
	logger   zerolog.Logger
	workers  int
	priority []string
}

func defaultSettings() *settings {
	return &settings{
		cfg:     score.DefaultConfig(),
		logger:  zerolog.Nop(),
		workers: runtime.NumCPU(),
	}
}

// WithConfig replaces the default matching configuration. The config is
// validated when the pipeline is constructed.
func WithConfig(cfg score.Config) Option {
	return func(s *settings) error {
		s.cfg = cfg
		return nil
	}
}

// WithLogger sets the logger used for progress and skip diagnostics.
func WithLogger(logger zerolog.Logger) Option {
	return func(s *settings) error {
		s.logger = logger
		return nil
	}
}

// WithSearchRadius overrides the candidate search radius in kilometres.
func WithSearchRadius(radiusKM float64) Option {
	return func(s *settings) error {
		if radiusKM <= 0 {
			return errors.NewConfigError("options", "search radius must be positive", nil)
		}
		s.cfg.CandidateSearchRadiusKM = radiusKM
		return nil
	}
}

// WithWorkers bounds the concurrency of candidate generation and pair
// scoring. Values below 1 fall back to the CPU count.
func WithWorkers(n int) Option {
	return func(s *settings) error {
		if n < 1 {
			n = runtime.NumCPU()
		}
		s.workers = n
		return nil
	}
}

// WithSourcePriority replaces the survivor-selection source ordering.
// Sources not in the list rank below every listed source.
func WithSourcePriority(priority []string) Option {
	return func(s *settings) error {
		s.priority = append([]string(nil), priority...)
		return nil
	}
}
