package score

import (
	"fmt"
	"math"

	"github.com/bfat-ux/nigeria-pharmacy-registry-sub000/pkg/errors"
	"github.com/bfat-ux/nigeria-pharmacy-registry-sub000/pkg/geo"
)

// Weights controls the contribution of each signal to the composite
// confidence. Weights must be positive and sum to 1.0.
type Weights struct {
	Name       float64 `json:"name" yaml:"name" mapstructure:"name"`
	Geo        float64 `json:"geo" yaml:"geo" mapstructure:"geo"`
	Phone      float64 `json:"phone" yaml:"phone" mapstructure:"phone"`
	ExternalID float64 `json:"external_id" yaml:"external_id" mapstructure:"external_id"`
}

// Thresholds partitions the confidence range into three decisions.
type Thresholds struct {
	// AutoMerge is the inclusive lower bound for automatic merging.
	AutoMerge float64 `json:"auto_merge" yaml:"auto_merge" mapstructure:"auto_merge"`

	// ReviewLower is the inclusive lower bound for the human review
	// queue. Below it the pair is treated as a non-match.
	ReviewLower float64 `json:"review_lower" yaml:"review_lower" mapstructure:"review_lower"`
}

// Config holds all tunable matching parameters.
type Config struct {
	Weights    Weights    `json:"weights" yaml:"weights" mapstructure:"weights"`
	Thresholds Thresholds `json:"thresholds" yaml:"thresholds" mapstructure:"thresholds"`

	// MatchRadiusKM and DecayRadiusKM shape the geographic proximity
	// score decay.
	MatchRadiusKM float64 `json:"match_radius_km" yaml:"match_radius_km" mapstructure:"match_radius_km"`
	DecayRadiusKM float64 `json:"decay_radius_km" yaml:"decay_radius_km" mapstructure:"decay_radius_km"`

	// CandidateSearchRadiusKM bounds the geographic candidate search.
	CandidateSearchRadiusKM float64 `json:"candidate_search_radius_km" yaml:"candidate_search_radius_km" mapstructure:"candidate_search_radius_km"`

	// SameStateRequired blocks comparisons across state lines entirely.
	SameStateRequired bool `json:"same_state_required" yaml:"same_state_required" mapstructure:"same_state_required"`

	// SameLGABoost is added to the composite confidence when both records
	// name the same local government area.
	SameLGABoost float64 `json:"same_lga_boost" yaml:"same_lga_boost" mapstructure:"same_lga_boost"`

	// RegulatorIdentifierTypes are the identifier types trusted enough
	// that an exact match forces an automatic merge.
	RegulatorIdentifierTypes []string `json:"regulator_identifier_types" yaml:"regulator_identifier_types" mapstructure:"regulator_identifier_types"`
}

// DefaultConfig returns the production matching parameters.
func DefaultConfig() Config {
	return Config{
		Weights: Weights{
			Name:       0.40,
			Geo:        0.25,
			Phone:      0.20,
			ExternalID: 0.15,
		},
		Thresholds: Thresholds{
			AutoMerge:   0.95,
			ReviewLower: 0.70,
		},
		MatchRadiusKM:           geo.DefaultMatchRadiusKM,
		DecayRadiusKM:           geo.DefaultDecayRadiusKM,
		CandidateSearchRadiusKM: 2.0,
		SameStateRequired:       true,
		SameLGABoost:            0.05,
		RegulatorIdentifierTypes: []string{
			"pcn_registration",
			"nhia_facility",
			"nafdac_license",
		},
	}
}

// weightSumTolerance absorbs float drift when weights come from YAML.
const weightSumTolerance = 0.001

// Validate checks the configuration and returns a ConfigError describing
// the first problem found. Invalid configuration fails the run up front
// rather than producing silently skewed scores.
func (c Config) Validate() error {
	for _, w := range []struct {
		name  string
		value float64
	}{
		{"name", c.Weights.Name},
		{"geo", c.Weights.Geo},
		{"phone", c.Weights.Phone},
		{"external_id", c.Weights.ExternalID},
	} {
		if w.value <= 0 {
			return errors.NewConfigError("weights",
				fmt.Sprintf("weight %q must be positive, got %v", w.name, w.value), nil)
		}
	}

	sum := c.Weights.Name + c.Weights.Geo + c.Weights.Phone + c.Weights.ExternalID
	if math.Abs(sum-1.0) > weightSumTolerance {
		return errors.NewConfigError("weights",
			fmt.Sprintf("weights must sum to 1.0, got %v", sum), nil)
	}

	if c.Thresholds.AutoMerge < 0 || c.Thresholds.AutoMerge > 1 {
		return errors.NewConfigError("thresholds",
			fmt.Sprintf("auto_merge must be in [0, 1], got %v", c.Thresholds.AutoMerge), nil)
	}
	if c.Thresholds.ReviewLower < 0 || c.Thresholds.ReviewLower > 1 {
		return errors.NewConfigError("thresholds",
			fmt.Sprintf("review_lower must be in [0, 1], got %v", c.Thresholds.ReviewLower), nil)
	}
	if c.Thresholds.AutoMerge < c.Thresholds.ReviewLower {
		return errors.NewConfigError("thresholds",
			fmt.Sprintf("auto_merge (%v) must be >= review_lower (%v)",
				c.Thresholds.AutoMerge, c.Thresholds.ReviewLower), nil)
	}

	if c.MatchRadiusKM <= 0 {
		return errors.NewConfigError("radii",
			fmt.Sprintf("match_radius_km must be positive, got %v", c.MatchRadiusKM), nil)
	}
	if c.DecayRadiusKM <= c.MatchRadiusKM {
		return errors.NewConfigError("radii",
			fmt.Sprintf("decay_radius_km (%v) must exceed match_radius_km (%v)",
				c.DecayRadiusKM, c.MatchRadiusKM), nil)
	}
	if c.CandidateSearchRadiusKM <= 0 {
		return errors.NewConfigError("radii",
			fmt.Sprintf("candidate_search_radius_km must be positive, got %v",
				c.CandidateSearchRadiusKM), nil)
	}

	if c.SameLGABoost < 0 {
		return errors.NewConfigError("boost",
			fmt.Sprintf("same_lga_boost must not be negative, got %v", c.SameLGABoost), nil)
	}

	return nil
}

// regulatorTypeSet returns the regulator identifier types as a lookup
// set.
func (c Config) regulatorTypeSet() map[string]bool {
	set := make(map[string]bool, len(c.RegulatorIdentifierTypes))
	for _, t := range c.RegulatorIdentifierTypes {
		set[t] = true
	}
	return set
}
