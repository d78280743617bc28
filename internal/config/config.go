// Package config loads matching rules from YAML files and the
// environment into a validated score.Config. Invalid configuration is a
// fatal startup error, never a silent clamp.
package config

import (
	"os"
	"strings"

	"github.com/joho/godotenv"
	"github.com/spf13/viper"

	"github.com/bfat-ux/nigeria-pharmacy-registry-sub000/pkg/errors"
	"github.com/bfat-ux/nigeria-pharmacy-registry-sub000/pkg/score"
)

// DefaultFileName is the merge-rules file searched for in the working
// directory when no explicit path is given.
const DefaultFileName = "merge_rules"

// EnvPrefix namespaces environment overrides, e.g.
// PHARMDEDUP_THRESHOLDS_AUTO_MERGE=0.97.
const EnvPrefix = "PHARMDEDUP"

// Load reads matching configuration with the usual precedence:
// environment variables, then the config file, then built-in defaults.
// path may be empty, in which case merge_rules.{yaml,yml,json} is
// searched for in the working directory; a missing file just means
// defaults. The result is validated before being returned.
func Load(path string) (score.Config, error) {
	loadEnvFiles()

	v := viper.New()
	v.SetEnvPrefix(EnvPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_", "-", "_"))
	v.AutomaticEnv()

	setDefaults(v, score.DefaultConfig())

	if path != "" {
		v.SetConfigFile(path)
		if err := v.ReadInConfig(); err != nil {
			return score.Config{}, errors.NewConfigError("file", "reading "+path, err)
		}
	} else {
		v.AddConfigPath(".")
		v.SetConfigName(DefaultFileName)
		if err := v.ReadInConfig(); err != nil {
			var notFound viper.ConfigFileNotFoundError
			if !errors.As(err, &notFound) {
				return score.Config{}, errors.NewConfigError("file", "reading merge rules", err)
			}
		}
	}

	var cfg score.Config
	if err := v.Unmarshal(&cfg); err != nil {
		return score.Config{}, errors.NewConfigError("file", "decoding merge rules", err)
	}

	if err := cfg.Validate(); err != nil {
		return score.Config{}, err
	}
	return cfg, nil
}

// setDefaults registers every tunable so viper's Unmarshal sees a
// complete tree even with no config file present.
func setDefaults(v *viper.Viper, d score.Config) {
	v.SetDefault("weights.name", d.Weights.Name)
	v.SetDefault("weights.geo", d.Weights.Geo)
	v.SetDefault("weights.phone", d.Weights.Phone)
	v.SetDefault("weights.external_id", d.Weights.ExternalID)

	v.SetDefault("thresholds.auto_merge", d.Thresholds.AutoMerge)
	v.SetDefault("thresholds.review_lower", d.Thresholds.ReviewLower)

	v.SetDefault("match_radius_km", d.MatchRadiusKM)
	v.SetDefault("decay_radius_km", d.DecayRadiusKM)
	v.SetDefault("candidate_search_radius_km", d.CandidateSearchRadiusKM)

	v.SetDefault("same_state_required", d.SameStateRequired)
	v.SetDefault("same_lga_boost", d.SameLGABoost)
	v.SetDefault("regulator_identifier_types", d.RegulatorIdentifierTypes)
}

// loadEnvFiles loads .env files when present. Real environment variables
// always win.
func loadEnvFiles() {
	for _, name := range []string{".env", ".env.local"} {
		if _, err := os.Stat(name); err == nil {
			_ = godotenv.Load(name)
		}
	}
}
