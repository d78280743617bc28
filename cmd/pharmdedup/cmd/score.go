package cmd

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/goccy/go-yaml"
	"github.com/spf13/cobra"

	dedup "github.com/bfat-ux/nigeria-pharmacy-registry-sub000"
	"github.com/bfat-ux/nigeria-pharmacy-registry-sub000/internal/config"
	"github.com/bfat-ux/nigeria-pharmacy-registry-sub000/pkg/errors"
	"github.com/bfat-ux/nigeria-pharmacy-registry-sub000/pkg/records"
)

var scoreCmd = &cobra.Command{
	Use:   "score <record-a.json> <record-b.json>",
	Short: "Score a single record pair",
	Long: `Score reads two single-record files (JSON or YAML), runs the pair
through the configured scorer, and prints the full signal breakdown.
Useful for tuning merge rules against known pairs.`,
	Args: cobra.ExactArgs(2),
	RunE: scorePair,
}

func init() {
	rootCmd.AddCommand(scoreCmd)
}

func scorePair(_ *cobra.Command, args []string) error {
	cfg, err := config.Load(configFile)
	if err != nil {
		return err
	}

	a, err := loadRecord(args[0])
	if err != nil {
		return err
	}
	b, err := loadRecord(args[1])
	if err != nil {
		return err
	}

	pipe, err := dedup.New(dedup.WithConfig(cfg))
	if err != nil {
		return err
	}

	result := pipe.Score(a, b)
	out, err := json.MarshalIndent(result, "", "  ")
	if err != nil {
		return errors.WrapParse("json", "match result", err)
	}
	fmt.Println(string(out))
	return nil
}

// loadRecord reads a file holding exactly one canonical record.
func loadRecord(path string) (*records.CanonicalRecord, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, errors.WrapIO("read", path, err)
	}

	ext := strings.ToLower(filepath.Ext(path))
	if ext == ".yaml" || ext == ".yml" {
		jsonData, err := yaml.YAMLToJSON(data)
		if err != nil {
			return nil, errors.WrapParse("yaml", path, err)
		}
		data = jsonData
	}

	var rec records.CanonicalRecord
	if err := json.Unmarshal(data, &rec); err != nil {
		return nil, errors.WrapParse("json", path, err)
	}
	if strings.TrimSpace(rec.ID) == "" {
		return nil, errors.NewValidationError("pharmacy_id", rec.ID, "record is missing an id")
	}
	return &rec, nil
}
