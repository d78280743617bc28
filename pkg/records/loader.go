package records

import (
	"encoding/json"
	"io/fs"
	"os"
	"path/filepath"
	"strings"

	"github.com/goccy/go-yaml"

	"github.com/bfat-ux/nigeria-pharmacy-registry-sub000/pkg/errors"
	"github.com/bfat-ux/nigeria-pharmacy-registry-sub000/pkg/logging"
)

// FilePermissions for written registry and report files.
const FilePermissions = 0o644

// LoadDirectory loads every canonical_*.json and canonical_*.yaml batch
// under dir (recursively), skipping previously deduplicated output, and
// returns the records deduplicated by ID. Individual malformed records
// are logged and skipped; only filesystem-level failures abort.
func LoadDirectory(dir string) ([]CanonicalRecord, error) {
	var all []CanonicalRecord

	walkErr := filepath.WalkDir(dir, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if d.IsDir() {
			return nil
		}
		name := d.Name()
		if !strings.HasPrefix(name, "canonical_") {
			return nil
		}
		if !hasRecordExt(name) {
			return nil
		}
		// Skip deduped output to avoid circular loading.
		if strings.Contains(path, "deduped") {
			return nil
		}

		batch, err := LoadFile(path)
		if err != nil {
			// A whole file failing to parse is isolated too: the run
			// continues on the remaining batches.
			logging.Warn().Err(err).Str("file", path).Msg("Skipping unreadable batch")
			return nil
		}
		logging.Info().Int("records", len(batch)).Str("file", path).Msg("Loaded batch")
		all = append(all, batch...)
		return nil
	})
	if walkErr != nil {
		return nil, errors.WrapIO("read", dir, walkErr)
	}

	unique := DedupeByID(all)
	logging.Info().Int("total", len(unique)).Msg("Total unique records loaded")
	return unique, nil
}

// LoadFile loads a single batch file (JSON or YAML array of records).
// Malformed individual records are logged and skipped.
func LoadFile(path string) ([]CanonicalRecord, error) {
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

	return decodeBatch(data, path)
}

// decodeBatch decodes a JSON array record by record so one malformed
// element (wrong types in external_identifiers, for example) cannot take
// down the batch.
func decodeBatch(data []byte, path string) ([]CanonicalRecord, error) {
	var raw []json.RawMessage
	if err := json.Unmarshal(data, &raw); err != nil {
		return nil, errors.WrapParse("json", path, err)
	}

	out := make([]CanonicalRecord, 0, len(raw))
	for i, msg := range raw {
		var rec CanonicalRecord
		if err := json.Unmarshal(msg, &rec); err != nil {
			recErr := errors.NewRecordError("", path, "undecodable record", err)
			logging.Warn().Err(recErr).Int("index", i).Msg("Skipping malformed record")
			continue
		}
		if strings.TrimSpace(rec.ID) == "" {
			logging.Warn().
				Str("file", path).
				Int("index", i).
				Msg("Skipping record without pharmacy_id")
			continue
		}
		if strings.TrimSpace(rec.SourceID) == "" {
			logging.Warn().
				Str("file", path).
				Str("record_id", rec.ID).
				Msg("Skipping record without source_id")
			continue
		}
		out = append(out, rec)
	}
	return out, nil
}

// DedupeByID keeps the first occurrence of each record ID, dropping
// overlapping batch contents.
func DedupeByID(recs []CanonicalRecord) []CanonicalRecord {
	seen := make(map[string]struct{}, len(recs))
	unique := make([]CanonicalRecord, 0, len(recs))
	for _, r := range recs {
		if _, ok := seen[r.ID]; ok {
			continue
		}
		seen[r.ID] = struct{}{}
		unique = append(unique, r)
	}
	return unique
}

// WriteFile writes records as pretty-printed JSON.
func WriteFile(path string, recs []CanonicalRecord) error {
	data, err := json.MarshalIndent(recs, "", "  ")
	if err != nil {
		return errors.WrapParse("json", path, err)
	}
	if err := os.WriteFile(path, data, FilePermissions); err != nil {
		return errors.WrapIO("write", path, err)
	}
	return nil
}

func hasRecordExt(name string) bool {
	switch strings.ToLower(filepath.Ext(name)) {
	case ".json", ".yaml", ".yml":
		return true
	}
	return false
}
