// Package records defines the canonical pharmacy record shape shared by
// every stage of the deduplication pipeline, along with source trust
// ordering and batch loading of canonical record files.
//
// Records are immutable once loaded: the engine never mutates an input
// record, and every merged output is a newly constructed value.
package records

import (
	"strings"

	"github.com/agentstation/utc"
)

// Unknown is the sentinel value ingestion uses for fields it could not
// resolve. Field-level merging treats it the same as empty.
const Unknown = "unknown"

// CanonicalRecord is a single pharmacy/medicine-outlet record as produced
// by the ingestion pipeline. Optional attributes are either pointers or
// empty strings; the scoring layer degrades missing attributes to
// indeterminate signals rather than errors.
type CanonicalRecord struct {
	ID                  string            `json:"pharmacy_id" yaml:"pharmacy_id"`
	FacilityName        string            `json:"facility_name" yaml:"facility_name"`
	AddressLine         string            `json:"address_line,omitempty" yaml:"address_line,omitempty"`
	Ward                string            `json:"ward,omitempty" yaml:"ward,omitempty"`
	LGA                 string            `json:"lga,omitempty" yaml:"lga,omitempty"`
	State               string            `json:"state,omitempty" yaml:"state,omitempty"`
	Latitude            *float64          `json:"latitude,omitempty" yaml:"latitude,omitempty"`
	Longitude           *float64          `json:"longitude,omitempty" yaml:"longitude,omitempty"`
	Phone               string            `json:"phone,omitempty" yaml:"phone,omitempty"`
	Email               string            `json:"email,omitempty" yaml:"email,omitempty"`
	ContactPerson       string            `json:"contact_person,omitempty" yaml:"contact_person,omitempty"`
	OperationalStatus   string            `json:"operational_status,omitempty" yaml:"operational_status,omitempty"`
	ExternalIdentifiers map[string]string `json:"external_identifiers,omitempty" yaml:"external_identifiers,omitempty"`
	SourceID            string            `json:"source_id" yaml:"source_id"`
	UpdatedAt           utc.Time          `json:"updated_at" yaml:"updated_at"`

	// Merge provenance, set only on synthesized survivor records.
	MergedFrom   []string `json:"_merged_from,omitempty" yaml:"_merged_from,omitempty"`
	MergeSources []string `json:"_merge_sources,omitempty" yaml:"_merge_sources,omitempty"`
}

// HasCoordinates reports whether both latitude and longitude are present.
func (r *CanonicalRecord) HasCoordinates() bool {
	return r.Latitude != nil && r.Longitude != nil
}

// StateKey returns the state name normalized for blocking comparisons.
// Empty means "state unknown"; unknown states are never blocked against
// each other.
func (r *CanonicalRecord) StateKey() string {
	return strings.ToLower(strings.TrimSpace(r.State))
}

// LGAKey returns the LGA name normalized for boost comparisons.
func (r *CanonicalRecord) LGAKey() string {
	return strings.ToLower(strings.TrimSpace(r.LGA))
}

// IsSurvivor reports whether this record was synthesized by a merge.
func (r *CanonicalRecord) IsSurvivor() bool {
	return len(r.MergedFrom) > 0
}

// Sources returns every source that contributed to this record: the
// merge sources for a survivor, otherwise just the record's own source.
func (r *CanonicalRecord) Sources() []string {
	if len(r.MergeSources) > 0 {
		return r.MergeSources
	}
	return []string{r.SourceID}
}

// Clone returns a deep copy. The engine clones before any survivor
// synthesis so inputs stay untouched.
func (r *CanonicalRecord) Clone() CanonicalRecord {
	out := *r
	if r.Latitude != nil {
		lat := *r.Latitude
		out.Latitude = &lat
	}
	if r.Longitude != nil {
		lon := *r.Longitude
		out.Longitude = &lon
	}
	if r.ExternalIdentifiers != nil {
		ids := make(map[string]string, len(r.ExternalIdentifiers))
		for k, v := range r.ExternalIdentifiers {
			ids[k] = v
		}
		out.ExternalIdentifiers = ids
	}
	if r.MergedFrom != nil {
		out.MergedFrom = append([]string(nil), r.MergedFrom...)
	}
	if r.MergeSources != nil {
		out.MergeSources = append([]string(nil), r.MergeSources...)
	}
	return out
}

// Blank reports whether a field value counts as fillable during merge:
// empty, whitespace, or the "unknown" sentinel.
func Blank(value string) bool {
	v := strings.TrimSpace(value)
	return v == "" || strings.EqualFold(v, Unknown)
}
