// Package config provides configuration structures for the course search engine.
// It defines scoring weights, per-catalog settings and the server configuration.
package config

import (
	"encoding/json"
	"regexp"
	"strings"
)

// MaxCatalogNameLength bounds catalog names, which double as directory names on disk.
const MaxCatalogNameLength = 100

var catalogNameRegex = regexp.MustCompile(`^[a-zA-Z0-9][a-zA-Z0-9_-]*$`)

// CatalogSettings contains all configuration options for a course catalog.
//
// Scoring holds only the fields the catalog changes; everything else comes from
// the server-wide base configuration. Per-request overrides are layered on top
// of the catalog's at search time.
type CatalogSettings struct {
	Name        string            `json:"name"`                  // Unique name for the catalog (e.g., "fall-2024")
	Description string            `json:"description,omitempty"` // Free-form label shown in listings
	Scoring     *ScoringOverrides `json:"scoring,omitempty"`     // Catalog-level scoring overrides
}

// ValidateName reports problems with the catalog name.
func (settings *CatalogSettings) ValidateName() []string {
	var conflicts []string
	name := settings.Name

	if strings.TrimSpace(name) == "" {
		return append(conflicts, "Catalog name cannot be empty or whitespace-only")
	}
	if len(name) > MaxCatalogNameLength {
		conflicts = append(conflicts, "Catalog name cannot exceed 100 characters")
	}
	if !catalogNameRegex.MatchString(name) {
		conflicts = append(conflicts, "Catalog name '"+name+"' may only contain letters, digits, '-' and '_' and must start with a letter or digit")
	}
	return conflicts
}

// EffectiveScoring layers the catalog overrides on base and validates the result.
func (settings *CatalogSettings) EffectiveScoring(base ScoringConfig) (ScoringConfig, error) {
	cfg := settings.Scoring.Apply(base)
	if err := cfg.Validate(); err != nil {
		return ScoringConfig{}, err
	}
	return cfg, nil
}

// ApplyDefaults normalizes the settings after decoding
func (settings *CatalogSettings) ApplyDefaults() {
	settings.Name = strings.TrimSpace(settings.Name)
	settings.Description = strings.TrimSpace(settings.Description)

	// An empty override block is the same as none
	if settings.Scoring.IsEmpty() {
		settings.Scoring = nil
	}
}

// catalogSettingsData drops the gob methods so JSON encoding does not recurse.
type catalogSettingsData CatalogSettings

// GobEncode stores the settings as JSON. gob skips pointers to zero values,
// which would turn an explicit zero weight override back into "unset".
func (settings CatalogSettings) GobEncode() ([]byte, error) {
	return json.Marshal(catalogSettingsData(settings))
}

// GobDecode implements the gob.GobDecoder interface for CatalogSettings.
func (settings *CatalogSettings) GobDecode(data []byte) error {
	var decoded catalogSettingsData
	if err := json.Unmarshal(data, &decoded); err != nil {
		return err
	}
	*settings = CatalogSettings(decoded)
	return nil
}
