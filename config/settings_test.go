package config

import (
	"bytes"
	"encoding/gob"
	"errors"
	"strings"
	"testing"

	apperrors "github.com/gcbaptista/course-search-engine/internal/errors"
)

func TestCatalogSettings_ValidateName(t *testing.T) {
	tests := []struct {
		name           string
		catalogName    string
		expectedErrors int
	}{
		{"simple name", "fall-2024", 0},
		{"underscores and digits", "catalog_2", 0},
		{"empty", "", 1},
		{"whitespace only", "   ", 1},
		{"leading hyphen", "-fall", 1},
		{"path separator", "../etc", 1},
		{"spaces", "fall 2024", 1},
		{"too long", strings.Repeat("a", MaxCatalogNameLength+1), 1},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			settings := CatalogSettings{Name: tt.catalogName}
			conflicts := settings.ValidateName()
			if len(conflicts) != tt.expectedErrors {
				t.Errorf("Expected %d errors, got %d: %v", tt.expectedErrors, len(conflicts), conflicts)
			}
		})
	}
}

func TestCatalogSettings_ApplyDefaults(t *testing.T) {
	settings := CatalogSettings{
		Name:        "  fall-2024 ",
		Description: " Fall term ",
		Scoring:     &ScoringOverrides{},
	}
	settings.ApplyDefaults()

	if settings.Name != "fall-2024" {
		t.Errorf("Expected trimmed name, got %q", settings.Name)
	}
	if settings.Description != "Fall term" {
		t.Errorf("Expected trimmed description, got %q", settings.Description)
	}
	if settings.Scoring != nil {
		t.Error("Expected an empty override block to be dropped")
	}
}

func TestCatalogSettings_EffectiveScoring(t *testing.T) {
	cutoff := 0.5
	settings := CatalogSettings{Name: "fall", Scoring: &ScoringOverrides{ScoreCutoff: &cutoff}}

	cfg, err := settings.EffectiveScoring(DefaultScoringConfig())
	if err != nil {
		t.Fatalf("EffectiveScoring() error = %v", err)
	}
	if cfg.ScoreCutoff != 0.5 {
		t.Errorf("Expected cutoff 0.5, got %g", cfg.ScoreCutoff)
	}
	if cfg.CourseCodeExactBonus != 300 {
		t.Errorf("Expected untouched weights to keep their defaults, got %g", cfg.CourseCodeExactBonus)
	}

	bad := -1.0
	settings.Scoring = &ScoringOverrides{KeywordWeight: &bad}
	if _, err := settings.EffectiveScoring(DefaultScoringConfig()); !errors.Is(err, apperrors.ErrInvalidInput) {
		t.Errorf("Expected ErrInvalidInput for a negative weight, got %v", err)
	}
}

func TestCatalogSettings_GobKeepsZeroOverrides(t *testing.T) {
	zero := 0.0
	original := CatalogSettings{
		Name:        "fall",
		Description: "Fall term",
		Scoring:     &ScoringOverrides{DivisionWeight: &zero},
	}

	var buf bytes.Buffer
	if err := gob.NewEncoder(&buf).Encode(original); err != nil {
		t.Fatalf("Encode() error = %v", err)
	}
	var decoded CatalogSettings
	if err := gob.NewDecoder(&buf).Decode(&decoded); err != nil {
		t.Fatalf("Decode() error = %v", err)
	}

	if decoded.Name != "fall" || decoded.Description != "Fall term" {
		t.Errorf("decoded settings = %+v", decoded)
	}
	if decoded.Scoring == nil || decoded.Scoring.DivisionWeight == nil || *decoded.Scoring.DivisionWeight != 0 {
		t.Errorf("an explicit zero override must survive the round trip, got %+v", decoded.Scoring)
	}
}
