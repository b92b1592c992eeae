package engine

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"go.uber.org/zap"

	"github.com/gcbaptista/course-search-engine/config"
	"github.com/gcbaptista/course-search-engine/internal/errors"
	"github.com/gcbaptista/course-search-engine/internal/metrics"
)

// CreateCatalog creates a new catalog with the given settings and persists it.
func (e *Engine) CreateCatalog(settings config.CatalogSettings) error {
	settings.ApplyDefaults()
	scoring, err := e.prepareCatalog(settings)
	if err != nil {
		return err
	}

	e.mu.Lock()
	defer e.mu.Unlock()
	return e.createCatalogUnsafe(settings, scoring)
}

// prepareCatalog validates settings and resolves the catalog's scoring.
func (e *Engine) prepareCatalog(settings config.CatalogSettings) (config.ScoringConfig, error) {
	if conflicts := settings.ValidateName(); len(conflicts) > 0 {
		return config.ScoringConfig{}, errors.NewValidationError("name", strings.Join(conflicts, "; "))
	}
	scoring, err := settings.EffectiveScoring(e.baseScoring)
	if err != nil {
		return config.ScoringConfig{}, fmt.Errorf("invalid scoring for catalog '%s': %w", settings.Name, err)
	}
	return scoring, nil
}

// createCatalogUnsafe builds, persists and registers a catalog.
// The caller must hold e.mu.
func (e *Engine) createCatalogUnsafe(settings config.CatalogSettings, scoring config.ScoringConfig) error {
	if _, exists := e.catalogs[settings.Name]; exists {
		return errors.NewCatalogAlreadyExistsError(settings.Name)
	}

	instance, err := NewCatalogInstance(settings, nil, scoring, e.lex, e.searchOpts)
	if err != nil {
		return fmt.Errorf("failed to create new catalog instance for '%s': %w", settings.Name, err)
	}

	if err := e.persistCatalogUnsafe(instance); err != nil {
		metrics.ForgetCatalog(settings.Name)
		return fmt.Errorf("failed to persist new catalog '%s': %w", settings.Name, err)
	}

	e.catalogs[settings.Name] = instance
	e.log.Info("catalog created", zap.String("catalog", settings.Name))
	return nil
}

// DeleteCatalog deletes a catalog and its data from disk.
func (e *Engine) DeleteCatalog(name string) error {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.deleteCatalogUnsafe(name)
}

func (e *Engine) deleteCatalogUnsafe(name string) error {
	if _, exists := e.catalogs[name]; !exists {
		return errors.NewCatalogNotFoundError(name)
	}

	delete(e.catalogs, name)
	metrics.ForgetCatalog(name)

	catalogPath := filepath.Join(e.dataDir, name)
	if err := os.RemoveAll(catalogPath); err != nil {
		return fmt.Errorf("failed to remove catalog directory %s: %w", catalogPath, err)
	}

	e.log.Info("catalog deleted", zap.String("catalog", name))
	return nil
}
