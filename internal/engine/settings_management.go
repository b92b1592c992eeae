package engine

import (
	"fmt"

	"go.uber.org/zap"

	"github.com/gcbaptista/course-search-engine/config"
	"github.com/gcbaptista/course-search-engine/internal/errors"
)

// UpdateScoring replaces the scoring overrides of a catalog. The overrides are
// layered on the base configuration and validated before anything changes;
// a nil or empty value resets the catalog to the base weights.
func (e *Engine) UpdateScoring(name string, overrides *config.ScoringOverrides) error {
	e.mu.Lock()
	defer e.mu.Unlock()

	instance, exists := e.catalogs[name]
	if !exists {
		return errors.NewCatalogNotFoundError(name)
	}

	if overrides.IsEmpty() {
		overrides = nil
	}
	settings := instance.Settings()
	settings.Scoring = overrides
	effective, err := settings.EffectiveScoring(e.baseScoring)
	if err != nil {
		return fmt.Errorf("invalid scoring for catalog '%s': %w", name, err)
	}

	previous := instance.Settings().Scoring
	if err := instance.updateScoring(overrides, effective); err != nil {
		return err
	}
	if err := e.persistSettingsUnsafe(instance); err != nil {
		// Keep memory and disk in agreement.
		if revertErr := e.revertScoring(instance, previous); revertErr != nil {
			e.log.Error("failed to revert scoring after a persistence error",
				zap.String("catalog", name), zap.Error(revertErr))
		}
		return fmt.Errorf("failed to save scoring for catalog '%s': %w", name, err)
	}

	e.log.Info("catalog scoring updated",
		zap.String("catalog", name),
		zap.Bool("overridden", overrides != nil))
	return nil
}

func (e *Engine) revertScoring(instance *CatalogInstance, previous *config.ScoringOverrides) error {
	settings := instance.Settings()
	settings.Scoring = previous
	effective, err := settings.EffectiveScoring(e.baseScoring)
	if err != nil {
		return err
	}
	return instance.updateScoring(previous, effective)
}
