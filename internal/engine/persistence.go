package engine

import (
	stderrors "errors"
	"fmt"
	"os"
	"path/filepath"

	"go.uber.org/zap"

	"github.com/gcbaptista/course-search-engine/config"
	"github.com/gcbaptista/course-search-engine/internal/persistence"
	"github.com/gcbaptista/course-search-engine/store"
)

const (
	dataDirPerm     = 0755
	settingsFile    = "settings.gob"
	courseStoreFile = "course_store.gob"
)

// loadCatalogsFromDisk loads all catalogs from the data directory.
// A catalog whose files cannot be read is skipped and logged.
func (e *Engine) loadCatalogsFromDisk() {
	e.log.Info("loading catalogs from disk", zap.String("data_dir", e.dataDir))

	if err := os.MkdirAll(e.dataDir, dataDirPerm); err != nil {
		e.log.Warn("could not create data directory", zap.String("data_dir", e.dataDir), zap.Error(err))
	}

	items, err := os.ReadDir(e.dataDir)
	if err != nil {
		e.log.Warn("failed to read data directory, no catalogs loaded", zap.String("data_dir", e.dataDir), zap.Error(err))
		return
	}

	for _, item := range items {
		if !item.IsDir() {
			continue
		}
		name := item.Name()
		catalogPath := filepath.Join(e.dataDir, name)
		log := e.log.With(zap.String("catalog", name))

		var settings config.CatalogSettings
		settingsPath := filepath.Join(catalogPath, settingsFile)
		if err := persistence.LoadGob(settingsPath, &settings); err != nil {
			log.Warn("failed to load catalog settings, skipping", zap.String("path", settingsPath), zap.Error(err))
			continue
		}

		// Settings name should match directory name
		if settings.Name != name {
			log.Warn("catalog name in settings does not match directory, skipping", zap.String("settings_name", settings.Name))
			continue
		}

		scoring, err := settings.EffectiveScoring(e.baseScoring)
		if err != nil {
			log.Warn("stored scoring overrides are invalid against the base configuration, using base", zap.Error(err))
			settings.Scoring = nil
			scoring = e.baseScoring
		}

		courseStore := store.NewCourseStore()
		storePath := filepath.Join(catalogPath, courseStoreFile)
		if err := persistence.LoadGob(storePath, courseStore); err != nil {
			if stderrors.Is(err, os.ErrNotExist) {
				log.Info("course store file not found, starting empty", zap.String("path", storePath))
			} else {
				log.Warn("failed to load course store, starting empty", zap.String("path", storePath), zap.Error(err))
			}
			courseStore = store.NewCourseStore()
		}

		instance, err := NewCatalogInstance(settings, courseStore, scoring, e.lex, e.searchOpts)
		if err != nil {
			log.Error("failed to create catalog instance, skipping", zap.Error(err))
			continue
		}

		e.catalogs[name] = instance
		log.Info("catalog loaded", zap.Int("courses", courseStore.Len()))
	}
}

// PersistCatalogData writes the settings and courses of a catalog to disk.
func (e *Engine) PersistCatalogData(name string) error {
	instance, err := e.instance(name)
	if err != nil {
		return err
	}
	return e.persistIfRegistered(instance)
}

// persistCatalogUnsafe persists a catalog instance to disk.
// Each file is replaced atomically; the course store locks itself while encoding.
func (e *Engine) persistCatalogUnsafe(instance *CatalogInstance) error {
	if err := e.persistSettingsUnsafe(instance); err != nil {
		return err
	}
	name := instance.name()
	storePath := filepath.Join(e.dataDir, name, courseStoreFile)
	if err := persistence.SaveGob(storePath, instance.CourseStore); err != nil {
		return fmt.Errorf("failed to save course store for catalog %s: %w", name, err)
	}
	return nil
}

func (e *Engine) persistSettingsUnsafe(instance *CatalogInstance) error {
	settings := instance.Settings()
	settingsPath := filepath.Join(e.dataDir, settings.Name, settingsFile)
	if err := persistence.SaveGob(settingsPath, settings); err != nil {
		return fmt.Errorf("failed to save settings for catalog %s: %w", settings.Name, err)
	}
	return nil
}
