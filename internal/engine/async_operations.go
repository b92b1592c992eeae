package engine

import (
	"context"
	"fmt"
	"strconv"

	"go.uber.org/zap"

	"github.com/gcbaptista/course-search-engine/config"
	"github.com/gcbaptista/course-search-engine/internal/errors"
	"github.com/gcbaptista/course-search-engine/internal/logger"
	"github.com/gcbaptista/course-search-engine/model"
)

// CreateCatalogAsync validates the settings up front and creates the catalog in the background.
func (e *Engine) CreateCatalogAsync(settings config.CatalogSettings) (string, error) {
	settings.ApplyDefaults()
	scoring, err := e.prepareCatalog(settings)
	if err != nil {
		return "", err
	}
	if _, err := e.instance(settings.Name); err == nil {
		return "", errors.NewCatalogAlreadyExistsError(settings.Name)
	}

	return e.startJob(model.JobTypeCreateCatalog, settings.Name, nil, func(ctx context.Context, job *model.Job) error {
		e.mu.Lock()
		defer e.mu.Unlock()
		// Double-check under the lock
		return e.createCatalogUnsafe(settings, scoring)
	})
}

// DeleteCatalogAsync deletes a catalog in the background.
func (e *Engine) DeleteCatalogAsync(name string) (string, error) {
	if _, err := e.instance(name); err != nil {
		return "", err
	}

	return e.startJob(model.JobTypeDeleteCatalog, name, nil, func(ctx context.Context, job *model.Job) error {
		e.mu.Lock()
		defer e.mu.Unlock()
		return e.deleteCatalogUnsafe(name)
	})
}

// UpsertCoursesAsync adds or replaces courses by ID in the background and persists the catalog.
func (e *Engine) UpsertCoursesAsync(name string, courses []model.Course) (string, error) {
	if _, err := e.instance(name); err != nil {
		return "", err
	}
	if err := validateCourses(courses); err != nil {
		return "", err
	}

	metadata := map[string]string{"course_count": strconv.Itoa(len(courses))}
	return e.startJob(model.JobTypeUpsertCourses, name, metadata, func(ctx context.Context, job *model.Job) error {
		instance, err := e.instance(name)
		if err != nil {
			return err
		}

		e.jobManager.UpdateJobProgress(job.ID, 0, len(courses), "Starting course upsert")
		added, updated, err := instance.UpsertCourses(courses)
		if err != nil {
			return err
		}
		e.jobManager.UpdateJobProgress(job.ID, len(courses), len(courses),
			fmt.Sprintf("%d courses added, %d updated", added, updated))

		if err := e.persistIfRegistered(instance); err != nil {
			return fmt.Errorf("courses were stored but persisting catalog '%s' failed: %w", name, err)
		}
		logger.FromContext(ctx).Info("courses upserted",
			zap.String("catalog", name), zap.Int("added", added), zap.Int("updated", updated))
		return nil
	})
}

// ReplaceCoursesAsync swaps the whole corpus of a catalog in the background and persists it.
func (e *Engine) ReplaceCoursesAsync(name string, courses []model.Course) (string, error) {
	if _, err := e.instance(name); err != nil {
		return "", err
	}
	if err := validateCourses(courses); err != nil {
		return "", err
	}

	metadata := map[string]string{"course_count": strconv.Itoa(len(courses))}
	return e.startJob(model.JobTypeReplaceCourses, name, metadata, func(ctx context.Context, job *model.Job) error {
		instance, err := e.instance(name)
		if err != nil {
			return err
		}

		e.jobManager.UpdateJobProgress(job.ID, 0, len(courses), "Replacing catalog courses")
		if err := instance.ReplaceCourses(courses); err != nil {
			return err
		}
		e.jobManager.UpdateJobProgress(job.ID, len(courses), len(courses), "Courses replaced")

		if err := e.persistIfRegistered(instance); err != nil {
			return fmt.Errorf("courses were replaced but persisting catalog '%s' failed: %w", name, err)
		}
		logger.FromContext(ctx).Info("courses replaced",
			zap.String("catalog", name), zap.Int("courses", len(courses)))
		return nil
	})
}

// DeleteCourseAsync removes one course in the background and persists the catalog.
func (e *Engine) DeleteCourseAsync(name, courseID string) (string, error) {
	instance, err := e.instance(name)
	if err != nil {
		return "", err
	}
	if _, err := instance.GetCourse(courseID); err != nil {
		return "", err
	}

	metadata := map[string]string{"course_id": courseID}
	return e.startJob(model.JobTypeDeleteCourse, name, metadata, func(ctx context.Context, job *model.Job) error {
		instance, err := e.instance(name)
		if err != nil {
			return err
		}
		if err := instance.DeleteCourse(courseID); err != nil {
			return err
		}
		return e.persistIfRegistered(instance)
	})
}

// startJob registers a job and hands fn to the job manager.
func (e *Engine) startJob(jobType model.JobType, catalogName string, metadata map[string]string, fn func(ctx context.Context, job *model.Job) error) (string, error) {
	jobID := e.jobManager.CreateJob(jobType, catalogName, metadata)
	if err := e.jobManager.ExecuteJob(jobID, fn); err != nil {
		return "", fmt.Errorf("failed to start %s job: %w", jobType, err)
	}
	return jobID, nil
}

// persistIfRegistered saves instance unless the catalog was deleted or
// recreated while the job ran. Holding the read lock keeps a concurrent
// delete from racing the write.
func (e *Engine) persistIfRegistered(instance *CatalogInstance) error {
	e.mu.RLock()
	defer e.mu.RUnlock()

	name := instance.name()
	if e.catalogs[name] != instance {
		return errors.NewCatalogNotFoundError(name)
	}
	return e.persistCatalogUnsafe(instance)
}
