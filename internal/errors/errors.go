package errors

import (
	"errors"
	"fmt"
)

// Sentinel errors for common error conditions
var (
	// ErrCatalogNotFound is returned when a catalog is not found
	ErrCatalogNotFound = errors.New("catalog not found")

	// ErrCatalogAlreadyExists is returned when trying to create a catalog that already exists
	ErrCatalogAlreadyExists = errors.New("catalog already exists")

	// ErrCourseNotFound is returned when a course is not found
	ErrCourseNotFound = errors.New("course not found")

	// ErrJobNotFound is returned when a job is not found
	ErrJobNotFound = errors.New("job not found")

	// ErrInvalidInput is returned when input validation fails
	ErrInvalidInput = errors.New("invalid input")
)

// CatalogNotFoundError represents a catalog not found error with context
type CatalogNotFoundError struct {
	CatalogName string
}

func (e *CatalogNotFoundError) Error() string {
	return fmt.Sprintf("catalog named '%s' not found", e.CatalogName)
}

func (e *CatalogNotFoundError) Is(target error) bool {
	return target == ErrCatalogNotFound
}

// NewCatalogNotFoundError creates a new CatalogNotFoundError
func NewCatalogNotFoundError(catalogName string) *CatalogNotFoundError {
	return &CatalogNotFoundError{CatalogName: catalogName}
}

// CatalogAlreadyExistsError represents a catalog already exists error with context
type CatalogAlreadyExistsError struct {
	CatalogName string
}

func (e *CatalogAlreadyExistsError) Error() string {
	return fmt.Sprintf("catalog named '%s' already exists", e.CatalogName)
}

func (e *CatalogAlreadyExistsError) Is(target error) bool {
	return target == ErrCatalogAlreadyExists
}

// NewCatalogAlreadyExistsError creates a new CatalogAlreadyExistsError
func NewCatalogAlreadyExistsError(catalogName string) *CatalogAlreadyExistsError {
	return &CatalogAlreadyExistsError{CatalogName: catalogName}
}

// CourseNotFoundError represents a course not found error with context
type CourseNotFoundError struct {
	CourseID    string
	CatalogName string
}

func (e *CourseNotFoundError) Error() string {
	if e.CatalogName != "" {
		return fmt.Sprintf("course with ID '%s' not found in catalog '%s'", e.CourseID, e.CatalogName)
	}
	return fmt.Sprintf("course with ID '%s' not found", e.CourseID)
}

func (e *CourseNotFoundError) Is(target error) bool {
	return target == ErrCourseNotFound
}

// NewCourseNotFoundError creates a new CourseNotFoundError
func NewCourseNotFoundError(courseID string, catalogName ...string) *CourseNotFoundError {
	err := &CourseNotFoundError{CourseID: courseID}
	if len(catalogName) > 0 {
		err.CatalogName = catalogName[0]
	}
	return err
}

// JobNotFoundError represents a job not found error with context
type JobNotFoundError struct {
	JobID string
}

func (e *JobNotFoundError) Error() string {
	return fmt.Sprintf("job with ID '%s' not found", e.JobID)
}

func (e *JobNotFoundError) Is(target error) bool {
	return target == ErrJobNotFound
}

// NewJobNotFoundError creates a new JobNotFoundError
func NewJobNotFoundError(jobID string) *JobNotFoundError {
	return &JobNotFoundError{JobID: jobID}
}

// ValidationError represents an input validation error with context
type ValidationError struct {
	Field   string
	Message string
}

func (e *ValidationError) Error() string {
	if e.Field != "" {
		return fmt.Sprintf("validation error for field '%s': %s", e.Field, e.Message)
	}
	return fmt.Sprintf("validation error: %s", e.Message)
}

func (e *ValidationError) Is(target error) bool {
	return target == ErrInvalidInput
}

// NewValidationError creates a new ValidationError
func NewValidationError(field, message string) *ValidationError {
	return &ValidationError{Field: field, Message: message}
}
