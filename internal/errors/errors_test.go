package errors

import (
	"errors"
	"fmt"
	"testing"
)

func TestCatalogNotFoundError(t *testing.T) {
	err := NewCatalogNotFoundError("fall-2024")

	expectedMsg := "catalog named 'fall-2024' not found"
	if err.Error() != expectedMsg {
		t.Errorf("Expected error message '%s', got '%s'", expectedMsg, err.Error())
	}
	if !errors.Is(err, ErrCatalogNotFound) {
		t.Error("Expected error to match ErrCatalogNotFound sentinel")
	}
	if errors.Is(err, ErrCourseNotFound) {
		t.Error("Error should not match ErrCourseNotFound")
	}
}

func TestCatalogAlreadyExistsError(t *testing.T) {
	err := NewCatalogAlreadyExistsError("fall-2024")

	expectedMsg := "catalog named 'fall-2024' already exists"
	if err.Error() != expectedMsg {
		t.Errorf("Expected error message '%s', got '%s'", expectedMsg, err.Error())
	}
	if !errors.Is(err, ErrCatalogAlreadyExists) {
		t.Error("Expected error to match ErrCatalogAlreadyExists sentinel")
	}
}

func TestCourseNotFoundError(t *testing.T) {
	err := NewCourseNotFoundError("cosc-111")
	if err.Error() != "course with ID 'cosc-111' not found" {
		t.Errorf("Unexpected error message '%s'", err.Error())
	}

	withCatalog := NewCourseNotFoundError("cosc-111", "fall-2024")
	if withCatalog.Error() != "course with ID 'cosc-111' not found in catalog 'fall-2024'" {
		t.Errorf("Unexpected error message '%s'", withCatalog.Error())
	}

	if !errors.Is(err, ErrCourseNotFound) || !errors.Is(withCatalog, ErrCourseNotFound) {
		t.Error("Expected both errors to match ErrCourseNotFound sentinel")
	}
}

func TestJobNotFoundError(t *testing.T) {
	err := NewJobNotFoundError("job-456")

	if err.Error() != "job with ID 'job-456' not found" {
		t.Errorf("Unexpected error message '%s'", err.Error())
	}
	if !errors.Is(err, ErrJobNotFound) {
		t.Error("Expected error to match ErrJobNotFound sentinel")
	}
}

func TestValidationError(t *testing.T) {
	withField := NewValidationError("score_cutoff", "must be between 0 and 1")
	if withField.Error() != "validation error for field 'score_cutoff': must be between 0 and 1" {
		t.Errorf("Unexpected error message '%s'", withField.Error())
	}

	withoutField := NewValidationError("", "query is required")
	if withoutField.Error() != "validation error: query is required" {
		t.Errorf("Unexpected error message '%s'", withoutField.Error())
	}

	if !errors.Is(withField, ErrInvalidInput) {
		t.Error("Expected error to match ErrInvalidInput sentinel")
	}
}

func TestWrappedErrorsStillMatch(t *testing.T) {
	wrapped := fmt.Errorf("loading catalog: %w", NewCatalogNotFoundError("spring"))
	if !errors.Is(wrapped, ErrCatalogNotFound) {
		t.Error("Expected wrapped error to match ErrCatalogNotFound sentinel")
	}

	var notFound *CatalogNotFoundError
	if !errors.As(wrapped, &notFound) {
		t.Fatal("Expected errors.As to find CatalogNotFoundError")
	}
	if notFound.CatalogName != "spring" {
		t.Errorf("Expected catalog name 'spring', got '%s'", notFound.CatalogName)
	}
}
