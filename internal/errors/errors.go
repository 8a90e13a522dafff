package errors

import (
	"errors"
	"fmt"
	"net/http"
)

// Sentinel errors for the failure kinds a composition request can hit
var (
	ErrInvalidKey     = errors.New("invalid key")
	ErrInvalidRange   = errors.New("invalid pitch range")
	ErrEmptyMelody    = errors.New("melody has no events")
	ErrInvalidForm    = errors.New("invalid form")
	ErrInvalidRequest = errors.New("invalid request")
	ErrImportParse    = errors.New("could not parse input file")
	ErrExport         = errors.New("export failed")
	ErrGeneration     = errors.New("continuation generation failed")
	ErrNotFound       = errors.New("not found")
)

// GenerationError is returned by continuation backends
type GenerationError struct {
	Backend string // "openai", "gemini", "http"
	Cause   error
}

func (e *GenerationError) Error() string {
	if e.Cause != nil {
		return fmt.Sprintf("%s continuation failed: %v", e.Backend, e.Cause)
	}
	return fmt.Sprintf("%s continuation failed", e.Backend)
}

// Is makes errors.Is(err, ErrGeneration) hold for every GenerationError
func (e *GenerationError) Is(target error) bool {
	return target == ErrGeneration
}

func (e *GenerationError) Unwrap() error {
	return e.Cause
}

// NewGenerationError creates a GenerationError
func NewGenerationError(backend string, cause error) *GenerationError {
	return &GenerationError{Backend: backend, Cause: cause}
}

// HTTPStatus maps an error to the status code returned to API callers
func HTTPStatus(err error) int {
	switch {
	case err == nil:
		return http.StatusOK
	case errors.Is(err, ErrInvalidKey),
		errors.Is(err, ErrInvalidRange),
		errors.Is(err, ErrEmptyMelody),
		errors.Is(err, ErrInvalidForm),
		errors.Is(err, ErrInvalidRequest),
		errors.Is(err, ErrImportParse):
		return http.StatusBadRequest
	case errors.Is(err, ErrNotFound):
		return http.StatusNotFound
	default:
		return http.StatusInternalServerError
	}
}
