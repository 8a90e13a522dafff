package errors

import (
	"errors"
	"fmt"
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestHTTPStatus(t *testing.T) {
	tests := []struct {
		name string
		err  error
		want int
	}{
		{"nil", nil, http.StatusOK},
		{"invalid key", fmt.Errorf("%w: %q", ErrInvalidKey, "H#"), http.StatusBadRequest},
		{"invalid range", fmt.Errorf("%w: 60 >= 50", ErrInvalidRange), http.StatusBadRequest},
		{"import parse", fmt.Errorf("%w: bad header", ErrImportParse), http.StatusBadRequest},
		{"not found", ErrNotFound, http.StatusNotFound},
		{"export", fmt.Errorf("%w: empty artifact", ErrExport), http.StatusInternalServerError},
		{"unknown", errors.New("boom"), http.StatusInternalServerError},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, HTTPStatus(tt.err))
		})
	}
}

func TestGenerationError(t *testing.T) {
	cause := errors.New("connection refused")
	err := NewGenerationError("http", cause)

	assert.True(t, errors.Is(err, ErrGeneration))
	assert.True(t, errors.Is(err, cause))
	assert.Contains(t, err.Error(), "http continuation failed")

	wrapped := fmt.Errorf("section B: %w", err)
	var genErr *GenerationError
	assert.True(t, errors.As(wrapped, &genErr))
	assert.Equal(t, "http", genErr.Backend)
}
