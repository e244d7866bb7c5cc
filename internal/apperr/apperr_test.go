package apperr

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
		{"validation", Validation("bad"), http.StatusBadRequest},
		{"referential", Referential("has tasks"), http.StatusBadRequest},
		{"not found", NotFound("gone"), http.StatusNotFound},
		{"conflict", Conflict("dup"), http.StatusConflict},
		{"unavailable", Unavailable("down", errors.New("dial")), http.StatusServiceUnavailable},
		{"internal", Internal("oops", errors.New("boom")), http.StatusInternalServerError},
		{"foreign", errors.New("raw"), http.StatusInternalServerError},
		{"wrapped", fmt.Errorf("ctx: %w", NotFound("gone")), http.StatusNotFound},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, HTTPStatus(tt.err))
		})
	}
}

func TestPublicMessage_HidesCause(t *testing.T) {
	err := Internal("Failed to fetch tasks", errors.New("connection reset by peer"))
	assert.Equal(t, "Failed to fetch tasks", PublicMessage(err))
	assert.Equal(t, "Internal server error", PublicMessage(errors.New("connection reset by peer")))
}

func TestUnwrap(t *testing.T) {
	cause := errors.New("dial tcp")
	err := Unavailable("Database connection not available", cause)
	assert.ErrorIs(t, err, cause)
	assert.True(t, Is(err, KindUnavailable))
	assert.False(t, Is(err, KindInternal))
}

func TestValidationField(t *testing.T) {
	err := ValidationField("title", "Title is required")
	assert.Equal(t, "title", err.Field)
	assert.Equal(t, KindValidation, KindOf(err))
	assert.Equal(t, "validation", err.Kind.String())
}
