package dErrors

import (
	"errors"
	"fmt"
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestHasCode(t *testing.T) {
	t.Run("direct error", func(t *testing.T) {
		err := New(CodeNotFound, "country not found")
		assert.True(t, HasCode(err, CodeNotFound))
		assert.False(t, HasCode(err, CodeInternal))
	})

	t.Run("wrapped error", func(t *testing.T) {
		cause := errors.New("sql: no rows in result set")
		err := Wrap(cause, CodeNotFound, "country not found")
		assert.True(t, HasCode(err, CodeNotFound))
		assert.True(t, errors.Is(err, cause), "cause must stay reachable")
	})

	t.Run("double wrapped via fmt", func(t *testing.T) {
		err := fmt.Errorf("service: %w", New(CodeInvalidInput, "bad date"))
		assert.True(t, HasCode(err, CodeInvalidInput))
	})

	t.Run("plain error has no code", func(t *testing.T) {
		assert.False(t, HasCode(errors.New("boom"), CodeInternal))
	})
}

func TestCodeOf(t *testing.T) {
	assert.Equal(t, CodeInvalidInput, CodeOf(New(CodeInvalidInput, "x")))
	assert.Equal(t, CodeInternal, CodeOf(errors.New("unclassified")), "unclassified errors default to internal")
}

func TestWrapNil(t *testing.T) {
	require.NoError(t, Wrap(nil, CodeInternal, "ignored"))
}

func TestHTTPStatus(t *testing.T) {
	tests := []struct {
		code Code
		want int
	}{
		{CodeInvalidInput, http.StatusBadRequest},
		{CodeBadRequest, http.StatusBadRequest},
		{CodeNotFound, http.StatusNotFound},
		{CodeConflict, http.StatusConflict},
		{CodeUnauthorized, http.StatusUnauthorized},
		{CodeInvariantViolation, http.StatusUnprocessableEntity},
		{CodeInternal, http.StatusInternalServerError},
		{Code("unknown"), http.StatusInternalServerError},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, HTTPStatus(tt.code), "code %s", tt.code)
	}
}
