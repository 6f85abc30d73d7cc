package util

import (
	"database/sql"
	"errors"
	"fmt"
	"net/http"
	"testing"

	"github.com/jackc/pgx/v5"
	"github.com/stretchr/testify/assert"
)

func TestToDomainError(t *testing.T) {
	assert.Nil(t, ToDomainError(nil))

	conflict := NewConflict("taken", nil)
	assert.Same(t, conflict, ToDomainError(fmt.Errorf("wrapped: %w", conflict)))

	for _, err := range []error{pgx.ErrNoRows, sql.ErrNoRows} {
		de := ToDomainError(err)
		assert.Equal(t, http.StatusNotFound, de.HTTPStatus)
	}

	cause := errors.New("disk full")
	de := ToDomainError(cause)
	assert.Equal(t, "INTERNAL_ERROR", de.Code)
	assert.ErrorIs(t, de, cause)
	assert.Equal(t, "internal server error", de.Message)
}

func TestNotAllowedIsUniform(t *testing.T) {
	a, b := ToDomainError(NewNotAllowed()), ToDomainError(NewNotAllowed())
	assert.Equal(t, a, b)
	assert.Equal(t, http.StatusForbidden, a.HTTPStatus)
	assert.Equal(t, "not allowed", a.Message)
}

func TestCodeForStatus(t *testing.T) {
	assert.Equal(t, "NOT_FOUND", CodeForStatus(http.StatusNotFound))
	assert.Equal(t, "TIMEOUT", CodeForStatus(http.StatusGatewayTimeout))
	assert.Equal(t, "INTERNAL_ERROR", CodeForStatus(http.StatusBadGateway))
	assert.Equal(t, "REQUEST_FAILED", CodeForStatus(http.StatusTeapot))
}
