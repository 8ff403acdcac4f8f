package util

import (
	"errors"
	"fmt"
	"net/http"
	"testing"

	"github.com/gofiber/fiber/v2"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/stretchr/testify/assert"
)

func TestToDomainError_PassesThroughDomainErrors(t *testing.T) {
	err := fmt.Errorf("wrapped: %w", NewForbidden("not yours"))

	de := ToDomainError(err)

	assert.Equal(t, CodeForbidden, de.Code)
	assert.Equal(t, http.StatusForbidden, de.HTTPStatus)
	assert.Equal(t, "not yours", de.Message)
}

func TestToDomainError_NoRowsIsNotFound(t *testing.T) {
	de := ToDomainError(fmt.Errorf("get listing: %w", pgx.ErrNoRows))

	assert.Equal(t, CodeNotFound, de.Code)
	assert.Equal(t, http.StatusNotFound, de.HTTPStatus)
}

func TestToDomainError_HidesInternalDetail(t *testing.T) {
	cause := errors.New("dial tcp 10.0.0.3:5432: connection refused")
	de := ToDomainError(cause)

	assert.Equal(t, CodeInternal, de.Code)
	assert.Equal(t, http.StatusInternalServerError, de.HTTPStatus)
	assert.Equal(t, "internal server error", de.Message)
	assert.Empty(t, de.Details)
	assert.ErrorIs(t, de, cause)
}

func TestToDomainError_FiberErrors(t *testing.T) {
	de := ToDomainError(fiber.NewError(http.StatusBadRequest, "bad json"))
	assert.Equal(t, CodeValidationFailed, de.Code)
	assert.Equal(t, http.StatusBadRequest, de.HTTPStatus)

	de = ToDomainError(fiber.ErrMethodNotAllowed)
	assert.Equal(t, http.StatusMethodNotAllowed, de.HTTPStatus)
	assert.Equal(t, "METHOD_NOT_ALLOWED", de.Code)
}

func TestNewInvalidAvailability(t *testing.T) {
	de := ToDomainError(NewInvalidAvailability(errors.New("unknown weekday \"Funday\"")))

	assert.Equal(t, CodeInvalidAvailability, de.Code)
	assert.Equal(t, http.StatusBadRequest, de.HTTPStatus)
	assert.Contains(t, de.Details["availability"], "Funday")
}

func TestIsUniqueViolation(t *testing.T) {
	assert.True(t, IsUniqueViolation(fmt.Errorf("insert: %w", &pgconn.PgError{Code: "23505"})))
	assert.False(t, IsUniqueViolation(&pgconn.PgError{Code: "23503"}))
	assert.False(t, IsUniqueViolation(errors.New("boom")))
}

func TestIsNotFound(t *testing.T) {
	assert.True(t, IsNotFound(pgx.ErrNoRows))
	assert.True(t, IsNotFound(NewNotFound("listing", nil)))
	assert.False(t, IsNotFound(NewForbidden("nope")))
}
