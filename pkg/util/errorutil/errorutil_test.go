package errorutil

import (
	"errors"
	"fmt"
	"net/http"
	"testing"

	"github.com/gofiber/fiber/v2"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestToDomainError(t *testing.T) {
	tests := []struct {
		name       string
		err        error
		wantCode   string
		wantStatus int
	}{
		{name: "domain error passes through", err: NewForbidden("nope"), wantCode: "FORBIDDEN", wantStatus: http.StatusForbidden},
		{name: "wrapped domain error", err: fmt.Errorf("ctx: %w", NewInvalidState("already", nil)), wantCode: "INVALID_STATE", wantStatus: http.StatusBadRequest},
		{name: "pgx no rows", err: pgx.ErrNoRows, wantCode: "NOT_FOUND", wantStatus: http.StatusNotFound},
		{name: "unique violation", err: fmt.Errorf("insert user: %w", &pgconn.PgError{Code: "23505", ConstraintName: "users_email_lower_idx"}), wantCode: "CONFLICT", wantStatus: http.StatusConflict},
		{name: "other pg error", err: &pgconn.PgError{Code: "23503"}, wantCode: "INTERNAL_ERROR", wantStatus: http.StatusInternalServerError},
		{name: "fiber error", err: fiber.ErrMethodNotAllowed, wantCode: "METHOD_NOT_ALLOWED", wantStatus: http.StatusMethodNotAllowed},
		{name: "unknown error", err: errors.New("boom"), wantCode: "INTERNAL_ERROR", wantStatus: http.StatusInternalServerError},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			de := ToDomainError(tt.err)
			require.NotNil(t, de)
			assert.Equal(t, tt.wantCode, de.Code)
			assert.Equal(t, tt.wantStatus, de.HTTPStatus)
		})
	}

	assert.Nil(t, ToDomainError(nil))
}

func TestInternalErrorHidesCause(t *testing.T) {
	de := ToDomainError(errors.New("password=hunter2"))
	assert.Equal(t, "internal server error", de.Message)
	assert.ErrorContains(t, de, "hunter2")
}

func TestHasCode(t *testing.T) {
	assert.True(t, HasCode(NewNotFoundMessage("Test with ID x not found", nil), "NOT_FOUND"))
	assert.False(t, HasCode(errors.New("plain"), "NOT_FOUND"))
}

func TestUniqueViolationCarriesConstraint(t *testing.T) {
	err := &pgconn.PgError{Code: "23505", ConstraintName: "users_email_lower_idx"}
	assert.True(t, IsUniqueViolation(err))
	assert.False(t, IsUniqueViolation(errors.New("duplicate")))

	de := ToDomainError(err)
	assert.Equal(t, "users_email_lower_idx", de.Details["constraint"])
	assert.ErrorIs(t, de, err)
}
