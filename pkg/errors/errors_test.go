package errors

import (
	"errors"
	"fmt"
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"
	"google.golang.org/grpc/codes"
)

func TestHTTPStatus(t *testing.T) {
	tests := []struct {
		name       string
		err        error
		expectCode int
		expectTag  string
	}{
		{"validation", NewValidationError("companyId", "company does not exist"), http.StatusBadRequest, "validation_error"},
		{"not found", NewNotFoundError("client", "42"), http.StatusNotFound, "not_found"},
		{"wrapped not found", fmt.Errorf("lookup: %w", NewNotFoundError("client", "42")), http.StatusNotFound, "not_found"},
		{"already exists", NewAlreadyExistsError("user", ""), http.StatusConflict, "already_exists"},
		{"conflict", NewConflictError("company", "still referenced"), http.StatusConflict, "conflict"},
		{"unauthorized", NewUnauthorizedError(""), http.StatusUnauthorized, "unauthorized"},
		{"forbidden", NewForbiddenError("client:create"), http.StatusForbidden, "forbidden"},
		{"internal", NewInternalError("boom", errors.New("db down")), http.StatusInternalServerError, "internal_error"},
		{"plain", errors.New("plain"), http.StatusInternalServerError, "internal_error"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			code, tag := HTTPStatus(tt.err)
			assert.Equal(t, tt.expectCode, code)
			assert.Equal(t, tt.expectTag, tag)
		})
	}
}

func TestErrorMessages(t *testing.T) {
	assert.Equal(t, "client not found: id=abc", NewNotFoundError("client", "abc").Error())
	assert.Equal(t, "client not found", NewNotFoundError("client", "").Error())
	assert.Equal(t, "validation failed: companyId - required", NewValidationError("companyId", "required").Error())
	assert.Equal(t, "validation failed: bad input", NewValidationError("", "bad input").Error())
	assert.Equal(t, "permission denied: missing capability client:create", NewForbiddenError("client:create").Error())
}

func TestGRPCStatus(t *testing.T) {
	assert.Equal(t, codes.NotFound, NewNotFoundError("client", "1").GRPCStatus().Code())
	assert.Equal(t, codes.InvalidArgument, NewValidationError("", "x").GRPCStatus().Code())
	assert.Equal(t, codes.PermissionDenied, NewForbiddenError("").GRPCStatus().Code())
	assert.Equal(t, codes.Unauthenticated, NewUnauthorizedError("").GRPCStatus().Code())
}

func TestInternalError_Unwrap(t *testing.T) {
	cause := errors.New("connection refused")
	err := NewInternalError("failed to check company", cause)

	assert.ErrorIs(t, err, cause)
	assert.Equal(t, "failed to check company: connection refused", err.Error())
}

func TestIsHelpers(t *testing.T) {
	assert.True(t, IsNotFound(fmt.Errorf("wrap: %w", NewNotFoundError("client", ""))))
	assert.False(t, IsNotFound(ErrNoRowsAffected))
	assert.True(t, IsValidation(NewValidationError("", "x")))
}
