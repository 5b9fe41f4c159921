package domain

import (
	"errors"
	"fmt"
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestAppError_IsByCode(t *testing.T) {
	err := fmt.Errorf("register: %w", Invalid("username is required"))

	assert.True(t, errors.Is(err, ErrInvalidInput))
	assert.False(t, errors.Is(err, ErrNotFound))
	assert.Equal(t, "register: username is required", err.Error())
}

func TestAppError_Origin(t *testing.T) {
	origin := errors.New("connection refused")
	err := NewAppError(CodeInternal, "load users", origin)

	assert.ErrorIs(t, err, origin)
	assert.Equal(t, "load users: connection refused", err.Error())
}

func TestHTTPStatus(t *testing.T) {
	tests := []struct {
		err  error
		want int
	}{
		{ErrNotFound, http.StatusNotFound},
		{ErrInvalidInput, http.StatusBadRequest},
		{ErrInvalidCredentials, http.StatusUnauthorized},
		{ErrUnauthorized, http.StatusUnauthorized},
		{ErrForbidden, http.StatusForbidden},
		{ErrDuplicateUsername, http.StatusConflict},
		{errors.New("boom"), http.StatusInternalServerError},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, HTTPStatus(tt.err), tt.err.Error())
	}
}

func TestMediaKindFromMIME(t *testing.T) {
	assert.Equal(t, MediaNone, MediaKindFromMIME(""))
	assert.Equal(t, MediaImage, MediaKindFromMIME("image/png"))
	assert.Equal(t, MediaVideo, MediaKindFromMIME("video/mp4"))
	assert.Equal(t, MediaDocument, MediaKindFromMIME("application/pdf"))
}

func TestUser_Name(t *testing.T) {
	assert.Equal(t, "alice", User{Username: "alice"}.Name())
	assert.Equal(t, "Alice A.", User{Username: "alice", DisplayName: "Alice A."}.Name())
	assert.Empty(t, User{Username: "alice", PasswordHash: "x"}.Public().PasswordHash)
}
