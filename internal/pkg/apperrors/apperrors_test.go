package apperrors

import (
	"errors"
	"fmt"
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"
	"gorm.io/gorm"
)

func TestStatusCode(t *testing.T) {
	cases := []struct {
		err  error
		want int
	}{
		{Validation("bad"), http.StatusBadRequest},
		{Unauthenticated("no token"), http.StatusUnauthorized},
		{Forbidden("admins only"), http.StatusForbidden},
		{NotFound("missing"), http.StatusNotFound},
		{Conflict("dup"), http.StatusConflict},
		{Internal("boom", errors.New("db down")), http.StatusInternalServerError},
		{errors.New("foreign"), http.StatusInternalServerError},
		{fmt.Errorf("wrapped: %w", NotFound("Property not found")), http.StatusNotFound},
	}
	for _, tc := range cases {
		assert.Equal(t, tc.want, StatusCode(tc.err), tc.err.Error())
	}
}

func TestFromDB(t *testing.T) {
	assert.Nil(t, FromDB(nil, "x", "y"))
	assert.Equal(t, KindNotFound, KindOf(FromDB(gorm.ErrRecordNotFound, "Agent not found", "")))
	assert.Equal(t, "Agent not found", PublicMessage(FromDB(gorm.ErrRecordNotFound, "Agent not found", "")))
	assert.Equal(t, KindConflict, KindOf(FromDB(gorm.ErrDuplicatedKey, "", "Agent already registered")))
	assert.Equal(t, KindUnexpected, KindOf(FromDB(errors.New("connection reset"), "", "")))
}

func TestPublicMessageHidesCause(t *testing.T) {
	err := Internal("Failed to fetch properties", errors.New("pq: password authentication failed"))
	assert.Equal(t, "Failed to fetch properties", PublicMessage(err))
	assert.Equal(t, "Internal server error", PublicMessage(errors.New("raw driver error")))
}
