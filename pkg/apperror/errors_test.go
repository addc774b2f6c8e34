package apperror_test

import (
	"errors"
	"fmt"
	"net/http"
	"testing"

	"mymemorycard.com/backend/pkg/apperror"
	"github.com/stretchr/testify/assert"
	"gorm.io/gorm"
)

func TestMapErrorToStatus(t *testing.T) {
	cases := []struct {
		name string
		err  error
		want int
	}{
		{"app error code wins", apperror.Conflict("Cet email est déjà utilisé."), http.StatusConflict},
		{"wrapped not found", fmt.Errorf("load user: %w", apperror.ErrNotFound), http.StatusNotFound},
		{"gorm record not found", gorm.ErrRecordNotFound, http.StatusNotFound},
		{"gorm duplicate", fmt.Errorf("insert: %w", gorm.ErrDuplicatedKey), http.StatusConflict},
		{"invalid input", apperror.ErrInvalidInput, http.StatusBadRequest},
		{"rate limit", apperror.ErrRateLimitExceeded, http.StatusTooManyRequests},
		{"upstream", apperror.Unavailable("Le service RAWG est temporairement indisponible", nil), http.StatusServiceUnavailable},
		{"unknown", errors.New("boom"), http.StatusInternalServerError},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			assert.Equal(t, tc.want, apperror.MapErrorToStatus(tc.err))
		})
	}
}

func TestAppErrorMessageAndUnwrap(t *testing.T) {
	err := apperror.NotFound("Like non trouvé")

	assert.Equal(t, "Like non trouvé", err.Error())
	assert.ErrorIs(t, err, apperror.ErrNotFound)

	bare := apperror.New(http.StatusTeapot, "", nil)
	assert.Equal(t, http.StatusText(http.StatusTeapot), bare.Error())
}

func TestIsDuplicate(t *testing.T) {
	assert.True(t, apperror.IsDuplicate(fmt.Errorf("wrap: %w", gorm.ErrDuplicatedKey)))
	assert.False(t, apperror.IsDuplicate(gorm.ErrRecordNotFound))
}
