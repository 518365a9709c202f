package apperr

import (
	"errors"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestKinds(t *testing.T) {
	err := New(ErrConflict, "email already registered")
	assert.True(t, errors.Is(err, ErrConflict))
	assert.False(t, errors.Is(err, ErrNotFound))
	assert.Equal(t, "email already registered", err.Error())

	wrapped := fmt.Errorf("register: %w", err)
	assert.True(t, errors.Is(wrapped, ErrConflict))

	v := Validation("rating must be between 1 and 5")
	assert.True(t, errors.Is(v, ErrValidation))
	assert.Equal(t, "rating must be between 1 and 5", v.Error())
}
