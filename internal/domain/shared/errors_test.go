package shared

import (
	"errors"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestDomainError_Is(t *testing.T) {
	wrapped := fmt.Errorf("find listing: %w", NewDomainError("NOT_FOUND", "listing abc not found"))

	assert.True(t, errors.Is(wrapped, ErrNotFound))
	assert.False(t, errors.Is(wrapped, ErrInvalidInput))
	assert.Equal(t, "listing abc not found", errors.Unwrap(wrapped).Error())
}

func TestDomainError_As(t *testing.T) {
	var de *DomainError
	err := fmt.Errorf("wrap: %w", ErrUnauthorized)
	assert.True(t, errors.As(err, &de))
	assert.Equal(t, "UNAUTHORIZED", de.Code)
}
