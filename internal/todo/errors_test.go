package todo

import (
	"errors"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestError_Message(t *testing.T) {
	assert.Equal(t, "NOT_FOUND: entry not found (id=42)", NewNotFoundError(42).Error())
	assert.Equal(t, "INVALID_INPUT: description must not be empty",
		NewInvalidInputError("description must not be empty").Error())
}

func TestError_IsMatchesByCode(t *testing.T) {
	wrapped := fmt.Errorf("update entry: %w", NewNotFoundError(3))

	assert.True(t, errors.Is(wrapped, ErrNotFound))
	assert.False(t, errors.Is(wrapped, ErrInvalidInput))
	assert.True(t, IsNotFound(wrapped))
	assert.False(t, IsInvalidInput(wrapped))
}

func TestCodeOf(t *testing.T) {
	assert.Equal(t, CodeInvalidInput, CodeOf(fmt.Errorf("x: %w", NewInvalidInputError("bad"))))
	assert.Equal(t, CodeNotFound, CodeOf(NewNotFoundError(1)))
	assert.Equal(t, ErrorCode(""), CodeOf(errors.New("disk full")))
	assert.Equal(t, ErrorCode(""), CodeOf(nil))
}
