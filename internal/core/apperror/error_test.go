package apperror

import (
	"errors"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestErrorClassificationSurvivesWrapping(t *testing.T) {
	err := NewInsufficientStock("item:abc", 20, 10)
	wrapped := fmt.Errorf("record movement: %w", err)

	assert.True(t, IsInsufficientStock(wrapped))
	assert.False(t, IsNotFound(wrapped))

	appErr, ok := AsAppError(wrapped)
	require.True(t, ok)
	assert.Equal(t, CodeInsufficientStock, appErr.Code)
	assert.Equal(t, 20.0, appErr.Details["requested"])
	assert.Equal(t, 10.0, appErr.Details["available"])
}

func TestWithCauseUnwraps(t *testing.T) {
	cause := errors.New("connection reset")
	err := NewLockTimeout("tenant/wh/item:abc").WithCause(cause)

	assert.True(t, IsLockTimeout(err))
	assert.ErrorIs(t, err, cause)
}

func TestFactories(t *testing.T) {
	assert.Equal(t, CodeValidation, NewValidation("bad input").Code)
	assert.Equal(t, CodeNotFound, NewNotFound("sku", "x").Code)
	assert.Equal(t, CodeFIFOExhausted, NewFIFOExhausted("item:x", 5, 3).Code)
	assert.Equal(t, CodeInternal, NewInternal(errors.New("boom")).Code)
}

func TestWithDetail(t *testing.T) {
	err := NewValidation("quantity must be positive").
		WithDetail("field", "quantity").
		WithDetail("value", "-1")

	assert.Equal(t, "quantity", err.Details["field"])
	assert.Equal(t, "-1", err.Details["value"])
}
