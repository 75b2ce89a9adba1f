package errors

import (
	stderrors "errors"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestValidationError(t *testing.T) {
	err := NewValidationError("validation failed", ValidationDetail{
		Field:         "quantity",
		Message:       "quantity must be at least 1",
		RejectedValue: 0,
	})

	assert.Equal(t, "validation failed", err.Error())
	assert.Len(t, err.Details, 1)
	assert.Equal(t, "quantity", err.Details[0].Field)
	assert.Equal(t, 0, err.Details[0].RejectedValue)

	ve, ok := IsValidationError(err)
	assert.True(t, ok)
	assert.Equal(t, err, ve)

	_, ok = IsValidationError(stderrors.New("other"))
	assert.False(t, ok)
}

func TestNotFoundError(t *testing.T) {
	err := NewNotFoundError("order", "id", "abc-123")

	assert.Equal(t, "order with id abc-123 not found", err.Error())
	assert.Equal(t, "order", err.Resource)
	assert.Equal(t, "id", err.Field)
	assert.Equal(t, "abc-123", err.Value)

	nfe, ok := IsNotFoundError(err)
	assert.True(t, ok)
	assert.Equal(t, err, nfe)

	_, ok = IsNotFoundError(NewConflictError("conflict"))
	assert.False(t, ok)
}

func TestConflictError(t *testing.T) {
	err := NewConflictError("cannot transition order from pending to delivered")

	assert.Equal(t, "cannot transition order from pending to delivered", err.Error())

	ce, ok := IsConflictError(err)
	assert.True(t, ok)
	assert.Equal(t, err, ce)
}

func TestUnauthorizedError(t *testing.T) {
	err := NewUnauthorizedError("invalid credentials")

	assert.Equal(t, "invalid credentials", err.Error())

	ue, ok := IsUnauthorizedError(err)
	assert.True(t, ok)
	assert.Equal(t, err, ue)

	_, ok = IsUnauthorizedError(NewForbiddenError("forbidden"))
	assert.False(t, ok)
}

func TestDeadlockError(t *testing.T) {
	err := NewDeadlockError("max retries exceeded")

	de, ok := IsDeadlockError(err)
	assert.True(t, ok)
	assert.Equal(t, "max retries exceeded", de.Error())
}

func TestInternalError(t *testing.T) {
	cause := stderrors.New("connection refused")
	err := NewInternalError("querying orders", cause)

	assert.Equal(t, "querying orders: connection refused", err.Error())
	assert.Equal(t, cause, stderrors.Unwrap(err))

	noCause := NewInternalError("boom", nil)
	assert.Equal(t, "boom", noCause.Error())
}
