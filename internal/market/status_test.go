package market

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestCanTransition(t *testing.T) {
	assert.True(t, CanTransition(StatusPending, StatusProcessing))
	assert.True(t, CanTransition(StatusPending, StatusCancelled))
	assert.True(t, CanTransition(StatusProcessing, StatusCompleted))
	assert.True(t, CanTransition(StatusProcessing, StatusCancelled))

	assert.False(t, CanTransition(StatusPending, StatusCompleted))
	assert.False(t, CanTransition(StatusCompleted, StatusPending))
	assert.False(t, CanTransition(StatusCancelled, StatusProcessing))
	assert.False(t, CanTransition(StatusCompleted, StatusCancelled))
}
