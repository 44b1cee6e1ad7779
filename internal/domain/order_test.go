package domain

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestCanTransition(t *testing.T) {
	allowed := []struct{ from, to string }{
		{StatusPending, StatusProcessing},
		{StatusPending, StatusCancelled},
		{StatusProcessing, StatusShipped},
		{StatusProcessing, StatusCancelled},
		{StatusShipped, StatusDelivered},
	}
	for _, tc := range allowed {
		assert.True(t, CanTransition(tc.from, tc.to), "%s -> %s should be allowed", tc.from, tc.to)
	}

	denied := []struct{ from, to string }{
		{StatusPending, StatusDelivered}, // No skipping ahead
		{StatusPending, StatusShipped},
		{StatusShipped, StatusCancelled},
		{StatusDelivered, StatusPending}, // Terminal
		{StatusCancelled, StatusPending}, // No reviving a cancelled order
		{StatusCancelled, StatusProcessing},
		{StatusPending, StatusPending}, // Self-transitions are not a thing
	}
	for _, tc := range denied {
		assert.False(t, CanTransition(tc.from, tc.to), "%s -> %s should be denied", tc.from, tc.to)
	}
}

func TestValidStatus(t *testing.T) {
	for _, s := range []string{StatusPending, StatusProcessing, StatusShipped, StatusDelivered, StatusCancelled} {
		assert.True(t, ValidStatus(s))
	}
	assert.False(t, ValidStatus("Teleported"))
	assert.False(t, ValidStatus(""))
	assert.False(t, ValidStatus("pending")) // Statuses are case-sensitive
}
