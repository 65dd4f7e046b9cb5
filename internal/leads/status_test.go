package leads

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestCanTransition(t *testing.T) {
	tests := []struct {
		from, to Status
		ok       bool
	}{
		{StatusOpen, StatusResponded, true},
		{StatusResponded, StatusResponded, true},
		{StatusOpen, StatusClosed, true},
		{StatusOpen, StatusCancelled, true},
		{StatusResponded, StatusClosed, true},
		{StatusResponded, StatusCancelled, true},
		{StatusClosed, StatusResponded, false},
		{StatusCancelled, StatusClosed, false},
		{StatusClosed, StatusOpen, false},
		{StatusOpen, StatusOpen, false},
	}
	for _, tc := range tests {
		assert.Equal(t, tc.ok, CanTransition(tc.from, tc.to), "%s -> %s", tc.from, tc.to)
	}
	assert.False(t, Status("bogus").Valid())
}
