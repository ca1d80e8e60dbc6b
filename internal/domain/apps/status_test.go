package apps

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var allStatuses = []Status{
	StatusWaitingForPurchase,
	StatusPurchased,
	StatusTestersAdded,
	StatusTestersAddedGooglePlay,
	StatusTestStarted,
	StatusTestReviewCompleted,
}

func TestValidateTransition_Table(t *testing.T) {
	valid := map[[2]Status]bool{
		{StatusWaitingForPurchase, StatusPurchased}:             true,
		{StatusPurchased, StatusTestersAdded}:                   true,
		{StatusTestersAdded, StatusTestersAddedGooglePlay}:      true,
		{StatusTestersAdded, StatusTestStarted}:                 true,
		{StatusTestersAddedGooglePlay, StatusTestersAdded}:      true,
		{StatusTestersAddedGooglePlay, StatusTestStarted}:       true,
		{StatusTestStarted, StatusTestReviewCompleted}:          true,
	}

	for _, from := range allStatuses {
		for _, to := range allStatuses {
			err := ValidateTransition(from, to)
			if valid[[2]Status{from, to}] {
				assert.NoError(t, err, "%s -> %s should be allowed", from, to)
			} else {
				assert.ErrorIs(t, err, ErrInvalidTransition, "%s -> %s should be rejected", from, to)
			}
		}
	}
}

func TestValidateTransition_UnknownFrom(t *testing.T) {
	err := ValidateTransition(Status("garbage"), StatusPurchased)
	assert.ErrorIs(t, err, ErrUnknownStatus)
}

func TestParseStatus(t *testing.T) {
	for _, s := range allStatuses {
		parsed, err := ParseStatus(string(s))
		require.NoError(t, err)
		assert.Equal(t, s, parsed)
	}

	for _, bad := range []string{"", "completed", "Waiting For Purchase", "WAITING_FOR_PURCHASE"} {
		_, err := ParseStatus(bad)
		assert.ErrorIs(t, err, ErrUnknownStatus, "%q should be rejected", bad)
	}
}

func TestIsValidPackageName(t *testing.T) {
	assert.True(t, IsValidPackageName("com.example.app"))
	assert.True(t, IsValidPackageName("io.github.some_app.v2x"))
	assert.False(t, IsValidPackageName("singleword"))
	assert.False(t, IsValidPackageName("com..double"))
	assert.False(t, IsValidPackageName("com.1numeric"))
	assert.False(t, IsValidPackageName(""))
}
