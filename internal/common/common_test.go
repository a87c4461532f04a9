package common

import (
	"fmt"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestFormatNumber(t *testing.T) {
	cases := map[int64]string{
		0:        "0",
		999:      "999",
		1000:     "1 000",
		2350:     "2 350",
		-1234567: "-1 234 567",
		100000:   "100 000",
	}
	for in, want := range cases {
		assert.Equal(t, want, FormatNumber(in), "n=%d", in)
	}
}

func TestFormatDabs(t *testing.T) {
	assert.Equal(t, "1 dab", FormatDabs(1))
	assert.Equal(t, "-1 dab", FormatDabs(-1))
	assert.Equal(t, "0 dabs", FormatDabs(0))
	assert.Equal(t, "+1 500 dabs", FormatSigned(1500))
	assert.Equal(t, "-50 dabs", FormatSigned(-50))
}

func TestDayIndexUsesLocalMidnight(t *testing.T) {
	msk := time.FixedZone("MSK", 3*60*60)

	late := time.Date(2024, 1, 1, 23, 59, 0, 0, msk)
	early := time.Date(2024, 1, 2, 0, 30, 0, 0, msk)

	assert.Equal(t, int64(19723), DayIndex(late, msk))
	assert.Equal(t, int64(19724), DayIndex(early, msk))
	// 00:30 MSK: это ещё 1 января по UTC
	assert.Equal(t, int64(19723), DayIndex(early, time.UTC))

	start := DayStart(19724, msk)
	assert.Equal(t, time.Date(2024, 1, 2, 0, 0, 0, 0, msk), start)
	assert.Equal(t, int64(19724), DayIndex(start, msk))
}

func TestRejection(t *testing.T) {
	wrapped := fmt.Errorf("give: %w", ErrGiveOverCap)

	require.True(t, IsRejection(wrapped))
	assert.ErrorIs(t, wrapped, ErrGiveOverCap)
	assert.Equal(t, "Cannot give more than half your dabs in 1 day.", RejectionReason(wrapped))

	assert.False(t, IsRejection(ErrWrongPassword))
	assert.Empty(t, RejectionReason(ErrWrongPassword))
}
