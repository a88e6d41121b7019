package clock

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestNowIsUTCWallTime(t *testing.T) {
	now := New().Now()

	assert.Equal(t, time.UTC, now.Location())
	// Round(0) only strips a monotonic reading; equality shows there is none
	assert.True(t, now == now.Round(0))
	assert.WithinDuration(t, time.Now(), now, time.Second)
}
