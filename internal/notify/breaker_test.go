package notify

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestBreaker_OpensAfterThreshold(t *testing.T) {
	now := time.Date(2026, 10, 15, 9, 0, 0, 0, time.UTC)
	b := NewBreaker(2, time.Minute)
	b.now = func() time.Time { return now }

	assert.True(t, b.TryAcquire())
	b.OnFailure()
	assert.Equal(t, "closed", b.State())

	assert.True(t, b.TryAcquire())
	b.OnFailure()
	assert.Equal(t, "open", b.State())
	assert.False(t, b.TryAcquire())

	// after openFor a single probe gets through
	now = now.Add(time.Minute + time.Second)
	assert.True(t, b.TryAcquire())
	assert.Equal(t, "half-open", b.State())
	assert.False(t, b.TryAcquire(), "only one probe at a time")

	b.OnSuccess()
	assert.Equal(t, "closed", b.State())
	assert.True(t, b.TryAcquire())
}

func TestBreaker_FailedProbeReopens(t *testing.T) {
	now := time.Date(2026, 10, 15, 9, 0, 0, 0, time.UTC)
	b := NewBreaker(1, time.Minute)
	b.now = func() time.Time { return now }

	b.OnFailure()
	now = now.Add(2 * time.Minute)
	assert.True(t, b.TryAcquire())

	b.OnFailure()
	assert.Equal(t, "open", b.State())
	assert.False(t, b.TryAcquire())
}
