package playback

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestRetryPolicyDelay(t *testing.T) {
	p := RetryPolicy{MaxAttempts: 5, BaseDelay: 3 * time.Second, MaxDelay: 15 * time.Second}

	assert.Equal(t, 3*time.Second, p.Delay(1))
	assert.Equal(t, 6*time.Second, p.Delay(2))
	assert.Equal(t, 15*time.Second, p.Delay(5))
	assert.Equal(t, 15*time.Second, p.Delay(100), "delay must cap at MaxDelay")
	assert.Equal(t, 3*time.Second, p.Delay(0), "attempt below 1 treated as first")
}

func TestRetryPolicyExhausted(t *testing.T) {
	p := RetryPolicy{MaxAttempts: 3}

	assert.False(t, p.Exhausted(1))
	assert.False(t, p.Exhausted(3))
	assert.True(t, p.Exhausted(4))
}
