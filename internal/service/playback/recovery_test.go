package playback

import (
	"testing"
	"time"

	"github.com/lessonplay/server/internal/domain"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func playingAt(positionMillis int64) domain.PlaybackStatus {
	return domain.PlaybackStatus{
		PositionMillis: positionMillis,
		DurationMillis: 600000,
		IsPlaying:      true,
		IsLoaded:       true,
	}
}

func TestResetDetected(t *testing.T) {
	m := newResetMonitor(3)

	m.Observe(playingAt(5000), 10*time.Second, false)
	m.Observe(playingAt(30000), 35*time.Second, false)

	action := m.Observe(playingAt(0), 36*time.Second, false)
	require.True(t, action.Recover)
	assert.Equal(t, int64(30000), action.PositionMillis)
	assert.True(t, action.ResumePlaying)
	assert.Equal(t, 1, m.Attempts())
}

func TestResetRestoresPausedState(t *testing.T) {
	m := newResetMonitor(3)

	m.Observe(playingAt(30000), 35*time.Second, false)
	m.Observe(domain.PlaybackStatus{
		PositionMillis: 30000,
		DurationMillis: 600000,
		IsLoaded:       true,
	}, 36*time.Second, false)

	action := m.Observe(playingAt(0), 37*time.Second, false)
	require.True(t, action.Recover)
	assert.False(t, action.ResumePlaying, "paused before reset must resume paused")
}

func TestResetIgnoredEarlyInSession(t *testing.T) {
	m := newResetMonitor(3)

	m.Observe(playingAt(30000), 2*time.Second, false)

	action := m.Observe(playingAt(0), 3*time.Second, false)
	assert.False(t, action.Recover, "resets within the warmup window are real seeks or reloads")
}

func TestResetIgnoredWithoutKnownGoodPosition(t *testing.T) {
	m := newResetMonitor(3)

	m.Observe(playingAt(900), 10*time.Second, false)

	action := m.Observe(playingAt(0), 11*time.Second, false)
	assert.False(t, action.Recover)
}

func TestResetIgnoredOnNaturalFinish(t *testing.T) {
	m := newResetMonitor(3)

	m.Observe(playingAt(590000), 100*time.Second, false)

	action := m.Observe(domain.PlaybackStatus{
		PositionMillis: 0,
		DurationMillis: 600000,
		IsLoaded:       true,
		DidJustFinish:  true,
	}, 101*time.Second, false)
	assert.False(t, action.Recover)
}

func TestResetSuppressedForCompletedLesson(t *testing.T) {
	m := newResetMonitor(3)

	m.Observe(playingAt(30000), 35*time.Second, true)

	action := m.Observe(playingAt(0), 36*time.Second, true)
	assert.False(t, action.Recover, "completed lessons restart from zero on purpose")
}

func TestResetAttemptBudget(t *testing.T) {
	m := newResetMonitor(3)

	for i := 0; i < 3; i++ {
		m.Observe(playingAt(30000), time.Minute, false)

		action := m.Observe(playingAt(0), time.Minute, false)
		require.True(t, action.Recover, "attempt %d must recover", i+1)
		m.Done()
	}

	m.Observe(playingAt(30000), time.Minute, false)
	action := m.Observe(playingAt(0), time.Minute, false)
	assert.False(t, action.Recover, "budget of 3 attempts per session is exhausted")
}

func TestResetIgnoredWhileRecoveryInFlight(t *testing.T) {
	m := newResetMonitor(3)

	m.Observe(playingAt(30000), time.Minute, false)
	require.True(t, m.Observe(playingAt(0), time.Minute, false).Recover)

	action := m.Observe(playingAt(0), time.Minute, false)
	assert.False(t, action.Recover)
	assert.Equal(t, 1, m.Attempts())
}

func TestUserSeekSupersedesRecovery(t *testing.T) {
	m := newResetMonitor(3)

	m.Observe(playingAt(30000), time.Minute, false)
	require.True(t, m.Observe(playingAt(0), time.Minute, false).Recover)

	m.UserSeek(120000)
	assert.True(t, m.Superseded())

	m.Done()
	assert.False(t, m.Superseded())

	// user's chosen position is the new anchor
	action := m.Observe(playingAt(0), 2*time.Minute, false)
	require.True(t, action.Recover)
	assert.Equal(t, int64(120000), action.PositionMillis)
}

func TestUserSeekWithoutRecoveryInFlight(t *testing.T) {
	m := newResetMonitor(3)

	m.UserSeek(120000)
	assert.False(t, m.Superseded())
}
