package playback

import (
	"time"

	"github.com/lessonplay/server/internal/domain"
)

const (
	// goodPositionStepMillis is the minimum forward step that counts as real
	// progress when remembering the last known good position.
	goodPositionStepMillis = 1000
	// minUptimeForReset is how long playback must have been loaded before a
	// position drop to zero is treated as a spurious reset.
	minUptimeForReset = 5 * time.Second
)

// resetMonitor watches status ticks for spurious position resets: the player
// jumping back to zero mid-lesson without the video having finished.
type resetMonitor struct {
	lastKnownGood int64
	wasPlaying    bool
	attempts      int
	maxAttempts   int
	inFlight      bool
	superseded    bool
}

func newResetMonitor(maxAttempts int) *resetMonitor {
	if maxAttempts <= 0 {
		maxAttempts = 3
	}

	return &resetMonitor{maxAttempts: maxAttempts}
}

// recoveryAction tells the session what to restore after a detected reset.
type recoveryAction struct {
	Recover        bool
	PositionMillis int64
	ResumePlaying  bool
}

// Observe inspects one status tick. It either detects a reset worth
// recovering from or records the tick as the new last known good state.
func (m *resetMonitor) Observe(status domain.PlaybackStatus, sinceLoad time.Duration, alreadyCompleted bool) recoveryAction {
	if !status.IsLoaded {
		return recoveryAction{}
	}

	isReset := status.PositionMillis == 0 &&
		m.lastKnownGood > goodPositionStepMillis &&
		!status.DidJustFinish &&
		sinceLoad >= minUptimeForReset

	if isReset {
		if alreadyCompleted || m.inFlight || m.attempts >= m.maxAttempts {
			return recoveryAction{}
		}

		m.attempts++
		m.inFlight = true
		m.superseded = false

		return recoveryAction{
			Recover:        true,
			PositionMillis: m.lastKnownGood,
			ResumePlaying:  m.wasPlaying,
		}
	}

	if status.IsPlaying && status.PositionMillis > m.lastKnownGood+goodPositionStepMillis {
		m.lastKnownGood = status.PositionMillis
	}
	if status.PositionMillis > 0 {
		m.wasPlaying = status.IsPlaying
	}

	return recoveryAction{}
}

// UserSeek re-anchors the monitor at a position the user chose. A pending
// recovery is marked superseded so it does not fight the seek.
func (m *resetMonitor) UserSeek(positionMillis int64) {
	m.lastKnownGood = positionMillis
	if m.inFlight {
		m.superseded = true
	}
}

func (m *resetMonitor) Superseded() bool {
	return m.superseded
}

// Done marks the in-flight recovery finished.
func (m *resetMonitor) Done() {
	m.inFlight = false
	m.superseded = false
}

func (m *resetMonitor) Attempts() int {
	return m.attempts
}
