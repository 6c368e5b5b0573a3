package playback

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/lessonplay/server/internal/domain"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakePlayer struct {
	mu    sync.Mutex
	calls []string
	loads []CommandLoad
	seeks []int64
}

func (p *fakePlayer) record(call string) {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.calls = append(p.calls, call)
}

func (p *fakePlayer) Load(_ context.Context, uri string, positionMillis int64, autoPlay bool) error {
	p.mu.Lock()
	p.loads = append(p.loads, CommandLoad{URL: uri, PositionMillis: positionMillis, AutoPlay: autoPlay})
	p.mu.Unlock()
	p.record("load")
	return nil
}

func (p *fakePlayer) Play(context.Context) error  { p.record("play"); return nil }
func (p *fakePlayer) Pause(context.Context) error { p.record("pause"); return nil }

func (p *fakePlayer) Seek(_ context.Context, positionMillis int64) error {
	p.mu.Lock()
	p.seeks = append(p.seeks, positionMillis)
	p.mu.Unlock()
	p.record("seek")
	return nil
}

func (p *fakePlayer) Unload(context.Context) error { p.record("unload"); return nil }

func (p *fakePlayer) callNames() []string {
	p.mu.Lock()
	defer p.mu.Unlock()
	return append([]string(nil), p.calls...)
}

type fakeSink struct {
	mu        sync.Mutex
	saved     []int64
	completed int
}

func (s *fakeSink) SaveProgress(_ context.Context, positionMillis int64) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.saved = append(s.saved, positionMillis)
	return nil
}

func (s *fakeSink) MarkCompleted(context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.completed++
	return nil
}

func testSessionConfig() SessionConfig {
	return SessionConfig{
		Retry:              RetryPolicy{MaxAttempts: 2, BaseDelay: 10 * time.Millisecond, MaxDelay: 20 * time.Millisecond},
		ResetMaxAttempts:   3,
		ResetRecoveryDelay: 10 * time.Millisecond,
		ProgressInterval:   time.Hour,
	}
}

func TestSessionLifecycle(t *testing.T) {
	ctx := context.Background()
	player := &fakePlayer{}
	sink := &fakeSink{}

	var phases []Phase
	var phaseMu sync.Mutex
	session := NewSession(player, sink, testSessionConfig(), SessionCallbacks{
		OnPhaseChange: func(phase Phase) {
			phaseMu.Lock()
			phases = append(phases, phase)
			phaseMu.Unlock()
		},
	}, nil)

	session.Start(ctx, testEndpoint(), 42500, false)
	require.Len(t, player.loads, 1)
	assert.Equal(t, int64(42500), player.loads[0].PositionMillis)
	assert.False(t, player.loads[0].AutoPlay)

	session.OnLoaded(ctx, 600000)
	assert.Equal(t, []string{"load", "seek", "play"}, player.callNames())
	assert.Equal(t, []int64{42500}, player.seeks)

	session.OnStatus(ctx, domain.PlaybackStatus{
		PositionMillis: 43000,
		DurationMillis: 600000,
		IsPlaying:      true,
		IsLoaded:       true,
	})
	assert.Equal(t, PhasePlaying, session.Snapshot().Phase)

	session.Teardown(ctx)
	assert.Equal(t, []int64{43000}, sink.saved)
	assert.Equal(t, PhaseIdle, session.Snapshot().Phase)

	phaseMu.Lock()
	assert.Equal(t, []Phase{PhaseLoading, PhaseReady, PhasePlaying, PhaseIdle}, phases)
	phaseMu.Unlock()
}

func TestSessionTeardownIdempotent(t *testing.T) {
	ctx := context.Background()
	player := &fakePlayer{}
	sink := &fakeSink{}
	session := NewSession(player, sink, testSessionConfig(), SessionCallbacks{}, nil)

	session.Start(ctx, testEndpoint(), 0, false)
	session.OnLoaded(ctx, 600000)
	session.OnStatus(ctx, playingAt(5000))

	session.Teardown(ctx)
	session.Teardown(ctx)

	assert.Equal(t, []int64{5000}, sink.saved, "second teardown must not save again")
}

func TestSessionIgnoresEventsAfterTeardown(t *testing.T) {
	ctx := context.Background()
	player := &fakePlayer{}
	session := NewSession(player, &fakeSink{}, testSessionConfig(), SessionCallbacks{}, nil)

	session.Start(ctx, testEndpoint(), 0, false)
	session.Teardown(ctx)

	before := len(player.callNames())
	session.Play(ctx)
	session.OnStatus(ctx, playingAt(1000))
	assert.Len(t, player.callNames(), before)
}

func TestSessionMarksCompleted(t *testing.T) {
	ctx := context.Background()
	sink := &fakeSink{}
	session := NewSession(&fakePlayer{}, sink, testSessionConfig(), SessionCallbacks{}, nil)

	session.Start(ctx, testEndpoint(), 0, false)
	session.OnLoaded(ctx, 600000)
	session.OnStatus(ctx, playingAt(546000))
	session.OnStatus(ctx, playingAt(550000))

	assert.Equal(t, 1, sink.completed)
}

func TestSessionRecoversFromReset(t *testing.T) {
	ctx := context.Background()
	player := &fakePlayer{}
	session := NewSession(player, &fakeSink{}, testSessionConfig(), SessionCallbacks{}, nil)

	session.Start(ctx, testEndpoint(), 0, false)
	session.OnLoaded(ctx, 600000)

	// loadedAt is now; fake a session old enough for reset detection
	session.mu.Lock()
	session.loadedAt = time.Now().Add(-time.Minute)
	session.mu.Unlock()

	session.OnStatus(ctx, playingAt(30000))
	session.OnStatus(ctx, playingAt(0))

	assert.Eventually(t, func() bool {
		player.mu.Lock()
		defer player.mu.Unlock()
		for _, pos := range player.seeks {
			if pos == 30000 {
				return true
			}
		}
		return false
	}, time.Second, 5*time.Millisecond, "position must be restored after the recovery delay")

	assert.Eventually(t, func() bool {
		calls := player.callNames()
		return len(calls) > 0 && calls[len(calls)-1] == "play"
	}, time.Second, 5*time.Millisecond, "playback must resume")
}

func TestSessionUserSeekSupersedesRecovery(t *testing.T) {
	ctx := context.Background()
	player := &fakePlayer{}
	session := NewSession(player, &fakeSink{}, testSessionConfig(), SessionCallbacks{}, nil)

	session.Start(ctx, testEndpoint(), 0, false)
	session.OnLoaded(ctx, 600000)

	session.mu.Lock()
	session.loadedAt = time.Now().Add(-time.Minute)
	session.mu.Unlock()

	session.OnStatus(ctx, playingAt(30000))
	session.OnStatus(ctx, playingAt(0))
	session.SeekAbsolute(ctx, 120000)

	time.Sleep(50 * time.Millisecond)

	player.mu.Lock()
	defer player.mu.Unlock()
	for _, pos := range player.seeks {
		assert.NotEqual(t, int64(30000), pos, "superseded recovery must not restore the old position")
	}
}

func TestSessionReloadsAfterError(t *testing.T) {
	ctx := context.Background()
	player := &fakePlayer{}
	session := NewSession(player, &fakeSink{}, testSessionConfig(), SessionCallbacks{}, nil)

	session.Start(ctx, testEndpoint(), 0, false)
	session.OnLoaded(ctx, 600000)
	session.OnStatus(ctx, playingAt(30000))

	session.OnPlaybackError(ctx, domain.ErrKindNetwork, "network request failed")
	assert.Equal(t, PhaseError, session.Snapshot().Phase)

	assert.Eventually(t, func() bool {
		player.mu.Lock()
		defer player.mu.Unlock()
		return len(player.loads) == 2
	}, time.Second, 5*time.Millisecond, "reload must fire after the backoff delay")

	player.mu.Lock()
	reload := player.loads[1]
	player.mu.Unlock()
	assert.Equal(t, int64(30000), reload.PositionMillis)
	assert.True(t, reload.AutoPlay)
}

func TestSessionSurfacesErrorWhenBudgetExhausted(t *testing.T) {
	ctx := context.Background()
	player := &fakePlayer{}

	var surfaced *domain.PlaybackError
	var mu sync.Mutex
	session := NewSession(player, &fakeSink{}, testSessionConfig(), SessionCallbacks{
		OnError: func(err *domain.PlaybackError) {
			mu.Lock()
			surfaced = err
			mu.Unlock()
		},
	}, nil)

	session.Start(ctx, testEndpoint(), 0, false)
	session.OnLoaded(ctx, 600000)

	session.OnPlaybackError(ctx, domain.ErrKindUnknown, "http 403 forbidden")
	session.OnPlaybackError(ctx, domain.ErrKindUnknown, "http 403 forbidden")
	session.OnPlaybackError(ctx, domain.ErrKindUnknown, "http 403 forbidden")

	mu.Lock()
	defer mu.Unlock()
	require.NotNil(t, surfaced)
	assert.Equal(t, domain.ErrKindPermission, surfaced.Kind)
}
