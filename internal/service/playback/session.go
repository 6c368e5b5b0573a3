package playback

import (
	"context"
	"log/slog"
	"sync"
	"sync/atomic"
	"time"

	"github.com/lessonplay/server/internal/domain"
)

// Player is the remote player driven by a session. Implementations deliver
// the commands to the actual rendering surface.
type Player interface {
	Load(ctx context.Context, uri string, positionMillis int64, autoPlay bool) error
	Play(ctx context.Context) error
	Pause(ctx context.Context) error
	Seek(ctx context.Context, positionMillis int64) error
	Unload(ctx context.Context) error
}

// ProgressSink receives progress updates from a session.
type ProgressSink interface {
	SaveProgress(ctx context.Context, positionMillis int64) error
	MarkCompleted(ctx context.Context) error
}

// SessionCallbacks are optional hooks fired from inside the session loop.
type SessionCallbacks struct {
	OnPhaseChange func(Phase)
	OnError       func(*domain.PlaybackError)
}

type SessionConfig struct {
	Retry              RetryPolicy
	ResetMaxAttempts   int
	ResetRecoveryDelay time.Duration
	ProgressInterval   time.Duration
}

func DefaultSessionConfig() SessionConfig {
	return SessionConfig{
		Retry:              DefaultRetryPolicy(),
		ResetMaxAttempts:   3,
		ResetRecoveryDelay: 300 * time.Millisecond,
		ProgressInterval:   30 * time.Second,
	}
}

// Session owns the playback state for one client. All state transitions go
// through the reducer under a single mutex; timers and the progress loop
// re-enter through the same dispatch path.
type Session struct {
	mu       sync.Mutex
	state    State
	monitor  *resetMonitor
	loadedAt time.Time
	closed   bool

	cfg       SessionConfig
	player    Player
	progress  ProgressSink
	callbacks SessionCallbacks
	logger    *slog.Logger

	saving       atomic.Bool
	progressTick *time.Ticker
	progressDone chan struct{}

	recoveryTimer *time.Timer
	reloadTimer   *time.Timer
}

func NewSession(player Player, progress ProgressSink, cfg SessionConfig, callbacks SessionCallbacks, logger *slog.Logger) *Session {
	if logger == nil {
		logger = slog.Default()
	}

	return &Session{
		monitor:      newResetMonitor(cfg.ResetMaxAttempts),
		cfg:          cfg,
		player:       player,
		progress:     progress,
		callbacks:    callbacks,
		logger:       logger,
		progressDone: make(chan struct{}),
	}
}

// Start loads the endpoint and begins the periodic progress loop.
func (s *Session) Start(ctx context.Context, endpoint domain.ResolvedEndpoint, resumePosition int64, alreadyCompleted bool) {
	s.dispatch(ctx, EventStart{
		Endpoint:         endpoint,
		ResumePosition:   resumePosition,
		AlreadyCompleted: alreadyCompleted,
	})

	s.progressTick = time.NewTicker(s.cfg.ProgressInterval)
	go s.progressLoop()
}

// OnLoaded handles a successful load report from the player.
func (s *Session) OnLoaded(ctx context.Context, durationMillis int64) {
	s.mu.Lock()
	s.loadedAt = time.Now()
	s.mu.Unlock()

	s.dispatch(ctx, EventLoaded{DurationMillis: durationMillis})
}

// OnStatus handles a periodic status tick and runs reset detection on it.
func (s *Session) OnStatus(ctx context.Context, status domain.PlaybackStatus) {
	s.dispatch(ctx, EventStatus{Status: status})

	s.mu.Lock()
	if s.closed {
		s.mu.Unlock()
		return
	}

	sinceLoad := time.Since(s.loadedAt)
	action := s.monitor.Observe(status, sinceLoad, s.state.AlreadyCompleted)
	s.mu.Unlock()

	if action.Recover {
		s.logger.WarnContext(ctx, "spurious playback reset detected",
			"restore_position", action.PositionMillis,
			"attempt", s.monitor.Attempts(),
		)
		s.scheduleRecovery(ctx, action)
	}
}

func (s *Session) OnPlaybackError(ctx context.Context, kind domain.ErrorKind, message string) {
	s.dispatch(ctx, EventPlaybackError{Kind: kind, Message: message})
}

func (s *Session) Play(ctx context.Context) {
	s.dispatch(ctx, EventPlay{})
}

func (s *Session) Pause(ctx context.Context) {
	s.dispatch(ctx, EventPause{})
}

// SeekAbsolute seeks to a position and supersedes any in-flight recovery.
func (s *Session) SeekAbsolute(ctx context.Context, positionMillis int64) {
	s.mu.Lock()
	s.monitor.UserSeek(positionMillis)
	s.mu.Unlock()

	s.dispatch(ctx, EventSeekTo{PositionMillis: positionMillis})
}

// SeekRelative seeks by a signed delta from the current position.
func (s *Session) SeekRelative(ctx context.Context, deltaMillis int64) {
	s.mu.Lock()
	s.monitor.UserSeek(s.state.PositionMillis + deltaMillis)
	s.mu.Unlock()

	s.dispatch(ctx, EventSeekBy{DeltaMillis: deltaMillis})
}

// Teardown saves the final position and releases session resources. It is
// safe to call more than once.
func (s *Session) Teardown(ctx context.Context) {
	s.mu.Lock()
	if s.closed {
		s.mu.Unlock()
		return
	}
	s.closed = true

	if s.recoveryTimer != nil {
		s.recoveryTimer.Stop()
	}
	if s.reloadTimer != nil {
		s.reloadTimer.Stop()
	}
	if s.progressTick != nil {
		s.progressTick.Stop()
	}
	close(s.progressDone)

	state, commands := Apply(s.state, EventTeardown{}, s.cfg.Retry)
	s.state = state
	s.mu.Unlock()

	s.execute(ctx, commands)
}

// Snapshot returns a copy of the current state.
func (s *Session) Snapshot() State {
	s.mu.Lock()
	defer s.mu.Unlock()

	return s.state
}

func (s *Session) dispatch(ctx context.Context, ev Event) {
	s.mu.Lock()
	if s.closed {
		s.mu.Unlock()
		return
	}

	prevPhase := s.state.Phase
	state, commands := Apply(s.state, ev, s.cfg.Retry)
	s.state = state
	phaseChanged := state.Phase != prevPhase
	s.mu.Unlock()

	if phaseChanged && s.callbacks.OnPhaseChange != nil {
		s.callbacks.OnPhaseChange(state.Phase)
	}

	s.execute(ctx, commands)
}

func (s *Session) execute(ctx context.Context, commands []Command) {
	for _, command := range commands {
		switch command := command.(type) {
		case CommandLoad:
			if err := s.player.Load(ctx, command.URL, command.PositionMillis, command.AutoPlay); err != nil {
				s.logger.WarnContext(ctx, "failed to load video", "error", err)
			}
		case CommandPlay:
			if err := s.player.Play(ctx); err != nil {
				s.logger.WarnContext(ctx, "failed to play video", "error", err)
			}
		case CommandPause:
			if err := s.player.Pause(ctx); err != nil {
				s.logger.WarnContext(ctx, "failed to pause video", "error", err)
			}
		case CommandSeek:
			if err := s.player.Seek(ctx, command.PositionMillis); err != nil {
				s.logger.WarnContext(ctx, "failed to seek video", "error", err)
			}
		case CommandUnload:
			if err := s.player.Unload(ctx); err != nil {
				s.logger.WarnContext(ctx, "failed to unload video", "error", err)
			}
		case CommandSaveProgress:
			s.saveProgress(ctx, command.PositionMillis)
		case CommandMarkCompleted:
			if err := s.progress.MarkCompleted(ctx); err != nil {
				s.logger.WarnContext(ctx, "failed to mark lesson completed", "error", err)
			}
		case CommandScheduleReload:
			s.scheduleReload(ctx, command)
		case CommandSurfaceError:
			if s.callbacks.OnError != nil {
				s.callbacks.OnError(command.Err)
			}
		}
	}
}

func (s *Session) saveProgress(ctx context.Context, positionMillis int64) {
	// Drop the tick if a save is already in flight.
	if !s.saving.CompareAndSwap(false, true) {
		return
	}
	defer s.saving.Store(false)

	if err := s.progress.SaveProgress(ctx, positionMillis); err != nil {
		s.logger.WarnContext(ctx, "failed to save progress", "error", err)
	}
}

func (s *Session) progressLoop() {
	for {
		select {
		case <-s.progressDone:
			return
		case <-s.progressTick.C:
			s.mu.Lock()
			phase := s.state.Phase
			position := s.state.PositionMillis
			s.mu.Unlock()

			if phase == PhasePlaying && position > 0 {
				s.saveProgress(context.Background(), position)
			}
		}
	}
}

func (s *Session) scheduleRecovery(ctx context.Context, action recoveryAction) {
	s.mu.Lock()
	s.recoveryTimer = time.AfterFunc(s.cfg.ResetRecoveryDelay, func() {
		s.mu.Lock()
		if s.closed || s.monitor.Superseded() {
			s.monitor.Done()
			s.mu.Unlock()
			return
		}
		s.mu.Unlock()

		if err := s.player.Seek(ctx, action.PositionMillis); err != nil {
			s.logger.WarnContext(ctx, "failed to restore position after reset", "error", err)
		}

		if action.ResumePlaying {
			if err := s.player.Play(ctx); err != nil {
				s.logger.WarnContext(ctx, "failed to resume playback after reset", "error", err)
			}
		} else {
			if err := s.player.Pause(ctx); err != nil {
				s.logger.WarnContext(ctx, "failed to pause after reset", "error", err)
			}
		}

		s.mu.Lock()
		s.monitor.Done()
		s.mu.Unlock()
	})
	s.mu.Unlock()
}

func (s *Session) scheduleReload(ctx context.Context, command CommandScheduleReload) {
	s.logger.InfoContext(ctx, "scheduling playback reload",
		"attempt", command.Attempt,
		"delay", command.Delay,
	)

	s.mu.Lock()
	s.reloadTimer = time.AfterFunc(command.Delay, func() {
		s.dispatch(ctx, EventReloadDue{})
	})
	s.mu.Unlock()
}
