package playback

import (
	"time"

	"github.com/lessonplay/server/internal/domain"
)

// Phase is the lifecycle state of one playback session.
type Phase int

const (
	PhaseIdle Phase = iota
	PhaseLoading
	PhaseReady
	PhasePlaying
	PhasePaused
	PhaseFinished
	PhaseError
)

func (p Phase) String() string {
	switch p {
	case PhaseIdle:
		return "idle"
	case PhaseLoading:
		return "loading"
	case PhaseReady:
		return "ready"
	case PhasePlaying:
		return "playing"
	case PhasePaused:
		return "paused"
	case PhaseFinished:
		return "finished"
	case PhaseError:
		return "error"
	}

	return "unknown"
}

// State is the reducer-owned state of an active session. It is mutated only
// by applying events; the session runtime holds the single copy.
type State struct {
	Phase            Phase
	Endpoint         domain.ResolvedEndpoint
	PositionMillis   int64
	DurationMillis   int64
	IsPlaying        bool
	ResumePosition   int64
	AlreadyCompleted bool
	CompletionSent   bool
	LoadAttempt      int
}

// Event is one input to the session state machine.
type Event interface{ isEvent() }

type (
	// EventStart begins a session with a resolved endpoint.
	EventStart struct {
		Endpoint         domain.ResolvedEndpoint
		ResumePosition   int64
		AlreadyCompleted bool
	}
	// EventLoaded is the client player reporting a successful load.
	EventLoaded struct {
		DurationMillis int64
	}
	// EventStatus is a periodic status tick from the client player.
	EventStatus struct {
		Status domain.PlaybackStatus
	}
	// EventPlay and EventPause are user transport commands.
	EventPlay  struct{}
	EventPause struct{}
	// EventSeekTo seeks to an absolute position, clamped to [0, duration].
	EventSeekTo struct {
		PositionMillis int64
	}
	// EventSeekBy seeks relative to the current position, clamped.
	EventSeekBy struct {
		DeltaMillis int64
	}
	// EventPlaybackError is a load or playback failure from the client.
	EventPlaybackError struct {
		Kind    domain.ErrorKind
		Message string
	}
	// EventReloadDue fires when the reload backoff timer elapses.
	EventReloadDue struct{}
	// EventTeardown ends the session.
	EventTeardown struct{}
)

func (EventStart) isEvent()         {}
func (EventLoaded) isEvent()        {}
func (EventStatus) isEvent()        {}
func (EventPlay) isEvent()          {}
func (EventPause) isEvent()         {}
func (EventSeekTo) isEvent()        {}
func (EventSeekBy) isEvent()        {}
func (EventPlaybackError) isEvent() {}
func (EventReloadDue) isEvent()     {}
func (EventTeardown) isEvent()      {}

// Command is a side effect requested by the reducer and executed by the
// session runtime.
type Command interface{ isCommand() }

type (
	CommandLoad struct {
		URL            string
		PositionMillis int64
		AutoPlay       bool
	}
	CommandPlay  struct{}
	CommandPause struct{}
	CommandSeek  struct {
		PositionMillis int64
	}
	CommandUnload       struct{}
	CommandSaveProgress struct {
		PositionMillis int64
	}
	CommandMarkCompleted  struct{}
	CommandScheduleReload struct {
		Attempt int
		Delay   time.Duration
	}
	CommandSurfaceError struct {
		Err *domain.PlaybackError
	}
)

func (CommandLoad) isCommand()           {}
func (CommandPlay) isCommand()           {}
func (CommandPause) isCommand()          {}
func (CommandSeek) isCommand()           {}
func (CommandUnload) isCommand()         {}
func (CommandSaveProgress) isCommand()   {}
func (CommandMarkCompleted) isCommand()  {}
func (CommandScheduleReload) isCommand() {}
func (CommandSurfaceError) isCommand()   {}

// completionThreshold is the watched fraction past which a lesson counts as
// completed.
const completionThreshold = 0.9
