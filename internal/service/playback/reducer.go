package playback

import "github.com/lessonplay/server/internal/domain"

// Apply advances the state machine by one event and returns the commands the
// runtime must execute. It has no side effects of its own.
func Apply(state State, ev Event, retry RetryPolicy) (State, []Command) {
	switch ev := ev.(type) {
	case EventStart:
		return applyStart(state, ev)
	case EventLoaded:
		return applyLoaded(state, ev)
	case EventStatus:
		return applyStatus(state, ev)
	case EventPlay:
		if !state.loaded() {
			return state, nil
		}

		return state, []Command{CommandPlay{}}
	case EventPause:
		if !state.loaded() {
			return state, nil
		}

		return state, []Command{CommandPause{}}
	case EventSeekTo:
		return applySeek(state, ev.PositionMillis)
	case EventSeekBy:
		return applySeek(state, state.PositionMillis+ev.DeltaMillis)
	case EventPlaybackError:
		return applyError(state, ev, retry)
	case EventReloadDue:
		if state.Phase != PhaseError {
			return state, nil
		}

		state.Phase = PhaseLoading

		return state, []Command{CommandLoad{
			URL:            state.Endpoint.URL,
			PositionMillis: state.PositionMillis,
			AutoPlay:       true,
		}}
	case EventTeardown:
		var commands []Command
		if state.PositionMillis > 0 {
			commands = append(commands, CommandSaveProgress{PositionMillis: state.PositionMillis})
		}

		commands = append(commands, CommandUnload{})
		state.Phase = PhaseIdle

		return state, commands
	}

	return state, nil
}

func applyStart(state State, ev EventStart) (State, []Command) {
	if state.Phase != PhaseIdle {
		return state, nil
	}

	state.Phase = PhaseLoading
	state.Endpoint = ev.Endpoint
	state.AlreadyCompleted = ev.AlreadyCompleted
	state.ResumePosition = ev.ResumePosition
	// Completed lessons always restart from the beginning.
	if ev.AlreadyCompleted {
		state.ResumePosition = 0
	}

	return state, []Command{CommandLoad{
		URL:            state.Endpoint.URL,
		PositionMillis: state.ResumePosition,
		AutoPlay:       false,
	}}
}

func applyLoaded(state State, ev EventLoaded) (State, []Command) {
	if state.Phase != PhaseLoading {
		return state, nil
	}

	state.Phase = PhaseReady
	state.DurationMillis = ev.DurationMillis
	state.LoadAttempt = 0

	var commands []Command
	switch {
	case state.AlreadyCompleted:
		commands = append(commands, CommandSeek{PositionMillis: 0})
	case state.ResumePosition > 0:
		commands = append(commands, CommandSeek{PositionMillis: state.ResumePosition})
	}

	commands = append(commands, CommandPlay{})

	return state, commands
}

func applyStatus(state State, ev EventStatus) (State, []Command) {
	if !state.loaded() {
		return state, nil
	}

	status := ev.Status
	state.PositionMillis = status.PositionMillis
	if status.DurationMillis > 0 {
		state.DurationMillis = status.DurationMillis
	}
	state.IsPlaying = status.IsPlaying

	var commands []Command

	finished := status.DidJustFinish || status.Progress() > completionThreshold
	if finished && !state.CompletionSent && !state.AlreadyCompleted {
		state.CompletionSent = true
		commands = append(commands, CommandMarkCompleted{})
	}

	switch {
	case status.DidJustFinish:
		state.Phase = PhaseFinished
		state.IsPlaying = false
	case status.IsPlaying:
		state.Phase = PhasePlaying
	default:
		state.Phase = PhasePaused
	}

	return state, commands
}

func applySeek(state State, positionMillis int64) (State, []Command) {
	if !state.loaded() {
		return state, nil
	}

	if positionMillis < 0 {
		positionMillis = 0
	}
	if state.DurationMillis > 0 && positionMillis > state.DurationMillis {
		positionMillis = state.DurationMillis
	}

	state.PositionMillis = positionMillis

	return state, []Command{CommandSeek{PositionMillis: positionMillis}}
}

func applyError(state State, ev EventPlaybackError, retry RetryPolicy) (State, []Command) {
	state.Phase = PhaseError
	state.IsPlaying = false

	commands := []Command{CommandUnload{}}

	attempt := state.LoadAttempt + 1
	state.LoadAttempt = attempt

	if retry.Exhausted(attempt) {
		kind := ev.Kind
		if kind == "" || kind == domain.ErrKindUnknown {
			kind = domain.ClassifyError(ev.Message)
		}

		commands = append(commands, CommandSurfaceError{Err: &domain.PlaybackError{
			Kind:      kind,
			Message:   ev.Message,
			Retryable: kind == domain.ErrKindNetwork || kind == domain.ErrKindUnknown,
		}})

		return state, commands
	}

	commands = append(commands, CommandScheduleReload{
		Attempt: attempt,
		Delay:   retry.Delay(attempt),
	})

	return state, commands
}

func (s State) loaded() bool {
	switch s.Phase {
	case PhaseReady, PhasePlaying, PhasePaused, PhaseFinished:
		return true
	}

	return false
}
