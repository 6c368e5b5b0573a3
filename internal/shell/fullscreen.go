package shell

import "time"

// reapplyDelay gives the client layout time to settle after an orientation
// switch before the captured position is reapplied.
const reapplyDelay = 300 * time.Millisecond

type Orientation string

const (
	OrientationPortrait  Orientation = "portrait"
	OrientationLandscape Orientation = "landscape"
)

// PlaybackCapture is the transport state saved across a fullscreen switch.
type PlaybackCapture struct {
	PositionMillis int64
	WasPlaying     bool
}

// Fullscreen tracks the fullscreen flag for one session and the playback
// state captured while the client re-lays itself out.
type Fullscreen struct {
	active  bool
	capture PlaybackCapture
}

// Enter captures the current transport state and returns the orientation the
// client must lock to.
func (f *Fullscreen) Enter(positionMillis int64, isPlaying bool) Orientation {
	f.active = true
	f.capture = PlaybackCapture{PositionMillis: positionMillis, WasPlaying: isPlaying}

	return OrientationLandscape
}

// Exit captures the current transport state and returns the orientation the
// client must lock to.
func (f *Fullscreen) Exit(positionMillis int64, isPlaying bool) Orientation {
	f.active = false
	f.capture = PlaybackCapture{PositionMillis: positionMillis, WasPlaying: isPlaying}

	return OrientationPortrait
}

func (f *Fullscreen) Active() bool {
	return f.active
}

// Capture returns the transport state saved by the last switch.
func (f *Fullscreen) Capture() PlaybackCapture {
	return f.capture
}

// ReapplyDelay is how long the client should wait after the orientation
// change before seeking back to the captured position.
func (f *Fullscreen) ReapplyDelay() time.Duration {
	return reapplyDelay
}
