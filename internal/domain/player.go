package domain

// PlaybackStatus is one status tick from the client-side player, delivered
// over the session socket in arrival order.
type PlaybackStatus struct {
	PositionMillis int64 `json:"position_millis"`
	DurationMillis int64 `json:"duration_millis"`
	IsPlaying      bool  `json:"is_playing"`
	IsLoaded       bool  `json:"is_loaded"`
	DidJustFinish  bool  `json:"did_just_finish"`
}

// Progress returns the watched fraction in [0, 1], 0 when duration is unknown.
func (s PlaybackStatus) Progress() float64 {
	if s.DurationMillis <= 0 {
		return 0
	}

	return float64(s.PositionMillis) / float64(s.DurationMillis)
}
