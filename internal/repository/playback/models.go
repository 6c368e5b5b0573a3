package playback

// Position is the cached playback position for one user and lesson. It backs
// fast resume when the progress API record is missing or stale.
type Position struct {
	PositionMillis int64 `redis:"position_millis"`
	Completed      bool  `redis:"completed"`
	UpdatedAt      int64 `redis:"updated_at"`
}

type SetPositionParams struct {
	UserID         string
	LessonID       string
	PositionMillis int64
	UpdatedAt      int64
}

type GetPositionParams struct {
	UserID   string
	LessonID string
}

type RemovePositionParams struct {
	UserID   string
	LessonID string
}

type MarkCompletedParams struct {
	UserID    string
	LessonID  string
	UpdatedAt int64
}
