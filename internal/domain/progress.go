package domain

// LessonProgress is the progress-tracking collaborator's record for one
// lesson. The playback session reads it once at session start and writes to
// it periodically and at completion.
type LessonProgress struct {
	LessonID       string `json:"lesson_id"`
	Completed      bool   `json:"completed"`
	PositionMillis int64  `json:"position_millis"`
}
