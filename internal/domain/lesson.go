package domain

const (
	LessonTypeVideo = "video"
	LessonTypePDF   = "pdf"
)

// Lesson is the content record served by the course collaborator.
type Lesson struct {
	Type        string `json:"type"`
	Title       string `json:"title"`
	Description string `json:"description"`
	VideoURL    string `json:"video_url,omitempty"`
	PDFURL      string `json:"pdf_url,omitempty"`
}
