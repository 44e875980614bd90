package chat

import (
	"time"

	"github.com/dkarpushin/tubechat/internal/model/transcript"
)

// Session records one video plus its conversation for the lifetime of
// the process. The transcript is set once at creation and never
// mutated; the message log only grows; UpdatedAt never moves backward.
type Session struct {
	ID         string               `json:"id"`
	VideoID    string               `json:"videoId"`
	VideoTitle string               `json:"videoTitle"`
	VideoURL   string               `json:"videoUrl"`
	Transcript []transcript.Segment `json:"transcript"`
	Messages   []Message            `json:"messages"`
	CreatedAt  time.Time            `json:"createdAt"`
	UpdatedAt  time.Time            `json:"updatedAt"`
}

// Stats is a read-only aggregation over one session.
type Stats struct {
	TotalMessages         int       `json:"totalMessages"`
	UserMessages          int       `json:"userMessages"`
	AssistantMessages     int       `json:"assistantMessages"`
	TranscriptSegments    int       `json:"transcriptSegments"`
	TotalTranscriptLength int       `json:"totalTranscriptLength"`
	SessionDurationMs     int64     `json:"sessionDurationMs"`
	LastActivity          time.Time `json:"lastActivity"`
}

// Validation reports the structural health of a session before it is
// used for context building.
type Validation struct {
	IsValid bool     `json:"isValid"`
	Errors  []string `json:"errors"`
}
