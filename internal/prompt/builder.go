// Package prompt assembles the bounded message context sent to the
// completion service: a grounding system prompt built from the video
// transcript plus a trimmed window of conversation history.
package prompt

import (
	"fmt"
	"strings"

	"github.com/dkarpushin/tubechat/internal/model/chat"
	"github.com/dkarpushin/tubechat/internal/model/transcript"
)

const (
	// transcriptCharLimit caps the rendered transcript inside the
	// system prompt. A hard character cut is acceptable here; the
	// marker keeps the truncation visible to the model.
	transcriptCharLimit = 50000
	truncationMarker    = "\n\n[transcript truncated]"

	// historyWindow is how many of the most recent stored messages
	// make it into the context. Older turns stay in the session log
	// but are silently dropped from the model's view.
	historyWindow = 20
)

const assistantPersona = `You are a helpful assistant that answers questions about a specific YouTube video.
Ground every answer in the video transcript provided below. If the transcript does not
contain the information needed, say so plainly instead of guessing. When it helps the
user, reference the timestamps of the transcript passages you rely on.`

// BuildContext produces the ordered message list for one completion
// call: an optional system message first, then the chronological tail
// of the conversation. The system-first ordering is a hard contract.
func BuildContext(session *chat.Session, includeSystemPrompt bool) []chat.ContextMessage {
	history := session.Messages
	if len(history) > historyWindow {
		history = history[len(history)-historyWindow:]
	}

	context := make([]chat.ContextMessage, 0, len(history)+1)
	if includeSystemPrompt {
		context = append(context, chat.ContextMessage{
			Role:    chat.RoleSystem,
			Content: SystemPrompt(session),
		})
	}
	for _, msg := range history {
		context = append(context, msg.Context())
	}
	return context
}

// SystemPrompt composes the persona instructions, the video metadata
// block and the timestamped transcript rendering.
func SystemPrompt(session *chat.Session) string {
	var b strings.Builder
	b.WriteString(assistantPersona)
	b.WriteString("\n\n")

	fmt.Fprintf(&b, "Video title: %s\n", session.VideoTitle)
	fmt.Fprintf(&b, "Video URL: %s\n", session.VideoURL)
	fmt.Fprintf(&b, "Video ID: %s\n", session.VideoID)
	fmt.Fprintf(&b, "Transcript segments: %d\n", len(session.Transcript))

	b.WriteString("\nTranscript:\n")
	b.WriteString(renderTranscript(session.Transcript))
	return b.String()
}

// renderTranscript emits one segment per line, each prefixed with a
// M:SS timestamp, cut at the character ceiling.
func renderTranscript(segments []transcript.Segment) string {
	var b strings.Builder
	for _, seg := range segments {
		minutes := int(seg.Start) / 60
		seconds := int(seg.Start) % 60
		fmt.Fprintf(&b, "[%d:%02d] %s\n", minutes, seconds, seg.Text)
	}

	rendered := b.String()
	if len(rendered) > transcriptCharLimit {
		rendered = rendered[:transcriptCharLimit-100] + truncationMarker
	}
	return rendered
}
