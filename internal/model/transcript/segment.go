package transcript

import (
	"fmt"
	"strconv"
	"strings"
)

// RawSegment is the shape delivered by the caption source. Numeric
// fields may arrive as strings, so parsing happens here.
type RawSegment struct {
	Start    string `json:"start"`
	Duration string `json:"duration"`
	Text     string `json:"text"`
}

// Segment is one timed caption unit. A transcript is an ordered slice
// of segments, chronologically non-decreasing by Start; the order is
// load-bearing for rendering and context coherence.
type Segment struct {
	Start      float64 `json:"start"`
	Duration   float64 `json:"duration"`
	End        float64 `json:"end"`
	Text       string  `json:"text"`
	StartLabel string  `json:"startFormatted"`
	EndLabel   string  `json:"endFormatted"`
}

// FormatSegments normalizes raw caption segments: parses numeric
// fields, collapses embedded newlines to spaces, trims whitespace and
// derives End plus human-readable time labels. Output order matches
// input order; no re-sort is performed.
func FormatSegments(raw []RawSegment) []Segment {
	segments := make([]Segment, 0, len(raw))
	for _, r := range raw {
		start := parseSeconds(r.Start)
		duration := parseSeconds(r.Duration)
		end := start + duration

		text := strings.ReplaceAll(r.Text, "\r", " ")
		text = strings.ReplaceAll(text, "\n", " ")
		text = strings.TrimSpace(text)

		segments = append(segments, Segment{
			Start:      start,
			Duration:   duration,
			End:        end,
			Text:       text,
			StartLabel: TimeLabel(start),
			EndLabel:   TimeLabel(end),
		})
	}
	return segments
}

func parseSeconds(raw string) float64 {
	v, err := strconv.ParseFloat(strings.TrimSpace(raw), 64)
	if err != nil || v < 0 {
		return 0
	}
	return v
}

// TimeLabel renders seconds as HH:MM:SS.mmm, or MM:SS.mmm when the
// value is under an hour.
func TimeLabel(seconds float64) string {
	h, m, s, ms := splitClock(seconds)
	if h > 0 {
		return fmt.Sprintf("%02d:%02d:%02d.%03d", h, m, s, ms)
	}
	return fmt.Sprintf("%02d:%02d.%03d", m, s, ms)
}

func splitClock(seconds float64) (h, m, s, ms int) {
	if seconds < 0 {
		seconds = 0
	}
	total := int(seconds)
	ms = int(seconds*1000+0.5) - total*1000
	if ms >= 1000 {
		total++
		ms -= 1000
	}
	h = total / 3600
	m = total % 3600 / 60
	s = total % 60
	return
}
