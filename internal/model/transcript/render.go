package transcript

import (
	"fmt"
	"strings"
)

// Format selects one of the supported transcript output shapes.
type Format string

const (
	FormatTextOnly Format = "text_only"
	FormatSimple   Format = "simple"
	FormatSRT      Format = "srt"
	FormatVTT      Format = "vtt"
	FormatSegmentList Format = "segments"
	FormatDetailed Format = "detailed"
)

// ErrUnknownFormat is returned by ParseFormat for unsupported values.
var ErrUnknownFormat = fmt.Errorf("unknown transcript format")

// ParseFormat maps a query-string value to a Format. An empty value
// selects the detailed default.
func ParseFormat(raw string) (Format, error) {
	switch Format(strings.ToLower(strings.TrimSpace(raw))) {
	case "":
		return FormatDetailed, nil
	case FormatTextOnly, FormatSimple, FormatSRT, FormatVTT, FormatSegmentList, FormatDetailed:
		return Format(strings.ToLower(strings.TrimSpace(raw))), nil
	default:
		return "", fmt.Errorf("%w: %q", ErrUnknownFormat, raw)
	}
}

// SimpleSegment is the reduced projection used by the simple format.
type SimpleSegment struct {
	Text     string  `json:"text"`
	Start    float64 `json:"start"`
	Duration float64 `json:"duration"`
}

// SegmentView is the enriched projection used by the segments format.
type SegmentView struct {
	ID        int     `json:"id"`
	Start     float64 `json:"start"`
	End       float64 `json:"end"`
	Duration  float64 `json:"duration"`
	Text      string  `json:"text"`
	WordCount int     `json:"wordCount"`
}

// Render projects segments into the requested output format. It is a
// pure function; an empty transcript yields empty (or header-only)
// content rather than an error.
func Render(segments []Segment, format Format) (any, error) {
	switch format {
	case FormatTextOnly:
		return RenderText(segments), nil
	case FormatSimple:
		views := make([]SimpleSegment, 0, len(segments))
		for _, seg := range segments {
			views = append(views, SimpleSegment{Text: seg.Text, Start: seg.Start, Duration: seg.Duration})
		}
		return views, nil
	case FormatSRT:
		return RenderSRT(segments), nil
	case FormatVTT:
		return RenderVTT(segments), nil
	case FormatSegmentList:
		views := make([]SegmentView, 0, len(segments))
		for i, seg := range segments {
			views = append(views, SegmentView{
				ID:        i + 1,
				Start:     seg.Start,
				End:       seg.End,
				Duration:  seg.Duration,
				Text:      seg.Text,
				WordCount: len(strings.Fields(seg.Text)),
			})
		}
		return views, nil
	case FormatDetailed:
		return segments, nil
	default:
		return nil, fmt.Errorf("%w: %q", ErrUnknownFormat, format)
	}
}

// RenderText joins segment texts with single spaces, in order.
func RenderText(segments []Segment) string {
	texts := make([]string, 0, len(segments))
	for _, seg := range segments {
		texts = append(texts, seg.Text)
	}
	return strings.Join(texts, " ")
}

// RenderSRT renders SubRip blocks: 1-based index, comma-decimal time
// range, text, blank separator.
func RenderSRT(segments []Segment) string {
	var b strings.Builder
	for i, seg := range segments {
		fmt.Fprintf(&b, "%d\n%s --> %s\n%s\n\n", i+1, srtTimestamp(seg.Start), srtTimestamp(seg.End), seg.Text)
	}
	return b.String()
}

// RenderVTT renders a WebVTT document: WEBVTT header, then dot-decimal
// time ranges with text, blank-line separated.
func RenderVTT(segments []Segment) string {
	var b strings.Builder
	b.WriteString("WEBVTT\n")
	for _, seg := range segments {
		fmt.Fprintf(&b, "\n%s --> %s\n%s\n", vttTimestamp(seg.Start), vttTimestamp(seg.End), seg.Text)
	}
	return b.String()
}

func srtTimestamp(seconds float64) string {
	h, m, s, ms := splitClock(seconds)
	return fmt.Sprintf("%02d:%02d:%02d,%03d", h, m, s, ms)
}

func vttTimestamp(seconds float64) string {
	h, m, s, ms := splitClock(seconds)
	return fmt.Sprintf("%02d:%02d:%02d.%03d", h, m, s, ms)
}
