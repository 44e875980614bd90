package transcript

import (
	"strings"
	"testing"
)

func sampleSegments() []Segment {
	return FormatSegments([]RawSegment{
		{Start: "0", Duration: "2", Text: "hello"},
		{Start: "2", Duration: "3", Text: "world"},
	})
}

func TestRenderTextOnly(t *testing.T) {
	out, err := Render(sampleSegments(), FormatTextOnly)
	if err != nil {
		t.Fatalf("Render err: %v", err)
	}
	if out != "hello world" {
		t.Fatalf("unexpected text_only output: %q", out)
	}
}

func TestRenderSRT(t *testing.T) {
	out := RenderSRT(sampleSegments())

	blocks := strings.Split(strings.TrimRight(out, "\n"), "\n\n")
	if len(blocks) != 2 {
		t.Fatalf("expected one block per segment, got %d: %q", len(blocks), out)
	}

	want := "1\n00:00:00,000 --> 00:00:02,000\nhello"
	if blocks[0] != want {
		t.Fatalf("unexpected first srt block: %q, want %q", blocks[0], want)
	}
	if !strings.HasPrefix(blocks[1], "2\n00:00:02,000 --> 00:00:05,000") {
		t.Fatalf("unexpected second srt block: %q", blocks[1])
	}
}

func TestRenderVTT(t *testing.T) {
	out := RenderVTT(sampleSegments())

	if !strings.HasPrefix(out, "WEBVTT\n\n") {
		t.Fatalf("missing WEBVTT header: %q", out)
	}
	if !strings.Contains(out, "00:00:00.000 --> 00:00:02.000\nhello") {
		t.Fatalf("missing first vtt cue: %q", out)
	}
	if strings.Count(out, "-->") != 2 {
		t.Fatalf("expected one cue per segment, got %d", strings.Count(out, "-->"))
	}
}

func TestRenderSegmentsFormat(t *testing.T) {
	out, err := Render(sampleSegments(), FormatSegmentList)
	if err != nil {
		t.Fatalf("Render err: %v", err)
	}

	views, ok := out.([]SegmentView)
	if !ok {
		t.Fatalf("expected []SegmentView, got %T", out)
	}
	if views[0].ID != 1 || views[1].ID != 2 {
		t.Fatalf("ids must be 1-based consecutive: %+v", views)
	}
	if views[0].WordCount != 1 {
		t.Fatalf("unexpected word count: %d", views[0].WordCount)
	}
}

func TestRenderEmptyTranscript(t *testing.T) {
	if got := RenderText(nil); got != "" {
		t.Fatalf("text_only of empty transcript must be empty, got %q", got)
	}
	if got := RenderSRT(nil); got != "" {
		t.Fatalf("srt of empty transcript must be empty, got %q", got)
	}
	if got := RenderVTT(nil); got != "WEBVTT\n" {
		t.Fatalf("vtt of empty transcript must be header-only, got %q", got)
	}
}

func TestParseFormat(t *testing.T) {
	if format, err := ParseFormat(""); err != nil || format != FormatDetailed {
		t.Fatalf("empty format must default to detailed, got %q err %v", format, err)
	}
	if _, err := ParseFormat("yaml"); err == nil {
		t.Fatal("expected error for unsupported format")
	}
}
