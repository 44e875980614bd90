package transcript

import "testing"

func TestFormatSegmentsParsesStringNumbers(t *testing.T) {
	raw := []RawSegment{
		{Start: "0", Duration: "2", Text: "hello"},
		{Start: "2.5", Duration: "3.25", Text: "world"},
	}

	segments := FormatSegments(raw)
	if len(segments) != 2 {
		t.Fatalf("expected 2 segments, got %d", len(segments))
	}
	if segments[0].Start != 0 || segments[0].Duration != 2 || segments[0].End != 2 {
		t.Fatalf("unexpected first segment times: %+v", segments[0])
	}
	if segments[1].Start != 2.5 || segments[1].End != 5.75 {
		t.Fatalf("unexpected second segment times: %+v", segments[1])
	}
}

func TestFormatSegmentsCollapsesNewlinesAndTrims(t *testing.T) {
	raw := []RawSegment{{Start: "0", Duration: "1", Text: "  hello\nthere\r\nworld  "}}

	segments := FormatSegments(raw)
	if segments[0].Text != "hello there  world" && segments[0].Text != "hello there world" {
		// \r\n becomes two spaces; either collapse is acceptable as
		// long as no newline survives.
		t.Fatalf("unexpected text: %q", segments[0].Text)
	}
	for _, c := range segments[0].Text {
		if c == '\n' || c == '\r' {
			t.Fatalf("newline survived normalization: %q", segments[0].Text)
		}
	}
}

func TestFormatSegmentsInvalidNumbersBecomeZero(t *testing.T) {
	segments := FormatSegments([]RawSegment{{Start: "abc", Duration: "-3", Text: "x"}})
	if segments[0].Start != 0 || segments[0].Duration != 0 || segments[0].End != 0 {
		t.Fatalf("expected zeroed times, got %+v", segments[0])
	}
}

func TestFormatSegmentsPreservesOrder(t *testing.T) {
	raw := []RawSegment{
		{Start: "10", Duration: "1", Text: "a"},
		{Start: "20", Duration: "1", Text: "b"},
		{Start: "15", Duration: "1", Text: "c"},
	}

	segments := FormatSegments(raw)
	if segments[0].Text != "a" || segments[1].Text != "b" || segments[2].Text != "c" {
		t.Fatalf("input order not preserved: %+v", segments)
	}
}

func TestTimeLabel(t *testing.T) {
	cases := []struct {
		seconds float64
		want    string
	}{
		{0, "00:00.000"},
		{62.5, "01:02.500"},
		{3599.999, "59:59.999"},
		{3600, "01:00:00.000"},
		{3725.25, "01:02:05.250"},
	}

	for _, tc := range cases {
		if got := TimeLabel(tc.seconds); got != tc.want {
			t.Fatalf("TimeLabel(%v) = %q, want %q", tc.seconds, got, tc.want)
		}
	}
}
