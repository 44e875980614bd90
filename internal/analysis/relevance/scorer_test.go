package relevance

import (
	"testing"

	"github.com/dkarpushin/tubechat/internal/model/transcript"
)

func segments(texts ...string) []transcript.Segment {
	segs := make([]transcript.Segment, 0, len(texts))
	for i, text := range texts {
		segs = append(segs, transcript.Segment{Start: float64(i), Duration: 1, Text: text})
	}
	return segs
}

func TestFindRelevantSegmentsKeepsChronologicalOrder(t *testing.T) {
	segs := segments("the quick brown fox", "hello world", "quick quick everywhere")

	got := FindRelevantSegments("quick", segs, 2)
	if len(got) != 2 {
		t.Fatalf("expected 2 segments, got %d", len(got))
	}
	// The last segment scores higher, but output order stays
	// chronological.
	if got[0].Text != "the quick brown fox" || got[1].Text != "quick quick everywhere" {
		t.Fatalf("unexpected order: %q, %q", got[0].Text, got[1].Text)
	}
}

func TestFindRelevantSegmentsPicksTopScorer(t *testing.T) {
	segs := segments("the quick brown fox", "hello world", "quick quick everywhere")

	got := FindRelevantSegments("quick", segs, 1)
	if len(got) != 1 || got[0].Text != "quick quick everywhere" {
		t.Fatalf("expected top scorer only, got %+v", got)
	}
}

func TestFindRelevantSegmentsShortTokenFallback(t *testing.T) {
	segs := segments("alpha", "beta", "gamma", "delta")

	got := FindRelevantSegments("is it ok", segs, 3)
	if len(got) != 3 {
		t.Fatalf("expected positional fallback of 3 segments, got %d", len(got))
	}
	if got[0].Text != "alpha" || got[2].Text != "gamma" {
		t.Fatalf("fallback must return the first segments in order: %+v", got)
	}
}

func TestFindRelevantSegmentsNoMatches(t *testing.T) {
	segs := segments("alpha", "beta")

	if got := FindRelevantSegments("unrelated", segs, 5); len(got) != 0 {
		t.Fatalf("expected no segments, got %+v", got)
	}
}

func TestFindRelevantSegmentsNeverExceedsMax(t *testing.T) {
	segs := segments("match", "match", "match", "match", "match")

	if got := FindRelevantSegments("match", segs, 2); len(got) != 2 {
		t.Fatalf("expected at most 2 segments, got %d", len(got))
	}
}

func TestFindRelevantSegmentsPhraseBonus(t *testing.T) {
	segs := segments("talks about machine learning today", "machine parts and learning habits")

	got := FindRelevantSegments("machine learning", segs, 1)
	if len(got) != 1 || got[0].Text != "talks about machine learning today" {
		t.Fatalf("phrase match must win: %+v", got)
	}
}

func TestFindRelevantSegmentsCaseInsensitive(t *testing.T) {
	segs := segments("Docker Containers Explained")

	if got := FindRelevantSegments("docker", segs, 1); len(got) != 1 {
		t.Fatalf("matching must be case-insensitive, got %+v", got)
	}
}
