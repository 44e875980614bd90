// Package relevance ranks transcript segments against a free-text
// query so callers can narrow a long transcript to the parts a
// question is actually about.
package relevance

import (
	"sort"
	"strings"

	"github.com/dkarpushin/tubechat/internal/model/transcript"
)

// Tokens shorter than this carry no signal and are dropped.
const minTokenLength = 3

// exact phrase hits outweigh individual token hits
const phraseBonus = 5

// FindRelevantSegments returns at most maxSegments segments scored
// against query, in their original chronological order. When the query
// yields no usable tokens the first maxSegments segments are returned
// unscored, so callers always get deterministic output.
func FindRelevantSegments(query string, segments []transcript.Segment, maxSegments int) []transcript.Segment {
	if maxSegments <= 0 || len(segments) == 0 {
		return nil
	}

	tokens := tokenize(query)
	if len(tokens) == 0 {
		if len(segments) < maxSegments {
			maxSegments = len(segments)
		}
		return append([]transcript.Segment(nil), segments[:maxSegments]...)
	}

	phrase := strings.ToLower(strings.TrimSpace(query))

	type scored struct {
		index int
		score int
	}
	hits := make([]scored, 0, len(segments))
	for i, seg := range segments {
		text := strings.ToLower(seg.Text)

		score := 0
		for _, token := range tokens {
			score += strings.Count(text, token)
		}
		if phrase != "" && strings.Contains(text, phrase) {
			score += phraseBonus
		}

		if score > 0 {
			hits = append(hits, scored{index: i, score: score})
		}
	}

	// Stable sort keeps earlier segments ahead on score ties.
	sort.SliceStable(hits, func(a, b int) bool {
		return hits[a].score > hits[b].score
	})
	if len(hits) > maxSegments {
		hits = hits[:maxSegments]
	}

	// The selection is by score, the result order is chronological.
	sort.Slice(hits, func(a, b int) bool {
		return hits[a].index < hits[b].index
	})

	selected := make([]transcript.Segment, 0, len(hits))
	for _, hit := range hits {
		selected = append(selected, segments[hit.index])
	}
	return selected
}

func tokenize(query string) []string {
	fields := strings.Fields(strings.ToLower(query))
	tokens := fields[:0]
	for _, field := range fields {
		if len(field) >= minTokenLength {
			tokens = append(tokens, field)
		}
	}
	return tokens
}
