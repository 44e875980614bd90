// Package transcript fetches caption transcripts for YouTube videos,
// with an ordered language-fallback chain over a tagged caption
// source.
package transcript

import (
	"context"
	"regexp"
	"strings"

	"github.com/dkarpushin/tubechat/internal/logger"
	model "github.com/dkarpushin/tubechat/internal/model/transcript"
)

// Video is one fetched transcript plus the metadata the chat layer
// needs to ground a session.
type Video struct {
	VideoID  string
	Title    string
	Language string
	Segments []model.Segment
}

// Source fetches captions for one video in one language. Failures
// must carry a tagged ErrorKind.
type Source interface {
	Fetch(ctx context.Context, videoID, language string) (*Video, error)
}

// Service resolves transcripts with language fallback: the preferred
// language first, then the configured list, stopping at the first
// success. Video-level failures abort immediately without trying
// further languages.
type Service struct {
	source    Source
	languages []string
}

// NewService wires a caption source with an ordered fallback list.
func NewService(source Source, languages []string) *Service {
	if len(languages) == 0 {
		languages = []string{"en"}
	}
	return &Service{source: source, languages: languages}
}

// Fetch retrieves the transcript of videoID, preferring language when
// it is non-empty.
func (s *Service) Fetch(ctx context.Context, videoID, language string) (*Video, error) {
	var lastErr error
	for _, lang := range s.candidates(language) {
		video, err := s.source.Fetch(ctx, videoID, lang)
		if err == nil {
			logger.Log.Infof("[transcript] fetched video=%s lang=%s segments=%d", videoID, video.Language, len(video.Segments))
			return video, nil
		}
		if !KindOf(err).LanguageSpecific() {
			return nil, err
		}
		lastErr = err
	}
	return nil, lastErr
}

func (s *Service) candidates(preferred string) []string {
	langs := make([]string, 0, len(s.languages)+1)
	seen := make(map[string]bool, len(s.languages)+1)

	add := func(lang string) {
		lang = strings.TrimSpace(lang)
		key := strings.ToLower(lang)
		if lang == "" || seen[key] {
			return
		}
		seen[key] = true
		langs = append(langs, lang)
	}

	add(preferred)
	for _, lang := range s.languages {
		add(lang)
	}
	return langs
}

var videoIDPattern = regexp.MustCompile(`^[A-Za-z0-9_-]{11}$`)

// ExtractVideoID accepts a bare 11-character video id or any common
// YouTube URL form and returns the id, or false when nothing usable is
// found.
func ExtractVideoID(input string) (string, bool) {
	input = strings.TrimSpace(input)
	if videoIDPattern.MatchString(input) {
		return input, true
	}

	trimmed := strings.TrimPrefix(strings.TrimPrefix(input, "https://"), "http://")
	trimmed = strings.TrimPrefix(trimmed, "www.")

	var candidate string
	switch {
	case strings.HasPrefix(trimmed, "youtube.com/watch"):
		if i := strings.Index(trimmed, "v="); i >= 0 {
			candidate = trimmed[i+2:]
		}
	case strings.HasPrefix(trimmed, "youtu.be/"):
		candidate = trimmed[len("youtu.be/"):]
	case strings.HasPrefix(trimmed, "youtube.com/shorts/"):
		candidate = trimmed[len("youtube.com/shorts/"):]
	case strings.HasPrefix(trimmed, "youtube.com/embed/"):
		candidate = trimmed[len("youtube.com/embed/"):]
	}

	if i := strings.IndexAny(candidate, "?&#/"); i >= 0 {
		candidate = candidate[:i]
	}
	if videoIDPattern.MatchString(candidate) {
		return candidate, true
	}
	return "", false
}

// WatchURL returns the canonical watch URL for a video id.
func WatchURL(videoID string) string {
	return "https://www.youtube.com/watch?v=" + videoID
}
