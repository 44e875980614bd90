package transcript

import (
	"errors"
	"fmt"
)

// ErrorKind tags caption-source failures so callers never have to
// sniff error strings. The fallback logic depends on telling
// language-specific failures apart from video-level ones.
type ErrorKind string

const (
	KindVideoNotFound       ErrorKind = "video_not_found"
	KindVideoPrivate        ErrorKind = "video_private"
	KindRegionBlocked       ErrorKind = "region_blocked"
	KindNoCaptions          ErrorKind = "no_captions"
	KindLanguageUnavailable ErrorKind = "language_unavailable"
	KindRateLimited         ErrorKind = "rate_limited"
	KindNetwork             ErrorKind = "network"
)

// LanguageSpecific reports whether trying another caption language can
// still succeed for this failure.
func (k ErrorKind) LanguageSpecific() bool {
	return k == KindLanguageUnavailable
}

// Error is a tagged caption-source failure.
type Error struct {
	Kind     ErrorKind
	VideoID  string
	Language string
	Message  string
	Err      error
}

func (e *Error) Error() string {
	msg := e.Message
	if msg == "" {
		msg = string(e.Kind)
	}
	if e.Language != "" {
		return fmt.Sprintf("transcript %s (lang=%s): %s", e.VideoID, e.Language, msg)
	}
	return fmt.Sprintf("transcript %s: %s", e.VideoID, msg)
}

func (e *Error) Unwrap() error { return e.Err }

// KindOf extracts the error kind, defaulting to network for errors
// that did not originate in this package.
func KindOf(err error) ErrorKind {
	var te *Error
	if errors.As(err, &te) {
		return te.Kind
	}
	return KindNetwork
}
