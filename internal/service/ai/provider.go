// Package ai generates assistant replies for chat sessions through
// pluggable completion providers.
package ai

import (
	"context"
	"errors"
	"fmt"

	"github.com/dkarpushin/tubechat/internal/model/chat"
)

// Usage mirrors the token accounting reported by the completion
// service.
type Usage struct {
	PromptTokens     int `json:"promptTokens"`
	CompletionTokens int `json:"completionTokens"`
	TotalTokens      int `json:"totalTokens"`
}

// Completion is one generated reply plus its usage counters.
type Completion struct {
	Content string
	Model   string
	Usage   Usage
}

// Options carries per-call sampling parameters. Nil values fall back
// to provider defaults.
type Options struct {
	Model       string
	Temperature *float32
	MaxTokens   *int
}

// Provider is a completion backend. Stream invokes emit for each
// generated chunk and returns the assembled completion; providers that
// cannot stream may emit once with the full text.
type Provider interface {
	Name() string
	Complete(ctx context.Context, messages []chat.ContextMessage, opts Options) (Completion, error)
	Stream(ctx context.Context, messages []chat.ContextMessage, opts Options, emit func(chunk string) error) (Completion, error)
}

// ErrorKind classifies completion failures.
type ErrorKind string

const (
	KindInvalidCredential ErrorKind = "invalid_credential"
	KindRateLimited       ErrorKind = "rate_limited"
	KindQuotaExceeded     ErrorKind = "quota_exceeded"
	KindModelNotFound     ErrorKind = "model_not_found"
	KindContentFiltered   ErrorKind = "content_filtered"
	KindTimeout           ErrorKind = "timeout"
	KindNetwork           ErrorKind = "network"
	KindUnknown           ErrorKind = "unknown"
)

// Error is a tagged completion failure.
type Error struct {
	Kind     ErrorKind
	Provider string
	Message  string
	Err      error
}

func (e *Error) Error() string {
	msg := e.Message
	if msg == "" {
		msg = string(e.Kind)
	}
	return fmt.Sprintf("completion (%s): %s", e.Provider, msg)
}

func (e *Error) Unwrap() error { return e.Err }

// KindOf extracts the error kind, defaulting to unknown.
func KindOf(err error) ErrorKind {
	var ce *Error
	if errors.As(err, &ce) {
		return ce.Kind
	}
	return KindUnknown
}

func timeoutKind(err error) (ErrorKind, bool) {
	if errors.Is(err, context.DeadlineExceeded) || errors.Is(err, context.Canceled) {
		return KindTimeout, true
	}
	return "", false
}
