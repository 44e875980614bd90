package ai_test

import (
	"context"
	"strings"
	"testing"
	"time"

	model "github.com/dkarpushin/tubechat/internal/model/chat"
	"github.com/dkarpushin/tubechat/internal/model/transcript"
	aiservice "github.com/dkarpushin/tubechat/internal/service/ai"
	chatservice "github.com/dkarpushin/tubechat/internal/service/chat"
	transcriptservice "github.com/dkarpushin/tubechat/internal/service/transcript"
)

type stubSource struct{}

func (stubSource) Fetch(_ context.Context, videoID, _ string) (*transcriptservice.Video, error) {
	return &transcriptservice.Video{
		VideoID:  videoID,
		Title:    "Test Video",
		Language: "en",
		Segments: transcript.FormatSegments([]transcript.RawSegment{
			{Start: "0", Duration: "2", Text: "hello"},
			{Start: "2", Duration: "3", Text: "world"},
		}),
	}, nil
}

type fakeProvider struct {
	reply    string
	err      error
	lastSeen []model.ContextMessage
}

func (f *fakeProvider) Name() string { return "fake" }

func (f *fakeProvider) Complete(_ context.Context, messages []model.ContextMessage, opts aiservice.Options) (aiservice.Completion, error) {
	f.lastSeen = messages
	if f.err != nil {
		return aiservice.Completion{}, f.err
	}
	return aiservice.Completion{
		Content: f.reply,
		Model:   opts.Model,
		Usage:   aiservice.Usage{PromptTokens: 10, CompletionTokens: 5, TotalTokens: 15},
	}, nil
}

func (f *fakeProvider) Stream(ctx context.Context, messages []model.ContextMessage, opts aiservice.Options, emit func(chunk string) error) (aiservice.Completion, error) {
	completion, err := f.Complete(ctx, messages, opts)
	if err != nil {
		return aiservice.Completion{}, err
	}
	for _, word := range strings.SplitAfter(completion.Content, " ") {
		if err := emit(word); err != nil {
			return aiservice.Completion{}, err
		}
	}
	return completion, nil
}

func newTestStack(provider aiservice.Provider) (*aiservice.Service, *chatservice.Service) {
	transcripts := transcriptservice.NewService(stubSource{}, []string{"en"})
	sessions := chatservice.NewService(transcripts, time.Hour, 0)
	svc := aiservice.NewService(provider, sessions, 6000, aiservice.Options{Model: "gpt-4o-mini"})
	return svc, sessions
}

func TestChatHappyPath(t *testing.T) {
	provider := &fakeProvider{reply: "the video greets the world"}
	svc, sessions := newTestStack(provider)

	result, err := svc.Chat(context.Background(), aiservice.TurnRequest{
		VideoID: "dQw4w9WgXcQ",
		Message: "what does the video say?",
	})
	if err != nil {
		t.Fatalf("Chat err: %v", err)
	}
	if result.Message.Role != model.RoleAssistant || result.Message.Content != provider.reply {
		t.Fatalf("unexpected assistant message: %+v", result.Message)
	}
	if result.Usage.TotalTokens != 15 {
		t.Fatalf("usage not propagated: %+v", result.Usage)
	}
	if result.Model != "gpt-4o-mini" {
		t.Fatalf("default model not applied: %q", result.Model)
	}

	session, err := sessions.Get(result.SessionID)
	if err != nil {
		t.Fatalf("Get err: %v", err)
	}
	if len(session.Messages) != 2 {
		t.Fatalf("expected user + assistant messages, got %d", len(session.Messages))
	}
	if session.Messages[0].Role != model.RoleUser || session.Messages[1].Role != model.RoleAssistant {
		t.Fatalf("unexpected message roles: %+v", session.Messages)
	}
}

func TestChatContextIncludesSystemAndUserMessage(t *testing.T) {
	provider := &fakeProvider{reply: "sure"}
	svc, _ := newTestStack(provider)

	if _, err := svc.Chat(context.Background(), aiservice.TurnRequest{
		VideoID: "dQw4w9WgXcQ",
		Message: "summarize the video",
	}); err != nil {
		t.Fatalf("Chat err: %v", err)
	}

	if len(provider.lastSeen) != 2 {
		t.Fatalf("expected system + user context, got %d messages", len(provider.lastSeen))
	}
	if provider.lastSeen[0].Role != model.RoleSystem {
		t.Fatalf("system message must come first, got %s", provider.lastSeen[0].Role)
	}
	if !strings.Contains(provider.lastSeen[0].Content, "[0:00] hello") {
		t.Fatalf("system prompt missing transcript: %q", provider.lastSeen[0].Content)
	}
	if provider.lastSeen[1].Content != "summarize the video" {
		t.Fatalf("user message missing from context: %+v", provider.lastSeen[1])
	}
}

func TestChatFailedCompletionKeepsUserMessage(t *testing.T) {
	provider := &fakeProvider{err: &aiservice.Error{Kind: aiservice.KindRateLimited, Provider: "fake", Message: "slow down"}}
	goodProvider := &fakeProvider{reply: "ok"}

	goodSvc, sessions := newTestStack(goodProvider)
	created, err := goodSvc.Chat(context.Background(), aiservice.TurnRequest{
		VideoID: "dQw4w9WgXcQ",
		Message: "first turn",
	})
	if err != nil {
		t.Fatalf("setup Chat err: %v", err)
	}

	failing := aiservice.NewService(provider, sessions, 6000, aiservice.Options{})
	_, err = failing.Chat(context.Background(), aiservice.TurnRequest{
		SessionID: created.SessionID,
		Message:   "second turn",
	})
	if aiservice.KindOf(err) != aiservice.KindRateLimited {
		t.Fatalf("expected rate_limited, got %v", err)
	}

	session, err := sessions.Get(created.SessionID)
	if err != nil {
		t.Fatalf("Get err: %v", err)
	}
	// Two messages from the first turn plus the failed turn's user
	// message; no assistant message for the failure.
	if len(session.Messages) != 3 {
		t.Fatalf("expected 3 messages, got %d", len(session.Messages))
	}
	last := session.Messages[len(session.Messages)-1]
	if last.Role != model.RoleUser || last.Content != "second turn" {
		t.Fatalf("user message of the failed turn must persist: %+v", last)
	}
}

func TestStreamChatEmitsChunks(t *testing.T) {
	provider := &fakeProvider{reply: "hello streaming world"}
	svc, _ := newTestStack(provider)

	var chunks []string
	result, err := svc.StreamChat(context.Background(), aiservice.TurnRequest{
		VideoID: "dQw4w9WgXcQ",
		Message: "stream it",
	}, func(chunk string) error {
		chunks = append(chunks, chunk)
		return nil
	})
	if err != nil {
		t.Fatalf("StreamChat err: %v", err)
	}
	if len(chunks) == 0 {
		t.Fatal("expected emitted chunks")
	}
	if strings.Join(chunks, "") != provider.reply {
		t.Fatalf("chunks do not reassemble the reply: %q", strings.Join(chunks, ""))
	}
	if result.Message.Content != provider.reply {
		t.Fatalf("unexpected final message: %+v", result.Message)
	}
}

func TestChatRequestOptionsOverrideDefaults(t *testing.T) {
	provider := &fakeProvider{reply: "ok"}
	svc, _ := newTestStack(provider)

	result, err := svc.Chat(context.Background(), aiservice.TurnRequest{
		VideoID: "dQw4w9WgXcQ",
		Message: "hi",
		Model:   "gpt-4o",
	})
	if err != nil {
		t.Fatalf("Chat err: %v", err)
	}
	if result.Model != "gpt-4o" {
		t.Fatalf("request model must override default, got %q", result.Model)
	}
}
