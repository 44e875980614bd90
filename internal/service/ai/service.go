package ai

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/dkarpushin/tubechat/internal/logger"
	"github.com/dkarpushin/tubechat/internal/model/chat"
	"github.com/dkarpushin/tubechat/internal/prompt"
	chatservice "github.com/dkarpushin/tubechat/internal/service/chat"
)

// ErrInvalidSession signals that a stored session failed the
// structural gate before context building.
var ErrInvalidSession = errors.New("session failed validation")

// TurnRequest describes one chat turn. SessionID wins over VideoID;
// when SessionID is empty a session is created for VideoID first.
type TurnRequest struct {
	SessionID   string
	VideoID     string
	Language    string
	Message     string
	Model       string
	Temperature *float32
	MaxTokens   *int
}

// TurnResult is the outcome of one completed chat turn.
type TurnResult struct {
	SessionID string       `json:"sessionId"`
	Message   chat.Message `json:"message"`
	Usage     Usage        `json:"usage"`
	Model     string       `json:"model"`
}

// Service turns user messages into grounded assistant replies: it
// resolves the session, builds and trims the context, calls the
// provider and appends the reply.
type Service struct {
	provider      Provider
	sessions      *chatservice.Service
	contextBudget int
	defaults      Options
}

// NewService wires a completion provider to the session store.
// contextBudget is the token budget handed to the trimmer; defaults
// fill sampling parameters a request leaves unset.
func NewService(provider Provider, sessions *chatservice.Service, contextBudget int, defaults Options) *Service {
	if contextBudget <= 0 {
		contextBudget = 6000
	}
	return &Service{provider: provider, sessions: sessions, contextBudget: contextBudget, defaults: defaults}
}

// Chat executes one turn. The user message is appended only after the
// session resolves and validates; the assistant message is appended
// only after a successful completion, so a failed call leaves the user
// message in place and nothing half-applied.
func (s *Service) Chat(ctx context.Context, req TurnRequest) (*TurnResult, error) {
	return s.run(ctx, req, nil)
}

// StreamChat executes one turn, emitting content chunks through emit
// as the provider generates them. Persistence rules match Chat.
func (s *Service) StreamChat(ctx context.Context, req TurnRequest, emit func(chunk string) error) (*TurnResult, error) {
	return s.run(ctx, req, emit)
}

func (s *Service) run(ctx context.Context, req TurnRequest, emit func(chunk string) error) (*TurnResult, error) {
	session, err := s.sessions.GetOrCreate(ctx, req.SessionID, req.VideoID, req.Language)
	if err != nil {
		return nil, err
	}

	if v := chatservice.Validate(session); !v.IsValid {
		return nil, fmt.Errorf("%w: %s", ErrInvalidSession, strings.Join(v.Errors, "; "))
	}

	if _, err := s.sessions.Append(session.ID, chat.RoleUser, req.Message); err != nil {
		return nil, err
	}

	// Re-read so the context window includes the user message.
	session, err = s.sessions.Get(session.ID)
	if err != nil {
		return nil, err
	}

	messages := prompt.BuildContext(session, true)
	trimmed := prompt.TrimToBudget(messages, s.contextBudget)
	if dropped := len(messages) - len(trimmed); dropped > 0 {
		logger.Log.Debugf("[ai] trimmed %d messages from context for session=%s", dropped, session.ID)
	}

	opts := Options{Model: req.Model, Temperature: req.Temperature, MaxTokens: req.MaxTokens}
	if opts.Model == "" {
		opts.Model = s.defaults.Model
	}
	if opts.Temperature == nil {
		opts.Temperature = s.defaults.Temperature
	}
	if opts.MaxTokens == nil {
		opts.MaxTokens = s.defaults.MaxTokens
	}
	var completion Completion
	if emit != nil {
		completion, err = s.provider.Stream(ctx, trimmed, opts, emit)
	} else {
		completion, err = s.provider.Complete(ctx, trimmed, opts)
	}
	if err != nil {
		return nil, err
	}

	assistantMsg, err := s.sessions.Append(session.ID, chat.RoleAssistant, completion.Content)
	if err != nil {
		return nil, err
	}

	logger.Log.Infof("[ai] completed turn session=%s provider=%s tokens=%d", session.ID, s.provider.Name(), completion.Usage.TotalTokens)
	return &TurnResult{
		SessionID: session.ID,
		Message:   assistantMsg,
		Usage:     completion.Usage,
		Model:     completion.Model,
	}, nil
}
