package ai

import (
	"context"
	"errors"
	"io"
	"strings"

	"github.com/cloudwego/eino/components/model"
	"github.com/cloudwego/eino/schema"

	"github.com/dkarpushin/tubechat/internal/model/chat"
)

// ArkProvider runs completions through a Volcengine Ark chat model via
// the eino model abstraction.
type ArkProvider struct {
	chatModel model.ChatModel
}

// NewArk wraps an already-constructed eino chat model.
func NewArk(chatModel model.ChatModel) *ArkProvider {
	return &ArkProvider{chatModel: chatModel}
}

func (p *ArkProvider) Name() string { return "ark" }

// Complete runs one generation call.
func (p *ArkProvider) Complete(ctx context.Context, messages []chat.ContextMessage, opts Options) (Completion, error) {
	resp, err := p.chatModel.Generate(ctx, toSchemaMessages(messages), p.callOptions(opts)...)
	if err != nil {
		return Completion{}, p.classify(err)
	}
	return Completion{
		Content: resp.Content,
		Model:   opts.Model,
		Usage:   usageFromMeta(resp.ResponseMeta),
	}, nil
}

// Stream emits generated chunks as they arrive.
func (p *ArkProvider) Stream(ctx context.Context, messages []chat.ContextMessage, opts Options, emit func(chunk string) error) (Completion, error) {
	stream, err := p.chatModel.Stream(ctx, toSchemaMessages(messages), p.callOptions(opts)...)
	if err != nil {
		return Completion{}, p.classify(err)
	}
	defer stream.Close()

	var content strings.Builder
	result := Completion{Model: opts.Model}
	for {
		chunk, recvErr := stream.Recv()
		if errors.Is(recvErr, io.EOF) {
			break
		}
		if recvErr != nil {
			return Completion{}, p.classify(recvErr)
		}
		if chunk == nil {
			continue
		}

		if chunk.ResponseMeta != nil && chunk.ResponseMeta.Usage != nil {
			result.Usage = usageFromMeta(chunk.ResponseMeta)
		}
		if chunk.Content == "" {
			continue
		}
		content.WriteString(chunk.Content)
		if err := emit(chunk.Content); err != nil {
			return Completion{}, err
		}
	}

	result.Content = content.String()
	return result, nil
}

func (p *ArkProvider) callOptions(opts Options) []model.Option {
	var callOpts []model.Option
	if opts.Model != "" {
		callOpts = append(callOpts, model.WithModel(opts.Model))
	}
	if opts.Temperature != nil {
		callOpts = append(callOpts, model.WithTemperature(*opts.Temperature))
	}
	if opts.MaxTokens != nil {
		callOpts = append(callOpts, model.WithMaxTokens(*opts.MaxTokens))
	}
	return callOpts
}

// classify maps Ark failures onto tagged kinds. The SDK surfaces bare
// error strings, so this boundary is the one place message matching is
// tolerated.
func (p *ArkProvider) classify(err error) error {
	if kind, ok := timeoutKind(err); ok {
		return &Error{Kind: kind, Provider: p.Name(), Message: "completion call timed out", Err: err}
	}

	msg := strings.ToLower(err.Error())
	kind := KindUnknown
	switch {
	case strings.Contains(msg, "authentication") || strings.Contains(msg, "api key") || strings.Contains(msg, "401"):
		kind = KindInvalidCredential
	case strings.Contains(msg, "quota"):
		kind = KindQuotaExceeded
	case strings.Contains(msg, "rate") || strings.Contains(msg, "429"):
		kind = KindRateLimited
	case strings.Contains(msg, "model") && (strings.Contains(msg, "not found") || strings.Contains(msg, "does not exist")):
		kind = KindModelNotFound
	case strings.Contains(msg, "content filter") || strings.Contains(msg, "sensitive"):
		kind = KindContentFiltered
	case strings.Contains(msg, "connection") || strings.Contains(msg, "timeout") || strings.Contains(msg, "network"):
		kind = KindNetwork
	}
	return &Error{Kind: kind, Provider: p.Name(), Message: err.Error(), Err: err}
}

func toSchemaMessages(messages []chat.ContextMessage) []*schema.Message {
	out := make([]*schema.Message, 0, len(messages))
	for _, m := range messages {
		switch m.Role {
		case chat.RoleSystem:
			out = append(out, schema.SystemMessage(m.Content))
		case chat.RoleAssistant:
			out = append(out, schema.AssistantMessage(m.Content, nil))
		default:
			out = append(out, schema.UserMessage(m.Content))
		}
	}
	return out
}

func usageFromMeta(meta *schema.ResponseMeta) Usage {
	if meta == nil || meta.Usage == nil {
		return Usage{}
	}
	return Usage{
		PromptTokens:     meta.Usage.PromptTokens,
		CompletionTokens: meta.Usage.CompletionTokens,
		TotalTokens:      meta.Usage.TotalTokens,
	}
}
