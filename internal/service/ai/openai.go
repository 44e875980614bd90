package ai

import (
	"context"
	"errors"
	"io"
	"net"
	"net/http"
	"strings"

	"github.com/sashabaranov/go-openai"

	"github.com/dkarpushin/tubechat/internal/model/chat"
)

// OpenAIProvider talks to any OpenAI-compatible completion API.
type OpenAIProvider struct {
	client *openai.Client
	model  string
}

// NewOpenAI builds a provider for the given credential, optional base
// URL override (OpenRouter and friends) and default model.
func NewOpenAI(apiKey, baseURL, model string) *OpenAIProvider {
	config := openai.DefaultConfig(apiKey)
	if baseURL != "" {
		config.BaseURL = baseURL
	}
	return &OpenAIProvider{
		client: openai.NewClientWithConfig(config),
		model:  model,
	}
}

func (p *OpenAIProvider) Name() string { return "openai" }

// Complete runs one chat completion call.
func (p *OpenAIProvider) Complete(ctx context.Context, messages []chat.ContextMessage, opts Options) (Completion, error) {
	resp, err := p.client.CreateChatCompletion(ctx, p.buildRequest(messages, opts, false))
	if err != nil {
		return Completion{}, p.classify(err)
	}
	if len(resp.Choices) == 0 {
		return Completion{}, &Error{Kind: KindUnknown, Provider: p.Name(), Message: "empty choices in response"}
	}

	choice := resp.Choices[0]
	if choice.FinishReason == openai.FinishReasonContentFilter {
		return Completion{}, &Error{Kind: KindContentFiltered, Provider: p.Name(), Message: "response blocked by content filter"}
	}

	return Completion{
		Content: choice.Message.Content,
		Model:   resp.Model,
		Usage: Usage{
			PromptTokens:     resp.Usage.PromptTokens,
			CompletionTokens: resp.Usage.CompletionTokens,
			TotalTokens:      resp.Usage.TotalTokens,
		},
	}, nil
}

// Stream runs a streaming completion, emitting each content delta.
func (p *OpenAIProvider) Stream(ctx context.Context, messages []chat.ContextMessage, opts Options, emit func(chunk string) error) (Completion, error) {
	req := p.buildRequest(messages, opts, true)
	stream, err := p.client.CreateChatCompletionStream(ctx, req)
	if err != nil {
		return Completion{}, p.classify(err)
	}
	defer stream.Close()

	var content strings.Builder
	result := Completion{Model: req.Model}
	for {
		resp, recvErr := stream.Recv()
		if errors.Is(recvErr, io.EOF) {
			break
		}
		if recvErr != nil {
			return Completion{}, p.classify(recvErr)
		}

		if resp.Usage != nil {
			result.Usage = Usage{
				PromptTokens:     resp.Usage.PromptTokens,
				CompletionTokens: resp.Usage.CompletionTokens,
				TotalTokens:      resp.Usage.TotalTokens,
			}
		}
		if len(resp.Choices) == 0 {
			continue
		}
		delta := resp.Choices[0].Delta.Content
		if delta == "" {
			continue
		}
		content.WriteString(delta)
		if err := emit(delta); err != nil {
			return Completion{}, err
		}
	}

	result.Content = content.String()
	return result, nil
}

func (p *OpenAIProvider) buildRequest(messages []chat.ContextMessage, opts Options, stream bool) openai.ChatCompletionRequest {
	oaMsgs := make([]openai.ChatCompletionMessage, 0, len(messages))
	for _, m := range messages {
		oaMsgs = append(oaMsgs, openai.ChatCompletionMessage{Role: m.Role, Content: m.Content})
	}

	req := openai.ChatCompletionRequest{
		Model:    p.model,
		Messages: oaMsgs,
		Stream:   stream,
	}
	if opts.Model != "" {
		req.Model = opts.Model
	}
	if opts.Temperature != nil {
		req.Temperature = *opts.Temperature
	}
	if opts.MaxTokens != nil {
		req.MaxTokens = *opts.MaxTokens
	}
	if stream {
		req.StreamOptions = &openai.StreamOptions{IncludeUsage: true}
	}
	return req
}

// classify converts go-openai errors into tagged kinds using the typed
// APIError the library exposes.
func (p *OpenAIProvider) classify(err error) error {
	if kind, ok := timeoutKind(err); ok {
		return &Error{Kind: kind, Provider: p.Name(), Message: "completion call timed out", Err: err}
	}

	var apiErr *openai.APIError
	if errors.As(err, &apiErr) {
		kind := KindUnknown
		code, _ := apiErr.Code.(string)
		switch apiErr.HTTPStatusCode {
		case http.StatusUnauthorized, http.StatusForbidden:
			kind = KindInvalidCredential
		case http.StatusNotFound:
			kind = KindModelNotFound
		case http.StatusTooManyRequests:
			if code == "insufficient_quota" {
				kind = KindQuotaExceeded
			} else {
				kind = KindRateLimited
			}
		case http.StatusBadRequest:
			if code == "content_policy_violation" || strings.Contains(strings.ToLower(apiErr.Message), "content") {
				kind = KindContentFiltered
			}
		case http.StatusBadGateway, http.StatusServiceUnavailable, http.StatusGatewayTimeout:
			kind = KindNetwork
		}
		return &Error{Kind: kind, Provider: p.Name(), Message: apiErr.Message, Err: err}
	}

	var netErr net.Error
	if errors.As(err, &netErr) {
		kind := KindNetwork
		if netErr.Timeout() {
			kind = KindTimeout
		}
		return &Error{Kind: kind, Provider: p.Name(), Message: "network failure", Err: err}
	}

	return &Error{Kind: KindUnknown, Provider: p.Name(), Message: err.Error(), Err: err}
}
