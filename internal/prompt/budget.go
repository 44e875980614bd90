package prompt

import "github.com/dkarpushin/tubechat/internal/model/chat"

// charsPerToken drives the token estimate. English text averages about
// four characters per token, which is close enough for a trimming
// heuristic; this is not billing-grade accounting. Swapping in a real
// tokenizer only requires changing EstimateTokens.
const charsPerToken = 4

// EstimateTokens approximates the token cost of text as
// ceil(len/charsPerToken).
func EstimateTokens(text string) int {
	return (len(text) + charsPerToken - 1) / charsPerToken
}

// TotalTokens sums the per-message estimates.
func TotalTokens(messages []chat.ContextMessage) int {
	total := 0
	for _, msg := range messages {
		total += EstimateTokens(msg.Content)
	}
	return total
}

// TrimToBudget drops the oldest non-system messages until the estimate
// fits maxTokens. A leading system message is never removed, even when
// it alone exceeds the budget: grounding context outranks history
// depth, and the caller must allow for that overflow. The function is
// idempotent.
func TrimToBudget(messages []chat.ContextMessage, maxTokens int) []chat.ContextMessage {
	if TotalTokens(messages) <= maxTokens {
		return messages
	}

	trimmed := append([]chat.ContextMessage(nil), messages...)
	oldest := 0
	if len(trimmed) > 0 && trimmed[0].Role == chat.RoleSystem {
		oldest = 1
	}

	for TotalTokens(trimmed) > maxTokens && len(trimmed) > 1 {
		trimmed = append(trimmed[:oldest], trimmed[oldest+1:]...)
	}
	return trimmed
}
