// Package stream serves chat turns over Server-Sent Events.
package stream

import (
	"context"
	"fmt"
	"net/http"

	aiservice "github.com/dkarpushin/tubechat/internal/service/ai"
	chatservice "github.com/dkarpushin/tubechat/internal/service/chat"
	"github.com/dkarpushin/tubechat/pkg/utils"
)

// Handler streams assistant replies chunk by chunk.
type Handler struct {
	aiSvc   *aiservice.Service
	chatSvc *chatservice.Service
}

// New creates a stream handler.
func New(aiSvc *aiservice.Service, chatSvc *chatservice.Service) *Handler {
	return &Handler{aiSvc: aiSvc, chatSvc: chatSvc}
}

// Event is one SSE payload.
type Event struct {
	Event     string                `json:"event"`
	SessionID string                `json:"sessionId,omitempty"`
	Content   string                `json:"content,omitempty"`
	Result    *aiservice.TurnResult `json:"result,omitempty"`
	Finished  bool                  `json:"finished,omitempty"`
	Error     string                `json:"error,omitempty"`
	Code      string                `json:"code,omitempty"`
}

// HandleStreamRequest runs one chat turn for an existing session,
// emitting start, chunk and end events.
func (h *Handler) HandleStreamRequest(ctx context.Context, w http.ResponseWriter, sessionID, userMessage string) error {
	flusher, ok := w.(http.Flusher)
	if !ok {
		return fmt.Errorf("streaming unsupported")
	}

	if _, err := h.chatSvc.Get(sessionID); err != nil {
		return err
	}

	utils.SetupSSEHeaders(w)
	utils.SendSSEChunk(w, flusher, Event{Event: "start", SessionID: sessionID})

	result, err := h.aiSvc.StreamChat(ctx, aiservice.TurnRequest{
		SessionID: sessionID,
		Message:   userMessage,
	}, func(chunk string) error {
		utils.SendSSEChunk(w, flusher, Event{Event: "chunk", SessionID: sessionID, Content: chunk})
		return nil
	})
	if err != nil {
		utils.SendSSEChunk(w, flusher, Event{
			Event:     "error",
			SessionID: sessionID,
			Error:     "completion failed",
			Code:      string(aiservice.KindOf(err)),
		})
		return err
	}

	utils.SendSSEChunk(w, flusher, Event{Event: "end", SessionID: sessionID, Result: result, Finished: true})
	return nil
}
