package chat

import (
	"net/http"
	"strings"

	"github.com/go-chi/chi/v5"
	"github.com/gorilla/websocket"

	"github.com/dkarpushin/tubechat/internal/logger"
	aiservice "github.com/dkarpushin/tubechat/internal/service/ai"
	chatservice "github.com/dkarpushin/tubechat/internal/service/chat"
)

// WebSocketHandler serves a bidirectional chat connection: the client
// sends message frames, the server streams reply chunks back.
type WebSocketHandler struct {
	chatSvc  *chatservice.Service
	aiSvc    *aiservice.Service
	upgrader websocket.Upgrader
}

// NewWebSocketHandler creates the websocket chat handler.
func NewWebSocketHandler(chatSvc *chatservice.Service, aiSvc *aiservice.Service) *WebSocketHandler {
	return &WebSocketHandler{
		chatSvc: chatSvc,
		aiSvc:   aiSvc,
		upgrader: websocket.Upgrader{
			CheckOrigin: func(r *http.Request) bool {
				return true
			},
			ReadBufferSize:  1024,
			WriteBufferSize: 1024,
		},
	}
}

// RegisterRoutes mounts the websocket endpoint.
func (h *WebSocketHandler) RegisterRoutes(r chi.Router) {
	r.Get("/ws/{sessionID}", h.handleWebSocket)
}

type inboundFrame struct {
	Type    string `json:"type"`
	Message string `json:"message"`
}

type outboundFrame struct {
	Event     string                `json:"event"`
	SessionID string                `json:"sessionId,omitempty"`
	Content   string                `json:"content,omitempty"`
	Result    *aiservice.TurnResult `json:"result,omitempty"`
	Error     string                `json:"error,omitempty"`
	Code      string                `json:"code,omitempty"`
}

func (h *WebSocketHandler) handleWebSocket(w http.ResponseWriter, r *http.Request) {
	sessionID := chi.URLParam(r, "sessionID")
	if _, err := h.chatSvc.Get(sessionID); err != nil {
		http.Error(w, "session not found", http.StatusNotFound)
		return
	}

	conn, err := h.upgrader.Upgrade(w, r, nil)
	if err != nil {
		logger.Log.Warnf("[ws] upgrade failed for session=%s: %v", sessionID, err)
		return
	}
	defer conn.Close()

	logger.Log.Infof("[ws] connection opened session=%s", sessionID)

	for {
		var frame inboundFrame
		if err := conn.ReadJSON(&frame); err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseNormalClosure) {
				logger.Log.Warnf("[ws] read failed session=%s: %v", sessionID, err)
			}
			return
		}

		if frame.Type != "message" || strings.TrimSpace(frame.Message) == "" {
			h.write(conn, outboundFrame{Event: "error", Error: "expected a non-empty message frame", Code: "invalid_frame"})
			continue
		}

		result, err := h.aiSvc.StreamChat(r.Context(), aiservice.TurnRequest{
			SessionID: sessionID,
			Message:   strings.TrimSpace(frame.Message),
		}, func(chunk string) error {
			return conn.WriteJSON(outboundFrame{Event: "chunk", SessionID: sessionID, Content: chunk})
		})
		if err != nil {
			h.write(conn, outboundFrame{Event: "error", SessionID: sessionID, Error: "completion failed", Code: string(aiservice.KindOf(err))})
			continue
		}

		h.write(conn, outboundFrame{Event: "end", SessionID: sessionID, Result: result})
	}
}

func (h *WebSocketHandler) write(conn *websocket.Conn, frame outboundFrame) {
	if err := conn.WriteJSON(frame); err != nil {
		logger.Log.Warnf("[ws] write failed: %v", err)
	}
}
