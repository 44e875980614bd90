package chat

import (
	"encoding/json"
	"net/http"
	"strings"
	"time"

	"github.com/go-chi/chi/v5"

	"github.com/dkarpushin/tubechat/internal/handler/httperr"
	chatmodel "github.com/dkarpushin/tubechat/internal/model/chat"
	aiservice "github.com/dkarpushin/tubechat/internal/service/ai"
	chatservice "github.com/dkarpushin/tubechat/internal/service/chat"
	transcriptservice "github.com/dkarpushin/tubechat/internal/service/transcript"
	"github.com/dkarpushin/tubechat/pkg/utils"
)

const (
	maxMessageLength = 4000
	maxTokensCeiling = 16384
)

// Handler serves chat turns and session management.
type Handler struct {
	chatSvc *chatservice.Service
	aiSvc   *aiservice.Service
}

// New creates a chat handler. aiSvc may be nil when no completion
// provider is configured; chat turns then answer 503.
func New(chatSvc *chatservice.Service, aiSvc *aiservice.Service) *Handler {
	return &Handler{chatSvc: chatSvc, aiSvc: aiSvc}
}

// RegisterRoutes mounts the chat endpoints.
func (h *Handler) RegisterRoutes(r chi.Router) {
	r.Post("/chat", h.handleChat)
	r.Get("/session/{sessionID}", h.handleGetSession)
	r.Get("/session/{sessionID}/stats", h.handleGetStats)
	r.Delete("/session/{sessionID}", h.handleDeleteSession)
}

type chatRequest struct {
	SessionID   string   `json:"sessionId"`
	VideoID     string   `json:"videoId"`
	Language    string   `json:"language"`
	Message     string   `json:"message"`
	Model       string   `json:"model"`
	Temperature *float32 `json:"temperature"`
	MaxTokens   *int     `json:"maxTokens"`
}

// validate rejects malformed input before any external call is made.
func (req *chatRequest) validate() (code, detail string, ok bool) {
	req.Message = strings.TrimSpace(req.Message)
	if req.Message == "" {
		return "message_required", "message must not be empty", false
	}
	if len(req.Message) > maxMessageLength {
		return "message_too_long", "message exceeds the 4000 character limit", false
	}
	if req.Temperature != nil && (*req.Temperature < 0 || *req.Temperature > 2) {
		return "invalid_temperature", "temperature must be within [0,2]", false
	}
	if req.MaxTokens != nil && (*req.MaxTokens < 1 || *req.MaxTokens > maxTokensCeiling) {
		return "invalid_max_tokens", "maxTokens must be within [1,16384]", false
	}
	if req.SessionID == "" {
		videoID, found := transcriptservice.ExtractVideoID(req.VideoID)
		if !found {
			return "invalid_video_id", "videoId is not a valid YouTube video id or URL", false
		}
		req.VideoID = videoID
	}
	return "", "", true
}

func (h *Handler) handleChat(w http.ResponseWriter, r *http.Request) {
	defer h.chatSvc.MaybeReap()

	if h.aiSvc == nil {
		utils.RespondError(w, http.StatusServiceUnavailable, "ai_unavailable", "no completion provider is configured")
		return
	}

	var req chatRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		utils.RespondError(w, http.StatusBadRequest, "invalid_body", "invalid request body")
		return
	}
	if code, detail, ok := req.validate(); !ok {
		utils.RespondError(w, http.StatusBadRequest, code, detail)
		return
	}

	result, err := h.aiSvc.Chat(r.Context(), aiservice.TurnRequest{
		SessionID:   req.SessionID,
		VideoID:     req.VideoID,
		Language:    req.Language,
		Message:     req.Message,
		Model:       req.Model,
		Temperature: req.Temperature,
		MaxTokens:   req.MaxTokens,
	})
	if err != nil {
		httperr.Write(w, err)
		return
	}

	utils.RespondJSON(w, http.StatusOK, result)
}

type sessionResponse struct {
	ID         string              `json:"id"`
	VideoID    string              `json:"videoId"`
	VideoTitle string              `json:"videoTitle"`
	VideoURL   string              `json:"videoUrl"`
	CreatedAt  time.Time           `json:"createdAt"`
	UpdatedAt  time.Time           `json:"updatedAt"`
	Messages   []chatmodel.Message `json:"messages"`
}

func (h *Handler) handleGetSession(w http.ResponseWriter, r *http.Request) {
	session, err := h.chatSvc.Get(chi.URLParam(r, "sessionID"))
	if err != nil {
		httperr.Write(w, err)
		return
	}

	// The transcript is omitted: it can be large and the transcript
	// endpoint already serves it.
	utils.RespondJSON(w, http.StatusOK, sessionResponse{
		ID:         session.ID,
		VideoID:    session.VideoID,
		VideoTitle: session.VideoTitle,
		VideoURL:   session.VideoURL,
		CreatedAt:  session.CreatedAt,
		UpdatedAt:  session.UpdatedAt,
		Messages:   session.Messages,
	})
}

func (h *Handler) handleGetStats(w http.ResponseWriter, r *http.Request) {
	stats, err := h.chatSvc.Stats(chi.URLParam(r, "sessionID"))
	if err != nil {
		httperr.Write(w, err)
		return
	}
	utils.RespondJSON(w, http.StatusOK, stats)
}

func (h *Handler) handleDeleteSession(w http.ResponseWriter, r *http.Request) {
	if !h.chatSvc.Delete(chi.URLParam(r, "sessionID")) {
		utils.RespondError(w, http.StatusNotFound, "session_not_found", "session not found")
		return
	}
	utils.RespondJSON(w, http.StatusOK, map[string]string{"status": "deleted"})
}
