package handler

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/rs/cors"

	chathandler "github.com/dkarpushin/tubechat/internal/handler/chat"
	"github.com/dkarpushin/tubechat/internal/handler/httperr"
	streamhandler "github.com/dkarpushin/tubechat/internal/handler/stream"
	transcripthandler "github.com/dkarpushin/tubechat/internal/handler/transcript"
	"github.com/dkarpushin/tubechat/internal/logger"
	aiservice "github.com/dkarpushin/tubechat/internal/service/ai"
	chatservice "github.com/dkarpushin/tubechat/internal/service/chat"
	transcriptservice "github.com/dkarpushin/tubechat/internal/service/transcript"
	"github.com/dkarpushin/tubechat/pkg/utils"
)

// NewRouter wires HTTP routes to core services. aiSvc may be nil when
// no completion provider is configured; chat-producing routes then
// answer 503.
func NewRouter(chatSvc *chatservice.Service, aiSvc *aiservice.Service, transcripts *transcriptservice.Service) http.Handler {
	r := chi.NewRouter()

	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(middleware.Recoverer)
	r.Use(cors.New(cors.Options{
		AllowedOrigins: []string{"*"},
		AllowedMethods: []string{http.MethodGet, http.MethodPost, http.MethodDelete, http.MethodOptions},
		AllowedHeaders: []string{"Accept", "Content-Type"},
	}).Handler)

	transcriptHandler := transcripthandler.New(transcripts)
	chatHandler := chathandler.New(chatSvc, aiSvc)

	var streamHandler *streamhandler.Handler
	if aiSvc != nil {
		streamHandler = streamhandler.New(aiSvc, chatSvc)
	}

	r.Route("/api", func(api chi.Router) {
		transcriptHandler.RegisterRoutes(api)
		chatHandler.RegisterRoutes(api)

		if aiSvc != nil {
			chathandler.NewWebSocketHandler(chatSvc, aiSvc).RegisterRoutes(api)
		}

		api.Get("/stream/{sessionID}", func(w http.ResponseWriter, r *http.Request) {
			if streamHandler == nil {
				utils.RespondError(w, http.StatusServiceUnavailable, "ai_unavailable", "no completion provider is configured")
				return
			}

			userMessage := r.URL.Query().Get("message")
			if userMessage == "" {
				utils.RespondError(w, http.StatusBadRequest, "message_required", "message query parameter is required")
				return
			}

			sessionID := chi.URLParam(r, "sessionID")
			if _, err := chatSvc.Get(sessionID); err != nil {
				httperr.Write(w, err)
				return
			}

			if err := streamHandler.HandleStreamRequest(r.Context(), w, sessionID, userMessage); err != nil {
				// Failures after the stream opens are reported as SSE
				// error events by the handler itself.
				logger.Log.Warnf("[stream] request failed session=%s: %v", sessionID, err)
			}
			chatSvc.MaybeReap()
		})
	})

	return r
}
