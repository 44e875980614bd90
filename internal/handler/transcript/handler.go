package transcript

import (
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"

	"github.com/dkarpushin/tubechat/internal/analysis/relevance"
	"github.com/dkarpushin/tubechat/internal/handler/httperr"
	transcriptmodel "github.com/dkarpushin/tubechat/internal/model/transcript"
	transcriptservice "github.com/dkarpushin/tubechat/internal/service/transcript"
	"github.com/dkarpushin/tubechat/pkg/utils"
)

const (
	defaultSearchLimit = 5
	maxSearchLimit     = 50
)

// Handler serves transcript retrieval and relevance search.
type Handler struct {
	transcripts *transcriptservice.Service
}

// New creates a transcript handler.
func New(transcripts *transcriptservice.Service) *Handler {
	return &Handler{transcripts: transcripts}
}

// RegisterRoutes mounts the transcript endpoints.
func (h *Handler) RegisterRoutes(r chi.Router) {
	r.Get("/transcript/{videoID}", h.handleGetTranscript)
	r.Get("/transcript/{videoID}/search", h.handleSearchTranscript)
}

func (h *Handler) handleGetTranscript(w http.ResponseWriter, r *http.Request) {
	videoID, ok := transcriptservice.ExtractVideoID(chi.URLParam(r, "videoID"))
	if !ok {
		utils.RespondError(w, http.StatusBadRequest, "invalid_video_id", "videoID is not a valid YouTube video id or URL")
		return
	}

	format, err := transcriptmodel.ParseFormat(r.URL.Query().Get("format"))
	if err != nil {
		utils.RespondError(w, http.StatusBadRequest, "invalid_format", err.Error())
		return
	}

	video, err := h.transcripts.Fetch(r.Context(), videoID, r.URL.Query().Get("lang"))
	if err != nil {
		httperr.Write(w, err)
		return
	}

	content, err := transcriptmodel.Render(video.Segments, format)
	if err != nil {
		utils.RespondError(w, http.StatusBadRequest, "invalid_format", err.Error())
		return
	}

	utils.RespondJSON(w, http.StatusOK, map[string]any{
		"videoId":    video.VideoID,
		"videoTitle": video.Title,
		"language":   video.Language,
		"format":     format,
		"content":    content,
	})
}

func (h *Handler) handleSearchTranscript(w http.ResponseWriter, r *http.Request) {
	videoID, ok := transcriptservice.ExtractVideoID(chi.URLParam(r, "videoID"))
	if !ok {
		utils.RespondError(w, http.StatusBadRequest, "invalid_video_id", "videoID is not a valid YouTube video id or URL")
		return
	}

	query := r.URL.Query().Get("q")
	if query == "" {
		utils.RespondError(w, http.StatusBadRequest, "query_required", "q query parameter is required")
		return
	}

	limit := defaultSearchLimit
	if raw := r.URL.Query().Get("max"); raw != "" {
		parsed, err := strconv.Atoi(raw)
		if err != nil || parsed < 1 || parsed > maxSearchLimit {
			utils.RespondError(w, http.StatusBadRequest, "invalid_max", "max must be an integer within [1,50]")
			return
		}
		limit = parsed
	}

	video, err := h.transcripts.Fetch(r.Context(), videoID, r.URL.Query().Get("lang"))
	if err != nil {
		httperr.Write(w, err)
		return
	}

	segments := relevance.FindRelevantSegments(query, video.Segments, limit)
	utils.RespondJSON(w, http.StatusOK, map[string]any{
		"videoId":  video.VideoID,
		"query":    query,
		"segments": segments,
	})
}
