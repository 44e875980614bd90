// Package httperr maps tagged domain errors onto outward HTTP status
// semantics in one place, so handlers stay thin.
package httperr

import (
	"errors"
	"net/http"

	"github.com/dkarpushin/tubechat/internal/logger"
	aiservice "github.com/dkarpushin/tubechat/internal/service/ai"
	chatservice "github.com/dkarpushin/tubechat/internal/service/chat"
	transcriptservice "github.com/dkarpushin/tubechat/internal/service/transcript"
	"github.com/dkarpushin/tubechat/pkg/utils"
)

// Write classifies err and writes the matching status, code and
// detail. Unclassified failures degrade to a generic internal error
// without leaking internals.
func Write(w http.ResponseWriter, err error) {
	status, code, detail := classify(err)
	if status == http.StatusInternalServerError {
		logger.Log.Errorf("[http] internal error: %v", err)
	}
	utils.RespondError(w, status, code, detail)
}

func classify(err error) (int, string, string) {
	switch {
	case errors.Is(err, chatservice.ErrSessionNotFound):
		return http.StatusNotFound, "session_not_found", "session not found"
	case errors.Is(err, chatservice.ErrVideoRequired):
		return http.StatusBadRequest, "video_required", "videoId is required to start a session"
	case errors.Is(err, aiservice.ErrInvalidSession):
		return http.StatusBadRequest, "invalid_session", err.Error()
	}

	var te *transcriptservice.Error
	if errors.As(err, &te) {
		return transcriptStatus(te.Kind), string(te.Kind), te.Error()
	}

	var ce *aiservice.Error
	if errors.As(err, &ce) {
		return completionStatus(ce.Kind), string(ce.Kind), completionDetail(ce.Kind)
	}

	return http.StatusInternalServerError, "internal_error", "internal error"
}

func transcriptStatus(kind transcriptservice.ErrorKind) int {
	switch kind {
	case transcriptservice.KindVideoNotFound,
		transcriptservice.KindNoCaptions,
		transcriptservice.KindLanguageUnavailable:
		return http.StatusNotFound
	case transcriptservice.KindVideoPrivate, transcriptservice.KindRegionBlocked:
		return http.StatusForbidden
	case transcriptservice.KindRateLimited:
		return http.StatusTooManyRequests
	default:
		return http.StatusBadGateway
	}
}

func completionStatus(kind aiservice.ErrorKind) int {
	switch kind {
	case aiservice.KindRateLimited, aiservice.KindQuotaExceeded:
		return http.StatusTooManyRequests
	case aiservice.KindContentFiltered:
		return http.StatusUnprocessableEntity
	case aiservice.KindTimeout:
		return http.StatusGatewayTimeout
	case aiservice.KindInvalidCredential,
		aiservice.KindModelNotFound,
		aiservice.KindNetwork:
		return http.StatusBadGateway
	default:
		return http.StatusInternalServerError
	}
}

// completionDetail keeps upstream provider messages out of responses;
// the code is enough for clients to act on.
func completionDetail(kind aiservice.ErrorKind) string {
	switch kind {
	case aiservice.KindRateLimited:
		return "completion service is rate limited, retry later"
	case aiservice.KindQuotaExceeded:
		return "completion quota exhausted"
	case aiservice.KindContentFiltered:
		return "response was blocked by the content filter"
	case aiservice.KindTimeout:
		return "completion call timed out"
	case aiservice.KindInvalidCredential:
		return "completion service rejected the configured credential"
	case aiservice.KindModelNotFound:
		return "configured model is not available"
	case aiservice.KindNetwork:
		return "completion service is unreachable"
	default:
		return "completion failed"
	}
}
