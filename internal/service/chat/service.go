// Package chat owns chat-session state for the lifetime of the
// process: creation (including the transcript fetch), append-only
// message logs, expiry and statistics.
package chat

import (
	"context"
	"errors"
	"math/rand"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/dkarpushin/tubechat/internal/logger"
	"github.com/dkarpushin/tubechat/internal/model/chat"
	transcriptservice "github.com/dkarpushin/tubechat/internal/service/transcript"
)

var (
	ErrSessionNotFound = errors.New("session not found")
	ErrVideoRequired   = errors.New("video id is required")
)

// Service is the process-wide session store. The map is the only
// shared mutable state; every read-modify-write on a session happens
// under the store lock, so concurrent appends to the same session
// never lose updates.
type Service struct {
	mu       sync.RWMutex
	sessions map[string]*chat.Session

	transcripts     *transcriptservice.Service
	maxAge          time.Duration
	reapProbability float64
}

// NewService bootstraps the in-memory session store. maxAge bounds how
// long an idle session survives; reapProbability is the per-request
// chance that MaybeReap sweeps the store.
func NewService(transcripts *transcriptservice.Service, maxAge time.Duration, reapProbability float64) *Service {
	return &Service{
		sessions:        make(map[string]*chat.Session),
		transcripts:     transcripts,
		maxAge:          maxAge,
		reapProbability: reapProbability,
	}
}

// GetOrCreate returns the session for sessionID when it exists.
// Otherwise it synthesizes a new session for videoID: the transcript
// is fetched first (with language fallback), so a failed fetch never
// leaves a half-initialized session in the store.
func (s *Service) GetOrCreate(ctx context.Context, sessionID, videoID, language string) (*chat.Session, error) {
	if sessionID != "" {
		s.mu.RLock()
		session, ok := s.sessions[sessionID]
		s.mu.RUnlock()
		if ok {
			return snapshot(session), nil
		}
	}

	if videoID == "" {
		if sessionID != "" {
			return nil, ErrSessionNotFound
		}
		return nil, ErrVideoRequired
	}

	video, err := s.transcripts.Fetch(ctx, videoID, language)
	if err != nil {
		return nil, err
	}

	now := time.Now().UTC()
	session := &chat.Session{
		ID:         uuid.NewString(),
		VideoID:    video.VideoID,
		VideoTitle: video.Title,
		VideoURL:   transcriptservice.WatchURL(video.VideoID),
		Transcript: video.Segments,
		Messages:   make([]chat.Message, 0, 16),
		CreatedAt:  now,
		UpdatedAt:  now,
	}

	s.mu.Lock()
	s.sessions[session.ID] = session
	s.mu.Unlock()

	logger.Log.Infof("[session] created id=%s video=%s segments=%d", session.ID, session.VideoID, len(session.Transcript))
	return snapshot(session), nil
}

// Get returns a copy of the session.
func (s *Service) Get(sessionID string) (*chat.Session, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	session, ok := s.sessions[sessionID]
	if !ok {
		return nil, ErrSessionNotFound
	}
	return snapshot(session), nil
}

// Append adds one message to the session log and bumps UpdatedAt.
// There is no cap on stored history; only context building trims.
func (s *Service) Append(sessionID, role, content string) (chat.Message, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	session, ok := s.sessions[sessionID]
	if !ok {
		return chat.Message{}, ErrSessionNotFound
	}

	msg := chat.Message{
		ID:         uuid.NewString(),
		Role:       role,
		Content:    content,
		VideoID:    session.VideoID,
		VideoTitle: session.VideoTitle,
		CreatedAt:  time.Now().UTC(),
	}
	session.Messages = append(session.Messages, msg)
	if msg.CreatedAt.After(session.UpdatedAt) {
		session.UpdatedAt = msg.CreatedAt
	}
	return msg, nil
}

// Delete removes the session, reporting whether it existed.
func (s *Service) Delete(sessionID string) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.sessions[sessionID]; !ok {
		return false
	}
	delete(s.sessions, sessionID)
	return true
}

// Reap deletes every session whose UpdatedAt is strictly older than
// now-maxAge and returns the number removed.
func (s *Service) Reap(maxAge time.Duration) int {
	cutoff := time.Now().UTC().Add(-maxAge)

	s.mu.Lock()
	defer s.mu.Unlock()

	removed := 0
	for id, session := range s.sessions {
		if session.UpdatedAt.Before(cutoff) {
			delete(s.sessions, id)
			removed++
		}
	}
	return removed
}

// MaybeReap rolls the configured probability and sweeps expired
// sessions on a hit. Running it inline on a fraction of requests
// bounds memory growth without a dedicated timer.
func (s *Service) MaybeReap() {
	if s.reapProbability <= 0 || rand.Float64() >= s.reapProbability {
		return
	}
	if removed := s.Reap(s.maxAge); removed > 0 {
		logger.Log.Infof("[session] reaped %d expired sessions", removed)
	}
}

// MaxAge exposes the configured idle lifetime (used by the sweeper).
func (s *Service) MaxAge() time.Duration { return s.maxAge }

// Stats aggregates read-only counters for one session.
func (s *Service) Stats(sessionID string) (chat.Stats, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	session, ok := s.sessions[sessionID]
	if !ok {
		return chat.Stats{}, ErrSessionNotFound
	}

	stats := chat.Stats{
		TotalMessages:      len(session.Messages),
		TranscriptSegments: len(session.Transcript),
		SessionDurationMs:  session.UpdatedAt.Sub(session.CreatedAt).Milliseconds(),
		LastActivity:       session.UpdatedAt,
	}
	for _, msg := range session.Messages {
		switch msg.Role {
		case chat.RoleUser:
			stats.UserMessages++
		case chat.RoleAssistant:
			stats.AssistantMessages++
		}
	}
	for _, seg := range session.Transcript {
		stats.TotalTranscriptLength += len(seg.Text)
	}
	return stats, nil
}

// Validate is the defensive structural gate run before a session is
// used for context building.
func Validate(session *chat.Session) chat.Validation {
	v := chat.Validation{Errors: []string{}}
	if session == nil {
		v.Errors = append(v.Errors, "session is nil")
		return v
	}
	if session.ID == "" {
		v.Errors = append(v.Errors, "session id is missing")
	}
	if session.VideoID == "" {
		v.Errors = append(v.Errors, "video id is missing")
	}
	if session.Transcript == nil {
		v.Errors = append(v.Errors, "transcript is not initialized")
	}
	if session.Messages == nil {
		v.Errors = append(v.Errors, "message log is not initialized")
	}
	if session.CreatedAt.IsZero() {
		v.Errors = append(v.Errors, "creation timestamp is invalid")
	}
	v.IsValid = len(v.Errors) == 0
	return v
}

// snapshot copies the session so callers never observe concurrent
// mutation. The transcript slice is shared: it is immutable after
// creation.
func snapshot(session *chat.Session) *chat.Session {
	copied := *session
	copied.Messages = append([]chat.Message(nil), session.Messages...)
	return &copied
}
