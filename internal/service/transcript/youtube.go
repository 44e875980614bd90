package transcript

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"golang.org/x/time/rate"

	model "github.com/dkarpushin/tubechat/internal/model/transcript"
)

const (
	playerEndpoint = "https://www.youtube.com/youtubei/v1/player"

	// Innertube identity of the Android client, which serves caption
	// tracks without consent cookies.
	innertubeClientName    = "ANDROID"
	innertubeClientVersion = "20.10.38"
	innertubeSDKVersion    = 30
)

// Client fetches caption transcripts from YouTube's innertube API.
// Calls are rate limited to stay under YouTube's abuse thresholds.
type Client struct {
	httpClient *http.Client
	limiter    *rate.Limiter
}

// NewClient builds a transcript client with the given request timeout
// and rate limit (requests per second with the given burst).
func NewClient(timeout time.Duration, rps float64, burst int) *Client {
	if rps <= 0 {
		rps = 2
	}
	if burst < 1 {
		burst = 1
	}
	return &Client{
		httpClient: &http.Client{Timeout: timeout},
		limiter:    rate.NewLimiter(rate.Limit(rps), burst),
	}
}

type playerRequest struct {
	Context struct {
		Client struct {
			ClientName        string `json:"clientName"`
			ClientVersion     string `json:"clientVersion"`
			AndroidSDKVersion int    `json:"androidSdkVersion"`
		} `json:"client"`
	} `json:"context"`
	VideoID string `json:"videoId"`
}

type playerResponse struct {
	PlayabilityStatus struct {
		Status string `json:"status"`
		Reason string `json:"reason"`
	} `json:"playabilityStatus"`
	VideoDetails struct {
		Title string `json:"title"`
	} `json:"videoDetails"`
	Captions struct {
		PlayerCaptionsTracklistRenderer struct {
			CaptionTracks []captionTrack `json:"captionTracks"`
		} `json:"playerCaptionsTracklistRenderer"`
	} `json:"captions"`
}

type captionTrack struct {
	BaseURL      string `json:"baseUrl"`
	LanguageCode string `json:"languageCode"`
	Kind         string `json:"kind"`
}

type timedText struct {
	Events []struct {
		StartMs    int64 `json:"tStartMs"`
		DurationMs int64 `json:"dDurationMs"`
		Segs       []struct {
			UTF8 string `json:"utf8"`
		} `json:"segs"`
	} `json:"events"`
}

// Fetch retrieves the caption transcript of videoID in the requested
// language. Failures carry a tagged kind; see ErrorKind.
func (c *Client) Fetch(ctx context.Context, videoID, language string) (*Video, error) {
	player, err := c.fetchPlayer(ctx, videoID)
	if err != nil {
		return nil, err
	}

	if err := classifyPlayability(videoID, player.PlayabilityStatus.Status, player.PlayabilityStatus.Reason); err != nil {
		return nil, err
	}

	tracks := player.Captions.PlayerCaptionsTracklistRenderer.CaptionTracks
	if len(tracks) == 0 {
		return nil, &Error{Kind: KindNoCaptions, VideoID: videoID, Message: "video has no caption tracks"}
	}

	track, ok := pickTrack(tracks, language)
	if !ok {
		return nil, &Error{
			Kind:     KindLanguageUnavailable,
			VideoID:  videoID,
			Language: language,
			Message:  "no caption track for requested language",
		}
	}

	raw, err := c.fetchTrack(ctx, videoID, track)
	if err != nil {
		return nil, err
	}

	return &Video{
		VideoID:  videoID,
		Title:    player.VideoDetails.Title,
		Language: track.LanguageCode,
		Segments: model.FormatSegments(raw),
	}, nil
}

func (c *Client) fetchPlayer(ctx context.Context, videoID string) (*playerResponse, error) {
	if err := c.limiter.Wait(ctx); err != nil {
		return nil, &Error{Kind: KindNetwork, VideoID: videoID, Message: "rate limiter wait aborted", Err: err}
	}

	var payload playerRequest
	payload.Context.Client.ClientName = innertubeClientName
	payload.Context.Client.ClientVersion = innertubeClientVersion
	payload.Context.Client.AndroidSDKVersion = innertubeSDKVersion
	payload.VideoID = videoID

	body, err := json.Marshal(payload)
	if err != nil {
		return nil, &Error{Kind: KindNetwork, VideoID: videoID, Message: "encode player request", Err: err}
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, playerEndpoint, bytes.NewReader(body))
	if err != nil {
		return nil, &Error{Kind: KindNetwork, VideoID: videoID, Message: "build player request", Err: err}
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("User-Agent", fmt.Sprintf("com.google.android.youtube/%s (Linux; U; Android 11)", innertubeClientVersion))

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, &Error{Kind: KindNetwork, VideoID: videoID, Message: "player request failed", Err: err}
	}
	defer resp.Body.Close()

	if resp.StatusCode == http.StatusTooManyRequests {
		return nil, &Error{Kind: KindRateLimited, VideoID: videoID, Message: "youtube rate limit"}
	}
	if resp.StatusCode != http.StatusOK {
		return nil, &Error{Kind: KindNetwork, VideoID: videoID, Message: fmt.Sprintf("player request status %d", resp.StatusCode)}
	}

	var player playerResponse
	if err := json.NewDecoder(resp.Body).Decode(&player); err != nil {
		return nil, &Error{Kind: KindNetwork, VideoID: videoID, Message: "decode player response", Err: err}
	}
	return &player, nil
}

func (c *Client) fetchTrack(ctx context.Context, videoID string, track captionTrack) ([]model.RawSegment, error) {
	if err := c.limiter.Wait(ctx); err != nil {
		return nil, &Error{Kind: KindNetwork, VideoID: videoID, Message: "rate limiter wait aborted", Err: err}
	}

	trackURL, err := url.Parse(track.BaseURL)
	if err != nil {
		return nil, &Error{Kind: KindNetwork, VideoID: videoID, Message: "parse caption track url", Err: err}
	}
	query := trackURL.Query()
	query.Set("fmt", "json3")
	trackURL.RawQuery = query.Encode()

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, trackURL.String(), nil)
	if err != nil {
		return nil, &Error{Kind: KindNetwork, VideoID: videoID, Message: "build caption request", Err: err}
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, &Error{Kind: KindNetwork, VideoID: videoID, Message: "caption request failed", Err: err}
	}
	defer resp.Body.Close()

	if resp.StatusCode == http.StatusTooManyRequests {
		return nil, &Error{Kind: KindRateLimited, VideoID: videoID, Message: "youtube rate limit"}
	}
	if resp.StatusCode != http.StatusOK {
		return nil, &Error{Kind: KindNetwork, VideoID: videoID, Message: fmt.Sprintf("caption request status %d", resp.StatusCode)}
	}

	data, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, &Error{Kind: KindNetwork, VideoID: videoID, Message: "read caption body", Err: err}
	}

	var tt timedText
	if err := json.Unmarshal(data, &tt); err != nil {
		return nil, &Error{Kind: KindNetwork, VideoID: videoID, Message: "decode caption body", Err: err}
	}

	raw := make([]model.RawSegment, 0, len(tt.Events))
	for _, event := range tt.Events {
		var text strings.Builder
		for _, seg := range event.Segs {
			text.WriteString(seg.UTF8)
		}
		if strings.TrimSpace(text.String()) == "" {
			continue
		}
		raw = append(raw, model.RawSegment{
			Start:    formatMs(event.StartMs),
			Duration: formatMs(event.DurationMs),
			Text:     text.String(),
		})
	}
	return raw, nil
}

// classifyPlayability maps innertube playability statuses onto tagged
// error kinds. This is the one true upstream boundary, so matching on
// the reason text is acceptable here.
func classifyPlayability(videoID, status, reason string) error {
	switch status {
	case "", "OK":
		return nil
	case "LOGIN_REQUIRED":
		return &Error{Kind: KindVideoPrivate, VideoID: videoID, Message: reason}
	case "ERROR":
		return &Error{Kind: KindVideoNotFound, VideoID: videoID, Message: reason}
	case "UNPLAYABLE":
		if strings.Contains(strings.ToLower(reason), "country") {
			return &Error{Kind: KindRegionBlocked, VideoID: videoID, Message: reason}
		}
		return &Error{Kind: KindVideoPrivate, VideoID: videoID, Message: reason}
	default:
		return &Error{Kind: KindNetwork, VideoID: videoID, Message: fmt.Sprintf("playability %s: %s", status, reason)}
	}
}

func pickTrack(tracks []captionTrack, language string) (captionTrack, bool) {
	for _, track := range tracks {
		if strings.EqualFold(track.LanguageCode, language) {
			return track, true
		}
	}
	// Language prefix match covers regional variants like en-US.
	for _, track := range tracks {
		if strings.EqualFold(baseLanguage(track.LanguageCode), baseLanguage(language)) {
			return track, true
		}
	}
	return captionTrack{}, false
}

func baseLanguage(code string) string {
	if i := strings.IndexByte(code, '-'); i > 0 {
		return code[:i]
	}
	return code
}

func formatMs(ms int64) string {
	return strconv.FormatFloat(float64(ms)/1000, 'f', 3, 64)
}
