package transcript_test

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/go-chi/chi/v5"

	transcripthandler "github.com/dkarpushin/tubechat/internal/handler/transcript"
	transcriptmodel "github.com/dkarpushin/tubechat/internal/model/transcript"
	transcriptservice "github.com/dkarpushin/tubechat/internal/service/transcript"
)

type stubSource struct {
	err error
}

func (s *stubSource) Fetch(_ context.Context, videoID, language string) (*transcriptservice.Video, error) {
	if s.err != nil {
		return nil, s.err
	}
	if language == "" {
		language = "en"
	}
	return &transcriptservice.Video{
		VideoID:  videoID,
		Title:    "Test Video",
		Language: language,
		Segments: transcriptmodel.FormatSegments([]transcriptmodel.RawSegment{
			{Start: "0", Duration: "2", Text: "hello docker"},
			{Start: "2", Duration: "3", Text: "world of containers"},
		}),
	}, nil
}

func newTestRouter(source transcriptservice.Source) http.Handler {
	svc := transcriptservice.NewService(source, []string{"en"})
	r := chi.NewRouter()
	transcripthandler.New(svc).RegisterRoutes(r)
	return r
}

func TestGetTranscriptTextOnly(t *testing.T) {
	router := newTestRouter(&stubSource{})

	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/transcript/dQw4w9WgXcQ?format=text_only", nil))

	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, body %s", rec.Code, rec.Body.String())
	}

	var body struct {
		VideoID  string `json:"videoId"`
		Language string `json:"language"`
		Format   string `json:"format"`
		Content  string `json:"content"`
	}
	if err := json.Unmarshal(rec.Body.Bytes(), &body); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if body.VideoID != "dQw4w9WgXcQ" || body.Format != "text_only" {
		t.Fatalf("unexpected envelope: %+v", body)
	}
	if body.Content != "hello docker world of containers" {
		t.Fatalf("unexpected content: %q", body.Content)
	}
}

func TestGetTranscriptDefaultFormat(t *testing.T) {
	router := newTestRouter(&stubSource{})

	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/transcript/dQw4w9WgXcQ", nil))

	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, body %s", rec.Code, rec.Body.String())
	}

	var body struct {
		Format  string                    `json:"format"`
		Content []transcriptmodel.Segment `json:"content"`
	}
	if err := json.Unmarshal(rec.Body.Bytes(), &body); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if body.Format != "detailed" {
		t.Fatalf("default format must be detailed, got %q", body.Format)
	}
	if len(body.Content) != 2 || body.Content[0].Text != "hello docker" {
		t.Fatalf("unexpected detailed content: %+v", body.Content)
	}
}

func TestGetTranscriptInvalidVideoID(t *testing.T) {
	router := newTestRouter(&stubSource{})

	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/transcript/bogus?format=text_only", nil))

	if rec.Code != http.StatusBadRequest {
		t.Fatalf("status = %d, want 400", rec.Code)
	}
}

func TestGetTranscriptUnknownFormat(t *testing.T) {
	router := newTestRouter(&stubSource{})

	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/transcript/dQw4w9WgXcQ?format=yaml", nil))

	if rec.Code != http.StatusBadRequest {
		t.Fatalf("status = %d, want 400", rec.Code)
	}
}

func TestGetTranscriptVideoNotFound(t *testing.T) {
	source := &stubSource{err: &transcriptservice.Error{Kind: transcriptservice.KindVideoNotFound, VideoID: "dQw4w9WgXcQ"}}
	router := newTestRouter(source)

	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/transcript/dQw4w9WgXcQ", nil))

	if rec.Code != http.StatusNotFound {
		t.Fatalf("status = %d, want 404", rec.Code)
	}
}

func TestSearchTranscript(t *testing.T) {
	router := newTestRouter(&stubSource{})

	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/transcript/dQw4w9WgXcQ/search?q=docker", nil))

	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, body %s", rec.Code, rec.Body.String())
	}

	var body struct {
		Query    string                    `json:"query"`
		Segments []transcriptmodel.Segment `json:"segments"`
	}
	if err := json.Unmarshal(rec.Body.Bytes(), &body); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if body.Query != "docker" {
		t.Fatalf("unexpected query echo: %q", body.Query)
	}
	if len(body.Segments) != 1 || body.Segments[0].Text != "hello docker" {
		t.Fatalf("unexpected segments: %+v", body.Segments)
	}
}

func TestSearchTranscriptRequiresQuery(t *testing.T) {
	router := newTestRouter(&stubSource{})

	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/transcript/dQw4w9WgXcQ/search", nil))

	if rec.Code != http.StatusBadRequest {
		t.Fatalf("status = %d, want 400", rec.Code)
	}
}

func TestSearchTranscriptInvalidMax(t *testing.T) {
	router := newTestRouter(&stubSource{})

	for _, max := range []string{"0", "51", "abc"} {
		rec := httptest.NewRecorder()
		router.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/transcript/dQw4w9WgXcQ/search?q=docker&max="+max, nil))
		if rec.Code != http.StatusBadRequest {
			t.Fatalf("max=%s: status = %d, want 400", max, rec.Code)
		}
	}
}
