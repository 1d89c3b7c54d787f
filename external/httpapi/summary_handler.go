package httpapi

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"iter"
	"log/slog"
	"net/http"

	"github.com/foxseedlab/matome/internal/completion"
	"github.com/foxseedlab/matome/internal/summary"
	"github.com/foxseedlab/matome/internal/transcript"
)

type Summarizer interface {
	Cached(ctx context.Context, req summary.Request) (string, bool, error)
	Summarize(ctx context.Context, req summary.Request) (string, error)
	SummarizeStream(ctx context.Context, req summary.Request) (iter.Seq2[string, error], error)
}

type sumupRequest struct {
	VideoConfig struct {
		VideoID string `json:"videoId"`
		Title   string `json:"title"`
	} `json:"videoConfig"`
	UserConfig struct {
		ShouldShowTimestamp bool   `json:"shouldShowTimestamp"`
		Language            string `json:"language"`
		Stream              bool   `json:"stream"`
	} `json:"userConfig"`
	Transcripts []transcript.Fragment `json:"transcripts"`
}

func (r sumupRequest) toSummaryRequest() summary.Request {
	return summary.Request{
		VideoID:           r.VideoConfig.VideoID,
		Title:             r.VideoConfig.Title,
		Fragments:         r.Transcripts,
		Language:          r.UserConfig.Language,
		IncludeTimestamps: r.UserConfig.ShouldShowTimestamp,
	}
}

type errorResponse struct {
	ErrorMessage string `json:"errorMessage"`
}

type SummaryHandler struct {
	svc Summarizer
}

func NewSummaryHandler(svc Summarizer) *SummaryHandler {
	return &SummaryHandler{svc: svc}
}

// Sumup answers from the cache when it can, otherwise asks the provider.
func (h *SummaryHandler) Sumup(w http.ResponseWriter, r *http.Request) {
	var body sumupRequest
	if err := json.NewDecoder(r.Body).Decode(&body); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}
	req := body.toSummaryRequest()
	if req.VideoID == "" {
		writeError(w, http.StatusBadRequest, "No videoId in the request")
		return
	}

	cached, found, err := h.svc.Cached(r.Context(), req)
	if err != nil {
		slog.Warn("summary cache lookup failed", "error", err, "video_id", req.VideoID)
	}
	if found {
		slog.Debug("summary served from cache", "video_id", req.VideoID)
		if body.UserConfig.Stream {
			writeText(w, cached)
			return
		}
		writeJSON(w, http.StatusOK, cached)
		return
	}

	if body.UserConfig.Stream {
		h.stream(w, r, req)
		return
	}
	text, err := h.svc.Summarize(r.Context(), req)
	if err != nil {
		writeSummaryError(w, req, err)
		return
	}
	writeJSON(w, http.StatusOK, text)
}

func (h *SummaryHandler) stream(w http.ResponseWriter, r *http.Request, req summary.Request) {
	seq, err := h.svc.SummarizeStream(r.Context(), req)
	if err != nil {
		writeSummaryError(w, req, err)
		return
	}

	rc := http.NewResponseController(w)
	w.Header().Set("Content-Type", "text/plain; charset=utf-8")
	w.Header().Set("Cache-Control", "no-cache")
	w.Header().Set("X-Content-Type-Options", "nosniff")
	w.WriteHeader(http.StatusOK)

	for delta, err := range seq {
		if err != nil {
			slog.Error("summary stream failed", "error", err, "video_id", req.VideoID)
			// Headers are gone; dropping the connection is the only way left to signal failure.
			panic(http.ErrAbortHandler)
		}
		if _, err := io.WriteString(w, delta); err != nil {
			slog.Debug("client went away during summary stream", "error", err, "video_id", req.VideoID)
			return
		}
		if err := rc.Flush(); err != nil {
			slog.Debug("failed to flush summary stream", "error", err, "video_id", req.VideoID)
			return
		}
	}
}

func writeSummaryError(w http.ResponseWriter, req summary.Request, err error) {
	status := statusFor(err)
	if status >= http.StatusInternalServerError {
		slog.Error("summary failed", "error", err, "video_id", req.VideoID, "status", status)
	}
	writeError(w, status, messageFor(err))
}

func statusFor(err error) int {
	var upstreamErr *completion.UpstreamError
	switch {
	case errors.Is(err, summary.ErrMissingVideoID):
		return http.StatusBadRequest
	case errors.Is(err, summary.ErrEmptyInput):
		return http.StatusNotImplemented
	case errors.As(err, &upstreamErr):
		return http.StatusBadGateway
	default:
		return http.StatusInternalServerError
	}
}

func messageFor(err error) string {
	if errors.Is(err, summary.ErrEmptyInput) {
		return "No subtitle in the video"
	}
	return err.Error()
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		slog.Debug("failed to write json response", "error", err)
	}
}

func writeText(w http.ResponseWriter, text string) {
	w.Header().Set("Content-Type", "text/plain; charset=utf-8")
	w.WriteHeader(http.StatusOK)
	_, _ = io.WriteString(w, text)
}

func writeError(w http.ResponseWriter, status int, message string) {
	writeJSON(w, status, errorResponse{ErrorMessage: message})
}
