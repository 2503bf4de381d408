package handler

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"time"

	"ewintr.nl/tubedigest/model"
	"ewintr.nl/tubedigest/storage"
	"golang.org/x/exp/slog"
)

type videoResponse struct {
	ID          string   `json:"id"`
	YoutubeID   string   `json:"youtube_id"`
	URL         string   `json:"url"`
	ChannelURL  string   `json:"channel_url,omitempty"`
	Title       string   `json:"title"`
	PublishedAt string   `json:"published_at,omitempty"`
	Summary     string   `json:"summary"`
	Sentiment   string   `json:"sentiment,omitempty"`
	Confidence  float64  `json:"confidence,omitempty"`
	KeyTopics   []string `json:"key_topics,omitempty"`
	CreatedAt   string   `json:"created_at"`
}

func newVideoResponse(video *model.Video) videoResponse {
	resp := videoResponse{
		ID:         video.ID.String(),
		YoutubeID:  string(video.YoutubeID),
		URL:        video.YoutubeID.URL(),
		ChannelURL: video.ChannelURL,
		Title:      video.Title,
		Summary:    video.Enrichment.Summary,
		Sentiment:  string(video.Enrichment.Sentiment),
		Confidence: video.Enrichment.Confidence,
		KeyTopics:  video.Enrichment.KeyTopics,
		CreatedAt:  video.CreatedAt.UTC().Format(time.RFC3339),
	}
	if !video.PublishedAt.IsZero() {
		resp.PublishedAt = video.PublishedAt.UTC().Format(time.RFC3339)
	}

	return resp
}

type VideoAPI struct {
	videoRepo storage.VideoRepository
	logger    *slog.Logger
}

func NewVideoAPI(videoRepo storage.VideoRepository, logger *slog.Logger) *VideoAPI {
	return &VideoAPI{
		videoRepo: videoRepo,
		logger:    logger,
	}
}

func (v *VideoAPI) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	videoID, _ := ShiftPath(r.URL.Path)

	switch {
	case r.Method == http.MethodGet && videoID != "":
		v.Get(w, r, model.YoutubeVideoID(videoID))
	default:
		Error(w, http.StatusNotFound, "not found", fmt.Errorf("method %s with subpath %q was not registered in the video api", r.Method, videoID))
	}
}

func (v *VideoAPI) Get(w http.ResponseWriter, r *http.Request, ytID model.YoutubeVideoID) {
	video, err := v.videoRepo.FindByVideoID(r.Context(), ytID)
	switch {
	case errors.Is(err, storage.ErrNotFound):
		Error(w, http.StatusNotFound, "video not found", err, string(ytID))
		return
	case err != nil:
		returnErr(r.Context(), v.logger, w, http.StatusInternalServerError, "could not get video", err)
		return
	}

	JSON(w, http.StatusOK, newVideoResponse(video))
}

func returnErr(_ context.Context, logger *slog.Logger, w http.ResponseWriter, status int, message string, err error, details ...any) {
	logger.Error(message, slog.String("error", err.Error()), slog.String("details", fmt.Sprintf("%+v", details)))
	Error(w, status, message, err, details...)
}
