package handler

import (
	"errors"
	"fmt"
	"net/http"
	"strconv"
	"time"

	"ewintr.nl/tubedigest/storage"
	"golang.org/x/exp/slog"
)

const maxHours = 24 * 365

// ChannelAPI answers with the newest summary of a channel that was stored
// within the last hours.
type ChannelAPI struct {
	videoRepo storage.VideoRepository
	logger    *slog.Logger
}

func NewChannelAPI(videoRepo storage.VideoRepository, logger *slog.Logger) *ChannelAPI {
	return &ChannelAPI{
		videoRepo: videoRepo,
		logger:    logger,
	}
}

func (c *ChannelAPI) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	sub, _ := ShiftPath(r.URL.Path)
	if r.Method != http.MethodGet || sub != "" {
		Error(w, http.StatusNotFound, "not found", fmt.Errorf("method %s with subpath %q was not registered in the channel api", r.Method, sub))
		return
	}

	channelURL := r.URL.Query().Get("url")
	if channelURL == "" {
		Error(w, http.StatusBadRequest, "missing parameter", errors.New("url is required"))
		return
	}
	hours := 24
	if raw := r.URL.Query().Get("hours"); raw != "" {
		h, err := strconv.Atoi(raw)
		if err != nil || h <= 0 || h > maxHours {
			Error(w, http.StatusBadRequest, "invalid parameter", fmt.Errorf("hours must be between 1 and %d, got %q", maxHours, raw))
			return
		}
		hours = h
	}

	video, err := c.videoRepo.FindRecentForChannel(r.Context(), channelURL, time.Duration(hours)*time.Hour)
	switch {
	case errors.Is(err, storage.ErrNotFound):
		Error(w, http.StatusNotFound, "no recent video", err, channelURL)
		return
	case err != nil:
		returnErr(r.Context(), c.logger, w, http.StatusInternalServerError, "could not get channel video", err)
		return
	}

	JSON(w, http.StatusOK, newVideoResponse(video))
}
