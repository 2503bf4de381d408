package handler

import (
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"ewintr.nl/tubedigest/model"
	"ewintr.nl/tubedigest/storage"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/exp/slog"
)

func TestShiftPath(t *testing.T) {
	for _, tc := range []struct {
		path    string
		expHead string
		expTail string
	}{
		{path: "/", expHead: "", expTail: "/"},
		{path: "/video", expHead: "video", expTail: "/"},
		{path: "/video/abc/", expHead: "video", expTail: "/abc"},
		{path: "video/../channel", expHead: "channel", expTail: "/"},
	} {
		t.Run(tc.path, func(t *testing.T) {
			head, tail := ShiftPath(tc.path)
			assert.Equal(t, tc.expHead, head)
			assert.Equal(t, tc.expTail, tail)
		})
	}
}

func newTestServer(t *testing.T) (*httptest.Server, *model.Video) {
	t.Helper()
	now := time.Date(2024, 3, 1, 12, 0, 0, 0, time.UTC)
	mem := storage.NewMemory()
	mem.Now = func() time.Time { return now }
	video := &model.Video{
		ID:          uuid.New(),
		YoutubeID:   "dQw4w9WgXcQ",
		ChannelURL:  "https://www.youtube.com/@somechannel",
		Title:       "Test Video",
		PublishedAt: now.Add(-48 * time.Hour),
		Enrichment: model.Enrichment{
			Summary:    "...",
			Sentiment:  model.SentimentPositive,
			Confidence: 0.8,
			KeyTopics:  []string{"x", "y"},
		},
		CreatedAt: now.Add(-2 * time.Hour),
	}
	_, err := mem.InsertIfAbsent(context.Background(), video)
	require.NoError(t, err)

	srv := httptest.NewServer(NewServer(mem, slog.New(slog.NewTextHandler(io.Discard))))
	t.Cleanup(srv.Close)

	return srv, video
}

func TestServer(t *testing.T) {
	srv, video := newTestServer(t)

	for _, tc := range []struct {
		name      string
		path      string
		expStatus int
		expVideo  bool
	}{
		{name: "index", path: "/", expStatus: http.StatusOK},
		{name: "unknown api", path: "/playlist", expStatus: http.StatusNotFound},
		{name: "video", path: "/video/dQw4w9WgXcQ", expStatus: http.StatusOK, expVideo: true},
		{name: "unknown video", path: "/video/aaaaaaaaaaa", expStatus: http.StatusNotFound},
		{name: "video without id", path: "/video", expStatus: http.StatusNotFound},
		{name: "channel", path: "/channel?url=https://www.youtube.com/@somechannel", expStatus: http.StatusOK, expVideo: true},
		{name: "channel within hours", path: "/channel?url=https://www.youtube.com/@somechannel&hours=3", expStatus: http.StatusOK, expVideo: true},
		{name: "channel outside hours", path: "/channel?url=https://www.youtube.com/@somechannel&hours=1", expStatus: http.StatusNotFound},
		{name: "channel without url", path: "/channel", expStatus: http.StatusBadRequest},
		{name: "channel bad hours", path: "/channel?url=x&hours=-1", expStatus: http.StatusBadRequest},
		{name: "channel too many hours", path: "/channel?url=https://www.youtube.com/@somechannel&hours=3000000", expStatus: http.StatusBadRequest},
		{name: "channel max hours", path: "/channel?url=https://www.youtube.com/@somechannel&hours=8760", expStatus: http.StatusOK, expVideo: true},
	} {
		t.Run(tc.name, func(t *testing.T) {
			res, err := http.Get(srv.URL + tc.path)
			require.NoError(t, err)
			defer res.Body.Close()

			assert.Equal(t, tc.expStatus, res.StatusCode)
			assert.Equal(t, "application/json", res.Header.Get("Content-Type"))
			if !tc.expVideo {
				return
			}
			var act videoResponse
			require.NoError(t, json.NewDecoder(res.Body).Decode(&act))
			assert.Equal(t, newVideoResponse(video), act)
			assert.Equal(t, "https://www.youtube.com/watch?v=dQw4w9WgXcQ", act.URL)
			assert.Equal(t, []string{"x", "y"}, act.KeyTopics)
		})
	}
}

func TestServerPostNotAllowed(t *testing.T) {
	srv, _ := newTestServer(t)

	res, err := http.Post(srv.URL+"/video/dQw4w9WgXcQ", "application/json", nil)
	require.NoError(t, err)
	defer res.Body.Close()
	assert.Equal(t, http.StatusNotFound, res.StatusCode)
}
