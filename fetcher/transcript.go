package fetcher

import (
	"context"
	"encoding/json"
	"encoding/xml"
	"errors"
	"fmt"
	"html"
	"io"
	"net/http"
	"strings"

	"ewintr.nl/tubedigest/model"
	"golang.org/x/exp/slog"
)

const (
	youtubeBaseURL      = "https://www.youtube.com"
	minTranscriptLength = 100
	maxBodySize         = 8 << 20
)

var (
	errNoCaptions    = errors.New("video has no captions")
	errNoEnglish     = errors.New("video has no english captions")
	errRateLimited   = errors.New("rate limited")
	errTooShort      = errors.New("transcript too short")
	errPlaceholder   = errors.New("transcript is a placeholder")
	placeholderTexts = []string{
		"please provide the transcript",
		"no transcript available",
		"transcript not found",
		"unable to get transcript",
	}
)

type captionTrack struct {
	BaseURL      string `json:"baseUrl"`
	LanguageCode string `json:"languageCode"`
	Kind         string `json:"kind"`
}

type timedText struct {
	Segments []struct {
		Text     string  `xml:",chardata"`
		Start    float64 `xml:"start,attr"`
		Duration float64 `xml:"dur,attr"`
	} `xml:"text"`
}

// Transcripts scrapes the caption tracks YouTube embeds in the watch page.
type Transcripts struct {
	client    *http.Client
	BaseURL   string
	MinLength int
	logger    *slog.Logger
}

func NewTranscripts(client *http.Client, logger *slog.Logger) *Transcripts {
	return &Transcripts{
		client:    client,
		BaseURL:   youtubeBaseURL,
		MinLength: minTranscriptLength,
		logger:    logger,
	}
}

// Transcript returns the full english transcript of a video. Every reason
// for not having one is only logged.
func (t *Transcripts) Transcript(ctx context.Context, ytID model.YoutubeVideoID) (string, bool) {
	text, err := t.fetch(ctx, ytID)
	if err != nil {
		t.logger.Info("no transcript", slog.String("video", string(ytID)), slog.String("reason", err.Error()))
		return "", false
	}

	return text, true
}

func (t *Transcripts) fetch(ctx context.Context, ytID model.YoutubeVideoID) (string, error) {
	page, err := t.get(ctx, fmt.Sprintf("%s/watch?v=%s", t.BaseURL, ytID))
	if err != nil {
		return "", err
	}

	tracks, err := captionTracks(page)
	if err != nil {
		return "", err
	}
	track, ok := pickEnglish(tracks)
	if !ok {
		return "", errNoEnglish
	}

	body, err := t.get(ctx, html.UnescapeString(track.BaseURL))
	if err != nil {
		return "", err
	}
	var tt timedText
	if err := xml.Unmarshal(body, &tt); err != nil {
		return "", fmt.Errorf("could not parse timed text: %w", err)
	}

	parts := make([]string, 0, len(tt.Segments))
	for _, s := range tt.Segments {
		line := strings.TrimSpace(html.UnescapeString(s.Text))
		if line != "" {
			parts = append(parts, line)
		}
	}
	text := strings.Join(parts, " ")

	if IsPlaceholder(text) {
		return "", errPlaceholder
	}
	if len(text) < t.MinLength {
		return "", errTooShort
	}

	return text, nil
}

func (t *Transcripts) get(ctx context.Context, url string) ([]byte, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return nil, err
	}
	req.Header.Set("Accept-Language", "en-US,en;q=0.9")

	resp, err := t.client.Do(req)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	switch {
	case resp.StatusCode == http.StatusTooManyRequests:
		return nil, errRateLimited
	case resp.StatusCode != http.StatusOK:
		return nil, fmt.Errorf("unexpected status %d", resp.StatusCode)
	}

	return io.ReadAll(io.LimitReader(resp.Body, maxBodySize))
}

// IsPlaceholder reports whether text is one of the stock replies that stand
// in for a missing transcript.
func IsPlaceholder(text string) bool {
	lower := strings.ToLower(text)
	for _, p := range placeholderTexts {
		if strings.Contains(lower, p) {
			return true
		}
	}
	return false
}

func captionTracks(page []byte) ([]captionTrack, error) {
	const marker = `"captionTracks":`
	start := strings.Index(string(page), marker)
	if start < 0 {
		return nil, errNoCaptions
	}
	raw, ok := extractJSONArray(string(page[start+len(marker):]))
	if !ok {
		return nil, errNoCaptions
	}

	var tracks []captionTrack
	if err := json.Unmarshal([]byte(raw), &tracks); err != nil {
		return nil, fmt.Errorf("could not parse caption tracks: %w", err)
	}
	if len(tracks) == 0 {
		return nil, errNoCaptions
	}

	return tracks, nil
}

// extractJSONArray returns the JSON array s starts with, skipping leading
// white space.
func extractJSONArray(s string) (string, bool) {
	s = strings.TrimLeft(s, " \t\r\n")
	if !strings.HasPrefix(s, "[") {
		return "", false
	}

	depth, inString, escaped := 0, false, false
	for i, c := range s {
		switch {
		case escaped:
			escaped = false
		case inString && c == '\\':
			escaped = true
		case c == '"':
			inString = !inString
		case inString:
		case c == '[' || c == '{':
			depth++
		case c == ']' || c == '}':
			depth--
			if depth == 0 {
				return s[:i+1], true
			}
		}
	}

	return "", false
}

// pickEnglish prefers a manual english track over a generated one and both
// over regional variants.
func pickEnglish(tracks []captionTrack) (captionTrack, bool) {
	var generated, regional *captionTrack
	for i := range tracks {
		tr := &tracks[i]
		switch {
		case tr.LanguageCode == "en" && tr.Kind != "asr":
			return *tr, true
		case tr.LanguageCode == "en" && generated == nil:
			generated = tr
		case strings.HasPrefix(tr.LanguageCode, "en-") && regional == nil:
			regional = tr
		}
	}
	switch {
	case generated != nil:
		return *generated, true
	case regional != nil:
		return *regional, true
	}

	return captionTrack{}, false
}
