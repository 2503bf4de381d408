package fetcher

import (
	"context"
	"fmt"
	"time"

	"ewintr.nl/tubedigest/model"
	"golang.org/x/exp/slog"
	"google.golang.org/api/youtube/v3"
)

type Youtube struct {
	Client *youtube.Service
	logger *slog.Logger
}

func NewYoutube(client *youtube.Service, logger *slog.Logger) *Youtube {
	return &Youtube{
		Client: client,
		logger: logger,
	}
}

// ResolveChannel turns a channel reference into a channel id. Handles are
// looked up first, then a channel search by name. If neither finds anything
// the reference itself is used as the id.
func (y *Youtube) ResolveChannel(ctx context.Context, raw string) (model.YoutubeChannelID, error) {
	ref := ParseChannelRef(raw)
	if ref.Value == "" {
		return "", model.NotFound(fmt.Sprintf("no channel in %q", raw))
	}
	if ref.Kind == RefChannelID {
		return model.YoutubeChannelID(ref.Value), nil
	}

	if ref.Kind == RefHandle {
		resp, err := y.Client.Channels.
			List([]string{"id"}).
			ForHandle(ref.Value).
			Context(ctx).
			Do()
		switch {
		case err != nil:
			y.logger.Info("handle lookup failed", slog.String("handle", ref.Value), slog.String("error", err.Error()))
		case len(resp.Items) > 0:
			return model.YoutubeChannelID(resp.Items[0].Id), nil
		}
	}

	resp, err := y.Client.Search.
		List([]string{"snippet"}).
		Q(ref.Value).
		Type("channel").
		MaxResults(1).
		Context(ctx).
		Do()
	switch {
	case err != nil:
		y.logger.Info("channel search failed", slog.String("name", ref.Value), slog.String("error", err.Error()))
	case len(resp.Items) > 0 && resp.Items[0].Id != nil && resp.Items[0].Id.ChannelId != "":
		return model.YoutubeChannelID(resp.Items[0].Id.ChannelId), nil
	}

	y.logger.Info("using channel reference as id", slog.String("channel", ref.Value))
	return model.YoutubeChannelID(ref.Value), nil
}

// Latest returns the most recently published video of a channel.
func (y *Youtube) Latest(ctx context.Context, channel string) (model.Candidate, error) {
	channelID, err := y.ResolveChannel(ctx, channel)
	if err != nil {
		return model.Candidate{}, err
	}

	response, err := y.Client.Search.
		List([]string{"snippet"}).
		ChannelId(string(channelID)).
		Order("date").
		MaxResults(1).
		Type("video").
		Context(ctx).
		Do()
	if err != nil {
		return model.Candidate{}, model.ProviderError(fmt.Sprintf("could not search channel %s", channelID), err)
	}

	candidates := candidatesFromSearch(response.Items)
	if len(candidates) == 0 {
		return model.Candidate{}, model.NotFound(fmt.Sprintf("no videos found for channel %s", channelID))
	}

	return candidates[0], nil
}

// Search returns up to maxResults videos for a keyword, most relevant first.
func (y *Youtube) Search(ctx context.Context, keyword string, maxResults int) ([]model.Candidate, error) {
	response, err := y.Client.Search.
		List([]string{"snippet"}).
		Q(keyword).
		Type("video").
		Order("relevance").
		RelevanceLanguage("en").
		RegionCode("US").
		MaxResults(int64(maxResults)).
		Context(ctx).
		Do()
	if err != nil {
		return nil, model.ProviderError(fmt.Sprintf("could not search for %q", keyword), err)
	}

	candidates := candidatesFromSearch(response.Items)
	if len(candidates) == 0 {
		return nil, model.NotFound(fmt.Sprintf("no videos found for %q", keyword))
	}
	if len(candidates) > maxResults {
		candidates = candidates[:maxResults]
	}

	return candidates, nil
}

// Video fetches the metadata of a single video.
func (y *Youtube) Video(ctx context.Context, ytID model.YoutubeVideoID) (model.Candidate, error) {
	response, err := y.Client.Videos.
		List([]string{"snippet"}).
		Id(string(ytID)).
		Context(ctx).
		Do()
	if err != nil {
		return model.Candidate{}, model.ProviderError(fmt.Sprintf("could not fetch video %s", ytID), err)
	}

	for _, item := range response.Items {
		if item.Snippet == nil || item.Id != string(ytID) {
			continue
		}
		return model.Candidate{
			YoutubeID:        ytID,
			YoutubeChannelID: model.YoutubeChannelID(item.Snippet.ChannelId),
			Title:            item.Snippet.Title,
			PublishedAt:      parsePublishedAt(item.Snippet.PublishedAt),
		}, nil
	}

	return model.Candidate{}, model.NotFound(fmt.Sprintf("video %s not found", ytID))
}

func candidatesFromSearch(items []*youtube.SearchResult) []model.Candidate {
	candidates := make([]model.Candidate, 0, len(items))
	for _, item := range items {
		if item.Id == nil || item.Id.VideoId == "" {
			continue
		}
		c := model.Candidate{YoutubeID: model.YoutubeVideoID(item.Id.VideoId)}
		if item.Snippet != nil {
			c.YoutubeChannelID = model.YoutubeChannelID(item.Snippet.ChannelId)
			c.Title = item.Snippet.Title
			c.PublishedAt = parsePublishedAt(item.Snippet.PublishedAt)
		}
		candidates = append(candidates, c)
	}

	return candidates
}

func parsePublishedAt(s string) time.Time {
	t, err := time.Parse(time.RFC3339, s)
	if err != nil {
		return time.Time{}
	}
	return t
}
