package fetcher

import (
	"strings"

	"ewintr.nl/tubedigest/model"
	"miniflux.app/client"
)

const youtubeFeedPrefix = "https://www.youtube.com/feeds/videos.xml?channel_id="

type MinifluxInfo struct {
	Endpoint string
	ApiKey   string
}

type Miniflux struct {
	client *client.Client
}

func NewMiniflux(mflInfo MinifluxInfo) *Miniflux {
	return &Miniflux{
		client: client.New(mflInfo.Endpoint, mflInfo.ApiKey),
	}
}

// Unread returns the unread entries that point to a YouTube video. Other
// entries are left untouched.
func (m *Miniflux) Unread() ([]FeedEntry, error) {
	result, err := m.client.Entries(&client.Filter{Status: "unread"})
	if err != nil {
		return nil, err
	}

	entries := make([]FeedEntry, 0, len(result.Entries))
	for _, entry := range result.Entries {
		ytID, ok := VideoIDFromURL(entry.URL)
		if !ok {
			continue
		}
		fe := FeedEntry{
			EntryID: entry.ID,
			FeedID:  entry.FeedID,
			Candidate: model.Candidate{
				YoutubeID:   ytID,
				Title:       entry.Title,
				PublishedAt: entry.Date,
			},
		}
		if entry.Feed != nil && strings.HasPrefix(entry.Feed.FeedURL, youtubeFeedPrefix) {
			fe.Candidate.YoutubeChannelID = model.YoutubeChannelID(strings.TrimPrefix(entry.Feed.FeedURL, youtubeFeedPrefix))
		}
		entries = append(entries, fe)
	}

	return entries, nil
}

func (m *Miniflux) MarkRead(entryID int64) error {
	if err := m.client.UpdateEntries([]int64{entryID}, "read"); err != nil {
		return err
	}

	return nil
}
