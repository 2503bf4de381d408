package storage

import (
	"context"
	"os"
	"testing"
	"time"

	"ewintr.nl/tubedigest/model"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestVideoDocumentBadRecordID(t *testing.T) {
	_, err := videoDocument{RecordID: "not-a-uuid", VideoID: "abc123"}.video()
	assert.Error(t, err)
}

// TestMongoVideoRepository runs against a real server when MONGODB_TEST_URI
// is set.
func TestMongoVideoRepository(t *testing.T) {
	uri, ok := os.LookupEnv("MONGODB_TEST_URI")
	if !ok {
		t.Skip("MONGODB_TEST_URI not set")
	}
	ctx := context.Background()
	m, err := NewMongo(ctx, uri, "tubedigest_test")
	require.NoError(t, err)
	defer m.Close(ctx)

	ytID := model.YoutubeVideoID("mg-" + uuid.NewString()[:8])
	channel := "https://www.youtube.com/channel/" + uuid.NewString()
	first := &model.Video{
		ID:         uuid.New(),
		YoutubeID:  ytID,
		ChannelURL: channel,
		Title:      "Test Video",
		Enrichment: model.Enrichment{Summary: "first", Sentiment: model.SentimentNeutral, Confidence: 0.5},
		CreatedAt:  time.Now().Add(-time.Hour).UTC().Truncate(time.Millisecond),
	}

	stored, err := m.InsertIfAbsent(ctx, first)
	require.NoError(t, err)
	assert.Equal(t, first.ID, stored.ID)

	second := *first
	second.ID = uuid.New()
	second.Enrichment.Summary = "second"
	stored, err = m.InsertIfAbsent(ctx, &second)
	require.NoError(t, err)
	assert.Equal(t, first.ID, stored.ID)
	assert.Equal(t, "first", stored.Enrichment.Summary)

	recent, err := m.FindRecentForChannel(ctx, channel, 24*time.Hour)
	require.NoError(t, err)
	assert.Equal(t, ytID, recent.YoutubeID)

	_, err = m.FindRecentForChannel(ctx, channel, 30*time.Minute)
	assert.ErrorIs(t, err, ErrNotFound)
}
