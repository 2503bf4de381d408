package storage

import (
	"context"
	"errors"
	"fmt"
	"time"

	"ewintr.nl/tubedigest/model"
	"github.com/google/uuid"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

const collectionName = "video_summaries"

type videoDocument struct {
	RecordID    string    `bson:"record_id"`
	VideoID     string    `bson:"video_id"`
	ChannelURL  string    `bson:"channel_url"`
	Title       string    `bson:"title"`
	PublishedAt time.Time `bson:"published_at"`
	Summary     string    `bson:"summary"`
	Sentiment   string    `bson:"sentiment,omitempty"`
	Confidence  float64   `bson:"confidence,omitempty"`
	KeyTopics   []string  `bson:"key_topics,omitempty"`
	CreatedAt   time.Time `bson:"created_at"`
}

func newVideoDocument(video *model.Video) videoDocument {
	return videoDocument{
		RecordID:    video.ID.String(),
		VideoID:     string(video.YoutubeID),
		ChannelURL:  video.ChannelURL,
		Title:       video.Title,
		PublishedAt: video.PublishedAt,
		Summary:     video.Enrichment.Summary,
		Sentiment:   string(video.Enrichment.Sentiment),
		Confidence:  video.Enrichment.Confidence,
		KeyTopics:   video.Enrichment.KeyTopics,
		CreatedAt:   video.CreatedAt,
	}
}

func (d videoDocument) video() (*model.Video, error) {
	id, err := uuid.Parse(d.RecordID)
	if err != nil {
		return nil, fmt.Errorf("invalid record id %q: %w", d.RecordID, err)
	}

	return &model.Video{
		ID:          id,
		YoutubeID:   model.YoutubeVideoID(d.VideoID),
		ChannelURL:  d.ChannelURL,
		Title:       d.Title,
		PublishedAt: d.PublishedAt,
		Enrichment: model.Enrichment{
			Summary:    d.Summary,
			Sentiment:  model.Sentiment(d.Sentiment),
			Confidence: d.Confidence,
			KeyTopics:  d.KeyTopics,
		},
		CreatedAt: d.CreatedAt,
	}, nil
}

type Mongo struct {
	client *mongo.Client
	coll   *mongo.Collection
}

// NewMongo connects and makes sure the unique video_id index exists, which
// is what makes InsertIfAbsent safe between processes.
func NewMongo(ctx context.Context, uri, database string) (*Mongo, error) {
	client, err := mongo.Connect(ctx, options.Client().ApplyURI(uri))
	if err != nil {
		return nil, fmt.Errorf("could not connect to mongodb: %w", err)
	}
	if err := client.Ping(ctx, nil); err != nil {
		client.Disconnect(ctx)
		return nil, fmt.Errorf("could not reach mongodb: %w", err)
	}

	coll := client.Database(database).Collection(collectionName)
	if _, err := coll.Indexes().CreateMany(ctx, []mongo.IndexModel{
		{
			Keys:    bson.D{{Key: "video_id", Value: 1}},
			Options: options.Index().SetUnique(true),
		},
		{
			Keys: bson.D{{Key: "channel_url", Value: 1}, {Key: "created_at", Value: -1}},
		},
	}); err != nil {
		client.Disconnect(ctx)
		return nil, fmt.Errorf("could not create indexes: %w", err)
	}

	return &Mongo{client: client, coll: coll}, nil
}

func (m *Mongo) Close(ctx context.Context) error {
	return m.client.Disconnect(ctx)
}

func (m *Mongo) FindByVideoID(ctx context.Context, ytID model.YoutubeVideoID) (*model.Video, error) {
	return m.findOne(ctx, bson.M{"video_id": string(ytID)})
}

func (m *Mongo) FindRecentForChannel(ctx context.Context, channelURL string, window time.Duration) (*model.Video, error) {
	filter := bson.M{
		"channel_url": channelURL,
		"created_at":  bson.M{"$gte": time.Now().Add(-window)},
	}

	return m.findOne(ctx, filter, options.FindOne().SetSort(bson.D{{Key: "created_at", Value: -1}}))
}

func (m *Mongo) InsertIfAbsent(ctx context.Context, video *model.Video) (*model.Video, error) {
	_, err := m.coll.InsertOne(ctx, newVideoDocument(video))
	switch {
	case mongo.IsDuplicateKeyError(err):
		// someone else stored this video first
	case err != nil:
		return nil, fmt.Errorf("could not insert video %s: %w", video.YoutubeID, err)
	}

	return m.FindByVideoID(ctx, video.YoutubeID)
}

func (m *Mongo) findOne(ctx context.Context, filter any, opts ...*options.FindOneOptions) (*model.Video, error) {
	var doc videoDocument
	err := m.coll.FindOne(ctx, filter, opts...).Decode(&doc)
	switch {
	case errors.Is(err, mongo.ErrNoDocuments):
		return nil, ErrNotFound
	case err != nil:
		return nil, err
	}

	return doc.video()
}
