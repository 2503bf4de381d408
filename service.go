package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"time"

	"ewintr.nl/tubedigest/fetcher"
	"ewintr.nl/tubedigest/process"
	"ewintr.nl/tubedigest/storage"
	"github.com/sashabaranov/go-openai"
	"golang.org/x/exp/slog"
	"google.golang.org/api/option"
	"google.golang.org/api/youtube/v3"
)

// service holds the long lived clients for one invocation.
type service struct {
	conf     Config
	videoDB  storage.VideoRepository
	weaviate *storage.Weaviate
	closers  []func()
	logger   *slog.Logger
}

func newService(ctx context.Context, conf Config, logger *slog.Logger) (*service, error) {
	s := &service{conf: conf, logger: logger}

	switch conf.StoreDriver {
	case driverMongo:
		mongo, err := storage.NewMongo(ctx, conf.MongoURI, conf.MongoDatabase)
		if err != nil {
			return nil, fmt.Errorf("unable to connect to mongodb: %w", err)
		}
		s.videoDB = mongo
		s.closers = append(s.closers, func() {
			closeCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
			defer cancel()
			if err := mongo.Close(closeCtx); err != nil {
				logger.Error("unable to close mongodb connection", slog.String("error", err.Error()))
			}
		})
	case driverPostgres:
		postgres, err := storage.NewPostgres(conf.Postgres.DSN())
		if err != nil {
			return nil, fmt.Errorf("unable to connect to postgres: %w", err)
		}
		s.videoDB = postgres
		s.closers = append(s.closers, func() {
			if err := postgres.Close(); err != nil {
				logger.Error("unable to close postgres connection", slog.String("error", err.Error()))
			}
		})
	default:
		logger.Info("using in-memory store, summaries are lost on exit")
		s.videoDB = storage.NewMemory()
	}

	if conf.WeaviateHost != "" {
		wv, err := storage.NewWeaviate(conf.WeaviateHost, conf.WeaviateAPIKey, conf.OpenAIAPIKey)
		if err != nil {
			s.Close()
			return nil, fmt.Errorf("unable to create weaviate client: %w", err)
		}
		s.weaviate = wv
	}

	return s, nil
}

func (s *service) Close() {
	for i := len(s.closers) - 1; i >= 0; i-- {
		s.closers[i]()
	}
}

// Pipeline wires the providers. The feed reader is only attached when a
// Miniflux api key is configured.
func (s *service) Pipeline(ctx context.Context) (*process.Pipeline, error) {
	if s.conf.YoutubeAPIKey == "" {
		return nil, errors.New("YOUTUBE_API_KEY is not set")
	}
	if s.conf.OpenAIAPIKey == "" {
		return nil, errors.New("OPENAI_API_KEY is not set")
	}

	ytClient, err := youtube.NewService(ctx, option.WithAPIKey(s.conf.YoutubeAPIKey))
	if err != nil {
		return nil, fmt.Errorf("unable to create youtube service: %w", err)
	}
	yt := fetcher.NewYoutube(ytClient, s.logger)
	transcripts := fetcher.NewTranscripts(&http.Client{Timeout: 30 * time.Second}, s.logger)
	enricher := process.NewOpenAIEnricher(openai.NewClient(s.conf.OpenAIAPIKey), s.conf.Enricher)

	pipeline := process.NewPipeline(s.videoDB, yt, transcripts, enricher, s.conf.Pipeline, s.logger)
	if s.weaviate != nil {
		pipeline.WithVectorStorage(s.weaviate)
	}
	if s.conf.Miniflux.ApiKey != "" {
		pipeline.WithFeedReader(fetcher.NewMiniflux(s.conf.Miniflux))
	}

	return pipeline, nil
}
