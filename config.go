package main

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"strconv"
	"time"

	"ewintr.nl/tubedigest/fetcher"
	"ewintr.nl/tubedigest/process"
	"ewintr.nl/tubedigest/storage"
	"github.com/joho/godotenv"
)

const (
	driverMongo    = "mongo"
	driverPostgres = "postgres"
	driverMemory   = "memory"
)

type Config struct {
	StoreDriver    string
	MongoURI       string
	MongoDatabase  string
	Postgres       storage.PostgresInfo
	YoutubeAPIKey  string
	OpenAIAPIKey   string
	Enricher       process.EnricherConfig
	Pipeline       process.Config
	Miniflux       fetcher.MinifluxInfo
	WeaviateHost   string
	WeaviateAPIKey string
	APIPort        int
}

// loadConfig reads the environment, after merging in a .env file from the
// working directory when there is one. Variables that are already set win.
func loadConfig() (Config, error) {
	if err := godotenv.Load(); err != nil && !errors.Is(err, fs.ErrNotExist) {
		return Config{}, fmt.Errorf("could not load .env: %w", err)
	}

	maxChars, err := strconv.Atoi(getParam("MAX_TRANSCRIPT_CHARS", strconv.Itoa(process.DefaultMaxChars)))
	if err != nil {
		return Config{}, fmt.Errorf("invalid MAX_TRANSCRIPT_CHARS: %w", err)
	}
	window, err := time.ParseDuration(getParam("FRESHNESS_WINDOW", process.DefaultFreshnessWindow.String()))
	if err != nil {
		return Config{}, fmt.Errorf("invalid FRESHNESS_WINDOW: %w", err)
	}
	delay, err := time.ParseDuration(getParam("CANDIDATE_DELAY", process.DefaultCandidateDelay.String()))
	if err != nil {
		return Config{}, fmt.Errorf("invalid CANDIDATE_DELAY: %w", err)
	}
	port, err := strconv.Atoi(getParam("API_PORT", "8080"))
	if err != nil {
		return Config{}, fmt.Errorf("invalid API_PORT: %w", err)
	}

	conf := Config{
		StoreDriver:   getParam("STORE_DRIVER", driverMongo),
		MongoURI:      getParam("MONGODB_URI", "mongodb://localhost:27017"),
		MongoDatabase: getParam("MONGODB_DB", "tubedigest"),
		Postgres: storage.PostgresInfo{
			Host:     getParam("POSTGRES_HOST", "localhost"),
			Port:     getParam("POSTGRES_PORT", "5432"),
			User:     getParam("POSTGRES_USER", "tubedigest"),
			Password: getParam("POSTGRES_PASSWORD", "tubedigest"),
			Database: getParam("POSTGRES_DB", "tubedigest"),
		},
		YoutubeAPIKey: getParam("YOUTUBE_API_KEY", ""),
		OpenAIAPIKey:  getParam("OPENAI_API_KEY", ""),
		Enricher: process.EnricherConfig{
			SummaryModel:  getParam("SUMMARY_MODEL", process.DefaultSummaryModel),
			AnalysisModel: getParam("ANALYSIS_MODEL", process.DefaultAnalysisModel),
			MaxChars:      maxChars,
		},
		Pipeline: process.Config{
			FreshnessWindow: window,
			CandidateDelay:  delay,
			MaxResults:      process.DefaultMaxResults,
		},
		Miniflux: fetcher.MinifluxInfo{
			Endpoint: getParam("MINIFLUX_ENDPOINT", "http://localhost/v1"),
			ApiKey:   getParam("MINIFLUX_APIKEY", ""),
		},
		WeaviateHost:   getParam("WEAVIATE_HOST", ""),
		WeaviateAPIKey: getParam("WEAVIATE_APIKEY", ""),
		APIPort:        port,
	}

	switch conf.StoreDriver {
	case driverMongo, driverPostgres, driverMemory:
	default:
		return Config{}, fmt.Errorf("unknown STORE_DRIVER %q", conf.StoreDriver)
	}

	return conf, nil
}

func getParam(param, def string) string {
	if val, ok := os.LookupEnv(param); ok {
		return val
	}
	return def
}
