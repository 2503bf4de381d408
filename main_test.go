package main

import (
	"bytes"
	"errors"
	"os"
	"path/filepath"
	"testing"
	"time"

	"ewintr.nl/tubedigest/model"
	"ewintr.nl/tubedigest/process"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseBatch(t *testing.T) {
	for _, tc := range []struct {
		name   string
		data   string
		exp    batch
		expErr bool
	}{
		{
			name: "full",
			data: `
window: 12h
channels:
  - https://www.youtube.com/@somechannel
keywords:
  - query: bitcoin ETF review
    max_results: 2
    mode: analysis
  - query: sourdough
    mode: Summary
videos: [dQw4w9WgXcQ, "https://youtu.be/aaaaaaaaaaa"]
feeds: true
`,
			exp: batch{
				Window: 12 * time.Hour,
				Jobs: []process.Job{
					{Kind: process.KindChannel, Value: "https://www.youtube.com/@somechannel"},
					{Kind: process.KindKeyword, Value: "bitcoin ETF review", Mode: process.ModeAnalysis, MaxResults: 2},
					{Kind: process.KindKeyword, Value: "sourdough", Mode: process.ModeSummary},
					{Kind: process.KindVideo, Value: "dQw4w9WgXcQ"},
					{Kind: process.KindVideo, Value: "aaaaaaaaaaa"},
					{Kind: process.KindFeed},
				},
			},
		},
		{
			name: "channels only",
			data: "channels: [UCabcdefghijklmnopqrstuv]",
			exp: batch{Jobs: []process.Job{
				{Kind: process.KindChannel, Value: "UCabcdefghijklmnopqrstuv"},
			}},
		},
		{name: "empty", data: "feeds: false", expErr: true},
		{name: "not yaml", data: "channels: [", expErr: true},
		{name: "bad window", data: "window: soon\nchannels: [x]", expErr: true},
		{name: "bad mode", data: "keywords: [{query: x, mode: poem}]", expErr: true},
		{name: "keyword without query", data: "keywords: [{max_results: 2}]", expErr: true},
		{name: "bad video", data: "videos: [not a video]", expErr: true},
	} {
		t.Run(tc.name, func(t *testing.T) {
			act, err := parseBatch([]byte(tc.data))
			if tc.expErr {
				assert.Error(t, err)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tc.exp, act)
		})
	}
}

func TestReadBatchMissingFile(t *testing.T) {
	_, err := readBatch(filepath.Join(t.TempDir(), "nope.yaml"))
	assert.True(t, errors.Is(err, os.ErrNotExist))
}

func TestJobFromArg(t *testing.T) {
	for _, tc := range []struct {
		arg string
		exp process.Job
	}{
		{arg: "dQw4w9WgXcQ", exp: process.Job{Kind: process.KindVideo, Value: "dQw4w9WgXcQ"}},
		{arg: "https://www.youtube.com/watch?v=dQw4w9WgXcQ&t=10", exp: process.Job{Kind: process.KindVideo, Value: "dQw4w9WgXcQ"}},
		{arg: "https://www.youtube.com/@somechannel", exp: process.Job{Kind: process.KindChannel, Value: "https://www.youtube.com/@somechannel"}},
		{arg: " https://www.youtube.com/channel/UCabcdefghijklmnopqrstuv ", exp: process.Job{Kind: process.KindChannel, Value: "https://www.youtube.com/channel/UCabcdefghijklmnopqrstuv"}},
	} {
		t.Run(tc.arg, func(t *testing.T) {
			assert.Equal(t, tc.exp, jobFromArg(tc.arg))
		})
	}
}

func TestLoadConfig(t *testing.T) {
	t.Run("defaults", func(t *testing.T) {
		conf, err := loadConfig()
		require.NoError(t, err)
		assert.Equal(t, driverMongo, conf.StoreDriver)
		assert.Equal(t, process.DefaultFreshnessWindow, conf.Pipeline.FreshnessWindow)
		assert.Equal(t, process.DefaultCandidateDelay, conf.Pipeline.CandidateDelay)
		assert.Equal(t, process.DefaultMaxChars, conf.Enricher.MaxChars)
		assert.Equal(t, 8080, conf.APIPort)
	})

	t.Run("overrides", func(t *testing.T) {
		t.Setenv("STORE_DRIVER", "postgres")
		t.Setenv("FRESHNESS_WINDOW", "6h")
		t.Setenv("CANDIDATE_DELAY", "0s")
		t.Setenv("MAX_TRANSCRIPT_CHARS", "2000")
		t.Setenv("SUMMARY_MODEL", "some-model")
		t.Setenv("POSTGRES_HOST", "db")

		conf, err := loadConfig()
		require.NoError(t, err)
		assert.Equal(t, driverPostgres, conf.StoreDriver)
		assert.Equal(t, 6*time.Hour, conf.Pipeline.FreshnessWindow)
		assert.Equal(t, time.Duration(0), conf.Pipeline.CandidateDelay)
		assert.Equal(t, 2000, conf.Enricher.MaxChars)
		assert.Equal(t, "some-model", conf.Enricher.SummaryModel)
		assert.Contains(t, conf.Postgres.DSN(), "host=db ")
	})

	for _, env := range []string{"STORE_DRIVER", "FRESHNESS_WINDOW", "CANDIDATE_DELAY", "MAX_TRANSCRIPT_CHARS", "API_PORT"} {
		t.Run("invalid "+env, func(t *testing.T) {
			t.Setenv(env, "bogus")
			_, err := loadConfig()
			assert.Error(t, err)
		})
	}
}

func TestRootCommandArgs(t *testing.T) {
	for _, args := range [][]string{{}, {"a", "b"}} {
		var out bytes.Buffer
		cmd := newRootCommand()
		cmd.SetOut(&out)
		cmd.SetErr(&out)
		cmd.SetArgs(args)

		err := cmd.Execute()
		assert.Error(t, err)
		assert.Contains(t, out.String(), "Usage:")
	}
}

func TestPrintOutcomes(t *testing.T) {
	var out bytes.Buffer
	printOutcomes(&out, []process.Outcome{
		{
			Job:       process.Job{Kind: process.KindVideo, Value: "abc123"},
			YoutubeID: "abc123",
			Status:    process.StatusDeliveredFresh,
			Video: &model.Video{
				YoutubeID: "abc123",
				Title:     "Test Video",
				Enrichment: model.Enrichment{
					Summary:    "...",
					Sentiment:  model.SentimentPositive,
					Confidence: 0.8,
					KeyTopics:  []string{"x", "y"},
				},
			},
		},
		{
			Job:    process.Job{Kind: process.KindChannel, Value: "chanA"},
			Status: process.StatusSkippedNoVideo,
			Err:    model.NotFound("no videos found for channel chanA"),
		},
	})

	exp := `Test Video [delivered-fresh]
https://www.youtube.com/watch?v=abc123
...
sentiment: positive (0.80)
topics: x, y

chanA [skipped-no-video]: not_found: no videos found for channel chanA
`
	assert.Equal(t, exp, out.String())
}

func TestFailed(t *testing.T) {
	assert.Equal(t, 1, failed([]process.Outcome{
		{Status: process.StatusFailed},
		{Status: process.StatusSkippedNoTranscript},
		{Status: process.StatusDeliveredCached},
	}))
}
