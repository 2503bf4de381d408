package main

import (
	"fmt"
	"os"
	"strings"
	"time"

	"ewintr.nl/tubedigest/fetcher"
	"ewintr.nl/tubedigest/process"
	"gopkg.in/yaml.v3"
)

type batchKeyword struct {
	Query      string `yaml:"query"`
	MaxResults int    `yaml:"max_results"`
	Mode       string `yaml:"mode"`
}

type batchFile struct {
	Window   string         `yaml:"window"`
	Channels []string       `yaml:"channels"`
	Keywords []batchKeyword `yaml:"keywords"`
	Videos   []string       `yaml:"videos"`
	Feeds    bool           `yaml:"feeds"`
}

type batch struct {
	Window time.Duration
	Jobs   []process.Job
}

func readBatch(path string) (batch, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return batch{}, fmt.Errorf("could not read batch file: %w", err)
	}

	return parseBatch(data)
}

// parseBatch turns a batch file into jobs, in the order channels, keywords,
// videos and feeds.
func parseBatch(data []byte) (batch, error) {
	var bf batchFile
	if err := yaml.Unmarshal(data, &bf); err != nil {
		return batch{}, fmt.Errorf("could not parse batch file: %w", err)
	}

	var b batch
	if bf.Window != "" {
		window, err := time.ParseDuration(bf.Window)
		if err != nil || window <= 0 {
			return batch{}, fmt.Errorf("invalid window %q", bf.Window)
		}
		b.Window = window
	}

	for _, ch := range bf.Channels {
		if strings.TrimSpace(ch) == "" {
			return batch{}, fmt.Errorf("empty channel in batch file")
		}
		b.Jobs = append(b.Jobs, process.Job{Kind: process.KindChannel, Value: strings.TrimSpace(ch)})
	}
	for _, kw := range bf.Keywords {
		if strings.TrimSpace(kw.Query) == "" {
			return batch{}, fmt.Errorf("keyword without query in batch file")
		}
		mode, err := parseMode(kw.Mode)
		if err != nil {
			return batch{}, err
		}
		if kw.MaxResults < 0 {
			return batch{}, fmt.Errorf("invalid max_results %d for %q", kw.MaxResults, kw.Query)
		}
		b.Jobs = append(b.Jobs, process.Job{Kind: process.KindKeyword, Value: strings.TrimSpace(kw.Query), Mode: mode, MaxResults: kw.MaxResults})
	}
	for _, v := range bf.Videos {
		ytID, ok := fetcher.VideoIDFromURL(v)
		if !ok {
			return batch{}, fmt.Errorf("%q is not a video id or url", v)
		}
		b.Jobs = append(b.Jobs, process.Job{Kind: process.KindVideo, Value: string(ytID)})
	}
	if bf.Feeds {
		b.Jobs = append(b.Jobs, process.Job{Kind: process.KindFeed})
	}

	if len(b.Jobs) == 0 {
		return batch{}, fmt.Errorf("batch file contains no jobs")
	}

	return b, nil
}

func parseMode(raw string) (process.Mode, error) {
	switch mode := process.Mode(strings.ToLower(strings.TrimSpace(raw))); mode {
	case "", process.ModeSummary, process.ModeAnalysis:
		return mode, nil
	default:
		return "", fmt.Errorf("unknown mode %q", raw)
	}
}

// jobFromArg decides whether a single command line argument names a video or
// a channel.
func jobFromArg(arg string) process.Job {
	if ytID, ok := fetcher.VideoIDFromURL(arg); ok {
		return process.Job{Kind: process.KindVideo, Value: string(ytID)}
	}

	return process.Job{Kind: process.KindChannel, Value: strings.TrimSpace(arg)}
}
