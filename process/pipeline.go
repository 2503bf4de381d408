package process

import (
	"context"
	"errors"
	"fmt"
	"time"

	"ewintr.nl/tubedigest/fetcher"
	"ewintr.nl/tubedigest/model"
	"ewintr.nl/tubedigest/storage"
	"github.com/google/uuid"
	"golang.org/x/exp/slog"
	"golang.org/x/time/rate"
)

const (
	DefaultFreshnessWindow = 24 * time.Hour
	DefaultCandidateDelay  = 500 * time.Millisecond
	DefaultMaxResults      = 3
)

type Discoverer interface {
	Latest(ctx context.Context, channel string) (model.Candidate, error)
	Search(ctx context.Context, keyword string, maxResults int) ([]model.Candidate, error)
	Video(ctx context.Context, ytID model.YoutubeVideoID) (model.Candidate, error)
}

type TranscriptSource interface {
	Transcript(ctx context.Context, ytID model.YoutubeVideoID) (string, bool)
}

type Enricher interface {
	Summarize(ctx context.Context, transcript string) (model.Enrichment, error)
	Analyze(ctx context.Context, transcript string) (model.Enrichment, error)
}

type Config struct {
	FreshnessWindow time.Duration
	CandidateDelay  time.Duration
	MaxResults      int
}

type Pipeline struct {
	relStorage  storage.VideoRepository
	vecStorage  storage.VideoVecRepository
	discoverer  Discoverer
	transcripts TranscriptSource
	enricher    Enricher
	feedReader  fetcher.FeedReader
	config      Config
	throttle    *rate.Limiter
	now         func() time.Time
	logger      *slog.Logger
}

func NewPipeline(relDB storage.VideoRepository, discoverer Discoverer, transcripts TranscriptSource, enricher Enricher, config Config, logger *slog.Logger) *Pipeline {
	if config.FreshnessWindow <= 0 {
		config.FreshnessWindow = DefaultFreshnessWindow
	}
	if config.MaxResults <= 0 {
		config.MaxResults = DefaultMaxResults
	}

	return &Pipeline{
		relStorage:  relDB,
		discoverer:  discoverer,
		transcripts: transcripts,
		enricher:    enricher,
		config:      config,
		throttle:    rate.NewLimiter(rate.Every(config.CandidateDelay), 1),
		now:         time.Now,
		logger:      logger,
	}
}

// WithVectorStorage makes the pipeline index every new summary.
func (p *Pipeline) WithVectorStorage(vecDB storage.VideoVecRepository) *Pipeline {
	p.vecStorage = vecDB
	return p
}

func (p *Pipeline) WithFeedReader(feedReader fetcher.FeedReader) *Pipeline {
	p.feedReader = feedReader
	return p
}

// Run processes the jobs one after another. A failing job does not stop the
// ones after it.
func (p *Pipeline) Run(ctx context.Context, jobs []Job) []Outcome {
	outcomes := []Outcome{}
	for _, job := range jobs {
		if ctx.Err() != nil {
			break
		}
		outcomes = append(outcomes, p.Process(ctx, job)...)
	}

	return outcomes
}

func (p *Pipeline) Process(ctx context.Context, job Job) []Outcome {
	p.logger.Info("processing job", slog.String("kind", string(job.Kind)), slog.String("value", job.Value))

	var outcomes []Outcome
	switch job.Kind {
	case KindChannel:
		outcomes = []Outcome{p.processChannel(ctx, job)}
	case KindKeyword:
		outcomes = p.processKeyword(ctx, job)
	case KindVideo:
		outcomes = []Outcome{p.processVideo(ctx, job)}
	case KindFeed:
		outcomes = p.processFeed(ctx, job)
	default:
		outcomes = []Outcome{{Job: job, Status: StatusFailed, Err: fmt.Errorf("unknown job kind %q", job.Kind)}}
	}

	for _, o := range outcomes {
		attrs := []any{slog.String("kind", string(job.Kind)), slog.String("value", job.Value), slog.String("status", string(o.Status))}
		if o.YoutubeID != "" {
			attrs = append(attrs, slog.String("video", string(o.YoutubeID)))
		}
		if o.Err != nil {
			attrs = append(attrs, slog.String("error", o.Err.Error()))
		}
		p.logger.Info("job outcome", attrs...)
	}

	return outcomes
}

func (p *Pipeline) processChannel(ctx context.Context, job Job) Outcome {
	recent, err := p.relStorage.FindRecentForChannel(ctx, job.Value, p.config.FreshnessWindow)
	switch {
	case err == nil:
		return Outcome{Job: job, YoutubeID: recent.YoutubeID, Status: StatusDeliveredCached, Video: recent}
	case !errors.Is(err, storage.ErrNotFound):
		return Outcome{Job: job, Status: StatusFailed, Err: fmt.Errorf("could not check channel freshness: %w", err)}
	}

	candidate, err := p.discoverer.Latest(ctx, job.Value)
	if err != nil {
		return Outcome{Job: job, Status: StatusSkippedNoVideo, Err: err}
	}

	return p.processCandidate(ctx, job, candidate, job.Value)
}

func (p *Pipeline) processKeyword(ctx context.Context, job Job) []Outcome {
	maxResults := job.MaxResults
	if maxResults <= 0 {
		maxResults = p.config.MaxResults
	}
	candidates, err := p.discoverer.Search(ctx, job.Value, maxResults)
	if err != nil {
		return []Outcome{{Job: job, Status: StatusSkippedNoVideo, Err: err}}
	}

	outcomes := make([]Outcome, 0, len(candidates))
	for _, candidate := range candidates {
		if err := p.throttle.Wait(ctx); err != nil {
			break
		}
		outcomes = append(outcomes, p.processCandidate(ctx, job, candidate, candidate.YoutubeChannelID.URL()))
	}

	return outcomes
}

func (p *Pipeline) processVideo(ctx context.Context, job Job) Outcome {
	ytID := model.YoutubeVideoID(job.Value)
	if o, done := p.checkExisting(ctx, job, ytID); done {
		return o
	}

	candidate, err := p.discoverer.Video(ctx, ytID)
	if err != nil {
		return Outcome{Job: job, YoutubeID: ytID, Status: StatusSkippedNoVideo, Err: err}
	}

	return p.processCandidate(ctx, job, candidate, candidate.YoutubeChannelID.URL())
}

// processFeed handles the unread feed entries and marks each one read once
// it reached a final state.
func (p *Pipeline) processFeed(ctx context.Context, job Job) []Outcome {
	if p.feedReader == nil {
		return []Outcome{{Job: job, Status: StatusFailed, Err: errors.New("no feed reader configured")}}
	}
	entries, err := p.feedReader.Unread()
	if err != nil {
		return []Outcome{{Job: job, Status: StatusSkippedNoVideo, Err: model.ProviderError("could not fetch unread entries", err)}}
	}
	if len(entries) == 0 {
		return []Outcome{{Job: job, Status: StatusSkippedNoVideo, Err: model.NotFound("no unread video entries")}}
	}

	outcomes := make([]Outcome, 0, len(entries))
	for _, entry := range entries {
		if err := p.throttle.Wait(ctx); err != nil {
			break
		}
		o := p.processCandidate(ctx, job, entry.Candidate, entry.Candidate.YoutubeChannelID.URL())
		outcomes = append(outcomes, o)
		if !settled(o) {
			continue
		}
		if err := p.feedReader.MarkRead(entry.EntryID); err != nil {
			p.logger.Error("failed to mark entry as read", slog.Int64("entry", entry.EntryID), slog.String("error", err.Error()))
		}
	}

	return outcomes
}

// settled tells whether a feed entry may be marked read. Store errors and
// provider errors are expected to go away, so those entries are tried again
// on the next run.
func settled(o Outcome) bool {
	if o.Status == StatusFailed {
		return false
	}
	if kind, ok := model.KindOf(o.Err); ok && kind == model.FailureProvider {
		return false
	}
	return true
}

func (p *Pipeline) checkExisting(ctx context.Context, job Job, ytID model.YoutubeVideoID) (Outcome, bool) {
	existing, err := p.relStorage.FindByVideoID(ctx, ytID)
	switch {
	case err == nil:
		return Outcome{Job: job, YoutubeID: ytID, Status: StatusDeliveredCached, Video: existing}, true
	case !errors.Is(err, storage.ErrNotFound):
		return Outcome{Job: job, YoutubeID: ytID, Status: StatusFailed, Err: fmt.Errorf("could not look up video: %w", err)}, true
	}

	return Outcome{}, false
}

func (p *Pipeline) processCandidate(ctx context.Context, job Job, candidate model.Candidate, channelURL string) Outcome {
	ytID := candidate.YoutubeID
	if o, done := p.checkExisting(ctx, job, ytID); done {
		return o
	}

	p.logger.Info("processing video", slog.String("video", string(ytID)))
	transcript, ok := p.transcripts.Transcript(ctx, ytID)
	if !ok {
		return Outcome{Job: job, YoutubeID: ytID, Status: StatusSkippedNoTranscript}
	}

	enrichment, err := p.enrich(ctx, job.mode(), transcript)
	if err != nil {
		return Outcome{Job: job, YoutubeID: ytID, Status: StatusSkippedEnrichmentError, Err: err}
	}

	video := &model.Video{
		ID:          uuid.New(),
		YoutubeID:   ytID,
		ChannelURL:  channelURL,
		Title:       candidate.Title,
		PublishedAt: candidate.PublishedAt,
		Enrichment:  enrichment,
		CreatedAt:   p.now(),
	}
	stored, err := p.relStorage.InsertIfAbsent(ctx, video)
	if err != nil {
		return Outcome{Job: job, YoutubeID: ytID, Status: StatusFailed, Err: fmt.Errorf("could not save video: %w", err)}
	}
	if stored.ID != video.ID {
		p.logger.Info("video was stored by someone else", slog.String("video", string(ytID)))
		return Outcome{Job: job, YoutubeID: ytID, Status: StatusDeliveredCached, Video: stored}
	}

	if p.vecStorage != nil {
		if err := p.vecStorage.Save(ctx, stored); err != nil {
			p.logger.Error("failed to save video in vec db", slog.String("video", string(ytID)), slog.String("error", err.Error()))
		}
	}

	return Outcome{Job: job, YoutubeID: ytID, Status: StatusDeliveredFresh, Video: stored}
}

func (p *Pipeline) enrich(ctx context.Context, mode Mode, transcript string) (model.Enrichment, error) {
	if mode == ModeAnalysis {
		return p.enricher.Analyze(ctx, transcript)
	}
	return p.enricher.Summarize(ctx, transcript)
}
