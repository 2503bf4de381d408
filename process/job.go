package process

import "ewintr.nl/tubedigest/model"

type Kind string

const (
	KindChannel Kind = "channel"
	KindKeyword Kind = "keyword"
	KindVideo   Kind = "video"
	KindFeed    Kind = "feed"
)

type Mode string

const (
	ModeSummary  Mode = "summary"
	ModeAnalysis Mode = "analysis"
)

type Job struct {
	Kind       Kind
	Value      string
	Mode       Mode
	MaxResults int
}

// mode falls back to a summary for single videos and to an analysis when
// several candidates are compared.
func (j Job) mode() Mode {
	if j.Mode != "" {
		return j.Mode
	}
	switch j.Kind {
	case KindKeyword, KindFeed:
		return ModeAnalysis
	}
	return ModeSummary
}

type Status string

const (
	StatusDeliveredCached        Status = "delivered-cached"
	StatusDeliveredFresh         Status = "delivered-fresh"
	StatusSkippedNoVideo         Status = "skipped-no-video"
	StatusSkippedNoTranscript    Status = "skipped-no-transcript"
	StatusSkippedEnrichmentError Status = "skipped-enrichment-error"
	StatusFailed                 Status = "failed"
)

func (s Status) Delivered() bool {
	return s == StatusDeliveredCached || s == StatusDeliveredFresh
}

type Outcome struct {
	Job       Job
	YoutubeID model.YoutubeVideoID
	Status    Status
	Video     *model.Video
	Err       error
}
