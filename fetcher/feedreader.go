package fetcher

import "ewintr.nl/tubedigest/model"

type FeedEntry struct {
	EntryID   int64
	FeedID    int64
	Candidate model.Candidate
}

type FeedReader interface {
	Unread() ([]FeedEntry, error)
	MarkRead(entryID int64) error
}
