package storage

import (
	"context"
	"errors"
	"time"

	"ewintr.nl/tubedigest/model"
)

var ErrNotFound = errors.New("not found")

// VideoRepository is the summary cache. Records are only ever added.
type VideoRepository interface {
	FindByVideoID(ctx context.Context, ytID model.YoutubeVideoID) (*model.Video, error)
	// FindRecentForChannel returns the newest record for the channel that was
	// created within window, or ErrNotFound.
	FindRecentForChannel(ctx context.Context, channelURL string, window time.Duration) (*model.Video, error)
	// InsertIfAbsent stores video unless a record with the same YoutubeID
	// exists and returns whatever is stored afterwards.
	InsertIfAbsent(ctx context.Context, video *model.Video) (*model.Video, error)
}

type VideoVecRepository interface {
	Save(ctx context.Context, video *model.Video) error
}
