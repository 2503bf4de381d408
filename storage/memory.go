package storage

import (
	"context"
	"sync"
	"time"

	"ewintr.nl/tubedigest/model"
)

type Memory struct {
	mu     sync.Mutex
	videos map[model.YoutubeVideoID]model.Video
	Now    func() time.Time
}

func NewMemory() *Memory {
	return &Memory{
		videos: map[model.YoutubeVideoID]model.Video{},
		Now:    time.Now,
	}
}

func (m *Memory) FindByVideoID(_ context.Context, ytID model.YoutubeVideoID) (*model.Video, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	video, ok := m.videos[ytID]
	if !ok {
		return nil, ErrNotFound
	}

	return cloneVideo(video), nil
}

func (m *Memory) FindRecentForChannel(_ context.Context, channelURL string, window time.Duration) (*model.Video, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	threshold := m.Now().Add(-window)
	var newest *model.Video
	for _, video := range m.videos {
		if video.ChannelURL != channelURL || video.CreatedAt.Before(threshold) {
			continue
		}
		if newest == nil || video.CreatedAt.After(newest.CreatedAt) {
			newest = cloneVideo(video)
		}
	}
	if newest == nil {
		return nil, ErrNotFound
	}

	return newest, nil
}

func (m *Memory) InsertIfAbsent(_ context.Context, video *model.Video) (*model.Video, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	if existing, ok := m.videos[video.YoutubeID]; ok {
		return cloneVideo(existing), nil
	}
	stored := cloneVideo(*video)
	m.videos[video.YoutubeID] = *stored

	return cloneVideo(*stored), nil
}

// cloneVideo copies the topics as well, so callers cannot reach into a
// stored record.
func cloneVideo(video model.Video) *model.Video {
	if video.Enrichment.KeyTopics != nil {
		video.Enrichment.KeyTopics = append([]string{}, video.Enrichment.KeyTopics...)
	}
	return &video
}

func (m *Memory) Count() int {
	m.mu.Lock()
	defer m.mu.Unlock()

	return len(m.videos)
}
