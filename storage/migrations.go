package storage

var pgMigration = []string{
	`CREATE TABLE video_summary (
id uuid PRIMARY KEY,
youtube_id VARCHAR(255) NOT NULL UNIQUE,
channel_url VARCHAR(255) NOT NULL,
title VARCHAR(255) NOT NULL,
published_at TIMESTAMPTZ,
summary TEXT NOT NULL,
created_at TIMESTAMPTZ NOT NULL
)`,
	`ALTER TABLE video_summary
ADD COLUMN sentiment VARCHAR(16) NOT NULL DEFAULT '',
ADD COLUMN confidence DOUBLE PRECISION NOT NULL DEFAULT 0,
ADD COLUMN key_topics TEXT[] NOT NULL DEFAULT '{}'`,
	`CREATE INDEX video_summary_channel_created ON video_summary (channel_url, created_at DESC)`,
}
