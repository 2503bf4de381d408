package storage

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"ewintr.nl/tubedigest/model"
	"github.com/lib/pq"
)

type PostgresInfo struct {
	Host     string
	Port     string
	User     string
	Password string
	Database string
}

func (pi PostgresInfo) DSN() string {
	return fmt.Sprintf("host=%s port=%s user=%s password=%s dbname=%s sslmode=disable", pi.Host, pi.Port, pi.User, pi.Password, pi.Database)
}

type Postgres struct {
	db *sql.DB
}

func NewPostgres(dsn string) (*Postgres, error) {
	db, err := sql.Open("postgres", dsn)
	if err != nil {
		return nil, err
	}
	p := &Postgres{db: db}
	if err := p.migrate(pgMigration); err != nil {
		db.Close()
		return nil, err
	}

	return p, nil
}

func (p *Postgres) Close() error {
	return p.db.Close()
}

func (p *Postgres) migrate(wanted []string) error {
	query := `CREATE TABLE IF NOT EXISTS migration
("id" SERIAL PRIMARY KEY, "query" TEXT)`
	_, err := p.db.Exec(query)
	if err != nil {
		return err
	}

	// find existing
	rows, err := p.db.Query(`SELECT query FROM migration ORDER BY id`)
	if err != nil {
		return err
	}

	existing := []string{}
	for rows.Next() {
		var query string
		if err := rows.Scan(&query); err != nil {
			rows.Close()
			return err
		}
		existing = append(existing, query)
	}
	rows.Close()

	// compare
	missing, err := compareMigrations(wanted, existing)
	if err != nil {
		return err
	}

	// execute missing
	for _, query := range missing {
		if _, err := p.db.Exec(query); err != nil {
			return err
		}

		// register
		if _, err := p.db.Exec(`
INSERT INTO migration
(query) VALUES ($1)
`, query); err != nil {
			return err
		}
	}

	return nil
}

func compareMigrations(wanted, existing []string) ([]string, error) {
	needed := []string{}
	if len(wanted) < len(existing) {
		return []string{}, fmt.Errorf("not enough migrations")
	}

	for i, want := range wanted {
		switch {
		case i >= len(existing):
			needed = append(needed, want)
		case want == existing[i]:
			// do nothing
		case want != existing[i]:
			return []string{}, fmt.Errorf("incompatible migration: %v", want)
		}
	}

	return needed, nil
}

const videoColumns = `id, youtube_id, channel_url, title, published_at, summary, sentiment, confidence, key_topics, created_at`

func (p *Postgres) FindByVideoID(ctx context.Context, ytID model.YoutubeVideoID) (*model.Video, error) {
	query := `SELECT ` + videoColumns + `
FROM video_summary
WHERE youtube_id = $1`

	return p.scanOne(p.db.QueryRowContext(ctx, query, string(ytID)))
}

func (p *Postgres) FindRecentForChannel(ctx context.Context, channelURL string, window time.Duration) (*model.Video, error) {
	query := `SELECT ` + videoColumns + `
FROM video_summary
WHERE channel_url = $1 AND created_at >= $2
ORDER BY created_at DESC
LIMIT 1`

	return p.scanOne(p.db.QueryRowContext(ctx, query, channelURL, time.Now().Add(-window)))
}

func (p *Postgres) InsertIfAbsent(ctx context.Context, video *model.Video) (*model.Video, error) {
	query := `INSERT INTO video_summary (` + videoColumns + `)
VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10)
ON CONFLICT (youtube_id) DO NOTHING`

	enr := video.Enrichment
	topics := enr.KeyTopics
	if topics == nil {
		topics = []string{}
	}
	if _, err := p.db.ExecContext(ctx, query,
		video.ID,
		string(video.YoutubeID),
		video.ChannelURL,
		video.Title,
		video.PublishedAt,
		enr.Summary,
		string(enr.Sentiment),
		enr.Confidence,
		pq.Array(topics),
		video.CreatedAt,
	); err != nil {
		return nil, fmt.Errorf("could not insert video %s: %w", video.YoutubeID, err)
	}

	return p.FindByVideoID(ctx, video.YoutubeID)
}

func (p *Postgres) scanOne(row *sql.Row) (*model.Video, error) {
	var (
		video     model.Video
		ytID      string
		sentiment string
		topics    []string
	)
	err := row.Scan(
		&video.ID,
		&ytID,
		&video.ChannelURL,
		&video.Title,
		&video.PublishedAt,
		&video.Enrichment.Summary,
		&sentiment,
		&video.Enrichment.Confidence,
		pq.Array(&topics),
		&video.CreatedAt,
	)
	switch {
	case errors.Is(err, sql.ErrNoRows):
		return nil, ErrNotFound
	case err != nil:
		return nil, err
	}
	video.YoutubeID = model.YoutubeVideoID(ytID)
	video.Enrichment.Sentiment = model.Sentiment(sentiment)
	if len(topics) > 0 {
		video.Enrichment.KeyTopics = topics
	}

	return &video, nil
}
