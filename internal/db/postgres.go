package db

import (
	"context"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/spacesedan/reviewlens/internal/models"
)

const reviewsSchema = `
CREATE TABLE IF NOT EXISTS reviews (
    id          BIGSERIAL PRIMARY KEY,
    content     TEXT NOT NULL,
    sentiment   VARCHAR(16) NOT NULL CHECK (sentiment IN ('positive', 'negative')),
    confidence  DOUBLE PRECISION NOT NULL,
    created_at  TIMESTAMPTZ NOT NULL DEFAULT NOW()
);
CREATE INDEX IF NOT EXISTS idx_reviews_ranking ON reviews (sentiment, confidence DESC, id);
`

const reviewColumns = `id, content, sentiment, confidence, created_at`

type PostgresStore struct {
	DB *pgxpool.Pool
}

func NewPostgresStore(ctx context.Context, dsn string) (*PostgresStore, error) {
	connectCtx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()

	pool, err := pgxpool.New(connectCtx, dsn)
	if err != nil {
		return nil, fmt.Errorf("failed to create postgreSQL client: %w", err)
	}

	if err := pool.Ping(connectCtx); err != nil {
		pool.Close()
		return nil, fmt.Errorf("failed to ping PostgreSQL: %w", err)
	}

	slog.Info("[ReviewStore] Connected to PostgreSQL successfully")
	return &PostgresStore{DB: pool}, nil
}

func (p *PostgresStore) Migrate(ctx context.Context) error {
	_, err := p.DB.Exec(ctx, reviewsSchema)
	return err
}

// InsertMany batch stores reviews with a single multi-row INSERT in one transaction.
func (p *PostgresStore) InsertMany(ctx context.Context, records []models.Review) (err error) {
	if len(records) == 0 {
		return nil
	}

	query := `INSERT INTO reviews (content, sentiment, confidence) VALUES `

	values := make([]interface{}, 0, len(records)*3)
	placeholderParts := make([]string, 0, len(records))

	for i := range records {
		if err := prepareForInsert(&records[i]); err != nil {
			return err
		}
		offset := i * 3
		placeholderParts = append(placeholderParts, fmt.Sprintf("($%d, $%d, $%d)", offset+1, offset+2, offset+3))
		values = append(values, records[i].Content, string(records[i].Sentiment), records[i].Confidence)
	}

	query += strings.Join(placeholderParts, ", ")
	query += ` RETURNING id, created_at`

	tx, err := p.DB.Begin(ctx)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer func() {
		if err != nil {
			_ = tx.Rollback(ctx)
		}
	}()

	rows, err := tx.Query(ctx, query, values...)
	if err != nil {
		return fmt.Errorf("failed to insert reviews: %w", err)
	}

	i := 0
	for rows.Next() {
		if err = rows.Scan(&records[i].ID, &records[i].CreatedAt); err != nil {
			rows.Close()
			return fmt.Errorf("failed to scan inserted review: %w", err)
		}
		i++
	}
	rows.Close()
	if err = rows.Err(); err != nil {
		return fmt.Errorf("failed to insert reviews: %w", err)
	}

	if err = tx.Commit(ctx); err != nil {
		return fmt.Errorf("failed to commit reviews: %w", err)
	}
	return nil
}

func (p *PostgresStore) Insert(ctx context.Context, record *models.Review) error {
	if err := prepareForInsert(record); err != nil {
		return err
	}

	err := p.DB.QueryRow(ctx,
		`INSERT INTO reviews (content, sentiment, confidence) VALUES ($1, $2, $3) RETURNING id, created_at`,
		record.Content, string(record.Sentiment), record.Confidence,
	).Scan(&record.ID, &record.CreatedAt)
	if err != nil {
		return fmt.Errorf("failed to insert review: %w", err)
	}
	return nil
}

func (p *PostgresStore) Count(ctx context.Context) (int64, error) {
	var count int64
	err := p.DB.QueryRow(ctx, `SELECT COUNT(*) FROM reviews`).Scan(&count)
	return count, err
}

func (p *PostgresStore) CountBySentiment(ctx context.Context, sentiment models.Sentiment) (int64, error) {
	var count int64
	err := p.DB.QueryRow(ctx, `SELECT COUNT(*) FROM reviews WHERE sentiment = $1`, string(sentiment)).Scan(&count)
	return count, err
}

func (p *PostgresStore) AverageConfidence(ctx context.Context) (float64, error) {
	var avg float64
	err := p.DB.QueryRow(ctx, `SELECT COALESCE(AVG(confidence), 0) FROM reviews`).Scan(&avg)
	return avg, err
}

func (p *PostgresStore) TopBySentiment(ctx context.Context, sentiment models.Sentiment, n int) ([]models.Review, error) {
	if n <= 0 {
		return []models.Review{}, nil
	}
	query := `
        SELECT ` + reviewColumns + `
        FROM reviews
        WHERE sentiment = $1
        ORDER BY confidence DESC, id ASC
        LIMIT $2
    `
	rows, err := p.DB.Query(ctx, query, string(sentiment), n)
	if err != nil {
		return nil, err
	}
	return scanReviews(rows, n)
}

func (p *PostgresStore) List(ctx context.Context, limit int) ([]models.Review, error) {
	if limit <= 0 {
		return []models.Review{}, nil
	}
	query := `SELECT ` + reviewColumns + ` FROM reviews ORDER BY id ASC LIMIT $1`
	rows, err := p.DB.Query(ctx, query, limit)
	if err != nil {
		return nil, err
	}
	return scanReviews(rows, limit)
}

func (p *PostgresStore) Close() error {
	if p.DB != nil {
		p.DB.Close()
	}
	return nil
}

func scanReviews(rows pgx.Rows, capacity int) ([]models.Review, error) {
	defer rows.Close()

	reviews := make([]models.Review, 0, capacity)
	for rows.Next() {
		var (
			review    models.Review
			sentiment string
		)
		if err := rows.Scan(&review.ID, &review.Content, &sentiment, &review.Confidence, &review.CreatedAt); err != nil {
			return nil, err
		}
		review.Sentiment = models.Sentiment(sentiment)
		reviews = append(reviews, review)
	}
	return reviews, rows.Err()
}
